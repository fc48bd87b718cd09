package database

import (
	"context"
	"database/sql"
	"fmt"

	"upi-payments-go/internal/models"
	"upi-payments-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.LedgerStore.
var _ store.LedgerStore = (*Service)(nil)

// Service is the SQLite ledger store backend.
type Service struct {
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db}
	if err := service.initSchema(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Ledger store initialized successfully")
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) initSchema() error {
	schema := `
	-- Accounts table (current balance state)
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		owner_name TEXT NOT NULL,
		contact TEXT NOT NULL DEFAULT '',
		currency TEXT NOT NULL DEFAULT 'INR',
		balance TEXT NOT NULL DEFAULT '0',
		merchant INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- UPI handle to account mapping (many handles per account)
	CREATE TABLE IF NOT EXISTS upi_handles (
		upi_id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_upi_handles_account ON upi_handles(account_id);

	-- UPI transactions (audit trail)
	CREATE TABLE IF NOT EXISTS upi_transactions (
		id TEXT PRIMARY KEY,
		sender_upi_id TEXT NOT NULL,
		receiver_upi_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		processing_fee TEXT NOT NULL DEFAULT '0',
		merchant_fee TEXT NOT NULL DEFAULT '0',
		reference TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		failure_reason TEXT NOT NULL DEFAULT '',
		network_reference TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_upi_transactions_sender ON upi_transactions(sender_upi_id, status, created_at);
	CREATE INDEX IF NOT EXISTS idx_upi_transactions_receiver ON upi_transactions(receiver_upi_id);
	CREATE INDEX IF NOT EXISTS idx_upi_transactions_created_at ON upi_transactions(created_at);

	-- Ledger legs (one signed row per account side of a transaction)
	CREATE TABLE IF NOT EXISTS transaction_legs (
		id TEXT PRIMARY KEY,
		transaction_id TEXT NOT NULL REFERENCES upi_transactions(id),
		account_id TEXT NOT NULL REFERENCES accounts(id),
		amount TEXT NOT NULL,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transaction_legs_transaction ON transaction_legs(transaction_id);
	CREATE INDEX IF NOT EXISTS idx_transaction_legs_account ON transaction_legs(account_id, created_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// The platform fee-income account balances all fee legs.
	_, err := s.db.Exec(queryInsertPlatformAccount, store.PlatformAccountId)
	return err
}
