package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"upi-payments-go/internal/models"
	"upi-payments-go/internal/store"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.LedgerStore.
var _ store.LedgerStore = (*Service)(nil)

// Service is the PostgreSQL ledger store backend. Balance reads inside the
// payment unit of work take row locks (SELECT ... FOR UPDATE), so concurrent
// payments against the same account serialize at the database.
type Service struct {
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("postgres DSN cannot be empty")
	}

	zap.L().Info("Connecting to PostgreSQL")
	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db}
	if err := service.initSchema(ctx); err != nil {
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

func (s *Service) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		owner_name TEXT NOT NULL,
		contact TEXT NOT NULL DEFAULT '',
		currency TEXT NOT NULL DEFAULT 'INR',
		balance NUMERIC(20, 4) NOT NULL DEFAULT 0,
		merchant BOOLEAN NOT NULL DEFAULT FALSE,
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS upi_handles (
		upi_id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_upi_handles_account ON upi_handles(account_id);

	CREATE TABLE IF NOT EXISTS upi_transactions (
		id TEXT PRIMARY KEY,
		sender_upi_id TEXT NOT NULL,
		receiver_upi_id TEXT NOT NULL,
		amount NUMERIC(20, 4) NOT NULL,
		processing_fee NUMERIC(20, 4) NOT NULL DEFAULT 0,
		merchant_fee NUMERIC(20, 4) NOT NULL DEFAULT 0,
		reference TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		failure_reason TEXT NOT NULL DEFAULT '',
		network_reference TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ
	);

	CREATE INDEX IF NOT EXISTS idx_upi_transactions_sender ON upi_transactions(sender_upi_id, status, created_at);
	CREATE INDEX IF NOT EXISTS idx_upi_transactions_created_at ON upi_transactions(created_at);

	CREATE TABLE IF NOT EXISTS transaction_legs (
		id TEXT PRIMARY KEY,
		transaction_id TEXT NOT NULL REFERENCES upi_transactions(id),
		account_id TEXT NOT NULL REFERENCES accounts(id),
		amount NUMERIC(20, 4) NOT NULL,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transaction_legs_transaction ON transaction_legs(transaction_id);
	CREATE INDEX IF NOT EXISTS idx_transaction_legs_account ON transaction_legs(account_id, created_at);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, owner_name, contact, currency, balance, merchant, status)
		VALUES ($1, 'Platform Fee Income', '', 'INR', 0, FALSE, 'active')
		ON CONFLICT (id) DO NOTHING`, store.PlatformAccountId)
	return err
}

func (s *Service) CreateAccount(ctx context.Context, params store.CreateAccountParams) (*models.Account, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, owner_name, contact, currency, balance, merchant, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'active', $7, $7)`,
		params.Id, params.OwnerName, params.Contact, params.Currency,
		params.Balance.String(), params.Merchant, now)
	if err != nil {
		return nil, fmt.Errorf("unable to insert account: %w", err)
	}
	return s.GetAccountByID(ctx, params.Id)
}

func (s *Service) RegisterHandle(ctx context.Context, upiID, accountID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO upi_handles (upi_id, account_id) VALUES ($1, $2)`, upiID, accountID)
	if err != nil {
		return fmt.Errorf("unable to register UPI handle %s: %w", upiID, err)
	}
	return nil
}

const accountColumns = `id, owner_name, contact, currency, balance::text, merchant, status, created_at, updated_at`

func (s *Service) GetAccountByID(ctx context.Context, accountID string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, accountID)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", accountID, store.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("unable to query account by ID: %w", err)
	}
	return account, nil
}

func (s *Service) GetAccountByUpiID(ctx context.Context, upiID string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.owner_name, a.contact, a.currency, a.balance::text, a.merchant, a.status, a.created_at, a.updated_at
		FROM accounts a
		JOIN upi_handles h ON h.account_id = a.id
		WHERE h.upi_id = $1 AND a.status = 'active'`, upiID)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("UPI ID %s: %w", upiID, store.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("unable to query account by UPI ID: %w", err)
	}
	return account, nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("unable to query accounts: %w", err)
	}
	defer closeRows(rows)

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan account row: %w", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

func (s *Service) DailyCompletedTotal(ctx context.Context, senderUpiID string, day time.Time) (decimal.Decimal, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	var totalStr string
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)::text
		FROM upi_transactions
		WHERE sender_upi_id = $1 AND status = $2 AND created_at >= $3 AND created_at < $4`,
		senderUpiID, string(models.StatusCompleted), dayStart, dayEnd).Scan(&totalStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to query daily total: %w", err)
	}

	total, err := decimal.NewFromString(totalStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to parse daily total %q: %w", totalStr, err)
	}
	return total, nil
}

func (s *Service) BeginPayment(ctx context.Context, params store.PaymentParams) (store.PaymentTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to begin transaction: %w", err)
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO upi_transactions (
			id, sender_upi_id, receiver_upi_id, amount, processing_fee, merchant_fee,
			reference, note, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		params.TransactionId, params.SenderUpiId, params.ReceiverUpiId,
		params.Amount.String(), params.ProcessingFee.String(), params.MerchantFee.String(),
		params.Reference, params.Note, string(models.StatusProcessing), now)
	if err != nil {
		rollbackTx(tx)
		return nil, fmt.Errorf("unable to insert transaction %s: %w", params.TransactionId, err)
	}

	for _, leg := range params.Legs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO transaction_legs (id, transaction_id, account_id, amount, kind, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New().String(), params.TransactionId, leg.AccountId,
			leg.Amount.String(), string(leg.Kind), string(models.StatusProcessing), now)
		if err != nil {
			rollbackTx(tx)
			return nil, fmt.Errorf("unable to insert %s leg for %s: %w", leg.Kind, params.TransactionId, err)
		}
	}

	return &paymentTx{tx: tx, params: params}, nil
}

type paymentTx struct {
	tx     *sql.Tx
	params store.PaymentParams
}

func (p *paymentTx) Complete(ctx context.Context, networkReference string) error {
	for _, leg := range p.params.Legs {
		var balanceStr string
		err := p.tx.QueryRowContext(ctx,
			`SELECT balance::text FROM accounts WHERE id = $1 FOR UPDATE`, leg.AccountId).Scan(&balanceStr)
		if err != nil {
			rollbackTx(p.tx)
			return fmt.Errorf("unable to lock balance of %s: %w", leg.AccountId, err)
		}

		balance, err := decimal.NewFromString(balanceStr)
		if err != nil {
			rollbackTx(p.tx)
			return fmt.Errorf("unable to parse balance %q: %w", balanceStr, err)
		}

		newBalance := balance.Add(leg.Amount)
		if newBalance.IsNegative() {
			rollbackTx(p.tx)
			return fmt.Errorf("account %s: %w", leg.AccountId, store.ErrNegativeBalance)
		}

		_, err = p.tx.ExecContext(ctx,
			`UPDATE accounts SET balance = $1, updated_at = $2 WHERE id = $3`,
			newBalance.String(), time.Now().UTC(), leg.AccountId)
		if err != nil {
			rollbackTx(p.tx)
			return fmt.Errorf("unable to update balance of %s: %w", leg.AccountId, err)
		}
	}

	now := time.Now().UTC()
	_, err := p.tx.ExecContext(ctx, `
		UPDATE upi_transactions SET status = $1, network_reference = $2, completed_at = $3 WHERE id = $4`,
		string(models.StatusCompleted), networkReference, now, p.params.TransactionId)
	if err != nil {
		rollbackTx(p.tx)
		return fmt.Errorf("unable to mark transaction completed: %w", err)
	}

	_, err = p.tx.ExecContext(ctx,
		`UPDATE transaction_legs SET status = $1 WHERE transaction_id = $2`,
		string(models.StatusCompleted), p.params.TransactionId)
	if err != nil {
		rollbackTx(p.tx)
		return fmt.Errorf("unable to mark legs completed: %w", err)
	}

	if err := p.tx.Commit(); err != nil {
		return fmt.Errorf("unable to commit payment: %w", err)
	}
	return nil
}

func (p *paymentTx) Fail(ctx context.Context, reason string) error {
	now := time.Now().UTC()
	_, err := p.tx.ExecContext(ctx, `
		UPDATE upi_transactions SET status = $1, failure_reason = $2, completed_at = $3 WHERE id = $4`,
		string(models.StatusFailed), reason, now, p.params.TransactionId)
	if err != nil {
		rollbackTx(p.tx)
		return fmt.Errorf("unable to mark transaction failed: %w", err)
	}

	_, err = p.tx.ExecContext(ctx,
		`UPDATE transaction_legs SET status = $1 WHERE transaction_id = $2`,
		string(models.StatusFailed), p.params.TransactionId)
	if err != nil {
		rollbackTx(p.tx)
		return fmt.Errorf("unable to mark legs failed: %w", err)
	}

	if err := p.tx.Commit(); err != nil {
		return fmt.Errorf("unable to commit failed payment: %w", err)
	}
	return nil
}

func (p *paymentTx) Rollback() error {
	return p.tx.Rollback()
}

func (s *Service) GetTransaction(ctx context.Context, transactionID string) (*models.UpiTransaction, []models.TransactionLeg, error) {
	var record models.UpiTransaction
	var amountStr, processingFeeStr, merchantFeeStr, statusStr string
	var completedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, `
		SELECT id, sender_upi_id, receiver_upi_id, amount::text, processing_fee::text, merchant_fee::text,
		       reference, note, status, failure_reason, network_reference, created_at, completed_at
		FROM upi_transactions WHERE id = $1`, transactionID).Scan(
		&record.Id, &record.SenderUpiId, &record.ReceiverUpiId,
		&amountStr, &processingFeeStr, &merchantFeeStr,
		&record.Reference, &record.Note, &statusStr,
		&record.FailureReason, &record.NetworkReference,
		&record.CreatedAt, &completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("transaction %s: %w", transactionID, store.ErrTransactionNotFound)
		}
		return nil, nil, fmt.Errorf("unable to query transaction: %w", err)
	}

	record.Status = models.TransactionStatus(statusStr)
	if completedAt.Valid {
		t := completedAt.Time
		record.CompletedAt = &t
	}
	if record.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return nil, nil, fmt.Errorf("unable to parse amount %q: %w", amountStr, err)
	}
	if record.ProcessingFee, err = decimal.NewFromString(processingFeeStr); err != nil {
		return nil, nil, fmt.Errorf("unable to parse processing fee %q: %w", processingFeeStr, err)
	}
	if record.MerchantFee, err = decimal.NewFromString(merchantFeeStr); err != nil {
		return nil, nil, fmt.Errorf("unable to parse merchant fee %q: %w", merchantFeeStr, err)
	}

	legs, err := s.queryLegs(ctx, `
		SELECT id, transaction_id, account_id, amount::text, kind, status, created_at
		FROM transaction_legs WHERE transaction_id = $1 ORDER BY created_at, id`, transactionID)
	if err != nil {
		return nil, nil, err
	}
	return &record, legs, nil
}

func (s *Service) ListLegsByAccount(ctx context.Context, accountID string, limit int) ([]models.TransactionLeg, error) {
	return s.queryLegs(ctx, `
		SELECT id, transaction_id, account_id, amount::text, kind, status, created_at
		FROM transaction_legs WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2`, accountID, limit)
}

func (s *Service) queryLegs(ctx context.Context, query string, args ...any) ([]models.TransactionLeg, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("unable to query legs: %w", err)
	}
	defer closeRows(rows)

	var legs []models.TransactionLeg
	for rows.Next() {
		var leg models.TransactionLeg
		var amountStr, kindStr, statusStr string
		err := rows.Scan(&leg.Id, &leg.TransactionId, &leg.AccountId,
			&amountStr, &kindStr, &statusStr, &leg.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("unable to scan leg: %w", err)
		}
		leg.Kind = models.LegKind(kindStr)
		leg.Status = models.TransactionStatus(statusStr)
		if leg.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("unable to parse leg amount %q: %w", amountStr, err)
		}
		legs = append(legs, leg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leg rows: %w", err)
	}
	return legs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var account models.Account
	var balanceStr string
	err := row.Scan(&account.Id, &account.OwnerName, &account.Contact, &account.Currency,
		&balanceStr, &account.Merchant, &account.Status, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}

	account.Balance, err = decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse balance %q: %w", balanceStr, err)
	}
	return &account, nil
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		zap.L().Warn("Failed to close rows", zap.Error(err))
	}
}

func rollbackTx(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		zap.L().Warn("Failed to roll back transaction", zap.Error(err))
	}
}
