package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"upi-payments-go/internal/models"
	"upi-payments-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *Service) CreateAccount(ctx context.Context, params store.CreateAccountParams) (*models.Account, error) {
	zap.L().Info("Creating account",
		zap.String("id", params.Id),
		zap.String("owner", params.OwnerName),
		zap.Bool("merchant", params.Merchant))

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, queryInsertAccount,
		params.Id, params.OwnerName, params.Contact, params.Currency,
		params.Balance.String(), params.Merchant, now, now)
	if err != nil {
		zap.L().Error("Failed to insert account", zap.String("id", params.Id), zap.Error(err))
		return nil, fmt.Errorf("unable to insert account: %w", err)
	}

	return s.GetAccountByID(ctx, params.Id)
}

func (s *Service) RegisterHandle(ctx context.Context, upiID, accountID string) error {
	zap.L().Info("Registering UPI handle",
		zap.String("upi_id", upiID),
		zap.String("account_id", accountID))

	if _, err := s.db.ExecContext(ctx, queryInsertHandle, upiID, accountID); err != nil {
		return fmt.Errorf("unable to register UPI handle %s: %w", upiID, err)
	}
	return nil
}

func (s *Service) GetAccountByID(ctx context.Context, accountID string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, queryGetAccountByID, accountID)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", accountID, store.ErrAccountNotFound)
		}
		zap.L().Error("Failed to query account by ID", zap.String("account_id", accountID), zap.Error(err))
		return nil, fmt.Errorf("unable to query account by ID: %w", err)
	}
	return account, nil
}

func (s *Service) GetAccountByUpiID(ctx context.Context, upiID string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, queryGetAccountByUpiID, upiID)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("UPI ID %s: %w", upiID, store.ErrAccountNotFound)
		}
		zap.L().Error("Failed to query account by UPI ID", zap.String("upi_id", upiID), zap.Error(err))
		return nil, fmt.Errorf("unable to query account by UPI ID: %w", err)
	}
	return account, nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, queryListAccounts)
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

// rowScanner covers both *sql.Row and *sql.Rows.
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
