package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"upi-payments-go/internal/models"
	"upi-payments-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DailyCompletedTotal sums the COMPLETED transaction amounts sent from the
// given UPI identity during the UTC day containing `day`. Amounts are summed
// in Go so decimal precision survives the round trip.
func (s *Service) DailyCompletedTotal(ctx context.Context, senderUpiID string, day time.Time) (decimal.Decimal, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	rows, err := s.db.QueryContext(ctx, queryDailyCompletedAmounts,
		senderUpiID, string(models.StatusCompleted), dayStart, dayEnd)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to query daily total: %w", err)
	}
	defer closeRows(rows)

	total := decimal.Zero
	for rows.Next() {
		var amountStr string
		if err := rows.Scan(&amountStr); err != nil {
			return decimal.Zero, fmt.Errorf("unable to scan amount: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return decimal.Zero, fmt.Errorf("unable to parse amount %q: %w", amountStr, err)
		}
		total = total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("error iterating amount rows: %w", err)
	}
	return total, nil
}

// BeginPayment opens the unit of work for one payment: it inserts the audit
// row and every leg with status PROCESSING and returns with the database
// transaction still open. The caller settles it through the returned
// PaymentTx after the switch answers.
func (s *Service) BeginPayment(ctx context.Context, params store.PaymentParams) (store.PaymentTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to begin transaction: %w", err)
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, queryInsertTransaction,
		params.TransactionId, params.SenderUpiId, params.ReceiverUpiId,
		params.Amount.String(), params.ProcessingFee.String(), params.MerchantFee.String(),
		params.Reference, params.Note, string(models.StatusProcessing), now)
	if err != nil {
		rollbackTx(tx)
		return nil, fmt.Errorf("unable to insert transaction %s: %w", params.TransactionId, err)
	}

	for _, leg := range params.Legs {
		_, err = tx.ExecContext(ctx, queryInsertLeg,
			uuid.New().String(), params.TransactionId, leg.AccountId,
			leg.Amount.String(), string(leg.Kind), string(models.StatusProcessing), now)
		if err != nil {
			rollbackTx(tx)
			return nil, fmt.Errorf("unable to insert %s leg for %s: %w", leg.Kind, params.TransactionId, err)
		}
	}

	zap.L().Debug("Payment unit of work opened",
		zap.String("transaction_id", params.TransactionId),
		zap.Int("legs", len(params.Legs)))

	return &paymentTx{tx: tx, params: params}, nil
}

type paymentTx struct {
	tx     *sql.Tx
	params store.PaymentParams
}

func (p *paymentTx) Complete(ctx context.Context, networkReference string) error {
	// Apply each leg's signed amount to its account. Legs sum to zero, so
	// conservation of money follows from applying all of them or none.
	for _, leg := range p.params.Legs {
		var balanceStr string
		err := p.tx.QueryRowContext(ctx, queryGetAccountBalanceTx, leg.AccountId).Scan(&balanceStr)
		if err != nil {
			rollbackTx(p.tx)
			return fmt.Errorf("unable to read balance of %s: %w", leg.AccountId, err)
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

		_, err = p.tx.ExecContext(ctx, queryUpdateAccountBalanceTx,
			newBalance.String(), time.Now().UTC(), leg.AccountId)
		if err != nil {
			rollbackTx(p.tx)
			return fmt.Errorf("unable to update balance of %s: %w", leg.AccountId, err)
		}
	}

	now := time.Now().UTC()
	_, err := p.tx.ExecContext(ctx, queryCompleteTransaction,
		string(models.StatusCompleted), networkReference, now, p.params.TransactionId)
	if err != nil {
		rollbackTx(p.tx)
		return fmt.Errorf("unable to mark transaction completed: %w", err)
	}

	_, err = p.tx.ExecContext(ctx, queryUpdateLegStatuses,
		string(models.StatusCompleted), p.params.TransactionId)
	if err != nil {
		rollbackTx(p.tx)
		return fmt.Errorf("unable to mark legs completed: %w", err)
	}

	if err := p.tx.Commit(); err != nil {
		return fmt.Errorf("unable to commit payment: %w", err)
	}

	zap.L().Info("Payment completed",
		zap.String("transaction_id", p.params.TransactionId),
		zap.String("amount", p.params.Amount.String()),
		zap.String("network_reference", networkReference))
	return nil
}

func (p *paymentTx) Fail(ctx context.Context, reason string) error {
	// No balance changes. The PROCESSING rows flip to FAILED and commit so
	// the attempt stays in the audit trail.
	now := time.Now().UTC()
	_, err := p.tx.ExecContext(ctx, queryFailTransaction,
		string(models.StatusFailed), reason, now, p.params.TransactionId)
	if err != nil {
		rollbackTx(p.tx)
		return fmt.Errorf("unable to mark transaction failed: %w", err)
	}

	_, err = p.tx.ExecContext(ctx, queryUpdateLegStatuses,
		string(models.StatusFailed), p.params.TransactionId)
	if err != nil {
		rollbackTx(p.tx)
		return fmt.Errorf("unable to mark legs failed: %w", err)
	}

	if err := p.tx.Commit(); err != nil {
		return fmt.Errorf("unable to commit failed payment: %w", err)
	}

	zap.L().Warn("Payment failed",
		zap.String("transaction_id", p.params.TransactionId),
		zap.String("reason", reason))
	return nil
}

func (p *paymentTx) Rollback() error {
	return p.tx.Rollback()
}

func rollbackTx(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		zap.L().Warn("Failed to roll back transaction", zap.Error(err))
	}
}

func (s *Service) GetTransaction(ctx context.Context, transactionID string) (*models.UpiTransaction, []models.TransactionLeg, error) {
	var record models.UpiTransaction
	var amountStr, processingFeeStr, merchantFeeStr, statusStr string
	var completedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, queryGetTransaction, transactionID).Scan(
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

	legs, err := s.queryLegs(ctx, queryGetLegsByTransaction, transactionID)
	if err != nil {
		return nil, nil, err
	}
	return &record, legs, nil
}

func (s *Service) ListLegsByAccount(ctx context.Context, accountID string, limit int) ([]models.TransactionLeg, error) {
	return s.queryLegs(ctx, queryListLegsByAccount, accountID, limit)
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
