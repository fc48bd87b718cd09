package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentResult is the structured outcome of one ProcessPayment call.
// Every result carries the transaction identifier, including failures that
// never reached the ledger, so callers can always reference the attempt.
type PaymentResult struct {
	Status        TransactionStatus `json:"status"`
	TransactionId string            `json:"transaction_id"`
	Timestamp     time.Time         `json:"timestamp,omitempty"`
	Amount        decimal.Decimal   `json:"amount,omitempty"`
	Fee           decimal.Decimal   `json:"fee,omitempty"`
	Reference     string            `json:"reference,omitempty"`
	Error         string            `json:"error,omitempty"`
}

// VerificationResult is the read-only view returned by VerifyTransaction.
// Status is UNKNOWN when the identifier resolves to no committed row; that is
// an answer, not an error, so callers can poll without special cases.
type VerificationResult struct {
	TransactionId string            `json:"transaction_id"`
	Status        TransactionStatus `json:"status"`
	Transaction   *UpiTransaction   `json:"transaction,omitempty"`
	Legs          []TransactionLeg  `json:"legs,omitempty"`
	Error         string            `json:"error,omitempty"`
}
