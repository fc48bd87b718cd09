package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a UPI transaction and its legs.
type TransactionStatus string

const (
	StatusProcessing TransactionStatus = "PROCESSING"
	StatusCompleted  TransactionStatus = "COMPLETED"
	StatusFailed     TransactionStatus = "FAILED"

	// StatusUnknown is never persisted. Verification reports it when the
	// transaction identifier does not resolve to a committed row.
	StatusUnknown TransactionStatus = "UNKNOWN"
)

// LegKind classifies one side of a transaction in the ledger.
type LegKind string

const (
	LegDebit     LegKind = "debit"
	LegCredit    LegKind = "credit"
	LegFee       LegKind = "fee"
	LegFeeIncome LegKind = "fee_income"
)

// Account holds the current balance state for one ledger account.
// A merchant account attracts a discount fee on every credit it receives.
type Account struct {
	Id        string          `db:"id"`
	OwnerName string          `db:"owner_name"`
	Contact   string          `db:"contact"`
	Currency  string          `db:"currency"`
	Balance   decimal.Decimal `db:"balance"`
	Merchant  bool            `db:"merchant"`
	Status    string          `db:"status"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// UpiTransaction is the immutable audit record of one payment attempt.
// It reaches exactly one of two terminal states and is never mutated after.
type UpiTransaction struct {
	Id               string            `db:"id"`
	SenderUpiId      string            `db:"sender_upi_id"`
	ReceiverUpiId    string            `db:"receiver_upi_id"`
	Amount           decimal.Decimal   `db:"amount"`
	ProcessingFee    decimal.Decimal   `db:"processing_fee"`
	MerchantFee      decimal.Decimal   `db:"merchant_fee"`
	Reference        string            `db:"reference"`
	Note             string            `db:"note"`
	Status           TransactionStatus `db:"status"`
	FailureReason    string            `db:"failure_reason"`
	NetworkReference string            `db:"network_reference"`
	CreatedAt        time.Time         `db:"created_at"`
	CompletedAt      *time.Time        `db:"completed_at"`
}

// TransactionLeg is one account's signed side of a UpiTransaction.
// The signed amounts of all legs of one transaction always sum to zero.
type TransactionLeg struct {
	Id            string            `db:"id"`
	TransactionId string            `db:"transaction_id"`
	AccountId     string            `db:"account_id"`
	Amount        decimal.Decimal   `db:"amount"`
	Kind          LegKind           `db:"kind"`
	Status        TransactionStatus `db:"status"`
	CreatedAt     time.Time         `db:"created_at"`
}
