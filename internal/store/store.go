package store

import (
	"context"
	"errors"
	"time"

	"upi-payments-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrAccountNotFound        = errors.New("account not found")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrDuplicateTransaction   = errors.New("duplicate transaction")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrNegativeBalance        = errors.New("balance would go negative")
)

// PlatformAccountId is the internal fee-income account. Fee legs are
// balanced against it so every transaction's legs sum to zero. The account
// is created during schema initialization.
const PlatformAccountId = "upi-platform-fees"

// CreateAccountParams contains the parameters for opening an account.
type CreateAccountParams struct {
	Id        string
	OwnerName string
	Contact   string
	Currency  string
	Balance   decimal.Decimal
	Merchant  bool
}

// LegParams describes one signed ledger leg of a payment.
type LegParams struct {
	AccountId string
	Amount    decimal.Decimal
	Kind      models.LegKind
}

// PaymentParams contains everything BeginPayment persists as PROCESSING rows:
// the audit record plus all of its legs.
type PaymentParams struct {
	TransactionId string
	SenderUpiId   string
	ReceiverUpiId string
	Amount        decimal.Decimal
	ProcessingFee decimal.Decimal
	MerchantFee   decimal.Decimal
	Reference     string
	Note          string
	Legs          []LegParams
}

// PaymentTx is the open unit of work for one payment. BeginPayment inserts
// the audit row and legs as PROCESSING and leaves the database transaction
// open; exactly one of Complete, Fail, or Rollback must then be called.
type PaymentTx interface {
	// Complete flips the audit row and all legs to COMPLETED, applies each
	// leg's signed amount to its account balance, and commits. Any balance
	// that would go negative aborts the whole unit of work.
	Complete(ctx context.Context, networkReference string) error

	// Fail flips the audit row and all legs to FAILED with the given reason
	// and commits. No balance is touched; the failed attempt stays durable
	// for traceability.
	Fail(ctx context.Context, reason string) error

	// Rollback discards the unit of work entirely (used on internal errors;
	// nothing of the attempt survives in the store).
	Rollback() error
}

// LedgerStore defines the contract that every backend (SQLite, Postgres)
// must satisfy.
type LedgerStore interface {
	// --- Accounts & UPI handles ---
	CreateAccount(ctx context.Context, params CreateAccountParams) (*models.Account, error)
	RegisterHandle(ctx context.Context, upiID, accountID string) error
	GetAccountByID(ctx context.Context, accountID string) (*models.Account, error)
	GetAccountByUpiID(ctx context.Context, upiID string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)

	// --- Payments ---
	DailyCompletedTotal(ctx context.Context, senderUpiID string, day time.Time) (decimal.Decimal, error)
	BeginPayment(ctx context.Context, params PaymentParams) (PaymentTx, error)
	GetTransaction(ctx context.Context, transactionID string) (*models.UpiTransaction, []models.TransactionLeg, error)
	ListLegsByAccount(ctx context.Context, accountID string, limit int) ([]models.TransactionLeg, error)

	// --- Lifecycle ---
	Close()
}
