package notify

import (
	"context"
	"time"

	"upi-payments-go/internal/models"

	"github.com/shopspring/decimal"
)

// TransactionAlert summarizes one terminal transaction for a single party.
type TransactionAlert struct {
	TransactionId string                   `json:"transaction_id"`
	UpiId         string                   `json:"upi_id"`
	Counterparty  string                   `json:"counterparty"`
	Direction     string                   `json:"direction"` // "sent" or "received"
	Amount        decimal.Decimal          `json:"amount"`
	Fee           decimal.Decimal          `json:"fee"`
	Status        models.TransactionStatus `json:"status"`
	Note          string                   `json:"note,omitempty"`
	Timestamp     time.Time                `json:"timestamp"`
}

// Dispatcher delivers transaction alerts. Delivery is best-effort: callers
// log failures and move on, a payment never fails because its alert did.
type Dispatcher interface {
	SendTransactionAlert(ctx context.Context, contact string, alert TransactionAlert) error
}
