package notify

import (
	"context"

	"go.uber.org/zap"
)

// Compile-time check: *LogDispatcher must satisfy Dispatcher.
var _ Dispatcher = (*LogDispatcher)(nil)

// LogDispatcher writes alerts to the application log. Used when no Kafka
// brokers are configured (local development, tests).
type LogDispatcher struct{}

func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

func (d *LogDispatcher) SendTransactionAlert(_ context.Context, contact string, alert TransactionAlert) error {
	zap.L().Info("Transaction alert",
		zap.String("contact", contact),
		zap.String("transaction_id", alert.TransactionId),
		zap.String("upi_id", alert.UpiId),
		zap.String("counterparty", alert.Counterparty),
		zap.String("direction", alert.Direction),
		zap.String("amount", alert.Amount.String()),
		zap.String("status", string(alert.Status)))
	return nil
}
