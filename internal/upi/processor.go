package upi

import (
	"context"
	"errors"
	"time"

	"upi-payments-go/internal/limits"
	"upi-payments-go/internal/models"
	"upi-payments-go/internal/network"
	"upi-payments-go/internal/notify"
	"upi-payments-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentRequest is one transfer attempt as the caller states it.
type PaymentRequest struct {
	Sender    string
	Receiver  string
	Amount    decimal.Decimal
	Reference string
	Note      string
}

// Processor drives the full payment pipeline: limit policy, account
// resolution, fee computation, the ledger unit of work around the switch
// submission, and alert dispatch.
type Processor struct {
	ledger     store.LedgerStore
	gateway    network.Switch
	dispatcher notify.Dispatcher
	payments   models.PaymentsConfig
	netCfg     models.NetworkConfig
}

func NewProcessor(ledger store.LedgerStore, gateway network.Switch, dispatcher notify.Dispatcher,
	payments models.PaymentsConfig, netCfg models.NetworkConfig) *Processor {
	return &Processor{
		ledger:     ledger,
		gateway:    gateway,
		dispatcher: dispatcher,
		payments:   payments,
		netCfg:     netCfg,
	}
}

// ProcessPayment runs one payment end to end and always returns a structured
// result; expected failures (limits, unknown accounts, insufficient balance,
// switch declines) come back as FAILED results, never as panics. Attempts
// rejected before the unit of work opens leave no rows behind.
func (p *Processor) ProcessPayment(ctx context.Context, req PaymentRequest) *models.PaymentResult {
	now := time.Now().UTC()
	transactionID := NewTransactionID(now)

	zap.L().Info("Processing payment",
		zap.String("transaction_id", transactionID),
		zap.String("sender", req.Sender),
		zap.String("receiver", req.Receiver),
		zap.String("amount", req.Amount.String()))

	if reason, ok := limits.CheckTransfer(req.Sender, req.Receiver, req.Amount, p.payments.TransactionLimit); !ok {
		return p.rejectedResult(transactionID, reason)
	}

	completedToday, err := p.ledger.DailyCompletedTotal(ctx, req.Sender, now)
	if err != nil {
		zap.L().Error("Failed to read daily total", zap.String("transaction_id", transactionID), zap.Error(err))
		return p.internalFailure(transactionID)
	}
	if reason, ok := limits.CheckDailyLimit(completedToday, req.Amount, p.payments.DailyLimit); !ok {
		return p.rejectedResult(transactionID, reason)
	}

	sender, err := p.ledger.GetAccountByUpiID(ctx, req.Sender)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return p.rejectedResult(transactionID, "Sender account not found.")
		}
		zap.L().Error("Failed to resolve sender", zap.String("transaction_id", transactionID), zap.Error(err))
		return p.internalFailure(transactionID)
	}

	receiver, err := p.ledger.GetAccountByUpiID(ctx, req.Receiver)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return p.rejectedResult(transactionID, "Receiver account not found.")
		}
		zap.L().Error("Failed to resolve receiver", zap.String("transaction_id", transactionID), zap.Error(err))
		return p.internalFailure(transactionID)
	}

	if sender.Balance.LessThan(req.Amount) {
		return p.rejectedResult(transactionID, "Insufficient balance.")
	}

	processingFee := p.payments.ProcessingFee
	merchantFee := decimal.Zero
	if receiver.Merchant {
		merchantFee = req.Amount.Mul(p.payments.MerchantDiscountRate).Round(2)
	}

	legs := []store.LegParams{
		{AccountId: sender.Id, Amount: req.Amount.Neg(), Kind: models.LegDebit},
		{AccountId: receiver.Id, Amount: req.Amount.Sub(merchantFee), Kind: models.LegCredit},
	}
	if processingFee.IsPositive() {
		legs = append(legs, store.LegParams{
			AccountId: sender.Id, Amount: processingFee.Neg(), Kind: models.LegFee,
		})
	}
	if platformIncome := merchantFee.Add(processingFee); platformIncome.IsPositive() {
		legs = append(legs, store.LegParams{
			AccountId: store.PlatformAccountId, Amount: platformIncome, Kind: models.LegFeeIncome,
		})
	}

	paymentTx, err := p.ledger.BeginPayment(ctx, store.PaymentParams{
		TransactionId: transactionID,
		SenderUpiId:   req.Sender,
		ReceiverUpiId: req.Receiver,
		Amount:        req.Amount,
		ProcessingFee: processingFee,
		MerchantFee:   merchantFee,
		Reference:     req.Reference,
		Note:          req.Note,
		Legs:          legs,
	})
	if err != nil {
		zap.L().Error("Failed to open payment unit of work", zap.String("transaction_id", transactionID), zap.Error(err))
		return p.internalFailure(transactionID)
	}

	verdict := p.submitWithRetry(ctx, network.SubmitRequest{
		TransactionId: transactionID,
		SenderUpiId:   req.Sender,
		ReceiverUpiId: req.Receiver,
		Amount:        req.Amount,
	})

	if !verdict.Accepted {
		if err := paymentTx.Fail(ctx, verdict.Reason); err != nil {
			zap.L().Error("Failed to record failed payment", zap.String("transaction_id", transactionID), zap.Error(err))
			return p.internalFailure(transactionID)
		}
		return p.rejectedResult(transactionID, verdict.Reason)
	}

	if err := paymentTx.Complete(ctx, verdict.Reference); err != nil {
		if errors.Is(err, store.ErrNegativeBalance) {
			return p.rejectedResult(transactionID, "Insufficient balance.")
		}
		zap.L().Error("Failed to commit payment", zap.String("transaction_id", transactionID), zap.Error(err))
		return p.internalFailure(transactionID)
	}

	completedAt := time.Now().UTC()
	p.dispatchAlerts(ctx, transactionID, req, sender, receiver, processingFee, merchantFee, completedAt)

	return &models.PaymentResult{
		Status:        models.StatusCompleted,
		TransactionId: transactionID,
		Timestamp:     completedAt,
		Amount:        req.Amount,
		Fee:           processingFee,
		Reference:     verdict.Reference,
	}
}

// submitWithRetry calls the switch up to 1+Retries times, each attempt under
// its own timeout. A decline is final and returned as-is; only transport
// errors are retried. Exhausted retries are reported as a decline so the
// caller records a FAILED audit row either way.
func (p *Processor) submitWithRetry(ctx context.Context, req network.SubmitRequest) network.SubmitResult {
	var lastErr error
	for attempt := 0; attempt <= p.netCfg.Retries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, p.netCfg.Timeout)
		result, err := p.gateway.Submit(attemptCtx, req)
		cancel()
		if err == nil {
			return result
		}

		lastErr = err
		zap.L().Warn("Switch submission attempt failed",
			zap.String("transaction_id", req.TransactionId),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}

	if errors.Is(lastErr, context.DeadlineExceeded) {
		return network.SubmitResult{Accepted: false, Reason: "network timeout"}
	}
	return network.SubmitResult{Accepted: false, Reason: "network error: " + lastErr.Error()}
}

// dispatchAlerts notifies both parties of a completed payment. Merchant
// receivers are skipped; they reconcile through settlement reports instead.
// Alert failures are logged and swallowed.
func (p *Processor) dispatchAlerts(ctx context.Context, transactionID string, req PaymentRequest,
	sender, receiver *models.Account, processingFee, merchantFee decimal.Decimal, completedAt time.Time) {

	senderAlert := notify.TransactionAlert{
		TransactionId: transactionID,
		UpiId:         req.Sender,
		Counterparty:  req.Receiver,
		Direction:     "sent",
		Amount:        req.Amount,
		Fee:           processingFee,
		Status:        models.StatusCompleted,
		Note:          req.Note,
		Timestamp:     completedAt,
	}
	if err := p.dispatcher.SendTransactionAlert(ctx, sender.Contact, senderAlert); err != nil {
		zap.L().Warn("Failed to send sender alert",
			zap.String("transaction_id", transactionID), zap.Error(err))
	}

	if receiver.Merchant {
		return
	}

	receiverAlert := notify.TransactionAlert{
		TransactionId: transactionID,
		UpiId:         req.Receiver,
		Counterparty:  req.Sender,
		Direction:     "received",
		Amount:        req.Amount.Sub(merchantFee),
		Fee:           decimal.Zero,
		Status:        models.StatusCompleted,
		Note:          req.Note,
		Timestamp:     completedAt,
	}
	if err := p.dispatcher.SendTransactionAlert(ctx, receiver.Contact, receiverAlert); err != nil {
		zap.L().Warn("Failed to send receiver alert",
			zap.String("transaction_id", transactionID), zap.Error(err))
	}
}

// VerifyTransaction looks up a transaction's terminal state. An identifier
// that resolves to no committed row reports UNKNOWN rather than an error, so
// a payment that was rolled back and a payment that never existed look the
// same to the caller.
func (p *Processor) VerifyTransaction(ctx context.Context, transactionID string) *models.VerificationResult {
	record, legs, err := p.ledger.GetTransaction(ctx, transactionID)
	if err != nil {
		if errors.Is(err, store.ErrTransactionNotFound) {
			return &models.VerificationResult{
				TransactionId: transactionID,
				Status:        models.StatusUnknown,
			}
		}
		zap.L().Error("Failed to look up transaction", zap.String("transaction_id", transactionID), zap.Error(err))
		return &models.VerificationResult{
			TransactionId: transactionID,
			Status:        models.StatusUnknown,
			Error:         "Unable to verify transaction.",
		}
	}

	return &models.VerificationResult{
		TransactionId: transactionID,
		Status:        record.Status,
		Transaction:   record,
		Legs:          legs,
	}
}

func (p *Processor) rejectedResult(transactionID, reason string) *models.PaymentResult {
	zap.L().Info("Payment rejected",
		zap.String("transaction_id", transactionID),
		zap.String("reason", reason))
	return &models.PaymentResult{
		Status:        models.StatusFailed,
		TransactionId: transactionID,
		Error:         reason,
	}
}

func (p *Processor) internalFailure(transactionID string) *models.PaymentResult {
	return &models.PaymentResult{
		Status:        models.StatusFailed,
		TransactionId: transactionID,
		Error:         "Unable to process payment.",
	}
}
