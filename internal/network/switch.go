package network

import (
	"context"

	"github.com/shopspring/decimal"
)

// SubmitRequest carries one payment to the external switch.
type SubmitRequest struct {
	TransactionId string
	SenderUpiId   string
	ReceiverUpiId string
	Amount        decimal.Decimal
}

// SubmitResult is the switch's binary verdict. Accepted carries the switch's
// own reference; a decline carries a reason. A returned error means the call
// itself failed (transport fault, timeout) and may be retried; a decline is
// final.
type SubmitResult struct {
	Accepted  bool
	Reference string
	Reason    string
}

// Switch is the boundary to the external payment network. The production
// implementation would wrap a real switch client; the simulator stands in
// for it here, and tests inject deterministic stubs.
type Switch interface {
	Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error)
}
