package limits

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidUpiID reports whether id has the form localpart@handle with exactly
// one '@' and both sides non-empty.
func ValidUpiID(id string) bool {
	parts := strings.Split(id, "@")
	return len(parts) == 2 && parts[0] != "" && parts[1] != ""
}

// CheckTransfer runs the stateless limit checks in their fixed order and
// returns the first failure reason. The checks are evaluated before any
// ledger access, so a failure here has no side effect.
func CheckTransfer(sender, receiver string, amount, transactionLimit decimal.Decimal) (string, bool) {
	if sender == receiver {
		return "Sender and receiver cannot be the same.", false
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return "Amount must be greater than zero.", false
	}
	if amount.GreaterThan(transactionLimit) {
		return fmt.Sprintf("Amount exceeds transaction limit of %s.", transactionLimit.String()), false
	}
	if !ValidUpiID(sender) {
		return "Invalid sender UPI ID format.", false
	}
	if !ValidUpiID(receiver) {
		return "Invalid receiver UPI ID format.", false
	}
	return "", true
}

// CheckDailyLimit validates the proposed amount against the aggregate daily
// ceiling, given the sender's completed total for the day. The failure reason
// reports both the would-be total and the configured limit.
func CheckDailyLimit(completedToday, amount, dailyLimit decimal.Decimal) (string, bool) {
	total := completedToday.Add(amount)
	if total.GreaterThan(dailyLimit) {
		return fmt.Sprintf("Transaction would bring today's total to %s, exceeding the daily limit of %s.",
			total.String(), dailyLimit.String()), false
	}
	return "", true
}
