package limits

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func TestValidUpiID(t *testing.T) {
	cases := []struct {
		id    string
		valid bool
	}{
		{"alice@okbank", true},
		{"a@b", true},
		{"9876543210@upi", true},
		{"alicebank", false},
		{"@okbank", false},
		{"alice@", false},
		{"alice@ok@bank", false},
		{"", false},
		{"@", false},
	}

	for _, c := range cases {
		if got := ValidUpiID(c.id); got != c.valid {
			t.Errorf("ValidUpiID(%q) = %v, want %v", c.id, got, c.valid)
		}
	}
}

func TestCheckTransfer(t *testing.T) {
	limit := dec(t, "100000")

	cases := []struct {
		name     string
		sender   string
		receiver string
		amount   string
		reason   string
		ok       bool
	}{
		{"valid transfer", "alice@okbank", "bob@okbank", "500", "", true},
		{"self transfer", "alice@okbank", "alice@okbank", "500", "Sender and receiver cannot be the same.", false},
		{"zero amount", "alice@okbank", "bob@okbank", "0", "Amount must be greater than zero.", false},
		{"negative amount", "alice@okbank", "bob@okbank", "-5", "Amount must be greater than zero.", false},
		{"over transaction limit", "alice@okbank", "bob@okbank", "100001", "Amount exceeds transaction limit of 100000.", false},
		{"at transaction limit", "alice@okbank", "bob@okbank", "100000", "", true},
		{"bad sender", "aliceokbank", "bob@okbank", "500", "Invalid sender UPI ID format.", false},
		{"bad receiver", "alice@okbank", "bob@", "500", "Invalid receiver UPI ID format.", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			reason, ok := CheckTransfer(c.sender, c.receiver, dec(t, c.amount), limit)
			if ok != c.ok {
				t.Fatalf("CheckTransfer ok = %v, want %v (reason %q)", ok, c.ok, reason)
			}
			if reason != c.reason {
				t.Errorf("CheckTransfer reason = %q, want %q", reason, c.reason)
			}
		})
	}
}

func TestCheckTransferOrder(t *testing.T) {
	// A self transfer with a malformed identity must report the self-transfer
	// reason: checks run in a fixed order and short-circuit.
	reason, ok := CheckTransfer("bad-id", "bad-id", dec(t, "10"), dec(t, "1000"))
	if ok {
		t.Fatal("expected failure")
	}
	if reason != "Sender and receiver cannot be the same." {
		t.Errorf("unexpected reason %q", reason)
	}
}

func TestCheckDailyLimit(t *testing.T) {
	dailyLimit := dec(t, "200000")

	// Exactly at the limit is allowed.
	if reason, ok := CheckDailyLimit(dec(t, "199999"), dec(t, "1"), dailyLimit); !ok {
		t.Fatalf("transfer reaching the exact daily limit rejected: %q", reason)
	}

	// One over the limit is rejected, and the reason reports both numbers.
	reason, ok := CheckDailyLimit(dec(t, "199999"), dec(t, "2"), dailyLimit)
	if ok {
		t.Fatal("transfer exceeding the daily limit accepted")
	}
	if !strings.Contains(reason, "200001") || !strings.Contains(reason, "200000") {
		t.Errorf("reason %q does not report the would-be total and the limit", reason)
	}
}
