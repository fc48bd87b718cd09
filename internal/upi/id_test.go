package upi

import (
	"strings"
	"testing"
	"time"
)

func TestNewTransactionIDFormat(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	id := NewTransactionID(now)

	if !strings.HasPrefix(id, "UPI20260314092653") {
		t.Errorf("id = %q, want UPI20260314092653 prefix", id)
	}
	if len(id) != len("UPI20060102150405")+10 {
		t.Errorf("id length = %d, want %d", len(id), len("UPI20060102150405")+10)
	}
	if id != strings.ToUpper(id) {
		t.Errorf("id %q contains lowercase characters", id)
	}
}

func TestNewTransactionIDUnique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewTransactionID(now)
		if seen[id] {
			t.Fatalf("duplicate id %q within one second", id)
		}
		seen[id] = true
	}
}
