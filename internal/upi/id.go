package upi

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewTransactionID builds a UPI transaction identifier: the "UPI" prefix, a
// UTC second-resolution timestamp, and a random suffix so identifiers minted
// in the same second stay unique.
func NewTransactionID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:10]
	return "UPI" + now.UTC().Format("20060102150405") + suffix
}
