package network

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"upi-payments-go/internal/models"

	"github.com/shopspring/decimal"
)

func testRequest() SubmitRequest {
	return SubmitRequest{
		TransactionId: "UPI20260101000000ABCDEF1234",
		SenderUpiId:   "alice@okbank",
		ReceiverUpiId: "bob@okbank",
		Amount:        decimal.NewFromInt(100),
	}
}

func TestSimulatorAlwaysAccepts(t *testing.T) {
	sim := NewSimulator(models.NetworkConfig{SuccessRate: 1.0})

	res, err := sim.Submit(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !res.Accepted {
		t.Fatalf("expected accept, got decline: %q", res.Reason)
	}
	if !strings.HasPrefix(res.Reference, "SIM") {
		t.Errorf("unexpected switch reference %q", res.Reference)
	}
}

func TestSimulatorAlwaysDeclines(t *testing.T) {
	sim := NewSimulator(models.NetworkConfig{SuccessRate: 0.0})

	res, err := sim.Submit(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if res.Accepted {
		t.Fatal("expected decline, got accept")
	}
	if res.Reason == "" {
		t.Error("decline carries no reason")
	}
}

func TestSimulatorHonorsContextDeadline(t *testing.T) {
	sim := NewSimulator(models.NetworkConfig{
		SuccessRate: 1.0,
		MinLatency:  time.Second,
		MaxLatency:  2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := sim.Submit(ctx, testRequest())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestSimulatorLatencyBounds(t *testing.T) {
	sim := NewSimulator(models.NetworkConfig{
		SuccessRate: 1.0,
		MinLatency:  5 * time.Millisecond,
		MaxLatency:  20 * time.Millisecond,
	})

	start := time.Now()
	if _, err := sim.Submit(context.Background(), testRequest()); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Errorf("call returned in %v, below the minimum latency", elapsed)
	}
}
