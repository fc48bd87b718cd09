package network

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"upi-payments-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Compile-time check: *Simulator must satisfy Switch.
var _ Switch = (*Simulator)(nil)

var declineReasons = []string{
	"declined by beneficiary bank",
	"remitter bank unavailable",
	"switch rejected the transaction",
}

// Simulator models the external payment switch: bounded random latency and
// nondeterministic accept/decline with a configured success rate.
type Simulator struct {
	successRate float64
	minLatency  time.Duration
	maxLatency  time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulator(cfg models.NetworkConfig) *Simulator {
	return &Simulator{
		successRate: cfg.SuccessRate,
		minLatency:  cfg.MinLatency,
		maxLatency:  cfg.MaxLatency,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Simulator) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	latency := s.randomLatency()

	timer := time.NewTimer(latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return SubmitResult{}, ctx.Err()
	case <-timer.C:
	}

	if s.roll() < s.successRate {
		reference := "SIM" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:11]
		zap.L().Debug("Switch accepted transaction",
			zap.String("transaction_id", req.TransactionId),
			zap.String("reference", reference),
			zap.Duration("latency", latency))
		return SubmitResult{Accepted: true, Reference: reference}, nil
	}

	reason := s.declineReason()
	zap.L().Debug("Switch declined transaction",
		zap.String("transaction_id", req.TransactionId),
		zap.String("reason", reason),
		zap.Duration("latency", latency))
	return SubmitResult{Accepted: false, Reason: reason}, nil
}

func (s *Simulator) randomLatency() time.Duration {
	if s.maxLatency <= s.minLatency {
		return s.minLatency
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minLatency + time.Duration(s.rng.Int63n(int64(s.maxLatency-s.minLatency)))
}

func (s *Simulator) roll() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *Simulator) declineReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return declineReasons[s.rng.Intn(len(declineReasons))]
}
