package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"upi-payments-go/internal/models"
	"upi-payments-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

func setupTestStore(t *testing.T) (*Service, func()) {
	t.Helper()

	service, err := NewService(context.Background(), models.DatabaseConfig{
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}

	return service, service.Close
}

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func seedAccount(t *testing.T, svc *Service, id, upiID, balance string, merchant bool) *models.Account {
	t.Helper()
	ctx := context.Background()

	account, err := svc.CreateAccount(ctx, store.CreateAccountParams{
		Id:        id,
		OwnerName: id,
		Contact:   id + "@example.com",
		Currency:  "INR",
		Balance:   mustDec(t, balance),
		Merchant:  merchant,
	})
	if err != nil {
		t.Fatalf("Failed to create account %s: %v", id, err)
	}
	if err := svc.RegisterHandle(ctx, upiID, id); err != nil {
		t.Fatalf("Failed to register handle %s: %v", upiID, err)
	}
	return account
}

func balanceOf(t *testing.T, svc *Service, accountID string) decimal.Decimal {
	t.Helper()
	account, err := svc.GetAccountByID(context.Background(), accountID)
	if err != nil {
		t.Fatalf("Failed to read account %s: %v", accountID, err)
	}
	return account.Balance
}

func transferParams(t *testing.T, txID, amount string) store.PaymentParams {
	t.Helper()
	amt := mustDec(t, amount)
	return store.PaymentParams{
		TransactionId: txID,
		SenderUpiId:   "alice@okbank",
		ReceiverUpiId: "bob@okbank",
		Amount:        amt,
		ProcessingFee: decimal.Zero,
		MerchantFee:   decimal.Zero,
		Reference:     "ref-" + txID,
		Legs: []store.LegParams{
			{AccountId: "acct-alice", Amount: amt.Neg(), Kind: models.LegDebit},
			{AccountId: "acct-bob", Amount: amt, Kind: models.LegCredit},
		},
	}
}

func TestCompleteAppliesBalances(t *testing.T) {
	svc, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	seedAccount(t, svc, "acct-alice", "alice@okbank", "1000", false)
	seedAccount(t, svc, "acct-bob", "bob@okbank", "50", false)

	ptx, err := svc.BeginPayment(ctx, transferParams(t, "tx-complete-1", "300"))
	if err != nil {
		t.Fatalf("BeginPayment failed: %v", err)
	}
	if err := ptx.Complete(ctx, "SIMREF1"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if got := balanceOf(t, svc, "acct-alice"); !got.Equal(mustDec(t, "700")) {
		t.Errorf("sender balance = %s, want 700", got)
	}
	if got := balanceOf(t, svc, "acct-bob"); !got.Equal(mustDec(t, "350")) {
		t.Errorf("receiver balance = %s, want 350", got)
	}

	record, legs, err := svc.GetTransaction(ctx, "tx-complete-1")
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}
	if record.Status != models.StatusCompleted {
		t.Errorf("status = %s, want COMPLETED", record.Status)
	}
	if record.NetworkReference != "SIMREF1" {
		t.Errorf("network reference = %q, want SIMREF1", record.NetworkReference)
	}
	if record.CompletedAt == nil {
		t.Error("completed_at not set")
	}
	if len(legs) != 2 {
		t.Fatalf("got %d legs, want 2", len(legs))
	}

	sum := decimal.Zero
	for _, leg := range legs {
		if leg.Status != models.StatusCompleted {
			t.Errorf("leg %s status = %s, want COMPLETED", leg.Id, leg.Status)
		}
		sum = sum.Add(leg.Amount)
	}
	if !sum.IsZero() {
		t.Errorf("leg amounts sum to %s, want 0", sum)
	}
}

func TestFailLeavesBalancesUntouched(t *testing.T) {
	svc, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	seedAccount(t, svc, "acct-alice", "alice@okbank", "1000", false)
	seedAccount(t, svc, "acct-bob", "bob@okbank", "50", false)

	ptx, err := svc.BeginPayment(ctx, transferParams(t, "tx-fail-1", "300"))
	if err != nil {
		t.Fatalf("BeginPayment failed: %v", err)
	}
	if err := ptx.Fail(ctx, "declined by beneficiary bank"); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}

	if got := balanceOf(t, svc, "acct-alice"); !got.Equal(mustDec(t, "1000")) {
		t.Errorf("sender balance = %s, want 1000", got)
	}
	if got := balanceOf(t, svc, "acct-bob"); !got.Equal(mustDec(t, "50")) {
		t.Errorf("receiver balance = %s, want 50", got)
	}

	// The failed attempt stays durable with its legs.
	record, legs, err := svc.GetTransaction(ctx, "tx-fail-1")
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}
	if record.Status != models.StatusFailed {
		t.Errorf("status = %s, want FAILED", record.Status)
	}
	if record.FailureReason != "declined by beneficiary bank" {
		t.Errorf("failure reason = %q", record.FailureReason)
	}
	if len(legs) != 2 {
		t.Fatalf("got %d legs, want 2", len(legs))
	}
	sum := decimal.Zero
	for _, leg := range legs {
		if leg.Status != models.StatusFailed {
			t.Errorf("leg %s status = %s, want FAILED", leg.Id, leg.Status)
		}
		sum = sum.Add(leg.Amount)
	}
	if !sum.IsZero() {
		t.Errorf("leg amounts sum to %s, want 0", sum)
	}
}

func TestRollbackDiscardsAttempt(t *testing.T) {
	svc, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	seedAccount(t, svc, "acct-alice", "alice@okbank", "1000", false)
	seedAccount(t, svc, "acct-bob", "bob@okbank", "50", false)

	ptx, err := svc.BeginPayment(ctx, transferParams(t, "tx-rollback-1", "300"))
	if err != nil {
		t.Fatalf("BeginPayment failed: %v", err)
	}
	if err := ptx.Rollback(); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	_, _, err = svc.GetTransaction(ctx, "tx-rollback-1")
	if !errors.Is(err, store.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound after rollback, got %v", err)
	}
}

func TestMerchantFeeLegs(t *testing.T) {
	svc, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	seedAccount(t, svc, "acct-alice", "alice@okbank", "2000", false)
	seedAccount(t, svc, "acct-shop", "shop@okaxis", "0", true)

	// amount 1000, merchant discount 0.0025 -> fee 2.50, credit 997.50
	params := store.PaymentParams{
		TransactionId: "tx-merchant-1",
		SenderUpiId:   "alice@okbank",
		ReceiverUpiId: "shop@okaxis",
		Amount:        mustDec(t, "1000"),
		MerchantFee:   mustDec(t, "2.50"),
		ProcessingFee: decimal.Zero,
		Legs: []store.LegParams{
			{AccountId: "acct-alice", Amount: mustDec(t, "-1000"), Kind: models.LegDebit},
			{AccountId: "acct-shop", Amount: mustDec(t, "997.50"), Kind: models.LegCredit},
			{AccountId: store.PlatformAccountId, Amount: mustDec(t, "2.50"), Kind: models.LegFeeIncome},
		},
	}

	ptx, err := svc.BeginPayment(ctx, params)
	if err != nil {
		t.Fatalf("BeginPayment failed: %v", err)
	}
	if err := ptx.Complete(ctx, "SIMREF2"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if got := balanceOf(t, svc, "acct-shop"); !got.Equal(mustDec(t, "997.50")) {
		t.Errorf("merchant balance = %s, want 997.50", got)
	}
	if got := balanceOf(t, svc, store.PlatformAccountId); !got.Equal(mustDec(t, "2.50")) {
		t.Errorf("platform balance = %s, want 2.50", got)
	}
}

func TestCompleteRejectsNegativeBalance(t *testing.T) {
	svc, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	seedAccount(t, svc, "acct-alice", "alice@okbank", "100", false)
	seedAccount(t, svc, "acct-bob", "bob@okbank", "0", false)

	// The flat fee pushes the sender past their balance; the whole unit of
	// work must abort and nothing may survive.
	params := store.PaymentParams{
		TransactionId: "tx-overdraw-1",
		SenderUpiId:   "alice@okbank",
		ReceiverUpiId: "bob@okbank",
		Amount:        mustDec(t, "100"),
		ProcessingFee: mustDec(t, "10"),
		MerchantFee:   decimal.Zero,
		Legs: []store.LegParams{
			{AccountId: "acct-alice", Amount: mustDec(t, "-100"), Kind: models.LegDebit},
			{AccountId: "acct-bob", Amount: mustDec(t, "100"), Kind: models.LegCredit},
			{AccountId: "acct-alice", Amount: mustDec(t, "-10"), Kind: models.LegFee},
			{AccountId: store.PlatformAccountId, Amount: mustDec(t, "10"), Kind: models.LegFeeIncome},
		},
	}

	ptx, err := svc.BeginPayment(ctx, params)
	if err != nil {
		t.Fatalf("BeginPayment failed: %v", err)
	}
	err = ptx.Complete(ctx, "SIMREF3")
	if !errors.Is(err, store.ErrNegativeBalance) {
		t.Fatalf("expected ErrNegativeBalance, got %v", err)
	}

	if got := balanceOf(t, svc, "acct-alice"); !got.Equal(mustDec(t, "100")) {
		t.Errorf("sender balance = %s, want 100 after aborted completion", got)
	}
	if got := balanceOf(t, svc, "acct-bob"); !got.Equal(mustDec(t, "0")) {
		t.Errorf("receiver balance = %s, want 0 after aborted completion", got)
	}
	if _, _, err := svc.GetTransaction(ctx, "tx-overdraw-1"); !errors.Is(err, store.ErrTransactionNotFound) {
		t.Errorf("expected aborted attempt to leave no audit row, got %v", err)
	}
}

func TestDailyCompletedTotal(t *testing.T) {
	svc, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	seedAccount(t, svc, "acct-alice", "alice@okbank", "10000", false)
	seedAccount(t, svc, "acct-bob", "bob@okbank", "0", false)

	complete := func(txID, amount string) {
		t.Helper()
		ptx, err := svc.BeginPayment(ctx, transferParams(t, txID, amount))
		if err != nil {
			t.Fatalf("BeginPayment(%s) failed: %v", txID, err)
		}
		if err := ptx.Complete(ctx, "SIM"+txID); err != nil {
			t.Fatalf("Complete(%s) failed: %v", txID, err)
		}
	}

	complete("tx-day-1", "120.25")
	complete("tx-day-2", "79.75")

	// Failed attempts do not count towards the daily aggregate.
	ptx, err := svc.BeginPayment(ctx, transferParams(t, "tx-day-3", "500"))
	if err != nil {
		t.Fatalf("BeginPayment failed: %v", err)
	}
	if err := ptx.Fail(ctx, "network timeout"); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}

	total, err := svc.DailyCompletedTotal(ctx, "alice@okbank", time.Now().UTC())
	if err != nil {
		t.Fatalf("DailyCompletedTotal failed: %v", err)
	}
	if !total.Equal(mustDec(t, "200")) {
		t.Errorf("daily total = %s, want 200", total)
	}

	// Another identity is unaffected.
	total, err = svc.DailyCompletedTotal(ctx, "bob@okbank", time.Now().UTC())
	if err != nil {
		t.Fatalf("DailyCompletedTotal failed: %v", err)
	}
	if !total.IsZero() {
		t.Errorf("daily total for bob = %s, want 0", total)
	}
}

func TestGetTransactionNotFound(t *testing.T) {
	svc, cleanup := setupTestStore(t)
	defer cleanup()

	_, _, err := svc.GetTransaction(context.Background(), "no-such-transaction")
	if !errors.Is(err, store.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}
