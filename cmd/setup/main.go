package main

import (
	"context"
	"errors"
	"fmt"

	"upi-payments-go/internal/common"
	"upi-payments-go/internal/config"
	"upi-payments-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func seedLedger(ctx context.Context, ledger store.LedgerStore, accounts []common.SeedAccount) (created, skipped int, err error) {
	for _, seed := range accounts {
		if _, lookupErr := ledger.GetAccountByID(ctx, seed.Id); lookupErr == nil {
			zap.L().Info("Account already exists, skipping", zap.String("id", seed.Id))
			skipped++
			continue
		} else if !errors.Is(lookupErr, store.ErrAccountNotFound) {
			return created, skipped, lookupErr
		}

		balance, parseErr := decimal.NewFromString(seed.Balance)
		if parseErr != nil {
			return created, skipped, fmt.Errorf("account %s has invalid balance %q: %w", seed.Id, seed.Balance, parseErr)
		}

		currency := seed.Currency
		if currency == "" {
			currency = "INR"
		}

		if _, createErr := ledger.CreateAccount(ctx, store.CreateAccountParams{
			Id:        seed.Id,
			OwnerName: seed.Name,
			Contact:   seed.Contact,
			Currency:  currency,
			Balance:   balance,
			Merchant:  seed.Merchant,
		}); createErr != nil {
			return created, skipped, createErr
		}

		for _, upiID := range seed.UpiIds {
			if handleErr := ledger.RegisterHandle(ctx, upiID, seed.Id); handleErr != nil {
				return created, skipped, handleErr
			}
		}
		created++
	}
	return created, skipped, nil
}

func main() {
	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	ledger, err := common.InitializeLedgerOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize ledger store", zap.Error(err))
	}
	defer ledger.Close()

	accounts, err := common.LoadSeedAccounts(cfg.Database.SeedFile)
	if err != nil {
		zap.L().Fatal("Failed to load seed accounts", zap.Error(err))
	}

	common.PrintHeader("UPI LEDGER SETUP", common.DefaultWidth)
	fmt.Printf("Seed file: %s (%d accounts)\n", cfg.Database.SeedFile, len(accounts))

	created, skipped, err := seedLedger(ctx, ledger, accounts)
	if err != nil {
		zap.L().Fatal("Failed to seed ledger", zap.Error(err))
	}

	common.PrintFooter(fmt.Sprintf("Setup complete: %d created, %d already existed", created, skipped), common.DefaultWidth)
}
