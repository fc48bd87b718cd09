package main

import (
	"context"
	"flag"
	"fmt"

	"upi-payments-go/internal/common"
	"upi-payments-go/internal/config"
	"upi-payments-go/internal/models"

	"go.uber.org/zap"
)

func printAccount(account models.Account, legCount int, isLast bool) {
	kind := "person"
	if account.Merchant {
		kind = "merchant"
	}
	fmt.Printf("%s %-24s %-10s %20s %s (legs: %d, updated: %s)\n",
		common.BoxPrefix(isLast),
		account.OwnerName,
		kind,
		account.Balance.String(),
		account.Currency,
		legCount,
		account.UpdatedAt.Format("2006-01-02 15:04:05"))
}

func main() {
	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	legsFlag := flag.Int("legs", 5, "Recent ledger legs to count per account")
	flag.Parse()

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

	accounts, err := ledger.ListAccounts(ctx)
	if err != nil {
		zap.L().Fatal("Failed to list accounts", zap.Error(err))
	}

	common.PrintHeader("ACCOUNT BALANCES", common.DefaultWidth)
	for i, account := range accounts {
		legs, err := ledger.ListLegsByAccount(ctx, account.Id, *legsFlag)
		if err != nil {
			zap.L().Fatal("Failed to list account legs",
				zap.String("account_id", account.Id), zap.Error(err))
		}
		printAccount(account, len(legs), i == len(accounts)-1)
	}
	common.PrintFooter(fmt.Sprintf("%d accounts", len(accounts)), common.DefaultWidth)
}
