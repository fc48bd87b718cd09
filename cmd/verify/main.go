package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"upi-payments-go/internal/common"
	"upi-payments-go/internal/config"
	"upi-payments-go/internal/models"

	"go.uber.org/zap"
)

func printVerification(result *models.VerificationResult) {
	common.PrintHeader("UPI TRANSACTION VERIFICATION", common.DefaultWidth)
	fmt.Printf("Transaction ID : %s\n", result.TransactionId)
	fmt.Printf("Status         : %s\n", result.Status)

	if result.Transaction != nil {
		record := result.Transaction
		fmt.Printf("Sender         : %s\n", record.SenderUpiId)
		fmt.Printf("Receiver       : %s\n", record.ReceiverUpiId)
		fmt.Printf("Amount         : %s\n", record.Amount.String())
		if record.MerchantFee.IsPositive() {
			fmt.Printf("Merchant fee   : %s\n", record.MerchantFee.String())
		}
		if record.ProcessingFee.IsPositive() {
			fmt.Printf("Processing fee : %s\n", record.ProcessingFee.String())
		}
		if record.FailureReason != "" {
			fmt.Printf("Failure reason : %s\n", record.FailureReason)
		}
		if record.NetworkReference != "" {
			fmt.Printf("Network ref    : %s\n", record.NetworkReference)
		}
		fmt.Printf("Created at     : %s\n", record.CreatedAt.Format("2006-01-02 15:04:05 MST"))
		if record.CompletedAt != nil {
			fmt.Printf("Completed at   : %s\n", record.CompletedAt.Format("2006-01-02 15:04:05 MST"))
		}
	}

	if len(result.Legs) > 0 {
		fmt.Println("\nLedger legs:")
		for i, leg := range result.Legs {
			fmt.Printf("%s %-12s %-22s %s\n",
				common.BoxPrefix(i == len(result.Legs)-1),
				leg.Kind, leg.AccountId, leg.Amount.String())
		}
	}
	common.PrintSeparator("=", common.DefaultWidth)
}

func main() {
	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	idFlag := flag.String("id", "", "Transaction identifier to verify (required)")
	flag.Parse()

	if *idFlag == "" {
		fmt.Fprintln(os.Stderr, "Error: --id is required")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	printVerification(services.Processor.VerifyTransaction(ctx, *idFlag))
}
