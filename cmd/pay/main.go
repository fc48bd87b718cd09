package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"upi-payments-go/internal/common"
	"upi-payments-go/internal/config"
	"upi-payments-go/internal/models"
	"upi-payments-go/internal/upi"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func parseAndValidateFlags() (*upi.PaymentRequest, error) {
	fromFlag := flag.String("from", "", "Sender UPI ID (required)")
	toFlag := flag.String("to", "", "Receiver UPI ID (required)")
	amountFlag := flag.String("amount", "", "Amount to transfer (required)")
	noteFlag := flag.String("note", "", "Optional note attached to the payment")
	referenceFlag := flag.String("reference", "", "Optional caller reference")
	flag.Parse()

	if *fromFlag == "" || *toFlag == "" || *amountFlag == "" {
		return nil, fmt.Errorf("required flags: --from, --to, --amount")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	return &upi.PaymentRequest{
		Sender:    *fromFlag,
		Receiver:  *toFlag,
		Amount:    amount,
		Note:      *noteFlag,
		Reference: *referenceFlag,
	}, nil
}

func printResult(result *models.PaymentResult) {
	common.PrintHeader("UPI PAYMENT", common.DefaultWidth)
	fmt.Printf("Transaction ID : %s\n", result.TransactionId)
	fmt.Printf("Status         : %s\n", result.Status)
	if result.Status == models.StatusCompleted {
		fmt.Printf("Amount         : %s\n", result.Amount.String())
		fmt.Printf("Fee            : %s\n", result.Fee.String())
		fmt.Printf("Network ref    : %s\n", result.Reference)
		fmt.Printf("Completed at   : %s\n", result.Timestamp.Format("2006-01-02 15:04:05 MST"))
	} else {
		fmt.Printf("Reason         : %s\n", result.Error)
	}
	common.PrintSeparator("=", common.DefaultWidth)
}

func main() {
	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	request, err := parseAndValidateFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
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

	result := services.Processor.ProcessPayment(ctx, *request)
	printResult(result)

	if result.Status != models.StatusCompleted {
		os.Exit(1)
	}
}
