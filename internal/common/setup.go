package common

import (
	"context"
	"fmt"
	"log"
	"strings"

	"upi-payments-go/internal/database"
	"upi-payments-go/internal/models"
	"upi-payments-go/internal/network"
	"upi-payments-go/internal/notify"
	"upi-payments-go/internal/postgres"
	"upi-payments-go/internal/store"
	"upi-payments-go/internal/upi"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	}
}

type Services struct {
	Ledger     store.LedgerStore
	Gateway    network.Switch
	Dispatcher notify.Dispatcher
	Processor  *upi.Processor
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	ledger, err := openLedger(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var dispatcher notify.Dispatcher
	if len(cfg.Notify.Brokers) > 0 {
		zap.L().Info("Using Kafka alert dispatcher",
			zap.Strings("brokers", cfg.Notify.Brokers),
			zap.String("topic", cfg.Notify.Topic))
		dispatcher = notify.NewKafkaDispatcher(cfg.Notify.Brokers, cfg.Notify.Topic)
	} else {
		dispatcher = notify.NewLogDispatcher()
	}

	gateway := network.NewSimulator(cfg.Network)
	processor := upi.NewProcessor(ledger, gateway, dispatcher, cfg.Payments, cfg.Network)

	return &Services{
		Ledger:     ledger,
		Gateway:    gateway,
		Dispatcher: dispatcher,
		Processor:  processor,
	}, nil
}

// InitializeLedgerOnly opens just the ledger store, for read-only commands
// that never touch the switch or the alert pipeline.
func InitializeLedgerOnly(ctx context.Context, cfg *models.Config) (store.LedgerStore, error) {
	return openLedger(ctx, cfg)
}

func openLedger(ctx context.Context, cfg *models.Config) (store.LedgerStore, error) {
	switch cfg.Database.Backend {
	case "sqlite", "":
		return database.NewService(ctx, cfg.Database)
	case "postgres":
		return postgres.NewService(ctx, cfg.Database)
	default:
		return nil, fmt.Errorf("unknown store backend %q (expected sqlite or postgres)", cfg.Database.Backend)
	}
}

func (cs *Services) Close() {
	if closer, ok := cs.Dispatcher.(*notify.KafkaDispatcher); ok {
		if err := closer.Close(); err != nil {
			zap.L().Warn("Failed to close alert dispatcher", zap.Error(err))
		}
	}
	if cs.Ledger != nil {
		cs.Ledger.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
