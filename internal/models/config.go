package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Payments PaymentsConfig
	Network  NetworkConfig
	Notify   NotifyConfig
}

// DatabaseConfig holds ledger store connection settings
type DatabaseConfig struct {
	Backend         string // "sqlite" or "postgres"
	Path            string // SQLite database file
	PostgresDSN     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	SeedFile        string
}

// PaymentsConfig holds the limit and fee policy, loaded once at startup.
type PaymentsConfig struct {
	TransactionLimit     decimal.Decimal
	DailyLimit           decimal.Decimal
	ProcessingFee        decimal.Decimal
	MerchantDiscountRate decimal.Decimal
}

// NetworkConfig holds payment-switch submission settings.
type NetworkConfig struct {
	Timeout     time.Duration
	Retries     int
	SuccessRate float64
	MinLatency  time.Duration
	MaxLatency  time.Duration
}

// NotifyConfig holds transaction-alert dispatch settings. An empty broker
// list selects the log dispatcher instead of Kafka.
type NotifyConfig struct {
	Brokers []string
	Topic   string
}
