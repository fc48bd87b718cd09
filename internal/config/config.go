package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"upi-payments-go/internal/models"

	"github.com/shopspring/decimal"
)

func Load() (*models.Config, error) {
	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	networkTimeout, err := getEnvDuration("NETWORK_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	minLatency, err := getEnvDuration("NETWORK_MIN_LATENCY", 50*time.Millisecond)
	if err != nil {
		return nil, err
	}

	maxLatency, err := getEnvDuration("NETWORK_MAX_LATENCY", 400*time.Millisecond)
	if err != nil {
		return nil, err
	}

	transactionLimit, err := getEnvDecimal("TRANSACTION_LIMIT", "100000")
	if err != nil {
		return nil, err
	}

	dailyLimit, err := getEnvDecimal("DAILY_LIMIT", "200000")
	if err != nil {
		return nil, err
	}

	processingFee, err := getEnvDecimal("PROCESSING_FEE", "0")
	if err != nil {
		return nil, err
	}

	merchantDiscountRate, err := getEnvDecimal("MERCHANT_DISCOUNT_RATE", "0.0025")
	if err != nil {
		return nil, err
	}

	return &models.Config{
		Database: models.DatabaseConfig{
			Backend:         getEnvString("STORE_BACKEND", "sqlite"),
			Path:            getEnvString("DATABASE_PATH", "upi.db"),
			PostgresDSN:     getEnvString("POSTGRES_DSN", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
			SeedFile:        getEnvString("SEED_FILE", "accounts.yaml"),
		},
		Payments: models.PaymentsConfig{
			TransactionLimit:     transactionLimit,
			DailyLimit:           dailyLimit,
			ProcessingFee:        processingFee,
			MerchantDiscountRate: merchantDiscountRate,
		},
		Network: models.NetworkConfig{
			Timeout:     networkTimeout,
			Retries:     getEnvInt("NETWORK_RETRIES", 1),
			SuccessRate: getEnvFloat("NETWORK_SUCCESS_RATE", 0.9),
			MinLatency:  minLatency,
			MaxLatency:  maxLatency,
		},
		Notify: models.NotifyConfig{
			Brokers: getEnvList("KAFKA_BROKERS"),
			Topic:   getEnvString("ALERT_TOPIC", "upi.transaction.alerts"),
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDecimal(key, defaultValue string) (decimal.Decimal, error) {
	raw := getEnvString(key, defaultValue)
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal for %s: %q (%w)", key, raw, err)
	}
	return value, nil
}

// getEnvList splits a comma-separated environment value, dropping empty
// entries. An unset variable yields nil.
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
