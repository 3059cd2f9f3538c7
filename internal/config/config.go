package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

// Config is the full application configuration surface. The VAT rate lives
// here and nowhere else; it is threaded into every commit as an explicit
// parameter so no component carries its own tax literal.
type Config struct {
	Port                string
	DataDir             string
	VATRate             decimal.Decimal
	DefaultMerchantName string
	LogLevel            string
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "3000"),
		DataDir:             getEnv("DATA_DIR", "./data"),
		DefaultMerchantName: getEnv("DEFAULT_MERCHANT_NAME", "unspecified"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}

	rate, err := decimal.NewFromString(getEnv("VAT_RATE", "0.15"))
	if err != nil {
		return nil, fmt.Errorf("invalid VAT_RATE: %w", err)
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("invalid VAT_RATE: must not be negative")
	}
	cfg.VATRate = rate

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
