package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Storage     string
	Database    DatabaseConfig
	Session     SessionConfig
	Shipping    ShippingConfig
	Client      ClientConfig
	LogLevel    string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type SessionConfig struct {
	TTL time.Duration
}

type ShippingConfig struct {
	StandardRate          decimal.Decimal
	ExpressRate           decimal.Decimal
	FreeStandardThreshold decimal.Decimal
}

// ClientConfig configures the shop CLI
type ClientConfig struct {
	APIURL    string
	StateFile string
}

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	ttl, err := time.ParseDuration(getEnvOrViper("SESSION_TTL", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	standard, err := getDecimal("SHIPPING_STANDARD_RATE", "15.00")
	if err != nil {
		return nil, err
	}
	express, err := getDecimal("SHIPPING_EXPRESS_RATE", "35.00")
	if err != nil {
		return nil, err
	}
	threshold, err := getDecimal("SHIPPING_FREE_THRESHOLD", "200.00")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Storage:     getEnvOrViper("STORAGE", StoragePostgres),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "storefront"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Session: SessionConfig{TTL: ttl},
		Shipping: ShippingConfig{
			StandardRate:          standard,
			ExpressRate:           express,
			FreeStandardThreshold: threshold,
		},
		Client: ClientConfig{
			APIURL:    getEnvOrViper("STOREFRONT_API_URL", "http://localhost:8080"),
			StateFile: getEnvOrViper("STOREFRONT_STATE_FILE", defaultStateFile()),
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	if cfg.Storage != StoragePostgres && cfg.Storage != StorageMemory {
		return nil, fmt.Errorf("STORAGE must be %q or %q", StoragePostgres, StorageMemory)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getDecimal(key, defaultValue string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getEnvOrViper(key, defaultValue))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func defaultStateFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rugstore.json"
	}
	return home + string(os.PathSeparator) + ".rugstore.json"
}
