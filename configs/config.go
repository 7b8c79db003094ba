package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Storage StorageConfig
	Market  MarketConfig
	Auth    AuthConfig
	Trading TradingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port    string
	OpsPort string
	Env     string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level string
}

// StorageConfig selects the account store
type StorageConfig struct {
	Driver      string // "file" or "postgres"
	DataDir     string
	DatabaseURL string
}

// MarketConfig holds quote feed configuration
type MarketConfig struct {
	Provider         string // "coindesk", "binance" or "static"
	Assets           string
	QuotesFile       string
	RefreshCron      string
	CoinDeskBaseURL  string
	BinanceAPIKey    string
	BinanceSecretKey string
}

// AuthConfig holds session and credential configuration
type AuthConfig struct {
	JWTSecret       string
	AdminUsernames  []string
	PasswordStorage string // "plain" or "bcrypt"
}

// TradingConfig holds trade checks
type TradingConfig struct {
	// PriceTolerance > 0 rejects trades whose USD side deviates from
	// quantity × price by more than this fraction
	PriceTolerance float64
}

const devJWTSecret = "dev-secret-change-me"

// Load loads configuration from environment variables
func Load() (*Config, error) {
	tolerance, err := strconv.ParseFloat(getEnv("TRADE_PRICE_TOLERANCE", "0"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TRADE_PRICE_TOLERANCE: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			OpsPort: getEnv("OPS_PORT", "9090"),
			Env:     getEnv("APP_ENV", "development"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(getEnv("STORAGE_DRIVER", "file")),
			DataDir:     getEnv("DATA_DIR", "user_data"),
			DatabaseURL: getEnv("DATABASE_URL", ""),
		},
		Market: MarketConfig{
			Provider:         strings.ToLower(getEnv("MARKET_PROVIDER", "coindesk")),
			Assets:           getEnv("MARKET_ASSETS", ""),
			QuotesFile:       getEnv("MARKET_QUOTES_FILE", "configs/quotes.example.yaml"),
			RefreshCron:      getEnv("MARKET_REFRESH_CRON", "@every 1m"),
			CoinDeskBaseURL:  getEnv("COINDESK_BASE_URL", ""),
			BinanceAPIKey:    getEnv("BINANCE_API_KEY", ""),
			BinanceSecretKey: getEnv("BINANCE_SECRET_KEY", ""),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("JWT_SECRET", ""),
			AdminUsernames:  splitList(getEnv("ADMIN_USERNAMES", "")),
			PasswordStorage: strings.ToLower(getEnv("PASSWORD_STORAGE", "plain")),
		},
		Trading: TradingConfig{
			PriceTolerance: tolerance,
		},
	}

	if cfg.Auth.JWTSecret == "" && cfg.Server.Env != "production" {
		cfg.Auth.JWTSecret = devJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected drivers have what they need
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "file":
		if c.Storage.DataDir == "" {
			return fmt.Errorf("DATA_DIR is required for the file store")
		}
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (want file or postgres)", c.Storage.Driver)
	}

	switch c.Market.Provider {
	case "coindesk", "binance":
	case "static":
		if c.Market.QuotesFile == "" {
			return fmt.Errorf("MARKET_QUOTES_FILE is required for the static provider")
		}
	default:
		return fmt.Errorf("unknown MARKET_PROVIDER %q (want coindesk, binance or static)", c.Market.Provider)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.Trading.PriceTolerance < 0 {
		return fmt.Errorf("TRADE_PRICE_TOLERANCE must not be negative")
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
