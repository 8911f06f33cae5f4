package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger sources
const (
	SourceCSV      = "csv"
	SourceSheets   = "sheets"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

type Config struct {
	// HTTP Server
	Port           string
	MaxUploadBytes int64
	RateLimitRPS   float64
	RateLimitBurst int

	// Sessions
	SessionTTL time.Duration
	SessionMax int

	// Ledger source
	LedgerSource string
	LedgerPath   string
	AliasFile    string

	SQLiteDBPath string
	SQLiteQuery  string

	PostgresURL   string
	PostgresQuery string

	// Google Sheets
	GoogleSpreadsheetID string
	GoogleLedgerRange   string
	GoogleAlertsSheet   string

	// AMQP (optional, budget alerts)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Analysis defaults, used when a request does not say otherwise
	DefaultBudget  decimal.Decimal
	DefaultHorizon int

	LogLevel string
}

const (
	defaultSQLiteQuery   = "SELECT date, description, amount, category FROM transactions"
	defaultPostgresQuery = "SELECT date::text, description, amount::text, category FROM transactions"
)

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 20),

		SessionTTL: getEnvDuration("SESSION_TTL", 30*time.Minute),
		SessionMax: getEnvInt("SESSION_MAX", 256),

		LedgerSource: getEnv("LEDGER_SOURCE", SourceCSV),
		LedgerPath:   getEnv("LEDGER_PATH", ""),
		AliasFile:    getEnv("ALIAS_FILE", ""),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", ""),
		SQLiteQuery:  getEnv("SQLITE_QUERY", defaultSQLiteQuery),

		PostgresURL:   getEnv("POSTGRES_URL", ""),
		PostgresQuery: getEnv("POSTGRES_QUERY", defaultPostgresQuery),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleLedgerRange:   getEnv("GOOGLE_LEDGER_RANGE", "Transactions!A:Z"),
		GoogleAlertsSheet:   getEnv("GOOGLE_ALERTS_SHEET", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "spendtrend"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "budget_alerts"),

		DefaultBudget:  getEnvDecimal("DEFAULT_BUDGET", decimal.NewFromInt(500)),
		DefaultHorizon: getEnvInt("DEFAULT_HORIZON", 3),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validSources := []string{SourceCSV, SourceSheets, SourceSQLite, SourcePostgres}
	isValidSource := false
	for _, s := range validSources {
		if c.LedgerSource == s {
			isValidSource = true
			break
		}
	}
	if !isValidSource {
		errors = append(errors, fmt.Sprintf("invalid ledger source '%s': must be one of %v", c.LedgerSource, validSources))
	}

	switch c.LedgerSource {
	case SourceSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLITE_DB_PATH is required when using the sqlite ledger source")
		} else if _, err := os.Stat(c.SQLiteDBPath); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("SQLite database does not exist: %s", c.SQLiteDBPath))
		}
		if strings.TrimSpace(c.SQLiteQuery) == "" {
			errors = append(errors, "SQLITE_QUERY cannot be empty")
		}
	case SourcePostgres:
		if c.PostgresURL == "" {
			errors = append(errors, "POSTGRES_URL is required when using the postgres ledger source")
		} else if u, err := url.Parse(c.PostgresURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid POSTGRES_URL: %v", err))
		} else if u.Scheme != "postgres" && u.Scheme != "postgresql" {
			errors = append(errors, fmt.Sprintf("invalid POSTGRES_URL scheme '%s': must be 'postgres' or 'postgresql'", u.Scheme))
		}
		if strings.TrimSpace(c.PostgresQuery) == "" {
			errors = append(errors, "POSTGRES_QUERY cannot be empty")
		}
	case SourceSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "GOOGLE_SPREADSHEET_ID is required when using the sheets ledger source")
		}
		if c.GoogleLedgerRange == "" {
			errors = append(errors, "GOOGLE_LEDGER_RANGE cannot be empty when using the sheets ledger source")
		}
	}

	if c.AliasFile != "" {
		if _, err := os.Stat(c.AliasFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("alias file does not exist: %s", c.AliasFile))
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.DefaultBudget.IsNegative() {
		errors = append(errors, fmt.Sprintf("invalid default budget %s: must not be negative", c.DefaultBudget))
	}
	if c.DefaultHorizon < 1 || c.DefaultHorizon > 12 {
		errors = append(errors, fmt.Sprintf("invalid default horizon %d: must be between 1 and 12", c.DefaultHorizon))
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.SessionMax < 1 {
		errors = append(errors, fmt.Sprintf("invalid session max %d: must be at least 1", c.SessionMax))
	}
	if c.MaxUploadBytes < 1024 {
		errors = append(errors, fmt.Sprintf("invalid max upload size %d: must be at least 1024 bytes", c.MaxUploadBytes))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		errors = append(errors, "rate limit must allow at least one request")
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
