package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Logger     LoggerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	AMQP       AMQPConfig
	Auth       AuthConfig
	Ledger     LedgerConfig
	Identifier IdentifierConfig
	Jobs       JobsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	ConnMaxLifetime time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
}

// RedisConfig holds the connection used for pending workflow state.
// An empty URL selects the in-process store.
type RedisConfig struct {
	URL       string
	KeyPrefix string
}

// AMQPConfig holds the RabbitMQ connection used for notifications and report requests.
// An empty URL selects the log-only notifier.
type AMQPConfig struct {
	URL      string
	Exchange string
}

// AuthConfig holds bearer token verification settings
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// LedgerConfig holds ledger business settings
type LedgerConfig struct {
	OTPTTL              time.Duration
	PendingOperationTTL time.Duration
	PageSize            int
	MaxVirtualCards     int
}

// IdentifierConfig holds the codes used to build account and card numbers
type IdentifierConfig struct {
	BankCode        string
	BranchCode      string
	CurrencyCodeUSD string
	CurrencyCodeGBP string
	CurrencyCodeKES string
	CardPrefix      string
	CardCode        string
	CVVSecretKey    string
}

// JobsConfig holds the schedules and thresholds of the background worker
type JobsConfig struct {
	InterestSchedule             string
	SuspiciousActivitySchedule   string
	LargeTransactionThreshold    string
	FrequentTransactionThreshold int
	TimeWindow                   time.Duration
	IdempotencyPurgeSchedule     string
	IdempotencyRetention         time.Duration
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level string // debug, info, warn, error
}

// Load loads configuration from environment variables (and an optional .env file) with sensible defaults
func Load() (*Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load() //nolint:errcheck // optional file

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:  v.GetDuration("SERVER_IDLE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			URL:       v.GetString("REDIS_URL"),
			KeyPrefix: v.GetString("REDIS_KEY_PREFIX"),
		},
		AMQP: AMQPConfig{
			URL:      v.GetString("AMQP_URL"),
			Exchange: v.GetString("AMQP_EXCHANGE"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
			Issuer:    v.GetString("JWT_ISSUER"),
		},
		Ledger: LedgerConfig{
			OTPTTL:              v.GetDuration("OTP_TTL"),
			PendingOperationTTL: v.GetDuration("PENDING_OPERATION_TTL"),
			PageSize:            v.GetInt("TRANSACTIONS_PAGE_SIZE"),
			MaxVirtualCards:     v.GetInt("MAX_VIRTUAL_CARDS"),
		},
		Identifier: IdentifierConfig{
			BankCode:        v.GetString("BANK_CODE"),
			BranchCode:      v.GetString("BANK_BRANCH_CODE"),
			CurrencyCodeUSD: v.GetString("CURRENCY_CODE_USD"),
			CurrencyCodeGBP: v.GetString("CURRENCY_CODE_GBP"),
			CurrencyCodeKES: v.GetString("CURRENCY_CODE_KES"),
			CardPrefix:      v.GetString("BANK_CARD_PREFIX"),
			CardCode:        v.GetString("BANK_CARD_CODE"),
			CVVSecretKey:    v.GetString("CVV_SECRET_KEY"),
		},
		Jobs: JobsConfig{
			InterestSchedule:             v.GetString("INTEREST_JOB_SCHEDULE"),
			SuspiciousActivitySchedule:   v.GetString("SUSPICIOUS_JOB_SCHEDULE"),
			LargeTransactionThreshold:    v.GetString("LARGE_TRANSACTION_THRESHOLD"),
			FrequentTransactionThreshold: v.GetInt("FREQUENT_TRANSACTION_THRESHOLD"),
			TimeWindow:                   time.Duration(v.GetInt("TIME_WINDOW_HOURS")) * time.Hour,
			IdempotencyPurgeSchedule:     v.GetString("IDEMPOTENCY_PURGE_SCHEDULE"),
			IdempotencyRetention:         v.GetDuration("IDEMPOTENCY_RETENTION"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "60s")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "ledger")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")

	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_KEY_PREFIX", "ledger")
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_EXCHANGE", "ledger_events")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("OTP_TTL", "5m")
	v.SetDefault("PENDING_OPERATION_TTL", "15m")
	v.SetDefault("TRANSACTIONS_PAGE_SIZE", 10)
	v.SetDefault("MAX_VIRTUAL_CARDS", 3)

	v.SetDefault("BANK_CODE", "0101")
	v.SetDefault("BANK_BRANCH_CODE", "001")
	v.SetDefault("CURRENCY_CODE_USD", "1")
	v.SetDefault("CURRENCY_CODE_GBP", "2")
	v.SetDefault("CURRENCY_CODE_KES", "3")
	v.SetDefault("BANK_CARD_PREFIX", "4")
	v.SetDefault("BANK_CARD_CODE", "101")
	v.SetDefault("CVV_SECRET_KEY", "")

	v.SetDefault("INTEREST_JOB_SCHEDULE", "0 0 * * *")
	v.SetDefault("SUSPICIOUS_JOB_SCHEDULE", "0 * * * *")
	v.SetDefault("LARGE_TRANSACTION_THRESHOLD", "10000")
	v.SetDefault("FREQUENT_TRANSACTION_THRESHOLD", 10)
	v.SetDefault("TIME_WINDOW_HOURS", 24)
	v.SetDefault("IDEMPOTENCY_PURGE_SCHEDULE", "30 3 * * *")
	v.SetDefault("IDEMPOTENCY_RETENTION", "72h")

	v.SetDefault("LOG_LEVEL", "info")
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host cannot be empty")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name cannot be empty")
	}

	if c.Ledger.OTPTTL <= 0 {
		return fmt.Errorf("otp ttl must be positive, got %s", c.Ledger.OTPTTL)
	}
	if c.Ledger.PendingOperationTTL <= 0 {
		return fmt.Errorf("pending operation ttl must be positive, got %s", c.Ledger.PendingOperationTTL)
	}
	if c.Ledger.PageSize <= 0 {
		return fmt.Errorf("transactions page size must be positive, got %d", c.Ledger.PageSize)
	}
	if c.Ledger.MaxVirtualCards <= 0 {
		return fmt.Errorf("max virtual cards must be positive, got %d", c.Ledger.MaxVirtualCards)
	}

	if c.Identifier.BankCode == "" || c.Identifier.BranchCode == "" {
		return fmt.Errorf("bank code and branch code are required")
	}
	if c.Identifier.CVVSecretKey == "" {
		return fmt.Errorf("cvv secret key cannot be empty")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt secret cannot be empty")
	}

	if c.Jobs.TimeWindow <= 0 {
		return fmt.Errorf("suspicious activity time window must be positive")
	}
	if c.Jobs.IdempotencyRetention <= 0 {
		return fmt.Errorf("idempotency retention must be positive, got %s", c.Jobs.IdempotencyRetention)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
