package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	RedisURL        string
	JWTSecret       string
	BcryptCost      int
	TokenTTL        time.Duration
	Environment     string
	LogLevel        string
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	NodeID          int64

	StripeSecretKey     string
	StripeWebhookSecret string
	PaymentsSandbox     bool
	Currency            string
	MaxRevisions        int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	StorageDriver string
	StorageDir    string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	WorkerPoolSize     int

	OrderPaymentTTL time.Duration
	SweepInterval   time.Duration
	RetentionPeriod time.Duration
	IdempotencyTTL  time.Duration
}

const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"

	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

const (
	defaultRunAddress         = ":8080"
	defaultLogLevel           = "info"
	defaultRedisURL           = "redis://localhost:6379/0"
	defaultJWTSecret          = "change-me-in-production"
	defaultTokenTTL           = 24 * time.Hour
	defaultShutdownTimeout    = 10 * time.Second
	defaultNodeID             = 1
	defaultCurrency           = "usd"
	defaultMaxRevisions       = 2
	defaultSMTPPort           = 587
	defaultMailFrom           = "no-reply@shoutout.local"
	defaultStorageDir         = "./data/videos"
	defaultOutboxPollInterval = 2 * time.Second
	defaultOutboxBatchSize    = 32
	defaultOutboxMaxAttempts  = 8
	defaultWorkerPoolSize     = 4
	defaultOrderPaymentTTL    = 24 * time.Hour
	defaultSweepInterval      = 10 * time.Minute
	defaultRetentionPeriod    = 30 * 24 * time.Hour
	defaultIdempotencyTTL     = 24 * time.Hour
)

// Load parses configuration from a .env file, flags and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:          getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:         getString(lookup, "DATABASE_URI", ""),
		RedisURL:            getString(lookup, "REDIS_URL", defaultRedisURL),
		JWTSecret:           getString(lookup, "JWT_SECRET", defaultJWTSecret),
		BcryptCost:          getInt(lookup, "BCRYPT_COST", 0),
		TokenTTL:            getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		Environment:         strings.ToLower(getString(lookup, "APP_ENV", EnvironmentDevelopment)),
		LogLevel:            strings.ToLower(getString(lookup, "LOG_LEVEL", defaultLogLevel)),
		ShutdownTimeout:     getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		CORSOrigins:         splitList(getString(lookup, "CORS_ORIGINS", "")),
		NodeID:              int64(getInt(lookup, "NODE_ID", defaultNodeID)),
		StripeSecretKey:     getString(lookup, "STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getString(lookup, "STRIPE_WEBHOOK_SECRET", ""),
		PaymentsSandbox:     getBool(lookup, "PAYMENTS_SANDBOX", false),
		Currency:            strings.ToLower(getString(lookup, "CURRENCY", defaultCurrency)),
		MaxRevisions:        getInt(lookup, "MAX_REVISIONS", defaultMaxRevisions),
		SMTPHost:            getString(lookup, "SMTP_HOST", ""),
		SMTPPort:            getInt(lookup, "SMTP_PORT", defaultSMTPPort),
		SMTPUsername:        getString(lookup, "SMTP_USERNAME", ""),
		SMTPPassword:        getString(lookup, "SMTP_PASSWORD", ""),
		MailFrom:            getString(lookup, "MAIL_FROM", defaultMailFrom),
		StorageDriver:       strings.ToLower(getString(lookup, "STORAGE_DRIVER", StorageDriverLocal)),
		StorageDir:          getString(lookup, "STORAGE_DIR", defaultStorageDir),
		S3Bucket:            getString(lookup, "S3_BUCKET", ""),
		S3Region:            getString(lookup, "S3_REGION", ""),
		S3Endpoint:          getString(lookup, "S3_ENDPOINT", ""),
		OutboxPollInterval:  getDuration(lookup, "OUTBOX_POLL_INTERVAL", defaultOutboxPollInterval),
		OutboxBatchSize:     getInt(lookup, "OUTBOX_BATCH_SIZE", defaultOutboxBatchSize),
		OutboxMaxAttempts:   getInt(lookup, "OUTBOX_MAX_ATTEMPTS", defaultOutboxMaxAttempts),
		WorkerPoolSize:      getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		OrderPaymentTTL:     getDuration(lookup, "ORDER_PAYMENT_TTL", defaultOrderPaymentTTL),
		SweepInterval:       getDuration(lookup, "SWEEP_INTERVAL", defaultSweepInterval),
		RetentionPeriod:     getDuration(lookup, "RETENTION_PERIOD", defaultRetentionPeriod),
		IdempotencyTTL:      getDuration(lookup, "IDEMPOTENCY_TTL", defaultIdempotencyTTL),
	}

	fs := flag.NewFlagSet("shoutout", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.OutboxPollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "Redis URL for idempotency keys")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.Environment, "env", cfg.Environment, "Deployment environment")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Minimum log level")
	fs.BoolVar(&cfg.PaymentsSandbox, "sandbox", cfg.PaymentsSandbox, "Simulate transfers the processor refuses")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent outbox workers")
	fs.StringVar(&pollIntervalStr, "poll-interval", pollIntervalStr, "Interval between outbox polls")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.OutboxBatchSize, "poll-batch", cfg.OutboxBatchSize, "Maximum outbox messages per poll")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.OutboxPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	normalize(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether the service runs against live money.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

func normalize(cfg *Config) {
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}
	if cfg.OutboxBatchSize <= 0 {
		cfg.OutboxBatchSize = defaultOutboxBatchSize
	}
	if cfg.OutboxMaxAttempts <= 0 {
		cfg.OutboxMaxAttempts = defaultOutboxMaxAttempts
	}
	if cfg.OutboxPollInterval <= 0 {
		cfg.OutboxPollInterval = defaultOutboxPollInterval
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.MaxRevisions < 0 {
		cfg.MaxRevisions = defaultMaxRevisions
	}
	if cfg.SMTPPort <= 0 {
		cfg.SMTPPort = defaultSMTPPort
	}
	if cfg.OrderPaymentTTL <= 0 {
		cfg.OrderPaymentTTL = defaultOrderPaymentTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	if cfg.RetentionPeriod <= 0 {
		cfg.RetentionPeriod = defaultRetentionPeriod
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = defaultIdempotencyTTL
	}
	if cfg.NodeID < 0 {
		cfg.NodeID = defaultNodeID
	}
}

func validate(cfg *Config) error {
	if cfg.DatabaseURI == "" {
		return fmt.Errorf("database URI must be provided")
	}

	if cfg.StripeSecretKey == "" {
		return fmt.Errorf("stripe secret key must be provided")
	}

	switch cfg.StorageDriver {
	case StorageDriverLocal:
	case StorageDriverS3:
		if cfg.S3Bucket == "" || cfg.S3Region == "" {
			return fmt.Errorf("s3 storage requires S3_BUCKET and S3_REGION")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	if !cfg.IsProduction() {
		return nil
	}

	if cfg.StripeWebhookSecret == "" {
		return fmt.Errorf("webhook secret must be provided in production")
	}
	if cfg.JWTSecret == defaultJWTSecret || cfg.JWTSecret == "" {
		return fmt.Errorf("jwt secret must be changed in production")
	}
	if cfg.PaymentsSandbox {
		return fmt.Errorf("payments sandbox cannot be enabled in production")
	}

	return nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
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
