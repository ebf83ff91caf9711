package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Core settings
	Environment string
	ServiceName string
	LogLevel    string
	Version     string

	// EncryptionKey protects data at rest (32 bytes for AES-256).
	EncryptionKey string

	// Component configurations
	Server    ServerConfig
	Database  DatabaseConfig
	Paystack  PaystackConfig
	Storage   StorageConfig
	Queue     QueueConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Downloads DownloadConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	AllowedOrigins  []string
	TrustProxy      bool
	EnableMetrics   bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// Connection pool
	MaxOpenConns int
	MaxIdleConns int
}

// PaystackConfig holds payment gateway configuration
type PaystackConfig struct {
	SecretKey     string
	WebhookSecret string
	BaseURL       string
	Timeout       time.Duration
}

// StorageConfig holds object storage configuration for book assets
type StorageConfig struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Only for local development (MinIO/LocalStack)
	PresignExpiry   time.Duration
}

// QueueConfig holds RabbitMQ configuration for purchase events
type QueueConfig struct {
	URL           string
	PurchaseQueue string
	Timeout       time.Duration
}

// RedisConfig holds Redis configuration for rate limiting
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RateLimitConfig holds per-IP request limits
type RateLimitConfig struct {
	GeneralLimit   int
	GeneralWindow  time.Duration
	PaymentLimit   int
	PaymentWindow  time.Duration
	DownloadLimit  int
	DownloadWindow time.Duration
}

// DownloadConfig holds entitlement defaults
type DownloadConfig struct {
	TokenTTL     time.Duration
	MaxDownloads int
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	var errors []string

	if c.ServiceName == "" {
		errors = append(errors, "SERVICE_NAME is required")
	}

	// Production-specific validations
	if c.IsProduction() {
		if c.Paystack.SecretKey == "" {
			errors = append(errors, "PAYSTACK_SECRET_KEY is required in production")
		}
		if c.Paystack.WebhookSecret == "" {
			errors = append(errors, "PAYSTACK_WEBHOOK_SECRET is required in production")
		}
		if c.Database.Password == "" {
			errors = append(errors, "DB_PASSWORD is required in production")
		}
		if len(c.Server.AllowedOrigins) == 0 {
			errors = append(errors, "ALLOWED_ORIGINS is required in production")
		}
		if c.EncryptionKey == "" {
			errors = append(errors, "ENCRYPTION_KEY is required in production")
		}
	}

	if c.EncryptionKey != "" && len(c.EncryptionKey) != 32 {
		errors = append(errors, "ENCRYPTION_KEY must be exactly 32 bytes")
	}

	// Range validations
	if c.Server.ReadTimeout <= 0 {
		errors = append(errors, "SERVER_READ_TIMEOUT must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errors = append(errors, "SERVER_WRITE_TIMEOUT must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		errors = append(errors, "SERVER_MAX_BODY_BYTES must be positive")
	}
	if c.Paystack.Timeout <= 0 {
		errors = append(errors, "PAYSTACK_TIMEOUT must be positive")
	}
	if c.Downloads.TokenTTL <= 0 {
		errors = append(errors, "DOWNLOAD_TOKEN_TTL must be positive")
	}
	if c.Downloads.MaxDownloads <= 0 {
		errors = append(errors, "DOWNLOAD_MAX_DOWNLOADS must be positive")
	}
	if c.RateLimit.GeneralLimit <= 0 || c.RateLimit.PaymentLimit <= 0 || c.RateLimit.DownloadLimit <= 0 {
		errors = append(errors, "rate limits must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errors, "; "))
	}

	return nil
}
