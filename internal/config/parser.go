package config

// parse reads configuration from environment variables
func parse() (*Config, error) {
	cfg := &Config{
		// Core
		Environment: getEnv("ENVIRONMENT", "development"),
		ServiceName: getEnv("SERVICE_NAME", "bookstore-api"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Version:     getEnv("SERVICE_VERSION", "1.0.0"),

		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),

		// HTTP server
		Server: ServerConfig{
			Addr:            getEnv("SERVER_ADDR", ":5000"),
			ReadTimeout:     getDuration("SERVER_READ_TIMEOUT", "15s"),
			WriteTimeout:    getDuration("SERVER_WRITE_TIMEOUT", "30s"),
			ShutdownTimeout: getDuration("SERVER_SHUTDOWN_TIMEOUT", "10s"),
			MaxBodyBytes:    int64(getInt("SERVER_MAX_BODY_BYTES", 10*1024*1024)),
			AllowedOrigins:  getStringSlice("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"),
			TrustProxy:      getBool("SERVER_TRUST_PROXY", true),
			EnableMetrics:   getBool("SERVER_ENABLE_METRICS", true),
		},

		// Database
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getInt("DB_PORT", 5432),
			Database: getEnv("DB_NAME", "bookstore"),
			Username: getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),

			// Connection pool
			MaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getInt("DB_MAX_IDLE_CONNS", 5),
		},

		// Payment gateway
		Paystack: PaystackConfig{
			SecretKey:     getEnv("PAYSTACK_SECRET_KEY", ""),
			WebhookSecret: getEnv("PAYSTACK_WEBHOOK_SECRET", ""),
			BaseURL:       getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			Timeout:       getDuration("PAYSTACK_TIMEOUT", "30s"),
		},

		// Object storage
		Storage: StorageConfig{
			Bucket:          getEnv("STORAGE_BUCKET", ""),
			Region:          getEnv("AWS_REGION", "us-east-2"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			PresignExpiry:   getDuration("STORAGE_PRESIGN_EXPIRY", "15m"),
		},

		// Purchase event queue
		Queue: QueueConfig{
			URL:           getEnv("RABBITMQ_URL", ""),
			PurchaseQueue: getEnv("RABBITMQ_PURCHASE_QUEUE", "purchase-events"),
			Timeout:       getDuration("RABBITMQ_TIMEOUT", "30s"),
		},

		// Redis (rate limiting)
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},

		// Rate limits per caller IP
		RateLimit: RateLimitConfig{
			GeneralLimit:   getInt("RATE_LIMIT_GENERAL", 100),
			GeneralWindow:  getDuration("RATE_LIMIT_GENERAL_WINDOW", "15m"),
			PaymentLimit:   getInt("RATE_LIMIT_PAYMENT", 10),
			PaymentWindow:  getDuration("RATE_LIMIT_PAYMENT_WINDOW", "15m"),
			DownloadLimit:  getInt("RATE_LIMIT_DOWNLOAD", 5),
			DownloadWindow: getDuration("RATE_LIMIT_DOWNLOAD_WINDOW", "1m"),
		},

		// Download entitlements
		Downloads: DownloadConfig{
			TokenTTL:     getDuration("DOWNLOAD_TOKEN_TTL", "48h"),
			MaxDownloads: getInt("DOWNLOAD_MAX_DOWNLOADS", 3),
		},
	}

	return cfg, nil
}
