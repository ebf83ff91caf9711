package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Favour123/paystack-api/internal/application/ports"
	"github.com/Favour123/paystack-api/internal/application/usecase"
	"github.com/Favour123/paystack-api/internal/config"
	"github.com/Favour123/paystack-api/internal/infrastructure/database/postgres"
	"github.com/Favour123/paystack-api/internal/infrastructure/observability/prom"
	"github.com/Favour123/paystack-api/internal/infrastructure/observability/stdout"
	"github.com/Favour123/paystack-api/internal/infrastructure/paystack"
	"github.com/Favour123/paystack-api/internal/infrastructure/queue"
	"github.com/Favour123/paystack-api/internal/infrastructure/ratelimit"
	"github.com/Favour123/paystack-api/internal/infrastructure/repository"
	"github.com/Favour123/paystack-api/internal/infrastructure/storage/s3"
	"github.com/Favour123/paystack-api/internal/server"
)

func main() {
	cfg := config.MustLoad()

	deps := initializeDependencies(cfg)
	defer deps.close()

	srv := buildServer(cfg, deps)

	runUntilSignalled(srv, deps.logger)
}

// dependencies holds every initialized infrastructure component.
type dependencies struct {
	db       *postgres.DB
	repos    *repository.Repositories
	gateway  ports.PaymentGateway
	storage  ports.ObjectStorage
	queue    ports.Queue
	limiter  ports.RateLimiter
	registry *prometheus.Registry
	logger   ports.Logger
	metrics  ports.Metrics
}

func (d *dependencies) close() {
	if d.queue != nil {
		_ = d.queue.Close()
	}
	if closer, ok := d.limiter.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	if d.db != nil {
		_ = d.db.Close()
	}
}

func initializeDependencies(cfg *config.Config) *dependencies {
	logger, metrics, registry := initializeObservability(cfg)

	logger.Info("starting application",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)
	metrics.IncrementCounter("application.starts", nil)

	db, err := postgres.New(&cfg.Database, logger, metrics)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	return &dependencies{
		db:       db,
		repos:    repository.NewRepositories(db, logger, metrics),
		gateway:  paystack.NewClient(&cfg.Paystack, logger, metrics),
		storage:  initializeStorage(cfg, logger, metrics),
		queue:    initializeQueue(cfg, logger, metrics),
		limiter:  initializeLimiter(cfg, logger, metrics),
		registry: registry,
		logger:   logger,
		metrics:  metrics,
	}
}

func initializeObservability(cfg *config.Config) (ports.Logger, ports.Metrics, *prometheus.Registry) {
	logger := stdout.NewLogger(
		stdout.WithLevel(cfg.LogLevel),
		stdout.WithJSON(cfg.IsProduction()),
	)
	metrics := prom.New(cfg.ServiceName)
	return logger, metrics, metrics.Registry()
}

// initializeStorage is optional: without a bucket the service falls back
// to serving stored asset locators directly.
func initializeStorage(cfg *config.Config, logger ports.Logger, metrics ports.Metrics) ports.ObjectStorage {
	if cfg.Storage.Bucket == "" {
		logger.Warn("object storage not configured, serving raw asset locators")
		return nil
	}

	storage, err := s3.New(&cfg.Storage, logger, metrics)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}
	return storage
}

// initializeQueue is optional: purchase events are best-effort and the
// API runs fine without a broker.
func initializeQueue(cfg *config.Config, logger ports.Logger, metrics ports.Metrics) ports.Queue {
	if cfg.Queue.URL == "" {
		logger.Warn("message queue not configured, purchase events disabled")
		return nil
	}

	q, err := queue.NewRabbitMQQueue(&cfg.Queue, logger, metrics)
	if err != nil {
		log.Fatalf("failed to connect to message queue: %v", err)
	}
	return q
}

// initializeLimiter is optional: without Redis the rate-limit middleware
// passes everything through.
func initializeLimiter(cfg *config.Config, logger ports.Logger, metrics ports.Metrics) ports.RateLimiter {
	if cfg.Redis.Addr == "" {
		logger.Warn("redis not configured, rate limiting disabled")
		return nil
	}

	limiter, err := ratelimit.New(&cfg.Redis, logger, metrics)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	return limiter
}

func buildServer(cfg *config.Config, deps *dependencies) *server.Server {
	paymentOpts := usecase.PaymentOptions{
		Currency:     "USD",
		TokenTTL:     cfg.Downloads.TokenTTL,
		MaxDownloads: cfg.Downloads.MaxDownloads,
		QueueTarget:  cfg.Queue.PurchaseQueue,
	}

	services := server.Services{
		Catalog:   usecase.NewCatalogService(deps.repos, deps.logger, deps.metrics),
		Payments:  usecase.NewPaymentService(deps.repos, deps.gateway, deps.queue, paymentOpts, deps.logger, deps.metrics),
		Downloads: usecase.NewDownloadService(deps.repos, deps.storage, cfg.Storage.PresignExpiry, deps.logger, deps.metrics),
		Webhooks:  usecase.NewWebhookService(deps.repos, deps.queue, cfg.Paystack.WebhookSecret, cfg.Queue.PurchaseQueue, deps.logger, deps.metrics),
	}

	return server.New(cfg, services, deps.limiter, deps.registry, deps.logger, deps.metrics)
}

// runUntilSignalled serves until SIGINT or SIGTERM, then drains.
func runUntilSignalled(srv *server.Server, logger ports.Logger) {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server failed: %v", err)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown did not complete cleanly", "error", err)
		}
	}
}
