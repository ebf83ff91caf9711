package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Favour123/paystack-api/internal/application/ports"
	"github.com/Favour123/paystack-api/internal/application/usecase"
	"github.com/Favour123/paystack-api/internal/config"
	"github.com/Favour123/paystack-api/internal/domain/entity"
)

// Service interfaces the handlers depend on. Defined here, implemented by
// the usecase package, faked in tests.
type CatalogService interface {
	List(ctx context.Context) ([]*entity.Book, error)
	Get(ctx context.Context, id int64) (*entity.Book, error)
	Create(ctx context.Context, in usecase.BookInput) (*entity.Book, error)
	Update(ctx context.Context, id int64, in usecase.BookInput) (*entity.Book, error)
	Deactivate(ctx context.Context, id int64) error
}

type PaymentService interface {
	Initialize(ctx context.Context, in usecase.InitializeInput) (*usecase.InitializeResult, error)
	Verify(ctx context.Context, reference string) (*usecase.VerifyResult, error)
	Status(ctx context.Context, reference string) (*usecase.StatusResult, error)
}

type DownloadService interface {
	Verify(ctx context.Context, token string) (*usecase.Access, error)
	Complete(ctx context.Context, token, ipAddress, userAgent string) (*usecase.Receipt, error)
	History(ctx context.Context, token string) (*usecase.HistoryResult, error)
}

type WebhookService interface {
	VerifySignature(body []byte, signature string) bool
	Process(ctx context.Context, body []byte) error
}

// Services bundles everything the router needs.
type Services struct {
	Catalog   CatalogService
	Payments  PaymentService
	Downloads DownloadService
	Webhooks  WebhookService
}

// Server is the HTTP front of the store API.
type Server struct {
	cfg         config.ServerConfig
	rates       config.RateLimitConfig
	services    Services
	limiter     ports.RateLimiter
	registry    *prometheus.Registry
	logger      ports.Logger
	metrics     ports.Metrics
	development bool
	serviceName string
	environment string

	httpServer *http.Server
}

func New(cfg *config.Config, services Services, limiter ports.RateLimiter, registry *prometheus.Registry, logger ports.Logger, metrics ports.Metrics) *Server {
	s := &Server{
		cfg:         cfg.Server,
		rates:       cfg.RateLimit,
		services:    services,
		limiter:     limiter,
		registry:    registry,
		logger:      logger.WithFields(map[string]interface{}{"component": "http"}),
		metrics:     metrics,
		development: cfg.IsDevelopment(),
		serviceName: cfg.ServiceName,
		environment: cfg.Environment,
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      s.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// Start blocks serving requests until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.cfg.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests within the configured grace period.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the routed handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func nowUTC() time.Time { return time.Now().UTC() }
