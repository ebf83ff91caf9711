package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Favour123/paystack-api/internal/application/usecase"
	"github.com/Favour123/paystack-api/internal/config"
	"github.com/Favour123/paystack-api/internal/domain/entity"
	"github.com/Favour123/paystack-api/internal/infrastructure/observability/noop"
)

// Stub services scripted per test.
type stubCatalog struct {
	listFn       func(ctx context.Context) ([]*entity.Book, error)
	getFn        func(ctx context.Context, id int64) (*entity.Book, error)
	createFn     func(ctx context.Context, in usecase.BookInput) (*entity.Book, error)
	updateFn     func(ctx context.Context, id int64, in usecase.BookInput) (*entity.Book, error)
	deactivateFn func(ctx context.Context, id int64) error
}

func (s *stubCatalog) List(ctx context.Context) ([]*entity.Book, error) { return s.listFn(ctx) }
func (s *stubCatalog) Get(ctx context.Context, id int64) (*entity.Book, error) {
	return s.getFn(ctx, id)
}
func (s *stubCatalog) Create(ctx context.Context, in usecase.BookInput) (*entity.Book, error) {
	return s.createFn(ctx, in)
}
func (s *stubCatalog) Update(ctx context.Context, id int64, in usecase.BookInput) (*entity.Book, error) {
	return s.updateFn(ctx, id, in)
}
func (s *stubCatalog) Deactivate(ctx context.Context, id int64) error {
	return s.deactivateFn(ctx, id)
}

type stubPayments struct {
	initializeFn func(ctx context.Context, in usecase.InitializeInput) (*usecase.InitializeResult, error)
	verifyFn     func(ctx context.Context, reference string) (*usecase.VerifyResult, error)
	statusFn     func(ctx context.Context, reference string) (*usecase.StatusResult, error)
}

func (s *stubPayments) Initialize(ctx context.Context, in usecase.InitializeInput) (*usecase.InitializeResult, error) {
	return s.initializeFn(ctx, in)
}
func (s *stubPayments) Verify(ctx context.Context, reference string) (*usecase.VerifyResult, error) {
	return s.verifyFn(ctx, reference)
}
func (s *stubPayments) Status(ctx context.Context, reference string) (*usecase.StatusResult, error) {
	return s.statusFn(ctx, reference)
}

type stubDownloads struct {
	verifyFn   func(ctx context.Context, token string) (*usecase.Access, error)
	completeFn func(ctx context.Context, token, ip, ua string) (*usecase.Receipt, error)
	historyFn  func(ctx context.Context, token string) (*usecase.HistoryResult, error)
}

func (s *stubDownloads) Verify(ctx context.Context, token string) (*usecase.Access, error) {
	return s.verifyFn(ctx, token)
}
func (s *stubDownloads) Complete(ctx context.Context, token, ip, ua string) (*usecase.Receipt, error) {
	return s.completeFn(ctx, token, ip, ua)
}
func (s *stubDownloads) History(ctx context.Context, token string) (*usecase.HistoryResult, error) {
	return s.historyFn(ctx, token)
}

type stubWebhooks struct {
	verifyFn  func(body []byte, signature string) bool
	processFn func(ctx context.Context, body []byte) error
}

func (s *stubWebhooks) VerifySignature(body []byte, signature string) bool {
	return s.verifyFn(body, signature)
}
func (s *stubWebhooks) Process(ctx context.Context, body []byte) error {
	return s.processFn(ctx, body)
}

// countingLimiter allows the first n requests per key.
type countingLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	err    error
}

func (l *countingLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.counts == nil {
		l.counts = make(map[string]int)
	}
	l.counts[key]++
	return l.counts[key] <= limit, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		ServiceName: "store-api-test",
		Server: config.ServerConfig{
			Addr:            ":0",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			ShutdownTimeout: time.Second,
			MaxBodyBytes:    1 << 20,
		},
		RateLimit: config.RateLimitConfig{
			GeneralLimit:   100,
			GeneralWindow:  time.Minute,
			PaymentLimit:   10,
			PaymentWindow:  time.Minute,
			DownloadLimit:  5,
			DownloadWindow: time.Minute,
		},
	}
}

type serverOption func(*config.Config, *Services)

func newTestServer(t *testing.T, services Services, opts ...serverOption) *Server {
	t.Helper()
	cfg := testConfig()
	for _, opt := range opts {
		opt(cfg, &services)
	}
	return New(cfg, services, nil, nil, noop.NewLogger(), noop.NewMetrics())
}

func doRequest(t *testing.T, h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthAndRoot(t *testing.T) {
	srv := newTestServer(t, Services{})

	t.Run("health", func(t *testing.T) {
		rec := doRequest(t, srv.Handler(), http.MethodGet, "/health", "", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeEnvelope(t, rec)
		assert.Equal(t, true, body["success"])
		data := body["data"].(map[string]interface{})
		assert.Equal(t, "ok", data["status"])
		assert.Equal(t, "store-api-test", data["service"])
		assert.Equal(t, "test", data["environment"])
	})

	t.Run("root", func(t *testing.T) {
		rec := doRequest(t, srv.Handler(), http.MethodGet, "/", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown path", func(t *testing.T) {
		rec := doRequest(t, srv.Handler(), http.MethodGet, "/nope", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
