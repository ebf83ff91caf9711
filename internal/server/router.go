package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	general := s.rateLimit("general", s.rates.GeneralLimit, s.rates.GeneralWindow)
	payment := s.rateLimit("payment", s.rates.PaymentLimit, s.rates.PaymentWindow)
	download := s.rateLimit("download", s.rates.DownloadLimit, s.rates.DownloadWindow)

	// Catalog
	mux.Handle("GET /api/books", general(http.HandlerFunc(s.handleListBooks)))
	mux.Handle("GET /api/books/{id}", general(http.HandlerFunc(s.handleGetBook)))
	mux.Handle("POST /api/books", general(http.HandlerFunc(s.handleCreateBook)))
	mux.Handle("PUT /api/books/{id}", general(http.HandlerFunc(s.handleUpdateBook)))
	mux.Handle("DELETE /api/books/{id}", general(http.HandlerFunc(s.handleDeactivateBook)))

	// Payments. Verify takes the reference in the body; the GET form
	// serves the gateway's browser redirect, which carries it in the path.
	mux.Handle("POST /api/payments/initialize", payment(http.HandlerFunc(s.handleInitializePayment)))
	mux.Handle("POST /api/payments/verify", payment(http.HandlerFunc(s.handleVerifyPayment)))
	mux.Handle("GET /api/payments/verify/{reference}", payment(http.HandlerFunc(s.handleVerifyPayment)))
	mux.Handle("GET /api/payments/status/{reference}", payment(http.HandlerFunc(s.handlePaymentStatus)))

	// Downloads
	mux.Handle("POST /api/downloads/verify", download(http.HandlerFunc(s.handleVerifyDownload)))
	mux.Handle("POST /api/downloads/complete", download(http.HandlerFunc(s.handleCompleteDownload)))
	mux.Handle("GET /api/downloads/history/{token}", download(http.HandlerFunc(s.handleDownloadHistory)))

	// Webhooks are authenticated by signature, never rate limited: the
	// gateway's retries must always land.
	mux.HandleFunc("POST /api/webhooks/paystack", s.handlePaystackWebhook)
	mux.HandleFunc("GET /api/webhooks/paystack", s.handleWebhookProbe)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)

	if s.cfg.EnableMetrics && s.registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	return chain(mux, s.recovery, s.requestLogger, s.cors, s.maxBody)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"service":     s.serviceName,
		"environment": s.environment,
		"timestamp":   nowUTC(),
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"service": s.serviceName,
		"health":  "/health",
	})
}
