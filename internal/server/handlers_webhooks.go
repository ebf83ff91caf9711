package server

import (
	"io"
	"net/http"

	"github.com/Favour123/paystack-api/internal/application/usecase"
)

// handlePaystackWebhook authenticates the event by its body signature and
// applies it. The signature covers the raw bytes, so the body is read
// before any parsing.
func (s *Server) handlePaystackWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeMessage(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	signature := r.Header.Get("X-Paystack-Signature")
	if !s.services.Webhooks.VerifySignature(body, signature) {
		s.logger.Warn("webhook signature rejected", "ip", s.clientIP(r))
		s.metrics.IncrementCounter("webhooks.signature_rejected", nil)
		s.writeError(w, r, usecase.ErrInvalidSignature)
		return
	}

	if err := s.services.Webhooks.Process(r.Context(), body); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMessage(w, http.StatusOK, "event received")
}

// handleWebhookProbe answers gateway dashboard reachability checks.
func (s *Server) handleWebhookProbe(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "reachable"})
}
