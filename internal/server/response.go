package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Favour123/paystack-api/internal/application/ports"
	"github.com/Favour123/paystack-api/internal/application/usecase"
	"github.com/Favour123/paystack-api/internal/domain/entity/purchase"
)

// envelope is the uniform response shape. Success responses carry data;
// failures carry a message and optionally per-field errors.
type envelope struct {
	Success bool                 `json:"success"`
	Data    interface{}          `json:"data,omitempty"`
	Message string               `json:"message,omitempty"`
	Errors  []usecase.FieldError `json:"errors,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		s.logger.Error("writing response", "error", err)
	}
}

func (s *Server) writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: status < 400, Message: message})
}

// writeError maps a business error onto a status code and envelope.
// Unrecognized errors are logged and, outside development, reported with
// a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *usecase.ValidationError
	if errors.As(err, &verr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(envelope{
			Success: false,
			Message: "validation failed",
			Errors:  verr.Fields,
		})
		return
	}

	status, message := classify(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		if !s.development {
			message = "internal server error"
		} else {
			message = err.Error()
		}
	}
	s.writeMessage(w, status, message)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrBookNotFound),
		errors.Is(err, usecase.ErrPurchaseNotFound),
		errors.Is(err, usecase.ErrTokenNotFound),
		errors.Is(err, ports.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, purchase.ErrDownloadExpired):
		return http.StatusGone, "download link has expired"
	case errors.Is(err, purchase.ErrDownloadLimitReached):
		return http.StatusTooManyRequests, "download limit reached"
	case errors.Is(err, usecase.ErrAmountMismatch),
		errors.Is(err, usecase.ErrPaymentRejected),
		errors.Is(err, usecase.ErrGatewayRejected),
		errors.Is(err, usecase.ErrConflictingOutcome),
		errors.Is(err, usecase.ErrInvalidSignature):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, usecase.ErrGatewayUnavailable):
		return http.StatusBadGateway, usecase.ErrGatewayUnavailable.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// decodeJSON reads a JSON request body into dst. The body size is already
// capped by middleware; oversize bodies surface here as read errors.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return &usecase.ValidationError{Fields: []usecase.FieldError{
			{Field: "body", Message: "invalid JSON payload"},
		}}
	}
	return nil
}
