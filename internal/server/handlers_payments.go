package server

import (
	"net/http"

	"github.com/Favour123/paystack-api/internal/application/usecase"
)

func (s *Server) handleInitializePayment(w http.ResponseWriter, r *http.Request) {
	var in usecase.InitializeInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.services.Payments.Initialize(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	reference := r.PathValue("reference")
	if reference == "" && r.Method == http.MethodPost {
		var in struct {
			Reference string `json:"reference"`
		}
		if err := decodeJSON(r, &in); err != nil {
			s.writeError(w, r, err)
			return
		}
		reference = in.Reference
	}
	if reference == "" {
		s.writeError(w, r, &usecase.ValidationError{Fields: []usecase.FieldError{
			{Field: "reference", Message: "is required"},
		}})
		return
	}

	result, err := s.services.Payments.Verify(r.Context(), reference)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePaymentStatus(w http.ResponseWriter, r *http.Request) {
	reference := r.PathValue("reference")
	if reference == "" {
		s.writeError(w, r, &usecase.ValidationError{Fields: []usecase.FieldError{
			{Field: "reference", Message: "is required"},
		}})
		return
	}

	result, err := s.services.Payments.Status(r.Context(), reference)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}
