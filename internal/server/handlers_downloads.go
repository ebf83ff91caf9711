package server

import (
	"net/http"

	"github.com/Favour123/paystack-api/internal/application/usecase"
)

type tokenRequest struct {
	Token string `json:"token"`
}

func (s *Server) bodyToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	var in tokenRequest
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return "", false
	}
	if in.Token == "" {
		s.writeError(w, r, &usecase.ValidationError{Fields: []usecase.FieldError{
			{Field: "token", Message: "is required"},
		}})
		return "", false
	}
	return in.Token, true
}

func (s *Server) handleVerifyDownload(w http.ResponseWriter, r *http.Request) {
	token, ok := s.bodyToken(w, r)
	if !ok {
		return
	}

	access, err := s.services.Downloads.Verify(r.Context(), token)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, access)
}

func (s *Server) handleCompleteDownload(w http.ResponseWriter, r *http.Request) {
	token, ok := s.bodyToken(w, r)
	if !ok {
		return
	}

	receipt, err := s.services.Downloads.Complete(r.Context(), token, s.clientIP(r), r.UserAgent())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleDownloadHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.services.Downloads.History(r.Context(), r.PathValue("token"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, history)
}
