package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/terra-clan/interview-console/internal/health"
	"github.com/terra-clan/interview-console/internal/models"
	"github.com/terra-clan/interview-console/pkg/client"
)

// codeReauthRequired tells the browser to return to the login view
const codeReauthRequired = "reauth_required"

// Response helpers

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondBackendError maps a failed backend call. Expired auth ends the
// browser session; backend 4xx pass through; anything else is a bad gateway.
func (s *Server) respondBackendError(w http.ResponseWriter, r *http.Request, err error, action string) {
	if errors.Is(err, client.ErrAuthExpired) {
		if sess := SessionFromContext(r.Context()); sess != nil {
			s.endSession(r.Context(), sess)
		}
		respondError(w, http.StatusUnauthorized, codeReauthRequired, "your session has expired, please log in again")
		return
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		respondError(w, apiErr.StatusCode, "backend_rejected", msg)
		return
	}

	slog.Error("backend call failed", "action", action, "error", err, "request_id", middleware.GetReqID(r.Context()))
	respondError(w, http.StatusBadGateway, "backend_error", "failed to "+action)
}

// endSession deletes a browser session. Cached opening questions belong to
// the user and are kept for the next login.
func (s *Server) endSession(ctx context.Context, sess *models.WebSession) {
	if err := s.deps.Repo.DeleteSession(ctx, sess.ID); err != nil {
		slog.Error("failed to delete session", "error", err, "session", sess.MaskedID())
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

func interviewIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "interview id must be a positive integer")
		return 0, false
	}
	return id, true
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	results := s.deps.Health.CheckAll(r.Context())

	checks := make(map[string]string, len(results))
	for name, err := range results {
		if err != nil {
			slog.Warn("readiness check failed", "check", name, "error", err)
			checks[name] = err.Error()
			continue
		}
		checks[name] = "ok"
	}

	if !health.Healthy(results) {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
		"checks": checks,
	})
}
