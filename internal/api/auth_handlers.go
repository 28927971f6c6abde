package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/terra-clan/interview-console/internal/auth"
	"github.com/terra-clan/interview-console/internal/models"
	"github.com/terra-clan/interview-console/pkg/client"
)

// OTPRequest is the payload for sending or verifying a code
type OTPRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	OTP         string `json:"otp,omitempty"`
}

// LoginResponse identifies the browser session created by a login
type LoginResponse struct {
	SessionID         string             `json:"sessionId"`
	Role              models.SessionRole `json:"role"`
	ExpiresAt         time.Time          `json:"expiresAt"`
	NeedsRegistration bool               `json:"needsRegistration"`
}

func (s *Server) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	var req OTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	flow := auth.NewFlow(s.backendFor(nil, nil), client.NewMemoryStore())
	if err := flow.SendOTP(r.Context(), req.PhoneNumber); err != nil {
		if errors.Is(err, auth.ErrPhoneRequired) {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		s.respondBackendError(w, r, err, "send OTP")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	s.login(w, r, models.RoleUser)
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	s.login(w, r, models.RoleAdmin)
}

// login verifies a code into a fresh browser session. The session is
// discarded unless the flow stores credentials on it.
func (s *Server) login(w http.ResponseWriter, r *http.Request, role models.SessionRole) {
	var req OTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess := models.NewWebSession("", role, s.config.SessionTTL)
	if err := s.deps.Repo.CreateSession(r.Context(), sess); err != nil {
		slog.Error("failed to create session", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to create session")
		return
	}

	flow := auth.NewFlow(s.backendFor(sess, nil), auth.NewSessionCredentials(s.deps.Repo, sess.ID))

	var (
		needsRegistration bool
		err               error
	)
	if role == models.RoleAdmin {
		err = flow.AdminLogin(r.Context(), req.PhoneNumber, req.OTP)
	} else {
		needsRegistration, err = flow.VerifyOTP(r.Context(), req.PhoneNumber, req.OTP)
	}
	if err != nil {
		s.endSession(r.Context(), sess)
		switch {
		case errors.Is(err, auth.ErrPhoneRequired), errors.Is(err, auth.ErrOTPRequired):
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		case errors.Is(err, auth.ErrNotAdmin):
			respondError(w, http.StatusForbidden, "forbidden", err.Error())
		case client.StatusCode(err) == http.StatusUnauthorized, errors.Is(err, client.ErrAuthExpired):
			respondError(w, http.StatusUnauthorized, "invalid_otp", "invalid or expired verification code")
		default:
			s.respondBackendError(w, r, err, "verify OTP")
		}
		return
	}

	slog.Info("session created", "session", sess.MaskedID(), "role", role, "needs_registration", needsRegistration)
	respondJSON(w, http.StatusCreated, LoginResponse{
		SessionID:         sess.ID,
		Role:              role,
		ExpiresAt:         sess.ExpiresAt,
		NeedsRegistration: needsRegistration,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	var req client.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.FullName == "" || req.Profession == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "fullName and profession are required")
		return
	}
	if req.YearsOfExperience < 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "yearsOfExperience must not be negative")
		return
	}

	flow := auth.NewFlow(s.backendFor(sess, nil), auth.NewSessionCredentials(s.deps.Repo, sess.ID))
	if err := flow.Register(r.Context(), req); err != nil {
		s.respondBackendError(w, r, err, "register")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	flow := auth.NewFlow(s.backendFor(sess, nil), auth.NewSessionCredentials(s.deps.Repo, sess.ID))
	if err := flow.Logout(r.Context()); err != nil {
		slog.Warn("failed to clear session credentials", "error", err, "session", sess.MaskedID())
	}
	s.endSession(r.Context(), sess)

	slog.Info("session logged out", "session", sess.MaskedID())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	user, err := s.backendFor(sess, nil).GetProfile(r.Context())
	if err != nil {
		s.respondBackendError(w, r, err, "load profile")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user":      user,
		"role":      sess.Role,
		"expiresAt": sess.ExpiresAt,
	})
}
