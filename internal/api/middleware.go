package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/terra-clan/interview-console/internal/models"
	"github.com/terra-clan/interview-console/internal/storage"
)

// AuthMiddleware resolves the browser session behind a request
type AuthMiddleware struct {
	repo storage.Repository
}

// NewAuthMiddleware creates new auth middleware
func NewAuthMiddleware(repo storage.Repository) *AuthMiddleware {
	return &AuthMiddleware{repo: repo}
}

// Authenticate verifies the session id from the Authorization header.
// Browsers cannot set headers on WebSocket upgrades, so the session query
// parameter is accepted there too.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := extractSessionID(r)
		if id == "" {
			respondError(w, http.StatusUnauthorized, "missing_session", "provide Authorization header with Bearer session id")
			return
		}

		sess, err := m.repo.GetSession(r.Context(), id)
		if err != nil {
			slog.Error("failed to lookup session", "error", err, "session", maskID(id))
			respondError(w, http.StatusInternalServerError, "internal_error", "authentication error")
			return
		}

		if sess == nil || sess.IsExpired() {
			slog.Warn("unknown or expired session", "session", maskID(id), "remote_addr", r.RemoteAddr)
			respondError(w, http.StatusUnauthorized, codeReauthRequired, "session is not valid, please log in again")
			return
		}

		if !sess.IsAuthenticated() {
			respondError(w, http.StatusUnauthorized, codeReauthRequired, "session has no credentials, please log in again")
			return
		}

		// Refresh last_seen_at at most once a minute, before the handler can rotate tokens
		if time.Since(sess.LastSeenAt) > time.Minute {
			sess.LastSeenAt = time.Now().UTC()
			if err := m.repo.UpdateSession(r.Context(), sess); err != nil {
				slog.Debug("failed to update session last_seen_at", "error", err, "session", sess.MaskedID())
			}
		}

		slog.Debug("authenticated request", "session", sess.MaskedID(), "role", sess.Role)

		ctx := ContextWithSession(r.Context(), sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole returns middleware that admits only sessions with role
func (m *AuthMiddleware) RequireRole(role models.SessionRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromContext(r.Context())
			if sess == nil {
				respondError(w, http.StatusUnauthorized, "not_authenticated", "authentication required")
				return
			}

			if sess.Role != role {
				slog.Warn("role denied",
					"session", sess.MaskedID(),
					"required", role,
					"has", sess.Role,
				)
				respondError(w, http.StatusForbidden, "forbidden", "session does not have required role: "+string(role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractSessionID reads "Bearer <id>" or a bare id, then the session query parameter
func extractSessionID(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("session")
}

// maskID returns first 8 chars of an id for safe logging
func maskID(id string) string {
	if len(id) < 8 {
		return "***"
	}
	return id[:8] + "..."
}
