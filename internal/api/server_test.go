package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/interview-console/internal/config"
	"github.com/terra-clan/interview-console/internal/health"
	"github.com/terra-clan/interview-console/internal/models"
	"github.com/terra-clan/interview-console/internal/storage"
)

const validOTP = "123456"

// fakeBackend emulates the interview backend API
type fakeBackend struct {
	mu           sync.Mutex
	admin        bool
	newUser      bool
	rejectTokens bool // 401 for every bearer-authenticated call
	refreshOK    bool
	started      []map[string]any
	chats        []string
	ended        []string
	feedback     string
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/send-otp", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "sent"})
	})
	mux.HandleFunc("POST /api/auth/verify-otp", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["otp"] != validOTP {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid code"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"token": "access-1", "refreshToken": "refresh-1", "isNewUser": b.newUser})
	})
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		if !b.refreshOK {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "refresh token expired"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": "access-2"})
	})
	mux.HandleFunc("POST /api/auth/register", b.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "registered"})
	}))
	mux.HandleFunc("GET /api/users/check/{phone}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"exists": !b.newUser})
	})
	mux.HandleFunc("GET /api/users/profile", b.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.User{ID: 1, PhoneNumber: "+15550100", FullName: "Ada"})
	}))
	mux.HandleFunc("POST /api/users/upload-resume", b.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	}))
	mux.HandleFunc("GET /api/interviews/history", b.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.Interview{{ID: 42, Role: "Backend", Status: models.InterviewInProgress}})
	}))
	mux.HandleFunc("GET /api/interviews/{id}", b.authed(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "42" {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "interview not found"})
			return
		}
		writeJSON(w, http.StatusOK, models.Interview{ID: 42, Role: "Backend"})
	}))
	start := b.authed(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.started = append(b.started, req)
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"interviewId": 42, "initialQuestion": "Tell me about yourself."})
	})
	mux.HandleFunc("POST /api/interviews/start", start)
	mux.HandleFunc("POST /api/interviews/start-enhanced", start)
	mux.HandleFunc("POST /api/interviews/{id}/chat", b.authed(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.chats = append(b.chats, req["message"])
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"reply": "Why Go?"})
	}))
	mux.HandleFunc("POST /api/interviews/{id}/end", b.authed(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.ended = append(b.ended, r.PathValue("id"))
		b.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	mux.HandleFunc("POST /api/interviews/{id}/generate-feedback", b.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"feedback": b.feedback})
	}))
	mux.HandleFunc("GET /api/admin/verify", b.authed(func(w http.ResponseWriter, r *http.Request) {
		if !b.admin {
			writeJSON(w, http.StatusForbidden, map[string]string{"message": "not an admin"})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	mux.HandleFunc("GET /api/admin/stats", b.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Stats{TotalUsers: 3, TotalInterviews: 5, CompletedInterviews: 2})
	}))

	return mux
}

// authed rejects requests without a bearer token, or all of them once rejectTokens is set
func (b *fakeBackend) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") || b.rejectTokens {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

type testEnv struct {
	backend *fakeBackend
	repo    *storage.MemoryRepository
	server  *Server
	checks  *health.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	b := &fakeBackend{feedback: "## Summary\nSolid answers."}
	backendSrv := httptest.NewServer(b.handler())
	t.Cleanup(backendSrv.Close)

	repo := storage.NewMemoryRepository()
	checks := health.NewRegistry(time.Second)
	srv := NewServer(config.ServerConfig{SessionTTL: time.Hour, RequestTimeout: 10 * time.Second}, Dependencies{
		BackendURL: backendSrv.URL,
		Repo:       repo,
		Health:     checks,
	})
	return &testEnv{backend: b, repo: repo, server: srv, checks: checks}
}

func (e *testEnv) do(t *testing.T, method, path, sessionID string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var payload io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("Authorization", "Bearer "+sessionID)
	}

	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)

	var env envelope
	if rec.Code != http.StatusNoContent {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

// signedIn stores an authenticated session directly
func (e *testEnv) signedIn(t *testing.T, role models.SessionRole) *models.WebSession {
	t.Helper()
	sess := models.NewWebSession("+15550100", role, time.Hour)
	sess.AccessToken = "access-1"
	sess.RefreshToken = "refresh-1"
	require.NoError(t, e.repo.CreateSession(context.Background(), sess))
	return sess
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Success)
}

func TestReady(t *testing.T) {
	env := newTestEnv(t)
	env.checks.Register("store", health.CheckerFunc(env.repo.Ping))

	rec, _ := env.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	env.checks.Register("docker", health.CheckerFunc(func(ctx context.Context) error {
		return errors.New("daemon unreachable")
	}))
	rec, body := env.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not_ready", body.Error.Code)
}

func TestLoginSession(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodPost, "/api/v1/auth/otp/send", "", OTPRequest{PhoneNumber: "+15550100"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = env.do(t, http.MethodPost, "/api/v1/auth/otp/verify", "", OTPRequest{PhoneNumber: "+15550100", OTP: validOTP})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var login LoginResponse
	require.NoError(t, json.Unmarshal(body.Data, &login))
	assert.NotEmpty(t, login.SessionID)
	assert.Equal(t, models.RoleUser, login.Role)
	assert.False(t, login.NeedsRegistration)

	stored, err := env.repo.GetSession(context.Background(), login.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "access-1", stored.AccessToken)
	assert.Equal(t, "+15550100", stored.PhoneNumber)

	rec, body = env.do(t, http.MethodGet, "/api/v1/me", login.SessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(body.Data), "Ada")

	rec, body = env.do(t, http.MethodGet, "/api/v1/interviews", login.SessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var interviews []models.Interview
	require.NoError(t, json.Unmarshal(body.Data, &interviews))
	require.Len(t, interviews, 1)
	assert.Equal(t, int64(42), interviews[0].ID)

	rec, _ = env.do(t, http.MethodPost, "/api/v1/auth/logout", login.SessionID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, body = env.do(t, http.MethodGet, "/api/v1/me", login.SessionID, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, codeReauthRequired, body.Error.Code)
}

func TestLogin_NewUserNeedsRegistration(t *testing.T) {
	env := newTestEnv(t)
	env.backend.newUser = true

	rec, body := env.do(t, http.MethodPost, "/api/v1/auth/otp/verify", "", OTPRequest{PhoneNumber: "+15550100", OTP: validOTP})
	require.Equal(t, http.StatusCreated, rec.Code)
	var login LoginResponse
	require.NoError(t, json.Unmarshal(body.Data, &login))
	assert.True(t, login.NeedsRegistration)

	rec, _ = env.do(t, http.MethodPost, "/api/v1/auth/register", login.SessionID, map[string]any{"fullName": "Ada"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/api/v1/auth/register", login.SessionID, map[string]any{
		"fullName": "Ada", "profession": "Engineer", "yearsOfExperience": 5,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestLogin_Errors(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodPost, "/api/v1/auth/otp/verify", "", OTPRequest{PhoneNumber: "+15550100", OTP: "000000"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_otp", body.Error.Code)

	rec, body = env.do(t, http.MethodPost, "/api/v1/auth/otp/verify", "", OTPRequest{PhoneNumber: "+15550100"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", body.Error.Code)

	rec, _ = env.do(t, http.MethodPost, "/api/v1/auth/otp/send", "", OTPRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "missing_session", body.Error.Code)

	rec, body = env.do(t, http.MethodGet, "/api/v1/me", "unknown-session-id", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, codeReauthRequired, body.Error.Code)

	sess := models.NewWebSession("+15550100", models.RoleUser, time.Hour)
	require.NoError(t, env.repo.CreateSession(context.Background(), sess))
	rec, body = env.do(t, http.MethodGet, "/api/v1/me", sess.ID, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "session without credentials")
	assert.Equal(t, codeReauthRequired, body.Error.Code)
}

func TestAuthExpiredEndsSession(t *testing.T) {
	env := newTestEnv(t)
	sess := env.signedIn(t, models.RoleUser)
	env.backend.rejectTokens = true

	rec, body := env.do(t, http.MethodGet, "/api/v1/me", sess.ID, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, codeReauthRequired, body.Error.Code)

	stored, err := env.repo.GetSession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestAdminRoutes(t *testing.T) {
	env := newTestEnv(t)

	user := env.signedIn(t, models.RoleUser)
	rec, body := env.do(t, http.MethodGet, "/api/v1/admin/stats", user.ID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", body.Error.Code)

	rec, body = env.do(t, http.MethodPost, "/api/v1/auth/admin/login", "", OTPRequest{PhoneNumber: "+15550100", OTP: validOTP})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	env.backend.admin = true
	rec, body = env.do(t, http.MethodPost, "/api/v1/auth/admin/login", "", OTPRequest{PhoneNumber: "+15550100", OTP: validOTP})
	require.Equal(t, http.StatusCreated, rec.Code)
	var login LoginResponse
	require.NoError(t, json.Unmarshal(body.Data, &login))
	assert.Equal(t, models.RoleAdmin, login.Role)

	rec, body = env.do(t, http.MethodGet, "/api/v1/admin/stats", login.SessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats models.Stats
	require.NoError(t, json.Unmarshal(body.Data, &stats))
	assert.Equal(t, 5, stats.TotalInterviews)
}

func TestStartInterview(t *testing.T) {
	env := newTestEnv(t)
	sess := env.signedIn(t, models.RoleUser)

	rec, body := env.do(t, http.MethodPost, "/api/v1/interviews", sess.ID, map[string]any{
		"role": "Backend", "skills": "",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please fill out both the role and skills.", body.Error.Message)

	rec, body = env.do(t, http.MethodPost, "/api/v1/interviews", sess.ID, map[string]any{
		"role": "Backend", "skills": "Go, SQL", "interviewType": "Technical",
		"focusAreas": []string{"go"}, "durationMinutes": 15,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res struct {
		InterviewID int64  `json:"interviewId"`
		Route       string `json:"route"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &res))
	assert.Equal(t, int64(42), res.InterviewID)
	assert.Equal(t, "/interview/42", res.Route)

	q, ok, err := env.repo.GetInitialQuestion(context.Background(), sess.PhoneNumber, 42)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Tell me about yourself.", q)

	require.Len(t, env.backend.started, 1)
	assert.EqualValues(t, 15, env.backend.started[0]["interviewDurationMinutes"])
	assert.Equal(t, "+15550100", env.backend.started[0]["phoneNumber"])

	rec, _ = env.do(t, http.MethodPost, "/api/v1/interviews", sess.ID, map[string]any{
		"role": "Backend", "skills": "Go", "durationMinutes": 7,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBackendErrorLogsRequestID(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	var assigned string
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assigned = middleware.GetReqID(r.Context())
		env.server.respondBackendError(w, r, errors.New("connection refused"), "load interview")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/interviews/42", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	require.NotEmpty(t, assigned)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	assert.Equal(t, "backend call failed", entry["msg"])
	assert.Equal(t, assigned, entry["request_id"])
}

func TestGetInterview(t *testing.T) {
	env := newTestEnv(t)
	sess := env.signedIn(t, models.RoleUser)

	rec, _ := env.do(t, http.MethodGet, "/api/v1/interviews/42", sess.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body := env.do(t, http.MethodGet, "/api/v1/interviews/7", sess.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "interview not found", body.Error.Message)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/interviews/abc", sess.ID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListLanguages(t *testing.T) {
	env := newTestEnv(t)
	sess := env.signedIn(t, models.RoleUser)

	rec, body := env.do(t, http.MethodGet, "/api/v1/languages", sess.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var langs []models.Language
	require.NoError(t, json.Unmarshal(body.Data, &langs))
	assert.NotEmpty(t, langs)
}
