package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/interview-console/internal/auth"
	"github.com/terra-clan/interview-console/internal/catalog"
	"github.com/terra-clan/interview-console/internal/config"
	"github.com/terra-clan/interview-console/internal/health"
	"github.com/terra-clan/interview-console/internal/judge"
	"github.com/terra-clan/interview-console/internal/models"
	"github.com/terra-clan/interview-console/internal/storage"
	"github.com/terra-clan/interview-console/pkg/client"
)

// Dependencies are the collaborators the server routes to
type Dependencies struct {
	BackendURL string
	HTTPClient *http.Client
	Repo       storage.Repository
	Runner     judge.Runner
	Catalog    *catalog.Loader
	Health     *health.Registry
}

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	deps           Dependencies
	authMiddleware *AuthMiddleware
}

// NewServer creates a new API server
func NewServer(cfg config.ServerConfig, deps Dependencies) *Server {
	if deps.HTTPClient == nil {
		deps.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if deps.Catalog == nil {
		deps.Catalog = catalog.NewLoader()
	}
	if deps.Health == nil {
		deps.Health = health.NewRegistry(0)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 120 * time.Second
	}

	s := &Server{
		config:         cfg,
		deps:           deps,
		authMiddleware: NewAuthMiddleware(deps.Repo),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	origins := s.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		// The chat socket is long-lived and stays outside the request timeout
		r.With(s.authMiddleware.Authenticate).Get("/interviews/{id}/ws", s.handleChatWS)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.config.RequestTimeout))

			r.Route("/auth", func(r chi.Router) {
				r.Post("/otp/send", s.handleSendOTP)
				r.Post("/otp/verify", s.handleVerifyOTP)
				r.Post("/admin/login", s.handleAdminLogin)

				r.With(s.authMiddleware.Authenticate).Post("/register", s.handleRegister)
				r.With(s.authMiddleware.Authenticate).Post("/logout", s.handleLogout)
			})

			r.Group(func(r chi.Router) {
				r.Use(s.authMiddleware.Authenticate)

				r.Get("/me", s.handleMe)
				r.Get("/languages", s.handleListLanguages)
				r.Post("/resume", s.handleUploadResume)

				r.Get("/interviews", s.handleListInterviews)
				r.Post("/interviews", s.handleStartInterview)
				r.Get("/interviews/{id}", s.handleGetInterview)

				r.Route("/admin", func(r chi.Router) {
					r.Use(s.authMiddleware.RequireRole(models.RoleAdmin))
					r.Get("/stats", s.handleAdminStats)
					r.Get("/users", s.handleAdminUsers)
					r.Get("/interviews", s.handleAdminInterviews)
				})
			})
		})
	})

	s.router = r
}

// backendFor returns an API client acting with the session's credentials.
// onExpired runs after the backend rejected a refresh.
func (s *Server) backendFor(sess *models.WebSession, onExpired func()) *client.Client {
	opts := []client.Option{client.WithHTTPClient(s.deps.HTTPClient)}
	if sess != nil {
		opts = append(opts, client.WithCredentialStore(auth.NewSessionCredentials(s.deps.Repo, sess.ID)))
	}
	if onExpired != nil {
		opts = append(opts, client.WithAuthExpiredHandler(onExpired))
	}
	return client.NewClient(s.deps.BackendURL, opts...)
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
