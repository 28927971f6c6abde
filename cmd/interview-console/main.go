package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/terra-clan/interview-console/internal/api"
	"github.com/terra-clan/interview-console/internal/catalog"
	"github.com/terra-clan/interview-console/internal/cleanup"
	"github.com/terra-clan/interview-console/internal/config"
	"github.com/terra-clan/interview-console/internal/health"
	"github.com/terra-clan/interview-console/internal/judge"
	"github.com/terra-clan/interview-console/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.Level,
	}))
	slog.SetDefault(logger)

	slog.Info("starting interview-console",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"backend", cfg.Backend.BaseURL,
		"storage", cfg.Storage.Driver,
		"judge", cfg.Judge.Driver,
	)

	if err := run(cfg); err != nil {
		slog.Error("interview-console failed", "error", err)
		os.Exit(1)
	}
	slog.Info("interview-console stopped")
}

func run(cfg *config.Config) error {
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	repo, err := storage.Open(initCtx, cfg.StorageOptions())
	if err != nil {
		return err
	}
	defer repo.Close()
	slog.Info("session store ready", "driver", cfg.Storage.Driver)

	cat := catalog.NewLoader()
	if err := cat.LoadFromDir(cfg.Catalog.Dir); err != nil {
		slog.Warn("failed to load catalog from dir, using built-in languages", "dir", cfg.Catalog.Dir, "error", err)
	}

	checks := health.NewRegistry(5 * time.Second)
	checks.Register("store", health.CheckerFunc(repo.Ping))

	runner, closeRunner, err := newRunner(cfg, cat, checks)
	if err != nil {
		return err
	}
	defer closeRunner()

	server := api.NewServer(cfg.Server, api.Dependencies{
		BackendURL: cfg.Backend.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.Backend.Timeout},
		Repo:       repo,
		Runner:     runner,
		Catalog:    cat,
		Health:     checks,
	})
	httpServer := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     server.Router(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return cleanup.NewCleaner(repo, cfg.Cleanup.Interval).Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
			return err
		}
		return nil
	})

	return g.Wait()
}

// newRunner builds the configured code runner and registers its health check
func newRunner(cfg *config.Config, cat *catalog.Loader, checks *health.Registry) (judge.Runner, func(), error) {
	runner, err := cfg.Runner(cat.Languages(), cat.LanguageIDs())
	if err != nil {
		return nil, nil, err
	}

	switch r := runner.(type) {
	case *judge.DockerRunner:
		checks.Register("docker", health.CheckerFunc(r.Ping))
		slog.Info("docker runner ready", "host", cfg.Judge.DockerHost)
		return r, func() {
			if err := r.Close(); err != nil {
				slog.Error("docker runner close error", "error", err)
			}
		}, nil
	case *judge.Judge0Client:
		slog.Info("judge0 runner ready", "url", cfg.Judge.Judge0URL, "languages", r.Languages())
	}
	return runner, func() {}, nil
}
