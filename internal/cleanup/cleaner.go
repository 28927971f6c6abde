package cleanup

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper removes expired records and reports how many went
type Sweeper interface {
	DeleteExpiredSessions(ctx context.Context) (int, error)
}

// Cleaner handles periodic cleanup of expired web sessions
type Cleaner struct {
	store    Sweeper
	interval time.Duration
}

// NewCleaner creates a new cleanup worker
func NewCleaner(store Sweeper, interval time.Duration) *Cleaner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &Cleaner{
		store:    store,
		interval: interval,
	}
}

// Run sweeps immediately, then on every tick until ctx is done
func (c *Cleaner) Run(ctx context.Context) error {
	slog.Info("cleanup worker started", "interval", c.interval)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.cleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup worker stopped")
			return nil
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *Cleaner) cleanup(ctx context.Context) {
	slog.Debug("running cleanup cycle")

	n, err := c.store.DeleteExpiredSessions(ctx)
	if err != nil {
		slog.Error("failed to delete expired sessions", "error", err)
		return
	}
	if n > 0 {
		slog.Info("expired sessions deleted", "count", n)
	}
}
