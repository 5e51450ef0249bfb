// Package maintenance runs periodic background tasks as Go tickers: pruning
// the delivery audit log and expiring old drill events. All scheduled work
// is driven from Go since the API is already a persistent, long-running
// service.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quakewatch/quakewatch/internal/drill"
)

const (
	deliveryRetention = "30 days"
	drillRetention    = 7 * 24 * time.Hour
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	CleanupInterval time.Duration
}

// Start launches the maintenance tickers. Blocks until ctx is cancelled.
// Intended to be called with `go`.
func Start(ctx context.Context, pool *pgxpool.Pool, cfg Config, logger *slog.Logger) {
	if cfg.CleanupInterval <= 0 {
		logger.Info("Maintenance disabled")
		return
	}
	logger.Info("Maintenance ticker started", "cleanup", cfg.CleanupInterval)

	ticker := time.NewTicker(cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleanup(ctx, pool, logger)
		case <-ctx.Done():
			logger.Info("Maintenance ticker stopped")
			return
		}
	}
}

// cleanup prunes delivery-log rows past retention and drill events older
// than a week.
func cleanup(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) {
	tag, err := pool.Exec(ctx, "delivery_purge_older", deliveryRetention)
	if err != nil {
		logger.Warn("Delivery log cleanup failed", "error", err)
	} else if tag.RowsAffected() > 0 {
		logger.Info("Pruned delivery log", "rows", tag.RowsAffected())
	}

	removed, err := drill.PurgeOlderThan(ctx, pool, time.Now().Add(-drillRetention))
	if err != nil {
		logger.Warn("Drill cleanup failed", "error", err)
	} else if removed > 0 {
		logger.Info("Pruned old drill events", "rows", removed)
	}
}
