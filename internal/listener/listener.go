// Package listener provides a Postgres LISTEN/NOTIFY consumer for threshold
// changes. It holds a dedicated pgx connection (not from the pool) listening
// on the `threshold_changed` channel.
//
// When a recipient saves their alert threshold, the store fires pg_notify
// with the owner id; a monitor subscribed for that owner reloads the
// threshold and invalidates its recent ledger entries.
package listener

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quakewatch/quakewatch/internal/monitor"
	"github.com/quakewatch/quakewatch/internal/threshold"
)

const (
	channel          = "threshold_changed"
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// Start opens a dedicated connection and listens on the threshold_changed
// channel, forwarding changes for ownerID to the monitor. It reconnects
// automatically on connection loss. Blocks until ctx is cancelled. Intended
// to be called with `go`.
func Start(ctx context.Context, dbURL string, pool *pgxpool.Pool, mon *monitor.Monitor, ownerID string, logger *slog.Logger) {
	backoff := reconnectBackoff

	for {
		err := listenLoop(ctx, dbURL, pool, mon, ownerID, logger)
		if ctx.Err() != nil {
			logger.Info("Threshold listener stopped (context cancelled)")
			return
		}

		logger.Error("Threshold listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, maxReconnect)
		case <-ctx.Done():
			return
		}
	}
}

// listenLoop runs a single listen session. Returns when the connection drops
// or the context is cancelled.
func listenLoop(ctx context.Context, dbURL string, pool *pgxpool.Pool, mon *monitor.Monitor, ownerID string, logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	_, err = conn.Exec(ctx, "LISTEN "+channel)
	if err != nil {
		return fmt.Errorf("LISTEN %s: %w", channel, err)
	}
	logger.Info("Threshold listener connected", "channel", channel, "owner", ownerID)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		// Payload is the owner id whose threshold changed; other owners'
		// changes are irrelevant to this monitor.
		if notification.Payload != ownerID {
			continue
		}

		t, err := threshold.Get(ctx, pool, ownerID)
		if err != nil {
			logger.Warn("Failed to reload changed threshold",
				"owner", ownerID, "error", err)
			continue
		}

		logger.Info("Threshold change received",
			"owner", ownerID,
			"min_magnitude", t.MinMagnitude,
			"radius_km", t.RadiusKm)
		mon.ThresholdChanged(t)
	}
}
