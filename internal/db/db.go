// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quakewatch/quakewatch/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers all statements the API and engine
// layers use. Prepared statements eliminate parse overhead on every request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Users
		"user_contact": "SELECT username, phone_number FROM users WHERE id = $1",

		// Alert thresholds
		"threshold_by_owner": `
			SELECT owner_id, latitude, longitude, location_name,
			       min_magnitude, radius_km, sms_enabled, push_enabled
			FROM alert_thresholds WHERE owner_id = $1`,
		"threshold_upsert": `
			INSERT INTO alert_thresholds (
				owner_id, latitude, longitude, location_name,
				min_magnitude, radius_km, sms_enabled, push_enabled, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW())
			ON CONFLICT (owner_id) DO UPDATE SET
				latitude = EXCLUDED.latitude,
				longitude = EXCLUDED.longitude,
				location_name = EXCLUDED.location_name,
				min_magnitude = EXCLUDED.min_magnitude,
				radius_km = EXCLUDED.radius_km,
				sms_enabled = EXCLUDED.sms_enabled,
				push_enabled = EXCLUDED.push_enabled,
				updated_at = NOW()`,
		"thresholds_sms_enabled": `
			SELECT t.owner_id, t.latitude, t.longitude, t.location_name,
			       t.min_magnitude, t.radius_km, u.username, u.phone_number
			FROM alert_thresholds t
			JOIN users u ON u.id = t.owner_id
			WHERE t.sms_enabled`,
		"threshold_changed_notify": "SELECT pg_notify('threshold_changed', $1)",

		// Drill events
		"drill_insert": `
			INSERT INTO drill_events (
				occurred_at_ms, latitude, longitude, depth_km,
				magnitude, place, magnitude_type, tsunami, created_by
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			RETURNING id`,
		"drill_list": `
			SELECT occurred_at_ms, latitude, longitude, depth_km,
			       magnitude, place, magnitude_type, tsunami
			FROM drill_events
			WHERE occurred_at_ms >= $1 AND occurred_at_ms <= $2 AND magnitude >= $3
			ORDER BY occurred_at_ms DESC`,
		"drill_purge_all":   "DELETE FROM drill_events",
		"drill_purge_older": "DELETE FROM drill_events WHERE occurred_at_ms < $1",

		// Delivery audit log
		"delivery_insert": `
			INSERT INTO alert_deliveries (
				batch_id, owner_id, username, phone, distance_km,
				label, magnitude, place, status
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		"delivery_purge_older": "DELETE FROM alert_deliveries WHERE created_at < NOW() - $1::interval",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
