// Package drill stores synthetic earthquakes injected for tests and alert
// drills. Drill events merge into the engine feed when requested and are
// flagged so ledgers can bulk-purge them.
package drill

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quakewatch/quakewatch/internal/seismic"
)

// Create persists a synthetic event and returns its row id. The event's
// magnitude type defaults to "SIM" when unset.
func Create(ctx context.Context, pool *pgxpool.Pool, ev seismic.Event, createdBy string) (int64, error) {
	magType := ev.MagnitudeType
	if magType == "" {
		magType = "SIM"
	}

	var id int64
	err := pool.QueryRow(ctx, "drill_insert",
		ev.Time, ev.Latitude, ev.Longitude, ev.DepthKm,
		ev.Magnitude, ev.Place, magType, ev.Tsunami, createdBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert drill event: %w", err)
	}
	return id, nil
}

// List returns drill events in [start, end] at or above minMagnitude, time
// descending, flagged Synthetic.
func List(ctx context.Context, pool *pgxpool.Pool, start, end time.Time, minMagnitude float64) ([]seismic.Event, error) {
	rows, err := pool.Query(ctx, "drill_list",
		start.UnixMilli(), end.UnixMilli(), minMagnitude)
	if err != nil {
		return nil, fmt.Errorf("list drill events: %w", err)
	}
	defer rows.Close()

	var events []seismic.Event
	for rows.Next() {
		var ev seismic.Event
		if err := rows.Scan(
			&ev.Time, &ev.Latitude, &ev.Longitude, &ev.DepthKm,
			&ev.Magnitude, &ev.Place, &ev.MagnitudeType, &ev.Tsunami,
		); err != nil {
			return nil, fmt.Errorf("scan drill event: %w", err)
		}
		ev.Synthetic = true
		events = append(events, ev)
	}
	return events, rows.Err()
}

// PurgeAll removes every drill event. Returns the number removed.
func PurgeAll(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	tag, err := pool.Exec(ctx, "drill_purge_all")
	if err != nil {
		return 0, fmt.Errorf("purge drill events: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PurgeOlderThan removes drill events that occurred before the cutoff.
func PurgeOlderThan(ctx context.Context, pool *pgxpool.Pool, cutoff time.Time) (int64, error) {
	tag, err := pool.Exec(ctx, "drill_purge_older", cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("purge old drill events: %w", err)
	}
	return tag.RowsAffected(), nil
}
