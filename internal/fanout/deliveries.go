package fanout

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quakewatch/quakewatch/internal/seismic"
	"github.com/quakewatch/quakewatch/internal/threshold"
)

// PGSource adapts the Postgres threshold store to the Source interface.
type PGSource struct {
	Pool *pgxpool.Pool
}

func (s PGSource) SMSRecipients(ctx context.Context) ([]threshold.Recipient, error) {
	return threshold.ListSMSEnabled(ctx, s.Pool)
}

// PGRecorder writes per-recipient outcomes to the alert_deliveries audit
// table. Best-effort: callers log failures and move on.
type PGRecorder struct {
	Pool *pgxpool.Pool
}

func (r PGRecorder) Record(ctx context.Context, batchID string, ev seismic.Event, outcomes []Outcome, failed bool) error {
	status := "sent"
	if failed {
		status = "failed"
	}
	for _, o := range outcomes {
		_, err := r.Pool.Exec(ctx, "delivery_insert",
			batchID, o.OwnerID, o.Username, o.Phone, o.DistanceKm,
			o.Label, ev.Magnitude, ev.Place, status,
		)
		if err != nil {
			return fmt.Errorf("insert delivery row: %w", err)
		}
	}
	return nil
}
