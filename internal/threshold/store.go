package threshold

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Get returns the stored threshold for an owner, or ErrNotFound.
func Get(ctx context.Context, pool *pgxpool.Pool, ownerID string) (Threshold, error) {
	var t Threshold
	err := pool.QueryRow(ctx, "threshold_by_owner", ownerID).Scan(
		&t.OwnerID, &t.Latitude, &t.Longitude, &t.LocationName,
		&t.MinMagnitude, &t.RadiusKm, &t.SMSEnabled, &t.PushEnabled,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Threshold{}, ErrNotFound
	}
	if err != nil {
		return Threshold{}, fmt.Errorf("get threshold: %w", err)
	}
	return t, nil
}

// Upsert creates or fully replaces the owner's threshold, then signals
// `threshold_changed` so running monitors re-evaluate the last day under the
// new rule. Input must already be validated.
func Upsert(ctx context.Context, pool *pgxpool.Pool, t Threshold) error {
	_, err := pool.Exec(ctx, "threshold_upsert",
		t.OwnerID, t.Latitude, t.Longitude, t.LocationName,
		t.MinMagnitude, t.RadiusKm, t.SMSEnabled, t.PushEnabled,
	)
	if err != nil {
		return fmt.Errorf("upsert threshold: %w", err)
	}

	if _, err := pool.Exec(ctx, "threshold_changed_notify", t.OwnerID); err != nil {
		return fmt.Errorf("notify threshold change: %w", err)
	}
	return nil
}

// Recipient is a threshold joined with its owner's contact details, as the
// fan-out path consumes it.
type Recipient struct {
	Threshold
	Username string
	Phone    string
}

// ListSMSEnabled returns every threshold with SMS alerts enabled, joined
// with owner contact details, in the store's natural retrieval order.
func ListSMSEnabled(ctx context.Context, pool *pgxpool.Pool) ([]Recipient, error) {
	rows, err := pool.Query(ctx, "thresholds_sms_enabled")
	if err != nil {
		return nil, fmt.Errorf("list sms thresholds: %w", err)
	}
	defer rows.Close()

	var recipients []Recipient
	for rows.Next() {
		var r Recipient
		var phone *string
		if err := rows.Scan(
			&r.OwnerID, &r.Latitude, &r.Longitude, &r.LocationName,
			&r.MinMagnitude, &r.RadiusKm, &r.Username, &phone,
		); err != nil {
			return nil, fmt.Errorf("scan sms threshold: %w", err)
		}
		if phone != nil {
			r.Phone = *phone
		}
		r.SMSEnabled = true
		recipients = append(recipients, r)
	}
	return recipients, rows.Err()
}

// OwnerContact returns the username and phone number for an owner. Phone may
// be empty when the user never stored one.
func OwnerContact(ctx context.Context, pool *pgxpool.Pool, ownerID string) (username, phone string, err error) {
	var p *string
	err = pool.QueryRow(ctx, "user_contact", ownerID).Scan(&username, &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", fmt.Errorf("user %s not found", ownerID)
	}
	if err != nil {
		return "", "", fmt.Errorf("get user contact: %w", err)
	}
	if p != nil {
		phone = *p
	}
	return username, phone, nil
}
