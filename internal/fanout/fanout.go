// Package fanout implements the server-side notification path: for one
// event, scan every SMS-enabled threshold, filter by magnitude and radius,
// deduplicate by normalized delivery address, and dispatch a single batched
// SMS call. Fan-out is independent of the client-side dedup ledger; a failed
// batch is reported, never retried inline, and rolls nothing back.
package fanout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quakewatch/quakewatch/internal/evaluate"
	"github.com/quakewatch/quakewatch/internal/geo"
	"github.com/quakewatch/quakewatch/internal/seismic"
	"github.com/quakewatch/quakewatch/internal/sms"
	"github.com/quakewatch/quakewatch/internal/threshold"
)

// Source yields the persisted SMS-enabled recipients. Implemented over
// Postgres by threshold.ListSMSEnabled; stubbed in tests.
type Source interface {
	SMSRecipients(ctx context.Context) ([]threshold.Recipient, error)
}

// Deliverer submits one batched delivery call. *sms.Gateway implements it.
type Deliverer interface {
	SendBatch(ctx context.Context, text string, phoneNumbers []string) error
}

// Recorder persists per-recipient outcomes for audit. May be nil.
type Recorder interface {
	Record(ctx context.Context, batchID string, ev seismic.Event, outcomes []Outcome, failed bool) error
}

// Override is a live, not-yet-persisted threshold for the triggering
// recipient. It is evaluated first, with the strict rule (explicit anchor
// required), so an unsaved configuration takes priority over the stored one.
type Override struct {
	threshold.Threshold
	Username string
	Phone    string
}

// Outcome is one queued recipient's result.
type Outcome struct {
	OwnerID    string  `json:"owner_id,omitempty"`
	Username   string  `json:"username"`
	Phone      string  `json:"-"`
	DistanceKm float64 `json:"distance_km"`
	Label      string  `json:"label"`
}

// Result reports a fan-out invocation. When the delivery call fails, Failed
// is set and Recipients preserves the queue that would have been notified,
// for audit or operator retry.
type Result struct {
	BatchID    string    `json:"batch_id"`
	Notified   int       `json:"notified"`
	Failed     bool      `json:"failed"`
	Recipients []Outcome `json:"recipients"`
}

// Notifier fans one event out over the SMS channel. Invocations for
// different events are independent: each builds its own address-dedup set
// and takes its own threshold snapshot.
type Notifier struct {
	source          Source
	deliverer       Deliverer
	recorder        Recorder
	deliveryTimeout time.Duration
	logger          *slog.Logger
}

// New creates a Notifier. recorder may be nil (no audit log).
func New(source Source, deliverer Deliverer, recorder Recorder, deliveryTimeout time.Duration, logger *slog.Logger) *Notifier {
	if deliveryTimeout <= 0 {
		deliveryTimeout = 20 * time.Second
	}
	return &Notifier{
		source:          source,
		deliverer:       deliverer,
		recorder:        recorder,
		deliveryTimeout: deliveryTimeout,
		logger:          logger,
	}
}

// Notify evaluates every recipient against the event and dispatches one
// batched delivery call. An empty queue is success with zero notified, not
// an error. A delivery failure is returned alongside the preserved queue.
func (n *Notifier) Notify(ctx context.Context, ev seismic.Event, override *Override) (Result, error) {
	result := Result{BatchID: uuid.NewString()}
	queued := make(map[string]struct{})
	var phones []string

	// Live override first: a just-changed-but-unsaved threshold takes
	// priority over the persisted record for the same address.
	if override != nil {
		if dist, ok := evaluate.MatchesStrict(ev, override.Threshold); ok {
			if phone, err := sms.NormalizePhone(override.Phone); err == nil {
				queued[phone] = struct{}{}
				phones = append(phones, phone)
				result.Recipients = append(result.Recipients, Outcome{
					OwnerID:    override.OwnerID,
					Username:   override.Username,
					Phone:      phone,
					DistanceKm: dist,
					Label:      "User Location",
				})
			} else {
				n.logger.Warn("Override recipient excluded, bad phone number",
					"owner_id", override.OwnerID, "error", err)
			}
		}
	}

	recipients, err := n.source.SMSRecipients(ctx)
	if err != nil {
		return result, fmt.Errorf("load sms recipients: %w", err)
	}

	for _, r := range recipients {
		if r.Phone == "" {
			continue
		}
		phone, err := sms.NormalizePhone(r.Phone)
		if err != nil {
			n.logger.Warn("Recipient excluded, bad phone number",
				"owner_id", r.OwnerID, "error", err)
			continue
		}
		if _, dup := queued[phone]; dup {
			continue
		}
		if ev.Magnitude < r.MinMagnitude {
			continue
		}

		epi := evaluate.Epicenter(ev)
		dist := geo.DistanceKm(r.Latitude, r.Longitude, epi.Latitude, epi.Longitude)
		if dist > r.RadiusKm {
			continue
		}

		queued[phone] = struct{}{}
		phones = append(phones, phone)
		result.Recipients = append(result.Recipients, Outcome{
			OwnerID:    r.OwnerID,
			Username:   r.Username,
			Phone:      phone,
			DistanceKm: dist,
			Label:      r.LocationName,
		})
	}

	if len(phones) == 0 {
		n.logger.Info("No recipients in range to notify",
			"magnitude", ev.Magnitude, "place", ev.Place)
		return result, nil
	}

	text := ComposeMessage(ev)

	sendCtx, cancel := context.WithTimeout(ctx, n.deliveryTimeout)
	sendErr := n.deliverer.SendBatch(sendCtx, text, phones)
	cancel()

	if sendErr != nil {
		result.Failed = true
		n.record(ctx, result, ev)
		n.logger.Error("SMS batch failed",
			"batch_id", result.BatchID, "recipients", len(phones), "error", sendErr)
		return result, fmt.Errorf("deliver sms batch: %w", sendErr)
	}

	result.Notified = len(phones)
	n.record(ctx, result, ev)
	n.logger.Info("Earthquake alert fanned out",
		"batch_id", result.BatchID,
		"recipients", len(phones),
		"magnitude", ev.Magnitude,
		"place", ev.Place)
	return result, nil
}

func (n *Notifier) record(ctx context.Context, result Result, ev seismic.Event) {
	if n.recorder == nil {
		return
	}
	if err := n.recorder.Record(ctx, result.BatchID, ev, result.Recipients, result.Failed); err != nil {
		n.logger.Warn("Delivery audit write failed", "batch_id", result.BatchID, "error", err)
	}
}
