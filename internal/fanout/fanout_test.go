package fanout

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/quakewatch/quakewatch/internal/seismic"
	"github.com/quakewatch/quakewatch/internal/threshold"
)

type stubSource struct {
	recipients []threshold.Recipient
	err        error
}

func (s stubSource) SMSRecipients(ctx context.Context) ([]threshold.Recipient, error) {
	return s.recipients, s.err
}

type stubDeliverer struct {
	text   string
	phones []string
	calls  int
	err    error
}

func (d *stubDeliverer) SendBatch(ctx context.Context, text string, phoneNumbers []string) error {
	d.calls++
	d.text = text
	d.phones = phoneNumbers
	return d.err
}

func recipient(owner, username, phone string, lat, lon, minMag, radius float64) threshold.Recipient {
	return threshold.Recipient{
		Threshold: threshold.Threshold{
			OwnerID:      owner,
			Latitude:     lat,
			Longitude:    lon,
			LocationName: "Home",
			MinMagnitude: minMag,
			RadiusKm:     radius,
			SMSEnabled:   true,
		},
		Username: username,
		Phone:    phone,
	}
}

// manilaEvent is 7.74 km from (14.60, 120.98).
func manilaEvent() seismic.Event {
	return seismic.Event{
		Time:      time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC).UnixMilli(),
		Latitude:  14.65,
		Longitude: 121.03,
		DepthKm:   10,
		Magnitude: 5.1,
		Place:     "Metro Manila, Philippines",
	}
}

func newTestNotifier(src Source, del Deliverer) *Notifier {
	return New(src, del, nil, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNotifyMatchingRecipients(t *testing.T) {
	// bob is 200+ km away, carol's magnitude gate excludes the event, and
	// dave's address cannot be normalized; only alice should be texted.
	src := stubSource{recipients: []threshold.Recipient{
		recipient("u1", "alice", "09171234567", 14.60, 120.98, 4.0, 10),
		recipient("u2", "bob", "09181234567", 16.4023, 120.5960, 4.0, 10),
		recipient("u3", "carol", "09191234567", 14.60, 120.98, 6.0, 10),
		recipient("u4", "dave", "not-a-phone", 14.60, 120.98, 4.0, 10),
	}}
	del := &stubDeliverer{}

	result, err := newTestNotifier(src, del).Notify(context.Background(), manilaEvent(), nil)
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	if result.Notified != 1 {
		t.Errorf("Notified = %d, want 1", result.Notified)
	}
	if del.calls != 1 {
		t.Fatalf("SendBatch calls = %d, want 1", del.calls)
	}
	if len(del.phones) != 1 || del.phones[0] != "+639171234567" {
		t.Errorf("phones = %v, want the single normalized match", del.phones)
	}
	if result.BatchID == "" {
		t.Error("result should carry a batch id")
	}
}

func TestNotifyDeduplicatesByAddress(t *testing.T) {
	// Two thresholds resolving to the same normalized number get one text.
	src := stubSource{recipients: []threshold.Recipient{
		recipient("u1", "alice", "09171234567", 14.60, 120.98, 4.0, 10),
		recipient("u5", "alice-tablet", "+639171234567", 14.61, 120.99, 4.0, 10),
	}}
	del := &stubDeliverer{}

	result, err := newTestNotifier(src, del).Notify(context.Background(), manilaEvent(), nil)
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if result.Notified != 1 {
		t.Errorf("Notified = %d, want 1 after address dedup", result.Notified)
	}
}

func TestNotifyEmptyQueueIsSuccess(t *testing.T) {
	del := &stubDeliverer{}
	result, err := newTestNotifier(stubSource{}, del).Notify(context.Background(), manilaEvent(), nil)
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if result.Notified != 0 || result.Failed {
		t.Errorf("empty queue should succeed with 0 notified, got %+v", result)
	}
	if del.calls != 0 {
		t.Error("empty queue must not hit the deliverer")
	}
}

func TestNotifyDeliveryFailurePreservesQueue(t *testing.T) {
	src := stubSource{recipients: []threshold.Recipient{
		recipient("u1", "alice", "09171234567", 14.60, 120.98, 4.0, 10),
	}}
	del := &stubDeliverer{err: fmt.Errorf("gateway down")}

	result, err := newTestNotifier(src, del).Notify(context.Background(), manilaEvent(), nil)
	if err == nil {
		t.Fatal("delivery failure must surface as an error")
	}
	if !result.Failed {
		t.Error("result should be marked failed")
	}
	if result.Notified != 0 {
		t.Errorf("Notified = %d, want 0 on failure", result.Notified)
	}
	if len(result.Recipients) != 1 || result.Recipients[0].Username != "alice" {
		t.Errorf("failed result must preserve the queue, got %+v", result.Recipients)
	}
}

func TestNotifySourceError(t *testing.T) {
	src := stubSource{err: fmt.Errorf("db down")}
	if _, err := newTestNotifier(src, &stubDeliverer{}).Notify(context.Background(), manilaEvent(), nil); err == nil {
		t.Error("source failure must surface as an error")
	}
}

func TestNotifyOverrideTakesPriority(t *testing.T) {
	// The stored record for the same address would not match; the live
	// override does, and wins.
	src := stubSource{recipients: []threshold.Recipient{
		recipient("u1", "alice", "09171234567", 16.4023, 120.5960, 4.0, 10),
	}}
	del := &stubDeliverer{}

	override := &Override{
		Threshold: threshold.Threshold{
			OwnerID:      "u1",
			Latitude:     14.60,
			Longitude:    120.98,
			MinMagnitude: 4.0,
			RadiusKm:     10,
		},
		Username: "alice",
		Phone:    "09171234567",
	}

	result, err := newTestNotifier(src, del).Notify(context.Background(), manilaEvent(), override)
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if result.Notified != 1 {
		t.Fatalf("Notified = %d, want 1", result.Notified)
	}
	if result.Recipients[0].Label != "User Location" {
		t.Errorf("override match should be labelled as the live location, got %q", result.Recipients[0].Label)
	}
}

func TestNotifyOverrideRequiresExplicitAnchor(t *testing.T) {
	del := &stubDeliverer{}
	override := &Override{
		Threshold: threshold.Threshold{OwnerID: "u1", MinMagnitude: 4.0, RadiusKm: 1000},
		Username:  "alice",
		Phone:     "09171234567",
	}

	result, err := newTestNotifier(stubSource{}, del).Notify(context.Background(), manilaEvent(), override)
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if result.Notified != 0 {
		t.Error("anchorless override must not match under the strict rule")
	}
}

func TestComposeMessage(t *testing.T) {
	text := ComposeMessage(manilaEvent())

	for _, want := range []string{"EARTHQUAKE ALERT", "EMERGENCY", "5.1", "Moderate", "10.0 km"} {
		if !strings.Contains(text, want) {
			t.Errorf("message should contain %q:\n%s", want, text)
		}
	}
}
