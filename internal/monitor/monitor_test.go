package monitor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/quakewatch/quakewatch/internal/ledger"
	"github.com/quakewatch/quakewatch/internal/seismic"
	"github.com/quakewatch/quakewatch/internal/threshold"
)

var testTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// stubFeed returns a fixed event slice, or an error.
type stubFeed struct {
	events []seismic.Event
	err    error
	calls  int
}

func (f *stubFeed) Events(ctx context.Context, start, end time.Time, minMagnitude float64, includeSynthetic bool) ([]seismic.Event, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func testLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l, err := ledger.Open(filepath.Join(t.TempDir(), "ledger.json"), testTime)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	return l
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMonitor(t *testing.T, feed Feed, led *ledger.Ledger) *Monitor {
	t.Helper()
	led.SetThreshold(threshold.Threshold{
		OwnerID:      "u1",
		Latitude:     14.60,
		Longitude:    120.98,
		MinMagnitude: 4.0,
		RadiusKm:     10,
	})
	return New(Options{
		Feed:             feed,
		Ledger:           led,
		Logger:           quietLogger(),
		FeedMinMagnitude: 3.0,
		Now:              func() time.Time { return testTime },
	})
}

func matchingEvent(minutesAgo int) seismic.Event {
	return seismic.Event{
		Time:      testTime.Add(-time.Duration(minutesAgo) * time.Minute).UnixMilli(),
		Latitude:  14.65,
		Longitude: 121.03,
		Magnitude: 5.1,
		Place:     fmt.Sprintf("Metro Manila, Philippines %d", minutesAgo),
	}
}

func TestFirstCycleIsCatchUp(t *testing.T) {
	feed := &stubFeed{events: []seismic.Event{matchingEvent(30)}}
	led := testLedger(t)
	m := newTestMonitor(t, feed, led)

	if opened := m.RunCycle(context.Background()); opened != nil {
		t.Fatal("catch-up cycle must never open an alert")
	}
	if m.State() != StateIdle {
		t.Errorf("state = %v, want idle", m.State())
	}
	if led.Len() != 1 {
		t.Errorf("catch-up should ledger the event, Len() = %d", led.Len())
	}
}

func TestSecondCycleOpensAlertForNewEvent(t *testing.T) {
	feed := &stubFeed{}
	led := testLedger(t)
	m := newTestMonitor(t, feed, led)

	m.RunCycle(context.Background()) // catch-up, empty feed

	feed.events = []seismic.Event{matchingEvent(5)}
	opened := m.RunCycle(context.Background())
	if opened == nil {
		t.Fatal("expected an alert for a fresh matching event")
	}
	if m.State() != StateAlertOpen {
		t.Errorf("state = %v, want alert open", m.State())
	}
	if !led.Has(opened.Event.Identity()) {
		t.Error("alerted event must be ledgered")
	}
}

func TestOneAlertPerCycle(t *testing.T) {
	feed := &stubFeed{}
	led := testLedger(t)
	m := newTestMonitor(t, feed, led)

	m.RunCycle(context.Background())

	// A burst of five matching events opens exactly one alert.
	for i := 1; i <= 5; i++ {
		feed.events = append(feed.events, matchingEvent(i))
	}
	if opened := m.RunCycle(context.Background()); opened == nil {
		t.Fatal("expected an alert from the burst")
	}

	// While the alert is open, cycles are skipped entirely.
	before := feed.calls
	if opened := m.RunCycle(context.Background()); opened != nil {
		t.Fatal("no evaluation may run while an alert is open")
	}
	if feed.calls != before {
		t.Error("skipped cycle must not hit the feed")
	}

	// After closing, the remaining burst events surface one at a time.
	m.CloseAlert()
	if opened := m.RunCycle(context.Background()); opened == nil {
		t.Fatal("expected the next burst event to alert after close")
	}
}

func TestDuplicateEventDoesNotRealert(t *testing.T) {
	feed := &stubFeed{}
	led := testLedger(t)
	m := newTestMonitor(t, feed, led)

	m.RunCycle(context.Background())

	ev := matchingEvent(5)
	feed.events = []seismic.Event{ev}
	if m.RunCycle(context.Background()) == nil {
		t.Fatal("expected initial alert")
	}
	m.CloseAlert()

	if opened := m.RunCycle(context.Background()); opened != nil {
		t.Error("the same event must not alert twice")
	}
}

func TestStaleEventIgnored(t *testing.T) {
	feed := &stubFeed{}
	led := testLedger(t)
	m := newTestMonitor(t, feed, led)

	m.RunCycle(context.Background())

	stale := matchingEvent(0)
	stale.Time = testTime.Add(-25 * time.Hour).UnixMilli()
	feed.events = []seismic.Event{stale}
	if opened := m.RunCycle(context.Background()); opened != nil {
		t.Error("events older than the recency window must not alert")
	}
}

func TestNonMatchingEventIsLedgeredSilently(t *testing.T) {
	feed := &stubFeed{}
	led := testLedger(t)
	m := newTestMonitor(t, feed, led)

	m.RunCycle(context.Background())

	weak := matchingEvent(5)
	weak.Magnitude = 3.2
	feed.events = []seismic.Event{weak}
	if opened := m.RunCycle(context.Background()); opened != nil {
		t.Fatal("event below the magnitude gate must not alert")
	}
	if !led.Has(weak.Identity()) {
		t.Error("non-matching event should still be ledgered as handled")
	}
}

func TestFeedFailureIsNoOp(t *testing.T) {
	feed := &stubFeed{err: fmt.Errorf("upstream down")}
	led := testLedger(t)
	m := newTestMonitor(t, feed, led)

	if opened := m.RunCycle(context.Background()); opened != nil {
		t.Fatal("failed fetch must not alert")
	}
	if m.State() != StateIdle {
		t.Errorf("state = %v, want idle after failed fetch", m.State())
	}
	if led.Len() != 0 {
		t.Error("failed fetch must ledger nothing")
	}

	// The failed cycle must not consume the catch-up pass.
	feed.err = nil
	feed.events = []seismic.Event{matchingEvent(5)}
	if opened := m.RunCycle(context.Background()); opened != nil {
		t.Error("first successful cycle is still the catch-up pass")
	}
}

func TestThresholdChangedReevaluatesRecent(t *testing.T) {
	feed := &stubFeed{}
	led := testLedger(t)
	m := newTestMonitor(t, feed, led)

	m.RunCycle(context.Background())

	m.ThresholdChanged(threshold.Threshold{
		OwnerID:      "u1",
		Latitude:     14.60,
		Longitude:    120.98,
		MinMagnitude: 4.5,
		RadiusKm:     10,
	})

	// Too weak under the current gate: handled silently.
	ev := matchingEvent(30)
	ev.Magnitude = 4.2
	feed.events = []seismic.Event{ev}
	m.RunCycle(context.Background())
	if !led.Has(ev.Identity()) {
		t.Fatal("event should be ledgered under the old threshold")
	}

	// Loosening the gate re-opens the last day for evaluation.
	m.ThresholdChanged(threshold.Threshold{
		OwnerID:      "u1",
		Latitude:     14.60,
		Longitude:    120.98,
		MinMagnitude: 4.0,
		RadiusKm:     50,
	})
	if led.Has(ev.Identity()) {
		t.Fatal("recent entries should be invalidated on threshold change")
	}

	if opened := m.RunCycle(context.Background()); opened == nil {
		t.Error("re-evaluation under the new threshold should alert")
	}
}

func TestOnAlertHook(t *testing.T) {
	feed := &stubFeed{}
	led := testLedger(t)
	m := newTestMonitor(t, feed, led)

	var fired *ActiveAlert
	m.onAlert = func(a ActiveAlert) { fired = &a }

	m.RunCycle(context.Background())
	feed.events = []seismic.Event{matchingEvent(5)}
	m.RunCycle(context.Background())

	if fired == nil {
		t.Fatal("OnAlert hook should fire when an alert opens")
	}
	if fired.Event.Magnitude != 5.1 {
		t.Errorf("hook received magnitude %g, want 5.1", fired.Event.Magnitude)
	}
}

func TestOnAlertHookMayCloseSynchronously(t *testing.T) {
	feed := &stubFeed{}
	led := testLedger(t)
	m := newTestMonitor(t, feed, led)

	// Acknowledging straight from the hook must not deadlock the cycle.
	m.onAlert = func(a ActiveAlert) { m.CloseAlert() }

	m.RunCycle(context.Background())
	feed.events = []seismic.Event{matchingEvent(5)}

	done := make(chan *ActiveAlert, 1)
	go func() { done <- m.RunCycle(context.Background()) }()

	select {
	case opened := <-done:
		if opened == nil {
			t.Fatal("expected the cycle to open an alert")
		}
	case <-time.After(time.Second):
		t.Fatal("cycle deadlocked with a synchronous CloseAlert hook")
	}

	if m.State() != StateIdle {
		t.Errorf("state = %v, want idle after the hook closed the alert", m.State())
	}
	if m.Active() != nil {
		t.Error("no alert should remain active")
	}
}

func TestCloseAlertOutsideAlertStateIsNoOp(t *testing.T) {
	m := newTestMonitor(t, &stubFeed{}, testLedger(t))
	m.CloseAlert()
	if m.State() != StateIdle {
		t.Errorf("state = %v, want idle", m.State())
	}
}
