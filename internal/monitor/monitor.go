// Package monitor runs the client-side polling loop: fetch the event feed,
// evaluate unseen recent events against the recipient's threshold, commit
// outcomes to the dedup ledger, and raise at most one active alert at a
// time.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/quakewatch/quakewatch/internal/evaluate"
	"github.com/quakewatch/quakewatch/internal/geo"
	"github.com/quakewatch/quakewatch/internal/ledger"
	"github.com/quakewatch/quakewatch/internal/seismic"
	"github.com/quakewatch/quakewatch/internal/threshold"
)

// recencyWindow bounds evaluation: events older than this are assumed
// settled and are skipped entirely, not even ledgered.
const recencyWindow = 24 * time.Hour

// State is the monitor's lifecycle state.
type State string

const (
	StateIdle       State = "idle"
	StateEvaluating State = "evaluating"
	StateAlertOpen  State = "alert_open"
)

// Feed supplies events for a time window. Implemented by feed.Client;
// stubbed in tests.
type Feed interface {
	Events(ctx context.Context, start, end time.Time, minMagnitude float64, includeSynthetic bool) ([]seismic.Event, error)
}

// ActiveAlert is the single live alert interruption for this recipient
// session.
type ActiveAlert struct {
	Event    seismic.Event
	OpenedAt time.Time
}

// Options configures a Monitor.
type Options struct {
	Feed             Feed
	Ledger           *ledger.Ledger
	Device           *geo.Coordinate // last-known device coordinate, may be nil
	Logger           *slog.Logger
	Interval         time.Duration
	FetchTimeout     time.Duration
	FeedMinMagnitude float64
	IncludeSynthetic bool

	// OnAlert fires when an alert opens, at the end of the cycle with no
	// monitor lock held. Calling CloseAlert or ThresholdChanged from the
	// hook is safe; slow work should still hand off to a goroutine since
	// the hook blocks the polling loop.
	OnAlert func(ActiveAlert)

	// Now overrides the clock for tests. Defaults to time.Now.
	Now func() time.Time
}

// Monitor is a single-writer state machine; RunCycle and the mutating
// methods (CloseAlert, ThresholdChanged) are mutually exclusive.
type Monitor struct {
	feed             Feed
	ledger           *ledger.Ledger
	device           *geo.Coordinate
	logger           *slog.Logger
	interval         time.Duration
	fetchTimeout     time.Duration
	feedMinMagnitude float64
	includeSynthetic bool
	onAlert          func(ActiveAlert)
	now              func() time.Time

	mu       sync.Mutex
	state    State
	active   *ActiveAlert
	caughtUp bool
}

// New creates a Monitor. The first cycle after a cold start is a catch-up
// pass: recent events are ledgered without alerting, so a day of history
// never replays as an alert storm.
func New(opts Options) *Monitor {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	fetchTimeout := opts.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = 15 * time.Second
	}
	return &Monitor{
		feed:             opts.Feed,
		ledger:           opts.Ledger,
		device:           opts.Device,
		logger:           opts.Logger,
		interval:         interval,
		fetchTimeout:     fetchTimeout,
		feedMinMagnitude: opts.FeedMinMagnitude,
		includeSynthetic: opts.IncludeSynthetic,
		onAlert:          opts.OnAlert,
		now:              now,
		state:            StateIdle,
	}
}

// State returns the current lifecycle state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Active returns the open alert, or nil.
func (m *Monitor) Active() *ActiveAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil
	}
	a := *m.active
	return &a
}

// CloseAlert acknowledges the open alert and returns to Idle. Events that
// arrived while the alert was open were never ledgered and will be
// re-evaluated on the next cycle.
func (m *Monitor) CloseAlert() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAlertOpen {
		return
	}
	m.state = StateIdle
	m.active = nil
	m.logger.Info("Alert closed")
}

// ThresholdChanged stores the new snapshot and invalidates ledger entries
// from the last day so the next cycle re-evaluates them under the new rule.
func (m *Monitor) ThresholdChanged(t threshold.Threshold) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledger.SetThreshold(t)
	m.ledger.InvalidateRecent(m.now())
	if err := m.ledger.Flush(); err != nil {
		m.logger.Warn("Ledger flush after threshold change failed", "error", err)
	}
	m.logger.Info("Threshold changed, recent ledger entries invalidated",
		"min_magnitude", t.MinMagnitude, "radius_km", t.RadiusKm)
}

// RunCycle performs one poll cycle. Feed failure is a logged no-op: nothing
// is ledgered and the fixed cadence retries implicitly. Returns the alert it
// opened, if any.
func (m *Monitor) RunCycle(ctx context.Context) *ActiveAlert {
	m.mu.Lock()
	if m.state == StateAlertOpen {
		// Backpressure rule: no evaluation while the recipient is looking
		// at an active alert.
		m.mu.Unlock()
		return nil
	}
	m.state = StateEvaluating
	m.mu.Unlock()

	now := m.now()
	fetchCtx, cancel := context.WithTimeout(ctx, m.fetchTimeout)
	events, err := m.feed.Events(fetchCtx, now.Add(-recencyWindow), now, m.feedMinMagnitude, m.includeSynthetic)
	cancel()
	if err != nil {
		m.logger.Warn("Feed fetch failed, skipping cycle", "error", err)
		m.setState(StateIdle)
		return nil
	}

	opened := m.evaluate(now, events)

	m.ledger.EvictExpired(now)
	if err := m.ledger.Flush(); err != nil {
		m.logger.Warn("Ledger flush failed", "error", err)
	}

	// The hook runs with no monitor lock held, so it may call CloseAlert
	// or ThresholdChanged directly.
	if opened != nil && m.onAlert != nil {
		m.onAlert(*opened)
	}
	return opened
}

func (m *Monitor) evaluate(now time.Time, events []seismic.Event) *ActiveAlert {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := now.Add(-recencyWindow).UnixMilli()

	// Cold start: mark everything recent as seen without alerting.
	if !m.caughtUp {
		marked := 0
		for _, ev := range events {
			if ev.Time < cutoff {
				continue
			}
			id := ev.Identity()
			if !m.ledger.Has(id) {
				m.ledger.MarkSeen(id, ev.Time, ev.Synthetic)
				marked++
			}
		}
		m.caughtUp = true
		m.state = StateIdle
		m.logger.Info("Catch-up pass complete", "marked", marked)
		return nil
	}

	eff := m.effectiveThreshold()

	for _, ev := range events {
		if ev.Time < cutoff {
			continue
		}
		id := ev.Identity()
		if m.ledger.Has(id) {
			continue
		}

		if evaluate.Matches(ev, eff, m.device) {
			m.ledger.MarkSeen(id, ev.Time, ev.Synthetic)
			m.active = &ActiveAlert{Event: ev, OpenedAt: now}
			m.state = StateAlertOpen
			m.logger.Info("Alert opened",
				"magnitude", ev.Magnitude,
				"place", ev.Place,
				"level", seismic.AlertLevel(ev.Magnitude))
			// One alert per cycle; remaining events wait for the next
			// cycle after the alert closes.
			return m.active
		}

		m.ledger.MarkSeen(id, ev.Time, ev.Synthetic)
	}

	m.state = StateIdle
	return nil
}

func (m *Monitor) effectiveThreshold() threshold.Threshold {
	if t := m.ledger.Threshold(); t != nil {
		return *t
	}
	// No snapshot yet: engine defaults with no anchor, which makes the
	// evaluator fall back to device location or magnitude-only.
	return threshold.Default("", 0, 0, "")
}

func (m *Monitor) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// Run polls on a fixed interval until ctx is cancelled. A tick arriving
// while a cycle is still running is dropped, never queued.
func (m *Monitor) Run(ctx context.Context) {
	m.logger.Info("Event monitor started", "interval", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.RunCycle(ctx)
			// Drop the tick that may have accumulated during a slow cycle:
			// skip-if-busy, not queue-if-busy.
			select {
			case <-ticker.C:
			default:
			}
		case <-ctx.Done():
			m.logger.Info("Event monitor stopped")
			return
		}
	}
}
