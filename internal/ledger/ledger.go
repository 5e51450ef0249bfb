// Package ledger keeps the durable record of already-handled event
// identities for one recipient context, plus the threshold snapshot used for
// local evaluation. State lives in a single JSON file replaced atomically on
// flush, so a crash mid-write leaves either the old or the new file, never
// a torn one.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/quakewatch/quakewatch/internal/threshold"
)

const (
	// retention is how long an entry survives before eviction.
	retention = 7 * 24 * time.Hour

	// maxEntries caps the ledger as a safety valve; the oldest entries by
	// insertion are dropped first.
	maxEntries = 100

	// invalidateWindow bounds InvalidateRecent: only entries younger than
	// this are re-opened for evaluation after a threshold change.
	invalidateWindow = 24 * time.Hour
)

// Entry records one handled event identity.
type Entry struct {
	ID        string `json:"id"`
	FirstSeen int64  `json:"first_seen"` // epoch milliseconds
	Synthetic bool   `json:"synthetic,omitempty"`
}

// state is the on-disk shape.
type state struct {
	Entries   []Entry              `json:"entries"`
	Threshold *threshold.Threshold `json:"threshold,omitempty"`
}

// Ledger is a bounded, time-windowed dedup record set. Safe for concurrent
// use, though the monitor is its only writer.
type Ledger struct {
	path string

	mu      sync.Mutex
	entries []Entry // insertion order
	index   map[string]struct{}
	thresh  *threshold.Threshold
}

// Open loads the ledger from path, applying the retention eviction so stale
// entries never resurrect across restarts. A missing file starts empty; a
// corrupt file is discarded with an error the caller may log and ignore.
func Open(path string, now time.Time) (*Ledger, error) {
	l := &Ledger{path: path, index: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return l, nil
	}
	if err != nil {
		return l, fmt.Errorf("read ledger: %w", err)
	}

	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return l, fmt.Errorf("parse ledger (starting empty): %w", err)
	}

	l.thresh = s.Threshold
	cutoff := now.Add(-retention).UnixMilli()
	for _, e := range s.Entries {
		if e.FirstSeen < cutoff {
			continue
		}
		if _, dup := l.index[e.ID]; dup {
			continue
		}
		l.entries = append(l.entries, e)
		l.index[e.ID] = struct{}{}
	}
	l.capLocked()
	return l, nil
}

// Has reports whether an event identity was already handled.
func (l *Ledger) Has(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.index[id]
	return ok
}

// MarkSeen records an event identity. Idempotent: marking the same identity
// twice leaves exactly one entry with its original first-seen time.
func (l *Ledger) MarkSeen(id string, occurredAtMs int64, synthetic bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.index[id]; ok {
		return
	}
	l.entries = append(l.entries, Entry{ID: id, FirstSeen: occurredAtMs, Synthetic: synthetic})
	l.index[id] = struct{}{}
	l.capLocked()
}

// EvictExpired drops entries older than the retention window, then enforces
// the capacity bound.
func (l *Ledger) EvictExpired(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := now.Add(-retention).UnixMilli()
	l.filterLocked(func(e Entry) bool { return e.FirstSeen >= cutoff })
	l.capLocked()
}

// InvalidateRecent drops entries first seen within the last 24 hours so a
// changed threshold gets a chance to re-evaluate the last day of events.
// Older entries are outside the monitor's recency window and stay put.
func (l *Ledger) InvalidateRecent(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := now.Add(-invalidateWindow).UnixMilli()
	l.filterLocked(func(e Entry) bool { return e.FirstSeen < cutoff })
}

// PurgeSynthetic drops every drill entry.
func (l *Ledger) PurgeSynthetic() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.filterLocked(func(e Entry) bool { return !e.Synthetic })
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Threshold returns the stored local threshold snapshot, or nil.
func (l *Ledger) Threshold() *threshold.Threshold {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.thresh == nil {
		return nil
	}
	t := *l.thresh
	return &t
}

// SetThreshold replaces the stored threshold snapshot.
func (l *Ledger) SetThreshold(t threshold.Threshold) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.thresh = &t
}

// Flush writes the full state to disk via temp-file-and-rename.
func (l *Ledger) Flush() error {
	l.mu.Lock()
	s := state{Entries: l.entries, Threshold: l.thresh}
	data, err := json.Marshal(s)
	l.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, ".ledger-*")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp ledger: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

// filterLocked keeps entries for which keep returns true, preserving order.
// Caller holds l.mu.
func (l *Ledger) filterLocked(keep func(Entry) bool) {
	kept := l.entries[:0]
	for _, e := range l.entries {
		if keep(e) {
			kept = append(kept, e)
		} else {
			delete(l.index, e.ID)
		}
	}
	l.entries = kept
}

// capLocked drops the oldest entries by insertion until at maxEntries.
// Caller holds l.mu.
func (l *Ledger) capLocked() {
	if len(l.entries) <= maxEntries {
		return
	}
	drop := l.entries[:len(l.entries)-maxEntries]
	for _, e := range drop {
		delete(l.index, e.ID)
	}
	l.entries = append([]Entry(nil), l.entries[len(l.entries)-maxEntries:]...)
}
