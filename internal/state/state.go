// Package state provides thread-safe state management for the application.
package state

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/litescript/ls-skywatch/internal/astro"
	"github.com/litescript/ls-skywatch/internal/engine"
)

// EventType represents the type of state change event.
type EventType string

const (
	EventNowVisible      EventType = "NOW_VISIBLE"
	EventNoLongerVisible EventType = "NO_LONGER_VISIBLE"
	EventRatingChanged   EventType = "RATING_CHANGED"
)

// Event is a change to a date's verdict between two scans of one target.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Target    string    `json:"target"`
	Date      string    `json:"date"`
	OldRating string    `json:"old_rating,omitempty"`
	NewRating string    `json:"new_rating,omitempty"`
}

// ScanRecord is one completed scan.
type ScanRecord struct {
	Target     string              `json:"target"`
	Observer   astro.Observer      `json:"observer"`
	Start      time.Time           `json:"start"`
	Days       []engine.DayVerdict `json:"days"`
	ComputedAt time.Time           `json:"computed_at"`
	Duration   time.Duration       `json:"duration_ns"`
}

// VisibleDays counts the dates judged visible.
func (r ScanRecord) VisibleDays() int {
	n := 0
	for _, d := range r.Days {
		if d.Verdict != nil && d.Verdict.Visible {
			n++
		}
	}
	return n
}

// Manager handles all shared application state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	latest     map[string]ScanRecord // by target
	lastUpdate time.Time
	lastError  error

	// Recent scans (ring buffer)
	recent        []ScanRecord
	maxRecent     int
	recentWriteAt int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int
}

// Config holds configuration for the state manager.
type Config struct {
	MaxRecent int
	MaxEvents int
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxRecent: 20,
		MaxEvents: 50,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	if cfg.MaxRecent <= 0 {
		cfg.MaxRecent = 20
	}
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = 50
	}
	return &Manager{
		latest:    make(map[string]ScanRecord),
		maxRecent: cfg.MaxRecent,
		recent:    make([]ScanRecord, 0, cfg.MaxRecent),
		maxEvents: cfg.MaxEvents,
		events:    make([]Event, 0, cfg.MaxEvents),
	}
}

// Record stores a completed scan, emitting events for dates whose verdict
// changed since the previous scan of the same target.
func (m *Manager) Record(rec ScanRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.latest[rec.Target]; ok {
		m.detectEvents(prev, rec)
	}
	m.latest[rec.Target] = rec
	m.lastUpdate = rec.ComputedAt
	m.lastError = nil

	if len(m.recent) < m.maxRecent {
		m.recent = append(m.recent, rec)
	} else {
		m.recent[m.recentWriteAt] = rec
		m.recentWriteAt = (m.recentWriteAt + 1) % m.maxRecent
	}
}

// Scanner runs day-range visibility scans.
type Scanner interface {
	Scan(ctx context.Context, req engine.ScanRequest) ([]engine.DayVerdict, error)
}

// RunScan runs req on sc and records the outcome: the scan on success, the
// error otherwise.
func (m *Manager) RunScan(ctx context.Context, sc Scanner, req engine.ScanRequest) (ScanRecord, error) {
	start := time.Now()
	days, err := sc.Scan(ctx, req)
	if err != nil {
		m.RecordError(err)
		return ScanRecord{}, err
	}
	rec := ScanRecord{
		Target:     req.Target,
		Observer:   req.Observer,
		Start:      req.Start,
		Days:       days,
		ComputedAt: time.Now().UTC(),
		Duration:   time.Since(start),
	}
	m.Record(rec)
	return rec, nil
}

// RecordError remembers the most recent failure.
func (m *Manager) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastError = err
	m.lastUpdate = time.Now()
}

// detectEvents compares the verdicts of dates present in both scans.
func (m *Manager) detectEvents(prev, cur ScanRecord) {
	old := make(map[string]engine.DayVerdict, len(prev.Days))
	for _, d := range prev.Days {
		old[d.Date] = d
	}

	for _, d := range cur.Days {
		p, ok := old[d.Date]
		if !ok || p.Verdict == nil || d.Verdict == nil {
			continue
		}
		e := Event{
			Timestamp: cur.ComputedAt,
			Target:    cur.Target,
			Date:      d.Date,
			OldRating: string(p.Verdict.Rating),
			NewRating: string(d.Verdict.Rating),
		}
		switch {
		case !p.Verdict.Visible && d.Verdict.Visible:
			e.Type = EventNowVisible
		case p.Verdict.Visible && !d.Verdict.Visible:
			e.Type = EventNoLongerVisible
		case p.Verdict.Rating != d.Verdict.Rating:
			e.Type = EventRatingChanged
		default:
			continue
		}
		m.addEvent(e)
	}
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Latest     []ScanRecord // one per target, sorted by target
	Recent     []ScanRecord // oldest first
	Events     []Event      // oldest first
	LastUpdate time.Time
	LastError  error
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	latest := make([]ScanRecord, 0, len(m.latest))
	for _, r := range m.latest {
		latest = append(latest, r)
	}
	sort.Slice(latest, func(i, j int) bool { return latest[i].Target < latest[j].Target })

	return Snapshot{
		Latest:     latest,
		Recent:     ordered(m.recent, m.recentWriteAt, m.maxRecent),
		Events:     ordered(m.events, m.eventWriteAt, m.maxEvents),
		LastUpdate: m.lastUpdate,
		LastError:  m.lastError,
	}
}

// Latest returns the most recent scan of target.
func (m *Manager) Latest(target string) (ScanRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.latest[target]
	return r, ok
}

// HasData reports whether any scan has been recorded.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.latest) > 0
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := ordered(m.events, m.eventWriteAt, m.maxEvents)
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// ordered copies a ring buffer oldest first.
func ordered[T any](buf []T, writeAt, size int) []T {
	if len(buf) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(buf) < size {
		result := make([]T, len(buf))
		copy(result, buf)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]T, size)
	for i := 0; i < size; i++ {
		result[i] = buf[(writeAt+i)%size]
	}
	return result
}
