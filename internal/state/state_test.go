package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/litescript/ls-skywatch/internal/engine"
	"github.com/litescript/ls-skywatch/internal/verdict"
)

func day(date string, visible bool, rating verdict.Rating) engine.DayVerdict {
	return engine.DayVerdict{
		Date:    date,
		Verdict: &verdict.Verdict{Date: date, Visible: visible, Rating: rating},
	}
}

func scan(target string, at time.Time, days ...engine.DayVerdict) ScanRecord {
	return ScanRecord{Target: target, Days: days, ComputedAt: at}
}

func TestNewManager(t *testing.T) {
	m := NewManager(Config{})
	if m.HasData() {
		t.Error("HasData should be false initially")
	}
	if m.maxRecent != 20 || m.maxEvents != 50 {
		t.Errorf("defaults = %d/%d", m.maxRecent, m.maxEvents)
	}
	if snap := m.Snapshot(); snap.Recent != nil || snap.Events != nil || len(snap.Latest) != 0 {
		t.Errorf("empty snapshot = %+v", snap)
	}
}

func TestManager_Record(t *testing.T) {
	m := NewManager(DefaultConfig())
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	m.Record(scan("Orion", now, day("2024-01-10", true, verdict.Excellent), day("2024-01-11", false, verdict.VeryPoor)))
	m.Record(scan("Leo", now.Add(time.Minute), day("2024-01-10", true, verdict.Good)))

	if !m.HasData() {
		t.Error("HasData should be true after Record")
	}
	rec, ok := m.Latest("Orion")
	if !ok || rec.VisibleDays() != 1 {
		t.Errorf("Latest(Orion) = %+v, %v", rec, ok)
	}

	snap := m.Snapshot()
	if len(snap.Latest) != 2 || snap.Latest[0].Target != "Leo" {
		t.Errorf("Latest not sorted by target: %+v", snap.Latest)
	}
	if len(snap.Recent) != 2 || snap.Recent[0].Target != "Orion" {
		t.Errorf("Recent = %+v", snap.Recent)
	}
	if !snap.LastUpdate.Equal(now.Add(time.Minute)) {
		t.Errorf("LastUpdate = %v", snap.LastUpdate)
	}
}

func TestManager_RecordError(t *testing.T) {
	m := NewManager(DefaultConfig())
	testErr := errors.New("fetch failed")
	m.RecordError(testErr)

	if snap := m.Snapshot(); snap.LastError != testErr {
		t.Errorf("LastError = %v, want %v", snap.LastError, testErr)
	}

	m.Record(scan("Orion", time.Now()))
	if snap := m.Snapshot(); snap.LastError != nil {
		t.Errorf("LastError = %v, want nil after a good scan", snap.LastError)
	}
}

func TestManager_Events(t *testing.T) {
	m := NewManager(DefaultConfig())
	t0 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	m.Record(scan("Mars", t0,
		day("2024-01-10", false, verdict.VeryPoor),
		day("2024-01-11", true, verdict.Good),
		day("2024-01-12", true, verdict.Good),
		day("2024-01-13", true, verdict.Good),
	))
	m.Record(scan("Mars", t0.Add(time.Hour),
		day("2024-01-10", true, verdict.Moderate),
		day("2024-01-11", false, verdict.VeryPoor),
		day("2024-01-12", true, verdict.Excellent),
		day("2024-01-13", true, verdict.Good),
		day("2024-01-14", true, verdict.Good),
	))

	events := m.RecentEvents(10)
	want := []EventType{EventNowVisible, EventNoLongerVisible, EventRatingChanged}
	if len(events) != len(want) {
		t.Fatalf("got %d events: %+v", len(events), events)
	}
	for i, e := range events {
		if e.Type != want[i] || e.Target != "Mars" {
			t.Errorf("event %d = %+v, want %s", i, e, want[i])
		}
	}
	if events[2].OldRating != "Good" || events[2].NewRating != "Excellent" {
		t.Errorf("rating event = %+v", events[2])
	}

	if last := m.RecentEvents(1); len(last) != 1 || last[0].Date != "2024-01-12" {
		t.Errorf("RecentEvents(1) = %+v", last)
	}
}

func TestManager_RingBuffers(t *testing.T) {
	m := NewManager(Config{MaxRecent: 3, MaxEvents: 2})
	t0 := time.Now()

	for i := 0; i < 5; i++ {
		vis := i%2 == 0
		m.Record(scan("Orion", t0.Add(time.Duration(i)*time.Minute), day("2024-01-10", vis, verdict.Good)))
	}

	snap := m.Snapshot()
	if len(snap.Recent) != 3 {
		t.Fatalf("Recent len = %d", len(snap.Recent))
	}
	for i, r := range snap.Recent {
		want := t0.Add(time.Duration(i+2) * time.Minute)
		if !r.ComputedAt.Equal(want) {
			t.Errorf("Recent[%d] at %v, want %v", i, r.ComputedAt, want)
		}
	}
	// Four flips, the buffer keeps the last two in order.
	if len(snap.Events) != 2 || snap.Events[0].Type != EventNoLongerVisible || snap.Events[1].Type != EventNowVisible {
		t.Errorf("Events = %+v", snap.Events)
	}
}

func TestManager_Concurrent(t *testing.T) {
	m := NewManager(DefaultConfig())
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			m.Record(scan(fmt.Sprintf("T%d", i%3), time.Now(), day("2024-01-10", i%2 == 0, verdict.Good)))
		}(i)
		go func() {
			defer wg.Done()
			_ = m.Snapshot()
			_ = m.RecentEvents(5)
		}()
	}
	wg.Wait()

	if len(m.Snapshot().Latest) != 3 {
		t.Errorf("Latest = %d targets", len(m.Snapshot().Latest))
	}
}

type fakeScanner struct {
	days []engine.DayVerdict
	err  error
}

func (f fakeScanner) Scan(context.Context, engine.ScanRequest) ([]engine.DayVerdict, error) {
	return f.days, f.err
}

func TestManager_RunScan(t *testing.T) {
	m := NewManager(DefaultConfig())
	req := engine.ScanRequest{Target: "Orion", Start: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), Days: 1}

	rec, err := m.RunScan(context.Background(), fakeScanner{days: []engine.DayVerdict{day("2024-01-10", true, verdict.Good)}}, req)
	if err != nil {
		t.Fatalf("RunScan: %v", err)
	}
	if rec.Target != "Orion" || !rec.Start.Equal(req.Start) || rec.ComputedAt.IsZero() {
		t.Errorf("record = %+v", rec)
	}
	if _, ok := m.Latest("Orion"); !ok {
		t.Error("scan not recorded")
	}

	scanErr := errors.New("upstream down")
	if _, err := m.RunScan(context.Background(), fakeScanner{err: scanErr}, req); !errors.Is(err, scanErr) {
		t.Errorf("err = %v", err)
	}
	if m.Snapshot().LastError != scanErr {
		t.Error("failure not recorded")
	}
}
