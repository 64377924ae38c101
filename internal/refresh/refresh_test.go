package refresh

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/litescript/ls-skywatch/internal/astro"
	"github.com/litescript/ls-skywatch/internal/ephem"
	"github.com/litescript/ls-skywatch/internal/store"
)

type fakeProvider struct {
	calls int32
	fail  map[string]bool
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Fetch(_ context.Context, body ephem.Body, start time.Time, days int) ([]ephem.Sample, error) {
	atomic.AddInt32(&p.calls, 1)
	if p.fail[body.Name] {
		return nil, &astro.UpstreamDataError{Source: "fake", Err: errors.New("unavailable")}
	}
	out := make([]ephem.Sample, 0, days+1)
	for i := 0; i <= days; i++ {
		d := float64(i - days/2)
		out = append(out, ephem.Sample{
			Time:           start.AddDate(0, 0, i),
			DistanceAU:     1 + d*d/1e4,
			RadialVelocity: d,
		})
	}
	return out, nil
}

var fixedNow = func() time.Time { return time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC) }

func TestNewValidates(t *testing.T) {
	p := &fakeProvider{}
	repo := store.NewMemory()

	if _, err := New(p, repo, Options{Schedule: "not a schedule"}, nil); err == nil {
		t.Error("expected schedule error")
	}
	if _, err := New(p, repo, Options{Bodies: []string{"Planet X"}}, nil); err == nil {
		t.Error("expected unknown body error")
	}
	s, err := New(p, repo, Options{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.opts.Schedule != DefaultSchedule {
		t.Errorf("schedule = %q", s.opts.Schedule)
	}
}

func TestRunOnce(t *testing.T) {
	p := &fakeProvider{}
	repo := store.NewMemory()

	var hook Summary
	s, err := New(p, repo, Options{
		Bodies:     []string{"Mars", "Swift-Tuttle"},
		YearsAhead: 1,
		Now:        fixedNow,
		OnRun:      func(sum Summary, _ error) { hook = sum },
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	sum, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	// Two bodies, two years each: 2024 has 367 rows, 2025 has 366.
	if sum.Bodies != 2 || sum.Samples != 2*(367+366) || atomic.LoadInt32(&p.calls) != 4 {
		t.Errorf("summary = %+v, calls %d", sum, p.calls)
	}
	if sum.Showers != 1 {
		t.Errorf("showers = %d, want 1 (Perseid)", sum.Showers)
	}
	if hook.Samples != sum.Samples || s.LastRun().Samples != sum.Samples {
		t.Errorf("hook/last run not updated")
	}

	ctx := context.Background()
	mars, _ := repo.FindSamples(ctx, "Mars",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	// Jan 1 2025 appears in both windows and is stored once.
	if len(mars) != 366+365+1 {
		t.Errorf("stored Mars samples = %d", len(mars))
	}
}

func TestRunOnceSplitsHalleyYear(t *testing.T) {
	repo := store.NewMemory()
	s, err := New(&fakeProvider{}, repo, Options{Bodies: []string{"Halley"}, Now: fixedNow}, nil)
	if err != nil {
		t.Fatal(err)
	}

	sum, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if sum.Showers != 2 {
		t.Fatalf("showers = %d, want 2", sum.Showers)
	}

	// 2024 is closest on Jul 2; the second half starts at its own closest
	// sample, Jul 3, which is nearer the Orionid peak.
	tests := []struct {
		shower string
		want   float64
	}{
		{"Eta Aquariid", 1},
		{"Orionid", 1 + 1.0/1e4},
	}
	for _, tt := range tests {
		t.Run(tt.shower, func(t *testing.T) {
			got, _ := repo.FindShowers(context.Background(), tt.shower, 2024)
			if len(got) != 1 || got[0].DistanceAU != tt.want {
				t.Errorf("reports = %+v, want distance %v", got, tt.want)
			}
		})
	}
}

func TestRunOnceContinuesPastFailures(t *testing.T) {
	p := &fakeProvider{fail: map[string]bool{"Venus": true}}
	repo := store.NewMemory()
	s, err := New(p, repo, Options{Bodies: []string{"Venus", "Jupiter"}, Now: fixedNow}, nil)
	if err != nil {
		t.Fatal(err)
	}

	sum, err := s.RunOnce(context.Background())
	if err == nil || !strings.Contains(err.Error(), "Venus") {
		t.Fatalf("err = %v", err)
	}
	if !errors.As(err, new(*astro.UpstreamDataError)) {
		t.Errorf("upstream cause lost: %v", err)
	}
	if sum.Bodies != 1 || len(sum.Failed) != 1 || sum.Failed[0] != "Venus" {
		t.Errorf("summary = %+v", sum)
	}
}

func TestStartStopsWithContext(t *testing.T) {
	s, err := New(&fakeProvider{}, store.NewMemory(), Options{Schedule: "* * * * *"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Start returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
