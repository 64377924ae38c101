package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/litescript/ls-skywatch/internal/astro"
	"github.com/litescript/ls-skywatch/internal/engine"
	"github.com/litescript/ls-skywatch/internal/ephem"
	"github.com/litescript/ls-skywatch/internal/peak"
	"github.com/litescript/ls-skywatch/internal/state"
	"github.com/litescript/ls-skywatch/internal/tz"
	"github.com/litescript/ls-skywatch/internal/verdict"
)

var seoul = astro.Observer{LatDeg: 37.5665, LonDeg: 126.9780, ElevationM: 38, Name: "Seoul"}

// fakeProvider serves a V-shaped approach for every body.
type fakeProvider struct {
	closest time.Time
	err     error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Fetch(_ context.Context, body ephem.Body, start time.Time, days int) ([]ephem.Sample, error) {
	if p.err != nil {
		return nil, p.err
	}
	out := make([]ephem.Sample, 0, days+1)
	for i := 0; i <= days; i++ {
		t := start.AddDate(0, 0, i)
		d := t.Sub(p.closest).Hours() / 24
		out = append(out, ephem.Sample{
			Time:           t,
			RAText:         astro.FormatRA(6),
			DecText:        astro.FormatDec(24),
			RAHours:        6,
			DecDeg:         24,
			DistanceAU:     0.62 + math.Abs(d)*0.001,
			RadialVelocity: d,
			ElongationDeg:  90,
		})
	}
	return out, nil
}

func newTestServer(t *testing.T, p ephem.Provider, offsetSec int) (*Server, *state.Manager) {
	t.Helper()
	eng, err := engine.New(engine.AstronomicalContext{
		Ephemeris: p,
		Timezones: tz.FixedOffset(offsetSec),
		Pool:      peak.NewPool(2, nil),
		Now:       func() time.Time { return time.Date(2024, 1, 10, 3, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	st := state.NewManager(state.DefaultConfig())
	return NewServer(":0", eng, st, seoul, nil), st
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, &fakeProvider{}, 9*3600)
	w := get(t, s, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]any
	decode(t, w, &resp)
	if resp["status"] != "ok" || resp["provider"] != "fake" || resp["has_scans"] != false {
		t.Errorf("resp = %v", resp)
	}
}

func TestVisibility(t *testing.T) {
	s, _ := newTestServer(t, &fakeProvider{}, 9*3600)

	// Observer defaults to the configured site.
	w := get(t, s, "/api/v1/visibility?target=Orion&date=2024-01-10")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	var v verdict.Verdict
	decode(t, w, &v)
	if v.Date != "2024-01-10" || !v.Visible || v.BestTime == nil || v.Rating == verdict.VeryPoor {
		t.Errorf("verdict = %+v", v)
	}
}

func TestErrorStatus(t *testing.T) {
	s, _ := newTestServer(t, &fakeProvider{}, 3600)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"missing target", "/api/v1/visibility", http.StatusBadRequest},
		{"bad date", "/api/v1/visibility?target=Orion&date=01/10/2024", http.StatusBadRequest},
		{"unknown target", "/api/v1/visibility?target=Vulcan", http.StatusBadRequest},
		{"lat without lon", "/api/v1/visibility?target=Orion&lat=10", http.StatusBadRequest},
		{"latitude range", "/api/v1/visibility?target=Orion&lat=95&lon=10", http.StatusBadRequest},
		{"polar night", "/api/v1/visibility?target=Ursa+Major&date=2024-12-20&lat=69.6492&lon=18.9553", http.StatusUnprocessableEntity},
		{"scan days", "/api/v1/scan?target=Orion&days=0", http.StatusBadRequest},
		{"scan days not a number", "/api/v1/scan?target=Orion&days=many", http.StatusBadRequest},
		{"comet without showers", "/api/v1/meteor_showers?comet=Encke", http.StatusNotFound},
		{"unknown shower", "/api/v1/shower_visibility?shower=Geminid", http.StatusBadRequest},
		{"opposition of a comet", "/api/v1/oppositions?planet=Halley", http.StatusBadRequest},
		{"strict flag", "/api/v1/oppositions?planet=Mars&strict=maybe", http.StatusBadRequest},
		{"unknown approach body", "/api/v1/approach?body=Nibiru", http.StatusBadRequest},
		{"approach window too long", "/api/v1/approach?body=Mars&days=5000", http.StatusBadRequest},
		{"shower window too long", "/api/v1/meteor_showers?comet=Halley&days=5000", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, s, tt.target)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.want, w.Body)
			}
			var resp map[string]string
			decode(t, w, &resp)
			if resp["error"] == "" {
				t.Error("missing error message")
			}
		})
	}
}

func TestUpstreamFailure(t *testing.T) {
	p := &fakeProvider{err: &astro.UpstreamDataError{Source: "horizons", Err: errors.New("503")}}
	s, st := newTestServer(t, p, 0)

	w := get(t, s, "/api/v1/scan?target=Mars&days=3")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	if st.Snapshot().LastError == nil {
		t.Error("scan failure should be recorded")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&astro.FormatError{Field: "ra"}, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", &astro.NoEventError{Event: "sunset"}), http.StatusUnprocessableEntity},
		{&astro.InsufficientDataError{Op: "classify"}, http.StatusNotFound},
		{&astro.UpstreamDataError{Source: "timezone"}, http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestScanRecordsState(t *testing.T) {
	s, st := newTestServer(t, &fakeProvider{}, 9*3600)

	w := get(t, s, "/api/v1/scan?target=Orion&start=2024-01-10&days=3")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	var resp scanResponse
	decode(t, w, &resp)
	if len(resp.Days) != 3 || resp.VisibleDays != 3 || resp.Start != "2024-01-10" {
		t.Errorf("resp = %+v", resp)
	}

	rec, ok := st.Latest("Orion")
	if !ok || len(rec.Days) != 3 || rec.Observer.Name != "Seoul" {
		t.Errorf("state = %+v, %v", rec, ok)
	}

	w = get(t, s, "/api/v1/scans")
	var scans scansResponse
	decode(t, w, &scans)
	if len(scans.Latest) != 1 || scans.Latest[0].Target != "Orion" || scans.Events == nil {
		t.Errorf("scans = %+v", scans)
	}

	w = get(t, s, "/metrics")
	body, _ := io.ReadAll(w.Body)
	if !strings.Contains(string(body), `skywatch_scan_days_total{outcome="visible"}`) {
		t.Error("scan days not counted")
	}
}

func TestApproachAndOppositions(t *testing.T) {
	closest := time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC)
	s, _ := newTestServer(t, &fakeProvider{closest: closest}, 0)

	w := get(t, s, "/api/v1/approach?body=Mars&start=2024-12-01&days=30")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	var report engine.ApproachReport
	decode(t, w, &report)
	if report.Body != "Mars" || report.Status != "closing" || report.WindowDays != 30 {
		t.Errorf("report = %+v", report)
	}

	w = get(t, s, "/api/v1/oppositions?planet=Mars&year=2024&strict=true")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	var events []engine.OppositionEvent
	decode(t, w, &events)
	if len(events) == 0 || !events[0].Time.Equal(closest) || events[0].Event != verdict.EventBigApproach {
		t.Fatalf("events = %+v", events)
	}
	if events[0].RA != "06 00 00.00" || events[0].Dec != "+24 00 00.0" {
		t.Errorf("position = %q %q", events[0].RA, events[0].Dec)
	}
}

func TestSunAndMoon(t *testing.T) {
	s, _ := newTestServer(t, &fakeProvider{}, 9*3600)

	w := get(t, s, "/api/v1/sun?date=2024-06-21&days=2")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	var nights []nightResponse
	decode(t, w, &nights)
	if len(nights) != 2 || nights[0].Date != "2024-06-21" || nights[0].TimezoneID != "UTC+09:00" {
		t.Fatalf("nights = %+v", nights)
	}
	if !nights[0].Sunset.Before(nights[0].Sunrise) || nights[0].DurationMin <= 0 {
		t.Errorf("night = %+v", nights[0])
	}

	w = get(t, s, "/api/v1/moon?date=2024-04-23")
	var m moonResponse
	decode(t, w, &m)
	if m.Name != astro.PhaseFullMoon || m.Date != "2024-04-23" {
		t.Errorf("moon = %+v", m)
	}
}
