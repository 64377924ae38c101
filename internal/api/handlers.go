package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/litescript/ls-skywatch/internal/astro"
	"github.com/litescript/ls-skywatch/internal/engine"
	"github.com/litescript/ls-skywatch/internal/metrics"
	"github.com/litescript/ls-skywatch/internal/state"
)

// DefaultScanDays is the scan length when days is omitted.
const DefaultScanDays = 7

func (s *Server) now() time.Time {
	return s.engine.Context().Now()
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"provider":    s.engine.Context().Ephemeris.Name(),
		"has_scans":   s.state.HasData(),
		"server_time": s.now().UTC(),
	})
}

func (s *Server) visibility(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r.URL.Query())
	target := q.required("target")
	date := q.date("date", today(s.now()))
	obs := q.observer(s.observer)
	if q.err != nil {
		s.writeError(w, q.err)
		return
	}

	v, err := s.engine.Visibility(r.Context(), target, obs, date)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type scanResponse struct {
	Target      string              `json:"target"`
	Observer    astro.Observer      `json:"observer"`
	Start       string              `json:"start"`
	VisibleDays int                 `json:"visible_days"`
	Days        []engine.DayVerdict `json:"days"`
}

func (s *Server) scan(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r.URL.Query())
	target := q.required("target")
	start := q.date("start", today(s.now()))
	days := q.integer("days", DefaultScanDays)
	obs := q.observer(s.observer)
	if q.err != nil {
		s.writeError(w, q.err)
		return
	}

	rec, err := s.state.RunScan(r.Context(), s.engine, engine.ScanRequest{Target: target, Observer: obs, Start: start, Days: days})
	if err != nil {
		s.writeError(w, err)
		return
	}
	for _, d := range rec.Days {
		metrics.ObserveScanDay(scanOutcome(d))
	}

	writeJSON(w, http.StatusOK, scanResponse{
		Target:      target,
		Observer:    obs,
		Start:       start.Format(dateLayout),
		VisibleDays: rec.VisibleDays(),
		Days:        rec.Days,
	})
}

func scanOutcome(d engine.DayVerdict) string {
	switch {
	case d.Err != nil || d.Verdict == nil:
		return "error"
	case d.Verdict.Visible:
		return "visible"
	default:
		return "not_visible"
	}
}

type scansResponse struct {
	Latest     []state.ScanRecord `json:"latest"`
	Events     []state.Event      `json:"events"`
	LastUpdate time.Time          `json:"last_update"`
	LastError  string             `json:"last_error,omitempty"`
}

func (s *Server) scans(w http.ResponseWriter, r *http.Request) {
	snap := s.state.Snapshot()
	resp := scansResponse{
		Latest:     snap.Latest,
		Events:     snap.Events,
		LastUpdate: snap.LastUpdate,
	}
	if resp.Events == nil {
		resp.Events = []state.Event{}
	}
	if snap.LastError != nil {
		resp.LastError = snap.LastError.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) approach(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r.URL.Query())
	body := q.required("body")
	start := q.date("start", today(s.now()))
	days := q.integer("days", engine.DefaultApproachDays)
	if q.err != nil {
		s.writeError(w, q.err)
		return
	}

	report, err := s.engine.Approach(r.Context(), body, start, days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) meteorShowers(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r.URL.Query())
	comet := q.required("comet")
	start := q.date("start", today(s.now()))
	days := q.integer("days", engine.DefaultApproachDays)
	if q.err != nil {
		s.writeError(w, q.err)
		return
	}

	reports, err := s.engine.MeteorShowers(r.Context(), comet, start, days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) showerVisibility(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r.URL.Query())
	name := q.required("shower")
	year := q.integer("year", s.now().UTC().Year())
	obs := q.observer(s.observer)
	if q.err != nil {
		s.writeError(w, q.err)
		return
	}

	out, err := s.engine.ShowerVisibility(r.Context(), name, year, obs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) oppositions(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r.URL.Query())
	planet := q.required("planet")
	year := q.integer("year", s.now().UTC().Year())
	strict := q.flag("strict")
	if q.err != nil {
		s.writeError(w, q.err)
		return
	}

	events, err := s.engine.Oppositions(r.Context(), planet, year, strict)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if events == nil {
		events = []engine.OppositionEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

type nightResponse struct {
	Date         string    `json:"date"`
	Sunset       time.Time `json:"sunset_utc"`
	Sunrise      time.Time `json:"sunrise_utc"`
	SunsetLocal  string    `json:"sunset_local"`
	SunriseLocal string    `json:"sunrise_local"`
	Dusk         *string   `json:"astronomical_dusk_utc"`
	Dawn         *string   `json:"astronomical_dawn_utc"`
	DurationMin  int       `json:"duration_min"`
	UTCOffsetSec int       `json:"utc_offset_s"`
	TimezoneID   string    `json:"timezone_id"`
}

func newNightResponse(w astro.NightWindow) nightResponse {
	resp := nightResponse{
		Date:         w.Date.Format(dateLayout),
		Sunset:       w.SunsetUTC,
		Sunrise:      w.SunriseUTC,
		SunsetLocal:  w.SunsetLocal.Format("2006-01-02 15:04"),
		SunriseLocal: w.SunriseLocal.Format("2006-01-02 15:04"),
		DurationMin:  int(w.Duration().Minutes()),
		UTCOffsetSec: w.UTCOffsetSec,
		TimezoneID:   w.TimezoneID,
	}
	if w.HasTwilight {
		dusk, dawn := w.DuskUTC.Format(time.RFC3339), w.DawnUTC.Format(time.RFC3339)
		resp.Dusk, resp.Dawn = &dusk, &dawn
	}
	return resp
}

func (s *Server) sun(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r.URL.Query())
	start := q.date("date", today(s.now()))
	days := q.integer("days", 1)
	obs := q.observer(s.observer)
	if q.err != nil {
		s.writeError(w, q.err)
		return
	}

	windows, err := s.engine.NightWindows(r.Context(), obs, start, days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]nightResponse, 0, len(windows))
	for _, nw := range windows {
		out = append(out, newNightResponse(nw))
	}
	writeJSON(w, http.StatusOK, out)
}

type moonResponse struct {
	Date          string  `json:"date"`
	Name          string  `json:"phase_name"`
	PhaseAngleDeg float64 `json:"phase_angle_deg"`
	Phase         float64 `json:"phase"`
	Illumination  float64 `json:"illumination"`
}

func (s *Server) moon(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r.URL.Query())
	date := q.date("date", today(s.now()))
	if q.err != nil {
		s.writeError(w, q.err)
		return
	}

	m := s.engine.MoonPhase(date)
	writeJSON(w, http.StatusOK, moonResponse{
		Date:          m.Date.Format(dateLayout),
		Name:          m.Name,
		PhaseAngleDeg: m.PhaseAngleDeg,
		Phase:         m.Phase,
		Illumination:  m.Illumination,
	})
}

// statusFor maps engine failures onto HTTP status codes.
func statusFor(err error) int {
	var (
		fe *astro.FormatError
		ne *astro.NoEventError
		ie *astro.InsufficientDataError
		ue *astro.UpstreamDataError
	)
	switch {
	case errors.As(err, &fe):
		return http.StatusBadRequest
	case errors.As(err, &ne):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ie):
		return http.StatusNotFound
	case errors.As(err, &ue):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
