// Package peak finds the best observing instant for a target over a date
// range by an hourly grid search.
package peak

import (
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/litescript/ls-skywatch/internal/astro"
)

// Step is the grid spacing of the search.
const Step = time.Hour

// Query describes one search. Start and End are both included.
type Query struct {
	Observer astro.Observer
	Target   Target
	Start    time.Time
	End      time.Time

	// Nights, when set, restricts candidates to instants inside one of the
	// windows.
	Nights []astro.NightWindow
}

// Result is the winning candidate of a search.
type Result struct {
	Target       string          `json:"target"`
	BestInstant  time.Time       `json:"best_instant"`
	AltitudeDeg  float64         `json:"altitude_deg"`
	AzimuthDeg   float64         `json:"azimuth_deg"`
	Direction    astro.Direction `json:"direction"`
	MoonPhase    string          `json:"moon_phase"`
	Illumination float64         `json:"illumination"`
	Score        float64         `json:"composite_score"`
	Candidates   int             `json:"candidates"`
}

type candidate struct {
	t     time.Time
	pos   astro.SkyCoord
	moon  astro.MoonPhase
	score float64
}

// Search evaluates every hour in [Start, End] and returns the instant with the
// highest composite score. Equal scores go to the earliest instant.
//
// Fails with *astro.InsufficientDataError when the target has no position at
// any candidate instant or the range is empty.
func Search(q Query) (Result, error) {
	if q.Target == nil || q.End.Before(q.Start) {
		return Result{}, &astro.InsufficientDataError{Op: "peak search", Have: 0, Need: 1}
	}

	mid := q.Start.Add(q.End.Sub(q.Start) / 2)
	moonByDay := make(map[time.Time]astro.MoonPhase)

	var cands []candidate
	for t := q.Start; !t.After(q.End); t = t.Add(Step) {
		if len(q.Nights) > 0 && !inAnyNight(q.Nights, t) {
			continue
		}
		ra, dec, dist, ok := q.Target.At(t)
		if !ok {
			continue
		}

		pos := astro.Position(q.Observer, ra, dec, dist, t)
		moon := moonOn(moonByDay, t)
		score := Score(Factors{
			AltitudeDeg:      pos.AltDeg,
			MoonPhase:        moon.Name,
			Illumination:     moon.Illumination,
			DaysFromMidpoint: t.Sub(mid).Hours() / 24,
		})
		cands = append(cands, candidate{t: t, pos: pos, moon: moon, score: score})
	}

	if len(cands) == 0 {
		return Result{}, &astro.InsufficientDataError{Op: "peak search", Have: 0, Need: 1}
	}

	scores := make([]float64, len(cands))
	for i, c := range cands {
		scores[i] = c.score
	}
	best := cands[floats.MaxIdx(scores)]

	return Result{
		Target:       q.Target.Name(),
		BestInstant:  best.t,
		AltitudeDeg:  best.pos.AltDeg,
		AzimuthDeg:   best.pos.AzDeg,
		Direction:    astro.AzimuthToDirection(best.pos.AzDeg),
		MoonPhase:    best.moon.Name,
		Illumination: best.moon.Illumination,
		Score:        best.score,
		Candidates:   len(cands),
	}, nil
}

func inAnyNight(nights []astro.NightWindow, t time.Time) bool {
	for _, w := range nights {
		if w.Contains(t) {
			return true
		}
	}
	return false
}

// moonOn memoises the daily moon phase for the UTC date of t.
func moonOn(cache map[time.Time]astro.MoonPhase, t time.Time) astro.MoonPhase {
	u := t.UTC()
	day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	if m, ok := cache[day]; ok {
		return m
	}
	m := astro.MoonPhaseOn(day)
	cache[day] = m
	return m
}
