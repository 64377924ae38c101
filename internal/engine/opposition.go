package engine

import (
	"context"
	"sort"
	"time"

	"github.com/litescript/ls-skywatch/internal/astro"
	"github.com/litescript/ls-skywatch/internal/ephem"
	"github.com/litescript/ls-skywatch/internal/verdict"
)

// MaxOppositionEvents is how many near samples an opposition query returns.
const MaxOppositionEvents = 5

// twoYearPlanets have synodic periods longer than a year, so a one-year
// window can miss their closest approach.
var twoYearPlanets = map[string]bool{"Mars": true, "Venus": true}

// OppositionEvent is one near sample of a planet.
type OppositionEvent struct {
	Planet     string    `json:"planet"`
	Time       time.Time `json:"time"`
	DistanceAU float64   `json:"distance_au"`
	Event      string    `json:"event"`
	RA         string    `json:"ra"`
	Dec        string    `json:"dec"`
}

// Oppositions returns up to MaxOppositionEvents samples of a planet in year
// (Mars and Venus: year and the next) that fall inside its approach
// thresholds, closest first. Strict restricts the result to big approaches.
func (e *Engine) Oppositions(ctx context.Context, planet string, year int, strict bool) ([]OppositionEvent, error) {
	b, ok := ephem.LookupBody(planet)
	if !ok {
		return nil, &astro.FormatError{Field: "planet", Value: planet, Reason: "unknown body"}
	}
	th, ok := verdict.ThresholdFor(b.Name)
	if !ok {
		return nil, &astro.FormatError{Field: "planet", Value: planet, Reason: "no approach thresholds"}
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	years := 1
	if twoYearPlanets[b.Name] {
		years = 2
	}
	days := int(start.AddDate(years, 0, 0).Sub(start) / (24 * time.Hour))

	samples, err := e.samples(ctx, b, start, days)
	if err != nil {
		return nil, err
	}

	limit := th.LenientAU
	if strict {
		limit = th.StrictAU
	}
	var near []ephem.Sample
	for _, s := range samples {
		if s.DistanceAU > 0 && s.DistanceAU <= limit {
			near = append(near, s)
		}
	}
	sort.SliceStable(near, func(i, j int) bool { return near[i].DistanceAU < near[j].DistanceAU })
	if len(near) > MaxOppositionEvents {
		near = near[:MaxOppositionEvents]
	}

	events := make([]OppositionEvent, 0, len(near))
	for _, s := range near {
		events = append(events, OppositionEvent{
			Planet:     b.Name,
			Time:       s.Time,
			DistanceAU: s.DistanceAU,
			Event:      verdict.ClassifyDistance(b.Name, s.DistanceAU),
			RA:         astro.FormatRA(s.RAHours),
			Dec:        astro.FormatDec(s.DecDeg),
		})
	}
	return events, nil
}

// NightWindows returns the night after each of days local dates from start.
func (e *Engine) NightWindows(ctx context.Context, obs astro.Observer, start time.Time, days int) ([]astro.NightWindow, error) {
	if days < 1 || days > MaxScanDays {
		days = 1
	}
	return e.nightWindows(ctx, obs, start, days)
}

// MoonPhase returns the averaged lunar phase for the UTC day of date.
func (e *Engine) MoonPhase(date time.Time) astro.MoonPhase {
	return astro.MoonPhaseOn(date)
}
