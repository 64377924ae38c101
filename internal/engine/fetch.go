package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/litescript/ls-skywatch/internal/astro"
	"github.com/litescript/ls-skywatch/internal/ephem"
	"github.com/litescript/ls-skywatch/internal/peak"
)

// target is a resolved query target.
type target struct {
	name          string
	kind          ephem.Kind
	body          ephem.Body // zero for constellations
	constellation astro.Constellation
}

func (t target) isFixed() bool {
	return t.kind == ephem.KindConstellation
}

// resolveTarget looks name up in the body catalog, then the constellations.
func resolveTarget(name string) (target, error) {
	if b, ok := ephem.LookupBody(name); ok {
		return target{name: b.Name, kind: b.Kind, body: b}, nil
	}
	if c, ok := astro.LookupConstellation(name); ok {
		return target{name: c.Name, kind: ephem.KindConstellation, constellation: c}, nil
	}
	return target{}, &astro.FormatError{Field: "target", Value: name, Reason: "unknown body or constellation"}
}

// samples returns daily samples of body covering [start, start+days]. Stored
// samples are used only when they reach both ends of the span; otherwise the
// provider is queried and the result saved.
func (e *Engine) samples(ctx context.Context, body ephem.Body, start time.Time, days int) ([]ephem.Sample, error) {
	start = utcDay(start)
	end := start.AddDate(0, 0, days)

	stored, err := e.ctx.Repository.FindSamples(ctx, body.Name, start, end)
	if err != nil {
		return nil, fmt.Errorf("find samples: %w", err)
	}
	if covers(stored, start, end) {
		return stored, nil
	}

	fetched, err := e.ctx.Ephemeris.Fetch(ctx, body, start, days)
	if err != nil {
		return nil, err
	}
	if err := e.ctx.Repository.SaveSamples(ctx, body.Name, fetched); err != nil {
		e.log.Warn("save %s samples: %v", body.Name, err)
	}
	return ephem.SortedCopy(fetched), nil
}

// covers reports whether time-ordered samples reach from start to end.
func covers(samples []ephem.Sample, start, end time.Time) bool {
	if len(samples) == 0 {
		return false
	}
	return !samples[0].Time.After(start) && !samples[len(samples)-1].Time.Before(end)
}

// peakTarget builds the search target for t over [from, to].
func (e *Engine) peakTarget(ctx context.Context, t target, from, to time.Time) (peak.Target, error) {
	if t.isFixed() {
		return peak.ConstellationTarget(t.constellation), nil
	}
	days := int(utcDay(to).Sub(utcDay(from))/(24*time.Hour)) + 1
	samples, err := e.samples(ctx, t.body, from, days)
	if err != nil {
		return nil, err
	}
	return peak.NewSampledTarget(t.name, samples), nil
}

// nightWindows computes the night following each of days local dates from
// start. The UTC offset is looked up per date so DST changes are honoured.
func (e *Engine) nightWindows(ctx context.Context, obs astro.Observer, start time.Time, days int) ([]astro.NightWindow, error) {
	nights := make([]astro.NightWindow, 0, days)
	for i := 0; i < days; i++ {
		date := calendarDate(start).AddDate(0, 0, i)
		w, err := e.nightWindow(ctx, obs, date)
		if err != nil {
			return nil, err
		}
		nights = append(nights, w)
	}
	return nights, nil
}

func (e *Engine) nightWindow(ctx context.Context, obs astro.Observer, date time.Time) (astro.NightWindow, error) {
	off, err := e.ctx.Timezones.Lookup(ctx, obs.LatDeg, obs.LonDeg, approxLocalNoon(date, obs.LonDeg))
	if err != nil {
		return astro.NightWindow{}, err
	}
	return astro.ComputeNightWindow(obs, date, off.TotalSec(), off.TimezoneID)
}

// nightFor picks the window a best instant is judged against: the one
// containing it, otherwise the one whose night starts nearest.
func nightFor(nights []astro.NightWindow, t time.Time) astro.NightWindow {
	best := nights[0]
	bestGap := absDuration(t.Sub(best.SunsetUTC))
	for _, w := range nights {
		if w.Contains(t) {
			return w
		}
		if gap := absDuration(t.Sub(w.SunsetUTC)); gap < bestGap {
			best, bestGap = w, gap
		}
	}
	return best
}

// approxLocalNoon is the instant the timezone is resolved at for a date.
func approxLocalNoon(date time.Time, lonDeg float64) time.Time {
	return calendarDate(date).Add(12*time.Hour - time.Duration(lonDeg/15*float64(time.Hour)))
}

// calendarDate drops the clock and location, keeping the wall-clock date.
func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func utcDay(t time.Time) time.Time {
	return calendarDate(t.UTC())
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
