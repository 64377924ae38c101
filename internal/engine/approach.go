package engine

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/litescript/ls-skywatch/internal/approach"
	"github.com/litescript/ls-skywatch/internal/astro"
	"github.com/litescript/ls-skywatch/internal/ephem"
	"github.com/litescript/ls-skywatch/internal/meteor"
)

// DefaultApproachDays is the window of an approach query when none is given.
const DefaultApproachDays = 365

// MaxApproachDays bounds one approach window.
const MaxApproachDays = 2 * 366

// ReturnDates is where a follow-up window starts for comets that are
// receding with no return inside the first window.
var ReturnDates = map[string]meteor.MonthDay{
	"Swift-Tuttle": {Month: time.August, Day: 10},
	"Tuttle":       {Month: time.December, Day: 1},
}

// ApproachReport is a classification plus the window it was computed over.
type ApproachReport struct {
	approach.Result
	Body        string    `json:"body"`
	WindowStart time.Time `json:"window_start"`
	WindowDays  int       `json:"window_days"`
	Requeried   bool      `json:"requeried"`
}

// Approach classifies a body's trajectory over [start, start+days]. When the
// body is receding with no return inside the window and it has a configured
// return date, one follow-up window starting there is classified instead.
func (e *Engine) Approach(ctx context.Context, body string, start time.Time, days int) (ApproachReport, error) {
	days, err := approachDays(days)
	if err != nil {
		return ApproachReport{}, err
	}
	b, ok := ephem.LookupBody(body)
	if !ok {
		return ApproachReport{}, &astro.FormatError{Field: "body", Value: body, Reason: "unknown body"}
	}

	samples, err := e.samples(ctx, b, start, days)
	if err != nil {
		return ApproachReport{}, err
	}
	res, err := approach.Classify(samples)
	if err != nil {
		return ApproachReport{}, err
	}
	report := ApproachReport{Result: res, Body: b.Name, WindowStart: utcDay(start), WindowDays: days}

	if !res.NeedsRequery() {
		return report, nil
	}
	md, ok := ReturnDates[b.Name]
	if !ok {
		return report, nil
	}

	next := nextReturn(md, res.ClosestApproach.Time)
	e.log.Debug("%s receding after %s, requerying from %s",
		b.Name, res.ClosestApproach.Time.Format("2006-01-02"), next.Format("2006-01-02"))

	samples, err = e.samples(ctx, b, next, days)
	if err != nil {
		return ApproachReport{}, err
	}
	res, err = approach.Classify(samples)
	if err != nil {
		return ApproachReport{}, err
	}
	return ApproachReport{Result: res, Body: b.Name, WindowStart: next, WindowDays: days, Requeried: true}, nil
}

// nextReturn is md in the year of closest, or the following year when that
// is not after closest.
// approachDays defaults a non-positive window and rejects one longer than
// MaxApproachDays.
func approachDays(days int) (int, error) {
	switch {
	case days <= 0:
		return DefaultApproachDays, nil
	case days > MaxApproachDays:
		return 0, &astro.FormatError{
			Field:  "days",
			Value:  strconv.Itoa(days),
			Reason: fmt.Sprintf("must be at most %d", MaxApproachDays),
		}
	default:
		return days, nil
	}
}

func nextReturn(md meteor.MonthDay, closest time.Time) time.Time {
	d := md.In(closest.UTC().Year())
	if !d.After(closest) {
		d = md.In(closest.UTC().Year() + 1)
	}
	return d
}
