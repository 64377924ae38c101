package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/litescript/ls-skywatch/internal/approach"
	"github.com/litescript/ls-skywatch/internal/astro"
	"github.com/litescript/ls-skywatch/internal/ephem"
	"github.com/litescript/ls-skywatch/internal/meteor"
	"github.com/litescript/ls-skywatch/internal/peak"
	"github.com/litescript/ls-skywatch/internal/verdict"
)

// MeteorShowers classifies a comet's approach over [start, start+days] and
// reports each of its showers against it. Comets in meteor.SplitYearComets
// are classified over each half of the window, and each shower is judged
// against the half whose closest approach is nearer its peak. Reports are
// saved to the repository.
func (e *Engine) MeteorShowers(ctx context.Context, comet string, start time.Time, days int) ([]meteor.Report, error) {
	showers := meteor.ShowersFor(comet)
	if len(showers) == 0 {
		return nil, &astro.InsufficientDataError{Op: "meteor showers", Have: 0, Need: 1}
	}

	var reports []meteor.Report
	if name := showers[0].Comet; meteor.SplitYearComets[name] {
		halves, err := e.halfApproaches(ctx, name, start, days)
		if err != nil {
			return nil, err
		}
		reports = meteor.EvaluateNearest(name, halves)
	} else {
		a, err := e.Approach(ctx, comet, start, days)
		if err != nil {
			return nil, err
		}
		reports = meteor.EvaluateAll(comet, a.Result)
	}

	if err := e.ctx.Repository.SaveShowers(ctx, reports); err != nil {
		e.log.Warn("save %s showers: %v", comet, err)
	}
	return reports, nil
}

// halfApproaches classifies [start, start+days/2] and the window of the same
// length that follows it. A 365-day window splits into two 182-day halves.
func (e *Engine) halfApproaches(ctx context.Context, comet string, start time.Time, days int) ([]approach.Result, error) {
	days, err := approachDays(days)
	if err != nil {
		return nil, err
	}
	b, ok := ephem.LookupBody(comet)
	if !ok {
		return nil, &astro.FormatError{Field: "comet", Value: comet, Reason: "unknown body"}
	}

	half := max(days/2, 1)
	out := make([]approach.Result, 0, 2)
	for i := 0; i < 2; i++ {
		from := utcDay(start).AddDate(0, 0, i*(half+1))
		samples, err := e.samples(ctx, b, from, half)
		if err != nil {
			return nil, err
		}
		res, err := approach.Classify(samples)
		if err != nil {
			return nil, fmt.Errorf("%s half %d: %w", b.Name, i+1, err)
		}
		out = append(out, res)
	}
	return out, nil
}

// ShowerOutlook is the best instant to watch a shower's radiant during its
// peak period.
type ShowerOutlook struct {
	Shower  meteor.Report   `json:"shower"`
	Verdict verdict.Verdict `json:"verdict"`
	Peak    peak.Result     `json:"peak"`
}

// ShowerVisibility searches the nights of a shower's peak period in year for
// the best view of its radiant. The stored report is used when present;
// otherwise the parent comet's approach over that year is evaluated first.
// A report flagged lenient is judged with verdict.LenientConditions.
func (e *Engine) ShowerVisibility(ctx context.Context, name string, year int, obs astro.Observer) (ShowerOutlook, error) {
	shower, ok := meteor.LookupShower(name)
	if !ok {
		return ShowerOutlook{}, &astro.FormatError{Field: "shower", Value: name, Reason: "unknown meteor shower"}
	}

	report, err := e.showerReport(ctx, shower, year)
	if err != nil {
		return ShowerOutlook{}, err
	}
	start, end, err := report.PeakRange()
	if err != nil {
		return ShowerOutlook{}, &astro.FormatError{Field: "peak_period", Value: report.PeakStartDate, Reason: err.Error()}
	}

	days := int(end.Sub(start)/(24*time.Hour)) + 1
	nights, err := e.nightWindows(ctx, obs, start, days)
	if err != nil {
		return ShowerOutlook{}, err
	}

	radiant := peak.FixedTarget{Label: shower.Name, RAdeg: shower.RadiantRAdeg, DecDeg: shower.RadiantDecDeg}
	res, err := peak.Search(peak.Query{
		Observer: obs,
		Target:   radiant,
		Start:    nights[0].SunsetUTC.Truncate(time.Hour),
		End:      nights[len(nights)-1].SunriseUTC,
		Nights:   nights,
	})
	if err != nil {
		return ShowerOutlook{}, err
	}

	cond := e.ctx.Conditions.For(shower.Comet, ephem.KindComet)
	if report.Lenient {
		cond = verdict.LenientConditions
	}
	night := nightFor(nights, res.BestInstant)
	v := verdict.Judge(verdict.Input{
		Date:          night.Date,
		Body:          shower.Name,
		Kind:          ephem.KindComet,
		Conditions:    cond,
		Peak:          res,
		Night:         night,
		ElongationDeg: astro.SunSeparation(radiant.RAdeg, radiant.DecDeg, res.BestInstant),
		HasElongation: true,
	})
	return ShowerOutlook{Shower: report, Verdict: v, Peak: res}, nil
}

func (e *Engine) showerReport(ctx context.Context, shower meteor.Shower, year int) (meteor.Report, error) {
	stored, err := e.ctx.Repository.FindShowers(ctx, shower.Name, year)
	if err != nil {
		return meteor.Report{}, fmt.Errorf("find showers: %w", err)
	}
	if len(stored) > 0 {
		return stored[0], nil
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	reports, err := e.MeteorShowers(ctx, shower.Comet, start, DefaultApproachDays)
	if err != nil {
		return meteor.Report{}, err
	}
	for _, r := range reports {
		if r.Name == shower.Name {
			return r, nil
		}
	}
	return meteor.Report{}, &astro.InsufficientDataError{Op: "meteor shower " + shower.Name, Have: 0, Need: 1}
}
