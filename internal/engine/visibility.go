package engine

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/litescript/ls-skywatch/internal/astro"
	"github.com/litescript/ls-skywatch/internal/peak"
	"github.com/litescript/ls-skywatch/internal/verdict"
)

// MaxScanDays bounds a single scan.
const MaxScanDays = 366

// ScanRequest asks for the visibility of a target on each of Days local
// dates starting at Start.
type ScanRequest struct {
	Target   string
	Observer astro.Observer
	Start    time.Time // local calendar date
	Days     int
}

// DayVerdict is the outcome for one date of a scan. Err is set, and Verdict
// nil, when that date could not be judged (no sunrise at the pole, say).
type DayVerdict struct {
	Date    string           `json:"date"`
	Verdict *verdict.Verdict `json:"verdict,omitempty"`
	Peak    *peak.Result     `json:"peak,omitempty"`
	Error   string           `json:"error,omitempty"`
	Err     error            `json:"-"`
}

// Scan judges a target on consecutive dates. External data (night windows,
// samples for the whole span) is fetched first; the per-date searches then
// run on the worker pool and are returned sorted by date.
func (e *Engine) Scan(ctx context.Context, req ScanRequest) ([]DayVerdict, error) {
	if req.Days < 1 || req.Days > MaxScanDays {
		return nil, &astro.FormatError{Field: "days", Value: strconv.Itoa(req.Days), Reason: "must be between 1 and 366"}
	}
	t, err := resolveTarget(req.Target)
	if err != nil {
		return nil, err
	}

	days := make([]DayVerdict, req.Days)
	nights := make([]*astro.NightWindow, req.Days)
	var valid []astro.NightWindow
	for i := range days {
		date := calendarDate(req.Start).AddDate(0, 0, i)
		days[i].Date = date.Format("2006-01-02")

		w, err := e.nightWindow(ctx, req.Observer, date)
		if err != nil {
			if !isPerDate(err) {
				return nil, err
			}
			days[i].Err, days[i].Error = err, err.Error()
			continue
		}
		nights[i] = &w
		valid = append(valid, w)
	}
	if len(valid) == 0 {
		return days, nil
	}

	tgt, err := e.peakTarget(ctx, t, valid[0].SunsetUTC, valid[len(valid)-1].SunriseUTC)
	if err != nil {
		return nil, err
	}

	jobs := make([]peak.Job, 0, len(valid))
	for i, w := range nights {
		if w == nil {
			continue
		}
		jobs = append(jobs, peak.Job{
			Key: days[i].Date,
			Query: peak.Query{
				Observer: req.Observer,
				Target:   tgt,
				Start:    w.SunsetUTC.Truncate(time.Hour),
				End:      w.SunriseUTC,
				Nights:   []astro.NightWindow{*w},
			},
		})
	}

	index := make(map[string]int, len(days))
	for i, d := range days {
		index[d.Date] = i
	}

	cond := e.ctx.Conditions.For(t.name, t.kind)
	for _, r := range e.ctx.Pool.SearchBatch(ctx, jobs) {
		i := index[r.Key]
		if r.Err != nil {
			days[i].Err, days[i].Error = r.Err, r.Err.Error()
			continue
		}
		res := r.Result
		v := e.judge(t, cond, *nights[i], tgt, res)
		days[i].Verdict = &v
		days[i].Peak = &res
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(days, func(a, b int) bool { return days[a].Date < days[b].Date })
	return days, nil
}

// Visibility judges a target on a single date. Unlike Scan, a date that cannot
// be judged is an error.
func (e *Engine) Visibility(ctx context.Context, tgt string, obs astro.Observer, date time.Time) (verdict.Verdict, error) {
	days, err := e.Scan(ctx, ScanRequest{Target: tgt, Observer: obs, Start: date, Days: 1})
	if err != nil {
		return verdict.Verdict{}, err
	}
	if days[0].Err != nil {
		return verdict.Verdict{}, days[0].Err
	}
	return *days[0].Verdict, nil
}

// judge renders the verdict for a search result. Elongation is the
// geocentric Sun separation of the target at the best instant.
func (e *Engine) judge(t target, cond verdict.Conditions, night astro.NightWindow, tgt peak.Target, res peak.Result) verdict.Verdict {
	ra, dec, dist, _ := tgt.At(res.BestInstant)
	return verdict.Judge(verdict.Input{
		Date:          night.Date,
		Body:          t.name,
		Kind:          t.kind,
		Conditions:    cond,
		Peak:          res,
		Night:         night,
		ElongationDeg: astro.SunSeparation(ra, dec, res.BestInstant),
		HasElongation: true,
		DistanceAU:    dist,
	})
}

// isPerDate reports whether err only affects one date of a scan.
func isPerDate(err error) bool {
	var ne *astro.NoEventError
	return errors.As(err, &ne)
}
