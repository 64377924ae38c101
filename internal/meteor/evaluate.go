package meteor

import (
	"time"

	"github.com/litescript/ls-skywatch/internal/approach"
)

// ErrorMarginDays is how close a comet's closest approach must come to a
// peak boundary for the shower to be judged with lenient conditions.
const ErrorMarginDays = 31

// Messages and condition labels attached to a Report.
const (
	MessageNearApproach = "Meteor shower peak period is near the comet approach date, increasing observation potential."
	MessageAtPeak       = "Meteor shower is at its peak period."
	MessageNotAtPeak    = "Meteor shower is not at its peak period."
	MessageEstimated    = "Meteor shower occurrence is based on comet's closest approach and may vary."

	ConditionsLenient   = "Lenient conditions applied"
	ConditionsStandard  = "Standard conditions applied"
	ConditionsEstimated = "Estimated conditions based on closest approach"
)

// Report is a shower's outlook for the year of its comet's closest approach.
type Report struct {
	Name           string          `json:"name"`
	Comet          string          `json:"comet_name"`
	Annual         bool            `json:"annual"`
	PeakStartDate  string          `json:"peak_start_date"`
	PeakEndDate    string          `json:"peak_end_date"`
	Message        string          `json:"message"`
	ConditionsUsed string          `json:"conditions_used"`
	Lenient        bool            `json:"lenient"`
	Status         approach.Status `json:"status"`
	DistanceAU     float64         `json:"distance"`
	RA             string          `json:"ra"`
	Dec            string          `json:"declination"`
}

// PeakRange returns the peak period as UTC dates.
func (r Report) PeakRange() (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", r.PeakStartDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = time.Parse("2006-01-02", r.PeakEndDate)
	return start, end, err
}

// Evaluate places a shower against its comet's approach classification.
//
// An annual shower's peak period is taken in the year of the closest
// approach. When the approach falls within ErrorMarginDays of either peak
// boundary the shower is judged leniently; that check comes before the
// inside-the-period check, so an approach inside a short period is reported
// as near. Non-annual showers get a peak estimated from PeakOffsetDays.
func Evaluate(s Shower, a approach.Result) Report {
	closest := a.ClosestApproach
	day := utcDay(closest.Time)

	r := Report{
		Name:       s.Name,
		Comet:      s.Comet,
		Annual:     s.Annual,
		Status:     a.Status,
		DistanceAU: closest.DistanceAU,
		RA:         closest.RAText,
		Dec:        closest.DecText,
	}

	if !s.Annual {
		peak := day.AddDate(0, 0, PeakOffsetDays[s.Comet])
		r.PeakStartDate = peak.Add(-EstimatedPeakHalfWidth).Format("2006-01-02")
		r.PeakEndDate = peak.Add(EstimatedPeakHalfWidth).Format("2006-01-02")
		r.Message = MessageEstimated
		r.ConditionsUsed = ConditionsEstimated
		return r
	}

	start := s.PeakStart.In(day.Year())
	end := s.PeakEnd.In(day.Year())
	r.PeakStartDate = start.Format("2006-01-02")
	r.PeakEndDate = end.Format("2006-01-02")

	switch {
	case absDays(day.Sub(start)) <= ErrorMarginDays || absDays(day.Sub(end)) <= ErrorMarginDays:
		r.Message = MessageNearApproach
		r.ConditionsUsed = ConditionsLenient
		r.Lenient = true
	case !day.Before(start) && !day.After(end):
		r.Message = MessageAtPeak
		r.ConditionsUsed = ConditionsStandard
	default:
		r.Message = MessageNotAtPeak
		r.ConditionsUsed = ConditionsStandard
	}
	return r
}

// EvaluateAll reports every shower of the classified comet.
func EvaluateAll(comet string, a approach.Result) []Report {
	showers := ShowersFor(comet)
	out := make([]Report, 0, len(showers))
	for _, s := range showers {
		out = append(out, Evaluate(s, a))
	}
	return out
}

// SplitYearComets are classified over two half-year windows. A single
// window's closest sample would hide the second of their yearly showers.
var SplitYearComets = map[string]bool{"Halley": true}

// EvaluateNearest reports every shower of comet against the approach whose
// closest date falls nearest the shower's peak start in that year. Ties and
// non-annual showers take the earliest approach given.
func EvaluateNearest(comet string, approaches []approach.Result) []Report {
	if len(approaches) == 0 {
		return nil
	}
	showers := ShowersFor(comet)
	out := make([]Report, 0, len(showers))
	for _, s := range showers {
		best := approaches[0]
		if s.Annual {
			for _, a := range approaches[1:] {
				if peakGap(s, a) < peakGap(s, best) {
					best = a
				}
			}
		}
		out = append(out, Evaluate(s, best))
	}
	return out
}

// peakGap is the number of days between a's closest approach and the start
// of the shower's peak in the same year.
func peakGap(s Shower, a approach.Result) int {
	day := utcDay(a.ClosestApproach.Time)
	return absDays(day.Sub(s.PeakStart.In(day.Year())))
}

func utcDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func absDays(d time.Duration) int {
	days := int(d / (24 * time.Hour))
	if days < 0 {
		return -days
	}
	return days
}
