// Package ephem provides ephemeris samples for solar-system bodies.
package ephem

import (
	"context"
	"sort"
	"time"

	"github.com/litescript/ls-skywatch/internal/astro"
)

// Sample is one timestamped ephemeris row for a body.
type Sample struct {
	Time time.Time `json:"time"`

	// Sexagesimal text as delivered, and its decimal value.
	RAText  string  `json:"ra"`
	DecText string  `json:"dec"`
	RAHours float64 `json:"ra_hours"`
	DecDeg  float64 `json:"dec_deg"`

	DistanceAU     float64 `json:"delta_au"`    // observer range
	RadialVelocity float64 `json:"deldot_km_s"` // range rate, negative when approaching
	ElongationDeg  float64 `json:"sot_deg"`     // sun-observer-target angle
}

// RADeg returns right ascension in degrees.
func (s Sample) RADeg() float64 {
	return s.RAHours * 15
}

// NewSample builds a sample from sexagesimal RA/Dec text, filling the decimal
// fields. Returns *astro.FormatError for malformed text.
func NewSample(t time.Time, raText, decText string, distanceAU, radialVelocity, elongationDeg float64) (Sample, error) {
	ra, dec, err := astro.ParseRADec(raText, decText)
	if err != nil {
		return Sample{}, err
	}
	return Sample{
		Time:           t.UTC(),
		RAText:         raText,
		DecText:        decText,
		RAHours:        ra,
		DecDeg:         dec,
		DistanceAU:     distanceAU,
		RadialVelocity: radialVelocity,
		ElongationDeg:  elongationDeg,
	}, nil
}

// Provider defines the interface for ephemeris data sources.
type Provider interface {
	// Name returns the provider name for display/logging.
	Name() string

	// Fetch returns daily samples for body covering days days from start.
	// Rows the provider cannot parse are skipped; a fetch that yields no
	// usable rows fails with *astro.UpstreamDataError.
	Fetch(ctx context.Context, body Body, start time.Time, days int) ([]Sample, error)
}

// SortSamples orders samples ascending by time. The sort is stable so samples
// sharing a timestamp keep their delivery order.
func SortSamples(samples []Sample) {
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Time.Before(samples[j].Time)
	})
}

// SortedCopy returns a time-ordered copy, leaving the input untouched.
func SortedCopy(samples []Sample) []Sample {
	out := make([]Sample, len(samples))
	copy(out, samples)
	SortSamples(out)
	return out
}

// Window returns the samples whose time falls in [start, end].
func Window(samples []Sample, start, end time.Time) []Sample {
	var out []Sample
	for _, s := range samples {
		if !s.Time.Before(start) && !s.Time.After(end) {
			out = append(out, s)
		}
	}
	return out
}
