package peak

import (
	"math"
	"time"

	"github.com/litescript/ls-skywatch/internal/astro"
	"github.com/litescript/ls-skywatch/internal/ephem"
)

// Target supplies a target's geocentric place at an instant.
type Target interface {
	// Name labels the target in results and logs.
	Name() string

	// At returns RA/Dec in degrees and distance in AU (0 when unknown).
	// ok is false when the target has no position at t.
	At(t time.Time) (raDeg, decDeg, distanceAU float64, ok bool)
}

// FixedTarget is a target whose place does not change over a search, such as
// a constellation.
type FixedTarget struct {
	Label  string
	RAdeg  float64
	DecDeg float64
}

// Name implements Target.
func (f FixedTarget) Name() string { return f.Label }

// At implements Target.
func (f FixedTarget) At(time.Time) (float64, float64, float64, bool) {
	return f.RAdeg, f.DecDeg, 0, true
}

// ConstellationTarget wraps a catalog constellation.
func ConstellationTarget(c astro.Constellation) FixedTarget {
	return FixedTarget{Label: c.Name, RAdeg: c.RAdeg, DecDeg: c.DecDeg}
}

// SampledTarget interpolates a body's place between ephemeris samples.
type SampledTarget struct {
	label   string
	samples []ephem.Sample
}

// NewSampledTarget builds a target from samples, which are sorted on a copy.
func NewSampledTarget(name string, samples []ephem.Sample) *SampledTarget {
	return &SampledTarget{label: name, samples: ephem.SortedCopy(samples)}
}

// Name implements Target.
func (s *SampledTarget) Name() string { return s.label }

// Len returns the number of samples backing the target.
func (s *SampledTarget) Len() int { return len(s.samples) }

// At implements Target. Positions are linearly interpolated between the two
// samples bracketing t, taking the short way around in right ascension.
// Instants outside the sampled span have no position.
func (s *SampledTarget) At(t time.Time) (float64, float64, float64, bool) {
	n := len(s.samples)
	if n == 0 || t.Before(s.samples[0].Time) || t.After(s.samples[n-1].Time) {
		return 0, 0, 0, false
	}

	// First sample at or after t.
	i := 0
	for i < n && s.samples[i].Time.Before(t) {
		i++
	}
	b := s.samples[i]
	if i == 0 || b.Time.Equal(t) {
		return b.RADeg(), b.DecDeg, b.DistanceAU, true
	}
	a := s.samples[i-1]

	f := float64(t.Sub(a.Time)) / float64(b.Time.Sub(a.Time))
	dRA := b.RADeg() - a.RADeg()
	if dRA > 180 {
		dRA -= 360
	} else if dRA < -180 {
		dRA += 360
	}
	ra := math.Mod(a.RADeg()+f*dRA+360, 360)
	dec := a.DecDeg + f*(b.DecDeg-a.DecDeg)
	dist := a.DistanceAU + f*(b.DistanceAU-a.DistanceAU)
	return ra, dec, dist, true
}
