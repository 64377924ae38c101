package peak

import (
	"math"

	"github.com/litescript/ls-skywatch/internal/astro"
)

// phaseWeights ranks named moon phases; darker skies score higher.
var phaseWeights = map[string]float64{
	astro.PhaseNewMoon:        10,
	astro.PhaseWaxingCrescent: 8,
	astro.PhaseWaningCrescent: 8,
	astro.PhaseFirstQuarter:   5,
	astro.PhaseLastQuarter:    5,
	astro.PhaseWaxingGibbous:  2,
	astro.PhaseWaningGibbous:  2,
	astro.PhaseFullMoon:       -5,
}

// PhaseWeight returns the preference weight for a named phase. Unknown names
// weigh 0.
func PhaseWeight(phase string) float64 {
	return phaseWeights[phase]
}

// IlluminationWeight is 10 for a dark moon falling to 0 at full illumination.
func IlluminationWeight(illumination float64) float64 {
	return math.Max(0, (1-illumination)*10)
}

// AltitudeBandWeight is the bonus on top of raw altitude.
func AltitudeBandWeight(altDeg float64) float64 {
	switch {
	case altDeg > 60:
		return 15
	case altDeg > 50:
		return 10
	case altDeg > 30:
		return 5
	default:
		return 0
	}
}

// CentralityWeight favours instants near the middle of the search range.
func CentralityWeight(daysFromMidpoint float64) float64 {
	return math.Max(0, 10-math.Abs(daysFromMidpoint))
}

// Factors are the inputs of the composite score for one candidate instant.
type Factors struct {
	AltitudeDeg      float64
	MoonPhase        string
	Illumination     float64
	DaysFromMidpoint float64
}

// Score is the composite desirability of a candidate. It ranks candidates
// within one search only.
func Score(f Factors) float64 {
	return f.AltitudeDeg +
		PhaseWeight(f.MoonPhase) +
		IlluminationWeight(f.Illumination) +
		AltitudeBandWeight(f.AltitudeDeg) +
		CentralityWeight(f.DaysFromMidpoint)
}
