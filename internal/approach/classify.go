// Package approach classifies a body's trajectory relative to Earth from a
// series of ephemeris samples.
package approach

import (
	"gonum.org/v1/gonum/floats"

	"github.com/litescript/ls-skywatch/internal/astro"
	"github.com/litescript/ls-skywatch/internal/ephem"
)

// Status is whether the body is closing on or receding from Earth.
type Status string

const (
	Closing  Status = "closing"
	Receding Status = "receding"
)

// Messages reported with each outcome.
const (
	MessageClosing        = "Comet is approaching Earth."
	MessageClosingAgain   = "Comet is getting closer again."
	MessageRecedingNoNext = "Comet is moving away; no return to closing within the queried window. Query a later window."
)

// MinSamples is the smallest series Classify accepts.
const MinSamples = 2

// Result is the outcome of one classification.
type Result struct {
	Status              Status        `json:"status"`
	ClosestApproach     ephem.Sample  `json:"closest_approach"`
	NextClosestApproach *ephem.Sample `json:"next_closest_approach,omitempty"`
	Message             string        `json:"message"`
}

// NeedsRequery reports whether the window ended before the body resumed
// closing, so a later window has to be fetched.
func (r Result) NeedsRequery() bool {
	return r.Status == Receding && r.NextClosestApproach == nil
}

// Classify finds the minimum-distance sample and decides the body's status
// there. The input is sorted by time first (on a copy); ties in distance go to
// the earliest sample.
//
// If the body is already receding at its closest sample, later samples are
// scanned for the first one with negative range rate, which becomes the next
// closest approach. Fails with *astro.InsufficientDataError for fewer than
// MinSamples samples.
func Classify(samples []ephem.Sample) (Result, error) {
	if len(samples) < MinSamples {
		return Result{}, &astro.InsufficientDataError{Op: "approach", Have: len(samples), Need: MinSamples}
	}

	sorted := ephem.SortedCopy(samples)
	dist := make([]float64, len(sorted))
	for i, s := range sorted {
		dist[i] = s.DistanceAU
	}
	// MinIdx returns the first index on ties, which is the earliest sample.
	k := floats.MinIdx(dist)
	closest := sorted[k]

	if closest.RadialVelocity <= 0 {
		return Result{Status: Closing, ClosestApproach: closest, Message: MessageClosing}, nil
	}

	for i := k + 1; i < len(sorted); i++ {
		if sorted[i].RadialVelocity < 0 {
			next := sorted[i]
			return Result{
				Status:              Receding,
				ClosestApproach:     closest,
				NextClosestApproach: &next,
				Message:             MessageClosingAgain,
			}, nil
		}
	}

	return Result{Status: Receding, ClosestApproach: closest, Message: MessageRecedingNoNext}, nil
}
