// Package verdict turns computed geometry into a visibility rating with the
// reasons behind it.
package verdict

import (
	"fmt"
	"math"
	"time"

	"github.com/litescript/ls-skywatch/internal/astro"
	"github.com/litescript/ls-skywatch/internal/ephem"
	"github.com/litescript/ls-skywatch/internal/peak"
)

// Rating is the qualitative visibility band.
type Rating string

const (
	Excellent Rating = "Excellent"
	Good      Rating = "Good"
	Moderate  Rating = "Moderate"
	Poor      Rating = "Poor"
	VeryPoor  Rating = "Very Poor"
)

// RatingForScore maps a composite peak score to a band.
func RatingForScore(score float64) Rating {
	switch {
	case score >= 80:
		return Excellent
	case score >= 60:
		return Good
	case score >= 40:
		return Moderate
	case score >= 20:
		return Poor
	default:
		return VeryPoor
	}
}

// Input is everything Judge needs. All of it is computed before the call.
type Input struct {
	Date       time.Time // local calendar date being judged
	Body       string
	Kind       ephem.Kind
	Conditions Conditions

	Peak  peak.Result
	Night astro.NightWindow

	// Solar elongation at the best instant; ignored unless HasElongation.
	ElongationDeg float64
	HasElongation bool

	// Geocentric distance, used for planet close-approach reasons.
	DistanceAU float64
}

// Verdict is the judgment for one date.
type Verdict struct {
	Date             string   `json:"date"`
	Visible          bool     `json:"visible"`
	BestTime         *string  `json:"best_time"`
	AltitudeDeg      float64  `json:"altitude_deg"`
	AzimuthDirection string   `json:"azimuth_direction"`
	Rating           Rating   `json:"rating"`
	Reasons          []string `json:"reasons"`
}

// Judge rates the best instant of a peak search. Failing conditions
// accumulate reasons; any failure makes the target not visible and rates it
// Very Poor. A dark-sky target whose best instant falls in daylight is never
// visible.
func Judge(in Input) Verdict {
	v := Verdict{
		Date:             in.Date.Format("2006-01-02"),
		AltitudeDeg:      round2(in.Peak.AltitudeDeg),
		AzimuthDirection: in.Peak.Direction.String(),
		Reasons:          []string{},
	}
	c := in.Conditions

	altOK := in.Peak.AltitudeDeg > c.MinAltitudeDeg
	if !altOK {
		v.Reasons = append(v.Reasons, fmt.Sprintf(
			"Altitude %.1f° is at or below the %.1f° minimum for %s.",
			in.Peak.AltitudeDeg, c.MinAltitudeDeg, in.Body))
	}

	elongOK := true
	if in.HasElongation && in.ElongationDeg <= c.MinElongationDeg {
		elongOK = false
		v.Reasons = append(v.Reasons, fmt.Sprintf(
			"Solar elongation %.1f° is at or below the %.1f° minimum; the target is too close to the Sun.",
			in.ElongationDeg, c.MinElongationDeg))
	}

	if altOK && elongOK {
		v.Visible = true
		v.Rating = RatingForScore(in.Peak.Score)
		v.Reasons = append(v.Reasons, fmt.Sprintf(
			"Best at altitude %.1f° toward the %s, composite score %.1f.",
			in.Peak.AltitudeDeg, v.AzimuthDirection, in.Peak.Score))
	} else {
		v.Rating = VeryPoor
	}

	if in.Peak.MoonPhase != "" {
		v.Reasons = append(v.Reasons, fmt.Sprintf("Moon: %s, %.0f%% illuminated.",
			in.Peak.MoonPhase, in.Peak.Illumination*100))
	}

	if in.Kind == ephem.KindPlanet || in.Kind == ephem.KindDwarfPlanet {
		if r := distanceReason(in.Body, in.DistanceAU); r != "" {
			v.Reasons = append(v.Reasons, r)
		}
	}

	if c.RequiresDark && in.Night.InDaylight(in.Peak.BestInstant) {
		v.Visible = false
		v.Reasons = append(v.Reasons, "Best instant falls in daytime, between sunrise and sunset.")
	}

	if v.Visible {
		bt := astro.ToLocal(in.Peak.BestInstant, in.Night.UTCOffsetSec).Format("15:04")
		v.BestTime = &bt
	}
	return v
}

func distanceReason(planet string, distanceAU float64) string {
	th, ok := ThresholdFor(planet)
	if !ok || distanceAU <= 0 {
		return ""
	}
	switch ClassifyDistance(planet, distanceAU) {
	case EventBigApproach:
		return fmt.Sprintf("Big approach: %.4f AU is within %.3f AU.", distanceAU, th.StrictAU)
	case EventApproach:
		return fmt.Sprintf("Close approach: %.4f AU is within %.3f AU.", distanceAU, th.LenientAU)
	default:
		return fmt.Sprintf("Distance to Earth %.4f AU.", distanceAU)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
