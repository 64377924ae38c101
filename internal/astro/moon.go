package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/solar"
	"gonum.org/v1/gonum/stat"
)

// Moon phase names.
const (
	PhaseNewMoon        = "New Moon"
	PhaseWaxingCrescent = "Waxing Crescent"
	PhaseFirstQuarter   = "First Quarter"
	PhaseWaxingGibbous  = "Waxing Gibbous"
	PhaseFullMoon       = "Full Moon"
	PhaseWaningGibbous  = "Waning Gibbous"
	PhaseLastQuarter    = "Last Quarter"
	PhaseWaningCrescent = "Waning Crescent"
)

const (
	// MoonSamplesPerDay is how many instants across a UTC day are averaged.
	MoonSamplesPerDay = 8

	// FullMoonIllumination forces the "Full Moon" name regardless of angle.
	FullMoonIllumination = 0.99
)

// MoonPhase is the averaged lunar phase for one UTC day.
type MoonPhase struct {
	Date          time.Time // UTC midnight of the day
	PhaseAngleDeg float64   // Moon-Sun ecliptic elongation, 0=new, 180=full, [0, 360)
	Phase         float64   // PhaseAngleDeg / 360
	Illumination  float64   // illuminated fraction, 0..1
	Name          string
}

// MoonPhaseOn samples the Sun-Moon geometry every 3 hours across the UTC day
// containing date and averages it.
func MoonPhaseOn(date time.Time) MoonPhase {
	d := date.UTC()
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)

	step := 24 * time.Hour / MoonSamplesPerDay
	separations := make([]float64, MoonSamplesPerDay)
	angles := make([]float64, MoonSamplesPerDay)
	for i := 0; i < MoonSamplesPerDay; i++ {
		separations[i], angles[i] = sunMoonGeometry(day.Add(time.Duration(i) * step))
	}

	return MoonPhaseFromSamples(day, separations, angles)
}

// MoonPhaseFromSamples reduces per-instant Sun-Moon separations (degrees,
// 0..180) and phase angles (degrees, 0..360) to a single day value.
//
// Each sample contributes (1+cos(sep))/2, the dark fraction; the day's
// illumination is one minus their mean. The phase angle is the circular mean
// of the sample angles.
func MoonPhaseFromSamples(date time.Time, separationsDeg, anglesDeg []float64) MoonPhase {
	dark := make([]float64, len(separationsDeg))
	for i, sep := range separationsDeg {
		dark[i] = (1 + math.Cos(degToRad(sep))) / 2
	}
	illum := 1 - stat.Mean(dark, nil)

	rad := make([]float64, len(anglesDeg))
	for i, a := range anglesDeg {
		rad[i] = degToRad(a)
	}
	angle := normalizeAngle360(radToDeg(stat.CircularMean(rad, nil)))

	return MoonPhase{
		Date:          date,
		PhaseAngleDeg: angle,
		Phase:         angle / 360,
		Illumination:  illum,
		Name:          PhaseName(angle, illum),
	}
}

// PhaseName classifies a phase angle into the eight named phases. Bands are
// 45° wide and centred on 0, 90, 180 and 270. After banding, an illumination
// of FullMoonIllumination or more overrides the band with "Full Moon".
func PhaseName(angleDeg, illumination float64) string {
	a := normalizeAngle360(angleDeg)

	var name string
	switch {
	case a < 22.5 || a >= 337.5:
		name = PhaseNewMoon
	case a < 67.5:
		name = PhaseWaxingCrescent
	case a < 112.5:
		name = PhaseFirstQuarter
	case a < 157.5:
		name = PhaseWaxingGibbous
	case a < 202.5:
		name = PhaseFullMoon
	case a < 247.5:
		name = PhaseWaningGibbous
	case a < 292.5:
		name = PhaseLastQuarter
	default:
		name = PhaseWaningCrescent
	}

	if illumination >= FullMoonIllumination {
		name = PhaseFullMoon
	}
	return name
}

// sunMoonGeometry returns the Sun-Moon angular separation and the Moon's
// ecliptic longitude minus the Sun's, both in degrees.
func sunMoonGeometry(t time.Time) (sepDeg, phaseDeg float64) {
	jde := julian.TimeToJD(t.UTC())
	moonLon, moonLat, _ := moonposition.Position(jde)
	sunLon := solar.ApparentLongitude(base.J2000Century(jde))

	dLon := moonLon.Rad() - sunLon.Rad()
	cosSep := math.Cos(moonLat.Rad()) * math.Cos(dLon)
	sepDeg = radToDeg(math.Acos(clamp(cosSep, -1, 1)))
	phaseDeg = normalizeAngle360(radToDeg(dLon))
	return sepDeg, phaseDeg
}
