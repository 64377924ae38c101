package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/solar"
)

// SunHorizonAltitude is the altitude of the Sun's centre at the moment of
// sunrise/sunset: 34' of refraction plus a 16' semidiameter.
const SunHorizonAltitude = -0.8333

// SunPosition returns the apparent geocentric equatorial coordinates of the
// Sun in degrees. meeus' low-precision theory is good to ~0.01°, plenty for
// horizon crossings and elongation.
func SunPosition(t time.Time) (raDeg, decDeg float64) {
	ra, dec := solar.ApparentEquatorial(julian.TimeToJD(t.UTC()))
	return normalizeAngle360(radToDeg(ra.Rad())), dec.Deg()
}

// SunAltitude returns the geometric altitude of the Sun's centre for obs at t.
func SunAltitude(obs Observer, t time.Time) float64 {
	ra, dec := SunPosition(t)
	return Altitude(obs, ra, dec, t)
}

// SunSeparation calculates the angular separation between the Sun and a target.
// This is the solar elongation of the target. Returns degrees.
func SunSeparation(targetRA, targetDec float64, t time.Time) float64 {
	sunRA, sunDec := SunPosition(t)
	return AngularSeparation(sunRA, sunDec, targetRA, targetDec)
}

// AngularSeparation calculates the angular separation between two points on the celestial sphere.
// All coordinates in degrees. Returns separation in degrees.
func AngularSeparation(ra1, dec1, ra2, dec2 float64) float64 {
	ra1Rad := degToRad(ra1)
	dec1Rad := degToRad(dec1)
	ra2Rad := degToRad(ra2)
	dec2Rad := degToRad(dec2)

	// Haversine formula for angular separation
	dRA := ra2Rad - ra1Rad
	dDec := dec2Rad - dec1Rad

	a := math.Sin(dDec/2)*math.Sin(dDec/2) +
		math.Cos(dec1Rad)*math.Cos(dec2Rad)*math.Sin(dRA/2)*math.Sin(dRA/2)

	c := 2 * math.Asin(math.Sqrt(clamp(a, 0, 1)))

	return radToDeg(c)
}
