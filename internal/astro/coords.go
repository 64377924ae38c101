// Package astro provides coordinate conversion, solar and lunar geometry and
// day/night boundaries for a ground observer.
package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/globe"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/parallax"
	"github.com/soniakeys/unit"
)

// SkyCoord represents celestial coordinates with both equatorial (RA/Dec)
// and horizontal (Az/Alt) components.
type SkyCoord struct {
	// Equatorial coordinates (J2000)
	RAdeg  float64 // Right Ascension in degrees (0-360)
	DecDeg float64 // Declination in degrees (-90 to +90)

	// Horizontal coordinates (observer-relative)
	AzDeg  float64 // Azimuth in degrees (0=N, 90=E, 180=S, 270=W)
	AltDeg float64 // Altitude in degrees (0=horizon, 90=zenith, negative below)

	// Geocentric distance in AU, 0 when unknown (stars, constellations)
	DistanceAU float64
}

// Observer represents a ground-based observer location.
type Observer struct {
	LatDeg     float64 // Latitude in degrees (north positive)
	LonDeg     float64 // Longitude in degrees (east positive)
	ElevationM float64 // Height above the ellipsoid in meters
	Name       string  // Optional name for the site
}

// Position evaluates the apparent horizontal position of a target at RA/Dec
// (degrees) for obs at t. When distanceAU is positive the geocentric place is
// first shifted to the observer's topocentric place (diurnal parallax), which
// is where the observer's elevation enters.
func Position(obs Observer, raDeg, decDeg, distanceAU float64, t time.Time) SkyCoord {
	eq := SkyCoord{RAdeg: raDeg, DecDeg: decDeg, DistanceAU: distanceAU}
	if distanceAU > 0 {
		eq.RAdeg, eq.DecDeg = Topocentric(obs, raDeg, decDeg, distanceAU, t)
	}
	return EquatorialToHorizontal(eq, obs, t)
}

// Topocentric applies diurnal parallax to a geocentric RA/Dec (degrees) of a
// body at distanceAU.
func Topocentric(obs Observer, raDeg, decDeg, distanceAU float64, t time.Time) (float64, float64) {
	s, c := globe.Earth76.ParallaxConstants(unit.AngleFromDeg(obs.LatDeg), obs.ElevationM)
	// meeus measures geographic longitude positive west.
	lonWest := unit.AngleFromDeg(-obs.LonDeg)
	ra, dec := parallax.Topocentric(
		unit.RAFromDeg(raDeg), unit.AngleFromDeg(decDeg),
		distanceAU, s, c, lonWest, julian.TimeToJD(t.UTC()))
	return normalizeAngle360(radToDeg(ra.Rad())), dec.Deg()
}

// EquatorialToHorizontal converts equatorial coordinates (RA/Dec) to horizontal
// coordinates (Az/Alt) for a given observer and time.
//
// The function preserves the input RA/Dec values and populates Az/Alt.
// Uses standard astronomical conventions:
//   - Azimuth: 0° = North, 90° = East, 180° = South, 270° = West
//   - Altitude: 0° = horizon, 90° = zenith
func EquatorialToHorizontal(eq SkyCoord, obs Observer, t time.Time) SkyCoord {
	lat := degToRad(obs.LatDeg)
	ra := degToRad(eq.RAdeg)
	dec := degToRad(eq.DecDeg)

	lst := localSiderealTime(t, obs.LonDeg)
	ha := degToRad(lst) - ra

	sinAlt := math.Sin(dec)*math.Sin(lat) + math.Cos(dec)*math.Cos(lat)*math.Cos(ha)
	alt := math.Asin(clamp(sinAlt, -1, 1))

	// atan2 form stays defined at the poles, where the acos form divides by cos(lat)=0.
	az := math.Atan2(-math.Cos(dec)*math.Sin(ha),
		math.Sin(dec)*math.Cos(lat)-math.Cos(dec)*math.Sin(lat)*math.Cos(ha))

	return SkyCoord{
		RAdeg:      eq.RAdeg,
		DecDeg:     eq.DecDeg,
		AzDeg:      normalizeAngle360(radToDeg(az)),
		AltDeg:     radToDeg(alt),
		DistanceAU: eq.DistanceAU,
	}
}

// Altitude returns only the altitude of a fixed RA/Dec target.
func Altitude(obs Observer, raDeg, decDeg float64, t time.Time) float64 {
	return EquatorialToHorizontal(SkyCoord{RAdeg: raDeg, DecDeg: decDeg}, obs, t).AltDeg
}

// localSiderealTime calculates the Local Sidereal Time in degrees
// for a given UTC time and observer longitude.
func localSiderealTime(t time.Time, lonDeg float64) float64 {
	return normalizeAngle360(greenwichMeanSiderealTime(t) + lonDeg)
}

// greenwichMeanSiderealTime calculates GMST in degrees for a given UTC time.
// IAU 1982 expression in Julian Date.
func greenwichMeanSiderealTime(t time.Time) float64 {
	jd := julian.TimeToJD(t.UTC())
	T := (jd - 2451545.0) / 36525.0

	gmst := 280.46061837 +
		360.98564736629*(jd-2451545.0) +
		0.000387933*T*T -
		T*T*T/38710000.0

	return normalizeAngle360(gmst)
}

// degToRad converts degrees to radians.
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// radToDeg converts radians to degrees.
func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// normalizeAngle360 normalizes an angle to 0-360 degrees.
func normalizeAngle360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
