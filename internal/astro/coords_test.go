package astro

import (
	"math"
	"testing"
	"time"
)

func TestGreenwichMeanSiderealTime(t *testing.T) {
	// At J2000 epoch (2000-01-01 12:00 UTC), GMST should be approximately 280.46°
	gmst := greenwichMeanSiderealTime(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC))
	if math.Abs(gmst-280.46) > 0.1 {
		t.Errorf("GMST at J2000 = %v, want ~280.46", gmst)
	}
	if gmst < 0 || gmst >= 360 {
		t.Errorf("GMST out of range: %v", gmst)
	}
}

func TestLocalSiderealTime(t *testing.T) {
	testTime := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	gmst := greenwichMeanSiderealTime(testTime)

	if lst := localSiderealTime(testTime, 0); math.Abs(lst-gmst) > 0.001 {
		t.Errorf("LST at lon=0 should equal GMST: got %v, want %v", lst, gmst)
	}
	want := math.Mod(gmst+90, 360)
	if lst := localSiderealTime(testTime, 90); math.Abs(lst-want) > 0.001 {
		t.Errorf("LST at lon=90 = %v, want %v", lst, want)
	}
}

func TestEquatorialToHorizontal(t *testing.T) {
	obs := Observer{LatDeg: 35, LonDeg: 139}
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	lst := localSiderealTime(at, obs.LonDeg)

	tests := []struct {
		name    string
		ra, dec float64
		wantAlt float64
		wantAz  float64
	}{
		// On the meridian south of zenith: alt = 90 - |lat - dec|.
		{"transit south", lst, 20, 75, 180},
		// Six hours east of the meridian on the equator: rising due east.
		{"rising east", normalizeAngle360(lst + 90), 0, 0, 90},
		// Six hours west: setting due west.
		{"setting west", normalizeAngle360(lst - 90), 0, 0, 270},
		// Lower culmination of a circumpolar star: alt = lat + dec - 90.
		{"lower culmination", normalizeAngle360(lst + 180), 80, 25, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EquatorialToHorizontal(SkyCoord{RAdeg: tt.ra, DecDeg: tt.dec}, obs, at)
			if math.Abs(got.AltDeg-tt.wantAlt) > 1e-6 {
				t.Errorf("alt = %v, want %v", got.AltDeg, tt.wantAlt)
			}
			dAz := math.Abs(got.AzDeg - tt.wantAz)
			if dAz > 180 {
				dAz = 360 - dAz
			}
			if dAz > 1e-6 {
				t.Errorf("az = %v, want %v", got.AzDeg, tt.wantAz)
			}
			if got.RAdeg != tt.ra || got.DecDeg != tt.dec {
				t.Error("equatorial input should be preserved")
			}
		})
	}
}

func TestPolarisAltitude(t *testing.T) {
	// Polaris sits within a degree of the pole, so its altitude tracks latitude.
	ra, dec, err := ParseRADec("02 31 49.09", "+89 15 50.8")
	if err != nil {
		t.Fatal(err)
	}
	for _, lat := range []float64{89, 45, 10} {
		alt := Altitude(Observer{LatDeg: lat}, ra*15, dec, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		if math.Abs(alt-lat) > 1 {
			t.Errorf("lat %v: Polaris altitude = %v", lat, alt)
		}
	}
}

func TestPositionParallax(t *testing.T) {
	obs := Observer{LatDeg: 37.5665, LonDeg: 126.978, ElevationM: 38}
	at := time.Date(2024, 4, 23, 15, 0, 0, 0, time.UTC)

	// The Moon at ~385,000 km shifts by up to about one degree.
	topoRA, topoDec := Topocentric(obs, 200, -15, 0.00257, at)
	shift := AngularSeparation(200, -15, topoRA, topoDec)
	if shift <= 0 || shift > 1.05 {
		t.Errorf("lunar parallax shift = %v°, want (0, 1.05]", shift)
	}

	// A planet several AU away barely moves.
	topoRA, topoDec = Topocentric(obs, 200, -15, 5, at)
	if shift := AngularSeparation(200, -15, topoRA, topoDec); shift > 0.001 {
		t.Errorf("planet parallax shift = %v°, want < 0.001", shift)
	}

	// Zero distance means a fixed target: Position equals the plain conversion.
	fixed := Position(obs, 200, -15, 0, at)
	plain := EquatorialToHorizontal(SkyCoord{RAdeg: 200, DecDeg: -15}, obs, at)
	if fixed != plain {
		t.Errorf("Position with zero distance = %+v, want %+v", fixed, plain)
	}
}

func TestNormalizeAngle360(t *testing.T) {
	for in, want := range map[float64]float64{
		0: 0, 360: 0, 720: 0, -90: 270, 450: 90, -1e-15: 0,
	} {
		got := normalizeAngle360(in)
		if got < 0 || got >= 360 || math.Abs(got-want) > 1e-9 {
			t.Errorf("normalizeAngle360(%v) = %v, want %v", in, got, want)
		}
	}
}
