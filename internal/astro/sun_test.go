package astro

import (
	"math"
	"testing"
	"time"
)

func TestSunPosition(t *testing.T) {
	tests := []struct {
		name    string
		t       time.Time
		wantDec float64
		tol     float64
	}{
		{"march equinox", time.Date(2024, 3, 20, 3, 6, 0, 0, time.UTC), 0, 0.05},
		{"june solstice", time.Date(2024, 6, 20, 20, 51, 0, 0, time.UTC), 23.44, 0.05},
		{"december solstice", time.Date(2024, 12, 21, 9, 20, 0, 0, time.UTC), -23.44, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ra, dec := SunPosition(tt.t)
			if math.Abs(dec-tt.wantDec) > tt.tol {
				t.Errorf("dec = %v, want %v (±%v)", dec, tt.wantDec, tt.tol)
			}
			if ra < 0 || ra >= 360 {
				t.Errorf("ra out of range: %v", ra)
			}
		})
	}
}

func TestSunSeparation(t *testing.T) {
	at := time.Date(2024, 3, 20, 3, 6, 0, 0, time.UTC)
	ra, dec := SunPosition(at)

	if sep := SunSeparation(ra, dec, at); sep > 1e-9 {
		t.Errorf("separation from the Sun itself = %v", sep)
	}
	// Opposite point on the sky.
	if sep := SunSeparation(normalizeAngle360(ra+180), -dec, at); math.Abs(sep-180) > 1e-6 {
		t.Errorf("antisolar separation = %v, want 180", sep)
	}
}

func TestAngularSeparation(t *testing.T) {
	tests := []struct {
		name                 string
		ra1, dec1, ra2, dec2 float64
		want                 float64
	}{
		{"same point", 10, 20, 10, 20, 0},
		{"along equator", 0, 0, 90, 0, 90},
		{"pole to equator", 0, 90, 123, 0, 90},
		{"ra wrap", 359, 0, 1, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AngularSeparation(tt.ra1, tt.dec1, tt.ra2, tt.dec2)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("AngularSeparation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSunAltitudeNoon(t *testing.T) {
	// Greenwich, near local noon at the equinox: alt ≈ 90 - 51.48.
	obs := Observer{LatDeg: 51.48, LonDeg: 0}
	alt := SunAltitude(obs, time.Date(2024, 3, 20, 12, 7, 0, 0, time.UTC))
	if math.Abs(alt-38.5) > 0.5 {
		t.Errorf("noon altitude = %v, want ~38.5", alt)
	}
}
