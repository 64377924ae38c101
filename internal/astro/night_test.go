package astro

import (
	"errors"
	"testing"
	"time"
)

var seoul = Observer{LatDeg: 37.5665, LonDeg: 126.978, Name: "Seoul"}

const kst = 9 * 3600

func TestNewNightWindow(t *testing.T) {
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	t.Run("sunset after sunrise", func(t *testing.T) {
		sunrise := time.Date(2024, 1, 10, 5, 40, 0, 0, time.UTC)
		sunset := time.Date(2024, 1, 10, 23, 50, 0, 0, time.UTC)
		w := NewNightWindow(date, sunrise, sunset, 0, "UTC")

		if !w.SunriseUTC.Equal(sunrise.Add(24 * time.Hour)) {
			t.Errorf("SunriseUTC = %v, want next morning", w.SunriseUTC)
		}
		if !w.DaySunriseUTC.Equal(sunrise) {
			t.Errorf("DaySunriseUTC = %v, want %v", w.DaySunriseUTC, sunrise)
		}
		if got := w.Duration(); got != 5*time.Hour+50*time.Minute {
			t.Errorf("Duration = %v", got)
		}
	})

	t.Run("sunset before sunrise", func(t *testing.T) {
		sunrise := time.Date(2024, 1, 11, 5, 40, 0, 0, time.UTC)
		sunset := time.Date(2024, 1, 10, 18, 0, 0, 0, time.UTC)
		w := NewNightWindow(date, sunrise, sunset, 0, "UTC")

		if !w.SunriseUTC.Equal(sunrise) {
			t.Errorf("SunriseUTC = %v, want unchanged", w.SunriseUTC)
		}
		if !w.SunriseUTC.After(w.SunsetUTC) {
			t.Error("night must end after it starts")
		}
	})

	t.Run("local times carry offset", func(t *testing.T) {
		sunrise := time.Date(2024, 1, 9, 22, 40, 0, 0, time.UTC)
		sunset := time.Date(2024, 1, 10, 8, 30, 0, 0, time.UTC)
		w := NewNightWindow(date, sunrise, sunset, kst, "Asia/Seoul")
		if got := w.SunsetLocal.Format("15:04"); got != "17:30" {
			t.Errorf("SunsetLocal = %s, want 17:30", got)
		}
		if w.TimezoneID != "Asia/Seoul" || w.UTCOffsetSec != kst {
			t.Errorf("zone = %q %d", w.TimezoneID, w.UTCOffsetSec)
		}
	})
}

func TestNightWindowContains(t *testing.T) {
	sunset := time.Date(2024, 1, 10, 8, 30, 0, 0, time.UTC)
	sunrise := time.Date(2024, 1, 9, 22, 40, 0, 0, time.UTC)
	w := NewNightWindow(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), sunrise, sunset, kst, "")

	tests := []struct {
		name     string
		t        time.Time
		night    bool
		daylight bool
	}{
		{"local noon", time.Date(2024, 1, 10, 3, 0, 0, 0, time.UTC), false, true},
		{"sunset instant", sunset, true, false},
		{"local midnight", time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC), true, false},
		{"sunrise instant", w.SunriseUTC, true, false},
		{"next morning", w.SunriseUTC.Add(2 * time.Hour), false, true},
		{"before the day", sunrise.Add(-time.Hour), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Contains(tt.t); got != tt.night {
				t.Errorf("Contains = %v, want %v", got, tt.night)
			}
			if got := w.InDaylight(tt.t); got != tt.daylight {
				t.Errorf("InDaylight = %v, want %v", got, tt.daylight)
			}
		})
	}
}

func TestComputeNightWindowSeoul(t *testing.T) {
	w, err := ComputeNightWindow(seoul, time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC), kst, "Asia/Seoul")
	if err != nil {
		t.Fatalf("ComputeNightWindow() error = %v", err)
	}

	// Solstice: sunset ~19:57 KST, sunrise ~05:11 KST.
	if h := w.SunsetLocal.Hour(); h != 19 {
		t.Errorf("sunset local = %v", w.SunsetLocal)
	}
	if h := w.SunriseLocal.Hour(); h != 5 {
		t.Errorf("sunrise local = %v", w.SunriseLocal)
	}
	if w.SunsetLocal.Day() != 21 || w.SunriseLocal.Day() != 22 {
		t.Errorf("night should run from the 21st into the 22nd: %v .. %v", w.SunsetLocal, w.SunriseLocal)
	}
	if d := w.Duration(); d < 8*time.Hour || d > 10*time.Hour {
		t.Errorf("Duration = %v", d)
	}
	if w.HasTwilight {
		if !w.DuskUTC.After(w.SunsetUTC) || !w.DawnUTC.Before(w.SunriseUTC) {
			t.Errorf("twilight %v .. %v outside night %v .. %v", w.DuskUTC, w.DawnUTC, w.SunsetUTC, w.SunriseUTC)
		}
	}
}

func TestComputeNightWindowSunsetAfterMidnight(t *testing.T) {
	// A +15h offset pushes Seoul's sunset past local midnight.
	w, err := ComputeNightWindow(seoul, time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC), 15*3600, "")
	if err != nil {
		t.Fatalf("ComputeNightWindow() error = %v", err)
	}
	if w.SunsetLocal.Day() != 22 {
		t.Errorf("sunset local = %v, want on the 22nd", w.SunsetLocal)
	}
	if !w.SunriseUTC.After(w.SunsetUTC) {
		t.Errorf("sunrise %v not after sunset %v", w.SunriseUTC, w.SunsetUTC)
	}
}

func TestComputeNightWindowPolar(t *testing.T) {
	tromso := Observer{LatDeg: 69.65, LonDeg: 18.96}

	for _, date := range []time.Time{
		time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC),  // midnight sun
		time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC), // polar night
	} {
		_, err := ComputeNightWindow(tromso, date, 3600, "Europe/Oslo")
		var ne *NoEventError
		if !errors.As(err, &ne) {
			t.Errorf("%s: expected *NoEventError, got %v", date.Format("2006-01-02"), err)
		}
	}
}
