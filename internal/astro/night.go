package astro

import (
	"time"

	"github.com/sj14/astral/pkg/astral"
)

const (
	// crossingScanStep is the coarse step used to bracket horizon crossings.
	crossingScanStep = 10 * time.Minute

	// crossingPrecision is where bisection stops.
	crossingPrecision = time.Second
)

// NightWindow is the dark interval that follows a local calendar date: from
// that day's sunset to the next sunrise.
type NightWindow struct {
	Date time.Time // local calendar date (wall clock midnight, UTC location)

	SunsetUTC     time.Time // start of the night
	SunriseUTC    time.Time // end of the night, always after SunsetUTC
	DaySunriseUTC time.Time // sunrise that opened Date's daylight

	SunsetLocal  time.Time
	SunriseLocal time.Time

	// Astronomical twilight (Sun 18° below the horizon). Unset when the Sun
	// never gets that low, as on summer nights at high latitude.
	DuskUTC     time.Time
	DawnUTC     time.Time
	HasTwilight bool

	UTCOffsetSec int
	TimezoneID   string
}

// NewNightWindow classifies a sunrise/sunset pair computed for date. If sunset
// is not before sunrise, the sunrise belongs to the morning that opened the
// day and the night ends 24 hours later, so sunrise is advanced by one day.
func NewNightWindow(date, sunriseUTC, sunsetUTC time.Time, offsetSec int, tzID string) NightWindow {
	sunriseUTC = sunriseUTC.UTC()
	sunsetUTC = sunsetUTC.UTC()

	daySunrise := sunriseUTC
	if !sunsetUTC.Before(sunriseUTC) {
		sunriseUTC = sunriseUTC.Add(24 * time.Hour)
	} else {
		daySunrise = sunriseUTC.Add(-24 * time.Hour)
	}

	return NightWindow{
		Date:          time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		SunsetUTC:     sunsetUTC,
		SunriseUTC:    sunriseUTC,
		DaySunriseUTC: daySunrise,
		SunsetLocal:   ToLocal(sunsetUTC, offsetSec),
		SunriseLocal:  ToLocal(sunriseUTC, offsetSec),
		UTCOffsetSec:  offsetSec,
		TimezoneID:    tzID,
	}
}

// Duration returns the length of the night.
func (w NightWindow) Duration() time.Duration {
	return w.SunriseUTC.Sub(w.SunsetUTC)
}

// Contains reports whether t falls inside [sunset, sunrise].
func (w NightWindow) Contains(t time.Time) bool {
	return !t.Before(w.SunsetUTC) && !t.After(w.SunriseUTC)
}

// InDaylight reports whether t falls strictly between a sunrise and the
// following sunset covered by this window: the daylight of Date, or the
// morning after the night.
func (w NightWindow) InDaylight(t time.Time) bool {
	if t.After(w.DaySunriseUTC) && t.Before(w.SunsetUTC) {
		return true
	}
	return t.After(w.SunriseUTC) && t.Before(w.SunsetUTC.Add(24*time.Hour))
}

// ComputeNightWindow finds the sunrise and sunset for the local calendar date
// of date by searching the Sun's horizon crossings from one day before to one
// day after, so a sunset that slips past local midnight is still found.
//
// Returns *NoEventError when the Sun does not rise, or does not set after
// rising, inside that bracket.
func ComputeNightWindow(obs Observer, date time.Time, offsetSec int, tzID string) (NightWindow, error) {
	dayStart := LocalMidnightUTC(date, offsetSec)
	dayEnd := dayStart.Add(24 * time.Hour)

	crossings := findSunCrossings(obs, dayStart.Add(-24*time.Hour), dayStart.Add(48*time.Hour))

	var sunrise, sunset time.Time
	for _, c := range crossings {
		if c.rising && !c.t.Before(dayStart) && c.t.Before(dayEnd) {
			sunrise = c.t
			break
		}
	}
	if sunrise.IsZero() {
		return NightWindow{}, &NoEventError{Event: "sunrise", Date: date}
	}
	for _, c := range crossings {
		if !c.rising && c.t.After(sunrise) {
			sunset = c.t
			break
		}
	}
	if sunset.IsZero() {
		return NightWindow{}, &NoEventError{Event: "sunset", Date: date}
	}

	w := NewNightWindow(date, sunrise, sunset, offsetSec, tzID)
	w.DuskUTC, w.DawnUTC, w.HasTwilight = astronomicalTwilight(obs, w.SunsetUTC, w.SunriseUTC)
	return w, nil
}

// astronomicalTwilight returns the end of evening twilight after sunset and
// the start of morning twilight before sunrise.
func astronomicalTwilight(obs Observer, sunset, sunrise time.Time) (dusk, dawn time.Time, ok bool) {
	o := astral.Observer{Latitude: obs.LatDeg, Longitude: obs.LonDeg}

	dusk, err := astral.Dusk(o, sunset, astral.DepressionAstronomical)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	dawn, err = astral.Dawn(o, sunrise, astral.DepressionAstronomical)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	dusk, dawn = dusk.UTC(), dawn.UTC()
	if !dusk.Before(dawn) {
		return time.Time{}, time.Time{}, false
	}
	return dusk, dawn, true
}

type crossing struct {
	t      time.Time
	rising bool
}

// findSunCrossings brackets every crossing of SunHorizonAltitude in [start, end]
// on a coarse grid and refines each by bisection.
func findSunCrossings(obs Observer, start, end time.Time) []crossing {
	f := func(t time.Time) float64 {
		return SunAltitude(obs, t) - SunHorizonAltitude
	}

	var out []crossing
	prevT := start
	prev := f(prevT)
	for t := start.Add(crossingScanStep); !t.After(end); t = t.Add(crossingScanStep) {
		cur := f(t)
		if (prev <= 0 && cur > 0) || (prev > 0 && cur <= 0) {
			out = append(out, crossing{
				t:      bisectCrossing(f, prevT, t, prev),
				rising: cur > prev,
			})
		}
		prevT, prev = t, cur
	}
	return out
}

// bisectCrossing narrows [lo, hi] around the sign change of f. flo is f(lo).
func bisectCrossing(f func(time.Time) float64, lo, hi time.Time, flo float64) time.Time {
	for hi.Sub(lo) > crossingPrecision {
		mid := lo.Add(hi.Sub(lo) / 2)
		fm := f(mid)
		if (flo <= 0) == (fm <= 0) {
			lo, flo = mid, fm
		} else {
			hi = mid
		}
	}
	return hi.Round(time.Second)
}
