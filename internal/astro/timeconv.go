package astro

import (
	"fmt"
	"time"
)

// ToLocal shifts a UTC instant by offsetSec and rounds the result to the nearest
// whole second, half up (a sub-second part of 500000 microseconds or more
// rounds up). The returned time carries a fixed zone with that offset, so its
// wall clock reads as local civil time.
func ToLocal(utc time.Time, offsetSec int) time.Time {
	zone := time.FixedZone(zoneName(offsetSec), offsetSec)
	local := utc.UTC().Add(time.Duration(offsetSec) * time.Second)

	whole := local.Truncate(time.Second)
	if local.Nanosecond()/1000 >= 500000 {
		whole = whole.Add(time.Second)
	}

	// Rebuild from the wall clock so the zone does not shift it a second time.
	return time.Date(whole.Year(), whole.Month(), whole.Day(),
		whole.Hour(), whole.Minute(), whole.Second(), 0, zone)
}

// ToUTC is the inverse of ToLocal: it reads the wall clock of local and
// subtracts offsetSec. The location attached to local is ignored.
func ToUTC(local time.Time, offsetSec int) time.Time {
	wall := time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), time.UTC)
	return wall.Add(-time.Duration(offsetSec) * time.Second)
}

// LocalMidnightUTC returns the UTC instant of 00:00 local time on the calendar
// date of date, for a fixed offset.
func LocalMidnightUTC(date time.Time, offsetSec int) time.Time {
	wall := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return wall.Add(-time.Duration(offsetSec) * time.Second)
}

// zoneName renders an offset as "UTC+09:00".
func zoneName(offsetSec int) string {
	sign := '+'
	if offsetSec < 0 {
		sign = '-'
		offsetSec = -offsetSec
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, offsetSec/3600, (offsetSec%3600)/60)
}
