// Package tz resolves the UTC offset of an observer location.
package tz

import (
	"context"
	"fmt"
	"time"
)

// Offset is the civil time offset in effect at a location and instant.
type Offset struct {
	RawOffsetSec int    `json:"raw_offset_s"`
	DSTOffsetSec int    `json:"dst_offset_s"`
	TimezoneID   string `json:"timezone_id"`
}

// TotalSec is the offset applied to UTC to get local wall time.
func (o Offset) TotalSec() int {
	return o.RawOffsetSec + o.DSTOffsetSec
}

// Provider looks up the offset for a latitude/longitude at an instant.
type Provider interface {
	Lookup(ctx context.Context, lat, lon float64, at time.Time) (Offset, error)
}

// Fixed is a Provider that always answers with the same offset. It backs
// the --utc-offset flag when no lookup service is configured.
type Fixed struct {
	Offset Offset
}

// FixedOffset returns a Fixed provider for offsetSec with a "UTC+HH:MM" id.
func FixedOffset(offsetSec int) Fixed {
	sign := '+'
	abs := offsetSec
	if abs < 0 {
		sign = '-'
		abs = -abs
	}
	id := fmt.Sprintf("UTC%c%02d:%02d", sign, abs/3600, (abs%3600)/60)
	return Fixed{Offset: Offset{RawOffsetSec: offsetSec, TimezoneID: id}}
}

// Lookup returns the fixed offset.
func (f Fixed) Lookup(context.Context, float64, float64, time.Time) (Offset, error) {
	return f.Offset, nil
}
