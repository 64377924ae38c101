// Package store persists ephemeris samples and meteor shower reports.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/litescript/ls-skywatch/internal/ephem"
	"github.com/litescript/ls-skywatch/internal/meteor"
)

// Repository is the persistence contract used by the engine and the refresh
// jobs. Samples are keyed by (body, timestamp); saving a sample with an
// existing timestamp replaces it.
type Repository interface {
	// FindSamples returns the samples of body with start <= t <= end,
	// ascending by time. No samples is not an error.
	FindSamples(ctx context.Context, body string, start, end time.Time) ([]ephem.Sample, error)
	SaveSamples(ctx context.Context, body string, samples []ephem.Sample) error

	// FindShowers returns the stored reports of a shower whose peak starts in year.
	FindShowers(ctx context.Context, shower string, year int) ([]meteor.Report, error)
	SaveShowers(ctx context.Context, reports []meteor.Report) error
}

func bodyKey(body string) string {
	return strings.ToLower(strings.TrimSpace(body))
}

// showerKey identifies a report by shower and peak start.
func showerKey(r meteor.Report) string {
	return strings.ToLower(r.Name) + "|" + r.PeakStartDate
}

func showerYear(r meteor.Report) int {
	if len(r.PeakStartDate) < 4 {
		return 0
	}
	t, err := time.Parse("2006-01-02", r.PeakStartDate)
	if err != nil {
		return 0
	}
	return t.Year()
}
