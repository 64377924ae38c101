package astro

import (
	"errors"
	"fmt"
	"time"
)

// FormatError reports malformed coordinate or date text. It is never retried.
type FormatError struct {
	Field  string // what was being parsed, e.g. "ra", "dec", "date"
	Value  string // the offending input
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// NoEventError reports that a horizon crossing did not occur inside the search
// bracket, typically polar day or polar night.
type NoEventError struct {
	Event string    // "sunrise" or "sunset"
	Date  time.Time // requested calendar date
}

func (e *NoEventError) Error() string {
	return fmt.Sprintf("no %s on %s within search bracket", e.Event, e.Date.Format("2006-01-02"))
}

// UpstreamDataError wraps a failure of an external provider (ephemeris,
// timezone). Callers may retry these with backoff.
type UpstreamDataError struct {
	Source string
	Err    error
}

func (e *UpstreamDataError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: no usable data", e.Source)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *UpstreamDataError) Unwrap() error {
	return e.Err
}

// InsufficientDataError reports that an operation received fewer usable
// inputs than it needs.
type InsufficientDataError struct {
	Op   string
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: have %d, need at least %d", e.Op, e.Have, e.Need)
}

// IsRetryable reports whether err is worth retrying. Only upstream failures are.
func IsRetryable(err error) bool {
	var ue *UpstreamDataError
	return errors.As(err, &ue)
}
