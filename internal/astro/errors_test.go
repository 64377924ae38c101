package astro

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsRetryable(t *testing.T) {
	upstream := &UpstreamDataError{Source: "horizons", Err: errors.New("timeout")}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"upstream", upstream, true},
		{"wrapped upstream", fmt.Errorf("fetch: %w", upstream), true},
		{"format", &FormatError{Field: "ra", Value: "x", Reason: "bad"}, false},
		{"no event", &NoEventError{Event: "sunrise", Date: time.Now()}, false},
		{"insufficient", &InsufficientDataError{Op: "classify", Have: 1, Need: 2}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUpstreamDataErrorUnwrap(t *testing.T) {
	base := errors.New("connection refused")
	err := &UpstreamDataError{Source: "timezone", Err: base}
	if !errors.Is(err, base) {
		t.Error("errors.Is should see the wrapped error")
	}
}
