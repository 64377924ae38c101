package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/litescript/ls-skywatch/internal/ephem"
	"github.com/litescript/ls-skywatch/internal/meteor"
)

// Memory is an in-process Repository.
type Memory struct {
	mu      sync.RWMutex
	samples map[string]map[int64]ephem.Sample // body -> unix seconds -> sample
	showers map[string]meteor.Report
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		samples: make(map[string]map[int64]ephem.Sample),
		showers: make(map[string]meteor.Report),
	}
}

// FindSamples implements Repository.
func (m *Memory) FindSamples(_ context.Context, body string, start, end time.Time) ([]ephem.Sample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ephem.Sample
	for _, s := range m.samples[bodyKey(body)] {
		if !s.Time.Before(start) && !s.Time.After(end) {
			out = append(out, s)
		}
	}
	ephem.SortSamples(out)
	return out, nil
}

// SaveSamples implements Repository.
func (m *Memory) SaveSamples(_ context.Context, body string, samples []ephem.Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putSamples(bodyKey(body), samples)
	return nil
}

func (m *Memory) putSamples(key string, samples []ephem.Sample) {
	byTime, ok := m.samples[key]
	if !ok {
		byTime = make(map[int64]ephem.Sample, len(samples))
		m.samples[key] = byTime
	}
	for _, s := range samples {
		byTime[s.Time.Unix()] = s
	}
}

// FindShowers implements Repository.
func (m *Memory) FindShowers(_ context.Context, shower string, year int) ([]meteor.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []meteor.Report
	for _, r := range m.showers {
		if strings.EqualFold(r.Name, shower) && showerYear(r) == year {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeakStartDate < out[j].PeakStartDate })
	return out, nil
}

// SaveShowers implements Repository.
func (m *Memory) SaveShowers(_ context.Context, reports []meteor.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range reports {
		m.showers[showerKey(r)] = r
	}
	return nil
}

// Bodies returns the keys of every body with stored samples, sorted.
func (m *Memory) Bodies() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.samples))
	for k := range m.samples {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
