package ephem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/litescript/ls-skywatch/internal/astro"
	"github.com/litescript/ls-skywatch/internal/logging"
)

const (
	// HorizonsAPIURL is the JPL Horizons JSON API endpoint.
	HorizonsAPIURL = "https://ssd.jpl.nasa.gov/api/horizons.api"

	// StepSize is the table step. Provider.Fetch returns daily samples.
	StepSize = "1 d"

	// geocentre is the Horizons centre code. Parallax for a surface site is
	// applied by the caller, so one table per body serves every site.
	geocentre = "500@399"

	// SampleCacheTTL is how long fetched tables are reused.
	SampleCacheTTL = 10 * time.Minute

	// RequestTimeout is the HTTP request timeout.
	RequestTimeout = 30 * time.Second

	// observerQuantities requests astrometric RA/Dec (1), range and range
	// rate (20) and sun-observer-target elongation (23).
	observerQuantities = "1,20,23"

	// minObserverFields is the field count of a complete row without flags:
	// date, time, RA h m s, Dec d m s, delta, deldot, S-O-T.
	minObserverFields = 11

	horizonsSource = "horizons"
)

// HorizonsProvider queries JPL Horizons for observer ephemeris tables.
type HorizonsProvider struct {
	client  *http.Client
	url     string
	timeout time.Duration
	log     *logging.Logger
	ttl     time.Duration

	mu    sync.RWMutex
	cache map[cacheKey]*cachedSamples
}

type cacheKey struct {
	command string
	start   time.Time
	days    int
}

type cachedSamples struct {
	samples   []Sample
	fetchedAt time.Time
}

// HorizonsOption configures a HorizonsProvider.
type HorizonsOption func(*HorizonsProvider)

// WithURL sets a custom API endpoint.
func WithURL(u string) HorizonsOption {
	return func(p *HorizonsProvider) {
		p.url = u
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) HorizonsOption {
	return func(p *HorizonsProvider) {
		p.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) HorizonsOption {
	return func(p *HorizonsProvider) {
		p.client = client
	}
}

// WithCacheTTL sets how long tables are cached. Zero disables the cache.
func WithCacheTTL(d time.Duration) HorizonsOption {
	return func(p *HorizonsProvider) {
		p.ttl = d
	}
}

// WithLogger sets the logger used for skipped-row warnings.
func WithLogger(l *logging.Logger) HorizonsOption {
	return func(p *HorizonsProvider) {
		p.log = l
	}
}

// NewHorizonsProvider creates a new Horizons API client.
func NewHorizonsProvider(opts ...HorizonsOption) *HorizonsProvider {
	p := &HorizonsProvider{
		url:     HorizonsAPIURL,
		timeout: RequestTimeout,
		ttl:     SampleCacheTTL,
		log:     logging.Discard(),
		cache:   make(map[cacheKey]*cachedSamples),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: p.timeout}
	}
	return p
}

// Name implements Provider.
func (p *HorizonsProvider) Name() string {
	return "Horizons"
}

// Fetch implements Provider. Tables are cached per (body, start, days).
func (p *HorizonsProvider) Fetch(ctx context.Context, body Body, start time.Time, days int) ([]Sample, error) {
	if days < 1 {
		days = 1
	}
	key := cacheKey{command: body.Command, start: start.UTC(), days: days}

	p.mu.RLock()
	cached, ok := p.cache[key]
	p.mu.RUnlock()
	if ok && time.Since(cached.fetchedAt) < p.ttl {
		return cached.samples, nil
	}

	samples, err := p.query(ctx, body, start, days)
	if err != nil {
		return nil, err
	}

	if p.ttl > 0 {
		p.mu.Lock()
		p.cache[key] = &cachedSamples{samples: samples, fetchedAt: time.Now()}
		p.mu.Unlock()
	}
	return samples, nil
}

// InvalidateCache drops every cached table for body.
func (p *HorizonsProvider) InvalidateCache(body Body) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k := range p.cache {
		if k.command == body.Command {
			delete(p.cache, k)
		}
	}
}

// query makes a request to the Horizons API.
func (p *HorizonsProvider) query(ctx context.Context, body Body, start time.Time, days int) ([]Sample, error) {
	// Values must be quoted with single quotes
	params := url.Values{}
	params.Set("format", "json")
	params.Set("COMMAND", fmt.Sprintf("'%s'", body.Command))
	params.Set("OBJ_DATA", "NO")
	params.Set("MAKE_EPHEM", "YES")
	params.Set("EPHEM_TYPE", "OBSERVER")
	params.Set("CENTER", fmt.Sprintf("'%s'", geocentre))
	params.Set("START_TIME", fmt.Sprintf("'%s'", formatHorizonsTime(start)))
	params.Set("STOP_TIME", fmt.Sprintf("'%s'", formatHorizonsTime(start.AddDate(0, 0, days))))
	params.Set("STEP_SIZE", fmt.Sprintf("'%s'", StepSize))
	params.Set("QUANTITIES", fmt.Sprintf("'%s'", observerQuantities))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &astro.UpstreamDataError{Source: horizonsSource, Err: err}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &astro.UpstreamDataError{Source: horizonsSource, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &astro.UpstreamDataError{Source: horizonsSource, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &astro.UpstreamDataError{
			Source: horizonsSource,
			Err:    fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(raw), 200)),
		}
	}

	return p.parseResponse(body, raw)
}

// horizonsResponse represents the JSON API response.
type horizonsResponse struct {
	Signature struct {
		Version string `json:"version"`
		Source  string `json:"source"`
	} `json:"signature"`
	Result string `json:"result"`
	Error  string `json:"error"`
}

func (p *HorizonsProvider) parseResponse(body Body, raw []byte) ([]Sample, error) {
	var resp horizonsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &astro.UpstreamDataError{Source: horizonsSource, Err: fmt.Errorf("failed to parse JSON: %w", err)}
	}
	if resp.Error != "" {
		return nil, &astro.UpstreamDataError{Source: horizonsSource, Err: errors.New(resp.Error)}
	}

	samples, skipped, err := parseObserverTable(resp.Result)
	if err != nil {
		return nil, &astro.UpstreamDataError{Source: horizonsSource, Err: err}
	}
	for _, s := range skipped {
		p.log.Warn("skipped %s row %q: %v", body.Name, s.line, s.err)
	}
	if len(samples) == 0 {
		return nil, &astro.UpstreamDataError{
			Source: horizonsSource,
			Err:    fmt.Errorf("no usable rows for %s (%d skipped)", body.Name, len(skipped)),
		}
	}

	SortSamples(samples)
	return samples, nil
}

type skippedRow struct {
	line string
	err  error
}

// parseObserverTable extracts samples from the text between the $$SOE and
// $$EOE markers. Unparseable rows are returned separately.
func parseObserverTable(result string) ([]Sample, []skippedRow, error) {
	soeIdx := strings.Index(result, "$$SOE")
	eoeIdx := strings.Index(result, "$$EOE")
	if soeIdx == -1 || eoeIdx == -1 || soeIdx >= eoeIdx {
		return nil, nil, fmt.Errorf("could not find ephemeris data markers")
	}

	var samples []Sample
	var skipped []skippedRow
	for _, line := range strings.Split(result[soeIdx+5:eoeIdx], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		s, err := parseObserverRow(line)
		if err != nil {
			skipped = append(skipped, skippedRow{line: line, err: err})
			continue
		}
		samples = append(samples, s)
	}
	return samples, skipped, nil
}

// parseObserverRow parses a single QUANTITIES='1,20,23' row:
//
//	2024-Aug-01 00:00     10 30 00.00 +20 15 00.0  1.234567  -12.34  95.12 /L
//
// Solar and lunar presence flags may sit between the time and the RA.
func parseObserverRow(line string) (Sample, error) {
	fields := strings.Fields(line)
	if len(fields) < minObserverFields {
		return Sample{}, fmt.Errorf("insufficient fields: %d", len(fields))
	}

	t, err := parseHorizonsDateTime(fields[0] + " " + fields[1])
	if err != nil {
		return Sample{}, err
	}

	i := 2
	for i < len(fields) && !isNumeric(fields[i]) {
		i++
	}
	if len(fields)-i < 9 {
		return Sample{}, fmt.Errorf("insufficient fields after flags: %d", len(fields)-i)
	}

	var vals [3]float64
	for j, f := range fields[i+6 : i+9] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(v) {
			return Sample{}, fmt.Errorf("non-numeric value %q", f)
		}
		vals[j] = v
	}

	return NewSample(t,
		strings.Join(fields[i:i+3], " "),
		strings.Join(fields[i+3:i+6], " "),
		vals[0], vals[1], vals[2])
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// parseHorizonsDateTime parses Horizons date format like "2025-Dec-05 00:00".
func parseHorizonsDateTime(s string) (time.Time, error) {
	for _, layout := range []string{
		"2006-Jan-02 15:04",
		"2006-Jan-02 15:04:05",
		"2006-Jan-02 15:04:05.000",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// formatHorizonsTime formats a time for Horizons API.
func formatHorizonsTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
