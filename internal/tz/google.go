package tz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/litescript/ls-skywatch/internal/astro"
)

const (
	// GoogleTimeZoneURL is the Google Maps Time Zone API endpoint.
	GoogleTimeZoneURL = "https://maps.googleapis.com/maps/api/timezone/json"

	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 10 * time.Second
)

// Client queries the Google Time Zone API.
type Client struct {
	client  *http.Client
	url     string
	apiKey  string
	timeout time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithURL sets a custom endpoint.
func WithURL(u string) ClientOption {
	return func(c *Client) {
		c.url = u
	}
}

// WithAPIKey sets the API key sent with every request.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a Google Time Zone API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		url:     GoogleTimeZoneURL,
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = &http.Client{
			Timeout: c.timeout,
		}
	}

	return c
}

type googleResponse struct {
	DSTOffset    int    `json:"dstOffset"`
	RawOffset    int    `json:"rawOffset"`
	Status       string `json:"status"`
	TimeZoneID   string `json:"timeZoneId"`
	ErrorMessage string `json:"errorMessage"`
}

// Lookup returns the offset in effect at (lat, lon) at the given instant.
// Every failure is an *astro.UpstreamDataError.
func (c *Client) Lookup(ctx context.Context, lat, lon float64, at time.Time) (Offset, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", lat, lon))
	params.Set("timestamp", strconv.FormatInt(at.Unix(), 10))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"?"+params.Encode(), nil)
	if err != nil {
		return Offset{}, upstream(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Offset{}, upstream(fmt.Errorf("fetch time zone: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Offset{}, upstream(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Offset{}, upstream(fmt.Errorf("read response body: %w", err))
	}

	var gr googleResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return Offset{}, upstream(fmt.Errorf("decode response: %w", err))
	}
	if gr.Status != "OK" {
		msg := gr.Status
		if gr.ErrorMessage != "" {
			msg += ": " + gr.ErrorMessage
		}
		return Offset{}, upstream(fmt.Errorf("api status %s", msg))
	}

	return Offset{
		RawOffsetSec: gr.RawOffset,
		DSTOffsetSec: gr.DSTOffset,
		TimezoneID:   gr.TimeZoneID,
	}, nil
}

func upstream(err error) error {
	return &astro.UpstreamDataError{Source: "timezone", Err: err}
}
