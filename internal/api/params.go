package api

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/litescript/ls-skywatch/internal/astro"
)

const dateLayout = "2006-01-02"

// query wraps request parameters, remembering the first parse failure so
// handlers can read every field and check once.
type query struct {
	values url.Values
	err    error
}

func newQuery(v url.Values) *query {
	return &query{values: v}
}

func (q *query) fail(field, value, reason string) {
	if q.err == nil {
		q.err = &astro.FormatError{Field: field, Value: value, Reason: reason}
	}
}

// required returns a non-empty parameter.
func (q *query) required(name string) string {
	v := strings.TrimSpace(q.values.Get(name))
	if v == "" {
		q.fail(name, "", "parameter is required")
	}
	return v
}

// date parses a YYYY-MM-DD parameter as a calendar date at UTC midnight.
func (q *query) date(name string, def time.Time) time.Time {
	raw := q.values.Get(name)
	if raw == "" {
		return def
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		q.fail(name, raw, "want YYYY-MM-DD")
		return def
	}
	return t
}

func (q *query) integer(name string, def int) int {
	raw := q.values.Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		q.fail(name, raw, "not an integer")
		return def
	}
	return n
}

func (q *query) number(name string, def float64) float64 {
	raw := q.values.Get(name)
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		q.fail(name, raw, "not a number")
		return def
	}
	return f
}

func (q *query) flag(name string) bool {
	raw := q.values.Get(name)
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		q.fail(name, raw, "not a boolean")
	}
	return b
}

// observer reads lat, lon and elevation, falling back to def. Supplying a
// latitude without a longitude (or the reverse) is an error.
func (q *query) observer(def astro.Observer) astro.Observer {
	lat, lon := q.values.Get("lat"), q.values.Get("lon")
	if lat == "" && lon == "" {
		def.ElevationM = q.number("elevation", def.ElevationM)
		return def
	}
	if lat == "" || lon == "" {
		q.fail("observer", lat+","+lon, "lat and lon must be given together")
		return def
	}

	obs := astro.Observer{
		LatDeg:     q.number("lat", 0),
		LonDeg:     q.number("lon", 0),
		ElevationM: q.number("elevation", 0),
		Name:       q.values.Get("name"),
	}
	if obs.LatDeg < -90 || obs.LatDeg > 90 {
		q.fail("lat", lat, "out of range [-90, 90]")
	}
	if obs.LonDeg < -180 || obs.LonDeg > 180 {
		q.fail("lon", lon, "out of range [-180, 180]")
	}
	return obs
}

func today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
