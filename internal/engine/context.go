// Package engine answers visibility, approach, meteor shower and opposition
// queries by fetching what a query needs up front and then running the pure
// computations of the astro, peak, approach and verdict packages.
package engine

import (
	"errors"
	"time"

	"github.com/litescript/ls-skywatch/internal/ephem"
	"github.com/litescript/ls-skywatch/internal/logging"
	"github.com/litescript/ls-skywatch/internal/peak"
	"github.com/litescript/ls-skywatch/internal/store"
	"github.com/litescript/ls-skywatch/internal/tz"
	"github.com/litescript/ls-skywatch/internal/verdict"
)

// AstronomicalContext bundles the collaborators shared by every query. It is
// built once at startup and read-only afterwards.
type AstronomicalContext struct {
	Ephemeris  ephem.Provider
	Timezones  tz.Provider
	Repository store.Repository
	Conditions *verdict.Table
	Pool       *peak.Pool
	Log        *logging.Logger

	// Now is the clock used for "current year" defaults.
	Now func() time.Time
}

// Engine runs queries against an AstronomicalContext.
type Engine struct {
	ctx AstronomicalContext
	log *logging.Logger
}

// New validates ac and fills the optional parts: an in-memory repository, the
// default condition table, a single-worker pool, a discarding logger and the
// wall clock.
func New(ac AstronomicalContext) (*Engine, error) {
	if ac.Ephemeris == nil {
		return nil, errors.New("engine: ephemeris provider is required")
	}
	if ac.Timezones == nil {
		return nil, errors.New("engine: timezone provider is required")
	}
	if ac.Repository == nil {
		ac.Repository = store.NewMemory()
	}
	if ac.Conditions == nil {
		ac.Conditions = verdict.DefaultTable()
	}
	if ac.Log == nil {
		ac.Log = logging.Discard()
	}
	if ac.Pool == nil {
		ac.Pool = peak.NewPool(1, ac.Log)
	}
	if ac.Now == nil {
		ac.Now = time.Now
	}
	return &Engine{ctx: ac, log: ac.Log.With("engine")}, nil
}

// Context returns the engine's collaborators.
func (e *Engine) Context() AstronomicalContext {
	return e.ctx
}
