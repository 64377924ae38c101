// Package refresh periodically fetches ephemeris for the configured bodies
// into the repository and recomputes meteor shower reports.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/litescript/ls-skywatch/internal/approach"
	"github.com/litescript/ls-skywatch/internal/ephem"
	"github.com/litescript/ls-skywatch/internal/logging"
	"github.com/litescript/ls-skywatch/internal/meteor"
	"github.com/litescript/ls-skywatch/internal/store"
)

// DefaultSchedule runs once a year, at midnight on January 1st.
const DefaultSchedule = "0 0 1 1 *"

// Options configures a Scheduler.
type Options struct {
	Schedule   string   // standard 5-field cron expression
	Bodies     []string // catalog names
	YearsAhead int      // years after the current one to fetch

	// OnRun, if set, is called after every run.
	OnRun func(Summary, error)

	// Now defaults to time.Now.
	Now func() time.Time
}

// Summary describes one run.
type Summary struct {
	Started  time.Time
	Duration time.Duration
	Bodies   int // bodies refreshed without error
	Samples  int
	Showers  int
	Failed   []string
}

// Scheduler runs refresh jobs on a cron schedule.
type Scheduler struct {
	provider ephem.Provider
	repo     store.Repository
	opts     Options
	bodies   []ephem.Body
	log      *logging.Logger
	cron     *cron.Cron

	mu   sync.Mutex
	last Summary
}

// New validates opts and resolves the body names.
func New(provider ephem.Provider, repo store.Repository, opts Options, log *logging.Logger) (*Scheduler, error) {
	if opts.Schedule == "" {
		opts.Schedule = DefaultSchedule
	}
	if _, err := cron.ParseStandard(opts.Schedule); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", opts.Schedule, err)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = logging.Discard()
	}

	bodies := make([]ephem.Body, 0, len(opts.Bodies))
	for _, name := range opts.Bodies {
		b, ok := ephem.LookupBody(name)
		if !ok {
			return nil, fmt.Errorf("unknown body %q", name)
		}
		bodies = append(bodies, b)
	}

	return &Scheduler{
		provider: provider,
		repo:     repo,
		opts:     opts,
		bodies:   bodies,
		log:      log.With("refresh"),
		// Prevent overlapping runs
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}, nil
}

// Start schedules RunOnce and blocks until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.opts.Schedule, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.log.Error("scheduled refresh: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.log.Info("scheduler started with schedule %q for %d bodies", s.opts.Schedule, len(s.bodies))
	s.cron.Start()

	<-ctx.Done()
	s.log.Info("scheduler stopped")
	<-s.cron.Stop().Done()
	return ctx.Err()
}

// RunOnce refreshes every body for the current year and YearsAhead more.
// A failing body does not stop the others; their errors are joined.
func (s *Scheduler) RunOnce(ctx context.Context) (Summary, error) {
	sum := Summary{Started: s.opts.Now()}
	s.log.Info("refresh started for %d bodies", len(s.bodies))

	var errs []error
	for _, b := range s.bodies {
		n, showers, err := s.refreshBody(ctx, b, sum.Started.UTC().Year())
		sum.Samples += n
		sum.Showers += showers
		if err != nil {
			sum.Failed = append(sum.Failed, b.Name)
			errs = append(errs, fmt.Errorf("%s: %w", b.Name, err))
			s.log.Error("refresh %s: %v", b.Name, err)
			continue
		}
		sum.Bodies++
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
	}
	sum.Duration = time.Since(sum.Started)

	err := errors.Join(errs...)
	s.log.Info("refresh finished: %d bodies, %d samples, %d showers, %d failed in %v",
		sum.Bodies, sum.Samples, sum.Showers, len(sum.Failed), sum.Duration.Round(time.Millisecond))

	s.mu.Lock()
	s.last = sum
	s.mu.Unlock()
	if s.opts.OnRun != nil {
		s.opts.OnRun(sum, err)
	}
	return sum, err
}

// LastRun returns the summary of the most recent run.
func (s *Scheduler) LastRun() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Scheduler) refreshBody(ctx context.Context, b ephem.Body, year int) (samples, showers int, err error) {
	var all []ephem.Sample
	var halves [][]ephem.Sample
	for y := year; y <= year+s.opts.YearsAhead; y++ {
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		days := int(start.AddDate(1, 0, 0).Sub(start) / (24 * time.Hour))

		fetched, err := s.provider.Fetch(ctx, b, start, days)
		if err != nil {
			return samples, showers, err
		}
		if err := s.repo.SaveSamples(ctx, b.Name, fetched); err != nil {
			return samples, showers, fmt.Errorf("save samples: %w", err)
		}
		samples += len(fetched)
		all = append(all, fetched...)

		mid := start.AddDate(0, 0, days/2)
		halves = append(halves,
			ephem.Window(fetched, start, mid),
			ephem.Window(fetched, mid.AddDate(0, 0, 1), start.AddDate(0, 0, days)))
	}

	if b.Kind != ephem.KindComet || len(meteor.ShowersFor(b.Name)) == 0 {
		return samples, 0, nil
	}
	var reports []meteor.Report
	if meteor.SplitYearComets[b.Name] {
		results := make([]approach.Result, 0, len(halves))
		for _, h := range halves {
			a, err := approach.Classify(h)
			if err != nil {
				return samples, 0, err
			}
			results = append(results, a)
		}
		reports = meteor.EvaluateNearest(b.Name, results)
	} else {
		a, err := approach.Classify(all)
		if err != nil {
			return samples, 0, err
		}
		reports = meteor.EvaluateAll(b.Name, a)
	}
	if err := s.repo.SaveShowers(ctx, reports); err != nil {
		return samples, 0, fmt.Errorf("save showers: %w", err)
	}
	return samples, len(reports), nil
}
