// Command ls-skywatch judges when celestial targets are worth observing from
// a ground site: multi-day visibility scans, comet approaches, meteor showers
// and planet close approaches, as a terminal UI, a text/JSON report or an
// HTTP service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-skywatch/internal/api"
	"github.com/litescript/ls-skywatch/internal/astro"
	"github.com/litescript/ls-skywatch/internal/config"
	"github.com/litescript/ls-skywatch/internal/engine"
	"github.com/litescript/ls-skywatch/internal/ephem"
	"github.com/litescript/ls-skywatch/internal/logging"
	"github.com/litescript/ls-skywatch/internal/meteor"
	"github.com/litescript/ls-skywatch/internal/metrics"
	"github.com/litescript/ls-skywatch/internal/peak"
	"github.com/litescript/ls-skywatch/internal/refresh"
	"github.com/litescript/ls-skywatch/internal/report"
	"github.com/litescript/ls-skywatch/internal/state"
	"github.com/litescript/ls-skywatch/internal/store"
	"github.com/litescript/ls-skywatch/internal/tz"
	"github.com/litescript/ls-skywatch/internal/ui"
)

// CLI flags
var (
	configPath  string
	logLevel    string
	targets     string
	dateFlag    string
	days        int
	lat, lon    float64
	elevation   float64
	utcOffset   int
	jsonMode    bool
	summaryMode bool
	reasonsMode bool
	eventsMode  bool
	watchEvery  time.Duration

	approachBody   string
	showersComet   string
	showerName     string
	oppositionBody string
	strictMode     bool
	year           int
	sunMode        bool
	moonMode       bool

	serveMode bool
	listen    string
)

const (
	defaultDays   = 7
	noCoordinate  = 999
	noOffset      = -1 << 31
	shutdownGrace = 10 * time.Second
)

func main() {
	flag.StringVar(&configPath, "config", "", "Config file (default $CONFIG_FILE or config.yaml)")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&targets, "target", "", "Comma-separated bodies or constellations to scan")
	flag.StringVar(&dateFlag, "date", "", "First date, YYYY-MM-DD (default today)")
	flag.IntVar(&days, "days", defaultDays, "Number of dates to scan")
	flag.Float64Var(&lat, "lat", noCoordinate, "Observer latitude (default from config)")
	flag.Float64Var(&lon, "lon", noCoordinate, "Observer longitude (default from config)")
	flag.Float64Var(&elevation, "elevation", 0, "Observer elevation in meters")
	flag.IntVar(&utcOffset, "utc-offset", noOffset, "Fixed UTC offset in seconds when no timezone API key is set")
	flag.BoolVar(&jsonMode, "json", false, "Print JSON instead of text")
	flag.BoolVar(&summaryMode, "summary", false, "Print a text report instead of the TUI")
	flag.BoolVar(&reasonsMode, "reasons", false, "Include the reasons behind each verdict")
	flag.BoolVar(&eventsMode, "events", false, "Show visibility changes between watch runs")
	flag.DurationVar(&watchEvery, "watch", 0, "Repeat the scan at interval (e.g., 1h)")
	flag.StringVar(&approachBody, "approach", "", "Classify a body's approach to Earth")
	flag.StringVar(&showersComet, "showers", "", "Evaluate a comet's meteor showers")
	flag.StringVar(&showerName, "shower", "", "Best view of a meteor shower's radiant")
	flag.StringVar(&oppositionBody, "oppositions", "", "List a planet's close approaches")
	flag.BoolVar(&strictMode, "strict", false, "Use the strict close-approach threshold")
	flag.IntVar(&year, "year", 0, "Year for -shower and -oppositions (default current)")
	flag.BoolVar(&sunMode, "sun", false, "Print sunset, sunrise and twilight")
	flag.BoolVar(&moonMode, "moon", false, "Print the moon phase")
	flag.BoolVar(&serveMode, "serve", false, "Run the HTTP API and refresh scheduler")
	flag.StringVar(&listen, "listen", "", "HTTP listen address (default from config)")
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	logger := logging.New(logging.ParseLevel(logLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	provider := metrics.InstrumentProvider(newHorizons(cfg, logger))
	repo, err := store.NewFile(cfg.Storage.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	eng, err := engine.New(engine.AstronomicalContext{
		Ephemeris:  provider,
		Timezones:  newTimezones(cfg, logger),
		Repository: repo,
		Conditions: cfg.ConditionTable(),
		Pool:       peak.NewPool(cfg.Workers, logger),
		Log:        logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	obs := observer(cfg)
	stateMgr := state.NewManager(state.DefaultConfig())

	if serveMode {
		if err := runServer(ctx, cfg, eng, provider, repo, stateMgr, obs, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	start, err := startDate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if query := singleQuery(); query != "" {
		if err := runQuery(ctx, os.Stdout, eng, query, obs, start); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	reqs := scanRequests(obs, start)
	if len(reqs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: nothing to do; pass -target, a query flag or -serve (see -h)")
		os.Exit(2)
	}

	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	headless := jsonMode || summaryMode || reasonsMode || eventsMode || watchEvery > 0 || !isTTY
	if headless {
		runHeadless(ctx, eng, stateMgr, reqs)
		return
	}

	// TUI logs would corrupt the alternate screen.
	logger.SetOutput(io.Discard)
	p := tea.NewProgram(ui.New(stateMgr, eng, reqs), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

func newHorizons(cfg *config.Config, logger *logging.Logger) *ephem.HorizonsProvider {
	opts := []ephem.HorizonsOption{ephem.WithLogger(logger)}
	if cfg.Horizons.URL != "" {
		opts = append(opts, ephem.WithURL(cfg.Horizons.URL))
	}
	if cfg.Horizons.Timeout > 0 {
		opts = append(opts, ephem.WithTimeout(cfg.Horizons.Timeout))
	}
	return ephem.NewHorizonsProvider(opts...)
}

// newTimezones uses the Google Time Zone API when a key is configured, else a
// fixed offset from -utc-offset or the config.
func newTimezones(cfg *config.Config, logger *logging.Logger) tz.Provider {
	if cfg.Timezone.APIKey != "" {
		opts := []tz.ClientOption{tz.WithAPIKey(cfg.Timezone.APIKey)}
		if cfg.Timezone.URL != "" {
			opts = append(opts, tz.WithURL(cfg.Timezone.URL))
		}
		if cfg.Timezone.Timeout > 0 {
			opts = append(opts, tz.WithTimeout(cfg.Timezone.Timeout))
		}
		return tz.NewCache(tz.NewClient(opts...))
	}

	offset := 0
	switch {
	case utcOffset != noOffset:
		offset = utcOffset
	case cfg.Timezone.UTCOffset != nil:
		offset = *cfg.Timezone.UTCOffset
	default:
		logger.Warn("no timezone API key or UTC offset configured; local times are UTC")
	}
	return tz.FixedOffset(offset)
}

func observer(cfg *config.Config) astro.Observer {
	obs := cfg.DefaultObserver()
	if lat != noCoordinate && lon != noCoordinate {
		obs = astro.Observer{LatDeg: lat, LonDeg: lon, ElevationM: elevation}
	} else if elevation != 0 {
		obs.ElevationM = elevation
	}
	return obs
}

func startDate() (time.Time, error) {
	if dateFlag == "" {
		y, m, d := time.Now().UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01-02", dateFlag)
	if err != nil {
		return time.Time{}, &astro.FormatError{Field: "date", Value: dateFlag, Reason: "want YYYY-MM-DD"}
	}
	return t, nil
}

func scanRequests(obs astro.Observer, start time.Time) []engine.ScanRequest {
	var reqs []engine.ScanRequest
	for _, name := range strings.Split(targets, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		reqs = append(reqs, engine.ScanRequest{Target: name, Observer: obs, Start: start, Days: days})
	}
	return reqs
}

// singleQuery names the one-shot query selected by flags, if any.
func singleQuery() string {
	switch {
	case approachBody != "":
		return "approach"
	case showersComet != "":
		return "showers"
	case showerName != "":
		return "shower"
	case oppositionBody != "":
		return "oppositions"
	case sunMode:
		return "sun"
	case moonMode:
		return "moon"
	default:
		return ""
	}
}

func runQuery(ctx context.Context, w io.Writer, eng *engine.Engine, query string, obs astro.Observer, start time.Time) error {
	y := year
	if y == 0 {
		y = start.Year()
	}

	var result any
	var text func()
	switch query {
	case "approach":
		r, err := eng.Approach(ctx, approachBody, start, 0)
		if err != nil {
			return err
		}
		result, text = r, func() { report.WriteApproach(w, r) }
	case "showers":
		r, err := eng.MeteorShowers(ctx, showersComet, start, 0)
		if err != nil {
			return err
		}
		result, text = r, func() { report.WriteShowers(w, r) }
	case "shower":
		r, err := eng.ShowerVisibility(ctx, showerName, y, obs)
		if err != nil {
			return err
		}
		result, text = r, func() {
			report.WriteShowers(w, []meteor.Report{r.Shower})
			report.WriteReasons(w, state.ScanRecord{
				Target: r.Shower.Name,
				Days:   []engine.DayVerdict{{Date: r.Verdict.Date, Verdict: &r.Verdict}},
			})
		}
	case "oppositions":
		r, err := eng.Oppositions(ctx, oppositionBody, y, strictMode)
		if err != nil {
			return err
		}
		result, text = r, func() { report.WriteOppositions(w, r) }
	case "sun":
		r, err := eng.NightWindows(ctx, obs, start, days)
		if err != nil {
			return err
		}
		result, text = r, func() { report.WriteNights(w, r) }
	case "moon":
		r := eng.MoonPhase(start)
		result, text = r, func() { report.WriteMoon(w, r) }
	}

	if jsonMode {
		return report.WriteJSON(w, result)
	}
	text()
	return nil
}

// runHeadless scans every request once, or repeatedly with -watch.
func runHeadless(ctx context.Context, eng *engine.Engine, stateMgr *state.Manager, reqs []engine.ScanRequest) {
	outputOnce := func() error {
		var errs []error
		for _, req := range reqs {
			rec, err := stateMgr.RunScan(ctx, eng, req)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", req.Target, err))
				continue
			}
			if jsonMode {
				if err := report.ExportScan(rec).WriteJSON(os.Stdout); err != nil {
					return fmt.Errorf("write JSON to stdout: %w", err)
				}
				continue
			}
			report.WriteScanTable(os.Stdout, rec)
			if reasonsMode {
				fmt.Println()
				report.WriteReasons(os.Stdout, rec)
			}
			fmt.Println()
		}
		if eventsMode && !jsonMode {
			report.WriteEvents(os.Stdout, stateMgr.Snapshot().Events, 10)
		}
		return errors.Join(errs...)
	}

	if watchEvery == 0 {
		if err := outputOnce(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := outputOnce(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	ticker := time.NewTicker(watchEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := outputOnce(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}
}

// runServer serves the API and runs the refresh scheduler until ctx ends.
func runServer(ctx context.Context, cfg *config.Config, eng *engine.Engine, provider ephem.Provider,
	repo store.Repository, stateMgr *state.Manager, obs astro.Observer, logger *logging.Logger) error {
	sched, err := refresh.New(provider, repo, refresh.Options{
		Schedule:   cfg.Refresh.Schedule,
		Bodies:     cfg.Refresh.Bodies,
		YearsAhead: cfg.Refresh.YearsAhead,
		OnRun: func(s refresh.Summary, err error) {
			metrics.ObserveRefresh(s.Samples, err)
		},
	}, logger)
	if err != nil {
		return err
	}
	go func() {
		if err := sched.Start(ctx); err != nil {
			logger.Error("refresh scheduler: %v", err)
		}
	}()

	addr := cfg.Server.Listen
	if listen != "" {
		addr = listen
	}
	srv := api.NewServer(addr, eng, stateMgr, obs, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
