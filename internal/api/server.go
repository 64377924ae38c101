// Package api serves the engine's queries over HTTP as JSON.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/litescript/ls-skywatch/internal/astro"
	"github.com/litescript/ls-skywatch/internal/engine"
	"github.com/litescript/ls-skywatch/internal/logging"
	"github.com/litescript/ls-skywatch/internal/metrics"
	"github.com/litescript/ls-skywatch/internal/state"
)

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	engine     *engine.Engine
	state      *state.Manager
	observer   astro.Observer
	log        *logging.Logger
}

// NewServer creates a configured HTTP server. obs is the observing site used
// when a request omits lat/lon.
func NewServer(addr string, eng *engine.Engine, st *state.Manager, obs astro.Observer, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	if st == nil {
		st = state.NewManager(state.DefaultConfig())
	}
	s := &Server{
		engine:   eng,
		state:    st,
		observer: obs,
		log:      log.With("api"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.healthz)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /api/v1/visibility", s.visibility)
	mux.HandleFunc("GET /api/v1/scan", s.scan)
	mux.HandleFunc("GET /api/v1/scans", s.scans)
	mux.HandleFunc("GET /api/v1/approach", s.approach)
	mux.HandleFunc("GET /api/v1/meteor_showers", s.meteorShowers)
	mux.HandleFunc("GET /api/v1/shower_visibility", s.showerVisibility)
	mux.HandleFunc("GET /api/v1/oppositions", s.oppositions)
	mux.HandleFunc("GET /api/v1/sun", s.sun)
	mux.HandleFunc("GET /api/v1/moon", s.moon)

	// Build middleware chain: metrics -> logging -> mux.
	var handler http.Handler = mux
	handler = loggingMiddleware(s.log)(handler)
	handler = metrics.Middleware(handler)

	// Uncached scans fetch ephemerides upstream before answering, so writes
	// get a longer deadline than reads.
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.log.Info("listening on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// probePath returns true for paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/metrics"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(log *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			logf := log.Info
			if probePath(r.URL.Path) {
				logf = log.Debug
			}
			logf("%s %s status=%d duration_ms=%d remote=%s",
				r.Method, r.URL.RequestURI(), sr.statusCode, time.Since(start).Milliseconds(), r.RemoteAddr)
		})
	}
}
