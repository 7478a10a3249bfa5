// Package server exposes the narrative engine over HTTP.
//
// The API computes the threads through an anchor, hands out the result ID
// and answers edge and layout queries against that stored result:
//
//	POST /v1/anchors/{id}                      compute or reuse a result
//	GET  /v1/results/{rid}                     stored result
//	GET  /v1/results/{rid}/edges               tree edges of the result
//	GET  /v1/results/{rid}/threads?edge=u->v   threads through an edge
//	GET  /v1/results/{rid}/layout?width=&height=
//	GET  /healthz
//
// Errors are JSON objects {"error": {"code", "message"}}; INVALID_* codes
// map to 400 and *NOT_FOUND codes to 404.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	errs "github.com/matzehuels/narrative/pkg/errors"
	"github.com/matzehuels/narrative/pkg/narrative"
	"github.com/matzehuels/narrative/pkg/pipeline"
)

// Server serves one engine through a pipeline runner.
type Server struct {
	engine *narrative.Engine
	runner *pipeline.Runner
	logger *log.Logger
	cfg    Config
	router chi.Router
}

// New creates a server. cfg is completed with defaults; the runner's
// TTLs are taken from it.
func New(engine *narrative.Engine, runner *pipeline.Runner, cfg Config, logger *log.Logger) (*Server, error) {
	if engine == nil || runner == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "engine and runner are required")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	runner.ResultTTL = cfg.ResultTTL
	runner.SnapshotTTL = cfg.SnapshotTTL

	s := &Server{engine: engine, runner: runner, logger: logger, cfg: cfg}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Timeout(s.cfg.RequestTimeout))
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.health)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/anchors/{id}", s.computeAnchor)
		r.Route("/results/{rid}", func(r chi.Router) {
			r.Get("/", s.getResult)
			r.Get("/edges", s.getEdges)
			r.Get("/threads", s.getThreads)
			r.Get("/layout", s.getLayout)
		})
	})
	return r
}

// ListenAndServe serves on the configured address until ctx is done, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr, "cache", s.cfg.CacheBackend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
