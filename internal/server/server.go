// Package server exposes analyses over HTTP.
//
//	GET  /healthz       liveness, plus a database ping when configured
//	POST /v1/analyses   run one analysis; the body overrides the defaults
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/koustreak/nullscan/internal/config"
	"github.com/koustreak/nullscan/internal/errs"
	"github.com/koustreak/nullscan/internal/logger"
	"github.com/koustreak/nullscan/internal/report"
)

// maxBodyBytes bounds the request body of POST /v1/analyses.
const maxBodyBytes = 64 << 10

// Runner executes one analysis. *analysis.Runner implements it.
type Runner interface {
	Run(ctx context.Context, cfg config.Analysis) (*report.Report, error)
	Ping(ctx context.Context) error
}

// Server routes HTTP requests to a Runner.
type Server struct {
	runner   Runner
	defaults config.Analysis
	log      *logger.Logger
	router   chi.Router
}

// New builds the router. defaults is the analysis every request body is
// merged over.
func New(runner Runner, defaults config.Analysis, log *logger.Logger) *Server {
	if log == nil {
		log = logger.L()
	}
	s := &Server{runner: runner, defaults: defaults, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyses", s.handleAnalysis)
	})

	s.router = r
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.With().Str("addr", addr).Logger().Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errs.Wrap(errs.ErrKindConnectionFailed, "failed to listen on "+addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.Ping(r.Context()); err != nil {
		s.log.ErrorWith("health check failed", err, nil)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  errs.KindOf(err).String(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	cfg := s.defaults
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		writeError(w, errs.Wrap(errs.ErrKindInvalidInput, "invalid request body", err))
		return
	}

	rep, err := s.runner.Run(r.Context(), cfg)
	if err != nil {
		logger.FromContext(r.Context()).ErrorWith("analysis failed", err, map[string]any{
			"request_id": middleware.GetReqID(r.Context()),
		})
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rep)
}
