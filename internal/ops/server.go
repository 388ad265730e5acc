// Package ops serves health and metrics endpoints for the bot process.
package ops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"Streak_discord_bot/internal/metrics"
	"Streak_discord_bot/internal/version"
)

// Checker reports whether one dependency is usable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to Checker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

type Server struct {
	srv *http.Server
}

func New(addr string, checks map[string]Checker) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handleHealth(checks))
	r.Handle("/metrics", metrics.Handler())

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Handler is the router, exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	log.Info().Str("addr", ln.Addr().String()).Msg("Ops server listening")

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Ops server shutdown")
		}
	}()

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type checkResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthResponse struct {
	Version string                 `json:"version"`
	Checks  map[string]checkResult `json:"checks"`
}

func handleHealth(checks map[string]Checker) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		resp := healthResponse{Version: version.Version, Checks: make(map[string]checkResult, len(names))}
		status := http.StatusOK
		for _, name := range names {
			if err := checks[name].Check(ctx); err != nil {
				log.Error().Err(err).Str("check", name).Msg("Health check failed")
				resp.Checks[name] = checkResult{Status: "error", Error: err.Error()}
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = checkResult{Status: "ok"}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}
}
