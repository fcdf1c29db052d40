// Package server exposes the refresh loop over HTTP: a JSON snapshot, a
// server-sent event stream of ticks and a health check.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/prayer-clock/internal/schedule"
)

type Server struct {
	srv         *http.Server
	log         zerolog.Logger
	broker      *Broker
	unsubscribe func()
}

// New builds a server for loop. checks are reported by /healthz.
func New(addr string, log zerolog.Logger, loop *schedule.Loop, checks map[string]Checker) *Server {
	broker := NewBroker()
	store := loop.Store()
	unsubscribe := loop.Subscribe(func(t schedule.Tick) {
		broker.Publish(schedule.Snapshot(store, &t))
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newStructuredLogger(log))
	r.Use(middleware.Recoverer)

	addRoutes(r, log, loop, broker, checks)

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		log:         log,
		broker:      broker,
		unsubscribe: unsubscribe,
	}
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run listens and serves until Shutdown.
func (s *Server) Run(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	s.log.Info().Str("addr", ln.Addr().String()).Msg("http server listening")

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections, ends open event streams and waits
// up to ten seconds for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.unsubscribe()
	s.broker.Close()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func newStructuredLogger(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				log.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Int64("duration_ms", time.Since(start).Milliseconds()).
					Str("request_id", middleware.GetReqID(r.Context())).
					Msg("http request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
