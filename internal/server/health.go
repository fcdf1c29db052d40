package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/prayer-clock/internal/schedule"
)

// Checker verifies that an infrastructure dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

type result struct {
	Status string `json:"status"`
}

type healthResponse struct {
	Status   string            `json:"status"`
	Schedule result            `json:"schedule"`
	Checks   map[string]result `json:"checks,omitempty"`
}

func handleHealth(log zerolog.Logger, loop *schedule.Loop, checks map[string]Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]result, len(checks))}
		status := http.StatusOK

		// Missing prayer times degrade the service but the process is alive.
		switch store := loop.Store(); {
		case store.Err() != nil:
			resp.Schedule = result{Status: "error"}
			resp.Status = "degraded"
		case store.Loading():
			resp.Schedule = result{Status: "loading"}
		default:
			if _, ok := store.Times(); ok {
				resp.Schedule = result{Status: "ok"}
			} else {
				resp.Schedule = result{Status: "empty"}
				resp.Status = "degraded"
			}
		}

		for name, c := range checks {
			if err := c.Check(ctx); err != nil {
				log.Error().Err(err).Str("name", name).Msg("health check failed")
				resp.Checks[name] = result{Status: "error"}
				resp.Status = "error"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = result{Status: "ok"}
		}

		writeJSON(w, status, resp)
	}
}
