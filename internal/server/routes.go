package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/prayer-clock/internal/schedule"
)

func addRoutes(r chi.Router, log zerolog.Logger, loop *schedule.Loop, broker *Broker, checks map[string]Checker) {
	r.Get("/healthz", handleHealth(log, loop, checks))

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", handleState(loop))
		r.Get("/events", handleEvents(loop, broker))
	})
}
