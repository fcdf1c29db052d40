package server

import (
	"net/http"

	"github.com/smokyabdulrahman/prayer-clock/internal/schedule"
)

func handleState(loop *schedule.Loop) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, loop.View())
	}
}
