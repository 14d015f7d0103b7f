package relay

import (
	"encoding/json"
	"net/http"
)

const healthBody = "Football Game Multiplayer Server Running"

// Health answers "/" and "/health" with a static availability string and
// everything else with 404.
func Health(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/health" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(healthBody))
}

// StatsHandler serves the hub's metrics as JSON.
func (h *Hub) StatsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Stats())
}
