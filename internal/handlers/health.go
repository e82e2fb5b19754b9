// internal/handlers/health.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cardtable/uno/internal/engine"
)

// HealthHandler reports liveness plus registry aggregates.
func HealthHandler(e *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   "ok",
			"sessions": e.Registry().Len(),
			"players":  e.Registry().TotalPlayers(),
		})
	}
}
