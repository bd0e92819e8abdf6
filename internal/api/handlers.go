package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ignite/leadscore/internal/analytics"
	"github.com/ignite/leadscore/internal/service"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	scores     *service.Scores
	aggregator *analytics.Aggregator
}

// NewHandlers creates a new Handlers instance
func NewHandlers(scores *service.Scores, aggregator *analytics.Aggregator) *Handlers {
	return &Handlers{scores: scores, aggregator: aggregator}
}

// HealthCheck reports service liveness
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// queryInt parses an integer query parameter, falling back to def when
// absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
