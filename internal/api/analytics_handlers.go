package api

import (
	"net/http"

	"github.com/ignite/leadscore/internal/pkg/logger"
)

// GetScoreAnalytics handles GET /api/analytics/scores: score distribution,
// grade/status histograms, and probability insights for the caller's
// contacts. Aggregate-only; no per-contact data.
func (h *Handlers) GetScoreAnalytics(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	overview, err := h.aggregator.GetOverview(r.Context(), userID)
	if err != nil {
		logger.Error("analytics query failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to load score analytics")
		return
	}

	respondJSON(w, http.StatusOK, overview)
}
