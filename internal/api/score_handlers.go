package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ignite/leadscore/internal/pkg/logger"
	"github.com/ignite/leadscore/internal/service"
)

// Default list sizes per endpoint.
const (
	defaultHotLeadsMinScore = 70
	defaultHotLeadsLimit    = 20
	defaultSalesReadyLimit  = 10
	maxListLimit            = 100
)

func contactIDParam(r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "contactID")
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// CalculateScore handles POST /api/scores/{contactID}/calculate.
// Runs a full synchronous recompute and returns the persisted score.
func (h *Handlers) CalculateScore(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	contactID, ok := contactIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid contact ID")
		return
	}

	score, err := h.scores.Calculate(r.Context(), userID, contactID)
	if err == service.ErrContactNotFound {
		respondError(w, http.StatusNotFound, "Contact not found")
		return
	}
	if err != nil {
		logger.Error("score calculation failed", "contact_id", contactID.String(), "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to calculate score")
		return
	}

	respondJSON(w, http.StatusOK, score)
}

// GetScore handles GET /api/scores/{contactID}.
// A contact without a score gets a synthesized zero-value score with 200,
// never a 404; consumers render it like any other score.
func (h *Handlers) GetScore(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	contactID, ok := contactIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid contact ID")
		return
	}

	score, err := h.scores.Get(r.Context(), userID, contactID)
	if err != nil {
		logger.Error("score lookup failed", "contact_id", contactID.String(), "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to load score")
		return
	}

	respondJSON(w, http.StatusOK, score)
}

// GetHotLeads handles GET /api/scores/hot-leads?min_score=70&limit=20.
func (h *Handlers) GetHotLeads(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	minScore := queryInt(r, "min_score", defaultHotLeadsMinScore)
	limit := queryInt(r, "limit", defaultHotLeadsLimit)
	if limit < 1 || limit > maxListLimit {
		limit = defaultHotLeadsLimit
	}

	leads, err := h.scores.HotLeads(r.Context(), userID, minScore, limit)
	if err != nil {
		logger.Error("hot leads query failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to load hot leads")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"min_score": minScore,
		"count":     len(leads),
		"leads":     leads,
	})
}

// GetSalesReady handles GET /api/scores/sales-ready?limit=10.
func (h *Handlers) GetSalesReady(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	limit := queryInt(r, "limit", defaultSalesReadyLimit)
	if limit < 1 || limit > maxListLimit {
		limit = defaultSalesReadyLimit
	}

	leads, err := h.scores.SalesReady(r.Context(), userID, limit)
	if err != nil {
		logger.Error("sales-ready query failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to load sales-ready leads")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(leads),
		"leads": leads,
	})
}

// GetConversionProbability handles GET /api/scores/{contactID}/conversion-probability.
func (h *Handlers) GetConversionProbability(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	contactID, ok := contactIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid contact ID")
		return
	}

	probability, err := h.scores.Probability(r.Context(), userID, contactID)
	if err != nil {
		logger.Error("probability lookup failed", "contact_id", contactID.String(), "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to load conversion probability")
		return
	}

	respondJSON(w, http.StatusOK, probability)
}

type updateScoreRequest struct {
	Adjustments map[string]float64 `json:"adjustments"`
	Notes       string             `json:"notes"`
}

// UpdateScore handles PUT /api/scores/{contactID}: manual factor
// adjustments plus optional notes, followed by a full recompute.
func (h *Handlers) UpdateScore(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	contactID, ok := contactIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid contact ID")
		return
	}

	var req updateScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Adjustments) == 0 {
		respondError(w, http.StatusBadRequest, "adjustments required")
		return
	}

	score, err := h.scores.Adjust(r.Context(), userID, contactID, req.Adjustments, req.Notes)
	if err == service.ErrContactNotFound {
		respondError(w, http.StatusNotFound, "Contact not found")
		return
	}
	if errors.Is(err, service.ErrUnknownFactor) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		logger.Error("manual score update failed", "contact_id", contactID.String(), "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to update score")
		return
	}

	respondJSON(w, http.StatusOK, score)
}
