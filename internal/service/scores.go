// Package service orchestrates the scoring pipeline across the collector,
// engine, and store: one synchronous pass per request, persisted with a
// version check at the end.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/leadscore/internal/analytics"
	"github.com/ignite/leadscore/internal/collector"
	"github.com/ignite/leadscore/internal/pkg/logger"
	"github.com/ignite/leadscore/internal/scoring"
)

// ErrContactNotFound signals an unknown contact (or one owned by another
// user; the two are deliberately indistinguishable).
var ErrContactNotFound = errors.New("contact not found")

// ErrUnknownFactor signals a manual adjustment naming a signal the engine
// does not score.
var ErrUnknownFactor = errors.New("unknown scoring factor")

// casRetries is how many times a recompute re-reads and retries after a
// concurrent write beat it to the record.
const casRetries = 2

// Scores runs full recomputes and serves score reads.
type Scores struct {
	store     *scoring.Store
	collector *collector.Collector
	engine    *scoring.Engine
	analytics *analytics.Aggregator
}

// NewScores creates the scoring service. analytics may be nil when cache
// invalidation is not wanted (tests, migration tooling).
func NewScores(store *scoring.Store, col *collector.Collector, engine *scoring.Engine, agg *analytics.Aggregator) *Scores {
	if engine == nil {
		engine = scoring.NewEngine()
	}
	return &Scores{store: store, collector: col, engine: engine, analytics: agg}
}

// Calculate runs the full pipeline for a contact: collect signals, compute,
// classify, alert, recommend, persist. Creates the score record on first
// call, recomputes it afterwards.
func (s *Scores) Calculate(ctx context.Context, userID, contactID uuid.UUID) (*scoring.ContactScore, error) {
	contact, err := s.store.GetContact(ctx, userID, contactID)
	if err != nil {
		return nil, fmt.Errorf("loading contact: %w", err)
	}
	if contact == nil {
		return nil, ErrContactNotFound
	}

	for attempt := 0; ; attempt++ {
		snapshot, err := s.collector.Collect(ctx, userID, contactID)
		if err != nil {
			return nil, err
		}

		prev, err := s.store.GetScore(ctx, userID, contactID)
		if err != nil {
			return nil, fmt.Errorf("loading previous score: %w", err)
		}

		next := s.engine.Recompute(prev, *contact, snapshot.Factors, time.Now().UTC())
		err = s.store.SaveScore(ctx, &next)
		if err == scoring.ErrVersionConflict && attempt < casRetries {
			logger.Warn("score version conflict, retrying recompute",
				"contact_id", contactID.String(), "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("saving score: %w", err)
		}

		s.invalidate(ctx, userID)
		logger.Info("score recomputed",
			"contact_id", contactID.String(),
			"overall_score", next.OverallScore,
			"lead_grade", next.LeadGrade,
			"lead_status", next.LeadStatus)
		return &next, nil
	}
}

// Get returns the stored score, or a synthesized zero-value score when none
// exists. Never an error for a missing record; that is a UX contract, not
// an edge case.
func (s *Scores) Get(ctx context.Context, userID, contactID uuid.UUID) (*scoring.ContactScore, error) {
	score, err := s.store.GetScore(ctx, userID, contactID)
	if err != nil {
		return nil, err
	}
	if score == nil {
		zero := scoring.ZeroScore(userID, contactID)
		return &zero, nil
	}
	return score, nil
}

// Adjust applies manual factor-count overrides on top of the collected
// snapshot and recomputes. Negative counts are clamped to zero and unknown
// factor names rejected. When notes accompany the adjustment, an
// adjustment_applied alert is appended.
func (s *Scores) Adjust(ctx context.Context, userID, contactID uuid.UUID, adjustments map[string]float64, notes string) (*scoring.ContactScore, error) {
	for name := range adjustments {
		if !scoring.KnownSignal(name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFactor, name)
		}
	}

	contact, err := s.store.GetContact(ctx, userID, contactID)
	if err != nil {
		return nil, fmt.Errorf("loading contact: %w", err)
	}
	if contact == nil {
		return nil, ErrContactNotFound
	}

	for attempt := 0; ; attempt++ {
		snapshot, err := s.collector.Collect(ctx, userID, contactID)
		if err != nil {
			return nil, err
		}

		factors := snapshot.Factors.Clone()
		for name, count := range adjustments {
			factors.SetCount(name, count)
		}

		prev, err := s.store.GetScore(ctx, userID, contactID)
		if err != nil {
			return nil, fmt.Errorf("loading previous score: %w", err)
		}

		now := time.Now().UTC()
		next := s.engine.Recompute(prev, *contact, factors, now)
		if notes != "" {
			next.Alerts = append(next.Alerts, scoring.Alert{
				Type:        scoring.AlertAdjustmentApplied,
				Message:     "Manual adjustment: " + notes,
				TriggeredAt: now,
			})
		}

		err = s.store.SaveScore(ctx, &next)
		if err == scoring.ErrVersionConflict && attempt < casRetries {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("saving score: %w", err)
		}

		s.invalidate(ctx, userID)
		return &next, nil
	}
}

// HotLeads lists scores at or above minScore, best first.
func (s *Scores) HotLeads(ctx context.Context, userID uuid.UUID, minScore, limit int) ([]*scoring.ContactScore, error) {
	return s.store.HotLeads(ctx, userID, minScore, limit)
}

// SalesReady lists leads passing the four sales-readiness conditions.
func (s *Scores) SalesReady(ctx context.Context, userID uuid.UUID, limit int) ([]*scoring.ContactScore, error) {
	return s.store.SalesReady(ctx, userID, limit)
}

// ProbabilityFactor is one contribution line in the conversion probability
// explanation, derived from the stored breakdown on demand.
type ProbabilityFactor struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

// ConversionProbability explains the probability estimate for a contact
// from its stored breakdown. A contact without a score yields probability 0
// with the zero breakdown's placeholder factors.
type ConversionProbability struct {
	ContactID   uuid.UUID           `json:"contact_id"`
	Probability float64             `json:"probability"`
	Confidence  float64             `json:"confidence"`
	Factors     []ProbabilityFactor `json:"factors"`
}

// Probability returns the conversion probability payload for a contact.
func (s *Scores) Probability(ctx context.Context, userID, contactID uuid.UUID) (*ConversionProbability, error) {
	score, err := s.Get(ctx, userID, contactID)
	if err != nil {
		return nil, err
	}
	b := score.Breakdown
	return &ConversionProbability{
		ContactID:   contactID,
		Probability: score.ConversionProbability,
		Confidence:  score.Metadata.Confidence,
		Factors: []ProbabilityFactor{
			{Name: "engagement", Score: b.Engagement, Weight: scoring.WeightEngagement},
			{Name: "intent", Score: b.Intent, Weight: scoring.WeightIntent},
			{Name: "behavioral", Score: b.Behavioral, Weight: scoring.WeightBehavioral},
			{Name: "demographic", Score: b.Demographic, Weight: scoring.WeightDemographic},
			{Name: "firmographic", Score: b.Firmographic, Weight: scoring.WeightFirmographic},
		},
	}, nil
}

func (s *Scores) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.analytics != nil {
		s.analytics.Invalidate(ctx, userID)
	}
}
