package scoring

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputeFirstCalculation(t *testing.T) {
	engine := NewEngine()
	contact := Contact{ID: uuid.New(), UserID: uuid.New()}
	f := factorsWith(map[string]float64{SignalEmailOpens: 5, SignalEmailClicks: 3})
	now := time.Now().UTC()

	score := engine.Recompute(nil, contact, f, now)

	assert.Equal(t, contact.UserID, score.UserID)
	assert.Equal(t, contact.ID, score.ContactID)
	assert.Equal(t, 16, score.OverallScore)
	assert.Equal(t, GradeF, score.LeadGrade)
	assert.Equal(t, StatusCold, score.LeadStatus)
	assert.Equal(t, 0.16, score.ConversionProbability)
	assert.Equal(t, now, score.Metadata.LastCalculated)
	assert.Equal(t, 2, score.Metadata.DataPoints)
	assert.Equal(t, ModelVersion, score.Metadata.ModelVersion)
	// First calculation compares against previous score 0, so a jump past
	// 10 already counts as an increase.
	require.Len(t, score.Alerts, 1)
	assert.Equal(t, AlertScoreIncreased, score.Alerts[0].Type)
	require.Len(t, score.Recommendations, 1)
	assert.Equal(t, ActionFollowUp, score.Recommendations[0].Action)
}

func TestRecomputeProbabilityInvariant(t *testing.T) {
	engine := NewEngine()
	contact := Contact{ID: uuid.New(), UserID: uuid.New()}
	for _, opens := range []float64{0, 3, 17, 250} {
		f := factorsWith(map[string]float64{SignalEmailOpens: opens})
		score := engine.Recompute(nil, contact, f, time.Now())
		assert.Equal(t, float64(score.OverallScore)/100, score.ConversionProbability)
	}
}

func TestRecomputeAlertsNeverShrink(t *testing.T) {
	engine := NewEngine()
	contact := Contact{ID: uuid.New(), UserID: uuid.New()}
	now := time.Now().UTC()

	// First pass: strong signals push the score into hot territory.
	hot := factorsWith(map[string]float64{
		SignalEmailOpens: 40, SignalEmailClicks: 20,
		SignalReplyCount: 5, SignalMeetingRequests: 4,
	})
	first := engine.Recompute(nil, contact, hot, now)
	require.NotEmpty(t, first.Alerts)
	firstLen := len(first.Alerts)

	// Second pass: signals collapse, score drops. The log keeps growing or
	// stays put, never shrinks.
	second := engine.Recompute(&first, contact, NewFactors(), now.Add(time.Hour))
	assert.GreaterOrEqual(t, len(second.Alerts), firstLen)
	assert.Equal(t, first.Alerts, second.Alerts[:firstLen])

	// The previous record's log is untouched.
	assert.Len(t, first.Alerts, firstLen)
}

func TestRecomputeReplacesRecommendations(t *testing.T) {
	engine := NewEngine()
	contact := Contact{ID: uuid.New(), UserID: uuid.New()}
	now := time.Now().UTC()

	warm := factorsWith(map[string]float64{SignalEmailOpens: 20, SignalEmailClicks: 15})
	first := engine.Recompute(nil, contact, warm, now)
	require.Len(t, first.Recommendations, 1)

	second := engine.Recompute(&first, contact, NewFactors(), now.Add(time.Hour))
	assert.Empty(t, second.Recommendations) // replaced in full, not appended
}

func TestRecomputeHotLeadTransition(t *testing.T) {
	engine := NewEngine()
	contact := Contact{ID: uuid.New(), UserID: uuid.New()}
	now := time.Now().UTC()

	prev := engine.Recompute(nil, contact, factorsWith(map[string]float64{
		SignalEmailOpens: 25, SignalEmailClicks: 12,
	}), now)
	require.Less(t, prev.OverallScore, 80)

	next := engine.Recompute(&prev, contact, factorsWith(map[string]float64{
		SignalEmailOpens: 40, SignalEmailClicks: 25,
		SignalReplyCount: 6, SignalMeetingRequests: 5,
	}), now.Add(time.Hour))
	require.GreaterOrEqual(t, next.OverallScore, 80)

	newTypes := alertTypes(next.Alerts[len(prev.Alerts):])
	assert.Contains(t, newTypes, AlertBecameHotLead)
	assert.Contains(t, newTypes, AlertScoreIncreased)
}

func TestZeroScore(t *testing.T) {
	userID, contactID := uuid.New(), uuid.New()
	zero := ZeroScore(userID, contactID)

	assert.Equal(t, 0, zero.OverallScore)
	assert.Equal(t, GradeF, zero.LeadGrade)
	assert.Equal(t, StatusCold, zero.LeadStatus)
	assert.Equal(t, 0.0, zero.ConversionProbability)
	assert.Empty(t, zero.Alerts)
	assert.Empty(t, zero.Recommendations)
	assert.Equal(t, int64(0), zero.Version)
	assert.Len(t, zero.Factors, 7)
}
