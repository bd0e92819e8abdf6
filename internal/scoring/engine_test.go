package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func factorsWith(counts map[string]float64) Factors {
	f := NewFactors()
	for name, count := range counts {
		f.SetCount(name, count)
	}
	return f
}

func TestComputeBreakdownAllZero(t *testing.T) {
	engine := NewEngine()
	b := engine.ComputeBreakdown(NewFactors(), Contact{})

	assert.Equal(t, 0.0, b.Engagement)
	assert.Equal(t, 0.0, b.Intent)
	assert.Equal(t, 0.0, b.Behavioral)
	assert.Equal(t, 50.0, b.Demographic)
	assert.Equal(t, 50.0, b.Firmographic)

	overall := OverallScore(b)
	assert.Equal(t, 5, overall) // round(0 + 0 + 0 + 2.5 + 2.5)
	assert.Equal(t, GradeF, GradeFor(overall))
	assert.Equal(t, StatusCold, StatusFor(overall))
	assert.Equal(t, 0.05, ConversionProbability(overall))
}

func TestComputeBreakdownOpensAndClicks(t *testing.T) {
	engine := NewEngine()
	f := factorsWith(map[string]float64{
		SignalEmailOpens:  5,
		SignalEmailClicks: 3,
	})
	b := engine.ComputeBreakdown(f, Contact{})

	// engagementRaw = 5*0.2 + 3*0.3 = 1.9
	assert.InDelta(t, 19.0, b.Engagement, 1e-9)
	assert.Equal(t, 0.0, b.Intent)
	assert.Equal(t, 16.0, b.Behavioral) // (5+3)*2

	overall := OverallScore(b)
	assert.Equal(t, 16, overall) // round(7.6 + 0 + 3.2 + 2.5 + 2.5)
	assert.Equal(t, GradeF, GradeFor(overall))
	assert.Equal(t, StatusCold, StatusFor(overall))
}

func TestComputeBreakdownIntentCeiling(t *testing.T) {
	engine := NewEngine()
	f := factorsWith(map[string]float64{
		SignalReplyCount:      3,
		SignalMeetingRequests: 2,
	})
	b := engine.ComputeBreakdown(f, Contact{})

	// intentRaw = 3*0.4 + 2*0.5 = 2.2 -> 44
	assert.InDelta(t, 44.0, b.Intent, 1e-9)

	// High intent alone cannot escape cold: the fixed weights cap it.
	overall := OverallScore(b)
	assert.Equal(t, 18, overall) // round(0 + 13.2 + 0 + 2.5 + 2.5)
	assert.Equal(t, StatusCold, StatusFor(overall))
}

func TestComputeBreakdownClampsAt100(t *testing.T) {
	engine := NewEngine()
	f := factorsWith(map[string]float64{
		SignalEmailOpens:      1000,
		SignalEmailClicks:     1000,
		SignalWebsiteVisits:   1000,
		SignalReplyCount:      1000,
		SignalMeetingRequests: 1000,
	})
	b := engine.ComputeBreakdown(f, Contact{})

	assert.Equal(t, 100.0, b.Engagement)
	assert.Equal(t, 100.0, b.Intent)
	assert.Equal(t, 100.0, b.Behavioral)

	overall := OverallScore(b)
	assert.Equal(t, 95, overall) // 40 + 30 + 20 + 2.5 + 2.5
}

func TestOverallScoreAlwaysInRange(t *testing.T) {
	engine := NewEngine()
	inputs := []map[string]float64{
		{},
		{SignalEmailOpens: 1},
		{SignalEmailOpens: 50, SignalEmailClicks: 50},
		{SignalMeetingRequests: 500},
		{SignalEmailOpens: 1e6, SignalEmailClicks: 1e6, SignalWebsiteVisits: 1e6,
			SignalContentDownloads: 1e6, SignalSocialEngagement: 1e6,
			SignalReplyCount: 1e6, SignalMeetingRequests: 1e6},
	}
	for _, counts := range inputs {
		b := engine.ComputeBreakdown(factorsWith(counts), Contact{})
		overall := OverallScore(b)
		assert.GreaterOrEqual(t, overall, 0)
		assert.LessOrEqual(t, overall, 100)
	}
}

func TestComputeBreakdownIdempotent(t *testing.T) {
	engine := NewEngine()
	f := factorsWith(map[string]float64{
		SignalEmailOpens: 7,
		SignalReplyCount: 2,
	})
	first := engine.ComputeBreakdown(f, Contact{})
	second := engine.ComputeBreakdown(f, Contact{})
	assert.Equal(t, first, second)
	assert.Equal(t, OverallScore(first), OverallScore(second))
}

func TestCustomDemographicScorer(t *testing.T) {
	engine := &Engine{
		Demographic:  FixedDemographicScorer{Score: 90},
		Firmographic: FixedFirmographicScorer{Score: 10},
	}
	b := engine.ComputeBreakdown(NewFactors(), Contact{})
	assert.Equal(t, 90.0, b.Demographic)
	assert.Equal(t, 10.0, b.Firmographic)

	// Scorers returning out-of-range values are clamped like any sub-score.
	engine.Demographic = FixedDemographicScorer{Score: 150}
	b = engine.ComputeBreakdown(NewFactors(), Contact{})
	assert.Equal(t, 100.0, b.Demographic)
}

func TestFactorsSetCountClampsNegative(t *testing.T) {
	f := NewFactors()
	f.SetCount(SignalEmailOpens, -5)
	assert.Equal(t, 0.0, f.Count(SignalEmailOpens))

	// Unknown signals never enter the map.
	f.SetCount("starSign", 12)
	assert.False(t, KnownSignal("starSign"))
	_, ok := f["starSign"]
	assert.False(t, ok)
}

func TestFactorsNormalizeRestoresWeights(t *testing.T) {
	f := Factors{
		SignalEmailOpens: {Count: 4, Weight: 99}, // tampered weight
		"bogus":          {Count: 9, Weight: 1},
	}
	n := f.Normalize()
	assert.Equal(t, 0.2, n[SignalEmailOpens].Weight)
	assert.Equal(t, 4.0, n[SignalEmailOpens].Count)
	_, ok := n["bogus"]
	assert.False(t, ok)
	assert.Len(t, n, 7)
}

func TestConfidenceBounds(t *testing.T) {
	assert.InDelta(t, 0.3, Confidence(0), 1e-9)
	assert.InDelta(t, 0.5, Confidence(2), 1e-9)
	assert.InDelta(t, 0.9, Confidence(7), 1e-9)
	assert.InDelta(t, 0.9, Confidence(100), 1e-9)
}
