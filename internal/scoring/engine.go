package scoring

import "math"

// Overall-score weights for the five sub-scores.
const (
	WeightEngagement   = 0.4
	WeightIntent       = 0.3
	WeightBehavioral   = 0.2
	WeightDemographic  = 0.05
	WeightFirmographic = 0.05
)

// DemographicScorer scores a contact's personal fit (role, seniority) in
// [0,100]. The engine ships no model; FixedDemographicScorer stands in.
type DemographicScorer interface {
	ScoreDemographics(c Contact) float64
}

// FirmographicScorer scores a contact's company fit (size, industry) in
// [0,100]. The engine ships no model; FixedFirmographicScorer stands in.
type FirmographicScorer interface {
	ScoreFirmographics(c Contact) float64
}

// FixedDemographicScorer returns a constant sub-score regardless of contact.
type FixedDemographicScorer struct {
	Score float64
}

func (s FixedDemographicScorer) ScoreDemographics(Contact) float64 { return s.Score }

// FixedFirmographicScorer returns a constant sub-score regardless of contact.
type FixedFirmographicScorer struct {
	Score float64
}

func (s FixedFirmographicScorer) ScoreFirmographics(Contact) float64 { return s.Score }

// DefaultDemographicScorer is the placeholder used until a real model exists.
var DefaultDemographicScorer DemographicScorer = FixedDemographicScorer{Score: 50}

// DefaultFirmographicScorer is the placeholder used until a real model exists.
var DefaultFirmographicScorer FirmographicScorer = FixedFirmographicScorer{Score: 50}

// Engine converts raw signal counts into sub-scores and an overall score.
// It is stateless; both scorer fields may be nil, in which case the fixed
// placeholders apply.
type Engine struct {
	Demographic  DemographicScorer
	Firmographic FirmographicScorer
}

// NewEngine returns an Engine with the placeholder demographic and
// firmographic scorers.
func NewEngine() *Engine {
	return &Engine{
		Demographic:  DefaultDemographicScorer,
		Firmographic: DefaultFirmographicScorer,
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ComputeBreakdown derives the five sub-scores from the factors. It is a
// pure function: identical factors always yield an identical breakdown.
func (e *Engine) ComputeBreakdown(f Factors, c Contact) Breakdown {
	engagementRaw := f.Count(SignalEmailOpens)*WeightFor(SignalEmailOpens) +
		f.Count(SignalEmailClicks)*WeightFor(SignalEmailClicks) +
		f.Count(SignalWebsiteVisits)*WeightFor(SignalWebsiteVisits) +
		f.Count(SignalContentDownloads)*WeightFor(SignalContentDownloads) +
		f.Count(SignalSocialEngagement)*WeightFor(SignalSocialEngagement)

	intentRaw := f.Count(SignalReplyCount)*WeightFor(SignalReplyCount) +
		f.Count(SignalMeetingRequests)*WeightFor(SignalMeetingRequests)

	demographic := 50.0
	if e.Demographic != nil {
		demographic = e.Demographic.ScoreDemographics(c)
	}
	firmographic := 50.0
	if e.Firmographic != nil {
		firmographic = e.Firmographic.ScoreFirmographics(c)
	}

	return Breakdown{
		Engagement:   clamp(engagementRaw * 10),
		Intent:       clamp(intentRaw * 20),
		Behavioral:   clamp((f.Count(SignalEmailOpens) + f.Count(SignalEmailClicks)) * 2),
		Demographic:  clamp(demographic),
		Firmographic: clamp(firmographic),
	}
}

// OverallScore collapses a breakdown into the 0-100 overall score.
// Standard rounding: .5 rounds up.
func OverallScore(b Breakdown) int {
	weighted := b.Engagement*WeightEngagement +
		b.Intent*WeightIntent +
		b.Behavioral*WeightBehavioral +
		b.Demographic*WeightDemographic +
		b.Firmographic*WeightFirmographic
	return int(math.Round(weighted))
}

// ConversionProbability is the naive probability estimate derived from the
// overall score.
func ConversionProbability(overall int) float64 {
	return float64(overall) / 100
}

// Confidence grows with the number of distinct signals observed, capped at
// 0.9 since the demographic and firmographic inputs are placeholders.
func Confidence(dataPoints int) float64 {
	c := 0.3 + float64(dataPoints)*0.1
	if c > 0.9 {
		c = 0.9
	}
	return c
}
