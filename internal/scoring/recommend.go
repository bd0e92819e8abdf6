package scoring

// recommendationRule is one entry in the next-best-action ladder. Rules are
// evaluated in order and the first match wins, so the returned list always
// has zero or one entries.
type recommendationRule struct {
	matches func(overall int, f Factors) bool
	build   func() Recommendation
}

var recommendationRules = []recommendationRule{
	{
		matches: func(overall int, _ Factors) bool { return overall >= 80 },
		build: func() Recommendation {
			return Recommendation{
				Action:   ActionScheduleCall,
				Priority: PriorityHigh,
				Reason:   "Score is in the hot range; book a call while interest is peaking",
			}
		},
	},
	{
		matches: func(overall int, _ Factors) bool { return overall >= 60 },
		build: func() Recommendation {
			return Recommendation{
				Action:   ActionSendPersonalizedEmail,
				Priority: PriorityMedium,
				Reason:   "Warm lead; a personalized email can push engagement further",
			}
		},
	},
	{
		matches: func(_ int, f Factors) bool { return f.Count(SignalEmailOpens) > 0 },
		build: func() Recommendation {
			return Recommendation{
				Action:   ActionFollowUp,
				Priority: PriorityLow,
				Reason:   "Contact has opened emails but not progressed; follow up",
			}
		},
	},
}

// Recommend evaluates the rule ladder and returns the replacement
// recommendation list: the single highest-priority matching suggestion, or
// an empty list when nothing matches. Callers replace the stored list in
// full with the result, never append.
func Recommend(overall int, f Factors) []Recommendation {
	for _, rule := range recommendationRules {
		if rule.matches(overall, f) {
			return []Recommendation{rule.build()}
		}
	}
	return []Recommendation{}
}
