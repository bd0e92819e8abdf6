package scoring

import (
	"fmt"
	"time"
)

// Alert firing thresholds.
const (
	alertScoreJumpDelta  = 10
	alertHotLeadScore    = 80
	alertHighIntentScore = 70
)

// EvaluateAlerts returns the alerts triggered by a recompute. score_increased
// and became_hot_lead are edge-triggered on the previous score; high_intent
// fires on every recompute that satisfies its condition. The asymmetry is
// intentional and preserved.
func EvaluateAlerts(newScore, previousScore int, intentScore float64, now time.Time) []Alert {
	var alerts []Alert

	if newScore > previousScore+alertScoreJumpDelta {
		alerts = append(alerts, Alert{
			Type:        AlertScoreIncreased,
			Message:     fmt.Sprintf("Lead score increased from %d to %d", previousScore, newScore),
			TriggeredAt: now,
		})
	}

	if newScore >= alertHotLeadScore && previousScore < alertHotLeadScore {
		alerts = append(alerts, Alert{
			Type:        AlertBecameHotLead,
			Message:     fmt.Sprintf("Contact became a hot lead with score %d", newScore),
			TriggeredAt: now,
		})
	}

	if intentScore >= alertHighIntentScore {
		alerts = append(alerts, Alert{
			Type:        AlertHighIntentDetected,
			Message:     fmt.Sprintf("High buying intent detected (intent score %.0f)", intentScore),
			TriggeredAt: now,
		})
	}

	return alerts
}
