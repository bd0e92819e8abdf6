package scoring

import (
	"time"

	"github.com/google/uuid"
)

// Recompute runs the full scoring pipeline over an immutable factor set and
// returns a new ContactScore value: compute sub-scores, classify, evaluate
// alerts against the previous score, and derive the replacement
// recommendation list. prev may be nil on first calculation. The previous
// record is never mutated; persistence happens at the boundary.
func (e *Engine) Recompute(prev *ContactScore, c Contact, f Factors, now time.Time) ContactScore {
	factors := f.Normalize()
	breakdown := e.ComputeBreakdown(factors, c)
	overall := OverallScore(breakdown)

	previousScore := 0
	var next ContactScore
	if prev != nil {
		next = *prev
		previousScore = prev.OverallScore
		// Copy the log so appends never alias the previous record's slice.
		next.Alerts = append([]Alert(nil), prev.Alerts...)
	}

	next.UserID = c.UserID
	next.ContactID = c.ID
	next.OverallScore = overall
	next.Breakdown = breakdown
	next.Factors = factors
	next.LeadGrade = GradeFor(overall)
	next.LeadStatus = StatusFor(overall)
	next.ConversionProbability = ConversionProbability(overall)
	next.Alerts = append(next.Alerts, EvaluateAlerts(overall, previousScore, breakdown.Intent, now)...)
	next.Recommendations = Recommend(overall, factors)
	next.Metadata = Metadata{
		LastCalculated: now,
		DataPoints:     factors.DataPoints(),
		ModelVersion:   ModelVersion,
		Confidence:     Confidence(factors.DataPoints()),
	}
	next.UpdatedAt = now
	return next
}

// ZeroScore synthesizes the default score object returned when no record
// exists yet for a contact. It mirrors a recompute over all-zero factors of
// a brand-new contact, minus alerts and recommendations.
func ZeroScore(userID, contactID uuid.UUID) ContactScore {
	factors := NewFactors()
	return ContactScore{
		UserID:                userID,
		ContactID:             contactID,
		OverallScore:          0,
		Breakdown:             Breakdown{Demographic: 50, Firmographic: 50},
		Factors:               factors,
		LeadGrade:             GradeFor(0),
		LeadStatus:            StatusFor(0),
		ConversionProbability: 0,
		Alerts:                []Alert{},
		Recommendations:       []Recommendation{},
		Metadata:              Metadata{ModelVersion: ModelVersion, Confidence: Confidence(0)},
	}
}
