package scoring

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Lead grade constants
const (
	GradeAPlus = "A+"
	GradeA     = "A"
	GradeB     = "B"
	GradeC     = "C"
	GradeD     = "D"
	GradeF     = "F"
)

// Lead status constants. Nurturing and disqualified are set by external
// workflows, never by the engine itself.
const (
	StatusHot          = "hot"
	StatusWarm         = "warm"
	StatusQualified    = "qualified"
	StatusCold         = "cold"
	StatusNurturing    = "nurturing"
	StatusDisqualified = "disqualified"
)

// Alert type constants
const (
	AlertScoreIncreased     = "score_increased"
	AlertBecameHotLead      = "became_hot_lead"
	AlertHighIntentDetected = "high_intent_detected"
	AlertAdjustmentApplied  = "adjustment_applied"
)

// Recommendation action constants
const (
	ActionScheduleCall          = "schedule_call"
	ActionSendPersonalizedEmail = "send_personalized_email"
	ActionFollowUp              = "follow_up"
)

// Recommendation priority constants
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// ModelVersion identifies the scoring formula revision stored with every
// recompute so historical scores can be told apart after a formula change.
const ModelVersion = "1.0"

// Breakdown holds the five sub-scores, each in [0,100].
type Breakdown struct {
	Engagement   float64 `json:"engagement_score" db:"engagement_score"`
	Intent       float64 `json:"intent_score" db:"intent_score"`
	Behavioral   float64 `json:"behavioral_score" db:"behavioral_score"`
	Demographic  float64 `json:"demographic_score" db:"demographic_score"`
	Firmographic float64 `json:"firmographic_score" db:"firmographic_score"`
}

// Alert is one entry in the append-only alert log of a score.
type Alert struct {
	Type         string    `json:"type"`
	Message      string    `json:"message"`
	TriggeredAt  time.Time `json:"triggered_at"`
	Acknowledged bool      `json:"acknowledged"`
}

// Recommendation is a derived next-best-action suggestion. The list on a
// score is replaced in full on every recompute, never appended to.
type Recommendation struct {
	Action   string `json:"action"`
	Priority string `json:"priority"`
	Reason   string `json:"reason"`
}

// PredictedValue is a placeholder for deal-size prediction. No algorithm
// populates it yet; it round-trips through the store untouched.
type PredictedValue struct {
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	Confidence float64 `json:"confidence"`
}

// Metadata describes the provenance of the last recompute.
type Metadata struct {
	LastCalculated time.Time `json:"last_calculated"`
	DataPoints     int       `json:"data_points"`
	ModelVersion   string    `json:"model_version"`
	Confidence     float64   `json:"confidence"`
}

// ContactScore is the persisted scoring record for one (user, contact) pair.
// Version increments on every successful write and is checked on save to
// prevent lost updates between concurrent recomputes.
type ContactScore struct {
	ID                    uuid.UUID        `json:"id" db:"id"`
	UserID                uuid.UUID        `json:"user_id" db:"user_id"`
	ContactID             uuid.UUID        `json:"contact_id" db:"contact_id"`
	OverallScore          int              `json:"overall_score" db:"overall_score"`
	Breakdown             Breakdown        `json:"score_breakdown"`
	Factors               Factors          `json:"scoring_factors"`
	LeadGrade             string           `json:"lead_grade" db:"lead_grade"`
	LeadStatus            string           `json:"lead_status" db:"lead_status"`
	ConversionProbability float64          `json:"conversion_probability" db:"conversion_probability"`
	PredictedValue        PredictedValue   `json:"predicted_value"`
	Alerts                []Alert          `json:"alerts"`
	Recommendations       []Recommendation `json:"recommendations"`
	Metadata              Metadata         `json:"scoring_metadata"`
	Version               int64            `json:"version" db:"version"`
	CreatedAt             time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at" db:"updated_at"`
}

// Contact is the read-only slice of the contact record the engine sees.
// Identity fields are used for display enrichment, never for scoring math,
// except by optional demographic/firmographic scorers.
type Contact struct {
	ID       uuid.UUID `json:"id" db:"id"`
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	Email    string    `json:"email" db:"email"`
	Name     string    `json:"name" db:"name"`
	Company  string    `json:"company" db:"company"`
	Position string    `json:"position" db:"position"`
}

// alertLog and recommendationList let slices round-trip through JSONB columns.

type alertLog []Alert

func (a alertLog) Value() (driver.Value, error) {
	if a == nil {
		a = alertLog{}
	}
	return json.Marshal(a)
}

func (a *alertLog) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(b, a)
}

type recommendationList []Recommendation

func (r recommendationList) Value() (driver.Value, error) {
	if r == nil {
		r = recommendationList{}
	}
	return json.Marshal(r)
}

func (r *recommendationList) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(b, r)
}
