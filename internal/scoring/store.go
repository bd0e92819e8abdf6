package scoring

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrVersionConflict is returned by SaveScore when the record changed
// between read and write. Callers re-read and retry the recompute.
var ErrVersionConflict = errors.New("contact score version conflict")

// SalesReady filter constants.
const (
	salesReadyMinScore  = 75
	salesReadyMinIntent = 60
	salesReadyMaxAge    = 30 * 24 * time.Hour
)

// Store provides database operations for contact scores.
type Store struct {
	db *sql.DB
}

// NewStore creates a new score store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for read-side aggregation queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

const scoreColumns = `id, user_id, contact_id, overall_score,
	engagement_score, intent_score, behavioral_score, demographic_score, firmographic_score,
	scoring_factors, lead_grade, lead_status, conversion_probability, predicted_value,
	alerts, recommendations, last_calculated, data_points, model_version, confidence,
	version, created_at, updated_at`

func scanScore(row interface{ Scan(...interface{}) error }) (*ContactScore, error) {
	score := &ContactScore{}
	var predicted []byte
	var alerts alertLog
	var recs recommendationList
	var lastCalculated sql.NullTime
	err := row.Scan(
		&score.ID, &score.UserID, &score.ContactID, &score.OverallScore,
		&score.Breakdown.Engagement, &score.Breakdown.Intent, &score.Breakdown.Behavioral,
		&score.Breakdown.Demographic, &score.Breakdown.Firmographic,
		&score.Factors, &score.LeadGrade, &score.LeadStatus,
		&score.ConversionProbability, &predicted,
		&alerts, &recs,
		&lastCalculated, &score.Metadata.DataPoints, &score.Metadata.ModelVersion, &score.Metadata.Confidence,
		&score.Version, &score.CreatedAt, &score.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(predicted) > 0 {
		if err := json.Unmarshal(predicted, &score.PredictedValue); err != nil {
			return nil, fmt.Errorf("decoding predicted_value: %w", err)
		}
	}
	score.Alerts = alerts
	score.Recommendations = recs
	if lastCalculated.Valid {
		score.Metadata.LastCalculated = lastCalculated.Time
	}
	return score, nil
}

// GetScore retrieves the score for a (user, contact) pair. Returns
// (nil, nil) when no record exists.
func (s *Store) GetScore(ctx context.Context, userID, contactID uuid.UUID) (*ContactScore, error) {
	query := `SELECT ` + scoreColumns + ` FROM contact_scores
		WHERE user_id = $1 AND contact_id = $2`

	score, err := scanScore(s.db.QueryRowContext(ctx, query, userID, contactID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return score, err
}

// SaveScore persists a recomputed score. A record with Version 0 is
// inserted; otherwise the write is a compare-and-swap against the version
// the caller read, and ErrVersionConflict signals a concurrent update.
func (s *Store) SaveScore(ctx context.Context, score *ContactScore) error {
	predicted, err := json.Marshal(score.PredictedValue)
	if err != nil {
		return fmt.Errorf("encoding predicted_value: %w", err)
	}

	if score.Version == 0 {
		score.ID = uuid.New()
		score.CreatedAt = time.Now()
		if score.UpdatedAt.IsZero() {
			score.UpdatedAt = score.CreatedAt
		}
		score.Version = 1

		query := `INSERT INTO contact_scores (id, user_id, contact_id, overall_score,
			engagement_score, intent_score, behavioral_score, demographic_score, firmographic_score,
			scoring_factors, lead_grade, lead_status, conversion_probability, predicted_value,
			alerts, recommendations, last_calculated, data_points, model_version, confidence,
			version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23)`

		_, err = s.db.ExecContext(ctx, query, score.ID, score.UserID, score.ContactID,
			score.OverallScore, score.Breakdown.Engagement, score.Breakdown.Intent,
			score.Breakdown.Behavioral, score.Breakdown.Demographic, score.Breakdown.Firmographic,
			score.Factors, score.LeadGrade, score.LeadStatus, score.ConversionProbability,
			predicted, alertLog(score.Alerts), recommendationList(score.Recommendations),
			score.Metadata.LastCalculated, score.Metadata.DataPoints, score.Metadata.ModelVersion,
			score.Metadata.Confidence, score.Version, score.CreatedAt, score.UpdatedAt)
		return err
	}

	expected := score.Version
	query := `UPDATE contact_scores SET overall_score = $1,
		engagement_score = $2, intent_score = $3, behavioral_score = $4,
		demographic_score = $5, firmographic_score = $6,
		scoring_factors = $7, lead_grade = $8, lead_status = $9,
		conversion_probability = $10, predicted_value = $11,
		alerts = $12, recommendations = $13,
		last_calculated = $14, data_points = $15, model_version = $16, confidence = $17,
		version = version + 1, updated_at = $18
		WHERE id = $19 AND version = $20`

	res, err := s.db.ExecContext(ctx, query, score.OverallScore,
		score.Breakdown.Engagement, score.Breakdown.Intent, score.Breakdown.Behavioral,
		score.Breakdown.Demographic, score.Breakdown.Firmographic,
		score.Factors, score.LeadGrade, score.LeadStatus,
		score.ConversionProbability, predicted,
		alertLog(score.Alerts), recommendationList(score.Recommendations),
		score.Metadata.LastCalculated, score.Metadata.DataPoints, score.Metadata.ModelVersion,
		score.Metadata.Confidence, score.UpdatedAt, score.ID, expected)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	score.Version = expected + 1
	return nil
}

// HotLeads returns scores at or above minScore for the user, descending by
// score then recency.
func (s *Store) HotLeads(ctx context.Context, userID uuid.UUID, minScore, limit int) ([]*ContactScore, error) {
	query := `SELECT ` + scoreColumns + ` FROM contact_scores
		WHERE user_id = $1 AND overall_score >= $2
		ORDER BY overall_score DESC, last_calculated DESC
		LIMIT $3`

	return s.queryScores(ctx, query, userID, minScore, limit)
}

// SalesReady returns leads satisfying all four sales-readiness conditions:
// score, status, intent, and recompute freshness.
func (s *Store) SalesReady(ctx context.Context, userID uuid.UUID, limit int) ([]*ContactScore, error) {
	query := `SELECT ` + scoreColumns + ` FROM contact_scores
		WHERE user_id = $1
		  AND overall_score >= $2
		  AND lead_status IN ('hot', 'qualified')
		  AND intent_score >= $3
		  AND last_calculated >= $4
		ORDER BY overall_score DESC, last_calculated DESC
		LIMIT $5`

	cutoff := time.Now().Add(-salesReadyMaxAge)
	return s.queryScores(ctx, query, userID, salesReadyMinScore, salesReadyMinIntent, cutoff, limit)
}

// StaleScores returns scores whose last recompute is older than the cutoff,
// oldest first. Used by the background rescorer.
func (s *Store) StaleScores(ctx context.Context, olderThan time.Time, limit int) ([]*ContactScore, error) {
	query := `SELECT ` + scoreColumns + ` FROM contact_scores
		WHERE last_calculated < $1
		ORDER BY last_calculated ASC
		LIMIT $2`

	return s.queryScores(ctx, query, olderThan, limit)
}

func (s *Store) queryScores(ctx context.Context, query string, args ...interface{}) ([]*ContactScore, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []*ContactScore
	for rows.Next() {
		score, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	return scores, rows.Err()
}

// DeleteForContact removes the score record for a contact. Retention policy
// is an operator decision; nothing in the engine calls this automatically.
func (s *Store) DeleteForContact(ctx context.Context, userID, contactID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM contact_scores WHERE user_id = $1 AND contact_id = $2`,
		userID, contactID)
	return err
}

// GetContact retrieves a contact owned by the user. Returns (nil, nil) when
// the contact does not exist or belongs to another user; callers surface
// that as not-found.
func (s *Store) GetContact(ctx context.Context, userID, contactID uuid.UUID) (*Contact, error) {
	query := `SELECT id, user_id, email, COALESCE(name, ''), COALESCE(company, ''), COALESCE(position, '')
		FROM contacts WHERE id = $1 AND user_id = $2`

	c := &Contact{}
	err := s.db.QueryRowContext(ctx, query, contactID, userID).Scan(
		&c.ID, &c.UserID, &c.Email, &c.Name, &c.Company, &c.Position)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}
