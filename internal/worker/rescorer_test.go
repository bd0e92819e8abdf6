package worker

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ignite/leadscore/internal/collector"
	"github.com/ignite/leadscore/internal/scoring"
	"github.com/ignite/leadscore/internal/service"
)

var staleScoreColumns = []string{
	"id", "user_id", "contact_id", "overall_score",
	"engagement_score", "intent_score", "behavioral_score", "demographic_score", "firmographic_score",
	"scoring_factors", "lead_grade", "lead_status", "conversion_probability", "predicted_value",
	"alerts", "recommendations", "last_calculated", "data_points", "model_version", "confidence",
	"version", "created_at", "updated_at",
}

func staleScoreRow(userID, contactID uuid.UUID) []driver.Value {
	old := time.Now().UTC().Add(-48 * time.Hour)
	return []driver.Value{
		uuid.New().String(), userID.String(), contactID.String(), 40,
		40.0, 40.0, 40.0, 50.0, 50.0,
		[]byte(`{}`), scoring.GradeC, scoring.StatusQualified, 0.4, []byte(`null`),
		[]byte(`[]`), []byte(`[]`), old, 2, scoring.ModelVersion, 0.5,
		int64(3), old, old,
	}
}

func newTestRescorer(t *testing.T, retain bool) (*Rescorer, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := scoring.NewStore(db)
	scores := service.NewScores(store, collector.New(db), scoring.NewEngine(), nil)
	return NewRescorer(scores, store, db, nil, time.Minute, 24*time.Hour, 10, retain), mock
}

func TestSweepSkipsWhenLockHeldElsewhere(t *testing.T) {
	r, mock := newTestRescorer(t, true)

	// Only the advisory lock attempt; nothing else may run.
	mock.ExpectQuery("SELECT pg_try_advisory_lock").
		WillReturnRows(sqlmock.NewRows([]string{"acquired"}).AddRow(false))

	r.sweep(context.Background())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepDeletesOrphanedScores(t *testing.T) {
	r, mock := newTestRescorer(t, false)
	userID, contactID := uuid.New(), uuid.New()

	mock.ExpectQuery("SELECT pg_try_advisory_lock").
		WillReturnRows(sqlmock.NewRows([]string{"acquired"}).AddRow(true))
	mock.ExpectQuery("SELECT id, user_id, contact_id, overall_score").
		WillReturnRows(sqlmock.NewRows(staleScoreColumns).
			AddRow(staleScoreRow(userID, contactID)...))

	// The contact behind the stale score is gone; with retention off the
	// orphaned score is removed.
	mock.ExpectQuery("SELECT id, user_id, email").
		WithArgs(contactID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "email", "name", "company", "position"}))
	mock.ExpectExec("DELETE FROM contact_scores").
		WithArgs(userID, contactID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec("SELECT pg_advisory_unlock").
		WillReturnResult(sqlmock.NewResult(0, 0))

	r.sweep(context.Background())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepRetainsOrphanedScores(t *testing.T) {
	r, mock := newTestRescorer(t, true)
	userID, contactID := uuid.New(), uuid.New()

	mock.ExpectQuery("SELECT pg_try_advisory_lock").
		WillReturnRows(sqlmock.NewRows([]string{"acquired"}).AddRow(true))
	mock.ExpectQuery("SELECT id, user_id, contact_id, overall_score").
		WillReturnRows(sqlmock.NewRows(staleScoreColumns).
			AddRow(staleScoreRow(userID, contactID)...))
	mock.ExpectQuery("SELECT id, user_id, email").
		WithArgs(contactID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "email", "name", "company", "position"}))

	// No DELETE with retention on.
	mock.ExpectExec("SELECT pg_advisory_unlock").
		WillReturnResult(sqlmock.NewResult(0, 0))

	r.sweep(context.Background())
	require.NoError(t, mock.ExpectationsWereMet())
}
