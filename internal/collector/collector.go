// Package collector reads raw engagement signals for a contact from the
// email store. It is read-only: scoring math lives in internal/scoring.
package collector

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignite/leadscore/internal/scoring"
)

// Snapshot is the raw signal state for one contact at collection time.
// PreviousScore is 0 when no score record exists yet.
type Snapshot struct {
	Factors       scoring.Factors
	PreviousScore int
	EmailCount    int
}

// Collector aggregates tracking counters from contact_emails plus the
// optional web/content/social counters stored on the contact row.
type Collector struct {
	db *sql.DB
}

// New creates a collector over the email store.
func New(db *sql.DB) *Collector {
	return &Collector{db: db}
}

// Collect returns the signal snapshot for a contact. A contact with no
// email records yields all-zero counts, not an error. Meeting requests are
// an explicit per-message flag set by the calling system (e.g. a calendar
// intent classifier), not inferred here.
func (c *Collector) Collect(ctx context.Context, userID, contactID uuid.UUID) (*Snapshot, error) {
	factors := scoring.NewFactors()

	var emails int
	var opens, clicks sql.NullFloat64
	var replies, meetings sql.NullInt64
	err := c.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total_opens), 0),
		       COALESCE(SUM(total_clicks), 0),
		       COUNT(*) FILTER (WHERE replied),
		       COUNT(*) FILTER (WHERE meeting_request)
		FROM contact_emails
		WHERE user_id = $1 AND contact_id = $2`,
		userID, contactID,
	).Scan(&emails, &opens, &clicks, &replies, &meetings)
	if err != nil {
		return nil, fmt.Errorf("collecting email signals: %w", err)
	}

	factors.SetCount(scoring.SignalEmailOpens, opens.Float64)
	factors.SetCount(scoring.SignalEmailClicks, clicks.Float64)
	factors.SetCount(scoring.SignalReplyCount, float64(replies.Int64))
	factors.SetCount(scoring.SignalMeetingRequests, float64(meetings.Int64))

	// Web/content/social counters live on the contact row; they are fed by
	// site tracking outside this service and default to zero.
	var visits, downloads, social sql.NullFloat64
	err = c.db.QueryRowContext(ctx, `
		SELECT website_visits, content_downloads, social_engagement
		FROM contacts WHERE id = $1 AND user_id = $2`,
		contactID, userID,
	).Scan(&visits, &downloads, &social)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("collecting contact signals: %w", err)
	}
	factors.SetCount(scoring.SignalWebsiteVisits, visits.Float64)
	factors.SetCount(scoring.SignalContentDownloads, downloads.Float64)
	factors.SetCount(scoring.SignalSocialEngagement, social.Float64)

	previous := 0
	err = c.db.QueryRowContext(ctx, `
		SELECT overall_score FROM contact_scores
		WHERE user_id = $1 AND contact_id = $2`,
		userID, contactID,
	).Scan(&previous)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("reading previous score: %w", err)
	}

	return &Snapshot{
		Factors:       factors,
		PreviousScore: previous,
		EmailCount:    emails,
	}, nil
}
