// Package analytics computes read-side rollups over persisted contact
// scores. Queries run directly against Postgres and can overlap concurrent
// recomputes; no snapshot isolation is promised or needed for dashboards.
package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/leadscore/internal/pkg/logger"
)

// HighProbabilityThreshold marks a score as high conversion probability.
const HighProbabilityThreshold = 0.7

// bucketCount is the number of fixed distribution buckets (0-9 ... 90-100).
const bucketCount = 10

// ScoreBucket is one band of the score distribution. The top bucket is
// 90-100 inclusive.
type ScoreBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// GroupStats is the per-grade or per-status rollup.
type GroupStats struct {
	Count        int     `json:"count"`
	AverageScore float64 `json:"average_score"`
}

// ProbabilityInsights summarizes conversion probabilities for a user.
type ProbabilityInsights struct {
	AverageProbability   float64 `json:"average_probability"`
	HighProbabilityLeads int     `json:"high_probability_leads"`
	TotalScoredContacts  int     `json:"total_scored_contacts"`
}

// Overview is the full analytics payload for a user.
type Overview struct {
	ScoreDistribution  []ScoreBucket         `json:"score_distribution"`
	GradeDistribution  map[string]GroupStats `json:"grade_distribution"`
	StatusDistribution map[string]GroupStats `json:"status_distribution"`
	Probability        ProbabilityInsights   `json:"probability_insights"`
	GeneratedAt        time.Time             `json:"generated_at"`
}

// Aggregator runs the analytics queries, with an optional Redis cache in
// front. A nil redis client disables caching entirely.
type Aggregator struct {
	db       *sql.DB
	redis    *redis.Client
	cacheTTL time.Duration
}

// NewAggregator creates an aggregator. redisClient may be nil.
func NewAggregator(db *sql.DB, redisClient *redis.Client, cacheTTL time.Duration) *Aggregator {
	if cacheTTL <= 0 {
		cacheTTL = 60 * time.Second
	}
	return &Aggregator{db: db, redis: redisClient, cacheTTL: cacheTTL}
}

func cacheKey(userID uuid.UUID) string {
	return "leadscore:analytics:" + userID.String()
}

// GetOverview returns the analytics rollup for a user, serving from cache
// when a fresh copy exists.
func (a *Aggregator) GetOverview(ctx context.Context, userID uuid.UUID) (*Overview, error) {
	if a.redis != nil {
		cached, err := a.redis.Get(ctx, cacheKey(userID)).Bytes()
		if err == nil {
			var overview Overview
			if err := json.Unmarshal(cached, &overview); err == nil {
				return &overview, nil
			}
		} else if err != redis.Nil {
			logger.Warn("analytics cache read failed", "error", err.Error())
		}
	}

	overview, err := a.computeOverview(ctx, userID)
	if err != nil {
		return nil, err
	}

	if a.redis != nil {
		if data, err := json.Marshal(overview); err == nil {
			if err := a.redis.Set(ctx, cacheKey(userID), data, a.cacheTTL).Err(); err != nil {
				logger.Warn("analytics cache write failed", "error", err.Error())
			}
		}
	}
	return overview, nil
}

// Invalidate drops the cached overview for a user, typically after a
// recompute so dashboards converge quickly.
func (a *Aggregator) Invalidate(ctx context.Context, userID uuid.UUID) {
	if a.redis == nil {
		return
	}
	if err := a.redis.Del(ctx, cacheKey(userID)).Err(); err != nil && err != redis.Nil {
		logger.Warn("analytics cache invalidation failed", "error", err.Error())
	}
}

func (a *Aggregator) computeOverview(ctx context.Context, userID uuid.UUID) (*Overview, error) {
	overview := &Overview{
		ScoreDistribution:  emptyBuckets(),
		GradeDistribution:  make(map[string]GroupStats),
		StatusDistribution: make(map[string]GroupStats),
		GeneratedAt:        time.Now().UTC(),
	}

	// Bucket index: scores 0-89 fall in floor(score/10); 90-100 share the
	// top bucket.
	rows, err := a.db.QueryContext(ctx, `
		SELECT LEAST(overall_score / 10, 9) AS bucket, COUNT(*)
		FROM contact_scores WHERE user_id = $1
		GROUP BY bucket`, userID)
	if err != nil {
		return nil, fmt.Errorf("score distribution query: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var bucket, count int
		if err := rows.Scan(&bucket, &count); err != nil {
			return nil, err
		}
		if bucket >= 0 && bucket < bucketCount {
			overview.ScoreDistribution[bucket].Count = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := a.groupStats(ctx, userID, "lead_grade", overview.GradeDistribution); err != nil {
		return nil, fmt.Errorf("grade distribution query: %w", err)
	}
	if err := a.groupStats(ctx, userID, "lead_status", overview.StatusDistribution); err != nil {
		return nil, fmt.Errorf("status distribution query: %w", err)
	}

	err = a.db.QueryRowContext(ctx, `
		SELECT COALESCE(AVG(conversion_probability), 0),
		       COUNT(*) FILTER (WHERE conversion_probability >= $2),
		       COUNT(*)
		FROM contact_scores WHERE user_id = $1`,
		userID, HighProbabilityThreshold,
	).Scan(&overview.Probability.AverageProbability,
		&overview.Probability.HighProbabilityLeads,
		&overview.Probability.TotalScoredContacts)
	if err != nil {
		return nil, fmt.Errorf("probability insights query: %w", err)
	}

	return overview, nil
}

func (a *Aggregator) groupStats(ctx context.Context, userID uuid.UUID, column string, dest map[string]GroupStats) error {
	// column is one of two fixed identifiers, never user input.
	query := fmt.Sprintf(`SELECT %s, COUNT(*), COALESCE(AVG(overall_score), 0)
		FROM contact_scores WHERE user_id = $1 GROUP BY %s`, column, column)

	rows, err := a.db.QueryContext(ctx, query, userID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var stats GroupStats
		if err := rows.Scan(&key, &stats.Count, &stats.AverageScore); err != nil {
			return err
		}
		dest[key] = stats
	}
	return rows.Err()
}

// ScoredUsers lists the users with at least one persisted score, for
// snapshot export jobs.
func (a *Aggregator) ScoredUsers(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM contact_scores`)
	if err != nil {
		return nil, fmt.Errorf("scored users query: %w", err)
	}
	defer rows.Close()

	var users []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

func emptyBuckets() []ScoreBucket {
	buckets := make([]ScoreBucket, bucketCount)
	for i := 0; i < bucketCount; i++ {
		if i == bucketCount-1 {
			buckets[i].Range = "90-100"
		} else {
			buckets[i].Range = fmt.Sprintf("%d-%d", i*10, i*10+9)
		}
	}
	return buckets
}
