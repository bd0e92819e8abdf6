// Package worker hosts the background re-scoring sweep. Scores drift stale
// when nobody opens a contact; the rescorer keeps sales-readiness and
// analytics fresh without waiting for a manual recompute.
package worker

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/leadscore/internal/pkg/distlock"
	"github.com/ignite/leadscore/internal/pkg/logger"
	"github.com/ignite/leadscore/internal/scoring"
	"github.com/ignite/leadscore/internal/service"
)

const lockTTL = 2 * time.Minute

// Rescorer periodically re-runs the scoring pipeline for stale scores.
// A distributed lock keeps the sweep single-flight across instances.
type Rescorer struct {
	scores    *service.Scores
	store     *scoring.Store
	db        *sql.DB
	redis     *redis.Client
	interval  time.Duration
	staleness time.Duration
	batchSize int
	retain    bool

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	rescored int64
	failed   int64
}

// NewRescorer creates a rescorer. redisClient may be nil; the lock then
// falls back to a PG advisory lock. retainOrphans controls whether score
// records outlive their deleted contact.
func NewRescorer(scores *service.Scores, store *scoring.Store, db *sql.DB, redisClient *redis.Client,
	interval, staleness time.Duration, batchSize int, retainOrphans bool) *Rescorer {
	return &Rescorer{
		scores:    scores,
		store:     store,
		db:        db,
		redis:     redisClient,
		interval:  interval,
		staleness: staleness,
		batchSize: batchSize,
		retain:    retainOrphans,
	}
}

// Start begins the sweep loop.
func (r *Rescorer) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return fmt.Errorf("rescorer already running")
	}
	r.running = true

	var ctx context.Context
	ctx, r.cancel = context.WithCancel(context.Background())

	logger.Info("rescorer starting",
		"interval", r.interval.String(),
		"staleness", r.staleness.String(),
		"batch_size", r.batchSize)

	r.wg.Add(1)
	go r.loop(ctx)
	return nil
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (r *Rescorer) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
	logger.Info("rescorer stopped",
		"rescored", atomic.LoadInt64(&r.rescored),
		"failed", atomic.LoadInt64(&r.failed))
}

func (r *Rescorer) loop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

// sweep recomputes one batch of stale scores under the distributed lock.
func (r *Rescorer) sweep(ctx context.Context) {
	lock := distlock.New(r.redis, r.db, "leadscore:rescorer", lockTTL)
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		logger.Warn("rescorer lock error", "error", err.Error())
		return
	}
	if !acquired {
		return
	}
	defer lock.Release(ctx)

	cutoff := time.Now().Add(-r.staleness)
	stale, err := r.store.StaleScores(ctx, cutoff, r.batchSize)
	if err != nil {
		logger.Error("stale score query failed", "error", err.Error())
		return
	}

	for _, score := range stale {
		if ctx.Err() != nil {
			return
		}
		_, err := r.scores.Calculate(ctx, score.UserID, score.ContactID)
		if err == service.ErrContactNotFound {
			// Contact deleted after scoring. Retention policy decides
			// whether the orphaned score survives.
			if !r.retain {
				if err := r.store.DeleteForContact(ctx, score.UserID, score.ContactID); err != nil {
					logger.Warn("orphaned score cleanup failed",
						"contact_id", score.ContactID.String(), "error", err.Error())
				}
			}
			continue
		}
		if err != nil {
			atomic.AddInt64(&r.failed, 1)
			logger.Warn("background rescore failed",
				"contact_id", score.ContactID.String(), "error", err.Error())
			continue
		}
		atomic.AddInt64(&r.rescored, 1)
	}

	if len(stale) > 0 {
		logger.Info("rescore sweep finished", "batch", len(stale))
	}
}
