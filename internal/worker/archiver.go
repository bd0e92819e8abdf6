package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ignite/leadscore/internal/analytics"
	"github.com/ignite/leadscore/internal/archive"
	"github.com/ignite/leadscore/internal/pkg/logger"
)

const archiveInterval = 24 * time.Hour

// SnapshotArchiver exports each scored user's analytics overview to S3 once
// a day. Overviews may be served from the short-lived dashboard cache; a
// snapshot at most one TTL old is acceptable for daily exports.
type SnapshotArchiver struct {
	aggregator *analytics.Aggregator
	archiver   *archive.S3Archiver

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewSnapshotArchiver creates the daily export loop.
func NewSnapshotArchiver(aggregator *analytics.Aggregator, archiver *archive.S3Archiver) *SnapshotArchiver {
	return &SnapshotArchiver{aggregator: aggregator, archiver: archiver}
}

// Start begins the daily export loop, running one export immediately.
func (s *SnapshotArchiver) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true

	var ctx context.Context
	ctx, s.cancel = context.WithCancel(context.Background())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.export(ctx)

		ticker := time.NewTicker(archiveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.export(ctx)
			}
		}
	}()
}

// Stop halts the loop.
func (s *SnapshotArchiver) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func (s *SnapshotArchiver) export(ctx context.Context) {
	users, err := s.aggregator.ScoredUsers(ctx)
	if err != nil {
		logger.Error("snapshot export failed listing users", "error", err.Error())
		return
	}

	exported := 0
	for _, userID := range users {
		if ctx.Err() != nil {
			return
		}
		overview, err := s.aggregator.GetOverview(ctx, userID)
		if err != nil {
			logger.Warn("snapshot export skipped user", "user_id", userID.String(), "error", err.Error())
			continue
		}
		if err := s.archiver.ArchiveOverview(ctx, userID, overview); err != nil {
			logger.Warn("snapshot upload failed", "user_id", userID.String(), "error", err.Error())
			continue
		}
		exported++
	}

	logger.Info("analytics snapshots exported", "users", exported)
}
