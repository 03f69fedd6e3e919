package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	syncengine "github.com/onohta/tradebook/internal/sync"
)

// syncTimeout bounds one background sync cycle.
const syncTimeout = 2 * time.Minute

// SyncJob runs a periodic sync cycle. A cycle already in flight or a
// missing account are quiet no-ops; real push/pull failures are logged
// and retried on the next tick.
type SyncJob struct {
	engine *syncengine.Engine
	log    zerolog.Logger
}

// NewSyncJob creates a periodic sync job.
func NewSyncJob(engine *syncengine.Engine, log zerolog.Logger) *SyncJob {
	return &SyncJob{
		engine: engine,
		log:    log.With().Str("job", "sync").Logger(),
	}
}

// Name returns the job name.
func (j *SyncJob) Name() string { return "sync" }

// Run executes one sync cycle.
func (j *SyncJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	err := j.engine.Sync(ctx)
	if errors.Is(err, syncengine.ErrNotAuthenticated) {
		j.log.Debug().Msg("Sync skipped, no account configured")
		return nil
	}
	return err
}
