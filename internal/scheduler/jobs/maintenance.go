package jobs

import (
	"context"
	"time"

	"github.com/LLeom997/AlphBasket-sub000/internal/data"
	"github.com/LLeom997/AlphBasket-sub000/pkg/logger"
)

// SeriesCachePurgeJob drops expired price series from the in-process cache
type SeriesCachePurgeJob struct {
	cache  *data.SeriesCache
	logger *logger.Logger
}

// NewSeriesCachePurgeJob creates a new cache purge job
func NewSeriesCachePurgeJob(cache *data.SeriesCache, log *logger.Logger) *SeriesCachePurgeJob {
	return &SeriesCachePurgeJob{cache: cache, logger: log}
}

// Name returns the job name
func (j *SeriesCachePurgeJob) Name() string {
	return "series_cache_purge"
}

// Schedule returns the cron schedule (every 30 minutes)
func (j *SeriesCachePurgeJob) Schedule() string {
	return "0 */30 * * * *"
}

// Run executes the purge
func (j *SeriesCachePurgeJob) Run(ctx context.Context) error {
	if count := j.cache.Purge(); count > 0 {
		j.logger.WithField("removed", count).Info("Series cache purge completed")
	}
	return nil
}

// SnapshotPruner is implemented by *data.BasketRepository
type SnapshotPruner interface {
	PruneSnapshots(ctx context.Context, olderThan time.Time) (int64, error)
}

// SnapshotPruneJob deletes old snapshots; the newest per basket always survives
type SnapshotPruneJob struct {
	pruner    SnapshotPruner
	retention time.Duration
	now       func() time.Time
	logger    *logger.Logger
}

// NewSnapshotPruneJob creates a new prune job keeping retention worth of history
func NewSnapshotPruneJob(pruner SnapshotPruner, retention time.Duration, log *logger.Logger) *SnapshotPruneJob {
	return &SnapshotPruneJob{
		pruner:    pruner,
		retention: retention,
		now:       time.Now,
		logger:    log,
	}
}

// Name returns the job name
func (j *SnapshotPruneJob) Name() string {
	return "snapshot_prune"
}

// Schedule returns the cron schedule (Sundays at 03:00)
func (j *SnapshotPruneJob) Schedule() string {
	return "0 0 3 * * 0"
}

// Run executes the prune
func (j *SnapshotPruneJob) Run(ctx context.Context) error {
	removed, err := j.pruner.PruneSnapshots(ctx, j.now().Add(-j.retention))
	if err != nil {
		return err
	}

	j.logger.WithField("removed", removed).Info("Snapshot prune completed")
	return nil
}
