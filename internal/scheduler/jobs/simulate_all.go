package jobs

import (
	"context"
	"fmt"

	"github.com/LLeom997/AlphBasket-sub000/internal/backtest"
	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
	"github.com/LLeom997/AlphBasket-sub000/pkg/logger"
	"github.com/LLeom997/AlphBasket-sub000/pkg/redis"
)

// statusKey is the cache key of the latest batch summary
const statusKey = "batch:status"

// BasketStore is the persistence the nightly run reads from and writes to.
// *data.BasketRepository satisfies it.
type BasketStore interface {
	List(ctx context.Context) ([]contracts.Basket, error)
	LatestSnapshots(ctx context.Context) (map[string]*contracts.SimulationResult, error)
	SaveMetrics(ctx context.Context, basketID string, m contracts.Metrics) error
	SaveSnapshot(ctx context.Context, result *contracts.SimulationResult) error
}

// SimulateAllJob re-simulates every stored basket and persists the results.
// Failed baskets keep their prior snapshot; nothing is written for them.
type SimulateAllJob struct {
	engine   *backtest.Engine
	provider contracts.SeriesProvider
	store    BasketStore
	cache    *redis.Cache
	schedule string
	workers  int
	logger   *logger.Logger
}

// NewSimulateAllJob creates a new simulate-all job. cache may be nil.
func NewSimulateAllJob(
	engine *backtest.Engine,
	provider contracts.SeriesProvider,
	store BasketStore,
	cache *redis.Cache,
	schedule string,
	workers int,
	log *logger.Logger,
) *SimulateAllJob {
	return &SimulateAllJob{
		engine:   engine,
		provider: provider,
		store:    store,
		cache:    cache,
		schedule: schedule,
		workers:  workers,
		logger:   log,
	}
}

// Name returns the job name
func (j *SimulateAllJob) Name() string {
	return "simulate_all"
}

// Schedule returns the configured cron expression
func (j *SimulateAllJob) Schedule() string {
	return j.schedule
}

// Run executes one batch pass.
// It fails only when baskets cannot be listed or every basket failed.
func (j *SimulateAllJob) Run(ctx context.Context) error {
	baskets, err := j.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list baskets: %w", err)
	}
	if len(baskets) == 0 {
		j.logger.Info("No baskets to simulate")
		return nil
	}

	prior, err := j.store.LatestSnapshots(ctx)
	if err != nil {
		j.logger.WithError(err).Warn("Failed to load prior snapshots, running without fallback")
		prior = nil
	}

	outcomes := j.engine.SimulateAll(ctx, baskets, j.provider, prior, j.workers, backtest.Options{})

	persisted := 0
	for _, out := range outcomes {
		if out.Err != nil || out.Result == nil {
			continue
		}
		if err := j.persist(ctx, out.Result); err != nil {
			j.logger.WithError(err).WithField("basket_id", out.BasketID).Error("Failed to persist result")
			continue
		}
		persisted++
	}

	summary := backtest.Summarize(outcomes)
	if j.cache != nil {
		if err := j.cache.Set(ctx, statusKey, summary, redis.TTLShort); err != nil {
			j.logger.WithError(err).Warn("Failed to cache batch status")
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"total":     summary.Total,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"fell_back": summary.FellBack,
		"persisted": persisted,
	}).Info("Simulate-all completed")

	if summary.Succeeded == 0 {
		return fmt.Errorf("all %d baskets failed", summary.Total)
	}
	return nil
}

func (j *SimulateAllJob) persist(ctx context.Context, result *contracts.SimulationResult) error {
	if err := j.store.SaveMetrics(ctx, result.BasketID, result.Metrics); err != nil {
		return err
	}
	if err := j.store.SaveSnapshot(ctx, result); err != nil {
		return err
	}
	if j.cache != nil {
		if err := j.cache.Set(ctx, redis.SnapshotKey(result.BasketID), result, redis.TTLDaily); err != nil {
			j.logger.WithError(err).WithField("basket_id", result.BasketID).Warn("Failed to cache snapshot")
		}
	}
	return nil
}
