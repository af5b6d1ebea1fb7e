package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LLeom997/AlphBasket-sub000/internal/backtest"
	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
	"github.com/LLeom997/AlphBasket-sub000/internal/data"
	"github.com/LLeom997/AlphBasket-sub000/internal/forecast"
	"github.com/LLeom997/AlphBasket-sub000/internal/portfolio"
	"github.com/LLeom997/AlphBasket-sub000/internal/risk"
	"github.com/LLeom997/AlphBasket-sub000/pkg/logger"
	"github.com/LLeom997/AlphBasket-sub000/pkg/redis"
)

var today = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

type mapProvider map[string]*contracts.AssetSeries

func (m mapProvider) Series(_ context.Context, ticker string) (*contracts.AssetSeries, error) {
	s, ok := m[ticker]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrSeriesNotFound)
	}
	return s, nil
}

type fakeStore struct {
	mu        sync.Mutex
	baskets   []contracts.Basket
	listErr   error
	metrics   map[string]contracts.Metrics
	snapshots []*contracts.SimulationResult
}

func (s *fakeStore) List(context.Context) ([]contracts.Basket, error) {
	return s.baskets, s.listErr
}

func (s *fakeStore) LatestSnapshots(context.Context) (map[string]*contracts.SimulationResult, error) {
	return nil, errors.New("no snapshots table")
}

func (s *fakeStore) SaveMetrics(_ context.Context, id string, m contracts.Metrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.metrics == nil {
		s.metrics = make(map[string]contracts.Metrics)
	}
	s.metrics[id] = m
	return nil
}

func (s *fakeStore) SaveSnapshot(_ context.Context, r *contracts.SimulationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, r)
	return nil
}

func series(ticker string, n int) *contracts.AssetSeries {
	s := &contracts.AssetSeries{Ticker: ticker}
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, 1)
		}
		c := 100 + float64(i)
		s.Prices = append(s.Prices, contracts.PricePoint{Date: d, Open: c, High: c, Low: c, Close: c})
		d = d.AddDate(0, 0, 1)
	}
	return s
}

func basket(id, ticker string) contracts.Basket {
	return contracts.Basket{
		ID:             id,
		Name:           id,
		Mode:           contracts.AllocationWeight,
		InitialCapital: 10000,
		Rebalance:      contracts.RebalanceNone,
		Items:          []contracts.BasketItem{{Ticker: ticker, Weight: 100}},
	}
}

func newJob(store BasketStore) *SimulateAllJob {
	log := logger.Nop()
	cfg := forecast.DefaultConfig()
	cfg.Simulations = 50
	cfg.Horizon = 5
	cfg.Workers = 1

	engine := backtest.NewEngine(
		portfolio.NewAllocator(log),
		risk.NewCalculator(risk.DefaultRiskFreeRate),
		forecast.NewEngine(cfg, forecast.SeededSources(3), log),
		log,
	).WithClock(func() time.Time { return today })

	provider := mapProvider{"A": series("A", 60)}
	cache := redis.NewCache(redis.Disabled(), "test")
	return NewSimulateAllJob(engine, provider, store, cache, "0 0 19 * * 1-5", 2, log)
}

func TestSimulateAllJob(t *testing.T) {
	store := &fakeStore{baskets: []contracts.Basket{basket("ok", "A"), basket("broken", "ZZZ")}}
	job := newJob(store)

	assert.Equal(t, "simulate_all", job.Name())
	assert.Equal(t, "0 0 19 * * 1-5", job.Schedule())

	require.NoError(t, job.Run(context.Background()))

	require.Len(t, store.snapshots, 1)
	assert.Equal(t, "ok", store.snapshots[0].BasketID)
	assert.Contains(t, store.metrics, "ok")
	assert.NotContains(t, store.metrics, "broken")
	assert.Greater(t, store.metrics["ok"].TotalReturn, 0.0)
}

func TestSimulateAllJob_Failures(t *testing.T) {
	allBroken := &fakeStore{baskets: []contracts.Basket{basket("broken", "ZZZ")}}
	assert.ErrorContains(t, newJob(allBroken).Run(context.Background()), "all 1 baskets failed")

	listFails := &fakeStore{listErr: errors.New("db down")}
	assert.ErrorContains(t, newJob(listFails).Run(context.Background()), "db down")

	empty := &fakeStore{}
	assert.NoError(t, newJob(empty).Run(context.Background()))
}

type fakePruner struct {
	cutoff time.Time
}

func (p *fakePruner) PruneSnapshots(_ context.Context, olderThan time.Time) (int64, error) {
	p.cutoff = olderThan
	return 3, nil
}

func TestSnapshotPruneJob(t *testing.T) {
	pruner := &fakePruner{}
	job := NewSnapshotPruneJob(pruner, 30*24*time.Hour, logger.Nop())
	job.now = func() time.Time { return today }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, today.AddDate(0, 0, -30), pruner.cutoff)
	assert.Equal(t, "snapshot_prune", job.Name())
}

func TestSeriesCachePurgeJob(t *testing.T) {
	cache := data.NewSeriesCache(time.Nanosecond)
	cache.Put(series("A", 2))
	time.Sleep(time.Millisecond)

	job := NewSeriesCachePurgeJob(cache, logger.Nop())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 0, cache.Len())
}
