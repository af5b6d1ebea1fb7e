package data

import (
	"context"
	"time"

	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
	"github.com/LLeom997/AlphBasket-sub000/pkg/logger"
	"github.com/LLeom997/AlphBasket-sub000/pkg/redis"
)

// CachedProvider layers the in-process cache and Redis in front of a source provider.
// Lookups go memory → Redis → source; a source hit populates both tiers.
type CachedProvider struct {
	source contracts.SeriesProvider
	memory *SeriesCache
	shared *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedProvider wraps source. shared may be backed by a disabled Redis client.
func NewCachedProvider(
	source contracts.SeriesProvider,
	memory *SeriesCache,
	shared *redis.Cache,
	ttl time.Duration,
	log *logger.Logger,
) *CachedProvider {
	return &CachedProvider{
		source: source,
		memory: memory,
		shared: shared,
		ttl:    ttl,
		logger: log,
	}
}

// Series implements contracts.SeriesProvider
func (p *CachedProvider) Series(ctx context.Context, ticker string) (*contracts.AssetSeries, error) {
	if s, ok := p.memory.Get(ticker); ok {
		return s, nil
	}

	if p.shared != nil {
		var s contracts.AssetSeries
		found, err := p.shared.Get(ctx, redis.SeriesKey(ticker), &s)
		if err != nil {
			p.logger.WithField("ticker", ticker).WithError(err).Warn("Shared series cache read failed")
		}
		if found && s.Len() > 0 {
			p.memory.Put(&s)
			return &s, nil
		}
	}

	s, err := p.source.Series(ctx, ticker)
	if err != nil {
		return nil, err
	}

	p.memory.Put(s)
	if p.shared != nil {
		if err := p.shared.Set(ctx, redis.SeriesKey(ticker), s, p.ttl); err != nil {
			p.logger.WithField("ticker", ticker).WithError(err).Warn("Shared series cache write failed")
		}
	}

	p.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"bars":   s.Len(),
	}).Debug("Loaded price series from source")

	return s, nil
}

// Invalidate evicts a ticker from both tiers, e.g. after new bars are imported
func (p *CachedProvider) Invalidate(ctx context.Context, ticker string) error {
	p.memory.Delete(ticker)
	if p.shared == nil {
		return nil
	}
	return p.shared.Delete(ctx, redis.SeriesKey(ticker))
}
