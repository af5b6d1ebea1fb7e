package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/LLeom997/AlphBasket-sub000/internal/backtest"
	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
	"github.com/LLeom997/AlphBasket-sub000/internal/data"
	"github.com/LLeom997/AlphBasket-sub000/internal/forecast"
	"github.com/LLeom997/AlphBasket-sub000/internal/portfolio"
	"github.com/LLeom997/AlphBasket-sub000/internal/risk"
	"github.com/LLeom997/AlphBasket-sub000/pkg/config"
	"github.com/LLeom997/AlphBasket-sub000/pkg/database"
	"github.com/LLeom997/AlphBasket-sub000/pkg/logger"
	"github.com/LLeom997/AlphBasket-sub000/pkg/redis"
)

// Price sources
const (
	sourceCSV = "csv"
	sourceDB  = "db"
)

// app bundles the wiring shared by every command
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB  // nil unless connected
	redis    *redis.Client // disabled unless REDIS_ENABLED
	cache    *redis.Cache  // shared JSON cache on top of redis
	memory   *data.SeriesCache
	provider *data.CachedProvider
	baskets  *data.BasketRepository // nil without db
	engine   *backtest.Engine
}

// newApp loads config, connects the database when needed and builds the engine.
// withDB forces a database connection regardless of --source.
func newApp(ctx context.Context, withDB bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	a := &app{cfg: cfg, log: logger.New(cfg)}

	if withDB || dataSource == sourceDB {
		if err := cfg.RequireDatabase(); err != nil {
			return nil, err
		}
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		a.db = db
		a.baskets = data.NewBasketRepository(db.Pool)
		a.log.Info("Connected to database")
	}

	a.redis = redis.Disabled()
	if cfg.Redis.Enabled {
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			a.log.WithError(err).Warn("Redis unavailable, continuing without shared cache")
		} else {
			a.redis = client
		}
	}
	a.cache = redis.NewCache(a.redis, "alphbasket")

	var source contracts.SeriesProvider
	switch dataSource {
	case sourceCSV:
		source = data.NewCSVProvider(cfg.PriceDataDir)
	case sourceDB:
		source = data.NewPriceRepository(a.db.Pool)
	default:
		a.Close()
		return nil, fmt.Errorf("unknown --source %q (csv|db)", dataSource)
	}

	a.memory = data.NewSeriesCache(cfg.Redis.CacheTTL)
	a.provider = data.NewCachedProvider(source, a.memory, a.cache, cfg.Redis.CacheTTL, a.log)

	a.engine = backtest.NewEngine(
		portfolio.NewAllocator(a.log),
		risk.NewCalculator(cfg.Engine.RiskFreeRate),
		forecast.NewEngine(forecast.ConfigFrom(cfg.Engine), nil, a.log),
		a.log,
	)

	return a, nil
}

// Close releases connections
func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// timeoutContext returns a context cancelled after timeout (0 = none)
func timeoutContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}
