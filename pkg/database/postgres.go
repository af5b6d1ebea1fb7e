package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LLeom997/AlphBasket-sub000/pkg/config"
)

const pingTimeout = 5 * time.Second

// DB wraps the pgxpool.Pool shared by every repository
// ⭐ SSOT: database connections are created in this package only
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a connection pool and verifies it with a ping
func New(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	poolConfig, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// PoolConfig parses the URL and applies pool sizing
func PoolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is empty")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	return poolConfig, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Ping checks if the database is accessible
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// EnsureSchema creates the tables used by the data repositories
func (db *DB) EnsureSchema(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}

// schema is idempotent DDL applied in order
var schema = []string{
	`CREATE SCHEMA IF NOT EXISTS data`,
	`CREATE SCHEMA IF NOT EXISTS basket`,
	`CREATE TABLE IF NOT EXISTS data.daily_prices (
		ticker      TEXT          NOT NULL,
		trade_date  DATE          NOT NULL,
		open_price  NUMERIC(18,4) NOT NULL,
		high_price  NUMERIC(18,4) NOT NULL,
		low_price   NUMERIC(18,4) NOT NULL,
		close_price NUMERIC(18,4) NOT NULL,
		volume      BIGINT        NOT NULL DEFAULT 0,
		PRIMARY KEY (ticker, trade_date)
	)`,
	`CREATE TABLE IF NOT EXISTS basket.baskets (
		id              TEXT PRIMARY KEY,
		name            TEXT          NOT NULL,
		allocation_mode TEXT          NOT NULL DEFAULT 'weight',
		initial_capital NUMERIC(18,2) NOT NULL,
		rebalance       TEXT          NOT NULL DEFAULT 'none',
		inception_date  DATE,
		cagr            DOUBLE PRECISION,
		volatility      DOUBLE PRECISION,
		sharpe          DOUBLE PRECISION,
		max_drawdown    DOUBLE PRECISION,
		growth_score    DOUBLE PRECISION,
		daily_return    DOUBLE PRECISION,
		inception_return DOUBLE PRECISION,
		metrics_updated_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS basket.basket_items (
		basket_id  TEXT             NOT NULL REFERENCES basket.baskets(id) ON DELETE CASCADE,
		ticker     TEXT             NOT NULL,
		weight     DOUBLE PRECISION NOT NULL DEFAULT 0,
		quantity   BIGINT,
		suppressed BOOLEAN          NOT NULL DEFAULT FALSE,
		position   INT              NOT NULL DEFAULT 0,
		PRIMARY KEY (basket_id, ticker)
	)`,
	`CREATE TABLE IF NOT EXISTS basket.simulation_snapshots (
		basket_id    TEXT        NOT NULL REFERENCES basket.baskets(id) ON DELETE CASCADE,
		run_id       TEXT        NOT NULL,
		result       JSONB       NOT NULL,
		generated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (basket_id, run_id)
	)`,
}

// HealthStatus represents the health status of the database
type HealthStatus struct {
	Healthy      bool          `json:"healthy"`
	Timestamp    time.Time     `json:"timestamp"`
	ResponseTime time.Duration `json:"response_time"`
	Error        string        `json:"error,omitempty"`
	Stats        PoolStats     `json:"stats"`
}

// PoolStats is a JSON-friendly subset of pgxpool.Stat
type PoolStats struct {
	AcquireCount  int64 `json:"acquire_count"`
	AcquiredConns int32 `json:"acquired_conns"`
	IdleConns     int32 `json:"idle_conns"`
	MaxConns      int32 `json:"max_conns"`
	TotalConns    int32 `json:"total_conns"`
}

// HealthCheck pings the database and reports pool statistics
func (db *DB) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	status := &HealthStatus{Timestamp: time.Now()}

	start := time.Now()
	if err := db.Pool.Ping(ctx); err != nil {
		status.Error = err.Error()
		return status, err
	}
	status.ResponseTime = time.Since(start)
	status.Stats = db.Stats()
	status.Healthy = true

	return status, nil
}

// Stats returns the current pool statistics
func (db *DB) Stats() PoolStats {
	s := db.Pool.Stat()
	return PoolStats{
		AcquireCount:  s.AcquireCount(),
		AcquiredConns: s.AcquiredConns(),
		IdleConns:     s.IdleConns(),
		MaxConns:      s.MaxConns(),
		TotalConns:    s.TotalConns(),
	}
}
