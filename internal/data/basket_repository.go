package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
)

// ErrBasketNotFound is returned when no basket has the requested id
var ErrBasketNotFound = errors.New("basket not found")

// BasketRepository persists baskets, their derived metrics and result snapshots
// ⭐ SSOT: basket persistence lives here only
type BasketRepository struct {
	pool *pgxpool.Pool
}

// NewBasketRepository creates a new basket repository
func NewBasketRepository(pool *pgxpool.Pool) *BasketRepository {
	return &BasketRepository{pool: pool}
}

const basketColumns = `id, name, allocation_mode, initial_capital::float8, rebalance, inception_date`

// List returns every basket with its items in position order
func (r *BasketRepository) List(ctx context.Context) ([]contracts.Basket, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+basketColumns+` FROM basket.baskets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query baskets: %w", err)
	}

	var baskets []contracts.Basket
	for rows.Next() {
		b, err := scanBasket(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		baskets = append(baskets, *b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range baskets {
		items, err := r.items(ctx, baskets[i].ID)
		if err != nil {
			return nil, err
		}
		baskets[i].Items = items
	}
	return baskets, nil
}

// Get returns one basket with its items
func (r *BasketRepository) Get(ctx context.Context, id string) (*contracts.Basket, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+basketColumns+` FROM basket.baskets WHERE id = $1`, id)
	b, err := scanBasket(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrBasketNotFound)
	}
	if err != nil {
		return nil, err
	}

	items, err := r.items(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Items = items
	return b, nil
}

func scanBasket(row pgx.Row) (*contracts.Basket, error) {
	var b contracts.Basket
	var mode, rebalance string
	if err := row.Scan(&b.ID, &b.Name, &mode, &b.InitialCapital, &rebalance, &b.InceptionDate); err != nil {
		return nil, fmt.Errorf("scan basket: %w", err)
	}
	b.Mode = contracts.AllocationMode(mode)
	b.Rebalance = contracts.RebalanceInterval(rebalance)
	return &b, nil
}

func (r *BasketRepository) items(ctx context.Context, basketID string) ([]contracts.BasketItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ticker, weight, quantity, suppressed
		FROM basket.basket_items
		WHERE basket_id = $1
		ORDER BY position, ticker
	`, basketID)
	if err != nil {
		return nil, fmt.Errorf("query items for %s: %w", basketID, err)
	}
	defer rows.Close()

	var items []contracts.BasketItem
	for rows.Next() {
		var item contracts.BasketItem
		if err := rows.Scan(&item.Ticker, &item.Weight, &item.Quantity, &item.Suppressed); err != nil {
			return nil, fmt.Errorf("scan item for %s: %w", basketID, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Save upserts the basket and replaces its items in one transaction
func (r *BasketRepository) Save(ctx context.Context, b *contracts.Basket) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rebalance := b.Rebalance
	if rebalance == "" {
		rebalance = contracts.RebalanceNone
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO basket.baskets (id, name, allocation_mode, initial_capital, rebalance, inception_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			allocation_mode = EXCLUDED.allocation_mode,
			initial_capital = EXCLUDED.initial_capital,
			rebalance = EXCLUDED.rebalance,
			inception_date = EXCLUDED.inception_date
	`, b.ID, b.Name, string(b.Mode), b.InitialCapital, string(rebalance), b.InceptionDate)
	if err != nil {
		return fmt.Errorf("upsert basket %s: %w", b.ID, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM basket.basket_items WHERE basket_id = $1`, b.ID); err != nil {
		return fmt.Errorf("delete items for %s: %w", b.ID, err)
	}

	for i, item := range b.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO basket.basket_items (basket_id, ticker, weight, quantity, suppressed, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, b.ID, item.Ticker, item.Weight, item.Quantity, item.Suppressed, i)
		if err != nil {
			return fmt.Errorf("insert item %s for %s: %w", item.Ticker, b.ID, err)
		}
	}

	return tx.Commit(ctx)
}

// SaveMetrics stores the derived scalars alongside the basket record
func (r *BasketRepository) SaveMetrics(ctx context.Context, basketID string, m contracts.Metrics) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE basket.baskets SET
			cagr = $2,
			volatility = $3,
			sharpe = $4,
			max_drawdown = $5,
			growth_score = $6,
			daily_return = $7,
			inception_return = $8,
			metrics_updated_at = NOW()
		WHERE id = $1
	`, basketID, m.CAGR, m.Volatility, m.Sharpe, m.MaxDrawdown, m.GrowthScore, m.DailyReturn, m.TotalReturn)
	if err != nil {
		return fmt.Errorf("save metrics for %s: %w", basketID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", basketID, ErrBasketNotFound)
	}
	return nil
}

// SaveSnapshot stores a known-good result as JSON
func (r *BasketRepository) SaveSnapshot(ctx context.Context, result *contracts.SimulationResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO basket.simulation_snapshots (basket_id, run_id, result, generated_at)
		VALUES ($1, $2, $3, $4)
	`, result.BasketID, result.RunID, payload, result.GeneratedAt)
	if err != nil {
		return fmt.Errorf("save snapshot for %s: %w", result.BasketID, err)
	}
	return nil
}

// LatestSnapshots returns the newest stored result per basket
func (r *BasketRepository) LatestSnapshots(ctx context.Context) (map[string]*contracts.SimulationResult, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT ON (basket_id) basket_id, result
		FROM basket.simulation_snapshots
		ORDER BY basket_id, generated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*contracts.SimulationResult)
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		var result contracts.SimulationResult
		if err := json.Unmarshal(payload, &result); err != nil {
			return nil, fmt.Errorf("decode snapshot for %s: %w", id, err)
		}
		out[id] = &result
	}
	return out, rows.Err()
}

// PruneSnapshots deletes snapshots older than the cutoff, keeping the newest per basket
func (r *BasketRepository) PruneSnapshots(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM basket.simulation_snapshots s
		WHERE s.generated_at < $1
		  AND s.generated_at < (
			SELECT MAX(generated_at) FROM basket.simulation_snapshots WHERE basket_id = s.basket_id
		  )
	`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}
