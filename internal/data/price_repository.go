package data

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
)

// PriceRepository reads and writes daily bars in data.daily_prices
// ⭐ SSOT: price persistence lives here only
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// Series returns the full ascending history of ticker (implements contracts.SeriesProvider)
func (r *PriceRepository) Series(ctx context.Context, ticker string) (*contracts.AssetSeries, error) {
	query := `
		SELECT trade_date, open_price, high_price, low_price, close_price, volume
		FROM data.daily_prices
		WHERE ticker = $1
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("query prices for %s: %w", ticker, err)
	}
	defer rows.Close()

	series := &contracts.AssetSeries{Ticker: ticker}
	for rows.Next() {
		var p contracts.PricePoint
		if err := rows.Scan(&p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, fmt.Errorf("scan price for %s: %w", ticker, err)
		}
		series.Prices = append(series.Prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if series.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrSeriesNotFound)
	}
	return series, nil
}

// LatestDate returns the most recent stored bar date for ticker
func (r *PriceRepository) LatestDate(ctx context.Context, ticker string) (time.Time, error) {
	var latest *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(trade_date) FROM data.daily_prices WHERE ticker = $1`, ticker,
	).Scan(&latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("latest date for %s: %w", ticker, err)
	}
	if latest == nil {
		return time.Time{}, fmt.Errorf("%s: %w", ticker, contracts.ErrSeriesNotFound)
	}
	return *latest, nil
}

// SaveSeries upserts every bar of the series in one batch
func (r *PriceRepository) SaveSeries(ctx context.Context, series *contracts.AssetSeries) (int, error) {
	if series.Len() == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO data.daily_prices (ticker, trade_date, open_price, high_price, low_price, close_price, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ticker, trade_date) DO UPDATE SET
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume = EXCLUDED.volume
	`

	batch := &pgx.Batch{}
	for _, p := range series.Prices {
		batch.Queue(query, series.Ticker, contracts.DateOnly(p.Date), p.Open, p.High, p.Low, p.Close, p.Volume)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return i, fmt.Errorf("upsert %s bar %d: %w", series.Ticker, i, err)
		}
	}
	return batch.Len(), nil
}
