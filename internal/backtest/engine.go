package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
	"github.com/LLeom997/AlphBasket-sub000/internal/forecast"
	"github.com/LLeom997/AlphBasket-sub000/internal/portfolio"
	"github.com/LLeom997/AlphBasket-sub000/internal/risk"
	"github.com/LLeom997/AlphBasket-sub000/pkg/logger"
)

// Engine runs the basket simulation pipeline:
// allocate → replay → metrics → forecast
// ⭐ SSOT: basket backtests are executed here only
type Engine struct {
	allocator  *portfolio.Allocator
	calculator *risk.Calculator
	forecaster *forecast.Engine
	logger     *logger.Logger
	now        func() time.Time
}

// Options tune a single run
type Options struct {
	Strategy     contracts.Strategy // empty = forecaster default
	SkipForecast bool
}

// NewEngine creates a new simulation engine.
// forecaster may be nil, in which case no forecast is attached.
func NewEngine(
	allocator *portfolio.Allocator,
	calculator *risk.Calculator,
	forecaster *forecast.Engine,
	log *logger.Logger,
) *Engine {
	return &Engine{
		allocator:  allocator,
		calculator: calculator,
		forecaster: forecaster,
		logger:     log,
		now:        time.Now,
	}
}

// WithClock overrides "today" for reproducible runs
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Simulate resolves the basket's series through provider and runs it
func (e *Engine) Simulate(
	ctx context.Context,
	basket *contracts.Basket,
	provider contracts.SeriesProvider,
	opts Options,
) (*contracts.SimulationResult, error) {
	series, err := contracts.LoadSeries(ctx, provider, basket.Tickers())
	if err != nil {
		return nil, fmt.Errorf("load series for %s: %w", basket.Name, err)
	}
	return e.Run(ctx, basket, series, opts)
}

// Run executes the pipeline on pre-loaded series.
// Fatal conditions return an error before any result exists; everything
// else is reported in SimulationResult.Warnings.
func (e *Engine) Run(
	ctx context.Context,
	basket *contracts.Basket,
	series map[string]*contracts.AssetSeries,
	opts Options,
) (*contracts.SimulationResult, error) {
	// 1. Active items
	active := basket.ActiveItems()
	if len(active) == 0 {
		return nil, contracts.ErrNoActiveAssets
	}
	if err := basket.Validate(); err != nil {
		return nil, err
	}

	today := contracts.DateOnly(e.now())
	tickers := basket.Tickers()
	var warnings []string

	// 2. Sanitize
	clean := make(map[string]*contracts.AssetSeries, len(tickers))
	for _, ticker := range tickers {
		s, ok := series[ticker]
		if !ok || s.Len() == 0 {
			return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrSeriesNotFound)
		}
		cs, w := sanitizeSeries(s)
		warnings = append(warnings, w...)
		clean[ticker] = cs
	}

	// 3. Common window
	dates, w, err := CommonDates(clean, tickers, today, basket.InceptionDate)
	warnings = append(warnings, w...)
	if err != nil {
		return nil, err
	}
	start, end := dates[0], dates[len(dates)-1]

	// 4. Allocation at the backtest start
	initial, w, err := e.allocator.Allocate(portfolio.AllocationRequest{
		Items:   active,
		Prices:  pricesOn(clean, tickers, start),
		Mode:    basket.Mode,
		Capital: basket.InitialCapital,
		Date:    start,
	})
	if err != nil {
		return nil, fmt.Errorf("initial allocation: %w", err)
	}
	warnings = append(warnings, w...)

	// 5. Live allocation at each asset's latest price
	livePrices, liveDate := latestPrices(clean, tickers, today)
	live, liveWarnings, err := e.allocator.Allocate(portfolio.AllocationRequest{
		Items:   active,
		Prices:  livePrices,
		Mode:    basket.Mode,
		Capital: basket.InitialCapital,
		Date:    liveDate,
	})
	if err != nil {
		return nil, fmt.Errorf("live allocation: %w", err)
	}
	warnings = append(warnings, liveOnly(liveWarnings, w)...)

	if basket.Rebalance != "" && basket.Rebalance != contracts.RebalanceNone {
		warnings = append(warnings, fmt.Sprintf(
			"rebalance interval %q is not simulated, results assume buy-and-hold", basket.Rebalance))
	}

	// 6. Replay
	replay := ReplayHoldings(dates, clean, tickers, initial.Shares())

	// 7. Metrics
	metrics := e.calculator.Calculate(replay.History, replay.DailyReturns, replay.Drawdowns)

	assetMetrics := make(map[string]contracts.AssetMetrics, len(tickers))
	for _, ticker := range tickers {
		assetMetrics[ticker] = risk.CalculateAssetMetrics(clean[ticker])
	}

	result := &contracts.SimulationResult{
		RunID:             uuid.New().String(),
		BasketID:          basket.ID,
		BasketName:        basket.Name,
		StartDate:         start,
		EndDate:           end,
		History:           replay.History,
		DailyReturns:      replay.DailyReturns,
		InitialAllocation: initial,
		LiveAllocation:    live,
		Metrics:           metrics,
		AssetMetrics:      assetMetrics,
		Drawdowns:         replay.Drawdowns,
		Comparisons:       replay.Comparisons,
		GeneratedAt:       e.now(),
	}

	// 8. Forecast
	if e.forecaster != nil && !opts.SkipForecast {
		fc, err := e.forecaster.Run(ctx, forecast.Input{
			StartValue: result.LatestValue(),
			StartDate:  end,
			Returns:    replay.DailyReturns,
			Bars:       replay.Bars(),
			Strategy:   opts.Strategy,
		})
		if err != nil {
			return nil, fmt.Errorf("forecast: %w", err)
		}
		if fc.Degenerate {
			warnings = append(warnings, "too few valid returns for a forecast, projection is flat")
		}
		result.Forecast = fc
	}

	if warnings == nil {
		warnings = []string{}
	}
	result.Warnings = warnings

	e.logger.WithFields(map[string]interface{}{
		"run_id":       result.RunID,
		"basket":       basket.Name,
		"start":        start.Format("2006-01-02"),
		"end":          end.Format("2006-01-02"),
		"days":         len(dates),
		"cagr":         fmt.Sprintf("%.2f%%", metrics.CAGR*100),
		"sharpe":       fmt.Sprintf("%.2f", metrics.Sharpe),
		"max_drawdown": fmt.Sprintf("%.2f%%", metrics.MaxDrawdown*100),
		"warnings":     len(warnings),
	}).Info("Simulation completed")

	return result, nil
}

// pricesOn returns each ticker's close on date
func pricesOn(series map[string]*contracts.AssetSeries, tickers []string, date time.Time) map[string]float64 {
	prices := make(map[string]float64, len(tickers))
	for _, ticker := range tickers {
		if p, ok := series[ticker].LatestOnOrBefore(date); ok {
			prices[ticker] = p.Close
		}
	}
	return prices
}

// latestPrices returns each ticker's most recent close on or before today
// and the latest date among them
func latestPrices(series map[string]*contracts.AssetSeries, tickers []string, today time.Time) (map[string]float64, time.Time) {
	prices := make(map[string]float64, len(tickers))
	var latest time.Time
	for _, ticker := range tickers {
		p, ok := series[ticker].LatestOnOrBefore(today)
		if !ok {
			continue
		}
		prices[ticker] = p.Close
		if p.Date.After(latest) {
			latest = p.Date
		}
	}
	return prices, latest
}

// liveOnly prefixes live allocation warnings with "live:", skipping those
// already raised by the initial allocation
func liveOnly(live, initial []string) []string {
	seen := make(map[string]bool, len(initial))
	for _, w := range initial {
		seen[w] = true
	}

	var out []string
	for _, w := range live {
		if seen[w] {
			continue
		}
		out = append(out, "live: "+w)
	}
	return out
}
