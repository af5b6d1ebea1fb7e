package forecast

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
	"github.com/LLeom997/AlphBasket-sub000/internal/indicators"
	"github.com/LLeom997/AlphBasket-sub000/pkg/config"
	"github.com/LLeom997/AlphBasket-sub000/pkg/logger"
)

// chunkSize is the number of trials sharing one random stream.
// Fixed so that results do not depend on the worker count.
const chunkSize = 256

// Config holds Monte Carlo settings
type Config struct {
	Simulations     int
	Horizon         int  // trading days
	CalendarHorizon bool // weekdays to the same date next year instead of Horizon
	Strategy        contracts.Strategy
	Seed            int64 // 0 = time based
	Workers         int
}

// DefaultConfig returns the standard one-year, 3000-trial hold forecast
func DefaultConfig() Config {
	return Config{
		Simulations: 3000,
		Horizon:     DefaultHorizon,
		Strategy:    contracts.StrategyHold,
		Workers:     runtime.NumCPU(),
	}
}

// ConfigFrom maps the environment-level engine settings onto a forecast Config
func ConfigFrom(cfg config.EngineConfig) Config {
	return Config{
		Simulations:     cfg.Simulations,
		Horizon:         cfg.Horizon,
		CalendarHorizon: cfg.CalendarHorizon,
		Strategy:        contracts.Strategy(cfg.Strategy),
		Seed:            cfg.Seed,
		Workers:         cfg.Workers,
	}
}

// Input is the historical context of a single forecast
type Input struct {
	StartValue float64
	StartDate  time.Time
	Returns    []float64              // historical daily simple returns
	Bars       []contracts.PricePoint // historical OHLC (momentum and ATR reference)
	Strategy   contracts.Strategy     // overrides Config.Strategy when set
}

// Engine projects the forward value distribution with GBM
// ⭐ SSOT: Monte Carlo path generation and percentile extraction live here only
type Engine struct {
	config  Config
	sources SourceFactory
	logger  *logger.Logger
}

// NewEngine creates a forecast engine.
// sources may be nil, in which case streams are seeded from config.Seed.
func NewEngine(config Config, sources SourceFactory, log *logger.Logger) *Engine {
	if config.Simulations <= 0 {
		config.Simulations = DefaultConfig().Simulations
	}
	if config.Horizon < 0 {
		config.Horizon = 0
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.Strategy == "" {
		config.Strategy = contracts.StrategyHold
	}
	if sources == nil {
		seed := config.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		sources = SeededSources(seed)
	}

	return &Engine{
		config:  config,
		sources: sources,
		logger:  log,
	}
}

// Config returns the effective configuration
func (e *Engine) Config() Config {
	return e.config
}

// Run simulates Config.Simulations paths and reduces them to percentile bands.
// Degenerate input yields a flat forecast, never an error; only ctx cancellation fails.
func (e *Engine) Run(ctx context.Context, in Input) (*contracts.Forecast, error) {
	strategy := in.Strategy
	if strategy == "" {
		strategy = e.config.Strategy
	}
	if _, ok := contracts.ParseStrategy(string(strategy)); !ok {
		return nil, fmt.Errorf("unknown strategy %q", strategy)
	}

	horizon := e.horizon(in.StartDate)
	fc := &contracts.Forecast{
		Strategy:    strategy,
		Simulations: e.config.Simulations,
		Horizon:     horizon,
		StartDate:   in.StartDate,
		StartValue:  in.StartValue,
		Trades:      []contracts.Trade{},
	}

	params, ok := EstimateParams(in.Returns)
	if !ok || in.StartValue <= 0 {
		e.logger.WithFields(map[string]interface{}{
			"valid_returns": params.N,
			"start_value":   in.StartValue,
		}).Warn("Degenerate forecast input, returning flat paths")
		return degenerate(fc), nil
	}

	fc.Mu, fc.Sigma, fc.Drift = params.Mu, params.Sigma, params.Drift
	drift := params.Drift

	closes := make([]float64, len(in.Bars))
	for i, b := range in.Bars {
		closes[i] = b.Close
	}

	switch strategy {
	case contracts.StrategyMomentum:
		sig := AnalyzeMomentum(closes)
		fc.MomentumMultiplier = sig.Multiplier
		fc.Bullish = sig.Bullish
		drift = sig.AdjustDrift(drift)
	case contracts.StrategyTargetSL:
		fc.ReferenceATR, fc.ReferenceATRAvg = referenceATR(in.Bars)
	}

	values, ledger, err := e.simulate(ctx, strategy, in.StartValue, drift, params.Sigma, horizon)
	if err != nil {
		return nil, err
	}

	fc.Paths = percentiles(values)
	fc.ProbProfit = probProfit(values[horizon], in.StartValue)
	fc.MedianTerminal = fc.Paths.P50[horizon]
	fc.Trades = datedTrades(ledger, in.StartDate)

	e.logger.WithFields(map[string]interface{}{
		"strategy":        string(strategy),
		"simulations":     e.config.Simulations,
		"horizon":         horizon,
		"drift":           drift,
		"sigma":           params.Sigma,
		"prob_profit":     fc.ProbProfit,
		"median_terminal": fc.MedianTerminal,
	}).Debug("Forecast completed")

	return fc, nil
}

func (e *Engine) horizon(start time.Time) int {
	if e.config.CalendarHorizon && !start.IsZero() {
		return CalendarYearHorizon(start)
	}
	return e.config.Horizon
}

// simulate returns values[t][i] for day t and trial i, plus the ledger of the
// designated trial sims/2. Trials are chunked; chunk c draws from stream c.
func (e *Engine) simulate(
	ctx context.Context,
	strategy contracts.Strategy,
	start, drift, sigma float64,
	horizon int,
) ([][]float64, []tradeRecord, error) {
	sims := e.config.Simulations
	values := make([][]float64, horizon+1)
	for t := range values {
		values[t] = make([]float64, sims)
	}

	designated := sims / 2
	var ledger []tradeRecord

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)

	chunks := (sims + chunkSize - 1) / chunkSize
	for c := 0; c < chunks; c++ {
		g.Go(func() error {
			src := e.sources(int64(c))
			path := make([]float64, horizon+1)

			lo := c * chunkSize
			hi := min(lo+chunkSize, sims)
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}

				path[0] = start
				record := i == designated
				trades := walkPath(strategy, drift, sigma, src, path, record)
				for t, v := range path {
					values[t][i] = v
				}
				if record {
					ledger = trades
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("monte carlo simulation: %w", err)
	}
	return values, ledger, nil
}

// percentiles sorts each day's cross-section in place and picks floor(sims·p)
func percentiles(values [][]float64) contracts.MonteCarloPath {
	out := contracts.MonteCarloPath{
		P10: make([]float64, len(values)),
		P50: make([]float64, len(values)),
		P90: make([]float64, len(values)),
	}
	for t, day := range values {
		sort.Float64s(day)
		out.P10[t] = day[percentileIndex(len(day), 0.10)]
		out.P50[t] = day[percentileIndex(len(day), 0.50)]
		out.P90[t] = day[percentileIndex(len(day), 0.90)]
	}
	return out
}

func percentileIndex(n int, p float64) int {
	idx := int(math.Floor(float64(n) * p))
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// probProfit is the share of terminal values strictly above start
func probProfit(terminal []float64, start float64) float64 {
	if len(terminal) == 0 {
		return 0
	}
	wins := 0
	for _, v := range terminal {
		if v > start {
			wins++
		}
	}
	return float64(wins) / float64(len(terminal))
}

// degenerate fills flat paths at the start value
func degenerate(fc *contracts.Forecast) *contracts.Forecast {
	flat := make([]float64, fc.Horizon+1)
	for i := range flat {
		flat[i] = fc.StartValue
	}
	fc.Paths = contracts.MonteCarloPath{
		P10: flat,
		P50: append([]float64(nil), flat...),
		P90: append([]float64(nil), flat...),
	}
	fc.MedianTerminal = fc.StartValue
	fc.ProbProfit = 0
	fc.Degenerate = true
	return fc
}

// referenceATR returns the latest ATR(14) and its 14-day SMA.
// Reported for context only; target_sl exits stay fixed at 2%/6%.
func referenceATR(bars []contracts.PricePoint) (float64, float64) {
	if len(bars) == 0 {
		return 0, 0
	}
	atr := indicators.ATR(bars, indicators.DefaultATRPeriod)
	avg := indicators.SMA(atr, indicators.DefaultATRPeriod)
	return atr[len(atr)-1], avg[len(avg)-1]
}

// datedTrades maps day offsets to trading dates after start
func datedTrades(ledger []tradeRecord, start time.Time) []contracts.Trade {
	trades := make([]contracts.Trade, 0, len(ledger))
	for _, r := range ledger {
		exitDay := r.exitDay
		exitDate := AddTradingDays(start, r.exitDay)
		exitPrice := r.exitPrice
		ret := 0.0
		if r.entryPrice > 0 {
			ret = r.exitPrice/r.entryPrice - 1
		}

		trades = append(trades, contracts.Trade{
			EntryDay:   r.entryDay,
			EntryDate:  AddTradingDays(start, r.entryDay),
			EntryPrice: r.entryPrice,
			ExitDay:    &exitDay,
			ExitDate:   &exitDate,
			ExitPrice:  &exitPrice,
			Return:     &ret,
			Reason:     r.reason,
		})
	}
	return trades
}
