package contracts

import "time"

// Strategy is the trading overlay applied to Monte Carlo paths
type Strategy string

const (
	StrategyHold     Strategy = "hold"
	StrategyTargetSL Strategy = "target_sl"
	StrategyMomentum Strategy = "momentum"
)

// ParseStrategy converts a string to a Strategy, defaulting to hold
func ParseStrategy(s string) (Strategy, bool) {
	switch Strategy(s) {
	case StrategyHold, StrategyTargetSL, StrategyMomentum:
		return Strategy(s), true
	case "":
		return StrategyHold, true
	default:
		return StrategyHold, false
	}
}

// ExitReason explains why an illustrative trade closed
type ExitReason string

const (
	ExitTarget      ExitReason = "target"
	ExitStopLoss    ExitReason = "stop_loss"
	ExitCrossover   ExitReason = "crossover"
	ExitHold        ExitReason = "hold"
	ExitEndOfPeriod ExitReason = "end_of_period"
)

// Trade is one entry/exit on the designated illustrative path
type Trade struct {
	EntryDay   int        `json:"entry_day"` // trading-day offset from forecast start
	EntryDate  time.Time  `json:"entry_date"`
	EntryPrice float64    `json:"entry_price"`
	ExitDay    *int       `json:"exit_day,omitempty"`
	ExitDate   *time.Time `json:"exit_date,omitempty"`
	ExitPrice  *float64   `json:"exit_price,omitempty"`
	Return     *float64   `json:"return,omitempty"`
	Reason     ExitReason `json:"reason,omitempty"`
}

// IsOpen reports whether the trade has no exit yet
func (t *Trade) IsOpen() bool {
	return t.ExitPrice == nil
}

// MonteCarloPath holds per-day cross-sectional percentiles.
// Index t is the trading-day offset from the forecast start (0 = start value).
type MonteCarloPath struct {
	P10 []float64 `json:"p10"`
	P50 []float64 `json:"p50"`
	P90 []float64 `json:"p90"`
}

// Forecast is the one-year-forward value distribution
type Forecast struct {
	Strategy       Strategy       `json:"strategy"`
	Simulations    int            `json:"simulations"`
	Horizon        int            `json:"horizon"` // trading days
	StartDate      time.Time      `json:"start_date"`
	StartValue     float64        `json:"start_value"`
	Paths          MonteCarloPath `json:"paths"`
	ProbProfit     float64        `json:"prob_profit"` // 0 ~ 1
	MedianTerminal float64        `json:"median_terminal"`
	Trades         []Trade        `json:"trades"` // designated path only
	Degenerate     bool           `json:"degenerate"`

	// Estimated GBM parameters (daily, log space)
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"`
	Drift float64 `json:"drift"`

	// Momentum overlay diagnostics
	MomentumMultiplier float64 `json:"momentum_multiplier,omitempty"`
	Bullish            bool    `json:"bullish,omitempty"`

	// Reference volatility for target_sl; informational only, never gates exits
	ReferenceATR    float64 `json:"reference_atr,omitempty"`
	ReferenceATRAvg float64 `json:"reference_atr_avg,omitempty"`
}
