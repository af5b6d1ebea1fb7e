package contracts

import "time"

// ValuePoint is one day of the reconstructed portfolio value.
// Close is authoritative for all return math.
type ValuePoint struct {
	Date  time.Time `json:"date"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// DrawdownPoint is the decline from the running peak (always <= 0)
type DrawdownPoint struct {
	Date     time.Time `json:"date"`
	Drawdown float64   `json:"drawdown"`
}

// SeriesPoint is a dated scalar
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// AssetComparison is one asset's own value series inside the basket
type AssetComparison struct {
	Ticker string        `json:"ticker"`
	Shares int64         `json:"shares"`
	Values []SeriesPoint `json:"values"`
}

// Metrics is the scalar risk/return bundle
// ⭐ SSOT: every field is finite; degenerate inputs map to 0
type Metrics struct {
	TotalReturn float64 `json:"total_return"` // inception return
	CAGR        float64 `json:"cagr"`
	CAGR1Y      float64 `json:"cagr_1y"`
	CAGR3Y      float64 `json:"cagr_3y"`
	CAGR5Y      float64 `json:"cagr_5y"`
	Volatility  float64 `json:"volatility"` // annualized
	Sharpe      float64 `json:"sharpe"`
	Sortino     float64 `json:"sortino"`
	Calmar      float64 `json:"calmar"`
	MaxDrawdown float64 `json:"max_drawdown"` // <= 0
	IRR         float64 `json:"irr"`
	DailyReturn float64 `json:"daily_return"` // last day
	VaR95       float64 `json:"var_95"`       // daily, loss positive
	CVaR95      float64 `json:"cvar_95"`      // daily, loss positive
	GrowthScore float64 `json:"growth_score"` // 0 ~ 100
	Years       float64 `json:"years"`
}

// AssetMetrics are per-asset trailing statistics
type AssetMetrics struct {
	Ticker     string          `json:"ticker"`
	Returns    map[int]float64 `json:"returns"` // window (trading days) -> CAGR
	Volatility float64         `json:"volatility"`
}

// SimulationResult is the full engine output for one basket
type SimulationResult struct {
	RunID             string                  `json:"run_id"`
	BasketID          string                  `json:"basket_id"`
	BasketName        string                  `json:"basket_name"`
	StartDate         time.Time               `json:"start_date"`
	EndDate           time.Time               `json:"end_date"`
	History           []ValuePoint            `json:"history"`
	DailyReturns      []float64               `json:"daily_returns"`
	InitialAllocation *PortfolioAllocation    `json:"initial_allocation"`
	LiveAllocation    *PortfolioAllocation    `json:"live_allocation"`
	Metrics           Metrics                 `json:"metrics"`
	AssetMetrics      map[string]AssetMetrics `json:"asset_metrics"`
	Warnings          []string                `json:"warnings"`
	Drawdowns         []DrawdownPoint         `json:"drawdowns"`
	Comparisons       []AssetComparison       `json:"comparisons"`
	Forecast          *Forecast               `json:"forecast,omitempty"`
	GeneratedAt       time.Time               `json:"generated_at"`
}

// LatestValue returns the final portfolio close
func (r *SimulationResult) LatestValue() float64 {
	if len(r.History) == 0 {
		return 0
	}
	return r.History[len(r.History)-1].Close
}
