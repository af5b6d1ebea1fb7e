package risk

import (
	"math"

	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
)

const (
	// DefaultRiskFreeRate is the annual rate subtracted in Sharpe/Sortino
	DefaultRiskFreeRate = 0.06

	// below this span CAGR falls back to total return
	minYearsForCAGR = 0.1

	// CAGR that maps to a growth score of 100
	growthScoreFullCAGR = 0.30

	daysPerYear = 365.25
)

// Calculator reduces a portfolio value series to scalar risk/return metrics
// ⭐ SSOT: portfolio metric formulas live here only
type Calculator struct {
	riskFreeRate float64
}

// NewCalculator creates a metrics calculator with the given annual risk-free rate
func NewCalculator(riskFreeRate float64) *Calculator {
	return &Calculator{riskFreeRate: riskFreeRate}
}

// RiskFreeRate returns the configured annual risk-free rate
func (c *Calculator) RiskFreeRate() float64 {
	return c.riskFreeRate
}

// Calculate derives the metrics bundle from the replayed history.
// dailyReturns and drawdowns come from the history builder; drawdowns may be nil.
func (c *Calculator) Calculate(
	history []contracts.ValuePoint,
	dailyReturns []float64,
	drawdowns []contracts.DrawdownPoint,
) contracts.Metrics {
	var m contracts.Metrics
	if len(history) == 0 {
		return m
	}

	first := history[0]
	last := history[len(history)-1]
	initial, final := first.Close, last.Close

	m.Years = last.Date.Sub(first.Date).Hours() / 24 / daysPerYear
	m.TotalReturn = safeDiv(final-initial, initial)
	m.CAGR = cagr(initial, final, m.Years, m.TotalReturn)
	m.IRR = irr(m.TotalReturn, m.Years)

	closes := make([]float64, len(history))
	for i, p := range history {
		closes[i] = p.Close
	}
	m.CAGR1Y = WindowCAGR(closes, TradingDaysPerYear)
	m.CAGR3Y = WindowCAGR(closes, 3*TradingDaysPerYear)
	m.CAGR5Y = WindowCAGR(closes, 5*TradingDaysPerYear)

	m.Volatility = StdDev(dailyReturns) * math.Sqrt(TradingDaysPerYear)
	m.Sharpe = safeDiv(m.CAGR-c.riskFreeRate, m.Volatility)
	m.Sortino = safeDiv(m.CAGR-c.riskFreeRate, DownsideDeviation(dailyReturns))

	m.MaxDrawdown = maxDrawdown(history, drawdowns)
	m.Calmar = safeDiv(m.CAGR, math.Abs(m.MaxDrawdown))

	if len(dailyReturns) > 0 {
		m.DailyReturn = finite(dailyReturns[len(dailyReturns)-1])
	}

	v := CalculateVaR(dailyReturns, 0.95)
	m.VaR95 = v.VaR
	m.CVaR95 = v.CVaR

	m.GrowthScore = GrowthScore(m.CAGR)

	return m
}

// cagr annualizes only when the span exceeds minYearsForCAGR
func cagr(initial, final, years, totalReturn float64) float64 {
	if years <= minYearsForCAGR || initial <= 0 || final <= 0 {
		return totalReturn
	}
	return finite(math.Pow(final/initial, 1/years) - 1)
}

// irr is the life-to-date annualized return (1+total)^(1/years) - 1
func irr(totalReturn, years float64) float64 {
	if years <= 0 || 1+totalReturn <= 0 {
		return 0
	}
	return finite(math.Pow(1+totalReturn, 1/years) - 1)
}

// DownsideDeviation is sqrt(Σ min(r,0)² / n) annualized by √252.
// Only negative returns contribute but the full sample count is the divisor.
func DownsideDeviation(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	var sumSq float64
	for _, r := range returns {
		if r < 0 {
			sumSq += r * r
		}
	}
	return finite(math.Sqrt(sumSq/float64(len(returns))) * math.Sqrt(TradingDaysPerYear))
}

// maxDrawdown returns the minimum of the drawdown series (<= 0),
// recomputing from closes when no series is supplied
func maxDrawdown(history []contracts.ValuePoint, drawdowns []contracts.DrawdownPoint) float64 {
	if len(drawdowns) > 0 {
		worst := 0.0
		for _, d := range drawdowns {
			if d.Drawdown < worst {
				worst = d.Drawdown
			}
		}
		return worst
	}

	worst := 0.0
	peak := history[0].Close
	for _, p := range history {
		if p.Close > peak {
			peak = p.Close
		}
		if dd := safeDiv(p.Close-peak, peak); dd < worst {
			worst = dd
		}
	}
	return worst
}

// GrowthScore maps CAGR to a 0~100 display score (30% CAGR = 100)
func GrowthScore(cagr float64) float64 {
	score := cagr / growthScoreFullCAGR * 100
	return math.Max(0, math.Min(100, finite(score)))
}
