package risk

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
)

func linearHistory(values []float64) []contracts.ValuePoint {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]contracts.ValuePoint, len(values))
	for i, v := range values {
		out[i] = contracts.ValuePoint{Date: start.AddDate(0, 0, i), Open: v, High: v, Low: v, Close: v}
	}
	return out
}

func closesOf(history []contracts.ValuePoint) []float64 {
	closes := make([]float64, len(history))
	for i, p := range history {
		closes[i] = p.Close
	}
	return closes
}

func TestWindowCAGR(t *testing.T) {
	t.Run("doubling over one year", func(t *testing.T) {
		closes := make([]float64, 253)
		for i := range closes {
			closes[i] = 100
		}
		closes[252] = 200
		assert.InDelta(t, 1.0, WindowCAGR(closes, 252), 1e-9)
	})

	t.Run("requires strictly more points than window", func(t *testing.T) {
		closes := make([]float64, 252)
		for i := range closes {
			closes[i] = 100
		}
		assert.Equal(t, 0.0, WindowCAGR(closes, 252))
	})

	t.Run("non-positive start price", func(t *testing.T) {
		assert.Equal(t, 0.0, WindowCAGR([]float64{0, 10, 20}, 2))
	})

	t.Run("two-year window annualizes", func(t *testing.T) {
		closes := make([]float64, 505)
		for i := range closes {
			closes[i] = 100
		}
		closes[504] = 400
		assert.InDelta(t, 1.0, WindowCAGR(closes, 504), 1e-9)
	})
}

func TestAnnualizedVolatility(t *testing.T) {
	assert.Equal(t, 0.0, AnnualizedVolatility(nil))
	assert.Equal(t, 0.0, AnnualizedVolatility([]float64{100, 101}), "one return is not enough")
	assert.Equal(t, 0.0, AnnualizedVolatility([]float64{100, 100, 100, 100}))

	closes := []float64{100, 110, 99, 108.9}
	// returns: 0.1, -0.1, 0.1 → sample stdev = 0.11547
	expected := 0.11547005383792516 * math.Sqrt(252)
	assert.InDelta(t, expected, AnnualizedVolatility(closes), 1e-9)
}

func TestCalculateAssetMetrics(t *testing.T) {
	prices := make([]contracts.PricePoint, 300)
	start := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
	for i := range prices {
		prices[i] = contracts.PricePoint{Date: start.AddDate(0, 0, i), Close: 100 + float64(i)}
	}

	m := CalculateAssetMetrics(&contracts.AssetSeries{Ticker: "ABC", Prices: prices})

	assert.Equal(t, "ABC", m.Ticker)
	assert.Len(t, m.Returns, len(ReturnWindows))
	assert.Greater(t, m.Returns[252], 0.0)
	assert.Equal(t, 0.0, m.Returns[504], "insufficient history for 2y window")
	assert.Greater(t, m.Volatility, 0.0)
}

func TestCalculator_FlatHistory(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = 100000
	}
	history := linearHistory(values)
	returns := SimpleReturns(closesOf(history))

	m := NewCalculator(DefaultRiskFreeRate).Calculate(history, returns, nil)

	assert.Equal(t, 0.0, m.TotalReturn)
	assert.Equal(t, 0.0, m.CAGR)
	assert.Equal(t, 0.0, m.Volatility)
	assert.Equal(t, 0.0, m.Sharpe)
	assert.Equal(t, 0.0, m.Sortino)
	assert.Equal(t, 0.0, m.Calmar)
	assert.Equal(t, 0.0, m.MaxDrawdown)
	assert.Equal(t, 0.0, m.IRR)
	assert.Equal(t, 0.0, m.VaR95)
	assert.Equal(t, 0.0, m.CVaR95)
	assert.Equal(t, 0.0, m.GrowthScore)
}

func TestCalculator_Decline(t *testing.T) {
	// noisy path from 100 to 50 over 400 days
	values := make([]float64, 400)
	for i := range values {
		base := 100 - 50*float64(i)/float64(len(values)-1)
		if i%2 == 1 && i != len(values)-1 {
			base *= 1.01
		}
		values[i] = base
	}
	history := linearHistory(values)
	returns := SimpleReturns(closesOf(history))

	m := NewCalculator(DefaultRiskFreeRate).Calculate(history, returns, nil)

	assert.InDelta(t, -0.5, m.TotalReturn, 1e-9)
	assert.Less(t, m.CAGR, 0.0)
	assert.LessOrEqual(t, m.MaxDrawdown, -0.5)
	assert.Greater(t, m.Volatility, 0.0)
	assert.Less(t, m.Sharpe, 0.0)
	assert.Less(t, m.Sortino, 0.0)
	assert.Less(t, m.Calmar, 0.0)
	assert.Greater(t, m.VaR95, 0.0)
	assert.GreaterOrEqual(t, m.CVaR95, m.VaR95)
	assert.Equal(t, 0.0, m.GrowthScore)
}

func TestCalculator_ShortWindowFallsBackToTotalReturn(t *testing.T) {
	history := linearHistory([]float64{100, 101, 102, 103, 110})
	returns := SimpleReturns(closesOf(history))

	m := NewCalculator(0).Calculate(history, returns, nil)

	assert.InDelta(t, 0.10, m.TotalReturn, 1e-9)
	assert.InDelta(t, m.TotalReturn, m.CAGR, 1e-12)
	assert.InDelta(t, (110.0-103.0)/103.0, m.DailyReturn, 1e-12)
}

func TestCalculator_UsesSuppliedDrawdowns(t *testing.T) {
	history := linearHistory([]float64{100, 90, 95})
	drawdowns := []contracts.DrawdownPoint{
		{Date: history[0].Date, Drawdown: 0},
		{Date: history[1].Date, Drawdown: -0.1},
		{Date: history[2].Date, Drawdown: -0.05},
	}

	m := NewCalculator(0).Calculate(history, SimpleReturns(closesOf(history)), drawdowns)
	assert.InDelta(t, -0.1, m.MaxDrawdown, 1e-12)
}

func TestCalculator_EmptyHistory(t *testing.T) {
	m := NewCalculator(DefaultRiskFreeRate).Calculate(nil, nil, nil)
	assert.Equal(t, contracts.Metrics{}, m)
}

func TestDownsideDeviation(t *testing.T) {
	assert.Equal(t, 0.0, DownsideDeviation(nil))
	assert.Equal(t, 0.0, DownsideDeviation([]float64{0.01, 0.02}))

	// only -0.02 contributes but n = 4
	expected := math.Sqrt(0.0004/4) * math.Sqrt(252)
	assert.InDelta(t, expected, DownsideDeviation([]float64{0.01, -0.02, 0.03, 0}), 1e-12)
}

func TestGrowthScore(t *testing.T) {
	tests := []struct {
		cagr     float64
		expected float64
	}{
		{-0.2, 0},
		{0, 0},
		{0.15, 50},
		{0.30, 100},
		{0.90, 100},
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expected, GrowthScore(tt.cagr), 1e-9, "cagr=%v", tt.cagr)
	}
}

func TestCalculateVaR(t *testing.T) {
	returns := make([]float64, 100)
	for i := range returns {
		returns[i] = float64(i-50) / 1000 // -0.050 ... 0.049
	}

	result := CalculateVaR(returns, 0.95)

	require.Equal(t, 0.95, result.Confidence)
	// idx = floor(0.05*100) = 5 → sorted[5] = -0.045
	assert.InDelta(t, 0.045, result.VaR, 1e-12)
	// mean of -0.050..-0.045
	assert.InDelta(t, 0.0475, result.CVaR, 1e-12)

	empty := CalculateVaR(nil, 0.95)
	assert.Equal(t, 0.0, empty.VaR)
	assert.Equal(t, 0.0, empty.CVaR)
}

func TestStats(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-12)
	assert.Equal(t, 0.0, StdDev([]float64{5}))
	assert.InDelta(t, 1.0, StdDev([]float64{1, 2, 3}), 1e-12)

	returns := SimpleReturns([]float64{100, 0, 50, 100})
	// 100→0 is -1, 0→50 skipped, 50→100 is 1
	assert.Equal(t, []float64{-1, 1}, returns)
}
