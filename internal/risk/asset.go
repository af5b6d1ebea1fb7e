package risk

import (
	"math"

	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
)

// ReturnWindows are trailing CAGR windows in trading days (1/2/3/5/10/15 years)
var ReturnWindows = []int{252, 504, 756, 1260, 2520, 3780}

// WindowCAGR returns the annualized growth over the trailing days window.
// Requires len(closes) > days; returns 0 on short history or non-positive start price.
func WindowCAGR(closes []float64, days int) float64 {
	if days <= 0 || len(closes) <= days {
		return 0
	}

	latest := closes[len(closes)-1]
	past := closes[len(closes)-1-days]
	if past <= 0 {
		return 0
	}

	years := float64(days) / TradingDaysPerYear
	return finite(math.Pow(latest/past, 1/years) - 1)
}

// AnnualizedVolatility is the stdev of the last 252 daily simple returns times √252
func AnnualizedVolatility(closes []float64) float64 {
	start := len(closes) - (TradingDaysPerYear + 1)
	if start < 0 {
		start = 0
	}

	returns := SimpleReturns(closes[start:])
	if len(returns) < 2 {
		return 0
	}
	return StdDev(returns) * math.Sqrt(TradingDaysPerYear)
}

// CalculateAssetMetrics computes trailing window returns and volatility for one asset
func CalculateAssetMetrics(series *contracts.AssetSeries) contracts.AssetMetrics {
	closes := series.Closes()

	returns := make(map[int]float64, len(ReturnWindows))
	for _, w := range ReturnWindows {
		returns[w] = WindowCAGR(closes, w)
	}

	return contracts.AssetMetrics{
		Ticker:     series.Ticker,
		Returns:    returns,
		Volatility: AnnualizedVolatility(closes),
	}
}
