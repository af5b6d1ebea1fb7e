package risk

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear annualizes daily statistics
const TradingDaysPerYear = 252

// Mean returns the arithmetic mean, 0 for empty input
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return finite(stat.Mean(values, nil))
}

// StdDev returns the sample standard deviation (n-1), 0 with fewer than 2 values
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return finite(stat.StdDev(values, nil))
}

// SimpleReturns returns (v[t]-v[t-1])/v[t-1] for every t whose previous value is positive
func SimpleReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev <= 0 {
			continue
		}
		out = append(out, (values[i]-prev)/prev)
	}
	return out
}

// finite maps NaN and ±Inf to 0
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// safeDiv returns num/den, or 0 when den is 0 or the quotient is not finite
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return finite(num / den)
}
