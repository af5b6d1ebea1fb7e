package indicators

import (
	"math"

	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
)

// Default periods
const (
	DefaultRSIPeriod = 14
	DefaultATRPeriod = 14

	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9
)

// =============================================================================
// Moving Averages
// =============================================================================

// SMA returns the trailing simple moving average.
// Indices before period-1 carry the raw value (no NaN padding).
func SMA(data []float64, period int) []float64 {
	out := make([]float64, len(data))
	if period <= 1 {
		copy(out, data)
		return out
	}

	var sum float64
	for i, v := range data {
		sum += v
		if i >= period {
			sum -= data[i-period]
		}
		if i < period-1 {
			out[i] = v
			continue
		}
		out[i] = sum / float64(period)
	}
	return out
}

// EMA returns the exponential moving average seeded with data[0]
func EMA(data []float64, period int) []float64 {
	out := make([]float64, len(data))
	if len(data) == 0 {
		return out
	}

	k := 2.0 / (float64(period) + 1.0)
	out[0] = data[0]
	for i := 1; i < len(data); i++ {
		out[i] = data[i]*k + out[i-1]*(1-k)
	}
	return out
}

// =============================================================================
// Oscillators
// =============================================================================

// RSI returns Wilder's Relative Strength Index.
// The first period indices are 50 (neutral); avgLoss == 0 yields 100.
func RSI(data []float64, period int) []float64 {
	out := make([]float64, len(data))
	for i := range out {
		out[i] = 50
	}
	if period <= 0 || len(data) <= period {
		return out
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := data[i] - data[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(data); i++ {
		change := data[i] - data[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACDResult holds the MACD line, its signal line and the histogram
type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// MACD returns EMA(12) - EMA(26) and its EMA(9) signal
func MACD(data []float64) MACDResult {
	fast := EMA(data, macdFast)
	slow := EMA(data, macdSlow)

	line := make([]float64, len(data))
	for i := range data {
		line[i] = fast[i] - slow[i]
	}
	signal := EMA(line, macdSignal)

	hist := make([]float64, len(data))
	for i := range data {
		hist[i] = line[i] - signal[i]
	}

	return MACDResult{Line: line, Signal: signal, Histogram: hist}
}

// IsBullish reports MACD line above signal and RSI above 50 at index i
func IsBullish(macd MACDResult, rsi []float64, i int) bool {
	if i < 0 || i >= len(macd.Line) || i >= len(rsi) {
		return false
	}
	return macd.Line[i] > macd.Signal[i] && rsi[i] > 50
}

// =============================================================================
// Volatility
// =============================================================================

// TrueRange returns max(high-low, |high-prevClose|, |low-prevClose|).
// Index 0 has no previous close and uses high-low.
func TrueRange(prices []contracts.PricePoint) []float64 {
	out := make([]float64, len(prices))
	for i, p := range prices {
		hl := p.High - p.Low
		if i == 0 {
			out[i] = hl
			continue
		}
		prevClose := prices[i-1].Close
		out[i] = math.Max(hl, math.Max(math.Abs(p.High-prevClose), math.Abs(p.Low-prevClose)))
	}
	return out
}

// ATR returns Wilder's Average True Range.
// ATR[period] is the mean of the first period true ranges (bars 1..period);
// indices before period are 0.
func ATR(prices []contracts.PricePoint, period int) []float64 {
	out := make([]float64, len(prices))
	if period <= 0 || len(prices) <= period {
		return out
	}

	tr := TrueRange(prices)

	var sum float64
	for i := 1; i <= period; i++ {
		sum += tr[i]
	}
	out[period] = sum / float64(period)

	for i := period + 1; i < len(prices); i++ {
		out[i] = (out[i-1]*float64(period-1) + tr[i]) / float64(period)
	}
	return out
}
