package forecast

import (
	"math"

	"github.com/LLeom997/AlphBasket-sub000/internal/indicators"
)

// maxMomentumMultiplier bounds the drift boost from a short bullish sample
const maxMomentumMultiplier = 3.0

// MomentumSignal summarizes historical behaviour on bullish days
type MomentumSignal struct {
	BullishDays int
	BullishAvg  float64 // mean return on bullish days
	Mean        float64 // unconditional mean return
	Multiplier  float64 // BullishAvg / Mean, 1 when not meaningful
	Bullish     bool    // last bar is bullish
}

// AnalyzeMomentum classifies each day by MACD line > signal and RSI > 50
// and compares the average return of bullish days to the overall mean
func AnalyzeMomentum(closes []float64) MomentumSignal {
	sig := MomentumSignal{Multiplier: 1}
	if len(closes) < 2 {
		return sig
	}

	macd := indicators.MACD(closes)
	rsi := indicators.RSI(closes, indicators.DefaultRSIPeriod)

	var sum, bullSum float64
	var n int
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev <= 0 {
			continue
		}
		r := (closes[i] - prev) / prev
		sum += r
		n++
		if indicators.IsBullish(macd, rsi, i) {
			bullSum += r
			sig.BullishDays++
		}
	}

	if n > 0 {
		sig.Mean = sum / float64(n)
	}
	if sig.BullishDays > 0 {
		sig.BullishAvg = bullSum / float64(sig.BullishDays)
	}
	if sig.BullishAvg > 0 && sig.Mean > 0 {
		sig.Multiplier = math.Min(sig.BullishAvg/sig.Mean, maxMomentumMultiplier)
	}
	sig.Bullish = indicators.IsBullish(macd, rsi, len(closes)-1)

	return sig
}

// AdjustDrift scales drift by the multiplier only while currently bullish
func (s MomentumSignal) AdjustDrift(drift float64) float64 {
	if !s.Bullish {
		return drift
	}
	return drift * s.Multiplier
}
