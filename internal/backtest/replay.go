package backtest

import (
	"time"

	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
)

// Replay is the reconstructed buy-and-hold history
type Replay struct {
	History      []contracts.ValuePoint
	DailyReturns []float64
	Drawdowns    []contracts.DrawdownPoint
	Comparisons  []contracts.AssetComparison
}

// ReplayHoldings values fixed share counts on every common date.
// Open/high/low use each asset's own bar, falling back to close when missing.
func ReplayHoldings(
	dates []time.Time,
	series map[string]*contracts.AssetSeries,
	tickers []string,
	shares map[string]int64,
) *Replay {
	r := &Replay{
		History:      make([]contracts.ValuePoint, 0, len(dates)),
		DailyReturns: make([]float64, 0, len(dates)),
		Drawdowns:    make([]contracts.DrawdownPoint, 0, len(dates)),
		Comparisons:  make([]contracts.AssetComparison, len(tickers)),
	}

	bars := make([]map[time.Time]contracts.PricePoint, len(tickers))
	for i, ticker := range tickers {
		bars[i] = series[ticker].IndexByDate()
		r.Comparisons[i] = contracts.AssetComparison{
			Ticker: ticker,
			Shares: shares[ticker],
			Values: make([]contracts.SeriesPoint, 0, len(dates)),
		}
	}

	peak := 0.0
	for t, date := range dates {
		point := contracts.ValuePoint{Date: date}
		for i, ticker := range tickers {
			bar := bars[i][date]
			qty := float64(shares[ticker])

			point.Open += qty * orClose(bar.Open, bar.Close)
			point.High += qty * orClose(bar.High, bar.Close)
			point.Low += qty * orClose(bar.Low, bar.Close)
			point.Close += qty * bar.Close

			r.Comparisons[i].Values = append(r.Comparisons[i].Values, contracts.SeriesPoint{
				Date:  date,
				Value: qty * bar.Close,
			})
		}
		r.History = append(r.History, point)

		if t > 0 {
			prev := r.History[t-1].Close
			ret := 0.0
			if prev > 0 {
				ret = (point.Close - prev) / prev
			}
			r.DailyReturns = append(r.DailyReturns, ret)
		}

		if point.Close > peak {
			peak = point.Close
		}
		dd := 0.0
		if peak > 0 {
			dd = min((point.Close-peak)/peak, 0)
		}
		r.Drawdowns = append(r.Drawdowns, contracts.DrawdownPoint{Date: date, Drawdown: dd})
	}

	return r
}

func orClose(v, fallback float64) float64 {
	if v <= 0 {
		return fallback
	}
	return v
}

// Bars converts the value history into OHLC bars for indicator input
func (r *Replay) Bars() []contracts.PricePoint {
	out := make([]contracts.PricePoint, len(r.History))
	for i, p := range r.History {
		out[i] = contracts.PricePoint{Date: p.Date, Open: p.Open, High: p.High, Low: p.Low, Close: p.Close}
	}
	return out
}
