package contracts

import (
	"sort"
	"time"
)

// PricePoint is one daily OHLC bar
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// AssetSeries is a ticker's ascending daily price history
// ⭐ SSOT: prices are immutable once fetched; derived metrics are recomputed on demand
type AssetSeries struct {
	Ticker string       `json:"ticker"`
	Prices []PricePoint `json:"prices"`
}

// Len returns the number of bars
func (s *AssetSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Prices)
}

// Closes returns the close prices in order
func (s *AssetSeries) Closes() []float64 {
	closes := make([]float64, s.Len())
	for i, p := range s.Prices {
		closes[i] = p.Close
	}
	return closes
}

// First returns the earliest bar
func (s *AssetSeries) First() (PricePoint, bool) {
	if s.Len() == 0 {
		return PricePoint{}, false
	}
	return s.Prices[0], true
}

// Latest returns the most recent bar
func (s *AssetSeries) Latest() (PricePoint, bool) {
	if s.Len() == 0 {
		return PricePoint{}, false
	}
	return s.Prices[len(s.Prices)-1], true
}

// LatestOnOrBefore returns the most recent bar dated on or before date
func (s *AssetSeries) LatestOnOrBefore(date time.Time) (PricePoint, bool) {
	day := DateOnly(date)
	idx := sort.Search(s.Len(), func(i int) bool {
		return DateOnly(s.Prices[i].Date).After(day)
	})
	if idx == 0 {
		return PricePoint{}, false
	}
	return s.Prices[idx-1], true
}

// IndexByDate maps each calendar day to its bar
func (s *AssetSeries) IndexByDate() map[time.Time]PricePoint {
	idx := make(map[time.Time]PricePoint, s.Len())
	for _, p := range s.Prices {
		idx[DateOnly(p.Date)] = p
	}
	return idx
}

// DateOnly truncates t to its calendar day in UTC
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
