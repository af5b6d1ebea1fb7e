package contracts

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleSeries() *AssetSeries {
	return &AssetSeries{
		Ticker: "ABC",
		Prices: []PricePoint{
			{Date: day(2024, 1, 2), Close: 10},
			{Date: day(2024, 1, 3), Close: 11},
			{Date: day(2024, 1, 5), Close: 12},
		},
	}
}

func TestAssetSeries_Accessors(t *testing.T) {
	s := sampleSeries()

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []float64{10, 11, 12}, s.Closes())

	first, ok := s.First()
	require.True(t, ok)
	assert.Equal(t, 10.0, first.Close)

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, 12.0, latest.Close)

	var empty *AssetSeries
	assert.Equal(t, 0, empty.Len())
	_, ok = empty.Latest()
	assert.False(t, ok)
}

func TestAssetSeries_LatestOnOrBefore(t *testing.T) {
	s := sampleSeries()

	tests := []struct {
		name   string
		date   time.Time
		close  float64
		wantOK bool
	}{
		{"before first", day(2024, 1, 1), 0, false},
		{"exact", day(2024, 1, 3), 11, true},
		{"gap uses previous", day(2024, 1, 4), 11, true},
		{"intraday timestamp", time.Date(2024, 1, 5, 15, 30, 0, 0, time.UTC), 12, true},
		{"after last", day(2024, 2, 1), 12, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := s.LatestOnOrBefore(tt.date)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.close, p.Close)
		})
	}
}

func TestAssetSeries_IndexByDate(t *testing.T) {
	idx := sampleSeries().IndexByDate()
	assert.Len(t, idx, 3)
	assert.Equal(t, 12.0, idx[day(2024, 1, 5)].Close)
}

type mapProvider map[string]*AssetSeries

func (m mapProvider) Series(_ context.Context, ticker string) (*AssetSeries, error) {
	s, ok := m[ticker]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ticker, ErrSeriesNotFound)
	}
	return s, nil
}

func TestLoadSeries(t *testing.T) {
	p := mapProvider{"ABC": sampleSeries()}

	out, err := LoadSeries(context.Background(), p, []string{"ABC"})
	require.NoError(t, err)
	assert.Equal(t, 3, out["ABC"].Len())

	_, err = LoadSeries(context.Background(), p, []string{"ABC", "XYZ"})
	assert.True(t, errors.Is(err, ErrSeriesNotFound))
}

func TestPortfolioAllocation_Helpers(t *testing.T) {
	a := &PortfolioAllocation{
		TotalCapital:    decimal.NewFromInt(1000),
		InvestedCapital: decimal.NewFromInt(900),
		UninvestedCash:  decimal.NewFromInt(100),
		Details: []AllocationDetail{
			{Ticker: "A", Shares: 3},
			{Ticker: "B", Shares: 5},
		},
	}

	assert.Equal(t, map[string]int64{"A": 3, "B": 5}, a.Shares())
	d, ok := a.Detail("B")
	require.True(t, ok)
	assert.Equal(t, int64(5), d.Shares)
	_, ok = a.Detail("Z")
	assert.False(t, ok)
	assert.InDelta(t, 0.1, a.CashDragPct(), 1e-12)
}
