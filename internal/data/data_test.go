package data

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
	"github.com/LLeom997/AlphBasket-sub000/pkg/logger"
	"github.com/LLeom997/AlphBasket-sub000/pkg/redis"
)

func sampleSeries(ticker string) *contracts.AssetSeries {
	return &contracts.AssetSeries{
		Ticker: ticker,
		Prices: []contracts.PricePoint{
			{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 10},
			{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Close: 11},
		},
	}
}

func TestSeriesCache(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewSeriesCache(time.Hour)
	c.now = func() time.Time { return now }

	_, ok := c.Get("ABC")
	assert.False(t, ok)

	c.Put(sampleSeries("ABC"))
	s, ok := c.Get("ABC")
	require.True(t, ok)
	assert.Equal(t, 2, s.Len())

	now = now.Add(2 * time.Hour)
	_, ok = c.Get("ABC")
	assert.False(t, ok, "expired entry")
	assert.Equal(t, 1, c.Len())

	assert.Equal(t, 1, c.Purge())
	assert.Equal(t, 0, c.Len())

	c.Put(sampleSeries("XYZ"))
	c.Delete("XYZ")
	assert.Equal(t, 0, c.Len())
}

func TestSeriesCache_NoTTL(t *testing.T) {
	c := NewSeriesCache(0)
	c.Put(sampleSeries("ABC"))
	c.now = func() time.Time { return time.Now().Add(1000 * time.Hour) }

	_, ok := c.Get("ABC")
	assert.True(t, ok)
	assert.Equal(t, 0, c.Purge())
}

type countingProvider struct {
	calls  map[string]int
	series map[string]*contracts.AssetSeries
}

func (p *countingProvider) Series(_ context.Context, ticker string) (*contracts.AssetSeries, error) {
	p.calls[ticker]++
	s, ok := p.series[ticker]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrSeriesNotFound)
	}
	return s, nil
}

func TestCachedProvider(t *testing.T) {
	source := &countingProvider{
		calls:  map[string]int{},
		series: map[string]*contracts.AssetSeries{"ABC": sampleSeries("ABC")},
	}
	p := NewCachedProvider(source, NewSeriesCache(time.Hour), redis.NewCache(redis.Disabled(), "test"), time.Hour, logger.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		s, err := p.Series(ctx, "ABC")
		require.NoError(t, err)
		assert.Equal(t, "ABC", s.Ticker)
	}
	assert.Equal(t, 1, source.calls["ABC"])

	require.NoError(t, p.Invalidate(ctx, "ABC"))
	_, err := p.Series(ctx, "ABC")
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls["ABC"])

	_, err = p.Series(ctx, "MISSING")
	assert.True(t, errors.Is(err, contracts.ErrSeriesNotFound))
	_, err = p.Series(ctx, "MISSING")
	assert.Error(t, err)
	assert.Equal(t, 2, source.calls["MISSING"], "failures are not cached")
}

func TestReadPricesCSV(t *testing.T) {
	input := strings.Join([]string{
		"Date,Open,High,Low,Close,Volume",
		"2024-01-02,10,11,9,10.5,1000",
		"2024-01-03,,,,11,",
	}, "\n")

	prices, err := ReadPricesCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, prices, 2)

	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), prices[0].Date)
	assert.Equal(t, 10.0, prices[0].Open)
	assert.Equal(t, 11.0, prices[0].High)
	assert.Equal(t, 9.0, prices[0].Low)
	assert.Equal(t, 10.5, prices[0].Close)
	assert.Equal(t, int64(1000), prices[0].Volume)

	assert.Equal(t, 11.0, prices[1].Open, "missing open falls back to close")
	assert.Equal(t, 11.0, prices[1].Low)
	assert.Equal(t, int64(0), prices[1].Volume)
}

func TestReadPricesCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing close column", "date,open\n2024-01-02,1\n"},
		{"bad date", "date,close\n02/01/2024,1\n"},
		{"bad close", "date,close\n2024-01-02,abc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadPricesCSV(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}

	prices, err := ReadPricesCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestCSVProvider(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ABC.csv"),
		[]byte("date,close\n2024-01-02,10\n2024-01-03,11\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "EMPTY.csv"),
		[]byte("date,close\n"), 0o644))

	p := NewCSVProvider(dir)
	ctx := context.Background()

	s, err := p.Series(ctx, "ABC")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 11}, s.Closes())

	_, err = p.Series(ctx, "NOPE")
	assert.True(t, errors.Is(err, contracts.ErrSeriesNotFound))

	_, err = p.Series(ctx, "EMPTY")
	assert.True(t, errors.Is(err, contracts.ErrSeriesNotFound))

	tickers, err := p.Tickers()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ABC", "EMPTY"}, tickers)
}
