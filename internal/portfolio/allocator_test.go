package portfolio

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
	"github.com/LLeom997/AlphBasket-sub000/pkg/logger"
)

var valuationDate = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func qty(n int64) *int64 { return &n }

func TestAllocate_WeightMode(t *testing.T) {
	a := NewAllocator(logger.Nop())

	alloc, warnings, err := a.Allocate(AllocationRequest{
		Items: []contracts.BasketItem{
			{Ticker: "A", Weight: 60},
			{Ticker: "B", Weight: 40},
		},
		Prices:  map[string]float64{"A": 500, "B": 200},
		Mode:    contracts.AllocationWeight,
		Capital: 100000,
		Date:    valuationDate,
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, map[string]int64{"A": 120, "B": 200}, alloc.Shares())
	assert.True(t, alloc.UninvestedCash.IsZero())
	assert.True(t, alloc.InvestedCapital.Equal(decimal.NewFromInt(100000)))
	assert.True(t, alloc.TotalCapital.Equal(decimal.NewFromInt(100000)))

	d, ok := alloc.Detail("A")
	require.True(t, ok)
	assert.InDelta(t, 60.0, d.ActualWeight, 1e-9)
	assert.InDelta(t, 0.0, d.WeightError, 1e-9)
}

func TestAllocate_CashDrag(t *testing.T) {
	a := NewAllocator(logger.Nop())

	alloc, _, err := a.Allocate(AllocationRequest{
		Items: []contracts.BasketItem{
			{Ticker: "A", Weight: 50},
			{Ticker: "B", Weight: 30},
		},
		Prices:  map[string]float64{"A": 333, "B": 70},
		Mode:    contracts.AllocationWeight,
		Capital: 10000,
		Date:    valuationDate,
	})
	require.NoError(t, err)

	// 5000/333 = 15.01 → 15, 3000/70 = 42.8 → 42
	assert.Equal(t, map[string]int64{"A": 15, "B": 42}, alloc.Shares())
	invested := decimal.NewFromInt(15*333 + 42*70)
	assert.True(t, alloc.InvestedCapital.Equal(invested))
	assert.True(t, alloc.InvestedCapital.Add(alloc.UninvestedCash).Equal(alloc.TotalCapital))
	assert.True(t, alloc.UninvestedCash.GreaterThan(decimal.Zero))

	for _, d := range alloc.Details {
		assert.LessOrEqual(t, d.ActualAmount.Cmp(d.TargetAmount), 0, "never buys more than target")
		assert.LessOrEqual(t, d.WeightError, 0.0)
	}
}

func TestAllocate_NormalizesOverweight(t *testing.T) {
	a := NewAllocator(logger.Nop())

	alloc, warnings, err := a.Allocate(AllocationRequest{
		Items: []contracts.BasketItem{
			{Ticker: "A", Weight: 80},
			{Ticker: "B", Weight: 80},
		},
		Prices:  map[string]float64{"A": 10, "B": 10},
		Mode:    contracts.AllocationWeight,
		Capital: 1000,
		Date:    valuationDate,
	})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "normalized")

	assert.Equal(t, map[string]int64{"A": 50, "B": 50}, alloc.Shares())
	assert.True(t, alloc.InvestedCapital.LessThanOrEqual(alloc.TotalCapital))
}

func TestAllocate_ZeroPrice(t *testing.T) {
	a := NewAllocator(logger.Nop())

	alloc, warnings, err := a.Allocate(AllocationRequest{
		Items:   []contracts.BasketItem{{Ticker: "A", Weight: 100}},
		Prices:  map[string]float64{"A": 0},
		Mode:    contracts.AllocationWeight,
		Capital: 1000,
		Date:    valuationDate,
	})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, int64(0), alloc.Shares()["A"])
	assert.True(t, alloc.UninvestedCash.Equal(decimal.NewFromInt(1000)))
}

func TestAllocate_QuantityMode(t *testing.T) {
	a := NewAllocator(logger.Nop())

	t.Run("explicit quantity used as-is", func(t *testing.T) {
		alloc, _, err := a.Allocate(AllocationRequest{
			Items: []contracts.BasketItem{
				{Ticker: "A", Weight: 50, Quantity: qty(3)},
				{Ticker: "B", Weight: 50},
			},
			Prices:  map[string]float64{"A": 100, "B": 100},
			Mode:    contracts.AllocationQuantity,
			Capital: 1000,
			Date:    valuationDate,
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"A": 3, "B": 5}, alloc.Shares())
		assert.True(t, alloc.UninvestedCash.Equal(decimal.NewFromInt(200)))
		assert.True(t, alloc.RequestedCapital.Equal(alloc.TotalCapital))
		assert.False(t, alloc.Overcommitted())
	})

	t.Run("overcommitted quantities raise total capital", func(t *testing.T) {
		alloc, warnings, err := a.Allocate(AllocationRequest{
			Items:   []contracts.BasketItem{{Ticker: "A", Weight: 100, Quantity: qty(20)}},
			Prices:  map[string]float64{"A": 100},
			Mode:    contracts.AllocationQuantity,
			Capital: 1000,
			Date:    valuationDate,
		})
		require.NoError(t, err)
		require.NotEmpty(t, warnings)
		assert.True(t, alloc.TotalCapital.Equal(decimal.NewFromInt(2000)))
		assert.True(t, alloc.RequestedCapital.Equal(decimal.NewFromInt(1000)))
		assert.True(t, alloc.Overcommitted())
		assert.True(t, alloc.UninvestedCash.IsZero())
	})
}

func TestAllocate_InvalidCapital(t *testing.T) {
	a := NewAllocator(logger.Nop())

	_, _, err := a.Allocate(AllocationRequest{Capital: 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrInvalidBasket))
}

func TestLargestWeightErrors(t *testing.T) {
	alloc := &contracts.PortfolioAllocation{
		Details: []contracts.AllocationDetail{
			{Ticker: "A", WeightError: -0.5},
			{Ticker: "B", WeightError: -3},
			{Ticker: "C", WeightError: -1},
		},
	}

	top := LargestWeightErrors(alloc, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "B", top[0].Ticker)
	assert.Equal(t, "C", top[1].Ticker)
	assert.Equal(t, "A", alloc.Details[0].Ticker, "input is not reordered")
}
