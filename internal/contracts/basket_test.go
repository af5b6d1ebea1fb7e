package contracts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qty(n int64) *int64 { return &n }

func TestBasket_ActiveItems(t *testing.T) {
	b := Basket{
		Items: []BasketItem{
			{Ticker: "A", Weight: 50},
			{Ticker: "B", Weight: 30, Suppressed: true},
			{Ticker: "C", Weight: 20},
		},
	}

	active := b.ActiveItems()
	require.Len(t, active, 2)
	assert.Equal(t, "A", active[0].Ticker)
	assert.Equal(t, "C", active[1].Ticker)
	assert.Equal(t, []string{"A", "C"}, b.Tickers())
	assert.InDelta(t, 70.0, b.TotalWeight(), 1e-12)
}

func TestBasket_Validate(t *testing.T) {
	valid := func() Basket {
		return Basket{
			Name:           "Core",
			Mode:           AllocationWeight,
			InitialCapital: 100000,
			Rebalance:      RebalanceNone,
			Items: []BasketItem{
				{Ticker: "A", Weight: 60},
				{Ticker: "B", Weight: 40},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(b *Basket)
		wantErr bool
	}{
		{"valid", func(b *Basket) {}, false},
		{"quantity mode", func(b *Basket) {
			b.Mode = AllocationQuantity
			b.Items[0].Quantity = qty(10)
		}, false},
		{"empty rebalance defaults", func(b *Basket) { b.Rebalance = "" }, false},
		{"zero capital", func(b *Basket) { b.InitialCapital = 0 }, true},
		{"unknown mode", func(b *Basket) { b.Mode = "random" }, true},
		{"unknown rebalance", func(b *Basket) { b.Rebalance = "weekly" }, true},
		{"empty ticker", func(b *Basket) { b.Items[0].Ticker = " " }, true},
		{"duplicate ticker", func(b *Basket) { b.Items[1].Ticker = "A" }, true},
		{"negative weight", func(b *Basket) { b.Items[0].Weight = -1 }, true},
		{"weight above 100", func(b *Basket) { b.Items[0].Weight = 101 }, true},
		{"negative quantity", func(b *Basket) { b.Items[0].Quantity = qty(-1) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid()
			tt.mutate(&b)
			err := b.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidBasket))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want Strategy
		ok   bool
	}{
		{"", StrategyHold, true},
		{"hold", StrategyHold, true},
		{"target_sl", StrategyTargetSL, true},
		{"momentum", StrategyMomentum, true},
		{"martingale", StrategyHold, false},
	}

	for _, tt := range tests {
		got, ok := ParseStrategy(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}
