package contracts

import (
	"fmt"
	"strings"
	"time"
)

// AllocationMode decides how target positions are sized
type AllocationMode string

const (
	AllocationWeight   AllocationMode = "weight"   // capital * weight / 100
	AllocationQuantity AllocationMode = "quantity" // explicit share counts
)

// RebalanceInterval is the declared rebalancing policy
type RebalanceInterval string

const (
	RebalanceNone      RebalanceInterval = "none"
	RebalanceMonthly   RebalanceInterval = "monthly"
	RebalanceQuarterly RebalanceInterval = "quarterly"
	RebalanceYearly    RebalanceInterval = "yearly"
)

// BasketItem is a single constituent of a basket
type BasketItem struct {
	Ticker     string  `json:"ticker" yaml:"ticker"`
	Weight     float64 `json:"weight" yaml:"weight"`                         // 0 ~ 100 (% of capital)
	Quantity   *int64  `json:"quantity,omitempty" yaml:"quantity,omitempty"` // used in quantity mode
	Suppressed bool    `json:"suppressed,omitempty" yaml:"suppressed,omitempty"`
}

// Basket is a user-defined weighted set of equities
type Basket struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Items          []BasketItem      `json:"items"`
	Mode           AllocationMode    `json:"mode"`
	InitialCapital float64           `json:"initial_capital"`
	Rebalance      RebalanceInterval `json:"rebalance"`
	InceptionDate  *time.Time        `json:"inception_date,omitempty"` // nominal backtest start
}

// ActiveItems returns the non-suppressed items in basket order
func (b *Basket) ActiveItems() []BasketItem {
	active := make([]BasketItem, 0, len(b.Items))
	for _, item := range b.Items {
		if !item.Suppressed {
			active = append(active, item)
		}
	}
	return active
}

// Tickers returns the tickers of active items
func (b *Basket) Tickers() []string {
	active := b.ActiveItems()
	tickers := make([]string, len(active))
	for i, item := range active {
		tickers[i] = item.Ticker
	}
	return tickers
}

// TotalWeight sums the weights of active items
func (b *Basket) TotalWeight() float64 {
	var total float64
	for _, item := range b.ActiveItems() {
		total += item.Weight
	}
	return total
}

// Validate checks structural rules of the basket.
// Zero active items is reported separately as ErrNoActiveAssets.
func (b *Basket) Validate() error {
	if b.InitialCapital <= 0 {
		return fmt.Errorf("%w: initial capital must be positive, got %v", ErrInvalidBasket, b.InitialCapital)
	}

	switch b.Mode {
	case AllocationWeight, AllocationQuantity:
	default:
		return fmt.Errorf("%w: unknown allocation mode %q", ErrInvalidBasket, b.Mode)
	}

	switch b.Rebalance {
	case RebalanceNone, RebalanceMonthly, RebalanceQuarterly, RebalanceYearly, "":
	default:
		return fmt.Errorf("%w: unknown rebalance interval %q", ErrInvalidBasket, b.Rebalance)
	}

	seen := make(map[string]bool, len(b.Items))
	for _, item := range b.Items {
		ticker := strings.TrimSpace(item.Ticker)
		if ticker == "" {
			return fmt.Errorf("%w: empty ticker", ErrInvalidBasket)
		}
		if seen[ticker] {
			return fmt.Errorf("%w: duplicate ticker %s", ErrInvalidBasket, ticker)
		}
		seen[ticker] = true

		if item.Weight < 0 || item.Weight > 100 {
			return fmt.Errorf("%w: weight for %s must be within 0~100, got %v", ErrInvalidBasket, ticker, item.Weight)
		}
		if item.Quantity != nil && *item.Quantity < 0 {
			return fmt.Errorf("%w: quantity for %s must be non-negative", ErrInvalidBasket, ticker)
		}
	}

	return nil
}
