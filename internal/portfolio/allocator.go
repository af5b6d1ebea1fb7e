package portfolio

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
	"github.com/LLeom997/AlphBasket-sub000/pkg/logger"
)

const fullWeight = 100.0

var hundred = decimal.NewFromInt(100)

// Allocator turns target weights (or explicit quantities) into whole shares
// ⭐ SSOT: share sizing and cash drag are computed here only
type Allocator struct {
	logger *logger.Logger
}

// NewAllocator creates a new allocator
func NewAllocator(log *logger.Logger) *Allocator {
	return &Allocator{logger: log}
}

// AllocationRequest is a single valuation-date allocation
type AllocationRequest struct {
	Items   []contracts.BasketItem
	Prices  map[string]float64 // ticker -> close on Date
	Mode    contracts.AllocationMode
	Capital float64
	Date    time.Time
}

// Allocate buys floor(target / price) shares per item.
// Returns non-fatal warnings (weight normalization, missing prices).
func (a *Allocator) Allocate(req AllocationRequest) (*contracts.PortfolioAllocation, []string, error) {
	if req.Capital <= 0 {
		return nil, nil, fmt.Errorf("%w: capital must be positive, got %v", contracts.ErrInvalidBasket, req.Capital)
	}

	var warnings []string
	capital := decimal.NewFromFloat(req.Capital)

	// 1. Normalize weights that over-commit capital
	scale := 1.0
	if total := totalWeight(req.Items); total > fullWeight {
		scale = fullWeight / total
		warnings = append(warnings, fmt.Sprintf(
			"weights sum to %.2f%%, normalized to 100%%", total))
	}

	// 2. Size each position
	details := make([]contracts.AllocationDetail, 0, len(req.Items))
	invested := decimal.Zero
	for _, item := range req.Items {
		price := req.Prices[item.Ticker]
		weight := item.Weight * scale
		target := capital.Mul(decimal.NewFromFloat(weight)).Div(hundred)

		var shares int64
		switch {
		case req.Mode == contracts.AllocationQuantity && item.Quantity != nil:
			shares = *item.Quantity
		case price <= 0:
			warnings = append(warnings, fmt.Sprintf(
				"%s has no valid price on %s, allocated 0 shares", item.Ticker, req.Date.Format("2006-01-02")))
		default:
			shares = target.Div(decimal.NewFromFloat(price)).Floor().IntPart()
		}

		actual := decimal.Zero
		if price > 0 {
			actual = decimal.NewFromFloat(price).Mul(decimal.NewFromInt(shares))
		}
		invested = invested.Add(actual)

		details = append(details, contracts.AllocationDetail{
			Ticker:       item.Ticker,
			TargetWeight: weight,
			TargetAmount: target,
			Price:        price,
			Shares:       shares,
			ActualAmount: actual,
		})
	}

	// 3. Explicit quantities may exceed capital; the basket is then worth what was bought
	total := decimal.Max(capital, invested)
	if invested.GreaterThan(capital) {
		warnings = append(warnings, fmt.Sprintf(
			"explicit quantities cost %s, exceeding capital %s", invested.StringFixed(2), capital.StringFixed(2)))
	}

	for i := range details {
		details[i].ActualWeight = details[i].ActualAmount.Div(total).Mul(hundred).InexactFloat64()
		details[i].WeightError = details[i].ActualWeight - details[i].TargetWeight
	}

	allocation := &contracts.PortfolioAllocation{
		Date:             contracts.DateOnly(req.Date),
		RequestedCapital: capital,
		TotalCapital:     total,
		InvestedCapital:  invested,
		UninvestedCash:   total.Sub(invested),
		Details:          details,
	}

	a.logger.WithFields(map[string]interface{}{
		"date":     allocation.Date.Format("2006-01-02"),
		"mode":     string(req.Mode),
		"assets":   len(details),
		"invested": invested.StringFixed(2),
		"cash":     allocation.UninvestedCash.StringFixed(2),
	}).Debug("Allocation computed")

	return allocation, warnings, nil
}

// totalWeight sums item weights
func totalWeight(items []contracts.BasketItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Weight
	}
	return total
}

// LargestWeightErrors returns details ordered by absolute weight error, largest first
func LargestWeightErrors(alloc *contracts.PortfolioAllocation, n int) []contracts.AllocationDetail {
	sorted := make([]contracts.AllocationDetail, len(alloc.Details))
	copy(sorted, alloc.Details)
	sort.Slice(sorted, func(i, j int) bool {
		return abs(sorted[i].WeightError) > abs(sorted[j].WeightError)
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
