package contracts

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllocationDetail is the purchase outcome for one asset
type AllocationDetail struct {
	Ticker       string          `json:"ticker"`
	TargetWeight float64         `json:"target_weight"` // % of capital
	TargetAmount decimal.Decimal `json:"target_amount"`
	Price        float64         `json:"price"` // close on the valuation date
	Shares       int64           `json:"shares"`
	ActualAmount decimal.Decimal `json:"actual_amount"`
	ActualWeight float64         `json:"actual_weight"` // % of capital
	WeightError  float64         `json:"weight_error"`  // actual - target, percentage points
}

// PortfolioAllocation is the result of turning weights into whole shares
// ⭐ invariant: InvestedCapital + UninvestedCash == TotalCapital
// TotalCapital exceeds RequestedCapital only when explicit quantities overcommit.
type PortfolioAllocation struct {
	Date             time.Time          `json:"date"`
	RequestedCapital decimal.Decimal    `json:"requested_capital"`
	TotalCapital     decimal.Decimal    `json:"total_capital"`
	InvestedCapital  decimal.Decimal    `json:"invested_capital"`
	UninvestedCash   decimal.Decimal    `json:"uninvested_cash"` // cash drag
	Details          []AllocationDetail `json:"details"`
}

// Shares returns ticker -> whole shares bought
func (a *PortfolioAllocation) Shares() map[string]int64 {
	shares := make(map[string]int64, len(a.Details))
	for _, d := range a.Details {
		shares[d.Ticker] = d.Shares
	}
	return shares
}

// Detail returns the allocation detail for a ticker
func (a *PortfolioAllocation) Detail(ticker string) (AllocationDetail, bool) {
	for _, d := range a.Details {
		if d.Ticker == ticker {
			return d, true
		}
	}
	return AllocationDetail{}, false
}

// Overcommitted reports whether purchases cost more than the requested capital
func (a *PortfolioAllocation) Overcommitted() bool {
	return !a.RequestedCapital.IsZero() && a.TotalCapital.GreaterThan(a.RequestedCapital)
}

// CashDragPct returns uninvested cash as a fraction of total capital
func (a *PortfolioAllocation) CashDragPct() float64 {
	if a.TotalCapital.IsZero() {
		return 0
	}
	return a.UninvestedCash.Div(a.TotalCapital).InexactFloat64()
}
