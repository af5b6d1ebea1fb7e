package commands

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/LLeom997/AlphBasket-sub000/internal/backtest"
	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
)

func sampleResult() *contracts.SimulationResult {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	return &contracts.SimulationResult{
		RunID:      "run-1",
		BasketID:   "growth",
		BasketName: "Growth",
		StartDate:  start,
		EndDate:    start.AddDate(1, 0, 0),
		History: []contracts.ValuePoint{
			{Date: start, Close: 100000},
			{Date: start.AddDate(1, 0, 0), Close: 112000},
		},
		Metrics: contracts.Metrics{TotalReturn: 0.12, CAGR: 0.12, MaxDrawdown: -0.05, Sharpe: 1.1},
		InitialAllocation: &contracts.PortfolioAllocation{
			TotalCapital:    decimal.NewFromInt(100000),
			InvestedCapital: decimal.NewFromInt(99000),
			UninvestedCash:  decimal.NewFromInt(1000),
			Details: []contracts.AllocationDetail{
				{Ticker: "A", TargetWeight: 60, Price: 500, Shares: 119, WeightError: -0.5},
				{Ticker: "B", TargetWeight: 40, Price: 200, Shares: 200, WeightError: 0},
			},
		},
		Comparisons:  []contracts.AssetComparison{{Ticker: "B"}, {Ticker: "A"}},
		AssetMetrics: map[string]contracts.AssetMetrics{"A": {Ticker: "A", Volatility: 0.2}},
		Forecast: &contracts.Forecast{
			Strategy:    contracts.StrategyHold,
			Simulations: 100,
			Horizon:     1,
			Paths: contracts.MonteCarloPath{
				P10: []float64{112000, 100000},
				P50: []float64{112000, 115000},
				P90: []float64{112000, 130000},
			},
			ProbProfit: 0.6,
		},
		Warnings: []string{"history truncated"},
	}
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	printResult(&buf, sampleResult())
	out := buf.String()

	assert.Contains(t, out, "Growth")
	assert.Contains(t, out, "12.00%")
	assert.Contains(t, out, "cash drag 1.00%")
	assert.Contains(t, out, "-0.50pp")
	assert.Contains(t, out, "115000.00")
	assert.Contains(t, out, "60.00%")
	assert.Contains(t, out, "history truncated")
}

func TestPrintResult_Overcommitted(t *testing.T) {
	r := sampleResult()
	r.InitialAllocation.RequestedCapital = decimal.NewFromInt(50000)

	var buf bytes.Buffer
	printResult(&buf, r)
	assert.Contains(t, buf.String(), "requested 50000.00, invested 99000.00")

	r.InitialAllocation.RequestedCapital = decimal.NewFromInt(100000)
	buf.Reset()
	printResult(&buf, r)
	assert.NotContains(t, buf.String(), "overcommit")
}

func TestPrintResult_Degenerate(t *testing.T) {
	r := sampleResult()
	r.Forecast.Degenerate = true
	r.Warnings = nil

	var buf bytes.Buffer
	printResult(&buf, r)
	assert.Contains(t, buf.String(), "not enough history")
	assert.NotContains(t, buf.String(), "warning(s)")
}

func TestPrintBatch(t *testing.T) {
	outcomes := []backtest.Outcome{
		{BasketID: "a", BasketName: "Alpha", Result: sampleResult()},
		{BasketID: "b", BasketName: "Beta", Err: errors.New("boom"), Error: "boom"},
		{BasketID: "c", BasketName: "Gamma", Err: errors.New("late"), Error: "late", Fallback: true, Result: sampleResult()},
	}

	var buf bytes.Buffer
	printBatch(&buf, outcomes)
	out := buf.String()

	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "prior")
	assert.Contains(t, out, "Beta: boom")
}
