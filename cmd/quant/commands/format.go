package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/LLeom997/AlphBasket-sub000/internal/backtest"
	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
	"github.com/LLeom997/AlphBasket-sub000/internal/portfolio"
	"github.com/LLeom997/AlphBasket-sub000/internal/risk"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// every command prints through these helpers
// ═══════════════════════════════════════════════════════════

const (
	singleRule = "───────────────────────────────────────────────────────────"
	doubleRule = "═══════════════════════════════════════════════════════════"

	// allocation rows shown in the largest-error table
	topWeightErrors = 5
)

// printHeader prints a titled block
func printHeader(w io.Writer, title string, kv ...[2]string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleRule)
	fmt.Fprintf(w, "  %s\n", title)
	if len(kv) > 0 {
		fmt.Fprintln(w, singleRule)
		for _, pair := range kv {
			printKeyValue(w, pair[0], pair[1], 12)
		}
	}
	fmt.Fprintln(w, singleRule)
}

// printKeyValue prints key-value pairs
func printKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}

// printTableHeader prints a table header
func printTableHeader(w io.Writer, columns []string, widths []int) {
	printTableRow(w, columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", totalWidth))
}

// printTableRow prints a table row
func printTableRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		fmt.Fprintf(w, "%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)
}

// printWarnings prints a bulleted warning list
func printWarnings(w io.Writer, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "⚠️  %d warning(s)\n", len(warnings))
	for _, warning := range warnings {
		fmt.Fprintf(w, "   • %s\n", warning)
	}
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func amount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// printResult renders one simulation result
func printResult(w io.Writer, r *contracts.SimulationResult) {
	printHeader(w, r.BasketName,
		[2]string{"Run ID", r.RunID},
		[2]string{"Period", fmt.Sprintf("%s ~ %s", r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"))},
		[2]string{"Days", fmt.Sprintf("%d", len(r.History))},
		[2]string{"Final Value", amount(r.LatestValue())},
	)

	m := r.Metrics
	fmt.Fprintln(w, "Metrics")
	printKeyValue(w, "Total Return", pct(m.TotalReturn), 14)
	printKeyValue(w, "CAGR", pct(m.CAGR), 14)
	printKeyValue(w, "Volatility", pct(m.Volatility), 14)
	printKeyValue(w, "Sharpe", fmt.Sprintf("%.2f", m.Sharpe), 14)
	printKeyValue(w, "Sortino", fmt.Sprintf("%.2f", m.Sortino), 14)
	printKeyValue(w, "Calmar", fmt.Sprintf("%.2f", m.Calmar), 14)
	printKeyValue(w, "Max Drawdown", pct(m.MaxDrawdown), 14)
	printKeyValue(w, "VaR 95", pct(m.VaR95), 14)
	printKeyValue(w, "CVaR 95", pct(m.CVaR95), 14)
	printKeyValue(w, "Growth Score", fmt.Sprintf("%.0f", m.GrowthScore), 14)

	if alloc := r.InitialAllocation; alloc != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Initial allocation (cash drag %s)\n", pct(alloc.CashDragPct()))
		if alloc.Overcommitted() {
			fmt.Fprintf(w, "Quantities overcommit capital: requested %s, invested %s\n",
				alloc.RequestedCapital.StringFixed(2), alloc.InvestedCapital.StringFixed(2))
		}
		widths := []int{12, 10, 8, 10, 10}
		printTableHeader(w, []string{"Ticker", "Price", "Shares", "Target", "Error"}, widths)
		for _, d := range portfolio.LargestWeightErrors(alloc, topWeightErrors) {
			printTableRow(w, []string{
				d.Ticker,
				amount(d.Price),
				fmt.Sprintf("%d", d.Shares),
				fmt.Sprintf("%.2f%%", d.TargetWeight),
				fmt.Sprintf("%+.2fpp", d.WeightError),
			}, widths)
		}
	}

	if len(r.Comparisons) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Constituents")
		widths := []int{12, 12, 12}
		printTableHeader(w, []string{"Ticker", "1Y CAGR", "Volatility"}, widths)
		tickers := make([]string, 0, len(r.Comparisons))
		for _, c := range r.Comparisons {
			tickers = append(tickers, c.Ticker)
		}
		sort.Strings(tickers)
		for _, t := range tickers {
			am := r.AssetMetrics[t]
			printTableRow(w, []string{t, pct(am.Returns[risk.ReturnWindows[0]]), pct(am.Volatility)}, widths)
		}
	}

	if fc := r.Forecast; fc != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Forecast (%s, %d paths, %d days)\n", fc.Strategy, fc.Simulations, fc.Horizon)
		if fc.Degenerate {
			fmt.Fprintln(w, "   flat projection, not enough history")
		} else {
			last := len(fc.Paths.P50) - 1
			printKeyValue(w, "P10", amount(fc.Paths.P10[last]), 14)
			printKeyValue(w, "P50", amount(fc.Paths.P50[last]), 14)
			printKeyValue(w, "P90", amount(fc.Paths.P90[last]), 14)
			printKeyValue(w, "P(profit)", pct(fc.ProbProfit), 14)
			printKeyValue(w, "Sample trades", fmt.Sprintf("%d", len(fc.Trades)), 14)
		}
	}

	printWarnings(w, r.Warnings)
}

// printBatch renders a batch summary table
func printBatch(w io.Writer, outcomes []backtest.Outcome) {
	s := backtest.Summarize(outcomes)
	printHeader(w, "Batch simulation",
		[2]string{"Total", fmt.Sprintf("%d", s.Total)},
		[2]string{"Succeeded", fmt.Sprintf("%d", s.Succeeded)},
		[2]string{"Failed", fmt.Sprintf("%d", s.Failed)},
		[2]string{"Fell back", fmt.Sprintf("%d", s.FellBack)},
	)

	widths := []int{20, 10, 10, 8, 8}
	printTableHeader(w, []string{"Basket", "CAGR", "MaxDD", "Sharpe", "Status"}, widths)
	for _, o := range outcomes {
		status := "ok"
		switch {
		case o.Fallback:
			status = "prior"
		case o.Err != nil:
			status = "failed"
		}

		if o.Result == nil {
			printTableRow(w, []string{o.BasketName, "-", "-", "-", status}, widths)
			continue
		}
		m := o.Result.Metrics
		printTableRow(w, []string{o.BasketName, pct(m.CAGR), pct(m.MaxDrawdown), fmt.Sprintf("%.2f", m.Sharpe), status}, widths)
	}

	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(w, "❌ %s: %s\n", o.BasketName, o.Error)
		}
	}
}
