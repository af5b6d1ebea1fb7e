package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LLeom997/AlphBasket-sub000/internal/indicators"
	"github.com/LLeom997/AlphBasket-sub000/internal/risk"
)

// indicatorsCmd represents the indicators command
var indicatorsCmd = &cobra.Command{
	Use:   "indicators [ticker]",
	Short: "Show trailing metrics and technical indicators",
	Long: `Prints window CAGRs, annualized volatility and the latest
SMA, RSI(14), MACD(12,26,9) and ATR(14) values for a ticker.

Example:
  go run ./cmd/quant indicators INFY
  go run ./cmd/quant indicators INFY --days 20 --sma 50`,
	Args: cobra.ExactArgs(1),
	RunE: runIndicators,
}

var (
	indDays int
	indSMA  int
)

func init() {
	rootCmd.AddCommand(indicatorsCmd)

	indicatorsCmd.Flags().IntVar(&indDays, "days", 10, "number of recent bars to show")
	indicatorsCmd.Flags().IntVar(&indSMA, "sma", 20, "SMA period")
}

func runIndicators(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	series, err := a.provider.Series(ctx, args[0])
	if err != nil {
		return err
	}

	w := os.Stdout
	m := risk.CalculateAssetMetrics(series)
	first, _ := series.First()
	latest, _ := series.Latest()
	printHeader(w, series.Ticker,
		[2]string{"Bars", fmt.Sprintf("%d", series.Len())},
		[2]string{"Period", fmt.Sprintf("%s ~ %s", first.Date.Format("2006-01-02"), latest.Date.Format("2006-01-02"))},
		[2]string{"Volatility", pct(m.Volatility)},
	)
	for _, window := range risk.ReturnWindows {
		printKeyValue(w, fmt.Sprintf("CAGR %dY", window/risk.TradingDaysPerYear), pct(m.Returns[window]), 12)
	}
	fmt.Fprintln(w)

	closes := series.Closes()
	sma := indicators.SMA(closes, indSMA)
	rsi := indicators.RSI(closes, indicators.DefaultRSIPeriod)
	macd := indicators.MACD(closes)
	atr := indicators.ATR(series.Prices, indicators.DefaultATRPeriod)

	widths := []int{10, 10, 10, 8, 9, 9, 8, 7}
	printTableHeader(w, []string{"Date", "Close", fmt.Sprintf("SMA%d", indSMA), "RSI", "MACD", "Signal", "ATR", "Bull"}, widths)

	start := len(closes) - indDays
	if start < 0 {
		start = 0
	}
	for i := start; i < len(closes); i++ {
		bull := ""
		if indicators.IsBullish(macd, rsi, i) {
			bull = "▲"
		}
		printTableRow(w, []string{
			series.Prices[i].Date.Format("2006-01-02"),
			amount(closes[i]),
			amount(sma[i]),
			fmt.Sprintf("%.1f", rsi[i]),
			fmt.Sprintf("%.3f", macd.Line[i]),
			fmt.Sprintf("%.3f", macd.Signal[i]),
			amount(atr[i]),
			bull,
		}, widths)
	}
	return nil
}
