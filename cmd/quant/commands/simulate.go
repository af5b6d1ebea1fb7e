package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/LLeom997/AlphBasket-sub000/internal/backtest"
	"github.com/LLeom997/AlphBasket-sub000/internal/basketconfig"
	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate [basket.yaml]",
	Short: "Backtest and forecast one basket",
	Long: `Runs the full pipeline for a basket file:
allocation, historical replay, risk metrics and Monte Carlo forecast.

Flags:
  --strategy     forecast overlay (hold|target_sl|momentum), overrides the file
  --no-forecast  skip the Monte Carlo step
  --json         print the raw result as JSON
  --save         store basket, metrics and snapshot in the database

Example:
  go run ./cmd/quant simulate baskets/growth.yaml
  go run ./cmd/quant simulate baskets/growth.yaml --strategy target_sl --json
  go run ./cmd/quant simulate baskets/growth.yaml --source db --save`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

var (
	simStrategy   string
	simNoForecast bool
	simJSON       bool
	simSave       bool
	simTimeout    time.Duration
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVar(&simStrategy, "strategy", "", "forecast overlay (hold|target_sl|momentum)")
	simulateCmd.Flags().BoolVar(&simNoForecast, "no-forecast", false, "skip the Monte Carlo forecast")
	simulateCmd.Flags().BoolVar(&simJSON, "json", false, "print JSON instead of a report")
	simulateCmd.Flags().BoolVar(&simSave, "save", false, "persist basket, metrics and snapshot")
	simulateCmd.Flags().DurationVar(&simTimeout, "timeout", 5*time.Minute, "overall timeout")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	file, raw, err := basketconfig.Load(args[0])
	if err != nil {
		return fmt.Errorf("load basket: %w", err)
	}
	basket, err := file.Basket()
	if err != nil {
		return err
	}

	strategy := file.ForecastStrategy()
	if simStrategy != "" {
		s, ok := contracts.ParseStrategy(simStrategy)
		if !ok {
			return fmt.Errorf("unknown strategy %q", simStrategy)
		}
		strategy = s
	}

	ctx, cancel := timeoutContext(simTimeout)
	defer cancel()

	a, err := newApp(ctx, simSave)
	if err != nil {
		return err
	}
	defer a.Close()

	hash, _ := basketconfig.Hash(file)
	a.log.WithFields(map[string]interface{}{
		"basket":      basket.ID,
		"config_hash": hash,
		"yaml_bytes":  len(raw),
		"strategy":    strategy,
	}).Info("Simulating basket")

	result, err := a.engine.Simulate(ctx, basket, a.provider, backtest.Options{
		Strategy:     strategy,
		SkipForecast: simNoForecast,
	})
	if err != nil {
		return err
	}

	if simSave {
		if err := a.baskets.Save(ctx, basket); err != nil {
			return err
		}
		if err := a.baskets.SaveMetrics(ctx, basket.ID, result.Metrics); err != nil {
			return err
		}
		if err := a.baskets.SaveSnapshot(ctx, result); err != nil {
			return err
		}
		a.log.WithField("basket", basket.ID).Info("Result saved")
	}

	if simJSON {
		return printJSON(os.Stdout, result)
	}
	printResult(os.Stdout, result)
	return nil
}
