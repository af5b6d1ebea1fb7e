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

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Simulate many baskets concurrently",
	Long: `Simulates every basket file in a directory, or every stored
basket with --stored. A failing basket never stops the others; with
--stored its last saved result is reported instead.

Example:
  go run ./cmd/quant batch baskets/
  go run ./cmd/quant batch --stored --source db --workers 8`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

var (
	batchStored     bool
	batchWorkers    int
	batchNoForecast bool
	batchJSON       bool
	batchTimeout    time.Duration
)

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().BoolVar(&batchStored, "stored", false, "simulate baskets stored in the database")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "concurrent baskets (default BATCH_WORKERS)")
	batchCmd.Flags().BoolVar(&batchNoForecast, "no-forecast", false, "skip the Monte Carlo forecast")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "print JSON instead of a report")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "overall timeout")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if !batchStored && len(args) == 0 {
		return fmt.Errorf("a basket directory or --stored is required")
	}

	ctx, cancel := timeoutContext(batchTimeout)
	defer cancel()

	a, err := newApp(ctx, batchStored)
	if err != nil {
		return err
	}
	defer a.Close()

	var baskets []contracts.Basket
	var prior map[string]*contracts.SimulationResult
	if batchStored {
		if baskets, err = a.baskets.List(ctx); err != nil {
			return err
		}
		if prior, err = a.baskets.LatestSnapshots(ctx); err != nil {
			a.log.WithError(err).Warn("Failed to load prior snapshots")
		}
	} else {
		files, err := basketconfig.LoadDir(args[0])
		if err != nil {
			return err
		}
		for _, f := range files {
			b, err := f.Basket()
			if err != nil {
				return err
			}
			baskets = append(baskets, *b)
		}
	}

	if len(baskets) == 0 {
		fmt.Println("No baskets found")
		return nil
	}

	workers := batchWorkers
	if workers <= 0 {
		workers = a.cfg.Engine.BatchWorkers
	}

	outcomes := a.engine.SimulateAll(ctx, baskets, a.provider, prior, workers, backtest.Options{
		SkipForecast: batchNoForecast,
	})

	if batchJSON {
		return printJSON(os.Stdout, map[string]interface{}{
			"summary":  backtest.Summarize(outcomes),
			"outcomes": outcomes,
		})
	}
	printBatch(os.Stdout, outcomes)
	return nil
}
