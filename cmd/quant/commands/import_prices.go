package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
	"github.com/LLeom997/AlphBasket-sub000/internal/data"
)

// importPricesCmd represents the import-prices command
var importPricesCmd = &cobra.Command{
	Use:   "import-prices [file.csv|dir]",
	Short: "Load CSV price files into the database",
	Long: `Upserts daily bars from <TICKER>.csv files into data.daily_prices.
The file name (without .csv) is the ticker. Cached series of imported
tickers are invalidated.

Example:
  go run ./cmd/quant import-prices data/prices
  go run ./cmd/quant import-prices data/prices/INFY.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runImportPrices,
}

func init() {
	rootCmd.AddCommand(importPricesCmd)
}

func runImportPrices(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	paths, err := csvPaths(args[0])
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no .csv files in %s", args[0])
	}

	repo := data.NewPriceRepository(a.db.Pool)
	total := 0
	for i, path := range paths {
		ticker := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

		prices, err := readCSVFile(path)
		if err != nil {
			return err
		}

		n, err := repo.SaveSeries(ctx, &contracts.AssetSeries{Ticker: ticker, Prices: prices})
		if err != nil {
			return fmt.Errorf("save %s: %w", ticker, err)
		}
		if err := a.provider.Invalidate(ctx, ticker); err != nil {
			a.log.WithError(err).WithField("ticker", ticker).Warn("Failed to invalidate cached series")
		}

		total += n
		fmt.Printf("[import] %s: %d bars [%d/%d]\n", ticker, n, i+1, len(paths))
	}

	fmt.Printf("\n✅ Imported %d bars for %d tickers\n", total, len(paths))
	return nil
}

func csvPaths(target string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{target}, nil
	}
	return filepath.Glob(filepath.Join(target, "*.csv"))
}

func readCSVFile(path string) ([]contracts.PricePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	prices, err := data.ReadPricesCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prices, nil
}
