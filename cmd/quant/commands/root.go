package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	dataSource string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "Basket backtesting and Monte Carlo forecasting",
	Long: `Basket simulation CLI

Replays weighted equity baskets over their common price history,
reports risk metrics and projects a one-year value distribution.

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant simulate baskets/growth.yaml
  go run ./cmd/quant batch baskets/
  go run ./cmd/quant indicators INFY
  go run ./cmd/quant api
  go run ./cmd/quant scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&dataSource, "source", sourceCSV, "price source (csv|db)")
}
