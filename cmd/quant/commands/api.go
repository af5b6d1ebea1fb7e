package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/LLeom997/AlphBasket-sub000/internal/api"
	"github.com/LLeom997/AlphBasket-sub000/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                          - Health check
  POST /api/simulations                 - Simulate one basket
  POST /api/simulations/batch           - Simulate many baskets
  GET  /api/assets/{ticker}/metrics     - Trailing returns and volatility
  GET  /api/assets/{ticker}/indicators  - SMA, RSI, MACD and ATR

Stored baskets (basket_id, empty batch body) need --source db.

Example:
  go run ./cmd/quant api
  go run ./cmd/quant api --port 8080 --source db`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	var store handlers.BasketStore
	if a.baskets != nil {
		store = a.baskets
	}

	limiter := api.NewRateLimiter(a.cfg.API.RateLimit, a.cfg.API.RateBurst)
	router := api.NewRouter(
		handlers.NewSimulationHandler(a.engine, a.provider, store, a.cfg.Engine.BatchWorkers, a.log),
		handlers.NewAssetHandler(a.provider, a.log),
		limiter,
		a.log,
	)
	server := api.New(a.cfg, a.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// idle client limiters are dropped periodically
	stopCleanup := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				limiter.Cleanup()
			case <-stopCleanup:
				return
			}
		}
	}()
	defer close(stopCleanup)

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
