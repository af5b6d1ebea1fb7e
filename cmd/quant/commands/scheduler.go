package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/LLeom997/AlphBasket-sub000/internal/scheduler"
	"github.com/LLeom997/AlphBasket-sub000/internal/scheduler/jobs"
)

// snapshotRetention is how long superseded snapshots are kept
const snapshotRetention = 90 * 24 * time.Hour

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run scheduled jobs",
	Long: `Starts the scheduler or runs one of its jobs immediately.

Registered jobs:
- simulate_all: SIMULATE_ALL_CRON (re-simulate every stored basket)
- snapshot_prune: Sundays 03:00 (drop old result snapshots)
- series_cache_purge: every 30 minutes (expire cached price series)

Requires DATABASE_URL.

Example:
  go run ./cmd/quant scheduler start
  go run ./cmd/quant scheduler run simulate_all`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runScheduler,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job now and exit",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedulerJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// newScheduler registers every job against the app's wiring
func newScheduler(a *app) (*scheduler.Scheduler, error) {
	s := scheduler.New(a.log)

	toAdd := []scheduler.Job{
		jobs.NewSimulateAllJob(a.engine, a.provider, a.baskets, a.cache,
			a.cfg.Scheduler.SimulateAllCron, a.cfg.Engine.BatchWorkers, a.log),
		jobs.NewSnapshotPruneJob(a.baskets, snapshotRetention, a.log),
		jobs.NewSeriesCachePurgeJob(a.memory, a.log),
	}
	for _, job := range toAdd {
		if err := s.AddJob(job); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := newScheduler(a)
	if err != nil {
		return err
	}
	s.Start()

	fmt.Println("✅ Scheduler started")
	for _, name := range s.JobNames() {
		fmt.Printf("   • %s\n", name)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	s.Stop()
	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := newScheduler(a)
	if err != nil {
		return err
	}

	result, err := s.RunNow(ctx, args[0])
	if err != nil {
		return err
	}

	if !result.Success {
		return fmt.Errorf("job %s failed after %d attempt(s): %s", result.JobName, result.Attempts, result.Error)
	}
	fmt.Printf("✅ %s completed in %s\n", result.JobName, result.Duration.Round(time.Millisecond))
	return nil
}
