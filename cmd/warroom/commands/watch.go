package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/warroom/internal/api/handlers"
	"github.com/wonny/warroom/internal/contracts"
	"github.com/wonny/warroom/internal/scheduler"
	"github.com/wonny/warroom/internal/scheduler/jobs"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Refresh and print the report on a schedule",
	Long: `Keeps the console war room open: the report is refreshed on a cron
schedule and printed after every refresh.

Registered jobs:
- portfolio_refresh: --schedule (default WATCH_SCHEDULE, "@every 2m")
- cache_sweep: every 5 minutes

Stop with Ctrl+C.

Example:
  go run ./cmd/warroom watch
  go run ./cmd/warroom watch --schedule "*/10 9-14 * * 1-5"`,
	RunE: runWatch,
}

var (
	watchSchedule string
	watchTarget   string
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "", "cron schedule (default is WATCH_SCHEDULE)")
	watchCmd.Flags().StringVar(&watchTarget, "target", "", "annual dividend target (default is ANNUAL_TARGET)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Warroom Watch ===")

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	schedule := a.cfg.Watch.Schedule
	if watchSchedule != "" {
		schedule = watchSchedule
	}

	target, err := handlers.ParseTarget(watchTarget, a.cfg.AnnualTarget)
	if err != nil {
		return err
	}

	printReport := func(report *contracts.Report) {
		PrintReport(os.Stdout, report)
	}

	// A failed refresh is retried once; the next tick covers the rest
	sched := scheduler.New(a.log).
		WithRetry(1, 5*time.Second).
		WithJobTimeout(2 * a.cfg.Cache.RefreshTimeout)
	refresh := jobs.NewPortfolioRefreshJob(a.service, a.cfg.Feed.URL, target, schedule, printReport, a.log)
	if err := sched.AddJob(refresh); err != nil {
		return fmt.Errorf("add refresh job: %w", err)
	}
	if err := sched.AddJob(jobs.NewCacheSweepJob(a.log, a.reportCache, a.metadataCache)); err != nil {
		return fmt.Errorf("add cache sweep job: %w", err)
	}

	// First report right away, then on schedule
	if result, err := sched.RunJob(refresh.Name()); err != nil {
		return err
	} else if !result.Success {
		PrintWarning(os.Stdout, contracts.StatusMessage(contracts.StatusWaitingForData)+" ("+result.Error+")")
	}

	sched.Start()
	defer sched.Stop()

	fmt.Printf("\n✅ Watching %s (%s)\n", a.cfg.Feed.URL, schedule)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	a.log.Info("Stopping watch")
	return nil
}
