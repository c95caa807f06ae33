package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/warroom/internal/api"
	"github.com/wonny/warroom/internal/api/handlers"
	"github.com/wonny/warroom/internal/scheduler"
	"github.com/wonny/warroom/internal/scheduler/jobs"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Starts the HTTP API and websocket push server.

Endpoints:
  GET /health                   - Health check
  GET /api/portfolio?target=    - Full report
  GET /api/portfolio/positions  - Valued positions
  GET /api/diagnose/{ticker}    - Single ticker health check
  GET /api/policy               - Active thresholds and hash
  GET /api/jobs                 - Background job stats
  GET /api/jobs/{name}          - Recent runs of one job
  GET /ws/portfolio?interval=   - Websocket report push

Example:
  go run ./cmd/warroom serve
  go run ./cmd/warroom serve --port 8080`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (default is PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Warroom API Server ===")

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	if servePort != "" {
		a.cfg.Port = servePort
	}

	// Background cache maintenance
	sched := scheduler.New(a.log).WithJobTimeout(2 * a.cfg.Cache.RefreshTimeout)
	if err := sched.AddJob(jobs.NewCacheSweepJob(a.log, a.reportCache, a.metadataCache)); err != nil {
		return fmt.Errorf("add cache sweep job: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	// Handlers
	source, target := a.cfg.Feed.URL, a.cfg.AnnualTarget
	router := api.NewRouter(api.Handlers{
		Portfolio: handlers.NewPortfolioHandler(a.service, source, target, a.log),
		Diagnose:  handlers.NewDiagnoseHandler(a.scorer, a.log),
		Policy:    handlers.NewPolicyHandler(a.policy),
		Stream:    handlers.NewStreamHandler(a.service, source, target, a.log),
		Jobs:      handlers.NewJobsHandler(sched),
	}, a.log)

	server := api.New(a.cfg, a.log, router)

	// Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	a.log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
