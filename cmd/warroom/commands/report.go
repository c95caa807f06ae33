package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/warroom/internal/api/handlers"
	"github.com/wonny/warroom/internal/contracts"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the portfolio report once",
	Long: `Loads the lot sheet, prices every position and prints the report.

Example:
  go run ./cmd/warroom report
  go run ./cmd/warroom report --target 120000
  go run ./cmd/warroom report --json`,
	RunE: runReport,
}

var (
	reportTarget string
	reportJSON   bool
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportTarget, "target", "", "annual dividend target (default is ANNUAL_TARGET)")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print the report as JSON")
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	target, err := handlers.ParseTarget(reportTarget, a.cfg.AnnualTarget)
	if err != nil {
		return err
	}

	report, err := a.service.Report(context.Background(), a.cfg.Feed.URL, target)
	if err != nil {
		status := contracts.StatusFor(err)
		PrintError(os.Stdout, contracts.StatusMessage(status))
		return fmt.Errorf("%s: %w", status, err)
	}

	if reportJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	PrintReport(os.Stdout, report)
	return nil
}
