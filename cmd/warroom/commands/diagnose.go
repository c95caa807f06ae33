package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/warroom/internal/contracts"
)

// diagnoseCmd represents the diagnose command
var diagnoseCmd = &cobra.Command{
	Use:   "diagnose [ticker]",
	Short: "Score a single ticker (0-100)",
	Long: `Runs the four-rule health check on one ticker:
valuation, momentum, yield and leverage (25 points each).

Example:
  go run ./cmd/warroom diagnose 2330.TW
  go run ./cmd/warroom diagnose 0056.TW --json`,
	Args: cobra.ExactArgs(1),
	RunE: runDiagnose,
}

var diagnoseJSON bool

func init() {
	rootCmd.AddCommand(diagnoseCmd)

	diagnoseCmd.Flags().BoolVar(&diagnoseJSON, "json", false, "print the result as JSON")
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Cache.RefreshTimeout)
	defer cancel()

	result, err := a.scorer.Diagnose(ctx, args[0])
	if err != nil {
		if errors.Is(err, contracts.ErrInvalidTicker) {
			PrintError(os.Stdout, "Enter a valid ticker with exchange suffix (e.g. 2330.TW)")
		} else {
			PrintWarning(os.Stdout, "Unable to retrieve data for "+args[0])
		}
		return fmt.Errorf("diagnose %s: %w", args[0], err)
	}

	if diagnoseJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	PrintDiagnosis(os.Stdout, result)
	return nil
}
