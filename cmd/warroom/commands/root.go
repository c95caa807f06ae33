package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	feedURL    string
	policyFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "warroom",
	Short: "Dividend portfolio war room",
	Long: `Warroom Unified CLI

Turns a published lot sheet into a live portfolio report:
positions, profit, dividend income, take-profit / average-down signals
and concentration risk, plus a single-ticker health check.

Usage:
  go run ./cmd/warroom [command]

Examples:
  go run ./cmd/warroom report --target 120000
  go run ./cmd/warroom diagnose 2330.TW
  go run ./cmd/warroom serve
  go run ./cmd/warroom watch --schedule "@every 5m"
  go run ./cmd/warroom policy show`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&feedURL, "feed", "", "lot sheet URL or path (default is FEED_URL)")
	rootCmd.PersistentFlags().StringVar(&policyFile, "policy", "", "policy YAML file (default is POLICY_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
