package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonny/warroom/internal/policy"
	"github.com/wonny/warroom/pkg/config"
)

// policyCmd represents the policy command
var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect signal and diagnostic thresholds",
	Long: `Shows or validates the threshold policy.

Subcommands:
  show      - print the active policy and its hash
  validate  - check a policy file without running anything

Example:
  go run ./cmd/warroom policy show
  go run ./cmd/warroom policy validate config/policy.yaml`,
}

var (
	policyShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the active policy",
		RunE:  showPolicy,
	}

	policyValidateCmd = &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a policy file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  validatePolicy,
	}
)

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyShowCmd)
	policyCmd.AddCommand(policyValidateCmd)
}

func showPolicy(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	path := cfg.PolicyFile
	if policyFile != "" {
		path = policyFile
	}

	p, err := policy.Resolve(path, cfg.Feed.TickerSuffixes)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode policy: %w", err)
	}

	PrintDoubleSeparator(os.Stdout)
	fmt.Fprintf(os.Stdout, "  Policy %s\n", policy.MustHash(p))
	PrintSeparator(os.Stdout)
	fmt.Fprint(os.Stdout, string(out))
	return nil
}

func validatePolicy(cmd *cobra.Command, args []string) error {
	path := policyFile
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("no policy file given")
	}

	p, err := policy.Load(path)
	if err != nil {
		PrintError(os.Stdout, err.Error())
		return err
	}

	PrintSuccess(os.Stdout, fmt.Sprintf("%s is valid (hash %s)", path, policy.MustHash(p)))
	return nil
}
