package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/salesbonus/internal/bonus"
	"github.com/wonny/salesbonus/internal/bonusconfig"
)

// policyCmd groups bonus policy utilities
var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Bonus policy utilities",
	Long: `Validates or fingerprints a bonus policy YAML.
Without a file argument the built-in default policy is used.

Example:
  go run ./cmd/salesbonus policy validate config/bonus/default.yaml
  go run ./cmd/salesbonus policy hash`,
}

var (
	policyValidateCmd = &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a policy file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  validatePolicy,
	}

	policyHashCmd = &cobra.Command{
		Use:   "hash [file]",
		Short: "Print the policy fingerprint",
		Args:  cobra.MaximumNArgs(1),
		RunE:  hashPolicy,
	}
)

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyValidateCmd)
	policyCmd.AddCommand(policyHashCmd)
}

func loadPolicyArg(args []string) (*bonusconfig.Config, *bonusconfig.PolicySnapshot, error) {
	path := policyPath
	if len(args) == 1 {
		path = args[0]
	}

	cfg := bonusconfig.Default()
	var data []byte
	if path != "" {
		var err error
		cfg, data, err = bonusconfig.Load(path)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid policy: %w", err)
		}
	}

	// rule names are resolved by the bonus registry, not by the YAML schema
	if _, err := bonus.RulesFromConfig(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid policy: %w", err)
	}

	snapshot, err := bonusconfig.NewPolicySnapshot(cfg, data)
	if err != nil {
		return nil, nil, err
	}
	return cfg, snapshot, nil
}

func validatePolicy(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, snapshot, err := loadPolicyArg(args)
	if err != nil {
		PrintError(out, err.Error())
		return err
	}

	PrintSuccess(out, fmt.Sprintf("Policy %q is valid (%d rules)", cfg.Meta.PolicyID, len(cfg.Rules)))
	PrintKeyValue(out, "Version", cfg.Meta.Version, 8)
	PrintKeyValue(out, "Hash", snapshot.PolicyHash, 8)
	return nil
}

func hashPolicy(cmd *cobra.Command, args []string) error {
	_, snapshot, err := loadPolicyArg(args)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), snapshot.PolicyHash)
	return nil
}
