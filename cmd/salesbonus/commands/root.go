package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	env        string
	policyPath string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "salesbonus",
	Short: "Seller ranking and bonus analysis",
	Long: `salesbonus CLI

Ranks sellers by profit, assigns tiered bonuses and awards the
special bonus categories over a sales dataset.

Usage:
  go run ./cmd/salesbonus [command]

Examples:
  go run ./cmd/salesbonus run --dataset data/sample_sales.json
  go run ./cmd/salesbonus ranking --dataset data/sample_sales.json --output json
  go run ./cmd/salesbonus policy validate config/bonus/default.yaml
  go run ./cmd/salesbonus api`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().StringVar(&policyPath, "policy", "", "bonus policy YAML (default: BONUS_POLICY_PATH or built-in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
