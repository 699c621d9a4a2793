package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/salesbonus/internal/contracts"
)

var (
	datasetFlag string
	outputFlag  string
	persistFlag bool
)

// runCmd runs ranking and special bonuses together
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full analysis (ranking + special bonuses)",
	Long: `Loads a dataset (JSON or YAML file, or http(s) URL), ranks sellers,
computes tiered and special bonuses and prints the result.

With --persist the run is stored in PostgreSQL (DATABASE_URL) and
REDIS_ENABLED turns on the report cache.

Example:
  go run ./cmd/salesbonus run --dataset data/sample_sales.json
  go run ./cmd/salesbonus run --dataset https://example.com/sales.json --output json --persist`,
	RunE: runAnalysis,
}

// rankingCmd runs the ranking stage only
var rankingCmd = &cobra.Command{
	Use:   "ranking",
	Short: "Rank sellers by profit and assign tier bonuses",
	RunE:  runRanking,
}

// bonusesCmd runs the special bonus stage only
var bonusesCmd = &cobra.Command{
	Use:   "bonuses",
	Short: "Compute the special bonus categories",
	RunE:  runBonuses,
}

func init() {
	for _, cmd := range []*cobra.Command{runCmd, rankingCmd, bonusesCmd} {
		cmd.Flags().StringVarP(&datasetFlag, "dataset", "d", "", "dataset file or URL (default: DATASET_SOURCE)")
		cmd.Flags().StringVarP(&outputFlag, "output", "o", outputText, "output format (text|json)")
		rootCmd.AddCommand(cmd)
	}
	runCmd.Flags().BoolVar(&persistFlag, "persist", false, "store the run (postgres, redis cache)")
}

// loadDataset wires an app and loads the selected dataset
func loadDataset(ctx context.Context, opts appOptions) (*app, *contracts.Dataset, error) {
	if err := checkOutput(outputFlag); err != nil {
		return nil, nil, err
	}

	a, err := newApp(ctx, os.Stderr, opts)
	if err != nil {
		return nil, nil, err
	}

	ds, err := a.loader.Load(ctx, a.datasetSource(datasetFlag))
	if err != nil {
		a.Close()
		return nil, nil, err
	}
	return a, ds, nil
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, ds, err := loadDataset(ctx, appOptions{persist: persistFlag, cache: persistFlag})
	if err != nil {
		return err
	}
	defer a.Close()

	run, err := a.runner.Run(ctx, ds)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if outputFlag == outputJSON {
		return PrintJSON(out, run)
	}
	PrintRun(out, run)
	if persistFlag {
		PrintSuccess(out, persistMessage(run))
	}
	return nil
}

// persistMessage reports where a --persist run ended up
func persistMessage(run *contracts.Run) string {
	if run.Cached {
		return fmt.Sprintf("Run %s served from cache (already stored)", run.ID)
	}
	return fmt.Sprintf("Run %s stored", run.ID)
}

func runRanking(cmd *cobra.Command, args []string) error {
	a, ds, err := loadDataset(cmd.Context(), appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	sellers, err := a.runner.Ranking(ds)
	if err != nil {
		return fmt.Errorf("ranking failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if outputFlag == outputJSON {
		return PrintJSON(out, sellers)
	}
	PrintRanking(out, sellers)
	return nil
}

func runBonuses(cmd *cobra.Command, args []string) error {
	a, ds, err := loadDataset(cmd.Context(), appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	bonuses, err := a.runner.Bonuses(ds)
	if err != nil {
		return fmt.Errorf("special bonuses failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if outputFlag == outputJSON {
		return PrintJSON(out, bonuses)
	}
	PrintBonuses(out, bonuses)
	return nil
}
