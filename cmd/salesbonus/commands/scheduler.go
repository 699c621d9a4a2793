package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/salesbonus/internal/scheduler"
	"github.com/wonny/salesbonus/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Scheduled analysis",
	Long: `Runs the analysis on a cron schedule (ANALYSIS_SCHEDULE, with seconds).

Registered jobs:
- sales_analysis: loads DATASET_SOURCE and stores a run

Subcommands:
  start   - start the scheduler daemon
  list    - list registered jobs
  run     - run a job once and wait for it

Example:
  go run ./cmd/salesbonus scheduler start
  go run ./cmd/salesbonus scheduler run sales_analysis --dataset data/sample_sales.json`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

var schedulerDataset string

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerCmd.PersistentFlags().StringVarP(&schedulerDataset, "dataset", "d", "", "dataset file or URL (default: DATASET_SOURCE)")
}

// initScheduler wires the app and registers all jobs
func initScheduler(ctx context.Context) (*app, *scheduler.Scheduler, error) {
	a, err := newApp(ctx, os.Stdout, appOptions{persist: true, cache: true})
	if err != nil {
		return nil, nil, err
	}

	source := a.datasetSource(schedulerDataset)
	if source == "" {
		a.Close()
		return nil, nil, fmt.Errorf("no dataset: set DATASET_SOURCE or --dataset")
	}

	sched := scheduler.New(a.log)
	job := jobs.NewAnalysisJob(a.loader, a.runner, source, a.cfg.Analysis.Schedule, a.log)
	if err := sched.AddJob(job); err != nil {
		a.Close()
		return nil, nil, err
	}

	return a, sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(cmd.Context())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	sched.Start()

	out := cmd.OutOrStdout()
	PrintSuccess(out, "Scheduler started")
	for _, jobName := range sched.GetAllJobs() {
		next, _ := sched.NextRun(jobName)
		PrintKeyValue(out, jobName, next.Format("2006-01-02 15:04:05"), 16)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	fmt.Fprintln(out, "\nShutting down scheduler...")
	sched.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(cmd.Context())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Registered jobs:")
	for name, st := range sched.GetJobStats() {
		PrintKeyValue(out, name, st.Schedule, 16)
	}
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, sched, err := initScheduler(ctx)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	result, err := sched.RunJobSync(ctx, args[0])
	if err != nil {
		PrintError(out, err.Error())
		return err
	}

	PrintSuccess(out, fmt.Sprintf("Job %s completed in %s (%d attempt(s))", result.JobName, result.Duration, result.Attempts))
	return nil
}
