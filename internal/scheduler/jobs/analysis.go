package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/salesbonus/internal/contracts"
	"github.com/wonny/salesbonus/pkg/logger"
)

// DefaultAnalysisSchedule runs at 06:00 on the 1st of every month
const DefaultAnalysisSchedule = "0 0 6 1 * *"

// AnalysisJob loads the configured dataset and runs a full analysis
// ⭐ SSOT: 정기 분석 작업
type AnalysisJob struct {
	loader   contracts.DatasetSource
	runner   contracts.RunExecutor
	source   string
	schedule string
	logger   *logger.Logger
}

// NewAnalysisJob creates a new analysis job; an empty schedule uses the default
func NewAnalysisJob(
	loader contracts.DatasetSource,
	runner contracts.RunExecutor,
	source string,
	schedule string,
	log *logger.Logger,
) *AnalysisJob {
	if schedule == "" {
		schedule = DefaultAnalysisSchedule
	}
	return &AnalysisJob{
		loader:   loader,
		runner:   runner,
		source:   source,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *AnalysisJob) Name() string {
	return "sales_analysis"
}

// Schedule returns the cron schedule
func (j *AnalysisJob) Schedule() string {
	return j.schedule
}

// Run executes the job
func (j *AnalysisJob) Run(ctx context.Context) error {
	j.logger.WithField("source", j.source).Info("Starting sales analysis")

	ds, err := j.loader.Load(ctx, j.source)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	run, err := j.runner.Run(ctx, ds)
	if err != nil {
		return fmt.Errorf("run analysis: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":       run.ID,
		"sellers":      len(run.Sellers),
		"total_payout": run.TotalPayout(),
		"cached":       run.Cached,
	}).Info("Sales analysis completed")

	return nil
}
