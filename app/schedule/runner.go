package schedule

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/podlens/podlens/app/batch"
)

// BatchRunner is the subset of the analyzer the scheduler drives
type BatchRunner interface {
	AnalyzeRecent(ctx context.Context, daysBack int) (*batch.Report, error)
}

var _ BatchRunner = (*batch.Analyzer)(nil)

// Runner triggers unattended batch runs on a cron schedule. Overlapping runs
// are skipped rather than queued.
type Runner struct {
	analyzer BatchRunner
	spec     string
	daysBack int
	cron     *cron.Cron
}

func NewRunner(analyzer BatchRunner, spec string, daysBack int) *Runner {
	return &Runner{
		analyzer: analyzer,
		spec:     spec,
		daysBack: daysBack,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

func (r *Runner) Start(ctx context.Context) error {
	_, err := r.cron.AddFunc(r.spec, func() {
		report, err := r.analyzer.AnalyzeRecent(ctx, r.daysBack)
		if err != nil {
			slog.Error("Scheduled batch run failed", "error", err)
			return
		}
		slog.Info("Scheduled batch run completed",
			"batch_id", report.BatchID,
			"total", report.TotalVideos,
			"analyzed", report.Analyzed,
			"failed", report.Failed)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", r.spec, err)
	}

	slog.Info("Scheduler started", "schedule", r.spec)
	r.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running job to finish
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
	slog.Info("Scheduler stopped")
}
