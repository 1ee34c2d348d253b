package jobs

import (
	"context"
	"time"

	"rental-engine-backend/internal/config"
	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	lifecycle service.LifecycleService
	config    *config.Config
	timeout   time.Duration
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(lifecycle service.LifecycleService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		lifecycle: lifecycle,
		config:    cfg,
		timeout:   10 * time.Minute,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunLifecycleSweep sends return reminders and overdue alerts for today.
func (jr *JobRunner) RunLifecycleSweep() {
	jr.runWithRecovery("LifecycleSweep", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
		defer cancel()
		jr.logSummary(jr.lifecycle.RunSweep(ctx))
	})
}

// RunLifecycleSweepAt replays the sweep for a specific calendar day.
func (jr *JobRunner) RunLifecycleSweepAt(day time.Time) {
	jr.runWithRecovery("LifecycleSweepAt", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
		defer cancel()
		jr.logSummary(jr.lifecycle.RunSweepAt(ctx, day))
	})
}

func (jr *JobRunner) logSummary(summary *domain.SweepSummary, err error) {
	log := logger.WithJob("LifecycleSweep")
	if err != nil {
		log.Error("Lifecycle sweep failed", "error", err)
		return
	}
	log.Info("Lifecycle sweep summary",
		"reminders_sent", summary.RemindersSent,
		"overdue_alerts_sent", summary.OverdueAlertsSent,
		"orders_marked_overdue", summary.OrdersMarkedOverdue,
		"errors", len(summary.Errors))
	for _, e := range summary.Errors {
		log.Warn("Lifecycle sweep item failed", "error", e)
	}
}
