package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rentaldesk-backend/internal/logger"
	"rentaldesk-backend/internal/notify"
	"rentaldesk-backend/internal/repository"
	"rentaldesk-backend/internal/service"
)

// Recorder observes job outcomes. *metrics.Metrics satisfies it.
type Recorder interface {
	JobFinished(job string, err error)
	SetLateOrders(perBranch map[string]int)
}

type noopRecorder struct{}

func (noopRecorder) JobFinished(string, error)    {}
func (noopRecorder) SetLateOrders(map[string]int) {}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	orders   repository.OrderRepository
	branches repository.BranchRepository
	notifier notify.Notifier
	recorder Recorder
	clock    service.Clock
	timeout  time.Duration
	log      *slog.Logger
}

type Deps struct {
	Orders   repository.OrderRepository
	Branches repository.BranchRepository
	Notifier notify.Notifier
	Recorder Recorder
	Clock    service.Clock
	// Timeout bounds a single run. Zero means five minutes.
	Timeout time.Duration
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(d Deps) *JobRunner {
	if d.Notifier == nil {
		d.Notifier = notify.LogNotifier{}
	}
	if d.Recorder == nil {
		d.Recorder = noopRecorder{}
	}
	if d.Clock == nil {
		d.Clock = service.ClockIn(time.UTC)
	}
	if d.Timeout <= 0 {
		d.Timeout = 5 * time.Minute
	}
	return &JobRunner{
		orders:   d.Orders,
		branches: d.Branches,
		notifier: d.Notifier,
		recorder: d.Recorder,
		clock:    d.Clock,
		timeout:  d.Timeout,
		log:      logger.WithService("jobs"),
	}
}

// Run executes the named job once.
func (jr *JobRunner) Run(ctx context.Context, name string) error {
	switch name {
	case JobLateOrderReminders:
		return jr.runWithRecovery(name, func() error { return jr.LateOrderReminders(ctx) })
	default:
		return fmt.Errorf("unknown job %q", name)
	}
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func() error) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			jr.log.Error("Job panicked", "job", jobName, "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
		jr.recorder.JobFinished(jobName, err)
	}()

	jr.log.Info("Starting job", "job", jobName)
	if err = jobFunc(); err != nil {
		jr.log.Error("Job failed", "job", jobName, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return err
	}
	jr.log.Info("Job completed", "job", jobName, "duration_ms", time.Since(start).Milliseconds())
	return nil
}
