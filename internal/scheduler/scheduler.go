package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"rentaldesk-backend/internal/config"
	"rentaldesk-backend/internal/jobs"
	"rentaldesk-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a scheduler in loc with seconds precision and
// registers every job with a cron expression.
func NewScheduler(jobRunner *jobs.JobRunner, cfg config.SchedulerConfig, loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}
	if err := s.registerJobs(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) registerJobs(cfg config.SchedulerConfig) error {
	if cfg.LateOrderReminders == "" {
		return nil
	}
	if _, err := s.cron.AddFunc(cfg.LateOrderReminders, s.jobs.SendLateOrderReminders); err != nil {
		return fmt.Errorf("failed to register %s job: %w", jobs.JobLateOrderReminders, err)
	}
	logger.Info("Registered job", "job", jobs.JobLateOrderReminders, "schedule", cfg.LateOrderReminders)
	return nil
}

// Start starts the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting job scheduler", "jobs", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	logger.Info("Stopping job scheduler")
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		logger.Warn("Scheduler stop timed out, jobs still running")
	}
}

// NextRuns lists, for every registered job, its first run after from.
func (s *Scheduler) NextRuns(from time.Time) []time.Time {
	entries := s.cron.Entries()
	out := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Schedule.Next(from))
	}
	return out
}
