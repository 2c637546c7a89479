// Package jobs runs the service's recurring maintenance work on a shared
// cron runner. Jobs are plain Name/Execute pairs; the scheduler owns
// timeouts, panic recovery, logging and run metrics.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/eduflow/eduflow-server-go/pkg/metrics"
)

// Job represents a background job.
type Job interface {
	Name() string
	Execute(ctx context.Context) error
}

// Scheduler manages and executes background jobs.
type Scheduler struct {
	cron   *cron.Cron
	jobs   map[string]Job
	mu     sync.RWMutex
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a new job scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(),
		jobs:   make(map[string]Job),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers a job to run at the given interval. The first run
// happens one interval after Start.
func (s *Scheduler) AddJob(job Job, interval time.Duration) {
	s.mu.Lock()
	s.jobs[job.Name()] = job
	s.mu.Unlock()

	s.cron.Schedule(cron.Every(interval), cron.FuncJob(func() {
		s.executeJob(job)
	}))

	s.logger.Info("job registered",
		slog.String("name", job.Name()),
		slog.Duration("interval", interval),
	)
}

// Start launches the cron runner.
func (s *Scheduler) Start() {
	s.cron.Start()

	s.mu.RLock()
	count := len(s.jobs)
	s.mu.RUnlock()

	s.logger.Info("job scheduler started", slog.Int("jobs", count))
}

// Stop halts scheduling and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("job scheduler stopped")
}

// RunOnce executes a registered job immediately, outside its schedule.
func (s *Scheduler) RunOnce(jobName string) error {
	s.mu.RLock()
	job, exists := s.jobs[jobName]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job not found: %s", jobName)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	return job.Execute(ctx)
}

func (s *Scheduler) executeJob(job Job) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordJobRun(job.Name(), "panic")
			s.logger.Error("job panic", slog.String("name", job.Name()), slog.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	start := time.Now()
	if err := job.Execute(ctx); err != nil {
		metrics.RecordJobRun(job.Name(), "error")
		s.logger.Error("job execution failed",
			slog.String("name", job.Name()),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)),
		)
		return
	}

	metrics.RecordJobRun(job.Name(), "success")
	s.logger.Debug("job completed",
		slog.String("name", job.Name()),
		slog.Duration("duration", time.Since(start)),
	)
}
