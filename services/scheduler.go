package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"nfl-playoff-pickem/logging"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// Task is one periodic job. Run must be idempotent: ticks can be missed and
// the same work can be triggered by an administrator at any time.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) (JobReport, error)
}

// Scheduler runs each task on its own ticker. Tasks never call each other;
// a failing or panicking task does not affect the others.
type Scheduler struct {
	tasks   []*scheduledTask
	metrics *JobMetrics
	logger  *logging.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	loops   conc.WaitGroup
	runs    conc.WaitGroup
	started bool
}

type scheduledTask struct {
	Task
	running atomic.Bool
}

// NewScheduler creates a scheduler for the given tasks
func NewScheduler(metrics *JobMetrics, tasks ...Task) *Scheduler {
	s := &Scheduler{
		metrics: metrics,
		logger:  logging.WithPrefix("Scheduler"),
	}
	for _, t := range tasks {
		s.tasks = append(s.tasks, &scheduledTask{Task: t})
	}
	return s
}

// Start launches one loop per task. Each task runs once immediately.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	for _, t := range s.tasks {
		t := t
		s.logger.Infof("Starting task %s every %s", t.Name, t.Interval)
		s.loops.Go(func() { s.loop(ctx, t) })
	}
}

// Stop cancels all loops and waits for in-flight runs to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.loops.Wait()
	s.runs.Wait()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, t *scheduledTask) {
	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	s.trigger(ctx, t)
	for {
		select {
		case <-ticker.C:
			s.trigger(ctx, t)
		case <-ctx.Done():
			return
		}
	}
}

// trigger starts a run unless the previous run of the same task is still going
func (s *Scheduler) trigger(ctx context.Context, t *scheduledTask) {
	if !t.running.CompareAndSwap(false, true) {
		s.logger.Warnw("skipping tick, previous run still in progress", "job", t.Name)
		s.metrics.SkippedOverlap(t.Name)
		return
	}
	s.runs.Go(func() {
		defer t.running.Store(false)
		s.execute(ctx, t.Task)
	})
}

// execute runs a task once, containing panics, and records the outcome
func (s *Scheduler) execute(ctx context.Context, t Task) {
	var (
		report JobReport
		err    error
		pc     panics.Catcher
	)
	started := time.Now()
	pc.Try(func() { report, err = t.Run(ctx) })

	if report.Job == "" {
		report.Job = t.Name
	}
	if report.Duration == 0 {
		report.Duration = time.Since(started)
	}

	result := "ok"
	if r := pc.Recovered(); r != nil {
		result = "panic"
		err = fmt.Errorf("task %s panicked: %w", t.Name, r.AsError())
		s.logger.Errorf("%v", err)
	} else if err != nil {
		result = "error"
		s.logger.Errorw("job failed", "job", t.Name, "err", err)
	}
	report.Log(s.logger)
	s.metrics.Observe(report, result)
}
