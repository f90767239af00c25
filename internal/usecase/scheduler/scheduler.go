package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"concert-reservation/internal/pkg/errs"
	"concert-reservation/internal/usecase/commands"

	"golang.org/x/sync/errgroup"
)

var ErrUnknownJob = errs.New("unknown job")

type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) (any, error)
}

type RunResult struct {
	Job      string        `json:"job"`
	Ran      bool          `json:"ran"`
	Result   any           `json:"result,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Scheduler runs each job on its own ticker. Every run, scheduled or manual,
// first takes a zero-wait lock named after the job, so at most one run of a job
// is in flight across all instances sharing the locker.
type Scheduler struct {
	jobs   map[string]Job
	order  []string
	guard  commands.Locker
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	group  *errgroup.Group
}

func New(guard commands.Locker, logger *slog.Logger, jobs ...Job) *Scheduler {
	s := &Scheduler{
		jobs:   make(map[string]Job, len(jobs)),
		guard:  guard,
		logger: logger,
	}
	for _, j := range jobs {
		s.jobs[j.Name] = j
		s.order = append(s.order, j.Name)
	}
	return s
}

func (s *Scheduler) RunNow(ctx context.Context, name string) (RunResult, error) {
	job, ok := s.jobs[name]
	if !ok {
		return RunResult{}, errs.Mark(errs.Wrapf(ErrUnknownJob, "%q", name), errs.ErrNotFound)
	}

	handle, err := s.guard.TryAcquire(ctx, "scheduler:"+name, 0)
	if err != nil {
		if errs.Is(err, errs.ErrLockTimeout) {
			s.logger.Debug("job already running elsewhere, skipped", "job", name)
			return RunResult{Job: name}, nil
		}
		return RunResult{}, err
	}
	defer func() {
		if relErr := handle.Release(context.WithoutCancel(ctx)); relErr != nil {
			s.logger.Warn("failed to release job guard", "job", name, "error", relErr.Error())
		}
	}()

	start := time.Now()
	result, err := job.Run(ctx)
	elapsed := time.Since(start)
	if err != nil {
		s.logger.Error("job failed", "job", name, "duration", elapsed.String(), "error", err.Error())
		return RunResult{}, err
	}

	s.logger.Info("job completed", "job", name, "duration", elapsed.String(), "result", result)
	return RunResult{Job: name, Ran: true, Result: result, Duration: elapsed}, nil
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	group, groupCtx := errgroup.WithContext(runCtx)
	for _, name := range s.order {
		job := s.jobs[name]
		if job.Interval <= 0 {
			continue
		}
		group.Go(func() error {
			s.loop(groupCtx, job)
			return nil
		})
	}

	s.cancel = cancel
	s.group = group
	s.logger.Info("scheduler started", "jobs", s.order)
	return nil
}

func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, group := s.cancel, s.group
	s.cancel, s.group = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}

	cancel()
	done := make(chan error, 1)
	go func() { done <- group.Wait() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// failures are logged by RunNow; the next tick retries
			_, _ = s.RunNow(ctx, job.Name)
		}
	}
}
