package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
)

// Runner is anything that performs one adaptation pass.
type Runner interface {
	Run(ctx context.Context) (Report, error)
}

// Scheduler runs adaptation on a fixed interval. Overlapping runs are
// skipped rather than queued.
type Scheduler struct {
	sched   gocron.Scheduler
	runner  Runner
	timeout time.Duration
	logger  *log.Logger
}

// NewScheduler registers runner to run every interval. Call Start to begin.
func NewScheduler(runner Runner, interval time.Duration, logger *log.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("adaptation interval must be positive, got %s", interval)
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	s := &Scheduler{
		sched:   sched,
		runner:  runner,
		timeout: interval,
		logger:  logger.WithPrefix("adapt-scheduler"),
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.tick),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("strategy-adaptation"),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule adaptation: %w", err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.runner.Run(ctx); err != nil {
		s.logger.Warn("Scheduled adaptation failed", "error", err)
	}
}

// Start begins running jobs.
func (s *Scheduler) Start() {
	s.logger.Debug("Starting adaptation scheduler")
	s.sched.Start()
}

// Shutdown stops the scheduler and waits for a running pass to finish.
func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}
