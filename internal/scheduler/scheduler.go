package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/vytor/flashrecall/internal/jobs"
	"github.com/vytor/flashrecall/internal/logger"
)

// UserLister yields every learner with stored progress.
type UserLister interface {
	ListUsers(ctx context.Context) ([]string, error)
}

// Scheduler periodically fans a due digest out to every learner
type Scheduler struct {
	scheduler *gocron.Scheduler
	users     UserLister
	queue     jobs.JobQueue
	interval  time.Duration
	timeout   time.Duration
	log       *logger.Logger
}

// New creates a scheduler that sweeps every interval. timeout bounds the
// user listing and is ignored when zero.
func New(users UserLister, queue jobs.JobQueue, interval, timeout time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		users:     users,
		queue:     queue,
		interval:  interval,
		timeout:   timeout,
		log:       logger.Default().WithPrefix("scheduler"),
	}
}

// Start registers the sweep and runs the scheduler in the background.
// The first sweep fires immediately.
func (s *Scheduler) Start() error {
	if s.interval < time.Minute {
		return fmt.Errorf("digest interval %v is below one minute", s.interval)
	}
	minutes := int(s.interval / time.Minute)
	if _, err := s.scheduler.Every(minutes).Minutes().Do(s.sweep); err != nil {
		return fmt.Errorf("schedule digest sweep: %w", err)
	}
	s.log.Info("due digest every %d minutes", minutes)
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) sweep() {
	if _, err := s.Sweep(context.Background()); err != nil {
		s.log.Error("digest sweep failed: %v", err)
	}
}

// Sweep enqueues one digest job per learner and returns how many were
// accepted. A rejected enqueue is logged and does not stop the sweep.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	queued := 0
	for _, userID := range users {
		if err := s.queue.EnqueueDigest(userID); err != nil {
			s.log.Warn("failed to enqueue digest: user_id=%s, err=%v", userID, err)
			continue
		}
		queued++
	}
	s.log.Debug("digest sweep queued %d of %d users", queued, len(users))
	return queued, nil
}
