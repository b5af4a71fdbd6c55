package cronjob

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/listly/listly-backend/internal/logging"
	projectdomain "github.com/listly/listly-backend/internal/projects/domain"
)

// EveryMinute is the default sweep schedule (seconds field first).
const EveryMinute = "0 * * * * *"

type StaleLister interface {
	ListStale(ctx context.Context, cutoff time.Time) ([]projectdomain.Project, error)
}

type StaleSweeper interface {
	SweepStale(ctx context.Context, stale []projectdomain.Project) int
}

// Scheduler fails projects stuck in running, e.g. after a crash mid-scrape.
type Scheduler struct {
	lister     StaleLister
	sweeper    StaleSweeper
	staleAfter time.Duration
	now        func() time.Time
	cron       *cron.Cron
}

func NewScheduler(lister StaleLister, sweeper StaleSweeper, staleAfter time.Duration) *Scheduler {
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	return &Scheduler{
		lister:     lister,
		sweeper:    sweeper,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// RunOnce performs one sweep and returns how many projects were failed.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.staleAfter)
	stale, err := s.lister.ListStale(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list stale projects: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}
	return s.sweeper.SweepStale(ctx, stale), nil
}

// Start schedules the sweep. Stop must be called on shutdown.
func (s *Scheduler) Start(spec string) error {
	if spec == "" {
		spec = EveryMinute
	}
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		n, err := s.RunOnce(ctx)
		if err != nil {
			logging.L().Error("stale sweep failed", zap.Error(err))
			return
		}
		if n > 0 {
			logging.L().Info("stale projects failed", zap.Int("count", n))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to create cron job: %w", err)
	}

	s.cron = c
	c.Start()
	logging.L().Info("stale run sweeper started", zap.String("schedule", spec), zap.Duration("stale_after", s.staleAfter))
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
