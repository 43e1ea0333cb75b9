package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// MaintenanceFacade exposes the periodic cleanups run by the scheduler.
type MaintenanceFacade interface {
	ExpireUnpaidOrders(ctx context.Context) (int, error)
	PurgeRetention(ctx context.Context) (int64, int64, error)
}

// Scheduler runs maintenance sweeps. Every job is a singleton: a run that is
// still going when the next one is due skips that tick.
type Scheduler struct {
	facade        MaintenanceFacade
	sweepInterval time.Duration
	logger        *slog.Logger

	scheduler gocron.Scheduler
	cancel    context.CancelFunc
	mu        sync.Mutex
}

// NewScheduler constructs a scheduler sweeping unpaid orders every sweepInterval
// and purging old records once a day.
func NewScheduler(facade MaintenanceFacade, sweepInterval time.Duration, logger *slog.Logger) (*Scheduler, error) {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{facade: facade, sweepInterval: sweepInterval, logger: logger, scheduler: s}, nil
}

// Start registers jobs and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.sweepInterval),
		gocron.NewTask(s.expireUnpaid, runCtx),
		gocron.WithName("expire-unpaid-orders"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		cancel()
		return fmt.Errorf("schedule order expiry: %w", err)
	}

	_, err = s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 30, 0))),
		gocron.NewTask(s.purge, runCtx),
		gocron.WithName("purge-retention"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		cancel()
		return fmt.Errorf("schedule retention purge: %w", err)
	}

	s.cancel = cancel
	s.scheduler.Start()
	s.logger.Info("scheduler started", slog.Duration("sweep_interval", s.sweepInterval))
	return nil
}

// Stop waits for running jobs and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	return s.scheduler.Shutdown()
}

func (s *Scheduler) expireUnpaid(ctx context.Context) {
	n, err := s.facade.ExpireUnpaidOrders(ctx)
	if err != nil {
		s.logger.Error("expire unpaid orders failed", slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		s.logger.Info("unpaid orders expired", slog.Int("count", n))
	}
}

func (s *Scheduler) purge(ctx context.Context) {
	if _, _, err := s.facade.PurgeRetention(ctx); err != nil {
		s.logger.Error("retention purge failed", slog.String("error", err.Error()))
	}
}
