package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// ReservationSweeper переводит просроченные резервы в expired
type ReservationSweeper interface {
	ExpireStale(ctx context.Context) (int, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	sched    gocron.Scheduler
	sweeper  ReservationSweeper
	interval time.Duration
	logger   *zap.Logger
}

// NewScheduler создаёт новый планировщик
func NewScheduler(sweeper ReservationSweeper, interval time.Duration, logger *zap.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	return &Scheduler{
		sched:    sched,
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
	}, nil
}

// Start регистрирует задачи и запускает их. Первая сверка выполняется сразу.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("Starting background scheduler", zap.Duration("expiry_sweep_interval", s.interval))

	_, err := s.sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() { s.expireReservations(ctx) }),
		gocron.WithName("expire-reservations"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("schedule expiry sweep: %w", err)
	}

	s.sched.Start()
	return nil
}

// Stop останавливает фоновые задачи и ждёт завершения текущих
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping background scheduler")
	return s.sched.Shutdown()
}

// expireReservations сверка резервов, которые никто не трогал после истечения срока
func (s *Scheduler) expireReservations(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	n, err := s.sweeper.ExpireStale(ctx)
	if err != nil {
		s.logger.Error("Failed to expire stale reservations", zap.Error(err))
		return
	}

	if n > 0 {
		s.logger.Info("Stale reservations expired", zap.Int("count", n))
	}
}
