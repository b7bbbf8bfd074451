package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	domainRepo "github.com/sangkips/bartab-api/internal/domain/repository"
	"go.uber.org/zap"
)

const purgeTimeout = 30 * time.Second

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler runs the periodic housekeeping jobs
type Scheduler struct {
	sched  *cron.Cron
	logger *zap.Logger
}

// NewScheduler registers the idempotency purge on spec. The scheduler is not started.
func NewScheduler(spec string, idempotencyRepo domainRepo.IdempotencyRepository, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		sched:  cron.New(cron.WithLocation(time.UTC), cron.WithParser(cronParser)),
		logger: logger,
	}

	_, err := s.sched.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
		defer cancel()
		s.run("purge-idempotency-keys", func() error {
			_, err := PurgeExpiredKeys(ctx, idempotencyRepo, logger)
			return err
		})
	})
	if err != nil {
		return nil, fmt.Errorf("schedule idempotency purge %q: %w", spec, err)
	}

	return s, nil
}

func (s *Scheduler) run(name string, job func() error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job panicked", zap.String("job", name), zap.Any("panic", r))
		}
	}()

	if err := job(); err != nil {
		s.logger.Error("job failed", zap.String("job", name), zap.Error(err))
	}
}

// Start begins running jobs in the background
func (s *Scheduler) Start() {
	s.sched.Start()
}

// Stop halts the scheduler and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.sched.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}

// PurgeExpiredKeys drops idempotency keys past their expiry
func PurgeExpiredKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, logger *zap.Logger) (int64, error) {
	removed, err := repo.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		logger.Info("purged expired idempotency keys", zap.Int64("count", removed))
	}
	return removed, nil
}
