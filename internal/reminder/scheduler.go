package reminder

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const lockPrefix = "reminder:sweep:"

// Runner is one sweep.
type Runner interface {
	Run(ctx context.Context, now time.Time) (Result, error)
}

// Scheduler fires the sweep at the top of every hour. A Redis lock per hour
// keeps replicas and slow sweeps from running the same hour twice, and a
// failed sweep is not retried until the next hour.
type Scheduler struct {
	runner  Runner
	rdb     *redis.Client
	lockTTL time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

func NewScheduler(runner Runner, rdb *redis.Client, lockTTL time.Duration, logger ...*zap.Logger) *Scheduler {
	l := zap.L().Named("reminder.scheduler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("reminder.scheduler")
	}
	if lockTTL <= 0 {
		lockTTL = 55 * time.Minute
	}
	return &Scheduler{runner: runner, rdb: rdb, lockTTL: lockTTL, now: time.Now, logger: l}
}

func LockKey(at time.Time) string {
	return lockPrefix + at.UTC().Format("2006010215")
}

// NextHour returns the first top-of-hour instant strictly after t.
func NextHour(t time.Time) time.Time {
	return t.Truncate(time.Hour).Add(time.Hour)
}

// Start blocks until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("reminder scheduler started", zap.Duration("lock_ttl", s.lockTTL))

	for {
		now := s.now()
		next := NextHour(now)
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("reminder scheduler stopped")
			return
		case <-timer.C:
			if _, err := s.Tick(ctx, next); err != nil {
				s.logger.Error("reminder tick failed", zap.Error(err))
			}
		}
	}
}

// Tick runs the sweep for the hour containing at unless another run already
// claimed it. It reports whether this call ran the sweep.
func (s *Scheduler) Tick(ctx context.Context, at time.Time) (bool, error) {
	key := LockKey(at)

	if s.rdb != nil {
		acquired, err := s.rdb.SetNX(ctx, key, s.now().UTC().Format(time.RFC3339), s.lockTTL).Result()
		if err != nil {
			return false, err
		}
		if !acquired {
			s.logger.Info("reminder sweep already claimed", zap.String("lock", key))
			return false, nil
		}
	}

	res, err := s.runner.Run(ctx, at)
	if err != nil {
		return true, errors.Join(errors.New("reminder sweep failed"), err)
	}
	s.logger.Debug("reminder tick done", zap.String("lock", key), zap.Int("created", res.Created))
	return true, nil
}
