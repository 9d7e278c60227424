package reminder

import (
	"context"
	"fmt"
	"time"

	"go-leave/internal/leave"
	"go-leave/internal/notification"
	"go-leave/internal/user"

	"go.uber.org/zap"
)

type PendingSource interface {
	FindPending(ctx context.Context) ([]leave.Leave, error)
}

type AdminSource interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
	FindReminderAdmins(ctx context.Context, department string) ([]user.User, error)
}

type Notifier interface {
	NotifyReminder(ctx context.Context, l notification.LeaveSummary, requester, admin *user.User, at time.Time) (bool, error)
}

// Result summarises one sweep.
type Result struct {
	Pending int
	Created int
	Skipped int
	Failed  int
}

type Sweeper struct {
	leaves   PendingSource
	users    AdminSource
	notifier Notifier
	logger   *zap.Logger
}

func NewSweeper(leaves PendingSource, users AdminSource, notifier Notifier, logger ...*zap.Logger) *Sweeper {
	l := zap.L().Named("reminder.sweeper")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("reminder.sweeper")
	}
	return &Sweeper{leaves: leaves, users: users, notifier: notifier, logger: l}
}

// Run reminds every eligible admin about every pending request, at most once
// per request, admin and UTC hour of now. Per-item failures are logged and
// skipped; a panic is recovered and reported as an error.
func (s *Sweeper) Run(ctx context.Context, now time.Time) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("reminder sweep panicked",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			err = fmt.Errorf("reminder sweep panicked: %v", r)
		}
	}()

	pending, err := s.leaves.FindPending(ctx)
	if err != nil {
		return res, fmt.Errorf("load pending leaves: %w", err)
	}
	res.Pending = len(pending)

	for i := range pending {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		s.remind(ctx, &pending[i], now, &res)
	}

	s.logger.Info("reminder sweep finished",
		zap.Time("bucket", now.UTC().Truncate(time.Hour)),
		zap.Int("pending", res.Pending),
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

func (s *Sweeper) remind(ctx context.Context, l *leave.Leave, now time.Time, res *Result) {
	log := s.logger.With(zap.String("leave_id", l.ID.String()))

	owner := l.User
	if owner == nil {
		u, err := s.users.FindByID(ctx, l.UserID.String())
		if err != nil {
			log.Warn("reminder skipped, owner not found", zap.String("user_id", l.UserID.String()), zap.Error(err))
			res.Failed++
			return
		}
		owner = u
	}

	admins, err := s.users.FindReminderAdmins(ctx, owner.Department)
	if err != nil {
		log.Error("reminder admin lookup failed", zap.Error(err))
		res.Failed++
		return
	}
	if len(admins) == 0 {
		log.Warn("no admins to remind", zap.String("department", owner.Department))
		return
	}

	summary := leave.Summary(*l)
	for i := range admins {
		admin := &admins[i]
		created, err := s.notifier.NotifyReminder(ctx, summary, owner, admin, now)
		switch {
		case err != nil:
			log.Error("reminder notification failed", zap.String("admin_id", admin.ID.String()), zap.Error(err))
			res.Failed++
		case created:
			res.Created++
		default:
			res.Skipped++
		}
	}
}
