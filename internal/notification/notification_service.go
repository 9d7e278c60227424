package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-leave/internal/mail"
	notificationerrors "go-leave/internal/notification/errors"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Mailer accepts mail for background delivery.
type Mailer interface {
	Dispatch(ctx context.Context, msg mail.Message)
}

// AdminFinder resolves approver candidates.
type AdminFinder interface {
	FindDepartmentAdmin(ctx context.Context, department string) (*user.User, error)
	FindHRAdmin(ctx context.Context) (*user.User, error)
}

// StatusChange describes a decided leave request. The approver may be known
// only by id, only as a loaded record, by both, or not at all.
type StatusChange struct {
	Leave      LeaveSummary
	Requester  *user.User
	ApproverID *uuid.UUID
	Approver   *user.User
	Status     string
}

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	NotifySubmission(ctx context.Context, leave LeaveSummary, requester *user.User) (bool, error)
	NotifyStatusChange(ctx context.Context, change StatusChange) (bool, error)
	NotifyReminder(ctx context.Context, leave LeaveSummary, requester, admin *user.User, at time.Time) (bool, error)

	ListMine(ctx context.Context, userID string, unreadOnly bool, page, pageSize int) ([]NotificationResponse, int64, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, userID, id string) error
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
}

type service struct {
	repo   Repository
	admins AdminFinder
	mailer Mailer
	logger *zap.Logger
}

func NewService(repo Repository, admins AdminFinder, mailer Mailer, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{repo: repo, admins: admins, mailer: mailer, logger: l}
}

func SubmissionKey(leaveID, adminID uuid.UUID) string {
	return fmt.Sprintf("leave-submitted:%s:%s", leaveID, adminID)
}

func StatusKey(status string, leaveID, requesterID uuid.UUID) string {
	return fmt.Sprintf("leave-%s:%s:%s", strings.ToLower(status), leaveID, requesterID)
}

// ReminderKey buckets reminders by UTC hour.
func ReminderKey(leaveID, adminID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("leave-reminder:%s:%s:%s", leaveID, adminID, at.UTC().Format("2006010215"))
}

func (s *service) NotifySubmission(ctx context.Context, leave LeaveSummary, requester *user.User) (bool, error) {
	l := contextutil.GetLogger(ctx, s.logger).With(zap.String("leave_id", leave.ID.String()))

	admin, err := s.resolveApprover(ctx, requester.Department)
	if err != nil {
		return false, err
	}
	if admin == nil {
		l.Warn("no approver found for leave submission",
			zap.String("requester_id", requester.ID.String()),
			zap.String("department", requester.Department),
		)
		return false, nil
	}

	senderID := requester.ID
	created, err := s.createOnce(ctx, &Notification{
		DedupKey:       SubmissionKey(leave.ID, admin.ID),
		RecipientID:    admin.ID,
		SenderID:       &senderID,
		Type:           TypeSubmitted,
		Message:        fmt.Sprintf("%s submitted a %s.", requester.Name, describeLeave(leave)),
		LeaveRequestID: &leave.ID,
	})
	if err != nil || !created {
		return created, err
	}

	s.dispatch(ctx, buildMail(admin,
		"New leave request from "+requester.Name,
		fmt.Sprintf("%s submitted a leave request that needs your review.", requester.Name),
		leave,
	))
	l.Info("submission notification created", zap.String("admin_id", admin.ID.String()))
	return true, nil
}

func (s *service) NotifyStatusChange(ctx context.Context, change StatusChange) (bool, error) {
	if change.Requester == nil {
		return false, errors.New("status change notification needs a requester")
	}

	status := strings.ToLower(change.Status)
	var notifType string
	switch status {
	case TypeApproved:
		notifType = TypeApproved
	case TypeRejected:
		notifType = TypeRejected
	default:
		return false, fmt.Errorf("no notification for status %q", change.Status)
	}

	senderID := change.ApproverID
	if senderID == nil && change.Approver != nil {
		senderID = &change.Approver.ID
	}

	message := fmt.Sprintf("Your %s was %s.", describeLeave(change.Leave), status)
	if change.Approver != nil && change.Approver.Name != "" {
		message = fmt.Sprintf("Your %s was %s by %s.", describeLeave(change.Leave), status, change.Approver.Name)
	}

	created, err := s.createOnce(ctx, &Notification{
		DedupKey:       StatusKey(status, change.Leave.ID, change.Requester.ID),
		RecipientID:    change.Requester.ID,
		SenderID:       senderID,
		Type:           notifType,
		Message:        message,
		LeaveRequestID: &change.Leave.ID,
	})
	if err != nil || !created {
		return created, err
	}

	s.dispatch(ctx, buildMail(change.Requester, "Your leave request was "+status, message, change.Leave))
	return true, nil
}

func (s *service) NotifyReminder(ctx context.Context, leave LeaveSummary, requester, admin *user.User, at time.Time) (bool, error) {
	senderID := requester.ID
	message := fmt.Sprintf("Reminder: %s's %s is still waiting for your approval.", requester.Name, describeLeave(leave))

	created, err := s.createOnce(ctx, &Notification{
		DedupKey:       ReminderKey(leave.ID, admin.ID, at),
		RecipientID:    admin.ID,
		SenderID:       &senderID,
		Type:           TypeReminder,
		Message:        message,
		LeaveRequestID: &leave.ID,
	})
	if err != nil || !created {
		return created, err
	}

	s.dispatch(ctx, buildMail(admin, "Pending leave request from "+requester.Name, message, leave))
	return true, nil
}

// resolveApprover picks the earliest department admin, then the earliest HR
// admin. A nil user with nil error means nobody qualifies.
func (s *service) resolveApprover(ctx context.Context, department string) (*user.User, error) {
	admin, err := s.admins.FindDepartmentAdmin(ctx, department)
	if err == nil {
		return admin, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	admin, err = s.admins.FindHRAdmin(ctx)
	if err == nil {
		return admin, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

// createOnce skips known keys, then relies on the unique dedup_key index to
// settle concurrent writers.
func (s *service) createOnce(ctx context.Context, n *Notification) (bool, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	exists, err := s.repo.ExistsByKey(ctx, n.DedupKey)
	if err != nil {
		return false, err
	}
	if exists {
		l.Debug("notification already exists", zap.String("dedup_key", n.DedupKey))
		return false, nil
	}

	created, err := s.repo.Create(ctx, n)
	if err != nil {
		return false, err
	}
	if !created {
		l.Debug("notification deduplicated on insert", zap.String("dedup_key", n.DedupKey))
	}
	return created, nil
}

func (s *service) dispatch(ctx context.Context, msg mail.Message) {
	if s.mailer == nil || msg.To == "" {
		return
	}
	s.mailer.Dispatch(ctx, msg)
}

func (s *service) ListMine(ctx context.Context, userID string, unreadOnly bool, page, pageSize int) ([]NotificationResponse, int64, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, 0, notificationerrors.ErrInvalidUserID
	}

	items, total, err := s.repo.ListByRecipient(ctx, userID, unreadOnly, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}

	resp := make([]NotificationResponse, len(items))
	for i, n := range items {
		resp[i] = mapToResponse(n)
	}
	return resp, total, nil
}

func (s *service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return 0, notificationerrors.ErrInvalidUserID
	}
	return s.repo.CountUnread(ctx, userID)
}

func (s *service) MarkAsRead(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return notificationerrors.ErrInvalidNotificationID
	}

	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notificationerrors.ErrNotificationNotFound
		}
		return err
	}
	if n.RecipientID.String() != userID {
		return notificationerrors.ErrNotRecipient
	}
	if n.IsRead {
		return nil
	}
	return s.repo.MarkRead(ctx, id)
}

func (s *service) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return 0, notificationerrors.ErrInvalidUserID
	}
	return s.repo.MarkAllRead(ctx, userID)
}
