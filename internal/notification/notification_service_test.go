package notification_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go-leave/internal/mail"
	"go-leave/internal/notification"
	notificationerrors "go-leave/internal/notification/errors"
	"go-leave/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type captureMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *captureMailer) Dispatch(_ context.Context, msg mail.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type notificationDeps struct {
	db      *gorm.DB
	repo    notification.Repository
	service notification.Service
	mailer  *captureMailer
}

func setupNotificationTest(t *testing.T) *notificationDeps {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&user.User{}, &notification.Notification{}))

	repo := notification.NewRepository(db)
	mailer := &captureMailer{}
	svc := notification.NewService(repo, user.NewRepository(db), mailer, zap.NewNop())

	return &notificationDeps{db: db, repo: repo, service: svc, mailer: mailer}
}

func (d *notificationDeps) seedUser(t *testing.T, name, role, department string, createdAt time.Time) *user.User {
	t.Helper()
	u := &user.User{
		Name:       name,
		Email:      name + "@example.com",
		Password:   "hash",
		Role:       role,
		Department: department,
		IsActive:   true,
		Balance:    user.NewLeaveBalance(20, 4, 24),
		CreatedAt:  createdAt,
	}
	assert.NoError(t, d.db.Create(u).Error)
	return u
}

func summary() notification.LeaveSummary {
	return notification.LeaveSummary{
		ID:        uuid.New(),
		LeaveType: "full-day",
		Dates:     []string{"2026-03-02", "2026-03-03"},
		Reason:    "Family",
	}
}

func TestNotifySubmission(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	t.Run("goes to earliest department admin", func(t *testing.T) {
		d := setupNotificationTest(t)
		requester := d.seedUser(t, "emp", user.RoleEmployee, "Engineering", base)
		first := d.seedUser(t, "lead", user.RoleAdmin, "Engineering", base)
		d.seedUser(t, "lead2", user.RoleAdmin, "Engineering", base.Add(time.Hour))
		d.seedUser(t, "hr", user.RoleAdmin, "HR", base.Add(-time.Hour))

		leave := summary()
		created, err := d.service.NotifySubmission(ctx, leave, requester)

		assert.NoError(t, err)
		assert.True(t, created)

		var n notification.Notification
		assert.NoError(t, d.db.First(&n, "leave_request_id = ?", leave.ID).Error)
		assert.Equal(t, first.ID, n.RecipientID)
		assert.Equal(t, notification.TypeSubmitted, n.Type)
		assert.Equal(t, notification.SubmissionKey(leave.ID, first.ID), n.DedupKey)
		assert.Equal(t, 1, d.mailer.count())
		assert.Equal(t, "lead@example.com", d.mailer.sent[0].To)
	})

	t.Run("falls back to HR admin", func(t *testing.T) {
		d := setupNotificationTest(t)
		requester := d.seedUser(t, "emp", user.RoleEmployee, "Design", base)
		hr := d.seedUser(t, "people", user.RoleAdmin, "Human Resources", base)

		leave := summary()
		created, err := d.service.NotifySubmission(ctx, leave, requester)

		assert.NoError(t, err)
		assert.True(t, created)
		var n notification.Notification
		assert.NoError(t, d.db.First(&n, "leave_request_id = ?", leave.ID).Error)
		assert.Equal(t, hr.ID, n.RecipientID)
	})

	t.Run("no eligible admin yields no notification", func(t *testing.T) {
		d := setupNotificationTest(t)
		requester := d.seedUser(t, "emp", user.RoleEmployee, "Design", base)
		d.seedUser(t, "ops", user.RoleAdmin, "Operations", base)

		leave := summary()
		created, err := d.service.NotifySubmission(ctx, leave, requester)

		assert.NoError(t, err)
		assert.False(t, created)
		n, err := d.repo.CountByLeave(ctx, leave.ID.String())
		assert.NoError(t, err)
		assert.Zero(t, n)
		assert.Zero(t, d.mailer.count())
	})

	t.Run("repeated submission is deduplicated", func(t *testing.T) {
		d := setupNotificationTest(t)
		requester := d.seedUser(t, "emp", user.RoleEmployee, "Engineering", base)
		d.seedUser(t, "lead", user.RoleAdmin, "Engineering", base)

		leave := summary()
		first, err := d.service.NotifySubmission(ctx, leave, requester)
		assert.NoError(t, err)
		second, err := d.service.NotifySubmission(ctx, leave, requester)
		assert.NoError(t, err)

		assert.True(t, first)
		assert.False(t, second)
		n, _ := d.repo.CountByLeave(ctx, leave.ID.String())
		assert.Equal(t, int64(1), n)
		assert.Equal(t, 1, d.mailer.count())
	})
}

func TestRepository_CreateDedupOnInsert(t *testing.T) {
	ctx := context.Background()
	d := setupNotificationTest(t)
	recipient := uuid.New()

	created, err := d.repo.Create(ctx, &notification.Notification{DedupKey: "k", RecipientID: recipient, Type: notification.TypeGeneral, Message: "a"})
	assert.NoError(t, err)
	assert.True(t, created)

	created, err = d.repo.Create(ctx, &notification.Notification{DedupKey: "k", RecipientID: recipient, Type: notification.TypeGeneral, Message: "b"})
	assert.NoError(t, err)
	assert.False(t, created)
}

func TestNotifyStatusChange(t *testing.T) {
	ctx := context.Background()
	base := time.Now()

	t.Run("names approver when record known", func(t *testing.T) {
		d := setupNotificationTest(t)
		requester := d.seedUser(t, "emp", user.RoleEmployee, "Engineering", base)
		approver := d.seedUser(t, "boss", user.RoleAdmin, "Engineering", base)

		leave := summary()
		created, err := d.service.NotifyStatusChange(ctx, notification.StatusChange{
			Leave:     leave,
			Requester: requester,
			Approver:  approver,
			Status:    "Approved",
		})

		assert.NoError(t, err)
		assert.True(t, created)
		var n notification.Notification
		assert.NoError(t, d.db.First(&n, "recipient_id = ?", requester.ID).Error)
		assert.Equal(t, notification.TypeApproved, n.Type)
		assert.Contains(t, n.Message, "by boss")
		assert.Equal(t, approver.ID, *n.SenderID)
		assert.Equal(t, notification.StatusKey("approved", leave.ID, requester.ID), n.DedupKey)
	})

	t.Run("id-only approver becomes sender", func(t *testing.T) {
		d := setupNotificationTest(t)
		requester := d.seedUser(t, "emp", user.RoleEmployee, "Engineering", base)
		approverID := uuid.New()

		_, err := d.service.NotifyStatusChange(ctx, notification.StatusChange{
			Leave:      summary(),
			Requester:  requester,
			ApproverID: &approverID,
			Status:     "Rejected",
		})

		assert.NoError(t, err)
		var n notification.Notification
		assert.NoError(t, d.db.First(&n, "recipient_id = ?", requester.ID).Error)
		assert.Equal(t, notification.TypeRejected, n.Type)
		assert.Equal(t, approverID, *n.SenderID)
		assert.NotContains(t, n.Message, " by ")
	})

	t.Run("unknown status", func(t *testing.T) {
		d := setupNotificationTest(t)
		requester := d.seedUser(t, "emp", user.RoleEmployee, "Engineering", base)

		_, err := d.service.NotifyStatusChange(ctx, notification.StatusChange{Leave: summary(), Requester: requester, Status: "Pending"})

		assert.Error(t, err)
	})
}

func TestNotifyReminder_BucketsByHour(t *testing.T) {
	ctx := context.Background()
	d := setupNotificationTest(t)
	requester := d.seedUser(t, "emp", user.RoleEmployee, "Engineering", time.Now())
	admin := d.seedUser(t, "lead", user.RoleAdmin, "Engineering", time.Now())
	leave := summary()

	at := time.Date(2026, 3, 2, 9, 0, 5, 0, time.UTC)

	first, err := d.service.NotifyReminder(ctx, leave, requester, admin, at)
	assert.NoError(t, err)
	again, err := d.service.NotifyReminder(ctx, leave, requester, admin, at.Add(40*time.Minute))
	assert.NoError(t, err)
	nextHour, err := d.service.NotifyReminder(ctx, leave, requester, admin, at.Add(time.Hour))
	assert.NoError(t, err)

	assert.True(t, first)
	assert.False(t, again)
	assert.True(t, nextHour)
	assert.Equal(t, "leave-reminder:"+leave.ID.String()+":"+admin.ID.String()+":2026030209", notification.ReminderKey(leave.ID, admin.ID, at))
}

func TestMarkAsRead(t *testing.T) {
	ctx := context.Background()
	d := setupNotificationTest(t)
	owner := uuid.New()
	n := &notification.Notification{DedupKey: "x", RecipientID: owner, Type: notification.TypeGeneral, Message: "hi"}
	_, err := d.repo.Create(ctx, n)
	assert.NoError(t, err)

	err = d.service.MarkAsRead(ctx, uuid.NewString(), n.ID.String())
	assert.True(t, errors.Is(err, notificationerrors.ErrNotRecipient))

	err = d.service.MarkAsRead(ctx, owner.String(), uuid.NewString())
	assert.True(t, errors.Is(err, notificationerrors.ErrNotificationNotFound))

	assert.NoError(t, d.service.MarkAsRead(ctx, owner.String(), n.ID.String()))
	unread, err := d.service.UnreadCount(ctx, owner.String())
	assert.NoError(t, err)
	assert.Zero(t, unread)
}

func TestListMineAndMarkAll(t *testing.T) {
	ctx := context.Background()
	d := setupNotificationTest(t)
	owner := uuid.New()
	for i := 0; i < 3; i++ {
		_, err := d.repo.Create(ctx, &notification.Notification{DedupKey: fmt.Sprintf("k%d", i), RecipientID: owner, Type: notification.TypeGeneral, Message: "m"})
		assert.NoError(t, err)
	}

	items, total, err := d.service.ListMine(ctx, owner.String(), true, 1, 2)
	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, int64(3), total)

	updated, err := d.service.MarkAllAsRead(ctx, owner.String())
	assert.NoError(t, err)
	assert.Equal(t, int64(3), updated)

	_, total, err = d.service.ListMine(ctx, owner.String(), true, 1, 10)
	assert.NoError(t, err)
	assert.Zero(t, total)
}
