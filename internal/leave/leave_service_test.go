package leave

import (
	"bytes"
	"context"
	"errors"
	"testing"

	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/notification"
	"go-leave/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakeRepository struct {
	CreateFn         func(ctx context.Context, l *Leave) error
	FindAllFn        func(ctx context.Context) ([]Leave, error)
	ListFn           func(ctx context.Context, f ListFilter) ([]Leave, int64, error)
	FindByIDFn       func(ctx context.Context, id string) (*Leave, error)
	FindPendingFn    func(ctx context.Context) ([]Leave, error)
	UpdateStatusFn   func(ctx context.Context, id, from, to string) (bool, error)
	SetApproverFn    func(ctx context.Context, id, approverID string) error
	UpdateCommentsFn func(ctx context.Context, id string, comments []Comment) error
	DeleteFn         func(ctx context.Context, id string) error
}

func (f *fakeRepository) Create(ctx context.Context, l *Leave) error { return f.CreateFn(ctx, l) }
func (f *fakeRepository) FindAll(ctx context.Context) ([]Leave, error) {
	return f.FindAllFn(ctx)
}
func (f *fakeRepository) List(ctx context.Context, filter ListFilter) ([]Leave, int64, error) {
	return f.ListFn(ctx, filter)
}
func (f *fakeRepository) FindByID(ctx context.Context, id string) (*Leave, error) {
	return f.FindByIDFn(ctx, id)
}
func (f *fakeRepository) FindPending(ctx context.Context) ([]Leave, error) {
	return f.FindPendingFn(ctx)
}
func (f *fakeRepository) UpdateStatus(ctx context.Context, id, from, to string) (bool, error) {
	return f.UpdateStatusFn(ctx, id, from, to)
}
func (f *fakeRepository) SetApprover(ctx context.Context, id, approverID string) error {
	return f.SetApproverFn(ctx, id, approverID)
}
func (f *fakeRepository) UpdateComments(ctx context.Context, id string, comments []Comment) error {
	return f.UpdateCommentsFn(ctx, id, comments)
}
func (f *fakeRepository) Delete(ctx context.Context, id string) error { return f.DeleteFn(ctx, id) }

type fakeUsers struct {
	users    map[string]*user.User
	balances []user.LeaveBalance
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUsers) UpdateBalance(_ context.Context, id string, balance user.LeaveBalance) error {
	f.balances = append(f.balances, balance)
	f.users[id].Balance = balance
	return nil
}

type fakeNotifier struct {
	submissions []notification.LeaveSummary
	changes     []notification.StatusChange
	err         error
}

func (f *fakeNotifier) NotifySubmission(_ context.Context, l notification.LeaveSummary, _ *user.User) (bool, error) {
	f.submissions = append(f.submissions, l)
	return f.err == nil, f.err
}

func (f *fakeNotifier) NotifyStatusChange(_ context.Context, c notification.StatusChange) (bool, error) {
	f.changes = append(f.changes, c)
	return f.err == nil, f.err
}

type reverseCipher struct{}

func (reverseCipher) Encrypt(p []byte) ([]byte, error) { return reverse(p), nil }
func (reverseCipher) Decrypt(c []byte) ([]byte, error) { return reverse(c), nil }

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}

type serviceDeps struct {
	repo     *fakeRepository
	users    *fakeUsers
	notifier *fakeNotifier
	svc      Service
	owner    *user.User
	admin    *user.User
}

func setupServiceTest() *serviceDeps {
	owner := &user.User{ID: uuid.New(), Name: "Ana", Department: "Engineering", Balance: user.NewLeaveBalance(20, 4, 24)}
	admin := &user.User{ID: uuid.New(), Name: "Boss", Role: user.RoleAdmin, Department: "Engineering"}

	d := &serviceDeps{
		repo: &fakeRepository{},
		users: &fakeUsers{users: map[string]*user.User{
			owner.ID.String(): owner,
			admin.ID.String(): admin,
		}},
		notifier: &fakeNotifier{},
		owner:    owner,
		admin:    admin,
	}
	d.svc = NewService(d.repo, d.users, d.notifier, reverseCipher{}, Options{MaxProofBytes: 16}, zap.NewNop())
	return d
}

func (d *serviceDeps) pendingLeave(leaveType, reason string, dates ...string) *Leave {
	return &Leave{
		ID:        uuid.New(),
		UserID:    d.owner.ID,
		LeaveType: leaveType,
		Dates:     datatypes.NewJSONSlice(dates),
		Reason:    reason,
		Status:    StatusPending,
	}
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()
	valid := SubmitLeaveRequest{LeaveType: TypeFullDay, Dates: []string{"2026-03-02"}, Reason: "Family"}

	t.Run("validation errors persist nothing", func(t *testing.T) {
		tests := []struct {
			name   string
			userID string
			req    SubmitLeaveRequest
			want   error
		}{
			{"missing user", "", valid, leaveerrors.ErrUserRequired},
			{"missing type", uuid.NewString(), SubmitLeaveRequest{Dates: []string{"2026-03-02"}}, leaveerrors.ErrLeaveTypeRequired},
			{"empty dates", uuid.NewString(), SubmitLeaveRequest{LeaveType: TypeFullDay}, leaveerrors.ErrDatesRequired},
			{"bad type", uuid.NewString(), SubmitLeaveRequest{LeaveType: "weekly", Dates: []string{"2026-03-02"}}, leaveerrors.ErrInvalidLeaveType},
			{"bad date", uuid.NewString(), SubmitLeaveRequest{LeaveType: TypeFullDay, Dates: []string{"02/03/2026"}}, leaveerrors.ErrInvalidDateFormat},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				d := setupServiceTest()
				d.repo.CreateFn = func(ctx context.Context, l *Leave) error {
					t.Fatal("create must not be called")
					return nil
				}

				_, err := d.svc.Submit(ctx, tt.userID, tt.req, nil)
				assert.True(t, errors.Is(err, tt.want), "got %v", err)
			})
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		d := setupServiceTest()
		_, err := d.svc.Submit(ctx, uuid.NewString(), valid, nil)
		assert.True(t, errors.Is(err, leaveerrors.ErrUserNotFound))
	})

	t.Run("creates pending leave with sealed proof", func(t *testing.T) {
		d := setupServiceTest()
		var stored *Leave
		d.repo.CreateFn = func(ctx context.Context, l *Leave) error {
			stored = l
			return nil
		}

		resp, err := d.svc.Submit(ctx, d.owner.ID.String(), valid, &ProofUpload{Data: []byte("abc"), MimeType: "image/png"})

		assert.NoError(t, err)
		assert.Equal(t, StatusPending, resp.Status)
		assert.True(t, resp.HasProof)
		assert.Equal(t, []byte("cba"), stored.Proof)
		assert.Equal(t, "image/png", *stored.ProofMimeType)
		assert.Len(t, d.notifier.submissions, 1)
		assert.Equal(t, stored.ID, d.notifier.submissions[0].ID)
	})

	t.Run("notification failure does not fail submit", func(t *testing.T) {
		d := setupServiceTest()
		d.notifier.err = errors.New("smtp down")
		d.repo.CreateFn = func(ctx context.Context, l *Leave) error { return nil }

		_, err := d.svc.Submit(ctx, d.owner.ID.String(), valid, nil)
		assert.NoError(t, err)
	})

	t.Run("proof too large", func(t *testing.T) {
		d := setupServiceTest()
		_, err := d.svc.Submit(ctx, d.owner.ID.String(), valid, &ProofUpload{Data: bytes.Repeat([]byte("x"), 17)})
		assert.True(t, errors.Is(err, leaveerrors.ErrProofTooLarge))
	})
}

func TestService_Transition(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown leave", func(t *testing.T) {
		d := setupServiceTest()
		d.repo.FindByIDFn = func(ctx context.Context, id string) (*Leave, error) { return nil, gorm.ErrRecordNotFound }

		_, err := d.svc.Transition(ctx, uuid.NewString(), TransitionInput{Status: StatusApproved})
		assert.True(t, errors.Is(err, leaveerrors.ErrLeaveNotFound))
	})

	t.Run("approve applies ledger once and notifies once", func(t *testing.T) {
		d := setupServiceTest()
		l := d.pendingLeave(TypeFullDay, "Sick", "2026-03-02", "2026-03-03")
		d.repo.FindByIDFn = func(ctx context.Context, id string) (*Leave, error) { return l, nil }
		var calls []string
		d.repo.UpdateStatusFn = func(ctx context.Context, id, from, to string) (bool, error) {
			calls = append(calls, "status:"+from+"->"+to)
			return true, nil
		}
		d.repo.SetApproverFn = func(ctx context.Context, id, approverID string) error {
			calls = append(calls, "approver:"+approverID)
			return nil
		}
		approverID := d.admin.ID.String()

		resp, err := d.svc.Transition(ctx, l.ID.String(), TransitionInput{Status: "approved", ApproverID: &approverID})

		assert.NoError(t, err)
		assert.Equal(t, StatusApproved, resp.Status)
		assert.Equal(t, []string{"status:Pending->Approved", "approver:" + approverID}, calls)
		assert.Len(t, d.users.balances, 1)
		assert.Equal(t, "2", d.users.balances[0].Medical.String())
		assert.Equal(t, "2", d.users.balances[0].LeavesTaken.String())
		assert.Len(t, d.notifier.changes, 1)
		change := d.notifier.changes[0]
		assert.Equal(t, StatusApproved, change.Status)
		assert.Equal(t, d.owner.ID, change.Requester.ID)
		assert.Equal(t, "Boss", change.Approver.Name)
	})

	t.Run("reject leaves balance alone", func(t *testing.T) {
		d := setupServiceTest()
		l := d.pendingLeave(TypeFullDay, "Family", "2026-03-02")
		d.repo.FindByIDFn = func(ctx context.Context, id string) (*Leave, error) { return l, nil }
		d.repo.UpdateStatusFn = func(ctx context.Context, id, from, to string) (bool, error) { return true, nil }

		resp, err := d.svc.Transition(ctx, l.ID.String(), TransitionInput{Status: StatusRejected})

		assert.NoError(t, err)
		assert.Equal(t, StatusRejected, resp.Status)
		assert.Empty(t, d.users.balances)
		assert.Len(t, d.notifier.changes, 1)
		assert.Nil(t, d.notifier.changes[0].Approver)
	})

	t.Run("omitted approver falls back to preloaded record", func(t *testing.T) {
		d := setupServiceTest()
		l := d.pendingLeave(TypeFullDay, "Family", "2026-03-02")
		l.ApproverID = &d.admin.ID
		l.Approver = d.admin
		d.repo.FindByIDFn = func(ctx context.Context, id string) (*Leave, error) { return l, nil }
		d.repo.UpdateStatusFn = func(ctx context.Context, id, from, to string) (bool, error) { return true, nil }
		d.repo.SetApproverFn = func(ctx context.Context, id, approverID string) error {
			t.Fatal("approver must stay untouched")
			return nil
		}

		_, err := d.svc.Transition(ctx, l.ID.String(), TransitionInput{Status: StatusRejected})

		assert.NoError(t, err)
		assert.Equal(t, d.admin.ID, *d.notifier.changes[0].ApproverID)
		assert.Equal(t, "Boss", d.notifier.changes[0].Approver.Name)
	})

	t.Run("stored approver id is looked up", func(t *testing.T) {
		d := setupServiceTest()
		l := d.pendingLeave(TypeFullDay, "Family", "2026-03-02")
		l.ApproverID = &d.admin.ID
		d.repo.FindByIDFn = func(ctx context.Context, id string) (*Leave, error) { return l, nil }
		d.repo.UpdateStatusFn = func(ctx context.Context, id, from, to string) (bool, error) { return true, nil }

		_, err := d.svc.Transition(ctx, l.ID.String(), TransitionInput{Status: StatusRejected})

		assert.NoError(t, err)
		assert.Equal(t, "Boss", d.notifier.changes[0].Approver.Name)
	})

	t.Run("unknown approver is rejected before any write", func(t *testing.T) {
		d := setupServiceTest()
		l := d.pendingLeave(TypeFullDay, "Family", "2026-03-02")
		d.repo.FindByIDFn = func(ctx context.Context, id string) (*Leave, error) { return l, nil }
		d.repo.UpdateStatusFn = func(ctx context.Context, id, from, to string) (bool, error) {
			t.Fatal("status must stay untouched")
			return false, nil
		}
		ghost := uuid.NewString()

		_, err := d.svc.Transition(ctx, l.ID.String(), TransitionInput{Status: StatusApproved, ApproverID: &ghost})

		assert.True(t, errors.Is(err, leaveerrors.ErrApproverNotFound))
		assert.Empty(t, d.users.balances)
		assert.Empty(t, d.notifier.changes)
	})

	t.Run("lost race returns conflict without ledger", func(t *testing.T) {
		d := setupServiceTest()
		l := d.pendingLeave(TypeFullDay, "Family", "2026-03-02")
		d.repo.FindByIDFn = func(ctx context.Context, id string) (*Leave, error) { return l, nil }
		d.repo.UpdateStatusFn = func(ctx context.Context, id, from, to string) (bool, error) { return false, nil }

		_, err := d.svc.Transition(ctx, l.ID.String(), TransitionInput{Status: StatusApproved})

		assert.True(t, errors.Is(err, leaveerrors.ErrStatusChanged))
		assert.Empty(t, d.users.balances)
		assert.Empty(t, d.notifier.changes)
	})

	t.Run("decided leave cannot move again", func(t *testing.T) {
		d := setupServiceTest()
		l := d.pendingLeave(TypeFullDay, "Family", "2026-03-02")
		l.Status = StatusApproved
		d.repo.FindByIDFn = func(ctx context.Context, id string) (*Leave, error) { return l, nil }

		_, err := d.svc.Transition(ctx, l.ID.String(), TransitionInput{Status: StatusRejected})
		assert.True(t, errors.Is(err, leaveerrors.ErrInvalidStatusTransition))
	})

	t.Run("pending is not a target", func(t *testing.T) {
		d := setupServiceTest()
		l := d.pendingLeave(TypeFullDay, "Family", "2026-03-02")
		d.repo.FindByIDFn = func(ctx context.Context, id string) (*Leave, error) { return l, nil }

		_, err := d.svc.Transition(ctx, l.ID.String(), TransitionInput{Status: StatusPending})
		assert.True(t, errors.Is(err, leaveerrors.ErrInvalidStatus))
	})

	t.Run("notification failure is swallowed and comment stored", func(t *testing.T) {
		d := setupServiceTest()
		d.notifier.err = errors.New("boom")
		l := d.pendingLeave(TypeShortLeave, "Errand", "2026-03-02")
		d.repo.FindByIDFn = func(ctx context.Context, id string) (*Leave, error) { return l, nil }
		d.repo.UpdateStatusFn = func(ctx context.Context, id, from, to string) (bool, error) { return true, nil }
		var stored []Comment
		d.repo.UpdateCommentsFn = func(ctx context.Context, id string, comments []Comment) error {
			stored = comments
			return nil
		}

		resp, err := d.svc.Transition(ctx, l.ID.String(), TransitionInput{Status: StatusApproved, ActorID: "actor", Comment: "enjoy"})

		assert.NoError(t, err)
		assert.Len(t, stored, 1)
		assert.Equal(t, "actor", stored[0].AuthorID)
		assert.Len(t, resp.Comments, 1)
		assert.Equal(t, "23.5", d.users.balances[0].ShortLeave.String())
	})
}

func TestService_Visibility(t *testing.T) {
	ctx := context.Background()
	d := setupServiceTest()
	l := d.pendingLeave(TypeFullDay, "Family", "2026-03-02")
	mime := "application/pdf"
	l.Proof = reverse([]byte("%PDF"))
	l.ProofMimeType = &mime
	d.repo.FindByIDFn = func(ctx context.Context, id string) (*Leave, error) { return l, nil }

	_, err := d.svc.GetByID(ctx, uuid.NewString(), false, l.ID.String())
	assert.True(t, errors.Is(err, leaveerrors.ErrForbidden))

	resp, err := d.svc.GetByID(ctx, d.owner.ID.String(), false, l.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, l.ID.String(), resp.ID)

	doc, err := d.svc.GetProof(ctx, uuid.NewString(), true, l.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), doc.Data)
	assert.Equal(t, mime, doc.MimeType)
}

func TestService_GetAll(t *testing.T) {
	ctx := context.Background()
	d := setupServiceTest()
	var filters []ListFilter
	d.repo.ListFn = func(ctx context.Context, f ListFilter) ([]Leave, int64, error) {
		filters = append(filters, f)
		return []Leave{{ID: uuid.New()}}, 7, nil
	}

	all, total, err := d.svc.GetAll(ctx, d.owner.ID.String(), true, ListQuery{Status: "pending", Page: 3, PageSize: 2})
	assert.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, int64(7), total)

	_, _, err = d.svc.GetAll(ctx, d.owner.ID.String(), false, ListQuery{Page: 1, PageSize: 10})
	assert.NoError(t, err)

	assert.Equal(t, []ListFilter{
		{Status: "pending", Limit: 2, Offset: 4},
		{UserID: d.owner.ID.String(), Limit: 10, Offset: 0},
	}, filters)

	_, _, err = d.svc.GetAll(ctx, "not-a-uuid", false, ListQuery{Page: 1, PageSize: 10})
	assert.True(t, errors.Is(err, leaveerrors.ErrInvalidUserID))
}

func TestService_Delete(t *testing.T) {
	d := setupServiceTest()
	d.repo.DeleteFn = func(ctx context.Context, id string) error { return gorm.ErrRecordNotFound }

	err := d.svc.Delete(context.Background(), uuid.NewString())
	assert.True(t, errors.Is(err, leaveerrors.ErrLeaveNotFound))
}
