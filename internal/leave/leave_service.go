package leave

import (
	"context"
	"errors"
	"strings"
	"time"

	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/notification"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserStore is the part of the user repository the lifecycle needs.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
	UpdateBalance(ctx context.Context, id string, balance user.LeaveBalance) error
}

// Notifier emits lifecycle notifications.
type Notifier interface {
	NotifySubmission(ctx context.Context, leave notification.LeaveSummary, requester *user.User) (bool, error)
	NotifyStatusChange(ctx context.Context, change notification.StatusChange) (bool, error)
}

// ProofCipher seals proof documents at rest.
type ProofCipher interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, userID string, req SubmitLeaveRequest, proof *ProofUpload) (LeaveResponse, error)
	Transition(ctx context.Context, id string, in TransitionInput) (LeaveResponse, error)
	GetAll(ctx context.Context, actorID string, canReadAll bool, q ListQuery) ([]LeaveResponse, int64, error)
	GetByID(ctx context.Context, actorID string, canReadAll bool, id string) (LeaveResponse, error)
	GetProof(ctx context.Context, actorID string, canReadAll bool, id string) (ProofDocument, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context) ([]byte, error)
}

type Options struct {
	MaxProofBytes int64
}

type service struct {
	repo     Repository
	users    UserStore
	notifier Notifier
	cipher   ProofCipher
	opts     Options
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(repo Repository, users UserStore, notifier Notifier, cipher ProofCipher, opts Options, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		repo:     repo,
		users:    users,
		notifier: notifier,
		cipher:   cipher,
		opts:     opts,
		now:      time.Now,
		logger:   l,
	}
}

func (s *service) Submit(ctx context.Context, userID string, req SubmitLeaveRequest, proof *ProofUpload) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("submit leave requested",
		zap.String("user_id", userID),
		zap.String("leave_type", req.LeaveType),
		zap.Int("days", len(req.Dates)),
	)

	if err := validateSubmission(userID, req); err != nil {
		log.Warn("submit leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidUserID
	}

	owner, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrUserNotFound
		}
		return LeaveResponse{}, err
	}

	l := &Leave{
		ID:        uuid.New(),
		UserID:    ownerID,
		LeaveType: req.LeaveType,
		Dates:     datatypes.NewJSONSlice(req.Dates),
		Reason:    strings.TrimSpace(req.Reason),
		Status:    StatusPending,
		Comments:  datatypes.NewJSONSlice([]Comment{}),
	}
	if req.HalfDayType != "" {
		v := req.HalfDayType
		l.HalfDayType = &v
	}

	if proof != nil && len(proof.Data) > 0 {
		if s.opts.MaxProofBytes > 0 && int64(len(proof.Data)) > s.opts.MaxProofBytes {
			return LeaveResponse{}, leaveerrors.ErrProofTooLarge
		}
		sealed, err := s.cipher.Encrypt(proof.Data)
		if err != nil {
			log.Error("submit leave proof encryption failed", zap.Error(err))
			return LeaveResponse{}, err
		}
		mime := proof.MimeType
		l.Proof = sealed
		l.ProofMimeType = &mime
	}

	if err := s.repo.Create(ctx, l); err != nil {
		log.Error("submit leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	l.User = owner

	if _, err := s.notifier.NotifySubmission(ctx, Summary(*l), owner); err != nil {
		log.Error("submission notification failed",
			zap.String("leave_id", l.ID.String()),
			zap.Error(err),
		)
	}

	log.Info("submit leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("user_id", userID),
	)
	return mapToResponse(*l), nil
}

// Transition decides a pending request. A named approver must exist before
// anything is written. Side effects run in order: status, balance, approver,
// comment, notification. A failure after the status write
// is returned without undoing earlier steps.
func (s *service) Transition(ctx context.Context, id string, in TransitionInput) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger).With(zap.String("leave_id", id))
	log.Debug("transition leave requested", zap.String("target_status", in.Status))

	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	var approverID *uuid.UUID
	if in.ApproverID != nil && *in.ApproverID != "" {
		parsed, err := uuid.Parse(*in.ApproverID)
		if err != nil {
			return LeaveResponse{}, leaveerrors.ErrInvalidApproverID
		}
		approverID = &parsed
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}

	target, ok := normalizeStatus(in.Status)
	if !ok {
		return LeaveResponse{}, leaveerrors.ErrInvalidStatus
	}
	if !l.IsPending() {
		log.Warn("transition leave invalid", zap.String("from_status", l.Status), zap.String("to_status", target))
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	var approver *user.User
	if approverID != nil {
		approver, err = s.users.FindByID(ctx, approverID.String())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return LeaveResponse{}, leaveerrors.ErrApproverNotFound
			}
			log.Error("transition leave approver lookup failed", zap.Error(err))
			return LeaveResponse{}, err
		}
	}

	moved, err := s.repo.UpdateStatus(ctx, id, l.Status, target)
	if err != nil {
		log.Error("transition leave status persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !moved {
		log.Warn("transition leave lost race", zap.String("to_status", target))
		return LeaveResponse{}, leaveerrors.ErrStatusChanged
	}
	l.Status = target

	owner := l.User
	if owner == nil {
		owner, err = s.users.FindByID(ctx, l.UserID.String())
		if err != nil {
			log.Error("transition leave owner lookup failed", zap.Error(err))
			return LeaveResponse{}, err
		}
	}

	if target == StatusApproved {
		updated := ApplyLedger(owner.Balance, l.LeaveType, l.Reason, len(l.Dates))
		if err := s.users.UpdateBalance(ctx, owner.ID.String(), updated); err != nil {
			log.Error("transition leave balance persist failed", zap.Error(err))
			return LeaveResponse{}, err
		}
		owner.Balance = updated
	}

	if approverID != nil {
		if err := s.repo.SetApprover(ctx, id, approverID.String()); err != nil {
			log.Error("transition leave approver persist failed", zap.Error(err))
			return LeaveResponse{}, err
		}
		l.ApproverID = approverID
	}

	if text := strings.TrimSpace(in.Comment); text != "" {
		author := in.ActorID
		if approverID != nil {
			author = approverID.String()
		}
		comments := append(append([]Comment{}, l.Comments...), Comment{AuthorID: author, Text: text, CreatedAt: s.now().UTC()})
		if err := s.repo.UpdateComments(ctx, id, comments); err != nil {
			log.Error("transition leave comment persist failed", zap.Error(err))
			return LeaveResponse{}, err
		}
		l.Comments = datatypes.NewJSONSlice(comments)
	}

	if approver == nil {
		approver = s.resolveApprover(ctx, l)
	}
	l.Approver = approver

	if _, err := s.notifier.NotifyStatusChange(ctx, notification.StatusChange{
		Leave:      Summary(*l),
		Requester:  owner,
		ApproverID: l.ApproverID,
		Approver:   approver,
		Status:     target,
	}); err != nil {
		log.Error("status change notification failed", zap.Error(err))
	}

	log.Info("transition leave success", zap.String("status", target))
	return mapToResponse(*l), nil
}

// resolveApprover falls back to the preloaded approver, then the stored
// approver id. Lookup failures yield nil.
func (s *service) resolveApprover(ctx context.Context, l *Leave) *user.User {
	if l.Approver != nil {
		return l.Approver
	}
	id := l.ApproverID
	if id == nil {
		return nil
	}

	u, err := s.users.FindByID(ctx, id.String())
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Warn("approver lookup failed",
			zap.String("approver_id", id.String()),
			zap.Error(err),
		)
		return nil
	}
	return u
}

func (s *service) GetAll(ctx context.Context, actorID string, canReadAll bool, q ListQuery) ([]LeaveResponse, int64, error) {
	f := ListFilter{Status: q.Status, Limit: q.PageSize, Offset: (q.Page - 1) * q.PageSize}
	if f.Limit <= 0 {
		f.Limit = -1
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if !canReadAll {
		if _, err := uuid.Parse(actorID); err != nil {
			return nil, 0, leaveerrors.ErrInvalidUserID
		}
		f.UserID = actorID
	}

	leaves, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return mapToListResponse(leaves), total, nil
}

func (s *service) GetByID(ctx context.Context, actorID string, canReadAll bool, id string) (LeaveResponse, error) {
	l, err := s.findVisible(ctx, actorID, canReadAll, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

func (s *service) GetProof(ctx context.Context, actorID string, canReadAll bool, id string) (ProofDocument, error) {
	l, err := s.findVisible(ctx, actorID, canReadAll, id)
	if err != nil {
		return ProofDocument{}, err
	}
	if !l.HasProof() {
		return ProofDocument{}, leaveerrors.ErrProofNotFound
	}

	data, err := s.cipher.Decrypt(l.Proof)
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("proof decryption failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return ProofDocument{}, err
	}

	mime := "application/octet-stream"
	if l.ProofMimeType != nil && *l.ProofMimeType != "" {
		mime = *l.ProofMimeType
	}
	return ProofDocument{Data: data, MimeType: mime}, nil
}

func (s *service) findVisible(ctx context.Context, actorID string, canReadAll bool, id string) (*Leave, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, leaveerrors.ErrInvalidLeaveID
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		return nil, err
	}
	if !canReadAll && l.UserID.String() != actorID {
		return nil, leaveerrors.ErrForbidden
	}
	return l, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return leaveerrors.ErrInvalidLeaveID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leaveerrors.ErrLeaveNotFound
		}
		return err
	}
	contextutil.GetLogger(ctx, s.logger).Info("leave deleted", zap.String("leave_id", id))
	return nil
}

func validateSubmission(userID string, req SubmitLeaveRequest) error {
	if strings.TrimSpace(userID) == "" {
		return leaveerrors.ErrUserRequired
	}
	if strings.TrimSpace(req.LeaveType) == "" {
		return leaveerrors.ErrLeaveTypeRequired
	}
	if len(req.Dates) == 0 {
		return leaveerrors.ErrDatesRequired
	}

	switch req.LeaveType {
	case TypeFullDay, TypeHalfDay, TypeShortLeave:
	default:
		return leaveerrors.ErrInvalidLeaveType
	}

	switch req.HalfDayType {
	case "", HalfDayFirst, HalfDaySecond:
	default:
		return leaveerrors.ErrInvalidHalfDayType
	}

	for _, d := range req.Dates {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return leaveerrors.ErrInvalidDateFormat
		}
	}
	return nil
}

func normalizeStatus(v string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "approved":
		return StatusApproved, true
	case "rejected":
		return StatusRejected, true
	default:
		return "", false
	}
}
