package leave

import (
	"context"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, l *Leave) error
	FindAll(ctx context.Context) ([]Leave, error)
	List(ctx context.Context, f ListFilter) ([]Leave, int64, error)
	FindByID(ctx context.Context, id string) (*Leave, error)
	FindPending(ctx context.Context) ([]Leave, error)
	UpdateStatus(ctx context.Context, id, from, to string) (bool, error)
	SetApprover(ctx context.Context, id, approverID string) error
	UpdateComments(ctx context.Context, id string, comments []Comment) error
	Delete(ctx context.Context, id string) error
}

// ListFilter narrows List. An empty UserID lists every owner.
type ListFilter struct {
	UserID string
	Status string
	Limit  int
	Offset int
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return r.db.WithContext(ctx).Omit("User", "Approver").Create(l).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Leave, error) {
	var leaves []Leave
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Approver").
		Order("created_at DESC, id ASC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]Leave, int64, error) {
	q := r.db.WithContext(ctx).Model(&Leave{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if status := strings.TrimSpace(f.Status); status != "" {
		q = q.Where("LOWER(status) = ?", strings.ToLower(status))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var leaves []Leave
	err := q.Preload("User").
		Preload("Approver").
		Order("created_at DESC, id ASC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&leaves).Error
	return leaves, total, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Leave, error) {
	var l Leave
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Approver").
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// FindPending matches status case-insensitively so legacy rows written as
// "pending" or "PENDING" are still swept.
func (r *repository) FindPending(ctx context.Context) ([]Leave, error) {
	var leaves []Leave
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("LOWER(status) = ?", "pending").
		Order("created_at ASC, id ASC").
		Find(&leaves).Error
	return leaves, err
}

// UpdateStatus moves the row only while it still holds from. false means
// another writer got there first.
func (r *repository) UpdateStatus(ctx context.Context, id, from, to string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Leave{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) SetApprover(ctx context.Context, id, approverID string) error {
	res := r.db.WithContext(ctx).
		Model(&Leave{}).
		Where("id = ?", id).
		Update("approver_id", approverID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) UpdateComments(ctx context.Context, id string, comments []Comment) error {
	return r.db.WithContext(ctx).
		Model(&Leave{}).
		Where("id = ?", id).
		Update("comments", datatypes.NewJSONSlice(comments)).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&Leave{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
