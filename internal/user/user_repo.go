package user

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// departments treated as the HR fallback approver pool
var hrDepartments = []string{"hr", "human resources"}

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context) ([]User, error)
	FindOptions(ctx context.Context) ([]User, error)
	FindDepartmentAdmin(ctx context.Context, department string) (*User, error)
	FindHRAdmin(ctx context.Context) (*User, error)
	FindReminderAdmins(ctx context.Context, department string) ([]User, error)
	UpdateBalance(ctx context.Context, id string, balance LeaveBalance) error
	UpdateAvatar(ctx context.Context, id, path string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindAll(ctx context.Context) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&users).Error
	return users, err
}

func (r *repository) FindOptions(ctx context.Context) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Select("id", "name", "department").
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&users).Error
	return users, err
}

// FindDepartmentAdmin returns the earliest-created admin of the department,
// ties broken by id.
func (r *repository) FindDepartmentAdmin(ctx context.Context, department string) (*User, error) {
	department = normalizeDepartment(department)
	if department == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var u User
	err := r.db.WithContext(ctx).
		Where("role = ?", RoleAdmin).
		Where("LOWER(TRIM(department)) = ?", department).
		Order("created_at ASC, id ASC").
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindHRAdmin(ctx context.Context) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).
		Where("role = ?", RoleAdmin).
		Where("LOWER(TRIM(department)) IN ?", hrDepartments).
		Order("created_at ASC, id ASC").
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindReminderAdmins returns admins of the department plus every HR admin,
// each at most once, earliest first.
func (r *repository) FindReminderAdmins(ctx context.Context, department string) ([]User, error) {
	departments := append([]string{}, hrDepartments...)
	if d := normalizeDepartment(department); d != "" {
		departments = append(departments, d)
	}

	var users []User
	err := r.db.WithContext(ctx).
		Where("role = ?", RoleAdmin).
		Where("LOWER(TRIM(department)) IN ?", departments).
		Order("created_at ASC, id ASC").
		Find(&users).Error
	return users, err
}

func (r *repository) UpdateBalance(ctx context.Context, id string, balance LeaveBalance) error {
	res := r.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"balance_annual":       balance.Annual,
			"balance_medical":      balance.Medical,
			"balance_short_leave":  balance.ShortLeave,
			"balance_leaves_taken": balance.LeavesTaken,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) UpdateAvatar(ctx context.Context, id, path string) error {
	res := r.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Update("avatar_path", path)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func normalizeDepartment(department string) string {
	return strings.ToLower(strings.TrimSpace(department))
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "unique constraint failed")
}
