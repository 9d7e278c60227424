package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// LeaveBalance is stored inline on the users row with a balance_ prefix.
type LeaveBalance struct {
	Annual      decimal.Decimal `gorm:"column:annual;type:numeric(8,2);not null"`
	Medical     decimal.Decimal `gorm:"column:medical;type:numeric(8,2);not null"`
	ShortLeave  decimal.Decimal `gorm:"column:short_leave;type:numeric(8,2);not null"`
	LeavesTaken decimal.Decimal `gorm:"column:leaves_taken;type:numeric(8,2);not null"`
}

func NewLeaveBalance(annual, medical, shortLeave float64) LeaveBalance {
	return LeaveBalance{
		Annual:      decimal.NewFromFloat(annual),
		Medical:     decimal.NewFromFloat(medical),
		ShortLeave:  decimal.NewFromFloat(shortLeave),
		LeavesTaken: decimal.Zero,
	}
}

type User struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name       string         `gorm:"column:name;type:varchar(255);not null"`
	Email      string         `gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	Password   string         `gorm:"column:password;type:text;not null"`
	Role       string         `gorm:"column:role;type:varchar(20);not null;default:employee;index:idx_users_role_department"`
	Department string         `gorm:"column:department;type:varchar(100);index:idx_users_role_department"`
	AvatarPath *string        `gorm:"column:avatar_path;type:text"`
	IsActive   bool           `gorm:"column:is_active;not null"`
	Balance    LeaveBalance   `gorm:"embedded;embeddedPrefix:balance_"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
