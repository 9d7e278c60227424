package leave

import (
	"strings"
	"time"

	"go-leave/internal/user"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TypeFullDay    = "full-day"
	TypeHalfDay    = "half-day"
	TypeShortLeave = "short-leave"

	HalfDayFirst  = "first-half"
	HalfDaySecond = "second-half"

	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"

	// ReasonSick routes a full-day deduction to the medical counter.
	ReasonSick = "Sick"
)

type Comment struct {
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Leave struct {
	ID            uuid.UUID                    `gorm:"column:id;type:uuid;primaryKey"`
	UserID        uuid.UUID                    `gorm:"column:user_id;type:uuid;not null;index:idx_leave_requests_user"`
	LeaveType     string                       `gorm:"column:leave_type;type:varchar(20);not null"`
	Dates         datatypes.JSONSlice[string]  `gorm:"column:dates;not null"`
	Reason        string                       `gorm:"column:reason;type:text"`
	HalfDayType   *string                      `gorm:"column:half_day_type;type:varchar(20)"`
	Proof         []byte                       `gorm:"column:proof"`
	ProofMimeType *string                      `gorm:"column:proof_mime_type;type:varchar(100)"`
	Status        string                       `gorm:"column:status;type:varchar(20);not null;default:Pending;index:idx_leave_requests_status"`
	ApproverID    *uuid.UUID                   `gorm:"column:approver_id;type:uuid"`
	Comments      datatypes.JSONSlice[Comment] `gorm:"column:comments"`
	CreatedAt     time.Time                    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                    `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt     gorm.DeletedAt               `gorm:"column:deleted_at;index"`

	User     *user.User `gorm:"foreignKey:UserID;references:ID"`
	Approver *user.User `gorm:"foreignKey:ApproverID;references:ID"`
}

func (Leave) TableName() string {
	return "leave_requests"
}

func (l *Leave) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (l *Leave) IsPending() bool {
	return strings.EqualFold(l.Status, StatusPending)
}

func (l *Leave) HasProof() bool {
	return len(l.Proof) > 0
}
