package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TypeSubmitted = "submitted"
	TypeApproved  = "approved"
	TypeRejected  = "rejected"
	TypeGeneral   = "general"
	TypeReminder  = "reminder"
)

// Notification rows are immutable except for IsRead.
type Notification struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	DedupKey       string     `gorm:"column:dedup_key;type:varchar(255);not null;uniqueIndex"`
	RecipientID    uuid.UUID  `gorm:"column:recipient_id;type:uuid;not null;index:idx_notifications_recipient_read"`
	SenderID       *uuid.UUID `gorm:"column:sender_id;type:uuid"`
	Type           string     `gorm:"column:type;type:varchar(20);not null"`
	Message        string     `gorm:"column:message;type:text;not null"`
	IsRead         bool       `gorm:"column:is_read;not null;default:false;index:idx_notifications_recipient_read"`
	LeaveRequestID *uuid.UUID `gorm:"column:leave_request_id;type:uuid;index"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
