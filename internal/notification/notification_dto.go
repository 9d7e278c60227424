package notification

import (
	"time"

	"github.com/google/uuid"
)

// LeaveSummary is the slice of a leave request that notifications and mails
// talk about.
type LeaveSummary struct {
	ID          uuid.UUID
	LeaveType   string
	Dates       []string
	Reason      string
	HalfDayType string
}

type NotificationResponse struct {
	ID             string  `json:"id"`
	Type           string  `json:"type"`
	Message        string  `json:"message"`
	IsRead         bool    `json:"is_read"`
	SenderID       *string `json:"sender_id,omitempty"`
	LeaveRequestID *string `json:"leave_request_id,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

func mapToResponse(n Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID.String(),
		Type:      n.Type,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.SenderID != nil {
		v := n.SenderID.String()
		resp.SenderID = &v
	}
	if n.LeaveRequestID != nil {
		v := n.LeaveRequestID.String()
		resp.LeaveRequestID = &v
	}
	return resp
}
