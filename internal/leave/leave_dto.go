package leave

import (
	"time"

	"go-leave/internal/notification"
)

type SubmitLeaveRequest struct {
	LeaveType   string   `json:"leave_type" form:"leave_type" binding:"required,oneof=full-day half-day short-leave"`
	Dates       []string `json:"dates" form:"dates" binding:"required,min=1,dive,datetime=2006-01-02"`
	Reason      string   `json:"reason" form:"reason" binding:"max=1000"`
	HalfDayType string   `json:"half_day_type" form:"half_day_type" binding:"omitempty,oneof=first-half second-half"`
}

type TransitionLeaveRequest struct {
	Status     string  `json:"status" binding:"required"`
	ApproverID *string `json:"approver_id" binding:"omitempty,uuid"`
	Comment    string  `json:"comment" binding:"max=1000"`
}

// ProofUpload is an unencrypted proof document as received.
type ProofUpload struct {
	Data     []byte
	MimeType string
}

// TransitionInput carries a status change into the service.
type TransitionInput struct {
	Status     string
	ApproverID *string
	ActorID    string
	Comment    string
}

type ProofDocument struct {
	Data     []byte
	MimeType string
}

// ListQuery pages a leave listing. Page is 1-based.
type ListQuery struct {
	Status   string
	Page     int
	PageSize int
}

type CommentResponse struct {
	AuthorID  string `json:"author_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

type LeaveResponse struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	UserName    string            `json:"user_name,omitempty"`
	Department  string            `json:"department,omitempty"`
	LeaveType   string            `json:"leave_type"`
	Dates       []string          `json:"dates"`
	Reason      string            `json:"reason"`
	HalfDayType *string           `json:"half_day_type,omitempty"`
	HasProof    bool              `json:"has_proof"`
	Status      string            `json:"status"`
	ApproverID  *string           `json:"approver_id,omitempty"`
	Approver    *string           `json:"approver_name,omitempty"`
	Comments    []CommentResponse `json:"comments"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:          l.ID.String(),
		UserID:      l.UserID.String(),
		LeaveType:   l.LeaveType,
		Dates:       append([]string{}, l.Dates...),
		Reason:      l.Reason,
		HalfDayType: l.HalfDayType,
		HasProof:    l.HasProof(),
		Status:      l.Status,
		Comments:    make([]CommentResponse, len(l.Comments)),
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   l.UpdatedAt.Format(time.RFC3339),
	}
	if l.User != nil {
		resp.UserName = l.User.Name
		resp.Department = l.User.Department
	}
	if l.ApproverID != nil {
		v := l.ApproverID.String()
		resp.ApproverID = &v
	}
	if l.Approver != nil {
		v := l.Approver.Name
		resp.Approver = &v
	}
	for i, c := range l.Comments {
		resp.Comments[i] = CommentResponse{
			AuthorID:  c.AuthorID,
			Text:      c.Text,
			CreatedAt: c.CreatedAt.Format(time.RFC3339),
		}
	}
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}

// Summary is the view of a leave that notifications are built from.
func Summary(l Leave) notification.LeaveSummary {
	s := notification.LeaveSummary{
		ID:        l.ID,
		LeaveType: l.LeaveType,
		Dates:     append([]string{}, l.Dates...),
		Reason:    l.Reason,
	}
	if l.HalfDayType != nil {
		s.HalfDayType = *l.HalfDayType
	}
	return s
}
