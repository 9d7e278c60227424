package domain

// EnforceRequest asks whether a role may perform action on resource.
type EnforceRequest struct {
	Role     string `json:"role" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}

// Resources and actions guarded by the HTTP layer.
const (
	ResourceLeave        = "leave"
	ResourceNotification = "notification"
	ResourceUser         = "user"

	ActionCreate   = "create"
	ActionRead     = "read"
	ActionReadAll  = "read_all"
	ActionUpdate   = "update"
	ActionApprove  = "approve"
	ActionDelete   = "delete"
	ActionExport   = "export"
	ActionReadSelf = "read_self"
	ActionEditSelf = "update_self"
)
