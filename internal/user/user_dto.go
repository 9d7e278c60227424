package user

type CreateUserRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	Department string `json:"department"`
	Role       string `json:"role" binding:"omitempty,oneof=admin employee"`
}

type BalanceResponse struct {
	Annual      float64 `json:"annual"`
	Medical     float64 `json:"medical"`
	ShortLeave  float64 `json:"short_leave"`
	LeavesTaken float64 `json:"leaves_taken"`
}

type UserResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Role       string          `json:"role"`
	Department string          `json:"department"`
	AvatarURL  string          `json:"avatar_url,omitempty"`
	IsActive   bool            `json:"is_active"`
	Balance    BalanceResponse `json:"leave_balance"`
	CreatedAt  string          `json:"created_at"`
}

type UserOption struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
}
