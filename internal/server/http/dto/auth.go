package dto

// RegisterRequest describes sign-up payload.
type RegisterRequest struct {
	Login    string `json:"login" binding:"required,notblank"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	Role     string `json:"role" binding:"omitempty,oneof=customer celebrity"`
}

// LoginRequest describes login/password payload.
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the issued token and the account it belongs to.
type AuthResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
	Login  string `json:"login"`
	Role   string `json:"role"`
}
