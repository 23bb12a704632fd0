package model

import "github.com/google/uuid"

// LoginRequest authenticates by case-folded email.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is returned on successful login. RequirePasswordChange
// tells the client the only reachable screen is the password change one.
type TokenResponse struct {
	AccessToken           string `json:"access_token"`
	SessionID             string `json:"session_id"`
	RequirePasswordChange bool   `json:"require_password_change"`
}

// TokenClaims is the decoded JWT principal attached to the request.
type TokenClaims struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	SessionID string    `json:"session_id"`
}

// ChangePasswordRequest sets the definitive password after first access.
type ChangePasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required"`
}

// ForgotPasswordRequest triggers a reset email.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest redeems a reset token.
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}
