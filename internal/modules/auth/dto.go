package auth

import "hostelcore/internal/domain"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type LoginResult struct {
	Guest       *domain.Guest `json:"user"`
	AccessToken string        `json:"token"`
	// MustResetPassword is set for provisioned guests still on their initial credential.
	MustResetPassword bool `json:"must_reset_password"`
}
