package dtos

import "github.com/questhunt/quest-backend/internal/models"

// ----------------------
// OTP login
// ----------------------

type SendOtpRequest struct {
	Phone string `json:"phone" validate:"required,len=11,numeric"`
}
type SendOtpResponse struct {
	SessionID string `json:"session_id"`
}

type VerifyOtpRequest struct {
	Phone string `json:"phone" validate:"required,len=11,numeric"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}
type VerifyOtpResponse struct {
	Matched     bool         `json:"matched"`
	IsNewUser   bool         `json:"is_new_user"`
	User        *models.User `json:"user,omitempty"`
	AccessToken string       `json:"access_token,omitempty"`
}

// ----------------------
// Registration / logout
// ----------------------

type RegisterRequest struct {
	Phone       string `json:"phone" validate:"required,len=11,numeric"`
	DisplayName string `json:"display_name" validate:"required,min=2,max=64"`
}
type RegisterResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}
