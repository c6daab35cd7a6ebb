package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/questhunt/quest-backend/internal/dtos"
	"github.com/questhunt/quest-backend/internal/services"
	"github.com/questhunt/quest-backend/internal/utils"
)

type AuthController struct {
	otpService services.OTPService
	sessions   services.SessionService
}

func NewAuthController(otpService services.OTPService, sessions services.SessionService) *AuthController {
	return &AuthController{otpService: otpService, sessions: sessions}
}

var authValidate = validator.New()

func (c *AuthController) SendOtp(w http.ResponseWriter, r *http.Request) {
	var req dtos.SendOtpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err)
		return
	}
	if err := authValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid phone format", nil, err)
		return
	}

	meta := utils.GetRequesterMeta(r)

	sessionID, err := c.otpService.Send(r.Context(), req.Phone, meta.IP)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidPhoneFormat):
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPhoneFormat, "Phone number is not a valid mobile number", nil)
		case errors.Is(err, utils.ErrRateLimitExceeded):
			utils.RespondErrorWithCode(w, http.StatusTooManyRequests, utils.ErrCodeRateLimitExceeded, "Too many requests. Please try again later.", nil)
		case errors.Is(err, utils.ErrDeliveryFailed):
			utils.RespondErrorWithCode(w, http.StatusBadGateway, utils.ErrCodeDeliveryFailed, "Could not deliver the verification code", nil, err)
		default:
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to send verification code", nil, err)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.SendOtpResponse{SessionID: sessionID.String()})
}

func (c *AuthController) VerifyOtp(w http.ResponseWriter, r *http.Request) {
	var req dtos.VerifyOtpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err)
		return
	}
	if err := authValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid code format", nil, err)
		return
	}

	result, err := c.otpService.Verify(r.Context(), req.Phone, req.Code)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidOrExpiredCode) {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidOrExpiredCode, "The code is wrong or has expired", nil)
			return
		}
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to verify code", nil, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.VerifyOtpResponse{
		Matched:     result.Matched,
		IsNewUser:   result.IsNewUser,
		User:        result.User,
		AccessToken: result.AccessToken,
	})
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err)
		return
	}
	if err := authValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid registration payload", nil, err)
		return
	}

	user, token, err := c.otpService.Register(r.Context(), req.Phone, req.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidPhoneFormat):
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPhoneFormat, "Phone number is not a valid mobile number", nil)
		case errors.Is(err, utils.ErrPhoneNotVerified):
			utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodePhoneNotVerified, "Phone must be verified before registration", nil)
		case errors.Is(err, utils.ErrUserExists):
			utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeUserExists, "An account already exists for this phone", nil)
		default:
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to register", nil, err)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dtos.RegisterResponse{User: user, AccessToken: token})
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	token := getSessionTokenFromContext(r)
	if token == nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No active session", nil)
		return
	}
	if err := c.sessions.Revoke(r.Context(), *token); err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to log out", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.LogoutResponse{Message: "Logged out"})
}
