package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	ErrInvalidPhoneFormat   = errors.New("invalid_phone_format")
	ErrInvalidOrExpiredCode = errors.New("invalid_or_expired_code")
	ErrDeliveryFailed       = errors.New("delivery_failed")
	ErrPhoneNotVerified     = errors.New("phone_not_verified")
	ErrUserExists           = errors.New("user_exists")
	ErrCaptchaMismatch      = errors.New("captcha_mismatch")
	ErrDuplicateSubmission  = errors.New("duplicate_submission")
	ErrSubmissionReviewed   = errors.New("submission_already_reviewed")
	ErrInvalidSession       = errors.New("invalid_session")

	// For rate limiting
	ErrRateLimitExceeded = errors.New("rate_limit_exceeded")

	// For external service failures (e.g., Twilio)
	ErrExternalServiceFailure = errors.New("external_service_failure")

	ErrNoRowsUpdated = errors.New("no_rows_updated")
)

// AppError for structured error handling from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
	} else {
		// Fallback for unexpected error types
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
