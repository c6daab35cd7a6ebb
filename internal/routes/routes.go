package routes

const (
	// Health
	Health = "/health"

	// OTP auth
	AuthOtpSend   = "/auth/v1/otp/send"
	AuthOtpVerify = "/auth/v1/otp/verify"
	AuthRegister  = "/auth/v1/register"
	AuthLogout    = "/auth/v1/logout"

	// QR-gated minigame access
	MinigameAccess         = "/minigames/v1/access"
	MinigameTokensGenerate = "/minigames/v1/tokens/generate"

	// Captcha
	CaptchaChallenge = "/captcha/v1/challenge"

	// Answer submissions
	AnswerSubmit = "/answers/v1/submit"
	AnswerReview = "/answers/v1/review"
)
