package config

import (
	"os"
	"strconv"
	"time"

	"github.com/questhunt/quest-backend/internal/utils"
)

// Config holds all application configuration.
type Config struct {
	AppName string
	AppPort string
	AppUrl  string
	DBUrl   string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromPhone  string
	SMSDryRun        bool

	JWTSecret   []byte
	AdminAPIKey string

	OtpCodeLength      int
	OtpExpiry          time.Duration
	RegistrationWindow time.Duration
	SessionExpiry      time.Duration

	CaptchaWidth  int
	CaptchaHeight int
	CaptchaLength int
	CaptchaTTL    time.Duration

	// Default access cap for newly generated QR tokens. 1 = single-use.
	QrDefaultMaxAccess int

	SMSLimitPerIPPerHour    int
	SMSLimitPerPhonePerHour int
	GlobalSMSLimitPerHour   int
	RateLimitWindow         time.Duration
}

const (
	AppName = "quest-backend"

	OtpCodeLength             = 6
	DefaultOtpExpiry          = 10 * time.Minute
	DefaultRegistrationWindow = 15 * time.Minute
	DefaultSessionExpiry      = 7 * 24 * time.Hour

	DefaultCaptchaWidth  = 150
	DefaultCaptchaHeight = 50
	DefaultCaptchaLength = 5
	DefaultCaptchaTTL    = 5 * time.Minute

	DefaultQrMaxAccess = 1

	DefaultSMSLimitPerIPPerHour    = 20
	DefaultSMSLimitPerPhonePerHour = 5
	DefaultGlobalSMSLimitPerHour   = 1000
	DefaultRateLimitWindow         = 1 * time.Hour
)

// LoadConfig reads environment variables and returns a *Config.
// Missing required values are fatal.
func LoadConfig() *Config {
	utils.Logger.Info("Loading config for app: ", AppName)

	appPort := requireEnv("APP_PORT")
	appUrl := requireEnv("APP_URL")
	dbUrl := requireEnv("DATABASE_URL")
	jwtSecret := requireEnv("JWT_SECRET")
	adminKey := requireEnv("ADMIN_API_KEY")

	smsDryRun := os.Getenv("SMS_DRY_RUN") == "true"

	var sid, token, from string
	if !smsDryRun {
		sid = requireEnv("TWILIO_ACCOUNT_SID")
		token = requireEnv("TWILIO_AUTH_TOKEN")
		from = requireEnv("TWILIO_FROM_PHONE")
	} else {
		utils.Logger.Warn("SMS_DRY_RUN enabled; OTP codes will be logged, not sent")
	}

	return &Config{
		AppName: AppName,
		AppPort: appPort,
		AppUrl:  appUrl,
		DBUrl:   dbUrl,

		TwilioAccountSID: sid,
		TwilioAuthToken:  token,
		TwilioFromPhone:  from,
		SMSDryRun:        smsDryRun,

		JWTSecret:   []byte(jwtSecret),
		AdminAPIKey: adminKey,

		OtpCodeLength:      OtpCodeLength,
		OtpExpiry:          envDuration("OTP_EXPIRY", DefaultOtpExpiry),
		RegistrationWindow: DefaultRegistrationWindow,
		SessionExpiry:      envDuration("SESSION_EXPIRY", DefaultSessionExpiry),

		CaptchaWidth:  envInt("CAPTCHA_WIDTH", DefaultCaptchaWidth),
		CaptchaHeight: envInt("CAPTCHA_HEIGHT", DefaultCaptchaHeight),
		CaptchaLength: envInt("CAPTCHA_LENGTH", DefaultCaptchaLength),
		CaptchaTTL:    DefaultCaptchaTTL,

		QrDefaultMaxAccess: envInt("QR_DEFAULT_MAX_ACCESS", DefaultQrMaxAccess),

		SMSLimitPerIPPerHour:    DefaultSMSLimitPerIPPerHour,
		SMSLimitPerPhonePerHour: DefaultSMSLimitPerPhonePerHour,
		GlobalSMSLimitPerHour:   DefaultGlobalSMSLimitPerHour,
		RateLimitWindow:         DefaultRateLimitWindow,
	}
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		utils.Logger.Fatalf("%s env var is missing", key)
	}
	return v
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		utils.Logger.Fatalf("%s must be an integer, got %q", key, v)
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		utils.Logger.Fatalf("%s must be a duration, got %q", key, v)
	}
	return d
}
