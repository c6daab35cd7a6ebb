package main

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/questhunt/quest-backend/internal/app"
	"github.com/questhunt/quest-backend/internal/config"
	"github.com/questhunt/quest-backend/internal/controllers"
	"github.com/questhunt/quest-backend/internal/middleware"
	"github.com/questhunt/quest-backend/internal/repositories"
	"github.com/questhunt/quest-backend/internal/routes"
	"github.com/questhunt/quest-backend/internal/services"
	"github.com/questhunt/quest-backend/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	if err := app.RunMigrations(cfg.DBUrl); err != nil {
		utils.Logger.Fatal("Failed to run migrations:", err)
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize application:", err)
	}
	defer application.Close()

	//----------------------------------------------------------------------
	// Repositories
	//----------------------------------------------------------------------
	otpRepo := repositories.NewOtpChallengeRepository(application.DB)
	userRepo := repositories.NewUserRepository(application.DB)
	sessionRepo := repositories.NewSessionRepository(application.DB)
	qrTokenRepo := repositories.NewQrTokenRepository(application.DB)
	qrLogRepo := repositories.NewQrAccessLogRepository(application.DB)
	submissionRepo := repositories.NewSubmissionRepository(application.DB)
	rateLimitRepo := repositories.NewRateLimitRepository(application.DB)

	//----------------------------------------------------------------------
	// Services
	//----------------------------------------------------------------------
	var smsSender services.SMSSender
	if cfg.SMSDryRun {
		smsSender = services.NewDryRunSender()
	} else {
		smsSender = services.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromPhone)
	}

	rateLimiterService := services.NewRateLimiterService(rateLimitRepo, cfg)
	sessionService := services.NewSessionService(sessionRepo, cfg)
	otpService := services.NewOTPService(otpRepo, userRepo, sessionService, rateLimiterService, smsSender, cfg)
	qrAccessService := services.NewQRAccessService(qrTokenRepo, qrLogRepo, cfg)
	captchaService := services.NewCaptchaService(cfg)
	submissionService := services.NewSubmissionService(submissionRepo, captchaService)
	cleanupService := services.NewCleanupService(otpRepo, sessionRepo, rateLimitRepo)

	//----------------------------------------------------------------------
	// Controllers
	//----------------------------------------------------------------------
	authController := controllers.NewAuthController(otpService, sessionService)
	minigameController := controllers.NewMinigameController(qrAccessService)
	captchaController := controllers.NewCaptchaController(captchaService)
	submissionController := controllers.NewSubmissionController(submissionService)
	healthController := controllers.NewHealthController(application)

	//----------------------------------------------------------------------
	// Router & Endpoints
	//----------------------------------------------------------------------
	router := mux.NewRouter()

	// Health
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods("GET")

	// OTP auth (anonymous)
	router.HandleFunc(routes.AuthOtpSend, authController.SendOtp).Methods("POST")
	router.HandleFunc(routes.AuthOtpVerify, authController.VerifyOtp).Methods("POST")
	router.HandleFunc(routes.AuthRegister, authController.Register).Methods("POST")

	// Captcha challenge (anonymous)
	router.HandleFunc(routes.CaptchaChallenge, captchaController.Challenge).Methods("GET")

	// QR access: user is optional but captured into the audit log when present
	optionalAuth := router.PathPrefix(routes.MinigameAccess).Subrouter()
	optionalAuth.Use(middleware.OptionalAuthMiddleware(sessionService))
	optionalAuth.HandleFunc("", minigameController.Access).Methods("GET")

	// Protected endpoints require a valid session
	protected := router.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware(sessionService))
	protected.HandleFunc(routes.AuthLogout, authController.Logout).Methods("POST")
	protected.HandleFunc(routes.AnswerSubmit, submissionController.Submit).Methods("POST")

	// Admin endpoints gated on a static key
	admin := router.NewRoute().Subrouter()
	admin.Use(middleware.AdminKeyMiddleware(cfg.AdminAPIKey))
	admin.HandleFunc(routes.MinigameTokensGenerate, minigameController.GenerateTokens).Methods("POST")
	admin.HandleFunc(routes.AnswerReview, submissionController.Review).Methods("POST")

	//----------------------------------------------------------------------
	// Setup daily cleanup via cron
	//----------------------------------------------------------------------
	c := cron.New()

	_, schErr := c.AddFunc("0 3 * * *", func() {
		if e := cleanupService.CleanupDaily(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled cleanup failed")
		}
	})
	if schErr != nil {
		utils.Logger.WithError(schErr).Fatal("Failed to schedule cleanup job")
	}

	c.Start()

	co := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AppUrl},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Admin-Key"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("Failed to start server:", err)
	}
}
