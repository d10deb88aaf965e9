package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"stayfinder/api/internal/captcha"
	"stayfinder/api/internal/config"
	"stayfinder/api/internal/mailer"
	"stayfinder/api/internal/middleware"
	"stayfinder/api/internal/repository"
	"stayfinder/api/internal/service"
)

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	auth     *service.AuthService
	sessions *service.SessionManager
	db       *pgxpool.Pool
	cache    *redis.Client
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, cfg *config.AppConfig) HandlerSet {
	accountRepo := repository.NewAccountRepository(db)
	tokenRepo := repository.NewRememberTokenRepository(db)
	sessionStore := repository.NewSessionStore(cache)

	mail := mailer.NewSMTPSender(cfg.SMTP, log)
	captchaVerifier := captcha.NewHTTPVerifier(cfg.Captcha, log)

	verification := service.NewVerificationService(
		accountRepo, mail, cfg.Security.CodeTTL, cfg.Security.ResendCooldown, log)
	sessionManager := service.NewSessionManager(
		sessionStore, tokenRepo, accountRepo, cfg.Security.SessionTTL, cfg.Security.RememberTTL, log)
	lockout := service.LockoutPolicy{
		Threshold: cfg.Security.LockoutThreshold,
		Window:    cfg.Security.LockoutWindow,
	}
	auth := service.NewAuthService(accountRepo, sessionManager, verification, captchaVerifier, lockout, log)

	return HandlerSet{
		log:      log,
		cfg:      cfg,
		auth:     auth,
		sessions: sessionManager,
		db:       db,
		cache:    cache,
	}
}

// SessionManager exposes the manager for the janitor job wiring.
func (h HandlerSet) SessionManager() *service.SessionManager {
	return h.sessions
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.RegisterAccount)
		auth.POST("/login", h.Login)
		auth.POST("/verify", h.ConfirmVerification)
		auth.POST("/resend", h.ResendVerification)

		protected := v1.Group("/auth")
		protected.Use(middleware.Session(h.cfg, h.sessions))
		protected.GET("/me", h.Me)
		protected.GET("/session", h.SessionState)

		mutating := v1.Group("/auth")
		mutating.Use(
			middleware.Session(h.cfg, h.sessions),
			middleware.CSRFGuard(),
		)
		mutating.POST("/logout", h.Logout)
	}
}
