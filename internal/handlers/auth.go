package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stayfinder/api/internal/captcha"
	"stayfinder/api/internal/middleware"
	"stayfinder/api/internal/repository"
	"stayfinder/api/internal/service"
)

type registerRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	CaptchaResponse string `json:"captchaResponse"`
}

func (h HandlerSet) RegisterAccount(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	result, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		CaptchaResponse: req.CaptchaResponse,
		ClientIP:        c.ClientIP(),
	})
	if err != nil {
		h.writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"message":   "account created, check your email for the verification code",
		"accountId": result.AccountID,
		"emailSent": result.EmailSent,
	})
}

type loginRequest struct {
	Identifier      string `json:"identifier" binding:"required"`
	Password        string `json:"password" binding:"required"`
	RememberMe      bool   `json:"rememberMe"`
	CaptchaResponse string `json:"captchaResponse"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Identifier:      req.Identifier,
		Password:        req.Password,
		RememberMe:      req.RememberMe,
		CaptchaResponse: req.CaptchaResponse,
		ClientIP:        c.ClientIP(),
	})
	if err != nil {
		h.writeAuthError(c, err)
		return
	}

	middleware.SetAuthCookies(c, h.cfg, result.Session.ID, result.RememberCookie)

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "logged in",
		"username":  result.Session.Username,
		"csrfToken": result.Session.CSRFToken,
	})
}

type verifyRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

func (h HandlerSet) ConfirmVerification(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	result, err := h.auth.ConfirmVerification(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}

	message := "email verified"
	if result.AlreadyVerified {
		message = "email already verified"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  message,
		"verified": true,
	})
}

type resendRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h HandlerSet) ResendVerification(c *gin.Context) {
	var req resendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	result, err := h.auth.ResendVerification(c.Request.Context(), req.Email)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "verification code sent",
		"emailSent": result.EmailSent,
	})
}

func (h HandlerSet) Logout(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "not authenticated"})
		return
	}

	rememberCookie, _ := c.Cookie(h.cfg.Security.RememberCookie)
	// A remember-me fallback on this request rotated the token; the row
	// to delete is the rotated one, not the request cookie's identifier.
	if rotated, ok := middleware.CurrentRememberCookie(c); ok {
		rememberCookie = rotated
	}
	if err := h.sessions.Logout(c.Request.Context(), session, rememberCookie); err != nil {
		h.writeAuthError(c, err)
		return
	}

	middleware.ClearAuthCookies(c, h.cfg)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged out"})
}

func (h HandlerSet) Me(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"accountId":  session.AccountID,
		"username":   session.Username,
		"email":      session.Email,
		"isVerified": session.IsVerified,
		"role":       session.Role,
	})
}

// SessionState is the login-state query: it confirms the session is live
// and hands the client its current CSRF token.
func (h HandlerSet) SessionState(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"loggedIn":  true,
		"username":  session.Username,
		"csrfToken": session.CSRFToken,
	})
}

// writeAuthError maps the service error taxonomy onto transport results.
// Security-relevant failures keep their generic messages; only validation
// and rate-limit errors carry detail.
func (h HandlerSet) writeAuthError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var lockedErr *service.AccountLockedError
	var unverifiedErr *service.UnverifiedAccountError
	var rateErr *service.RateLimitError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": validationErr.Error()})
	case errors.Is(err, captcha.ErrCaptchaFailed):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "captcha verification failed"})
	case errors.Is(err, repository.ErrDuplicateAccount):
		// Never reveals whether the username or the email collided.
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "an account with those details already exists"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid username or password"})
	case errors.As(err, &lockedErr):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"success":     false,
			"message":     "account temporarily locked",
			"waitSeconds": int(lockedErr.RetryAfter.Seconds()),
		})
	case errors.As(err, &unverifiedErr):
		c.JSON(http.StatusForbidden, gin.H{
			"success":              false,
			"message":              "email not verified",
			"requiresVerification": true,
			"email":                unverifiedErr.Email,
		})
	case errors.Is(err, service.ErrAccountDisabled):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "account disabled"})
	case errors.Is(err, service.ErrAlreadyVerified):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "email already verified"})
	case errors.Is(err, service.ErrMissingCode):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "no verification code pending"})
	case errors.Is(err, service.ErrExpiredCode):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "verification code expired"})
	case errors.Is(err, service.ErrInvalidCode):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "verification code invalid"})
	case errors.As(err, &rateErr):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"success":     false,
			"message":     "please wait before requesting another code",
			"waitSeconds": int(rateErr.Wait.Seconds()) + 1,
		})
	case errors.Is(err, repository.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "account not found"})
	default:
		h.log.Error().Err(err).Msg("auth request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "something went wrong, please try again"})
	}
}
