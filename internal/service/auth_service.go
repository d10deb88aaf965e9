package service

import (
	"context"
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"stayfinder/api/internal/captcha"
	"stayfinder/api/internal/ids"
	"stayfinder/api/internal/models"
	"stayfinder/api/internal/repository"
	"stayfinder/api/internal/security"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_ ]{3,30}$`)

// AuthService orchestrates registration and login: input validation,
// captcha, lockout gating, password verification, session establishment.
type AuthService struct {
	accounts     AccountStore
	sessions     *SessionManager
	verification *VerificationService
	captcha      captcha.Verifier
	lockout      LockoutPolicy
	log          zerolog.Logger
	now          func() time.Time
}

func NewAuthService(
	accounts AccountStore,
	sessions *SessionManager,
	verification *VerificationService,
	captchaVerifier captcha.Verifier,
	lockout LockoutPolicy,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		accounts:     accounts,
		sessions:     sessions,
		verification: verification,
		captcha:      captchaVerifier,
		lockout:      lockout,
		log:          log,
		now:          time.Now,
	}
}

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	CaptchaResponse string
	ClientIP        string
}

type RegisterResult struct {
	AccountID string
	EmailSent bool
}

func validateRegisterInput(input RegisterInput) error {
	if !usernamePattern.MatchString(input.Username) {
		return &ValidationError{Field: "username", Reason: "must be 3-30 characters of letters, digits, underscore or space"}
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return &ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	if len(input.Password) < 6 {
		return &ValidationError{Field: "password", Reason: "must be at least 6 characters"}
	}
	if input.Password != input.ConfirmPassword {
		return &ValidationError{Field: "confirmPassword", Reason: "does not match password"}
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (RegisterResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if err := validateRegisterInput(input); err != nil {
		return RegisterResult{}, err
	}

	if err := s.captcha.Verify(ctx, input.CaptchaResponse, input.ClientIP); err != nil {
		return RegisterResult{}, err
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return RegisterResult{}, err
	}

	code, expiresAt := s.verification.NewCode()
	account := models.Account{
		ID:                    ids.New(),
		Username:              input.Username,
		Email:                 input.Email,
		PasswordHash:          passwordHash,
		Role:                  models.AccountRoleUser,
		IsVerified:            false,
		VerificationCode:      &code,
		VerificationExpiresAt: &expiresAt,
		IsActive:              true,
	}

	// Uniqueness of username and email rides on the database constraints;
	// the duplicate error is generic either way.
	if err := s.accounts.Create(ctx, account); err != nil {
		return RegisterResult{}, err
	}

	emailSent := s.verification.Deliver(account.Email, code)

	s.log.Info().Str("account_id", account.ID).Bool("email_sent", emailSent).Msg("account registered")
	return RegisterResult{AccountID: account.ID, EmailSent: emailSent}, nil
}

type LoginInput struct {
	Identifier      string // username or email
	Password        string
	RememberMe      bool
	CaptchaResponse string
	ClientIP        string
}

type LoginResult struct {
	Session        models.Session
	RememberCookie string
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	if err := s.captcha.Verify(ctx, input.CaptchaResponse, input.ClientIP); err != nil {
		return LoginResult{}, err
	}

	identifier := strings.TrimSpace(input.Identifier)
	var account models.Account
	var err error
	if strings.Contains(identifier, "@") {
		account, err = s.accounts.FindByEmail(ctx, strings.ToLower(identifier))
	} else {
		account, err = s.accounts.FindByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			// Burn comparable hashing work so a missing account is not
			// distinguishable from a wrong password by timing.
			security.VerifyDummyPassword(input.Password)
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if s.lockout.IsLocked(account, s.now()) {
		// No password evaluation while locked; attempts are not counted.
		return LoginResult{}, &AccountLockedError{RetryAfter: s.lockout.Remaining(account, s.now())}
	}

	ok, err := security.VerifyPassword(input.Password, account.PasswordHash)
	if err != nil {
		return LoginResult{}, err
	}
	if !ok {
		attempts, lockedUntil, recErr := s.accounts.RecordLoginFailure(ctx, account.ID, s.lockout.Threshold, s.lockout.Window)
		if recErr != nil {
			s.log.Error().Err(recErr).Str("account_id", account.ID).Msg("record login failure failed")
		} else if lockedUntil != nil && lockedUntil.After(s.now()) {
			s.log.Warn().
				Str("account_id", account.ID).
				Int("attempts", attempts).
				Time("locked_until", *lockedUntil).
				Msg("account locked after repeated failures")
		}
		return LoginResult{}, ErrInvalidCredentials
	}

	if !account.IsActive {
		return LoginResult{}, ErrAccountDisabled
	}

	// Checked only after the password verified, so the unverified-state
	// response cannot be used to probe password correctness.
	if !account.IsVerified {
		return LoginResult{}, &UnverifiedAccountError{Email: account.Email}
	}

	if err := s.accounts.ResetLoginFailures(ctx, account.ID); err != nil {
		s.log.Error().Err(err).Str("account_id", account.ID).Msg("reset login failures failed")
	}

	session, rememberCookie, err := s.sessions.Establish(ctx, account, input.RememberMe)
	if err != nil {
		return LoginResult{}, err
	}

	s.log.Info().Str("account_id", account.ID).Bool("remember", input.RememberMe).Msg("login succeeded")
	return LoginResult{Session: session, RememberCookie: rememberCookie}, nil
}

// ConfirmVerification and ResendVerification are thin façades over the
// verification service.
func (s *AuthService) ConfirmVerification(ctx context.Context, email string, code string) (ConfirmResult, error) {
	return s.verification.Confirm(ctx, strings.TrimSpace(strings.ToLower(email)), code)
}

func (s *AuthService) ResendVerification(ctx context.Context, email string) (ResendResult, error) {
	return s.verification.Resend(ctx, strings.TrimSpace(strings.ToLower(email)))
}
