package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"stayfinder/api/internal/mailer"
	"stayfinder/api/internal/models"
	"stayfinder/api/internal/repository"
	"stayfinder/api/internal/security"
)

// VerificationService owns the unverified → verified transition: it
// issues, rate-limits and confirms email verification codes.
type VerificationService struct {
	accounts       AccountStore
	mail           mailer.Sender
	codeTTL        time.Duration
	resendCooldown time.Duration
	log            zerolog.Logger
	now            func() time.Time
}

func NewVerificationService(
	accounts AccountStore,
	mail mailer.Sender,
	codeTTL time.Duration,
	resendCooldown time.Duration,
	log zerolog.Logger,
) *VerificationService {
	return &VerificationService{
		accounts:       accounts,
		mail:           mail,
		codeTTL:        codeTTL,
		resendCooldown: resendCooldown,
		log:            log,
		now:            time.Now,
	}
}

// NewCode draws a fresh 6-digit code and its expiry. When the secure
// random source is unavailable it falls back to math/rand and logs that
// it did.
func (s *VerificationService) NewCode() (string, time.Time) {
	code, err := security.GenerateVerificationCode()
	if err != nil {
		s.log.Warn().Err(err).Msg("secure random unavailable, falling back for verification code")
		code = security.GenerateVerificationCodeInsecure()
	}
	return code, s.now().Add(s.codeTTL)
}

// Deliver sends the code email best-effort and reports whether it went
// out. A failed send is logged, never propagated.
func (s *VerificationService) Deliver(email string, code string) bool {
	subject, body := mailer.VerificationEmail(code, int(s.codeTTL.Minutes()))
	if err := s.mail.Send(email, subject, body); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("verification email delivery failed")
		return false
	}
	return true
}

// Issue overwrites any pending code on the account, invalidating it, and
// delivers the new one.
func (s *VerificationService) Issue(ctx context.Context, account models.Account) (bool, error) {
	code, expiresAt := s.NewCode()
	if err := s.accounts.SetVerificationCode(ctx, account.ID, code, expiresAt); err != nil {
		return false, err
	}
	return s.Deliver(account.Email, code), nil
}

type ConfirmResult struct {
	Verified        bool
	AlreadyVerified bool
}

// Confirm validates a presented code. Codes are fixed-width zero-padded
// strings and are compared exactly as strings. The final mutation is a
// compare-and-set conditioned on the code still being current.
func (s *VerificationService) Confirm(ctx context.Context, email string, code string) (ConfirmResult, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return ConfirmResult{}, err
	}

	if account.IsVerified {
		// Idempotent success, not a failure.
		return ConfirmResult{AlreadyVerified: true}, nil
	}
	if account.VerificationCode == nil {
		return ConfirmResult{}, ErrMissingCode
	}
	if account.VerificationExpiresAt != nil && s.now().After(*account.VerificationExpiresAt) {
		return ConfirmResult{}, ErrExpiredCode
	}
	if *account.VerificationCode != code {
		return ConfirmResult{}, ErrInvalidCode
	}

	if err := s.accounts.ConfirmVerification(ctx, email, code); err != nil {
		if errors.Is(err, repository.ErrVerificationConflict) {
			// The code changed under us; the presented one is stale.
			return ConfirmResult{}, ErrInvalidCode
		}
		return ConfirmResult{}, err
	}

	s.log.Info().Str("account_id", account.ID).Msg("account verified")
	return ConfirmResult{Verified: true}, nil
}

type ResendResult struct {
	EmailSent bool
}

// Resend re-issues a code unless the per-issuance cooldown is still
// running. The issuance time is derived from the stored expiry.
func (s *VerificationService) Resend(ctx context.Context, email string) (ResendResult, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return ResendResult{}, err
	}
	if account.IsVerified {
		return ResendResult{}, ErrAlreadyVerified
	}

	if account.VerificationExpiresAt != nil {
		issuedAt := account.VerificationExpiresAt.Add(-s.codeTTL)
		elapsed := s.now().Sub(issuedAt)
		if elapsed < s.resendCooldown {
			return ResendResult{}, &RateLimitError{Wait: s.resendCooldown - elapsed}
		}
	}

	sent, err := s.Issue(ctx, account)
	if err != nil {
		return ResendResult{}, err
	}
	return ResendResult{EmailSent: sent}, nil
}
