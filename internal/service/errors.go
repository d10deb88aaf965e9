package service

import (
	"errors"
	"fmt"
	"time"
)

// Security-relevant failures carry deliberately generic messages; the
// handler layer must never embellish them with the underlying cause.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrMissingCode        = errors.New("no verification code pending")
	ErrExpiredCode        = errors.New("verification code expired")
	ErrInvalidCode        = errors.New("verification code invalid")
	ErrRememberInvalid    = errors.New("remember token invalid")
	ErrAlreadyVerified    = errors.New("account already verified")
)

// ValidationError reports malformed input; safe to surface per-field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AccountLockedError carries the remaining lock duration.
type AccountLockedError struct {
	RetryAfter time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked, retry in %s", e.RetryAfter.Round(time.Second))
}

// UnverifiedAccountError is returned only after password correctness is
// confirmed; it carries the email for a client-side resend affordance.
type UnverifiedAccountError struct {
	Email string
}

func (e *UnverifiedAccountError) Error() string {
	return "account not verified"
}

// RateLimitError reports the remaining resend cooldown.
type RateLimitError struct {
	Wait time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.Wait.Round(time.Second))
}
