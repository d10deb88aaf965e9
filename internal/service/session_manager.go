package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"stayfinder/api/internal/ids"
	"stayfinder/api/internal/models"
	"stayfinder/api/internal/repository"
	"stayfinder/api/internal/security"
)

// SessionManager owns the logical session record and the remember-me
// persistent token: issue, validate, rotate, expire.
type SessionManager struct {
	store       SessionStore
	tokens      RememberTokenStore
	accounts    AccountStore
	sessionTTL  time.Duration
	rememberTTL time.Duration
	log         zerolog.Logger
	now         func() time.Time
}

func NewSessionManager(
	store SessionStore,
	tokens RememberTokenStore,
	accounts AccountStore,
	sessionTTL time.Duration,
	rememberTTL time.Duration,
	log zerolog.Logger,
) *SessionManager {
	return &SessionManager{
		store:       store,
		tokens:      tokens,
		accounts:    accounts,
		sessionTTL:  sessionTTL,
		rememberTTL: rememberTTL,
		log:         log,
		now:         time.Now,
	}
}

// Establish creates the session record with a fresh CSRF token and, when
// rememberMe is set, issues a remember token. The returned cookie value
// is "identifier:secret"; the secret is never stored in plaintext.
func (m *SessionManager) Establish(ctx context.Context, account models.Account, rememberMe bool) (models.Session, string, error) {
	csrfToken, err := security.NewCSRFToken()
	if err != nil {
		return models.Session{}, "", err
	}

	session := models.Session{
		ID:            ids.New(),
		AccountID:     account.ID,
		Username:      account.Username,
		Email:         account.Email,
		IsVerified:    account.IsVerified,
		Role:          string(account.Role),
		CSRFToken:     csrfToken,
		EstablishedAt: m.now(),
	}

	if err := m.store.Save(ctx, session, m.sessionTTL); err != nil {
		return models.Session{}, "", err
	}

	rememberCookie := ""
	if rememberMe {
		identifier, secret, secretHash, err := security.NewRememberToken()
		if err != nil {
			return models.Session{}, "", err
		}
		token := models.RememberToken{
			Identifier: identifier,
			SecretHash: secretHash,
			AccountID:  account.ID,
			ExpiresAt:  m.now().Add(m.rememberTTL),
		}
		if err := m.tokens.Create(ctx, token); err != nil {
			return models.Session{}, "", err
		}
		rememberCookie = security.EncodeRememberCookie(identifier, secret)
	}

	return session, rememberCookie, nil
}

// Get returns the live session for an id, or repository.ErrSessionNotFound.
func (m *SessionManager) Get(ctx context.Context, sessionID string) (models.Session, error) {
	return m.store.Get(ctx, sessionID)
}

// CheckRememberMe validates a presented remember cookie and, on success,
// rotates the token and establishes a fresh session. Every failure path
// returns ErrRememberInvalid; the caller treats it as logged-out.
func (m *SessionManager) CheckRememberMe(ctx context.Context, cookie string) (models.Session, string, error) {
	identifier, secret, err := security.ParseRememberCookie(cookie)
	if err != nil {
		return models.Session{}, "", ErrRememberInvalid
	}

	token, err := m.tokens.Get(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return models.Session{}, "", ErrRememberInvalid
		}
		return models.Session{}, "", err
	}

	if m.now().After(token.ExpiresAt) {
		_ = m.tokens.Delete(ctx, identifier)
		return models.Session{}, "", ErrRememberInvalid
	}

	if !security.SecretHashEqual(secret, token.SecretHash) {
		// Right identifier, wrong secret: someone holds a stale or forged
		// copy. Revoke the whole family.
		revoked, _ := m.tokens.DeleteByAccount(ctx, token.AccountID)
		m.log.Warn().
			Str("account_id", token.AccountID).
			Int64("revoked", revoked).
			Msg("remember token secret mismatch, revoking account tokens")
		return models.Session{}, "", ErrRememberInvalid
	}

	account, err := m.accounts.GetByID(ctx, token.AccountID)
	if err != nil {
		return models.Session{}, "", ErrRememberInvalid
	}
	if !account.IsActive {
		_, _ = m.tokens.DeleteByAccount(ctx, token.AccountID)
		return models.Session{}, "", ErrRememberInvalid
	}

	identifierNext, secretNext, secretHashNext, err := security.NewRememberToken()
	if err != nil {
		return models.Session{}, "", err
	}
	next := models.RememberToken{
		Identifier: identifierNext,
		SecretHash: secretHashNext,
		AccountID:  token.AccountID,
		ExpiresAt:  m.now().Add(m.rememberTTL),
	}

	if err := m.tokens.Rotate(ctx, identifier, token.SecretHash, next); err != nil {
		if errors.Is(err, repository.ErrTokenRotated) {
			// A concurrent request won the rotation; this presentation is
			// a replay. Fail closed and revoke.
			revoked, _ := m.tokens.DeleteByAccount(ctx, token.AccountID)
			m.log.Warn().
				Str("account_id", token.AccountID).
				Int64("revoked", revoked).
				Msg("remember token replay detected, revoking account tokens")
			return models.Session{}, "", ErrRememberInvalid
		}
		return models.Session{}, "", err
	}

	session, _, err := m.Establish(ctx, account, false)
	if err != nil {
		return models.Session{}, "", err
	}
	return session, security.EncodeRememberCookie(identifierNext, secretNext), nil
}

// Logout destroys the session and, when a remember cookie is present,
// deletes the corresponding token row.
func (m *SessionManager) Logout(ctx context.Context, session models.Session, rememberCookie string) error {
	if err := m.store.Delete(ctx, session.ID); err != nil {
		return err
	}
	if rememberCookie != "" {
		if identifier, _, err := security.ParseRememberCookie(rememberCookie); err == nil {
			if err := m.tokens.Delete(ctx, identifier); err != nil {
				m.log.Warn().Err(err).Msg("remember token delete on logout failed")
			}
		}
	}
	return nil
}

// CleanExpiredTokens is the janitor sweep: idempotent, safe alongside
// login traffic.
func (m *SessionManager) CleanExpiredTokens(ctx context.Context) (int64, error) {
	return m.tokens.DeleteExpired(ctx)
}
