package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"stayfinder/api/internal/captcha"
	"stayfinder/api/internal/models"
	"stayfinder/api/internal/repository"
)

type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: map[string]*models.Account{}}
}

func (f *fakeAccounts) add(account models.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := account
	f.accounts[account.ID] = &copied
}

func (f *fakeAccounts) get(id string) models.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.accounts[id]
}

func (f *fakeAccounts) Create(_ context.Context, account models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.accounts {
		if existing.Username == account.Username || existing.Email == account.Email {
			return repository.ErrDuplicateAccount
		}
	}
	copied := account
	f.accounts[account.ID] = &copied
	return nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id string) (models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account, ok := f.accounts[id]; ok {
		return *account, nil
	}
	return models.Account{}, repository.ErrAccountNotFound
}

func (f *fakeAccounts) FindByUsername(_ context.Context, username string) (models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Username == username {
			return *account, nil
		}
	}
	return models.Account{}, repository.ErrAccountNotFound
}

func (f *fakeAccounts) FindByEmail(_ context.Context, email string) (models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Email == email {
			return *account, nil
		}
	}
	return models.Account{}, repository.ErrAccountNotFound
}

func (f *fakeAccounts) SetVerificationCode(_ context.Context, id string, code string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok || account.IsVerified {
		return repository.ErrAccountNotFound
	}
	account.VerificationCode = &code
	account.VerificationExpiresAt = &expiresAt
	return nil
}

func (f *fakeAccounts) ConfirmVerification(_ context.Context, email string, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Email != email {
			continue
		}
		if account.IsVerified || account.VerificationCode == nil || *account.VerificationCode != code {
			return repository.ErrVerificationConflict
		}
		account.IsVerified = true
		account.VerificationCode = nil
		account.VerificationExpiresAt = nil
		return nil
	}
	return repository.ErrVerificationConflict
}

func (f *fakeAccounts) RecordLoginFailure(_ context.Context, id string, threshold int, lockFor time.Duration) (int, *time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return 0, nil, repository.ErrAccountNotFound
	}
	// A counter left behind by an expired lock restarts the run.
	if account.LockedUntil != nil && !account.LockedUntil.After(time.Now()) {
		account.FailedLoginAttempts = 0
		account.IsLocked = false
		account.LockedUntil = nil
	}
	account.FailedLoginAttempts++
	if account.FailedLoginAttempts >= threshold {
		until := time.Now().Add(lockFor)
		account.IsLocked = true
		account.LockedUntil = &until
	}
	return account.FailedLoginAttempts, account.LockedUntil, nil
}

func (f *fakeAccounts) ResetLoginFailures(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return repository.ErrAccountNotFound
	}
	account.FailedLoginAttempts = 0
	account.IsLocked = false
	account.LockedUntil = nil
	return nil
}

type fakeTokens struct {
	mu     sync.Mutex
	tokens map[string]models.RememberToken
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{tokens: map[string]models.RememberToken{}}
}

func (f *fakeTokens) Create(_ context.Context, token models.RememberToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token.Identifier] = token
	return nil
}

func (f *fakeTokens) Get(_ context.Context, identifier string) (models.RememberToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token, ok := f.tokens[identifier]
	if !ok {
		return models.RememberToken{}, repository.ErrTokenNotFound
	}
	return token, nil
}

func (f *fakeTokens) Rotate(_ context.Context, oldIdentifier string, oldSecretHash []byte, next models.RememberToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.tokens[oldIdentifier]
	if !ok || string(old.SecretHash) != string(oldSecretHash) {
		return repository.ErrTokenRotated
	}
	delete(f.tokens, oldIdentifier)
	f.tokens[next.Identifier] = next
	return nil
}

func (f *fakeTokens) Delete(_ context.Context, identifier string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, identifier)
	return nil
}

func (f *fakeTokens) DeleteByAccount(_ context.Context, accountID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for identifier, token := range f.tokens {
		if token.AccountID == accountID {
			delete(f.tokens, identifier)
			count++
		}
	}
	return count, nil
}

func (f *fakeTokens) DeleteExpired(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	var count int64
	for identifier, token := range f.tokens {
		if token.ExpiresAt.Before(now) {
			delete(f.tokens, identifier)
			count++
		}
	}
	return count, nil
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]models.Session{}}
}

func (f *fakeSessions) Save(_ context.Context, session models.Session, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessions) Get(_ context.Context, id string) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return models.Session{}, repository.ErrSessionNotFound
	}
	return session, nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

type fakeMailer struct {
	mu    sync.Mutex
	sent  []string // recipients
	bodys []string
	fail  bool
}

func (f *fakeMailer) Send(to string, _ string, htmlBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("smtp unreachable")
	}
	f.sent = append(f.sent, to)
	f.bodys = append(f.bodys, htmlBody)
	return nil
}

type fakeCaptcha struct {
	fail bool
}

func (f *fakeCaptcha) Verify(_ context.Context, _ string, _ string) error {
	if f.fail {
		return captcha.ErrCaptchaFailed
	}
	return nil
}
