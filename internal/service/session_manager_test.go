package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayfinder/api/internal/models"
	"stayfinder/api/internal/security"
)

func newSessionFixture(t *testing.T) (*SessionManager, *fakeAccounts, *fakeTokens, *fakeSessions) {
	t.Helper()
	accounts := newFakeAccounts()
	tokens := newFakeTokens()
	store := newFakeSessions()
	manager := NewSessionManager(store, tokens, accounts, 24*time.Hour, 30*24*time.Hour, zerolog.Nop())
	return manager, accounts, tokens, store
}

func sessionTestAccount() models.Account {
	return models.Account{
		ID:         "acc-1",
		Username:   "ana_01",
		Email:      "ana@example.com",
		Role:       models.AccountRoleUser,
		IsVerified: true,
		IsActive:   true,
	}
}

func TestEstablish_CreatesSessionWithCSRF(t *testing.T) {
	manager, accounts, _, store := newSessionFixture(t)
	account := sessionTestAccount()
	accounts.add(account)

	session, cookie, err := manager.Establish(context.Background(), account, false)
	require.NoError(t, err)
	assert.Empty(t, cookie)
	assert.NotEmpty(t, session.ID)
	assert.NotEmpty(t, session.CSRFToken)
	assert.Equal(t, "ana_01", session.Username)

	stored, err := store.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.CSRFToken, stored.CSRFToken)
}

func TestEstablish_NewSessionRotatesCSRF(t *testing.T) {
	manager, accounts, _, _ := newSessionFixture(t)
	account := sessionTestAccount()
	accounts.add(account)

	first, _, err := manager.Establish(context.Background(), account, false)
	require.NoError(t, err)
	second, _, err := manager.Establish(context.Background(), account, false)
	require.NoError(t, err)
	assert.NotEqual(t, first.CSRFToken, second.CSRFToken)
}

func TestCheckRememberMe_RotatesToken(t *testing.T) {
	manager, accounts, tokens, _ := newSessionFixture(t)
	account := sessionTestAccount()
	accounts.add(account)

	_, cookie, err := manager.Establish(context.Background(), account, true)
	require.NoError(t, err)
	require.NotEmpty(t, cookie)

	session, newCookie, err := manager.CheckRememberMe(context.Background(), cookie)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", session.AccountID)
	require.NotEmpty(t, newCookie)
	assert.NotEqual(t, cookie, newCookie)

	// The old identifier is gone; the new one resolves.
	oldIdentifier, _, err := security.ParseRememberCookie(cookie)
	require.NoError(t, err)
	_, err = tokens.Get(context.Background(), oldIdentifier)
	assert.Error(t, err)

	newIdentifier, _, err := security.ParseRememberCookie(newCookie)
	require.NoError(t, err)
	_, err = tokens.Get(context.Background(), newIdentifier)
	assert.NoError(t, err)
}

func TestCheckRememberMe_ReplayRejected(t *testing.T) {
	manager, accounts, _, _ := newSessionFixture(t)
	account := sessionTestAccount()
	accounts.add(account)

	_, cookie, err := manager.Establish(context.Background(), account, true)
	require.NoError(t, err)

	_, newCookie, err := manager.CheckRememberMe(context.Background(), cookie)
	require.NoError(t, err)

	// Presenting the original cookie again must fail closed.
	_, _, err = manager.CheckRememberMe(context.Background(), cookie)
	assert.ErrorIs(t, err, ErrRememberInvalid)

	// The rotated descendant is unaffected by the failed replay.
	_, _, err = manager.CheckRememberMe(context.Background(), newCookie)
	assert.NoError(t, err)
}

func TestCheckRememberMe_SecretMismatchRevokesAll(t *testing.T) {
	manager, accounts, tokens, _ := newSessionFixture(t)
	account := sessionTestAccount()
	accounts.add(account)

	_, cookie, err := manager.Establish(context.Background(), account, true)
	require.NoError(t, err)

	identifier, _, err := security.ParseRememberCookie(cookie)
	require.NoError(t, err)

	forged := security.EncodeRememberCookie(identifier, "forged-secret")
	_, _, err = manager.CheckRememberMe(context.Background(), forged)
	assert.ErrorIs(t, err, ErrRememberInvalid)

	_, err = tokens.Get(context.Background(), identifier)
	assert.Error(t, err)
}

func TestCheckRememberMe_ExpiredToken(t *testing.T) {
	manager, accounts, tokens, _ := newSessionFixture(t)
	account := sessionTestAccount()
	accounts.add(account)

	identifier, secret, secretHash, err := security.NewRememberToken()
	require.NoError(t, err)
	require.NoError(t, tokens.Create(context.Background(), models.RememberToken{
		Identifier: identifier,
		SecretHash: secretHash,
		AccountID:  "acc-1",
		ExpiresAt:  time.Now().Add(-time.Hour),
	}))

	_, _, err = manager.CheckRememberMe(context.Background(), security.EncodeRememberCookie(identifier, secret))
	assert.ErrorIs(t, err, ErrRememberInvalid)

	// Expired row was removed on the way out.
	_, err = tokens.Get(context.Background(), identifier)
	assert.Error(t, err)
}

func TestCheckRememberMe_MalformedCookie(t *testing.T) {
	manager, _, _, _ := newSessionFixture(t)

	for _, cookie := range []string{"", "nosep", ":", "id:", ":secret"} {
		_, _, err := manager.CheckRememberMe(context.Background(), cookie)
		assert.ErrorIs(t, err, ErrRememberInvalid, "cookie %q", cookie)
	}
}

func TestLogout_DestroysSessionAndToken(t *testing.T) {
	manager, accounts, tokens, store := newSessionFixture(t)
	account := sessionTestAccount()
	accounts.add(account)

	session, cookie, err := manager.Establish(context.Background(), account, true)
	require.NoError(t, err)

	require.NoError(t, manager.Logout(context.Background(), session, cookie))

	_, err = store.Get(context.Background(), session.ID)
	assert.Error(t, err)

	identifier, _, err := security.ParseRememberCookie(cookie)
	require.NoError(t, err)
	_, err = tokens.Get(context.Background(), identifier)
	assert.Error(t, err)
}

func TestCleanExpiredTokens(t *testing.T) {
	manager, _, tokens, _ := newSessionFixture(t)

	for i, expiry := range []time.Time{
		time.Now().Add(-time.Hour),
		time.Now().Add(-time.Minute),
		time.Now().Add(time.Hour),
	} {
		identifier, _, secretHash, err := security.NewRememberToken()
		require.NoError(t, err, "token %d", i)
		require.NoError(t, tokens.Create(context.Background(), models.RememberToken{
			Identifier: identifier,
			SecretHash: secretHash,
			AccountID:  "acc-1",
			ExpiresAt:  expiry,
		}))
	}

	count, err := manager.CleanExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// Idempotent: a second sweep finds nothing.
	count, err = manager.CleanExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}
