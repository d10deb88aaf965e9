package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stayfinder/api/internal/models"
)

func TestLockoutPolicy_IsLocked(t *testing.T) {
	now := time.Now()
	policy := LockoutPolicy{Threshold: 5, Window: 15 * time.Minute}

	future := now.Add(10 * time.Minute)
	past := now.Add(-time.Minute)

	tests := []struct {
		name    string
		account models.Account
		want    bool
	}{
		{name: "no lock fields", account: models.Account{}, want: false},
		{name: "lock in the future", account: models.Account{IsLocked: true, LockedUntil: &future}, want: true},
		{name: "lock expired but flag still set", account: models.Account{IsLocked: true, LockedUntil: &past}, want: false},
		{name: "flag cleared but expiry future", account: models.Account{LockedUntil: &future}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.IsLocked(tt.account, now))
		})
	}
}

func TestLockoutPolicy_Remaining(t *testing.T) {
	now := time.Now()
	policy := LockoutPolicy{Threshold: 5, Window: 15 * time.Minute}

	until := now.Add(7 * time.Minute)
	locked := models.Account{LockedUntil: &until}
	assert.Equal(t, 7*time.Minute, policy.Remaining(locked, now))

	expired := now.Add(-time.Minute)
	assert.Equal(t, time.Duration(0), policy.Remaining(models.Account{LockedUntil: &expired}, now))
	assert.Equal(t, time.Duration(0), policy.Remaining(models.Account{}, now))
}
