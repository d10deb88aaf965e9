package service

import (
	"time"

	"stayfinder/api/internal/models"
)

// LockoutPolicy is pure policy over the account's failure counter and
// lock expiry. The threshold and window come from configuration.
type LockoutPolicy struct {
	Threshold int
	Window    time.Duration
}

// IsLocked uses lazy expiry: a locked_until in the past means unlocked,
// even when is_locked has not been physically cleared yet.
func (p LockoutPolicy) IsLocked(account models.Account, now time.Time) bool {
	return account.LockedUntil != nil && account.LockedUntil.After(now)
}

// Remaining returns the time left on an active lock, zero otherwise.
func (p LockoutPolicy) Remaining(account models.Account, now time.Time) time.Duration {
	if !p.IsLocked(account, now) {
		return 0
	}
	return account.LockedUntil.Sub(now)
}
