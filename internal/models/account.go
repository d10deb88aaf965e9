package models

import "time"

type AccountRole string

const (
	AccountRoleUser  AccountRole = "user"
	AccountRoleAdmin AccountRole = "admin"
)

type Account struct {
	ID                    string
	Username              string
	Email                 string
	PasswordHash          []byte
	Role                  AccountRole
	IsVerified            bool
	VerificationCode      *string
	VerificationExpiresAt *time.Time
	IsActive              bool
	IsLocked              bool
	LockedUntil           *time.Time
	FailedLoginAttempts   int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// RememberToken is the persistent login credential. The identifier only
// locates the row; authentication requires the presented secret to match
// SecretHash.
type RememberToken struct {
	Identifier string
	SecretHash []byte
	AccountID  string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}
