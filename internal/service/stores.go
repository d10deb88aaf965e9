package service

import (
	"context"
	"time"

	"stayfinder/api/internal/models"
)

// Store interfaces mirror the pgx/redis repositories; tests substitute
// in-memory fakes.

type AccountStore interface {
	Create(ctx context.Context, account models.Account) error
	GetByID(ctx context.Context, id string) (models.Account, error)
	FindByUsername(ctx context.Context, username string) (models.Account, error)
	FindByEmail(ctx context.Context, email string) (models.Account, error)
	SetVerificationCode(ctx context.Context, id string, code string, expiresAt time.Time) error
	ConfirmVerification(ctx context.Context, email string, code string) error
	RecordLoginFailure(ctx context.Context, id string, threshold int, lockFor time.Duration) (int, *time.Time, error)
	ResetLoginFailures(ctx context.Context, id string) error
}

type RememberTokenStore interface {
	Create(ctx context.Context, token models.RememberToken) error
	Get(ctx context.Context, identifier string) (models.RememberToken, error)
	Rotate(ctx context.Context, oldIdentifier string, oldSecretHash []byte, next models.RememberToken) error
	Delete(ctx context.Context, identifier string) error
	DeleteByAccount(ctx context.Context, accountID string) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type SessionStore interface {
	Save(ctx context.Context, session models.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (models.Session, error)
	Delete(ctx context.Context, id string) error
}
