package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stayfinder/api/internal/models"
)

var (
	ErrTokenNotFound = errors.New("remember token not found")
	// ErrTokenRotated means the conditional rotate matched no row: a
	// concurrent request already rotated this token. Callers must treat
	// this as a replay and fail closed.
	ErrTokenRotated = errors.New("remember token already rotated")
)

type RememberTokenRepository struct {
	pool *pgxpool.Pool
}

func NewRememberTokenRepository(pool *pgxpool.Pool) *RememberTokenRepository {
	return &RememberTokenRepository{pool: pool}
}

func (r *RememberTokenRepository) Create(ctx context.Context, token models.RememberToken) error {
	const query = `
		INSERT INTO remember_tokens (identifier, secret_hash, account_id, created_at, expires_at)
		VALUES ($1, $2, $3, NOW(), $4)
	`
	_, err := r.pool.Exec(ctx, query,
		token.Identifier,
		token.SecretHash,
		token.AccountID,
		token.ExpiresAt,
	)
	return err
}

func (r *RememberTokenRepository) Get(ctx context.Context, identifier string) (models.RememberToken, error) {
	const query = `
		SELECT identifier, secret_hash, account_id, created_at, expires_at
		FROM remember_tokens
		WHERE identifier = $1
	`
	row := r.pool.QueryRow(ctx, query, identifier)
	var token models.RememberToken
	if err := row.Scan(
		&token.Identifier,
		&token.SecretHash,
		&token.AccountID,
		&token.CreatedAt,
		&token.ExpiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.RememberToken{}, ErrTokenNotFound
		}
		return models.RememberToken{}, err
	}
	return token, nil
}

// Rotate replaces the old (identifier, secret) pair in a single
// conditional update keyed on both values being unchanged since the read.
// A loser in a rotation race gets ErrTokenRotated.
func (r *RememberTokenRepository) Rotate(ctx context.Context, oldIdentifier string, oldSecretHash []byte, next models.RememberToken) error {
	const query = `
		UPDATE remember_tokens
		SET identifier = $3, secret_hash = $4, created_at = NOW(), expires_at = $5
		WHERE identifier = $1 AND secret_hash = $2
	`
	cmd, err := r.pool.Exec(ctx, query,
		oldIdentifier,
		oldSecretHash,
		next.Identifier,
		next.SecretHash,
		next.ExpiresAt,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTokenRotated
	}
	return nil
}

func (r *RememberTokenRepository) Delete(ctx context.Context, identifier string) error {
	const query = `DELETE FROM remember_tokens WHERE identifier = $1`
	_, err := r.pool.Exec(ctx, query, identifier)
	return err
}

// DeleteByAccount revokes every token for an account, used when a
// presented secret mismatches a stored hash (theft signal).
func (r *RememberTokenRepository) DeleteByAccount(ctx context.Context, accountID string) (int64, error) {
	const query = `DELETE FROM remember_tokens WHERE account_id = $1`
	cmd, err := r.pool.Exec(ctx, query, accountID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *RememberTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM remember_tokens WHERE expires_at < NOW()`
	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
