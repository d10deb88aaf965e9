package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"stayfinder/api/internal/models"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicateAccount deliberately does not say whether the username
	// or the email collided.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrVerificationConflict means the conditional confirm update matched
	// no row: the code changed or the account was verified concurrently.
	ErrVerificationConflict = errors.New("verification state changed")
)

const accountColumns = `
	id, username, email, password_hash, role, is_verified,
	verification_code, verification_expires_at, is_active, is_locked,
	locked_until, failed_login_attempts, created_at, updated_at
`

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func scanAccount(row pgx.Row) (models.Account, error) {
	var account models.Account
	if err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.IsVerified,
		&account.VerificationCode,
		&account.VerificationExpiresAt,
		&account.IsActive,
		&account.IsLocked,
		&account.LockedUntil,
		&account.FailedLoginAttempts,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, ErrAccountNotFound
		}
		return models.Account{}, err
	}
	return account, nil
}

func (r *AccountRepository) Create(ctx context.Context, account models.Account) error {
	const query = `
		INSERT INTO accounts (
			id, username, email, password_hash, role, is_verified,
			verification_code, verification_expires_at, is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.IsVerified,
		account.VerificationCode,
		account.VerificationExpiresAt,
		account.IsActive,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateAccount
		}
		return err
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, username))
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, email))
}

// SetVerificationCode overwrites any pending code, invalidating it.
func (r *AccountRepository) SetVerificationCode(ctx context.Context, id string, code string, expiresAt time.Time) error {
	const query = `
		UPDATE accounts
		SET verification_code = $2, verification_expires_at = $3, updated_at = NOW()
		WHERE id = $1 AND is_verified = FALSE
	`
	cmd, err := r.pool.Exec(ctx, query, id, code, expiresAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ConfirmVerification is a compare-and-set on the pending code: the flag
// flips and the code fields clear in one statement, so two racing
// confirms cannot both succeed.
func (r *AccountRepository) ConfirmVerification(ctx context.Context, email string, code string) error {
	const query = `
		UPDATE accounts
		SET is_verified = TRUE,
		    verification_code = NULL,
		    verification_expires_at = NULL,
		    updated_at = NOW()
		WHERE email = $1 AND verification_code = $2 AND is_verified = FALSE
	`
	cmd, err := r.pool.Exec(ctx, query, email, code)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVerificationConflict
	}
	return nil
}

// RecordLoginFailure increments the failure counter atomically and locks
// the account when the post-increment count reaches the threshold. A
// stale counter left behind by an expired lock restarts at 1, so locking
// again takes a fresh run of failures. Returns the new counter and the
// lock expiry, if any.
func (r *AccountRepository) RecordLoginFailure(ctx context.Context, id string, threshold int, lockFor time.Duration) (int, *time.Time, error) {
	const query = `
		UPDATE accounts
		SET failed_login_attempts = CASE
		        WHEN locked_until IS NOT NULL AND locked_until <= NOW() THEN 1
		        ELSE failed_login_attempts + 1
		    END,
		    is_locked = CASE
		        WHEN locked_until IS NOT NULL AND locked_until <= NOW() THEN 1 >= $2
		        ELSE failed_login_attempts + 1 >= $2
		    END,
		    locked_until = CASE
		        WHEN locked_until IS NOT NULL AND locked_until <= NOW() THEN
		            CASE WHEN 1 >= $2 THEN NOW() + make_interval(secs => $3) END
		        WHEN failed_login_attempts + 1 >= $2 THEN NOW() + make_interval(secs => $3)
		        ELSE locked_until
		    END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING failed_login_attempts, locked_until
	`

	var attempts int
	var lockedUntil *time.Time
	err := r.pool.QueryRow(ctx, query, id, threshold, lockFor.Seconds()).Scan(&attempts, &lockedUntil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil, ErrAccountNotFound
		}
		return 0, nil, err
	}
	return attempts, lockedUntil, nil
}

// ResetLoginFailures clears the counter and any lock, on successful login
// or administrative reset.
func (r *AccountRepository) ResetLoginFailures(ctx context.Context, id string) error {
	const query = `
		UPDATE accounts
		SET failed_login_attempts = 0,
		    is_locked = FALSE,
		    locked_until = NULL,
		    updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}
