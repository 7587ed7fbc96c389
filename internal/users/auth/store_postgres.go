// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/gravity/internal/platform/apperr"
	"github.com/taibuivan/gravity/internal/platform/database/schema"
	"github.com/taibuivan/gravity/internal/platform/dberr"
	"github.com/taibuivan/gravity/pkg/uuid"
)

var account = schema.UserAccount

// # User Repository

// PostgresUserRepository implements [UserRepository] using pgx.
//
// Storage-specific errors (pgx.ErrNoRows, unique violations) are mapped to
// [apperr.AppError] through [dberr.Wrap] to keep the drivers interchangeable.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a PostgreSQL implementation of [UserRepository].
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
Create persists a new account into users.account.

The primary key is a UUIDv7; timestamps come from the database clock and are
read back through RETURNING.
*/
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`,
		account.Table,
		account.ID, account.Name, account.Email, account.PasswordHash, account.RefreshTokenHash, account.CartData,
		account.SelectList(),
	)

	cartData := user.CartData
	if cartData == nil {
		cartData = map[string]any{}
	}

	created, err := scanUser(repository.pool.QueryRow(ctx, query,
		uuid.New(),
		user.Name,
		user.Email,
		user.PasswordHash,
		nullable(user.RefreshTokenHash),
		cartData,
	))
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("User with this email already exists")
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", dberr.Wrap(err, "User"))
	}

	*user = *created
	return nil
}

// FindByID retrieves an account by UUID. Non-UUID input is NOT_FOUND.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	if !uuid.IsValid(id) {
		return nil, apperr.NotFound("User")
	}
	return repository.findOne(ctx, account.ID+" = $1", id)
}

// FindByEmail retrieves an account by its normalized email.
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return repository.findOne(ctx, account.Email+" = $1", email)
}

// FindByResetTokenHash retrieves the account holding an unexpired reset token.
func (repository *PostgresUserRepository) FindByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*User, error) {
	return repository.findOne(ctx,
		fmt.Sprintf("%s = $1 AND %s > $2", account.ResetTokenHash, account.ResetTokenExpiresAt),
		tokenHash, now,
	)
}

func (repository *PostgresUserRepository) findOne(ctx context.Context, where string, args ...any) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s`, account.SelectList(), account.Table, where)

	user, err := scanUser(repository.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	return user, nil
}

// UpdateRefreshTokenHash sets or clears (empty hash) the refresh token hash.
func (repository *PostgresUserRepository) UpdateRefreshTokenHash(ctx context.Context, id, tokenHash string) error {
	return repository.update(ctx,
		fmt.Sprintf(`UPDATE %s SET %s = $2, %s = now() WHERE %s = $1`,
			account.Table, account.RefreshTokenHash, account.UpdatedAt, account.ID),
		id, nullable(tokenHash),
	)
}

// RotateRefreshTokenHash swaps the hash only if currentHash is still stored.
func (repository *PostgresUserRepository) RotateRefreshTokenHash(ctx context.Context, id, currentHash, nextHash string) error {
	return repository.update(ctx,
		fmt.Sprintf(`UPDATE %s SET %s = $3, %s = now() WHERE %s = $1 AND %s = $2`,
			account.Table, account.RefreshTokenHash, account.UpdatedAt, account.ID, account.RefreshTokenHash),
		id, currentHash, nextHash,
	)
}

// SetPasswordResetToken writes the reset token hash and expiry in one statement.
func (repository *PostgresUserRepository) SetPasswordResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	return repository.update(ctx,
		fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = now() WHERE %s = $1`,
			account.Table, account.ResetTokenHash, account.ResetTokenExpiresAt, account.UpdatedAt, account.ID),
		id, tokenHash, expiresAt,
	)
}

/*
ConsumePasswordResetToken sets the new password hash and clears the reset
pair and the refresh token hash in a single conditional UPDATE. The row lock
taken by UPDATE serializes concurrent redemptions; the loser matches zero rows.
*/
func (repository *PostgresUserRepository) ConsumePasswordResetToken(ctx context.Context, id, tokenHash, passwordHash string, now time.Time) error {
	return repository.update(ctx,
		fmt.Sprintf(`
			UPDATE %[1]s
			SET %[2]s = $3, %[3]s = NULL, %[4]s = NULL, %[5]s = NULL, %[6]s = now()
			WHERE %[7]s = $1 AND %[3]s = $2 AND %[4]s > $4`,
			account.Table, account.PasswordHash, account.ResetTokenHash, account.ResetTokenExpiresAt,
			account.RefreshTokenHash, account.UpdatedAt, account.ID),
		id, tokenHash, passwordHash, now,
	)
}

// update executes a single-row UPDATE. Zero affected rows is NOT_FOUND.
func (repository *PostgresUserRepository) update(ctx context.Context, query string, id string, args ...any) error {
	if !uuid.IsValid(id) {
		return apperr.NotFound("User")
	}

	tag, err := repository.pool.Exec(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_failed: %w", dberr.Wrap(err, "User"))
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

// Ping checks the pool can reach the server.
func (repository *PostgresUserRepository) Ping(ctx context.Context) error {
	return repository.pool.Ping(ctx)
}

// scanUser maps one users.account row in [schema.UserAccountTable.Columns] order.
func scanUser(row pgx.Row) (*User, error) {
	var (
		user             User
		refreshTokenHash *string
		resetTokenHash   *string
	)

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&refreshTokenHash,
		&resetTokenHash,
		&user.ResetTokenExpiresAt,
		&user.CartData,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if refreshTokenHash != nil {
		user.RefreshTokenHash = *refreshTokenHash
	}
	if resetTokenHash != nil {
		user.ResetTokenHash = *resetTokenHash
	}
	if user.CartData == nil {
		user.CartData = map[string]any{}
	}
	return &user, nil
}

// nullable maps an empty string to SQL NULL.
func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
