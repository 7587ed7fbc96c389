// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gravity/internal/platform/apperr"
	"github.com/taibuivan/gravity/internal/platform/sec"
)

// runRepositoryContract checks the behaviour every [UserRepository] driver must share.
// Each run uses unique emails so drivers backed by a shared database can be reused.
func runRepositoryContract(t *testing.T, repository UserRepository) {
	ctx := context.Background()
	suffix := time.Now().UnixNano()

	newUser := func(t *testing.T, label string) *User {
		t.Helper()
		user := &User{
			Name:         "Ana",
			Email:        fmt.Sprintf("%s-%d@x.com", label, suffix),
			PasswordHash: "$2a$04$placeholderplaceholderplaceholderplaceholderplacehol",
			CartData:     map[string]any{"sku-1": float64(2)},
		}
		require.NoError(t, repository.Create(ctx, user))
		return user
	}

	t.Run("create and find", func(t *testing.T) {
		user := newUser(t, "create")

		assert.NotEmpty(t, user.ID)
		assert.False(t, user.CreatedAt.IsZero())

		byID, err := repository.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, byID.Email)
		assert.Equal(t, "Ana", byID.Name)
		assert.Equal(t, float64(2), byID.CartData["sku-1"])

		byEmail, err := repository.FindByEmail(ctx, user.Email)
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		user := newUser(t, "duplicate")

		err := repository.Create(ctx, &User{Name: "Other", Email: user.Email, PasswordHash: "x"})
		assert.True(t, apperr.HasCode(err, apperr.CodeConflict), "got %v", err)
	})

	t.Run("missing records are not found", func(t *testing.T) {
		_, err := repository.FindByEmail(ctx, fmt.Sprintf("nobody-%d@x.com", suffix))
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

		_, err = repository.FindByID(ctx, "not-an-id")
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

		err = repository.UpdateRefreshTokenHash(ctx, "not-an-id", "hash")
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	})

	t.Run("refresh token hash", func(t *testing.T) {
		user := newUser(t, "refresh")

		require.NoError(t, repository.UpdateRefreshTokenHash(ctx, user.ID, "first"))
		require.NoError(t, repository.RotateRefreshTokenHash(ctx, user.ID, "first", "second"))

		err := repository.RotateRefreshTokenHash(ctx, user.ID, "first", "third")
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound), "stale hash must not rotate")

		stored, err := repository.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "second", stored.RefreshTokenHash)

		require.NoError(t, repository.UpdateRefreshTokenHash(ctx, user.ID, ""))
		stored, err = repository.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.RefreshTokenHash)
	})

	t.Run("reset token lifecycle", func(t *testing.T) {
		user := newUser(t, "reset")
		now := time.Now().UTC().Truncate(time.Millisecond)
		tokenHash := sec.HashToken(fmt.Sprintf("reset-%d", suffix))

		require.NoError(t, repository.UpdateRefreshTokenHash(ctx, user.ID, "refresh"))
		require.NoError(t, repository.SetPasswordResetToken(ctx, user.ID, tokenHash, now.Add(20*time.Minute)))

		found, err := repository.FindByResetTokenHash(ctx, tokenHash, now)
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)

		_, err = repository.FindByResetTokenHash(ctx, tokenHash, now.Add(21*time.Minute))
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound), "expired token must not match")

		err = repository.ConsumePasswordResetToken(ctx, user.ID, tokenHash, "new-hash", now.Add(21*time.Minute))
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound), "expired token must not be consumed")

		require.NoError(t, repository.ConsumePasswordResetToken(ctx, user.ID, tokenHash, "new-hash", now))

		stored, err := repository.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", stored.PasswordHash)
		assert.Empty(t, stored.ResetTokenHash)
		assert.Nil(t, stored.ResetTokenExpiresAt)
		assert.Empty(t, stored.RefreshTokenHash)

		err = repository.ConsumePasswordResetToken(ctx, user.ID, tokenHash, "other-hash", now)
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound), "token must be single use")
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, repository.Ping(ctx))
	})
}

func TestMemoryUserRepository_Contract(t *testing.T) {
	runRepositoryContract(t, newMemoryUserRepository())
}
