// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// Lookups and conditional updates that match nothing return an
// [apperr.AppError] with code NOT_FOUND. A duplicate email on Create returns
// CONFLICT, whatever the pre-checks in the service concluded.
type UserRepository interface {

	/*
		FindByID returns the account with the given store ID.
		A malformed ID is reported as NOT_FOUND.
	*/
	FindByID(ctx context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given normalized email.
	*/
	FindByEmail(ctx context.Context, email string) (*User, error)

	/*
		FindByResetTokenHash returns the account holding tokenHash whose reset
		expiry is still after now.
	*/
	FindByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*User, error)

	/*
		Create persists a new account. The store assigns ID, CreatedAt and
		UpdatedAt and writes them back into user.
	*/
	Create(ctx context.Context, user *User) error

	/*
		UpdateRefreshTokenHash replaces the stored refresh token hash.
		An empty hash clears it.
	*/
	UpdateRefreshTokenHash(ctx context.Context, id, tokenHash string) error

	/*
		RotateRefreshTokenHash swaps currentHash for nextHash only if currentHash
		is still the stored value, so a refresh token can be spent once.
	*/
	RotateRefreshTokenHash(ctx context.Context, id, currentHash, nextHash string) error

	/*
		SetPasswordResetToken writes the reset token hash and its expiry in one update.
	*/
	SetPasswordResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error

	/*
		ConsumePasswordResetToken is a single conditional update: when the
		account still holds tokenHash with an expiry after now it sets the new
		password hash, clears both reset fields and the refresh token hash.
		It returns NOT_FOUND when the condition did not match.
	*/
	ConsumePasswordResetToken(ctx context.Context, id, tokenHash, passwordHash string, now time.Time) error

	/*
		Ping reports whether the backing store is reachable.
	*/
	Ping(ctx context.Context) error
}
