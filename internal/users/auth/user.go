// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the account and session layer of Gravity.

It defines the User entity, the storage contract that both the MongoDB and
PostgreSQL drivers satisfy, the authentication use cases and their HTTP
delivery.

# Architecture

  - Entity: [User] never serializes secret material (password hash, refresh
    token hash, reset token hash).
  - Repository: [UserRepository], one implementation per store driver.
  - Service: [Service] validates input and orchestrates hashing, token
    issuance and storage.
  - Handler: [Handler] maps the service onto /api/v1/auth and manages cookies.
*/
package auth

import (
	"strings"
	"time"

	"github.com/taibuivan/gravity/internal/platform/sec"
)

// # Domain Entities

// User represents a registered account.
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`

	// Secret material. Explicitly omitted from JSON.
	PasswordHash        string     `json:"-"`
	RefreshTokenHash    string     `json:"-"`
	ResetTokenHash      string     `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	// CartData is an opaque client payload persisted as-is.
	CartData map[string]any `json:"cartData"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Identity returns the token subject for the account.
func (user *User) Identity() sec.Identity {
	return sec.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   sec.RoleUser,
	}
}

// HasActiveResetToken reports whether a reset token is pending at now.
func (user *User) HasActiveResetToken(now time.Time) bool {
	return user.ResetTokenHash != "" && user.ResetTokenExpiresAt != nil && user.ResetTokenExpiresAt.After(now)
}

// NormalizeEmail trims and lower-cases an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// # Field Identifiers

// Field names used in validation errors and response payloads.
const (
	FieldName         = "name"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldNewPassword  = "newPassword"
	FieldResetToken   = "resetToken"
	FieldRefreshToken = "refreshToken"
	FieldAccessToken  = "accessToken"
	FieldUser         = "user"
	FieldAdminEmail   = "adminEmail"
	FieldExpiresAt    = "expiresAt"
)
