// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Account Constraints

const (
	// MaxNameLength bounds the display name in characters.
	MaxNameLength = 100

	// MaxEmailLength is the longest address accepted by SMTP (RFC 5321).
	MaxEmailLength = 254
)

// Policy holds the tunable credential and recovery rules.
type Policy struct {
	// PasswordMinLength is the minimum password length in characters.
	PasswordMinLength int

	// ResetTokenTTL is how long a password reset link stays valid.
	ResetTokenTTL time.Duration

	// ResetURL is the frontend page the plain reset token is appended to.
	ResetURL string

	// StrictForgotPassword makes forgot-password answer 404 for unknown
	// emails instead of the uniform success response.
	StrictForgotPassword bool
}

// AdminCredentials is the configured operator login. It is not stored.
type AdminCredentials struct {
	Email    string
	Password string
}

// Enabled reports whether both fields are configured.
func (credentials AdminCredentials) Enabled() bool {
	return credentials.Email != "" && credentials.Password != ""
}
