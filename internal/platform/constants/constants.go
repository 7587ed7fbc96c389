// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, header names, and cookie keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Security: JWT issuer and cookie configuration.
  - Transport: Header names and request body limits.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "gravity-auth"
	AppVersion = "0.1.0-dev"

	// ProductName is shown to end users in transactional mail.
	ProductName = "Gravity"
	// ProductURL is linked from transactional mail.
	ProductURL = "https://gravity.com"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// MailDispatchTimeout bounds a single background mail delivery.
	MailDispatchTimeout = 30 * time.Second
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "gravity.app"

	// AccessTokenCookieName is the cookie carrying the session (access) token.
	AccessTokenCookieName = "accessToken"

	// RefreshTokenCookieName is the name of the cookie that stores the refresh token.
	RefreshTokenCookieName = "refreshToken"

	// SessionCookiePath is the path both session cookies are scoped to.
	SessionCookiePath = "/"

	// ResetTokenBytes is the entropy of a password reset token (256 bits).
	ResetTokenBytes = 32
)

// # Transport

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"

	// MaxRequestBodyBytes caps JSON request bodies.
	MaxRequestBodyBytes = 16 << 10
)
