// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small interfaces declared by the consumers.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind scopes a signed token to one purpose. Each kind has its own
// secret and TTL and is written to both the audience and the typ claim.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
	TokenAdmin   TokenKind = "admin"
)

var (
	// ErrTokenExpired is returned for a well-formed token past its expiry.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrTokenInvalid is returned for malformed, tampered or mis-scoped tokens.
	ErrTokenInvalid = errors.New("auth: token invalid")
	// ErrKeyNotConfigured is returned when a token kind has no signing secret.
	ErrKeyNotConfigured = errors.New("auth: signing key not configured")
)

// AuthClaims represents the payload embedded inside a signed session token.
//
// Email and Name are informational; authorization decisions re-read the
// account from the store by UserID.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID string    `json:"uid"`
	Email  string    `json:"eml,omitempty"`
	Name   string    `json:"nam,omitempty"`
	Role   UserRole  `json:"rol"`
	Kind   TokenKind `json:"typ"`
}

// Identity is the subject a token is issued for.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   UserRole
}

// SigningKey is the secret and lifetime for one [TokenKind].
type SigningKey struct {
	Secret string
	TTL    time.Duration
}

// TokenService handles generation and verification of HS256 JWT tokens.
type TokenService struct {
	keys   map[TokenKind]SigningKey
	issuer string
	now    func() time.Time
}

// NewTokenService creates a new TokenService.
//
// Access and refresh keys are mandatory; the admin key may be left empty, in
// which case admin tokens can be neither issued nor verified. Secrets must be
// pairwise distinct.
func NewTokenService(issuer string, access, refresh, admin SigningKey) (*TokenService, error) {
	keys := map[TokenKind]SigningKey{
		TokenAccess:  access,
		TokenRefresh: refresh,
	}
	if admin.Secret != "" {
		keys[TokenAdmin] = admin
	}

	seen := make(map[string]TokenKind, len(keys))
	for kind, key := range keys {
		if key.Secret == "" {
			return nil, fmt.Errorf("auth: %s token secret is empty", kind)
		}
		if key.TTL <= 0 {
			return nil, fmt.Errorf("auth: %s token ttl must be positive", kind)
		}
		if other, dup := seen[key.Secret]; dup {
			return nil, fmt.Errorf("auth: %s and %s tokens share a secret", other, kind)
		}
		seen[key.Secret] = kind
	}

	return &TokenService{keys: keys, issuer: issuer, now: time.Now}, nil
}

// WithClock replaces the time source used for issuing and verifying tokens.
func (service *TokenService) WithClock(now func() time.Time) *TokenService {
	service.now = now
	return service
}

// TTL returns the configured lifetime of the given token kind.
func (service *TokenService) TTL(kind TokenKind) time.Duration {
	return service.keys[kind].TTL
}

// Issue creates a signed token of the given kind for identity.
func (service *TokenService) Issue(kind TokenKind, identity Identity) (string, time.Time, error) {
	key, ok := service.keys[kind]
	if !ok {
		return "", time.Time{}, ErrKeyNotConfigured
	}

	currentTime := service.now()
	expiresAt := currentTime.Add(key.TTL)
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity.UserID,
			Issuer:    service.issuer,
			Audience:  jwt.ClaimStrings{string(kind)},
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: identity.UserID,
		Email:  identity.Email,
		Name:   identity.Name,
		Role:   identity.Role,
		Kind:   kind,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(key.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: failed to sign token: %w", err)
	}

	return signedToken, expiresAt, nil
}

// Verify checks the signature, expiry, issuer and scope of a token string.
//
// It returns [ErrTokenExpired] for expired tokens and [ErrTokenInvalid] for
// anything else that does not verify.
func (service *TokenService) Verify(kind TokenKind, tokenString string) (*AuthClaims, error) {
	key, ok := service.keys[kind]
	if !ok {
		return nil, ErrKeyNotConfigured
	}

	claims := &AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(key.Secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(service.issuer),
		jwt.WithAudience(string(kind)),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid || claims.Kind != kind || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// VerifyAccessToken verifies a user session token.
func (service *TokenService) VerifyAccessToken(tokenString string) (*AuthClaims, error) {
	return service.Verify(TokenAccess, tokenString)
}

// VerifyAdminToken verifies an admin session token.
func (service *TokenService) VerifyAdminToken(tokenString string) (*AuthClaims, error) {
	return service.Verify(TokenAdmin, tokenString)
}
