// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"
)

// GenerateSecureToken returns n random bytes, hex encoded.
func GenerateSecureToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashToken returns the hex SHA-256 digest of a high-entropy token.
//
// Used for values that are looked up by exact match (reset tokens, refresh
// tokens); passwords go through [PasswordHasher] instead.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// TokenHashEqual compares a presented token against a stored digest in constant time.
func TokenHashEqual(token, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(HashToken(token)), []byte(storedHash)) == 1
}

// ResetToken is a freshly generated password reset credential.
//
// Plain goes to the user and is never stored; Hash and ExpiresAt are persisted.
type ResetToken struct {
	Plain     string
	Hash      string
	ExpiresAt time.Time
}

// NewResetToken generates a reset token of entropyBytes random bytes valid until now+ttl.
func NewResetToken(entropyBytes int, now time.Time, ttl time.Duration) (ResetToken, error) {
	plain, err := GenerateSecureToken(entropyBytes)
	if err != nil {
		return ResetToken{}, err
	}

	return ResetToken{
		Plain:     plain,
		Hash:      HashToken(plain),
		ExpiresAt: now.Add(ttl),
	}, nil
}
