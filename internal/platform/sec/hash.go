// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// PasswordHasher hashes and verifies user passwords with bcrypt.
//
// The cost factor is embedded in every hash, so raising it only affects new
// hashes; existing ones keep verifying.
type PasswordHasher struct {
	cost  int
	decoy []byte
}

// NewPasswordHasher creates a hasher with the given bcrypt cost.
func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("auth: bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	// Compared against on unknown-account logins so both failure paths pay one bcrypt round.
	decoy, err := bcrypt.GenerateFromPassword([]byte("gravity-decoy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to prepare decoy hash: %w", err)
	}

	return &PasswordHasher{cost: cost, decoy: decoy}, nil
}

// HashPassword hashes a plain-text password using the bcrypt algorithm.
func (hasher *PasswordHasher) HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), hasher.cost)
	if err != nil {
		return "", fmt.Errorf("auth: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
// Malformed hashes never match.
func (hasher *PasswordHasher) CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}

// BurnCheck performs a comparison against the decoy hash and always reports false.
func (hasher *PasswordHasher) BurnCheck(plainTextPassword string) bool {
	_ = bcrypt.CompareHashAndPassword(hasher.decoy, []byte(plainTextPassword))
	return false
}
