// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/taibuivan/gravity/internal/platform/apperr"
)

// memoryUserRepository is an in-process [UserRepository] for tests.
// It returns copies so callers cannot mutate stored state.
type memoryUserRepository struct {
	mu      sync.Mutex
	users   map[string]*User
	nextID  int
	pingErr error
	failing error
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: map[string]*User{}}
}

func (repository *memoryUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.failing != nil {
		return nil, repository.failing
	}
	if user, ok := repository.users[id]; ok {
		return cloneUser(user), nil
	}
	return nil, apperr.NotFound("User")
}

func (repository *memoryUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	return repository.find(func(user *User) bool { return user.Email == email })
}

func (repository *memoryUserRepository) FindByResetTokenHash(_ context.Context, tokenHash string, now time.Time) (*User, error) {
	return repository.find(func(user *User) bool {
		return user.ResetTokenHash == tokenHash && user.HasActiveResetToken(now)
	})
}

func (repository *memoryUserRepository) find(match func(*User) bool) (*User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.failing != nil {
		return nil, repository.failing
	}
	for _, user := range repository.users {
		if match(user) {
			return cloneUser(user), nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repository *memoryUserRepository) Create(_ context.Context, user *User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, existing := range repository.users {
		if existing.Email == user.Email {
			return apperr.Conflict("User with this email already exists")
		}
	}

	repository.nextID++
	now := time.Now().UTC()
	user.ID = fmt.Sprintf("%024x", repository.nextID)
	user.CreatedAt, user.UpdatedAt = now, now
	if user.CartData == nil {
		user.CartData = map[string]any{}
	}

	repository.users[user.ID] = cloneUser(user)
	return nil
}

func (repository *memoryUserRepository) UpdateRefreshTokenHash(_ context.Context, id, tokenHash string) error {
	return repository.update(id, func(user *User) bool {
		user.RefreshTokenHash = tokenHash
		return true
	})
}

func (repository *memoryUserRepository) RotateRefreshTokenHash(_ context.Context, id, currentHash, nextHash string) error {
	return repository.update(id, func(user *User) bool {
		if user.RefreshTokenHash != currentHash {
			return false
		}
		user.RefreshTokenHash = nextHash
		return true
	})
}

func (repository *memoryUserRepository) SetPasswordResetToken(_ context.Context, id, tokenHash string, expiresAt time.Time) error {
	return repository.update(id, func(user *User) bool {
		user.ResetTokenHash = tokenHash
		user.ResetTokenExpiresAt = &expiresAt
		return true
	})
}

func (repository *memoryUserRepository) ConsumePasswordResetToken(_ context.Context, id, tokenHash, passwordHash string, now time.Time) error {
	return repository.update(id, func(user *User) bool {
		if user.ResetTokenHash != tokenHash || !user.HasActiveResetToken(now) {
			return false
		}
		user.PasswordHash = passwordHash
		user.ResetTokenHash = ""
		user.ResetTokenExpiresAt = nil
		user.RefreshTokenHash = ""
		return true
	})
}

func (repository *memoryUserRepository) update(id string, apply func(*User) bool) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.failing != nil {
		return repository.failing
	}
	user, ok := repository.users[id]
	if !ok {
		return apperr.NotFound("User")
	}

	updated := cloneUser(user)
	if !apply(updated) {
		return apperr.NotFound("User")
	}
	updated.UpdatedAt = time.Now().UTC()
	repository.users[id] = updated
	return nil
}

func (repository *memoryUserRepository) Ping(context.Context) error {
	return repository.pingErr
}

// stored returns the raw record for assertions.
func (repository *memoryUserRepository) stored(id string) *User {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	return cloneUser(repository.users[id])
}

func (repository *memoryUserRepository) remove(id string) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	delete(repository.users, id)
}

func cloneUser(user *User) *User {
	if user == nil {
		return nil
	}
	clone := *user
	clone.CartData = maps.Clone(user.CartData)
	if user.ResetTokenExpiresAt != nil {
		expiresAt := *user.ResetTokenExpiresAt
		clone.ResetTokenExpiresAt = &expiresAt
	}
	return &clone
}
