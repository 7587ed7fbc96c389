// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # Principal Roles

// UserRole identifies which kind of principal a token was issued to.
type UserRole string

const (
	// Configured operator account; never stored in the user store.
	RoleAdmin UserRole = "admin"

	// Registered account from the user store.
	RoleUser UserRole = "user"
)
