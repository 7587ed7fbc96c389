// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the relational tables and columns so SQL in the
// repositories is assembled from one definition that mirrors data/migrations.
package schema

import "strings"

// UserAccountTable represents the 'users.account' table.
type UserAccountTable struct {
	Table               string
	ID                  string
	Name                string
	Email               string
	PasswordHash        string
	RefreshTokenHash    string
	ResetTokenHash      string
	ResetTokenExpiresAt string
	CartData            string
	CreatedAt           string
	UpdatedAt           string
}

// UserAccount is the schema definition for users.account.
var UserAccount = UserAccountTable{
	Table:               "users.account",
	ID:                  "id",
	Name:                "name",
	Email:               "email",
	PasswordHash:        "passwordhash",
	RefreshTokenHash:    "refreshtokenhash",
	ResetTokenHash:      "resettokenhash",
	ResetTokenExpiresAt: "resettokenexpiresat",
	CartData:            "cartdata",
	CreatedAt:           "createdat",
	UpdatedAt:           "updatedat",
}

// Columns returns all column names in scan order.
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Email, t.PasswordHash, t.RefreshTokenHash,
		t.ResetTokenHash, t.ResetTokenExpiresAt, t.CartData, t.CreatedAt, t.UpdatedAt,
	}
}

// SelectList returns the columns joined for a SELECT or RETURNING clause.
func (t UserAccountTable) SelectList() string {
	return strings.Join(t.Columns(), ", ")
}
