// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gravity/internal/platform/apperr"
	"github.com/taibuivan/gravity/internal/platform/validate"
)

/*
TestValidator_Required covers the presence and length rules used for names
and passwords.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		wantField bool
	}{
		{"name_ok", "Ana", false},
		{"empty", "", true},
		{"whitespace_only", "   ", true},
		{"too_short", "ab", true},
		{"too_long", strings.Repeat("a", 11), true},
		{"max_length", strings.Repeat("a", 10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required("name", tt.value).
				MinLen("name", tt.value, 3).
				MaxLen("name", tt.value, 10)

			err := v.Err()
			if !tt.wantField {
				assert.Nil(t, err)
				return
			}

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, apperr.CodeValidation, ae.Code)
			assert.Equal(t, "name", ae.Details[0].Field)
		})
	}
}

/*
TestValidator_Email checks the email format validation rule.
*/
func TestValidator_Email(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		isValid bool
	}{
		{"valid_email", "test@example.com", true},
		{"valid_subdomain", "ana@mail.x.com", true},
		{"invalid_format", "invalid-email", false},
		{"missing_domain", "test@", false},
		{"no_tld", "test@localhost", false},
		{"display_name", "Ana <ana@x.com>", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Email("email", tt.email)

			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

func TestValidator_MaxBytes(t *testing.T) {
	v := &validate.Validator{}
	v.MaxBytes("password", "ééé", 5)
	assert.True(t, v.HasErrors())

	v = &validate.Validator{}
	v.MaxBytes("password", "abcde", 5)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	// Multi-rule validation
	err := v.
		Required("name", "ana").
		MinLen("name", "ana", 3).
		MaxLen("name", "ana", 10).
		Email("email", "ana@gravity.com").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("name", "").           // Fails
		MinLen("password", "a", 5).     // Fails
		Email("email", "not-an-email"). // Fails
		Custom("extra", false, "never").
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	// Should accumulate all 3 errors, first one becomes the headline
	assert.Len(t, ae.Details, 3)
	assert.Equal(t, "This field is required", ae.Message)
}
