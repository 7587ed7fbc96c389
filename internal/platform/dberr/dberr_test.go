// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/taibuivan/gravity/internal/platform/apperr"
	"github.com/taibuivan/gravity/internal/platform/dberr"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"pg no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), apperr.CodeNotFound},
		{"mongo no documents", mongo.ErrNoDocuments, apperr.CodeNotFound},
		{"pg unique violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, apperr.CodeConflict},
		{"mongo duplicate key", mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}, apperr.CodeConflict},
		{"pg other", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, apperr.CodeInternal},
		{"plain", errors.New("connection reset"), apperr.CodeInternal},
		{"already classified", apperr.Unauthorized("nope"), apperr.CodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := dberr.Wrap(tt.err, "User")
			ae := apperr.As(wrapped)
			if assert.NotNil(t, ae) {
				assert.Equal(t, tt.code, ae.Code)
			}
		})
	}

	assert.NoError(t, dberr.Wrap(nil, "User"))
}
