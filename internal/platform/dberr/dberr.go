// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// Both supported stores are classified here so repositories stay symmetric:
// a missing row or document is NotFound, a unique-index violation is Conflict,
// anything else is Internal.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/taibuivan/gravity/internal/platform/apperr"
)

// IsNotFound reports whether err means the queried row/document doesn't exist.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, mongo.ErrNoDocuments) ||
		apperr.HasCode(err, apperr.CodeNotFound)
}

// IsUniqueViolation reports whether err is a unique constraint/index violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return mongo.IsDuplicateKeyError(err)
}

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	// 1. Already classified
	if apperr.IsAppError(err) {
		return err
	}

	// 2. Not Found mapping
	if IsNotFound(err) {
		return apperr.NotFound(resource)
	}

	// 3. Unique index / constraint
	if IsUniqueViolation(err) {
		appErr := apperr.Conflict(resource + " already exists")
		appErr.Cause = err
		return appErr
	}

	// 4. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}
