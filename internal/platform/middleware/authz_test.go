// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/gravity/internal/platform/apperr"
	"github.com/taibuivan/gravity/internal/platform/constants"
	"github.com/taibuivan/gravity/internal/platform/ctxutil"
	"github.com/taibuivan/gravity/internal/platform/middleware"
	"github.com/taibuivan/gravity/internal/platform/sec"
)

type stubVerifier struct {
	tokens map[string]*sec.AuthClaims
	err    error
}

func (s stubVerifier) VerifyAccessToken(token string) (*sec.AuthClaims, error) {
	return s.lookup(token)
}

func (s stubVerifier) VerifyAdminToken(token string) (*sec.AuthClaims, error) {
	return s.lookup(token)
}

func (s stubVerifier) lookup(token string) (*sec.AuthClaims, error) {
	if claims, ok := s.tokens[token]; ok {
		return claims, nil
	}
	if s.err != nil {
		return nil, s.err
	}
	return nil, sec.ErrTokenInvalid
}

type principal struct{ ID string }

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		header string
		want   string
	}{
		{"none", "", "", ""},
		{"cookie", "cookie-token", "", "cookie-token"},
		{"bearer", "", "Bearer header-token", "header-token"},
		{"lowercase scheme", "", "bearer header-token", "header-token"},
		{"cookie wins", "cookie-token", "Bearer header-token", "cookie-token"},
		{"wrong scheme", "", "Basic dXNlcjpwYXNz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				request.Header.Set(constants.HeaderAuthorization, tt.header)
			}

			assert.Equal(t, tt.want, middleware.ExtractToken(request))
		})
	}
}

func TestRequireSession(t *testing.T) {
	verifier := stubVerifier{tokens: map[string]*sec.AuthClaims{
		"good":    {UserID: "u1", Kind: sec.TokenAccess, Role: sec.RoleUser},
		"deleted": {UserID: "gone", Kind: sec.TokenAccess, Role: sec.RoleUser},
		"broken":  {UserID: "err", Kind: sec.TokenAccess, Role: sec.RoleUser},
	}}

	resolve := func(_ context.Context, claims *sec.AuthClaims) (principal, error) {
		switch claims.UserID {
		case "u1":
			return principal{ID: "u1"}, nil
		case "gone":
			return principal{}, apperr.NotFound("User")
		default:
			return principal{}, apperr.Internal(errors.New("store down"))
		}
	}

	var resolved principal
	handler := middleware.RequireSession[principal](verifier, resolve)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		resolved, _ = ctxutil.GetIdentity[principal](request.Context())
		writer.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"invalid token", "forged", http.StatusUnauthorized},
		{"account removed", "deleted", http.StatusUnauthorized},
		{"store failure", "broken", http.StatusInternalServerError},
		{"authenticated", "good", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				request.Header.Set(constants.HeaderAuthorization, "Bearer "+tt.token)
			}

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.want, recorder.Code)
		})
	}

	assert.Equal(t, "u1", resolved.ID)
}

func TestRequireSession_ExpiredToken(t *testing.T) {
	verifier := stubVerifier{err: sec.ErrTokenExpired}
	resolve := func(context.Context, *sec.AuthClaims) (principal, error) { return principal{}, nil }

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: "stale"})

	middleware.RequireSession[principal](verifier, resolve)(okHandler).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "expired")
}

func TestRequireAdmin(t *testing.T) {
	verifier := stubVerifier{tokens: map[string]*sec.AuthClaims{
		"admin": {UserID: "admin@gravity.app", Kind: sec.TokenAdmin, Role: sec.RoleAdmin},
		"user":  {UserID: "u1", Kind: sec.TokenAdmin, Role: sec.RoleUser},
	}}
	handler := middleware.RequireAdmin(verifier)(okHandler)

	for token, want := range map[string]int{
		"":      http.StatusUnauthorized,
		"user":  http.StatusUnauthorized,
		"other": http.StatusUnauthorized,
		"admin": http.StatusOK,
	} {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		if token != "" {
			request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
		}

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, want, recorder.Code, "token %q", token)
	}
}
