// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/taibuivan/gravity/internal/platform/apperr"
	"github.com/taibuivan/gravity/internal/platform/constants"
	"github.com/taibuivan/gravity/internal/platform/ctxutil"
	"github.com/taibuivan/gravity/internal/platform/respond"
	"github.com/taibuivan/gravity/internal/platform/sec"
)

// TokenVerifier checks a raw token string and returns its claims.
//
// Defining it here decouples the middleware from [sec.TokenService], so
// handlers can be tested with a stub.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*sec.AuthClaims, error)
}

// AdminVerifier checks admin-scoped tokens.
type AdminVerifier interface {
	VerifyAdminToken(token string) (*sec.AuthClaims, error)
}

// Resolver loads the principal a set of verified claims refers to.
// A NotFound error rejects the request as unauthenticated.
type Resolver[T any] func(ctx context.Context, claims *sec.AuthClaims) (T, error)

// ExtractToken returns the session token carried by the request: the access
// token cookie first, then an "Authorization: Bearer" header.
func ExtractToken(request *http.Request) string {
	if cookie, err := request.Cookie(constants.AccessTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return BearerToken(request)
}

// BearerToken returns the token of an "Authorization: Bearer" header, or "".
func BearerToken(request *http.Request) string {
	authHeader := request.Header.Get(constants.HeaderAuthorization)
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireSession authenticates the request with an access token and then
// re-reads the principal through resolve, so a deleted account is rejected
// even while its token is still within TTL.
//
// # Flow
//  1. Extract the token (cookie, then bearer header). Missing → 401.
//  2. Verify signature, kind and expiry. Failure → 401.
//  3. Resolve the principal. NotFound → 401; other errors propagate.
//  4. Inject claims and principal into the request context.
func RequireSession[T any](verifier TokenVerifier, resolve Resolver[T]) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Token presence
			token := ExtractToken(request)
			if token == "" {
				respond.Error(writer, request, apperr.Unauthorized("Unauthorized request"))
				return
			}

			// 2. Token verification
			claims, err := verifier.VerifyAccessToken(token)
			if err != nil {
				respond.Error(writer, request, tokenError(err))
				return
			}

			// 3. Principal lookup
			ctx := ctxutil.WithAuthClaims(request.Context(), claims)
			principal, err := resolve(ctx, claims)
			if err != nil {
				if apperr.HasCode(err, apperr.CodeNotFound) {
					err = apperr.Unauthorized("Invalid access token")
				}
				respond.Error(writer, request, err)
				return
			}

			// 4. Context injection
			ctx = ctxutil.WithIdentity(ctx, principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAdmin authenticates the request with an admin-scoped bearer token.
// The session cookie is ignored here, and user access tokens never pass
// since they are signed with another secret.
func RequireAdmin(verifier AdminVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			token := BearerToken(request)
			if token == "" {
				respond.Error(writer, request, apperr.Unauthorized("Unauthorized request"))
				return
			}

			claims, err := verifier.VerifyAdminToken(token)
			if err != nil || claims.Role != sec.RoleAdmin {
				respond.Error(writer, request, tokenError(err))
				return
			}

			next.ServeHTTP(writer, request.WithContext(ctxutil.WithAuthClaims(request.Context(), claims)))
		})
	}
}

// tokenError maps verifier failures to a client-facing 401.
func tokenError(err error) error {
	if errors.Is(err, sec.ErrTokenExpired) {
		return apperr.Unauthorized("Access token expired")
	}
	return apperr.Unauthorized("Invalid access token")
}
