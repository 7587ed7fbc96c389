// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/gravity/internal/platform/apperr"
	"github.com/taibuivan/gravity/internal/platform/constants"
	"github.com/taibuivan/gravity/internal/platform/ctxutil"
	"github.com/taibuivan/gravity/internal/platform/middleware"
	requestutil "github.com/taibuivan/gravity/internal/platform/request"
	"github.com/taibuivan/gravity/internal/platform/respond"
)

// # Definitions & Constructors

// SessionVerifier verifies both user access tokens and admin tokens.
type SessionVerifier interface {
	middleware.TokenVerifier
	middleware.AdminVerifier
}

// CookiePolicy controls the attributes of the session cookies.
type CookiePolicy struct {
	Secure     bool
	SameSite   http.SameSite
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewCookiePolicy returns the cookie attributes for an environment: Secure
// and SameSite=Strict in production, SameSite=Lax elsewhere.
func NewCookiePolicy(production bool, accessTTL, refreshTTL time.Duration) CookiePolicy {
	policy := CookiePolicy{SameSite: http.SameSiteLaxMode, AccessTTL: accessTTL, RefreshTTL: refreshTTL}
	if production {
		policy.Secure = true
		policy.SameSite = http.SameSiteStrictMode
	}
	return policy
}

// Handler implements the /api/v1/auth endpoints.
type Handler struct {
	authService *Service
	verifier    SessionVerifier
	cookies     CookiePolicy
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, verifier SessionVerifier, cookies CookiePolicy) *Handler {
	return &Handler{authService: service, verifier: verifier, cookies: cookies}
}

// Routes returns a [chi.Router] with the authentication routes.
//
// # Endpoints
//   - POST /register                   : Creates an account.
//   - POST /login                      : Sets session cookies.
//   - POST /refresh-token              : Rotates the token pair.
//   - POST /forgot-password            : Mails a reset link.
//   - POST /reset-password/{resetToken}: Sets a new password.
//   - POST /logout                     : Session required.
//   - GET|POST /current-user           : Session required.
//   - POST /admin/login                : Configured admin credentials.
//   - GET /admin/session               : Admin token required.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh-token", handler.refreshToken)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password/{resetToken}", handler.resetPassword)
	router.Post("/admin/login", handler.adminLogin)

	// Session endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession[*User](handler.verifier, handler.authService.ResolveSession))
		r.Post("/logout", handler.logout)
		r.Get("/current-user", handler.currentUser)
		r.Post("/current-user", handler.currentUser)
	})

	// Admin endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(handler.verifier))
		r.Get("/admin/session", handler.adminSession)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

/*
register creates an account.

POST /api/v1/auth/register

Response:
  - 201: {user, accessToken, refreshToken}
  - 400: Validation failure
  - 409: Email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Register(request.Context(), RegisterInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, "User registered successfully", map[string]any{
		FieldUser:         session.User,
		FieldAccessToken:  session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
	})
}

/*
login authenticates with email and password.

POST /api/v1/auth/login

Response:
  - 200: {user}, accessToken and refreshToken cookies set
  - 401: Invalid email or password
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input credentialsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookies(writer, session)
	respond.OK(writer, "User logged in successfully", map[string]any{
		FieldUser: session.User,
	})
}

/*
logout forgets the refresh token and clears both cookies.

POST /api/v1/auth/logout
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	user, ok := ctxutil.GetIdentity[*User](request.Context())
	if !ok {
		respond.Error(writer, request, apperr.Unauthorized("Unauthorized request"))
		return
	}

	if err := handler.authService.Logout(request.Context(), user.ID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearSessionCookies(writer)
	respond.OK(writer, "User logged out successfully", map[string]any{})
}

/*
refreshToken rotates the token pair. The refresh token is read from the
refreshToken cookie, or from the JSON body for non-browser clients.

POST /api/v1/auth/refresh-token
*/
func (handler *Handler) refreshToken(writer http.ResponseWriter, request *http.Request) {
	token := ""
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil {
		token = cookie.Value
	}

	if token == "" {
		var input refreshTokenRequest
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, err)
			return
		}
		token = input.RefreshToken
	}

	session, err := handler.authService.RefreshSession(request.Context(), token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookies(writer, session)
	respond.OK(writer, "Access token refreshed", map[string]any{
		FieldAccessToken:  session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
	})
}

/*
forgotPassword mails a reset link.

POST /api/v1/auth/forgot-password

Response:
  - 200: Same answer whether or not the email is registered
  - 404: Unknown email, only with FORGOT_PASSWORD_STRICT
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ForgotPassword(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "If this email is registered, a password reset link has been sent", map[string]any{})
}

/*
resetPassword redeems a reset token.

POST /api/v1/auth/reset-password/{resetToken}

Response:
  - 200: Password updated
  - 400: INVALID_OR_EXPIRED_TOKEN or validation failure
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.authService.ResetPassword(request.Context(), requestutil.Param(request, FieldResetToken), input.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Password reset successfully", map[string]any{})
}

/*
currentUser returns the account resolved by the session guard.

GET|POST /api/v1/auth/current-user
*/
func (handler *Handler) currentUser(writer http.ResponseWriter, request *http.Request) {
	user, ok := ctxutil.GetIdentity[*User](request.Context())
	if !ok {
		respond.Error(writer, request, apperr.Unauthorized("Unauthorized request"))
		return
	}

	respond.OK(writer, "Current user fetched successfully", map[string]any{
		FieldUser: user,
	})
}

/*
adminLogin issues an admin token for the configured operator credentials.

POST /api/v1/auth/admin/login

Response:
  - 200: {adminEmail, accessToken, expiresAt}
  - 401: Invalid admin credentials
*/
func (handler *Handler) adminLogin(writer http.ResponseWriter, request *http.Request) {
	var input credentialsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.AdminLogin(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Admin logged in successfully", map[string]any{
		FieldAdminEmail:  session.Email,
		FieldAccessToken: session.AccessToken,
		FieldExpiresAt:   session.ExpiresAt,
	})
}

/*
adminSession echoes the admin principal of a valid admin token.

GET /api/v1/auth/admin/session
*/
func (handler *Handler) adminSession(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Admin session is active", map[string]any{
		FieldAdminEmail: claims.Email,
	})
}

// # Cookies

func (handler *Handler) setSessionCookies(writer http.ResponseWriter, session *Session) {
	http.SetCookie(writer, handler.cookie(constants.AccessTokenCookieName, session.AccessToken, handler.cookies.AccessTTL))
	http.SetCookie(writer, handler.cookie(constants.RefreshTokenCookieName, session.RefreshToken, handler.cookies.RefreshTTL))
}

func (handler *Handler) clearSessionCookies(writer http.ResponseWriter) {
	for _, name := range []string{constants.AccessTokenCookieName, constants.RefreshTokenCookieName} {
		cookie := handler.cookie(name, "", 0)
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
		http.SetCookie(writer, cookie)
	}
}

func (handler *Handler) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     constants.SessionCookiePath,
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   handler.cookies.Secure,
		SameSite: handler.cookies.SameSite,
	}
}
