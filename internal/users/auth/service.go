// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/gravity/internal/platform/apperr"
	"github.com/taibuivan/gravity/internal/platform/constants"
	"github.com/taibuivan/gravity/internal/platform/ctxutil"
	"github.com/taibuivan/gravity/internal/platform/mailer"
	"github.com/taibuivan/gravity/internal/platform/sec"
	"github.com/taibuivan/gravity/internal/platform/validate"
)

// # Contracts & Types

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	HashPassword(plain string) (string, error)
	CheckPasswordHash(plain, hash string) bool
	BurnCheck(plain string) bool
}

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	Issue(kind sec.TokenKind, identity sec.Identity) (string, time.Time, error)
	Verify(kind sec.TokenKind, token string) (*sec.AuthClaims, error)
}

var (
	errInvalidCredentials      = apperr.Unauthorized("Invalid email or password")
	errInvalidAdminCredentials = apperr.Unauthorized("Invalid admin credentials")
	errInvalidRefreshToken     = apperr.Unauthorized("Invalid or expired refresh token")
	errInvalidResetToken       = apperr.InvalidToken("Password reset token is invalid or has expired")
)

// Service implements the account and session use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, token
// issuance or reset-token handling must be reviewed with that in mind.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	mailer mailer.Sender
	policy Policy
	admin  AdminCredentials
	logger *slog.Logger
	now    func() time.Time

	// background tracks reset mail deliveries still in flight.
	background sync.WaitGroup
}

// ServiceDeps groups the collaborators of [Service].
type ServiceDeps struct {
	Users  UserRepository
	Hasher PasswordHasher
	Tokens TokenIssuer
	Mailer mailer.Sender
	Policy Policy
	Admin  AdminCredentials
	Logger *slog.Logger
}

// NewService constructs a [Service].
func NewService(deps ServiceDeps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		users:  deps.Users,
		hasher: deps.Hasher,
		tokens: deps.Tokens,
		mailer: deps.Mailer,
		policy: deps.Policy,
		admin:  deps.Admin,
		logger: logger,
		now:    time.Now,
	}
}

// Session is the outcome of a successful register, login or refresh.
type Session struct {
	User                  *User
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

// AdminSession is the outcome of a successful admin login.
type AdminSession struct {
	Email       string
	AccessToken string
	ExpiresAt   time.Time
}

// # Registration Flow

// RegisterInput holds the data required to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

/*
Register validates the input, hashes the password, persists the account and
starts a session for it.

Returns:
  - *Session: the created user plus fresh access and refresh tokens
  - error: VALIDATION_ERROR, CONFLICT on a registered email, or storage errors
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = NormalizeEmail(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, MaxNameLength).
		Required(FieldEmail, input.Email).
		MaxLen(FieldEmail, input.Email, MaxEmailLength).
		Email(FieldEmail, input.Email)
	service.validatePassword(validator, FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Friendly early exit. The unique index remains the authority for concurrent registrations.
	if _, err := service.users.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperr.Conflict("User with this email already exists")
	} else if !apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}

	passwordHash, err := service.hasher.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := &User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: passwordHash,
		CartData:     map[string]any{},
	}

	if err := service.users.Create(ctx, user); err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	return service.startSession(ctx, user)
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

/*
Login verifies the credentials and starts a session.

Unknown email and wrong password fail with the same error, and both paths
pay one bcrypt comparison.
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	input.Email = NormalizeEmail(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	user, err := service.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			service.hasher.BurnCheck(input.Password)
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	if !service.hasher.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, errInvalidCredentials
	}

	return service.startSession(ctx, user)
}

/*
Logout forgets the stored refresh token hash of the account.

It is idempotent. Access tokens already issued stay valid until they expire;
sessions are stateless.
*/
func (service *Service) Logout(ctx context.Context, userID string) error {
	err := service.users.UpdateRefreshTokenHash(ctx, userID, "")
	if err != nil && !apperr.HasCode(err, apperr.CodeNotFound) {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

// # Session Management

/*
RefreshSession implements refresh token rotation.

The refresh token must verify and match the hash stored on the account. The
stored hash is then swapped for the new token's hash with a compare-and-set,
so a refresh token can be spent once and a logged-out one never.
*/
func (service *Service) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, apperr.Unauthorized("Refresh token is required")
	}

	claims, err := service.tokens.Verify(sec.TokenRefresh, refreshToken)
	if err != nil {
		return nil, errInvalidRefreshToken
	}

	user, err := service.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, errInvalidRefreshToken
		}
		return nil, fmt.Errorf("auth_service_refresh_lookup_failed: %w", err)
	}

	if !sec.TokenHashEqual(refreshToken, user.RefreshTokenHash) {
		return nil, errInvalidRefreshToken
	}

	session, err := service.issueTokens(user)
	if err != nil {
		return nil, err
	}

	nextHash := sec.HashToken(session.RefreshToken)
	if err := service.users.RotateRefreshTokenHash(ctx, user.ID, user.RefreshTokenHash, nextHash); err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, errInvalidRefreshToken
		}
		return nil, fmt.Errorf("auth_service_refresh_rotate_failed: %w", err)
	}
	user.RefreshTokenHash = nextHash

	return session, nil
}

// ResolveSession re-reads the account a verified access token refers to.
// A removed account yields NOT_FOUND, which the session guard turns into 401.
func (service *Service) ResolveSession(ctx context.Context, claims *sec.AuthClaims) (*User, error) {
	user, err := service.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("auth_service_resolve_session_failed: %w", err)
	}
	return user, nil
}

// startSession issues a token pair and records the refresh token hash.
func (service *Service) startSession(ctx context.Context, user *User) (*Session, error) {
	session, err := service.issueTokens(user)
	if err != nil {
		return nil, err
	}

	refreshHash := sec.HashToken(session.RefreshToken)
	if err := service.users.UpdateRefreshTokenHash(ctx, user.ID, refreshHash); err != nil {
		return nil, fmt.Errorf("auth_service_store_refresh_token_failed: %w", err)
	}
	user.RefreshTokenHash = refreshHash

	return session, nil
}

func (service *Service) issueTokens(user *User) (*Session, error) {
	accessToken, accessExpiresAt, err := service.tokens.Issue(sec.TokenAccess, user.Identity())
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, refreshExpiresAt, err := service.tokens.Issue(sec.TokenRefresh, user.Identity())
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	return &Session{
		User:                  user,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExpiresAt,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: refreshExpiresAt,
	}, nil
}

// # Password Recovery

/*
ForgotPassword issues a reset token for the account and mails the link.

Only the SHA-256 of the token is stored. Unknown emails get the same nil
result unless the policy is strict, in which case NOT_FOUND is returned.
Mail delivery runs in the background and its failure is only logged.
*/
func (service *Service) ForgotPassword(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).Email(FieldEmail, email)
	if err := validator.Err(); err != nil {
		return err
	}

	user, err := service.users.FindByEmail(ctx, email)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			if service.policy.StrictForgotPassword {
				return apperr.NotFound("User")
			}
			return nil
		}
		return fmt.Errorf("auth_service_forgot_password_lookup_failed: %w", err)
	}

	resetToken, err := sec.NewResetToken(constants.ResetTokenBytes, service.now(), service.policy.ResetTokenTTL)
	if err != nil {
		return fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	if err := service.users.SetPasswordResetToken(ctx, user.ID, resetToken.Hash, resetToken.ExpiresAt); err != nil {
		return fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	message, err := mailer.PasswordResetMessage(user.Email, mailer.PasswordResetData{
		ProductName: constants.ProductName,
		ProductURL:  constants.ProductURL,
		Name:        user.Name,
		ResetLink:   strings.TrimRight(service.policy.ResetURL, "/") + "/" + resetToken.Plain,
		ExpiresIn:   humanizeDuration(service.policy.ResetTokenTTL),
	})
	if err != nil {
		return fmt.Errorf("auth_service_render_reset_mail_failed: %w", err)
	}

	service.dispatch(ctx, message)
	return nil
}

/*
ResetPassword redeems a reset token and sets a new password.

The token is matched by hash and expiry, then consumed in one conditional
update that also writes the new password hash. A token that is unknown,
expired or already spent fails with INVALID_OR_EXPIRED_TOKEN.
*/
func (service *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	validator := &validate.Validator{}
	service.validatePassword(validator, FieldNewPassword, newPassword)
	if err := validator.Err(); err != nil {
		return err
	}

	resetToken = strings.TrimSpace(resetToken)
	if resetToken == "" {
		return errInvalidResetToken
	}

	now := service.now()
	tokenHash := sec.HashToken(resetToken)

	user, err := service.users.FindByResetTokenHash(ctx, tokenHash, now)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return errInvalidResetToken
		}
		return fmt.Errorf("auth_service_reset_lookup_failed: %w", err)
	}

	passwordHash, err := service.hasher.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	if err := service.users.ConsumePasswordResetToken(ctx, user.ID, tokenHash, passwordHash, now); err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return errInvalidResetToken
		}
		return fmt.Errorf("auth_service_reset_password_failed: %w", err)
	}

	return nil
}

// # Administration

/*
AdminLogin checks the configured operator credentials and issues an
admin-scoped token.

Both fields are compared in constant time and every mismatch, including an
unconfigured admin, fails with the same error.
*/
func (service *Service) AdminLogin(ctx context.Context, email, password string) (*AdminSession, error) {
	if !service.admin.Enabled() {
		return nil, errInvalidAdminCredentials
	}

	emailMatch := secureEqual(NormalizeEmail(email), NormalizeEmail(service.admin.Email))
	passwordMatch := secureEqual(password, service.admin.Password)
	if !(emailMatch && passwordMatch) {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "admin_login_rejected")
		return nil, errInvalidAdminCredentials
	}

	adminEmail := NormalizeEmail(service.admin.Email)
	token, expiresAt, err := service.tokens.Issue(sec.TokenAdmin, sec.Identity{
		UserID: adminEmail,
		Email:  adminEmail,
		Name:   "Administrator",
		Role:   sec.RoleAdmin,
	})
	if err != nil {
		return nil, fmt.Errorf("auth_service_admin_token_failed: %w", err)
	}

	return &AdminSession{Email: adminEmail, AccessToken: token, ExpiresAt: expiresAt}, nil
}

// # Background Work

// Wait blocks until every background mail delivery has finished.
// Called during graceful shutdown.
func (service *Service) Wait() {
	service.background.Wait()
}

// dispatch sends message on a goroutine detached from the request lifetime.
func (service *Service) dispatch(ctx context.Context, message mailer.Message) {
	logger := ctxutil.GetLogger(ctx)
	if logger == slog.Default() {
		logger = service.logger
	}
	detached := context.WithoutCancel(ctx)

	service.background.Add(1)
	go func() {
		defer service.background.Done()

		sendCtx, cancel := context.WithTimeout(detached, constants.MailDispatchTimeout)
		defer cancel()

		if err := service.mailer.Send(sendCtx, message); err != nil {
			logger.ErrorContext(sendCtx, "password_reset_mail_failed",
				slog.String("to", message.To),
				slog.Any("error", err),
			)
			return
		}
		logger.InfoContext(sendCtx, "password_reset_mail_sent", slog.String("to", message.To))
	}()
}

// # Helpers

// validatePassword applies the password policy. bcrypt only reads the first
// 72 bytes, so anything longer is rejected instead of silently truncated.
func (service *Service) validatePassword(validator *validate.Validator, field, password string) {
	validator.Required(field, password).
		MinLen(field, password, service.policy.PasswordMinLength).
		MaxBytes(field, password, sec.MaxPasswordBytes)
}

// secureEqual compares fixed-size digests so neither content nor length leaks through timing.
func secureEqual(a, b string) bool {
	digestA := sha256.Sum256([]byte(a))
	digestB := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(digestA[:], digestB[:]) == 1
}

// humanizeDuration renders a TTL for the reset mail ("20 minutes", "1 hour").
func humanizeDuration(duration time.Duration) string {
	unit, count := "minute", int(duration.Round(time.Minute)/time.Minute)
	if count >= 60 && count%60 == 0 {
		unit, count = "hour", count/60
	}
	if count == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", count, unit)
}
