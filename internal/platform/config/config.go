// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (store, token service, mailer) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported user store drivers.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

// # Configuration Schema

// Config holds all runtime configuration for the Gravity auth server.
type Config struct {

	// Server settings
	ServerPort  string `env:"PORT"         envDefault:"3000"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// StoreDriver selects the user record store: "mongo" or "postgres".
	StoreDriver string `env:"STORE_DRIVER" envDefault:"mongo"`

	// Document store (MongoDB)
	MongoURL      string `env:"MONGODB_URL"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"gravity"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Session token signing
	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET,required,notEmpty"`
	AccessTokenExpiry  time.Duration `env:"ACCESS_TOKEN_EXPIRY"  envDefault:"24h"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET,required,notEmpty"`
	RefreshTokenExpiry time.Duration `env:"REFRESH_TOKEN_EXPIRY" envDefault:"240h"`

	// Admin principal (not store-backed)
	AdminEmail       string        `env:"ADMIN_EMAIL"`
	AdminPassword    string        `env:"ADMIN_PASSWORD"`
	AdminTokenSecret string        `env:"ADMIN_TOKEN_SECRET"`
	AdminTokenExpiry time.Duration `env:"ADMIN_TOKEN_EXPIRY" envDefault:"1h"`

	// Credential policy
	PasswordMinLength    int           `env:"PASSWORD_MIN_LENGTH"    envDefault:"6"`
	BcryptCost           int           `env:"BCRYPT_COST"            envDefault:"10"`
	ResetTokenExpiry     time.Duration `env:"RESET_TOKEN_EXPIRY"     envDefault:"20m"`
	ForgotPasswordStrict bool          `env:"FORGOT_PASSWORD_STRICT" envDefault:"false"`

	// PasswordResetURL is the frontend page the reset token is appended to.
	PasswordResetURL string `env:"PASSWORD_RESET_URL" envDefault:"http://localhost:5173/reset-password"`

	// Cross-Origin Resource Sharing
	CORSOrigins []string `env:"CORS_ORIGIN" envSeparator:","`

	// Outgoing mail
	SMTP SMTP `envPrefix:"SMTP_"`
}

// SMTP contains the outgoing mail relay parameters.
type SMTP struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT"     envDefault:"465"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"     envDefault:"Gravity <no-reply@gravity.app>"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURL == "" {
			errs = append(errs, errors.New("MONGODB_URL is required for the mongo store"))
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	if c.AccessTokenSecret == c.RefreshTokenSecret {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ"))
	}

	if c.AdminEnabled() {
		if c.AdminTokenSecret == "" {
			errs = append(errs, errors.New("ADMIN_TOKEN_SECRET is required when ADMIN_EMAIL is set"))
		} else if c.AdminTokenSecret == c.AccessTokenSecret || c.AdminTokenSecret == c.RefreshTokenSecret {
			errs = append(errs, errors.New("ADMIN_TOKEN_SECRET must differ from the user token secrets"))
		}
	}

	if c.PasswordMinLength < 1 {
		errs = append(errs, errors.New("PASSWORD_MIN_LENGTH must be positive"))
	}

	for name, ttl := range map[string]time.Duration{
		"ACCESS_TOKEN_EXPIRY":  c.AccessTokenExpiry,
		"REFRESH_TOKEN_EXPIRY": c.RefreshTokenExpiry,
		"ADMIN_TOKEN_EXPIRY":   c.AdminTokenExpiry,
		"RESET_TOKEN_EXPIRY":   c.ResetTokenExpiry,
	} {
		if ttl <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AdminEnabled reports whether admin credentials are configured.
func (c *Config) AdminEnabled() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}

// AllowedOrigins returns the trimmed, non-empty CORS origins.
func (c *Config) AllowedOrigins() []string {
	origins := make([]string, 0, len(c.CORSOrigins))
	for _, origin := range c.CORSOrigins {
		if trimmed := strings.TrimRight(strings.TrimSpace(origin), "/"); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
