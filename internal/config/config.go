// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :3000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTSecret is the HMAC signing secret for access and verification
	// tokens. Required; startup fails without it.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTIssuer is the iss claim.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// JWTRefreshTTL is the refresh session lifetime (e.g. "24h").
	JWTRefreshTTL string `mapstructure:"JWT_REFRESH_TTL"`
	// JWTVerifyTTL is the email verification token lifetime (e.g. "48h").
	JWTVerifyTTL string `mapstructure:"JWT_VERIFY_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 10.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// ResendAPIKey enables email delivery through Resend; when empty,
	// emails are logged instead.
	ResendAPIKey string `mapstructure:"RESEND_API_KEY"`
	// EmailFrom is the From address on outbound mail.
	EmailFrom string `mapstructure:"EMAIL_FROM"`
	// VerifyBaseURL is the link base for verification emails; the token is
	// appended as a query parameter.
	VerifyBaseURL string `mapstructure:"VERIFY_BASE_URL"`
	// RateLimitRPS is the per-client request budget per second; 0 disables
	// rate limiting.
	RateLimitRPS float64 `mapstructure:"RATE_LIMIT_RPS"`
	// RateLimitBurst is the per-client burst on top of RateLimitRPS.
	RateLimitBurst int `mapstructure:"RATE_LIMIT_BURST"`
	// Env is the application environment (e.g. "development", "production").
	// Production turns on Secure refresh cookies.
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":3000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "user-management-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "24h")
	v.SetDefault("JWT_VERIFY_TTL", "48h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("RESEND_API_KEY", "")
	v.SetDefault("EMAIL_FROM", "no-reply@localhost")
	v.SetDefault("VERIFY_BASE_URL", "http://localhost:3000/auth/verify-email")
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 10
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// RefreshTTL parses JWTRefreshTTL as a time.Duration. Returns 24h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTRefreshTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// VerifyTTL parses JWTVerifyTTL as a time.Duration. Returns 48h if unset or invalid.
func (c *Config) VerifyTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTVerifyTTL)
	if err != nil || d <= 0 {
		return 48 * time.Hour
	}
	return d
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
