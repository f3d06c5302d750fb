package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":3000" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":3000")
	}
	if cfg.JWTIssuer != "user-management-api" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "user-management-api")
	}
	if cfg.JWTAccessTTL != "15m" {
		t.Errorf("JWTAccessTTL = %q, want %q", cfg.JWTAccessTTL, "15m")
	}
	if cfg.JWTRefreshTTL != "24h" {
		t.Errorf("JWTRefreshTTL = %q, want %q", cfg.JWTRefreshTTL, "24h")
	}
	if cfg.JWTVerifyTTL != "48h" {
		t.Errorf("JWTVerifyTTL = %q, want %q", cfg.JWTVerifyTTL, "48h")
	}
	if cfg.BcryptCost != 10 {
		t.Errorf("BcryptCost = %d, want 10", cfg.BcryptCost)
	}
	if cfg.RateLimitRPS != 10.0 {
		t.Errorf("RateLimitRPS = %v, want 10.0", cfg.RateLimitRPS)
	}
	if cfg.RateLimitBurst != 20 {
		t.Errorf("RateLimitBurst = %d, want 20", cfg.RateLimitBurst)
	}
	if cfg.IsProduction() {
		t.Error("IsProduction should default to false")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("JWT_ISSUER", "custom-issuer")
	os.Setenv("BCRYPT_COST", "14")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "custom-issuer")
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
}

func TestLoad_JWTSecretRequired(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err == nil {
		t.Fatal("Load should return error when JWT_SECRET is unset")
	}
	if cfg != nil {
		t.Error("Load should return nil config on error")
	}
	if err.Error() != "config: JWT_SECRET must be set" {
		t.Errorf("error = %q, want JWT_SECRET message", err.Error())
	}
}

func TestLoad_BcryptCostRange(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  int
		err   bool
	}{
		{"valid min", "4", 4, false},
		{"valid max", "31", 31, false},
		{"valid middle", "12", 12, false},
		{"too low", "3", 0, true},
		{"too high", "32", 0, true},
		{"zero", "0", 10, false}, // defaults to 10
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("JWT_SECRET", "test-secret")
			os.Setenv("BCRYPT_COST", tc.value)

			cfg, err := Load()
			if tc.err {
				if err == nil {
					t.Fatal("Load should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.BcryptCost != tc.want {
				t.Errorf("BcryptCost = %d, want %d", cfg.BcryptCost, tc.want)
			}
		})
	}
}

func TestTTLs(t *testing.T) {
	testCases := []struct {
		name   string
		envVar string
		value  string
		get    func(*Config) time.Duration
		want   time.Duration
	}{
		{"access valid", "JWT_ACCESS_TTL", "30m", (*Config).AccessTTL, 30 * time.Minute},
		{"access invalid", "JWT_ACCESS_TTL", "invalid", (*Config).AccessTTL, 15 * time.Minute},
		{"access zero", "JWT_ACCESS_TTL", "0", (*Config).AccessTTL, 15 * time.Minute},
		{"access negative", "JWT_ACCESS_TTL", "-5m", (*Config).AccessTTL, 15 * time.Minute},
		{"refresh valid", "JWT_REFRESH_TTL", "48h", (*Config).RefreshTTL, 48 * time.Hour},
		{"refresh invalid", "JWT_REFRESH_TTL", "invalid", (*Config).RefreshTTL, 24 * time.Hour},
		{"refresh negative", "JWT_REFRESH_TTL", "-1h", (*Config).RefreshTTL, 24 * time.Hour},
		{"verify valid", "JWT_VERIFY_TTL", "72h", (*Config).VerifyTTL, 72 * time.Hour},
		{"verify invalid", "JWT_VERIFY_TTL", "invalid", (*Config).VerifyTTL, 48 * time.Hour},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("JWT_SECRET", "test-secret")
			os.Setenv(tc.envVar, tc.value)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got := tc.get(cfg); got != tc.want {
				t.Errorf("TTL = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLoad_Production(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction should be true when APP_ENV=production")
	}
}
