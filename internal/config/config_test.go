package config

import (
	"strings"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "local")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "disposal")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "disposal")
	t.Setenv("DB_SSLMODE", "")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_ISSUER", "")
	t.Setenv("JWT_AUDIENCE", "")
	t.Setenv("JWT_ACCESS_TTL", "")
}

func TestLoad_LocalDefaults(t *testing.T) {
	setBaseEnv(t)

	c, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected local sslmode default disable, got %q", c.DB.SSLMode)
	}
	if c.Auth.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("expected default access TTL, got %v", c.Auth.AccessTokenTTL)
	}
	if c.RedisEnabled() {
		t.Fatalf("expected redis disabled without REDIS_HOST")
	}
	if c.HTTPAddr() != ":8080" {
		t.Fatalf("unexpected http addr %q", c.HTTPAddr())
	}
}

func TestLoad_RedisOptionalButValidated(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "not-a-port")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for bad REDIS_PORT")
	}

	t.Setenv("REDIS_PORT", "6379")
	c, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !c.RedisEnabled() || c.RedisAddr() != "localhost:6379" {
		t.Fatalf("expected redis enabled at localhost:6379")
	}
}

func TestLoad_ProductionRequirements(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for missing production settings")
	}
	msg := err.Error()
	for _, want := range []string{"DB_SSLMODE", "JWT_ISSUER", "JWT_AUDIENCE"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %s in error, got %q", want, msg)
		}
	}
}

func TestLoad_RejectsUnknownEnv(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", "qa")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown APP_ENV")
	}
}
