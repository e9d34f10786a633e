package config

import (
	"testing"
	"time"
)

func TestFromEnvDevelopmentDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "")
	t.Setenv("TOKEN_TTL", "")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != defaultPort {
		t.Fatalf("expected port %s got %s", defaultPort, cfg.Port)
	}
	if cfg.JWTSecret != defaultDevJWTSecret {
		t.Fatalf("expected development secret fallback, got %q", cfg.JWTSecret)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Fatalf("expected 7d token ttl got %s", cfg.TokenTTL)
	}
	if cfg.Address() != ":7001" {
		t.Fatalf("unexpected address %s", cfg.Address())
	}
}

func TestFromEnvProductionRequiresBackends(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://localhost/buspass")
	t.Setenv("REDIS_URL", "")
	t.Setenv("JWT_SECRET", "s3cret")

	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected missing REDIS_URL error")
	}

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", "")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected missing JWT_SECRET error")
	}
}

func TestFromEnvDurations(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("IDEMPOTENCY_TTL", "90m")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("LOGIN_ATTEMPTS_PER_MINUTE", "9")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ShutdownPeriod != 3*time.Second {
		t.Fatalf("expected 3s shutdown got %s", cfg.ShutdownPeriod)
	}
	if cfg.IdempotencyTTL != 90*time.Minute {
		t.Fatalf("expected 90m idempotency ttl got %s", cfg.IdempotencyTTL)
	}
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("expected 1h token ttl got %s", cfg.TokenTTL)
	}
	if cfg.LoginAttempts != 9 {
		t.Fatalf("expected 9 login attempts got %d", cfg.LoginAttempts)
	}

	t.Setenv("TOKEN_TTL", "soon")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected invalid TOKEN_TTL error")
	}
}
