package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DB_DSN", "SESSION_STORE", "SESSION_TTL", "PASSWORD_MIN_LENGTH", "BCRYPT_COST", "COOKIE_SECURE"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "authentiq.db", cfg.DBDSN)
	assert.Equal(t, "sql", cfg.SessionStore)
	assert.Equal(t, 14*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 0, cfg.PasswordMinLength)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.False(t, cfg.CookieSecure)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_DSN", "postgres://u:p@localhost/db?sslmode=disable")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("PASSWORD_MIN_LENGTH", "8")
	t.Setenv("COOKIE_SECURE", "true")
	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "redis", cfg.SessionStore)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 8, cfg.PasswordMinLength)
	assert.True(t, cfg.CookieSecure)
}

func TestLoadInvalidFallsBack(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	t.Setenv("SESSION_TTL", "soon")
	t.Setenv("PASSWORD_MIN_LENGTH", "-3")
	t.Setenv("BCRYPT_COST", "abc")
	cfg := Load()
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 14*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 0, cfg.PasswordMinLength)
	assert.Equal(t, 12, cfg.BcryptCost)
}
