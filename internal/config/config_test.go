package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "GIN_MODE", "DB_PATH", "CONTENT_PATH", "ADMIN_USERNAME", "ADMIN_PASSWORD", "SESSION_TTL", "VISITOR_RETENTION"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "data/portfolio.db", cfg.DBPath)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 365*24*time.Hour, cfg.VisitorRetention)

	user, pass, usedDefault := cfg.AdminCredentials()
	assert.Equal(t, "admin", user)
	assert.Equal(t, "admin123", pass)
	assert.True(t, usedDefault)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("ADMIN_USERNAME", "ullas")
	t.Setenv("ADMIN_PASSWORD", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)

	user, pass, usedDefault := cfg.AdminCredentials()
	assert.Equal(t, "ullas", user)
	assert.Equal(t, "s3cret", pass)
	assert.False(t, usedDefault)
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	_, err := Load()
	assert.Error(t, err)
}
