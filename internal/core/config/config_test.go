package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_DefaultsAndFile(t *testing.T) {
	p := writeConfig(t, `
app:
  env: production
jwt:
  secret: file-secret-at-least-16
db:
  driver: sqlite
  dsn: "file::memory:"
`)
	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "production", c.App.Env)
	assert.True(t, c.App.Prod())
	assert.False(t, c.App.Dev())
	assert.Equal(t, 4000, c.App.HTTP.Port)
	assert.Equal(t, 60, c.JWT.AccessTokenTTLMin)
	assert.Equal(t, "token", c.Auth.CookieName)
	assert.Equal(t, "admin@admin", c.Auth.AdminEmail)
	assert.Equal(t, int64(10<<20), c.Upload.MaxBytes)
	assert.Equal(t, "sqlite", c.DB.Driver)
	// session secret falls back to the jwt secret
	assert.Equal(t, "file-secret-at-least-16", c.Session.Secret)
}

func TestLoad_EnvOverrides(t *testing.T) {
	p := writeConfig(t, `
jwt:
  secret: file-secret-at-least-16
auth:
  adminEmail: root@example.com
`)
	t.Setenv("APP_JWT_SECRET", "env-secret-at-least-16-chars")
	t.Setenv("APP_AUTH_ADMINEMAIL", "boss@example.com")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "env-secret-at-least-16-chars", c.JWT.Secret)
	assert.Equal(t, "boss@example.com", c.Auth.AdminEmail)
}

func TestLoad_RejectsShortSecret(t *testing.T) {
	p := writeConfig(t, "jwt:\n  secret: short\n")
	_, err := Load(p)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
