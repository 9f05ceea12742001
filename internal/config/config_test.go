package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.NotNil(t, cfg)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.NotEmpty(t, cfg.BackendURL)
	assert.Equal(t, "pb_auth", cfg.AuthCookie)
	assert.Equal(t, "users", cfg.AuthCollection)
	assert.False(t, cfg.TestMode)
	assert.False(t, cfg.RequireLogin)
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("GARDENBOOK_LISTEN_ADDR", ":9000")
	t.Setenv("GARDENBOOK_BACKEND_URL", "https://pb.example.com")
	t.Setenv("GARDENBOOK_DB_PATH", "/custom/db.sqlite")
	t.Setenv("GARDENBOOK_SECURE_COOKIES", "true")
	t.Setenv("GARDENBOOK_TEST_MODE", "1")
	t.Setenv("GARDENBOOK_REQUIRE_LOGIN", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "https://pb.example.com", cfg.BackendURL)
	assert.Equal(t, "/custom/db.sqlite", cfg.DBPath)
	assert.True(t, cfg.SecureCookies)
	assert.True(t, cfg.TestMode)
	assert.True(t, cfg.RequireLogin)
}

func TestLoadRejectsEmptyBackendURL(t *testing.T) {
	t.Setenv("GARDENBOOK_BACKEND_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsMalformedBool(t *testing.T) {
	t.Setenv("GARDENBOOK_SECURE_COOKIES", "sometimes")

	_, err := Load()
	assert.Error(t, err)
}
