package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapEnv(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestParseEnv(t *testing.T) {
	var c Config
	c.LoadDefaults()

	err := parseEnv(&c, mapEnv(map[string]string{
		"RECIPEBOOK_HTTP_ADDR":      ":9090",
		"RECIPEBOOK_SECRET_KEY":     "env-secret",
		"RECIPEBOOK_SESSION_STORE":  "redis",
		"RECIPEBOOK_TOKEN_VALIDITY": "90s",
		"RECIPEBOOK_S3_BUCKET":      "images",
		"RECIPEBOOK_ISSUER":         "",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", c.EndpointAddrHTTP)
	assert.Equal(t, "env-secret", c.SecretKey)
	assert.Equal(t, SessionStoreRedis, c.SessionStore)
	assert.Equal(t, 90*time.Second, c.TokenValidityDuration)
	assert.Equal(t, "images", c.S3Bucket)
	assert.Equal(t, "com.appRecetas", c.Issuer, "empty variables are ignored")
}

func TestParseEnv_BadDuration(t *testing.T) {
	var c Config
	c.LoadDefaults()

	err := parseEnv(&c, mapEnv(map[string]string{"RECIPEBOOK_HEALTH_CHECK_INTERVAL": "soon"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RECIPEBOOK_HEALTH_CHECK_INTERVAL")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("RECIPEBOOK_TEST_DOTENV=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("RECIPEBOOK_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv("RECIPEBOOK_TEST_DOTENV"))
}
