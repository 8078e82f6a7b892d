package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseJson(t *testing.T) {
	path := writeConfig(t, `{"server_url": "https://recipes.example.com", "request_timeout": "30s"}`)

	var got Config
	got.LoadDefaults()
	require.NoError(t, parseJson(&got, []string{"-config", path}))

	want := Config{
		ServerURL:      "https://recipes.example.com",
		DatabasePath:   "recipebook.db",
		RequestTimeout: 30 * time.Second,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseJson_Errors(t *testing.T) {
	var c Config
	assert.Error(t, parseJson(&c, []string{"-c", filepath.Join(t.TempDir(), "missing.json")}))
	assert.Error(t, parseJson(&c, []string{"-c", writeConfig(t, "{")}))
}

func TestLoad_FlagsOverrideJson(t *testing.T) {
	path := writeConfig(t, `{"server_url": "https://json.example.com:1", "database_path": "json.db"}`)

	cfg, err := load([]string{"-c", path, "-a", "https://flag.example.com:2"})
	require.NoError(t, err)
	assert.Equal(t, "https://flag.example.com:2", cfg.ServerURL)
	assert.Equal(t, "json.db", cfg.DatabasePath)
}
