package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PROJECTFORGE_CONFIG_DIR", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, DefaultSession, cfg.Session)
	assert.False(t, cfg.Production())
}

func TestLoad_FileThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
api_url: "https://forge.example.com/"
environment: production
request_timeout: 30s
rate_limit:
  per_second: 2
  burst: 3
log:
  level: debug
  format: pretty
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("PROJECTFORGE_LOG_LEVEL", "warn")
	t.Setenv("PROJECTFORGE_SESSION", "ci")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://forge.example.com", cfg.APIURL, "trailing slash is trimmed")
	assert.True(t, cfg.Production())
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, RateLimit{PerSecond: 2, Burst: 3}, cfg.RateLimit)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "pretty", cfg.Log.Format)
	assert.Equal(t, "ci", cfg.Session)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	require.NoError(t, os.WriteFile(path, []byte("api_url: ftp://nope\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("environment: staging\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("api_url: [\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoad_BadEnvDuration(t *testing.T) {
	t.Setenv("PROJECTFORGE_CONFIG_DIR", t.TempDir())
	t.Setenv("PROJECTFORGE_REQUEST_TIMEOUT", "soon")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLogFile_DefaultsUnderConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PROJECTFORGE_CONFIG_DIR", dir)
	cfg := Default()
	p, err := cfg.LogFile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "logs", "projectforge.log"), p)
}
