package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsFromEnvTags(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("SMARTCAL_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, ".smartcal"), cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, ".smartcal", "calendar_events.log"), cfg.EventsFile)
	assert.Equal(t, filepath.Join(dir, ".smartcal", "api_key.json"), cfg.CredentialFile)
	assert.Equal(t, BackendJSON, cfg.Store.Backend)
	assert.Equal(t, "deepseek-chat", cfg.LLM.Model)
	assert.Equal(t, 4, cfg.LLM.Workers)
	assert.Equal(t, 2000, cfg.LLM.MaxTokens)
	assert.Equal(t, 500*time.Millisecond, cfg.Watcher.Interval)
}

func TestLoad_YAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `data_dir: ` + dir + `
store:
  backend: sqlite
llm:
  model: from-yaml
  workers: 2
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("SMARTCAL_CONFIG", path)
	t.Setenv("SMARTCAL_LLM_MODEL", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "from-env", cfg.LLM.Model)
	assert.Equal(t, 2, cfg.LLM.Workers)
	assert.Equal(t, filepath.Join(dir, "events.db"), cfg.Store.SQLitePath)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	t.Setenv("SMARTCAL_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := &Config{
		Store:   StoreConfig{Backend: "bolt"},
		LLM:     LLMConfig{Endpoint: "", Workers: 0, MaxTokens: 0, Temperature: 3},
		Watcher: WatcherConfig{Interval: 0},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.backend")
	assert.Contains(t, err.Error(), "llm.endpoint")
	assert.Contains(t, err.Error(), "llm.workers")
	assert.Contains(t, err.Error(), "llm.temperature")
	assert.Contains(t, err.Error(), "watcher.interval")
}

func TestInDir_KeepsAbsolutePaths(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "events.json")
	assert.Equal(t, abs, inDir("/elsewhere", abs))
	assert.Equal(t, filepath.Join("/data", "events.json"), inDir("/data", "events.json"))
}
