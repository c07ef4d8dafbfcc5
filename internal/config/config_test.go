package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blueprint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 1500*time.Millisecond, cfg.Assist.Delays.Fields)
	assert.Equal(t, 100, cfg.Assist.Load.ConcurrentUsers)
	assert.Equal(t, "APIService", cfg.Project.Service)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log:
  verbose: true
assist:
  seed: 42
  discard_stale: true
  delays:
    fields: 10ms
  load:
    concurrent_users: 5
    duration: 1m
project:
  package: shop
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Log.Verbose)
	assert.Equal(t, uint64(42), cfg.Assist.Seed)
	assert.True(t, cfg.Assist.DiscardStale)
	assert.Equal(t, 10*time.Millisecond, cfg.Assist.Delays.Fields)
	assert.Equal(t, 2*time.Second, cfg.Assist.Delays.Prompt, "unset keys keep defaults")
	assert.Equal(t, 5, cfg.Assist.Load.ConcurrentUsers)
	assert.Equal(t, time.Minute, cfg.Assist.Load.Duration)
	assert.Equal(t, "shop", cfg.Project.Package)
	assert.Equal(t, "APIService", cfg.Project.Service)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "project:\n  package: shop\n")
	t.Setenv("BLUEPRINT_PROJECT_PACKAGE", "store")
	t.Setenv("BLUEPRINT_JOURNAL_PATH", "/tmp/audit.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "store", cfg.Project.Package)
	assert.Equal(t, "/tmp/audit.db", cfg.Journal.Path)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := Load(writeConfig(t, "assist:\n  load:\n    concurrent_users: 0\n"))
	assert.ErrorContains(t, err, "invalid config")

	_, err = Load(writeConfig(t, "assist:\n  delays:\n    prompt: -1s\n"))
	assert.ErrorContains(t, err, "assist.delays.prompt")

	_, err = Load(writeConfig(t, "project:\n  service: \"\"\n"))
	assert.ErrorContains(t, err, "invalid config")
}

func TestProjectOptions(t *testing.T) {
	assert.Len(t, Default().Project.Options(), 2)
}
