package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadTestConfig(t *testing.T) {
	assert := require.New(t)
	dataPath := t.TempDir()
	t.Setenv("DATA_PATH", dataPath)

	cfg, err := Load("test")
	assert.NoError(err, "could not load config")

	assert.Equal(4, cfg.GetWorkers())
	assert.Equal("8081", cfg.GetPort())
	assert.Equal("debug", cfg.GetLogLevel())
	assert.Equal(10*time.Second, cfg.GetConverterTimeout())
	assert.Equal([]string{"*.skip"}, cfg.GetExcludePatterns())
	assert.Equal(filepath.Join(dataPath, "index"), cfg.GetIndexPath())
	assert.Equal(filepath.Join(dataPath, "meta.db"), cfg.GetKVDBPath())
	assert.Equal(filepath.Join(dataPath, "logs"), cfg.GetLogDir())
}

func TestEnvironmentOverridesFile(t *testing.T) {
	assert := require.New(t)
	dataPath := t.TempDir()
	t.Setenv("DATA_PATH", dataPath)
	t.Setenv("WORKERS", "2")
	t.Setenv("SEARCH_LIMIT", "10")
	t.Setenv("COMMIT_INTERVAL", "50")
	t.Setenv("INDEX_PATH", "/var/tmp/rabbit-index")

	cfg, err := Load("test")
	assert.NoError(err, "could not load config")

	assert.Equal(2, cfg.GetWorkers())
	assert.Equal(10, cfg.GetSearchLimit())
	assert.Equal(50, cfg.GetCommitInterval())
	assert.Equal("/var/tmp/rabbit-index", cfg.GetIndexPath())
}

func TestDefaultsWithoutConfigFile(t *testing.T) {
	assert := require.New(t)
	t.Setenv("DATA_PATH", t.TempDir())

	cfg, err := Load("missing")
	assert.NoError(err, "a missing config file should fall back to defaults")

	assert.Equal(defaultWorkers, cfg.GetWorkers())
	assert.Equal(defaultSearchLimit, cfg.GetSearchLimit())
	assert.Equal(0, cfg.GetCommitInterval())
	assert.Equal(defaultConverterCommand, cfg.GetConverterCommand())
	assert.Equal(defaultPort, cfg.GetPort())
}
