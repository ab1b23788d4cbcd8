package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8082", cfg.Addr())
	assert.Equal(t, 0.8, cfg.ImportThreshold)
	assert.Equal(t, 1.0, cfg.ResolveThreshold)
	assert.Equal(t, "Australia/Sydney", cfg.Location().String())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9000\ncacheTTL: 2m\nimportWorkers: 8\nallowOrigins: [a.example, b.example]\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("IMPORT_WORKERS", "2")
	t.Setenv("SEED_FILE", "fixtures/seed.yaml")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 2, cfg.ImportWorkers, "env wins over file")
	assert.Equal(t, []string{"a.example", "b.example"}, cfg.AllowOrigins)
	assert.Equal(t, "fixtures/seed.yaml", cfg.SeedFile)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "http")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")

	t.Setenv("PORT", "8080")
	t.Setenv("IMPORT_THRESHOLD", "1.5")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("IMPORT_THRESHOLD", "")
	t.Setenv("TIME_ZONE", "Mars/Olympus")
	_, err = Load()
	require.Error(t, err)
}
