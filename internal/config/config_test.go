package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "lineage_cache.json", cfg.CachePath)
	assert.False(t, cfg.RemoteEnabled)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.NoError(t, err)
}

func TestLoadReadsTOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lineage.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[cache]
path = "/var/lib/lineage/cache.json"

[remote]
enabled = true
bucket = "lineage-bucket"
blob_path = "cache/latest.json"
project = "analytics"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/lineage/cache.json", cfg.CachePath)
	assert.True(t, cfg.RemoteEnabled)
	assert.Equal(t, "lineage-bucket", cfg.RemoteBucket)
}

func TestWriteDefaultConfigProducesTOML(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, WriteDefaultConfig(&buf))
	assert.Contains(t, buf.String(), "[cache]")
	assert.Contains(t, buf.String(), "lineage_cache.json")
}
