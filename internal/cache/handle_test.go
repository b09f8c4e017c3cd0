package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleReloadPublishesCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")
	require.NoError(t, os.WriteFile(path, []byte(flatFixture), 0o644))

	var onReloadCount int
	h := NewHandle(path, func(*Cache) { onReloadCount++ })
	assert.Nil(t, h.Current())

	require.NoError(t, h.Reload())
	require.NotNil(t, h.Current())
	assert.Len(t, h.Current().Objects, 1)
	assert.Equal(t, 1, onReloadCount)
}

func TestHandleReloadErrorOnMissingFile(t *testing.T) {
	h := NewHandle(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.Error(t, h.Reload())
	assert.Nil(t, h.Current())
}
