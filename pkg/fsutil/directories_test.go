package fsutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	require.NoError(t, EnsureDir(dir))
	assert.DirExists(t, dir)

	// idempotent
	assert.NoError(t, EnsureDir(dir))
}

func TestEnsureFileDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "deep", "path", "file.txt")
	require.NoError(t, EnsureFileDir(file))
	assert.DirExists(t, filepath.Dir(file))
	assert.NoFileExists(t, file)
}

func TestGetDownloadCacheDir(t *testing.T) {
	dir, err := GetDownloadCacheDir()
	require.NoError(t, err)
	assert.Equal(t, "downloads", filepath.Base(dir))
	assert.Contains(t, dir, AppName)
}
