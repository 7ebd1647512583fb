package ports_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridgeline/docxmit/internal/ports"
)

func TestOSFilesystemWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fs := ports.OSFilesystem{}
	path := filepath.Join(dir, "a.txt")

	require.NoError(t, fs.WriteFile(path, []byte("hello")))
	data, err := fs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	info, err := fs.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", info.Name)
	assert.False(t, info.IsDir)
}

func TestOSFilesystemGlobMkdirRenameRemove(t *testing.T) {
	dir := t.TempDir()
	fs := ports.OSFilesystem{}

	sub := filepath.Join(dir, "nested", "deeper")
	require.NoError(t, fs.MkdirAll(sub))
	info, err := fs.Stat(sub)
	require.NoError(t, err)
	assert.True(t, info.IsDir)

	src := filepath.Join(dir, "src.txt")
	require.NoError(t, fs.WriteFile(src, []byte("x")))
	matches, err := fs.Glob(filepath.Join(dir, "*.txt"))
	require.NoError(t, err)
	assert.Contains(t, matches, src)

	dest := filepath.Join(dir, "dest.txt")
	require.NoError(t, fs.Rename(src, dest))
	_, statErr := os.Stat(src)
	assert.True(t, os.IsNotExist(statErr))

	require.NoError(t, fs.Remove(dest))
	_, statErr = os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestOSFilesystemStatMissingReturnsError(t *testing.T) {
	fs := ports.OSFilesystem{}
	_, err := fs.Stat(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
