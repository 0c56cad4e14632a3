package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestList(t *testing.T) {
	base := t.TempDir()
	previews := filepath.Join(base, "static", "qr_codes")
	downloads := filepath.Join(base, "downloads")

	now := time.Now()
	writeFile(t, filepath.Join(previews, "old.png"), now.Add(-2*time.Hour))
	writeFile(t, filepath.Join(downloads, "newest.svg"), now)
	writeFile(t, filepath.Join(previews, "middle.pdf"), now.Add(-time.Hour))
	writeFile(t, filepath.Join(previews, "notes.txt"), now)
	require.NoError(t, os.MkdirAll(filepath.Join(previews, "sub.png"), 0755))

	entries, err := List([]string{previews, downloads, filepath.Join(base, "missing")})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "newest.svg", entries[0].Name)
	assert.Equal(t, downloads, entries[0].Folder)
	assert.Equal(t, "middle.pdf", entries[1].Name)
	assert.Equal(t, "old.png", entries[2].Name)
	assert.Equal(t, int64(4), entries[2].Size)
	assert.Equal(t, filepath.Join(previews, "old.png"), entries[2].Path)
}

func TestList_NoDirs(t *testing.T) {
	entries, err := List(nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
