package ingest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkalu-dev/kyc-audit/internal/ingest"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.png"))
	touch(t, filepath.Join(root, "b.txt"))
	touch(t, filepath.Join(root, "nested", "c.jpeg"))
	touch(t, filepath.Join(root, ".hidden", "d.png"))
	touch(t, filepath.Join(root, ".e.png"))

	paths, stats, err := ingest.Discover(root, nil, true)
	require.NoError(t, err)

	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(root, "a.png"), paths[0])
	assert.Equal(t, filepath.Join(root, "nested", "c.jpeg"), paths[1])
	assert.EqualValues(t, 2, stats.Matched)
}

func TestDiscover_IncludesHiddenWhenAsked(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, ".e.png"))

	paths, _, err := ingest.Discover(root, nil, false)
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}

func TestDiscover_CustomExtensions(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.png"))
	touch(t, filepath.Join(root, "b.tif"))

	paths, _, err := ingest.Discover(root, []string{".TIF"}, true)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(root, "b.tif"), paths[0])
}

func TestDiscover_EmptyRoot(t *testing.T) {
	_, _, err := ingest.Discover("  ", nil, true)
	require.Error(t, err)
}
