package export_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/c360studio/sparqlexport/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDatasetExactBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nobel_prizes.nt")
	body := []byte("<http://example.org/p> <http://example.org/name> \"Test\" .")

	require.NoError(t, export.WriteDataset(path, body))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestWriteDatasetTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nobel_prizes.nt")

	require.NoError(t, export.WriteDataset(path, []byte("a much longer first payload\n")))
	require.NoError(t, export.WriteDataset(path, []byte("short\n")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "short\n", string(got))
}

func TestWriteDatasetEmptyBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.nt")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	require.NoError(t, export.WriteDataset(path, nil))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestWriteDatasetMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does", "not", "exist", "out.nt")

	err := export.WriteDataset(path, []byte("data"))
	require.Error(t, err)
	assert.True(t, export.IsWriteError(err))
	assert.ErrorIs(t, err, os.ErrNotExist)

	var we *export.WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, path, we.Path)

	_, statErr := os.Stat(filepath.Dir(path))
	assert.True(t, os.IsNotExist(statErr), "parent directories must not be created")
}
