package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadJSONMissingFileKeepsDefault(t *testing.T) {
	v := map[string]int{"default": 1}
	found, err := LoadJSON(filepath.Join(t.TempDir(), "nope.json"), &v)

	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, map[string]int{"default": 1}, v)
}

func TestSaveJSONOverwritesWholeDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "doc.json")

	require.NoError(t, SaveJSON(path, map[string]int{"a": 1, "b": 2}))
	require.NoError(t, SaveJSON(path, map[string]int{"c": 3}))

	var got map[string]int
	found, err := LoadJSON(path, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, map[string]int{"c": 3}, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestLoadJSONRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	var v map[string]int
	_, err := LoadJSON(path, &v)
	assert.Error(t, err)
}
