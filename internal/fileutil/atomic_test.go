package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendLineCreatesParents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "output", "nested", "game_result.log")

	require.NoError(t, AppendLine(path, "Game_1: Player score: 5, All scores: {}"))
	require.NoError(t, AppendLine(path, "Game_2: Player score: -5, All scores: {}"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Game_1: Player score: 5, All scores: {}\nGame_2: Player score: -5, All scores: {}\n", string(data))
}

func TestWriteFileAtomicTruncates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "game_result.log")
	require.NoError(t, AppendLine(path, "old"))

	require.NoError(t, WriteFileAtomic(path, nil, 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file left behind")
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	t.Parallel()

	err := WriteFileAtomic("/nonexistent/dir/game_result.log", []byte("x"), 0o644)
	require.Error(t, err)
}
