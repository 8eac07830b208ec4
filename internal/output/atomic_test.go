package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageColocatesTemp(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "out.mp4")

	s, err := Stage(final)
	require.NoError(t, err)
	defer s.Discard()

	assert.Equal(t, dir, filepath.Dir(s.TempPath), "temp must live beside the final path for an atomic rename")
	assert.True(t, strings.HasPrefix(filepath.Base(s.TempPath), ".vsq-"))
	assert.FileExists(t, s.TempPath)
	assert.NoFileExists(t, final, "staging must not touch the final path")
}

func TestStageCreatesMissingDirectory(t *testing.T) {
	final := filepath.Join(t.TempDir(), "sub", "dir", "out.mp4")

	s, err := Stage(final)
	require.NoError(t, err)
	defer s.Discard()

	assert.FileExists(t, s.TempPath)
}

func TestCommitRenames(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "out.mp4")

	s, err := Stage(final)
	require.NoError(t, err)
	defer s.Discard()

	require.NoError(t, os.WriteFile(s.TempPath, []byte("encoded"), 0o644))
	require.NoError(t, s.Commit())

	assert.True(t, s.Committed())
	assert.NoFileExists(t, s.TempPath)
	data, err := os.ReadFile(final)
	require.NoError(t, err)
	assert.Equal(t, "encoded", string(data))

	// The deferred Discard after a successful commit must not remove the final file.
	s.Discard()
	assert.FileExists(t, final)
}

func TestDiscardRemovesTemp(t *testing.T) {
	s, err := Stage(filepath.Join(t.TempDir(), "out.mp4"))
	require.NoError(t, err)

	s.Discard()
	assert.NoFileExists(t, s.TempPath)
	assert.False(t, s.Committed())

	// Idempotent.
	s.Discard()
}

func TestCommitFailurePreservesTemp(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "blocked")
	// A non-empty directory at the final path makes the rename fail.
	require.NoError(t, os.MkdirAll(filepath.Join(final, "x"), 0o755))

	s, err := Stage(final)
	require.NoError(t, err)
	defer s.Discard()

	err = s.Commit()
	var cerr *CommitError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, s.TempPath, cerr.TempPath)
	assert.FileExists(t, s.TempPath, "failed commit must preserve the temporary file")

	// Cleanup must not delete the preserved temp either.
	s.Discard()
	assert.FileExists(t, s.TempPath)
}

func TestDoubleCommit(t *testing.T) {
	s, err := Stage(filepath.Join(t.TempDir(), "out.mp4"))
	require.NoError(t, err)
	require.NoError(t, s.Commit())
	assert.Error(t, s.Commit())
}
