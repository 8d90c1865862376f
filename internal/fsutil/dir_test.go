package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	whErrors "github.com/CoderDKai/workhorse/internal/errors"
)

func TestCheckDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), FilePerm))

	require.NoError(t, CheckDir(dir))
	require.ErrorIs(t, CheckDir(""), whErrors.ErrEmptyValue)
	require.ErrorIs(t, CheckDir(filepath.Join(dir, "missing")), whErrors.ErrDirectoryNotFound)
	require.ErrorIs(t, CheckDir(file), whErrors.ErrNotADirectory)
}
