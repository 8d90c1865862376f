// Package repository manages the repositories workhorse works on: the
// management folder kept inside each repository, the per-repository YAML
// configuration and the SQLite registry of managed repositories.
package repository

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/CoderDKai/workhorse/internal/constants"
	whErrors "github.com/CoderDKai/workhorse/internal/errors"
	"github.com/CoderDKai/workhorse/internal/fsutil"
)

const gitIgnoreContent = "# workhorse scratch files\ntemp/\nlogs/\n"

// layoutDirs are created under the management folder.
var layoutDirs = []string{
	constants.WorkspacesDir,
	constants.ConfigsDir,
	constants.ScriptsDir,
	constants.LogsDir,
	constants.TempDir,
}

// ManagementPath returns the management folder of repoPath.
func ManagementPath(repoPath string) string {
	return filepath.Join(repoPath, constants.ManagementDir)
}

// ConfigPath returns the repository configuration file of repoPath.
func ConfigPath(repoPath string) string {
	return filepath.Join(ManagementPath(repoPath), constants.ConfigsDir, constants.RepositoryConfigFileName)
}

// IsManaged reports whether repoPath carries a repository configuration file.
func IsManaged(repoPath string) bool {
	info, err := os.Stat(ConfigPath(repoPath))
	return err == nil && info.Mode().IsRegular()
}

// Initialize creates the management folder layout. Existing directories and
// files are left untouched, so calling it on a managed repository repairs
// missing pieces only.
func Initialize(repoPath string) (string, error) {
	root := ManagementPath(repoPath)

	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		return "", fmt.Errorf("failed to initialize '%s': %s exists: %w", repoPath, constants.ManagementDir, whErrors.ErrNotADirectory)
	}

	for _, dir := range layoutDirs {
		if err := os.MkdirAll(filepath.Join(root, dir), fsutil.DirPerm); err != nil {
			return "", fmt.Errorf("failed to create '%s' directory: %w", dir, err)
		}
	}

	ignorePath := filepath.Join(root, constants.GitIgnoreFileName)
	if !fsutil.Exists(ignorePath) {
		if err := fsutil.AtomicWrite(ignorePath, []byte(gitIgnoreContent), 0o644); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", constants.GitIgnoreFileName, err)
		}
	}

	return root, nil
}

// Purge removes the management folder of repoPath.
func Purge(repoPath string) error {
	if err := os.RemoveAll(ManagementPath(repoPath)); err != nil {
		return fmt.Errorf("failed to remove management folder of '%s': %w", repoPath, err)
	}
	return nil
}
