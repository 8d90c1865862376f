package workspace

import (
	"fmt"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/CoderDKai/workhorse/internal/constants"
	whErrors "github.com/CoderDKai/workhorse/internal/errors"
)

// TargetPath returns the worktree directory for a workspace called name:
// <base>/<repo-name>-<name>, where base defaults to the parent directory of
// the repository. The result never escapes base.
func TargetPath(repoPath, basePath, name string) (string, error) {
	repoName := filepath.Base(repoPath)
	if repoName == "." || repoName == string(filepath.Separator) {
		return "", fmt.Errorf("cannot derive a repository name from '%s': %w", repoPath, whErrors.ErrInvalidArgument)
	}

	base := basePath
	if base == "" {
		base = filepath.Dir(repoPath)
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base path '%s': %w", basePath, err)
	}

	target, err := securejoin.SecureJoin(base, repoName+"-"+name)
	if err != nil {
		return "", fmt.Errorf("failed to derive workspace path: %w: %w", whErrors.ErrInvalidArgument, err)
	}
	return target, nil
}

// WorktreeName returns the git worktree name of the workspace with id.
func WorktreeName(id string) string {
	short := id
	if len(short) > constants.WorktreeIDLength {
		short = short[:constants.WorktreeIDLength]
	}
	return constants.WorktreeNamePrefix + short
}
