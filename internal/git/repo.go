package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/CoderDKai/workhorse/internal/ctxutil"
	whErrors "github.com/CoderDKai/workhorse/internal/errors"
)

// IsRepository reports whether path is the top level of a git working tree.
// A directory nested inside some other repository does not count.
func (c *CLI) IsRepository(ctx context.Context, path string) bool {
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return false
	}
	toplevel, err := RunCommand(ctx, path, "rev-parse", "--show-toplevel")
	if err != nil {
		return false
	}
	return samePath(toplevel, path)
}

// Open inspects the repository containing path.
func (c *CLI) Open(ctx context.Context, path string) (*Repository, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	out, err := RunCommand(ctx, path, "rev-parse", "--is-bare-repository", "--absolute-git-dir", "--git-common-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to open repository '%s': %w: %w", path, whErrors.ErrNotGitRepo, err)
	}

	lines := strings.Split(out, "\n")
	if len(lines) < 3 {
		return nil, fmt.Errorf("failed to open repository '%s': unexpected rev-parse output: %w", path, whErrors.ErrGitOperation)
	}

	repo := &Repository{
		IsBare:    lines[0] == "true",
		GitDir:    lines[1],
		CommonDir: absFrom(path, lines[2]),
	}
	repo.IsWorktree = !samePath(repo.GitDir, repo.CommonDir)

	if !repo.IsBare {
		toplevel, err := RunCommand(ctx, path, "rev-parse", "--show-toplevel")
		if err != nil {
			return nil, fmt.Errorf("failed to open repository '%s': %w", path, err)
		}
		repo.TopLevel = toplevel
	}

	return repo, nil
}

// Init creates a repository at path, creating the directory when needed.
func (c *CLI) Init(ctx context.Context, path string, bare bool) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if err := os.MkdirAll(path, 0o750); err != nil {
		return fmt.Errorf("failed to create '%s': %w", path, err)
	}

	args := []string{"init"}
	if bare {
		args = append(args, "--bare")
	}
	if _, err := RunCommand(ctx, path, args...); err != nil {
		return fmt.Errorf("failed to init repository '%s': %w", path, err)
	}
	return nil
}

// Clone clones url into path. The parent of path is created when missing.
func (c *CLI) Clone(ctx context.Context, url, path string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if url == "" {
		return fmt.Errorf("clone url cannot be empty: %w", whErrors.ErrEmptyValue)
	}

	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, 0o750); err != nil {
		return fmt.Errorf("failed to create '%s': %w", parent, err)
	}
	if _, err := RunCommand(ctx, parent, "clone", "--", url, path); err != nil {
		return fmt.Errorf("failed to clone into '%s': %w", path, err)
	}
	return nil
}

// absFrom resolves p against base when it is relative.
func absFrom(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(base, p))
}

// samePath compares two paths after resolving symlinks, so /tmp and
// /private/tmp match on macOS.
func samePath(a, b string) bool {
	return canonical(a) == canonical(b)
}

func canonical(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
