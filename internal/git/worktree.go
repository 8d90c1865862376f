package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/CoderDKai/workhorse/internal/constants"
	"github.com/CoderDKai/workhorse/internal/ctxutil"
	whErrors "github.com/CoderDKai/workhorse/internal/errors"
)

// CreateWorktree adds a linked worktree at target and stamps name into its
// admin directory so it can later be found by name.
func (c *CLI) CreateWorktree(ctx context.Context, repoPath, name, target, branch string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("worktree name cannot be empty: %w", whErrors.ErrEmptyValue)
	}

	_, statErr := os.Stat(target)
	preexisting := statErr == nil

	var args []string
	if branch == "" {
		args = []string{"worktree", "add", "-b", name, target}
	} else {
		if !branchExists(ctx, repoPath, branch) {
			if err := c.CreateBranch(ctx, repoPath, branch, ""); err != nil {
				return fmt.Errorf("failed to create worktree '%s': %w", name, err)
			}
			log.Info().Str("branch", branch).Str("repo", repoPath).Msg("branch created from HEAD")
		}
		// --force lets the branch be checked out in several worktrees,
		// including the main one.
		args = []string{"worktree", "add", "--force", target, branch}
	}

	if _, err := RunCommand(ctx, repoPath, args...); err != nil {
		if !preexisting {
			_ = os.RemoveAll(target)
		}
		return fmt.Errorf("failed to create worktree '%s': %w", name, err)
	}

	if err := stampWorktreeName(ctx, target, name); err != nil {
		if _, rmErr := RunCommand(ctx, repoPath, "worktree", "remove", "--force", target); rmErr != nil {
			log.Warn().Err(rmErr).Str("path", target).Msg("failed to roll back unnamed worktree")
		}
		return fmt.Errorf("failed to create worktree '%s': %w", name, err)
	}

	return nil
}

// stampWorktreeName writes the marker file into the worktree's admin dir.
func stampWorktreeName(ctx context.Context, target, name string) error {
	gitDir, err := RunCommand(ctx, target, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return err
	}
	marker := filepath.Join(gitDir, constants.WorktreeNameMarker)
	if err := os.WriteFile(marker, []byte(name+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write worktree name marker: %w", err)
	}
	return nil
}

// adminEntry is one directory under <common>/worktrees.
type adminEntry struct {
	dir  string
	name string
	path string
}

// readAdminEntries lists the worktree admin directories of a repository.
// A missing worktrees directory yields no entries.
func readAdminEntries(ctx context.Context, repoPath string) ([]adminEntry, error) {
	commonDir, err := RunCommand(ctx, repoPath, "rev-parse", "--git-common-dir")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", whErrors.ErrNotGitRepo, err)
	}
	root := filepath.Join(absFrom(repoPath, commonDir), "worktrees")

	dirEntries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read worktree admin directory: %w", err)
	}

	entries := make([]adminEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !de.IsDir() {
			continue
		}
		dir := filepath.Join(root, de.Name())
		entry := adminEntry{dir: dir, name: de.Name()}

		if data, err := os.ReadFile(filepath.Join(dir, constants.WorktreeNameMarker)); err == nil { //#nosec G304 -- path inside the git dir
			if n := strings.TrimSpace(string(data)); n != "" {
				entry.name = n
			}
		}
		// gitdir holds "<worktree>/.git".
		if data, err := os.ReadFile(filepath.Join(dir, "gitdir")); err == nil { //#nosec G304 -- path inside the git dir
			entry.path = filepath.Dir(strings.TrimSpace(string(data)))
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ListWorktrees returns the linked worktrees of the repository. The main
// working tree is not included.
func (c *CLI) ListWorktrees(ctx context.Context, repoPath string) ([]Worktree, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	output, err := RunCommand(ctx, repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("failed to list worktrees: %w", err)
	}
	entries, err := readAdminEntries(ctx, repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list worktrees: %w", err)
	}

	listed := parseWorktreeList(output)
	if len(listed) > 0 {
		// The first porcelain entry is always the main working tree.
		listed = listed[1:]
	}

	for i := range listed {
		for _, e := range entries {
			if e.path != "" && samePath(e.path, listed[i].Path) {
				listed[i].Name = e.name
				break
			}
		}
		if listed[i].Name == "" {
			listed[i].Name = filepath.Base(listed[i].Path)
		}
	}
	return listed, nil
}

// RemoveWorktree removes the worktree called name, matching the stamped
// name first and the admin directory name second. A worktree whose
// directory is already gone is pruned instead.
func (c *CLI) RemoveWorktree(ctx context.Context, repoPath, name string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("worktree name cannot be empty: %w", whErrors.ErrEmptyValue)
	}

	entries, err := readAdminEntries(ctx, repoPath)
	if err != nil {
		return fmt.Errorf("failed to remove worktree '%s': %w", name, err)
	}

	var match *adminEntry
	for i := range entries {
		if entries[i].name == name || filepath.Base(entries[i].dir) == name {
			match = &entries[i]
			break
		}
	}
	if match == nil {
		return fmt.Errorf("failed to remove worktree '%s': %w", name, whErrors.ErrWorktreeNotFound)
	}

	if match.path == "" {
		return c.PruneWorktrees(ctx, repoPath)
	}
	if _, statErr := os.Stat(match.path); os.IsNotExist(statErr) {
		return c.PruneWorktrees(ctx, repoPath)
	}

	if _, err := RunCommand(ctx, repoPath, "worktree", "remove", "--force", match.path); err != nil {
		return fmt.Errorf("failed to remove worktree '%s': %w", name, err)
	}
	return nil
}

// PruneWorktrees drops admin entries of worktrees whose directory is gone.
func (c *CLI) PruneWorktrees(ctx context.Context, repoPath string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if _, err := RunCommand(ctx, repoPath, "worktree", "prune"); err != nil {
		return fmt.Errorf("failed to prune worktrees: %w", err)
	}
	return nil
}

// parseWorktreeList parses git worktree list --porcelain output.
func parseWorktreeList(output string) []Worktree {
	var worktrees []Worktree
	var current *Worktree

	for _, line := range strings.Split(output, "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			if current != nil {
				worktrees = append(worktrees, *current)
			}
			current = &Worktree{Path: strings.TrimPrefix(line, "worktree ")}
		case current == nil:
			continue
		case strings.HasPrefix(line, "HEAD "):
			current.Head = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch "):
			current.Branch = strings.TrimPrefix(line, "branch refs/heads/")
		case strings.HasPrefix(line, "prunable"):
			current.Prunable = true
		case strings.HasPrefix(line, "locked"):
			current.Locked = true
		}
	}

	if current != nil {
		worktrees = append(worktrees, *current)
	}
	return worktrees
}
