package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/CoderDKai/workhorse/internal/ctxutil"
	whErrors "github.com/CoderDKai/workhorse/internal/errors"
)

// branchFormat separates fields with NUL so branch names cannot collide
// with the delimiter.
const branchFormat = "%(refname:short)%00%(upstream:short)%00%(objectname)%00%(HEAD)"

// ListBranches returns the local branches of the repository at path.
func (c *CLI) ListBranches(ctx context.Context, path string) ([]Branch, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	out, err := RunCommand(ctx, path, "for-each-ref", "--format="+branchFormat, "refs/heads")
	if err != nil {
		return nil, fmt.Errorf("failed to list branches of '%s': %w", path, err)
	}
	return parseBranches(out), nil
}

func parseBranches(output string) []Branch {
	branches := []Branch{}
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Split(line, "\x00")
		if len(fields) < 4 || fields[0] == "" {
			continue
		}
		branches = append(branches, Branch{
			Name:     fields[0],
			Upstream: fields[1],
			Commit:   fields[2],
			IsHead:   strings.TrimSpace(fields[3]) == "*",
		})
	}
	return branches
}

// CreateBranch creates branch name from the start point from, or from HEAD
// when from is empty. The current checkout is not changed.
func (c *CLI) CreateBranch(ctx context.Context, path, name, from string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("branch name cannot be empty: %w", whErrors.ErrEmptyValue)
	}

	args := []string{"branch", "--", name}
	if from != "" {
		args = append(args, from)
	}
	if _, err := RunCommand(ctx, path, args...); err != nil {
		return fmt.Errorf("failed to create branch '%s': %w", name, err)
	}
	return nil
}

// CheckoutBranch switches the working tree at path to branch.
func (c *CLI) CheckoutBranch(ctx context.Context, path, branch string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if branch == "" {
		return fmt.Errorf("branch name cannot be empty: %w", whErrors.ErrEmptyValue)
	}
	if _, err := RunCommand(ctx, path, "checkout", branch, "--"); err != nil {
		return fmt.Errorf("failed to checkout branch '%s': %w", branch, err)
	}
	return nil
}

// branchExists reports whether refs/heads/name exists.
func branchExists(ctx context.Context, path, name string) bool {
	_, err := RunCommand(ctx, path, "rev-parse", "--verify", "--quiet", "refs/heads/"+name)
	return err == nil
}
