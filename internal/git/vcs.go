package git

import "context"

// VersionControl is everything workhorse needs from a version-control system.
type VersionControl interface {
	// IsRepository reports whether path is the root of a git working tree.
	IsRepository(ctx context.Context, path string) bool

	Open(ctx context.Context, path string) (*Repository, error)
	Status(ctx context.Context, path string) (*Status, error)
	ListBranches(ctx context.Context, path string) ([]Branch, error)

	// CreateWorktree adds a worktree at target. With an empty branch a new
	// branch called name is created; otherwise branch is checked out,
	// created from HEAD when missing.
	CreateWorktree(ctx context.Context, repoPath, name, target, branch string) error
	ListWorktrees(ctx context.Context, repoPath string) ([]Worktree, error)
	RemoveWorktree(ctx context.Context, repoPath, name string) error
	PruneWorktrees(ctx context.Context, repoPath string) error

	CheckoutBranch(ctx context.Context, path, branch string) error
	CreateBranch(ctx context.Context, path, name, from string) error
	Init(ctx context.Context, path string, bare bool) error
	Clone(ctx context.Context, url, path string) error
}

// CLI implements VersionControl by running the git binary.
type CLI struct{}

// NewCLI returns a git CLI adapter.
func NewCLI() *CLI {
	return &CLI{}
}

var _ VersionControl = (*CLI)(nil)
