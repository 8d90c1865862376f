package git

// Repository describes the git layout around a path.
type Repository struct {
	// TopLevel is the working tree root. Empty for bare repositories.
	TopLevel string `json:"top_level,omitempty"`

	// GitDir is the absolute git directory of this working tree.
	GitDir string `json:"git_dir"`

	// CommonDir is the git directory shared by all worktrees.
	CommonDir string `json:"common_dir"`

	IsBare bool `json:"is_bare"`

	// IsWorktree is true for linked worktrees.
	IsWorktree bool `json:"is_worktree"`
}

// RepositoryState reports an operation in progress.
type RepositoryState string

// Repository states.
const (
	StateClean      RepositoryState = "clean"
	StateMerge      RepositoryState = "merge"
	StateRebase     RepositoryState = "rebase"
	StateCherryPick RepositoryState = "cherry_pick"
	StateRevert     RepositoryState = "revert"
	StateBisect     RepositoryState = "bisect"
)

// Status represents the current state of a git working tree.
type Status struct {
	Branch string          `json:"branch"`
	Dirty  bool            `json:"dirty"`
	Ahead  int             `json:"ahead"`
	Behind int             `json:"behind"`
	Files  []FileStatus    `json:"files"`
	State  RepositoryState `json:"state"`
}

// FileStatus is one changed path from git status.
type FileStatus struct {
	Path    string `json:"path"`
	OldPath string `json:"old_path,omitempty"`

	// Status is the two-letter porcelain code, such as " M" or "??".
	Status string `json:"status"`

	Staged   bool `json:"staged"`
	Modified bool `json:"modified"`
	New      bool `json:"new"`
	Deleted  bool `json:"deleted"`
}

// Branch is a local branch.
type Branch struct {
	Name     string `json:"name"`
	Upstream string `json:"upstream,omitempty"`
	Commit   string `json:"commit"`
	IsHead   bool   `json:"is_head"`
}

// Worktree is a linked worktree of a repository.
type Worktree struct {
	// Name is the workhorse name stamped at creation, or the git admin
	// directory name for worktrees created elsewhere.
	Name     string `json:"name"`
	Path     string `json:"path"`
	Branch   string `json:"branch,omitempty"`
	Head     string `json:"head,omitempty"`
	Locked   bool   `json:"locked"`
	Prunable bool   `json:"prunable"`
}
