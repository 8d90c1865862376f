package constants

// Directory names under the per-repository management folder.
const (
	// ManagementDir is the hidden folder created inside a managed repository.
	ManagementDir = ".workhorse"

	// WorkspacesDir holds one JSON record per workspace id.
	WorkspacesDir = "workspaces"

	// ConfigsDir holds repository configuration and the workspace index.
	ConfigsDir = "configs"

	// ScriptsDir holds repository script files.
	ScriptsDir = "scripts"

	// LogsDir holds log files, both per repository and in the global home.
	LogsDir = "logs"

	// TempDir holds scratch files that may be removed at any time.
	TempDir = "temp"
)

// File names used for state persistence.
const (
	// RepositoryConfigFileName marks a repository as managed.
	RepositoryConfigFileName = "repository.yaml"

	// WorkspaceIndexFileName is the derived workspace summary.
	WorkspaceIndexFileName = "workspace_index.json"

	// StoreLockFileName serializes writers of workspace records.
	StoreLockFileName = ".lock"

	// WorkspaceRecordExt is the extension of workspace record files.
	WorkspaceRecordExt = ".json"

	// GitIgnoreFileName is written inside the management folder.
	GitIgnoreFileName = ".gitignore"

	// WorktreeNameMarker is written into a git worktree admin directory to
	// record the workhorse worktree name.
	WorktreeNameMarker = "workhorse-name"
)

// Global home layout.
const (
	// WorkhorseHome is the hidden directory in the user's home.
	WorkhorseHome = ".workhorse"

	// HomeEnvVar overrides the global home directory.
	HomeEnvVar = "WORKHORSE_HOME"

	// GlobalConfigName is the global configuration file name.
	GlobalConfigName = "config.yaml"

	// RegistryFileName is the SQLite file listing managed repositories.
	RegistryFileName = "registry.db"

	// CLILogFileName is the rotating CLI log file.
	CLILogFileName = "workhorse.log"
)
