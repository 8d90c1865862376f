// Package errors provides centralized error handling for workhorse.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
// Every sentinel belongs to exactly one Kind (see kind.go), which is how failures
// are reported across the CLI and HTTP boundaries.
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Validation errors. Rejected before any side effect.
var (
	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrValueOutOfRange indicates that a value is outside its accepted range or format.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrInvalidArgument indicates a malformed argument.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsafeScript indicates script content containing a deny-listed command.
	ErrUnsafeScript = errors.New("script contains a blocked command")

	// ErrScriptTooLarge indicates script content above the configured size cap.
	ErrScriptTooLarge = errors.New("script content too large")

	// ErrNotADirectory indicates a path that exists but is not a directory.
	ErrNotADirectory = errors.New("not a directory")

	// ErrDirectoryNotFound indicates a working directory that does not exist.
	ErrDirectoryNotFound = errors.New("directory does not exist")

	// ErrNotGitRepo indicates a path that is not inside a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrRepositoryNotManaged indicates a repository without a workhorse management folder.
	ErrRepositoryNotManaged = errors.New("repository is not managed by workhorse")

	// ErrDuplicateName indicates a name that is already taken.
	ErrDuplicateName = errors.New("name already in use")

	// ErrInvalidOutputFormat indicates an unknown --output value.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrNonInteractiveMode indicates that a confirmation is required but stdin is not a terminal.
	ErrNonInteractiveMode = errors.New("use --force in non-interactive mode")
)

// Not-found errors.
var (
	// ErrWorkspaceNotFound indicates an unknown workspace id.
	ErrWorkspaceNotFound = errors.New("workspace not found")

	// ErrExecutionNotFound indicates an unknown script execution id.
	ErrExecutionNotFound = errors.New("script execution not found")

	// ErrTerminalNotFound indicates an unknown terminal session id.
	ErrTerminalNotFound = errors.New("terminal session not found")

	// ErrRepositoryNotFound indicates a repository missing from the registry.
	ErrRepositoryNotFound = errors.New("repository not found")

	// ErrWorktreeNotFound indicates a git worktree that is not registered.
	ErrWorktreeNotFound = errors.New("worktree not found")

	// ErrScriptNotFound indicates an unknown named script in the repository config.
	ErrScriptNotFound = errors.New("script not found")
)

// Conflict errors. Rejected with no mutation.
var (
	// ErrWorkspaceAlreadyArchived indicates an archive request for an archived workspace.
	ErrWorkspaceAlreadyArchived = errors.New("workspace already archived")

	// ErrWorkspaceNotArchived indicates a restore request for a workspace that is not archived.
	ErrWorkspaceNotArchived = errors.New("workspace is not archived")

	// ErrWorkspacePathExists indicates that the derived workspace path is already on disk.
	ErrWorkspacePathExists = errors.New("workspace path already exists")

	// ErrInvalidTransition indicates a state change that the state machine does not allow.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrTerminalAlreadyActive indicates a start request for a running session.
	ErrTerminalAlreadyActive = errors.New("terminal already active")

	// ErrTerminalNotActive indicates input sent to a session that is not running.
	ErrTerminalNotActive = errors.New("terminal not active")

	// ErrRepositoryExists indicates a repository that is already registered.
	ErrRepositoryExists = errors.New("repository already registered")
)

// Resource-exhausted errors. Retryable later.
var (
	// ErrScriptCapReached indicates that the running-script cap is full.
	ErrScriptCapReached = errors.New("maximum concurrent script executions reached")

	// ErrTerminalCapReached indicates that the terminal session cap is full.
	ErrTerminalCapReached = errors.New("maximum terminal sessions reached")

	// ErrTerminalInputUnavailable indicates that a session's input channel is full or closed.
	ErrTerminalInputUnavailable = errors.New("terminal input channel unavailable")

	// ErrLockTimeout indicates that the store lock could not be acquired in time.
	ErrLockTimeout = errors.New("lock acquisition timeout")
)

// Backing-store errors. Version-control, filesystem and process failures.
var (
	// ErrGitOperation indicates that a git command failed.
	ErrGitOperation = errors.New("git operation failed")

	// ErrWorkspaceCorrupted indicates an unreadable workspace record.
	ErrWorkspaceCorrupted = errors.New("workspace state corrupted")

	// ErrStorage indicates a failure of the repository registry database.
	ErrStorage = errors.New("storage operation failed")

	// ErrProcessSpawn indicates that a child process could not be started.
	ErrProcessSpawn = errors.New("failed to start process")

	// ErrCommandFailed indicates that a script or command ran and exited non-zero.
	ErrCommandFailed = errors.New("command exited with non-zero status")
)

// Configuration errors.
var (
	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidScript indicates an invalid script configuration value.
	ErrConfigInvalidScript = errors.New("invalid script configuration")

	// ErrConfigInvalidTerminal indicates an invalid terminal configuration value.
	ErrConfigInvalidTerminal = errors.New("invalid terminal configuration")

	// ErrConfigInvalidWorkspace indicates an invalid workspace configuration value.
	ErrConfigInvalidWorkspace = errors.New("invalid workspace configuration")

	// ErrConfigInvalidServer indicates an invalid server configuration value.
	ErrConfigInvalidServer = errors.New("invalid server configuration")
)

// ErrJSONErrorOutput signals that an error was already written as JSON, so
// cobra should not print it again. The command still exits non-zero.
var ErrJSONErrorOutput = errors.New("error output as JSON")

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
