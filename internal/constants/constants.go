// Package constants provides centralized constant values used throughout workhorse.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Script execution limits.
const (
	// MaxConcurrentExecutions is the default cap on scripts in the running state.
	MaxConcurrentExecutions = 5

	// MaxScriptContentLength is the default maximum number of characters in a script body.
	MaxScriptContentLength = 10000

	// DefaultShell is the shell used for scripts and terminal sessions.
	DefaultShell = "sh"

	// ScriptTempPattern is the os.CreateTemp pattern for script bodies written
	// into the working directory.
	ScriptTempPattern = ".workhorse-script-*.sh"
)

// Terminal session limits.
const (
	// MaxTerminalSessions is the default cap on tracked terminal sessions.
	// Closed sessions count until they are cleaned up.
	MaxTerminalSessions = 10

	// MaxTerminalHistory is the default scrollback size per session.
	MaxTerminalHistory = 1000

	// HistoryEvictBatch is the number of records dropped when history overflows.
	HistoryEvictBatch = 100

	// TerminalInputBuffer is the default capacity of a session's input channel.
	TerminalInputBuffer = 256

	// TerminalOutputBuffer is the default capacity of a session's output channel.
	TerminalOutputBuffer = 4096

	// TerminalCloseTimeout bounds the wait for a killed shell to be reaped.
	TerminalCloseTimeout = 5 * time.Second

	// ScannerBufferSize is the maximum line length read from a child process.
	ScannerBufferSize = 1024 * 1024
)

// Workspace settings.
const (
	// WorktreeNamePrefix prefixes the git worktree name derived from a workspace id.
	WorktreeNamePrefix = "ws-"

	// WorktreeIDLength is the number of workspace id characters used in worktree names.
	WorktreeIDLength = 8

	// ArchiveReasonField is the custom field holding the reason given at archive time.
	ArchiveReasonField = "archive_reason"

	// DefaultReconcileWorkers bounds concurrent health probes in a bulk reconcile.
	DefaultReconcileWorkers = 4

	// MaxNameLength is the maximum length of workspace and terminal names.
	MaxNameLength = 255
)

// Lock settings for the file-backed workspace store.
const (
	// LockTimeout is the maximum duration to wait for the store lock.
	LockTimeout = 5 * time.Second

	// LockRetryInterval is the wait between lock attempts.
	LockRetryInterval = 50 * time.Millisecond
)

// HTTP server defaults.
const (
	// DefaultListenAddr is the address the API server binds to.
	DefaultListenAddr = "127.0.0.1:7878"

	// DefaultReadTimeout is the HTTP server read timeout.
	DefaultReadTimeout = 10 * time.Second

	// DefaultWriteTimeout is the HTTP server write timeout. Script execution
	// requests block until the script finishes, so this is generous.
	DefaultWriteTimeout = 30 * time.Minute

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout = 5 * time.Second
)

// Log rotation settings for the CLI log file.
const (
	LogMaxSizeMB  = 10
	LogMaxBackups = 3
	LogMaxAgeDays = 28
	LogCompress   = true
)
