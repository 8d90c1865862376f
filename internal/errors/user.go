package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing messages.
// Using a slice (not a map) because errors.Is() requires proper error chain traversal.
//
//nolint:gochecknoglobals // Pre-built mapping
var errorInfoEntries = []errorEntry{
	// ===================
	// Repository & Git
	// ===================
	{
		err: ErrRepositoryNotManaged,
		info: ErrorInfo{
			Message: "Repository is not managed by workhorse.",
			Action:  "Run 'workhorse repo add <path>' to start managing it.",
		},
	},
	{
		err: ErrNotGitRepo,
		info: ErrorInfo{
			Message: "Path is not a git repository.",
			Action:  "Point workhorse at the root of a git checkout.",
		},
	},
	{
		err: ErrGitOperation,
		info: ErrorInfo{
			Message: "A git command failed.",
			Action:  "Run with --verbose to see the git output.",
		},
	},
	{
		err: ErrRepositoryExists,
		info: ErrorInfo{
			Message: "Repository is already registered.",
		},
	},

	// ===================
	// Workspaces
	// ===================
	{
		err: ErrWorkspaceNotFound,
		info: ErrorInfo{
			Message: "Workspace not found.",
			Action:  "Run 'workhorse workspace list' to see available workspaces.",
		},
	},
	{
		err: ErrWorkspacePathExists,
		info: ErrorInfo{
			Message: "The workspace directory already exists.",
			Action:  "Choose another name or --base-path, or remove the directory.",
		},
	},
	{
		err: ErrWorkspaceAlreadyArchived,
		info: ErrorInfo{
			Message: "Workspace is already archived.",
			Action:  "Use 'workhorse workspace restore' to bring it back.",
		},
	},
	{
		err: ErrWorkspaceNotArchived,
		info: ErrorInfo{
			Message: "Only archived workspaces can be restored.",
		},
	},
	{
		err: ErrWorkspaceCorrupted,
		info: ErrorInfo{
			Message: "Workspace record could not be read.",
			Action:  "Delete the workspace with 'workhorse workspace delete' and create it again.",
		},
	},
	{
		err: ErrLockTimeout,
		info: ErrorInfo{
			Message: "Timed out waiting for the workspace store lock.",
			Action:  "Another workhorse process may be writing. Retry in a moment.",
		},
	},

	// ===================
	// Scripts
	// ===================
	{
		err: ErrUnsafeScript,
		info: ErrorInfo{
			Message: "Script contains a blocked command.",
			Action:  "Remove destructive commands from the script.",
		},
	},
	{
		err: ErrScriptTooLarge,
		info: ErrorInfo{
			Message: "Script content exceeds the size limit.",
			Action:  "Move the logic into a file in the repository and call it.",
		},
	},
	{
		err: ErrScriptCapReached,
		info: ErrorInfo{
			Message: "Too many scripts are running.",
			Action:  "Wait for a running script to finish and retry.",
		},
	},
	{
		err: ErrExecutionNotFound,
		info: ErrorInfo{
			Message: "Script execution not found.",
		},
	},

	// ===================
	// Terminals
	// ===================
	{
		err: ErrTerminalCapReached,
		info: ErrorInfo{
			Message: "Terminal session limit reached.",
			Action:  "Close unused terminals and clean up closed sessions.",
		},
	},
	{
		err: ErrTerminalNotFound,
		info: ErrorInfo{
			Message: "Terminal session not found.",
		},
	},
	{
		err: ErrTerminalNotActive,
		info: ErrorInfo{
			Message: "Terminal is not running.",
			Action:  "Start the terminal before sending commands.",
		},
	},

	// ===================
	// Input
	// ===================
	{
		err: ErrDirectoryNotFound,
		info: ErrorInfo{
			Message: "Working directory does not exist.",
		},
	},
	{
		err: ErrNotADirectory,
		info: ErrorInfo{
			Message: "Working directory is not a directory.",
		},
	},
	{
		err: ErrNonInteractiveMode,
		info: ErrorInfo{
			Message: "Confirmation required but no terminal is attached.",
			Action:  "Pass --force to skip the prompt.",
		},
	},
}

// errorInfoMap provides O(1) lookup for direct sentinel error matches.
//
//nolint:gochecknoglobals // Pre-built mapping
var errorInfoMap = buildErrorInfoMap()

func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error.
// It first tries a direct map lookup for unwrapped sentinel errors,
// then falls back to errors.Is() traversal for wrapped errors.
// Returns an ErrorInfo with the original error message if not found.
func getErrorInfo(err error) ErrorInfo {
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve the issue. The action is empty when
// there is nothing useful to suggest.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
