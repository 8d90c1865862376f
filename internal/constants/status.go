package constants

// WorkspaceStatus represents the state of a workspace.
// Status values use snake_case for JSON serialization compatibility.
type WorkspaceStatus string

// Workspace status constants.
//
//	Active ⇄ Broken (health reconciliation)
//	Active, Inactive, Broken → Archived (archive)
//	Archived → Active (restore)
const (
	// WorkspaceStatusActive indicates the worktree exists and is a valid git worktree.
	WorkspaceStatusActive WorkspaceStatus = "active"

	// WorkspaceStatusInactive indicates a workspace that is not in use.
	WorkspaceStatusInactive WorkspaceStatus = "inactive"

	// WorkspaceStatusArchived indicates the workspace was archived. Reconciliation
	// never overwrites this state.
	WorkspaceStatusArchived WorkspaceStatus = "archived"

	// WorkspaceStatusBroken indicates the worktree is missing or no longer a git worktree.
	WorkspaceStatusBroken WorkspaceStatus = "broken"
)

// String returns the string representation of the WorkspaceStatus.
func (s WorkspaceStatus) String() string {
	return string(s)
}

// Valid reports whether s is a known workspace status.
func (s WorkspaceStatus) Valid() bool {
	switch s {
	case WorkspaceStatusActive, WorkspaceStatusInactive, WorkspaceStatusArchived, WorkspaceStatusBroken:
		return true
	}
	return false
}

// WorkspaceStatuses returns all workspace statuses in display order.
func WorkspaceStatuses() []WorkspaceStatus {
	return []WorkspaceStatus{
		WorkspaceStatusActive,
		WorkspaceStatusInactive,
		WorkspaceStatusArchived,
		WorkspaceStatusBroken,
	}
}

// ExecutionStatus represents the state of a script execution.
type ExecutionStatus string

// Execution status constants.
//
//	Pending → Running → Completed | Failed
//	Pending, Running → Cancelled
const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// String returns the string representation of the ExecutionStatus.
func (s ExecutionStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no transition can leave s.
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionStatusCompleted || s == ExecutionStatusFailed || s == ExecutionStatusCancelled
}

// TerminalStatus represents the state of an interactive terminal session.
type TerminalStatus string

// Terminal status constants.
//
//	Inactive → Active → Closed
//	Active → Error (stdin pump failure)
const (
	TerminalStatusInactive TerminalStatus = "inactive"
	TerminalStatusActive   TerminalStatus = "active"
	TerminalStatusClosed   TerminalStatus = "closed"
	TerminalStatusError    TerminalStatus = "error"
)

// String returns the string representation of the TerminalStatus.
func (s TerminalStatus) String() string {
	return string(s)
}

// OutputType tags a terminal output record with its origin.
type OutputType string

// Output type constants.
const (
	OutputStdout OutputType = "stdout"
	OutputStderr OutputType = "stderr"
	OutputInput  OutputType = "input"
	OutputSystem OutputType = "system"
)

// String returns the string representation of the OutputType.
func (t OutputType) String() string {
	return string(t)
}
