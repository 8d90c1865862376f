package errors

import (
	"context"
	"errors"
)

// Kind classifies a failure for reporting across a process boundary.
type Kind string

// Failure kinds.
const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindResourceExhausted Kind = "resource_exhausted"
	KindBackingStore      Kind = "backing_store"
	KindCanceled          Kind = "canceled"
)

// kindEntries maps sentinels to kinds. Order matters only for errors that
// wrap more than one sentinel; the first match wins.
//
//nolint:gochecknoglobals // Pre-built mapping
var kindEntries = []struct {
	err  error
	kind Kind
}{
	{ErrEmptyValue, KindValidation},
	{ErrValueOutOfRange, KindValidation},
	{ErrInvalidArgument, KindValidation},
	{ErrUnsafeScript, KindValidation},
	{ErrScriptTooLarge, KindValidation},
	{ErrNotADirectory, KindValidation},
	{ErrDirectoryNotFound, KindValidation},
	{ErrNotGitRepo, KindValidation},
	{ErrRepositoryNotManaged, KindValidation},
	{ErrDuplicateName, KindValidation},
	{ErrInvalidOutputFormat, KindValidation},
	{ErrNonInteractiveMode, KindValidation},

	{ErrWorkspaceNotFound, KindNotFound},
	{ErrExecutionNotFound, KindNotFound},
	{ErrTerminalNotFound, KindNotFound},
	{ErrRepositoryNotFound, KindNotFound},
	{ErrWorktreeNotFound, KindNotFound},
	{ErrScriptNotFound, KindNotFound},

	{ErrWorkspaceAlreadyArchived, KindConflict},
	{ErrWorkspaceNotArchived, KindConflict},
	{ErrWorkspacePathExists, KindConflict},
	{ErrInvalidTransition, KindConflict},
	{ErrTerminalAlreadyActive, KindConflict},
	{ErrTerminalNotActive, KindConflict},
	{ErrRepositoryExists, KindConflict},

	{ErrScriptCapReached, KindResourceExhausted},
	{ErrTerminalCapReached, KindResourceExhausted},
	{ErrTerminalInputUnavailable, KindResourceExhausted},
	{ErrLockTimeout, KindResourceExhausted},
}

// KindOf returns the Kind of err. Errors that match no sentinel are
// backing-store failures. A nil error has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}
	for _, entry := range kindEntries {
		if errors.Is(err, entry.err) {
			return entry.kind
		}
	}
	return KindBackingStore
}

// Failure is the value form of an error at the operation boundary.
type Failure struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return f.Message
}

// NewFailure converts err into a Failure. Returns nil for a nil error.
// The message keeps the full error chain text; the action comes from the
// user message table.
func NewFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	_, action := Actionable(err)
	return &Failure{
		Kind:    KindOf(err),
		Message: err.Error(),
		Action:  action,
	}
}
