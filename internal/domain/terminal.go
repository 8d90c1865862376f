package domain

import (
	"maps"
	"slices"
	"time"

	"github.com/CoderDKai/workhorse/internal/constants"
)

// TerminalOutput is one line of terminal traffic.
type TerminalOutput struct {
	Timestamp  time.Time            `json:"timestamp"`
	Content    string               `json:"content"`
	OutputType constants.OutputType `json:"output_type"`
}

// TerminalSession is a snapshot of an interactive shell session.
// The process handle and channels are owned by the terminal manager and
// never leave it.
type TerminalSession struct {
	ID               string                   `json:"id"`
	Name             string                   `json:"name"`
	WorkingDirectory string                   `json:"working_directory"`
	Environment      map[string]string        `json:"environment"`
	Status           constants.TerminalStatus `json:"status"`
	CreatedAt        time.Time                `json:"created_at"`
	LastActivity     time.Time                `json:"last_activity"`
	OutputHistory    []TerminalOutput         `json:"output_history"`
}

// Clone returns a copy that shares no mutable state with s.
func (s *TerminalSession) Clone() *TerminalSession {
	c := *s
	c.Environment = maps.Clone(s.Environment)
	c.OutputHistory = slices.Clone(s.OutputHistory)
	return &c
}

// CommandSpec describes a one-shot command run outside any session.
type CommandSpec struct {
	Command          string            `json:"command"`
	Args             []string          `json:"args,omitempty"`
	WorkingDirectory string            `json:"working_directory"`
	Environment      map[string]string `json:"environment,omitempty"`
}
