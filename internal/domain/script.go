package domain

import (
	"maps"
	"time"

	"github.com/CoderDKai/workhorse/internal/constants"
)

// ScriptExecution tracks one script run. Executions live only as long as
// the process that created them.
type ScriptExecution struct {
	ID               string                    `json:"id"`
	ScriptContent    string                    `json:"script_content"`
	WorkingDirectory string                    `json:"working_directory"`
	Environment      map[string]string         `json:"environment"`
	Status           constants.ExecutionStatus `json:"status"`
	CreatedAt        time.Time                 `json:"created_at"`
	StartTime        *time.Time                `json:"start_time,omitempty"`
	EndTime          *time.Time                `json:"end_time,omitempty"`
	ExitCode         *int                      `json:"exit_code,omitempty"`
	Stdout           string                    `json:"stdout"`
	Stderr           string                    `json:"stderr"`
}

// Clone returns a copy that shares no mutable state with e.
func (e *ScriptExecution) Clone() *ScriptExecution {
	c := *e
	c.Environment = maps.Clone(e.Environment)
	if e.StartTime != nil {
		t := *e.StartTime
		c.StartTime = &t
	}
	if e.EndTime != nil {
		t := *e.EndTime
		c.EndTime = &t
	}
	if e.ExitCode != nil {
		code := *e.ExitCode
		c.ExitCode = &code
	}
	return &c
}

// ExecutionResult is returned by a completed Execute call.
type ExecutionResult struct {
	ID         string `json:"id"`
	Success    bool   `json:"success"`
	ExitCode   *int   `json:"exit_code,omitempty"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	DurationMs int64  `json:"duration_ms"`
}
