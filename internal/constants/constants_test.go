package constants

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScriptLimits(t *testing.T) {
	assert.Equal(t, 5, MaxConcurrentExecutions)
	assert.Equal(t, 10000, MaxScriptContentLength)
	assert.Equal(t, "sh", DefaultShell)
}

func TestTerminalLimits(t *testing.T) {
	t.Run("history evicts in batches smaller than the cap", func(t *testing.T) {
		assert.Equal(t, 1000, MaxTerminalHistory)
		assert.Equal(t, 100, HistoryEvictBatch)
		assert.Less(t, HistoryEvictBatch, MaxTerminalHistory)
	})

	t.Run("session cap", func(t *testing.T) {
		assert.Equal(t, 10, MaxTerminalSessions)
	})

	t.Run("close timeout allows the reaper to finish", func(t *testing.T) {
		assert.GreaterOrEqual(t, TerminalCloseTimeout, time.Second)
	})
}

func TestLockConstants(t *testing.T) {
	assert.Equal(t, 5*time.Second, LockTimeout)
	assert.Less(t, LockRetryInterval, time.Second, "should retry quickly")
}

func TestWorkspaceStatus(t *testing.T) {
	for _, s := range WorkspaceStatuses() {
		assert.True(t, s.Valid(), s.String())
	}
	assert.False(t, WorkspaceStatus("paused").Valid())
	assert.Equal(t, "broken", WorkspaceStatusBroken.String())
}

func TestExecutionStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   ExecutionStatus
		terminal bool
	}{
		{ExecutionStatusPending, false},
		{ExecutionStatusRunning, false},
		{ExecutionStatusCompleted, true},
		{ExecutionStatusFailed, true},
		{ExecutionStatusCancelled, true},
	}

	for _, tc := range tests {
		t.Run(tc.status.String(), func(t *testing.T) {
			assert.Equal(t, tc.terminal, tc.status.IsTerminal())
		})
	}
}
