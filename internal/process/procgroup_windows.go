//go:build windows

package process

import (
	"errors"
	"os"
	"os/exec"
)

// ConfigureGroup is a no-op on Windows.
func ConfigureGroup(_ *exec.Cmd) {}

// KillGroup kills the process started by cmd. Children are not tracked on
// Windows.
func KillGroup(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
