// Package process runs child processes for the script engine and the
// terminal manager.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/CoderDKai/workhorse/internal/ctxutil"
	whErrors "github.com/CoderDKai/workhorse/internal/errors"
	"github.com/CoderDKai/workhorse/internal/logging"
)

// waitDelay bounds how long Wait keeps reading pipes after the process was
// killed, in case a grandchild still holds them open.
const waitDelay = 2 * time.Second

// Spec describes one child process.
type Spec struct {
	Name string
	Args []string
	Dir  string
	Env  map[string]string
}

// Result is the outcome of a finished process.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Success reports whether the process exited with status 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Command builds an *exec.Cmd for spec running in its own process group.
// Canceling ctx kills the whole group.
func Command(ctx context.Context, spec Spec) *exec.Cmd {
	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...) //#nosec G204 -- running user commands is the purpose of this package
	cmd.Dir = spec.Dir
	cmd.Env = MergeEnv(spec.Env)
	ConfigureGroup(cmd)
	cmd.Cancel = func() error { return KillGroup(cmd) }
	cmd.WaitDelay = waitDelay
	return cmd
}

// Run starts spec, waits for it and captures stdout and stderr separately.
// A non-zero exit is reported in Result, not as an error. Errors wrap
// ErrProcessSpawn when the process could not be started, or the context
// error when ctx ended first.
func Run(ctx context.Context, spec Spec) (*Result, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	cmd := Command(ctx, spec)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug().
		Str("dir", spec.Dir).
		Str("command", shellquote.Join(append([]string{spec.Name}, spec.Args...)...)).
		Dict("env", logging.EnvDict(spec.Env)).
		Msg("running process")

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start '%s': %w: %w", spec.Name, whErrors.ErrProcessSpawn, err)
	}

	waitErr := cmd.Wait()
	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if ctx.Err() != nil {
		res.ExitCode = -1
		return res, ctx.Err()
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return res, fmt.Errorf("failed to wait for '%s': %w: %w", spec.Name, whErrors.ErrProcessSpawn, waitErr)
		}
		res.ExitCode = exitErr.ExitCode()
	}
	return res, nil
}

// MergeEnv returns the current environment with env applied on top, in a
// stable order.
func MergeEnv(env map[string]string) []string {
	merged := os.Environ()
	if len(env) == 0 {
		return merged
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	// Later entries win in exec, but drop shadowed ones to keep the list clean.
	merged = slices.DeleteFunc(merged, func(kv string) bool {
		for _, k := range keys {
			if len(kv) > len(k) && kv[len(k)] == '=' && kv[:len(k)] == k {
				return true
			}
		}
		return false
	})
	for _, k := range keys {
		merged = append(merged, k+"="+env[k])
	}
	return merged
}
