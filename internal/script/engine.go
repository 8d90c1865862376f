// Package script runs shell script bodies under an admission cap.
//
// Executions move through pending -> running -> completed | failed, and
// pending or running executions may be cancelled. Records are kept in
// memory until CleanupCompleted evicts them.
package script

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/CoderDKai/workhorse/internal/clock"
	"github.com/CoderDKai/workhorse/internal/config"
	"github.com/CoderDKai/workhorse/internal/constants"
	"github.com/CoderDKai/workhorse/internal/ctxutil"
	"github.com/CoderDKai/workhorse/internal/domain"
	whErrors "github.com/CoderDKai/workhorse/internal/errors"
	"github.com/CoderDKai/workhorse/internal/fsutil"
	"github.com/CoderDKai/workhorse/internal/logging"
	"github.com/CoderDKai/workhorse/internal/process"
)

// scriptFilePerm makes the temp file executable by its owner only.
const scriptFilePerm = 0o700

// Engine tracks script executions and runs them. Safe for concurrent use.
type Engine struct {
	mu         sync.Mutex
	executions map[string]*execution

	slots      *semaphore.Weighted
	maxContent int
	shell      string
	denyList   []string
	clock      clock.Clock
}

// execution pairs a record with the cancel function of its running process.
type execution struct {
	rec    *domain.ScriptExecution
	cancel context.CancelFunc
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock sets the clock used for timestamps.
func WithClock(c clock.Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// NewEngine creates an Engine. Zero values in cfg fall back to defaults.
func NewEngine(cfg config.ScriptConfig, opts ...EngineOption) *Engine {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = constants.MaxConcurrentExecutions
	}
	maxContent := cfg.MaxContentLength
	if maxContent <= 0 {
		maxContent = constants.MaxScriptContentLength
	}
	shell := cfg.Shell
	if shell == "" {
		shell = constants.DefaultShell
	}

	e := &Engine{
		executions: make(map[string]*execution),
		slots:      semaphore.NewWeighted(int64(maxConcurrent)),
		maxContent: maxContent,
		shell:      shell,
		denyList:   DenyList(cfg.DenyListExtra),
		clock:      clock.RealClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateExecution validates content and dir and stores a pending execution.
// Nothing is written to disk and no process is started.
func (e *Engine) CreateExecution(ctx context.Context, content, dir string, env map[string]string) (*domain.ScriptExecution, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if err := CheckContent(content, e.maxContent, e.denyList); err != nil {
		return nil, err
	}
	if err := fsutil.CheckDir(dir); err != nil {
		return nil, err
	}

	if env == nil {
		env = map[string]string{}
	}
	rec := &domain.ScriptExecution{
		ID:               uuid.NewString(),
		ScriptContent:    content,
		WorkingDirectory: dir,
		Environment:      env,
		Status:           constants.ExecutionStatusPending,
		CreatedAt:        e.clock.Now(),
	}

	e.mu.Lock()
	e.executions[rec.ID] = &execution{rec: rec}
	out := rec.Clone()
	e.mu.Unlock()

	log.Debug().Str("execution_id", rec.ID).Str("dir", dir).Dict("env", logging.EnvDict(env)).Msg("script execution created")
	return out, nil
}

// Execute runs a pending execution and blocks until it finishes.
//
// A running-cap rejection leaves the record pending so it can be retried.
// Canceling ctx kills the script and marks the execution cancelled, as does
// a concurrent Cancel; in the latter case Execute returns the result with a
// nil error.
func (e *Engine) Execute(ctx context.Context, id string) (*domain.ExecutionResult, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.mu.Lock()
	ex, ok := e.executions[id]
	if !ok {
		e.mu.Unlock()
		return nil, fmt.Errorf("execution '%s': %w", id, whErrors.ErrExecutionNotFound)
	}
	if ex.rec.Status != constants.ExecutionStatusPending {
		status := ex.rec.Status
		e.mu.Unlock()
		return nil, fmt.Errorf("cannot execute '%s' in status %s: %w", id, status, whErrors.ErrInvalidTransition)
	}
	if !e.slots.TryAcquire(1) {
		e.mu.Unlock()
		return nil, whErrors.ErrScriptCapReached
	}
	start := e.clock.Now()
	ex.rec.Status = constants.ExecutionStatusRunning
	ex.rec.StartTime = &start
	ex.cancel = cancel
	content := ex.rec.ScriptContent
	dir := ex.rec.WorkingDirectory
	env := ex.rec.Environment
	e.mu.Unlock()

	defer e.slots.Release(1)

	log.Info().Str("execution_id", id).Str("dir", dir).Msg("executing script")

	res, runErr := e.run(runCtx, content, dir, env)
	return e.finish(ctx, id, res, runErr)
}

// run writes content to a temp file inside dir and runs it with the shell.
// The temp file is removed regardless of the outcome.
func (e *Engine) run(ctx context.Context, content, dir string, env map[string]string) (*process.Result, error) {
	f, err := os.CreateTemp(dir, constants.ScriptTempPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create script file in '%s': %w: %w", dir, whErrors.ErrProcessSpawn, err)
	}
	path := f.Name()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.Warn().Err(rmErr).Str("path", path).Msg("failed to remove script file")
		}
	}()

	_, writeErr := f.WriteString(content)
	closeErr := f.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		return nil, fmt.Errorf("failed to write script file '%s': %w: %w", path, whErrors.ErrProcessSpawn, err)
	}
	if err := os.Chmod(path, scriptFilePerm); err != nil {
		return nil, fmt.Errorf("failed to make script file executable: %w: %w", whErrors.ErrProcessSpawn, err)
	}

	return process.Run(ctx, process.Spec{
		Name: e.shell,
		Args: []string{path},
		Dir:  dir,
		Env:  env,
	})
}

// finish commits the outcome of a run to the record and builds the result.
func (e *Engine) finish(ctx context.Context, id string, res *process.Result, runErr error) (*domain.ExecutionResult, error) {
	end := e.clock.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	ex, ok := e.executions[id]
	if !ok {
		// Evicted while running; report the outcome anyway.
		ex = &execution{rec: &domain.ScriptExecution{ID: id}}
	}
	rec := ex.rec
	ex.cancel = nil

	if res != nil {
		rec.Stdout = res.Stdout
		rec.Stderr = res.Stderr
	}

	result := &domain.ExecutionResult{ID: id}
	if res != nil {
		result.Stdout = res.Stdout
		result.Stderr = res.Stderr
		result.DurationMs = res.Duration.Milliseconds()
	}

	switch {
	case rec.Status == constants.ExecutionStatusCancelled:
		// Cancel already stamped end_time and killed the process.
		log.Info().Str("execution_id", id).Msg("script execution cancelled")
		return result, nil

	case runErr != nil && ctx.Err() != nil:
		rec.Status = constants.ExecutionStatusCancelled
		rec.EndTime = &end
		log.Info().Str("execution_id", id).Msg("script execution cancelled by caller")
		return result, ctx.Err()

	case runErr != nil:
		rec.Status = constants.ExecutionStatusFailed
		rec.EndTime = &end
		if rec.Stderr == "" {
			rec.Stderr = runErr.Error()
			result.Stderr = rec.Stderr
		}
		log.Error().Err(runErr).Str("execution_id", id).Msg("script execution failed to run")
		return result, runErr
	}

	code := res.ExitCode
	rec.ExitCode = &code
	rec.EndTime = &end
	result.ExitCode = &code
	result.Success = res.Success()
	if result.Success {
		rec.Status = constants.ExecutionStatusCompleted
	} else {
		rec.Status = constants.ExecutionStatusFailed
	}

	log.Info().
		Str("execution_id", id).
		Int("exit_code", code).
		Dur("duration", res.Duration).
		Str("status", rec.Status.String()).
		Msg("script execution finished")
	return result, nil
}

// Cancel marks a pending or running execution cancelled. A running script
// has its process group killed.
func (e *Engine) Cancel(ctx context.Context, id string) (*domain.ScriptExecution, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	e.mu.Lock()
	ex, ok := e.executions[id]
	if !ok {
		e.mu.Unlock()
		return nil, fmt.Errorf("execution '%s': %w", id, whErrors.ErrExecutionNotFound)
	}
	switch ex.rec.Status {
	case constants.ExecutionStatusPending, constants.ExecutionStatusRunning:
	default:
		status := ex.rec.Status
		e.mu.Unlock()
		return nil, fmt.Errorf("cannot cancel '%s' in status %s: %w", id, status, whErrors.ErrInvalidTransition)
	}
	end := e.clock.Now()
	ex.rec.Status = constants.ExecutionStatusCancelled
	ex.rec.EndTime = &end
	kill := ex.cancel
	out := ex.rec.Clone()
	e.mu.Unlock()

	if kill != nil {
		kill()
	}
	log.Info().Str("execution_id", id).Msg("script execution cancel requested")
	return out, nil
}

// Get returns a copy of the execution with id.
func (e *Engine) Get(ctx context.Context, id string) (*domain.ScriptExecution, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	ex, ok := e.executions[id]
	if !ok {
		return nil, fmt.Errorf("execution '%s': %w", id, whErrors.ErrExecutionNotFound)
	}
	return ex.rec.Clone(), nil
}

// List returns copies of all executions, newest first.
func (e *Engine) List(ctx context.Context) ([]*domain.ScriptExecution, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	e.mu.Lock()
	out := make([]*domain.ScriptExecution, 0, len(e.executions))
	for _, ex := range e.executions {
		out = append(out, ex.rec.Clone())
	}
	e.mu.Unlock()

	slices.SortFunc(out, func(a, b *domain.ScriptExecution) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// CleanupCompleted keeps the keep most recently ended executions in a
// terminal status and drops the other finished ones. Pending and running
// executions are never removed. It returns the number removed.
func (e *Engine) CleanupCompleted(ctx context.Context, keep int) (int, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return 0, err
	}
	if keep < 0 {
		return 0, fmt.Errorf("keep count %d: %w", keep, whErrors.ErrValueOutOfRange)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	finished := make([]*domain.ScriptExecution, 0, len(e.executions))
	for _, ex := range e.executions {
		if ex.rec.Status.IsTerminal() {
			finished = append(finished, ex.rec)
		}
	}
	if len(finished) <= keep {
		return 0, nil
	}

	slices.SortFunc(finished, func(a, b *domain.ScriptExecution) int {
		return compareEnd(b.EndTime, a.EndTime)
	})
	for _, rec := range finished[keep:] {
		delete(e.executions, rec.ID)
	}
	removed := len(finished) - keep

	log.Debug().Int("removed", removed).Int("kept", keep).Msg("cleaned up script executions")
	return removed, nil
}

// compareEnd orders end times with a missing time before any real one.
func compareEnd(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}
