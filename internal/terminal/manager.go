// Package terminal manages interactive shell sessions driven over pipes.
//
// A session is created inactive, started into a running shell, and closed.
// Output is read by background pumps into a buffered channel and only moves
// into the session history when a caller drains it.
package terminal

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

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

// Manager tracks terminal sessions. Safe for concurrent use; the registry
// lock is never held while a process is spawned or waited for.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session

	maxSessions  int
	history      history
	shell        string
	inputBuffer  int
	outputBuffer int
	closeTimeout time.Duration
	clock        clock.Clock
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock sets the clock used for timestamps.
func WithClock(c clock.Clock) ManagerOption {
	return func(m *Manager) {
		m.clock = c
	}
}

// NewManager creates a Manager. Zero values in cfg fall back to defaults.
func NewManager(cfg config.TerminalConfig, opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions:     make(map[string]*session),
		maxSessions:  orDefault(cfg.MaxSessions, constants.MaxTerminalSessions),
		history:      history{max: orDefault(cfg.MaxHistory, constants.MaxTerminalHistory), batch: orDefault(cfg.HistoryEvictBatch, constants.HistoryEvictBatch)},
		shell:        cmp.Or(cfg.Shell, constants.DefaultShell),
		inputBuffer:  orDefault(cfg.InputBuffer, constants.TerminalInputBuffer),
		outputBuffer: orDefault(cfg.OutputBuffer, constants.TerminalOutputBuffer),
		closeTimeout: cmp.Or(cfg.CloseTimeout, constants.TerminalCloseTimeout),
		clock:        clock.RealClock{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Create registers an inactive session rooted at dir. No process is started.
func (m *Manager) Create(ctx context.Context, name, dir string, env map[string]string) (*domain.TerminalSession, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if err := fsutil.CheckDir(dir); err != nil {
		return nil, err
	}
	if err := validateName(name, true); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	if name == "" {
		name = "Terminal " + id
	}
	if env == nil {
		env = map[string]string{}
	}
	now := m.clock.Now()
	rec := &domain.TerminalSession{
		ID:               id,
		Name:             name,
		WorkingDirectory: dir,
		Environment:      env,
		Status:           constants.TerminalStatusInactive,
		CreatedAt:        now,
		LastActivity:     now,
		OutputHistory:    []domain.TerminalOutput{},
	}

	m.mu.Lock()
	if len(m.sessions) >= m.maxSessions {
		m.mu.Unlock()
		return nil, fmt.Errorf("%d sessions tracked: %w", m.maxSessions, whErrors.ErrTerminalCapReached)
	}
	m.sessions[id] = &session{rec: rec}
	out := rec.Clone()
	m.mu.Unlock()

	log.Debug().Str("terminal_id", id).Str("dir", dir).Dict("env", logging.EnvDict(env)).Msg("terminal created")
	return out, nil
}

// Start spawns the session's shell. Closed and errored sessions may be
// started again; a leftover shell of an errored session is stopped first.
func (m *Manager) Start(ctx context.Context, id string) (*domain.TerminalSession, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	s, err := m.lookup(id)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if s.rec.Status == constants.TerminalStatusActive || s.starting {
		m.mu.Unlock()
		return nil, fmt.Errorf("terminal '%s': %w", id, whErrors.ErrTerminalAlreadyActive)
	}
	s.starting = true
	stale := s.proc
	s.proc = nil
	dir := s.rec.WorkingDirectory
	env := s.rec.Environment
	m.mu.Unlock()

	if stale != nil {
		stale.stop(id, m.closeTimeout)
	}

	proc, output, err := m.spawnShell(ctx, id, dir, env, func(err error) { m.markInputFailed(id, err) })
	if err != nil {
		m.mu.Lock()
		s.starting = false
		m.mu.Unlock()
		log.Error().Err(err).Str("terminal_id", id).Msg("failed to start terminal")
		return nil, err
	}

	m.mu.Lock()
	s.starting = false
	if s.abortStart {
		s.abortStart = false
		m.mu.Unlock()
		proc.stop(id, m.closeTimeout)
		return nil, fmt.Errorf("terminal '%s' was closed while starting: %w", id, whErrors.ErrTerminalNotActive)
	}
	now := m.clock.Now()
	s.proc = proc
	s.output = output
	s.rec.Status = constants.TerminalStatusActive
	s.rec.LastActivity = now
	s.rec.OutputHistory = m.history.append(s.rec.OutputHistory, m.systemRecord(now, fmt.Sprintf("Terminal %s started", id)))
	out := s.rec.Clone()
	m.mu.Unlock()

	log.Info().Str("terminal_id", id).Int("pid", proc.cmd.Process.Pid).Str("dir", dir).Msg("terminal started")
	return out, nil
}

// SendCommand queues text plus a newline for the shell without blocking.
func (m *Manager) SendCommand(ctx context.Context, id, text string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(id)
	if err != nil {
		return err
	}
	if s.rec.Status != constants.TerminalStatusActive || s.proc == nil {
		return fmt.Errorf("terminal '%s' is %s: %w", id, s.rec.Status, whErrors.ErrTerminalNotActive)
	}

	select {
	case s.proc.input <- text + "\n":
	default:
		return fmt.Errorf("terminal '%s': %w", id, whErrors.ErrTerminalInputUnavailable)
	}

	now := m.clock.Now()
	s.rec.LastActivity = now
	s.rec.OutputHistory = m.history.append(s.rec.OutputHistory, domain.TerminalOutput{
		Timestamp:  now,
		Content:    text,
		OutputType: constants.OutputInput,
	})
	return nil
}

// ExecuteCommand runs spec to completion outside any session. The returned
// record holds stdout when the command succeeded and stderr otherwise.
func (m *Manager) ExecuteCommand(ctx context.Context, spec domain.CommandSpec) (*domain.TerminalOutput, error) {
	if strings.TrimSpace(spec.Command) == "" {
		return nil, fmt.Errorf("command: %w", whErrors.ErrEmptyValue)
	}
	if err := fsutil.CheckDir(spec.WorkingDirectory); err != nil {
		return nil, err
	}

	res, err := process.Run(ctx, process.Spec{
		Name: spec.Command,
		Args: spec.Args,
		Dir:  spec.WorkingDirectory,
		Env:  spec.Environment,
	})
	if err != nil {
		return nil, err
	}

	out := &domain.TerminalOutput{Timestamp: m.clock.Now()}
	if res.Success() {
		out.OutputType = constants.OutputStdout
		out.Content = res.Stdout
	} else {
		out.OutputType = constants.OutputStderr
		out.Content = res.Stderr
	}
	return out, nil
}

// Output drains what the pumps have buffered so far into the history and
// returns only those records. It never waits for new output.
func (m *Manager) Output(ctx context.Context, id string) ([]domain.TerminalOutput, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}

	return m.drainLocked(s), nil
}

// drainLocked moves buffered output of s into its history. m.mu must be
// held.
func (m *Manager) drainLocked(s *session) []domain.TerminalOutput {
	drained := []domain.TerminalOutput{}
drain:
	for s.output != nil {
		select {
		case rec, ok := <-s.output:
			if !ok {
				s.output = nil
				break drain
			}
			drained = append(drained, rec)
		default:
			break drain
		}
	}

	if len(drained) > 0 {
		s.rec.OutputHistory = m.history.append(s.rec.OutputHistory, drained...)
		s.rec.LastActivity = m.clock.Now()
	}
	return drained
}

// History returns a copy of the retained scrollback.
func (m *Manager) History(ctx context.Context, id string) ([]domain.TerminalOutput, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(s.rec.OutputHistory), nil
}

// Close stops the session's shell and marks it closed. Closing a closed
// session succeeds without doing anything.
func (m *Manager) Close(ctx context.Context, id string) (*domain.TerminalSession, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	s, err := m.lookup(id)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if s.starting {
		s.abortStart = true
	}
	if s.rec.Status == constants.TerminalStatusClosed {
		out := s.rec.Clone()
		m.mu.Unlock()
		return out, nil
	}

	proc := s.proc
	s.proc = nil
	now := m.clock.Now()
	s.rec.Status = constants.TerminalStatusClosed
	s.rec.LastActivity = now
	s.rec.OutputHistory = m.history.append(s.rec.OutputHistory, m.systemRecord(now, fmt.Sprintf("Terminal %s closed", id)))
	out := s.rec.Clone()
	m.mu.Unlock()

	if proc != nil {
		proc.stop(id, m.closeTimeout)
	}

	log.Info().Str("terminal_id", id).Msg("terminal closed")
	return out, nil
}

// CleanupClosed forgets every closed session and returns how many were
// removed.
func (m *Manager) CleanupClosed(ctx context.Context) (int, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.rec.Status == constants.TerminalStatusClosed && !s.starting {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Rename sets the display name of a session.
func (m *Manager) Rename(ctx context.Context, id, name string) (*domain.TerminalSession, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if err := validateName(name, false); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	s.rec.Name = name
	return s.rec.Clone(), nil
}

// Get returns a snapshot of the session with id.
func (m *Manager) Get(ctx context.Context, id string) (*domain.TerminalSession, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	return s.rec.Clone(), nil
}

// List returns snapshots of all sessions, newest first.
func (m *Manager) List(ctx context.Context) ([]*domain.TerminalSession, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	out := make([]*domain.TerminalSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.rec.Clone())
	}
	m.mu.Unlock()

	slices.SortFunc(out, func(a, b *domain.TerminalSession) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Shutdown closes every session that is not closed yet.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id, s := range m.sessions {
		if s.rec.Status != constants.TerminalStatusClosed {
			ids = append(ids, id)
		}
	}
	m.mu.Unlock()

	detached := ctxutil.Detached(ctx)
	var errs []error
	for _, id := range ids {
		if _, err := m.Close(detached, id); err != nil && !errors.Is(err, whErrors.ErrTerminalNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// markInputFailed moves an active session to the error state after its
// stdin pump died.
func (m *Manager) markInputFailed(id string, cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || s.rec.Status != constants.TerminalStatusActive {
		return
	}
	now := m.clock.Now()
	s.rec.Status = constants.TerminalStatusError
	s.rec.LastActivity = now
	s.rec.OutputHistory = m.history.append(s.rec.OutputHistory, m.systemRecord(now, fmt.Sprintf("Terminal %s input failed: %v", id, cause)))
}

// lookup must be called with m.mu held.
func (m *Manager) lookup(id string) (*session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("terminal '%s': %w", id, whErrors.ErrTerminalNotFound)
	}
	return s, nil
}

func (m *Manager) systemRecord(at time.Time, msg string) domain.TerminalOutput {
	return domain.TerminalOutput{Timestamp: at, Content: msg, OutputType: constants.OutputSystem}
}

// validateName checks a display name. An empty name is accepted only when
// allowEmpty is set.
func validateName(name string, allowEmpty bool) error {
	if strings.TrimSpace(name) == "" {
		if allowEmpty && name == "" {
			return nil
		}
		return fmt.Errorf("terminal name: %w", whErrors.ErrEmptyValue)
	}
	if len(name) > constants.MaxNameLength {
		return fmt.Errorf("terminal name longer than %d characters: %w", constants.MaxNameLength, whErrors.ErrValueOutOfRange)
	}
	return nil
}
