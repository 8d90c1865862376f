package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/CoderDKai/workhorse/internal/constants"
	"github.com/CoderDKai/workhorse/internal/ctxutil"
	"github.com/CoderDKai/workhorse/internal/domain"
	whErrors "github.com/CoderDKai/workhorse/internal/errors"
	"github.com/CoderDKai/workhorse/internal/process"
)

// scannerInitialBuffer is the starting size of the line buffer; it grows up
// to constants.ScannerBufferSize.
const scannerInitialBuffer = 64 * 1024

// session is the registry entry of one terminal. All fields are guarded by
// the manager's mutex. abortStart is set when Close runs while a start is in
// progress.
type session struct {
	rec        *domain.TerminalSession
	proc       *shellProcess
	output     <-chan domain.TerminalOutput
	starting   bool
	abortStart bool
}

// shellProcess owns a running shell and the channels of its pumps.
type shellProcess struct {
	cmd    *exec.Cmd
	input  chan string
	done   chan struct{}
	reaped chan struct{}
}

// spawnShell starts shell in dir and wires the pumps. onInputFailure is
// called once if writing to the shell's stdin fails.
func (m *Manager) spawnShell(ctx context.Context, id, dir string, env map[string]string, onInputFailure func(error)) (*shellProcess, <-chan domain.TerminalOutput, error) {
	// The shell outlives the request that started it.
	cmd := process.Command(ctxutil.Detached(ctx), process.Spec{Name: m.shell, Dir: dir, Env: env})

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open stdin of terminal '%s': %w: %w", id, whErrors.ErrProcessSpawn, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open stdout of terminal '%s': %w: %w", id, whErrors.ErrProcessSpawn, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open stderr of terminal '%s': %w: %w", id, whErrors.ErrProcessSpawn, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("failed to start shell '%s' for terminal '%s': %w: %w", m.shell, id, whErrors.ErrProcessSpawn, err)
	}

	p := &shellProcess{
		cmd:    cmd,
		input:  make(chan string, m.inputBuffer),
		done:   make(chan struct{}),
		reaped: make(chan struct{}),
	}
	output := make(chan domain.TerminalOutput, m.outputBuffer)

	go m.pumpInput(id, stdin, p.input, onInputFailure)

	var readers sync.WaitGroup
	readers.Add(2)
	go m.pumpOutput(&readers, id, stdout, constants.OutputStdout, output, p.done)
	go m.pumpOutput(&readers, id, stderr, constants.OutputStderr, output, p.done)

	// Wait must not be called before the readers have seen EOF.
	go func() {
		readers.Wait()
		close(output)
		err := cmd.Wait()
		log.Debug().Err(err).Str("terminal_id", id).Msg("terminal shell exited")
		close(p.reaped)
	}()

	return p, output, nil
}

// pumpInput writes queued input to the shell until the channel is closed
// or a write fails.
func (m *Manager) pumpInput(id string, w io.WriteCloser, input <-chan string, onFailure func(error)) {
	defer func() { _ = w.Close() }()
	for text := range input {
		if _, err := io.WriteString(w, text); err != nil {
			log.Warn().Err(err).Str("terminal_id", id).Msg("terminal input pump stopped")
			onFailure(err)
			return
		}
	}
}

// pumpOutput forwards lines from r to output until r closes or done is
// closed.
func (m *Manager) pumpOutput(wg *sync.WaitGroup, id string, r io.Reader, kind constants.OutputType, output chan<- domain.TerminalOutput, done <-chan struct{}) {
	defer wg.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, scannerInitialBuffer), constants.ScannerBufferSize)
	for scanner.Scan() {
		rec := domain.TerminalOutput{
			Timestamp:  m.clock.Now(),
			Content:    scanner.Text(),
			OutputType: kind,
		}
		select {
		case output <- rec:
		case <-done:
			// Keep reading so the shell never blocks on a full pipe.
			_, _ = io.Copy(io.Discard, r)
			return
		}
	}
	if err := scanner.Err(); err != nil {
		log.Debug().Err(err).Str("terminal_id", id).Str("stream", kind.String()).Msg("terminal output pump stopped")
	}
}

// stop kills the shell and waits up to timeout for it to be reaped. The
// caller must already have removed p from its session.
func (p *shellProcess) stop(id string, timeout time.Duration) {
	close(p.done)
	close(p.input)

	if err := process.KillGroup(p.cmd); err != nil {
		log.Warn().Err(err).Str("terminal_id", id).Msg("failed to kill terminal shell")
	}

	select {
	case <-p.reaped:
	case <-time.After(timeout):
		log.Warn().Str("terminal_id", id).Dur("timeout", timeout).Msg("terminal shell was not reaped in time")
	}
}
