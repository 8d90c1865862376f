// Package signal provides graceful shutdown handling for long-running
// workhorse commands such as serve.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages (to avoid circular dependencies)
package signal

import (
	"context"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
)

// Handler cancels a context on SIGINT or SIGTERM and runs registered
// shutdown hooks, newest first, when stopped.
type Handler struct {
	ctx         context.Context //nolint:containedctx // handler owns the context lifecycle
	cancel      context.CancelFunc
	interrupted chan struct{}
	done        chan struct{}
	sigChan     chan os.Signal

	mu    sync.Mutex
	hooks []func()

	once     sync.Once
	stopOnce sync.Once
}

// NewHandler creates a signal handler derived from parent.
//
//	h := signal.NewHandler(ctx)
//	defer h.Stop()
//	h.OnShutdown(terminals.Shutdown)
//	<-h.Context().Done()
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		done:        make(chan struct{}),
		// Buffered so signal.Notify never drops a signal while we are busy.
		sigChan: make(chan os.Signal, 1),
	}

	signal.Notify(h.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// Context returns the context canceled on the first signal.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted returns a channel closed when a signal was received.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// OnShutdown registers fn to run during Stop. Hooks run in reverse
// registration order, once each.
func (h *Handler) OnShutdown(fn func()) {
	h.mu.Lock()
	h.hooks = append(h.hooks, fn)
	h.mu.Unlock()
}

// Stop stops listening, cancels the context and runs the shutdown hooks.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		close(h.done)
		h.cancel()

		h.mu.Lock()
		hooks := slices.Clone(h.hooks)
		h.hooks = nil
		h.mu.Unlock()

		for _, fn := range slices.Backward(hooks) {
			fn()
		}
	})
}

func (h *Handler) handleSignal() {
	h.once.Do(func() {
		h.cancel()
		close(h.interrupted)
	})
}

func (h *Handler) listen() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.done:
			return
		case <-h.sigChan:
			// Only the first signal has effect; later ones are drained.
			h.handleSignal()
		}
	}
}
