package shutdown

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Hook releases one resource. It should return once ctx is done.
type Hook func(ctx context.Context) error

type namedHook struct {
	name string
	fn   Hook
}

// Handler waits for a stop request and then runs hooks last-in first-out
// under a shared deadline.
type Handler struct {
	timeout time.Duration
	signals []os.Signal
	log     *slog.Logger

	mu     sync.Mutex
	hooks  []namedHook
	reason string

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// Option configures a Handler.
type Option func(*Handler)

// WithSignals replaces the default SIGINT and SIGTERM.
func WithSignals(sigs ...os.Signal) Option {
	return func(h *Handler) { h.signals = sigs }
}

// WithLogger logs each hook as it runs.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.log = l }
}

// NewHandler returns a Handler whose hooks share timeout.
func NewHandler(timeout time.Duration, opts ...Option) *Handler {
	h := &Handler{
		timeout: timeout,
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		log:     slog.New(slog.DiscardHandler),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OnShutdown registers hook under name. Later hooks run first.
func (h *Handler) OnShutdown(name string, hook Hook) {
	h.mu.Lock()
	h.hooks = append(h.hooks, namedHook{name: name, fn: hook})
	h.mu.Unlock()
}

// Trigger requests shutdown without a signal. The first reason sticks.
func (h *Handler) Trigger(reason string) {
	h.stopOnce.Do(func() {
		h.mu.Lock()
		h.reason = reason
		h.mu.Unlock()
		close(h.stop)
	})
}

// Reason is the Trigger reason or the name of the received signal.
func (h *Handler) Reason() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reason
}

// Wait blocks until a signal arrives or Trigger is called, then runs the
// hooks. Hook failures are wrapped with the hook name and joined.
func (h *Handler) Wait() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, h.signals...)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		h.Trigger(sig.String())
	case <-h.stop:
	}
	return h.run()
}

func (h *Handler) run() error {
	defer close(h.done)

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.mu.Lock()
	hooks := append([]namedHook(nil), h.hooks...)
	h.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		hk := hooks[i]
		start := time.Now()
		err := hk.fn(ctx)
		h.log.Info("shutdown hook finished", "hook", hk.name, "duration", time.Since(start), "error", err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", hk.name, err))
		}
	}
	return errors.Join(errs...)
}

// Done is closed after every hook has returned.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
