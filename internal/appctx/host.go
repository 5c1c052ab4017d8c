package appctx

import (
	"log/slog"
	"slices"
	"sync"
)

// Starter is called once when a Host begins initialization. It must arrange
// for MarkReady to be called eventually, typically from another goroutine.
type Starter func(h *Host)

// Host is an in-process Runtime with an observable, monotonic lifecycle.
//
// Thread-safety: all methods are safe for concurrent use. Subscribers and
// the Starter are always invoked without the lock held.
type Host struct {
	mu           sync.Mutex
	state        State
	app          App
	nextID       uint64
	subs         map[uint64]func(App)
	starter      Starter
	initRequests int
	logger       *slog.Logger
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithStarter sets the function run when initialization begins.
func WithStarter(s Starter) HostOption {
	return func(h *Host) {
		h.starter = s
	}
}

// WithHostLogger sets the host's logger.
func WithHostLogger(logger *slog.Logger) HostOption {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithInitialState starts the host in s, which must be Uninitialized or
// Initializing. A Ready host needs an App; use NewReadyHost.
func WithInitialState(s State) HostOption {
	return func(h *Host) {
		if s == StateUninitialized || s == StateInitializing {
			h.state = s
		}
	}
}

// NewHost creates a Host, Uninitialized unless WithInitialState says otherwise.
func NewHost(opts ...HostOption) *Host {
	h := &Host{
		state:  StateUninitialized,
		subs:   make(map[uint64]func(App)),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewReadyHost creates a Host that is already Ready with app.
func NewReadyHost(app App, opts ...HostOption) *Host {
	h := NewHost(opts...)
	h.state = StateReady
	h.app = app
	return h
}

// State returns the current lifecycle state.
func (h *Host) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// App returns the application layer once Ready.
func (h *Host) App() (App, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.app, h.state == StateReady
}

// Subscribe implements Runtime.
func (h *Host) Subscribe(fn func(App)) Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == StateReady {
		return Subscription{State: h.state, App: h.app}
	}

	h.nextID++
	id := h.nextID
	h.subs[id] = fn

	return Subscription{
		State: h.state,
		Cancel: func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
		},
	}
}

// BeginInitialization implements Runtime.
func (h *Host) BeginInitialization() bool {
	h.mu.Lock()
	if h.state != StateUninitialized {
		h.mu.Unlock()
		return false
	}
	h.state = StateInitializing
	h.initRequests++
	starter := h.starter
	h.mu.Unlock()

	h.logger.Info("runtime initialization started")
	if starter != nil {
		starter(h)
	}
	return true
}

// MarkReady moves the host to Ready with app and fires every outstanding
// subscription exactly once, in registration order. The subscription table
// is emptied before any callback runs, so no later transition can re-fire
// one.
func (h *Host) MarkReady(app App) error {
	h.mu.Lock()
	if err := checkTransition(h.state, StateReady); err != nil {
		h.mu.Unlock()
		return err
	}
	h.state = StateReady
	h.app = app

	ids := make([]uint64, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(App), len(ids))
	for i, id := range ids {
		fns[i] = h.subs[id]
	}
	clear(h.subs)
	h.mu.Unlock()

	h.logger.Info("runtime ready", "subscribers", len(fns))
	for _, fn := range fns {
		fn(app)
	}
	return nil
}

// InitRequests returns how many times initialization actually began.
// It is at most one.
func (h *Host) InitRequests() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.initRequests
}

// Subscribers returns the number of outstanding subscriptions.
func (h *Host) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
