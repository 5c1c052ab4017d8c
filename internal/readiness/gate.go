package readiness

import (
	"log/slog"
	"sync/atomic"

	"github.com/roach88/pushopen/internal/appctx"
	"github.com/roach88/pushopen/internal/payload"
)

// Outcome describes what Await did.
type Outcome struct {
	// Immediate is true when the callback already ran synchronously.
	Immediate bool

	// Registration is the pending delivery, nil when Immediate.
	Registration *Registration

	// ObservedState is the runtime state seen at registration time.
	ObservedState appctx.State

	// InitRequested is true when this invocation asked the host to begin
	// initialization.
	InitRequested bool
}

// Gate defers deliveries until a runtime is Ready.
//
// Thread-safety: Await may be called from any goroutine.
type Gate struct {
	runtime appctx.Runtime
	pending atomic.Int64
	logger  *slog.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithLogger sets the gate's logger.
func WithLogger(logger *slog.Logger) GateOption {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGate creates a Gate over rt.
func NewGate(rt appctx.Runtime, opts ...GateOption) *Gate {
	g := &Gate{
		runtime: rt,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Await arranges for deliver(app, p) to run exactly once with a Ready app.
// It never blocks on the runtime.
func (g *Gate) Await(id string, p payload.Payload, deliver DeliverFunc) Outcome {
	fired := func(app appctx.App, p payload.Payload) {
		g.logger.Debug("registration fired", "registration_id", id)
		deliver(app, p)
	}
	reg := newRegistration(id, p, fired, func() { g.pending.Add(-1) })

	// Counted before Subscribe so a transition racing ahead of the return
	// never drives the counter negative.
	g.pending.Add(1)
	sub := g.runtime.Subscribe(reg.fire)

	if !sub.Registered() {
		g.pending.Add(-1)
		g.logger.Debug("runtime ready, delivering synchronously", "invocation_id", id)
		deliver(sub.App, p)
		return Outcome{Immediate: true, ObservedState: sub.State}
	}
	reg.attach(sub.Cancel)

	out := Outcome{Registration: reg, ObservedState: sub.State}
	if sub.State == appctx.StateUninitialized {
		out.InitRequested = g.runtime.BeginInitialization()
	}

	g.logger.Info("delivery deferred until runtime ready",
		"invocation_id", id,
		"registration_id", reg.ID(),
		"state", sub.State.String(),
		"init_requested", out.InitRequested,
	)
	return out
}

// Pending returns the number of registrations that have not fired yet.
func (g *Gate) Pending() int {
	return int(g.pending.Load())
}
