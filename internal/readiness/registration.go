package readiness

import (
	"sync"

	"github.com/roach88/pushopen/internal/appctx"
	"github.com/roach88/pushopen/internal/payload"
)

// DeliverFunc delivers a payload into a Ready application layer.
type DeliverFunc func(app appctx.App, p payload.Payload)

// Registration is a one-shot pending delivery held while the runtime is not
// Ready. It fires at most once and unregisters itself right after firing.
type Registration struct {
	id      string
	payload payload.Payload
	deliver DeliverFunc
	onDone  func()

	once sync.Once

	mu     sync.Mutex
	done   bool
	cancel func()
}

func newRegistration(id string, p payload.Payload, deliver DeliverFunc, onDone func()) *Registration {
	return &Registration{
		id:      id,
		payload: p,
		deliver: deliver,
		onDone:  onDone,
	}
}

// ID returns the invocation ID the registration belongs to.
func (r *Registration) ID() string {
	return r.id
}

// Fired reports whether the registration has fired.
func (r *Registration) Fired() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// fire is the became-Ready callback: deliver, then self-unregister.
func (r *Registration) fire(app appctx.App) {
	r.once.Do(func() {
		r.deliver(app, r.payload)
		r.release()
	})
}

// attach stores the runtime's cancel func. If the registration already fired
// (the transition raced ahead of Subscribe returning) it is removed at once.
func (r *Registration) attach(cancel func()) {
	r.mu.Lock()
	if r.done {
		r.mu.Unlock()
		cancel()
		return
	}
	r.cancel = cancel
	r.mu.Unlock()
}

func (r *Registration) release() {
	r.mu.Lock()
	r.done = true
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if r.onDone != nil {
		r.onDone()
	}
}
