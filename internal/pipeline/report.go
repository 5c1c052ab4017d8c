package pipeline

import (
	"context"
	"errors"

	"github.com/roach88/pushopen/internal/appctx"
	"github.com/roach88/pushopen/internal/launch"
	"github.com/roach88/pushopen/internal/payload"
)

// DeliveryMode says how the delivery path was handled.
type DeliveryMode int

const (
	// DeliverySkipped means no delivery was attempted (missing payload).
	DeliverySkipped DeliveryMode = iota

	// DeliveryImmediate means the runtime was Ready and delivery already ran.
	DeliveryImmediate

	// DeliveryDeferred means a registration is waiting for Ready.
	DeliveryDeferred
)

// String returns the mode name.
func (m DeliveryMode) String() string {
	switch m {
	case DeliverySkipped:
		return "skipped"
	case DeliveryImmediate:
		return "immediate"
	case DeliveryDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// Report describes what Handle did for one system event.
//
// Fields are final when Handle returns, except that a deferred delivery's
// outcome arrives later on Delivered.
type Report struct {
	InvocationID string

	// Digest is the payload content digest, empty when no payload.
	Digest string

	Payload payload.Payload

	// Intent is the resolved launch Intent. Zero when LaunchErr is set or
	// no payload was extracted.
	Intent launch.Intent

	// Foregrounded is true when the activation collaborator accepted Intent.
	Foregrounded bool

	Delivery DeliveryMode

	// RegistrationID names the pending registration for deferred delivery.
	RegistrationID string

	// ObservedState is the runtime state seen by the gate.
	ObservedState appctx.State

	// InitRequested is true when this invocation asked the host to begin
	// initialization.
	InitRequested bool

	PayloadErr    error
	LaunchErr     error
	ForegroundErr error

	// DeliveryErr is the outcome of an immediate delivery. Deferred outcomes
	// are only reported on Delivered.
	DeliveryErr error

	// Delivered receives exactly one value once delivery has run: nil or a
	// DELIVERY_FAILED error. It is nil when delivery was skipped.
	Delivered <-chan error
}

// Err joins every error known when Handle returned.
func (r *Report) Err() error {
	return errors.Join(r.PayloadErr, r.LaunchErr, r.ForegroundErr, r.DeliveryErr)
}

// Wait blocks until delivery has run or ctx is done, and returns the
// delivery outcome. A skipped delivery returns PayloadErr immediately.
//
// Wait consumes the Delivered value; call it at most once.
func (r *Report) Wait(ctx context.Context) error {
	if r.Delivered == nil {
		return r.PayloadErr
	}
	select {
	case err := <-r.Delivered:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
