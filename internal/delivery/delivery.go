// Package delivery hands a notification payload to the application layer as
// a single structured "notification opened" event.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/pushopen/internal/appctx"
	"github.com/roach88/pushopen/internal/payload"
)

// DefaultEventName is the event the application layer listens for.
const DefaultEventName = "remoteNotificationOpened"

// DataJSONKey is the body field carrying the canonical payload JSON.
const DataJSONKey = "dataJSON"

// ErrDeliveryFailed is returned when the application layer rejects the
// event or no application layer is available. Failures are not retried.
var ErrDeliveryFailed = errors.New("delivery failed")

// Event is the structured notification-opened event.
type Event struct {
	// ID is the pipeline invocation the event belongs to.
	ID string

	// Name is the event name emitted to the application layer.
	Name string

	// Payload is the full notification payload.
	Payload payload.Payload

	// DataJSON is the canonical JSON rendering of Payload.
	DataJSON string
}

// Body returns the map emitted to the application layer.
func (e Event) Body() map[string]any {
	return map[string]any{DataJSONKey: e.DataJSON}
}

// Deliverer emits notification-opened events.
type Deliverer struct {
	eventName string
	logger    *slog.Logger
}

// Option configures a Deliverer.
type Option func(*Deliverer)

// WithEventName overrides DefaultEventName.
func WithEventName(name string) Option {
	return func(d *Deliverer) {
		if name != "" {
			d.eventName = name
		}
	}
}

// WithLogger sets the deliverer's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Deliverer) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDeliverer creates a Deliverer.
func NewDeliverer(opts ...Option) *Deliverer {
	d := &Deliverer{
		eventName: DefaultEventName,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// EventName returns the configured event name.
func (d *Deliverer) EventName() string {
	return d.eventName
}

// NewEvent builds the event for one invocation.
func (d *Deliverer) NewEvent(id string, p payload.Payload) (Event, error) {
	data, err := p.Canonical()
	if err != nil {
		return Event{}, fmt.Errorf("render payload: %w", err)
	}
	return Event{
		ID:       id,
		Name:     d.eventName,
		Payload:  p,
		DataJSON: string(data),
	}, nil
}

// Deliver emits one event for p into app. Any failure is returned wrapping
// ErrDeliveryFailed; logging it is left to the caller.
func (d *Deliverer) Deliver(ctx context.Context, app appctx.App, id string, p payload.Payload) (Event, error) {
	if app == nil {
		return Event{}, fmt.Errorf("%w: no application layer", ErrDeliveryFailed)
	}

	ev, err := d.NewEvent(id, p)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	if err := app.Emit(ctx, ev.Name, ev.Body()); err != nil {
		return ev, fmt.Errorf("%w: emit %s: %w", ErrDeliveryFailed, ev.Name, err)
	}

	d.logger.Debug("notification opened event emitted",
		"invocation_id", id,
		"event", ev.Name,
	)
	return ev, nil
}
