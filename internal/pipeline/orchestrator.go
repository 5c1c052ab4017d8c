package pipeline

import (
	"context"
	"log/slog"

	"github.com/roach88/pushopen/internal/appctx"
	"github.com/roach88/pushopen/internal/config"
	"github.com/roach88/pushopen/internal/delivery"
	"github.com/roach88/pushopen/internal/launch"
	"github.com/roach88/pushopen/internal/payload"
	"github.com/roach88/pushopen/internal/readiness"
)

// Orchestrator runs the notification-open pipeline.
//
// Thread-safety: Handle may be called concurrently. Each call owns its own
// payload and registration.
type Orchestrator struct {
	extractor payload.Extractor
	resolver  *launch.Resolver
	activator launch.Activator
	gate      *readiness.Gate
	deliverer *delivery.Deliverer
	ids       IDGenerator
	logger    *slog.Logger

	deepLinkKeys []string
	eventName    string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithIDGenerator sets the invocation ID generator. Default: UUIDv7Generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(o *Orchestrator) {
		if gen != nil {
			o.ids = gen
		}
	}
}

// WithLogger sets the logger for the orchestrator and every component it builds.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPayloadKey sets the extras key holding the payload.
func WithPayloadKey(key string) Option {
	return func(o *Orchestrator) {
		o.extractor.Key = key
	}
}

// WithDeepLinkKeys sets the payload keys consulted for a deep link.
func WithDeepLinkKeys(keys ...string) Option {
	return func(o *Orchestrator) {
		o.deepLinkKeys = append([]string(nil), keys...)
	}
}

// WithEventName sets the name of the delivered event.
func WithEventName(name string) Option {
	return func(o *Orchestrator) {
		o.eventName = name
	}
}

// New creates an Orchestrator.
//
// rt is the host's runtime context, id the host's self-identity used for
// default entries, and activator the OS activation collaborator. A nil
// activator disables foregrounding.
func New(rt appctx.Runtime, id launch.Identity, activator launch.Activator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		activator: activator,
		ids:       UUIDv7Generator{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	o.resolver = launch.NewResolver(id,
		launch.WithDeepLinkKeys(o.deepLinkKeys...),
		launch.WithLogger(o.logger),
	)
	o.gate = readiness.NewGate(rt, readiness.WithLogger(o.logger))
	o.deliverer = delivery.NewDeliverer(
		delivery.WithEventName(o.eventName),
		delivery.WithLogger(o.logger),
	)
	return o
}

// FromConfig creates an Orchestrator from a loaded configuration.
// Options passed here override the config.
func FromConfig(cfg *config.Config, rt appctx.Runtime, activator launch.Activator, opts ...Option) *Orchestrator {
	base := []Option{
		WithPayloadKey(cfg.PayloadKey),
		WithDeepLinkKeys(cfg.DeepLinkKeys...),
		WithEventName(cfg.EventName),
	}
	return New(rt, cfg.Identity(), activator, append(base, opts...)...)
}

// Pending returns the number of deliveries waiting for the runtime.
func (o *Orchestrator) Pending() int {
	return o.gate.Pending()
}

// Handle processes one system event.
//
// A missing payload stops everything: no resolution, no delivery, no
// initialization request. Otherwise the delivery path runs first, then
// foregrounding; neither path's failure affects the other.
//
// Handle never blocks on the runtime. A deferred delivery uses a context
// detached from ctx's cancellation, since it outlives this call.
func (o *Orchestrator) Handle(ctx context.Context, ev payload.SystemEvent) *Report {
	id := o.ids.Generate()
	r := &Report{InvocationID: id}

	p, err := o.extractor.Extract(ev)
	if err != nil {
		r.PayloadErr = &Error{Code: ErrCodeMissingPayload, InvocationID: id, Err: err}
		o.logger.Warn("notification open dropped",
			"invocation_id", id,
			"action", ev.Action,
			"error", err,
		)
		return r
	}
	r.Payload = p
	if digest, err := p.Digest(); err == nil {
		r.Digest = digest
	}

	o.logger.Info("notification opened",
		"invocation_id", id,
		"digest", r.Digest,
		"keys", p.Len(),
	)

	o.gateAndDeliver(ctx, r)
	o.resolveAndForeground(ctx, r)
	return r
}

func (o *Orchestrator) gateAndDeliver(ctx context.Context, r *Report) {
	id := r.InvocationID
	done := make(chan error, 1)
	r.Delivered = done
	deliverCtx := context.WithoutCancel(ctx)

	out := o.gate.Await(id, r.Payload, func(app appctx.App, p payload.Payload) {
		var result error
		if _, err := o.deliverer.Deliver(deliverCtx, app, id, p); err != nil {
			result = &Error{Code: ErrCodeDeliveryFailed, InvocationID: id, Err: err}
			o.logger.Error("notification opened event not delivered",
				"invocation_id", id,
				"error", err,
			)
		}
		done <- result
	})

	r.ObservedState = out.ObservedState
	r.InitRequested = out.InitRequested
	if out.Immediate {
		r.Delivery = DeliveryImmediate
		// Put the value back so Delivered still yields it.
		r.DeliveryErr = <-done
		done <- r.DeliveryErr
		return
	}
	r.Delivery = DeliveryDeferred
	r.RegistrationID = out.Registration.ID()
}

func (o *Orchestrator) resolveAndForeground(ctx context.Context, r *Report) {
	id := r.InvocationID

	intent, err := o.resolver.Resolve(r.Payload)
	if err != nil {
		r.LaunchErr = &Error{Code: ErrCodeUnresolvedLaunchTarget, InvocationID: id, Err: err}
		o.logger.Warn("foregrounding skipped",
			"invocation_id", id,
			"error", err,
		)
		return
	}
	r.Intent = intent

	if o.activator == nil {
		o.logger.Debug("no activator, foregrounding skipped", "invocation_id", id)
		return
	}
	if err := o.activator.StartForeground(ctx, intent); err != nil {
		r.ForegroundErr = &Error{Code: ErrCodeForegroundFailed, InvocationID: id, Err: err}
		o.logger.Warn("foreground request rejected",
			"invocation_id", id,
			"kind", intent.Kind.String(),
			"target", intent.Target(),
			"error", err,
		)
		return
	}
	r.Foregrounded = true
	o.logger.Debug("foreground requested",
		"invocation_id", id,
		"kind", intent.Kind.String(),
		"target", intent.Target(),
		"flags", intent.Flags.String(),
	)
}
