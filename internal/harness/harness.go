package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/pushopen/internal/appctx"
	"github.com/roach88/pushopen/internal/config"
	"github.com/roach88/pushopen/internal/payload"
	"github.com/roach88/pushopen/internal/pipeline"
	"github.com/roach88/pushopen/internal/testutil"
)

// eventAction is the action name stamped on scenario system events.
const eventAction = "com.amazonaws.intent.fcm.NOTIFICATION_OPEN"

// Harness executes one scenario against a fresh pipeline.
type Harness struct {
	cfg       *config.Config
	host      *appctx.Host
	app       *testutil.RecordingApp
	activator *testutil.RecordingActivator
	pipe      *pipeline.Orchestrator
	clock     *testutil.DeterministicClock
	result    *Result

	// deferred lists invocations waiting for Ready, in arrival order.
	deferred []*pipeline.Report
}

// Run executes a scenario and returns the result.
//
// Each run gets its own host, pipeline and recorders. Logs are discarded.
// An error means the scenario could not be executed; assertion failures are
// reported on the Result instead.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with the pipeline logging to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	h, err := newHarness(scenario, logger)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	for i, step := range scenario.Steps {
		if err := h.execute(ctx, step); err != nil {
			return nil, fmt.Errorf("steps[%d] (%s): %w", i, step.Kind(), err)
		}
	}

	h.result.InitRequests = h.host.InitRequests()
	h.result.ForegroundCount = len(h.activator.Intents())
	h.result.Pending = h.pipe.Pending()

	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions) {
		h.result.AddError(msg)
	}
	return h.result, nil
}

func newHarness(scenario *Scenario, logger *slog.Logger) (*Harness, error) {
	cfg := config.Default()
	if scenario.Config != nil {
		c := *scenario.Config
		c.ApplyDefaults()
		cfg = &c
	}

	state := appctx.StateUninitialized
	if scenario.InitialState != "" {
		s, err := appctx.ParseState(scenario.InitialState)
		if err != nil {
			return nil, fmt.Errorf("initial_state: %w", err)
		}
		state = s
	}

	h := &Harness{
		cfg:       cfg,
		app:       testutil.NewRecordingApp(),
		activator: testutil.NewRecordingActivator(),
		clock:     testutil.NewDeterministicClock(),
		result:    NewResult(),
	}

	if state == appctx.StateReady {
		h.host = appctx.NewReadyHost(h.app, appctx.WithHostLogger(logger))
	} else {
		h.host = appctx.NewHost(
			appctx.WithInitialState(state),
			appctx.WithStarter(func(*appctx.Host) { h.trace(TraceEvent{Type: TraceInitStarted}) }),
			appctx.WithHostLogger(logger),
		)
	}

	h.pipe = pipeline.FromConfig(cfg, h.host, h.activator,
		pipeline.WithIDGenerator(testutil.NewSequentialIDs("inv")),
		pipeline.WithLogger(logger),
	)
	return h, nil
}

func (h *Harness) execute(ctx context.Context, step Step) error {
	switch step.Kind() {
	case StepEvent:
		h.handle(ctx, payload.SystemEvent{
			Action: eventAction,
			Extras: map[string]any{h.cfg.PayloadKey: step.Event},
		})
	case StepMissingPayload:
		h.handle(ctx, payload.SystemEvent{Action: eventAction})
	case StepReady:
		h.trace(TraceEvent{Type: TraceReady})
		if err := h.host.MarkReady(h.app); err != nil {
			return err
		}
		h.collectDeferred()
	case StepFailDelivery:
		h.trace(TraceEvent{Type: TraceFailDelivery, Reason: step.FailDelivery})
		h.app.FailWith(errors.New(step.FailDelivery))
	case StepFailForeground:
		h.trace(TraceEvent{Type: TraceFailForeground, Reason: step.FailForeground})
		h.activator.FailWith(errors.New(step.FailForeground))
	default:
		return fmt.Errorf("exactly one action required, got %v", step.Kinds())
	}
	return nil
}

func (h *Harness) handle(ctx context.Context, ev payload.SystemEvent) {
	r := h.pipe.Handle(ctx, ev)
	h.result.Reports[r.InvocationID] = r

	entry := TraceEvent{
		Type:          TraceInvocation,
		Invocation:    r.InvocationID,
		Delivery:      r.Delivery.String(),
		InitRequested: r.InitRequested,
	}
	if r.PayloadErr == nil && r.LaunchErr == nil {
		entry.Intent = &TraceIntent{
			Kind:   r.Intent.Kind.String(),
			Target: r.Intent.Target(),
			Flags:  r.Intent.Flags.String(),
		}
	}
	for _, err := range []error{r.PayloadErr, r.LaunchErr, r.ForegroundErr} {
		if err != nil {
			entry.Errors = append(entry.Errors, string(pipeline.CodeOf(err)))
		}
	}
	h.trace(entry)

	switch r.Delivery {
	case pipeline.DeliveryImmediate:
		h.delivered(r.InvocationID, r.DeliveryErr)
		// Drain so Delivered holds nothing stale.
		<-r.Delivered
	case pipeline.DeliveryDeferred:
		h.deferred = append(h.deferred, r)
	}
}

// collectDeferred records every deferred delivery that has run.
func (h *Harness) collectDeferred() {
	var waiting []*pipeline.Report
	for _, r := range h.deferred {
		select {
		case err := <-r.Delivered:
			h.delivered(r.InvocationID, err)
		default:
			waiting = append(waiting, r)
		}
	}
	h.deferred = waiting
}

func (h *Harness) delivered(id string, err error) {
	status := "ok"
	if err != nil {
		status = string(pipeline.CodeOf(err))
	} else {
		h.result.Deliveries++
	}
	h.trace(TraceEvent{Type: TraceDelivered, Invocation: id, Status: status})
}

func (h *Harness) trace(ev TraceEvent) {
	ev.Seq = h.clock.Next()
	h.result.Trace = append(h.result.Trace, ev)
}
