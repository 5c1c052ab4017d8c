package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/pushopen/internal/appctx"
	"github.com/roach88/pushopen/internal/config"
	"github.com/roach88/pushopen/internal/delivery"
	"github.com/roach88/pushopen/internal/launch"
	"github.com/roach88/pushopen/internal/payload"
	"github.com/roach88/pushopen/internal/pipeline"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	ConfigPath string
	State      string
	InitDelay  time.Duration
	Timeout    time.Duration
}

// SimulateResult is the printed outcome of one simulated event.
type SimulateResult struct {
	InvocationID  string         `json:"invocation_id"`
	Digest        string         `json:"digest,omitempty"`
	InitialState  string         `json:"initial_state"`
	Delivery      string         `json:"delivery"`
	InitRequested bool           `json:"init_requested"`
	Intent        *IntentSummary `json:"intent,omitempty"`
	Foregrounded  bool           `json:"foregrounded"`
	Event         *EventSummary  `json:"event,omitempty"`
	Errors        []string       `json:"errors,omitempty"`
}

// IntentSummary is the printed form of a launch intent.
type IntentSummary struct {
	Kind   string   `json:"kind"`
	Target string   `json:"target"`
	Flags  []string `json:"flags"`
}

// EventSummary is the printed form of the delivered event.
type EventSummary struct {
	Name     string `json:"name"`
	DataJSON string `json:"dataJSON"`
}

// String renders the result for text output.
func (r SimulateResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Invocation: %s\n", r.InvocationID)
	if r.Digest != "" {
		fmt.Fprintf(&b, "Digest:     %s\n", r.Digest)
	}
	fmt.Fprintf(&b, "Runtime:    %s (init requested: %t)\n", r.InitialState, r.InitRequested)
	fmt.Fprintf(&b, "Delivery:   %s\n", r.Delivery)
	if r.Intent != nil {
		fmt.Fprintf(&b, "Intent:     %s %s [%s] (foregrounded: %t)\n",
			r.Intent.Kind, r.Intent.Target, strings.Join(r.Intent.Flags, "|"), r.Foregrounded)
	}
	if r.Event != nil {
		fmt.Fprintf(&b, "Event:      %s %s\n", r.Event.Name, r.Event.DataJSON)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "Error:      %s\n", e)
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <event.json>",
		Short: "Run one system event through the pipeline",
		Long: `Run one JSON system event through the notification-open pipeline
against an in-process runtime.

The event file looks like:

  {"action": "OPEN", "extras": {"notification": {"pinpoint.deeplink": "myapp://promo/42"}}}

With --state uninitialized or initializing, the runtime becomes ready after
--init-delay and the deferred delivery is reported.

Examples:
  pushopen simulate event.json
  pushopen simulate event.json --state uninitialized --init-delay 200ms
  pushopen simulate event.json --config pushopen.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "pipeline config file (default: built-in)")
	cmd.Flags().StringVar(&opts.State, "state", "ready", "initial runtime state (uninitialized|initializing|ready)")
	cmd.Flags().DurationVar(&opts.InitDelay, "init-delay", 0, "time until the runtime becomes ready")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 5*time.Second, "maximum wait for a deferred delivery")

	return cmd
}

// capturingApp remembers the last event it received.
type capturingApp struct {
	mu    sync.Mutex
	event *EventSummary
}

func (a *capturingApp) Emit(_ context.Context, name string, body map[string]any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	data, _ := body[delivery.DataJSONKey].(string)
	a.event = &EventSummary{Name: name, DataJSON: data}
	return nil
}

func (a *capturingApp) last() *EventSummary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.event
}

func runSimulate(opts *SimulateOptions, eventPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	state, err := appctx.ParseState(opts.State)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --state", err)
	}

	cfg := config.Default()
	if opts.ConfigPath != "" {
		cfg, err = config.Load(opts.ConfigPath)
		if err != nil {
			if errors.Is(err, config.ErrInvalidConfig) {
				_ = formatter.Error(ErrCodeInvalidConfig, err.Error(), nil)
				return WrapExitError(ExitFailure, "invalid config", err)
			}
			return WrapExitError(ExitCommandError, "cannot load config", err)
		}
		opts.Logger = newLogger(cmd.ErrOrStderr(), opts.Verbose, cfg.SlogLevel())
	}

	f, err := os.Open(eventPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot open event", err)
	}
	defer f.Close()

	ev, err := payload.DecodeEvent(f)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid event", err)
	}

	app := &capturingApp{}
	var host *appctx.Host
	if state == appctx.StateReady {
		host = appctx.NewReadyHost(app, appctx.WithHostLogger(opts.Logger))
	} else {
		host = appctx.NewHost(appctx.WithInitialState(state), appctx.WithHostLogger(opts.Logger))
	}

	activator := launch.ActivatorFunc(func(_ context.Context, intent launch.Intent) error {
		formatter.VerboseLog("foreground: %s %s", intent.Kind, intent.Target())
		return nil
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pipe := pipeline.FromConfig(cfg, host, activator, pipeline.WithLogger(opts.Logger))
	report := pipe.Handle(ctx, ev)

	deliveryErr := report.DeliveryErr
	if report.Delivery == pipeline.DeliveryDeferred {
		if err := completeInitialization(ctx, host, app, opts.InitDelay); err != nil {
			return WrapExitError(ExitFailure, "runtime did not become ready", err)
		}
		waitCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
		deliveryErr = report.Wait(waitCtx)
		if errors.Is(deliveryErr, context.DeadlineExceeded) {
			return WrapExitError(ExitFailure, "deferred delivery did not complete", deliveryErr)
		}
	}

	result := summarize(report, state, app.last(), deliveryErr)
	if len(result.Errors) > 0 {
		if err := formatter.Failure(result, ErrCodePipeline, strings.Join(result.Errors, "; ")); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "pipeline reported errors")
	}
	return formatter.Success(result)
}

// completeInitialization waits delay, then marks the host ready.
func completeInitialization(ctx context.Context, host *appctx.Host, app appctx.App, delay time.Duration) error {
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return host.MarkReady(app)
}

func summarize(r *pipeline.Report, state appctx.State, ev *EventSummary, deliveryErr error) SimulateResult {
	result := SimulateResult{
		InvocationID:  r.InvocationID,
		Digest:        r.Digest,
		InitialState:  state.String(),
		Delivery:      r.Delivery.String(),
		InitRequested: r.InitRequested,
		Foregrounded:  r.Foregrounded,
		Event:         ev,
	}
	if r.PayloadErr == nil && r.LaunchErr == nil {
		result.Intent = &IntentSummary{
			Kind:   r.Intent.Kind.String(),
			Target: r.Intent.Target(),
			Flags:  r.Intent.Flags.Names(),
		}
	}
	for _, err := range []error{r.PayloadErr, r.LaunchErr, r.ForegroundErr, deliveryErr} {
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
	}
	return result
}
