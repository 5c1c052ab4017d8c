package appctx

import "context"

// App is the application layer of a Ready runtime. Emit hands one named
// event with its body to the application.
type App interface {
	Emit(ctx context.Context, name string, body map[string]any) error
}

// AppFunc adapts a function to App.
type AppFunc func(ctx context.Context, name string, body map[string]any) error

// Emit calls f.
func (f AppFunc) Emit(ctx context.Context, name string, body map[string]any) error {
	return f(ctx, name, body)
}

// Subscription is the result of Runtime.Subscribe.
type Subscription struct {
	// State is the runtime state observed atomically with the registration.
	State State

	// App is set when State is StateReady. The callback was not registered
	// in that case and the caller proceeds synchronously.
	App App

	// Cancel removes the registration. Nil when nothing was registered.
	// Calling it after the callback fired is a no-op.
	Cancel func()
}

// Registered reports whether the callback was registered.
func (s Subscription) Registered() bool {
	return s.Cancel != nil
}

// Runtime is the host-owned runtime context as the pipeline sees it.
type Runtime interface {
	// State returns the current lifecycle state.
	State() State

	// Subscribe registers fn to run exactly once when the runtime becomes
	// Ready. If it is already Ready nothing is registered and the returned
	// Subscription carries the App.
	Subscribe(fn func(App)) Subscription

	// BeginInitialization asks the host to start building the runtime.
	// It is idempotent: only the first call on an Uninitialized runtime
	// has an effect, and it reports whether this call was that one.
	BeginInitialization() bool
}
