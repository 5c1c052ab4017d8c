package testutil

import (
	"context"
	"sync"

	"github.com/roach88/pushopen/internal/launch"
)

// Emission is one event received by a RecordingApp.
type Emission struct {
	Name string
	Body map[string]any
}

// RecordingApp is an appctx.App that records every emitted event.
// Set Fail to make Emit return an error after recording.
//
// Thread-safety: safe for concurrent use.
type RecordingApp struct {
	mu        sync.Mutex
	emissions []Emission
	fail      error
}

// NewRecordingApp creates an empty RecordingApp.
func NewRecordingApp() *RecordingApp {
	return &RecordingApp{}
}

// Emit records the event.
func (a *RecordingApp) Emit(_ context.Context, name string, body map[string]any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.emissions = append(a.emissions, Emission{Name: name, Body: body})
	return a.fail
}

// FailWith makes later Emit calls return err. Nil restores success.
func (a *RecordingApp) FailWith(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fail = err
}

// Emissions returns a copy of the recorded events.
func (a *RecordingApp) Emissions() []Emission {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Emission(nil), a.emissions...)
}

// Count returns the number of recorded events.
func (a *RecordingApp) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.emissions)
}

// RecordingActivator is a launch.Activator that records every intent.
//
// Thread-safety: safe for concurrent use.
type RecordingActivator struct {
	mu      sync.Mutex
	intents []launch.Intent
	fail    error
}

// NewRecordingActivator creates an empty RecordingActivator.
func NewRecordingActivator() *RecordingActivator {
	return &RecordingActivator{}
}

// StartForeground records intent.
func (a *RecordingActivator) StartForeground(_ context.Context, intent launch.Intent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.intents = append(a.intents, intent)
	return a.fail
}

// FailWith makes later StartForeground calls return err.
func (a *RecordingActivator) FailWith(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fail = err
}

// Intents returns a copy of the recorded intents.
func (a *RecordingActivator) Intents() []launch.Intent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]launch.Intent(nil), a.intents...)
}
