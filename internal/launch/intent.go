package launch

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidIntent is returned by Intent.Validate.
var ErrInvalidIntent = errors.New("invalid launch intent")

// Kind is the foregrounding action an Intent requests.
type Kind int

const (
	// KindDeepLinkView views a deep-link URI.
	KindDeepLinkView Kind = iota + 1
	// KindDefaultEntry starts the host's default launch component.
	KindDefaultEntry
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDeepLinkView:
		return "DeepLinkView"
	case KindDefaultEntry:
		return "DefaultEntry"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Flag is a bit set of task-handling requests.
type Flag uint32

const (
	// FlagNewTask starts the target as a new task.
	FlagNewTask Flag = 1 << iota
	// FlagResetTaskIfNeeded resets an existing task back to its root.
	FlagResetTaskIfNeeded
)

// DefaultFlags is applied to every resolved intent.
const DefaultFlags = FlagNewTask | FlagResetTaskIfNeeded

var flagNames = []struct {
	flag Flag
	name string
}{
	{FlagNewTask, "NEW_TASK"},
	{FlagResetTaskIfNeeded, "RESET_TASK_IF_NEEDED"},
}

// Has reports whether every bit of f is set.
func (fs Flag) Has(f Flag) bool {
	return fs&f == f
}

// Names lists the set flags in bit order.
func (fs Flag) Names() []string {
	names := []string{}
	for _, fn := range flagNames {
		if fs.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return names
}

// String joins the set flag names with "|".
func (fs Flag) String() string {
	return strings.Join(fs.Names(), "|")
}

// Intent is a resolved description of how to foreground the host.
// It is constructed and consumed within one pipeline run.
type Intent struct {
	Kind Kind

	// TargetURI is set iff Kind is KindDeepLinkView.
	TargetURI string

	// TargetComponent is the host's launch component for KindDefaultEntry.
	TargetComponent string

	Flags Flag

	// Package restricts dispatch to one package. Resolved intents leave it
	// empty so the OS may route them generically.
	Package string
}

// Validate checks the kind/target invariants.
func (i Intent) Validate() error {
	switch i.Kind {
	case KindDeepLinkView:
		if i.TargetURI == "" {
			return fmt.Errorf("%w: %s without target URI", ErrInvalidIntent, i.Kind)
		}
	case KindDefaultEntry:
		if i.TargetURI != "" {
			return fmt.Errorf("%w: %s with target URI %q", ErrInvalidIntent, i.Kind, i.TargetURI)
		}
		if i.TargetComponent == "" {
			return fmt.Errorf("%w: %s without target component", ErrInvalidIntent, i.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidIntent, int(i.Kind))
	}
	return nil
}

// Target returns the URI or component the intent points at.
func (i Intent) Target() string {
	if i.Kind == KindDeepLinkView {
		return i.TargetURI
	}
	return i.TargetComponent
}

// Activator starts a foreground action on behalf of the pipeline.
// Implementations talk to the OS; the pipeline never starts one itself.
type Activator interface {
	StartForeground(ctx context.Context, intent Intent) error
}

// ActivatorFunc adapts a function to Activator.
type ActivatorFunc func(ctx context.Context, intent Intent) error

// StartForeground calls f.
func (f ActivatorFunc) StartForeground(ctx context.Context, intent Intent) error {
	return f(ctx, intent)
}
