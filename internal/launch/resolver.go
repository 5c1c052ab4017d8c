package launch

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/pushopen/internal/payload"
)

// ErrUnresolvedLaunchTarget is returned when a payload has no deep link and
// the host's own launch component cannot be found. No fallback is made up.
var ErrUnresolvedLaunchTarget = errors.New("unresolved launch target")

// Resolver turns a notification payload into a launch Intent.
type Resolver struct {
	identity     Identity
	deepLinkKeys []string
	logger       *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDeepLinkKeys sets the payload keys consulted, in order, for a deep link.
func WithDeepLinkKeys(keys ...string) Option {
	return func(r *Resolver) {
		if len(keys) > 0 {
			r.deepLinkKeys = append([]string(nil), keys...)
		}
	}
}

// WithLogger sets the resolver's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a Resolver that looks up default entries through id.
func NewResolver(id Identity, opts ...Option) *Resolver {
	r := &Resolver{
		identity:     id,
		deepLinkKeys: []string{payload.DefaultDeepLinkKey},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve produces the Intent for p.
//
// A non-empty deep link yields KindDeepLinkView with TargetURI set to it
// unchanged.
// Otherwise the host's own launch component becomes a KindDefaultEntry
// target; a failed lookup returns ErrUnresolvedLaunchTarget.
func (r *Resolver) Resolve(p payload.Payload) (Intent, error) {
	intent := Intent{Flags: DefaultFlags}

	if link, ok := p.DeepLink(r.deepLinkKeys...); ok {
		intent.Kind = KindDeepLinkView
		intent.TargetURI = link
	} else {
		component, err := r.lookupComponent()
		if err != nil {
			return Intent{}, err
		}
		intent.Kind = KindDefaultEntry
		intent.TargetComponent = component
	}

	// Dispatchable by any handler the OS picks.
	intent.Package = ""
	return intent, intent.Validate()
}

// lookupComponent queries the host identity. A panicking Identity, such as a
// typed nil pointer, is reported as an unresolved target.
func (r *Resolver) lookupComponent() (component string, err error) {
	if r.identity == nil {
		return "", fmt.Errorf("%w: no host identity", ErrUnresolvedLaunchTarget)
	}
	defer func() {
		if rec := recover(); rec != nil {
			component = ""
			err = fmt.Errorf("%w: identity lookup panicked: %v", ErrUnresolvedLaunchTarget, rec)
		}
	}()

	pkg := r.identity.PackageName()
	component, err = r.identity.LaunchComponent(pkg)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnresolvedLaunchTarget, err)
	}
	if component == "" {
		return "", fmt.Errorf("%w: package %q declares no launch component", ErrUnresolvedLaunchTarget, pkg)
	}

	r.logger.Debug("launch component resolved",
		"package", pkg,
		"component", component,
	)
	return component, nil
}
