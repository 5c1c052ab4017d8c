package launch

import (
	"errors"
	"fmt"
)

// ErrComponentNotFound is returned by an Identity with no launch component
// for the requested package.
var ErrComponentNotFound = errors.New("launch component not found")

// Identity answers questions about the host process's own identity.
// The resolver queries it synchronously, at most once per resolution.
type Identity interface {
	// PackageName returns the host's own package identifier.
	PackageName() string

	// LaunchComponent returns the declared launch component of pkg.
	LaunchComponent(pkg string) (string, error)
}

// StaticIdentity is an Identity backed by a fixed table.
type StaticIdentity struct {
	Package    string
	Components map[string]string
}

// PackageName returns s.Package.
func (s StaticIdentity) PackageName() string {
	return s.Package
}

// LaunchComponent looks pkg up in s.Components.
func (s StaticIdentity) LaunchComponent(pkg string) (string, error) {
	component, ok := s.Components[pkg]
	if !ok || component == "" {
		return "", fmt.Errorf("package %q: %w", pkg, ErrComponentNotFound)
	}
	return component, nil
}
