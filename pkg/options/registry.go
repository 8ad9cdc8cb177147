// Package options resolves a field's options source into a concrete
// value/label list. Static sources resolve inline, shared sources look
// up a named set registered with the registry, and external sources
// delegate to a caller-supplied resolver. An unresolvable source is an
// error; the engine never guesses at option lists.
package options

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-formflow/pkg/forms"
)

var (
	// ErrUnknownSet indicates a shared source references a set name
	// nobody registered.
	ErrUnknownSet = errors.New("options: unknown shared option set")
	// ErrNoExternalResolver indicates an external source with no
	// resolver wired in.
	ErrNoExternalResolver = errors.New("options: no external resolver configured")
	// ErrUnknownKind indicates an options source with an unrecognized
	// kind, which should have been rejected at publish time.
	ErrUnknownKind = errors.New("options: unknown source kind")
)

// Resolver turns an options source into its concrete option list.
type Resolver interface {
	Resolve(ctx context.Context, src forms.OptionsSource) ([]forms.Option, error)
}

// ResolverFunc adapts a function into a Resolver.
type ResolverFunc func(ctx context.Context, src forms.OptionsSource) ([]forms.Option, error)

// Resolve delegates to the underlying function.
func (fn ResolverFunc) Resolve(ctx context.Context, src forms.OptionsSource) ([]forms.Option, error) {
	return fn(ctx, src)
}

// Registry is the default Resolver: it holds named shared option sets
// (agency-wide dropdown lists reused across definitions) and optionally
// chains to an external resolver for collaborator-owned sources.
// Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sets     map[string][]forms.Option
	external Resolver
}

// Option customises a Registry.
type Option func(*Registry)

// WithExternalResolver wires the collaborator that resolves external
// option sources (for example a CRM-backed list).
func WithExternalResolver(r Resolver) Option {
	return func(reg *Registry) {
		reg.external = r
	}
}

// NewRegistry constructs an empty registry.
func NewRegistry(opts ...Option) *Registry {
	reg := &Registry{sets: make(map[string][]forms.Option)}
	for _, opt := range opts {
		opt(reg)
	}
	return reg
}

// RegisterSet stores a named shared option set. Re-registering a name
// replaces the previous list.
func (r *Registry) RegisterSet(name string, opts []forms.Option) {
	if r == nil || name == "" {
		return
	}
	cp := make([]forms.Option, len(opts))
	copy(cp, opts)

	r.mu.Lock()
	r.sets[name] = cp
	r.mu.Unlock()
}

// SetNames returns the registered shared set names in sorted order.
func (r *Registry) SetNames() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.sets))
	for name := range r.sets {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Resolve implements Resolver.
func (r *Registry) Resolve(ctx context.Context, src forms.OptionsSource) ([]forms.Option, error) {
	switch src.Kind {
	case forms.OptionsStatic:
		out := make([]forms.Option, len(src.Static))
		copy(out, src.Static)
		return out, nil

	case forms.OptionsShared:
		r.mu.RLock()
		set, ok := r.sets[src.SetName]
		r.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSet, src.SetName)
		}
		out := make([]forms.Option, len(set))
		copy(out, set)
		return out, nil

	case forms.OptionsExternal:
		if r.external == nil {
			return nil, fmt.Errorf("%w: source %q", ErrNoExternalResolver, src.External)
		}
		return r.external.Resolve(ctx, src)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, src.Kind)
	}
}
