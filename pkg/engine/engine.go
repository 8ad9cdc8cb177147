// Package engine composes the definition model, conditional visibility
// and validation into the form service: what does the client see next,
// is this submittable, and what percentage is it at. The engine holds no
// mutable state; every operation takes definition and response
// snapshots and returns a new response, so callers own persistence and
// concurrency entirely.
package engine

import (
	"context"
	"time"

	playground "github.com/go-playground/validator/v10"

	"github.com/goliatone/go-formflow/pkg/options"
)

// Engine answers visibility, completion and submission questions for
// one (definition, response) pair at a time. Safe for concurrent use.
type Engine struct {
	resolver options.Resolver
	structs  *playground.Validate
	now      func() time.Time
	optCtx   context.Context
}

// Option customises the engine.
type Option func(*Engine)

// WithOptionsResolver wires the resolver used to expand option sources
// when validating choice fields and checking definitions. Without one,
// only static sources are checkable and enumerated-value validation is
// skipped for shared/external sources. A nil resolver keeps the
// default empty registry.
func WithOptionsResolver(r options.Resolver) Option {
	return func(e *Engine) {
		if r != nil {
			e.resolver = r
		}
	}
}

// WithClock overrides the time source. Tests use this to pin
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New constructs an engine. By default it resolves static option
// sources through an empty registry and stamps with time.Now.
func New(opts ...Option) *Engine {
	e := &Engine{
		resolver: options.NewRegistry(),
		structs:  playground.New(),
		now:      time.Now,
		optCtx:   context.Background(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
