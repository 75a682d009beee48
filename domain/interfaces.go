// Package domain contains the interfaces and option types that bind the
// matcher core to its external collaborators: the regex engine, the
// host-value converter and host-registered custom predicates.
package domain

import (
	"github.com/vinicius-lino-figueiredo/mongory/pkg/arena"
	"github.com/vinicius-lino-figueiredo/mongory/pkg/value"
)

// RegexAdapter evaluates and renders regex-kind conditions. The core
// never interprets patterns itself; the default adapter matches nothing
// and renders "//".
type RegexAdapter interface {
	// Match reports whether input (a string value) matches pattern (a
	// string or regex value). Scratch allocations go into a.
	Match(a *arena.Arena, pattern, input *value.Value) bool
	// Stringify renders pattern for explain and trace output.
	Stringify(a *arena.Arena, pattern *value.Value) string
}

// ValueConverter bridges foreign objects in and out of the value model.
type ValueConverter interface {
	// DeepConvert recursively converts a host object into values built
	// in a.
	DeepConvert(a *arena.Arena, v any) *value.Value
	// ShallowConvert wraps a host collection behind a foreign-backed
	// array or table; elements convert lazily on access.
	ShallowConvert(a *arena.Arena, v any) *value.Value
	// Recover returns the host object a value was converted from.
	Recover(v *value.Value) any
}

// CustomMatcher is the compiled form of a host-registered predicate.
type CustomMatcher struct {
	// Name labels the node in explain and trace output.
	Name string
	// External is the host-side matcher state passed back to
	// [CustomMatcherAdapter.Match].
	External any
}

// CustomMatcherAdapter lets the host claim unregistered $-operators.
type CustomMatcherAdapter interface {
	// Lookup reports whether the host handles the operator key.
	Lookup(key string) bool
	// Build compiles the host-side matcher for key, or returns nil on
	// failure.
	Build(key string, condition *value.Value, externCtx any) *CustomMatcher
	// Match evaluates the host-side matcher against v.
	Match(external any, v *value.Value) bool
}
