// Package matcher contains the condition compiler and the evaluator it
// produces: a tree of typed matcher nodes, each answering whether a
// value satisfies its condition, plus the traverse infrastructure that
// powers explain and trace.
package matcher

import (
	"github.com/vinicius-lino-figueiredo/mongory/pkg/arena"
	"github.com/vinicius-lino-figueiredo/mongory/pkg/value"
)

// Matcher is a compiled condition node. A matcher tree is immutable
// after compilation except for the lazy array specialization of literal
// nodes and trace enable/disable, so it must be owned by one goroutine
// while in use.
type Matcher interface {
	// Match reports whether record satisfies the node's condition. A
	// nil record is the absent value. Match never fails; pathological
	// inputs evaluate to false.
	Match(record *value.Value) bool
	// Traverse walks the node and its children with the context's
	// callback, stopping early when it returns false.
	Traverse(ctx *TraverseContext) bool
	// Name returns the short identifier used in explain and trace.
	Name() string
	// Condition returns the value this node was compiled from.
	Condition() *value.Value
	// Priority orders siblings inside composite nodes, cheapest first.
	Priority() float64

	baseOf() *base
}

// base carries the fields shared by every node.
type base struct {
	name       string
	condition  *value.Value
	a          *arena.Arena
	reg        *Registry
	externCtx  any
	priority   float64
	sink       *traceSink
	traceLevel int
}

// Name implements [Matcher].
func (b *base) Name() string { return b.name }

// Condition implements [Matcher].
func (b *base) Condition() *value.Value { return b.condition }

// Priority implements [Matcher].
func (b *base) Priority() float64 { return b.priority }

func (b *base) baseOf() *base { return b }

// run evaluates raw and, while tracing is enabled, appends the outcome
// to the shared trace stack.
func run(m Matcher, v *value.Value, raw func(*value.Value) bool) bool {
	matched := raw(v)
	if b := m.baseOf(); b.sink != nil {
		b.sink.record(m, v, matched)
	}
	return matched
}

// alwaysMatcher is the trivial node produced by empty-condition
// normalizations.
type alwaysMatcher struct {
	base
	result bool
}

// Match implements [Matcher].
func (m *alwaysMatcher) Match(v *value.Value) bool { return run(m, v, m.match) }

func (m *alwaysMatcher) match(*value.Value) bool { return m.result }

// Traverse implements [Matcher].
func (m *alwaysMatcher) Traverse(ctx *TraverseContext) bool { return leafTraverse(m, ctx) }

// compiler threads the arena, registry and external context through a
// single compilation.
type compiler struct {
	a         *arena.Arena
	reg       *Registry
	externCtx any
}

func (c *compiler) newBase(name string, cond *value.Value, priority float64) base {
	return base{
		name:      name,
		condition: cond,
		a:         c.a,
		reg:       c.reg,
		externCtx: c.externCtx,
		priority:  priority,
	}
}

func (c *compiler) alwaysTrue(cond *value.Value) Matcher {
	m := &alwaysMatcher{base: c.newBase("Always True", cond, 1.0), result: true}
	return m
}

func (c *compiler) alwaysFalse(cond *value.Value) Matcher {
	m := &alwaysMatcher{base: c.newBase("Always False", cond, 1.0), result: false}
	return m
}

// validateTable reports whether cond is a usable table condition,
// recording the failure on the arena otherwise. An already-failed arena
// short-circuits.
func (c *compiler) validateTable(name string, cond *value.Value) bool {
	if !c.a.OK() {
		return false
	}
	if cond.Kind() != value.KindTable || cond.Table() == nil {
		c.a.Fail(arena.KindInvalidType, name+" needs Table, got "+cond.Kind().String())
		return false
	}
	return true
}

func (c *compiler) validateArray(name string, cond *value.Value) bool {
	if !c.a.OK() {
		return false
	}
	if cond.Kind() != value.KindArray || cond.Array() == nil {
		c.a.Fail(arena.KindInvalidType, name+" needs Array, got "+cond.Kind().String())
		return false
	}
	return true
}

// Options carries per-compilation settings.
type Options struct {
	// Registry resolves operators and adapters; defaults to the
	// process registry.
	Registry *Registry
	// ExternContext is an opaque value threaded to every node for use
	// by custom matchers.
	ExternContext any
}

// Option configures a compilation through the functional options
// pattern.
type Option func(*Options)

// WithRegistry sets the registry resolving operators and adapters.
func WithRegistry(r *Registry) Option {
	return func(o *Options) {
		o.Registry = r
	}
}

// WithExternContext sets the opaque context threaded to custom
// matchers.
func WithExternContext(ctx any) Option {
	return func(o *Options) {
		o.ExternContext = ctx
	}
}

// Compile translates a table condition into a matcher tree built in a.
// On failure it returns nil and the error recorded on the arena's error
// slot.
func Compile(a *arena.Arena, condition *value.Value, options ...Option) (Matcher, error) {
	opts := Options{Registry: Default()}
	for _, option := range options {
		option(&opts)
	}

	c := &compiler{a: a, reg: opts.Registry, externCtx: opts.ExternContext}
	m := c.tableCond(condition)
	if err := a.Err(); err != nil {
		return nil, err
	}
	if m == nil {
		a.Fail(arena.KindUnknown, "condition did not compile")
		return nil, a.Err()
	}
	return m, nil
}

// Match evaluates a compiled matcher against a record.
func Match(m Matcher, record *value.Value) bool {
	return m.Match(record)
}
