// Package mongory provides an embeddable query engine that evaluates
// MongoDB-style condition documents against in-memory records.
//
// The basic usage starts with [Init], which builds the process registry
// with the builtin operators and the default regex and value adapters.
// A condition compiles once with [Compile] or [CompileQuery] and then
// matches any number of records; explain and trace render the compiled
// tree and the per-node outcomes of a match.
//
// A compiled matcher is owned by one goroutine while in use; callers
// that need cross-goroutine matching compile per goroutine.
package mongory

import (
	"context"
	"os"

	"github.com/vinicius-lino-figueiredo/mongory/adapter/convert"
	"github.com/vinicius-lino-figueiredo/mongory/adapter/matcher"
	"github.com/vinicius-lino-figueiredo/mongory/adapter/regexer"
	"github.com/vinicius-lino-figueiredo/mongory/domain"
	"github.com/vinicius-lino-figueiredo/mongory/pkg/arena"
	"github.com/vinicius-lino-figueiredo/mongory/pkg/value"
)

// Matcher is the compiled, evaluable form of a condition.
type Matcher = matcher.Matcher

// Registry maps operator names to builders and holds the external
// adapters.
type Registry = matcher.Registry

// Arena is the bump allocator backing values and matcher trees.
type Arena = arena.Arena

// Value is one node of a condition or record document.
type Value = value.Value

// Error is a failure recorded on an arena's error slot.
type Error = arena.Error

// NewArena creates an empty arena. Typical use keeps one compilation
// arena alive with the matcher and resets a scratch arena between
// matches.
func NewArena() *arena.Arena {
	return arena.New()
}

// Init builds the process registry: every builtin operator, the
// stdlib-regexp adapter and the reflective value converter, overridable
// through options:
//
// - [domain.WithRegexAdapter]: sets the regex engine.
//
// - [domain.WithValueConverter]: sets the host-value converter.
//
// - [domain.WithCustomMatcherAdapter]: sets the custom-operator hook.
//
// - [domain.WithTraceColorful]: toggles ANSI trace markers.
func Init(options ...domain.RegistryOption) {
	defaults := []domain.RegistryOption{
		domain.WithRegexAdapter(regexer.NewRegexer()),
		domain.WithValueConverter(convert.NewConverter()),
	}
	matcher.SetDefault(matcher.NewRegistry(append(defaults, options...)...))
}

// Cleanup drops the process registry. The next compile without an
// explicit registry rebuilds a builtin-only one.
func Cleanup() {
	matcher.SetDefault(nil)
}

// Compile translates a condition value into a matcher tree built in a.
// On failure it returns nil and the error recorded on the arena.
func Compile(a *arena.Arena, condition *value.Value, options ...matcher.Option) (Matcher, error) {
	return matcher.Compile(a, condition, options...)
}

// CompileQuery converts a Go condition document and compiles it.
func CompileQuery(a *arena.Arena, condition map[string]any, options ...matcher.Option) (Matcher, error) {
	return matcher.Compile(a, Convert(a, condition), options...)
}

// Convert turns a Go object into a value built in a, using the process
// registry's converter.
func Convert(a *arena.Arena, v any) *value.Value {
	conv := matcher.Default().Converter()
	if conv == nil {
		conv = convert.NewConverter()
	}
	return conv.DeepConvert(a, v)
}

// Match evaluates a compiled matcher against a record value.
func Match(m Matcher, record *value.Value) bool {
	return m.Match(record)
}

// MatchRecord converts a Go record into scratch and evaluates the
// matcher against it. Reset scratch between calls to reuse its
// capacity.
func MatchRecord(m Matcher, scratch *arena.Arena, record any) bool {
	return m.Match(Convert(scratch, record))
}

// Explain prints the compiled tree to stdout, one node per line in
// evaluation order, rendering through scratch.
func Explain(m Matcher, scratch *arena.Arena) error {
	return matcher.Explain(context.Background(), m, scratch, os.Stdout)
}

// EnableTrace records every node's match outcome into a stack allocated
// against scratch until [DisableTrace].
func EnableTrace(m Matcher, scratch *arena.Arena) {
	matcher.EnableTrace(m, scratch)
}

// DisableTrace restores plain matching and detaches the trace stack.
func DisableTrace(m Matcher) {
	matcher.DisableTrace(m)
}

// PrintTrace writes the recorded outcomes to stdout in tree order.
func PrintTrace(m Matcher) error {
	return matcher.PrintTrace(context.Background(), m, os.Stdout)
}

// Trace is the one-shot convenience: enable, match, print, disable.
func Trace(m Matcher, record *value.Value) bool {
	return matcher.Trace(m, record)
}
