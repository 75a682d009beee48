package matcher

import (
	"github.com/vinicius-lino-figueiredo/mongory/domain"
	"github.com/vinicius-lino-figueiredo/mongory/pkg/arena"
	"github.com/vinicius-lino-figueiredo/mongory/pkg/value"
)

// BuildFunc compiles the condition of one operator occurrence into a
// matcher node. Host-registered builders receive the compilation arena,
// the operator's condition value and the caller's external context.
type BuildFunc func(a *arena.Arena, condition *value.Value, externCtx any) Matcher

type buildFunc func(c *compiler, condition *value.Value) Matcher

// Registry maps operator names to their builders and holds the external
// adapters. It is written during setup and read without locks
// afterwards; mutation after the first compile is undefined.
type Registry struct {
	operators map[string]buildFunc
	regex     domain.RegexAdapter
	converter domain.ValueConverter
	custom    domain.CustomMatcherAdapter
	colorful  bool
}

// NewRegistry returns a registry with every builtin operator
// registered:
//
//	$in $nin $eq $ne $gt $gte $lt $lte $exists $present $regex
//	$and $or $elemMatch $every $not $size
//
// Unknown $-keys fall through to the custom-matcher adapter when its
// Lookup approves them, and are otherwise treated as field names.
func NewRegistry(options ...domain.RegistryOption) *Registry {
	opts := domain.RegistryOptions{
		RegexAdapter:  defaultRegexAdapter{},
		TraceColorful: true,
	}
	for _, option := range options {
		option(&opts)
	}

	r := &Registry{
		regex:     opts.RegexAdapter,
		converter: opts.ValueConverter,
		custom:    opts.CustomMatcherAdapter,
		colorful:  opts.TraceColorful,
	}
	r.operators = map[string]buildFunc{
		"$in":        (*compiler).buildIn,
		"$nin":       (*compiler).buildNin,
		"$eq":        (*compiler).buildEq,
		"$ne":        (*compiler).buildNe,
		"$gt":        (*compiler).buildGt,
		"$gte":       (*compiler).buildGte,
		"$lt":        (*compiler).buildLt,
		"$lte":       (*compiler).buildLte,
		"$exists":    (*compiler).buildExists,
		"$present":   (*compiler).buildPresent,
		"$regex":     (*compiler).buildRegex,
		"$and":       (*compiler).buildAnd,
		"$or":        (*compiler).buildOr,
		"$elemMatch": (*compiler).buildElemMatch,
		"$every":     (*compiler).buildEvery,
		"$not":       (*compiler).buildNot,
		"$size":      (*compiler).buildSize,
	}
	if opts.RegexAdapter != nil {
		value.SetRegexStringifier(opts.RegexAdapter.Stringify)
	}
	return r
}

// Register adds or replaces the builder for an operator name. The name
// must start with "$".
func (r *Registry) Register(name string, build BuildFunc) {
	r.operators[name] = func(c *compiler, condition *value.Value) Matcher {
		return build(c.a, condition, c.externCtx)
	}
}

// Registered reports whether an operator name has a builder.
func (r *Registry) Registered(name string) bool {
	_, ok := r.operators[name]
	return ok
}

// SetRegexAdapter replaces the regex engine, also installing its
// stringifier for regex-kind value rendering.
func (r *Registry) SetRegexAdapter(adapter domain.RegexAdapter) {
	if adapter == nil {
		return
	}
	r.regex = adapter
	value.SetRegexStringifier(adapter.Stringify)
}

// SetValueConverter replaces the host-value converter.
func (r *Registry) SetValueConverter(converter domain.ValueConverter) {
	r.converter = converter
}

// SetCustomMatcherAdapter replaces the custom-matcher adapter.
func (r *Registry) SetCustomMatcherAdapter(adapter domain.CustomMatcherAdapter) {
	r.custom = adapter
}

// SetTraceColorful toggles ANSI colorization of trace result markers.
func (r *Registry) SetTraceColorful(colorful bool) {
	r.colorful = colorful
}

// Converter returns the registered host-value converter, or nil.
func (r *Registry) Converter() domain.ValueConverter {
	return r.converter
}

// defaultRegexAdapter matches nothing and renders the empty pattern,
// the behavior expected before a host registers a real engine.
type defaultRegexAdapter struct{}

func (defaultRegexAdapter) Match(*arena.Arena, *value.Value, *value.Value) bool { return false }

func (defaultRegexAdapter) Stringify(*arena.Arena, *value.Value) string { return "//" }

var defaultRegistry *Registry

// Default returns the process registry, creating a builtin-only one on
// first use.
func Default() *Registry {
	if defaultRegistry == nil {
		defaultRegistry = NewRegistry()
	}
	return defaultRegistry
}

// SetDefault replaces the process registry. Passing nil makes the next
// Default call rebuild a builtin-only one.
func SetDefault(r *Registry) {
	defaultRegistry = r
}
