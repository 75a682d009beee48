package matcher

import (
	"github.com/vinicius-lino-figueiredo/mongory/pkg/arena"
	"github.com/vinicius-lino-figueiredo/mongory/pkg/value"
)

// regexMatcher defers pattern evaluation to the registered regex
// adapter; only string inputs can match.
type regexMatcher struct {
	base
}

// Match implements [Matcher].
func (m *regexMatcher) Match(v *value.Value) bool { return run(m, v, m.match) }

func (m *regexMatcher) match(v *value.Value) bool {
	if v == nil || v.Kind() != value.KindString {
		return false
	}
	if m.reg.regex == nil {
		return false
	}
	return m.reg.regex.Match(m.a, m.condition, v)
}

// Traverse implements [Matcher].
func (m *regexMatcher) Traverse(ctx *TraverseContext) bool { return leafTraverse(m, ctx) }

func (c *compiler) buildRegex(cond *value.Value) Matcher {
	if !c.a.OK() {
		return nil
	}
	if cond.Kind() != value.KindString && cond.Kind() != value.KindRegex {
		c.a.Fail(arena.KindInvalidArgument, "$regex condition must be a string or a regex object")
		return nil
	}
	m := &regexMatcher{base: c.newBase("Regex", cond, 20.0)}
	return m
}

// customMatcher evaluates a host-registered predicate through the
// custom-matcher adapter.
type customMatcher struct {
	base
	external any
}

// Match implements [Matcher].
func (m *customMatcher) Match(v *value.Value) bool { return run(m, v, m.match) }

func (m *customMatcher) match(v *value.Value) bool {
	if m.reg.custom == nil {
		return false
	}
	return m.reg.custom.Match(m.external, v)
}

// Traverse implements [Matcher].
func (m *customMatcher) Traverse(ctx *TraverseContext) bool { return leafTraverse(m, ctx) }

func (c *compiler) buildCustom(key string, cond *value.Value) Matcher {
	if c.reg.custom == nil {
		return nil
	}
	built := c.reg.custom.Build(key, cond, c.externCtx)
	if built == nil {
		c.a.Fail(arena.KindInvalidArgument, "custom matcher build failed for "+key)
		return nil
	}
	m := &customMatcher{base: c.newBase(built.Name, cond, 20.0), external: built.External}
	return m
}
