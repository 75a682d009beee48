package matcher

import (
	"github.com/vinicius-lino-figueiredo/mongory/pkg/arena"
	"github.com/vinicius-lino-figueiredo/mongory/pkg/value"
)

// existsMatcher tests whether the input is present at all; an explicit
// null still exists.
type existsMatcher struct {
	base
	want bool
}

// Match implements [Matcher].
func (m *existsMatcher) Match(v *value.Value) bool { return run(m, v, m.match) }

func (m *existsMatcher) match(v *value.Value) bool {
	return (v != nil) == m.want
}

// Traverse implements [Matcher].
func (m *existsMatcher) Traverse(ctx *TraverseContext) bool { return leafTraverse(m, ctx) }

func (c *compiler) buildExists(cond *value.Value) Matcher {
	if !c.validateBool("$exists", cond) {
		return nil
	}
	m := &existsMatcher{base: c.newBase("Exists", cond, 2.0), want: cond.Bool()}
	return m
}

// presentMatcher tests truthy presence: not absent, not null, not an
// empty collection or string. A boolean input is present exactly when
// it equals the condition.
type presentMatcher struct {
	base
	want bool
}

// Match implements [Matcher].
func (m *presentMatcher) Match(v *value.Value) bool { return run(m, v, m.match) }

func (m *presentMatcher) match(v *value.Value) bool {
	if v == nil {
		return !m.want
	}

	var present bool
	switch v.Kind() {
	case value.KindArray:
		present = v.Array() != nil && v.Array().Len() > 0
	case value.KindTable:
		present = v.Table() != nil && v.Table().Len() > 0
	case value.KindString:
		present = v.Str() != ""
	case value.KindNull:
		present = false
	case value.KindBool:
		return v.Bool() == m.want
	default:
		present = true
	}
	return present == m.want
}

// Traverse implements [Matcher].
func (m *presentMatcher) Traverse(ctx *TraverseContext) bool { return leafTraverse(m, ctx) }

func (c *compiler) buildPresent(cond *value.Value) Matcher {
	if !c.validateBool("$present", cond) {
		return nil
	}
	m := &presentMatcher{base: c.newBase("Present", cond, 2.0), want: cond.Bool()}
	return m
}

func (c *compiler) validateBool(name string, cond *value.Value) bool {
	if !c.a.OK() {
		return false
	}
	if cond == nil || cond.Kind() != value.KindBool {
		c.a.Fail(arena.KindInvalidArgument, name+" condition must be a boolean value")
		return false
	}
	return true
}
