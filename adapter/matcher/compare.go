package matcher

import "github.com/vinicius-lino-figueiredo/mongory/pkg/value"

// compareMatcher evaluates an ordering relation between the input and
// its condition. Incomparable pairs satisfy only $ne; an absent input
// takes nilResult.
type compareMatcher struct {
	base
	nilResult bool
	accept    func(value.Ordering) bool
}

// Match implements [Matcher].
func (m *compareMatcher) Match(v *value.Value) bool { return run(m, v, m.match) }

func (m *compareMatcher) match(v *value.Value) bool {
	if v == nil {
		return m.nilResult
	}
	return m.accept(v.Compare(m.condition))
}

// Traverse implements [Matcher].
func (m *compareMatcher) Traverse(ctx *TraverseContext) bool { return leafTraverse(m, ctx) }

func (c *compiler) compare(name string, cond *value.Value, priority float64, nilResult bool, accept func(value.Ordering) bool) Matcher {
	m := &compareMatcher{base: c.newBase(name, cond, priority), nilResult: nilResult, accept: accept}
	return m
}

func (c *compiler) buildEq(cond *value.Value) Matcher {
	return c.compare("Eq", cond, 1.0, false, func(o value.Ordering) bool {
		return o == value.Equal
	})
}

func (c *compiler) buildNe(cond *value.Value) Matcher {
	// Incomparable counts as "not equal".
	return c.compare("Ne", cond, 1.0, true, func(o value.Ordering) bool {
		return o != value.Equal
	})
}

func (c *compiler) buildGt(cond *value.Value) Matcher {
	return c.compare("Gt", cond, 2.0, false, func(o value.Ordering) bool {
		return o == value.Greater
	})
}

func (c *compiler) buildGte(cond *value.Value) Matcher {
	return c.compare("Gte", cond, 2.0, false, func(o value.Ordering) bool {
		return o == value.Greater || o == value.Equal
	})
}

func (c *compiler) buildLt(cond *value.Value) Matcher {
	return c.compare("Lt", cond, 2.0, false, func(o value.Ordering) bool {
		return o == value.Less
	})
}

func (c *compiler) buildLte(cond *value.Value) Matcher {
	return c.compare("Lte", cond, 2.0, false, func(o value.Ordering) bool {
		return o == value.Less || o == value.Equal
	})
}
