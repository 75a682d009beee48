package matcher

import (
	"cmp"
	"slices"
	"strings"

	"github.com/vinicius-lino-figueiredo/mongory/pkg/value"
)

type compositeMode int

const (
	modeAnd compositeMode = iota
	modeOr
	modeElemMatch
	modeEvery
)

// compositeMatcher holds an ordered list of children and a semantics
// selector. Children are sorted ascending by priority at build time and
// evaluated in that order.
type compositeMatcher struct {
	base
	mode     compositeMode
	children []Matcher
}

// Match implements [Matcher].
func (m *compositeMatcher) Match(v *value.Value) bool { return run(m, v, m.match) }

func (m *compositeMatcher) match(v *value.Value) bool {
	switch m.mode {
	case modeAnd:
		return m.matchAll(v)
	case modeOr:
		for _, child := range m.children {
			if child.Match(v) {
				return true
			}
		}
		return false
	case modeElemMatch:
		if v.Kind() != value.KindArray || v.Array() == nil || v.Array().Len() == 0 {
			return false
		}
		matched := false
		v.Array().Each(func(item *value.Value) bool {
			if m.matchAll(item) {
				matched = true
				return false
			}
			return true
		})
		return matched
	default: // modeEvery
		if v.Kind() != value.KindArray || v.Array() == nil || v.Array().Len() == 0 {
			return false
		}
		all := true
		v.Array().Each(func(item *value.Value) bool {
			if !m.matchAll(item) {
				all = false
				return false
			}
			return true
		})
		return all
	}
}

// matchAll is the short-circuiting AND over the children.
func (m *compositeMatcher) matchAll(v *value.Value) bool {
	for _, child := range m.children {
		if !child.Match(v) {
			return false
		}
	}
	return true
}

// Traverse implements [Matcher].
func (m *compositeMatcher) Traverse(ctx *TraverseContext) bool { return compositeTraverse(m, ctx) }

// composite wraps children in a node of the given mode, priority-sorted.
func (c *compiler) composite(name string, cond *value.Value, mode compositeMode, children []Matcher, basePriority float64) Matcher {
	sortByPriority(children)
	m := &compositeMatcher{
		base:     c.newBase(name, cond, basePriority+sumPriorities(children)),
		mode:     mode,
		children: children,
	}
	return m
}

func sumPriorities(children []Matcher) float64 {
	total := 0.0
	for _, child := range children {
		total += child.Priority()
	}
	return total
}

// sortByPriority orders children cheapest-first. The sort is stable and
// keyed by floor(priority × 10000) so near-equal priorities keep their
// condition order.
func sortByPriority(children []Matcher) {
	slices.SortStableFunc(children, func(a, b Matcher) int {
		return cmp.Compare(int64(a.Priority()*10000), int64(b.Priority()*10000))
	})
}

// tableCond compiles a table condition: one sub-matcher per key, ANDed
// together. This is the compiler's entry point.
func (c *compiler) tableCond(cond *value.Value) Matcher {
	if !c.validateTable("condition", cond) {
		return nil
	}
	tbl := cond.Table()
	if tbl.Len() == 0 {
		return c.alwaysTrue(cond)
	}

	subs := make([]Matcher, 0, tbl.Len())
	ok := tbl.Each(func(key string, sub *value.Value) bool {
		m := c.buildSub(key, sub)
		if m == nil {
			return false
		}
		subs = append(subs, m)
		return true
	})
	if !ok {
		return nil
	}
	if len(subs) == 1 {
		return subs[0]
	}
	return c.composite("Condition", cond, modeAnd, subs, 2.0)
}

// buildSub dispatches one key of a condition table: registered
// operator, host-claimed operator, or field name.
func (c *compiler) buildSub(key string, sub *value.Value) Matcher {
	if strings.HasPrefix(key, "$") {
		if build, ok := c.reg.operators[key]; ok {
			return build(c, sub)
		}
		if c.reg.custom != nil && c.reg.custom.Lookup(key) {
			return c.buildCustom(key, sub)
		}
	}
	return c.buildField(key, sub)
}

// buildAnd flattens the sub-matchers of every table in the condition
// array into one AND.
func (c *compiler) buildAnd(cond *value.Value) Matcher {
	if !c.validateArray("$and", cond) {
		return nil
	}
	arr := cond.Array()
	if arr.Len() == 0 {
		return c.alwaysTrue(cond)
	}

	var subs []Matcher
	failed := false
	arr.Each(func(item *value.Value) bool {
		if !c.validateTable("$and element", item) {
			failed = true
			return false
		}
		return item.Table().Each(func(key string, sub *value.Value) bool {
			m := c.buildSub(key, sub)
			if m == nil {
				failed = true
				return false
			}
			subs = append(subs, m)
			return true
		})
	})
	if failed {
		return nil
	}
	if len(subs) == 0 {
		return c.alwaysTrue(cond)
	}
	if len(subs) == 1 {
		return subs[0]
	}
	return c.composite("And", cond, modeAnd, subs, 2.0)
}

// buildOr compiles each table in the condition array as its own branch.
func (c *compiler) buildOr(cond *value.Value) Matcher {
	if !c.validateArray("$or", cond) {
		return nil
	}
	arr := cond.Array()
	if arr.Len() == 0 {
		return c.alwaysFalse(cond)
	}

	subs := make([]Matcher, 0, arr.Len())
	failed := false
	arr.Each(func(item *value.Value) bool {
		m := c.tableCond(item)
		if m == nil {
			failed = true
			return false
		}
		subs = append(subs, m)
		return true
	})
	if failed {
		return nil
	}
	if len(subs) == 1 {
		return subs[0]
	}
	return c.composite("Or", cond, modeOr, subs, 2.0)
}

// buildElemMatch compiles the condition table as an AND applied to each
// element of an array input; any element may satisfy it.
func (c *compiler) buildElemMatch(cond *value.Value) Matcher {
	subs := c.elementSubs("$elemMatch", cond)
	if subs == nil {
		return nil
	}
	if len(subs) == 0 {
		return c.alwaysFalse(cond)
	}
	return c.composite("ElemMatch", cond, modeElemMatch, subs, 3.0)
}

// buildEvery is $elemMatch with for-all semantics; an empty array input
// never matches.
func (c *compiler) buildEvery(cond *value.Value) Matcher {
	subs := c.elementSubs("$every", cond)
	if subs == nil {
		return nil
	}
	return c.composite("Every", cond, modeEvery, subs, 3.0)
}

// elementSubs builds the per-element sub-matchers of an element-wise
// operator. A nil return means a failed build; an empty slice means an
// empty condition.
func (c *compiler) elementSubs(name string, cond *value.Value) []Matcher {
	if !c.validateTable(name, cond) {
		return nil
	}
	subs := []Matcher{}
	ok := cond.Table().Each(func(key string, sub *value.Value) bool {
		m := c.buildSub(key, sub)
		if m == nil {
			return false
		}
		subs = append(subs, m)
		return true
	})
	if !ok {
		return nil
	}
	return subs
}
