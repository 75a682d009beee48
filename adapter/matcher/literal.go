package matcher

import (
	"strconv"

	"github.com/vinicius-lino-figueiredo/mongory/pkg/value"
)

// literalMatcher routes an input to the scalar-path delegate or, for
// array inputs, to the lazily built array specialization. It is always
// embedded in a concrete node (field, not, size).
type literalMatcher struct {
	base
	delegate         Matcher
	arrayRecord      Matcher
	arrayRecordBuilt bool
}

func (m *literalMatcher) match(v *value.Value) bool {
	if v != nil && v.Kind() == value.KindArray {
		ar := m.ensureArrayRecord()
		return ar != nil && ar.Match(v)
	}
	return m.delegate != nil && m.delegate.Match(v)
}

// ensureArrayRecord builds the array specialization on first use. The
// build is pinned to the compilation arena so a scratch-arena reset
// between matches cannot dangle it.
func (m *literalMatcher) ensureArrayRecord() Matcher {
	if !m.arrayRecordBuilt {
		m.arrayRecordBuilt = true
		c := &compiler{a: m.a, reg: m.reg, externCtx: m.externCtx}
		m.arrayRecord = c.arrayRecord(m.condition)
	}
	return m.arrayRecord
}

// resetArrayRecord drops the built specialization so the next array
// input rebuilds it.
func (m *literalMatcher) resetArrayRecord() {
	m.arrayRecord = nil
	m.arrayRecordBuilt = false
}

type arrayRecordHolder interface {
	resetArrayRecord()
}

// ResetArrayRecords drops every lazily built array specialization in
// the tree. Embedders that compiled into a since-reset arena call it
// before reusing the matcher.
func ResetArrayRecords(m Matcher) {
	m.Traverse(&TraverseContext{Callback: func(node Matcher, _ *TraverseContext) bool {
		if holder, ok := node.(arrayRecordHolder); ok {
			holder.resetArrayRecord()
		}
		return true
	}})
}

// literalDelegate picks the scalar-path evaluator from the condition's
// kind: nested tables recurse, regexes defer to the adapter, an
// explicit null means "missing or null", anything else is equality.
func (c *compiler) literalDelegate(cond *value.Value) Matcher {
	switch cond.Kind() {
	case value.KindTable:
		return c.tableCond(cond)
	case value.KindRegex:
		return c.buildRegex(cond)
	case value.KindNull:
		return c.nullLiteral()
	default:
		return c.buildEq(cond)
	}
}

// nullLiteral builds Or($eq: null, $exists: false), matching fields
// that are explicitly null or missing entirely.
func (c *compiler) nullLiteral() Matcher {
	eq := value.NewTable(c.a)
	eq.Set("$eq", value.NewNull(c.a))
	exists := value.NewTable(c.a)
	exists.Set("$exists", value.NewBool(c.a, false))

	arr := value.NewArray(c.a)
	arr.Push(value.FromTable(c.a, eq))
	arr.Push(value.FromTable(c.a, exists))
	return c.buildOr(value.FromArray(c.a, arr))
}

// fieldMatcher extracts a sub-value by table key or array index and
// applies its literal to it.
type fieldMatcher struct {
	literalMatcher
	field string
}

// Match implements [Matcher].
func (m *fieldMatcher) Match(v *value.Value) bool { return run(m, v, m.match) }

func (m *fieldMatcher) match(v *value.Value) bool {
	if v == nil {
		return false
	}

	var fieldValue *value.Value
	switch v.Kind() {
	case value.KindTable:
		if v.Table() == nil {
			return false
		}
		fieldValue = v.Table().Get(m.field)
	case value.KindArray:
		arr := v.Array()
		if arr == nil {
			return false
		}
		index, err := strconv.Atoi(m.field)
		if err != nil {
			return false
		}
		if index < 0 {
			if -index > arr.Len() {
				return false
			}
			index += arr.Len()
		}
		if index >= arr.Len() {
			return false
		}
		fieldValue = arr.Get(index)
	default:
		return false
	}

	if fieldValue != nil && fieldValue.Kind() == value.KindPointer && m.reg.converter != nil {
		a := fieldValue.Arena()
		if a == nil {
			a = m.a
		}
		fieldValue = m.reg.converter.ShallowConvert(a, fieldValue.Payload())
	}
	return m.literalMatcher.match(fieldValue)
}

// Traverse implements [Matcher].
func (m *fieldMatcher) Traverse(ctx *TraverseContext) bool {
	return literalTraverse(m, &m.literalMatcher, ctx)
}

func (c *compiler) buildField(key string, cond *value.Value) Matcher {
	delegate := c.literalDelegate(cond)
	if delegate == nil {
		return nil
	}
	m := &fieldMatcher{
		literalMatcher: literalMatcher{
			base:     c.newBase("Field", cond, 1.0+delegate.Priority()),
			delegate: delegate,
		},
		field: c.a.AllocString(key),
	}
	return m
}

// notMatcher negates its literal.
type notMatcher struct {
	literalMatcher
}

// Match implements [Matcher].
func (m *notMatcher) Match(v *value.Value) bool { return run(m, v, m.match) }

func (m *notMatcher) match(v *value.Value) bool {
	return !m.literalMatcher.match(v)
}

// Traverse implements [Matcher].
func (m *notMatcher) Traverse(ctx *TraverseContext) bool {
	return literalTraverse(m, &m.literalMatcher, ctx)
}

func (c *compiler) buildNot(cond *value.Value) Matcher {
	delegate := c.literalDelegate(cond)
	if delegate == nil {
		return nil
	}
	m := &notMatcher{literalMatcher{
		base:     c.newBase("Not", cond, 1.0+delegate.Priority()),
		delegate: delegate,
	}}
	return m
}

// sizeMatcher evaluates its literal against an array input's length,
// wrapped as an Int in the input's own arena so nothing outlives a
// scratch reset.
type sizeMatcher struct {
	literalMatcher
}

// Match implements [Matcher].
func (m *sizeMatcher) Match(v *value.Value) bool { return run(m, v, m.match) }

func (m *sizeMatcher) match(v *value.Value) bool {
	if v == nil || v.Kind() != value.KindArray || v.Array() == nil {
		return false
	}
	a := v.Arena()
	if a == nil {
		a = m.a
	}
	return m.literalMatcher.match(value.NewInt(a, int64(v.Array().Len())))
}

// Traverse implements [Matcher].
func (m *sizeMatcher) Traverse(ctx *TraverseContext) bool {
	return literalTraverse(m, &m.literalMatcher, ctx)
}

func (c *compiler) buildSize(cond *value.Value) Matcher {
	delegate := c.literalDelegate(cond)
	if delegate == nil {
		return nil
	}
	m := &sizeMatcher{literalMatcher{
		base:     c.newBase("Size", cond, 1.0+delegate.Priority()),
		delegate: delegate,
	}}
	return m
}
