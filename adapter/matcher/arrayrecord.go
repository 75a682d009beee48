package matcher

import (
	"strconv"
	"strings"

	"github.com/vinicius-lino-figueiredo/mongory/pkg/value"
)

// arrayRecord builds the array-input specialization of a literal: the
// MongoDB field-matching rule where a scalar condition against an array
// field becomes an element-wise test, while whole-array equality is
// kept where it is meaningful.
func (c *compiler) arrayRecord(cond *value.Value) Matcher {
	switch cond.Kind() {
	case value.KindTable:
		parsed := c.arrayRecordParseTable(cond)
		if parsed == nil {
			return nil
		}
		return c.tableCond(parsed)
	case value.KindArray:
		// Either the whole array equals the condition, or some element
		// does.
		branches := value.NewArray(c.a)
		branches.Push(value.FromTable(c.a, c.singleton("$eq", cond)))
		branches.Push(value.FromTable(c.a, c.singleton("$elemMatch",
			value.FromTable(c.a, c.singleton("$eq", cond)))))
		return c.buildOr(value.FromArray(c.a, branches))
	case value.KindRegex:
		return c.buildElemMatch(value.FromTable(c.a, c.singleton("$regex", cond)))
	default:
		return c.buildElemMatch(value.FromTable(c.a, c.singleton("$eq", cond)))
	}
}

// arrayRecordParseTable splits a table condition into operator/indexed
// keys applied to the array directly and field keys applied to its
// elements; the element bucket, merged with any explicit $elemMatch,
// is re-attached as $elemMatch.
func (c *compiler) arrayRecordParseTable(cond *value.Value) *value.Value {
	direct := value.NewTable(c.a)
	elem := value.NewTable(c.a)

	cond.Table().Each(func(key string, sub *value.Value) bool {
		switch {
		case key == "$elemMatch" && sub.Kind() == value.KindTable && sub.Table() != nil:
			elem.Merge(sub.Table())
		case strings.HasPrefix(key, "$") || parsesAsInt(key):
			direct.Set(key, sub)
		default:
			elem.Set(key, sub)
		}
		return true
	})

	if elem.Len() > 0 {
		direct.Set("$elemMatch", value.FromTable(c.a, elem))
	}
	return value.FromTable(c.a, direct)
}

func (c *compiler) singleton(key string, v *value.Value) *value.Table {
	t := value.NewTable(c.a)
	t.Set(key, v)
	return t
}

func parsesAsInt(key string) bool {
	_, err := strconv.Atoi(key)
	return err == nil
}
