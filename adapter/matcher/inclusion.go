package matcher

import (
	"cmp"
	"errors"
	"math"

	"github.com/vinicius-lino-figueiredo/bst"
	"github.com/vinicius-lino-figueiredo/bst/adapter/avl"
	"github.com/vinicius-lino-figueiredo/mongory/pkg/arena"
	"github.com/vinicius-lino-figueiredo/mongory/pkg/value"
)

// inclusionMatcher tests membership of the input (or, for array inputs,
// set intersection) in the condition array. Orderable condition
// elements live in a balanced tree so large $in lists probe in
// logarithmic time; everything else stays in a linear sidecar.
type inclusionMatcher struct {
	base
	negate bool
	tree   bst.BST[*value.Value, struct{}]
	rest   []*value.Value
}

// Match implements [Matcher].
func (m *inclusionMatcher) Match(v *value.Value) bool { return run(m, v, m.match) }

func (m *inclusionMatcher) match(v *value.Value) bool {
	return m.included(v) != m.negate
}

func (m *inclusionMatcher) included(v *value.Value) bool {
	if v == nil {
		return false
	}
	if v.Kind() != value.KindArray {
		return m.includesOne(v)
	}
	arr := v.Array()
	if arr == nil {
		return false
	}
	found := false
	arr.Each(func(item *value.Value) bool {
		if m.includesOne(item) {
			found = true
			return false
		}
		return true
	})
	return found
}

func (m *inclusionMatcher) includesOne(v *value.Value) bool {
	if treeRank(v) >= 0 {
		node, err := m.tree.Search(v)
		if err == nil && node != nil {
			return true
		}
	}
	for _, item := range m.rest {
		if item.Compare(v) == value.Equal {
			return true
		}
	}
	return false
}

// Traverse implements [Matcher].
func (m *inclusionMatcher) Traverse(ctx *TraverseContext) bool { return leafTraverse(m, ctx) }

// treeRank orders the tree-able kinds so mixed $in lists still form one
// total order; Int and Double share a rank because they compare equal
// across kinds. Non-orderable kinds get -1 and stay out of the tree.
func treeRank(v *value.Value) int {
	switch v.Kind() {
	case value.KindNull:
		return 0
	case value.KindBool:
		return 1
	case value.KindInt, value.KindDouble:
		return 2
	case value.KindString:
		return 3
	default:
		return -1
	}
}

var errIncomparableKeys = errors.New("incomparable inclusion keys")

type inclusionComparer struct{}

// CompareKeys implements bst.Comparer.
func (inclusionComparer) CompareKeys(a, b *value.Value) (int, error) {
	ra, rb := treeRank(a), treeRank(b)
	if ra != rb {
		return cmp.Compare(ra, rb), nil
	}
	o := a.Compare(b)
	if o == value.Incomparable {
		return 0, errIncomparableKeys
	}
	return int(o), nil
}

// CompareValues implements bst.Comparer.
func (inclusionComparer) CompareValues(struct{}, struct{}) (bool, error) {
	return true, nil
}

func (c *compiler) buildIn(cond *value.Value) Matcher {
	return c.inclusion("In", cond, false)
}

func (c *compiler) buildNin(cond *value.Value) Matcher {
	return c.inclusion("Nin", cond, true)
}

func (c *compiler) inclusion(name string, cond *value.Value, negate bool) Matcher {
	if !c.a.OK() {
		return nil
	}
	if cond.Kind() != value.KindArray || cond.Array() == nil {
		op := "$in"
		if negate {
			op = "$nin"
		}
		c.a.Fail(arena.KindInvalidArgument, op+" condition must be a valid array")
		return nil
	}
	arr := cond.Array()

	m := &inclusionMatcher{
		base:   c.newBase(name, cond, 1.0+logBase(float64(arr.Len())+1.0, 1.5)),
		negate: negate,
		tree:   avl.NewBST(true, 8, bst.Comparer[*value.Value, struct{}](inclusionComparer{})),
	}
	arr.Each(func(item *value.Value) bool {
		if treeRank(item) >= 0 {
			// A duplicate insert fails on the unique tree; membership
			// is unaffected.
			_ = m.tree.Insert(item, struct{}{})
		} else {
			m.rest = append(m.rest, item)
		}
		return true
	})
	return m
}

func logBase(x, base float64) float64 {
	return math.Log(x) / math.Log(base)
}
