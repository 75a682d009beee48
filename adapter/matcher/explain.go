package matcher

import (
	"context"
	"fmt"
	"io"

	"github.com/dolmen-go/contextio"
	"github.com/vinicius-lino-figueiredo/mongory/pkg/arena"
	"github.com/vinicius-lino-figueiredo/mongory/pkg/value"
)

// Explain renders the compiled tree as indented text, one node per
// line, children in their priority-sorted evaluation order. Titles
// build into scratch; a cancelled context stops the render mid-tree.
func Explain(ctx context.Context, m Matcher, scratch *arena.Arena, w io.Writer) error {
	cw := contextio.NewWriter(ctx, w)
	m.Traverse(&TraverseContext{
		Arena: scratch,
		Acc:   "",
		Callback: func(node Matcher, tc *TraverseContext) bool {
			prefix, _ := tc.Acc.(string)
			line := prefix + tailConnection(tc.Count, tc.Total) + explainTitle(node, scratch)
			if _, err := fmt.Fprintln(cw, line); err != nil {
				scratch.Fail(arena.KindIO, err.Error())
				return false
			}
			switch node.(type) {
			case *compositeMatcher, *fieldMatcher, *notMatcher, *sizeMatcher:
				tc.Acc = prefix + indentConnection(tc.Count, tc.Total)
			}
			return true
		},
	})
	return scratch.Err()
}

// explainTitle renders one node's line body. Field nodes name the field
// they descend into; everything else prints its name and condition.
func explainTitle(node Matcher, a *arena.Arena) string {
	buf := value.NewBuffer(a)
	if f, ok := node.(*fieldMatcher); ok {
		buf.AppendString(`Field: "`)
		buf.AppendString(f.field)
		buf.AppendString(`", to match: `)
	} else {
		buf.AppendString(node.Name())
		buf.AppendString(": ")
	}
	buf.AppendString(node.Condition().String(a))
	return buf.String()
}

func tailConnection(count, total int) string {
	if total == 0 {
		return ""
	}
	if total-count == 1 {
		return "└─ "
	}
	return "├─ "
}

func indentConnection(count, total int) string {
	if total == 0 {
		return ""
	}
	if total-count == 1 {
		return "   "
	}
	return "│  "
}
