package matcher

import "github.com/vinicius-lino-figueiredo/mongory/pkg/arena"

// TraverseContext threads structural position through a tree walk. Each
// composite level derives a child context with its own Count/Total so
// callbacks can tell first, middle and last siblings apart; Acc is an
// opaque accumulator shared down the walk (explain threads the drawing
// prefix through it).
type TraverseContext struct {
	// Arena receives any scratch allocations the callback makes.
	Arena *arena.Arena
	// Level is the node's depth, root at zero.
	Level int
	// Count is how many siblings were visited before this one.
	Count int
	// Total is the number of siblings at this level; zero at the root.
	Total int
	// Acc is the opaque accumulator.
	Acc any
	// Callback runs once per node; returning false stops the walk.
	Callback func(m Matcher, ctx *TraverseContext) bool
}

// leafTraverse visits a node with no children.
func leafTraverse(m Matcher, ctx *TraverseContext) bool {
	if !ctx.Callback(m, ctx) {
		return false
	}
	ctx.Count++
	return true
}

// compositeTraverse visits the node, then each child under a derived
// context. The callback may rewrite Acc for its subtree; the previous
// accumulator is restored afterwards.
func compositeTraverse(m *compositeMatcher, ctx *TraverseContext) bool {
	prev := ctx.Acc
	if !leafTraverse(m, ctx) {
		return false
	}
	child := TraverseContext{
		Arena:    ctx.Arena,
		Level:    ctx.Level + 1,
		Total:    len(m.children),
		Acc:      ctx.Acc,
		Callback: ctx.Callback,
	}
	for _, ch := range m.children {
		if !ch.Traverse(&child) {
			return false
		}
	}
	ctx.Acc = prev
	return true
}

// literalTraverse visits the node, then its single active branch: the
// array specialization when built, the scalar delegate otherwise.
func literalTraverse(m Matcher, lit *literalMatcher, ctx *TraverseContext) bool {
	prev := ctx.Acc
	if !leafTraverse(m, ctx) {
		return false
	}
	next := lit.arrayRecord
	if next == nil {
		next = lit.delegate
	}
	if next == nil {
		ctx.Acc = prev
		return true
	}
	child := TraverseContext{
		Arena:    ctx.Arena,
		Level:    ctx.Level + 1,
		Total:    1,
		Acc:      ctx.Acc,
		Callback: ctx.Callback,
	}
	ok := next.Traverse(&child)
	ctx.Acc = prev
	return ok
}
