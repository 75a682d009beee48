package value

import "github.com/vinicius-lino-figueiredo/mongory/pkg/arena"

// Array is an ordered sequence of value references. The default variant
// owns its bucket storage; the shallow variant reads through a foreign
// handle and rejects mutation.
type Array struct {
	a     *arena.Arena
	items []*Value

	// Shallow variant. When getAt is set, items is unused and count
	// caches the foreign length.
	handle any
	count  int
	getAt  func(handle any, index int) *Value
}

// NewArray returns an empty array building in a.
func NewArray(a *arena.Arena) *Array {
	return &Array{a: a}
}

// NewShallowArray wraps a foreign sequence read through getAt. The
// handle is retained by the arena until it is freed.
func NewShallowArray(a *arena.Arena, handle any, count int, getAt func(handle any, index int) *Value) *Array {
	a.Trace(handle, 0)
	return &Array{a: a, handle: handle, count: count, getAt: getAt}
}

// Arena returns the owning arena.
func (r *Array) Arena() *arena.Arena { return r.a }

// Len returns the number of elements.
func (r *Array) Len() int {
	if r.getAt != nil {
		return r.count
	}
	return len(r.items)
}

// Get returns the element at index, or nil when out of range.
func (r *Array) Get(index int) *Value {
	if index < 0 || index >= r.Len() {
		return nil
	}
	if r.getAt != nil {
		return r.getAt(r.handle, index)
	}
	return r.items[index]
}

// Push appends v. Unsupported on the shallow variant.
func (r *Array) Push(v *Value) bool {
	if r.getAt != nil {
		r.a.Fail(arena.KindUnsupportedOperation, "push on a shallow array")
		return false
	}
	r.items = append(r.items, v)
	return true
}

// Set stores v at index, zero-filling intermediate slots and extending
// the count when index is beyond the end. Unsupported on the shallow
// variant.
func (r *Array) Set(index int, v *Value) bool {
	if r.getAt != nil {
		r.a.Fail(arena.KindUnsupportedOperation, "set on a shallow array")
		return false
	}
	if index < 0 {
		r.a.Fail(arena.KindOutOfBounds, "negative array index")
		return false
	}
	for index >= len(r.items) {
		r.items = append(r.items, nil)
	}
	r.items[index] = v
	return true
}

// Each applies fn to every element in order, stopping early when fn
// returns false. It reports whether the iteration ran to completion.
func (r *Array) Each(fn func(item *Value) bool) bool {
	n := r.Len()
	for i := 0; i < n; i++ {
		if !fn(r.Get(i)) {
			return false
		}
	}
	return true
}

// Includes reports whether any element compares equal to v.
func (r *Array) Includes(v *Value) bool {
	found := false
	r.Each(func(item *Value) bool {
		if item.Compare(v) == Equal {
			found = true
			return false
		}
		return true
	})
	return found
}
