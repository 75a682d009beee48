package value

import "github.com/vinicius-lino-figueiredo/mongory/pkg/arena"

const (
	tableInitCapacity = 17
	tableLoadFactor   = 0.75
)

type tableNode struct {
	key   string
	value *Value
	next  *tableNode
}

// Table maps UTF-8 keys to value references using chained hash buckets
// with prime capacity. Keys are copied into the arena on insert; values
// are stored by reference. Iteration order is unspecified.
type Table struct {
	a        *arena.Arena
	buckets  []*tableNode
	capacity int
	count    int

	// Shallow variant. When getByKey is set the bucket storage is
	// unused and count caches the foreign size.
	handle   any
	getByKey func(handle any, key string) *Value
}

// NewTable returns an empty table building in a.
func NewTable(a *arena.Arena) *Table {
	return &Table{
		a:        a,
		buckets:  make([]*tableNode, tableInitCapacity),
		capacity: tableInitCapacity,
	}
}

// NewShallowTable wraps a foreign mapping read through getByKey. The
// handle is retained by the arena until it is freed.
func NewShallowTable(a *arena.Arena, handle any, count int, getByKey func(handle any, key string) *Value) *Table {
	a.Trace(handle, 0)
	return &Table{a: a, handle: handle, count: count, getByKey: getByKey}
}

// Arena returns the owning arena.
func (t *Table) Arena() *arena.Arena { return t.a }

// Len returns the number of entries.
func (t *Table) Len() int { return t.count }

// hashKey is the djb2 string hash.
func hashKey(key string) uint64 {
	h := uint64(5381)
	for i := 0; i < len(key); i++ {
		h = h*33 + uint64(key[i])
	}
	return h
}

// nextPrime finds the first prime not below n.
func nextPrime(n int) int {
	if n <= 2 {
		return 2
	}
	if n%2 == 0 {
		n++
	}
	for {
		prime := true
		for i := 3; i*i <= n; i += 2 {
			if n%i == 0 {
				prime = false
				break
			}
		}
		if prime {
			return n
		}
		n += 2
	}
}

// Get returns the value under key, or nil when absent.
func (t *Table) Get(key string) *Value {
	if t.getByKey != nil {
		return t.getByKey(t.handle, key)
	}
	for node := t.buckets[hashKey(key)%uint64(t.capacity)]; node != nil; node = node.next {
		if node.key == key {
			return node.value
		}
	}
	return nil
}

// Has reports whether key is set.
func (t *Table) Has(key string) bool {
	if t.getByKey != nil {
		return t.getByKey(t.handle, key) != nil
	}
	for node := t.buckets[hashKey(key)%uint64(t.capacity)]; node != nil; node = node.next {
		if node.key == key {
			return true
		}
	}
	return false
}

// Set adds or replaces the entry under key, rehashing when the load
// factor passes the threshold. Unsupported on the shallow variant.
func (t *Table) Set(key string, v *Value) bool {
	if t.getByKey != nil {
		t.a.Fail(arena.KindUnsupportedOperation, "set on a shallow table")
		return false
	}
	index := hashKey(key) % uint64(t.capacity)
	for node := t.buckets[index]; node != nil; node = node.next {
		if node.key == key {
			node.value = v
			return true
		}
	}
	node := &tableNode{key: t.a.AllocString(key), value: v, next: t.buckets[index]}
	t.buckets[index] = node
	t.count++
	if float64(t.count) > float64(t.capacity)*tableLoadFactor {
		t.rehash()
	}
	return true
}

// rehash relinks every node into a freshly allocated bucket vector of
// the next prime capacity at least double the current one.
func (t *Table) rehash() {
	capacity := nextPrime(t.capacity * 2)
	buckets := make([]*tableNode, capacity)
	for _, head := range t.buckets {
		for node := head; node != nil; {
			next := node.next
			index := hashKey(node.key) % uint64(capacity)
			node.next = buckets[index]
			buckets[index] = node
			node = next
		}
	}
	t.buckets = buckets
	t.capacity = capacity
}

// Del removes the entry under key, reporting whether it was present.
// Unsupported on the shallow variant.
func (t *Table) Del(key string) bool {
	if t.getByKey != nil {
		t.a.Fail(arena.KindUnsupportedOperation, "delete on a shallow table")
		return false
	}
	index := hashKey(key) % uint64(t.capacity)
	var prev *tableNode
	for node := t.buckets[index]; node != nil; node = node.next {
		if node.key == key {
			if prev == nil {
				t.buckets[index] = node.next
			} else {
				prev.next = node.next
			}
			t.count--
			return true
		}
		prev = node
	}
	return false
}

// Each applies fn to every entry, stopping early when fn returns false.
// It reports whether the iteration ran to completion. The shallow
// variant cannot enumerate its foreign storage and yields nothing.
func (t *Table) Each(fn func(key string, v *Value) bool) bool {
	if t.getByKey != nil {
		return true
	}
	for _, head := range t.buckets {
		for node := head; node != nil; node = node.next {
			if !fn(node.key, node.value) {
				return false
			}
		}
	}
	return true
}

// Merge copies every entry of other into t and returns t.
func (t *Table) Merge(other *Table) *Table {
	other.Each(func(key string, v *Value) bool {
		t.Set(key, v)
		return true
	})
	return t
}
