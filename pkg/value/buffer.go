package value

import (
	"strconv"
	"unsafe"

	"github.com/vinicius-lino-figueiredo/mongory/pkg/arena"
)

const bufferInitSize = 64

// Buffer accumulates rendered text in arena-owned bytes. Growing copies
// into a fresh arena region; the abandoned region is reclaimed with the
// arena.
type Buffer struct {
	a *arena.Arena
	b []byte
}

// NewBuffer returns an empty buffer building into a.
func NewBuffer(a *arena.Arena) *Buffer {
	return &Buffer{a: a}
}

// Arena returns the arena the buffer builds into.
func (w *Buffer) Arena() *arena.Arena { return w.a }

// ensure guarantees room for n more bytes and returns the backing
// slice for direct append use.
func (w *Buffer) ensure(n int) []byte {
	if cap(w.b)-len(w.b) >= n {
		return w.b
	}
	size := max(cap(w.b)*2, bufferInitSize)
	for size < len(w.b)+n {
		size *= 2
	}
	nb := w.a.Alloc(size)
	if nb == nil {
		return w.b
	}
	nb = nb[:len(w.b)]
	copy(nb, w.b)
	w.b = nb
	return w.b
}

// AppendString appends s.
func (w *Buffer) AppendString(s string) {
	w.b = append(w.ensure(len(s)), s...)
}

// AppendByte appends a single byte.
func (w *Buffer) AppendByte(c byte) {
	w.b = append(w.ensure(1), c)
}

// AppendInt appends the decimal rendering of i.
func (w *Buffer) AppendInt(i int64) {
	w.b = strconv.AppendInt(w.ensure(20), i, 10)
}

// AppendDouble appends the printf-%f rendering of d.
func (w *Buffer) AppendDouble(d float64) {
	w.b = strconv.AppendFloat(w.ensure(32), d, 'f', 6, 64)
}

// AppendQuote appends s double-quoted and escaped.
func (w *Buffer) AppendQuote(s string) {
	w.b = strconv.AppendQuote(w.ensure(2*len(s)+4), s)
}

// Len returns the number of accumulated bytes.
func (w *Buffer) Len() int { return len(w.b) }

// String returns the accumulated text as a string header over the
// arena-owned bytes.
func (w *Buffer) String() string {
	if len(w.b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(w.b), len(w.b))
}

// dataPointer exposes the data word of an interface for opaque hex
// rendering of foreign payloads.
func dataPointer(x any) uintptr {
	type iface struct {
		typ, data unsafe.Pointer
	}
	return uintptr((*iface)(unsafe.Pointer(&x)).data)
}
