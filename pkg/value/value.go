// Package value contains the tagged-union document model evaluated by
// the matcher: scalars, arena-backed arrays and tables, and the foreign
// kinds (regex, pointer) bridged in by converters. Every value
// references the arena it was built in; comparison and stringification
// are operations on the variant.
package value

import (
	"cmp"
	"strconv"

	"github.com/vinicius-lino-figueiredo/mongory/pkg/arena"
)

// Kind discriminates the payload of a [Value]. It is immutable after
// construction.
type Kind uint8

const (
	// KindNull is the explicit null value.
	KindNull Kind = iota
	// KindBool is a boolean.
	KindBool
	// KindInt is a signed 64-bit integer.
	KindInt
	// KindDouble is a 64-bit float.
	KindDouble
	// KindString is a UTF-8 string copied into the arena.
	KindString
	// KindArray is an ordered sequence of values.
	KindArray
	// KindTable is a string-keyed map of values.
	KindTable
	// KindRegex is a pattern evaluated by the registered regex adapter.
	KindRegex
	// KindPointer is an opaque foreign object awaiting conversion.
	KindPointer
	// KindUnsupported is a foreign object with no conversion.
	KindUnsupported
)

// String returns the kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindDouble:
		return "Double"
	case KindString:
		return "String"
	case KindArray:
		return "Array"
	case KindTable:
		return "Table"
	case KindRegex:
		return "Regex"
	case KindPointer:
		return "Pointer"
	default:
		return "Unsupported"
	}
}

// Ordering is the four-arm result of [Value.Compare].
type Ordering int

const (
	// Less means the receiver sorts before the argument.
	Less Ordering = -1
	// Equal means both values are equal.
	Equal Ordering = 0
	// Greater means the receiver sorts after the argument.
	Greater Ordering = 1
	// Incomparable means the kinds disagree and no promotion rule
	// applies.
	Incomparable Ordering = 2
)

// Value is one node of a document. The zero value is a null.
type Value struct {
	kind   Kind
	a      *arena.Arena
	b      bool
	i      int64
	d      float64
	s      string
	arr    *Array
	tbl    *Table
	x      any
	origin any
}

// Kind returns the value's kind. A nil value counts as null.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// Arena returns the arena the value was built in.
func (v *Value) Arena() *arena.Arena { return v.a }

// Bool returns the boolean payload.
func (v *Value) Bool() bool { return v.b }

// Int returns the integer payload.
func (v *Value) Int() int64 { return v.i }

// Double returns the float payload.
func (v *Value) Double() float64 { return v.d }

// Str returns the string payload.
func (v *Value) Str() string { return v.s }

// Array returns the array payload, or nil.
func (v *Value) Array() *Array { return v.arr }

// Table returns the table payload, or nil.
func (v *Value) Table() *Table { return v.tbl }

// Payload returns the foreign payload of regex, pointer and unsupported
// values.
func (v *Value) Payload() any { return v.x }

// Origin returns the foreign object this value was converted from, if a
// converter recorded one.
func (v *Value) Origin() any { return v.origin }

// SetOrigin records the foreign object this value was converted from.
func (v *Value) SetOrigin(origin any) { v.origin = origin }

// NewNull wraps an explicit null.
func NewNull(a *arena.Arena) *Value {
	v := newValue(a)
	v.kind = KindNull
	return v
}

// NewBool wraps a boolean.
func NewBool(a *arena.Arena, b bool) *Value {
	v := newValue(a)
	v.kind = KindBool
	v.b = b
	return v
}

// NewInt wraps an integer.
func NewInt(a *arena.Arena, i int64) *Value {
	v := newValue(a)
	v.kind = KindInt
	v.i = i
	return v
}

// NewDouble wraps a float.
func NewDouble(a *arena.Arena, d float64) *Value {
	v := newValue(a)
	v.kind = KindDouble
	v.d = d
	return v
}

// NewString wraps a string. The bytes are copied into the arena.
func NewString(a *arena.Arena, s string) *Value {
	v := newValue(a)
	v.kind = KindString
	v.s = a.AllocString(s)
	return v
}

// FromArray adopts an array by reference. The array must live in the
// same arena or a longer-lived one.
func FromArray(a *arena.Arena, arr *Array) *Value {
	v := newValue(a)
	v.kind = KindArray
	v.arr = arr
	return v
}

// FromTable adopts a table by reference. The table must live in the
// same arena or a longer-lived one.
func FromTable(a *arena.Arena, tbl *Table) *Value {
	v := newValue(a)
	v.kind = KindTable
	v.tbl = tbl
	return v
}

// NewRegex wraps a pattern object interpreted by the registered regex
// adapter.
func NewRegex(a *arena.Arena, pattern any) *Value {
	v := newValue(a)
	v.kind = KindRegex
	v.x = pattern
	return v
}

// NewPointer wraps an opaque foreign object for later shallow
// conversion.
func NewPointer(a *arena.Arena, p any) *Value {
	v := newValue(a)
	v.kind = KindPointer
	v.x = p
	return v
}

// NewUnsupported wraps a foreign object that has no conversion.
func NewUnsupported(a *arena.Arena, p any) *Value {
	v := newValue(a)
	v.kind = KindUnsupported
	v.x = p
	return v
}

// Compare relates two values. Int and Double promote to double; arrays
// compare by length and then element-wise with nulls first; every other
// cross-kind pair is [Incomparable]. A nil value on either side counts
// as null.
func (v *Value) Compare(o *Value) Ordering {
	switch v.Kind() {
	case KindNull:
		if o.Kind() == KindNull {
			return Equal
		}
		return Incomparable
	case KindBool:
		if o.Kind() != KindBool {
			return Incomparable
		}
		return boolOrdering(v.b, o.b)
	case KindInt:
		switch o.Kind() {
		case KindInt:
			return Ordering(cmp.Compare(v.i, o.i))
		case KindDouble:
			return Ordering(cmp.Compare(float64(v.i), o.d))
		}
		return Incomparable
	case KindDouble:
		switch o.Kind() {
		case KindDouble:
			return Ordering(cmp.Compare(v.d, o.d))
		case KindInt:
			return Ordering(cmp.Compare(v.d, float64(o.i)))
		}
		return Incomparable
	case KindString:
		if o.Kind() != KindString {
			return Incomparable
		}
		return Ordering(cmp.Compare(v.s, o.s))
	case KindArray:
		if o.Kind() != KindArray || v.arr == nil || o.arr == nil {
			return Incomparable
		}
		return compareArrays(v.arr, o.arr)
	default:
		// Tables, regexes, pointers and unsupported values have no
		// meaningful order.
		return Incomparable
	}
}

func boolOrdering(a, b bool) Ordering {
	if a == b {
		return Equal
	}
	if a {
		return Greater
	}
	return Less
}

// compareArrays orders a shorter array before a longer one, then
// compares element-wise with null elements first.
func compareArrays(a, b *Array) Ordering {
	if a.Len() != b.Len() {
		return Ordering(cmp.Compare(a.Len(), b.Len()))
	}
	for i := 0; i < a.Len(); i++ {
		ia, ib := a.Get(i), b.Get(i)
		aNull := ia.Kind() == KindNull
		bNull := ib.Kind() == KindNull
		switch {
		case aNull && bNull:
			continue
		case aNull:
			return Less
		case bNull:
			return Greater
		}
		o := ia.Compare(ib)
		if o != Equal {
			return o
		}
	}
	return Equal
}

// String renders the value in the JSON-ish explain format, building
// only into the given arena.
func (v *Value) String(a *arena.Arena) string {
	buf := NewBuffer(a)
	v.appendTo(buf)
	return buf.String()
}

func (v *Value) appendTo(buf *Buffer) {
	switch v.Kind() {
	case KindNull:
		buf.AppendString("null")
	case KindBool:
		if v.b {
			buf.AppendString("true")
		} else {
			buf.AppendString("false")
		}
	case KindInt:
		buf.AppendInt(v.i)
	case KindDouble:
		buf.AppendDouble(v.d)
	case KindString:
		buf.AppendQuote(v.s)
	case KindArray:
		buf.AppendByte('[')
		n := 0
		v.arr.Each(func(item *Value) bool {
			if n > 0 {
				buf.AppendByte(',')
			}
			item.appendTo(buf)
			n++
			return true
		})
		buf.AppendByte(']')
	case KindTable:
		buf.AppendByte('{')
		n := 0
		v.tbl.Each(func(key string, item *Value) bool {
			if n > 0 {
				buf.AppendByte(',')
			}
			buf.AppendQuote(key)
			buf.AppendByte(':')
			item.appendTo(buf)
			n++
			return true
		})
		buf.AppendByte('}')
	case KindRegex:
		buf.AppendString(regexStringify(buf.Arena(), v))
	default:
		buf.AppendString("0x")
		buf.b = strconv.AppendUint(buf.ensure(20), uint64(dataPointer(v.x)), 16)
	}
}

// regexStringify renders regex-kind values; the registry installs the
// adapter's stringifier here. The default mirrors an empty pattern.
var regexStringify = func(a *arena.Arena, pattern *Value) string { return "//" }

// SetRegexStringifier installs the renderer used for regex-kind values.
// It is written during registry setup and read without locks afterwards.
func SetRegexStringifier(fn func(a *arena.Arena, pattern *Value) string) {
	if fn != nil {
		regexStringify = fn
	}
}
