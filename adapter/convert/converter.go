// Package convert contains the default [domain.ValueConverter]: the
// bridge turning Go maps, slices, structs and scalars into the matcher's
// value model, and back out of it.
package convert

import (
	"regexp"
	"time"

	goreflect "github.com/goccy/go-reflect"
	"github.com/mitchellh/mapstructure"

	"github.com/vinicius-lino-figueiredo/mongory/domain"
	"github.com/vinicius-lino-figueiredo/mongory/pkg/arena"
	"github.com/vinicius-lino-figueiredo/mongory/pkg/value"
)

// TagName is the struct tag read when decoding structs into condition
// tables.
const TagName = "mongory"

// Converter implements [domain.ValueConverter].
type Converter struct {
	tag string
}

// Option configures converter behavior through the functional options
// pattern.
type Option func(*Converter)

// WithTagName sets the struct tag used when decoding structs.
func WithTagName(tag string) Option {
	return func(c *Converter) {
		c.tag = tag
	}
}

// NewConverter returns a new implementation of domain.ValueConverter.
func NewConverter(options ...Option) domain.ValueConverter {
	c := &Converter{tag: TagName}
	for _, option := range options {
		option(c)
	}
	return c
}

// DeepConvert implements [domain.ValueConverter].
func (c *Converter) DeepConvert(a *arena.Arena, v any) *value.Value {
	switch t := v.(type) {
	case nil:
		return value.NewNull(a)
	case *value.Value:
		return t
	case bool:
		return value.NewBool(a, t)
	case string:
		return value.NewString(a, t)
	case int:
		return value.NewInt(a, int64(t))
	case int8:
		return value.NewInt(a, int64(t))
	case int16:
		return value.NewInt(a, int64(t))
	case int32:
		return value.NewInt(a, int64(t))
	case int64:
		return value.NewInt(a, t)
	case uint:
		return value.NewInt(a, int64(t))
	case uint8:
		return value.NewInt(a, int64(t))
	case uint16:
		return value.NewInt(a, int64(t))
	case uint32:
		return value.NewInt(a, int64(t))
	case uint64:
		return value.NewInt(a, int64(t))
	case float32:
		return value.NewDouble(a, float64(t))
	case float64:
		return value.NewDouble(a, t)
	case time.Duration:
		return value.NewInt(a, int64(t))
	case *regexp.Regexp:
		out := value.NewRegex(a, t)
		out.SetOrigin(t)
		return out
	case map[string]any:
		return c.deepMap(a, t, v)
	case []any:
		return c.deepSlice(a, t, v)
	default:
		return c.deepReflect(a, v)
	}
}

func (c *Converter) deepMap(a *arena.Arena, m map[string]any, origin any) *value.Value {
	tbl := value.NewTable(a)
	for k, item := range m {
		tbl.Set(k, c.DeepConvert(a, item))
	}
	out := value.FromTable(a, tbl)
	out.SetOrigin(origin)
	return out
}

func (c *Converter) deepSlice(a *arena.Arena, s []any, origin any) *value.Value {
	arr := value.NewArray(a)
	for _, item := range s {
		arr.Push(c.DeepConvert(a, item))
	}
	out := value.FromArray(a, arr)
	out.SetOrigin(origin)
	return out
}

// deepReflect handles the typed map/slice/struct/pointer shapes the
// fast path above does not enumerate.
func (c *Converter) deepReflect(a *arena.Arena, v any) *value.Value {
	r := goreflect.ValueOf(v)
	k := r.Kind()
	for k == goreflect.Interface || k == goreflect.Ptr {
		if r.IsNil() {
			return value.NewNull(a)
		}
		r = r.Elem()
		k = r.Kind()
	}

	switch k {
	case goreflect.Bool:
		return value.NewBool(a, r.Bool())
	case goreflect.Int, goreflect.Int8, goreflect.Int16, goreflect.Int32, goreflect.Int64:
		return value.NewInt(a, r.Int())
	case goreflect.Uint, goreflect.Uint8, goreflect.Uint16, goreflect.Uint32, goreflect.Uint64:
		return value.NewInt(a, int64(r.Uint()))
	case goreflect.Float32, goreflect.Float64:
		return value.NewDouble(a, r.Float())
	case goreflect.String:
		return value.NewString(a, r.String())
	case goreflect.Slice, goreflect.Array:
		arr := value.NewArray(a)
		for i := 0; i < r.Len(); i++ {
			arr.Push(c.DeepConvert(a, r.Index(i).Interface()))
		}
		out := value.FromArray(a, arr)
		out.SetOrigin(v)
		return out
	case goreflect.Map:
		if r.Type().Key().Kind() != goreflect.String {
			return c.unsupported(a, v)
		}
		tbl := value.NewTable(a)
		for _, key := range r.MapKeys() {
			tbl.Set(key.String(), c.DeepConvert(a, r.MapIndex(key).Interface()))
		}
		out := value.FromTable(a, tbl)
		out.SetOrigin(v)
		return out
	case goreflect.Struct:
		fields, err := c.structToMap(v)
		if err != nil {
			a.Fail(arena.KindInvalidType, "cannot convert struct: "+err.Error())
			return c.unsupported(a, v)
		}
		return c.deepMap(a, fields, v)
	default:
		return c.unsupported(a, v)
	}
}

func (c *Converter) structToMap(v any) (map[string]any, error) {
	out := map[string]any{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: c.tag,
		Result:  &out,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(v); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Converter) unsupported(a *arena.Arena, v any) *value.Value {
	a.Trace(v, 0)
	out := value.NewUnsupported(a, v)
	out.SetOrigin(v)
	return out
}

// ShallowConvert implements [domain.ValueConverter]. Collections wrap
// behind foreign-backed containers whose elements convert lazily on
// access; everything else converts eagerly.
func (c *Converter) ShallowConvert(a *arena.Arena, v any) *value.Value {
	switch t := v.(type) {
	case map[string]any:
		tbl := value.NewShallowTable(a, t, len(t), func(handle any, key string) *value.Value {
			m := handle.(map[string]any)
			item, ok := m[key]
			if !ok {
				return nil
			}
			return c.ShallowConvert(a, item)
		})
		out := value.FromTable(a, tbl)
		out.SetOrigin(v)
		return out
	case []any:
		arr := value.NewShallowArray(a, t, len(t), func(handle any, index int) *value.Value {
			return c.ShallowConvert(a, handle.([]any)[index])
		})
		out := value.FromArray(a, arr)
		out.SetOrigin(v)
		return out
	}

	r := goreflect.ValueOf(v)
	switch r.Kind() {
	case goreflect.Map:
		if r.Type().Key().Kind() != goreflect.String {
			return c.DeepConvert(a, v)
		}
		tbl := value.NewShallowTable(a, v, r.Len(), func(handle any, key string) *value.Value {
			item := goreflect.ValueOf(handle).MapIndex(goreflect.ValueOf(key))
			if !item.IsValid() {
				return nil
			}
			return c.ShallowConvert(a, item.Interface())
		})
		out := value.FromTable(a, tbl)
		out.SetOrigin(v)
		return out
	case goreflect.Slice, goreflect.Array:
		arr := value.NewShallowArray(a, v, r.Len(), func(handle any, index int) *value.Value {
			return c.ShallowConvert(a, goreflect.ValueOf(handle).Index(index).Interface())
		})
		out := value.FromArray(a, arr)
		out.SetOrigin(v)
		return out
	default:
		return c.DeepConvert(a, v)
	}
}

// Recover implements [domain.ValueConverter].
func (c *Converter) Recover(v *value.Value) any {
	if v == nil {
		return nil
	}
	if origin := v.Origin(); origin != nil {
		return origin
	}
	switch v.Kind() {
	case value.KindNull:
		return nil
	case value.KindBool:
		return v.Bool()
	case value.KindInt:
		return v.Int()
	case value.KindDouble:
		return v.Double()
	case value.KindString:
		return v.Str()
	case value.KindArray:
		out := make([]any, 0, v.Array().Len())
		v.Array().Each(func(item *value.Value) bool {
			out = append(out, c.Recover(item))
			return true
		})
		return out
	case value.KindTable:
		out := make(map[string]any, v.Table().Len())
		v.Table().Each(func(key string, item *value.Value) bool {
			out[key] = c.Recover(item)
			return true
		})
		return out
	default:
		return v.Payload()
	}
}
