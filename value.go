package wirecodec

import (
	"fmt"
	"math"
	"reflect"
	"sort"
)

// Entry is one key/value pair of a Map.
type Entry struct {
	Key   any
	Value any
}

// Map is the ordered structured map of the wire value model. Keys are usually
// strings; formats that allow other key types keep them as they are.
type Map struct {
	Entries []Entry
}

// NewMap returns an empty Map with room for n entries.
func NewMap(n int) *Map { return &Map{Entries: make([]Entry, 0, n)} }

// Set appends or replaces the entry for key.
func (m *Map) Set(key string, v any) *Map {
	for i := range m.Entries {
		if k, ok := m.Entries[i].Key.(string); ok && k == key {
			m.Entries[i].Value = v
			return m
		}
	}
	m.Entries = append(m.Entries, Entry{Key: key, Value: v})
	return m
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	for _, e := range m.Entries {
		if k, ok := e.Key.(string); ok && k == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Entries)
}

// Keys returns the keys in order, formatting non-string keys with %v.
func (m *Map) Keys() []string {
	out := make([]string, 0, m.Len())
	for _, e := range m.Entries {
		if k, ok := e.Key.(string); ok {
			out = append(out, k)
			continue
		}
		out = append(out, fmt.Sprint(e.Key))
	}
	return out
}

// Encode converts v into the wire value model. Marshalers encode themselves;
// Go scalars, slices and maps are converted structurally, with Go map keys
// emitted in sorted order.
func Encode(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case Marshaler:
		w, err := x.MarshalWire()
		if err != nil {
			return nil, err
		}
		if _, again := w.(Marshaler); again {
			return nil, fmt.Errorf("wirecodec: %T.MarshalWire returned a Marshaler", v)
		}
		return Encode(w)
	case bool, string, int64, float64:
		return x, nil
	case []byte:
		return x, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint:
		return encodeUint(uint64(x))
	case uint64:
		return encodeUint(x)
	case float32:
		return float64(x), nil
	case *Map:
		if x == nil {
			return nil, nil
		}
		out := NewMap(len(x.Entries))
		for _, e := range x.Entries {
			k, err := Encode(e.Key)
			if err != nil {
				return nil, err
			}
			ev, err := Encode(e.Value)
			if err != nil {
				return nil, AtPath(err, fmt.Sprint(e.Key))
			}
			out.Entries = append(out.Entries, Entry{Key: k, Value: ev})
		}
		return out, nil
	case Map:
		return Encode(&x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			ev, err := Encode(e)
			if err != nil {
				return nil, AtIndex(err, i)
			}
			out[i] = ev
		}
		return out, nil
	}
	return encodeReflect(reflect.ValueOf(v))
}

func encodeUint(u uint64) (any, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("wirecodec: integer %d overflows int64", u)
	}
	return int64(u), nil
}

func encodeReflect(rv reflect.Value) (any, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return Encode(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := Encode(rv.Index(i).Interface())
			if err != nil {
				return nil, AtIndex(err, i)
			}
			out[i] = ev
		}
		return out, nil
	case reflect.Map:
		type kv struct {
			sortKey string
			key     any
			val     reflect.Value
		}
		kvs := make([]kv, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k, err := Encode(iter.Key().Interface())
			if err != nil {
				return nil, err
			}
			kvs = append(kvs, kv{sortKey: fmt.Sprint(k), key: k, val: iter.Value()})
		}
		sort.Slice(kvs, func(i, j int) bool { return kvs[i].sortKey < kvs[j].sortKey })
		out := NewMap(len(kvs))
		for _, e := range kvs {
			ev, err := Encode(e.val.Interface())
			if err != nil {
				return nil, AtPath(err, e.sortKey)
			}
			out.Entries = append(out.Entries, Entry{Key: e.key, Value: ev})
		}
		return out, nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return encodeUint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}
	return nil, fmt.Errorf("wirecodec: cannot encode %s", rv.Type())
}

// KindOf names the wire shape of v for error messages.
func KindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	case float32, float64:
		return "number"
	case string:
		return "string"
	case []byte:
		return "bytes"
	case []any:
		return "sequence"
	case *Map, map[string]any, map[any]any:
		return "map"
	}
	return fmt.Sprintf("%T", v)
}
