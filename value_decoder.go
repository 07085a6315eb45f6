package wirecodec

import (
	"encoding/base64"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// NewValueDecoder returns a Decoder over an in-memory wire value. Plain Go maps
// are accepted too; their entries are visited in sorted key order.
func NewValueDecoder(v any) Decoder { return valueDecoder{v: v} }

type valueDecoder struct{ v any }

func (d valueDecoder) DecodeBool() (bool, error) {
	if b, ok := d.v.(bool); ok {
		return b, nil
	}
	return false, Mismatch("boolean", KindOf(d.v))
}

func (d valueDecoder) DecodeInt() (int64, error) {
	switch x := d.v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, &TypeMismatchError{Expected: "integer", Found: "integer", Cause: fmt.Errorf("%d overflows int64", x)}
		}
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint:
		return int64(x), nil
	}
	return 0, Mismatch("integer", KindOf(d.v))
}

func (d valueDecoder) DecodeFloat() (float64, error) {
	switch x := d.v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case string:
		if f, ok := ParseSpecialFloat(x); ok {
			return f, nil
		}
		return 0, Mismatch("number", "string")
	}
	i, err := d.DecodeInt()
	if err != nil {
		return 0, Mismatch("number", KindOf(d.v))
	}
	return float64(i), nil
}

func (d valueDecoder) DecodeString() (string, error) {
	if s, ok := d.v.(string); ok {
		return s, nil
	}
	return "", Mismatch("string", KindOf(d.v))
}

func (d valueDecoder) DecodeBytes() ([]byte, error) {
	switch x := d.v.(type) {
	case []byte:
		return x, nil
	case string:
		b, err := base64.StdEncoding.DecodeString(x)
		if err != nil {
			return nil, &TypeMismatchError{Expected: "base64 bytes", Found: "string", Cause: err}
		}
		return b, nil
	}
	return nil, Mismatch("bytes", KindOf(d.v))
}

func (d valueDecoder) DecodeUnit() error {
	if d.v == nil {
		return nil
	}
	return Mismatch("null", KindOf(d.v))
}

func (d valueDecoder) DecodeAny() (any, error) { return Encode(d.v) }

func (d valueDecoder) DecodeOptional() (Decoder, bool, error) {
	if d.v == nil {
		return nil, false, nil
	}
	return d, true, nil
}

func (d valueDecoder) DecodeSeq() (SeqCursor, error) {
	switch x := d.v.(type) {
	case []any:
		return &valueSeq{items: x}, nil
	}
	return nil, Mismatch("sequence", KindOf(d.v))
}

func (d valueDecoder) DecodeMap() (MapCursor, error) {
	m, err := d.asMap()
	if err != nil {
		return nil, err
	}
	return &valueMap{entries: m.Entries, pos: -1}, nil
}

func (d valueDecoder) DecodeRecord(fields []string) (MapCursor, error) { return d.DecodeMap() }

func (d valueDecoder) DecodeVariant() (VariantCursor, error) {
	m, err := d.asMap()
	if err != nil {
		return nil, err
	}
	return &valueVariant{entries: m.Entries, pos: -1}, nil
}

func (d valueDecoder) Skip() error { return nil }

func (d valueDecoder) asMap() (*Map, error) {
	switch x := d.v.(type) {
	case *Map:
		if x == nil {
			return nil, Mismatch("map", "null")
		}
		return x, nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMap(len(keys))
		for _, k := range keys {
			m.Entries = append(m.Entries, Entry{Key: k, Value: x[k]})
		}
		return m, nil
	case map[any]any:
		m := NewMap(len(x))
		for k, v := range x {
			m.Entries = append(m.Entries, Entry{Key: k, Value: v})
		}
		sort.SliceStable(m.Entries, func(i, j int) bool {
			return fmt.Sprint(m.Entries[i].Key) < fmt.Sprint(m.Entries[j].Key)
		})
		return m, nil
	}
	return nil, Mismatch("map", KindOf(d.v))
}

type valueSeq struct {
	items []any
	pos   int
}

func (s *valueSeq) Next() (Decoder, bool, error) {
	if s.pos >= len(s.items) {
		return nil, false, nil
	}
	d := valueDecoder{v: s.items[s.pos]}
	s.pos++
	return d, true, nil
}

type valueMap struct {
	entries []Entry
	pos     int
}

func (m *valueMap) NextKey() (Decoder, bool, error) {
	m.pos++
	if m.pos >= len(m.entries) {
		return nil, false, nil
	}
	if s, ok := m.entries[m.pos].Key.(string); ok {
		return NewKeyDecoder(s), true, nil
	}
	return valueDecoder{v: m.entries[m.pos].Key}, true, nil
}

func (m *valueMap) NextValue() (Decoder, error) {
	if m.pos < 0 || m.pos >= len(m.entries) {
		return nil, fmt.Errorf("wirecodec: NextValue called without a key")
	}
	return valueDecoder{v: m.entries[m.pos].Value}, nil
}

type valueVariant struct {
	entries []Entry
	pos     int
}

func (v *valueVariant) NextTag() (string, bool, error) {
	v.pos++
	if v.pos >= len(v.entries) {
		return "", false, nil
	}
	tag, ok := v.entries[v.pos].Key.(string)
	if !ok {
		return "", false, Mismatch("string key", KindOf(v.entries[v.pos].Key))
	}
	return tag, true, nil
}

func (v *valueVariant) Payload() (Decoder, error) {
	if v.pos < 0 || v.pos >= len(v.entries) {
		return nil, fmt.Errorf("wirecodec: Payload called without a tag")
	}
	return valueDecoder{v: v.entries[v.pos].Value}, nil
}

// NewKeyDecoder returns the Decoder for a textual map key. Typed keys
// (integers, booleans, numbers) are parsed out of the text.
func NewKeyDecoder(key string) Decoder { return keyDecoder(key) }

type keyDecoder string

func (k keyDecoder) DecodeBool() (bool, error) {
	b, err := strconv.ParseBool(string(k))
	if err != nil {
		return false, &TypeMismatchError{Expected: "boolean key", Found: "string", Cause: err}
	}
	return b, nil
}

func (k keyDecoder) DecodeInt() (int64, error) {
	i, err := strconv.ParseInt(string(k), 10, 64)
	if err != nil {
		return 0, &TypeMismatchError{Expected: "integer key", Found: "string", Cause: err}
	}
	return i, nil
}

func (k keyDecoder) DecodeFloat() (float64, error) {
	if f, ok := ParseSpecialFloat(string(k)); ok {
		return f, nil
	}
	f, err := strconv.ParseFloat(string(k), 64)
	if err != nil {
		return 0, &TypeMismatchError{Expected: "number key", Found: "string", Cause: err}
	}
	return f, nil
}

func (k keyDecoder) DecodeString() (string, error) { return string(k), nil }

func (k keyDecoder) DecodeBytes() ([]byte, error) { return valueDecoder{v: string(k)}.DecodeBytes() }

func (k keyDecoder) DecodeUnit() error { return Mismatch("null", "string") }

func (k keyDecoder) DecodeAny() (any, error) { return string(k), nil }

func (k keyDecoder) DecodeOptional() (Decoder, bool, error) { return k, true, nil }

func (k keyDecoder) DecodeSeq() (SeqCursor, error) { return nil, Mismatch("sequence", "string") }

func (k keyDecoder) DecodeMap() (MapCursor, error) { return nil, Mismatch("map", "string") }

func (k keyDecoder) DecodeRecord([]string) (MapCursor, error) { return nil, Mismatch("map", "string") }

func (k keyDecoder) DecodeVariant() (VariantCursor, error) { return nil, Mismatch("map", "string") }

func (k keyDecoder) Skip() error { return nil }

// ParseSpecialFloat recognizes the textual forms of non-finite doubles.
func ParseSpecialFloat(s string) (float64, bool) {
	switch s {
	case "NaN":
		return math.NaN(), true
	case "Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	return 0, false
}

// FormatSpecialFloat returns the textual form of a non-finite double.
func FormatSpecialFloat(f float64) (string, bool) {
	switch {
	case math.IsNaN(f):
		return "NaN", true
	case math.IsInf(f, 1):
		return "Infinity", true
	case math.IsInf(f, -1):
		return "-Infinity", true
	}
	return "", false
}
