package cbor

import (
	"bytes"

	wc "github.com/reoring/wirecodec"
)

// Marshal encodes a wire value as CBOR. Scalars use Core Deterministic
// Encoding; map entries are written in their wire order.
func Marshal(wire any) ([]byte, error) {
	w, err := wc.Encode(wire)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(prepare(w))
}

// orderedMap writes a wire map without reordering its entries.
type orderedMap struct{ m *wc.Map }

// MarshalCBOR implements cbor.Marshaler.
func (o orderedMap) MarshalCBOR() ([]byte, error) {
	var buf bytes.Buffer
	writeHead(&buf, majorMap, uint64(len(o.m.Entries)))
	for _, e := range o.m.Entries {
		k, err := encMode.Marshal(prepare(e.Key))
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		v, err := encMode.Marshal(prepare(e.Value))
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	return buf.Bytes(), nil
}

// prepare swaps every *wc.Map for an orderedMap.
func prepare(v any) any {
	switch x := v.(type) {
	case *wc.Map:
		if x == nil {
			return nil
		}
		return orderedMap{m: x}
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = prepare(e)
		}
		return out
	}
	return v
}

func writeHead(buf *bytes.Buffer, major byte, n uint64) {
	m := major << 5
	switch {
	case n < 24:
		buf.WriteByte(m | byte(n))
	case n <= 0xff:
		buf.Write([]byte{m | 24, byte(n)})
	case n <= 0xffff:
		buf.Write([]byte{m | 25, byte(n >> 8), byte(n)})
	case n <= 0xffffffff:
		buf.Write([]byte{m | 26, byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)})
	default:
		buf.Write([]byte{m | 27, byte(n >> 56), byte(n >> 48), byte(n >> 40), byte(n >> 32), byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)})
	}
}
