package msgpack

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	wc "github.com/reoring/wirecodec"
)

// Marshal encodes a wire value as MessagePack, keeping map entry order.
func Marshal(wire any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := write(enc, wire); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func write(enc *msgpack.Encoder, v any) error {
	switch x := v.(type) {
	case nil:
		return enc.EncodeNil()
	case bool:
		return enc.EncodeBool(x)
	case int64:
		return enc.EncodeInt(x)
	case float64:
		return enc.EncodeFloat64(x)
	case string:
		return enc.EncodeString(x)
	case []byte:
		return enc.EncodeBytes(x)
	case []any:
		if err := enc.EncodeArrayLen(len(x)); err != nil {
			return err
		}
		for i, e := range x {
			if err := write(enc, e); err != nil {
				return wc.AtIndex(err, i)
			}
		}
		return nil
	case *wc.Map:
		if x == nil {
			return enc.EncodeNil()
		}
		if err := enc.EncodeMapLen(len(x.Entries)); err != nil {
			return err
		}
		for _, e := range x.Entries {
			if err := write(enc, e.Key); err != nil {
				return err
			}
			if err := write(enc, e.Value); err != nil {
				return wc.AtPath(err, fmt.Sprint(e.Key))
			}
		}
		return nil
	}
	w, err := wc.Encode(v)
	if err != nil {
		return err
	}
	return write(enc, w)
}
