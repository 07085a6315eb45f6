package bson

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	wc "github.com/reoring/wirecodec"
)

// Marshal encodes a wire value as a BSON document. The value must encode to a
// map; entry order is kept and non-string keys are written as their text.
func Marshal(wire any) ([]byte, error) {
	w, err := wc.Encode(wire)
	if err != nil {
		return nil, err
	}
	m, ok := w.(*wc.Map)
	if !ok || m == nil {
		return nil, fmt.Errorf("bson: top-level value must be a map, got %s", wc.KindOf(w))
	}
	doc, err := document(m)
	if err != nil {
		return nil, err
	}
	return bson.Marshal(doc)
}

func document(m *wc.Map) (bson.D, error) {
	doc := make(bson.D, 0, len(m.Entries))
	for _, e := range m.Entries {
		key := fmt.Sprint(e.Key)
		v, err := convert(e.Value)
		if err != nil {
			return nil, wc.AtPath(err, key)
		}
		doc = append(doc, bson.E{Key: key, Value: v})
	}
	return doc, nil
}

func convert(v any) (any, error) {
	switch x := v.(type) {
	case nil, bool, int64, float64, string:
		return x, nil
	case []byte:
		return primitive.Binary{Data: x}, nil
	case []any:
		out := make(bson.A, len(x))
		for i, e := range x {
			c, err := convert(e)
			if err != nil {
				return nil, wc.AtIndex(err, i)
			}
			out[i] = c
		}
		return out, nil
	case *wc.Map:
		if x == nil {
			return nil, nil
		}
		return document(x)
	}
	return nil, fmt.Errorf("bson: unsupported wire value %T", v)
}
