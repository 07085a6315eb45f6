package json

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"

	j "github.com/goccy/go-json"

	wc "github.com/reoring/wirecodec"
)

// Marshal renders a wire value as JSON, keeping map entry order. Non-finite
// doubles are written as "NaN", "Infinity" and "-Infinity"; bytes as base64.
func Marshal(wire any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, wire); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeString(buf *bytes.Buffer, s string) error {
	b, err := j.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

func writeValue(buf *bytes.Buffer, v any) error {
	switch x := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(x))
	case int64:
		buf.WriteString(strconv.FormatInt(x, 10))
	case float64:
		if s, ok := wc.FormatSpecialFloat(x); ok {
			return writeString(buf, s)
		}
		buf.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	case string:
		return writeString(buf, x)
	case []byte:
		return writeString(buf, base64.StdEncoding.EncodeToString(x))
	case []any:
		buf.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, e); err != nil {
				return wc.AtIndex(err, i)
			}
		}
		buf.WriteByte(']')
	case *wc.Map:
		if x == nil {
			buf.WriteString("null")
			return nil
		}
		buf.WriteByte('{')
		for i, e := range x.Entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, ok := e.Key.(string)
			if !ok {
				key = fmt.Sprint(e.Key)
			}
			if err := writeString(buf, key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeValue(buf, e.Value); err != nil {
				return wc.AtPath(err, key)
			}
		}
		buf.WriteByte('}')
	default:
		w, err := wc.Encode(v)
		if err != nil {
			return err
		}
		return writeValue(buf, w)
	}
	return nil
}
