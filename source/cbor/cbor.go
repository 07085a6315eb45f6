// Package cbor is the CBOR driver backed by fxamacker/cbor. Container headers
// are walked here so that map entries keep their wire order; every other item
// is decoded by the library.
package cbor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/fxamacker/cbor/v2"

	wc "github.com/reoring/wirecodec"
	"github.com/reoring/wirecodec/internal/tree"
)

// Format is the CBOR wire format.
var Format wc.Format = format{}

type format struct{}

func (format) Name() string        { return "cbor" }
func (format) ContentType() string { return "application/cbor" }

func (format) NewDecoder(r io.Reader, opt wc.DecodeOpt) (wc.Decoder, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	v, err := Parse(data, opt)
	if err != nil {
		return nil, err
	}
	return wc.NewValueDecoder(v), nil
}

func (format) Marshal(wire any) ([]byte, error) { return Marshal(wire) }

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	// Core Deterministic Encoding for scalars; map order is ours.
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("cbor: encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		IntDec: cbor.IntDecConvertSigned,
	}.DecMode()
	if err != nil {
		panic("cbor: decoder initialization failed: " + err.Error())
	}
}

const (
	majorArray = 4
	majorMap   = 5
	breakByte  = 0xff
)

var errMalformed = errors.New("cbor: malformed container header")

// Parse decodes one CBOR data item into a wire value.
func Parse(data []byte, opt wc.DecodeOpt) (any, error) {
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, &wc.InputError{Code: wc.CodeTruncated, Pointer: "/", Message: "max bytes exceeded"}
	}
	p := parser{limits: tree.NewLimits(opt)}
	v, rest, err := p.item(data, "", 0)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("cbor: %d bytes of trailing data", len(rest))
	}
	return v, nil
}

type parser struct {
	limits tree.Limits
}

// head reads the argument of a container header. indefinite is set for
// streamed containers terminated by a break byte.
func head(data []byte) (arg uint64, indefinite bool, n int, err error) {
	if len(data) == 0 {
		return 0, false, 0, io.ErrUnexpectedEOF
	}
	ai := data[0] & 0x1f
	switch {
	case ai < 24:
		return uint64(ai), false, 1, nil
	case ai == 31:
		return 0, true, 1, nil
	case ai > 27:
		return 0, false, 0, errMalformed
	}
	size := 1 << (ai - 24)
	if len(data) < 1+size {
		return 0, false, 0, io.ErrUnexpectedEOF
	}
	switch size {
	case 1:
		arg = uint64(data[1])
	case 2:
		arg = uint64(binary.BigEndian.Uint16(data[1:]))
	case 4:
		arg = uint64(binary.BigEndian.Uint32(data[1:]))
	default:
		arg = binary.BigEndian.Uint64(data[1:])
	}
	return arg, false, 1 + size, nil
}

// more reports whether another element follows in a container with count
// remaining elements, consuming the break byte of an indefinite container.
func more(data []byte, count uint64, indefinite bool) (bool, []byte, error) {
	if !indefinite {
		return count > 0, data, nil
	}
	if len(data) == 0 {
		return false, nil, io.ErrUnexpectedEOF
	}
	if data[0] == breakByte {
		return false, data[1:], nil
	}
	return true, data, nil
}

func (p parser) item(data []byte, ptr string, depth int) (any, []byte, error) {
	if len(data) == 0 {
		return nil, nil, io.ErrUnexpectedEOF
	}
	switch data[0] >> 5 {
	case majorArray:
		return p.array(data, ptr, depth+1)
	case majorMap:
		return p.object(data, ptr, depth+1)
	}
	var v any
	rest, err := decMode.UnmarshalFirst(data, &v)
	if err != nil {
		return nil, nil, err
	}
	w, err := scalar(v)
	return w, rest, err
}

func (p parser) array(data []byte, ptr string, depth int) (any, []byte, error) {
	if err := p.limits.Enter(ptr, depth); err != nil {
		return nil, nil, err
	}
	count, indefinite, n, err := head(data)
	if err != nil {
		return nil, nil, err
	}
	data = data[n:]
	out := []any{}
	for i := 0; ; i++ {
		ok, rest, err := more(data, count, indefinite)
		if err != nil {
			return nil, nil, err
		}
		data = rest
		if !ok {
			return out, data, nil
		}
		count--
		v, rest, err := p.item(data, tree.Join(ptr, i), depth)
		if err != nil {
			return nil, nil, err
		}
		data = rest
		out = append(out, v)
	}
}

func (p parser) object(data []byte, ptr string, depth int) (any, []byte, error) {
	if err := p.limits.Enter(ptr, depth); err != nil {
		return nil, nil, err
	}
	count, indefinite, n, err := head(data)
	if err != nil {
		return nil, nil, err
	}
	data = data[n:]
	keys := p.limits.Keys()
	out := wc.NewMap(int(min(count, 64)))
	for {
		ok, rest, err := more(data, count, indefinite)
		if err != nil {
			return nil, nil, err
		}
		data = rest
		if !ok {
			return out, data, nil
		}
		count--
		k, rest, err := p.item(data, ptr, depth)
		if err != nil {
			return nil, nil, err
		}
		kptr := tree.Join(ptr, k)
		if err := keys.Add(kptr, k); err != nil {
			return nil, nil, err
		}
		v, rest, err := p.item(rest, kptr, depth)
		if err != nil {
			return nil, nil, err
		}
		data = rest
		out.Entries = append(out.Entries, wc.Entry{Key: k, Value: v})
	}
}

// scalar maps a library-decoded item onto the wire model.
func scalar(v any) (any, error) {
	switch x := v.(type) {
	case nil, bool, int64, float64, string, []byte:
		return x, nil
	case uint64:
		return wc.Encode(x)
	case float32:
		return float64(x), nil
	case big.Int:
		return bigInt(&x), nil
	case *big.Int:
		return bigInt(x), nil
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano), nil
	case cbor.Tag:
		return scalar(x.Content)
	case cbor.SimpleValue:
		return nil, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			w, err := scalar(e)
			if err != nil {
				return nil, err
			}
			out[i] = w
		}
		return out, nil
	case map[any]any:
		// containers nested under a tag; their order is already lost
		return wc.Encode(x)
	}
	return nil, fmt.Errorf("cbor: unsupported item %T", v)
}

// bigInt narrows a bignum to int64 where it fits and keeps its decimal text
// otherwise.
func bigInt(x *big.Int) any {
	if x.IsInt64() {
		return x.Int64()
	}
	return x.String()
}
