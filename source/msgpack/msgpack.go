// Package msgpack is the MessagePack driver backed by vmihailenco/msgpack.
// Values are decoded straight off the stream.
package msgpack

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	wc "github.com/reoring/wirecodec"
	"github.com/reoring/wirecodec/internal/tree"
)

// Format is the MessagePack wire format.
var Format wc.Format = format{}

type format struct{}

func (format) Name() string        { return "msgpack" }
func (format) ContentType() string { return "application/msgpack" }

func (format) NewDecoder(r io.Reader, opt wc.DecodeOpt) (wc.Decoder, error) {
	return NewDecoder(r, opt), nil
}

func (format) Marshal(wire any) ([]byte, error) { return Marshal(wire) }

var errConsumed = errors.New("msgpack: value already consumed")

// Root is the top-level decoder of one MessagePack stream.
type Root struct {
	value
}

// NewDecoder returns a streaming decoder over r.
func NewDecoder(r io.Reader, opt wc.DecodeOpt) *Root {
	cr := &countingReader{r: r, max: opt.MaxBytes}
	st := &state{dec: msgpack.NewDecoder(cr), limits: tree.NewLimits(opt)}
	return &Root{value: value{st: st}}
}

// End reports an error if input remains after the decoded value.
func (d *Root) End() error {
	if _, err := d.st.dec.PeekCode(); err == io.EOF {
		return nil
	} else if err != nil {
		return d.st.wrap(err)
	}
	return fmt.Errorf("msgpack: unexpected data after top-level value")
}

type state struct {
	dec    *msgpack.Decoder
	limits tree.Limits
}

func (s *state) wrap(err error) error {
	if errors.Is(err, errTooLarge) {
		return &wc.InputError{Code: wc.CodeTruncated, Pointer: "/", Message: "max bytes exceeded"}
	}
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

var errTooLarge = errors.New("msgpack: max bytes exceeded")

// countingReader fails once more than max bytes have been read. The
// decoder buffers its input, so the limit is approximate.
type countingReader struct {
	r   io.Reader
	n   int64
	max int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	if c.max > 0 && c.n > c.max {
		return n, errTooLarge
	}
	return n, err
}

// value decodes the value at the current stream position. It may be
// consumed once.
type value struct {
	st       *state
	ptr      string
	depth    int
	consumed bool
}

func (v *value) peek() (byte, error) {
	if v.consumed {
		return 0, errConsumed
	}
	c, err := v.st.dec.PeekCode()
	if err != nil {
		return 0, v.st.wrap(err)
	}
	return c, nil
}

// expect peeks the next code, checks it with ok and marks v consumed.
func (v *value) expect(expected string, ok func(byte) bool) error {
	c, err := v.peek()
	if err != nil {
		return err
	}
	v.consumed = true
	if !ok(c) {
		_ = v.st.dec.Skip()
		return wc.Mismatch(expected, kindOf(c))
	}
	return nil
}

func isInt(c byte) bool {
	return msgpcode.IsFixedNum(c) || (c >= msgpcode.Uint8 && c <= msgpcode.Uint64) || (c >= msgpcode.Int8 && c <= msgpcode.Int64)
}

func isFloat(c byte) bool { return c == msgpcode.Float || c == msgpcode.Double }

func isBool(c byte) bool { return c == msgpcode.False || c == msgpcode.True }

func isString(c byte) bool { return msgpcode.IsString(c) }

func isBin(c byte) bool { return c == msgpcode.Bin8 || c == msgpcode.Bin16 || c == msgpcode.Bin32 }

func isMap(c byte) bool { return msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32 }

func isArray(c byte) bool {
	return msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32
}

func kindOf(c byte) string {
	switch {
	case c == msgpcode.Nil:
		return "null"
	case isBool(c):
		return "boolean"
	case isInt(c):
		return "integer"
	case isFloat(c):
		return "number"
	case isString(c):
		return "string"
	case isBin(c):
		return "bytes"
	case isArray(c):
		return "sequence"
	case isMap(c):
		return "map"
	}
	return "extension"
}

func (v *value) DecodeBool() (bool, error) {
	if err := v.expect("boolean", isBool); err != nil {
		return false, err
	}
	b, err := v.st.dec.DecodeBool()
	return b, v.st.wrapNil(err)
}

func (s *state) wrapNil(err error) error {
	if err == nil {
		return nil
	}
	return s.wrap(err)
}

func (v *value) DecodeInt() (int64, error) {
	if err := v.expect("integer", isInt); err != nil {
		return 0, err
	}
	c, _ := v.st.dec.PeekCode()
	if c == msgpcode.Uint64 {
		u, err := v.st.dec.DecodeUint64()
		if err != nil {
			return 0, v.st.wrap(err)
		}
		if u > math.MaxInt64 {
			return 0, &wc.TypeMismatchError{Expected: "integer", Found: "integer", Cause: fmt.Errorf("%d overflows int64", u)}
		}
		return int64(u), nil
	}
	i, err := v.st.dec.DecodeInt64()
	return i, v.st.wrapNil(err)
}

func (v *value) DecodeFloat() (float64, error) {
	c, err := v.peek()
	if err != nil {
		return 0, err
	}
	if isString(c) {
		v.consumed = true
		s, err := v.st.dec.DecodeString()
		if err != nil {
			return 0, v.st.wrap(err)
		}
		if f, ok := wc.ParseSpecialFloat(s); ok {
			return f, nil
		}
		return 0, wc.Mismatch("number", "string")
	}
	if err := v.expect("number", func(c byte) bool { return isFloat(c) || isInt(c) }); err != nil {
		return 0, err
	}
	f, err := v.st.dec.DecodeFloat64()
	return f, v.st.wrapNil(err)
}

func (v *value) DecodeString() (string, error) {
	if err := v.expect("string", isString); err != nil {
		return "", err
	}
	s, err := v.st.dec.DecodeString()
	return s, v.st.wrapNil(err)
}

func (v *value) DecodeBytes() ([]byte, error) {
	c, err := v.peek()
	if err != nil {
		return nil, err
	}
	if isString(c) {
		s, err := v.DecodeString()
		if err != nil {
			return nil, err
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, &wc.TypeMismatchError{Expected: "bytes", Found: "string", Cause: err}
		}
		return b, nil
	}
	if err := v.expect("bytes", isBin); err != nil {
		return nil, err
	}
	b, err := v.st.dec.DecodeBytes()
	return b, v.st.wrapNil(err)
}

func (v *value) DecodeUnit() error {
	if err := v.expect("null", func(c byte) bool { return c == msgpcode.Nil }); err != nil {
		return err
	}
	return v.st.wrapNil(v.st.dec.DecodeNil())
}

func (v *value) DecodeAny() (any, error) {
	if v.consumed {
		return nil, errConsumed
	}
	v.consumed = true
	return v.st.build(v.ptr, v.depth)
}

func (s *state) build(ptr string, depth int) (any, error) {
	c, err := s.dec.PeekCode()
	if err != nil {
		return nil, s.wrap(err)
	}
	switch {
	case isArray(c):
		if err := s.limits.Enter(ptr, depth+1); err != nil {
			return nil, err
		}
		n, err := s.dec.DecodeArrayLen()
		if err != nil {
			return nil, s.wrap(err)
		}
		out := make([]any, 0, max(n, 0))
		for i := 0; i < n; i++ {
			e, err := s.build(tree.Join(ptr, i), depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil
	case isMap(c):
		if err := s.limits.Enter(ptr, depth+1); err != nil {
			return nil, err
		}
		n, err := s.dec.DecodeMapLen()
		if err != nil {
			return nil, s.wrap(err)
		}
		keys := s.limits.Keys()
		out := wc.NewMap(max(n, 0))
		for i := 0; i < n; i++ {
			k, err := s.build(ptr, depth+1)
			if err != nil {
				return nil, err
			}
			kptr := tree.Join(ptr, k)
			if err := keys.Add(kptr, k); err != nil {
				return nil, err
			}
			e, err := s.build(kptr, depth+1)
			if err != nil {
				return nil, err
			}
			out.Entries = append(out.Entries, wc.Entry{Key: k, Value: e})
		}
		return out, nil
	}
	x, err := s.dec.DecodeInterface()
	if err != nil {
		return nil, s.wrap(err)
	}
	if t, ok := x.(time.Time); ok {
		return t.UTC().Format(time.RFC3339Nano), nil
	}
	return wc.Encode(x)
}

func (v *value) DecodeOptional() (wc.Decoder, bool, error) {
	c, err := v.peek()
	if err != nil {
		return nil, false, err
	}
	if c == msgpcode.Nil {
		v.consumed = true
		return nil, false, v.st.wrapNil(v.st.dec.DecodeNil())
	}
	return v, true, nil
}

func (v *value) DecodeSeq() (wc.SeqCursor, error) {
	if err := v.expect("sequence", isArray); err != nil {
		return nil, err
	}
	if err := v.st.limits.Enter(v.ptr, v.depth+1); err != nil {
		return nil, err
	}
	n, err := v.st.dec.DecodeArrayLen()
	if err != nil {
		return nil, v.st.wrap(err)
	}
	return &seq{st: v.st, ptr: v.ptr, depth: v.depth + 1, n: n}, nil
}

func (v *value) DecodeMap() (wc.MapCursor, error) {
	if err := v.expect("map", isMap); err != nil {
		return nil, err
	}
	if err := v.st.limits.Enter(v.ptr, v.depth+1); err != nil {
		return nil, err
	}
	n, err := v.st.dec.DecodeMapLen()
	if err != nil {
		return nil, v.st.wrap(err)
	}
	return &object{st: v.st, ptr: v.ptr, depth: v.depth + 1, n: n, keys: v.st.limits.Keys()}, nil
}

func (v *value) DecodeRecord([]string) (wc.MapCursor, error) { return v.DecodeMap() }

func (v *value) DecodeVariant() (wc.VariantCursor, error) {
	c, err := v.DecodeMap()
	if err != nil {
		return nil, err
	}
	return c.(*object), nil
}

func (v *value) Skip() error {
	if v.consumed {
		return errConsumed
	}
	v.consumed = true
	return v.st.wrapNil(v.st.dec.Skip())
}

func finish(v *value) error {
	if v == nil || v.consumed {
		return nil
	}
	return v.Skip()
}

type seq struct {
	st    *state
	ptr   string
	depth int
	n, i  int
	cur   *value
}

func (s *seq) Next() (wc.Decoder, bool, error) {
	if err := finish(s.cur); err != nil {
		return nil, false, err
	}
	s.cur = nil
	if s.i >= s.n {
		return nil, false, nil
	}
	s.cur = &value{st: s.st, ptr: tree.Join(s.ptr, s.i), depth: s.depth}
	s.i++
	return s.cur, true, nil
}

// object serves both as a map cursor and as a variant cursor. String keys
// are read eagerly; other keys are handed out as stream values.
type object struct {
	st    *state
	ptr   string
	depth int
	n, i  int
	keys  *tree.KeySet

	key     *value
	val     *value
	valPtr  string
	started bool
}

// settle consumes whatever the caller left of the previous entry.
func (o *object) settle() error {
	if !o.started {
		return nil
	}
	if err := finish(o.key); err != nil {
		return err
	}
	if o.val == nil {
		o.val = &value{st: o.st, ptr: o.valPtr, depth: o.depth}
	}
	return finish(o.val)
}

// advance moves to the next entry. It returns the key text when the key is a
// string.
func (o *object) advance() (text string, isText bool, ok bool, err error) {
	if err := o.settle(); err != nil {
		return "", false, false, err
	}
	o.key, o.val, o.started = nil, nil, false
	if o.i >= o.n {
		return "", false, false, nil
	}
	o.i++
	o.started = true
	c, err := o.st.dec.PeekCode()
	if err != nil {
		return "", false, false, o.st.wrap(err)
	}
	if !isString(c) {
		o.key = &value{st: o.st, ptr: o.ptr, depth: o.depth}
		o.valPtr = tree.Join(o.ptr, wc.UnknownKeyLabel)
		return "", false, true, nil
	}
	s, err := o.st.dec.DecodeString()
	if err != nil {
		return "", false, false, o.st.wrap(err)
	}
	o.valPtr = tree.Join(o.ptr, s)
	if err := o.keys.Add(o.valPtr, s); err != nil {
		return "", false, false, err
	}
	return s, true, true, nil
}

func (o *object) NextKey() (wc.Decoder, bool, error) {
	s, isText, ok, err := o.advance()
	if err != nil || !ok {
		return nil, ok, err
	}
	if isText {
		return wc.NewKeyDecoder(s), true, nil
	}
	return o.key, true, nil
}

func (o *object) NextValue() (wc.Decoder, error) {
	if !o.started {
		return nil, fmt.Errorf("msgpack: NextValue called without a key")
	}
	if err := finish(o.key); err != nil {
		return nil, err
	}
	if o.val == nil {
		o.val = &value{st: o.st, ptr: o.valPtr, depth: o.depth}
	}
	return o.val, nil
}

func (o *object) NextTag() (string, bool, error) {
	s, isText, ok, err := o.advance()
	if err != nil || !ok {
		return "", ok, err
	}
	if !isText {
		c, _ := o.st.dec.PeekCode()
		return "", false, wc.Mismatch("string key", kindOf(c))
	}
	return s, true, nil
}

func (o *object) Payload() (wc.Decoder, error) { return o.NextValue() }
