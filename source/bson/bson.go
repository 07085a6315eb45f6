// Package bson is the BSON driver backed by the MongoDB Go driver's bsonrw
// value readers. The top-level value is always a document.
package bson

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	wc "github.com/reoring/wirecodec"
	"github.com/reoring/wirecodec/internal/tree"
)

// Format is the BSON wire format.
var Format wc.Format = format{}

type format struct{}

func (format) Name() string        { return "bson" }
func (format) ContentType() string { return "application/bson" }

func (format) NewDecoder(r io.Reader, opt wc.DecodeOpt) (wc.Decoder, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewDecoder(data, opt)
}

func (format) Marshal(wire any) ([]byte, error) { return Marshal(wire) }

var errConsumed = errors.New("bson: value already consumed")

// Root is the decoder of one BSON document.
type Root struct {
	value
	size int
	data []byte
}

// NewDecoder returns a streaming decoder over the document in data.
func NewDecoder(data []byte, opt wc.DecodeOpt) (*Root, error) {
	if len(data) < 5 {
		return nil, io.ErrUnexpectedEOF
	}
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, &wc.InputError{Code: wc.CodeTruncated, Pointer: "/", Message: "max bytes exceeded"}
	}
	size := int(int32(binary.LittleEndian.Uint32(data)))
	st := &state{limits: tree.NewLimits(opt)}
	return &Root{value: value{st: st, vr: bsonrw.NewBSONDocumentReader(data), top: true}, size: size, data: data}, nil
}

// End reports an error if bytes follow the document.
func (d *Root) End() error {
	if d.size != len(d.data) {
		return fmt.Errorf("bson: document is %d bytes, input has %d", d.size, len(d.data))
	}
	return nil
}

type state struct {
	limits tree.Limits
}

// value decodes one BSON value. It may be consumed once.
type value struct {
	st       *state
	vr       bsonrw.ValueReader
	top      bool
	ptr      string
	depth    int
	consumed bool
}

func (v *value) kind() bsontype.Type {
	if v.top {
		return bsontype.EmbeddedDocument
	}
	return v.vr.Type()
}

func kindName(t bsontype.Type) string {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		return "null"
	case bsontype.Boolean:
		return "boolean"
	case bsontype.Int32, bsontype.Int64:
		return "integer"
	case bsontype.Double:
		return "number"
	case bsontype.String:
		return "string"
	case bsontype.Binary:
		return "bytes"
	case bsontype.Array:
		return "sequence"
	case bsontype.EmbeddedDocument:
		return "map"
	}
	return t.String()
}

// begin marks v consumed and returns its type. On a mismatch the value is
// skipped and the returned error names both shapes.
func (v *value) begin(expected string, ok ...bsontype.Type) (bsontype.Type, error) {
	if v.consumed {
		return 0, errConsumed
	}
	v.consumed = true
	t := v.kind()
	for _, want := range ok {
		if t == want {
			return t, nil
		}
	}
	if !v.top {
		_ = v.vr.Skip()
	}
	return t, wc.Mismatch(expected, kindName(t))
}

func (v *value) DecodeBool() (bool, error) {
	if _, err := v.begin("boolean", bsontype.Boolean); err != nil {
		return false, err
	}
	return v.vr.ReadBoolean()
}

func (v *value) DecodeInt() (int64, error) {
	t, err := v.begin("integer", bsontype.Int32, bsontype.Int64)
	if err != nil {
		return 0, err
	}
	if t == bsontype.Int32 {
		i, err := v.vr.ReadInt32()
		return int64(i), err
	}
	return v.vr.ReadInt64()
}

func (v *value) DecodeFloat() (float64, error) {
	t, err := v.begin("number", bsontype.Double, bsontype.Int32, bsontype.Int64, bsontype.String)
	if err != nil {
		return 0, err
	}
	switch t {
	case bsontype.Int32:
		i, err := v.vr.ReadInt32()
		return float64(i), err
	case bsontype.Int64:
		i, err := v.vr.ReadInt64()
		return float64(i), err
	case bsontype.String:
		s, err := v.vr.ReadString()
		if err != nil {
			return 0, err
		}
		if f, ok := wc.ParseSpecialFloat(s); ok {
			return f, nil
		}
		return 0, wc.Mismatch("number", "string")
	}
	return v.vr.ReadDouble()
}

func (v *value) DecodeString() (string, error) {
	if _, err := v.begin("string", bsontype.String); err != nil {
		return "", err
	}
	return v.vr.ReadString()
}

func (v *value) DecodeBytes() ([]byte, error) {
	t, err := v.begin("bytes", bsontype.Binary, bsontype.String)
	if err != nil {
		return nil, err
	}
	if t == bsontype.String {
		s, err := v.vr.ReadString()
		if err != nil {
			return nil, err
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, &wc.TypeMismatchError{Expected: "bytes", Found: "string", Cause: err}
		}
		return b, nil
	}
	b, _, err := v.vr.ReadBinary()
	return b, err
}

func (v *value) DecodeUnit() error {
	t, err := v.begin("null", bsontype.Null, bsontype.Undefined)
	if err != nil {
		return err
	}
	if t == bsontype.Undefined {
		return v.vr.ReadUndefined()
	}
	return v.vr.ReadNull()
}

func (v *value) DecodeOptional() (wc.Decoder, bool, error) {
	if v.consumed {
		return nil, false, errConsumed
	}
	switch v.kind() {
	case bsontype.Null, bsontype.Undefined:
		return nil, false, v.DecodeUnit()
	}
	return v, true, nil
}

func (v *value) DecodeAny() (any, error) {
	if v.consumed {
		return nil, errConsumed
	}
	v.consumed = true
	return v.st.build(v.vr, v.kind(), v.ptr, v.depth)
}

func (s *state) build(vr bsonrw.ValueReader, t bsontype.Type, ptr string, depth int) (any, error) {
	switch t {
	case bsontype.Null:
		return nil, vr.ReadNull()
	case bsontype.Undefined:
		return nil, vr.ReadUndefined()
	case bsontype.Boolean:
		return vr.ReadBoolean()
	case bsontype.Int32:
		i, err := vr.ReadInt32()
		return int64(i), err
	case bsontype.Int64:
		return vr.ReadInt64()
	case bsontype.Double:
		return vr.ReadDouble()
	case bsontype.String:
		return vr.ReadString()
	case bsontype.Binary:
		b, _, err := vr.ReadBinary()
		return b, err
	case bsontype.DateTime:
		ms, err := vr.ReadDateTime()
		return time.UnixMilli(ms).UTC().Format(time.RFC3339Nano), err
	case bsontype.ObjectID:
		oid, err := vr.ReadObjectID()
		return oid.Hex(), err
	case bsontype.Decimal128:
		d, err := vr.ReadDecimal128()
		return d.String(), err
	case bsontype.Array:
		if err := s.limits.Enter(ptr, depth+1); err != nil {
			return nil, err
		}
		ar, err := vr.ReadArray()
		if err != nil {
			return nil, err
		}
		out := []any{}
		for i := 0; ; i++ {
			evr, err := ar.ReadValue()
			if errors.Is(err, bsonrw.ErrEOA) {
				return out, nil
			}
			if err != nil {
				return nil, err
			}
			e, err := s.build(evr, evr.Type(), tree.Join(ptr, i), depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
	case bsontype.EmbeddedDocument:
		if err := s.limits.Enter(ptr, depth+1); err != nil {
			return nil, err
		}
		dr, err := vr.ReadDocument()
		if err != nil {
			return nil, err
		}
		keys := s.limits.Keys()
		out := wc.NewMap(4)
		for {
			k, evr, err := dr.ReadElement()
			if errors.Is(err, bsonrw.ErrEOD) {
				return out, nil
			}
			if err != nil {
				return nil, err
			}
			kptr := tree.Join(ptr, k)
			if err := keys.Add(kptr, k); err != nil {
				return nil, err
			}
			e, err := s.build(evr, evr.Type(), kptr, depth+1)
			if err != nil {
				return nil, err
			}
			out.Entries = append(out.Entries, wc.Entry{Key: k, Value: e})
		}
	}
	if err := vr.Skip(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("bson: unsupported type %s at %s", t, tree.Pointer(ptr))
}

func (v *value) DecodeSeq() (wc.SeqCursor, error) {
	if _, err := v.begin("sequence", bsontype.Array); err != nil {
		return nil, err
	}
	if err := v.st.limits.Enter(v.ptr, v.depth+1); err != nil {
		return nil, err
	}
	ar, err := v.vr.ReadArray()
	if err != nil {
		return nil, err
	}
	return &seq{st: v.st, ar: ar, ptr: v.ptr, depth: v.depth + 1}, nil
}

func (v *value) DecodeMap() (wc.MapCursor, error) {
	if _, err := v.begin("map", bsontype.EmbeddedDocument); err != nil {
		return nil, err
	}
	if err := v.st.limits.Enter(v.ptr, v.depth+1); err != nil {
		return nil, err
	}
	dr, err := v.vr.ReadDocument()
	if err != nil {
		return nil, err
	}
	return &object{st: v.st, dr: dr, ptr: v.ptr, depth: v.depth + 1, keys: v.st.limits.Keys()}, nil
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
	if v.top {
		return nil
	}
	return v.vr.Skip()
}

func finish(v *value) error {
	if v == nil || v.consumed {
		return nil
	}
	return v.Skip()
}

type seq struct {
	st    *state
	ar    bsonrw.ArrayReader
	ptr   string
	depth int
	i     int
	cur   *value
	done  bool
}

func (s *seq) Next() (wc.Decoder, bool, error) {
	if s.done {
		return nil, false, nil
	}
	if err := finish(s.cur); err != nil {
		return nil, false, err
	}
	vr, err := s.ar.ReadValue()
	if errors.Is(err, bsonrw.ErrEOA) {
		s.done = true
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	s.cur = &value{st: s.st, vr: vr, ptr: tree.Join(s.ptr, s.i), depth: s.depth}
	s.i++
	return s.cur, true, nil
}

// object serves both as a map cursor and as a variant cursor.
type object struct {
	st      *state
	dr      bsonrw.DocumentReader
	ptr     string
	depth   int
	keys    *tree.KeySet
	pending *value
	done    bool
}

func (o *object) advance() (string, bool, error) {
	if o.done {
		return "", false, nil
	}
	if err := finish(o.pending); err != nil {
		return "", false, err
	}
	o.pending = nil
	k, vr, err := o.dr.ReadElement()
	if errors.Is(err, bsonrw.ErrEOD) {
		o.done = true
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	kptr := tree.Join(o.ptr, k)
	if err := o.keys.Add(kptr, k); err != nil {
		return "", false, err
	}
	o.pending = &value{st: o.st, vr: vr, ptr: kptr, depth: o.depth}
	return k, true, nil
}

func (o *object) NextKey() (wc.Decoder, bool, error) {
	k, ok, err := o.advance()
	if err != nil || !ok {
		return nil, ok, err
	}
	return wc.NewKeyDecoder(k), true, nil
}

func (o *object) NextValue() (wc.Decoder, error) {
	if o.pending == nil {
		return nil, fmt.Errorf("bson: NextValue called without a key")
	}
	return o.pending, nil
}

func (o *object) NextTag() (string, bool, error) { return o.advance() }

func (o *object) Payload() (wc.Decoder, error) { return o.NextValue() }
