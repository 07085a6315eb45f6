// Package stream decodes wire values straight off an engine.TokenSource,
// without materializing the document.
package stream

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"

	wc "github.com/reoring/wirecodec"
	eng "github.com/reoring/wirecodec/internal/engine"
)

var errConsumed = errors.New("stream: value already consumed")

// Root is the top-level decoder of one token stream.
type Root struct {
	value
}

// NewDecoder returns a decoder reading a single value from src.
func NewDecoder(src eng.TokenSource) *Root {
	return &Root{value: value{r: &reader{p: eng.NewPeeker(src)}}}
}

// End reports an error if input remains after the decoded value.
func (d *Root) End() error {
	_, err := d.r.p.Peek()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return d.r.wrap(err)
	}
	return fmt.Errorf("stream: unexpected data after top-level value")
}

type reader struct {
	p *eng.Peeker
}

func (r *reader) next() (eng.Token, error) {
	tok, err := r.p.NextToken()
	if err != nil {
		return eng.Token{}, r.wrap(err)
	}
	return tok, nil
}

func (r *reader) peek() (eng.Token, error) {
	tok, err := r.p.Peek()
	if err != nil {
		return eng.Token{}, r.wrap(err)
	}
	return tok, nil
}

// wrap turns a premature end of input into io.ErrUnexpectedEOF.
func (r *reader) wrap(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// value decodes the value at the current stream position. It may be
// consumed once.
type value struct {
	r        *reader
	consumed bool
}

func (v *value) take() (eng.Token, error) {
	if v.consumed {
		return eng.Token{}, errConsumed
	}
	v.consumed = true
	return v.r.next()
}

func mismatch(expected string, tok eng.Token) error { return wc.Mismatch(expected, tok.Kind.String()) }

func (v *value) DecodeBool() (bool, error) {
	tok, err := v.take()
	if err != nil {
		return false, err
	}
	if tok.Kind != eng.KindBool {
		return false, mismatch("boolean", tok)
	}
	return tok.Bool, nil
}

func (v *value) DecodeInt() (int64, error) {
	tok, err := v.take()
	if err != nil {
		return 0, err
	}
	if tok.Kind != eng.KindNumber {
		return 0, mismatch("integer", tok)
	}
	i, err := strconv.ParseInt(tok.Number, 10, 64)
	if err != nil {
		return 0, &wc.TypeMismatchError{Expected: "integer", Found: "number", Cause: err}
	}
	return i, nil
}

func (v *value) DecodeFloat() (float64, error) {
	tok, err := v.take()
	if err != nil {
		return 0, err
	}
	switch tok.Kind {
	case eng.KindNumber:
		f, err := strconv.ParseFloat(tok.Number, 64)
		if err != nil {
			return 0, &wc.TypeMismatchError{Expected: "number", Found: "number", Cause: err}
		}
		return f, nil
	case eng.KindString:
		if f, ok := wc.ParseSpecialFloat(tok.String); ok {
			return f, nil
		}
	}
	return 0, mismatch("number", tok)
}

func (v *value) DecodeString() (string, error) {
	tok, err := v.take()
	if err != nil {
		return "", err
	}
	if tok.Kind != eng.KindString {
		return "", mismatch("string", tok)
	}
	return tok.String, nil
}

func (v *value) DecodeBytes() ([]byte, error) {
	tok, err := v.take()
	if err != nil {
		return nil, err
	}
	if tok.Kind != eng.KindString {
		return nil, mismatch("base64 string", tok)
	}
	b, err := base64.StdEncoding.DecodeString(tok.String)
	if err != nil {
		return nil, &wc.TypeMismatchError{Expected: "base64 string", Found: "string", Cause: err}
	}
	return b, nil
}

func (v *value) DecodeUnit() error {
	tok, err := v.take()
	if err != nil {
		return err
	}
	if tok.Kind != eng.KindNull {
		return mismatch("null", tok)
	}
	return nil
}

func (v *value) DecodeAny() (any, error) {
	tok, err := v.take()
	if err != nil {
		return nil, err
	}
	return v.r.build(tok)
}

func (r *reader) build(tok eng.Token) (any, error) {
	switch tok.Kind {
	case eng.KindNull:
		return nil, nil
	case eng.KindBool:
		return tok.Bool, nil
	case eng.KindString:
		return tok.String, nil
	case eng.KindNumber:
		if i, err := strconv.ParseInt(tok.Number, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(tok.Number, 64)
		if err != nil {
			return nil, err
		}
		return f, nil
	case eng.KindBeginArray:
		out := []any{}
		for {
			t, err := r.next()
			if err != nil {
				return nil, err
			}
			if t.Kind == eng.KindEndArray {
				return out, nil
			}
			e, err := r.build(t)
			if err != nil {
				return nil, wc.AtIndex(err, len(out))
			}
			out = append(out, e)
		}
	case eng.KindBeginObject:
		m := wc.NewMap(4)
		for {
			t, err := r.next()
			if err != nil {
				return nil, err
			}
			if t.Kind == eng.KindEndObject {
				return m, nil
			}
			if t.Kind != eng.KindKey {
				return nil, eng.ErrUnexpectedToken
			}
			vt, err := r.next()
			if err != nil {
				return nil, err
			}
			e, err := r.build(vt)
			if err != nil {
				return nil, wc.AtPath(err, t.String)
			}
			m.Entries = append(m.Entries, wc.Entry{Key: t.String, Value: e})
		}
	}
	return nil, eng.ErrUnexpectedToken
}

func (v *value) DecodeOptional() (wc.Decoder, bool, error) {
	if v.consumed {
		return nil, false, errConsumed
	}
	tok, err := v.r.peek()
	if err != nil {
		return nil, false, err
	}
	if tok.Kind == eng.KindNull {
		v.consumed = true
		_, err := v.r.next()
		return nil, false, err
	}
	return v, true, nil
}

func (v *value) DecodeSeq() (wc.SeqCursor, error) {
	tok, err := v.take()
	if err != nil {
		return nil, err
	}
	if tok.Kind != eng.KindBeginArray {
		return nil, mismatch("sequence", tok)
	}
	return &seq{r: v.r}, nil
}

func (v *value) DecodeMap() (wc.MapCursor, error) {
	tok, err := v.take()
	if err != nil {
		return nil, err
	}
	if tok.Kind != eng.KindBeginObject {
		return nil, mismatch("map", tok)
	}
	return &object{r: v.r}, nil
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
	tok, err := v.take()
	if err != nil {
		return err
	}
	return v.r.wrap(eng.SkipValue(v.r.p, tok))
}

// finish skips a value its consumer never touched.
func finish(v *value) error {
	if v == nil || v.consumed {
		return nil
	}
	return v.Skip()
}

type seq struct {
	r    *reader
	cur  *value
	done bool
}

func (s *seq) Next() (wc.Decoder, bool, error) {
	if s.done {
		return nil, false, nil
	}
	if err := finish(s.cur); err != nil {
		return nil, false, err
	}
	tok, err := s.r.peek()
	if err != nil {
		return nil, false, err
	}
	if tok.Kind == eng.KindEndArray {
		s.done = true
		_, err := s.r.next()
		return nil, false, err
	}
	s.cur = &value{r: s.r}
	return s.cur, true, nil
}

// object serves both as a map cursor and as a variant cursor.
type object struct {
	r       *reader
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
	tok, err := o.r.next()
	if err != nil {
		return "", false, err
	}
	switch tok.Kind {
	case eng.KindEndObject:
		o.done = true
		o.pending = nil
		return "", false, nil
	case eng.KindKey:
		o.pending = &value{r: o.r}
		return tok.String, true, nil
	}
	return "", false, eng.ErrUnexpectedToken
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
		return nil, fmt.Errorf("stream: NextValue called without a key")
	}
	return o.pending, nil
}

func (o *object) NextTag() (string, bool, error) { return o.advance() }

func (o *object) Payload() (wc.Decoder, error) { return o.NextValue() }
