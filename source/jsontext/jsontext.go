// Package jsontext is a JSON driver built on the go-json-experiment
// tokenizer. It shares the streaming decoder and input limits of package
// source/json but writes through jsontext.Encoder.
package jsontext

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/go-json-experiment/json/jsontext"

	wc "github.com/reoring/wirecodec"
	eng "github.com/reoring/wirecodec/internal/engine"
	"github.com/reoring/wirecodec/internal/stream"
)

// Format is JSON through jsontext.
var Format wc.Format = format{}

type format struct{}

func (format) Name() string        { return "jsontext" }
func (format) ContentType() string { return "application/json" }

func (format) NewDecoder(r io.Reader, opt wc.DecodeOpt) (wc.Decoder, error) {
	return NewDecoder(r, opt), nil
}

func (format) Marshal(wire any) ([]byte, error) { return Marshal(wire) }

// NewDecoder returns a streaming decoder over r.
func NewDecoder(r io.Reader, opt wc.DecodeOpt) *stream.Root {
	return stream.NewDecoder(eng.Enforce(NewReader(r), opt))
}

type source struct {
	dec    *jsontext.Decoder
	frames eng.Frames
}

// NewReader wraps r into an engine.TokenSource. Duplicate names are passed
// through so that the enforcement layer decides on them.
func NewReader(r io.Reader) eng.TokenSource {
	return &source{dec: jsontext.NewDecoder(r, jsontext.AllowDuplicateNames(true))}
}

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.ReadToken()
	if err != nil {
		return eng.Token{}, err
	}
	off := s.dec.InputOffset()
	switch tok.Kind() {
	case '{':
		s.frames.Open(true)
		return eng.Token{Kind: eng.KindBeginObject, Offset: off}, nil
	case '}':
		s.frames.Close()
		return eng.Token{Kind: eng.KindEndObject, Offset: off}, nil
	case '[':
		s.frames.Open(false)
		return eng.Token{Kind: eng.KindBeginArray, Offset: off}, nil
	case ']':
		s.frames.Close()
		return eng.Token{Kind: eng.KindEndArray, Offset: off}, nil
	case '"':
		if s.frames.Scalar(true) {
			return eng.Token{Kind: eng.KindKey, String: tok.String(), Offset: off}, nil
		}
		return eng.Token{Kind: eng.KindString, String: tok.String(), Offset: off}, nil
	case '0':
		s.frames.Scalar(false)
		return eng.Token{Kind: eng.KindNumber, Number: tok.String(), Offset: off}, nil
	case 't', 'f':
		s.frames.Scalar(false)
		return eng.Token{Kind: eng.KindBool, Bool: tok.Bool(), Offset: off}, nil
	case 'n':
		s.frames.Scalar(false)
		return eng.Token{Kind: eng.KindNull, Offset: off}, nil
	}
	return eng.Token{}, fmt.Errorf("jsontext: unexpected token kind %v", tok.Kind())
}

func (s *source) Location() int64 { return s.dec.InputOffset() }

// Marshal renders a wire value as compact JSON, keeping map entry order.
func Marshal(wire any) ([]byte, error) {
	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf, jsontext.AllowDuplicateNames(true))
	if err := write(enc, wire); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func write(enc *jsontext.Encoder, v any) error {
	switch x := v.(type) {
	case nil:
		return enc.WriteToken(jsontext.Null)
	case bool:
		if x {
			return enc.WriteToken(jsontext.True)
		}
		return enc.WriteToken(jsontext.False)
	case int64:
		return enc.WriteToken(jsontext.Int(x))
	case float64:
		if s, ok := wc.FormatSpecialFloat(x); ok {
			return enc.WriteToken(jsontext.String(s))
		}
		return enc.WriteToken(jsontext.Float(x))
	case string:
		return enc.WriteToken(jsontext.String(x))
	case []byte:
		return enc.WriteToken(jsontext.String(base64.StdEncoding.EncodeToString(x)))
	case []any:
		if err := enc.WriteToken(jsontext.ArrayStart); err != nil {
			return err
		}
		for i, e := range x {
			if err := write(enc, e); err != nil {
				return wc.AtIndex(err, i)
			}
		}
		return enc.WriteToken(jsontext.ArrayEnd)
	case *wc.Map:
		if x == nil {
			return enc.WriteToken(jsontext.Null)
		}
		if err := enc.WriteToken(jsontext.ObjectStart); err != nil {
			return err
		}
		for _, e := range x.Entries {
			key, ok := e.Key.(string)
			if !ok {
				key = fmt.Sprint(e.Key)
			}
			if err := enc.WriteToken(jsontext.String(key)); err != nil {
				return err
			}
			if err := write(enc, e.Value); err != nil {
				return wc.AtPath(err, key)
			}
		}
		return enc.WriteToken(jsontext.ObjectEnd)
	}
	w, err := wc.Encode(v)
	if err != nil {
		return err
	}
	return write(enc, w)
}
