// Package json is the JSON driver backed by goccy/go-json. Values are decoded
// straight off the token stream; duplicate keys, depth and size limits are
// enforced as tokens arrive.
package json

import (
	"bytes"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	wc "github.com/reoring/wirecodec"
	eng "github.com/reoring/wirecodec/internal/engine"
	"github.com/reoring/wirecodec/internal/stream"
)

// Format is the JSON wire format.
var Format wc.Format = format{}

type format struct{}

func (format) Name() string        { return "json" }
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
	dec        *j.Decoder
	frames     eng.Frames
	lastOffset int64
}

// NewReader wraps an io.Reader into an engine.TokenSource using go-json.
func NewReader(r io.Reader) eng.TokenSource {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return &source{dec: dec, lastOffset: -1}
}

// NewBytes wraps a byte slice into an engine.TokenSource using go-json.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	s.lastOffset = s.dec.InputOffset()

	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.frames.Open(true)
			return eng.Token{Kind: eng.KindBeginObject, Offset: s.lastOffset}, nil
		case '}':
			s.frames.Close()
			return eng.Token{Kind: eng.KindEndObject, Offset: s.lastOffset}, nil
		case '[':
			s.frames.Open(false)
			return eng.Token{Kind: eng.KindBeginArray, Offset: s.lastOffset}, nil
		case ']':
			s.frames.Close()
			return eng.Token{Kind: eng.KindEndArray, Offset: s.lastOffset}, nil
		}
	case string:
		if s.frames.Scalar(true) {
			return eng.Token{Kind: eng.KindKey, String: v, Offset: s.lastOffset}, nil
		}
		return eng.Token{Kind: eng.KindString, String: v, Offset: s.lastOffset}, nil
	case bool:
		s.frames.Scalar(false)
		return eng.Token{Kind: eng.KindBool, Bool: v, Offset: s.lastOffset}, nil
	case j.Number:
		s.frames.Scalar(false)
		return eng.Token{Kind: eng.KindNumber, Number: string(v), Offset: s.lastOffset}, nil
	case float64:
		s.frames.Scalar(false)
		return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: s.lastOffset}, nil
	}
	s.frames.Scalar(false)
	return eng.Token{Kind: eng.KindNull, Offset: s.lastOffset}, nil
}

func (s *source) Location() int64 { return s.lastOffset }
