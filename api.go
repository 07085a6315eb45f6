package wirecodec

import (
	"bytes"
	"fmt"
	"io"
)

// Format is one self-describing wire encoding. Format values carry no
// mutable state and are safe for concurrent use.
type Format interface {
	// Name is the short identifier used on command lines ("json", "cbor", ...).
	Name() string
	ContentType() string
	// NewDecoder returns a decoder for the single value held by r.
	NewDecoder(r io.Reader, opt DecodeOpt) (Decoder, error)
	// Marshal encodes a wire value (see Encode).
	Marshal(wire any) ([]byte, error)
}

// Ender is implemented by top-level decoders that can verify nothing follows
// the decoded value.
type Ender interface {
	End() error
}

// Decode decodes v from d under mode.
func Decode(d Decoder, mode DecodeMode, v Unmarshaler) error {
	return v.UnmarshalWire(WithMode(d, mode))
}

// Unmarshal decodes data in format f into v, applying opt.
func Unmarshal(f Format, data []byte, opt DecodeOpt, v Unmarshaler) error {
	return UnmarshalFrom(f, bytes.NewReader(data), opt, v)
}

// UnmarshalFrom is Unmarshal over a reader. The reader must hold exactly one value.
func UnmarshalFrom(f Format, r io.Reader, opt DecodeOpt, v Unmarshaler) error {
	d, err := f.NewDecoder(r, opt)
	if err != nil {
		return fmt.Errorf("%s: %w", f.Name(), err)
	}
	if err := Decode(d, opt.Mode, v); err != nil {
		return err
	}
	if e, ok := d.(Ender); ok {
		return e.End()
	}
	return nil
}

// Marshal encodes v and renders it in format f.
func Marshal(f Format, v any) ([]byte, error) {
	w, err := Encode(v)
	if err != nil {
		return nil, err
	}
	return f.Marshal(w)
}

// Transcode reads one value in from and writes it in to, uninterpreted.
func Transcode(from, to Format, data []byte, opt DecodeOpt) ([]byte, error) {
	d, err := from.NewDecoder(bytes.NewReader(data), opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", from.Name(), err)
	}
	w, err := d.DecodeAny()
	if err != nil {
		return nil, err
	}
	if e, ok := d.(Ender); ok {
		if err := e.End(); err != nil {
			return nil, err
		}
	}
	return to.Marshal(w)
}

// AnyValue is an Unmarshaler that keeps the decoded value uninterpreted.
type AnyValue struct {
	Value any
}

func (a *AnyValue) UnmarshalWire(d Decoder) error {
	v, err := d.DecodeAny()
	if err != nil {
		return err
	}
	a.Value = v
	return nil
}

func (a AnyValue) MarshalWire() (any, error) { return a.Value, nil }
