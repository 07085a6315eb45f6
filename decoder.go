package wirecodec

// Decoder reads one value from a self-describing input. Scalar methods consume
// the value directly; structural methods return a cursor over its contents.
//
// Decoders and cursors are streaming views: a Decoder handed out by a cursor
// must be consumed (decoded or skipped) before that cursor advances. A map or
// variant cursor skips a value whose decoder was never requested.
type Decoder interface {
	DecodeBool() (bool, error)
	DecodeInt() (int64, error)
	DecodeFloat() (float64, error)
	DecodeString() (string, error)
	DecodeBytes() ([]byte, error)
	// DecodeUnit consumes an empty (null) value.
	DecodeUnit() error
	// DecodeAny returns the value uninterpreted as a wire value
	// (nil, bool, int64, float64, string, []byte, []any or *Map).
	DecodeAny() (any, error)

	// DecodeOptional returns (nil, false, nil) for an absent/null value and the
	// decoder for the present value otherwise.
	DecodeOptional() (Decoder, bool, error)
	DecodeSeq() (SeqCursor, error)
	// DecodeMap opens an untyped map whose keys are not schema-governed.
	DecodeMap() (MapCursor, error)
	// DecodeRecord opens a record-shaped map. fields is the record's static
	// allowlist; plain decoders ignore it.
	DecodeRecord(fields []string) (MapCursor, error)
	DecodeVariant() (VariantCursor, error)

	// Skip consumes the value and discards it.
	Skip() error
}

// SeqCursor iterates the elements of a sequence.
type SeqCursor interface {
	// Next returns the decoder of the next element, or ok=false at the end.
	Next() (d Decoder, ok bool, err error)
}

// MapCursor iterates the entries of a map or record. Keys are decoders so that
// non-textual keys stay representable.
type MapCursor interface {
	// NextKey returns a decoder for the next key, or ok=false at the end.
	NextKey() (k Decoder, ok bool, err error)
	// NextValue returns the decoder of the value paired with the last key.
	NextValue() (Decoder, error)
}

// VariantCursor walks a discriminated value: the "type" entry and the payload
// entry, in whichever order the input holds them.
type VariantCursor interface {
	// NextTag returns the next entry name, or ok=false at the end.
	NextTag() (tag string, ok bool, err error)
	// Payload returns the decoder of the value under the last tag.
	Payload() (Decoder, error)
}

// Unmarshaler is implemented by bindings that decode themselves.
type Unmarshaler interface {
	UnmarshalWire(d Decoder) error
}

// Marshaler is implemented by bindings that encode themselves into a wire value.
type Marshaler interface {
	MarshalWire() (any, error)
}
