package wirecodec

// NewStrictDecoder wraps d so that every record reached through it, at any
// depth, rejects fields outside its allowlist. All other behavior is d's.
func NewStrictDecoder(d Decoder) Decoder {
	if _, ok := d.(*strictDecoder); ok {
		return d
	}
	return &strictDecoder{inner: d}
}

// WithMode returns d decorated for mode. Lenient decoding uses d unchanged.
func WithMode(d Decoder, mode DecodeMode) Decoder {
	if mode == Strict {
		return NewStrictDecoder(d)
	}
	return d
}

type strictDecoder struct {
	inner Decoder
}

func (s *strictDecoder) DecodeBool() (bool, error)     { return s.inner.DecodeBool() }
func (s *strictDecoder) DecodeInt() (int64, error)     { return s.inner.DecodeInt() }
func (s *strictDecoder) DecodeFloat() (float64, error) { return s.inner.DecodeFloat() }
func (s *strictDecoder) DecodeString() (string, error) { return s.inner.DecodeString() }
func (s *strictDecoder) DecodeBytes() ([]byte, error)  { return s.inner.DecodeBytes() }
func (s *strictDecoder) DecodeUnit() error             { return s.inner.DecodeUnit() }
func (s *strictDecoder) DecodeAny() (any, error)       { return s.inner.DecodeAny() }
func (s *strictDecoder) Skip() error                   { return s.inner.Skip() }

func (s *strictDecoder) DecodeOptional() (Decoder, bool, error) {
	d, ok, err := s.inner.DecodeOptional()
	if err != nil || !ok {
		return nil, ok, err
	}
	return &strictDecoder{inner: d}, true, nil
}

func (s *strictDecoder) DecodeSeq() (SeqCursor, error) {
	c, err := s.inner.DecodeSeq()
	if err != nil {
		return nil, err
	}
	return strictSeq{inner: c}, nil
}

func (s *strictDecoder) DecodeMap() (MapCursor, error) {
	c, err := s.inner.DecodeMap()
	if err != nil {
		return nil, err
	}
	return strictMap{inner: c}, nil
}

func (s *strictDecoder) DecodeRecord(fields []string) (MapCursor, error) {
	c, err := s.inner.DecodeRecord(fields)
	if err != nil {
		return nil, err
	}
	return &strictRecord{inner: c, fields: fields}, nil
}

func (s *strictDecoder) DecodeVariant() (VariantCursor, error) {
	c, err := s.inner.DecodeVariant()
	if err != nil {
		return nil, err
	}
	return strictVariant{inner: c}, nil
}

type strictSeq struct{ inner SeqCursor }

func (c strictSeq) Next() (Decoder, bool, error) {
	d, ok, err := c.inner.Next()
	if err != nil || !ok {
		return nil, ok, err
	}
	return &strictDecoder{inner: d}, true, nil
}

// strictMap covers untyped maps: keys and values are re-wrapped, nothing
// is rejected at this level.
type strictMap struct{ inner MapCursor }

func (c strictMap) NextKey() (Decoder, bool, error) {
	k, ok, err := c.inner.NextKey()
	if err != nil || !ok {
		return nil, ok, err
	}
	return &strictDecoder{inner: k}, true, nil
}

func (c strictMap) NextValue() (Decoder, error) {
	v, err := c.inner.NextValue()
	if err != nil {
		return nil, err
	}
	return &strictDecoder{inner: v}, nil
}

type strictVariant struct{ inner VariantCursor }

func (c strictVariant) NextTag() (string, bool, error) { return c.inner.NextTag() }

func (c strictVariant) Payload() (Decoder, error) {
	d, err := c.inner.Payload()
	if err != nil {
		return nil, err
	}
	return &strictDecoder{inner: d}, nil
}

// keySlot holds the textual form of the key most recently read from a record.
type keySlot struct {
	name string
	ok   bool
}

type strictRecord struct {
	inner  MapCursor
	fields []string
	last   keySlot
}

func (c *strictRecord) NextKey() (Decoder, bool, error) {
	c.last = keySlot{}
	k, ok, err := c.inner.NextKey()
	if err != nil || !ok {
		return nil, ok, err
	}
	return &keyCapture{strictDecoder: strictDecoder{inner: k}, slot: &c.last}, true, nil
}

func (c *strictRecord) NextValue() (Decoder, error) {
	v, err := c.inner.NextValue()
	if err != nil {
		return nil, err
	}
	return &fieldValue{strictDecoder: strictDecoder{inner: v}, fields: c.fields, key: c.last}, nil
}

// keyCapture records the key's text into the owning record's slot when the
// key is read as a string.
type keyCapture struct {
	strictDecoder
	slot *keySlot
}

func (k *keyCapture) DecodeString() (string, error) {
	s, err := k.inner.DecodeString()
	if err == nil {
		*k.slot = keySlot{name: s, ok: true}
	}
	return s, err
}

func (k *keyCapture) DecodeAny() (any, error) {
	v, err := k.inner.DecodeAny()
	if s, ok := v.(string); ok && err == nil {
		*k.slot = keySlot{name: s, ok: true}
	}
	return v, err
}

// fieldValue is the decoder of one record value. Skipping it means the field
// was not recognized, which strict mode rejects.
type fieldValue struct {
	strictDecoder
	fields []string
	key    keySlot
}

func (f *fieldValue) Skip() error {
	name := UnknownKeyLabel
	if f.key.ok {
		name = f.key.name
	}
	return &UnknownFieldError{Field: name, Allowed: f.fields}
}
