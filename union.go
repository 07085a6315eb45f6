package wirecodec

import "fmt"

// DiscriminatorKey is the map key carrying a union's variant name.
const DiscriminatorKey = "type"

// Variant binds a discriminator to the decoder of its payload.
type Variant[U any] struct {
	Name   string
	Decode func(d Decoder) (U, error)
}

// UnknownVariant holds a variant of an open union that the binding does not
// know. Value is the payload, uninterpreted.
type UnknownVariant struct {
	Type  string
	Value any
}

// MarshalWire re-emits the variant exactly as it was received.
func (u UnknownVariant) MarshalWire() (any, error) { return EncodeUnion(u.Type, u.Value) }

// EncodeUnion returns the two-entry wire form {"type": tag, tag: payload}.
func EncodeUnion(tag string, payload any) (any, error) {
	p, err := Encode(payload)
	if err != nil {
		return nil, AtPath(err, tag)
	}
	m := NewMap(2)
	m.Entries = append(m.Entries, Entry{Key: DiscriminatorKey, Value: tag}, Entry{Key: tag, Value: p})
	return m, nil
}

// UnionCodec decodes one union type into values of U.
// A UnionCodec is immutable once built and safe for concurrent use.
type UnionCodec[U any] struct {
	name     string
	variants []Variant[U]
	known    []string
	unknown  func(UnknownVariant) U
}

// NewUnion builds the codec of the union called name. unknown converts an
// unrecognized variant into U; a nil unknown makes the union closed, so that
// unrecognized discriminators fail with UnrecognizedVariant.
// NewUnion panics if two variants share a discriminator.
func NewUnion[U any](name string, variants []Variant[U], unknown func(UnknownVariant) U) *UnionCodec[U] {
	c := &UnionCodec[U]{name: name, unknown: unknown}
	seen := make(map[string]bool, len(variants))
	for _, v := range variants {
		if seen[v.Name] {
			panic(fmt.Sprintf("wirecodec: union %s declares variant %q twice", name, v.Name))
		}
		seen[v.Name] = true
		c.variants = append(c.variants, v)
		c.known = append(c.known, v.Name)
	}
	return c
}

// Name returns the union's type name.
func (c *UnionCodec[U]) Name() string { return c.name }

// Known returns the declared discriminators in declaration order.
func (c *UnionCodec[U]) Known() []string { return append([]string(nil), c.known...) }

// Open reports whether unrecognized variants are retained.
func (c *UnionCodec[U]) Open() bool { return c.unknown != nil }

func (c *UnionCodec[U]) lookup(name string) (Variant[U], bool) {
	for _, v := range c.variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant[U]{}, false
}

func (c *UnionCodec[U]) fail(kind UnionErrorKind, expected, found string) error {
	e := &InvalidUnionError{Union: c.name, Kind: kind, Expected: expected, Found: found}
	if kind == UnrecognizedVariant {
		e.Known = c.Known()
	}
	return e
}

// Decode reads one union value. The "type" entry and the payload entry may
// come in either order; the payload is decoded exactly once.
func (c *UnionCodec[U]) Decode(d Decoder) (U, error) {
	var zero U
	vc, err := d.DecodeVariant()
	if err != nil {
		return zero, err
	}
	tag, ok, err := vc.NextTag()
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, c.fail(MissingDiscriminator, "", "")
	}

	var out U
	if tag == DiscriminatorKey {
		out, err = c.decodeTypeFirst(vc)
	} else {
		out, err = c.decodePayloadFirst(vc, tag)
	}
	if err != nil {
		return zero, err
	}

	extra, ok, err := vc.NextTag()
	if err != nil {
		return zero, err
	}
	if ok {
		return zero, c.fail(ExcessFields, "", extra)
	}
	return out, nil
}

func (c *UnionCodec[U]) decodeTypeFirst(vc VariantCursor) (U, error) {
	var zero U
	name, err := c.readType(vc)
	if err != nil {
		return zero, err
	}
	v, known := c.lookup(name)
	if !known && c.unknown == nil {
		return zero, c.fail(UnrecognizedVariant, "", name)
	}
	next, ok, err := vc.NextTag()
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, &MissingFieldError{Field: name}
	}
	if next != name {
		return zero, c.fail(DiscriminatorMismatch, name, next)
	}
	return c.decodePayload(vc, v, known, name)
}

func (c *UnionCodec[U]) decodePayloadFirst(vc VariantCursor, name string) (U, error) {
	var zero U
	v, known := c.lookup(name)
	if !known && c.unknown == nil {
		return zero, c.fail(UnrecognizedVariant, "", name)
	}
	out, err := c.decodePayload(vc, v, known, name)
	if err != nil {
		return zero, err
	}
	next, ok, err := vc.NextTag()
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, c.fail(MissingDiscriminator, "", "")
	}
	if next != DiscriminatorKey {
		return zero, c.fail(MissingDiscriminator, "", next)
	}
	typ, err := c.readType(vc)
	if err != nil {
		return zero, err
	}
	if typ != name {
		return zero, c.fail(DiscriminatorMismatch, name, typ)
	}
	return out, nil
}

func (c *UnionCodec[U]) readType(vc VariantCursor) (string, error) {
	pd, err := vc.Payload()
	if err != nil {
		return "", err
	}
	name, err := pd.DecodeString()
	if err != nil {
		return "", AtPath(err, DiscriminatorKey)
	}
	return name, nil
}

func (c *UnionCodec[U]) decodePayload(vc VariantCursor, v Variant[U], known bool, name string) (U, error) {
	var zero U
	pd, err := vc.Payload()
	if err != nil {
		return zero, err
	}
	if known {
		out, err := v.Decode(pd)
		if err != nil {
			return zero, AtPath(err, name)
		}
		return out, nil
	}
	raw, err := pd.DecodeAny()
	if err != nil {
		return zero, AtPath(err, name)
	}
	return c.unknown(UnknownVariant{Type: name, Value: raw}), nil
}
