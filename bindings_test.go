package wirecodec_test

import (
	wc "github.com/reoring/wirecodec"
)

// Bindings below are written the way a binding generator emits them.

// pair is record Pair {a: integer, b: integer}.
type pair struct {
	A int64
	B int64
}

var pairRecord = wc.Record{Name: "Pair", Fields: []wc.Field{{Name: "a"}, {Name: "b"}}}

func (p *pair) UnmarshalWire(d wc.Decoder) error {
	return pairRecord.Decode(d, func(field string, v wc.Decoder) (err error) {
		switch field {
		case "a":
			p.A, err = v.DecodeInt()
		case "b":
			p.B, err = v.DecodeInt()
		}
		return err
	})
}

func (p pair) MarshalWire() (any, error) {
	return wc.NewMap(2).Set("a", p.A).Set("b", p.B), nil
}

// circle is record Circle {radius: double, label: optional<string>}.
type circle struct {
	Radius float64
	Label  *string
}

var circleRecord = wc.Record{Name: "Circle", Fields: []wc.Field{{Name: "radius"}, {Name: "label", Optional: true}}}

func (c *circle) UnmarshalWire(d wc.Decoder) error {
	return circleRecord.Decode(d, func(field string, v wc.Decoder) error {
		switch field {
		case "radius":
			f, err := v.DecodeFloat()
			c.Radius = f
			return err
		case "label":
			od, ok, err := v.DecodeOptional()
			if err != nil || !ok {
				c.Label = nil
				return err
			}
			s, err := od.DecodeString()
			if err != nil {
				return err
			}
			c.Label = &s
		}
		return nil
	})
}

func (c circle) MarshalWire() (any, error) {
	out := wc.NewMap(2).Set("radius", c.Radius)
	if c.Label != nil {
		out.Set("label", *c.Label)
	}
	return out, nil
}

// shape is union Shape {circle: Circle, pair: Pair, tags: list<string>}.
type shape interface{ isShape() }

type circleShape struct{ circle }
type pairShape struct{ pair }
type tagsShape []string
type unknownShape struct{ wc.UnknownVariant }

func (circleShape) isShape()  {}
func (pairShape) isShape()    {}
func (tagsShape) isShape()    {}
func (unknownShape) isShape() {}

var shapeVariants = []wc.Variant[shape]{
	{Name: "circle", Decode: func(d wc.Decoder) (shape, error) {
		var c circle
		err := c.UnmarshalWire(d)
		return circleShape{c}, err
	}},
	{Name: "pair", Decode: func(d wc.Decoder) (shape, error) {
		var p pair
		err := p.UnmarshalWire(d)
		return pairShape{p}, err
	}},
	{Name: "tags", Decode: func(d wc.Decoder) (shape, error) {
		tags := tagsShape{}
		err := wc.EachElement(d, func(_ int, e wc.Decoder) error {
			s, err := e.DecodeString()
			tags = append(tags, s)
			return err
		})
		return tags, err
	}},
}

var (
	openShapes   = wc.NewUnion("Shape", shapeVariants, func(u wc.UnknownVariant) shape { return unknownShape{u} })
	closedShapes = wc.NewUnion[shape]("Shape", shapeVariants, nil)
)

// shapeBox adapts a shape to Unmarshaler/Marshaler.
type shapeBox struct {
	S      shape
	closed bool
}

func (b *shapeBox) UnmarshalWire(d wc.Decoder) error {
	codec := openShapes
	if b.closed {
		codec = closedShapes
	}
	s, err := codec.Decode(d)
	if err != nil {
		return err
	}
	b.S = s
	return nil
}

func (b shapeBox) MarshalWire() (any, error) { return encodeShape(b.S) }

func encodeShape(s shape) (any, error) {
	switch x := s.(type) {
	case circleShape:
		return wc.EncodeUnion("circle", x.circle)
	case pairShape:
		return wc.EncodeUnion("pair", x.pair)
	case tagsShape:
		return wc.EncodeUnion("tags", []string(x))
	case unknownShape:
		return x.MarshalWire()
	}
	return nil, nil
}

// drawing is record Drawing {name: string, shapes: list<Shape>}.
type drawing struct {
	Name   string
	Shapes []shape
}

var drawingRecord = wc.Record{Name: "Drawing", Fields: []wc.Field{{Name: "name"}, {Name: "shapes", Optional: true}}}

func (dr *drawing) UnmarshalWire(d wc.Decoder) error {
	return drawingRecord.Decode(d, func(field string, v wc.Decoder) (err error) {
		switch field {
		case "name":
			dr.Name, err = v.DecodeString()
		case "shapes":
			dr.Shapes = nil
			err = wc.EachElement(v, func(_ int, e wc.Decoder) error {
				s, err := openShapes.Decode(e)
				if err != nil {
					return err
				}
				dr.Shapes = append(dr.Shapes, s)
				return nil
			})
		}
		return err
	})
}

func (dr drawing) MarshalWire() (any, error) {
	shapes := make([]any, 0, len(dr.Shapes))
	for _, s := range dr.Shapes {
		w, err := encodeShape(s)
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, w)
	}
	return wc.NewMap(2).Set("name", dr.Name).Set("shapes", shapes), nil
}

func strPtr(s string) *string { return &s }

// m builds an ordered wire map from alternating keys and values.
func m(kv ...any) *wc.Map {
	out := wc.NewMap(len(kv) / 2)
	for i := 0; i+1 < len(kv); i += 2 {
		out.Entries = append(out.Entries, wc.Entry{Key: kv[i], Value: kv[i+1]})
	}
	return out
}
