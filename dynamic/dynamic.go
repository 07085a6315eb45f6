// Package dynamic decodes wire input against a schema model at run time,
// without generated bindings. Results are wire values (see wirecodec.Encode)
// and re-encode to any format unchanged.
package dynamic

import (
	"fmt"
	"strings"

	wc "github.com/reoring/wirecodec"
	"github.com/reoring/wirecodec/schema"
)

// Options configures a Codec.
type Options struct {
	// Exhaustive closes every union and enum: values outside the declared
	// set are rejected instead of retained.
	Exhaustive bool
	// OnUnknownVariant, when set, is told about each retained variant that the
	// model does not declare. catchAll is the union's catch-all name.
	OnUnknownVariant func(union, catchAll, tag string)
}

// Codec decodes values of the types of one model. A Codec is immutable and
// safe for concurrent use.
type Codec struct {
	model   *schema.Model
	opt     Options
	records map[string]wc.Record
	unions  map[string]*wc.UnionCodec[any]
}

// New prepares the record walkers and union codecs of m.
func New(m *schema.Model, opt Options) *Codec {
	c := &Codec{
		model:   m,
		opt:     opt,
		records: map[string]wc.Record{},
		unions:  map[string]*wc.UnionCodec[any]{},
	}
	for _, d := range m.Definitions() {
		switch x := d.(type) {
		case *schema.RecordType:
			rec := wc.Record{Name: x.Name}
			for _, f := range x.Fields {
				rec.Fields = append(rec.Fields, wc.Field{Name: f.Name, Optional: f.Optional()})
			}
			c.records[x.Name] = rec
		case *schema.UnionType:
			c.unions[x.Name] = c.newUnion(x)
		}
	}
	return c
}

func (c *Codec) newUnion(u *schema.UnionType) *wc.UnionCodec[any] {
	variants := make([]wc.Variant[any], 0, len(u.Variants))
	for _, v := range u.Variants {
		v := v
		variants = append(variants, wc.Variant[any]{Name: v.Name, Decode: func(d wc.Decoder) (any, error) {
			p, err := c.Decode(d, v.Type)
			if err != nil {
				return nil, err
			}
			return wc.EncodeUnion(v.Name, p)
		}})
	}
	if c.opt.Exhaustive {
		return wc.NewUnion[any](u.Name, variants, nil)
	}
	catchAll := u.CatchAllName()
	return wc.NewUnion(u.Name, variants, func(uv wc.UnknownVariant) any {
		if c.opt.OnUnknownVariant != nil {
			c.opt.OnUnknownVariant(u.Name, catchAll, uv.Type)
		}
		w, _ := uv.MarshalWire()
		return w
	})
}

// Model returns the model the codec was built from.
func (c *Codec) Model() *schema.Model { return c.model }

// DecodeNamed decodes a value of the named definition.
func (c *Codec) DecodeNamed(d wc.Decoder, name string) (any, error) {
	if _, ok := c.model.Lookup(name); !ok {
		return nil, fmt.Errorf("dynamic: unknown type %q", name)
	}
	return c.Decode(d, &schema.Reference{Name: name})
}

// Decode decodes one value of type t from d.
func (c *Codec) Decode(d wc.Decoder, t schema.TypeRef) (any, error) {
	switch x := t.(type) {
	case *schema.Primitive:
		return decodePrimitive(d, x.Of)
	case *schema.Optional:
		od, ok, err := d.DecodeOptional()
		if err != nil || !ok {
			return nil, err
		}
		return c.Decode(od, x.Item)
	case *schema.List:
		return c.decodeList(d, x.Item, false)
	case *schema.Set:
		return c.decodeList(d, x.Item, true)
	case *schema.MapOf:
		return c.decodeMap(d, x)
	case *schema.Reference:
		return c.decodeReference(d, x.Name)
	}
	return nil, fmt.Errorf("dynamic: unsupported type %s", schema.Describe(t))
}

// decodeList decodes a list or, when unique is set, a set. Set elements equal
// to an earlier element are dropped.
func (c *Codec) decodeList(d wc.Decoder, item schema.TypeRef, unique bool) (any, error) {
	out := []any{}
	var seen map[string]bool
	if unique {
		seen = map[string]bool{}
	}
	err := wc.EachElement(d, func(_ int, e wc.Decoder) error {
		v, err := c.Decode(e, item)
		if err != nil {
			return err
		}
		if unique {
			k := identity(v)
			if seen[k] {
				return nil
			}
			seen[k] = true
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Codec) decodeMap(d wc.Decoder, t *schema.MapOf) (any, error) {
	out := wc.NewMap(4)
	err := wc.EachEntry(d, func(kd wc.Decoder, value func() (wc.Decoder, error)) error {
		k, err := c.Decode(kd, t.Key)
		if err != nil {
			return err
		}
		vd, err := value()
		if err != nil {
			return err
		}
		v, err := c.Decode(vd, t.Value)
		if err != nil {
			return wc.AtPath(err, fmt.Sprint(k))
		}
		put(out, k, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// put replaces the value of an equal key or appends a new entry.
func put(m *wc.Map, k, v any) {
	id := identity(k)
	for i := range m.Entries {
		if identity(m.Entries[i].Key) == id {
			m.Entries[i].Value = v
			return
		}
	}
	m.Entries = append(m.Entries, wc.Entry{Key: k, Value: v})
}

func (c *Codec) decodeReference(d wc.Decoder, name string) (any, error) {
	def, ok := c.model.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("dynamic: unknown type %q", name)
	}
	switch x := def.(type) {
	case *schema.RecordType:
		return c.decodeRecord(d, x)
	case *schema.UnionType:
		return c.unions[x.Name].Decode(d)
	case *schema.EnumType:
		return c.decodeEnum(d, x)
	case *schema.AliasType:
		return c.Decode(d, x.Alias)
	}
	return nil, fmt.Errorf("dynamic: unsupported definition %T", def)
}

// decodeRecord returns the fields present in the input in declaration order.
func (c *Codec) decodeRecord(d wc.Decoder, r *schema.RecordType) (any, error) {
	values := make(map[string]any, len(r.Fields))
	err := c.records[r.Name].Decode(d, func(field string, v wc.Decoder) error {
		f, _ := r.Field(field)
		val, err := c.Decode(v, f.Type)
		if err != nil {
			return err
		}
		values[field] = val
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := wc.NewMap(len(values))
	for _, f := range r.Fields {
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		if _, isOpt := f.Type.(*schema.Optional); isOpt && v == nil {
			continue
		}
		out.Set(f.Name, v)
	}
	return out, nil
}

func (c *Codec) decodeEnum(d wc.Decoder, e *schema.EnumType) (any, error) {
	s, err := d.DecodeString()
	if err != nil {
		return nil, err
	}
	if c.opt.Exhaustive && !e.Has(s) {
		return nil, &wc.TypeMismatchError{Expected: e.Name + " (" + strings.Join(e.Values, ", ") + ")", Found: fmt.Sprintf("%q", s)}
	}
	return s, nil
}

// Value adapts a Codec to wirecodec's Unmarshaler and Marshaler for one type.
type Value struct {
	codec *Codec
	typ   schema.TypeRef
	V     any
}

// NewValue returns an empty Value of type t.
func (c *Codec) NewValue(t schema.TypeRef) *Value { return &Value{codec: c, typ: t} }

func (v *Value) UnmarshalWire(d wc.Decoder) error {
	w, err := v.codec.Decode(d, v.typ)
	if err != nil {
		return err
	}
	v.V = w
	return nil
}

// MarshalWire returns the decoded wire value unchanged.
func (v Value) MarshalWire() (any, error) { return v.V, nil }
