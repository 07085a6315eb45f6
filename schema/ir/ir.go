// Package ir holds bindings for the JSON intermediate representation of a
// schema definition: a versioned list of object, union, enum and alias
// definitions. The bindings are written the way generated bindings are, so
// the IR document is itself decoded by the union codec and record walker.
package ir

import (
	wc "github.com/reoring/wirecodec"
)

// Conjure is the root of an IR document.
type Conjure struct {
	Version int64
	Types   []TypeDefinition
}

var conjureRecord = wc.Record{Name: "ConjureDefinition", Fields: []wc.Field{
	{Name: "version"},
	{Name: "types", Optional: true},
	{Name: "errors", Optional: true},
	{Name: "services", Optional: true},
	{Name: "extensions", Optional: true},
}}

func (c *Conjure) UnmarshalWire(d wc.Decoder) error {
	return conjureRecord.Decode(d, func(field string, v wc.Decoder) (err error) {
		switch field {
		case "version":
			c.Version, err = v.DecodeInt()
		case "types":
			c.Types = nil
			err = wc.EachElement(v, func(_ int, e wc.Decoder) error {
				t, err := typeDefinitions.Decode(e)
				if err != nil {
					return err
				}
				c.Types = append(c.Types, t)
				return nil
			})
		default:
			// errors, services and extensions are not part of the type model.
			_, err = v.DecodeAny()
		}
		return err
	})
}

func (c Conjure) MarshalWire() (any, error) {
	types := make([]any, 0, len(c.Types))
	for i, t := range c.Types {
		w, err := encodeTypeDefinition(t)
		if err != nil {
			return nil, wc.AtPath(wc.AtIndex(err, i), "types")
		}
		types = append(types, w)
	}
	return wc.NewMap(2).Set("version", c.Version).Set("types", types), nil
}

// TypeName names a definition.
type TypeName struct {
	Name    string
	Package string
}

var typeNameRecord = wc.Record{Name: "TypeName", Fields: []wc.Field{{Name: "name"}, {Name: "package"}}}

func (n *TypeName) UnmarshalWire(d wc.Decoder) error {
	return typeNameRecord.Decode(d, func(field string, v wc.Decoder) (err error) {
		switch field {
		case "name":
			n.Name, err = v.DecodeString()
		case "package":
			n.Package, err = v.DecodeString()
		}
		return err
	})
}

func (n TypeName) MarshalWire() (any, error) {
	return wc.NewMap(2).Set("name", n.Name).Set("package", n.Package), nil
}

// FieldDefinition is a record field or a union variant.
type FieldDefinition struct {
	FieldName string
	Type      Type
	Docs      *string
}

var fieldDefinitionRecord = wc.Record{Name: "FieldDefinition", Fields: []wc.Field{
	{Name: "fieldName"},
	{Name: "type"},
	{Name: "docs", Optional: true},
	{Name: "deprecated", Optional: true},
	{Name: "safety", Optional: true},
}}

func (f *FieldDefinition) UnmarshalWire(d wc.Decoder) error {
	return fieldDefinitionRecord.Decode(d, func(field string, v wc.Decoder) (err error) {
		switch field {
		case "fieldName":
			f.FieldName, err = v.DecodeString()
		case "type":
			f.Type, err = types.Decode(v)
		case "docs":
			f.Docs, err = decodeDocs(v)
		default:
			_, err = v.DecodeAny()
		}
		return err
	})
}

func (f FieldDefinition) MarshalWire() (any, error) {
	t, err := encodeType(f.Type)
	if err != nil {
		return nil, wc.AtPath(err, "type")
	}
	out := wc.NewMap(3).Set("fieldName", f.FieldName).Set("type", t)
	if f.Docs != nil {
		out.Set("docs", *f.Docs)
	}
	return out, nil
}

func decodeDocs(v wc.Decoder) (*string, error) {
	od, ok, err := v.DecodeOptional()
	if err != nil || !ok {
		return nil, err
	}
	s, err := od.DecodeString()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func decodeFields(v wc.Decoder) ([]FieldDefinition, error) {
	out := []FieldDefinition{}
	err := wc.EachElement(v, func(_ int, e wc.Decoder) error {
		var f FieldDefinition
		if err := f.UnmarshalWire(e); err != nil {
			return err
		}
		out = append(out, f)
		return nil
	})
	return out, err
}

func encodeFields(fields []FieldDefinition) (any, error) {
	out := make([]any, 0, len(fields))
	for i, f := range fields {
		w, err := f.MarshalWire()
		if err != nil {
			return nil, wc.AtIndex(err, i)
		}
		out = append(out, w)
	}
	return out, nil
}
