package ir

import (
	"fmt"

	wc "github.com/reoring/wirecodec"
)

// TypeDefinition is union TypeDefinition {object, union, enum, alias}.
type TypeDefinition interface{ isTypeDefinition() }

// ObjectDefinition defines a record.
type ObjectDefinition struct {
	TypeName TypeName
	Fields   []FieldDefinition
	Docs     *string
}

// UnionDefinition defines a tagged union; each field is one variant.
type UnionDefinition struct {
	TypeName TypeName
	Union    []FieldDefinition
	Docs     *string
}

// EnumValue is one value of an enum.
type EnumValue struct {
	Value string
	Docs  *string
}

// EnumDefinition defines an enum.
type EnumDefinition struct {
	TypeName TypeName
	Values   []EnumValue
	Docs     *string
}

// AliasDefinition names another type.
type AliasDefinition struct {
	TypeName TypeName
	Alias    Type
	Docs     *string
}

// UnknownTypeDefinition is a definition kind these bindings do not know.
type UnknownTypeDefinition struct{ wc.UnknownVariant }

func (*ObjectDefinition) isTypeDefinition()     {}
func (*UnionDefinition) isTypeDefinition()      {}
func (*EnumDefinition) isTypeDefinition()       {}
func (*AliasDefinition) isTypeDefinition()      {}
func (UnknownTypeDefinition) isTypeDefinition() {}

var (
	objectRecord = wc.Record{Name: "ObjectDefinition", Fields: []wc.Field{
		{Name: "typeName"}, {Name: "fields"}, {Name: "docs", Optional: true},
	}}
	unionRecord = wc.Record{Name: "UnionDefinition", Fields: []wc.Field{
		{Name: "typeName"}, {Name: "union"}, {Name: "docs", Optional: true},
	}}
	enumRecord = wc.Record{Name: "EnumDefinition", Fields: []wc.Field{
		{Name: "typeName"}, {Name: "values"}, {Name: "docs", Optional: true},
	}}
	enumValueRecord = wc.Record{Name: "EnumValueDefinition", Fields: []wc.Field{
		{Name: "value"}, {Name: "docs", Optional: true}, {Name: "deprecated", Optional: true},
	}}
	aliasRecord = wc.Record{Name: "AliasDefinition", Fields: []wc.Field{
		{Name: "typeName"}, {Name: "alias"}, {Name: "docs", Optional: true}, {Name: "safety", Optional: true},
	}}
)

func (o *ObjectDefinition) UnmarshalWire(d wc.Decoder) error {
	return objectRecord.Decode(d, func(field string, v wc.Decoder) (err error) {
		switch field {
		case "typeName":
			err = o.TypeName.UnmarshalWire(v)
		case "fields":
			o.Fields, err = decodeFields(v)
		case "docs":
			o.Docs, err = decodeDocs(v)
		}
		return err
	})
}

func (u *UnionDefinition) UnmarshalWire(d wc.Decoder) error {
	return unionRecord.Decode(d, func(field string, v wc.Decoder) (err error) {
		switch field {
		case "typeName":
			err = u.TypeName.UnmarshalWire(v)
		case "union":
			u.Union, err = decodeFields(v)
		case "docs":
			u.Docs, err = decodeDocs(v)
		}
		return err
	})
}

func (e *EnumDefinition) UnmarshalWire(d wc.Decoder) error {
	return enumRecord.Decode(d, func(field string, v wc.Decoder) (err error) {
		switch field {
		case "typeName":
			err = e.TypeName.UnmarshalWire(v)
		case "values":
			e.Values = []EnumValue{}
			err = wc.EachElement(v, func(_ int, el wc.Decoder) error {
				var ev EnumValue
				err := enumValueRecord.Decode(el, func(field string, v wc.Decoder) (err error) {
					switch field {
					case "value":
						ev.Value, err = v.DecodeString()
					case "docs":
						ev.Docs, err = decodeDocs(v)
					default:
						_, err = v.DecodeAny()
					}
					return err
				})
				e.Values = append(e.Values, ev)
				return err
			})
		case "docs":
			e.Docs, err = decodeDocs(v)
		}
		return err
	})
}

func (a *AliasDefinition) UnmarshalWire(d wc.Decoder) error {
	return aliasRecord.Decode(d, func(field string, v wc.Decoder) (err error) {
		switch field {
		case "typeName":
			err = a.TypeName.UnmarshalWire(v)
		case "alias":
			a.Alias, err = types.Decode(v)
		case "docs":
			a.Docs, err = decodeDocs(v)
		default:
			_, err = v.DecodeAny()
		}
		return err
	})
}

var typeDefinitions = wc.NewUnion("TypeDefinition", []wc.Variant[TypeDefinition]{
	{Name: "object", Decode: func(d wc.Decoder) (TypeDefinition, error) {
		o := &ObjectDefinition{}
		return o, o.UnmarshalWire(d)
	}},
	{Name: "union", Decode: func(d wc.Decoder) (TypeDefinition, error) {
		u := &UnionDefinition{}
		return u, u.UnmarshalWire(d)
	}},
	{Name: "enum", Decode: func(d wc.Decoder) (TypeDefinition, error) {
		e := &EnumDefinition{}
		return e, e.UnmarshalWire(d)
	}},
	{Name: "alias", Decode: func(d wc.Decoder) (TypeDefinition, error) {
		a := &AliasDefinition{}
		return a, a.UnmarshalWire(d)
	}},
}, func(u wc.UnknownVariant) TypeDefinition { return UnknownTypeDefinition{u} })

func withDocs(m *wc.Map, docs *string) *wc.Map {
	if docs != nil {
		m.Set("docs", *docs)
	}
	return m
}

func encodeTypeDefinition(t TypeDefinition) (any, error) {
	switch x := t.(type) {
	case *ObjectDefinition:
		fields, err := encodeFields(x.Fields)
		if err != nil {
			return nil, wc.AtPath(err, "fields")
		}
		return wc.EncodeUnion("object", withDocs(wc.NewMap(3).Set("typeName", x.TypeName).Set("fields", fields), x.Docs))
	case *UnionDefinition:
		variants, err := encodeFields(x.Union)
		if err != nil {
			return nil, wc.AtPath(err, "union")
		}
		return wc.EncodeUnion("union", withDocs(wc.NewMap(3).Set("typeName", x.TypeName).Set("union", variants), x.Docs))
	case *EnumDefinition:
		values := make([]any, 0, len(x.Values))
		for _, v := range x.Values {
			values = append(values, withDocs(wc.NewMap(2).Set("value", v.Value), v.Docs))
		}
		return wc.EncodeUnion("enum", withDocs(wc.NewMap(3).Set("typeName", x.TypeName).Set("values", values), x.Docs))
	case *AliasDefinition:
		alias, err := encodeType(x.Alias)
		if err != nil {
			return nil, wc.AtPath(err, "alias")
		}
		return wc.EncodeUnion("alias", withDocs(wc.NewMap(3).Set("typeName", x.TypeName).Set("alias", alias), x.Docs))
	case UnknownTypeDefinition:
		return x.MarshalWire()
	}
	return nil, fmt.Errorf("ir: unsupported type definition %T", t)
}
