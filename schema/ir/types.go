package ir

import (
	"fmt"

	wc "github.com/reoring/wirecodec"
)

// Type is union Type {primitive, optional, list, set, map, reference, external}.
type Type interface{ isType() }

// PrimitiveType names a primitive, e.g. "STRING".
type PrimitiveType string

// OptionalType is optional<ItemType>.
type OptionalType struct{ ItemType Type }

// ListType is list<ItemType>.
type ListType struct{ ItemType Type }

// SetType is set<ItemType>.
type SetType struct{ ItemType Type }

// MapType is map<KeyType, ValueType>.
type MapType struct{ KeyType, ValueType Type }

// ReferenceType refers to a definition of the document.
type ReferenceType struct{ TypeName }

// ExternalType refers to a type outside the document; decoding uses Fallback.
type ExternalType struct {
	ExternalReference TypeName
	Fallback          Type
}

// UnknownType is a type kind these bindings do not know.
type UnknownType struct{ wc.UnknownVariant }

func (PrimitiveType) isType()  {}
func (*OptionalType) isType()  {}
func (*ListType) isType()      {}
func (*SetType) isType()       {}
func (*MapType) isType()       {}
func (*ReferenceType) isType() {}
func (*ExternalType) isType()  {}
func (UnknownType) isType()    {}

var (
	itemRecord     = wc.Record{Name: "ItemType", Fields: []wc.Field{{Name: "itemType"}}}
	mapRecord      = wc.Record{Name: "MapType", Fields: []wc.Field{{Name: "keyType"}, {Name: "valueType"}}}
	externalRecord = wc.Record{Name: "ExternalReference", Fields: []wc.Field{{Name: "externalReference"}, {Name: "fallback"}}}
)

func decodeItem(d wc.Decoder) (Type, error) {
	var item Type
	err := itemRecord.Decode(d, func(_ string, v wc.Decoder) (err error) {
		item, err = types.Decode(v)
		return err
	})
	return item, err
}

// types is built in init because its variants decode nested types.
var types *wc.UnionCodec[Type]

func init() {
	types = wc.NewUnion("Type", []wc.Variant[Type]{
		{Name: "primitive", Decode: func(d wc.Decoder) (Type, error) {
			s, err := d.DecodeString()
			return PrimitiveType(s), err
		}},
		{Name: "optional", Decode: func(d wc.Decoder) (Type, error) {
			item, err := decodeItem(d)
			return &OptionalType{ItemType: item}, err
		}},
		{Name: "list", Decode: func(d wc.Decoder) (Type, error) {
			item, err := decodeItem(d)
			return &ListType{ItemType: item}, err
		}},
		{Name: "set", Decode: func(d wc.Decoder) (Type, error) {
			item, err := decodeItem(d)
			return &SetType{ItemType: item}, err
		}},
		{Name: "map", Decode: func(d wc.Decoder) (Type, error) {
			m := &MapType{}
			err := mapRecord.Decode(d, func(field string, v wc.Decoder) (err error) {
				switch field {
				case "keyType":
					m.KeyType, err = types.Decode(v)
				case "valueType":
					m.ValueType, err = types.Decode(v)
				}
				return err
			})
			return m, err
		}},
		{Name: "reference", Decode: func(d wc.Decoder) (Type, error) {
			r := &ReferenceType{}
			return r, r.TypeName.UnmarshalWire(d)
		}},
		{Name: "external", Decode: func(d wc.Decoder) (Type, error) {
			x := &ExternalType{}
			err := externalRecord.Decode(d, func(field string, v wc.Decoder) (err error) {
				switch field {
				case "externalReference":
					err = x.ExternalReference.UnmarshalWire(v)
				case "fallback":
					x.Fallback, err = types.Decode(v)
				}
				return err
			})
			return x, err
		}},
	}, func(u wc.UnknownVariant) Type { return UnknownType{u} })
}

func encodeType(t Type) (any, error) {
	item := func(tag string, it Type) (any, error) {
		w, err := encodeType(it)
		if err != nil {
			return nil, wc.AtPath(err, tag)
		}
		return wc.EncodeUnion(tag, wc.NewMap(1).Set("itemType", w))
	}
	switch x := t.(type) {
	case PrimitiveType:
		return wc.EncodeUnion("primitive", string(x))
	case *OptionalType:
		return item("optional", x.ItemType)
	case *ListType:
		return item("list", x.ItemType)
	case *SetType:
		return item("set", x.ItemType)
	case *MapType:
		k, err := encodeType(x.KeyType)
		if err != nil {
			return nil, wc.AtPath(err, "map")
		}
		v, err := encodeType(x.ValueType)
		if err != nil {
			return nil, wc.AtPath(err, "map")
		}
		return wc.EncodeUnion("map", wc.NewMap(2).Set("keyType", k).Set("valueType", v))
	case *ReferenceType:
		return wc.EncodeUnion("reference", x.TypeName)
	case *ExternalType:
		fb, err := encodeType(x.Fallback)
		if err != nil {
			return nil, wc.AtPath(err, "external")
		}
		return wc.EncodeUnion("external", wc.NewMap(2).Set("externalReference", x.ExternalReference).Set("fallback", fb))
	case UnknownType:
		return x.MarshalWire()
	}
	return nil, fmt.Errorf("ir: unsupported type %T", t)
}
