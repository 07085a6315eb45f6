package ir

import (
	"fmt"

	wc "github.com/reoring/wirecodec"
	"github.com/reoring/wirecodec/schema"
)

// Load decodes an IR document from d in the given mode and converts it into a
// validated model.
func Load(d wc.Decoder, mode wc.DecodeMode) (*schema.Model, error) {
	var c Conjure
	if err := wc.Decode(d, mode, &c); err != nil {
		return nil, err
	}
	return c.Model()
}

// Model converts the document into a schema model. Definitions or types of an
// unknown kind are reported here rather than at decode time.
func (c *Conjure) Model() (*schema.Model, error) {
	defs := make([]schema.Definition, 0, len(c.Types))
	for i, t := range c.Types {
		def, err := convertDefinition(t)
		if err != nil {
			return nil, fmt.Errorf("ir: types[%d]: %w", i, err)
		}
		defs = append(defs, def)
	}
	return schema.NewModel(defs...)
}

func docs(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func convertDefinition(t TypeDefinition) (schema.Definition, error) {
	switch x := t.(type) {
	case *ObjectDefinition:
		r := &schema.RecordType{Name: x.TypeName.Name, Docs: docs(x.Docs)}
		for _, f := range x.Fields {
			ft, err := convertType(f.Type)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", r.Name, f.FieldName, err)
			}
			r.Fields = append(r.Fields, schema.FieldDefinition{Name: f.FieldName, Type: ft, Docs: docs(f.Docs)})
		}
		return r, nil
	case *UnionDefinition:
		u := &schema.UnionType{Name: x.TypeName.Name, Docs: docs(x.Docs)}
		for _, f := range x.Union {
			ft, err := convertType(f.Type)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", u.Name, f.FieldName, err)
			}
			u.Variants = append(u.Variants, schema.VariantDefinition{Name: f.FieldName, Type: ft, Docs: docs(f.Docs)})
		}
		return u, nil
	case *EnumDefinition:
		e := &schema.EnumType{Name: x.TypeName.Name, Docs: docs(x.Docs)}
		for _, v := range x.Values {
			e.Values = append(e.Values, v.Value)
		}
		return e, nil
	case *AliasDefinition:
		at, err := convertType(x.Alias)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", x.TypeName.Name, err)
		}
		return &schema.AliasType{Name: x.TypeName.Name, Alias: at, Docs: docs(x.Docs)}, nil
	case UnknownTypeDefinition:
		return nil, fmt.Errorf("unsupported definition kind %q", x.Type)
	}
	return nil, fmt.Errorf("unsupported definition %T", t)
}

func convertType(t Type) (schema.TypeRef, error) {
	switch x := t.(type) {
	case PrimitiveType:
		k, err := schema.ParsePrimitiveKind(string(x))
		if err != nil {
			return nil, err
		}
		return &schema.Primitive{Of: k}, nil
	case *OptionalType:
		item, err := convertType(x.ItemType)
		return &schema.Optional{Item: item}, err
	case *ListType:
		item, err := convertType(x.ItemType)
		return &schema.List{Item: item}, err
	case *SetType:
		item, err := convertType(x.ItemType)
		return &schema.Set{Item: item}, err
	case *MapType:
		k, err := convertType(x.KeyType)
		if err != nil {
			return nil, err
		}
		v, err := convertType(x.ValueType)
		return &schema.MapOf{Key: k, Value: v}, err
	case *ReferenceType:
		return &schema.Reference{Name: x.Name}, nil
	case *ExternalType:
		return convertType(x.Fallback)
	case UnknownType:
		return nil, fmt.Errorf("unsupported type kind %q", x.Type)
	case nil:
		return nil, fmt.Errorf("missing type")
	}
	return nil, fmt.Errorf("unsupported type %T", t)
}
