// Package schema describes the types a wire value can be decoded against:
// records, tagged unions, enums and aliases over a fixed set of primitives.
// It has no dependency on any wire format.
package schema

import "fmt"

// PrimitiveKind identifies a primitive type.
type PrimitiveKind int

const (
	String PrimitiveKind = iota
	DateTime
	Integer
	Double
	SafeLong
	Binary
	Any
	Boolean
	UUID
	RID
	BearerToken
)

var primitiveNames = [...]string{
	String:      "STRING",
	DateTime:    "DATETIME",
	Integer:     "INTEGER",
	Double:      "DOUBLE",
	SafeLong:    "SAFELONG",
	Binary:      "BINARY",
	Any:         "ANY",
	Boolean:     "BOOLEAN",
	UUID:        "UUID",
	RID:         "RID",
	BearerToken: "BEARERTOKEN",
}

func (k PrimitiveKind) String() string {
	if k >= 0 && int(k) < len(primitiveNames) {
		return primitiveNames[k]
	}
	return fmt.Sprintf("PrimitiveKind(%d)", int(k))
}

// ParsePrimitiveKind maps a primitive name such as "SAFELONG" to its kind.
func ParsePrimitiveKind(s string) (PrimitiveKind, error) {
	for k, name := range primitiveNames {
		if name == s {
			return PrimitiveKind(k), nil
		}
	}
	return 0, fmt.Errorf("schema: unknown primitive %q", s)
}

// RefKind identifies a TypeRef node.
type RefKind int

const (
	RefPrimitive RefKind = iota
	RefOptional
	RefList
	RefSet
	RefMap
	RefReference
)

// TypeRef is a use of a type: a primitive, a container or a named reference.
type TypeRef interface {
	Kind() RefKind
}

// Primitive refers to a primitive type.
type Primitive struct {
	Of PrimitiveKind
}

func (*Primitive) Kind() RefKind { return RefPrimitive }

// Optional is a value that may be absent.
type Optional struct {
	Item TypeRef
}

func (*Optional) Kind() RefKind { return RefOptional }

// List is an ordered sequence.
type List struct {
	Item TypeRef
}

func (*List) Kind() RefKind { return RefList }

// Set is a sequence whose elements are unique.
type Set struct {
	Item TypeRef
}

func (*Set) Kind() RefKind { return RefSet }

// MapOf maps keys to values.
type MapOf struct {
	Key   TypeRef
	Value TypeRef
}

func (*MapOf) Kind() RefKind { return RefMap }

// Reference names a type defined in the model.
type Reference struct {
	Name string
}

func (*Reference) Kind() RefKind { return RefReference }

// Describe renders t in the notation used by error messages, e.g. "list<STRING>".
func Describe(t TypeRef) string {
	switch x := t.(type) {
	case *Primitive:
		return x.Of.String()
	case *Optional:
		return "optional<" + Describe(x.Item) + ">"
	case *List:
		return "list<" + Describe(x.Item) + ">"
	case *Set:
		return "set<" + Describe(x.Item) + ">"
	case *MapOf:
		return "map<" + Describe(x.Key) + ", " + Describe(x.Value) + ">"
	case *Reference:
		return x.Name
	case nil:
		return "<nil>"
	}
	return fmt.Sprintf("%T", t)
}

// FieldDefinition is one field of a record.
type FieldDefinition struct {
	Name string
	Type TypeRef
	Docs string
}

// Optional reports whether the field may be absent from the input. Optional,
// list, set and map fields default to empty.
func (f FieldDefinition) Optional() bool {
	switch f.Type.(type) {
	case *Optional, *List, *Set, *MapOf:
		return true
	}
	return false
}

// Definition is a named type of a model.
type Definition interface {
	TypeName() string
}

// RecordType is a record with a fixed, ordered field list.
type RecordType struct {
	Name   string
	Fields []FieldDefinition
	Docs   string
}

func (r *RecordType) TypeName() string { return r.Name }

// Field returns the field called name.
func (r *RecordType) Field(name string) (FieldDefinition, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// VariantDefinition is one alternative of a union.
type VariantDefinition struct {
	Name string
	Type TypeRef
	Docs string
}

// UnionType is a tagged union. Its discriminators are the variant names.
type UnionType struct {
	Name     string
	Variants []VariantDefinition
	Docs     string
}

func (u *UnionType) TypeName() string { return u.Name }

// CatchAllName returns the name under which an open union holds unrecognized
// variants: "Unknown", with underscores appended while that collides with a
// declared variant.
func (u *UnionType) CatchAllName() string {
	name := "Unknown"
	for u.hasVariant(name) {
		name += "_"
	}
	return name
}

func (u *UnionType) hasVariant(name string) bool {
	for _, v := range u.Variants {
		if v.Name == name {
			return true
		}
	}
	return false
}

// EnumType is a closed set of string values.
type EnumType struct {
	Name   string
	Values []string
	Docs   string
}

func (e *EnumType) TypeName() string { return e.Name }

// Has reports whether v is one of the enum's values.
func (e *EnumType) Has(v string) bool {
	for _, x := range e.Values {
		if x == v {
			return true
		}
	}
	return false
}

// AliasType gives a name to another type.
type AliasType struct {
	Name  string
	Alias TypeRef
	Docs  string
}

func (a *AliasType) TypeName() string { return a.Name }
