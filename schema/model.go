package schema

import (
	"errors"
	"fmt"
)

// ErrInvalidModel is wrapped by every error NewModel returns.
var ErrInvalidModel = errors.New("schema: invalid model")

// Model is a validated set of definitions. It is immutable once built.
type Model struct {
	defs   []Definition
	byName map[string]Definition
}

// NewModel validates defs and indexes them by name. Type names, field names,
// union discriminators and enum values must be unique within their scope, and
// every reference must resolve. All problems found are joined into one error.
func NewModel(defs ...Definition) (*Model, error) {
	m := &Model{defs: defs, byName: make(map[string]Definition, len(defs))}
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidModel}, args...)...))
	}
	for _, d := range defs {
		if d == nil {
			fail("nil definition")
			continue
		}
		name := d.TypeName()
		if name == "" {
			fail("definition %T has no name", d)
			continue
		}
		if _, dup := m.byName[name]; dup {
			fail("type %q defined twice", name)
			continue
		}
		m.byName[name] = d
	}
	for _, d := range defs {
		switch x := d.(type) {
		case *RecordType:
			seen := map[string]bool{}
			for _, f := range x.Fields {
				if f.Name == "" {
					fail("%s: field with empty name", x.Name)
				} else if seen[f.Name] {
					fail("%s: field %q defined twice", x.Name, f.Name)
				}
				seen[f.Name] = true
				if err := m.checkRef(f.Type); err != nil {
					fail("%s.%s: %v", x.Name, f.Name, err)
				}
			}
		case *UnionType:
			seen := map[string]bool{}
			for _, v := range x.Variants {
				if v.Name == "" {
					fail("%s: variant with empty name", x.Name)
				} else if seen[v.Name] {
					fail("%s: discriminator %q defined twice", x.Name, v.Name)
				}
				seen[v.Name] = true
				if err := m.checkRef(v.Type); err != nil {
					fail("%s.%s: %v", x.Name, v.Name, err)
				}
			}
		case *EnumType:
			seen := map[string]bool{}
			for _, v := range x.Values {
				if seen[v] {
					fail("%s: value %q defined twice", x.Name, v)
				}
				seen[v] = true
			}
		case *AliasType:
			if err := m.checkRef(x.Alias); err != nil {
				fail("%s: %v", x.Name, err)
			} else if m.aliasCycle(x) {
				fail("%s: alias refers to itself", x.Name)
			}
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return m, nil
}

func (m *Model) checkRef(t TypeRef) error {
	switch x := t.(type) {
	case nil:
		return errors.New("missing type")
	case *Primitive:
		if x.Of < String || x.Of > BearerToken {
			return fmt.Errorf("unknown primitive %v", x.Of)
		}
	case *Optional:
		return m.checkRef(x.Item)
	case *List:
		return m.checkRef(x.Item)
	case *Set:
		return m.checkRef(x.Item)
	case *MapOf:
		if err := m.checkRef(x.Key); err != nil {
			return err
		}
		return m.checkRef(x.Value)
	case *Reference:
		if _, ok := m.byName[x.Name]; !ok {
			return fmt.Errorf("unresolved reference %q", x.Name)
		}
	}
	return nil
}

// aliasCycle reports whether following a's alias through bare references
// leads back to an alias already visited.
func (m *Model) aliasCycle(a *AliasType) bool {
	seen := map[string]bool{a.Name: true}
	t := a.Alias
	for {
		r, ok := t.(*Reference)
		if !ok {
			return false
		}
		next, ok := m.byName[r.Name].(*AliasType)
		if !ok {
			return false
		}
		if seen[next.Name] {
			return true
		}
		seen[next.Name] = true
		t = next.Alias
	}
}

// Definitions returns the definitions in declaration order.
func (m *Model) Definitions() []Definition { return m.defs }

// Lookup returns the definition called name.
func (m *Model) Lookup(name string) (Definition, bool) {
	d, ok := m.byName[name]
	return d, ok
}

// Resolve follows aliases from t and returns the first type that is not an
// alias reference, together with the definition it names, if any.
func (m *Model) Resolve(t TypeRef) (TypeRef, Definition) {
	for {
		r, ok := t.(*Reference)
		if !ok {
			return t, nil
		}
		d := m.byName[r.Name]
		a, ok := d.(*AliasType)
		if !ok {
			return t, d
		}
		t = a.Alias
	}
}

// HasDouble reports whether a value of type t can contain a DOUBLE, looking
// through references. Doubles have no total order, so a type containing one
// cannot be ordered or hashed by value.
func (m *Model) HasDouble(t TypeRef) bool {
	return m.hasDouble(t, map[string]bool{})
}

func (m *Model) hasDouble(t TypeRef, visiting map[string]bool) bool {
	switch x := t.(type) {
	case *Primitive:
		return x.Of == Double
	case *Optional:
		return m.hasDouble(x.Item, visiting)
	case *List:
		return m.hasDouble(x.Item, visiting)
	case *Set:
		return m.hasDouble(x.Item, visiting)
	case *MapOf:
		return m.hasDouble(x.Key, visiting) || m.hasDouble(x.Value, visiting)
	case *Reference:
		if visiting[x.Name] {
			return false
		}
		visiting[x.Name] = true
		defer delete(visiting, x.Name)
		switch d := m.byName[x.Name].(type) {
		case *RecordType:
			for _, f := range d.Fields {
				if m.hasDouble(f.Type, visiting) {
					return true
				}
			}
		case *UnionType:
			for _, v := range d.Variants {
				if m.hasDouble(v.Type, visiting) {
					return true
				}
			}
		case *AliasType:
			return m.hasDouble(d.Alias, visiting)
		}
	}
	return false
}

// Orderable reports whether values of u admit a total order, which holds
// when no variant can contain a DOUBLE.
func (m *Model) Orderable(u *UnionType) bool {
	for _, v := range u.Variants {
		if m.HasDouble(v.Type) {
			return false
		}
	}
	return true
}
