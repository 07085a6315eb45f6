package wirecodec

// Field describes one record field.
type Field struct {
	Name     string
	Optional bool
}

// Record is the decoding shape of a record binding: its name and its static
// field list. The field names double as the strict-mode allowlist.
type Record struct {
	Name   string
	Fields []Field
}

// FieldNames returns the declared field names in order.
func (r Record) FieldNames() []string {
	out := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		out[i] = f.Name
	}
	return out
}

// Decode walks a record value, calling fn for every known field. Unknown
// fields are skipped, which a strict decoder turns into an error. A field that
// appears twice is handed to fn twice. Required fields that never appeared
// yield a MissingFieldError after the walk.
func (r Record) Decode(d Decoder, fn func(field string, v Decoder) error) error {
	names := r.FieldNames()
	c, err := d.DecodeRecord(names)
	if err != nil {
		return err
	}
	seen := make([]bool, len(r.Fields))
	for {
		kd, ok, err := c.NextKey()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		key, err := kd.DecodeAny()
		if err != nil {
			return err
		}
		idx := -1
		if s, isString := key.(string); isString {
			idx = r.index(s)
		}
		vd, err := c.NextValue()
		if err != nil {
			return err
		}
		if idx < 0 {
			if err := vd.Skip(); err != nil {
				if s, isString := key.(string); isString {
					return AtPath(err, s)
				}
				return err
			}
			continue
		}
		seen[idx] = true
		if err := fn(r.Fields[idx].Name, vd); err != nil {
			return AtPath(err, r.Fields[idx].Name)
		}
	}
	for i, f := range r.Fields {
		if !seen[i] && !f.Optional {
			return &MissingFieldError{Field: f.Name}
		}
	}
	return nil
}

func (r Record) index(name string) int {
	for i, f := range r.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}
