package wirecodec_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	wc "github.com/reoring/wirecodec"
	"github.com/reoring/wirecodec/source/json"
)

func TestRecord_StrictLenientDivergence(t *testing.T) {
	in := m("a", 1, "b", 2, "c", 3)

	var lenient pair
	if err := wc.Decode(wc.NewValueDecoder(in), wc.Lenient, &lenient); err != nil {
		t.Fatalf("lenient: unexpected error: %v", err)
	}
	if lenient != (pair{A: 1, B: 2}) {
		t.Fatalf("lenient: got %+v", lenient)
	}

	var strict pair
	err := wc.Decode(wc.NewValueDecoder(in), wc.Strict, &strict)
	var uf *wc.UnknownFieldError
	if !errors.As(err, &uf) {
		t.Fatalf("strict: expected UnknownFieldError, got %v", err)
	}
	if uf.Field != "c" || !reflect.DeepEqual(uf.Allowed, []string{"a", "b"}) {
		t.Fatalf("strict: got field=%q allowed=%v", uf.Field, uf.Allowed)
	}
	if !errors.Is(err, wc.ErrUnknownField) {
		t.Fatalf("strict: expected errors.Is ErrUnknownField")
	}
}

func TestRecord_StrictLenientDivergence_JSON(t *testing.T) {
	data := []byte(`{"a":1,"c":{"deep":[1,2,{"x":null}]},"b":2}`)

	var p pair
	if err := wc.Unmarshal(json.Format, data, wc.DecodeOpt{Mode: wc.Lenient}, &p); err != nil {
		t.Fatalf("lenient: unexpected error: %v", err)
	}
	if p != (pair{A: 1, B: 2}) {
		t.Fatalf("lenient: got %+v", p)
	}

	err := wc.Unmarshal(json.Format, data, wc.DecodeOpt{Mode: wc.Strict}, &p)
	if !errors.Is(err, wc.ErrUnknownField) {
		t.Fatalf("strict: expected unknown field, got %v", err)
	}
	if !strings.Contains(err.Error(), `unknown field "c", expected one of ["a", "b"]`) {
		t.Fatalf("strict: unexpected message %q", err.Error())
	}
}

func TestStrict_NestedRecordNamesInnerField(t *testing.T) {
	data := []byte(`{"name":"d","shapes":[` +
		`{"type":"circle","circle":{"radius":1}},` +
		`{"pair":{"a":1,"b":2,"zz":3},"type":"pair"}]}`)

	var lenient drawing
	if err := wc.Unmarshal(json.Format, data, wc.DecodeOpt{}, &lenient); err != nil {
		t.Fatalf("lenient: unexpected error: %v", err)
	}
	if len(lenient.Shapes) != 2 {
		t.Fatalf("lenient: expected 2 shapes, got %d", len(lenient.Shapes))
	}

	var strict drawing
	err := wc.Unmarshal(json.Format, data, wc.DecodeOpt{Mode: wc.Strict}, &strict)
	var uf *wc.UnknownFieldError
	if !errors.As(err, &uf) {
		t.Fatalf("strict: expected UnknownFieldError, got %v", err)
	}
	if uf.Field != "zz" || !reflect.DeepEqual(uf.Allowed, []string{"a", "b"}) {
		t.Fatalf("strict: expected inner field zz of Pair, got %q %v", uf.Field, uf.Allowed)
	}
	var pe *wc.PathError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PathError, got %T", err)
	}
	if got := strings.Join(pe.Path, "/"); got != "shapes/1/pair/zz" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestStrict_OptionalAndMapValuesStayStrict(t *testing.T) {
	// optional<Pair> and map<string, Pair> both re-wrap their inner decoder.
	type holder struct {
		Opt  *pair
		ByID map[string]pair
	}
	rec := wc.Record{Name: "Holder", Fields: []wc.Field{{Name: "opt", Optional: true}, {Name: "byId", Optional: true}}}
	decode := func(d wc.Decoder) (holder, error) {
		var h holder
		err := rec.Decode(d, func(field string, v wc.Decoder) error {
			switch field {
			case "opt":
				od, ok, err := v.DecodeOptional()
				if err != nil || !ok {
					return err
				}
				h.Opt = &pair{}
				return h.Opt.UnmarshalWire(od)
			case "byId":
				h.ByID = map[string]pair{}
				return wc.EachEntry(v, func(k wc.Decoder, value func() (wc.Decoder, error)) error {
					key, err := k.DecodeString()
					if err != nil {
						return err
					}
					ev, err := value()
					if err != nil {
						return err
					}
					var p pair
					if err := p.UnmarshalWire(ev); err != nil {
						return wc.AtPath(err, key)
					}
					h.ByID[key] = p
					return nil
				})
			}
			return nil
		})
		return h, err
	}

	cases := []struct {
		name  string
		in    any
		field string
	}{
		{"optional", m("opt", m("a", 1, "b", 2, "x", 0)), "x"},
		{"map value", m("byId", m("k1", m("a", 1, "b", 2), "k2", m("a", 1, "b", 2, "y", 0))), "y"},
		// untyped map keys themselves are not restricted
		{"map keys unrestricted", m("byId", m("anything", m("a", 1, "b", 2))), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := decode(wc.NewValueDecoder(tc.in)); err != nil {
				t.Fatalf("lenient: unexpected error: %v", err)
			}
			_, err := decode(wc.NewStrictDecoder(wc.NewValueDecoder(tc.in)))
			if tc.field == "" {
				if err != nil {
					t.Fatalf("strict: unexpected error: %v", err)
				}
				return
			}
			var uf *wc.UnknownFieldError
			if !errors.As(err, &uf) || uf.Field != tc.field {
				t.Fatalf("strict: expected unknown field %q, got %v", tc.field, err)
			}
		})
	}
}

func TestStrict_NonStringKeyUsesPlaceholder(t *testing.T) {
	in := map[any]any{"a": 1, "b": 2, 7: "seven"}

	var p pair
	if err := wc.Decode(wc.NewValueDecoder(in), wc.Lenient, &p); err != nil {
		t.Fatalf("lenient: unexpected error: %v", err)
	}
	err := wc.Decode(wc.NewValueDecoder(in), wc.Strict, &p)
	var uf *wc.UnknownFieldError
	if !errors.As(err, &uf) {
		t.Fatalf("expected UnknownFieldError, got %v", err)
	}
	if uf.Field != wc.UnknownKeyLabel {
		t.Fatalf("expected placeholder label, got %q", uf.Field)
	}
}

func TestStrict_ScalarsForwarded(t *testing.T) {
	d := wc.NewStrictDecoder(wc.NewValueDecoder(int64(5)))
	if _, err := d.DecodeString(); !errors.Is(err, wc.ErrTypeMismatch) {
		t.Fatalf("expected type mismatch from the wrapped decoder, got %v", err)
	}
	i, err := d.DecodeInt()
	if err != nil || i != 5 {
		t.Fatalf("got %d, %v", i, err)
	}
	if wc.NewStrictDecoder(d) != d {
		t.Fatalf("wrapping a strict decoder twice should be a no-op")
	}
	if wc.WithMode(d, wc.Lenient) != d {
		t.Fatalf("lenient mode must return the decoder unchanged")
	}
}

func TestRecord_MissingRequiredFieldBothModes(t *testing.T) {
	for _, mode := range []wc.DecodeMode{wc.Lenient, wc.Strict} {
		t.Run(mode.String(), func(t *testing.T) {
			var p pair
			err := wc.Decode(wc.NewValueDecoder(m("a", 1)), mode, &p)
			var mf *wc.MissingFieldError
			if !errors.As(err, &mf) || mf.Field != "b" {
				t.Fatalf("expected missing field b, got %v", err)
			}
			if !errors.Is(err, wc.ErrMissingField) {
				t.Fatalf("expected errors.Is ErrMissingField")
			}
		})
	}
}

func TestRecord_OptionalFieldDefaultsToEmpty(t *testing.T) {
	var c circle
	c.Label = strPtr("stale")
	if err := wc.Decode(wc.NewValueDecoder(m("radius", 2.5, "label", nil)), wc.Strict, &c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Radius != 2.5 || c.Label != nil {
		t.Fatalf("got %+v", c)
	}
}

func TestRecord_FieldOrderIrrelevant(t *testing.T) {
	var p1, p2 pair
	if err := wc.Decode(wc.NewValueDecoder(m("a", 1, "b", 2)), wc.Strict, &p1); err != nil {
		t.Fatal(err)
	}
	if err := wc.Decode(wc.NewValueDecoder(m("b", 2, "a", 1)), wc.Strict, &p2); err != nil {
		t.Fatal(err)
	}
	if p1 != p2 {
		t.Fatalf("%+v != %+v", p1, p2)
	}
}
