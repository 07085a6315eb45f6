package ir_test

import (
	"errors"
	"strings"
	"testing"

	wc "github.com/reoring/wirecodec"
	"github.com/reoring/wirecodec/schema"
	"github.com/reoring/wirecodec/schema/ir"
	"github.com/reoring/wirecodec/source/json"
)

const document = `{
  "version": 1,
  "types": [
    {"object": {
       "typeName": {"name": "Circle", "package": "com.example"},
       "fields": [
         {"fieldName": "radius", "type": {"type": "primitive", "primitive": "DOUBLE"}},
         {"fieldName": "label", "type": {"optional": {"itemType": {"type": "primitive", "primitive": "STRING"}}, "type": "optional"}, "docs": "display name"}
       ]}, "type": "object"},
    {"type": "union", "union": {
       "typeName": {"name": "Shape", "package": "com.example"},
       "union": [
         {"fieldName": "circle", "type": {"type": "reference", "reference": {"name": "Circle", "package": "com.example"}}},
         {"fieldName": "tags", "type": {"type": "set", "set": {"itemType": {"type": "external", "external": {
            "externalReference": {"name": "Tag", "package": "org.other"},
            "fallback": {"type": "primitive", "primitive": "STRING"}}}}}}
       ]}},
    {"type": "enum", "enum": {
       "typeName": {"name": "Color", "package": "com.example"},
       "values": [{"value": "RED"}, {"value": "GREEN", "docs": "go"}]}},
    {"type": "alias", "alias": {
       "typeName": {"name": "Scores", "package": "com.example"},
       "alias": {"type": "map", "map": {"keyType": {"type": "primitive", "primitive": "STRING"},
                                        "valueType": {"type": "primitive", "primitive": "SAFELONG"}}}}}
  ],
  "errors": [],
  "services": []
}`

func load(t *testing.T, doc string, mode wc.DecodeMode) (*schema.Model, error) {
	t.Helper()
	return ir.Load(json.NewDecoder(strings.NewReader(doc), wc.DecodeOpt{}), mode)
}

func TestLoad(t *testing.T) {
	for _, mode := range []wc.DecodeMode{wc.Lenient, wc.Strict} {
		m, err := load(t, document, mode)
		if err != nil {
			t.Fatalf("%v: %v", mode, err)
		}
		d, _ := m.Lookup("Circle")
		rec := d.(*schema.RecordType)
		if len(rec.Fields) != 2 || !rec.Fields[1].Optional() || rec.Fields[1].Docs != "display name" {
			t.Fatalf("circle: %+v", rec)
		}
		d, _ = m.Lookup("Shape")
		u := d.(*schema.UnionType)
		if got := schema.Describe(u.Variants[1].Type); got != "set<STRING>" {
			t.Fatalf("external fallback: %s", got)
		}
		if m.Orderable(u) {
			t.Fatal("Shape reaches a DOUBLE through Circle")
		}
		d, _ = m.Lookup("Color")
		if e := d.(*schema.EnumType); !e.Has("GREEN") || e.Has("BLUE") {
			t.Fatalf("enum: %+v", e)
		}
		d, _ = m.Lookup("Scores")
		if got := schema.Describe(d.(*schema.AliasType).Alias); got != "map<STRING, SAFELONG>" {
			t.Fatalf("alias: %s", got)
		}
	}
}

func TestLoad_StrictRejectsUnknownFields(t *testing.T) {
	doc := `{"version": 1, "types": [{"type": "enum", "enum": {
	  "typeName": {"name": "E", "package": "p"}, "values": [], "since": "1.0"}}]}`
	if _, err := load(t, doc, wc.Lenient); err != nil {
		t.Fatalf("lenient: %v", err)
	}
	_, err := load(t, doc, wc.Strict)
	var uf *wc.UnknownFieldError
	if !errors.As(err, &uf) || uf.Field != "since" {
		t.Fatalf("strict: %v", err)
	}
	if iss := wc.ToIssues(err); iss[0].Path != "/types/0/enum/since" {
		t.Fatalf("path: %v", iss)
	}
}

func TestLoad_UnknownDefinitionKind(t *testing.T) {
	doc := `{"version": 1, "types": [{"type": "service", "service": {"name": "S"}}]}`
	var c ir.Conjure
	if err := wc.Unmarshal(json.Format, []byte(doc), wc.DecodeOpt{Mode: wc.Strict}, &c); err != nil {
		t.Fatalf("open union should accept unknown kinds: %v", err)
	}
	u, ok := c.Types[0].(ir.UnknownTypeDefinition)
	if !ok || u.Type != "service" {
		t.Fatalf("got %#v", c.Types[0])
	}
	if _, err := c.Model(); err == nil || !strings.Contains(err.Error(), `"service"`) {
		t.Fatalf("model: %v", err)
	}
}

func TestLoad_InvalidModel(t *testing.T) {
	doc := `{"version": 1, "types": [{"type": "alias", "alias": {
	  "typeName": {"name": "A", "package": "p"}, "alias": {"type": "reference", "reference": {"name": "Nope", "package": "p"}}}}]}`
	_, err := load(t, doc, wc.Strict)
	if !errors.Is(err, schema.ErrInvalidModel) {
		t.Fatalf("got %v", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	var c ir.Conjure
	if err := wc.Unmarshal(json.Format, []byte(document), wc.DecodeOpt{}, &c); err != nil {
		t.Fatal(err)
	}
	out, err := wc.Marshal(json.Format, c)
	if err != nil {
		t.Fatal(err)
	}
	var again ir.Conjure
	if err := wc.Unmarshal(json.Format, out, wc.DecodeOpt{Mode: wc.Strict}, &again); err != nil {
		t.Fatalf("%v\n%s", err, out)
	}
	out2, err := wc.Marshal(json.Format, again)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != string(out2) {
		t.Fatalf("not stable:\n%s\n%s", out, out2)
	}
	if !strings.HasPrefix(string(out), `{"version":1,"types":[{"type":"object","object":{"typeName":`) {
		t.Fatalf("order: %s", out)
	}
}
