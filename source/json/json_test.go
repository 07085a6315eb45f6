package json_test

import (
	"math"
	"reflect"
	"strings"
	"testing"

	wc "github.com/reoring/wirecodec"
	"github.com/reoring/wirecodec/source/json"
)

func decodeAny(t *testing.T, data string, opt wc.DecodeOpt) (any, error) {
	t.Helper()
	var v wc.AnyValue
	err := wc.Unmarshal(json.Format, []byte(data), opt, &v)
	return v.Value, err
}

func TestDuplicateKey_Error(t *testing.T) {
	cases := []struct {
		data string
		path string
	}{
		{`{"a":1,"a":2}`, "/a"},
		{`[{"a":1,"a":2}]`, "/0/a"},
		{`{"x":{"y":[0,{"k":1,"k":1}]}}`, "/x/y/1/k"},
	}
	opt := wc.DecodeOpt{OnDuplicateKey: wc.Error}
	for _, tc := range cases {
		_, err := decodeAny(t, tc.data, opt)
		if err == nil {
			t.Fatalf("%s: expected error for duplicate key", tc.data)
		}
		iss := wc.ToIssues(err)
		if len(iss) == 0 || iss[0].Code != wc.CodeDuplicateKey {
			t.Fatalf("%s: expected duplicate_key issue, got: %v", tc.data, iss)
		}
		if iss[0].Path != tc.path {
			t.Fatalf("%s: expected path=%s, got: %s", tc.data, tc.path, iss[0].Path)
		}
	}
}

func TestDuplicateKey_WarnAndIgnore(t *testing.T) {
	var warnings []wc.Issue
	opt := wc.DecodeOpt{OnDuplicateKey: wc.Warn, OnWarning: func(is wc.Issue) { warnings = append(warnings, is) }}
	v, err := decodeAny(t, `{"a":1,"a":2}`, opt)
	if err != nil {
		t.Fatalf("warn mode must not fail: %v", err)
	}
	if len(warnings) != 1 || warnings[0].Path != "/a" {
		t.Fatalf("expected one warning at /a, got %v", warnings)
	}
	if got := v.(*wc.Map).Len(); got != 2 {
		t.Fatalf("expected both entries kept, got %d", got)
	}

	if _, err := decodeAny(t, `{"a":1,"a":2}`, wc.DecodeOpt{}); err != nil {
		t.Fatalf("ignore mode must not fail: %v", err)
	}
}

func TestMaxDepth_Exceeded(t *testing.T) {
	// depth = 3 for { a: { b: { c: 1 } } }
	data := `{"a":{"b":{"c":1}}}`
	if _, err := decodeAny(t, data, wc.DecodeOpt{MaxDepth: 3}); err != nil {
		t.Fatalf("depth 3 should pass: %v", err)
	}
	_, err := decodeAny(t, data, wc.DecodeOpt{MaxDepth: 2})
	iss := wc.ToIssues(err)
	if len(iss) == 0 || iss[0].Code != wc.CodeParseError || iss[0].Path != "/a/b" {
		t.Fatalf("expected parse_error at /a/b, got %v", iss)
	}
}

func TestMaxBytes_Exceeded(t *testing.T) {
	data := `{"a":"` + strings.Repeat("x", 256) + `"}`
	_, err := decodeAny(t, data, wc.DecodeOpt{MaxBytes: 16})
	iss := wc.ToIssues(err)
	if len(iss) == 0 || iss[0].Code != wc.CodeTruncated {
		t.Fatalf("expected truncated issue, got %v", err)
	}
}

func TestDecodeAny_PreservesOrderAndNumbers(t *testing.T) {
	v, err := decodeAny(t, `{"z":1,"a":-2.5e3,"s":"t","n":null,"l":[true]}`, wc.DecodeOpt{})
	if err != nil {
		t.Fatal(err)
	}
	want := &wc.Map{Entries: []wc.Entry{
		{Key: "z", Value: int64(1)},
		{Key: "a", Value: float64(-2500)},
		{Key: "s", Value: "t"},
		{Key: "n", Value: nil},
		{Key: "l", Value: []any{true}},
	}}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("got %#v", v)
	}
}

func TestSpecialFloatsAndBytes(t *testing.T) {
	data, err := json.Marshal([]any{math.Inf(-1), 0.25, []byte("hi"), wc.NewMap(0)})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["-Infinity",0.25,"aGk=",{}]` {
		t.Fatalf("got %s", data)
	}

	d := json.NewDecoder(strings.NewReader(`["NaN","aGk="]`), wc.DecodeOpt{})
	c, err := d.DecodeSeq()
	if err != nil {
		t.Fatal(err)
	}
	e, _, _ := c.Next()
	f, err := e.DecodeFloat()
	if err != nil || !math.IsNaN(f) {
		t.Fatalf("got %v, %v", f, err)
	}
	e, _, _ = c.Next()
	b, err := e.DecodeBytes()
	if err != nil || string(b) != "hi" {
		t.Fatalf("got %q, %v", b, err)
	}
	if _, ok, err := c.Next(); ok || err != nil {
		t.Fatalf("expected end of sequence, got %v %v", ok, err)
	}
	if err := d.End(); err != nil {
		t.Fatalf("unexpected trailing data: %v", err)
	}
}

func TestStream_SkipsUnrequestedValues(t *testing.T) {
	d := json.NewDecoder(strings.NewReader(`{"a":{"deep":[1,[2]]},"b":[{"x":1}],"c":3}`), wc.DecodeOpt{})
	c, err := d.DecodeMap()
	if err != nil {
		t.Fatal(err)
	}
	var last int64
	for {
		k, ok, err := c.NextKey()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		key, _ := k.DecodeString()
		if key == "c" {
			v, _ := c.NextValue()
			if last, err = v.DecodeInt(); err != nil {
				t.Fatal(err)
			}
		}
	}
	if last != 3 {
		t.Fatalf("got %d", last)
	}
}
