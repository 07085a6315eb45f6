package wirecodec_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	wc "github.com/reoring/wirecodec"
	"github.com/reoring/wirecodec/source/json"
)

func sampleDrawings() []drawing {
	return []drawing{
		{Name: "empty"},
		{Name: "all", Shapes: []shape{
			circleShape{circle{Radius: 1.5, Label: strPtr("c")}},
			circleShape{circle{Radius: 0}},
			pairShape{pair{A: -1, B: math.MaxInt64}},
			tagsShape{"x", "y"},
			unknownShape{wc.UnknownVariant{Type: "later", Value: m("k", "v")}},
		}},
	}
}

func TestRoundTrip_ValueDecoder(t *testing.T) {
	for _, in := range sampleDrawings() {
		w, err := wc.Encode(in)
		if err != nil {
			t.Fatalf("encode %s: %v", in.Name, err)
		}
		for _, mode := range []wc.DecodeMode{wc.Lenient, wc.Strict} {
			var out drawing
			if err := wc.Decode(wc.NewValueDecoder(w), mode, &out); err != nil {
				t.Fatalf("decode %s (%v): %v", in.Name, mode, err)
			}
			if !reflect.DeepEqual(normalize(in), normalize(out)) {
				t.Fatalf("round trip %s (%v):\n got %#v\nwant %#v", in.Name, mode, out, in)
			}
		}
	}
}

func TestRoundTrip_JSON(t *testing.T) {
	for _, in := range sampleDrawings() {
		data, err := wc.Marshal(json.Format, in)
		if err != nil {
			t.Fatalf("marshal %s: %v", in.Name, err)
		}
		for _, mode := range []wc.DecodeMode{wc.Lenient, wc.Strict} {
			var out drawing
			if err := wc.Unmarshal(json.Format, data, wc.DecodeOpt{Mode: mode}, &out); err != nil {
				t.Fatalf("unmarshal %s (%v): %v\n%s", in.Name, mode, err, data)
			}
			if !reflect.DeepEqual(normalize(in), normalize(out)) {
				t.Fatalf("round trip %s (%v):\n got %#v\nwant %#v", in.Name, mode, out, in)
			}
		}
	}
}

// normalize maps an absent shape list to an empty one; the wire form does not
// distinguish them.
func normalize(d drawing) drawing {
	if d.Shapes == nil {
		d.Shapes = []shape{}
	}
	return d
}

func TestUnmarshal_TrailingData(t *testing.T) {
	var p pair
	err := wc.Unmarshal(json.Format, []byte(`{"a":1,"b":2} {}`), wc.DecodeOpt{}, &p)
	if err == nil {
		t.Fatalf("expected error for trailing data")
	}
}

func TestUnmarshal_TypeMismatchPath(t *testing.T) {
	var p pair
	err := wc.Unmarshal(json.Format, []byte(`{"a":"one","b":2}`), wc.DecodeOpt{Mode: wc.Strict}, &p)
	if !errors.Is(err, wc.ErrTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	iss := wc.ToIssues(err)
	if len(iss) != 1 || iss[0].Code != wc.CodeInvalidType || iss[0].Path != "/a" {
		t.Fatalf("unexpected issues %+v", iss)
	}
}

func TestTranscode_PreservesOrder(t *testing.T) {
	out, err := wc.Transcode(json.Format, json.Format, []byte(`{"z":1,"a":[1.5,"s",null],"m":{"y":true,"b":false}}`), wc.DecodeOpt{})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"z":1,"a":[1.5,"s",null],"m":{"y":true,"b":false}}` {
		t.Fatalf("got %s", out)
	}
}

func TestEncode_GoValues(t *testing.T) {
	w, err := wc.Encode(map[string]any{"b": []int{1, 2}, "a": uint8(3), "c": float32(0.5)})
	if err != nil {
		t.Fatal(err)
	}
	want := m("a", int64(3), "b", []any{int64(1), int64(2)}, "c", float64(0.5))
	if !reflect.DeepEqual(w, want) {
		t.Fatalf("got %#v", w)
	}
	if _, err := wc.Encode(uint64(math.MaxUint64)); err == nil {
		t.Fatalf("expected overflow error")
	}
}

func TestValueDecoder_Scalars(t *testing.T) {
	d := wc.NewValueDecoder("Infinity")
	f, err := d.DecodeFloat()
	if err != nil || !math.IsInf(f, 1) {
		t.Fatalf("got %v, %v", f, err)
	}
	b, err := wc.NewValueDecoder("aGk=").DecodeBytes()
	if err != nil || string(b) != "hi" {
		t.Fatalf("got %q, %v", b, err)
	}
	if err := wc.NewValueDecoder(nil).DecodeUnit(); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := wc.NewValueDecoder(nil).DecodeOptional(); ok || err != nil {
		t.Fatalf("nil should be absent")
	}
	i, err := wc.NewKeyDecoder("42").DecodeInt()
	if err != nil || i != 42 {
		t.Fatalf("key int: %d, %v", i, err)
	}
	if _, err := wc.NewKeyDecoder("x").DecodeSeq(); !errors.Is(err, wc.ErrTypeMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
}

func TestParseDecodeMode(t *testing.T) {
	cases := map[string]wc.DecodeMode{"strict": wc.Strict, "lenient": wc.Lenient}
	for in, want := range cases {
		got, err := wc.ParseDecodeMode(in)
		if err != nil || got != want {
			t.Fatalf("%s: got %v, %v", in, got, err)
		}
	}
	for _, in := range []string{"loose", "server", "client", "Strict"} {
		if _, err := wc.ParseDecodeMode(in); err == nil {
			t.Fatalf("%s: expected error", in)
		}
	}
}
