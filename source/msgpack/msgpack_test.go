package msgpack_test

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	wc "github.com/reoring/wirecodec"
	"github.com/reoring/wirecodec/dynamic"
	"github.com/reoring/wirecodec/schema"
	"github.com/reoring/wirecodec/source/msgpack"
)

type pair struct{ A, B int64 }

var pairRecord = wc.Record{Name: "Pair", Fields: []wc.Field{{Name: "a"}, {Name: "b"}}}

func (p *pair) UnmarshalWire(d wc.Decoder) error {
	return pairRecord.Decode(d, func(field string, v wc.Decoder) (err error) {
		switch field {
		case "a":
			p.A, err = v.DecodeInt()
		case "b":
			p.B, err = v.DecodeInt()
		}
		return err
	})
}

func TestRoundTrip_DecodeAny(t *testing.T) {
	in := wc.NewMap(4).
		Set("z", int64(-300)).
		Set("a", []any{1.25, "s", []byte{1, 2}, nil, true}).
		Set("m", wc.NewMap(1).Set("k", int64(1<<40)))
	in.Entries = append(in.Entries, wc.Entry{Key: int64(9), Value: "nine"})

	data, err := msgpack.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var v wc.AnyValue
	if err := wc.Unmarshal(msgpack.Format, data, wc.DecodeOpt{}, &v); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(v.Value, in) {
		t.Fatalf("got %#v", v.Value)
	}
}

func TestRecord_StrictAndSkipping(t *testing.T) {
	in := wc.NewMap(3).
		Set("a", int64(1)).
		Set("extra", wc.NewMap(1).Set("deep", []any{int64(1), []any{"x"}})).
		Set("b", int64(2))
	data, err := msgpack.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}

	var p pair
	if err := wc.Unmarshal(msgpack.Format, data, wc.DecodeOpt{}, &p); err != nil {
		t.Fatalf("lenient: %v", err)
	}
	if p != (pair{A: 1, B: 2}) {
		t.Fatalf("got %+v", p)
	}
	err = wc.Unmarshal(msgpack.Format, data, wc.DecodeOpt{Mode: wc.Strict}, &p)
	var uf *wc.UnknownFieldError
	if !errors.As(err, &uf) || uf.Field != "extra" {
		t.Fatalf("strict: got %v", err)
	}
}

func TestRecord_NonStringKey(t *testing.T) {
	in := wc.NewMap(2).Set("a", int64(1)).Set("b", int64(2))
	in.Entries = append(in.Entries, wc.Entry{Key: int64(5), Value: wc.NewMap(0)})
	data, err := msgpack.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var p pair
	if err := wc.Unmarshal(msgpack.Format, data, wc.DecodeOpt{}, &p); err != nil {
		t.Fatalf("lenient: %v", err)
	}
	err = wc.Unmarshal(msgpack.Format, data, wc.DecodeOpt{Mode: wc.Strict}, &p)
	var uf *wc.UnknownFieldError
	if !errors.As(err, &uf) || uf.Field != wc.UnknownKeyLabel {
		t.Fatalf("strict: got %v", err)
	}
}

func TestUnion_BothOrders(t *testing.T) {
	codec := wc.NewUnion("U", []wc.Variant[pair]{{Name: "p", Decode: func(d wc.Decoder) (pair, error) {
		var p pair
		err := p.UnmarshalWire(d)
		return p, err
	}}}, nil)
	payload := wc.NewMap(2).Set("a", int64(3)).Set("b", int64(4))
	for _, in := range []*wc.Map{
		wc.NewMap(2).Set("type", "p").Set("p", payload),
		wc.NewMap(2).Set("p", payload).Set("type", "p"),
	} {
		data, err := msgpack.Marshal(in)
		if err != nil {
			t.Fatal(err)
		}
		got, err := codec.Decode(wc.NewStrictDecoder(msgpack.NewDecoder(bytes.NewReader(data), wc.DecodeOpt{})))
		if err != nil || got != (pair{A: 3, B: 4}) {
			t.Fatalf("got %+v, %v", got, err)
		}
	}
}

func TestDuplicateKeys(t *testing.T) {
	in := wc.NewMap(2)
	in.Entries = append(in.Entries, wc.Entry{Key: "a", Value: int64(1)}, wc.Entry{Key: "a", Value: int64(2)})
	data, err := msgpack.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var v wc.AnyValue
	err = wc.Unmarshal(msgpack.Format, data, wc.DecodeOpt{OnDuplicateKey: wc.Error}, &v)
	var ie *wc.InputError
	if !errors.As(err, &ie) || ie.Pointer != "/a" {
		t.Fatalf("got %v", err)
	}
}

func TestTypeMismatch(t *testing.T) {
	data, err := msgpack.Marshal(wc.NewMap(2).Set("a", "one").Set("b", int64(2)))
	if err != nil {
		t.Fatal(err)
	}
	var p pair
	err = wc.Unmarshal(msgpack.Format, data, wc.DecodeOpt{}, &p)
	if !errors.Is(err, wc.ErrTypeMismatch) {
		t.Fatalf("got %v", err)
	}
	if iss := wc.ToIssues(err); iss[0].Path != "/a" {
		t.Fatalf("got %v", iss)
	}
}

func intKeyed(t *testing.T) []byte {
	t.Helper()
	in := wc.NewMap(2)
	in.Entries = append(in.Entries, wc.Entry{Key: int64(7), Value: "seven"}, wc.Entry{Key: int64(-1), Value: "minus one"})
	data, err := msgpack.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestEachEntry_IntegerKeys(t *testing.T) {
	for _, mode := range []wc.DecodeMode{wc.Lenient, wc.Strict} {
		t.Run(mode.String(), func(t *testing.T) {
			d := wc.WithMode(msgpack.NewDecoder(bytes.NewReader(intKeyed(t)), wc.DecodeOpt{}), mode)
			got := map[int64]string{}
			err := wc.EachEntry(d, func(k wc.Decoder, value func() (wc.Decoder, error)) error {
				n, err := k.DecodeInt()
				if err != nil {
					return err
				}
				v, err := value()
				if err != nil {
					return err
				}
				got[n], err = v.DecodeString()
				return err
			})
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, map[int64]string{7: "seven", -1: "minus one"}) {
				t.Fatalf("got %v", got)
			}
		})
	}
}

func TestEachEntry_ValueNotRequested(t *testing.T) {
	var keys []int64
	err := wc.EachEntry(msgpack.NewDecoder(bytes.NewReader(intKeyed(t)), wc.DecodeOpt{}), func(k wc.Decoder, _ func() (wc.Decoder, error)) error {
		n, err := k.DecodeInt()
		keys = append(keys, n)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(keys, []int64{7, -1}) {
		t.Fatalf("keys = %v", keys)
	}
}

func TestDynamic_IntegerKeyedMap(t *testing.T) {
	m, err := schema.NewModel()
	if err != nil {
		t.Fatal(err)
	}
	c := dynamic.New(m, dynamic.Options{})
	typ := &schema.MapOf{Key: &schema.Primitive{Of: schema.Integer}, Value: &schema.Primitive{Of: schema.String}}
	want := wc.NewMap(2)
	want.Entries = append(want.Entries, wc.Entry{Key: int64(7), Value: "seven"}, wc.Entry{Key: int64(-1), Value: "minus one"})
	for _, mode := range []wc.DecodeMode{wc.Lenient, wc.Strict} {
		d := wc.WithMode(msgpack.NewDecoder(bytes.NewReader(intKeyed(t)), wc.DecodeOpt{}), mode)
		got, err := c.Decode(d, typ)
		if err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("%s: got %#v", mode, got)
		}
	}
}
