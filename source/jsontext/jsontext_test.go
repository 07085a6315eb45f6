package jsontext_test

import (
	"errors"
	"math"
	"testing"

	wc "github.com/reoring/wirecodec"
	"github.com/reoring/wirecodec/source/json"
	"github.com/reoring/wirecodec/source/jsontext"
)

func TestTranscode_MatchesGoJSON(t *testing.T) {
	in := []byte(`{"type":"zzz","zzz":{"n":[1,2.5,-3],"s":"a\"b","b":false,"z":null}}`)
	a, err := wc.Transcode(jsontext.Format, jsontext.Format, in, wc.DecodeOpt{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := wc.Transcode(json.Format, json.Format, in, wc.DecodeOpt{})
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Fatalf("jsontext %s\n go-json %s", a, b)
	}
	if string(a) != string(in) {
		t.Fatalf("got %s", a)
	}
}

func TestDuplicateKeysGoThroughEnforcement(t *testing.T) {
	var v wc.AnyValue
	if err := wc.Unmarshal(jsontext.Format, []byte(`{"a":1,"a":2}`), wc.DecodeOpt{}, &v); err != nil {
		t.Fatalf("duplicates are ignored by default: %v", err)
	}
	err := wc.Unmarshal(jsontext.Format, []byte(`{"a":1,"a":2}`), wc.DecodeOpt{OnDuplicateKey: wc.Error}, &v)
	var ie *wc.InputError
	if !errors.As(err, &ie) || ie.Code != wc.CodeDuplicateKey || ie.Pointer != "/a" {
		t.Fatalf("expected duplicate_key at /a, got %v", err)
	}
}

func TestMarshal_NonFinite(t *testing.T) {
	out, err := jsontext.Marshal([]any{math.NaN(), math.Inf(1), int64(7)})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `["NaN","Infinity",7]` {
		t.Fatalf("got %s", out)
	}
}
