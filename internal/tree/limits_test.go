package tree

import (
	"errors"
	"testing"

	wc "github.com/reoring/wirecodec"
)

func TestEnter(t *testing.T) {
	l := NewLimits(wc.DecodeOpt{MaxDepth: 2})
	if err := l.Enter("/a", 2); err != nil {
		t.Fatalf("depth 2: %v", err)
	}
	err := l.Enter("/a/b", 3)
	var ie *wc.InputError
	if !errors.As(err, &ie) || ie.Pointer != "/a/b" || ie.Code != wc.CodeParseError {
		t.Fatalf("got %v", err)
	}
	if err := NewLimits(wc.DecodeOpt{}).Enter("", maxNesting+1); err == nil {
		t.Fatal("nesting must be bounded without MaxDepth")
	}
}

func TestKeys(t *testing.T) {
	if k := NewLimits(wc.DecodeOpt{}).Keys(); k != nil {
		t.Fatal("Ignore needs no tracker")
	}
	var nilSet *KeySet
	if err := nilSet.Add("/x", "x"); err != nil {
		t.Fatal(err)
	}

	k := NewLimits(wc.DecodeOpt{OnDuplicateKey: wc.Error}).Keys()
	if err := k.Add("/1", int64(1)); err != nil {
		t.Fatal(err)
	}
	if err := k.Add("/1", "1"); err != nil {
		t.Fatal("keys of different types are distinct")
	}
	err := k.Add("/1", int64(1))
	var ie *wc.InputError
	if !errors.As(err, &ie) || ie.Code != wc.CodeDuplicateKey || ie.Pointer != "/1" {
		t.Fatalf("got %v", err)
	}

	var warned []wc.Issue
	k = NewLimits(wc.DecodeOpt{OnDuplicateKey: wc.Warn, OnWarning: func(is wc.Issue) { warned = append(warned, is) }}).Keys()
	_ = k.Add("/a", "a")
	if err := k.Add("/a", "a"); err != nil {
		t.Fatal(err)
	}
	if len(warned) != 1 || warned[0].Path != "/a" {
		t.Fatalf("warnings = %+v", warned)
	}
}

func TestJoin(t *testing.T) {
	if got := Join("/a", "b/c~d"); got != "/a/b~1c~0d" {
		t.Fatalf("got %q", got)
	}
	if got := Join("", 3); got != "/3" {
		t.Fatalf("got %q", got)
	}
	if Pointer("") != "/" || Pointer("/x") != "/x" {
		t.Fatal("Pointer")
	}
}
