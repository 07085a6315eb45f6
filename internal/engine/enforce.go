package engine

import (
	"strconv"

	wc "github.com/reoring/wirecodec"
	"github.com/reoring/wirecodec/internal/tree"
)

// level is one open container. member is the pointer of the object member
// whose value comes next.
type level struct {
	ptr    string
	array  bool
	next   int
	keys   *tree.KeySet
	member string
}

// Enforce returns a TokenSource that applies opt's duplicate key policy,
// nesting limit and byte limit while tokens stream through. Failures are
// *wirecodec.InputError values carrying the offending location.
func Enforce(inner TokenSource, opt wc.DecodeOpt) TokenSource {
	return &enforcer{inner: inner, opt: opt, limits: tree.NewLimits(opt)}
}

type enforcer struct {
	inner  TokenSource
	opt    wc.DecodeOpt
	limits tree.Limits
	stack  []level
}

func (e *enforcer) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	var ptr string
	switch {
	case len(e.stack) == 0 && (tok.Kind == KindKey || tok.Kind == KindEndObject || tok.Kind == KindEndArray):
		// The inner source rejects unbalanced input itself.
	case tok.Kind == KindKey:
		top := &e.stack[len(e.stack)-1]
		top.member = tree.Join(top.ptr, tok.String)
		ptr = top.member
		if err := top.keys.Add(ptr, tok.String); err != nil {
			return Token{}, err
		}
	case tok.Kind == KindEndObject || tok.Kind == KindEndArray:
		n := len(e.stack)
		ptr = e.stack[n-1].ptr
		e.stack = e.stack[:n-1]
	default:
		ptr = e.valuePointer()
		if tok.Kind == KindBeginObject || tok.Kind == KindBeginArray {
			if err := e.limits.Enter(ptr, len(e.stack)+1); err != nil {
				return Token{}, err
			}
			l := level{ptr: ptr, array: tok.Kind == KindBeginArray}
			if !l.array {
				l.keys = e.limits.Keys()
			}
			e.stack = append(e.stack, l)
		}
	}

	if e.opt.MaxBytes > 0 && e.inner.Location() > e.opt.MaxBytes {
		return Token{}, &wc.InputError{Code: wc.CodeTruncated, Pointer: tree.Pointer(ptr), Message: "max bytes exceeded"}
	}
	return tok, nil
}

// valuePointer locates the value that starts with the current token.
func (e *enforcer) valuePointer() string {
	if len(e.stack) == 0 {
		return ""
	}
	top := &e.stack[len(e.stack)-1]
	if !top.array {
		return top.member
	}
	p := tree.Join(top.ptr, strconv.Itoa(top.next))
	top.next++
	return p
}

func (e *enforcer) Location() int64 { return e.inner.Location() }
