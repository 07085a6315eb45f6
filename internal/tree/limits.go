// Package tree carries the input checks of token-stream drivers over to
// drivers that materialize a document before decoding it.
package tree

import (
	"fmt"
	"strings"

	wc "github.com/reoring/wirecodec"
)

// maxNesting bounds recursion when no MaxDepth is configured.
const maxNesting = 10000

// Limits applies DecodeOpt's depth and duplicate key policy.
type Limits struct {
	opt wc.DecodeOpt
}

// NewLimits returns the checks for opt.
func NewLimits(opt wc.DecodeOpt) Limits { return Limits{opt: opt} }

// Enter checks a container opened at depth (1 for the top-level container).
func (l Limits) Enter(ptr string, depth int) error {
	if (l.opt.MaxDepth > 0 && depth > l.opt.MaxDepth) || depth > maxNesting {
		return &wc.InputError{Code: wc.CodeParseError, Pointer: Pointer(ptr), Message: "max depth exceeded"}
	}
	return nil
}

// Keys returns a tracker for the keys of one map.
func (l Limits) Keys() *KeySet {
	if l.opt.OnDuplicateKey == wc.Ignore {
		return nil
	}
	return &KeySet{l: l, seen: map[string]struct{}{}}
}

// KeySet reports keys repeated within one map. A nil KeySet checks nothing.
type KeySet struct {
	l    Limits
	seen map[string]struct{}
}

// Add records key, found at ptr.
func (k *KeySet) Add(ptr string, key any) error {
	if k == nil {
		return nil
	}
	s := fmt.Sprintf("%T:%v", key, key)
	if _, dup := k.seen[s]; !dup {
		k.seen[s] = struct{}{}
		return nil
	}
	msg := fmt.Sprintf("key '%v' duplicated", key)
	if k.l.opt.OnDuplicateKey == wc.Error {
		return &wc.InputError{Code: wc.CodeDuplicateKey, Pointer: Pointer(ptr), Message: msg}
	}
	if k.l.opt.OnWarning != nil {
		k.l.opt.OnWarning(wc.Issue{Path: Pointer(ptr), Code: wc.CodeDuplicateKey, Message: msg})
	}
	return nil
}

var escaper = strings.NewReplacer("~", "~0", "/", "~1")

// Join appends one reference token to a JSON Pointer.
func Join(ptr string, seg any) string { return ptr + "/" + escaper.Replace(fmt.Sprint(seg)) }

// Pointer normalizes the empty pointer to "/".
func Pointer(ptr string) string {
	if ptr == "" {
		return "/"
	}
	return ptr
}
