package engine

// Frames tracks container nesting for drivers whose tokenizer does not tell
// object keys apart from string values.
type Frames struct {
	stack []keyFrame
}

type keyFrame struct {
	object       bool
	expectingKey bool
}

// Open records the start of an object or array.
func (f *Frames) Open(object bool) {
	f.stack = append(f.stack, keyFrame{object: object, expectingKey: object})
}

// Close records the end of the innermost container, which completes a value
// of its parent.
func (f *Frames) Close() {
	if n := len(f.stack); n > 0 {
		f.stack = f.stack[:n-1]
	}
	f.ValueDone()
}

// Scalar classifies a string token: it reports whether the token is an
// object key and updates the state accordingly.
func (f *Frames) Scalar(isString bool) (key bool) {
	if n := len(f.stack); n > 0 && isString {
		top := &f.stack[n-1]
		if top.object && top.expectingKey {
			top.expectingKey = false
			return true
		}
	}
	f.ValueDone()
	return false
}

// ValueDone flips the enclosing object back to expecting a key.
func (f *Frames) ValueDone() {
	if n := len(f.stack); n > 0 {
		top := &f.stack[n-1]
		if top.object && !top.expectingKey {
			top.expectingKey = true
		}
	}
}
