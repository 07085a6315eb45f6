// Package codec converts wire primitives to the Go types bindings use for
// them: DATETIME to time.Time and UUID to uuid.UUID.
package codec

import (
	"errors"
	"fmt"
	"time"

	wc "github.com/reoring/wirecodec"
)

// ErrMalformed is the cause of a TypeMismatchError for a string that does not
// follow its primitive's format.
var ErrMalformed = errors.New("malformed")

// ParseDateTime parses an RFC 3339 timestamp. Fractional seconds are optional.
func ParseDateTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, &wc.TypeMismatchError{Expected: "DATETIME", Found: fmt.Sprintf("%q", s), Cause: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return t, nil
}

// FormatDateTime renders t in UTC as RFC 3339 with trailing zeros trimmed.
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// DecodeDateTime reads a DATETIME string from d.
func DecodeDateTime(d wc.Decoder) (time.Time, error) {
	s, err := d.DecodeString()
	if err != nil {
		return time.Time{}, err
	}
	return ParseDateTime(s)
}
