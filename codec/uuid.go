package codec

import (
	"fmt"

	"github.com/google/uuid"

	wc "github.com/reoring/wirecodec"
)

// ParseUUID parses the 36-character hyphenated form, in either case. The
// URN and braced forms uuid.Parse also knows are rejected.
func ParseUUID(s string) (uuid.UUID, error) {
	u, err := uuid.Parse(s)
	if err == nil && len(s) != 36 {
		err = fmt.Errorf("uuid: non-canonical length %d", len(s))
	}
	if err != nil {
		return uuid.Nil, &wc.TypeMismatchError{Expected: "UUID", Found: fmt.Sprintf("%q", s), Cause: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return u, nil
}

// DecodeUUID reads a UUID string from d.
func DecodeUUID(d wc.Decoder) (uuid.UUID, error) {
	s, err := d.DecodeString()
	if err != nil {
		return uuid.Nil, err
	}
	return ParseUUID(s)
}
