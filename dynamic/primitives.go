package dynamic

import (
	"errors"
	"fmt"
	"math"
	"regexp"

	wc "github.com/reoring/wirecodec"
	"github.com/reoring/wirecodec/codec"
	"github.com/reoring/wirecodec/schema"
)

// MaxSafeLong is the largest magnitude a SAFELONG may hold.
const MaxSafeLong = 1<<53 - 1

var (
	// ErrOutOfRange is the cause of a TypeMismatchError for an integer outside
	// its primitive's range.
	ErrOutOfRange = errors.New("out of range")
	// ErrMalformed is the cause of a TypeMismatchError for a string that does
	// not follow its primitive's format.
	ErrMalformed = codec.ErrMalformed
)

var (
	ridPattern    = regexp.MustCompile(`^ri\.[a-z][a-z0-9\-]*\.([a-z0-9][a-z0-9\-]*)?\.[a-z][a-z0-9\-]*\.[a-zA-Z0-9_\-\.]+$`)
	bearerPattern = regexp.MustCompile(`^[A-Za-z0-9\-\._~\+/]+=*$`)
)

func mismatch(k schema.PrimitiveKind, found any, cause error) error {
	return &wc.TypeMismatchError{Expected: k.String(), Found: fmt.Sprint(found), Cause: cause}
}

// decodePrimitive reads one primitive and checks it against the kind's range
// or format. UUIDs are returned in canonical form.
func decodePrimitive(d wc.Decoder, k schema.PrimitiveKind) (any, error) {
	switch k {
	case schema.String:
		return d.DecodeString()
	case schema.Boolean:
		return d.DecodeBool()
	case schema.Double:
		return d.DecodeFloat()
	case schema.Binary:
		return d.DecodeBytes()
	case schema.Any:
		return d.DecodeAny()
	case schema.Integer:
		n, err := d.DecodeInt()
		if err != nil {
			return nil, err
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, mismatch(k, n, ErrOutOfRange)
		}
		return n, nil
	case schema.SafeLong:
		n, err := d.DecodeInt()
		if err != nil {
			return nil, err
		}
		if n < -MaxSafeLong || n > MaxSafeLong {
			return nil, mismatch(k, n, ErrOutOfRange)
		}
		return n, nil
	case schema.UUID:
		s, err := d.DecodeString()
		if err != nil {
			return nil, err
		}
		u, err := codec.ParseUUID(s)
		if err != nil {
			return nil, err
		}
		return u.String(), nil
	case schema.DateTime:
		s, err := d.DecodeString()
		if err != nil {
			return nil, err
		}
		if _, err := codec.ParseDateTime(s); err != nil {
			return nil, err
		}
		return s, nil
	case schema.RID:
		return decodePattern(d, k, ridPattern)
	case schema.BearerToken:
		return decodePattern(d, k, bearerPattern)
	}
	return nil, fmt.Errorf("dynamic: unsupported primitive %v", k)
}

func decodePattern(d wc.Decoder, k schema.PrimitiveKind, re *regexp.Regexp) (any, error) {
	s, err := d.DecodeString()
	if err != nil {
		return nil, err
	}
	if !re.MatchString(s) {
		return nil, mismatch(k, fmt.Sprintf("%q", s), ErrMalformed)
	}
	return s, nil
}
