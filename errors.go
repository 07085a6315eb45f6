package wirecodec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/wirecodec/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType           = "invalid_type"
	CodeRequired              = "required"
	CodeUnknownKey            = "unknown_key"
	CodeDuplicateKey          = "duplicate_key"
	CodeDiscriminatorMissing  = "discriminator_missing"
	CodeDiscriminatorMismatch = "discriminator_mismatch"
	CodeDiscriminatorUnknown  = "discriminator_unknown"
	CodeExcessFields          = "excess_fields"
	CodeParseError            = "parse_error"
	CodeTruncated             = "truncated"
)

// UnknownKeyLabel stands in for a record key whose textual form could not be
// captured (for example a non-string map key).
const UnknownKeyLabel = "<unknown>"

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrMissingField indicates a required record field was absent.
	ErrMissingField = errors.New("missing field")

	// ErrUnknownField indicates a record field outside the allowlist (strict mode only).
	ErrUnknownField = errors.New("unknown field")

	// ErrInvalidUnion indicates a union value whose shape or discriminator is invalid.
	ErrInvalidUnion = errors.New("invalid union")

	// ErrTypeMismatch indicates the input held a different shape than requested.
	ErrTypeMismatch = errors.New("type mismatch")
)

// MissingFieldError reports a required field that was not present.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string { return fmt.Sprintf("missing field %q", e.Field) }

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// UnknownFieldError reports a field outside the record's allowlist.
type UnknownFieldError struct {
	Field   string
	Allowed []string
}

func (e *UnknownFieldError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("unknown field %q, there are no fields", e.Field)
	}
	return fmt.Sprintf("unknown field %q, expected one of %s", e.Field, quoteList(e.Allowed))
}

func (e *UnknownFieldError) Unwrap() error { return ErrUnknownField }

// UnionErrorKind classifies an InvalidUnionError.
type UnionErrorKind int

const (
	MissingDiscriminator UnionErrorKind = iota
	DiscriminatorMismatch
	ExcessFields
	UnrecognizedVariant
)

func (k UnionErrorKind) String() string {
	switch k {
	case MissingDiscriminator:
		return "missing discriminator"
	case DiscriminatorMismatch:
		return "discriminator mismatch"
	case ExcessFields:
		return "excess fields"
	case UnrecognizedVariant:
		return "unrecognized variant"
	default:
		return "UnionErrorKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// InvalidUnionError reports a union value that violates the two-entry wire shape.
// Expected and Found carry discriminator names where the kind has them; Known
// lists the declared discriminators for UnrecognizedVariant.
type InvalidUnionError struct {
	Union    string
	Kind     UnionErrorKind
	Expected string
	Found    string
	Known    []string
}

func (e *InvalidUnionError) Error() string {
	prefix := "union"
	if e.Union != "" {
		prefix = "union " + e.Union
	}
	switch e.Kind {
	case MissingDiscriminator:
		if e.Found != "" {
			return fmt.Sprintf("%s: missing \"type\" discriminator, found key %q", prefix, e.Found)
		}
		return fmt.Sprintf("%s: missing \"type\" discriminator", prefix)
	case DiscriminatorMismatch:
		return fmt.Sprintf("%s: discriminator mismatch, expected %q, found %q", prefix, e.Expected, e.Found)
	case ExcessFields:
		return fmt.Sprintf("%s: expected \"type\" and value fields only, found extra key %q", prefix, e.Found)
	case UnrecognizedVariant:
		return fmt.Sprintf("%s: unknown variant %q, expected one of %s", prefix, e.Found, quoteList(e.Known))
	}
	return prefix + ": " + e.Kind.String()
}

func (e *InvalidUnionError) Unwrap() error { return ErrInvalidUnion }

// TypeMismatchError reports that the input did not hold the requested shape.
// Drivers return it for scalar-shape errors; Cause keeps the driver's own error.
type TypeMismatchError struct {
	Expected string
	Found    string
	Cause    error
}

func (e *TypeMismatchError) Error() string {
	msg := "invalid type"
	if e.Found != "" {
		msg += ": " + e.Found
	}
	if e.Expected != "" {
		msg += ", expected " + e.Expected
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Is matches ErrTypeMismatch; Unwrap exposes the driver cause.
func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

func (e *TypeMismatchError) Unwrap() error { return e.Cause }

// Mismatch builds a TypeMismatchError.
func Mismatch(expected, found string) error {
	return &TypeMismatchError{Expected: expected, Found: found}
}

// InputError is a failure the input layer reports on its own: duplicate
// keys, nesting or size limits. Pointer is absolute, so AtPath leaves it as is.
type InputError struct {
	Code    string
	Pointer string
	Message string
}

func (e *InputError) Error() string { return e.Pointer + ": " + e.Message }

// PathError attaches the location of a failure inside the decoded value.
// Path segments are outermost first.
type PathError struct {
	Path []string
	Err  error
}

func (e *PathError) Error() string { return pointer(e.Path) + ": " + e.Err.Error() }

func (e *PathError) Unwrap() error { return e.Err }

// AtPath prepends seg to the location carried by err.
func AtPath(err error, seg string) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*InputError); ok {
		return err
	}
	if pe, ok := err.(*PathError); ok {
		path := make([]string, 0, len(pe.Path)+1)
		path = append(path, seg)
		path = append(path, pe.Path...)
		return &PathError{Path: path, Err: pe.Err}
	}
	if iss, ok := err.(Issues); ok {
		out := make(Issues, len(iss))
		for i, it := range iss {
			it.Path = joinPointer("/"+escapePointer(seg), it.Path)
			out[i] = it
		}
		return out
	}
	return &PathError{Path: []string{seg}, Err: err}
}

// AtIndex prepends a sequence index to the location carried by err.
func AtIndex(err error, i int) error { return AtPath(err, strconv.Itoa(i)) }

// Issue represents a single decode failure rendered for humans and tooling.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: the detailed error text.
	Cause   error  // Optional: underlying error.
	Params  map[string]any
}

// Issues is a collection of decode failures that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// ToIssues renders any decode error as Issues with a stable code and a JSON
// Pointer path.
func ToIssues(err error) Issues {
	if err == nil {
		return nil
	}
	var ie *InputError
	if errors.As(err, &ie) {
		return Issues{{Path: ie.Pointer, Code: ie.Code, Message: i18n.T(ie.Code, nil), Hint: ie.Message, Cause: ie}}
	}
	var path []string
	inner := err
	var pe *PathError
	if errors.As(err, &pe) {
		path = pe.Path
		inner = pe.Err
	}
	if iss, ok := AsIssues(inner); ok {
		base := pointer(path)
		if base == "/" {
			return iss
		}
		out := make(Issues, len(iss))
		for i, it := range iss {
			it.Path = joinPointer(base, it.Path)
			out[i] = it
		}
		return out
	}
	it := Issue{Path: pointer(path), Code: codeOf(inner), Hint: inner.Error(), Cause: inner}
	params := map[string]string{}
	var (
		mf *MissingFieldError
		uf *UnknownFieldError
		iu *InvalidUnionError
	)
	switch {
	case errors.As(inner, &mf):
		params["field"] = mf.Field
		it.Params = map[string]any{"field": mf.Field}
	case errors.As(inner, &uf):
		params["field"] = uf.Field
		it.Params = map[string]any{"field": uf.Field, "allowed": uf.Allowed}
	case errors.As(inner, &iu):
		params["expected"] = iu.Expected
		params["found"] = iu.Found
		it.Params = map[string]any{"union": iu.Union, "expected": iu.Expected, "found": iu.Found, "known": iu.Known}
	}
	it.Message = i18n.T(it.Code, params)
	return Issues{it}
}

func codeOf(err error) string {
	var iu *InvalidUnionError
	switch {
	case errors.Is(err, ErrMissingField):
		return CodeRequired
	case errors.Is(err, ErrUnknownField):
		return CodeUnknownKey
	case errors.As(err, &iu):
		switch iu.Kind {
		case MissingDiscriminator:
			return CodeDiscriminatorMissing
		case DiscriminatorMismatch:
			return CodeDiscriminatorMismatch
		case ExcessFields:
			return CodeExcessFields
		default:
			return CodeDiscriminatorUnknown
		}
	case errors.Is(err, ErrTypeMismatch):
		return CodeInvalidType
	}
	return CodeParseError
}

func quoteList(ss []string) string {
	q := make([]string, len(ss))
	for i, s := range ss {
		q[i] = strconv.Quote(s)
	}
	return "[" + strings.Join(q, ", ") + "]"
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escapePointer(s string) string { return pointerEscaper.Replace(s) }

func pointer(path []string) string {
	if len(path) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, seg := range path {
		b.WriteByte('/')
		b.WriteString(escapePointer(seg))
	}
	return b.String()
}

func joinPointer(base, rest string) string {
	if rest == "" || rest == "/" {
		return base
	}
	if base == "/" {
		return rest
	}
	return base + rest
}
