package wirecodec

import "fmt"

// DecodeMode selects the policy toward record fields a schema does not declare.
type DecodeMode int

const (
	Lenient DecodeMode = iota // Skip unknown record fields.
	Strict                    // Reject unknown record fields.
)

func (m DecodeMode) String() string {
	switch m {
	case Lenient:
		return "lenient"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("DecodeMode(%d)", int(m))
	}
}

// ParseDecodeMode maps "lenient"/"strict" to a DecodeMode.
func ParseDecodeMode(s string) (DecodeMode, error) {
	switch s {
	case "lenient":
		return Lenient, nil
	case "strict":
		return Strict, nil
	}
	return Lenient, fmt.Errorf("wirecodec: unknown decode mode %q", s)
}

// Severity expresses the severity level for input-level issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// ParseSeverity maps "ignore"/"warn"/"error" to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "ignore", "":
		return Ignore, nil
	case "warn":
		return Warn, nil
	case "error":
		return Error, nil
	}
	return Ignore, fmt.Errorf("wirecodec: unknown severity %q", s)
}

// DecodeOpt bundles decoding options. MaxDepth, MaxBytes and OnDuplicateKey are
// enforced by token-stream drivers; tree drivers ignore them.
type DecodeOpt struct {
	Mode           DecodeMode
	MaxDepth       int
	MaxBytes       int64
	OnDuplicateKey Severity
	// OnWarning receives findings that do not stop decoding, such as
	// duplicate keys under Warn. Optional.
	OnWarning func(Issue)
}
