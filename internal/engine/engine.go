package engine

import (
	"errors"
	"io"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindBeginObject, KindEndObject:
		return "map"
	case KindBeginArray, KindEndArray:
		return "sequence"
	case KindKey, KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindNull:
		return "null"
	}
	return "unknown"
}

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// ErrUnexpectedToken reports a token that cannot appear at its position.
var ErrUnexpectedToken = errors.New("unexpected token")

// Peeker adds one token of lookahead to a TokenSource.
type Peeker struct {
	inner  TokenSource
	next   Token
	err    error
	peeked bool
}

// NewPeeker wraps src.
func NewPeeker(src TokenSource) *Peeker { return &Peeker{inner: src} }

// Peek returns the next token without consuming it.
func (p *Peeker) Peek() (Token, error) {
	if !p.peeked {
		p.next, p.err = p.inner.NextToken()
		p.peeked = true
	}
	return p.next, p.err
}

// NextToken consumes the next token.
func (p *Peeker) NextToken() (Token, error) {
	if p.peeked {
		p.peeked = false
		return p.next, p.err
	}
	return p.inner.NextToken()
}

func (p *Peeker) Location() int64 { return p.inner.Location() }

// SkipValue consumes the remainder of the value that starts with tok.
func SkipValue(src TokenSource, tok Token) error {
	switch tok.Kind {
	case KindString, KindNumber, KindBool, KindNull:
		return nil
	case KindBeginObject, KindBeginArray:
	default:
		return ErrUnexpectedToken
	}
	depth := 1
	for depth > 0 {
		t, err := src.NextToken()
		if err != nil {
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		switch t.Kind {
		case KindBeginObject, KindBeginArray:
			depth++
		case KindEndObject, KindEndArray:
			depth--
		}
	}
	return nil
}
