package compiler

import (
	"fmt"

	"github.com/mna/bslang/lang/token"
)

// ErrorKind enumerates the compile-time fault categories.
type ErrorKind int

const (
	Scanner ErrorKind = iota
	UnexpectedToken
	Immutable
	UnknownIdentifier
	MultipleDefinition
	NoMainFunction
	BranchTooFar
)

func (k ErrorKind) String() string {
	switch k {
	case Scanner:
		return "Scanner"
	case UnexpectedToken:
		return "UnexpectedToken"
	case Immutable:
		return "Immutable"
	case UnknownIdentifier:
		return "UnknownIdentifier"
	case MultipleDefinition:
		return "MultipleDefinition"
	case NoMainFunction:
		return "NoMainFunction"
	case BranchTooFar:
		return "BranchTooFar"
	default:
		return "UnknownCompileError"
	}
}

// Error is the structured compile-time error returned by Compile. The host
// can match on Kind; Error() renders a human-readable message.
type Error struct {
	Kind ErrorKind
	Pos  token.Position
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Pos, e.Msg)
}

func (c *Compiler) errAt(tok token.Token, kind ErrorKind, format string, args ...interface{}) error {
	return &Error{
		Kind: kind,
		Pos:  token.PositionOf(c.src, tok.From),
		Msg:  fmt.Sprintf(format, args...),
	}
}
