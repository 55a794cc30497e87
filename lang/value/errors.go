package value

import "fmt"

// RuntimeErrorKind enumerates the runtime fault categories.
type RuntimeErrorKind int

const (
	InvalidOperands RuntimeErrorKind = iota
	DivisionByZero
	IndexOutOfBound
	CallingNonFunction
)

func (k RuntimeErrorKind) String() string {
	switch k {
	case InvalidOperands:
		return "InvalidOperands"
	case DivisionByZero:
		return "DivisionByZero"
	case IndexOutOfBound:
		return "IndexOutOfBound"
	case CallingNonFunction:
		return "CallingNonFunction"
	default:
		return "UnknownRuntimeError"
	}
}

// RuntimeError is the structured error value recorded by the machine when
// execution faults. The host matches on Kind; Error() renders a message.
type RuntimeError struct {
	Kind RuntimeErrorKind
	Msg  string
}

func (e *RuntimeError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return e.Kind.String()
}

func newErr(k RuntimeErrorKind, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: k, Msg: fmt.Sprintf(format, args...)}
}
