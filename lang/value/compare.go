package value

import (
	"math"
	"strings"
)

// Equal implements structural equality: numbers and booleans by value,
// strings by byte content, arrays and functions by identity. Equality never
// fails, whatever the operand types.
func Equal(x, y Value) bool {
	switch x := x.(type) {
	case Nil:
		_, ok := y.(Nil)
		return ok
	case Bool:
		yb, ok := y.(Bool)
		return ok && x == yb
	case Number:
		yn, ok := y.(Number)
		return ok && x == yn
	case String:
		ys, ok := y.(String)
		return ok && x == ys
	case *Array:
		ya, ok := y.(*Array)
		return ok && x == ya
	case *Function:
		yf, ok := y.(*Function)
		if !ok {
			return false
		}
		if x.IsNative() || yf.IsNative() {
			// Natives are registered once as singleton constants; every konst
			// load of a given native refers to the very same *Function, so
			// pointer identity is the correct (and only available) equality.
			return x == yf
		}
		return x.Address == yf.Address
	default:
		return false
	}
}

// Compare implements the ordering operators: numeric or lexicographic
// string comparison; mixed/unsupported types are InvalidOperands. op must
// be one of "lt", "le", "gt", "ge".
func Compare(op string, x, y Value) (bool, error) {
	switch x := x.(type) {
	case Number:
		yn, ok := y.(Number)
		if !ok {
			return false, newErr(InvalidOperands, "cannot compare number and %s", y.Type())
		}
		return compareOrdered(op, float64(x), float64(yn)), nil
	case String:
		ys, ok := y.(String)
		if !ok {
			return false, newErr(InvalidOperands, "cannot compare string and %s", y.Type())
		}
		c := strings.Compare(string(x), string(ys))
		return compareOrdered(op, float64(c), 0), nil
	default:
		return false, newErr(InvalidOperands, "cannot compare %s and %s", x.Type(), y.Type())
	}
}

func compareOrdered(op string, a, b float64) bool {
	switch op {
	case "lt":
		return a < b
	case "le":
		return a <= b
	case "gt":
		return a > b
	case "ge":
		return a >= b
	default:
		panic("invalid comparison op " + op)
	}
}

// Arith applies a binary arithmetic operator ("add", "sub", "mult", "div",
// "mod") to two Number operands. A zero divisor for div/mod is
// DivisionByZero rather than an IEEE-754 Inf/NaN.
func Arith(op string, x, y Value) (Value, error) {
	xn, ok := x.(Number)
	if !ok {
		return nil, newErr(InvalidOperands, "left operand of %s is %s, want number", op, x.Type())
	}
	yn, ok := y.(Number)
	if !ok {
		return nil, newErr(InvalidOperands, "right operand of %s is %s, want number", op, y.Type())
	}
	switch op {
	case "add":
		return xn + yn, nil
	case "sub":
		return xn - yn, nil
	case "mult":
		return xn * yn, nil
	case "div":
		if yn == 0 {
			return nil, newErr(DivisionByZero, "division by zero")
		}
		return xn / yn, nil
	case "mod":
		if yn == 0 {
			return nil, newErr(DivisionByZero, "modulo by zero")
		}
		return Number(math.Mod(float64(xn), float64(yn))), nil
	default:
		panic("invalid arithmetic op " + op)
	}
}

// Get implements the `get` opcode's container/index dispatch: array/number
// yields the element, string/number a 1-character string.
func Get(container, idx Value) (Value, error) {
	n, ok := idx.(Number)
	if !ok {
		return nil, newErr(InvalidOperands, "index must be a number, got %s", idx.Type())
	}
	i := int(n)
	switch c := container.(type) {
	case *Array:
		if i < 0 || i >= len(c.Elems) {
			return nil, newErr(IndexOutOfBound, "index %d out of bounds (len %d)", i, len(c.Elems))
		}
		return c.Elems[i], nil
	case String:
		// index by rune, not byte, so a multi-byte codepoint is never split
		runes := []rune(string(c))
		if i < 0 || i >= len(runes) {
			return nil, newErr(IndexOutOfBound, "index %d out of bounds (len %d)", i, len(runes))
		}
		return String(runes[i]), nil
	default:
		return nil, newErr(InvalidOperands, "cannot index into %s", container.Type())
	}
}

// Set assigns val into an array at idx and returns the mutated container so
// the assignment expression yields it.
func Set(container, idx, val Value) (Value, error) {
	n, ok := idx.(Number)
	if !ok {
		return nil, newErr(InvalidOperands, "index must be a number, got %s", idx.Type())
	}
	arr, ok := container.(*Array)
	if !ok {
		return nil, newErr(InvalidOperands, "cannot assign into %s", container.Type())
	}
	i := int(n)
	if i < 0 || i >= len(arr.Elems) {
		return nil, newErr(IndexOutOfBound, "index %d out of bounds (len %d)", i, len(arr.Elems))
	}
	arr.Elems[i] = val
	return arr, nil
}
