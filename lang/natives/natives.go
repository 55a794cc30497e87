// Package natives implements the pre-bound native functions print, len,
// push and pop. They are registered as global constants by the compiler and
// invoked by the machine through the value.Facade ABI, so this package
// depends only on lang/value and is safe for both to import.
package natives

import (
	"fmt"
	"unicode/utf8"

	"github.com/mna/bslang/lang/value"
)

// Binding pairs a native's name and fixed arity with its implementation, for
// the compiler to pre-register as a global constant.
type Binding struct {
	Name       string
	ParamCount int
	Fn         value.NativeFunc
}

// Registry returns the pre-bound natives in a stable order: print/1,
// len/1, push/2, pop/1.
func Registry() []Binding {
	return []Binding{
		{Name: "print", ParamCount: 1, Fn: Print},
		{Name: "len", ParamCount: 1, Fn: Len},
		{Name: "push", ParamCount: 2, Fn: Push},
		{Name: "pop", ParamCount: 1, Fn: Pop},
	}
}

// Print writes a human-readable rendering of its argument and pushes Nil.
func Print(f value.Facade) error {
	v := f.Pop()
	fmt.Fprintln(f.Stdout(), v.String())
	f.PushNil()
	return nil
}

// Len pushes the length (as a Number) of its array or string argument. A
// string's length is its rune count, consistent with rune-based indexing.
func Len(f value.Facade) error {
	v := f.Pop()
	n, err := f.ArrayLen(v)
	if err == nil {
		f.Push(value.Number(n))
		return nil
	}
	if s, ok := v.(value.String); ok {
		f.Push(value.Number(utf8.RuneCountInString(string(s))))
		return nil
	}
	return err
}

// Push appends elem to arr and pushes Nil. Arguments are popped in reverse
// of their call-site order: elem first, then arr.
func Push(f value.Facade) error {
	elem := f.Pop()
	arr := f.Pop()
	if err := f.ArrayPush(arr, elem); err != nil {
		return err
	}
	f.PushNil()
	return nil
}

// Pop removes and pushes the last element of its array argument.
func Pop(f value.Facade) error {
	arr := f.Pop()
	v, err := f.ArrayPop(arr)
	if err != nil {
		return err
	}
	f.Push(v)
	return nil
}
