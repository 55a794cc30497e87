// Package bslang is the host-facing embedding API of the bslang scripting
// language: a thin façade over lang/compiler (for Load) and lang/machine
// (for everything else). A host program Loads a source string, Pushes the
// Entry function and its arguments, FCalls it, and Pops the result.
package bslang

import (
	"io"

	"github.com/mna/bslang/lang/compiler"
	"github.com/mna/bslang/lang/machine"
	"github.com/mna/bslang/lang/value"
)

// Value is the host-facing runtime value type.
type Value = value.Value

// Host-side value constructors, re-exported from lang/value so that a host
// program never has to import lang/value directly.
func Nil() Value                   { return value.NilValue }
func Bool(b bool) Value            { return value.Bool(b) }
func Number(n float32) Value       { return value.Number(n) }
func String(s string) Value        { return value.String(s) }
func NewArray(elems []Value) Value { return value.NewArray(elems) }
func Truthy(v Value) bool          { return value.Truthy(v) }

// Error is the structured compile-time error type returned by Load.
type Error = compiler.Error

// RuntimeError is the structured runtime error type surfaced by Err.
type RuntimeError = value.RuntimeError

// Engine is a single embeddable VM instance. The zero value is not usable;
// construct one with New.
type Engine struct {
	vm *machine.VM
}

// New returns a ready-to-Load Engine, with stdout defaulting to os.Stdout
// (see SetStdout).
func New() *Engine {
	return &Engine{vm: machine.New()}
}

// SetStdout redirects the output of the print native, useful for tests and
// for embedding inside another UI.
func (e *Engine) SetStdout(w io.Writer) { e.vm.Stdout = w }

// Load compiles source into a fresh program and installs it. On a compile
// error, the VM is left empty.
func (e *Engine) Load(source string) error {
	res, err := compiler.Compile(source)
	if err != nil {
		e.vm.Reset()
		return err
	}
	e.vm.SetProgram(res.Buffer, res.Pool, res.EntryConstID)
	return nil
}

// FCall invokes a function value pushed at sp-1-argc, with argc arguments
// above it, executing to completion or to the first runtime error. To call
// the program's entry point, Push(e.Entry()) first.
func (e *Engine) FCall(argc int) error { return e.vm.FCall(argc) }

// Entry returns the function value of the most recently Load-ed program's
// `fn main`, for use with FCall. It panics if no program is loaded.
func (e *Engine) Entry() Value { return e.vm.Pool.Get(e.vm.EntryConstID) }

// Push pushes a host-provided value onto the VM's evaluation stack.
func (e *Engine) Push(v Value) { e.vm.Push(v) }

// PushNil pushes Nil onto the evaluation stack.
func (e *Engine) PushNil() { e.vm.Push(value.NilValue) }

// Pop removes and returns the top of the evaluation stack.
func (e *Engine) Pop() Value { return e.vm.Pop() }

// Err returns the last runtime error, or nil.
func (e *Engine) Err() error { return e.vm.Err() }

// Reset empties the stack, frames, constants and bytecode, and reinstalls
// the sentinel frame. Between a runtime error and Reset, further FCalls are
// unspecified.
func (e *Engine) Reset() { e.vm.Reset() }

// ArrayPush appends elem to the array at the top of the evaluation stack,
// for use by host-provided native functions.
func (e *Engine) ArrayPush(elem Value) error {
	arr, ok := e.vm.Peek().(*value.Array)
	if !ok {
		return &value.RuntimeError{Kind: value.InvalidOperands, Msg: "top of stack is not an array"}
	}
	arr.Elems = append(arr.Elems, elem)
	return nil
}

// ArrayPop removes and returns the last element of the array at the top of
// the evaluation stack.
func (e *Engine) ArrayPop() (Value, error) {
	arr, ok := e.vm.Peek().(*value.Array)
	if !ok {
		return nil, &value.RuntimeError{Kind: value.InvalidOperands, Msg: "top of stack is not an array"}
	}
	if len(arr.Elems) == 0 {
		return nil, &value.RuntimeError{Kind: value.IndexOutOfBound, Msg: "pop from empty array"}
	}
	last := arr.Elems[len(arr.Elems)-1]
	arr.Elems = arr.Elems[:len(arr.Elems)-1]
	return last, nil
}

// ArrayLen returns the length of the array at the top of the evaluation
// stack.
func (e *Engine) ArrayLen() (int, error) {
	arr, ok := e.vm.Peek().(*value.Array)
	if !ok {
		return 0, &value.RuntimeError{Kind: value.InvalidOperands, Msg: "top of stack is not an array"}
	}
	return arr.Len(), nil
}
