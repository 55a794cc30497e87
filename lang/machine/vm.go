// Package machine implements the stack-based virtual machine: the
// evaluation stack, the frame stack rooted at a sentinel frame, the
// fetch/decode/dispatch loop, the call/return convention, and the
// native-function bridge.
package machine

import (
	"fmt"
	"io"
	"os"

	"github.com/mna/bslang/lang/bytecode"
	"github.com/mna/bslang/lang/value"
)

// VM is the runtime state of a single compiled program: the evaluation
// Stack, the frame stack, the read-only bytecode Buf and constant Pool it
// executes, and the last runtime error, if any.
type VM struct {
	Stack  []value.Value
	frames []frame

	Buf          *bytecode.Buffer
	Pool         *bytecode.ConstantPool
	EntryConstID uint64

	// Stdout is where the print native writes, defaulting to os.Stdout. A
	// host embedding the VM for tests can redirect it.
	Stdout io.Writer

	err error
}

// New returns a VM with no program loaded: an empty stack and only the
// sentinel frame installed. Call SetProgram (or the embedding API's Load)
// before FCall.
func New() *VM {
	vm := &VM{Stdout: os.Stdout}
	vm.Reset()
	return vm
}

// Reset empties the stack and frame stack, reinstalls the sentinel frame,
// clears the error slot, and discards any program previously installed via
// SetProgram.
func (vm *VM) Reset() {
	vm.Stack = nil
	vm.frames = []frame{{}}
	vm.Buf = nil
	vm.Pool = nil
	vm.EntryConstID = 0
	vm.err = nil
}

// SetProgram installs a freshly compiled program, resetting the execution
// state. The buffer and pool are read-only from this point on.
func (vm *VM) SetProgram(buf *bytecode.Buffer, pool *bytecode.ConstantPool, entryConstID uint64) {
	vm.Stack = vm.Stack[:0]
	vm.frames = []frame{{}}
	vm.Buf = buf
	vm.Pool = pool
	vm.EntryConstID = entryConstID
	vm.err = nil
}

// Err returns the last runtime error recorded by FCall, or nil.
func (vm *VM) Err() error { return vm.err }

// Push pushes a host-provided value onto the evaluation stack.
func (vm *VM) Push(v value.Value) { vm.Stack = append(vm.Stack, v) }

// Pop removes and returns the top of the evaluation stack.
func (vm *VM) Pop() value.Value {
	n := len(vm.Stack) - 1
	v := vm.Stack[n]
	vm.Stack = vm.Stack[:n]
	return v
}

// Peek returns the top of the evaluation stack without removing it, for
// the embedding API's array helpers, which operate on the top-of-stack
// array in place.
func (vm *VM) Peek() value.Value { return vm.Stack[len(vm.Stack)-1] }

// FCall invokes a function value pushed at sp-1-argc with argc arguments
// above it, executing to completion or to the first runtime error. It may
// be re-entered from within a native function; the nested call stops at its
// own frame depth.
func (vm *VM) FCall(argc int) error {
	depth := len(vm.frames)
	if err := vm.call(argc); err != nil {
		vm.err = err
		return err
	}
	// A native call completes synchronously inside vm.call; only a Bakht
	// call leaves a new frame on top, requiring the dispatch loop to run it.
	if len(vm.frames) > depth {
		if err := vm.run(depth); err != nil {
			vm.err = err
			return err
		}
	}
	return nil
}

// call implements the calling convention, shared by the `call` opcode and
// by FCall (including re-entrant FCall from a native):
//
//  1. reach into the stack at sp-1-argc and remove the callee, shifting
//     args down;
//  2. fail with CallingNonFunction if it is not a *value.Function;
//  3. normalize argc to the declared ParamCount (pad with Nil, or discard
//     extras from the top);
//  4. for a Bakht function, push a new frame and let the dispatch loop take
//     over; for a native, invoke it immediately through the Facade.
func (vm *VM) call(argc int) error {
	sp := len(vm.Stack)
	calleeIdx := sp - 1 - argc
	callee := vm.Stack[calleeIdx]
	copy(vm.Stack[calleeIdx:], vm.Stack[calleeIdx+1:])
	vm.Stack = vm.Stack[:sp-1]

	fn, ok := callee.(*value.Function)
	if !ok {
		return &value.RuntimeError{
			Kind: value.CallingNonFunction,
			Msg:  fmt.Sprintf("cannot call %s", callee.Type()),
		}
	}

	base := calleeIdx
	for len(vm.Stack)-base < fn.ParamCount {
		vm.Push(value.NilValue)
	}
	if len(vm.Stack)-base > fn.ParamCount {
		vm.Stack = vm.Stack[:base+fn.ParamCount]
	}

	if fn.IsNative() {
		return fn.Native(facade{vm})
	}

	vm.frames = append(vm.frames, frame{ip: fn.Address, bp: base})
	return nil
}
