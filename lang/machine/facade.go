package machine

import (
	"io"

	"github.com/mna/bslang/lang/value"
)

// facade is the restricted view of the VM a native function receives,
// implementing value.Facade. The native observes a self-consistent VM and
// must leave it self-consistent, conventionally by pushing exactly one
// value.
type facade struct{ vm *VM }

func (f facade) Push(v value.Value) { f.vm.Push(v) }
func (f facade) PushNil()           { f.vm.Push(value.NilValue) }
func (f facade) Pop() value.Value   { return f.vm.Pop() }

// FCall lets a native re-enter the machine: the nested call pushes a fresh
// frame and runs the dispatch loop until that frame returns, leaving its
// single result on the stack for the native to Pop.
func (f facade) FCall(argc int) error { return f.vm.FCall(argc) }

func (f facade) Stdout() io.Writer {
	if f.vm.Stdout != nil {
		return f.vm.Stdout
	}
	return io.Discard
}

func (f facade) ArrayPush(arr, elem value.Value) error {
	a, ok := arr.(*value.Array)
	if !ok {
		return &value.RuntimeError{Kind: value.InvalidOperands, Msg: "push target is not an array"}
	}
	a.Elems = append(a.Elems, elem)
	return nil
}

func (f facade) ArrayPop(arr value.Value) (value.Value, error) {
	a, ok := arr.(*value.Array)
	if !ok {
		return nil, &value.RuntimeError{Kind: value.InvalidOperands, Msg: "pop target is not an array"}
	}
	if len(a.Elems) == 0 {
		return nil, &value.RuntimeError{Kind: value.IndexOutOfBound, Msg: "pop from empty array"}
	}
	last := a.Elems[len(a.Elems)-1]
	a.Elems = a.Elems[:len(a.Elems)-1]
	return last, nil
}

func (f facade) ArrayLen(arr value.Value) (int, error) {
	a, ok := arr.(*value.Array)
	if !ok {
		return 0, &value.RuntimeError{Kind: value.InvalidOperands, Msg: "len target is not an array"}
	}
	return a.Len(), nil
}
