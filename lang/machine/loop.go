package machine

import (
	"fmt"

	"github.com/mna/bslang/lang/bytecode"
	"github.com/mna/bslang/lang/value"
)

// run executes instructions against the top frame until the frame stack
// shrinks back down to targetDepth: fetch one instruction, dispatch, repeat
// until the frame that was on top when the call began has returned. Using
// the recorded depth rather than a check against the sentinel frame lets a
// re-entrant FCall from a native stop at its own call depth instead of the
// program's outermost one.
func (vm *VM) run(targetDepth int) error {
	for len(vm.frames) > targetDepth {
		fr := &vm.frames[len(vm.frames)-1]
		op, operand, next := bytecode.Decode(vm.Buf.Code, int(fr.ip))
		fr.ip = uint32(next)

		switch op {
		case bytecode.Nop:
			// no-op

		case bytecode.Add, bytecode.Sub, bytecode.Mult, bytecode.Div, bytecode.Mod:
			y := vm.Pop()
			x := vm.Pop()
			z, err := value.Arith(arithName(op), x, y)
			if err != nil {
				return err
			}
			vm.Push(z)

		case bytecode.Eq, bytecode.Ne:
			y := vm.Pop()
			x := vm.Pop()
			eq := value.Equal(x, y)
			if op == bytecode.Ne {
				eq = !eq
			}
			vm.Push(value.Bool(eq))

		case bytecode.Lt, bytecode.Le, bytecode.Gt, bytecode.Ge:
			y := vm.Pop()
			x := vm.Pop()
			ok, err := value.Compare(compareName(op), x, y)
			if err != nil {
				return err
			}
			vm.Push(value.Bool(ok))

		case bytecode.Nil:
			vm.Push(value.NilValue)

		case bytecode.True:
			vm.Push(value.True)

		case bytecode.False:
			vm.Push(value.False)

		case bytecode.Konst:
			vm.Push(vm.Pool.Get(operand))

		case bytecode.Load:
			vm.Push(vm.Stack[fr.bp+int(operand)])

		case bytecode.Store:
			vm.Stack[fr.bp+int(operand)] = vm.Pop()

		case bytecode.Pop:
			vm.Stack = vm.Stack[:len(vm.Stack)-int(operand)]

		case bytecode.Anew:
			n := int(operand)
			elems := make([]value.Value, n)
			copy(elems, vm.Stack[len(vm.Stack)-n:])
			vm.Stack = vm.Stack[:len(vm.Stack)-n]
			vm.Push(value.NewArray(elems))

		case bytecode.Get:
			idx := vm.Pop()
			container := vm.Pop()
			v, err := value.Get(container, idx)
			if err != nil {
				return err
			}
			vm.Push(v)

		case bytecode.Set:
			val := vm.Pop()
			idx := vm.Pop()
			container := vm.Pop()
			v, err := value.Set(container, idx, val)
			if err != nil {
				return err
			}
			vm.Push(v)

		case bytecode.Call:
			if err := vm.call(int(operand)); err != nil {
				return err
			}

		case bytecode.Ret:
			y := vm.Pop()
			vm.Stack = vm.Stack[:fr.bp]
			vm.frames = vm.frames[:len(vm.frames)-1]
			vm.Push(y)

		case bytecode.Jmp:
			fr.ip = uint32(int64(fr.ip) + int64(relOffset(operand)))

		case bytecode.Cjmp:
			if !value.Truthy(vm.Pop()) {
				fr.ip = uint32(int64(fr.ip) + int64(relOffset(operand)))
			}

		default:
			return fmt.Errorf("internal error: unimplemented opcode %s", op)
		}
	}
	return nil
}

// relOffset reinterprets a jmp/cjmp operand, decoded as an unsigned 16-bit
// quantity, as the signed relative distance PatchBranch originally wrote.
// Backward branches, e.g. while's loop-closing jmp, need a negative
// distance.
func relOffset(operand uint64) int16 {
	return int16(uint16(operand))
}

func arithName(op bytecode.Opcode) string {
	switch op {
	case bytecode.Add:
		return "add"
	case bytecode.Sub:
		return "sub"
	case bytecode.Mult:
		return "mult"
	case bytecode.Div:
		return "div"
	case bytecode.Mod:
		return "mod"
	default:
		panic("machine: not an arithmetic opcode: " + op.String())
	}
}

func compareName(op bytecode.Opcode) string {
	switch op {
	case bytecode.Lt:
		return "lt"
	case bytecode.Le:
		return "le"
	case bytecode.Gt:
		return "gt"
	case bytecode.Ge:
		return "ge"
	default:
		panic("machine: not a comparison opcode: " + op.String())
	}
}
