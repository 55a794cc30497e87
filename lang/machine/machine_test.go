package machine_test

import (
	"bytes"
	"testing"

	"github.com/mna/bslang/lang/compiler"
	"github.com/mna/bslang/lang/machine"
	"github.com/mna/bslang/lang/value"
	"github.com/stretchr/testify/require"
)

// runMain compiles src, calls main() with no arguments, and returns the
// popped result.
func runMain(t *testing.T, src string) (value.Value, *machine.VM) {
	t.Helper()
	res, err := compiler.Compile(src)
	require.NoError(t, err)

	vm := machine.New()
	var out bytes.Buffer
	vm.Stdout = &out
	vm.SetProgram(res.Buffer, res.Pool, res.EntryConstID)

	vm.Push(res.Pool.Get(res.EntryConstID))
	require.NoError(t, vm.FCall(0))
	require.NoError(t, vm.Err())
	return vm.Pop(), vm
}

func TestArithmeticPrecedence(t *testing.T) {
	v, _ := runMain(t, `fn main() { let a = 1 + 2 * 3; return a }`)
	require.Equal(t, value.Number(7), v)
}

func TestArrayLiteralAndIndex(t *testing.T) {
	v, _ := runMain(t, `fn main() { let xs = [10, 20, 30]; return xs[1] }`)
	require.Equal(t, value.Number(20), v)
}

func TestFunctionCall(t *testing.T) {
	v, _ := runMain(t, `fn add(a,b) { return a + b } fn main() { return add(2, 5) }`)
	require.Equal(t, value.Number(7), v)
}

func TestPrintNative(t *testing.T) {
	v, vm := runMain(t, `fn main() { print('hi'); return nil }`)
	out := vm.Stdout.(*bytes.Buffer)
	require.Equal(t, "hi\n", out.String())
	require.Equal(t, value.NilValue, v)
}

func TestPushLenNatives(t *testing.T) {
	v, _ := runMain(t, `fn main() { let a = [1,2]; push(a, 3); return len(a) }`)
	require.Equal(t, value.Number(3), v)
}

func TestDivisionByZero(t *testing.T) {
	res, err := compiler.Compile(`fn main() { return 1 / 0 }`)
	require.NoError(t, err)

	vm := machine.New()
	vm.SetProgram(res.Buffer, res.Pool, res.EntryConstID)
	vm.Push(res.Pool.Get(res.EntryConstID))
	require.Error(t, vm.FCall(0))

	var rerr *value.RuntimeError
	require.ErrorAs(t, vm.Err(), &rerr)
	require.Equal(t, value.DivisionByZero, rerr.Kind)
}

func TestModuloByZero(t *testing.T) {
	res, err := compiler.Compile(`fn main() { return 1 % 0 }`)
	require.NoError(t, err)

	vm := machine.New()
	vm.SetProgram(res.Buffer, res.Pool, res.EntryConstID)
	vm.Push(res.Pool.Get(res.EntryConstID))
	require.Error(t, vm.FCall(0))

	var rerr *value.RuntimeError
	require.ErrorAs(t, vm.Err(), &rerr)
	require.Equal(t, value.DivisionByZero, rerr.Kind)
}

func TestIndexOutOfBound(t *testing.T) {
	res, err := compiler.Compile(`fn main() { let xs = [1,2]; return xs[2] }`)
	require.NoError(t, err)

	vm := machine.New()
	vm.SetProgram(res.Buffer, res.Pool, res.EntryConstID)
	vm.Push(res.Pool.Get(res.EntryConstID))
	require.Error(t, vm.FCall(0))

	var rerr *value.RuntimeError
	require.ErrorAs(t, vm.Err(), &rerr)
	require.Equal(t, value.IndexOutOfBound, rerr.Kind)
}

func TestCallingNonFunction(t *testing.T) {
	res, err := compiler.Compile(`fn main() { let a = 1; return a() }`)
	require.NoError(t, err)

	vm := machine.New()
	vm.SetProgram(res.Buffer, res.Pool, res.EntryConstID)
	vm.Push(res.Pool.Get(res.EntryConstID))
	require.Error(t, vm.FCall(0))

	var rerr *value.RuntimeError
	require.ErrorAs(t, vm.Err(), &rerr)
	require.Equal(t, value.CallingNonFunction, rerr.Kind)
}

func TestArityTolerantCallFewerArgsPadWithNil(t *testing.T) {
	v, _ := runMain(t, `
		fn f(a, b) {
			if b == nil {
				return a
			}
			return a + b
		}
		fn main() { return f(1) }
	`)
	require.Equal(t, value.Number(1), v)
}

func TestArityTolerantCallMoreArgsDiscarded(t *testing.T) {
	v, _ := runMain(t, `fn f(a) { return a } fn main() { return f(1, 2, 3) }`)
	require.Equal(t, value.Number(1), v)
}

func TestWhileLoop(t *testing.T) {
	v, _ := runMain(t, `
		fn main() {
			let i = 0
			let total = 0
			while i < 5 {
				total = total + i
				i = i + 1
			}
			return total
		}
	`)
	require.Equal(t, value.Number(10), v)
}

func TestIfElse(t *testing.T) {
	v, _ := runMain(t, `
		fn abs(x) {
			if x < 0 {
				return 0 - x
			} else {
				return x
			}
		}
		fn main() { return abs(0 - 7) }
	`)
	require.Equal(t, value.Number(7), v)
}

func TestArrayIndexAssignment(t *testing.T) {
	v, _ := runMain(t, `
		fn main() {
			let a = [1, 2, 3]
			a[1] = 99
			return a[1]
		}
	`)
	require.Equal(t, value.Number(99), v)
}

func TestStringIndexing(t *testing.T) {
	v, _ := runMain(t, `fn main() { return 'hi'[1] }`)
	require.Equal(t, value.String("i"), v)
}

func TestNativeReentrantFCall(t *testing.T) {
	res, err := compiler.Compile(`
		fn double(x) { return x + x }
		fn main() { return nil }
	`)
	require.NoError(t, err)

	vm := machine.New()
	vm.SetProgram(res.Buffer, res.Pool, res.EntryConstID)

	var double value.Value
	for _, v := range res.Pool.Values {
		if fn, ok := v.(*value.Function); ok && !fn.IsNative() && fn.ParamCount == 1 {
			double = fn
		}
	}
	require.NotNil(t, double)

	// A native that calls back into the compiled double function with its
	// own argument, returning double's result.
	callback := value.NewNativeFunction("callback", 1, func(f value.Facade) error {
		arg := f.Pop()
		f.Push(double)
		f.Push(arg)
		return f.FCall(1)
	})

	vm.Push(callback)
	vm.Push(value.Number(21))
	require.NoError(t, vm.FCall(1))
	require.NoError(t, vm.Err())
	require.Equal(t, value.Number(42), vm.Pop())
}

func TestNestedBlockScopes(t *testing.T) {
	v, _ := runMain(t, `
		fn main() {
			let a = 1
			{
				let b = 2
				a = a + b
			}
			return a
		}
	`)
	require.Equal(t, value.Number(3), v)
}

func TestParamShadowedByLocal(t *testing.T) {
	v, _ := runMain(t, `
		fn f(a) {
			let b = a + 1
			let a = b
			return a
		}
		fn main() { return f(10) }
	`)
	require.Equal(t, value.Number(11), v)
}

func TestStringComparison(t *testing.T) {
	v, _ := runMain(t, `
		fn main() {
			if 'abc' < 'abd' {
				return true
			}
			return false
		}
	`)
	require.Equal(t, value.True, v)
}

func TestResetClearsState(t *testing.T) {
	res, err := compiler.Compile(`fn main() { return 1 / 0 }`)
	require.NoError(t, err)

	vm := machine.New()
	vm.SetProgram(res.Buffer, res.Pool, res.EntryConstID)
	vm.Push(res.Pool.Get(res.EntryConstID))
	require.Error(t, vm.FCall(0))
	require.Error(t, vm.Err())

	vm.Reset()
	require.NoError(t, vm.Err())
	require.Empty(t, vm.Stack)
}

func TestPopEmptyArrayNative(t *testing.T) {
	res, err := compiler.Compile(`fn main() { let a = []; return pop(a) }`)
	require.NoError(t, err)

	vm := machine.New()
	vm.SetProgram(res.Buffer, res.Pool, res.EntryConstID)
	vm.Push(res.Pool.Get(res.EntryConstID))
	require.Error(t, vm.FCall(0))

	var rerr *value.RuntimeError
	require.ErrorAs(t, vm.Err(), &rerr)
	require.Equal(t, value.IndexOutOfBound, rerr.Kind)
}
