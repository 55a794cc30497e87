package natives_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/mna/bslang/lang/natives"
	"github.com/mna/bslang/lang/value"
	"github.com/stretchr/testify/require"
)

// fakeFacade is a minimal value.Facade for exercising natives in isolation,
// without a real machine.
type fakeFacade struct {
	stack []value.Value
	out   bytes.Buffer
}

func (f *fakeFacade) Push(v value.Value) { f.stack = append(f.stack, v) }
func (f *fakeFacade) PushNil()           { f.Push(value.NilValue) }
func (f *fakeFacade) Pop() value.Value {
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v
}
func (f *fakeFacade) Stdout() io.Writer { return &f.out }

// FCall is never exercised here: none of the built-in natives re-enter the
// machine.
func (f *fakeFacade) FCall(argc int) error { return nil }

func (f *fakeFacade) ArrayLen(v value.Value) (int, error) {
	arr, ok := v.(*value.Array)
	if !ok {
		return 0, &value.RuntimeError{Kind: value.InvalidOperands}
	}
	return arr.Len(), nil
}

func (f *fakeFacade) ArrayPush(v, elem value.Value) error {
	arr, ok := v.(*value.Array)
	if !ok {
		return &value.RuntimeError{Kind: value.InvalidOperands}
	}
	arr.Elems = append(arr.Elems, elem)
	return nil
}

func (f *fakeFacade) ArrayPop(v value.Value) (value.Value, error) {
	arr, ok := v.(*value.Array)
	if !ok {
		return nil, &value.RuntimeError{Kind: value.InvalidOperands}
	}
	if len(arr.Elems) == 0 {
		return nil, &value.RuntimeError{Kind: value.IndexOutOfBound}
	}
	last := arr.Elems[len(arr.Elems)-1]
	arr.Elems = arr.Elems[:len(arr.Elems)-1]
	return last, nil
}

func TestPrint(t *testing.T) {
	f := &fakeFacade{}
	f.Push(value.String("hello"))
	require.NoError(t, natives.Print(f))
	require.Equal(t, "hello\n", f.out.String())
	require.Equal(t, value.NilValue, f.Pop())
}

func TestLenArray(t *testing.T) {
	f := &fakeFacade{}
	f.Push(value.NewArray([]value.Value{value.Number(1), value.Number(2)}))
	require.NoError(t, natives.Len(f))
	require.Equal(t, value.Number(2), f.Pop())
}

func TestLenString(t *testing.T) {
	f := &fakeFacade{}
	f.Push(value.String("abc"))
	require.NoError(t, natives.Len(f))
	require.Equal(t, value.Number(3), f.Pop())

	// rune count, not byte count
	f.Push(value.String("héllo"))
	require.NoError(t, natives.Len(f))
	require.Equal(t, value.Number(5), f.Pop())
}

func TestPushPop(t *testing.T) {
	f := &fakeFacade{}
	arr := value.NewArray(nil)
	f.Push(arr)
	f.Push(value.Number(1))
	// push(arr, elem): call-site order is arr then elem, so elem is popped first.
	require.NoError(t, natives.Push(f))
	require.Equal(t, value.NilValue, f.Pop())
	require.Equal(t, 1, arr.Len())

	f.Push(arr)
	require.NoError(t, natives.Pop(f))
	require.Equal(t, value.Number(1), f.Pop())
	require.Equal(t, 0, arr.Len())
}

func TestPopEmpty(t *testing.T) {
	f := &fakeFacade{}
	f.Push(value.NewArray(nil))
	err := natives.Pop(f)
	require.Error(t, err)
	var rerr *value.RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, value.IndexOutOfBound, rerr.Kind)
}
