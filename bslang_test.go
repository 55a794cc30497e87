package bslang_test

import (
	"bytes"
	"testing"

	"github.com/mna/bslang"
	"github.com/stretchr/testify/require"
)

func TestEndToEndArithmetic(t *testing.T) {
	e := bslang.New()
	require.NoError(t, e.Load(`fn main() { let a = 1 + 2 * 3; return a }`))
	e.Push(e.Entry())
	require.NoError(t, e.FCall(0))
	require.Equal(t, bslang.Number(7), e.Pop())
}

func TestEndToEndPrint(t *testing.T) {
	var out bytes.Buffer
	e := bslang.New()
	e.SetStdout(&out)
	require.NoError(t, e.Load(`fn main() { print('hi'); return nil }`))
	e.Push(e.Entry())
	require.NoError(t, e.FCall(0))
	require.Equal(t, bslang.Nil(), e.Pop())
	require.Equal(t, "hi\n", out.String())
}

func TestLoadCompileErrorIsStructured(t *testing.T) {
	e := bslang.New()
	err := e.Load(`fn foo() { return 1 }`)
	require.Error(t, err)
	var cerr *bslang.Error
	require.ErrorAs(t, err, &cerr)
}

func TestRuntimeErrorThenReset(t *testing.T) {
	e := bslang.New()
	require.NoError(t, e.Load(`fn main() { return 1 / 0 }`))
	e.Push(e.Entry())
	require.Error(t, e.FCall(0))

	var rerr *bslang.RuntimeError
	require.ErrorAs(t, e.Err(), &rerr)

	e.Reset()
	require.NoError(t, e.Err())
}

func TestHostArrayHelpers(t *testing.T) {
	e := bslang.New()
	require.NoError(t, e.Load(`fn main() { return [1, 2] }`))
	e.Push(e.Entry())
	require.NoError(t, e.FCall(0))

	arr := e.Pop()
	e.Push(arr)
	require.NoError(t, e.ArrayPush(bslang.Number(3)))
	n, err := e.ArrayLen()
	require.NoError(t, err)
	require.Equal(t, 3, n)

	last, err := e.ArrayPop()
	require.NoError(t, err)
	require.Equal(t, bslang.Number(3), last)
}
