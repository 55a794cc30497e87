package maincmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"

	"github.com/mna/bslang/internal/maincmd"
)

func writeScript(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "main.bs", `fn main() { return 1 + 2 }`)

	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}
	require.NoError(t, maincmd.RunFile(stdio, path))
	require.Equal(t, "3\n", out.String())
}

func TestRunFileRuntimeError(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "main.bs", `fn main() { return 1 / 0 }`)

	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}
	require.Error(t, maincmd.RunFile(stdio, path))
	require.Contains(t, errOut.String(), "DivisionByZero")
}

func TestTokenizeFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "main.bs", `fn main() { return 1 }`)

	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}
	require.NoError(t, maincmd.TokenizeFiles(stdio, path))
	require.Contains(t, out.String(), "fn")
	require.Contains(t, out.String(), "identifier")
}

func TestDisasmFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "main.bs", `fn main() { return 1 }`)

	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}
	require.NoError(t, maincmd.DisasmFiles(stdio, path))
	require.Contains(t, out.String(), "konst")
	require.Contains(t, out.String(), "ret")
}
