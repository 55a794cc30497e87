package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/bslang/lang/bytecode"
	"github.com/mna/bslang/lang/compiler"
)

// Disasm implements the `disasm` subcommand: compile each file and print
// its bytecode listing. The compiler is single-pass with no separate AST,
// so the listing is the only inspectable compilation artifact.
func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return DisasmFiles(stdio, args...)
}

func DisasmFiles(stdio mainer.Stdio, files ...string) error {
	var firstErr error
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			firstErr = printError(stdio, err)
			continue
		}
		res, err := compiler.Compile(string(src))
		if err != nil {
			firstErr = printError(stdio, fmt.Errorf("%s: %w", path, err))
			continue
		}
		fmt.Fprintf(stdio.Stdout, "; %s (entry=%d)\n", path, res.EntryConstID)
		if err := bytecode.Disassemble(stdio.Stdout, res.Buffer.Code, res.Pool); err != nil {
			firstErr = printError(stdio, err)
		}
	}
	return firstErr
}
