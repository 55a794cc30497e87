package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/bslang"
)

// Run implements the `run` subcommand: compile the file and execute its
// main function, printing the returned value, or the structured error if
// compilation or execution fails.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) != 1 {
		return printError(stdio, fmt.Errorf("run: expected exactly one file, got %d", len(args)))
	}
	return RunFile(stdio, args[0])
}

func RunFile(stdio mainer.Stdio, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return printError(stdio, err)
	}

	e := bslang.New()
	e.SetStdout(stdio.Stdout)
	if err := e.Load(string(src)); err != nil {
		return printError(stdio, fmt.Errorf("%s: %w", path, err))
	}

	e.Push(e.Entry())
	if err := e.FCall(0); err != nil {
		return printError(stdio, fmt.Errorf("%s: %w", path, err))
	}
	fmt.Fprintln(stdio.Stdout, e.Pop())
	return nil
}
