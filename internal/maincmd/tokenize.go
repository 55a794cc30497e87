package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/bslang/lang/scanner"
	"github.com/mna/bslang/lang/token"
)

// Tokenize implements the `tokenize` subcommand: scan each file and print
// its token stream, one token per line.
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(stdio, args...)
}

// TokenizeFiles is the reusable implementation Tokenize calls, kept as a
// standalone function so tests can exercise it without going through the
// full Cmd dispatch.
func TokenizeFiles(stdio mainer.Stdio, files ...string) error {
	var firstErr error
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			firstErr = printError(stdio, err)
			continue
		}
		for _, tok := range scanner.ScanAll(string(src)) {
			pos := token.PositionOf(string(src), tok.From)
			fmt.Fprintf(stdio.Stdout, "%s: %s: %s\n", path, pos, tok.Kind)
			if tok.Kind == token.Error {
				firstErr = printError(stdio, fmt.Errorf("%s: invalid token at %s", path, pos))
			}
		}
	}
	return firstErr
}
