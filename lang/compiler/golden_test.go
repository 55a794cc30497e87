package compiler_test

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mna/bslang/internal/filetest"
	"github.com/mna/bslang/lang/bytecode"
	"github.com/mna/bslang/lang/compiler"
)

var testUpdateCompilerTests = flag.Bool("test.update-compiler-tests", false, "If set, replace expected compiler test results with actual results.")

// TestCompileGolden compiles every testdata/in/*.bs file and compares its
// disassembly (and its compile error, if any) against the golden files in
// testdata/out.
func TestCompileGolden(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".bs") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			if err != nil {
				t.Fatal(err)
			}

			var out, eout strings.Builder
			res, err := compiler.Compile(string(src))
			if err != nil {
				eout.WriteString(err.Error() + "\n")
			} else if err := bytecode.Disassemble(&out, res.Buffer.Code, res.Pool); err != nil {
				t.Fatal(err)
			}
			filetest.DiffOutput(t, fi, out.String(), resultDir, testUpdateCompilerTests)
			filetest.DiffErrors(t, fi, eout.String(), resultDir, testUpdateCompilerTests)
		})
	}
}
