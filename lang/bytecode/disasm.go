package bytecode

import (
	"fmt"
	"io"
)

// Disassemble writes a human-readable listing of code to w, one instruction
// per line as "<addr>: <op> <operand>", resolving konst operands against
// pool and rendering branch operands as the signed relative distances they
// are. There is no inverse assembler: bytecode is regenerated on each load,
// never persisted.
func Disassemble(w io.Writer, code []byte, pool *ConstantPool) error {
	for ip := 0; ip < len(code); {
		op, operand, next := Decode(code, ip)

		var err error
		switch {
		case !hasOperand(op):
			_, err = fmt.Fprintf(w, "%4d: %s\n", ip, op)
		case isBranch(op):
			_, err = fmt.Fprintf(w, "%4d: %-6s %d\n", ip, op, int16(uint16(operand)))
		case op == Konst && pool != nil && operand < uint64(len(pool.Values)):
			_, err = fmt.Fprintf(w, "%4d: %-6s %d (%s)\n", ip, op, operand, pool.Get(operand))
		default:
			_, err = fmt.Fprintf(w, "%4d: %-6s %d\n", ip, op, operand)
		}
		if err != nil {
			return err
		}
		ip = next
	}
	return nil
}
