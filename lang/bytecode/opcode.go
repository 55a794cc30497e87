// Package bytecode implements the variable-length instruction set:
// canonical opcode numbers, the 2-bit size-tag encoder and decoder, the
// append-only Buffer and ConstantPool the compiler emits into, and a
// disassembler used by the `disasm` CLI command and by tests.
package bytecode

import "fmt"

// Opcode identifies an instruction. Canonical values are constrained to the
// low 6 bits (≤ 63); the two high bits of the byte actually written to a
// Buffer carry the size tag (see Encode).
type Opcode uint8

const ( //nolint:revive
	Nop Opcode = iota

	// binary arithmetic
	Add
	Sub
	Mult
	Div
	Mod

	// binary comparisons
	Eq
	Ne
	Ge
	Le
	Gt
	Lt

	// container operations
	Set
	Get
	Anew

	// stack/frame operations
	Pop
	Ret
	Load
	Store
	Call
	Konst

	// constants
	Nil
	True
	False

	// control flow -- always encoded with a fixed 2-byte operand
	Jmp
	Cjmp

	// OpcodeMax is the highest valid canonical opcode value.
	OpcodeMax = Cjmp
)

// hasOperand reports whether op takes an inline integer operand.
func hasOperand(op Opcode) bool {
	switch op {
	case Nop, Add, Sub, Mult, Div, Mod, Eq, Ne, Ge, Le, Gt, Lt, Set, Get, Nil, True, False, Ret:
		return false
	default:
		return true
	}
}

// isBranch reports whether op is one of the two branch opcodes, whose
// operand is always encoded with the fixed 2-byte width regardless of the
// minimization rule, so branch targets can be patched in place.
func isBranch(op Opcode) bool {
	return op == Jmp || op == Cjmp
}

var opcodeNames = [...]string{
	Nop:   "nop",
	Add:   "add",
	Sub:   "sub",
	Mult:  "mult",
	Div:   "div",
	Mod:   "mod",
	Eq:    "eq",
	Ne:    "ne",
	Ge:    "ge",
	Le:    "le",
	Gt:    "gt",
	Lt:    "lt",
	Set:   "set",
	Get:   "get",
	Anew:  "anew",
	Pop:   "pop",
	Ret:   "ret",
	Load:  "load",
	Store: "store",
	Call:  "call",
	Konst: "konst",
	Nil:   "nil",
	True:  "true",
	False: "false",
	Jmp:   "jmp",
	Cjmp:  "cjmp",
}

func (op Opcode) String() string {
	if op <= OpcodeMax {
		if name := opcodeNames[op]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("illegal opcode (%d)", op)
}

var reverseLookupOpcode = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeNames))
	for op, name := range opcodeNames {
		if name != "" {
			m[name] = Opcode(op)
		}
	}
	return m
}()

// Lookup returns the Opcode named by name, the reverse of Opcode.String.
func Lookup(name string) (Opcode, bool) {
	op, ok := reverseLookupOpcode[name]
	return op, ok
}
