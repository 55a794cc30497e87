package bytecode

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/mna/bslang/lang/value"
)

// Buffer is the append-only bytecode sequence the compiler emits into and
// the machine's dispatch loop reads from.
type Buffer struct {
	Code []byte
}

// Len returns the current size of the buffer, i.e. the address the next
// emitted instruction will occupy.
func (b *Buffer) Len() int { return len(b.Code) }

// Emit appends op with no operand and returns its address.
func (b *Buffer) Emit(op Opcode) int {
	addr := len(b.Code)
	b.Code = append(b.Code, byte(op))
	return addr
}

// EmitArg appends op with the given operand, minimized to the smallest of
// the 1/2/4/8-byte widths that fits, and returns the instruction's address.
func (b *Buffer) EmitArg(op Opcode, operand uint64) int {
	addr := len(b.Code)
	b.Code = Encode(b.Code, op, operand)
	return addr
}

// EmitBranch appends a branch opcode (jmp/cjmp) with a placeholder 2-byte
// operand and returns the address of the operand's first byte, so callers
// can later PatchBranch it once the destination is known.
func (b *Buffer) EmitBranch(op Opcode) int {
	b.Code = append(b.Code, tagByte(op, 1), 0, 0)
	return len(b.Code) - 2
}

// PatchBranch overwrites the 2-byte operand at operandAddr (as returned by
// EmitBranch) with the signed distance from the instruction following the
// branch to dest, so both forward branches (if/else) and backward ones
// (the loop-closing jmp in while) are representable in the same fixed
// 16-bit field. It fails if that distance does not fit in 16 bits.
func (b *Buffer) PatchBranch(operandAddr int, dest uint32) error {
	rel := int64(dest) - int64(operandAddr+2)
	if rel < math.MinInt16 || rel > math.MaxInt16 {
		return fmt.Errorf("branch distance %d exceeds 16-bit range", rel)
	}
	binary.BigEndian.PutUint16(b.Code[operandAddr:], uint16(int16(rel)))
	return nil
}

// Encode appends op (with the size tag folded into its high 2 bits) and, if
// it takes an operand, the minimal-width big-endian encoding of operand, to
// dst, returning the extended slice. Branch opcodes always use the fixed
// 2-byte width.
func Encode(dst []byte, op Opcode, operand uint64) []byte {
	if !hasOperand(op) {
		return append(dst, byte(op))
	}
	if isBranch(op) {
		dst = append(dst, tagByte(op, 1))
		return appendUint(dst, operand, 2)
	}
	switch {
	case operand <= 0xFF:
		dst = append(dst, tagByte(op, 0))
		return appendUint(dst, operand, 1)
	case operand <= 0xFFFF:
		dst = append(dst, tagByte(op, 1))
		return appendUint(dst, operand, 2)
	case operand <= 0xFFFFFFFF:
		dst = append(dst, tagByte(op, 2))
		return appendUint(dst, operand, 4)
	default:
		dst = append(dst, tagByte(op, 3))
		return appendUint(dst, operand, 8)
	}
}

func tagByte(op Opcode, tag byte) byte {
	return byte(op)&0x3F | tag<<6
}

func appendUint(dst []byte, v uint64, width int) []byte {
	var buf [8]byte
	switch width {
	case 1:
		buf[0] = byte(v)
	case 2:
		binary.BigEndian.PutUint16(buf[:2], uint16(v))
	case 4:
		binary.BigEndian.PutUint32(buf[:4], uint32(v))
	case 8:
		binary.BigEndian.PutUint64(buf[:8], v)
	}
	return append(dst, buf[:width]...)
}

// Decode reads a single instruction from code starting at ip, returning the
// opcode, its operand (0 if it has none), and the address of the
// instruction immediately following it.
func Decode(code []byte, ip int) (op Opcode, operand uint64, next int) {
	b := code[ip]
	tag := b >> 6
	op = Opcode(b & 0x3F)
	if !hasOperand(op) {
		return op, 0, ip + 1
	}
	width := 1 << tag // 1, 2, 4, or 8
	raw := code[ip+1 : ip+1+width]
	switch width {
	case 1:
		operand = uint64(raw[0])
	case 2:
		operand = uint64(binary.BigEndian.Uint16(raw))
	case 4:
		operand = uint64(binary.BigEndian.Uint32(raw))
	case 8:
		operand = binary.BigEndian.Uint64(raw)
	}
	return op, operand, ip + 1 + width
}

// ConstantPool is the append-only pool of constant values the compiler
// populates and `konst` indexes into.
type ConstantPool struct {
	Values []value.Value
}

// Add appends v and returns its index.
func (p *ConstantPool) Add(v value.Value) uint64 {
	p.Values = append(p.Values, v)
	return uint64(len(p.Values) - 1)
}

// Get returns the constant at idx.
func (p *ConstantPool) Get(idx uint64) value.Value {
	return p.Values[idx]
}
