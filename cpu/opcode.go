package cpu

import (
	"encoding/binary"
	"fmt"
)

const (
	FORMAT_VERSION   = 1 // Instruction encoding version.
	INSTRUCTION_SIZE = 6 // Bytes per instruction word.
)

// CodeOp is an opcode.
type CodeOp int

//go:generate go tool stringer -linecomment -type=CodeOp
const (
	OP_NOP   = CodeOp(0)  // nop
	OP_LOAD  = CodeOp(1)  // load
	OP_STORE = CodeOp(2)  // store
	OP_ADD   = CodeOp(3)  // add
	OP_SUB   = CodeOp(4)  // sub
	OP_MUL   = CodeOp(5)  // mul
	OP_DIV   = CodeOp(6)  // div
	OP_OR    = CodeOp(7)  // or
	OP_AND   = CodeOp(8)  // and
	OP_XOR   = CodeOp(9)  // xor
	OP_NOT   = CodeOp(10) // not
	OP_SHR   = CodeOp(11) // shr
	OP_SHL   = CodeOp(12) // shl
	OP_STACK = CodeOp(13) // stack
	OP_JUMP  = CodeOp(14) // jump
	OP_HALT  = CodeOp(15) // halt
)

// Number of defined opcodes. OP_STACK pushes in mode 1, and pops in mode 0.
const OP_COUNT = 16

// Valid returns true if the opcode is part of the instruction set.
func (op CodeOp) Valid() bool {
	return op >= 0 && op < OP_COUNT
}

// CodeWidth is the memory access granularity.
type CodeWidth int

//go:generate go tool stringer -linecomment -type=CodeWidth
const (
	WIDTH_BYTE  = CodeWidth(0) // b
	WIDTH_WORD  = CodeWidth(1) // w
	WIDTH_DWORD = CodeWidth(2) // d
)

// Size returns the access size in bytes, or 0 for an invalid width.
func (width CodeWidth) Size() uint32 {
	switch width {
	case WIDTH_BYTE:
		return 1
	case WIDTH_WORD:
		return 2
	case WIDTH_DWORD:
		return 4
	}
	return 0
}

// Valid returns true if the width is a memory access width.
func (width CodeWidth) Valid() bool {
	return width.Size() != 0
}

// CodeCond is a JUMP condition, carried in the width field and
// evaluated against register c: zero, sign clear, sign set, or always.
type CodeCond int

//go:generate go tool stringer -linecomment -type=CodeCond
const (
	COND_ZERO     = CodeCond(0) // jz
	COND_POSITIVE = CodeCond(1) // jpl
	COND_NEGATIVE = CodeCond(2) // jmi
	COND_ALWAYS   = CodeCond(3) // jump
)

// Taken returns true if the condition holds for flag.
func (cond CodeCond) Taken(flag uint32) bool {
	switch cond {
	case COND_ZERO:
		return flag == 0
	case COND_POSITIVE:
		return int32(flag) >= 0
	case COND_NEGATIVE:
		return int32(flag) < 0
	}
	return true
}

// Instruction is a decoded instruction word.
//
// Byte 0 holds the opcode in bits 0-4, the width in bits 5-6 and the
// mode in bit 7. Byte 1 holds dest in bits 0-3 and src in bits 4-7.
// Bytes 2-5 hold the little-endian value.
type Instruction struct {
	Op    CodeOp    // 5 bits
	Mode  uint8     // 1 bit, opcode specific operand variant
	Width CodeWidth // 2 bits, access width or jump condition
	Dest  Register  // 4 bits
	Src   Register  // 4 bits
	Value uint32
}

// MakeInstruction creates an instruction; fields are masked to their encoded widths.
func MakeInstruction(op CodeOp, mode uint8, width CodeWidth, dest, src Register, value uint32) Instruction {
	return Instruction{
		Op:    op & 0x1f,
		Mode:  mode & 0x1,
		Width: width & 0x3,
		Dest:  dest & 0xf,
		Src:   src & 0xf,
		Value: value,
	}
}

// MakeJump creates a JUMP to a register (mode 0) target.
func MakeJump(cond CodeCond, target Register) Instruction {
	return MakeInstruction(OP_JUMP, 0, CodeWidth(cond), target, 0, 0)
}

// MakeJumpImm creates a JUMP to an immediate (mode 1) target.
func MakeJumpImm(cond CodeCond, target uint32) Instruction {
	return MakeInstruction(OP_JUMP, 1, CodeWidth(cond), 0, 0, target)
}

// Decode unpacks an instruction word from the first INSTRUCTION_SIZE bytes of buf.
func Decode(buf []byte) (ins Instruction, err error) {
	if len(buf) < INSTRUCTION_SIZE {
		err = ErrOpcodeShort
		return
	}

	ins = Instruction{
		Op:    CodeOp(buf[0] & 0x1f),
		Width: CodeWidth((buf[0] >> 5) & 0x3),
		Mode:  (buf[0] >> 7) & 0x1,
		Dest:  Register(buf[1] & 0xf),
		Src:   Register((buf[1] >> 4) & 0xf),
		Value: binary.LittleEndian.Uint32(buf[2:6]),
	}

	return
}

// Encode packs the instruction into an instruction word.
func (ins Instruction) Encode() (word [INSTRUCTION_SIZE]byte) {
	word[0] = byte(ins.Op&0x1f) | byte(ins.Width&0x3)<<5 | (ins.Mode&0x1)<<7
	word[1] = byte(ins.Dest&0xf) | byte(ins.Src&0xf)<<4
	binary.LittleEndian.PutUint32(word[2:], ins.Value)
	return
}

// Bytes returns the encoded instruction word as a slice.
func (ins Instruction) Bytes() []byte {
	word := ins.Encode()
	return word[:]
}

// Cond returns the JUMP condition carried in the width field.
func (ins Instruction) Cond() CodeCond {
	return CodeCond(ins.Width)
}

// Valid returns true if the opcode, and every width and register field the
// opcode uses, is in range. Only valid instructions disassemble to mnemonics.
func (ins Instruction) Valid() bool {
	reg := ins.Mode == 1
	switch ins.Op {
	case OP_NOP, OP_HALT:
		return true
	case OP_LOAD:
		return ins.Dest.Valid() && (ins.Mode == 0 || ins.Width.Valid())
	case OP_STORE:
		return ins.Dest.Valid() && (ins.Width.Valid() || ins.Mode == 0) && (reg || ins.Src.Valid())
	case OP_MUL, OP_DIV:
		return ins.Dest.Valid() && ins.Src.Valid()
	case OP_ADD, OP_SUB, OP_OR, OP_AND, OP_XOR, OP_SHR, OP_SHL:
		return ins.Dest.Valid() && (reg || ins.Src.Valid())
	case OP_NOT, OP_JUMP:
		return reg || ins.Dest.Valid()
	case OP_STACK:
		return ins.Dest.Valid() && (ins.Mode == 0 || ins.Width.Valid())
	}

	return false
}

// String returns the assembly language representation of this instruction.
// Invalid instructions are shown as raw .byte data.
func (ins Instruction) String() (out string) {
	dest := ins.Dest.String()
	src := ins.Src.String()
	value := fmt.Sprintf("%#x", ins.Value)

	op := ins.Op
	if !ins.Valid() {
		op = -1
	}

	switch op {
	case OP_NOP, OP_HALT:
		out = ins.Op.String()
	case OP_LOAD:
		if ins.Mode == 0 {
			out = fmt.Sprintf("load %v %v", dest, value)
		} else {
			out = fmt.Sprintf("load.%v %v %v", ins.Width, dest, value)
		}
	case OP_STORE:
		if ins.Mode == 0 {
			out = fmt.Sprintf("move %v %v", dest, src)
		} else {
			out = fmt.Sprintf("store.%v %v %v", ins.Width, value, dest)
		}
	case OP_MUL, OP_DIV:
		name := ins.Op.String()
		if ins.Mode == 1 {
			name += "s"
		}
		out = fmt.Sprintf("%v %v %v", name, dest, src)
	case OP_NOT:
		if ins.Mode == 0 {
			out = fmt.Sprintf("not %v", dest)
		} else {
			out = fmt.Sprintf("not %v", value)
		}
	case OP_STACK:
		if ins.Mode == 1 {
			out = fmt.Sprintf("push.%v %v", ins.Width, dest)
		} else {
			out = fmt.Sprintf("pop %v", dest)
		}
	case OP_JUMP:
		if ins.Mode == 0 {
			out = fmt.Sprintf("%v %v", ins.Cond(), dest)
		} else {
			out = fmt.Sprintf("%v %v", ins.Cond(), value)
		}
	case OP_ADD, OP_SUB, OP_OR, OP_AND, OP_XOR, OP_SHR, OP_SHL:
		if ins.Mode == 0 {
			out = fmt.Sprintf("%v %v %v", ins.Op, dest, src)
		} else {
			out = fmt.Sprintf("%v %v %v", ins.Op, dest, value)
		}
	default:
		word := ins.Encode()
		out = fmt.Sprintf(".byte %#x %#x %#x %#x %#x %#x", word[0], word[1], word[2], word[3], word[4], word[5])
	}

	return
}
