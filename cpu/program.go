package cpu

import (
	"fmt"
	"iter"
	"strings"
)

// Opcode represents a line of assembled code with its source location and generated bytes.
type Opcode struct {
	LineNo    int      // Source line number.
	Ip        int      // Address of the first byte.
	Words     []string // Source words.
	Bytes     []byte   // Instruction word, or raw data.
	LinkLabel string   // Label linked into the instruction value.
	Data      bool     // Set for raw data directives.
}

// Instruction decodes the opcode's instruction word.
func (op *Opcode) Instruction() (ins Instruction, ok bool) {
	if op.Data {
		return
	}

	ins, err := Decode(op.Bytes)
	ok = err == nil
	return
}

type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Offset int // Byte offset of ip into the opcode.
}

// Debug finds the listing entry covering ip.
func (prog *Program) Debug(ip uint32) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int64(ip) >= int64(op.Ip) && int64(ip) < int64(op.Ip+len(op.Bytes)) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Offset: int(ip) - op.Ip,
			}
			break
		}
	}

	return
}

// Binary returns the memory image of the program, loaded at address 0.
func (prog *Program) Binary() (bin []byte) {
	for _, op := range prog.Opcodes {
		if len(bin) < op.Ip {
			bin = append(bin, make([]byte, op.Ip-len(bin))...)
		}
		bin = append(bin[:op.Ip], op.Bytes...)
	}

	return
}

// Instructions iterates over the instructions of the program, by address.
func (prog *Program) Instructions() iter.Seq2[uint32, Instruction] {
	return func(yield func(ip uint32, ins Instruction) bool) {
		for n := range prog.Opcodes {
			ins, ok := prog.Opcodes[n].Instruction()
			if !ok {
				continue
			}
			if !yield(uint32(prog.Opcodes[n].Ip), ins) {
				return
			}
		}
	}
}

// Listing returns an address annotated listing of the program.
func (prog *Program) Listing() (text string) {
	for _, op := range prog.Opcodes {
		hex := make([]string, 0, len(op.Bytes))
		for _, b := range op.Bytes {
			hex = append(hex, fmt.Sprintf("%02x", b))
		}
		text += fmt.Sprintf("%04x: %-17s  %v\n", op.Ip, strings.Join(hex, " "), strings.Join(op.Words, " "))
	}

	return
}

// Disassemble decodes an image into a program listing. Trailing bytes
// that do not form a whole instruction word, and words that are not valid
// instructions, are listed as data.
func Disassemble(image []byte) (prog *Program) {
	prog = &Program{}

	for ip := 0; ip < len(image); ip += INSTRUCTION_SIZE {
		op := Opcode{Ip: ip}
		if ip+INSTRUCTION_SIZE > len(image) {
			op.Bytes = image[ip:]
			op.Data = true
			op.Words = []string{".byte"}
			for _, b := range op.Bytes {
				op.Words = append(op.Words, fmt.Sprintf("%#x", b))
			}
		} else {
			op.Bytes = image[ip : ip+INSTRUCTION_SIZE]
			ins, _ := Decode(op.Bytes)
			op.Data = !ins.Valid()
			op.Words = strings.Fields(ins.String())
		}
		prog.Opcodes = append(prog.Opcodes, op)
	}

	return
}
