// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":           "0",
	"FORMAT_VERSION":   fmt.Sprintf("%v", FORMAT_VERSION),
	"INSTRUCTION_SIZE": fmt.Sprintf("%v", INSTRUCTION_SIZE),
	"MEMORY_SIZE":      fmt.Sprintf("%v", MEMORY_SIZE),
	"STACK_TOP":        fmt.Sprintf("%v", MEMORY_SIZE-4),
}

// Assembler is a single pass macro assembler for the r9 system.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of jump labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
		if len(word) == 0 {
			err = ErrParseNumber("~")
			return
		}
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(strings.Trim(word, "'"))
		return
	}
	v64, err := strconv.ParseInt(word, 0, 34)
	if err != nil || v64 > 0xffffffff || v64 < -int64(0x80000000) {
		err = ErrParseNumber(word)
		return
	}

	value = uint32(v64)

	if invert {
		value = ^value
	}

	return
}

var labelRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// valueOrLabel returns a numeric value, or the name of a label to link.
func (asm *Assembler) valueOrLabel(word string) (value uint32, label string, err error) {
	value, err = asm.valueOf(word)
	if err != nil && labelRe.MatchString(word) {
		if _, is_reg := ParseRegister(word); !is_reg {
			label = word
			err = nil
		}
	}

	return
}

// register returns the register named by word.
func (asm *Assembler) register(word string) (reg Register, err error) {
	reg, ok := ParseRegister(word)
	if !ok {
		err = ErrRegisterInvalid
	}

	return
}

// regOrImm determines if a word is a register (mode 0), or an immediate value (mode 1).
func (asm *Assembler) regOrImm(word string) (mode uint8, reg Register, value uint32, label string, err error) {
	reg, is_reg := ParseRegister(word)
	if is_reg {
		return
	}

	mode = 1
	value, label, err = asm.valueOrLabel(word)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 uint32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(int(value32))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

var (
	charRe  = regexp.MustCompile(`'\\?[^']'`)
	parenRe = regexp.MustCompile(`\$\([^\$]*\)`)
)

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = charRe.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "0":
				str = "\000"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = parenRe.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentIp()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", fmt.Sprintf("%v_%v_", name, lineno))
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentIp gets the address of the next emitted byte.
func (asm *Assembler) currentIp() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Ip + len(last.Bytes)
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		label := op.LinkLabel
		ip, ok := asm.Label[label]
		if !ok {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			err = ErrLabelMissing(label)
			return
		}
		binary.LittleEndian.PutUint32(op.Bytes[2:INSTRUCTION_SIZE], uint32(ip))
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// widthMap maps mnemonic suffixes to access widths.
var widthMap = map[string]CodeWidth{
	"b": WIDTH_BYTE,
	"w": WIDTH_WORD,
	"d": WIDTH_DWORD,
}

// aluMap maps two operand register-or-immediate opcode names.
var aluMap = map[string]CodeOp{
	"add": OP_ADD,
	"sub": OP_SUB,
	"or":  OP_OR,
	"and": OP_AND,
	"xor": OP_XOR,
	"shr": OP_SHR,
	"shl": OP_SHL,
}

// condMap maps jump opcode names to their conditions.
var condMap = map[string]CodeCond{
	"jz":   COND_ZERO,
	"jpl":  COND_POSITIVE,
	"jmi":  COND_NEGATIVE,
	"jump": COND_ALWAYS,
}

// dataMap maps data directives to their element widths.
var dataMap = map[string]CodeWidth{
	".byte":  WIDTH_BYTE,
	".word":  WIDTH_WORD,
	".dword": WIDTH_DWORD,
}

// argCount checks the number of arguments following the mnemonic.
func argCount(words []string, count int) (err error) {
	switch {
	case len(words)-1 < count:
		err = ErrOpcodeValueMissing
	case len(words)-1 > count:
		err = ErrOpcodeExtraArgs
	}

	return
}

// parseData evaluates a data directive.
func (asm *Assembler) parseData(width CodeWidth, values []string) (data []byte, err error) {
	if len(values) == 0 {
		err = ErrOpcodeValueMissing
		return
	}

	size := width.Size()
	mask := uint32(0xffffffff) >> (32 - 8*size)
	for _, word := range values {
		var value uint32
		value, err = asm.valueOf(word)
		if err != nil {
			return
		}
		if value > mask && value < ^(mask>>1) {
			err = ErrDataRange
			return
		}
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], value)
		data = append(data, buf[:size]...)
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var ins Instruction
	var data []byte
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil {
			return
		}
		opcode := Opcode{LineNo: lineno, Ip: asm.currentIp(), Words: initial_words, LinkLabel: label}
		if data != nil {
			opcode.Bytes = data
			opcode.Data = true
		} else {
			opcode.Bytes = ins.Bytes()
		}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	mnemonic, suffix, has_suffix := strings.Cut(words[0], ".")
	if len(mnemonic) == 0 {
		// Directive
		width, ok := dataMap[words[0]]
		if !ok {
			err = ErrInstructionInvalid
			return
		}
		data, err = asm.parseData(width, words[1:])
		return
	}

	width := WIDTH_DWORD
	if has_suffix {
		var ok bool
		width, ok = widthMap[suffix]
		if !ok {
			err = ErrOpcodeInvalid
			return
		}
		switch mnemonic {
		case "load", "store", "push":
		default:
			err = ErrOpcodeInvalid
			return
		}
	}

	var dest, src Register
	var mode uint8
	var value uint32

	switch mnemonic {
	case "nop":
		err = argCount(words, 0)
		ins = MakeInstruction(OP_NOP, 0, 0, 0, 0, 0)
	case "halt":
		err = argCount(words, 0)
		ins = MakeInstruction(OP_HALT, 0, 0, 0, 0, 0)
	case "load":
		// load REG IMM, load.W REG ADDR
		if err = argCount(words, 2); err != nil {
			return
		}
		if dest, err = asm.register(words[1]); err != nil {
			return
		}
		if value, label, err = asm.valueOrLabel(words[2]); err != nil {
			return
		}
		if has_suffix {
			mode = 1
		} else {
			width = WIDTH_BYTE
		}
		ins = MakeInstruction(OP_LOAD, mode, width, dest, 0, value)
	case "store":
		// store.W ADDR REG
		if !has_suffix {
			err = ErrOpcodeInvalid
			return
		}
		if err = argCount(words, 2); err != nil {
			return
		}
		if value, label, err = asm.valueOrLabel(words[1]); err != nil {
			return
		}
		if dest, err = asm.register(words[2]); err != nil {
			return
		}
		ins = MakeInstruction(OP_STORE, 1, width, dest, 0, value)
	case "move":
		// move DST SRC
		if err = argCount(words, 2); err != nil {
			return
		}
		if dest, err = asm.register(words[1]); err != nil {
			return
		}
		if src, err = asm.register(words[2]); err != nil {
			return
		}
		ins = MakeInstruction(OP_STORE, 0, 0, dest, src, 0)
	case "add", "sub", "or", "and", "xor", "shr", "shl":
		if err = argCount(words, 2); err != nil {
			return
		}
		if dest, err = asm.register(words[1]); err != nil {
			return
		}
		if mode, src, value, label, err = asm.regOrImm(words[2]); err != nil {
			return
		}
		ins = MakeInstruction(aluMap[mnemonic], mode, 0, dest, src, value)
	case "mul", "div", "muls", "divs":
		if err = argCount(words, 2); err != nil {
			return
		}
		if dest, err = asm.register(words[1]); err != nil {
			return
		}
		if src, err = asm.register(words[2]); err != nil {
			return
		}
		op := OP_MUL
		if strings.HasPrefix(mnemonic, "div") {
			op = OP_DIV
		}
		if strings.HasSuffix(mnemonic, "s") {
			mode = 1
		}
		ins = MakeInstruction(op, mode, 0, dest, src, 0)
	case "not":
		if err = argCount(words, 1); err != nil {
			return
		}
		if mode, dest, value, label, err = asm.regOrImm(words[1]); err != nil {
			return
		}
		ins = MakeInstruction(OP_NOT, mode, 0, dest, 0, value)
	case "push":
		if err = argCount(words, 1); err != nil {
			return
		}
		if dest, err = asm.register(words[1]); err != nil {
			return
		}
		ins = MakeInstruction(OP_STACK, 1, width, dest, 0, 0)
	case "pop":
		if err = argCount(words, 1); err != nil {
			return
		}
		if dest, err = asm.register(words[1]); err != nil {
			return
		}
		ins = MakeInstruction(OP_STACK, 0, WIDTH_DWORD, dest, 0, 0)
	case "jump", "jz", "jpl", "jmi":
		if err = argCount(words, 1); err != nil {
			return
		}
		cond := condMap[mnemonic]
		if mode, dest, value, label, err = asm.regOrImm(words[1]); err != nil {
			err = ErrTargetInvalid
			return
		}
		if mode == 0 {
			ins = MakeJump(cond, dest)
		} else {
			ins = MakeJumpImm(cond, value)
		}
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}
