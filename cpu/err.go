package cpu

import (
	"errors"

	"github.com/ezrec/r9/translate"
)

var f = translate.From

var (
	// Engine faults
	ErrMemoryFault  = errors.New(f("memory fault"))
	ErrOpcodeFault  = errors.New(f("opcode fault"))
	ErrDivideByZero = errors.New(f("divide by zero"))
	ErrIndexFault   = errors.New(f("register index fault"))

	// Instruction decode errors
	ErrOpcodeWidth = errors.New(f("width"))
	ErrOpcodeDest  = errors.New(f("dest"))
	ErrOpcodeSrc   = errors.New(f("src"))
	ErrOpcodeShort = errors.New(f("short instruction word"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeMissing      = errors.New(f("opcode missing"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrTargetInvalid      = errors.New(f("target invalid"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
	ErrDataRange          = errors.New(f("data value out of range"))
)

// ErrInstruction locates an engine fault at the instruction that raised it.
type ErrInstruction struct {
	Ip          uint32
	Instruction Instruction
	Err         error
}

func (err *ErrInstruction) Error() string {
	return f("ip 0x%04x %v: %v", err.Ip, err.Instruction.String(), err.Err)
}

func (err *ErrInstruction) Unwrap() error {
	return err.Err
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}

// ErrFetch locates an instruction fetch fault.
type ErrFetch struct {
	Ip  uint32
	Err error
}

func (err *ErrFetch) Error() string {
	return f("ip 0x%04x fetch: %v", err.Ip, err.Err)
}

func (err *ErrFetch) Unwrap() error {
	return err.Err
}
