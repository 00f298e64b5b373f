// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"iter"
	"maps"

	log "github.com/sirupsen/logrus"
)

// Outcome is the result of executing a single instruction. A jump
// outcome is a continue in which the instruction wrote ip itself; the
// fault error is latched.
type Outcome int

//go:generate go tool stringer -linecomment -type=Outcome
const (
	OUTCOME_CONTINUE = Outcome(0) // continue
	OUTCOME_JUMP     = Outcome(1) // jump
	OUTCOME_HALT     = Outcome(2) // halt
	OUTCOME_FAULT    = Outcome(3) // fault
)

var _cpu_defines = map[string]string{
	"FORMAT_VERSION":   fmt.Sprintf("%v", FORMAT_VERSION),
	"INSTRUCTION_SIZE": fmt.Sprintf("%v", INSTRUCTION_SIZE),
}

// Cpu is the simulation context for the r9 processor. It exclusively owns
// its registers and memory.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Register RegisterFile // Register bank.
	Memory   *Memory      // Main memory.

	Ticks int // Executed instruction counter.

	last    Instruction // Most recently fetched instruction.
	fault   error       // Latched fault, nil when healthy.
	wroteIp bool        // Set when the executing instruction wrote ip.
}

// NewCpu creates a new CPU with a specifically sized memory.
func NewCpu(size uint32) (cpu *Cpu) {
	cpu = &Cpu{
		Memory: NewMemory(size),
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	defines := maps.Clone(_cpu_defines)
	defines["MEMORY_SIZE"] = fmt.Sprintf("%v", cpu.Memory.Size())
	defines["STACK_TOP"] = fmt.Sprintf("%v", cpu.Memory.Size()-4)

	return maps.All(defines)
}

// PowerOn clears the registers, memory, fault latch and statistics.
func (cpu *Cpu) PowerOn() {
	if cpu.Verbose {
		log.Printf("cpu: power on")
	}

	cpu.Register.Reset()
	cpu.Memory.Reset()
	cpu.Ticks = 0
	cpu.last = Instruction{}
	cpu.fault = nil
}

// Reset clears the fault latch. Registers and memory are preserved.
func (cpu *Cpu) Reset() {
	if cpu.Verbose && cpu.fault != nil {
		log.Printf("cpu: clear fault %v", cpu.fault)
	}

	cpu.fault = nil
}

// Fault returns the latched fault, or nil.
func (cpu *Cpu) Fault() error {
	return cpu.fault
}

// Last returns the most recently fetched instruction.
func (cpu *Cpu) Last() Instruction {
	return cpu.last
}

// Ip returns the instruction pointer.
func (cpu *Cpu) Ip() uint32 {
	return cpu.Register[REG_IP]
}

// LoadImage copies a program image into memory at address 0.
func (cpu *Cpu) LoadImage(image []byte) (err error) {
	err = cpu.Memory.LoadImage(image, 0)
	if err == nil && cpu.Verbose {
		log.Printf("cpu: loaded %d byte image", len(image))
	}

	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	for n, val := range cpu.Register {
		text += fmt.Sprintf("% 5s: %04X_%04X\n", Register(n).String(), val>>16, val&0xffff)
	}
	text += fmt.Sprintf("% 5s: %v\n", "last", cpu.last)
	if cpu.fault != nil {
		text += fmt.Sprintf("% 5s: %v\n", "fault", cpu.fault)
	}

	return
}

// Fetch decodes the instruction word at ip.
func (cpu *Cpu) Fetch() (ins Instruction, err error) {
	var word [INSTRUCTION_SIZE]byte

	err = cpu.Memory.Read(cpu.Register[REG_IP], word[:])
	if err != nil {
		return
	}

	ins, err = Decode(word[:])
	if err != nil {
		return
	}

	cpu.last = ins
	return
}

// Tick fetches and executes a single instruction, advancing ip past
// it unless the instruction wrote ip itself.
func (cpu *Cpu) Tick() (outcome Outcome, err error) {
	if cpu.fault != nil {
		return OUTCOME_FAULT, cpu.fault
	}

	ins, err := cpu.Fetch()
	if err != nil {
		err = &ErrFetch{Ip: cpu.Register[REG_IP], Err: err}
		cpu.fault = err
		outcome = OUTCOME_FAULT
		return
	}

	outcome, err = cpu.Step(ins)
	if err != nil {
		return
	}

	cpu.Ticks += 1

	if outcome == OUTCOME_CONTINUE {
		cpu.Register[REG_IP] += INSTRUCTION_SIZE
	}

	return
}

// Step executes a single decoded instruction. It never advances ip on
// its own; OUTCOME_JUMP reports that the instruction wrote ip.
// Once a fault is latched, Step returns it without touching any state.
func (cpu *Cpu) Step(ins Instruction) (outcome Outcome, err error) {
	if cpu.fault != nil {
		return OUTCOME_FAULT, cpu.fault
	}

	ip := cpu.Register[REG_IP]

	defer func() {
		if err != nil {
			err = &ErrInstruction{Ip: ip, Instruction: ins, Err: err}
			cpu.fault = err
			outcome = OUTCOME_FAULT
		}
	}()

	if cpu.Verbose {
		log.Printf("%04x: %v", ip, ins)
	}

	cpu.wroteIp = false

	outcome, err = cpu.execute(ins)
	if err == nil && outcome == OUTCOME_CONTINUE && cpu.wroteIp {
		outcome = OUTCOME_JUMP
	}

	return
}

// get reads a register named by an instruction field.
func (cpu *Cpu) get(reg Register, field error) (value uint32, err error) {
	value, err = cpu.Register.Get(reg)
	if err != nil {
		err = errors.Join(ErrOpcodeFault, field, err)
	}

	return
}

// set writes a register named by an instruction field.
func (cpu *Cpu) set(reg Register, value uint32) (err error) {
	err = cpu.Register.Set(reg, value)
	if err != nil {
		err = errors.Join(ErrOpcodeFault, ErrOpcodeDest, err)
		return
	}

	if reg == REG_IP {
		cpu.wroteIp = true
	}

	return
}

// operands returns dest, and either src (mode 0) or the immediate (mode 1).
func (cpu *Cpu) operands(ins Instruction) (dest, arg uint32, err error) {
	dest, err = cpu.get(ins.Dest, ErrOpcodeDest)
	if err != nil {
		return
	}

	if ins.Mode == 1 {
		arg = ins.Value
		return
	}

	arg, err = cpu.get(ins.Src, ErrOpcodeSrc)
	return
}

// signed returns the dest and src registers as two's complement.
func (cpu *Cpu) signed(ins Instruction) (dest, src int32, err error) {
	dest, err = cpu.Register.GetSigned(ins.Dest)
	if err != nil {
		err = errors.Join(ErrOpcodeFault, ErrOpcodeDest, err)
		return
	}

	src, err = cpu.Register.GetSigned(ins.Src)
	if err != nil {
		err = errors.Join(ErrOpcodeFault, ErrOpcodeSrc, err)
	}

	return
}

// execute performs the instruction. Any error leaves registers and memory
// unmodified.
func (cpu *Cpu) execute(ins Instruction) (outcome Outcome, err error) {
	mem := cpu.Memory
	reg := &cpu.Register

	var dest, arg uint32

	switch ins.Op {
	case OP_NOP:
		// pass
	case OP_HALT:
		outcome = OUTCOME_HALT
	case OP_LOAD:
		value := ins.Value
		if ins.Mode == 1 {
			value, err = mem.Load(ins.Value, ins.Width)
			if err != nil {
				return
			}
		}
		err = cpu.set(ins.Dest, value)
	case OP_STORE:
		if ins.Mode == 0 {
			// Register copy
			var src uint32
			src, err = cpu.get(ins.Src, ErrOpcodeSrc)
			if err != nil {
				return
			}
			err = cpu.set(ins.Dest, src)
			return
		}
		dest, err = cpu.get(ins.Dest, ErrOpcodeDest)
		if err != nil {
			return
		}
		err = mem.Store(ins.Value, ins.Width, dest)
	case OP_ADD, OP_SUB:
		dest, arg, err = cpu.operands(ins)
		if err != nil {
			return
		}
		if ins.Op == OP_ADD {
			err = cpu.set(ins.Dest, dest+arg)
		} else {
			err = cpu.set(ins.Dest, dest-arg)
		}
	case OP_MUL:
		if ins.Mode == 1 {
			var a, b int32
			a, b, err = cpu.signed(ins)
			if err != nil {
				return
			}
			reg[REG_E] = uint32(a * b)
			return
		}
		dest, arg, err = cpu.operands(Instruction{Dest: ins.Dest, Src: ins.Src})
		if err != nil {
			return
		}
		reg[REG_E] = dest * arg
	case OP_DIV:
		if ins.Mode == 1 {
			var a, b int32
			a, b, err = cpu.signed(ins)
			if err != nil {
				return
			}
			if b == 0 {
				err = ErrDivideByZero
				return
			}
			// MinInt32 / -1 wraps to MinInt32, remainder 0.
			reg[REG_E] = uint32(a % b)
			reg[REG_F] = uint32(a / b)
			return
		}
		dest, arg, err = cpu.operands(Instruction{Dest: ins.Dest, Src: ins.Src})
		if err != nil {
			return
		}
		if arg == 0 {
			err = ErrDivideByZero
			return
		}
		reg[REG_E] = dest % arg
		reg[REG_F] = dest / arg
	case OP_OR, OP_AND, OP_XOR, OP_SHR, OP_SHL:
		dest, arg, err = cpu.operands(ins)
		if err != nil {
			return
		}
		reg[REG_C] = alu(ins.Op, dest, arg)
	case OP_NOT:
		arg = ins.Value
		if ins.Mode == 0 {
			arg, err = cpu.get(ins.Dest, ErrOpcodeDest)
			if err != nil {
				return
			}
		}
		reg[REG_C] = ^arg
	case OP_STACK:
		sp := reg[REG_SP]
		if ins.Mode == 1 {
			// push
			dest, err = cpu.get(ins.Dest, ErrOpcodeDest)
			if err != nil {
				return
			}
			err = mem.Store(sp, ins.Width, dest)
			if err != nil {
				return
			}
			reg[REG_SP] = sp - 4
		} else {
			// pop
			if !ins.Dest.Valid() {
				err = errors.Join(ErrOpcodeFault, ErrOpcodeDest, ErrIndexFault)
				return
			}
			var value uint32
			value, err = mem.LoadDword(sp - 4)
			if err != nil {
				return
			}
			reg[REG_SP] = sp - 4
			err = cpu.set(ins.Dest, value)
		}
	case OP_JUMP:
		target := ins.Value
		if ins.Mode == 0 {
			target, err = cpu.get(ins.Dest, ErrOpcodeDest)
			if err != nil {
				return
			}
		}
		if !ins.Cond().Taken(reg[REG_C]) {
			return
		}
		if uint64(target)+INSTRUCTION_SIZE > uint64(mem.Size()) {
			err = ErrMemoryFault
			return
		}
		reg[REG_IP] = target
		outcome = OUTCOME_JUMP
	default:
		err = ErrOpcodeFault
	}

	return
}

// alu performs the requested logic operation, and returns the output value.
func alu(op CodeOp, input uint32, value uint32) (output uint32) {
	switch op {
	case OP_OR:
		output = input | value
	case OP_AND:
		output = input & value
	case OP_XOR:
		output = input ^ value
	case OP_SHR:
		value &= 0x1f // clamp to 31 bits of shift
		output = input >> value
	case OP_SHL:
		value &= 0x1f // clamp to 31 bits of shift
		output = input << value
	}

	return
}
