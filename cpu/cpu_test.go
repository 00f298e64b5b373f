package cpu

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCpu(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(MEMORY_SIZE)

	assert.False(cpu.Verbose)
	assert.Equal(uint32(MEMORY_SIZE), cpu.Memory.Size())
	assert.Equal(RegisterFile{}, cpu.Register)
	assert.NoError(cpu.Fault())
}

func TestCpuLoadImmediate(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(MEMORY_SIZE)
	assert.NoError(cpu.LoadImage(MakeInstruction(OP_LOAD, 0, 0, REG_A, 0, 5).Bytes()))

	ins, err := cpu.Fetch()
	assert.NoError(err)
	assert.Equal(ins, cpu.Last())

	outcome, err := cpu.Step(ins)
	assert.NoError(err)
	assert.Equal(OUTCOME_CONTINUE, outcome)
	assert.Equal(uint32(5), cpu.Register[REG_A])
	assert.Equal(uint32(0), cpu.Ip())
}

func TestCpuStoreLoad(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(MEMORY_SIZE)
	cpu.Register[REG_A] = 5

	outcome, err := cpu.Step(MakeInstruction(OP_STORE, 1, WIDTH_DWORD, REG_A, 0, 100))
	assert.NoError(err)
	assert.Equal(OUTCOME_CONTINUE, outcome)

	outcome, err = cpu.Step(MakeInstruction(OP_LOAD, 1, WIDTH_DWORD, REG_B, 0, 100))
	assert.NoError(err)
	assert.Equal(OUTCOME_CONTINUE, outcome)
	assert.Equal(uint32(5), cpu.Register[REG_B])
}

func TestCpuStoreWidth(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(16)
	cpu.Register[REG_A] = 0x11223344

	_, err := cpu.Step(MakeInstruction(OP_STORE, 1, WIDTH_BYTE, REG_A, 0, 0))
	assert.NoError(err)
	_, err = cpu.Step(MakeInstruction(OP_STORE, 1, WIDTH_WORD, REG_A, 0, 4))
	assert.NoError(err)
	_, err = cpu.Step(MakeInstruction(OP_STORE, 1, WIDTH_DWORD, REG_A, 0, 8))
	assert.NoError(err)

	assert.Equal([]byte{
		0x44, 0, 0, 0,
		0x44, 0x33, 0, 0,
		0x44, 0x33, 0x22, 0x11,
		0, 0, 0, 0,
	}, cpu.Memory.Bytes())

	_, err = cpu.Step(MakeInstruction(OP_LOAD, 1, WIDTH_WORD, REG_B, 0, 8))
	assert.NoError(err)
	assert.Equal(uint32(0x3344), cpu.Register[REG_B])
}

func TestCpuMove(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(64)
	cpu.Register[REG_D] = 0xcafe

	outcome, err := cpu.Step(MakeInstruction(OP_STORE, 0, 0, REG_BP, REG_D, 0))
	assert.NoError(err)
	assert.Equal(OUTCOME_CONTINUE, outcome)
	assert.Equal(uint32(0xcafe), cpu.Register[REG_BP])
	assert.Equal(uint32(0xcafe), cpu.Register[REG_D])
}

func TestCpuArithmetic(t *testing.T) {
	table := [](struct {
		name string
		ins  Instruction
		a, b uint32
		reg  Register
		want uint32
	}){
		{"add reg", MakeInstruction(OP_ADD, 0, 0, REG_A, REG_B, 0), 2, 3, REG_A, 5},
		{"add imm", MakeInstruction(OP_ADD, 1, 0, REG_A, 0, 10), 2, 3, REG_A, 12},
		{"add wrap", MakeInstruction(OP_ADD, 1, 0, REG_A, 0, 1), 0xffffffff, 0, REG_A, 0},
		{"add wrap reg", MakeInstruction(OP_ADD, 0, 0, REG_A, REG_B, 0), 0xffffffff, 1, REG_A, 0},
		{"sub reg", MakeInstruction(OP_SUB, 0, 0, REG_A, REG_B, 0), 10, 3, REG_A, 7},
		{"sub wrap", MakeInstruction(OP_SUB, 1, 0, REG_A, 0, 1), 0, 0, REG_A, 0xffffffff},
		{"mul", MakeInstruction(OP_MUL, 0, 0, REG_A, REG_B, 0), 6, 7, REG_E, 42},
		{"mul wrap", MakeInstruction(OP_MUL, 0, 0, REG_A, REG_B, 0), 0x10000, 0x10000, REG_E, 0},
		{"muls", MakeInstruction(OP_MUL, 1, 0, REG_A, REG_B, 0), uint32(0xfffffffd), 4, REG_E, uint32(0xfffffff4)},
		{"or reg", MakeInstruction(OP_OR, 0, 0, REG_A, REG_B, 0), 0xf0, 0x0f, REG_C, 0xff},
		{"or imm", MakeInstruction(OP_OR, 1, 0, REG_A, 0, 0x100), 0xf0, 0, REG_C, 0x1f0},
		{"and reg", MakeInstruction(OP_AND, 0, 0, REG_A, REG_B, 0), 0xff, 0x3c, REG_C, 0x3c},
		{"and imm", MakeInstruction(OP_AND, 1, 0, REG_A, 0, 0xf), 0xff, 0, REG_C, 0xf},
		{"xor reg", MakeInstruction(OP_XOR, 0, 0, REG_A, REG_B, 0), 0xff, 0x0f, REG_C, 0xf0},
		{"xor imm", MakeInstruction(OP_XOR, 1, 0, REG_A, 0, 0xffffffff), 0, 0, REG_C, 0xffffffff},
		{"not reg", MakeInstruction(OP_NOT, 0, 0, REG_A, 0, 0), 0x0000ffff, 0, REG_C, 0xffff0000},
		{"not imm", MakeInstruction(OP_NOT, 1, 0, REG_A, 0, 0), 0x1234, 0, REG_C, 0xffffffff},
		{"shr reg", MakeInstruction(OP_SHR, 0, 0, REG_A, REG_B, 0), 0x80000000, 4, REG_C, 0x08000000},
		{"shr imm", MakeInstruction(OP_SHR, 1, 0, REG_A, 0, 31), 0x80000000, 0, REG_C, 1},
		{"shl reg", MakeInstruction(OP_SHL, 0, 0, REG_A, REG_B, 0), 1, 8, REG_C, 0x100},
		{"shl imm", MakeInstruction(OP_SHL, 1, 0, REG_A, 0, 33), 1, 0, REG_C, 2},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			assert := assert.New(t)

			cpu := NewCpu(64)
			cpu.Register[REG_A] = entry.a
			cpu.Register[REG_B] = entry.b

			outcome, err := cpu.Step(entry.ins)
			assert.NoError(err)
			assert.Equal(OUTCOME_CONTINUE, outcome)
			assert.Equal(entry.want, cpu.Register[entry.reg])
		})
	}
}

func TestCpuFixedDestination(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(64)
	cpu.Register[REG_A] = 0xf0
	cpu.Register[REG_B] = 0x0f

	_, err := cpu.Step(MakeInstruction(OP_OR, 0, 0, REG_A, REG_B, 0))
	assert.NoError(err)
	assert.Equal(uint32(0xf0), cpu.Register[REG_A])
	assert.Equal(uint32(0x0f), cpu.Register[REG_B])
	assert.Equal(uint32(0xff), cpu.Register[REG_C])

	_, err = cpu.Step(MakeInstruction(OP_MUL, 0, 0, REG_A, REG_B, 0))
	assert.NoError(err)
	assert.Equal(uint32(0xf0), cpu.Register[REG_A])
	assert.Equal(uint32(0xf0*0x0f), cpu.Register[REG_E])
	assert.Equal(uint32(0), cpu.Register[REG_F])
}

func TestCpuDivide(t *testing.T) {
	table := [](struct {
		name      string
		mode      uint8
		a, b      uint32
		rem, quot uint32
	}){
		{"unsigned", 0, 7, 3, 1, 2},
		{"unsigned large", 0, 0xfffffffe, 2, 0, 0x7fffffff},
		{"unsigned high bit", 0, 0x80000001, 0x10, 1, 0x08000000},
		{"signed", 1, 7, 3, 1, 2},
		{"signed negative", 1, uint32(0xfffffff9), 3, uint32(0xffffffff), uint32(0xfffffffe)},
		{"signed both negative", 1, uint32(0xfffffff9), uint32(0xfffffffd), uint32(0xffffffff), 2},
		{"signed overflow", 1, 0x80000000, 0xffffffff, 0, 0x80000000},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			assert := assert.New(t)

			cpu := NewCpu(64)
			cpu.Register[REG_A] = entry.a
			cpu.Register[REG_B] = entry.b

			outcome, err := cpu.Step(MakeInstruction(OP_DIV, entry.mode, 0, REG_A, REG_B, 0))
			assert.NoError(err)
			assert.Equal(OUTCOME_CONTINUE, outcome)
			assert.Equal(entry.rem, cpu.Register[REG_E])
			assert.Equal(entry.quot, cpu.Register[REG_F])
			assert.Equal(entry.a, cpu.Register[REG_A])
		})
	}
}

func TestCpuDivideByZero(t *testing.T) {
	for mode := range uint8(2) {
		assert := assert.New(t)

		cpu := NewCpu(64)
		cpu.Register[REG_A] = 7
		cpu.Register[REG_E] = 0x1111
		cpu.Register[REG_F] = 0x2222

		outcome, err := cpu.Step(MakeInstruction(OP_DIV, mode, 0, REG_A, REG_B, 0))
		assert.Equal(OUTCOME_FAULT, outcome)
		assert.ErrorIs(err, ErrDivideByZero)
		assert.Equal(uint32(0x1111), cpu.Register[REG_E])
		assert.Equal(uint32(0x2222), cpu.Register[REG_F])
		assert.Equal(err, cpu.Fault())
	}
}

func TestCpuJump(t *testing.T) {
	table := [](struct {
		name  string
		cond  CodeCond
		flag  uint32
		taken bool
	}){
		{"zero taken", COND_ZERO, 0, true},
		{"zero not taken", COND_ZERO, 1, false},
		{"positive taken", COND_POSITIVE, 0x7fffffff, true},
		{"positive zero", COND_POSITIVE, 0, true},
		{"positive not taken", COND_POSITIVE, 0x80000000, false},
		{"negative taken", COND_NEGATIVE, 0xffffffff, true},
		{"negative not taken", COND_NEGATIVE, 5, false},
		{"always", COND_ALWAYS, 0x12345, true},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			assert := assert.New(t)

			cpu := NewCpu(MEMORY_SIZE)
			cpu.Register[REG_C] = entry.flag
			cpu.Register[REG_IP] = 12

			outcome, err := cpu.Step(MakeJumpImm(entry.cond, 40))
			assert.NoError(err)
			if entry.taken {
				assert.Equal(OUTCOME_JUMP, outcome)
				assert.Equal(uint32(40), cpu.Ip())
			} else {
				assert.Equal(OUTCOME_CONTINUE, outcome)
				assert.Equal(uint32(12), cpu.Ip())
			}

			cpu.Register[REG_IP] = 12
			cpu.Register[REG_D] = 60
			outcome, err = cpu.Step(MakeJump(entry.cond, REG_D))
			assert.NoError(err)
			if entry.taken {
				assert.Equal(OUTCOME_JUMP, outcome)
				assert.Equal(uint32(60), cpu.Ip())
			} else {
				assert.Equal(OUTCOME_CONTINUE, outcome)
				assert.Equal(uint32(12), cpu.Ip())
			}
		})
	}
}

func TestCpuJumpBounds(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(64)

	outcome, err := cpu.Step(MakeJumpImm(COND_ALWAYS, 64-INSTRUCTION_SIZE))
	assert.NoError(err)
	assert.Equal(OUTCOME_JUMP, outcome)
	assert.Equal(uint32(64-INSTRUCTION_SIZE), cpu.Ip())

	outcome, err = cpu.Step(MakeJumpImm(COND_ALWAYS, 64-INSTRUCTION_SIZE+1))
	assert.Equal(OUTCOME_FAULT, outcome)
	assert.ErrorIs(err, ErrMemoryFault)
	assert.Equal(uint32(64-INSTRUCTION_SIZE), cpu.Ip())

	cpu.Reset()
	outcome, err = cpu.Step(MakeJumpImm(COND_ALWAYS, 0xfffffffe))
	assert.Equal(OUTCOME_FAULT, outcome)
	assert.ErrorIs(err, ErrMemoryFault)
}

func TestCpuPush(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(MEMORY_SIZE)
	cpu.Register[REG_SP] = 100
	cpu.Register[REG_A] = 42

	outcome, err := cpu.Step(MakeInstruction(OP_STACK, 1, WIDTH_DWORD, REG_A, 0, 0))
	assert.NoError(err)
	assert.Equal(OUTCOME_CONTINUE, outcome)

	value, err := cpu.Memory.LoadDword(100)
	assert.NoError(err)
	assert.Equal(uint32(42), value)
	assert.Equal(uint32(96), cpu.Register[REG_SP])
}

func TestCpuPushWidth(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(16)
	assert.NoError(cpu.Memory.StoreDword(8, 0xffffffff))
	cpu.Register[REG_SP] = 8
	cpu.Register[REG_B] = 0x1234

	_, err := cpu.Step(MakeInstruction(OP_STACK, 1, WIDTH_BYTE, REG_B, 0, 0))
	assert.NoError(err)
	assert.Equal(uint32(4), cpu.Register[REG_SP])
	assert.Equal([]byte{0x34, 0xff, 0xff, 0xff}, cpu.Memory.Bytes()[8:12])
}

func TestCpuPop(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(MEMORY_SIZE)
	assert.NoError(cpu.Memory.StoreDword(96, 0xdeadbeef))
	cpu.Register[REG_SP] = 100

	outcome, err := cpu.Step(MakeInstruction(OP_STACK, 0, 0, REG_D, 0, 0))
	assert.NoError(err)
	assert.Equal(OUTCOME_CONTINUE, outcome)
	assert.Equal(uint32(96), cpu.Register[REG_SP])
	assert.Equal(uint32(0xdeadbeef), cpu.Register[REG_D])
}

func TestCpuPopIp(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(MEMORY_SIZE)
	assert.NoError(cpu.Memory.StoreDword(96, 0x30))
	cpu.Register[REG_SP] = 100

	outcome, err := cpu.Step(MakeInstruction(OP_STACK, 0, 0, REG_IP, 0, 0))
	assert.NoError(err)
	assert.Equal(OUTCOME_JUMP, outcome)
	assert.Equal(uint32(0x30), cpu.Ip())
}

func TestCpuStackFault(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(16)
	cpu.Register[REG_SP] = 14
	cpu.Register[REG_A] = 1

	outcome, err := cpu.Step(MakeInstruction(OP_STACK, 1, WIDTH_DWORD, REG_A, 0, 0))
	assert.Equal(OUTCOME_FAULT, outcome)
	assert.ErrorIs(err, ErrMemoryFault)
	assert.Equal(uint32(14), cpu.Register[REG_SP])
	assert.Equal(make([]byte, 16), cpu.Memory.Bytes())

	cpu.Reset()
	cpu.Register[REG_SP] = 0
	outcome, err = cpu.Step(MakeInstruction(OP_STACK, 0, 0, REG_A, 0, 0))
	assert.Equal(OUTCOME_FAULT, outcome)
	assert.ErrorIs(err, ErrMemoryFault)
	assert.Equal(uint32(0), cpu.Register[REG_SP])
	assert.Equal(uint32(1), cpu.Register[REG_A])
}

func TestCpuWidthFault(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(64)

	table := []Instruction{
		MakeInstruction(OP_LOAD, 1, CodeWidth(3), REG_A, 0, 0),
		MakeInstruction(OP_STORE, 1, CodeWidth(3), REG_A, 0, 0),
		MakeInstruction(OP_STACK, 1, CodeWidth(3), REG_A, 0, 0),
	}

	for _, ins := range table {
		cpu.Reset()
		cpu.Register[REG_SP] = 32
		outcome, err := cpu.Step(ins)
		assert.Equal(OUTCOME_FAULT, outcome, ins.String())
		assert.ErrorIs(err, ErrOpcodeFault, ins.String())
		assert.Equal(uint32(32), cpu.Register[REG_SP])
	}
}

func TestCpuRegisterIndexFault(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(64)

	table := []Instruction{
		MakeInstruction(OP_LOAD, 0, 0, Register(9), 0, 1),
		MakeInstruction(OP_STORE, 0, 0, REG_A, Register(12), 0),
		MakeInstruction(OP_ADD, 0, 0, Register(15), REG_A, 0),
		MakeInstruction(OP_DIV, 0, 0, REG_A, Register(10), 0),
		MakeInstruction(OP_STACK, 0, 0, Register(9), 0, 0),
		MakeJump(COND_ALWAYS, Register(11)),
	}

	for _, ins := range table {
		cpu.Reset()
		cpu.Register[REG_SP] = 32
		outcome, err := cpu.Step(ins)
		assert.Equal(OUTCOME_FAULT, outcome, ins.String())
		assert.ErrorIs(err, ErrOpcodeFault, ins.String())
		assert.ErrorIs(err, ErrIndexFault, ins.String())
		assert.Equal(uint32(32), cpu.Register[REG_SP])
	}
}

func TestCpuUnknownOpcode(t *testing.T) {
	assert := assert.New(t)

	for op := CodeOp(OP_COUNT); op < 32; op++ {
		cpu := NewCpu(64)
		outcome, err := cpu.Step(MakeInstruction(op, 0, 0, 0, 0, 0))
		assert.Equal(OUTCOME_FAULT, outcome)
		assert.ErrorIs(err, ErrOpcodeFault)

		var ei *ErrInstruction
		assert.ErrorAs(err, &ei)
		assert.Equal(op, ei.Instruction.Op)
	}
}

func TestCpuHalt(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(64)
	outcome, err := cpu.Step(MakeInstruction(OP_HALT, 0, 0, 0, 0, 0))
	assert.NoError(err)
	assert.Equal(OUTCOME_HALT, outcome)
	assert.NoError(cpu.Fault())
}

func TestCpuStickyFault(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(64)
	cpu.Register[REG_A] = 9

	outcome, err := cpu.Step(MakeInstruction(OP_DIV, 0, 0, REG_A, REG_B, 0))
	assert.Equal(OUTCOME_FAULT, outcome)
	assert.ErrorIs(err, ErrDivideByZero)
	fault := err

	regs := cpu.Register
	mem := bytes.Clone(cpu.Memory.Bytes())

	following := []Instruction{
		MakeInstruction(OP_LOAD, 0, 0, REG_A, 0, 1),
		MakeInstruction(OP_STORE, 1, WIDTH_DWORD, REG_A, 0, 0),
		MakeInstruction(OP_HALT, 0, 0, 0, 0, 0),
		MakeJumpImm(COND_ALWAYS, 0),
	}
	for _, ins := range following {
		outcome, err = cpu.Step(ins)
		assert.Equal(OUTCOME_FAULT, outcome)
		assert.Equal(fault, err)
		assert.Equal(regs, cpu.Register)
		assert.Equal(mem, cpu.Memory.Bytes())
	}

	outcome, err = cpu.Tick()
	assert.Equal(OUTCOME_FAULT, outcome)
	assert.Equal(fault, err)

	cpu.Reset()
	assert.NoError(cpu.Fault())

	outcome, err = cpu.Step(MakeInstruction(OP_LOAD, 0, 0, REG_A, 0, 1))
	assert.NoError(err)
	assert.Equal(OUTCOME_CONTINUE, outcome)
	assert.Equal(uint32(1), cpu.Register[REG_A])
}

func TestCpuFetchFault(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(MEMORY_SIZE)
	cpu.Register[REG_IP] = MEMORY_SIZE - 1

	_, err := cpu.Fetch()
	assert.ErrorIs(err, ErrMemoryFault)

	cpu.Register[REG_IP] = MEMORY_SIZE - INSTRUCTION_SIZE
	_, err = cpu.Fetch()
	assert.NoError(err)

	cpu.Register[REG_IP] = MEMORY_SIZE - INSTRUCTION_SIZE + 1
	outcome, err := cpu.Tick()
	assert.Equal(OUTCOME_FAULT, outcome)
	assert.ErrorIs(err, ErrMemoryFault)

	var ef *ErrFetch
	assert.ErrorAs(err, &ef)
	assert.Equal(uint32(MEMORY_SIZE-INSTRUCTION_SIZE+1), ef.Ip)
	assert.Equal(err, cpu.Fault())
}

func TestCpuTick(t *testing.T) {
	assert := assert.New(t)

	program := []Instruction{
		MakeInstruction(OP_LOAD, 0, 0, REG_A, 0, 3),      // 0
		MakeInstruction(OP_LOAD, 0, 0, REG_B, 0, 0),      // 6
		MakeInstruction(OP_ADD, 1, 0, REG_B, 0, 10),      // 12: loop
		MakeInstruction(OP_SUB, 1, 0, REG_A, 0, 1),       // 18
		MakeInstruction(OP_STORE, 0, 0, REG_C, REG_A, 0), // 24
		MakeJumpImm(COND_ZERO, 42),                       // 30
		MakeJumpImm(COND_ALWAYS, 12),                     // 36
		MakeInstruction(OP_HALT, 0, 0, 0, 0, 0),          // 42
	}

	var image []byte
	for _, ins := range program {
		image = append(image, ins.Bytes()...)
	}

	cpu := NewCpu(256)
	assert.NoError(cpu.LoadImage(image))

	var outcome Outcome
	var err error
	for range 100 {
		outcome, err = cpu.Tick()
		if outcome != OUTCOME_CONTINUE && outcome != OUTCOME_JUMP {
			break
		}
	}

	assert.NoError(err)
	assert.Equal(OUTCOME_HALT, outcome)
	assert.Equal(uint32(0), cpu.Register[REG_A])
	assert.Equal(uint32(30), cpu.Register[REG_B])
	assert.Equal(uint32(42), cpu.Ip())
	assert.Equal(2+5+5+4+1, cpu.Ticks)
	assert.Equal(OP_HALT, cpu.Last().Op)
}

func TestCpuPowerOn(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(64)
	cpu.Register[REG_A] = 1
	assert.NoError(cpu.Memory.StoreByte(3, 9))
	cpu.Step(MakeInstruction(OP_DIV, 0, 0, REG_A, REG_B, 0))
	assert.Error(cpu.Fault())

	cpu.PowerOn()
	assert.Equal(RegisterFile{}, cpu.Register)
	assert.Equal(make([]byte, 64), cpu.Memory.Bytes())
	assert.NoError(cpu.Fault())
	assert.Equal(0, cpu.Ticks)
	assert.Equal(Instruction{}, cpu.Last())
}

func TestCpuString(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(64)
	cpu.Register[REG_SP] = 0x12345678

	text := cpu.String()
	assert.Contains(text, "   sp: 1234_5678\n")
	assert.Contains(text, "    a: 0000_0000\n")
	assert.NotContains(text, "fault")

	cpu.Step(MakeInstruction(CodeOp(30), 0, 0, 0, 0, 0))
	assert.Contains(cpu.String(), "fault")
}

func TestCpuDefines(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(1024)
	defines := map[string]string{}
	for key, value := range cpu.Defines() {
		defines[key] = value
	}

	assert.Equal("1024", defines["MEMORY_SIZE"])
	assert.Equal("1020", defines["STACK_TOP"])
	assert.Equal("6", defines["INSTRUCTION_SIZE"])
	assert.Equal("1", defines["FORMAT_VERSION"])
}

func TestCpuSignedOperands(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(64)
	cpu.Register[REG_C] = uint32(0xfffffffe) // -2
	cpu.Register[REG_D] = 21

	_, err := cpu.Step(MakeInstruction(OP_MUL, 1, 0, REG_C, REG_D, 0))
	assert.NoError(err)
	assert.Equal(uint32(0xffffffd6), cpu.Register[REG_E]) // -42

	_, err = cpu.Step(MakeInstruction(OP_DIV, 1, 0, REG_D, REG_C, 0))
	assert.NoError(err)
	assert.Equal(uint32(1), cpu.Register[REG_E])
	assert.Equal(uint32(0xfffffff6), cpu.Register[REG_F]) // -10

	table := [](struct {
		ins   Instruction
		field error
	}){
		{MakeInstruction(OP_MUL, 1, 0, Register(9), REG_D, 0), ErrOpcodeDest},
		{MakeInstruction(OP_MUL, 1, 0, REG_C, Register(13), 0), ErrOpcodeSrc},
		{MakeInstruction(OP_DIV, 1, 0, Register(14), REG_D, 0), ErrOpcodeDest},
		{MakeInstruction(OP_DIV, 1, 0, REG_C, Register(10), 0), ErrOpcodeSrc},
	}

	for _, entry := range table {
		cpu := NewCpu(64)
		before := cpu.Register

		outcome, err := cpu.Step(entry.ins)
		assert.Equal(OUTCOME_FAULT, outcome)
		assert.ErrorIs(err, ErrOpcodeFault)
		assert.ErrorIs(err, entry.field)
		assert.ErrorIs(err, ErrIndexFault)
		assert.Equal(before, cpu.Register)
	}
}
