// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"io"
	"iter"
	"maps"

	log "github.com/sirupsen/logrus"

	"github.com/ezrec/r9/cpu"
	"github.com/ezrec/r9/internal"
	"github.com/ezrec/r9/rom"
)

// Process exit codes, by fault class.
const (
	EXIT_HALT         = 0
	EXIT_ERROR        = 1
	EXIT_MEMORY_FAULT = 2
	EXIT_OPCODE_FAULT = 3
	EXIT_DIVIDE_ZERO  = 4
	EXIT_TICK_LIMIT   = 5
)

// Emulator state. CPU + program listing + ROM image.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.
	Rom      rom.Rom      // Image loaded into memory on Reset.
	MaxTicks int          // Tick limit for a run, 0 for no limit.
}

// NewEmulator creates a new emulator with the given memory size.
func NewEmulator(size uint32) (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(size),
		Program: &cpu.Program{},
	}

	return
}

// Defines returns an iterator over all of the defines, in name order.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	defines := maps.Collect(internal.IterSeq2Concat(
		emu.Cpu.Defines(),
		emu.Rom.Defines(),
	))

	return internal.IterSeq2Sorted(defines)
}

// Assemble parses source text into the emulator's program, with the
// emulator's defines available as equates.
func (emu *Emulator) Assemble(input io.Reader) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(input)
	if err != nil {
		return
	}

	emu.Program = prog
	emu.Rom.Data = prog.Binary()

	return
}

// Reset powers on the CPU and loads the image. When there is a program
// listing it supplies the image; otherwise the image is disassembled
// into a listing.
func (emu *Emulator) Reset() (err error) {
	if emu.Program == nil {
		emu.Program = &cpu.Program{}
	}

	if len(emu.Program.Opcodes) > 0 {
		emu.Rom.Data = emu.Program.Binary()
	} else {
		emu.Program = cpu.Disassemble(emu.Rom.Data)
	}

	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.PowerOn()

	err = emu.Cpu.LoadImage(emu.Rom.Data)
	if err != nil {
		return
	}

	return
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.debug()
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// debug returns the listing entry at ip, if there is a listing.
func (emu *Emulator) debug() (dbg cpu.Debug) {
	if emu.Program == nil {
		return
	}

	return emu.Program.Debug(emu.Cpu.Ip())
}

// Tick performs a single tick of the emulator. done is set once the
// program halts.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	if emu.MaxTicks > 0 && emu.Cpu.Ticks >= emu.MaxTicks {
		err = ErrTickLimit
		return
	}

	outcome, err := emu.Cpu.Tick()
	if err != nil {
		return
	}

	done = outcome == cpu.OUTCOME_HALT
	return
}

// Run ticks the emulator until it halts or faults.
func (emu *Emulator) Run() (err error) {
	for {
		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			break
		}
	}

	if emu.Verbose {
		log.Printf("emulator: %v ticks, exit %v", emu.Cpu.Ticks, ExitCode(err))
	}

	return
}

// ExitCode maps the result of Run to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return EXIT_HALT
	case errors.Is(err, ErrTickLimit):
		return EXIT_TICK_LIMIT
	case errors.Is(err, cpu.ErrDivideByZero):
		return EXIT_DIVIDE_ZERO
	case errors.Is(err, cpu.ErrMemoryFault):
		return EXIT_MEMORY_FAULT
	case errors.Is(err, cpu.ErrOpcodeFault):
		return EXIT_OPCODE_FAULT
	}

	return EXIT_ERROR
}
