package emulator

import (
	"fmt"
	"io"
	"strings"

	"github.com/ezrec/r9/cpu"
)

// Width of a single register cell in the status dump, with separator.
const STATUS_CELL = 18

// Status writes the machine state, fitting as many registers per line as
// the given column count allows.
func (emu *Emulator) Status(w io.Writer, columns int) (err error) {
	var sb strings.Builder

	per_row := max(1, columns/STATUS_CELL)
	regs := emu.Cpu.Register

	for n, value := range regs {
		fmt.Fprintf(&sb, "% 5s: %04X_%04X", cpu.Register(n).String(), value>>16, value&0xffff)
		if (n+1)%per_row == 0 || n == len(regs)-1 {
			sb.WriteString("\n")
		} else {
			sb.WriteString("  ")
		}
	}

	fmt.Fprintf(&sb, "% 5s: %v\n", "last", emu.Cpu.Last())
	fmt.Fprintf(&sb, "% 5s: %v\n", "ticks", emu.Cpu.Ticks)

	dbg := emu.debug()
	if dbg.Opcode != nil {
		fmt.Fprintf(&sb, "% 5s: %d %v\n", "line", dbg.LineNo, strings.Join(dbg.Words, " "))
	}

	if fault := emu.Cpu.Fault(); fault != nil {
		fmt.Fprintf(&sb, "% 5s: %v\n", "fault", fault)
	}

	_, err = io.WriteString(w, sb.String())
	return
}
