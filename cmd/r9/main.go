// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ezrec/r9/cpu"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "r9",
	Short: "An assembler and emulator for the r9 processor.",
	Long: `Assemble r9 source into memory images, disassemble images,
	and run either on the r9 instruction set simulator.`,
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().Uint32("memory", cpu.MEMORY_SIZE, "memory size, in bytes")
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
