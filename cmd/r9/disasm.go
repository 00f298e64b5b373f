package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ezrec/r9/cpu"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm [flags] image",
	Short: "disassemble an image.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}

		emu := newEmulator(cmd)

		err := load(emu, args[0])
		if err != nil {
			log.Fatal(err)
		}

		fmt.Print(cpu.Disassemble(emu.Rom.Data).Listing())
	},
}

func init() {
	rootCmd.AddCommand(disasmCmd)
}
