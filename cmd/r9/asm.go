package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ezrec/r9/rom"
)

var asmCmd = &cobra.Command{
	Use:   "asm [flags] source.r9",
	Short: "assemble source into an image.",
	Long: `Assemble a source file into a memory image. The image is named
	after the source, with a .rom extension, unless -o is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}

		emu := newEmulator(cmd)

		source := args[0]
		inf, err := os.Open(source)
		if err != nil {
			log.Fatal(err)
		}
		defer inf.Close()

		err = emu.Assemble(inf)
		if err != nil {
			log.Fatalf("%v: %v", source, err)
		}

		if getFlag(cmd, "listing") {
			fmt.Print(emu.Program.Listing())
		}

		output := getString(cmd, "output")
		if len(output) == 0 {
			output = strings.TrimSuffix(source, filepath.Ext(source)) + ROM_EXT
		}

		dir, file := filepath.Split(output)
		if len(dir) == 0 {
			dir = "."
		}

		err = emu.Rom.Save(rom.DirFS(dir), file)
		if err != nil {
			log.Fatal(err)
		}

		log.Debugf("%v: %d bytes", output, len(emu.Rom.Data))
	},
}

func init() {
	rootCmd.AddCommand(asmCmd)
	asmCmd.Flags().StringP("output", "o", "", "image file to write")
	asmCmd.Flags().BoolP("listing", "l", false, "print the assembly listing")
}
