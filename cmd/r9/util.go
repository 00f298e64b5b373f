package main

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ezrec/r9/emulator"
	"github.com/ezrec/r9/rom"
)

// Extension of assembler source files.
const SOURCE_EXT = ".r9"

// Extension of assembled image files.
const ROM_EXT = ".rom"

// Get an expected flag, or exit if an error arises.
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Get an expected unsigned flag, or exit if an error arises.
func getUint32(cmd *cobra.Command, flag string) uint32 {
	r, err := cmd.Flags().GetUint32(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Get an expected integer flag, or exit if an error arises.
func getInt(cmd *cobra.Command, flag string) int {
	r, err := cmd.Flags().GetInt(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Get an expected string flag, or exit if an error arises.
func getString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// newEmulator configures logging, and builds an emulator from the common flags.
func newEmulator(cmd *cobra.Command) (emu *emulator.Emulator) {
	verbose := getFlag(cmd, "verbose")
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	emu = emulator.NewEmulator(getUint32(cmd, "memory"))
	emu.Verbose = verbose

	return
}

// load fills the emulator from either a source file, or an image file.
func load(emu *emulator.Emulator, name string) (err error) {
	if filepath.Ext(name) == SOURCE_EXT {
		var inf *os.File
		inf, err = os.Open(name)
		if err != nil {
			return
		}
		defer inf.Close()

		err = emu.Assemble(inf)
		if err != nil {
			err = fmt.Errorf("%v: %w", name, err)
		}
		return
	}

	dir, file := filepath.Split(name)
	if len(dir) == 0 {
		dir = "."
	}

	err = emu.Rom.Open(rom.DirFS(dir), file)
	return
}

// terminalWidth returns the width of stdout, or 80 when it is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 80
	}

	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return 80
	}

	return width
}
