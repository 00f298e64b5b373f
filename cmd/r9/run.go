package main

import (
	"fmt"
	"os"

	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ezrec/r9/emulator"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] image|source.r9",
	Short: "run a program on the simulator.",
	Long: `Run an image, or assemble and run a source file, until it halts
	or faults. The exit code reports the fault class.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}

		emu := newEmulator(cmd)
		emu.MaxTicks = getInt(cmd, "max-ticks")

		err := load(emu, args[0])
		if err != nil {
			log.Error(err)
			os.Exit(emulator.EXIT_ERROR)
		}

		err = emu.Reset()
		if err != nil {
			log.Error(err)
			os.Exit(emulator.EXIT_ERROR)
		}

		var prof interface{ Stop() }
		if getFlag(cmd, "profile") {
			prof = profile.Start(profile.NoShutdownHook, profile.ProfilePath("."), profile.CPUProfile)
		}

		err = emu.Run()

		if prof != nil {
			prof.Stop()
		}

		if err != nil {
			log.Error(err)
		} else {
			log.Infof("%v: powered off after %d ticks", args[0], emu.Cpu.Ticks)
		}

		if getFlag(cmd, "status") || (err != nil && emu.Verbose) {
			_ = emu.Status(os.Stderr, terminalWidth())
		}

		os.Exit(emulator.ExitCode(err))
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Int("max-ticks", 0, "stop with an error after this many instructions (0 for no limit)")
	runCmd.Flags().Bool("profile", false, "write a CPU profile to the current directory")
	runCmd.Flags().Bool("status", false, "print the machine state on exit")
}
