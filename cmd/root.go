// Package cmd implements the reference host CLI named in spec §6.6: a thin
// runner over the in-process core, explicitly "for reference only" — no
// core invariant depends on this package. Grounded on the teacher's
// cmd/root.go cobra command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pandakernel/pkg/logging"
)

// Exit codes for CLI commands (spec §6.6).
const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

var rootCmd = &cobra.Command{
	Use:   "pandakernel",
	Short: "Reference host runtime for the pandakernel capability microkernel core",
	Long: `pandakernel drives the in-process simulated kernel through a scripted or
interactive session: spawning tasks, sending typed IPC envelopes, and
supervising services through the process manager. It is a reference
surface only — every invariant the core enforces lives in the library
packages under internal/, not here.`,
	SilenceUsage: true,
}

// SetVersion sets the version reported by "pandakernel --version".
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the root command, exiting the process with the appropriate
// exit code on failure.
func Execute() {
	logging.InitForCLI(logging.LevelInfo, os.Stderr)
	rootCmd.SetVersionTemplate(`{{printf "pandakernel version %s\n" .Version}}`)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitCodeError)
	}
	os.Exit(ExitCodeSuccess)
}

func init() {
	rootCmd.AddCommand(runCmd, consoleCmd, psCmd)
}
