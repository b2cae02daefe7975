package cmd

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"

	"pandakernel/internal/hostconfig"
	"pandakernel/pkg/logging"
)

const spinnerInterval = 100 * time.Millisecond

var (
	runMode       string
	runScriptPath string
	runMaxSteps   int
	runExitOnIdle bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive a scripted session against the in-process kernel",
	Long: `run constructs a fresh world (kernel, process manager, intent router) and
feeds it the steps of a --script file in order. In --mode hal it notifies an
enclosing systemd unit of readiness via sd_notify, matching the teacher's
agent hal-mode wiring; in --mode sim (the default) it runs standalone.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runMode, "mode", string(hostconfig.ModeSim), "kernel mode: sim or hal")
	runCmd.Flags().StringVar(&runScriptPath, "script", "", "path to a YAML scripted-input file")
	runCmd.Flags().IntVar(&runMaxSteps, "max-steps", 0, "stop after N steps (0 = run the whole script)")
	runCmd.Flags().BoolVar(&runExitOnIdle, "exit-on-idle", false, "print a session summary once the script is exhausted (run always exits then)")
}

func runRun(_ *cobra.Command, _ []string) error {
	mode := hostconfig.Mode(runMode)
	if mode != hostconfig.ModeSim && mode != hostconfig.ModeHAL {
		return fmt.Errorf("run: unknown --mode %q (want sim or hal)", runMode)
	}

	var script hostconfig.Script
	if runScriptPath != "" {
		s, err := hostconfig.LoadScript(runScriptPath)
		if err != nil {
			return err
		}
		script = s
	}

	steps := script.Steps
	if runMaxSteps > 0 && len(steps) > runMaxSteps {
		steps = steps[:runMaxSteps]
	}

	w := newWorld()

	if mode == hostconfig.ModeHAL {
		if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
			logging.Warn("cmd/run", "sd_notify ready failed: %v", err)
		} else if !ok {
			logging.Debug("cmd/run", "sd_notify unsupported outside a systemd unit, continuing")
		}
		defer daemon.SdNotify(false, daemon.SdNotifyStopping)
	}

	sp := spinner.New(spinner.CharSets[11], spinnerInterval)
	sp.Suffix = " running scripted session"
	sp.Start()
	defer sp.Stop()

	for i, step := range steps {
		out, err := executeStep(w, step)
		if err != nil {
			sp.Stop()
			return fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
		}
		sp.Stop()
		fmt.Printf("[%d/%d] %s: %s\n", i+1, len(steps), step.Action, out)
		sp.Start()
	}
	sp.Stop()

	if runExitOnIdle || runScriptPath != "" {
		fmt.Printf("session complete: %d step(s) executed, %d process(es) managed\n", len(steps), len(w.procs.ListProcesses()))
	}
	return nil
}
