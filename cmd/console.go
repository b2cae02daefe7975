package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"pandakernel/internal/hostconfig"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive REPL over a fresh world",
	Long: `console opens a line-oriented REPL against a fresh world: each line is
parsed as "<action> key=value ...", the same shape a script file's steps
take, and dispatched directly through the same executeStep path "run"
uses; no console.command envelope is built. The line editor follows the
teacher's agent REPL (internal/agent/repl.go) built on
github.com/chzyer/readline.`,
	RunE: runConsole,
}

func runConsole(_ *cobra.Command, _ []string) error {
	historyFile := filepath.Join(os.TempDir(), ".pandakernel_console_history")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "pandakernel> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("console: %w", err)
	}
	defer rl.Close()

	w := newWorld()
	fmt.Println("pandakernel console. Type 'help' for commands, 'exit' to quit.")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch line {
		case "exit", "quit":
			return nil
		case "help":
			printConsoleHelp()
			continue
		}

		step := parseConsoleLine(line)
		out, err := executeStep(w, step)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(out)
	}
}

// parseConsoleLine turns "spawn name=echo" into the same hostconfig.Step
// shape a script file's YAML steps parse into, so console input and
// scripted input share one dispatcher (executeStep).
func parseConsoleLine(line string) hostconfig.Step {
	fields := strings.Fields(line)
	step := hostconfig.Step{Action: fields[0], Params: make(map[string]string)}
	for _, f := range fields[1:] {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			continue
		}
		step.Params[key] = value
	}
	return step
}

func printConsoleHelp() {
	fmt.Println(`available commands:
  spawn name=<service>                      spawn a named service
  terminate name=<service>                  terminate a spawned service
  sleep duration=<go duration, e.g. 500ms>  advance the virtual clock
  register_handler type=<intent> name=<svc> register an intent handler
  route type=<intent>                       resolve an intent's handler
  list_processes                            count managed processes
  exit                                      leave the console`)
}
