package cmd

import (
	"fmt"
	"time"

	"pandakernel/internal/hostconfig"
	"pandakernel/internal/vtime"
)

// executeStep interprets one hostconfig.Step against w, returning a
// human-readable result line or an error. This is the single dispatch point
// shared by "run" (driving a --script file) and "console" (driving
// interactively typed lines parsed into the same shape).
func executeStep(w *world, step hostconfig.Step) (string, error) {
	switch step.Action {
	case "spawn":
		name := step.Params["name"]
		if name == "" {
			return "", fmt.Errorf("spawn: missing \"name\" parameter")
		}
		svc, err := w.spawnNamedService(name, budgetCapsFromDefaults(hostconfig.BudgetDefaults{}))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("spawned %s as %s", name, svc), nil

	case "terminate":
		name := step.Params["name"]
		svc, ok := w.byName[name]
		if !ok {
			return "", fmt.Errorf("terminate: no spawned service named %q", name)
		}
		if err := w.procs.Terminate(svc); err != nil {
			return "", err
		}
		return fmt.Sprintf("terminated %s", name), nil

	case "sleep":
		d, err := time.ParseDuration(step.Params["duration"])
		if err != nil {
			return "", fmt.Errorf("sleep: %w", err)
		}
		w.kernel.Sleep(vtime.Duration(d))
		return fmt.Sprintf("advanced virtual clock by %s, now at %s", d, w.kernel.Now()), nil

	case "register_handler":
		intentType := step.Params["type"]
		name := step.Params["name"]
		svc, ok := w.byName[name]
		if !ok {
			return "", fmt.Errorf("register_handler: no spawned service named %q", name)
		}
		w.router.RegisterHandler(intentType, svc)
		return fmt.Sprintf("registered %s as handler for intent type %q", name, intentType), nil

	case "route":
		intentType := step.Params["type"]
		handler, ok := w.router.Route(intentType)
		if !ok {
			return "", fmt.Errorf("route: no handler registered for intent type %q", intentType)
		}
		return fmt.Sprintf("intent type %q routes to %s", intentType, handler), nil

	case "list_processes":
		return fmt.Sprintf("%d managed processes", len(w.procs.ListProcesses())), nil

	default:
		return "", fmt.Errorf("unrecognized step action %q", step.Action)
	}
}
