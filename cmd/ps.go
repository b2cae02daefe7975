package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"pandakernel/internal/contracts"
	"pandakernel/internal/uiformat"
)

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "List processes and registered services in a fresh world",
	Long: `ps constructs an empty world and immediately renders its (empty) process
table and service registry, matching the shape "process_manager.list_processes"
and "registry.list" return over the wire. Its only use, since each CLI
invocation gets a fresh world, is as a smoke test of the rendering path;
"console" is the surface that actually lets you spawn services first.`,
	RunE: runPs,
}

func runPs(_ *cobra.Command, _ []string) error {
	w := newWorld()

	uiformat.RenderProcesses(os.Stdout, w.procs.ListProcesses())

	entries := w.kernel.ListServices()
	regEntries := make([]contracts.RegistryEntry, 0, len(entries))
	for _, e := range entries {
		regEntries = append(regEntries, contracts.RegistryEntry{
			Service: e.Service,
			Name:    e.Name,
			Channel: e.Channel,
			Schema:  e.Schema,
		})
	}
	uiformat.RenderRegistry(os.Stdout, regEntries)

	handlers := w.router.ListHandlers()
	rows := make([]uiformat.HandlerRow, 0, len(handlers))
	for _, h := range handlers {
		rows = append(rows, uiformat.HandlerRow{Type: h.Type, Handler: h.Handler.String()})
	}
	uiformat.RenderHandlers(os.Stdout, rows)

	return nil
}
