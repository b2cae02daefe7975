// Package uiformat renders kernel-facing payloads (process_manager.list_processes,
// registry.list, intent_router.list_handlers) as aligned tables for the reference host CLI,
// grounded on the teacher's cmd/list.go table.NewWriter/AppendHeader/AppendRow
// usage of github.com/jedib0t/go-pretty/v6.
package uiformat

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"pandakernel/internal/contracts"
	"pandakernel/internal/procmgr"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func headerRow(cols ...string) table.Row {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = text.Colors{text.FgHiBlue, text.Bold}.Sprint(c)
	}
	return row
}

// RenderProcesses writes a table of process manager statuses, matching the
// process_manager.list_processes action's response shape.
func RenderProcesses(w io.Writer, statuses []procmgr.Status) {
	t := newTable(w)
	t.AppendHeader(headerRow("SERVICE", "TASK", "STATE", "ATTEMPTS"))
	for _, s := range statuses {
		t.AppendRow(table.Row{s.Service, s.Task, string(s.State), s.Attempts})
	}
	t.Render()
}

// RenderRegistry writes a table of registered services, matching the
// registry.list action's response shape.
func RenderRegistry(w io.Writer, entries []contracts.RegistryEntry) {
	t := newTable(w)
	t.AppendHeader(headerRow("SERVICE", "NAME", "CHANNEL", "SCHEMA"))
	for _, e := range entries {
		t.AppendRow(table.Row{e.Service, e.Name, e.Channel, e.Schema.String()})
	}
	t.Render()
}

// RenderHandlers writes a table of intent-router handler registrations,
// matching the intent_router.list_handlers action's response shape.
func RenderHandlers(w io.Writer, entries []HandlerRow) {
	t := newTable(w)
	t.AppendHeader(headerRow("INTENT TYPE", "HANDLER"))
	for _, e := range entries {
		t.AppendRow(table.Row{e.Type, e.Handler})
	}
	t.Render()
}

// HandlerRow is a display-ready (type, handler) pair; callers convert from
// pipeline.HandlerEntry so this package doesn't need to import internal/pipeline
// just to format its ids.ServiceId field as a string.
type HandlerRow struct {
	Type    string
	Handler string
}
