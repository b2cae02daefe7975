package uiformat

import (
	"bytes"
	"strings"
	"testing"

	"pandakernel/internal/contracts"
	"pandakernel/internal/ids"
	"pandakernel/internal/ipc"
	"pandakernel/internal/procmgr"
)

func TestRenderProcessesIncludesEveryColumn(t *testing.T) {
	gen := ids.NewGenerators(ids.NewDeterministicSource(1))
	svc := gen.NewServiceId()
	task := gen.NewTaskId()

	var buf bytes.Buffer
	RenderProcesses(&buf, []procmgr.Status{
		{Service: svc, Name: "echo", Task: task, State: procmgr.StateRunning, Attempts: 2},
	})

	out := buf.String()
	if !strings.Contains(out, "SERVICE") || !strings.Contains(out, "TASK") || !strings.Contains(out, "STATE") || !strings.Contains(out, "ATTEMPTS") ||
		!strings.Contains(out, "Running") || !strings.Contains(out, "2") {
		t.Fatalf("expected rendered table to include every column header, state and attempts, got:\n%s", out)
	}
}

func TestRenderRegistryIncludesSchema(t *testing.T) {
	gen := ids.NewGenerators(ids.NewDeterministicSource(2))
	svc := gen.NewServiceId()
	ch := gen.NewChannelId()

	var buf bytes.Buffer
	RenderRegistry(&buf, []contracts.RegistryEntry{
		{Service: svc, Name: "registry", Channel: ch, Schema: ipc.SchemaVersion{Major: 1, Minor: 0}},
	})

	out := buf.String()
	if !strings.Contains(out, "1.0") {
		t.Fatalf("expected rendered schema version, got:\n%s", out)
	}
}

func TestRenderHandlers(t *testing.T) {
	var buf bytes.Buffer
	RenderHandlers(&buf, []HandlerRow{{Type: "open_file", Handler: "svc-1"}})

	out := buf.String()
	if !strings.Contains(out, "open_file") || !strings.Contains(out, "svc-1") {
		t.Fatalf("expected rendered handler row, got:\n%s", out)
	}
}
