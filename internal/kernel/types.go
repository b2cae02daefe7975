package kernel

import (
	"pandakernel/internal/budget"
	"pandakernel/internal/capability"
	"pandakernel/internal/identity"
	"pandakernel/internal/ids"
)

// TaskDescriptor describes a task to spawn: its identity metadata and the
// capabilities it starts holding.
type TaskDescriptor struct {
	Identity            identity.Metadata
	InitialCapabilities []capability.Any
	Budget              budget.Caps
}

// TaskHandle is returned by SpawnTask: the task's fresh identifiers. The
// handle's task ID always identifies the currently live execution of that
// task; the process manager relies on this (spec §4.6 invariant).
type TaskHandle struct {
	Task      ids.TaskId
	Execution ids.ExecutionId
}

// taskRecord is the kernel's authoritative, internal record of a spawned
// task. Only the kernel mutates it.
type taskRecord struct {
	handle     TaskHandle
	identity   identity.Metadata
	caps       []capability.Handle
	budget     *budget.Context
	exited     bool
	exitReason identity.ExitReason
}
