// Package kernel defines the kernel API surface (spec §4.2) and its
// in-process, deterministic implementation, SimulatedKernel.
package kernel

import (
	"pandakernel/internal/capability"
	"pandakernel/internal/ids"
	"pandakernel/internal/ipc"
	"pandakernel/internal/registry"
	"pandakernel/internal/vtime"
)

// V0 is the frozen subset of the kernel API that contract tests pin against,
// mirroring original_source/kernel_api/src/v0.rs: later kernel operations may
// be added to Kernel, but V0's shape must never change underneath it.
type V0 interface {
	Now() vtime.Instant
	SendMessage(channel ids.ChannelId, env ipc.Envelope) error
	ReceiveMessage(channel ids.ChannelId, timeout *vtime.Duration) (ipc.Envelope, error)
}

// Kernel is the capability surface every task operates through (spec §4.2
// table). The simulated kernel is the reference implementation; a real
// kernel boundary would implement the same interface over a syscall gate.
type Kernel interface {
	V0

	SpawnTask(desc TaskDescriptor) (TaskHandle, error)
	CreateChannel(capacity int) (ids.ChannelId, error)
	Sleep(d vtime.Duration)
	GrantCapability(task ids.ExecutionId, cap capability.Any) error
	RegisterService(service ids.ServiceId, name string, channel ids.ChannelId, schema ipc.SchemaVersion) error
	LookupService(service ids.ServiceId) (ids.ChannelId, error)
	LookupServiceByName(name string) (ids.ServiceId, ids.ChannelId, error)
	ListServices() []registry.Entry
}
