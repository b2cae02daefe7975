package kernel

import (
	"sync"

	"pandakernel/internal/budget"
	"pandakernel/internal/capability"
	"pandakernel/internal/identity"
	"pandakernel/internal/ids"
	"pandakernel/internal/ipc"
	"pandakernel/internal/registry"
	"pandakernel/internal/vtime"
)

// SimulatedKernel is the in-process, deterministic Kernel implementation used
// for testing: virtual time never advances spontaneously, and with identical
// inputs and fault plans two runs produce byte-identical audit logs (P10).
//
// SimulatedKernel is the sole owner of task state, channel state, the
// registry, and the clock (spec §5 "Shared-resource policy"); every other
// component holds only the references it needs.
type SimulatedKernel struct {
	mu sync.Mutex

	clock *vtime.ManualClock
	gen   *ids.Generators

	caps *capability.Manager

	tasks    map[ids.TaskId]*taskRecord
	channels map[ids.ChannelId]*ipc.Channel
	reg      *registry.Registry

	faults     *FaultPlan
	budgetLog  *budget.ExhaustionLog
	gate       *SyscallGate
	exitQueue  []identity.ExitNotification
	generation map[string]uint64 // per-name spawn generation counter
}

// NewSimulatedKernel returns a fresh, empty simulated kernel. src, if nil,
// uses ids.RandomSource; pass a deterministic source (ids.NewDeterministicSource)
// to get reproducible IDs across runs, which P10 requires for audit-log
// comparisons.
func NewSimulatedKernel(src ids.Source) *SimulatedKernel {
	clock := vtime.NewManualClock()
	gen := ids.NewGenerators(src)
	k := &SimulatedKernel{
		clock:      clock,
		gen:        gen,
		tasks:      make(map[ids.TaskId]*taskRecord),
		channels:   make(map[ids.ChannelId]*ipc.Channel),
		reg:        registry.New(),
		faults:     NewFaultPlan(),
		budgetLog:  &budget.ExhaustionLog{},
		generation: make(map[string]uint64),
	}
	k.caps = capability.NewManager(clock, k.resolveDomain)
	k.gate = newSyscallGate(clock)
	return k
}

// resolveDomain looks up a live execution's trust domain, used by the
// capability manager to decide Delegated vs CrossDomainDelegation.
func (k *SimulatedKernel) resolveDomain(exec ids.ExecutionId) (identity.TrustDomain, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, t := range k.tasks {
		if t.handle.Execution == exec && !t.exited {
			return t.identity.Domain, true
		}
	}
	return "", false
}

// Capabilities returns the kernel's capability manager, for callers (tests,
// services) that need to Create/Grant/Revoke capabilities directly.
func (k *SimulatedKernel) Capabilities() *capability.Manager { return k.caps }

// Faults returns the kernel's fault plan, for arming fault-injection
// scenarios from tests.
func (k *SimulatedKernel) Faults() *FaultPlan { return k.faults }

// BudgetExhaustionLog returns the shared resource-exhaustion audit log.
func (k *SimulatedKernel) BudgetExhaustionLog() *budget.ExhaustionLog { return k.budgetLog }

// Gate returns the kernel's syscall gate (user-task variant, spec §4.2).
func (k *SimulatedKernel) Gate() *SyscallGate { return k.gate }

// AdvanceTime advances the virtual clock directly, for tests that don't go
// through Sleep.
func (k *SimulatedKernel) AdvanceTime(d vtime.Duration) vtime.Instant {
	k.mu.Lock()
	now := k.clock.Advance(d)
	k.mu.Unlock()
	return now
}

// Now returns the current virtual instant.
func (k *SimulatedKernel) Now() vtime.Instant {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.clock.Now()
}

// Sleep advances virtual time by d. It charges no budget; CPU ticks are
// charged by TaskKernel.Sleep (see ForTask). The kernel clock advance itself
// never fails.
func (k *SimulatedKernel) Sleep(d vtime.Duration) {
	k.mu.Lock()
	k.clock.Advance(d)
	k.mu.Unlock()
}

// SpawnTask creates a new task, recording its identity, granting its initial
// capabilities, and returning a fresh TaskHandle.
func (k *SimulatedKernel) SpawnTask(desc TaskDescriptor) (TaskHandle, error) {
	k.mu.Lock()

	task := k.gen.NewTaskId()
	exec := k.gen.NewExecutionId()

	gen := k.generation[desc.Identity.Name]
	gen++
	k.generation[desc.Identity.Name] = gen
	md := desc.Identity
	md.Generation = gen

	handle := TaskHandle{Task: task, Execution: exec}
	rec := &taskRecord{
		handle:   handle,
		identity: md,
		budget:   budget.NewContext(exec, desc.Budget, k.budgetLog),
	}
	for _, c := range desc.InitialCapabilities {
		rec.caps = append(rec.caps, c.Handle())
	}
	k.tasks[task] = rec
	k.mu.Unlock()

	for _, c := range desc.InitialCapabilities {
		if err := capability.GrantHandle(k.caps, exec, c.Handle()); err != nil {
			return TaskHandle{}, newError(CodeSpawnFailed, "granting initial capability: %v", err)
		}
	}

	return handle, nil
}

// Budget returns the budget context for a live task's execution, or nil if
// the task is unknown.
func (k *SimulatedKernel) Budget(task ids.TaskId) *budget.Context {
	k.mu.Lock()
	defer k.mu.Unlock()
	rec, ok := k.tasks[task]
	if !ok {
		return nil
	}
	return rec.budget
}

// RecordExit appends an exit notification for task with the given reason.
// This is how a task (or the host harness on its behalf) reports its own
// termination to the kernel; the process manager drains these via
// DrainExitNotifications.
func (k *SimulatedKernel) RecordExit(task ids.TaskId, reason identity.ExitReason) {
	k.mu.Lock()
	defer k.mu.Unlock()
	rec, ok := k.tasks[task]
	if !ok {
		return
	}
	rec.exited = true
	rec.exitReason = reason
	k.exitQueue = append(k.exitQueue, identity.ExitNotification{
		Execution: rec.handle.Execution,
		Task:      &task,
		Reason:    reason,
		At:        k.clock.Now(),
	})
}

// DrainExitNotifications removes and returns all pending exit notifications,
// in the order they were recorded.
func (k *SimulatedKernel) DrainExitNotifications() []identity.ExitNotification {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := k.exitQueue
	k.exitQueue = nil
	return out
}

// CreateChannel allocates a fresh channel bounded at capacity.
func (k *SimulatedKernel) CreateChannel(capacity int) (ids.ChannelId, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	id := k.gen.NewChannelId()
	k.channels[id] = ipc.NewChannel(id, capacity)
	return id, nil
}

// SendMessage pushes env onto channel's FIFO, applying any armed fault first.
// SendMessage never blocks.
func (k *SimulatedKernel) SendMessage(channel ids.ChannelId, env ipc.Envelope) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	ch, ok := k.channels[channel]
	if !ok {
		return newError(CodeChannelError, "channel %s does not exist", channel)
	}

	now := k.clock.Now()
	if f := k.faults.onSend(channel, env.Action, now); f != nil {
		switch f.Kind {
		case FaultDrop:
			return nil
		case FaultCorrupt:
			env.Payload, _ = ipc.NewPayload(map[string]string{"corrupted": "true"})
		case FaultDuplicate:
			if err := ch.Queue.Push(env); err != nil {
				return newError(CodeSendFailed, "queue full: %v", err)
			}
			// the push below runs unconditionally, enqueuing a second,
			// identical copy; both count against capacity.
		case FaultDelay, FaultCrashAfterN:
			// Delay and CrashAfterNMessages faults are recorded in
			// Applications() but change nothing: the message is pushed
			// immediately and no task is crashed. CrashBeforeReceive faults
			// never match a send; ReceiveMessage acts on them.
		}
	}

	if err := ch.Queue.Push(env); err != nil {
		return newError(CodeSendFailed, "queue full: %v", err)
	}
	return nil
}

// ReceiveMessage returns the next envelope in FIFO order from channel. If the
// queue is empty and timeout is non-nil, it returns Timeout (the timeout is
// deemed to have elapsed immediately in the simulation, since virtual time
// only moves via explicit Sleep/AdvanceTime calls a caller must arrange
// itself before retrying). A nil timeout on an empty queue would block
// indefinitely per spec §5; since this reference implementation has no
// concurrent scheduler driving the simulation forward underneath a blocked
// caller, that case is reported as CodeWouldDeadlock instead of hanging the
// calling goroutine forever — tests must arrange delivery before receiving.
func (k *SimulatedKernel) ReceiveMessage(channel ids.ChannelId, timeout *vtime.Duration) (ipc.Envelope, error) {
	k.mu.Lock()
	ch, ok := k.channels[channel]
	if !ok {
		k.mu.Unlock()
		return ipc.Envelope{}, newError(CodeChannelError, "channel %s does not exist", channel)
	}

	env, ok := ch.Queue.Peek()
	if !ok {
		k.mu.Unlock()
		if timeout != nil {
			return ipc.Envelope{}, newError(CodeTimeout, "channel %s empty after %s", channel, *timeout)
		}
		return ipc.Envelope{}, newError(CodeWouldDeadlock, "channel %s empty and no delivery arranged", channel)
	}

	now := k.clock.Now()
	if f := k.faults.onReceive(channel, env.Action, now); f != nil && f.Kind == FaultCrashBeforeReceive {
		k.mu.Unlock()
		return ipc.Envelope{}, newError(CodeChannelError, "crash-before-receive fault fired on channel %s", channel)
	}

	env, _ = ch.Queue.Pop()
	k.mu.Unlock()
	return env, nil
}

// GrantCapability records a grant of cap to task's execution if it exists.
func (k *SimulatedKernel) GrantCapability(task ids.ExecutionId, cap capability.Any) error {
	if _, ok := k.resolveDomain(task); !ok {
		return newError(CodeSendFailed, "execution %s does not exist", task)
	}
	if err := capability.GrantHandle(k.caps, task, cap.Handle()); err != nil {
		return newError(CodeSendFailed, "%v", err)
	}
	return nil
}

// RegisterService records service -> channel under name with the given
// schema version.
func (k *SimulatedKernel) RegisterService(service ids.ServiceId, name string, channel ids.ChannelId, schema ipc.SchemaVersion) error {
	if err := k.reg.Register(service, name, channel, registry.Descriptor{Schema: schema}); err != nil {
		return newError(CodeAlreadyRegistered, "%v", err)
	}
	return nil
}

// LookupService returns the channel registered for service.
func (k *SimulatedKernel) LookupService(service ids.ServiceId) (ids.ChannelId, error) {
	ch, err := k.reg.Lookup(service)
	if err != nil {
		return ids.ChannelId{}, newError(CodeServiceNotFound, "%v", err)
	}
	return ch, nil
}

// LookupServiceByName resolves name -> (service, channel).
func (k *SimulatedKernel) LookupServiceByName(name string) (ids.ServiceId, ids.ChannelId, error) {
	svc, ch, err := k.reg.LookupByName(name)
	if err != nil {
		return ids.ServiceId{}, ids.ChannelId{}, newError(CodeServiceNotFound, "%v", err)
	}
	return svc, ch, nil
}

// ListServices returns every registered service entry.
func (k *SimulatedKernel) ListServices() []registry.Entry {
	return k.reg.List()
}

var _ Kernel = (*SimulatedKernel)(nil)
