// Package procmgr implements the process manager (spec §4.6): it starts
// managed services, drains the kernel's exit notifications, and restarts
// services according to their RestartPolicy.
package procmgr

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"pandakernel/internal/identity"
	"pandakernel/internal/ids"
	"pandakernel/internal/kernel"
)

// LifecycleState is a managed service's wire-stable lifecycle state.
type LifecycleState string

const (
	StateStarting   LifecycleState = "Starting"
	StateRunning    LifecycleState = "Running"
	StateStopping   LifecycleState = "Stopping"
	StateStopped    LifecycleState = "Stopped"
	StateFailed     LifecycleState = "Failed"
	StateRestarting LifecycleState = "Restarting"
)

// Descriptor describes a service the process manager should start and
// supervise.
type Descriptor struct {
	Service ids.ServiceId
	Name    string
	Task    kernel.TaskDescriptor
	Restart RestartPolicy
}

// Status is a point-in-time snapshot of a managed service, returned by
// GetStatus and ListProcesses.
type Status struct {
	Service  ids.ServiceId
	Name     string
	Task     ids.TaskId
	State    LifecycleState
	Attempts int
}

// RestartEvent records one restart decision, carrying a monotonic sequence
// number so that two runs with identical inputs produce identically ordered
// restart traces (mirrors the Seq field on capability.Event; see
// DESIGN.md "Audit-log sequence numbers").
type RestartEvent struct {
	Seq      uint64
	Service  ids.ServiceId
	Reason   string
	Attempt  int
	Restarted bool
}

type managedRecord struct {
	descriptor Descriptor
	handle     kernel.TaskHandle
	state      LifecycleState
	attempts   int
}

// exitSource abstracts the kernel surface the process manager needs to
// observe terminations; SimulatedKernel satisfies it.
type exitSource interface {
	DrainExitNotifications() []identity.ExitNotification
}

// Manager is the process manager's in-memory state: a map service-ID →
// managed record, and the reverse task-ID → service-ID map the spec
// requires for O(1) dispatch of an exit notification to its service.
type Manager struct {
	mu       sync.Mutex
	kernel   kernel.Kernel
	services map[ids.ServiceId]*managedRecord
	tasks    map[ids.TaskId]ids.ServiceId
	events   []RestartEvent
	seq      uint64
}

// New returns a process manager spawning tasks through k.
func New(k kernel.Kernel) *Manager {
	return &Manager{
		kernel:   k,
		services: make(map[ids.ServiceId]*managedRecord),
		tasks:    make(map[ids.TaskId]ids.ServiceId),
	}
}

// StartService spawns desc's task, records it Running, and links its task
// ID to the service ID. Fails if the service ID is already managed.
func (m *Manager) StartService(desc Descriptor) (kernel.TaskHandle, error) {
	m.mu.Lock()
	if _, exists := m.services[desc.Service]; exists {
		m.mu.Unlock()
		return kernel.TaskHandle{}, newError(CodeAlreadyManaged, "service %s is already managed", desc.Service)
	}
	m.mu.Unlock()

	handle, err := m.kernel.SpawnTask(desc.Task)
	if err != nil {
		return kernel.TaskHandle{}, newError(CodeSpawnFailed, "%v", err)
	}

	m.mu.Lock()
	rec := &managedRecord{descriptor: desc, handle: handle, state: StateRunning}
	m.services[desc.Service] = rec
	m.tasks[handle.Task] = desc.Service
	m.mu.Unlock()

	return handle, nil
}

// GetStatus returns a snapshot of service's current state.
func (m *Manager) GetStatus(service ids.ServiceId) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.services[service]
	if !ok {
		return Status{}, newError(CodeNotManaged, "service %s is not managed", service)
	}
	return statusOf(service, rec), nil
}

// ListProcesses returns a snapshot of every managed service.
func (m *Manager) ListProcesses() []Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Status, 0, len(m.services))
	for svc, rec := range m.services {
		out = append(out, statusOf(svc, rec))
	}
	return out
}

func statusOf(svc ids.ServiceId, rec *managedRecord) Status {
	return Status{
		Service:  svc,
		Name:     rec.descriptor.Name,
		Task:     rec.handle.Task,
		State:    rec.state,
		Attempts: rec.attempts,
	}
}

// Terminate marks service Stopping then Stopped without consulting its
// restart policy; used for operator-initiated shutdown (process_manager.terminate).
func (m *Manager) Terminate(service ids.ServiceId) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.services[service]
	if !ok {
		return newError(CodeNotManaged, "service %s is not managed", service)
	}
	rec.state = StateStopping
	rec.state = StateStopped
	return nil
}

// RestartEvents returns a copy of every restart decision recorded so far.
func (m *Manager) RestartEvents() []RestartEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RestartEvent, len(m.events))
	copy(out, m.events)
	return out
}

// HandleExits drains every pending exit notification from source and applies
// each managed service's restart policy, in drain order. Respawns call into
// the kernel's shared, deterministic ID generator and clock (SpawnTask,
// Sleep), so applying them out of notification order would make which
// service mints which ID a function of goroutine scheduling rather than
// input — breaking P10 (byte-identical audit logs for identical inputs and
// fault plans) the moment two services crash in the same batch. g.SetLimit(1)
// keeps the errgroup (used for its error aggregation, below) to one
// in-flight applyExit at a time, so submission order — drain order — is
// also completion order; the first spawn failure is returned only after
// every notification has been applied.
func (m *Manager) HandleExits(source exitSource) error {
	notifications := source.DrainExitNotifications()

	var g errgroup.Group
	g.SetLimit(1)
	var errMu sync.Mutex
	var firstErr error

	for _, n := range notifications {
		n := n
		m.mu.Lock()
		service, tracked := m.tasks[taskOf(n)]
		m.mu.Unlock()
		if !tracked {
			continue
		}
		g.Go(func() error {
			if err := m.applyExit(service, n); err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return firstErr
}

func taskOf(n identity.ExitNotification) ids.TaskId {
	if n.Task == nil {
		return ids.TaskId{}
	}
	return *n.Task
}

// applyExit updates service's recorded state for one exit notification and,
// per its restart policy, respawns it.
func (m *Manager) applyExit(service ids.ServiceId, n identity.ExitNotification) error {
	m.mu.Lock()
	rec, ok := m.services[service]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	if n.Reason.IsNormal() {
		rec.state = StateStopped
	} else {
		rec.state = StateFailed
	}
	policy := rec.descriptor.Restart
	attempts := rec.attempts
	m.mu.Unlock()

	restart := shouldRestart(policy, n.Reason, attempts)

	m.mu.Lock()
	m.seq++
	m.events = append(m.events, RestartEvent{
		Seq: m.seq, Service: service, Reason: n.Reason.String(),
		Attempt: attempts + 1, Restarted: restart,
	})
	m.mu.Unlock()

	if !restart {
		return nil
	}

	m.mu.Lock()
	rec.attempts++
	attempt := rec.attempts
	rec.state = StateRestarting
	desc := rec.descriptor
	delete(m.tasks, rec.handle.Task)
	m.mu.Unlock()

	if policy.Kind == RestartExponentialBackoff {
		m.kernel.Sleep(backoffDelay(attempt))
	}

	handle, err := m.kernel.SpawnTask(desc.Task)
	if err != nil {
		m.mu.Lock()
		rec.state = StateFailed
		m.mu.Unlock()
		return newError(CodeSpawnFailed, "restarting %s: %v", service, err)
	}

	m.mu.Lock()
	rec.handle = handle
	rec.state = StateRunning
	m.tasks[handle.Task] = service
	m.mu.Unlock()
	return nil
}
