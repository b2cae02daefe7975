package kernel

import (
	"sync"

	"pandakernel/internal/vtime"
)

// GateOutcome is the terminal state of one syscall-gate trap entry.
type GateOutcome string

const (
	GateInvoked   GateOutcome = "Invoked"
	GateCompleted GateOutcome = "Completed"
	GateRejected  GateOutcome = "Rejected"
)

// GateEvent is one recorded syscall-gate trap entry (spec §4.2 "Syscall
// gate"). A syscall's lifecycle is one Invoked event followed by exactly one
// Completed or Rejected event.
type GateEvent struct {
	Syscall  string
	Outcome  GateOutcome
	Reason   string
	At       vtime.Instant
}

// SyscallGate is the only path by which user-task contexts reach kernel
// operations in the hal variant; the simulated kernel keeps one so tests can
// exercise the same trap/record/complete lifecycle without a real trap.
type SyscallGate struct {
	mu     sync.Mutex
	clock  vtime.Clock
	events []GateEvent
}

func newSyscallGate(clock vtime.Clock) *SyscallGate {
	return &SyscallGate{clock: clock}
}

// Invoke records a trap entry for syscall and returns a token used to record
// its completion.
func (g *SyscallGate) Invoke(syscall string) *GateEntry {
	g.mu.Lock()
	g.events = append(g.events, GateEvent{Syscall: syscall, Outcome: GateInvoked, At: g.clock.Now()})
	g.mu.Unlock()
	return &GateEntry{gate: g, syscall: syscall}
}

// Events returns every recorded gate event, in order.
func (g *SyscallGate) Events() []GateEvent {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]GateEvent, len(g.events))
	copy(out, g.events)
	return out
}

// GateEntry is the in-flight record of one Invoke call; exactly one of
// Complete or Reject must be called on it.
type GateEntry struct {
	gate    *SyscallGate
	syscall string
}

// Complete records that the syscall completed successfully.
func (e *GateEntry) Complete() {
	e.gate.mu.Lock()
	defer e.gate.mu.Unlock()
	e.gate.events = append(e.gate.events, GateEvent{Syscall: e.syscall, Outcome: GateCompleted, At: e.gate.clock.Now()})
}

// Reject records that the syscall was rejected with reason.
func (e *GateEntry) Reject(reason string) {
	e.gate.mu.Lock()
	defer e.gate.mu.Unlock()
	e.gate.events = append(e.gate.events, GateEvent{Syscall: e.syscall, Outcome: GateRejected, Reason: reason, At: e.gate.clock.Now()})
}

// Call runs fn as the body of a gated syscall: it invokes the gate, runs fn,
// and records Completed or Rejected based on whether fn returned an error.
func (g *SyscallGate) Call(syscall string, fn func() error) error {
	entry := g.Invoke(syscall)
	if err := fn(); err != nil {
		entry.Reject(err.Error())
		return err
	}
	entry.Complete()
	return nil
}
