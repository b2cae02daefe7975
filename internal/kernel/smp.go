package kernel

import (
	"sync"

	"pandakernel/internal/ids"
)

// SMPEventKind enumerates the multi-core scheduler events tests can observe
// (spec §4.2 "SMP scaffolding").
type SMPEventKind string

const (
	SMPTaskSelected  SMPEventKind = "TaskSelected"
	SMPTaskPreempted SMPEventKind = "TaskPreempted"
	SMPTaskExited    SMPEventKind = "TaskExited"
)

// SMPEvent is one recorded scheduler event.
type SMPEvent struct {
	Kind   SMPEventKind
	Core   int
	Task   ids.TaskId
	Reason string
}

// SMPScheduler is an optional multi-core scheduler scaffold: per-core FIFO
// run queues, a single Tick that advances every core in fixed order, and a
// configurable quantum.
// Enqueue uses round-robin core assignment; a task preempts when its ticks
// in the current quantum reach QuantumTicks.
type SMPScheduler struct {
	mu           sync.Mutex
	cores        [][]ids.TaskId
	ticksInQueue map[ids.TaskId]uint64
	quantum      uint64
	nextCore     int
	events       []SMPEvent
}

// NewSMPScheduler returns a scheduler with the given core count and quantum
// (in virtual ticks).
func NewSMPScheduler(cores int, quantumTicks uint64) *SMPScheduler {
	return &SMPScheduler{
		cores:        make([][]ids.TaskId, cores),
		ticksInQueue: make(map[ids.TaskId]uint64),
		quantum:      quantumTicks,
	}
}

// Enqueue assigns task to the next core in round-robin order.
func (s *SMPScheduler) Enqueue(task ids.TaskId) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	core := s.nextCore
	s.nextCore = (s.nextCore + 1) % len(s.cores)
	s.cores[core] = append(s.cores[core], task)
	return core
}

// Tick processes one virtual tick on every core, in fixed core order, so that
// dispatch across cores stays deterministic (spec §5 "Scheduling model").
// It selects the head of each non-empty run queue, accounts one tick of
// quantum usage, and preempts (rotating the task to the queue's tail) if the
// quantum is exhausted.
func (s *SMPScheduler) Tick() []SMPEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fired []SMPEvent
	for core, queue := range s.cores {
		if len(queue) == 0 {
			continue
		}
		task := queue[0]
		ev := SMPEvent{Kind: SMPTaskSelected, Core: core, Task: task}
		s.events = append(s.events, ev)
		fired = append(fired, ev)

		s.ticksInQueue[task]++
		if s.ticksInQueue[task] >= s.quantum {
			s.ticksInQueue[task] = 0
			s.cores[core] = append(queue[1:], task)
			pre := SMPEvent{Kind: SMPTaskPreempted, Core: core, Task: task, Reason: "quantum_exhausted"}
			s.events = append(s.events, pre)
			fired = append(fired, pre)
		}
	}
	return fired
}

// Exit removes task from its core's queue and records a TaskExited event.
func (s *SMPScheduler) Exit(task ids.TaskId, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for core, queue := range s.cores {
		for i, t := range queue {
			if t == task {
				s.cores[core] = append(queue[:i], queue[i+1:]...)
				s.events = append(s.events, SMPEvent{Kind: SMPTaskExited, Core: core, Task: task, Reason: reason})
				return
			}
		}
	}
}

// Events returns every recorded scheduler event.
func (s *SMPScheduler) Events() []SMPEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SMPEvent, len(s.events))
	copy(out, s.events)
	return out
}
