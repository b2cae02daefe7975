// Package budget implements per-execution resource budgets: optional caps on
// message count, CPU ticks, storage operations, and pipeline stages, each
// consumed idempotently past exhaustion (spec §4.8).
package budget

import (
	"fmt"
	"sync"

	"pandakernel/internal/ids"
)

// Resource names one budgeted resource kind.
type Resource string

const (
	ResourceMessages      Resource = "MessageCount"
	ResourceCPUTicks      Resource = "CPUTicks"
	ResourceStorageOps    Resource = "StorageOps"
	ResourcePipelineStages Resource = "PipelineStages"
)

// ExhaustedError reports that a consume would push usage past its cap (spec
// §7 "BudgetExhausted"). It is returned verbatim so tests can assert on its
// fields.
type ExhaustedError struct {
	Resource       Resource
	Limit          uint64
	AttemptedUsage uint64
	Identity       ids.ExecutionId
	Operation      string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("budget exhausted: resource=%s limit=%d attempted_usage=%d identity=%s operation=%s",
		e.Resource, e.Limit, e.AttemptedUsage, e.Identity, e.Operation)
}

// Caps is the set of optional per-resource limits for one execution. A nil
// cap (zero value "set", tracked via the *uint64 pointer) means unlimited.
type Caps struct {
	Messages       *uint64
	CPUTicks       *uint64
	StorageOps     *uint64
	PipelineStages *uint64
}

func (c Caps) capFor(r Resource) *uint64 {
	switch r {
	case ResourceMessages:
		return c.Messages
	case ResourceCPUTicks:
		return c.CPUTicks
	case ResourceStorageOps:
		return c.StorageOps
	case ResourcePipelineStages:
		return c.PipelineStages
	default:
		return nil
	}
}

// Usage tracks running counters, mutated only through Context.TryConsume.
type Usage struct {
	Messages       uint64
	CPUTicks       uint64
	StorageOps     uint64
	PipelineStages uint64
}

func (u *Usage) ptrFor(r Resource) *uint64 {
	switch r {
	case ResourceMessages:
		return &u.Messages
	case ResourceCPUTicks:
		return &u.CPUTicks
	case ResourceStorageOps:
		return &u.StorageOps
	case ResourcePipelineStages:
		return &u.PipelineStages
	default:
		return nil
	}
}

// ExhaustionLog records every BudgetExhausted event for a kernel, queryable
// by tests (spec §4.8 "resource-audit log").
type ExhaustionLog struct {
	mu     sync.Mutex
	events []ExhaustedError
}

func (l *ExhaustionLog) record(e ExhaustedError) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

// Events returns a copy of all recorded exhaustion events.
func (l *ExhaustionLog) Events() []ExhaustedError {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ExhaustedError, len(l.events))
	copy(out, l.events)
	return out
}

// Context pairs an execution with running counters, a cap set, and the
// shared exhaustion log its kernel observes.
type Context struct {
	mu        sync.Mutex
	execution ids.ExecutionId
	caps      Caps
	usage     Usage
	log       *ExhaustionLog
}

// NewContext returns a budget context for execution, bounded by caps, whose
// exhaustion events are recorded to log (which may be shared across many
// contexts so the kernel keeps one resource-audit log per instance).
func NewContext(execution ids.ExecutionId, caps Caps, log *ExhaustionLog) *Context {
	if log == nil {
		log = &ExhaustionLog{}
	}
	return &Context{execution: execution, caps: caps, log: log}
}

// Usage returns a copy of the context's current usage counters.
func (c *Context) Usage() Usage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage
}

// TryConsume attempts to consume amount units of resource r for operation
// (used in the error's Operation field). If no cap is set for r, it succeeds
// silently. Otherwise, if usage+amount would exceed the cap, it fails with
// ExhaustedError and leaves usage unchanged; once exhausted, subsequent
// consumes for that resource also fail (P9).
func (c *Context) TryConsume(r Resource, amount uint64, operation string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	limit := c.caps.capFor(r)
	if limit == nil {
		return nil
	}
	usagePtr := c.usage.ptrFor(r)
	attempted := *usagePtr + amount
	if attempted > *limit {
		err := ExhaustedError{
			Resource:       r,
			Limit:          *limit,
			AttemptedUsage: attempted,
			Identity:       c.execution,
			Operation:      operation,
		}
		c.log.record(err)
		return &err
	}
	*usagePtr = attempted
	return nil
}
