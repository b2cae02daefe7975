// Package capability implements the kernel's capability subsystem: the only
// means by which authority is named, transferred, and verified.
//
// A capability's handle is untyped and uniquely identifies one metadata
// record. Its Go type, Cap[T], carries a phantom marker T so that two
// capabilities with the same handle but different markers are distinct types
// at compile time — mirroring the generic-type-parameter phantom typing used
// by the source, without relying on any runtime reflection over T.
package capability

import (
	"sync"
	"sync/atomic"

	"pandakernel/internal/identity"
	"pandakernel/internal/ids"
	"pandakernel/internal/vtime"
)

// Handle is the untyped numeric identity of a capability. Handles are unique
// within a kernel for the kernel's lifetime (P1).
type Handle uint64

// Cap is a typed capability: possession of a Cap[T] value is the authority it
// names. T is never inspected at runtime; it exists purely to prevent one
// capability kind from being passed where another is expected.
type Cap[T any] struct {
	handle Handle
}

// IsZero reports whether c is the zero value (never issued by Create).
func (c Cap[T]) IsZero() bool { return c.handle == 0 }

// Handle returns the capability's untyped handle, the only thing the
// capability subsystem itself operates on.
func (c Cap[T]) Handle() Handle { return c.handle }

// Any is satisfied by every Cap[T] regardless of T, letting code that only
// needs a capability's handle (e.g. a task descriptor's initial capability
// list) stay untyped without losing type safety at the point of use.
type Any interface {
	Handle() Handle
}

// Status is a capability's lifecycle state.
type Status string

const (
	StatusValid        Status = "Valid"
	StatusRevoked      Status = "Revoked"
	StatusLeaseExpired Status = "LeaseExpired"
)

// Metadata is the untyped record the subsystem keeps per handle.
type Metadata struct {
	Handle    Handle
	Owner     ids.ExecutionId
	Grantor   *ids.ExecutionId
	TypeLabel string
	Status    Status
	LeaseAt   *vtime.Instant // optional lease expiry
}

// EventKind enumerates capability lifecycle events recorded to the audit
// log (spec §3 "Invariant: capability lifecycle events").
type EventKind string

const (
	EventGranted           EventKind = "Granted"
	EventDelegated         EventKind = "Delegated"
	EventCrossDomainDeleg  EventKind = "CrossDomainDelegation"
	EventCloned            EventKind = "Cloned"
	EventDropped           EventKind = "Dropped"
	EventInvalidated       EventKind = "Invalidated"
	EventRevoked           EventKind = "Revoked"
	EventLeaseExpired      EventKind = "LeaseExpired"
	EventInvalidUseAttempt EventKind = "InvalidUseAttempt"
)

// Event is a single audited capability lifecycle event.
type Event struct {
	Seq    uint64
	Handle Handle
	Kind   EventKind
	At     vtime.Instant
	Detail string
}

// AuditLog is a minimal query surface over recorded capability events,
// implemented by *Manager's embedded log. Kept as an interface so tests (and
// the cross-cutting audit package) can substitute a fake.
type AuditLog interface {
	Events() []Event
	ByHandle(h Handle) []Event
	ByKind(k EventKind) []Event
	Where(pred func(Event) bool) []Event
}

type auditLog struct {
	mu     sync.Mutex
	events []Event
	seq    uint64
}

func (l *auditLog) record(h Handle, kind EventKind, at vtime.Instant, detail string) Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	ev := Event{Seq: l.seq, Handle: h, Kind: kind, At: at, Detail: detail}
	l.events = append(l.events, ev)
	return ev
}

func (l *auditLog) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

func (l *auditLog) ByHandle(h Handle) []Event {
	return l.Where(func(e Event) bool { return e.Handle == h })
}

func (l *auditLog) ByKind(k EventKind) []Event {
	return l.Where(func(e Event) bool { return e.Kind == k })
}

func (l *auditLog) Where(pred func(Event) bool) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Event
	for _, e := range l.events {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}

// Manager is the kernel-owned root of the capability subsystem: it mints
// handles, stores metadata, and records audit events. It is never reached
// through global state — every component that needs it holds an explicit
// reference (design note "audit logs as global-adjacent singletons").
type Manager struct {
	mu       sync.Mutex
	handles  uint64
	meta     map[Handle]*Metadata
	audit    auditLog
	clock    vtime.Clock
	identity func(ids.ExecutionId) (identity.TrustDomain, bool)
}

// NewManager returns a Manager whose audit timestamps come from clock and
// whose cross-domain checks resolve an execution's trust domain via
// resolveDomain (typically the simulated kernel's task table).
func NewManager(clock vtime.Clock, resolveDomain func(ids.ExecutionId) (identity.TrustDomain, bool)) *Manager {
	return &Manager{
		meta:     make(map[Handle]*Metadata),
		clock:    clock,
		identity: resolveDomain,
	}
}

// Audit returns the manager's queryable audit log.
func (m *Manager) Audit() AuditLog { return &m.audit }

func (m *Manager) nextHandle() Handle {
	return Handle(atomic.AddUint64(&m.handles, 1))
}

// Create mints a fresh capability of kind T, owned by owner, with the given
// type label (e.g. "file.read"). Used only by trusted kernel code.
func Create[T any](m *Manager, owner ids.ExecutionId, typeLabel string) Cap[T] {
	m.mu.Lock()
	h := m.nextHandle()
	m.meta[h] = &Metadata{
		Handle:    h,
		Owner:     owner,
		TypeLabel: typeLabel,
		Status:    StatusValid,
	}
	m.mu.Unlock()
	m.audit.record(h, EventGranted, m.clock.Now(), "created for "+owner.String())
	return Cap[T]{handle: h}
}

// Lookup returns a copy of the metadata for h, applying lazy lease expiry.
func (m *Manager) Lookup(h Handle) (Metadata, bool) {
	m.mu.Lock()
	md, ok := m.meta[h]
	if !ok {
		m.mu.Unlock()
		return Metadata{}, false
	}
	m.expireIfDue(md)
	out := *md
	m.mu.Unlock()
	return out, true
}

// expireIfDue transitions md to LeaseExpired if its lease has passed, and
// records the event exactly once. Callers must hold m.mu.
func (m *Manager) expireIfDue(md *Metadata) {
	if md.Status != StatusValid || md.LeaseAt == nil {
		return
	}
	if !m.clock.Now().Before(*md.LeaseAt) {
		md.Status = StatusLeaseExpired
		m.audit.record(md.Handle, EventLeaseExpired, m.clock.Now(), "")
	}
}

// checkValid verifies md is Valid (after lazy expiry), recording an
// InvalidUseAttempt and returning a typed error otherwise. Callers must hold
// m.mu.
func (m *Manager) checkValid(md *Metadata) error {
	m.expireIfDue(md)
	if md.Status == StatusValid {
		return nil
	}
	var code Code
	switch md.Status {
	case StatusRevoked:
		code = CodeRevoked
	case StatusLeaseExpired:
		code = CodeLeaseExpired
	default:
		code = CodeInvalid
	}
	m.audit.record(md.Handle, EventInvalidUseAttempt, m.clock.Now(), string(md.Status))
	return newError(code, md.Handle, "capability is not valid: "+string(md.Status))
}

// Use verifies cap is currently Valid, as every authority-checked operation
// must before proceeding (spec §3 invariant, P2).
func Use[T any](m *Manager, cap Cap[T]) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	md, ok := m.meta[cap.handle]
	if !ok {
		m.audit.record(cap.handle, EventInvalidUseAttempt, m.clock.Now(), "unknown handle")
		return newError(CodeUnknownHandle, cap.handle, "no metadata for handle")
	}
	return m.checkValid(md)
}

// Grant records an ownership edge from cap to grantee. Fails if the grantee
// does not exist.
func Grant[T any](m *Manager, grantee ids.ExecutionId, cap Cap[T]) error {
	return GrantHandle(m, grantee, cap.handle)
}

// GrantHandle is Grant's untyped form, for callers (e.g. the kernel's
// TaskDescriptor.InitialCapabilities, typed as []Any) that only have a
// capability's erased handle.
func GrantHandle(m *Manager, grantee ids.ExecutionId, h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.identity(grantee); !ok {
		return newError(CodeGranteeNotFound, h, "grantee execution does not exist")
	}
	md, ok := m.meta[h]
	if !ok {
		return newError(CodeUnknownHandle, h, "no metadata for handle")
	}
	if err := m.checkValid(md); err != nil {
		return err
	}
	md.Owner = grantee
	m.audit.record(h, EventGranted, m.clock.Now(), "granted to "+grantee.String())
	return nil
}

// Delegate moves authority for cap from `from` to `to`, transferring
// ownership (see DESIGN.md "delegation vs clone" — the spec leaves this
// ambiguous; this implementation treats delegation as transfer). Emits
// CrossDomainDelegation instead of Delegated when the two executions are in
// different trust domains.
func Delegate[T any](m *Manager, from, to ids.ExecutionId, cap Cap[T]) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	md, ok := m.meta[cap.handle]
	if !ok {
		return newError(CodeUnknownHandle, cap.handle, "no metadata for handle")
	}
	if err := m.checkValid(md); err != nil {
		return err
	}
	if md.Owner != from {
		return newError(CodeInsufficient, cap.handle, "from execution does not hold this capability")
	}
	toDomain, ok := m.identity(to)
	if !ok {
		return newError(CodeGranteeNotFound, cap.handle, "delegate execution does not exist")
	}
	fromDomain, _ := m.identity(from)

	grantor := from
	md.Owner = to
	md.Grantor = &grantor

	kind := EventDelegated
	if fromDomain != toDomain {
		kind = EventCrossDomainDeleg
	}
	m.audit.record(cap.handle, kind, m.clock.Now(), from.String()+"->"+to.String())
	return nil
}

// Clone records an explicit Cloned event and returns a second live
// capability with the same handle, owned by the same execution. Unlike
// Delegate, the original remains valid and owned by the same execution.
func Clone[T any](m *Manager, cap Cap[T]) (Cap[T], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	md, ok := m.meta[cap.handle]
	if !ok {
		return Cap[T]{}, newError(CodeUnknownHandle, cap.handle, "no metadata for handle")
	}
	if err := m.checkValid(md); err != nil {
		return Cap[T]{}, err
	}
	m.audit.record(cap.handle, EventCloned, m.clock.Now(), "")
	return cap, nil
}

// Revoke sets cap's status to Revoked. Subsequent use fails.
func Revoke[T any](m *Manager, cap Cap[T]) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	md, ok := m.meta[cap.handle]
	if !ok {
		return newError(CodeUnknownHandle, cap.handle, "no metadata for handle")
	}
	md.Status = StatusRevoked
	md.LeaseAt = nil
	m.audit.record(cap.handle, EventRevoked, m.clock.Now(), "")
	return nil
}

// Lease records an expiry for cap, expressed as a duration from now. Once the
// kernel's current time passes the expiry, the capability lazily transitions
// to LeaseExpired on next use or Lookup.
func Lease[T any](m *Manager, cap Cap[T], expiry vtime.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	md, ok := m.meta[cap.handle]
	if !ok {
		return newError(CodeUnknownHandle, cap.handle, "no metadata for handle")
	}
	if err := m.checkValid(md); err != nil {
		return err
	}
	at := m.clock.Now().Add(expiry)
	md.LeaseAt = &at
	return nil
}

// Drop records that the holder has released the capability. It does not
// invalidate the handle for other holders (clones/grants are independent
// live references into the same metadata record).
func Drop[T any](m *Manager, cap Cap[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.meta[cap.handle]; !ok {
		return
	}
	m.audit.record(cap.handle, EventDropped, m.clock.Now(), "")
}

// TryCast always fails: cross-kind casting is impossible by construction.
// It exists so that code attempting a cast produces a clear, typed error
// instead of a compile error that might be "fixed" by unsafe means.
func TryCast[From any, To any](m *Manager, cap Cap[From]) (Cap[To], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit.record(cap.handle, EventInvalidUseAttempt, m.clock.Now(), "TryCast is always rejected")
	return Cap[To]{}, newError(CodeInvalidCast, cap.handle, "capability kinds are not interchangeable")
}
