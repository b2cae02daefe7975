/*
Package capability implements the kernel's typed capability subsystem.

A capability is a numeric Handle wrapped in the phantom-typed Cap[T], so a
capability for one resource type cannot be passed where another is
expected without an explicit TryCast. A Manager records each capability's
Metadata (owner, grantor, status, lease) and exposes the lifecycle as
package functions taking *Manager: Create, Use, Grant/GrantHandle,
Delegate, Clone, Revoke, Lease, Drop and TryCast. Lifecycle steps are
appended to the Manager's in-memory AuditLog, each Event carrying a virtual
timestamp and a monotonic Seq.
*/
package capability
