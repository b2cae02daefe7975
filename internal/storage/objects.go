// Package storage implements the versioned object store and transactional
// contract from spec §4.7: object kinds (Blob/Log/Map), monotonic versions,
// a Transaction state machine, optional journaling over a block device, and
// schema-migration lineage.
package storage

import (
	"sync"

	"pandakernel/internal/ids"
)

// ObjectKind is the wire-stable set of storage object kinds.
type ObjectKind string

const (
	KindBlob ObjectKind = "Blob"
	KindLog  ObjectKind = "Log"
	KindMap  ObjectKind = "Map"
)

// SchemaRef pins an object to a schema identity and version, carrying the
// migration lineage a Migrator appends to as it walks migration steps.
type SchemaRef struct {
	SchemaID string
	Version  int
	Lineage  []MigrationStep
}

// MigrationStep records one schema-migration applied to an object.
type MigrationStep struct {
	FromVersion int
	ToVersion   int
	Note        string
}

// Value is one immutable version of an object's content. Exactly one of the
// kind-specific fields is populated, matching Kind.
type Value struct {
	Kind    ObjectKind
	Blob    []byte
	Log     []LogRecord
	Map     map[string]MapValue
	Schema  SchemaRef
}

// LogRecord is one entry appended to a Log object.
type LogRecord struct {
	Seq  uint64
	Data []byte
}

// MapValue is a Map object's value: either opaque bytes or a reference to
// another storage object.
type MapValue struct {
	Bytes []byte
	Ref   *ids.ObjectId
}

// objectHistory is the store's internal record for one ObjectId: every
// version ever committed, oldest first, never mutated or pruned (spec §4.7
// "preserving prior versions as immutable").
type objectHistory struct {
	mu       sync.Mutex
	versions []versionedValue
}

type versionedValue struct {
	version ids.VersionId
	value   Value
}

func (h *objectHistory) append(version ids.VersionId, v Value) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.versions = append(h.versions, versionedValue{version: version, value: v})
}

func (h *objectHistory) latest() (versionedValue, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.versions) == 0 {
		return versionedValue{}, false
	}
	return h.versions[len(h.versions)-1], true
}

func (h *objectHistory) at(version ids.VersionId) (Value, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.versions) - 1; i >= 0; i-- {
		if h.versions[i].version == version {
			return h.versions[i].value, true
		}
	}
	return Value{}, false
}
