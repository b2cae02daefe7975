package storage

import (
	"sync"

	"pandakernel/internal/budget"
	"pandakernel/internal/ids"
)

// Store is the versioned object store: every successful write produces a
// fresh VersionId while preserving prior versions as immutable (spec §4.7).
// All mutation goes through a Transaction; Store itself only ever appends.
type Store struct {
	mu      sync.Mutex
	gen     *ids.Generators
	objects map[ids.ObjectId]*objectHistory
	journal *Journal
}

// New returns an empty store. journal, if non-nil, receives a durable record
// of every committed transaction's writes before they become visible.
func New(gen *ids.Generators, journal *Journal) *Store {
	if gen == nil {
		gen = ids.NewGenerators(nil)
	}
	return &Store{gen: gen, objects: make(map[ids.ObjectId]*objectHistory), journal: journal}
}

// NewTransaction returns a fresh transaction in state Active, with no
// resource budget attached (an unmetered commit).
func (s *Store) NewTransaction() *Transaction {
	return s.NewTransactionWithBudget(nil)
}

// NewTransactionWithBudget returns a fresh transaction in state Active whose
// Commit charges bud one storage-op unit (spec §4.8). bud may be nil, in
// which case Commit is unmetered.
func (s *Store) NewTransactionWithBudget(bud *budget.Context) *Transaction {
	return &Transaction{id: s.gen.NewTransactionId(), state: TxActive, store: s, budget: bud}
}

// assignVersion mints a fresh VersionId for an about-to-be-applied write,
// without making it visible yet. Letting the caller (Transaction.Commit)
// mint versions before journaling means a recovered journal entry can be
// replayed with the exact version it was committed under.
func (s *Store) assignVersion() ids.VersionId { return s.gen.NewVersionId() }

// apply makes a pre-assigned (object, version, value) write visible.
// Callers (Transaction.Commit, and journal recovery) must not hold any
// Store lock.
func (s *Store) apply(object ids.ObjectId, version ids.VersionId, value Value) {
	s.mu.Lock()
	hist, ok := s.objects[object]
	if !ok {
		hist = &objectHistory{}
		s.objects[object] = hist
	}
	s.mu.Unlock()

	hist.append(version, value)
}

// ReadLatest returns the most recently committed version of object.
func (s *Store) ReadLatest(object ids.ObjectId) (Value, ids.VersionId, error) {
	s.mu.Lock()
	hist, ok := s.objects[object]
	s.mu.Unlock()
	if !ok {
		return Value{}, ids.VersionId{}, newError(CodeObjectNotFound, "object %s does not exist", object)
	}
	vv, ok := hist.latest()
	if !ok {
		return Value{}, ids.VersionId{}, newError(CodeObjectNotFound, "object %s has no committed versions", object)
	}
	return vv.value, vv.version, nil
}

// ReadVersion returns a specific version of object.
func (s *Store) ReadVersion(object ids.ObjectId, version ids.VersionId) (Value, error) {
	s.mu.Lock()
	hist, ok := s.objects[object]
	s.mu.Unlock()
	if !ok {
		return Value{}, newError(CodeObjectNotFound, "object %s does not exist", object)
	}
	v, ok := hist.at(version)
	if !ok {
		return Value{}, newError(CodeVersionNotFound, "object %s has no version %s", object, version)
	}
	return v, nil
}

// NewObjectId mints a fresh object identifier for a caller about to create
// an object via a transaction's Modify.
func (s *Store) NewObjectId() ids.ObjectId { return s.gen.NewObjectId() }
