package storage

import (
	"sync"

	"pandakernel/internal/budget"
	"pandakernel/internal/ids"
)

// TxState is a transaction's wire-stable lifecycle state.
type TxState string

const (
	TxActive     TxState = "Active"
	TxCommitted  TxState = "Committed"
	TxRolledBack TxState = "RolledBack"
)

// pendingWrite stages one object mutation until the owning transaction
// commits; nothing is visible in the store's object histories before then,
// which is what gives two independent transactions isolation from each
// other's uncommitted modifications (spec §4.7).
type pendingWrite struct {
	object  ids.ObjectId
	version ids.VersionId
	value   Value
}

// Transaction is the storage contract's state machine: Active →
// Committed | RolledBack, both terminal.
type Transaction struct {
	mu       sync.Mutex
	id       ids.TransactionId
	state    TxState
	store    *Store
	modified map[ids.ObjectId]bool
	writes   []pendingWrite
	budget   *budget.Context
}

// ID returns the transaction's identifier.
func (t *Transaction) ID() ids.TransactionId { return t.id }

// State returns the transaction's current lifecycle state.
func (t *Transaction) State() TxState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Modify appends object to the transaction's modification set, staging
// value as its next version. Fails if the transaction is not Active.
func (t *Transaction) Modify(object ids.ObjectId, value Value) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TxActive {
		return newError(CodeTransactionClosed, "transaction %s is %s, not Active", t.id, t.state)
	}
	if t.modified == nil {
		t.modified = make(map[ids.ObjectId]bool)
	}
	t.modified[object] = true
	t.writes = append(t.writes, pendingWrite{object: object, version: t.store.assignVersion(), value: value})
	return nil
}

// ModifiedObjects returns the set of objects staged for modification so far.
func (t *Transaction) ModifiedObjects() []ids.ObjectId {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]ids.ObjectId, 0, len(t.modified))
	for id := range t.modified {
		out = append(out, id)
	}
	return out
}

// Commit transitions Active → Committed, applying every staged write to the
// store's object histories (and, if the store has a journal attached,
// durably recording it first). Fails if not Active. If the transaction was
// created with a resource budget (Store.NewTransactionWithBudget), Commit
// charges it one storage-op unit after the commit applies (spec §4.8
// "Storage commit consumes 1 storage op"); a resulting BudgetExhausted is
// reported to the caller but does not unwind the already-applied commit,
// matching how internal/pipeline's Executor charges pipeline-stage budget
// after a stage completes.
func (t *Transaction) Commit() error {
	t.mu.Lock()
	if t.state != TxActive {
		t.mu.Unlock()
		return newError(CodeTransactionClosed, "transaction %s is %s, not Active", t.id, t.state)
	}
	writes := make([]pendingWrite, len(t.writes))
	copy(writes, t.writes)
	t.mu.Unlock()

	if t.store.journal != nil {
		if err := t.store.journal.record(t.id, writes); err != nil {
			return err
		}
	}

	for _, w := range writes {
		t.store.apply(w.object, w.version, w.value)
	}

	t.mu.Lock()
	t.state = TxCommitted
	bud := t.budget
	t.mu.Unlock()

	if bud != nil {
		if err := bud.TryConsume(budget.ResourceStorageOps, 1, "storage.commit"); err != nil {
			return err
		}
	}
	return nil
}

// Rollback transitions Active → RolledBack and clears the modification set.
// Fails if not Active.
func (t *Transaction) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TxActive {
		return newError(CodeTransactionClosed, "transaction %s is %s, not Active", t.id, t.state)
	}
	t.state = TxRolledBack
	t.modified = nil
	t.writes = nil
	return nil
}
