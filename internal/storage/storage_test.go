package storage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pandakernel/internal/budget"
	"pandakernel/internal/ids"
	"pandakernel/internal/storage"
)

func TestTransactionStateMachine(t *testing.T) {
	store := storage.New(ids.NewGenerators(ids.NewDeterministicSource(1)), nil)
	obj := store.NewObjectId()

	tx := store.NewTransaction()
	require.Equal(t, storage.TxActive, tx.State())

	require.NoError(t, tx.Modify(obj, storage.Value{Kind: storage.KindBlob, Blob: []byte("v1")}))
	require.NoError(t, tx.Commit())
	require.Equal(t, storage.TxCommitted, tx.State())

	require.Error(t, tx.Commit())
	require.Error(t, tx.Rollback())
	require.Error(t, tx.Modify(obj, storage.Value{}))
}

func TestRollbackDiscardsModifications(t *testing.T) {
	store := storage.New(ids.NewGenerators(ids.NewDeterministicSource(1)), nil)
	obj := store.NewObjectId()

	tx := store.NewTransaction()
	require.NoError(t, tx.Modify(obj, storage.Value{Kind: storage.KindBlob, Blob: []byte("abandoned")}))
	require.NoError(t, tx.Rollback())
	require.Equal(t, storage.TxRolledBack, tx.State())

	_, _, err := store.ReadLatest(obj)
	require.Error(t, err)
	var sErr *storage.Error
	require.ErrorAs(t, err, &sErr)
	require.Equal(t, storage.CodeObjectNotFound, sErr.Code)
}

func TestTwoTransactionsSeeNoUncommittedEffectsOfEachOther(t *testing.T) {
	store := storage.New(ids.NewGenerators(ids.NewDeterministicSource(1)), nil)
	obj := store.NewObjectId()

	base := store.NewTransaction()
	require.NoError(t, base.Modify(obj, storage.Value{Kind: storage.KindBlob, Blob: []byte("v1")}))
	require.NoError(t, base.Commit())

	txA := store.NewTransaction()
	txB := store.NewTransaction()

	require.NoError(t, txA.Modify(obj, storage.Value{Kind: storage.KindBlob, Blob: []byte("from-a")}))

	v, _, err := store.ReadLatest(obj)
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), v.Blob, "txA's uncommitted write must not be visible before commit")

	require.NoError(t, txA.Commit())

	v, _, err = store.ReadLatest(obj)
	require.NoError(t, err)
	require.Equal(t, []byte("from-a"), v.Blob)

	require.NoError(t, txB.Modify(obj, storage.Value{Kind: storage.KindBlob, Blob: []byte("from-b")}))
	require.NoError(t, txB.Commit())

	v, _, err = store.ReadLatest(obj)
	require.NoError(t, err)
	require.Equal(t, []byte("from-b"), v.Blob)
}

func TestVersionHistoryPreservesPriorVersions(t *testing.T) {
	store := storage.New(ids.NewGenerators(ids.NewDeterministicSource(1)), nil)
	obj := store.NewObjectId()

	tx1 := store.NewTransaction()
	require.NoError(t, tx1.Modify(obj, storage.Value{Kind: storage.KindBlob, Blob: []byte("v1")}))
	require.NoError(t, tx1.Commit())
	_, v1, err := store.ReadLatest(obj)
	require.NoError(t, err)

	tx2 := store.NewTransaction()
	require.NoError(t, tx2.Modify(obj, storage.Value{Kind: storage.KindBlob, Blob: []byte("v2")}))
	require.NoError(t, tx2.Commit())

	latest, _, err := store.ReadLatest(obj)
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), latest.Blob)

	old, err := store.ReadVersion(obj, v1)
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), old.Blob)
}

func TestScenario_JournalRecovery(t *testing.T) {
	gen := ids.NewGenerators(ids.NewDeterministicSource(1))
	disk := storage.NewRAMDisk(64)

	journal := storage.NewJournal(disk)
	store := storage.New(gen, journal)
	obj := store.NewObjectId()

	tx := store.NewTransaction()
	require.NoError(t, tx.Modify(obj, storage.Value{Kind: storage.KindBlob, Blob: []byte("committed")}))
	require.NoError(t, tx.Commit())

	// "Drop the journal handle without flush": mount a fresh store directly
	// against the same disk, as a new process would after a crash, with no
	// reference to the original Journal or Store surviving.
	freshStore := storage.New(gen, nil)
	_, err := storage.Mount(disk, freshStore)
	require.NoError(t, err)

	v, _, err := freshStore.ReadLatest(obj)
	require.NoError(t, err)
	require.Equal(t, []byte("committed"), v.Blob)
}

func TestScenario_UncommittedTransactionAbsentAfterMount(t *testing.T) {
	gen := ids.NewGenerators(ids.NewDeterministicSource(1))
	disk := storage.NewRAMDisk(64)
	journal := storage.NewJournal(disk)
	store := storage.New(gen, journal)
	obj := store.NewObjectId()

	tx := store.NewTransaction()
	require.NoError(t, tx.Modify(obj, storage.Value{Kind: storage.KindBlob, Blob: []byte("committed")}))
	require.NoError(t, tx.Commit())

	// Fail the write after the header + one write record, so the commit
	// marker for the second transaction is never durably recorded, modeling
	// a crash mid-commit.
	failing := storage.NewFailingDevice(disk, storage.FailurePolicy{Kind: storage.FailureAfterWrites, Count: 2})
	crashJournal := storage.NewJournal(failing)
	crashJournal.AdoptPosition(journal)
	crashStore := storage.New(gen, crashJournal)
	crashObj := crashStore.NewObjectId()
	crashTx := crashStore.NewTransaction()
	require.NoError(t, crashTx.Modify(crashObj, storage.Value{Kind: storage.KindBlob, Blob: []byte("never-committed")}))
	require.Error(t, crashTx.Commit())

	freshStore := storage.New(gen, nil)
	_, err := storage.Mount(disk, freshStore)
	require.NoError(t, err)

	_, _, err = freshStore.ReadLatest(crashObj)
	require.Error(t, err, "a transaction whose commit marker never landed must have no observable effect")

	v, _, err := freshStore.ReadLatest(obj)
	require.NoError(t, err)
	require.Equal(t, []byte("committed"), v.Blob)
}

func TestCommitConsumesOneStorageOpAndExhausts(t *testing.T) {
	store := storage.New(ids.NewGenerators(ids.NewDeterministicSource(1)), nil)
	exec := ids.NewGenerators(ids.NewDeterministicSource(2)).NewExecutionId()
	log := &budget.ExhaustionLog{}
	limit := uint64(1)
	bud := budget.NewContext(exec, budget.Caps{StorageOps: &limit}, log)

	obj := store.NewObjectId()
	tx1 := store.NewTransactionWithBudget(bud)
	require.NoError(t, tx1.Modify(obj, storage.Value{Kind: storage.KindBlob, Blob: []byte("v1")}))
	require.NoError(t, tx1.Commit())
	require.Equal(t, uint64(1), bud.Usage().StorageOps)

	obj2 := store.NewObjectId()
	tx2 := store.NewTransactionWithBudget(bud)
	require.NoError(t, tx2.Modify(obj2, storage.Value{Kind: storage.KindBlob, Blob: []byte("v2")}))
	err := tx2.Commit()
	require.Error(t, err)
	var exhausted *budget.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	require.Equal(t, budget.ResourceStorageOps, exhausted.Resource)

	// the commit itself already applied — budget exhaustion is reported,
	// not unwound.
	require.Equal(t, storage.TxCommitted, tx2.State())
	v, _, err := store.ReadLatest(obj2)
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), v.Blob)
}

func TestMigratorRecordsLineage(t *testing.T) {
	m := storage.NewMigrator("widget")
	m.AddStep(1, 2, "rename field", func(v storage.Value) (storage.Value, error) {
		return v, nil
	})
	m.AddStep(2, 3, "add default", func(v storage.Value) (storage.Value, error) {
		return v, nil
	})

	v := storage.Value{Kind: storage.KindBlob, Blob: []byte("x"), Schema: storage.SchemaRef{SchemaID: "widget", Version: 1}}
	out, err := m.Migrate(v)
	require.NoError(t, err)
	require.Equal(t, 3, out.Schema.Version)
	require.Len(t, out.Schema.Lineage, 2)
	require.Equal(t, "rename field", out.Schema.Lineage[0].Note)
}
