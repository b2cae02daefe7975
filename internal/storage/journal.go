package storage

import (
	"encoding/binary"
	"encoding/json"
	"sync"

	"pandakernel/internal/ids"
)

// journalRecordKind distinguishes the three record shapes a committed
// transaction is journaled as (spec §4.7 "header record → per-object write
// records → commit marker").
type journalRecordKind string

const (
	recordHeader journalRecordKind = "header"
	recordWrite  journalRecordKind = "write"
	recordCommit journalRecordKind = "commit"
)

// journalRecord is the on-disk shape of one journal block's payload.
type journalRecord struct {
	Kind    journalRecordKind
	TxID    ids.Raw
	Object  ids.Raw
	Version ids.Raw
	Value   Value
}

// Journal durably records committed transactions as a sequential log of
// blocks over a BlockDevice, in the header/writes/commit-marker shape spec
// §4.7 requires, so that a crash between writing the writes and writing the
// commit marker leaves the transaction recoverably absent rather than
// partially applied.
type Journal struct {
	mu        sync.Mutex
	device    BlockDevice
	nextBlock int
}

// NewJournal wraps device in a fresh journal starting at block 0. Use Mount
// instead to recover an existing journal's prior contents.
func NewJournal(device BlockDevice) *Journal {
	return &Journal{device: device}
}

// AdoptPosition copies other's next-free-block position into j, for wrapping
// the same underlying blocks in a second Journal (e.g. one fronted by a
// FailingDevice in tests) without clobbering records other already wrote.
func (j *Journal) AdoptPosition(other *Journal) {
	other.mu.Lock()
	pos := other.nextBlock
	other.mu.Unlock()
	j.mu.Lock()
	j.nextBlock = pos
	j.mu.Unlock()
}

// record durably appends one committed transaction's writes to the journal:
// a header block, one write block per staged object, then a commit marker
// block, then flushes the device once. A FailingDevice can fail any of the
// block writes, which leaves the commit marker unwritten.
func (j *Journal) record(tx ids.TransactionId, writes []pendingWrite) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.writeRecord(journalRecord{Kind: recordHeader, TxID: tx.Raw()}); err != nil {
		return err
	}
	for _, w := range writes {
		rec := journalRecord{
			Kind:    recordWrite,
			TxID:    tx.Raw(),
			Object:  w.object.Raw(),
			Version: w.version.Raw(),
			Value:   w.value,
		}
		if err := j.writeRecord(rec); err != nil {
			return err
		}
	}
	if err := j.writeRecord(journalRecord{Kind: recordCommit, TxID: tx.Raw()}); err != nil {
		return err
	}
	return j.device.Flush()
}

// writeRecord serializes rec and writes it to the next free block. Callers
// must hold j.mu.
func (j *Journal) writeRecord(rec journalRecord) error {
	buf, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	if err := j.device.WriteBlock(j.nextBlock, buf); err != nil {
		return err
	}
	j.nextBlock++
	return nil
}

// encodeRecord marshals rec as a length-prefixed JSON payload padded to
// BlockSize; a record that doesn't fit in one block is a configuration
// error (storage objects journaled this way are expected to be small).
func encodeRecord(rec journalRecord) ([]byte, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, newError(CodeIoError, "encoding journal record: %v", err)
	}
	if len(payload)+4 > BlockSize {
		return nil, newError(CodeInvalidSize, "journal record of %d bytes exceeds block size %d", len(payload), BlockSize)
	}
	buf := make([]byte, BlockSize)
	binary.BigEndian.PutUint32(buf[:4], uint32(len(payload)))
	copy(buf[4:], payload)
	return buf, nil
}

// decodeRecord reverses encodeRecord. A zero length prefix means the block
// was never written (end of log).
func decodeRecord(buf []byte) (journalRecord, bool, error) {
	length := binary.BigEndian.Uint32(buf[:4])
	if length == 0 {
		return journalRecord{}, false, nil
	}
	if int(length)+4 > len(buf) {
		return journalRecord{}, false, newError(CodeCorruptJournal, "record length %d exceeds block size", length)
	}
	var rec journalRecord
	if err := json.Unmarshal(buf[4:4+length], &rec); err != nil {
		return journalRecord{}, false, newError(CodeCorruptJournal, "decoding journal record: %v", err)
	}
	return rec, true, nil
}

// Mount scans device from block 0, replaying every transaction whose commit
// marker is present into store and discarding (leaving no observable
// effect) any transaction whose commit marker is absent — the recovery
// contract spec §4.7 requires. It returns a Journal positioned to append
// after the last record it saw, so subsequent commits continue the log
// rather than overwrite it.
func Mount(device BlockDevice, store *Store) (*Journal, error) {
	type txBuffer struct {
		writes    []journalRecord
		committed bool
	}
	byTx := make(map[ids.Raw]*txBuffer)
	order := make([]ids.Raw, 0)

	buf := make([]byte, BlockSize)
	idx := 0
	for idx < device.BlockCount() {
		if err := device.ReadBlock(idx, buf); err != nil {
			return nil, err
		}
		rec, ok, err := decodeRecord(buf)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		tb, seen := byTx[rec.TxID]
		if !seen {
			tb = &txBuffer{}
			byTx[rec.TxID] = tb
			order = append(order, rec.TxID)
		}
		switch rec.Kind {
		case recordHeader:
			// no-op: presence of the buffer itself is enough bookkeeping.
		case recordWrite:
			tb.writes = append(tb.writes, rec)
		case recordCommit:
			tb.committed = true
		}
		idx++
	}

	for _, txID := range order {
		tb := byTx[txID]
		if !tb.committed {
			continue // discarded: no commit marker, spec §4.7 recovery contract
		}
		for _, w := range tb.writes {
			store.apply(ids.ObjectIdFromRaw(w.Object), ids.VersionIdFromRaw(w.Version), w.Value)
		}
	}

	return &Journal{device: device, nextBlock: idx}, nil
}
