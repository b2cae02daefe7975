package storage

// BlockSize is the fixed block size every BlockDevice implementation reads
// and writes in (spec §6 "Block device").
const BlockSize = 4096

// BlockDevice is the trait-object-shaped abstraction the journal writes
// through: fixed-size blocks and explicit read/write/flush. Failures are
// reported with the storage Codes OutOfBounds and InvalidSize (RAMDisk) and
// IoError (FailingDevice); CodeNotReady is defined but no implementation in
// this package returns it.
type BlockDevice interface {
	BlockCount() int
	ReadBlock(idx int, buf []byte) error
	WriteBlock(idx int, buf []byte) error
	Flush() error
}
