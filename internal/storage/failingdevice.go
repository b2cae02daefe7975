package storage

import "sync"

// FailurePolicyKind enumerates the failing-device wrapper's wire-stable
// policies (spec §4.7 "a failing-device wrapper supports policies...").
type FailurePolicyKind string

const (
	FailureNever               FailurePolicyKind = "Never"
	FailureAfterWrites         FailurePolicyKind = "AfterWrites"
	FailureOnBlocks            FailurePolicyKind = "OnBlocks"
	FailureAfterWritesToBlocks FailurePolicyKind = "AfterWritesToBlocks"
)

// FailurePolicy configures when FailingDevice starts returning IoError on
// WriteBlock.
type FailurePolicy struct {
	Kind   FailurePolicyKind
	Count  int   // AfterWrites, AfterWritesToBlocks
	Blocks []int // OnBlocks, AfterWritesToBlocks
}

// FailingDevice wraps a BlockDevice and injects IoError on WriteBlock once
// its policy's trigger condition is met, for exercising the journal's
// recovery contract under partial-write conditions.
type FailingDevice struct {
	mu      sync.Mutex
	inner   BlockDevice
	policy  FailurePolicy
	writes  int
	toBlock map[int]int // per-block write counts, for AfterWritesToBlocks
}

// NewFailingDevice wraps inner with the given policy.
func NewFailingDevice(inner BlockDevice, policy FailurePolicy) *FailingDevice {
	return &FailingDevice{inner: inner, policy: policy, toBlock: make(map[int]int)}
}

// BlockCount implements BlockDevice.
func (d *FailingDevice) BlockCount() int { return d.inner.BlockCount() }

// ReadBlock implements BlockDevice; reads are never made to fail by policy.
func (d *FailingDevice) ReadBlock(idx int, buf []byte) error { return d.inner.ReadBlock(idx, buf) }

// Flush implements BlockDevice.
func (d *FailingDevice) Flush() error { return d.inner.Flush() }

// WriteBlock implements BlockDevice, failing with IoError once the
// configured policy's trigger condition has been reached.
func (d *FailingDevice) WriteBlock(idx int, buf []byte) error {
	d.mu.Lock()
	d.writes++
	writes := d.writes
	d.toBlock[idx]++
	blockWrites := d.toBlock[idx]
	trigger := d.shouldFail(idx, writes, blockWrites)
	d.mu.Unlock()

	if trigger {
		return newError(CodeIoError, "failing device: simulated write failure at block %d (write #%d)", idx, writes)
	}
	return d.inner.WriteBlock(idx, buf)
}

// shouldFail evaluates the policy. Callers must hold d.mu.
func (d *FailingDevice) shouldFail(idx, totalWrites, blockWrites int) bool {
	switch d.policy.Kind {
	case FailureNever:
		return false
	case FailureAfterWrites:
		return totalWrites > d.policy.Count
	case FailureOnBlocks:
		return containsInt(d.policy.Blocks, idx)
	case FailureAfterWritesToBlocks:
		return containsInt(d.policy.Blocks, idx) && blockWrites > d.policy.Count
	default:
		return false
	}
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
