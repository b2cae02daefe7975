package pipeline

import (
	"pandakernel/internal/ids"
	"pandakernel/internal/vtime"
)

// RetryPolicy controls how many times a failing stage is retried and the
// backoff shape between attempts (spec §4.9 "retry policy (max_attempts,
// backoff shape)"), following the same exponential-growth convention as
// internal/procmgr's restart backoff.
type RetryPolicy struct {
	MaxAttempts       int
	BackoffBase       vtime.Duration
	BackoffMultiplier float64
}

// delay returns the backoff before the Nth attempt (1-indexed); attempt 1
// never waits.
func (p RetryPolicy) delay(attempt int) vtime.Duration {
	if attempt <= 1 || p.BackoffBase <= 0 {
		return 0
	}
	mult := p.BackoffMultiplier
	if mult <= 0 {
		mult = 1
	}
	d := float64(p.BackoffBase)
	for i := 1; i < attempt-1; i++ {
		d *= mult
	}
	return vtime.Duration(d)
}

// StageSpec describes one pipeline stage: the handler service that performs
// it, the schema identities of its input/output payloads, the retry policy
// governing failures, and a budget cost (spec §4.9). The Executor does not
// check the schema identities, and it charges one pipeline-stage unit per
// completed stage whatever BudgetCost holds.
type StageSpec struct {
	Name           string
	InputSchemaID  string
	OutputSchemaID string
	Handler        ids.ServiceId
	Retry          RetryPolicy
	BudgetCost     uint64
}

// Retryable marks an error returned by a StageHandler as eligible for retry
// under the stage's RetryPolicy; any other error terminates the pipeline
// immediately (spec §4.9 "terminates ... on the first non-retryable
// error").
type Retryable struct {
	Err error
}

func (r *Retryable) Error() string { return r.Err.Error() }
func (r *Retryable) Unwrap() error { return r.Err }

// StageHandler invokes one stage's handler against input, returning its
// output or an error. Wrap a recoverable error in *Retryable to allow the
// executor to retry it.
type StageHandler func(stage StageSpec, input map[string]any) (map[string]any, error)

// StageResult records the outcome of one stage execution, including every
// retry attempt, for the trace the executor emits (spec §4.9 "the executor
// emits a trace of StageResults").
type StageResult struct {
	Stage    string
	Attempt  int
	Success  bool
	Output   map[string]any
	Err      error
	Retried  bool
	WaitedAt vtime.Instant
}
