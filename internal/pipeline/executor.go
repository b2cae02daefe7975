package pipeline

import (
	"pandakernel/internal/budget"
	"pandakernel/internal/vtime"
)

// clockAdvancer is the minimal virtual-time surface the executor needs to
// make retry backoff deterministic: SimulatedKernel satisfies it via
// AdvanceTime.
type clockAdvancer interface {
	AdvanceTime(d vtime.Duration) vtime.Instant
	Now() vtime.Instant
}

// Executor runs a sequence of StageSpecs against an initial payload,
// invoking handler for each, retrying per stage per its RetryPolicy, and
// consuming one budget.ResourcePipelineStages unit per completed stage
// (spec §4.8 "Pipeline stage completion consumes 1 pipeline stage").
// Execution terminates on the first non-retryable error, on a budget
// exhaustion, or when a stage's retries are exhausted.
type Executor struct {
	clock   clockAdvancer
	budget  *budget.Context
	handler StageHandler
}

// NewExecutor returns an Executor that drives stages through handler,
// advancing clock for retry backoff and charging budget for each completed
// stage. budget may be nil, in which case stage completion is unmetered.
func NewExecutor(clock clockAdvancer, bud *budget.Context, handler StageHandler) *Executor {
	return &Executor{clock: clock, budget: bud, handler: handler}
}

// Run executes stages in order against initial, passing each stage's output
// map unchanged as the next stage's input. The executor does no parameter
// templating; a handler that wants it calls RenderParams itself. It returns
// the full trace and the first
// error that stopped execution (nil if every stage completed).
func (e *Executor) Run(stages []StageSpec, initial map[string]any) ([]StageResult, error) {
	var trace []StageResult
	current := initial

	for _, stage := range stages {
		result, output, err := e.runStage(stage, current)
		trace = append(trace, result...)
		if err != nil {
			return trace, err
		}
		current = output

		if e.budget != nil {
			if err := e.budget.TryConsume(budget.ResourcePipelineStages, 1, "pipeline.stage."+stage.Name); err != nil {
				trace = append(trace, StageResult{Stage: stage.Name, Success: false, Err: err})
				return trace, err
			}
		}
	}
	return trace, nil
}

// runStage retries one stage up to its RetryPolicy.MaxAttempts, returning
// every attempt's StageResult plus the final output or terminal error.
func (e *Executor) runStage(stage StageSpec, input map[string]any) ([]StageResult, map[string]any, error) {
	maxAttempts := stage.Retry.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var attempts []StageResult
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			d := stage.Retry.delay(attempt)
			var at vtime.Instant
			if e.clock != nil && d > 0 {
				at = e.clock.AdvanceTime(d)
			} else if e.clock != nil {
				at = e.clock.Now()
			}
			attempts = append(attempts, StageResult{Stage: stage.Name, Attempt: attempt, Retried: true, WaitedAt: at})
		}

		output, err := e.handler(stage, input)
		if err == nil {
			attempts = append(attempts, StageResult{Stage: stage.Name, Attempt: attempt, Success: true, Output: output})
			return attempts, output, nil
		}

		retryable, ok := err.(*Retryable)
		attempts = append(attempts, StageResult{Stage: stage.Name, Attempt: attempt, Success: false, Err: err})
		if !ok {
			return attempts, nil, err
		}
		lastErr = retryable
		if attempt == maxAttempts {
			break
		}
	}
	return attempts, nil, lastErr
}
