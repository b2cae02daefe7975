package pipeline

import (
	"errors"
	"testing"

	"pandakernel/internal/budget"
	"pandakernel/internal/ids"
	"pandakernel/internal/ipc"
	"pandakernel/internal/vtime"
)

func TestRouterRouteReturnsFirstRegistration(t *testing.T) {
	r := NewRouter()
	gen := ids.NewGenerators(ids.NewDeterministicSource(1))
	first := gen.NewServiceId()
	second := gen.NewServiceId()

	r.RegisterHandler("open_file", first)
	r.RegisterHandler("open_file", second)

	got, ok := r.Route("open_file")
	if !ok || got != first {
		t.Fatalf("expected first registered handler, got %v ok=%v", got, ok)
	}
}

func TestRouterUnregisterHandler(t *testing.T) {
	r := NewRouter()
	gen := ids.NewGenerators(ids.NewDeterministicSource(2))
	h := gen.NewServiceId()

	r.RegisterHandler("open_file", h)
	if !r.UnregisterHandler("open_file", h) {
		t.Fatal("expected unregister to report removal")
	}
	if _, ok := r.Route("open_file"); ok {
		t.Fatal("expected no handler after unregister")
	}
}

func TestRouterRouteMissingType(t *testing.T) {
	r := NewRouter()
	if _, ok := r.Route("no_such_type"); ok {
		t.Fatal("expected Route on unregistered type to fail")
	}
}

func TestIntentParamLookup(t *testing.T) {
	gen := ids.NewGenerators(ids.NewDeterministicSource(3))
	intent := NewIntent(gen, "open_file", ipc.SchemaVersion{Major: 1, Minor: 0}, Param{Key: "path", Value: "/a"})

	v, ok := intent.Param("path")
	if !ok || v != "/a" {
		t.Fatalf("expected path param, got %v ok=%v", v, ok)
	}
	if _, ok := intent.Param("missing"); ok {
		t.Fatal("expected missing param lookup to fail")
	}
}

func TestRenderParamsSubstitutesTemplate(t *testing.T) {
	ctx := map[string]any{"prev": map[string]any{"id": "abc"}}
	out, err := RenderParams(map[string]any{
		"ref":    "{{ .prev.id }}",
		"static": "unchanged",
	}, ctx)
	if err != nil {
		t.Fatalf("RenderParams: %v", err)
	}
	if out["ref"] != "abc" {
		t.Fatalf("expected templated ref, got %v", out["ref"])
	}
	if out["static"] != "unchanged" {
		t.Fatalf("expected untouched static value, got %v", out["static"])
	}
}

type fakeClock struct{ now vtime.Instant }

func (f *fakeClock) AdvanceTime(d vtime.Duration) vtime.Instant {
	f.now = f.now.Add(d)
	return f.now
}
func (f *fakeClock) Now() vtime.Instant { return f.now }

func TestExecutorRunsStagesInOrderAndThreadsOutput(t *testing.T) {
	stages := []StageSpec{
		{Name: "fetch", Retry: RetryPolicy{MaxAttempts: 1}},
		{Name: "transform", Retry: RetryPolicy{MaxAttempts: 1}},
	}
	clock := &fakeClock{}
	exec := NewExecutor(clock, nil, func(stage StageSpec, input map[string]any) (map[string]any, error) {
		switch stage.Name {
		case "fetch":
			return map[string]any{"raw": "data"}, nil
		case "transform":
			if input["raw"] != "data" {
				t.Fatalf("expected fetch output threaded into transform, got %v", input)
			}
			return map[string]any{"done": true}, nil
		}
		return nil, errors.New("unknown stage")
	})

	trace, err := exec.Run(stages, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(trace) != 2 || !trace[0].Success || !trace[1].Success {
		t.Fatalf("expected two successful stage results, got %+v", trace)
	}
}

func TestExecutorRetriesRetryableErrorThenSucceeds(t *testing.T) {
	attempts := 0
	stages := []StageSpec{{Name: "flaky", Retry: RetryPolicy{MaxAttempts: 3, BackoffBase: 10, BackoffMultiplier: 2}}}
	clock := &fakeClock{}
	exec := NewExecutor(clock, nil, func(stage StageSpec, input map[string]any) (map[string]any, error) {
		attempts++
		if attempts < 3 {
			return nil, &Retryable{Err: errors.New("transient")}
		}
		return map[string]any{"ok": true}, nil
	})

	trace, err := exec.Run(stages, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	successCount := 0
	for _, r := range trace {
		if r.Success {
			successCount++
		}
	}
	if successCount != 1 {
		t.Fatalf("expected exactly one successful result in trace, got %d", successCount)
	}
	if clock.now == vtime.Zero {
		t.Fatal("expected backoff to advance virtual time")
	}
}

func TestExecutorStopsOnNonRetryableError(t *testing.T) {
	stages := []StageSpec{
		{Name: "bad", Retry: RetryPolicy{MaxAttempts: 3}},
		{Name: "never-reached", Retry: RetryPolicy{MaxAttempts: 1}},
	}
	calls := 0
	exec := NewExecutor(&fakeClock{}, nil, func(stage StageSpec, input map[string]any) (map[string]any, error) {
		calls++
		return nil, errors.New("fatal")
	})

	_, err := exec.Run(stages, nil)
	if err == nil {
		t.Fatal("expected non-retryable error to stop the pipeline")
	}
	if calls != 1 {
		t.Fatalf("expected exactly one stage invocation (no retry, no second stage), got %d", calls)
	}
}

func TestExecutorRetriesExhausted(t *testing.T) {
	stages := []StageSpec{{Name: "always-flaky", Retry: RetryPolicy{MaxAttempts: 2}}}
	exec := NewExecutor(&fakeClock{}, nil, func(stage StageSpec, input map[string]any) (map[string]any, error) {
		return nil, &Retryable{Err: errors.New("transient")}
	})

	_, err := exec.Run(stages, nil)
	if err == nil {
		t.Fatal("expected exhausted retries to surface an error")
	}
}

func TestExecutorConsumesPipelineStageBudget(t *testing.T) {
	limit := uint64(1)
	caps := budget.Caps{PipelineStages: &limit}
	gen := ids.NewGenerators(ids.NewDeterministicSource(4))
	bctx := budget.NewContext(gen.NewExecutionId(), caps, nil)

	stages := []StageSpec{
		{Name: "one", Retry: RetryPolicy{MaxAttempts: 1}},
		{Name: "two", Retry: RetryPolicy{MaxAttempts: 1}},
	}
	exec := NewExecutor(&fakeClock{}, bctx, func(stage StageSpec, input map[string]any) (map[string]any, error) {
		return map[string]any{}, nil
	})

	_, err := exec.Run(stages, nil)
	var exhausted *budget.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected BudgetExhausted on second stage, got %v", err)
	}
}
