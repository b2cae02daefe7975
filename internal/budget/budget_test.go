package budget_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pandakernel/internal/budget"
	"pandakernel/internal/ids"
)

func cap(n uint64) *uint64 { return &n }

func TestP9_BudgetExhaustion(t *testing.T) {
	exec := ids.NewGenerators(ids.NewDeterministicSource(1)).NewExecutionId()
	log := &budget.ExhaustionLog{}
	ctx := budget.NewContext(exec, budget.Caps{Messages: cap(10)}, log)

	for i := 0; i < 10; i++ {
		require.NoError(t, ctx.TryConsume(budget.ResourceMessages, 1, "send_message"))
	}
	require.Equal(t, uint64(10), ctx.Usage().Messages)

	err := ctx.TryConsume(budget.ResourceMessages, 1, "send_message")
	require.Error(t, err)
	var exhausted *budget.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	require.Equal(t, budget.ResourceMessages, exhausted.Resource)
	require.Equal(t, uint64(10), exhausted.Limit)
	require.Equal(t, uint64(11), exhausted.AttemptedUsage)

	// usage must be unchanged by the failed attempt.
	require.Equal(t, uint64(10), ctx.Usage().Messages)

	require.Len(t, log.Events(), 1)

	// subsequent consumes also fail.
	require.Error(t, ctx.TryConsume(budget.ResourceMessages, 1, "send_message"))
}

func TestUnsetCapSucceedsSilently(t *testing.T) {
	exec := ids.NewGenerators(ids.NewDeterministicSource(2)).NewExecutionId()
	ctx := budget.NewContext(exec, budget.Caps{}, nil)
	for i := 0; i < 1000; i++ {
		require.NoError(t, ctx.TryConsume(budget.ResourceCPUTicks, 100, "sleep"))
	}
}
