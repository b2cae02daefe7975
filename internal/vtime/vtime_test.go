package vtime_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pandakernel/internal/vtime"
)

func TestManualClockStartsAtZero(t *testing.T) {
	c := vtime.NewManualClock()
	require.Equal(t, vtime.Zero, c.Now())
}

func TestManualClockAdvance(t *testing.T) {
	c := vtime.NewManualClock()
	next := c.Advance(5 * time.Second)
	require.Equal(t, next, c.Now())
	require.Equal(t, int64(5*time.Second), c.Now().Nanos())
}

func TestManualClockAdvanceNeverSpontaneous(t *testing.T) {
	c := vtime.NewManualClock()
	first := c.Now()
	time.Sleep(5 * time.Millisecond)
	require.Equal(t, first, c.Now())
}

func TestManualClockNegativeAdvancePanics(t *testing.T) {
	c := vtime.NewManualClock()
	require.Panics(t, func() { c.Advance(-1) })
}

func TestInstantBeforeAfter(t *testing.T) {
	a := vtime.InstantAt(10)
	b := vtime.InstantAt(20)
	require.True(t, a.Before(b))
	require.False(t, b.Before(a))
	require.True(t, b.After(a))
	require.False(t, a.After(b))
}

func TestInstantAddSub(t *testing.T) {
	a := vtime.InstantAt(10)
	b := a.Add(5)
	require.Equal(t, int64(15), b.Nanos())
	require.Equal(t, vtime.Duration(5), b.Sub(a))
}
