package identity_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pandakernel/internal/identity"
)

func TestExitReasonNormal(t *testing.T) {
	r := identity.Normal()
	require.True(t, r.IsNormal())
	require.False(t, r.IsFailure())
	require.Equal(t, "Normal", r.String())
}

func TestExitReasonFailure(t *testing.T) {
	r := identity.Failure("boom")
	require.True(t, r.IsFailure())
	require.Equal(t, "boom", r.Error())
	require.Equal(t, "Failure{boom}", r.String())
}

func TestExitReasonCancelled(t *testing.T) {
	r := identity.Cancelled("shutdown")
	require.True(t, r.IsCancelled())
	require.Equal(t, "shutdown", r.CancelReason())
	require.Equal(t, "Cancelled{shutdown}", r.String())
}

func TestExitReasonTimeout(t *testing.T) {
	r := identity.Timeout()
	require.True(t, r.IsTimeout())
	require.Equal(t, "Timeout", r.String())
}

func TestExitReasonKindsAreExclusive(t *testing.T) {
	r := identity.Failure("x")
	require.False(t, r.IsNormal())
	require.False(t, r.IsCancelled())
	require.False(t, r.IsTimeout())
}
