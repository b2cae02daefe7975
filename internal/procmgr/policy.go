package procmgr

import (
	"pandakernel/internal/identity"
	"pandakernel/internal/vtime"
)

// RestartPolicy decides whether a managed service is respawned after its
// task exits (spec §4.6 decision table).
type RestartPolicy struct {
	Kind        RestartKind
	MaxAttempts int // only meaningful for RestartExponentialBackoff
}

// RestartKind enumerates the wire-stable restart policy variants.
type RestartKind string

const (
	RestartNever              RestartKind = "Never"
	RestartAlways             RestartKind = "Always"
	RestartOnFailure          RestartKind = "OnFailure"
	RestartExponentialBackoff RestartKind = "ExponentialBackoff"
)

// Backoff growth shape for RestartExponentialBackoff, following the
// teacher's service-restart constants in
// internal/services/mcpserver/service.go: an initial delay that doubles on
// each subsequent attempt up to a ceiling. Spec §4.6 leaves the growth shape
// implementer-defined ("Design Notes — Restart backoff clock").
const (
	InitialBackoff    vtime.Duration = 30
	MaxBackoff        vtime.Duration = 30 * 60
	BackoffMultiplier float64        = 2.0
)

// backoffDelay returns the virtual-time delay before the Nth restart attempt
// (1-indexed), following InitialBackoff * BackoffMultiplier^(attempt-1),
// capped at MaxBackoff.
func backoffDelay(attempt int) vtime.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(InitialBackoff)
	for i := 1; i < attempt; i++ {
		delay *= BackoffMultiplier
		if delay >= float64(MaxBackoff) {
			return MaxBackoff
		}
	}
	return vtime.Duration(delay)
}

// shouldRestart applies the decision table in spec §4.6.
func shouldRestart(policy RestartPolicy, reason identity.ExitReason, attemptsSoFar int) bool {
	switch policy.Kind {
	case RestartNever:
		return false
	case RestartAlways:
		return true
	case RestartOnFailure:
		return !reason.IsNormal()
	case RestartExponentialBackoff:
		return attemptsSoFar < policy.MaxAttempts
	default:
		return false
	}
}
