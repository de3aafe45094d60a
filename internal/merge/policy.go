package merge

import "time"

// DefaultConflictWindow is how far apart two modification times must be
// before a divergence is considered a genuine conflict. The 5-minute
// window is a heuristic, not a law, so it stays configurable.
const DefaultConflictWindow = 5 * time.Minute

// Policy controls conflict detection and the no-op version-bump
// behavior of the merge engine.
type Policy struct {
	// ConflictWindow is the minimum |local.lastModifiedAt - remote.lastModifiedAt|
	// for a significant divergence to surface as a conflict.
	ConflictWindow time.Duration

	// AlwaysBumpVersion restores the legacy behavior of bumping
	// syncVersion and refreshing lastModifiedAt even when both sides
	// carry identical content. Off by default so merging a snapshot
	// with itself is a no-op.
	AlwaysBumpVersion bool
}

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{
		ConflictWindow: DefaultConflictWindow,
	}
}
