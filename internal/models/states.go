package models

// Task states, ordered by workflow progression.
const (
	TaskStateWaiting      = "waiting"
	TaskStatePreparing    = "preparing"
	TaskStateSubmitted    = "submitted"
	TaskStateSubmitFailed = "submit-failed"
	TaskStateRunning      = "running"
	TaskStateSucceeded    = "succeeded"
	TaskStateFailed       = "failed"
	TaskStateExpired      = "expired"
)

// TaskStatesOrdered lists every task state in progression order. The
// family-proxy state-total maps carry an entry for each of these,
// including zero counts, so pruned counts are cleaned up on merge; the
// workflow record's totals drop zero counts.
var TaskStatesOrdered = []string{
	TaskStateWaiting,
	TaskStateExpired,
	TaskStatePreparing,
	TaskStateSubmitFailed,
	TaskStateSubmitted,
	TaskStateRunning,
	TaskStateFailed,
	TaskStateSucceeded,
}

// groupStateOrder is the priority used to extract a single representative
// state from a multiset of child states.
var groupStateOrder = []string{
	TaskStateSubmitFailed,
	TaskStateFailed,
	TaskStateExpired,
	TaskStateRunning,
	TaskStateSubmitted,
	TaskStatePreparing,
	TaskStateWaiting,
	TaskStateSucceeded,
}

// groupStateOrderStopped is the priority when the workflow is stopped:
// succeeded outranks waiting.
var groupStateOrderStopped = []string{
	TaskStateSubmitFailed,
	TaskStateFailed,
	TaskStateExpired,
	TaskStateRunning,
	TaskStateSubmitted,
	TaskStatePreparing,
	TaskStateSucceeded,
	TaskStateWaiting,
}

// ExtractGroupState returns the first state in priority order present in
// the given multiset, or "" when the set is empty.
func ExtractGroupState(states []string, isStopped bool) string {
	order := groupStateOrder
	if isStopped {
		order = groupStateOrderStopped
	}
	present := make(map[string]bool, len(states))
	for _, s := range states {
		present[s] = true
	}
	for _, s := range order {
		if present[s] {
			return s
		}
	}
	return ""
}

// StateIndex returns the progression index of a state, for detecting
// reverse transitions from stale job messages. Unknown states sort first.
func StateIndex(state string) int {
	for i, s := range []string{
		TaskStateWaiting, TaskStatePreparing, TaskStateSubmitted,
		TaskStateSubmitFailed, TaskStateRunning, TaskStateFailed,
		TaskStateSucceeded, TaskStateExpired,
	} {
		if s == state {
			return i
		}
	}
	return -1
}
