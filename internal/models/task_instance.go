// -----------------------------------------------------------------------
// TaskInstance - live task state owned by the task pool
// -----------------------------------------------------------------------

package models

import (
	"encoding/json"
	"sort"
	"time"
)

// OutputState is one completion output of a live task.
type OutputState struct {
	Label     string
	Message   string
	Satisfied bool
	Time      time.Time
}

// PrereqConditionState is one dependency within a prerequisite expression.
type PrereqConditionState struct {
	Point     string
	Task      string
	Output    string
	Satisfied bool
}

// PrereqState is one structured prerequisite of a live task.
type PrereqState struct {
	Expression string
	Conditions []PrereqConditionState
}

// Satisfied reports whether the prerequisite has at least one condition
// and every condition holds; a prerequisite with no conditions is not
// satisfied.
func (p PrereqState) Satisfied() bool {
	for _, c := range p.Conditions {
		if !c.Satisfied {
			return false
		}
	}
	return len(p.Conditions) > 0
}

// XtriggerState is the live satisfaction record of one xtrigger signature.
type XtriggerState struct {
	Signature string
	Label     string
	Satisfied bool
	Time      time.Time
}

// ExtTriggerState is the live satisfaction record of one external trigger.
type ExtTriggerState struct {
	Label     string
	Message   string
	Satisfied bool
	Time      time.Time
}

// GraphNeighbor is one graph child or parent of a task at a point.
type GraphNeighbor struct {
	Name  string
	Point string
}

// TaskInstance is a live task instance held by the task pool: the source
// of truth the data store materializes task proxies from.
type TaskInstance struct {
	Tokens         Tokens
	Point          string
	Name           string
	State          string
	IsHeld         bool
	IsQueued       bool
	IsRunahead     bool
	IsLate         bool
	IsManualSubmit bool
	FlowNums       []int64
	SubmitNum      int
	Prerequisites  []PrereqState
	Outputs        map[string]*OutputState
	Xtriggers      map[string]*XtriggerState
	ExtTriggers    map[string]*ExtTriggerState
	// GraphChildren caches the compiled downstream neighbours so depth-1
	// window expansion need not regenerate them.
	GraphChildren []GraphNeighbor
	LateOffset    time.Duration
	CreatedAt     time.Time
}

// ID returns the canonical task-proxy id.
func (t *TaskInstance) ID() string { return t.Tokens.ID() }

// IsWaiting reports whether the task has not yet been set going.
func (t *TaskInstance) IsWaiting() bool { return t.State == TaskStateWaiting }

// IsActive reports whether the task is engaged with the job runtime.
func (t *TaskInstance) IsActive() bool {
	switch t.State {
	case TaskStatePreparing, TaskStateSubmitted, TaskStateRunning:
		return true
	}
	return false
}

// XtriggersSatisfied reports whether all xtriggers are satisfied.
func (t *TaskInstance) XtriggersSatisfied() bool {
	for _, x := range t.Xtriggers {
		if !x.Satisfied {
			return false
		}
	}
	return true
}

// ExtTriggersSatisfied reports whether all external triggers are satisfied.
func (t *TaskInstance) ExtTriggersSatisfied() bool {
	for _, x := range t.ExtTriggers {
		if !x.Satisfied {
			return false
		}
	}
	return true
}

// PrereqsSatisfied reports whether every prerequisite holds.
func (t *TaskInstance) PrereqsSatisfied() bool {
	for _, p := range t.Prerequisites {
		if !p.Satisfied() {
			return false
		}
	}
	return true
}

// FormatFlowNums serializes a flow-number set in its canonical JSON form,
// e.g. "[1,2]"; the set is sorted for stable output.
func FormatFlowNums(nums []int64) string {
	sorted := make([]int64, len(nums))
	copy(sorted, nums)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	data, _ := json.Marshal(sorted)
	return string(data)
}

// ParseFlowNums deserializes a canonical flow-number string.
func ParseFlowNums(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	var nums []int64
	if err := json.Unmarshal([]byte(s), &nums); err != nil {
		return nil, err
	}
	return nums, nil
}
