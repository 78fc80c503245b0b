// -----------------------------------------------------------------------
// Scheduler and workflow status vocabulary
// -----------------------------------------------------------------------

package models

import "fmt"

// Scheduler lifecycle states.
const (
	SchedulerStateInitializing = "initializing"
	SchedulerStateConfiguring  = "configuring"
	SchedulerStateStarting     = "starting"
	SchedulerStateRunning      = "running"
	SchedulerStatePaused       = "paused"
	SchedulerStateStopping     = "stopping"
	SchedulerStateStopped      = "stopped"
)

// StopMode identifies how the scheduler should come down. Ordered by
// priority: when several triggers coincide the highest wins.
type StopMode int

const (
	// StopModeNone means no stop has been requested.
	StopModeNone StopMode = iota
	StopModeAutoOnTaskFailure
	StopModeAuto
	StopModeRequestClean
	StopModeRequestKill
	StopModeRequestNow
	StopModeRequestNowNow
)

var stopModeNames = map[StopMode]string{
	StopModeNone:              "",
	StopModeAuto:              "AUTO",
	StopModeAutoOnTaskFailure: "AUTO_ON_TASK_FAILURE",
	StopModeRequestClean:      "REQUEST_CLEAN",
	StopModeRequestKill:       "REQUEST_KILL",
	StopModeRequestNow:        "REQUEST_NOW",
	StopModeRequestNowNow:     "REQUEST_NOW_NOW",
}

func (m StopMode) String() string { return stopModeNames[m] }

// ParseStopMode maps a client-supplied stop mode name. Unknown names are a
// client-visible error.
func ParseStopMode(name string) (StopMode, error) {
	if name == "" {
		return StopModeRequestClean, nil
	}
	for mode, n := range stopModeNames {
		if n == name && mode != StopModeNone {
			return mode, nil
		}
	}
	return StopModeNone, fmt.Errorf("invalid stop mode: %q", name)
}

// Describe returns the shutdown log clause for a stop mode.
func (m StopMode) Describe() string {
	switch m {
	case StopModeAutoOnTaskFailure:
		return "AUTOMATIC(ON-TASK-FAILURE)"
	case StopModeRequestClean:
		return "REQUEST(CLEAN)"
	case StopModeRequestKill:
		return "REQUEST(KILL)"
	case StopModeRequestNow:
		return "REQUEST(NOW)"
	case StopModeRequestNowNow:
		return "REQUEST(NOW-NOW)"
	default:
		return "AUTOMATIC"
	}
}

// RunsEventHandlers reports whether the workflow shutdown event handlers
// run for this mode. REQUEST_NOW_NOW skips them.
func (m StopMode) RunsEventHandlers() bool {
	return m != StopModeRequestNowNow
}

// WorkflowStatus summarises the workflow for the data-store workflow record.
type WorkflowStatus struct {
	State      string
	StopMode   StopMode
	StopPoint  string
	StopTask   string
	HoldPoint  string
	IsPaused   bool
	IsStalled  bool
	IsStopping bool
}

// Message composes the human-readable status message published on the
// workflow record.
func (s WorkflowStatus) Message() string {
	switch {
	case s.IsStopping && s.StopMode != StopModeNone && s.StopMode != StopModeAuto:
		return fmt.Sprintf("stopping: %s", s.StopMode.Describe())
	case s.IsStopping:
		return "stopping"
	case s.IsPaused:
		return "paused"
	case s.IsStalled:
		return "stalled"
	case s.StopTask != "":
		return fmt.Sprintf("running to stop task %s", s.StopTask)
	case s.StopPoint != "":
		return fmt.Sprintf("running to stop point %s", s.StopPoint)
	case s.HoldPoint != "":
		return fmt.Sprintf("running with hold point %s", s.HoldPoint)
	default:
		return s.State
	}
}

// Status returns the workflow state string for the status summary.
func (s WorkflowStatus) Status() string {
	switch {
	case s.IsStopping:
		return SchedulerStateStopping
	case s.IsPaused:
		return SchedulerStatePaused
	default:
		return SchedulerStateRunning
	}
}
