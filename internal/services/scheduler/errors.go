package scheduler

import (
	"errors"
	"fmt"
)

// ErrSchedulerStop is the sentinel for a controlled shutdown; not an
// error condition.
var ErrSchedulerStop = errors.New("scheduler stop")

// SchedulerError marks a controlled but abnormal stop, e.g. abort on
// task failure or a fatal config reload.
type SchedulerError struct {
	Reason string
}

func (e *SchedulerError) Error() string {
	return fmt.Sprintf("scheduler error: %s", e.Reason)
}

// CommandFailure is a command rejected for input reasons; logged WARN
// and returned to the client, never fatal to the loop.
type CommandFailure struct {
	Command string
	Reason  string
}

func (e *CommandFailure) Error() string {
	return fmt.Sprintf("command %q failed: %s", e.Command, e.Reason)
}
