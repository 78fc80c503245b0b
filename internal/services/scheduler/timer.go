// -----------------------------------------------------------------------
// Named countdown timers
// -----------------------------------------------------------------------

package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
)

// Well-known timer names.
const (
	TimerWorkflowTimeout   = "workflow timeout"
	TimerInactivityTimeout = "inactivity timeout"
	TimerStallTimeout      = "stall timeout"
	TimerRestartTimeout    = "restart timeout"
)

// Timer is a named countdown with reset/stop/timed-out semantics. A nil
// timeout means the timer is not running.
type Timer struct {
	name     string
	interval time.Duration
	logReset func(msg string)
	logger   arbor.ILogger
	timeout  *time.Time
	now      func() time.Time
}

// NewTimer creates a timer. logReset defaults to a warning-level log.
func NewTimer(name string, interval time.Duration, logger arbor.ILogger, logReset func(msg string)) *Timer {
	t := &Timer{
		name:     strings.ReplaceAll(name, "timeout", "timer"),
		interval: interval,
		logger:   logger,
		logReset: logReset,
		now:      time.Now,
	}
	if t.logReset == nil {
		t.logReset = func(msg string) { logger.Warn().Msg(msg) }
	}
	return t
}

// Reset starts the timer now.
func (t *Timer) Reset() {
	deadline := t.now().Add(t.interval)
	t.timeout = &deadline
	t.logReset(fmt.Sprintf("%s %s starts NOW", t.interval, t.name))
}

// Stop nulls the timeout.
func (t *Timer) Stop() {
	if t.timeout == nil {
		return
	}
	t.timeout = nil
	t.logger.Warn().Msgf("%s stopped", t.name)
}

// TimedOut reports and consumes an elapsed timeout.
func (t *Timer) TimedOut() bool {
	if t.timeout != nil && t.now().After(*t.timeout) {
		t.logger.Warn().Msgf("%s timed out after %s", t.name, t.interval)
		t.timeout = nil
		return true
	}
	return false
}

// Running reports whether the timer is counting down.
func (t *Timer) Running() bool { return t.timeout != nil }
