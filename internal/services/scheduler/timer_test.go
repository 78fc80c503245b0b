package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
)

func TestTimer_ResetAndTimeout(t *testing.T) {
	now := time.Now()
	timer := NewTimer("stall timeout", time.Minute, arbor.NewLogger(), nil)
	timer.now = func() time.Time { return now }

	assert.False(t, timer.Running())
	assert.False(t, timer.TimedOut())

	timer.Reset()
	assert.True(t, timer.Running())
	assert.False(t, timer.TimedOut())

	now = now.Add(2 * time.Minute)
	assert.True(t, timer.TimedOut())
	// The timeout is consumed.
	assert.False(t, timer.Running())
	assert.False(t, timer.TimedOut())
}

func TestTimer_Stop(t *testing.T) {
	now := time.Now()
	timer := NewTimer("inactivity timeout", time.Second, arbor.NewLogger(), nil)
	timer.now = func() time.Time { return now }

	timer.Reset()
	timer.Stop()
	assert.False(t, timer.Running())

	now = now.Add(time.Hour)
	assert.False(t, timer.TimedOut())
}

func TestTimer_NameRewrite(t *testing.T) {
	var resets []string
	timer := NewTimer("workflow timeout", time.Second, arbor.NewLogger(), func(msg string) {
		resets = append(resets, msg)
	})
	timer.Reset()
	assert.Len(t, resets, 1)
	// "timeout" reads as "timer" in the log line.
	assert.Contains(t, resets[0], "workflow timer")
	assert.Contains(t, resets[0], "starts NOW")
}
