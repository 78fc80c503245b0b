package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractGroupState(t *testing.T) {
	cases := []struct {
		name    string
		states  []string
		stopped bool
		want    string
	}{
		{"running beats waiting", []string{TaskStateRunning, TaskStateWaiting}, false, TaskStateRunning},
		{"failed beats running", []string{TaskStateRunning, TaskStateFailed}, false, TaskStateFailed},
		{"submit-failed beats failed", []string{TaskStateFailed, TaskStateSubmitFailed}, false, TaskStateSubmitFailed},
		{"waiting beats succeeded", []string{TaskStateSucceeded, TaskStateWaiting}, false, TaskStateWaiting},
		{"succeeded beats waiting when stopped", []string{TaskStateSucceeded, TaskStateWaiting}, true, TaskStateSucceeded},
		{"all succeeded", []string{TaskStateSucceeded, TaskStateSucceeded}, false, TaskStateSucceeded},
		{"empty set", nil, false, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ExtractGroupState(c.states, c.stopped))
		})
	}
}

func TestStateIndex_Progression(t *testing.T) {
	// A running -> succeeded transition is forward; the reverse is not.
	assert.Less(t, StateIndex(TaskStateRunning), StateIndex(TaskStateSucceeded))
	assert.Less(t, StateIndex(TaskStateWaiting), StateIndex(TaskStateRunning))
	assert.Equal(t, -1, StateIndex("nonsense"))
}
