package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/cursus/internal/interfaces"
	"github.com/ternarybob/cursus/internal/models"
)

func intPtr(v int) *int { return &v }

func TestHistoricalJobStatus(t *testing.T) {
	cases := []struct {
		name string
		row  interfaces.TaskJobRow
		want string
	}{
		{"run ok", interfaces.TaskJobRow{RunStatus: intPtr(0)}, models.TaskStateSucceeded},
		{"run failed", interfaces.TaskJobRow{RunStatus: intPtr(1)}, models.TaskStateFailed},
		{"started only", interfaces.TaskJobRow{TimeRun: "2020-01-01T00:00:00Z"}, models.TaskStateRunning},
		{"submit ok", interfaces.TaskJobRow{SubmitStatus: intPtr(0)}, models.TaskStateSubmitted},
		{"submit failed", interfaces.TaskJobRow{SubmitStatus: intPtr(1)}, models.TaskStateSubmitFailed},
		{"no info", interfaces.TaskJobRow{}, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, historicalJobStatus(&c.row))
		})
	}
}

func TestInsertJob(t *testing.T) {
	svc := newTestService(t, familyFlow, 1)
	foo := newInstance(svc, "foo", "1", models.TaskStateRunning)
	svc.activate("foo", "1", foo)
	svc.Update()

	svc.InsertJob("foo", "1", models.TaskStateSubmitted, &interfaces.JobConf{
		SubmitNum:     1,
		Platform:      "localhost",
		JobRunnerName: "background",
		JobID:         "12345",
	})
	svc.Update()

	jID := "~bob/flow//1/foo/01"
	job := svc.data.Jobs[jID]
	require.NotNil(t, job)
	assert.Equal(t, "~bob/flow//1/foo", job.TaskProxy)
	require.NotNil(t, job.State)
	assert.Equal(t, models.TaskStateSubmitted, *job.State)
	assert.Equal(t, "localhost", job.Platform)

	tp := svc.data.TaskProxies["~bob/flow//1/foo"]
	assert.Contains(t, tp.Jobs, jID)
	require.NotNil(t, tp.JobSubmits)
	assert.Equal(t, int32(1), *tp.JobSubmits)
	assert.Contains(t, svc.data.Workflow.Jobs, jID)

	// Re-inserting the same submit is a no-op (post-submission submit
	// failure).
	svc.InsertJob("foo", "1", models.TaskStateSubmitFailed, &interfaces.JobConf{SubmitNum: 1})
	svc.Update()
	assert.Equal(t, models.TaskStateSubmitted, *svc.data.Jobs[jID].State)
}

func TestInsertJob_UnknownProxyOrStatus(t *testing.T) {
	svc := newTestService(t, familyFlow, 1)
	svc.InsertJob("nosuch", "1", models.TaskStateSubmitted, &interfaces.JobConf{SubmitNum: 1})
	assert.Empty(t, svc.buffers.jobsAdded)

	foo := newInstance(svc, "foo", "1", models.TaskStateRunning)
	svc.activate("foo", "1", foo)
	svc.InsertJob("foo", "1", "not-a-status", &interfaces.JobConf{SubmitNum: 1})
	assert.Empty(t, svc.buffers.jobsAdded)
}

func TestJobDeltas(t *testing.T) {
	svc := newTestService(t, familyFlow, 1)
	foo := newInstance(svc, "foo", "1", models.TaskStateRunning)
	svc.activate("foo", "1", foo)
	svc.InsertJob("foo", "1", models.TaskStateSubmitted, &interfaces.JobConf{SubmitNum: 1})
	svc.Update()

	jTokens := svc.id.Duplicate("1", "foo", "01")
	svc.DeltaJobState(jTokens, models.TaskStateRunning)
	svc.DeltaJobTime(jTokens, "started", 100)
	svc.DeltaJobMsg(jTokens, "INFO: running")
	svc.Update()

	job := svc.data.Jobs[jTokens.ID()]
	require.NotNil(t, job)
	assert.Equal(t, models.TaskStateRunning, *job.State)
	assert.Equal(t, float64(100), job.StartedTime)
	assert.Equal(t, []string{"INFO: running"}, job.Messages)
}
