package datastore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/cursus/internal/models"
)

const familyFlow = `
[workflow]
name = "flow"
cycling_mode = "integer"
initial_cycle_point = "1"
final_cycle_point = "1"

[graph]
P1 = "foo & bar"

[runtime.A]
inherit = "root"

[runtime.foo]
inherit = "A"

[runtime.bar]
inherit = "A"
`

func newInstance(svc *Service, name, point, state string) *models.TaskInstance {
	return &models.TaskInstance{
		Tokens:      svc.id.Duplicate(point, name, ""),
		Point:       point,
		Name:        name,
		State:       state,
		FlowNums:    []int64{1},
		Outputs:     map[string]*models.OutputState{},
		Xtriggers:   map[string]*models.XtriggerState{},
		ExtTriggers: map[string]*models.ExtTriggerState{},
		CreatedAt:   time.Now(),
	}
}

func TestFamilyRollup(t *testing.T) {
	svc := newTestService(t, familyFlow, 1)

	foo := newInstance(svc, "foo", "1", models.TaskStateRunning)
	bar := newInstance(svc, "bar", "1", models.TaskStateWaiting)
	svc.activate("foo", "1", foo)
	svc.activate("bar", "1", bar)
	svc.Update()

	famID := "~bob/flow//1/A"
	fam := svc.data.FamilyProxies[famID]
	require.NotNil(t, fam)
	require.NotNil(t, fam.State)
	assert.Equal(t, models.TaskStateRunning, *fam.State)
	assert.Equal(t, int32(1), fam.StateTotals[models.TaskStateRunning])
	assert.Equal(t, int32(1), fam.StateTotals[models.TaskStateWaiting])

	// The root family mirrors the aggregate (and feeds the workflow
	// summary, I5). Its state comes from the occurring child states
	// only, not the zero-padded totals of the child family.
	root := svc.data.FamilyProxies["~bob/flow//1/root"]
	require.NotNil(t, root)
	assert.Equal(t, int32(1), root.StateTotals[models.TaskStateRunning])
	require.NotNil(t, root.State)
	assert.Equal(t, models.TaskStateRunning, *root.State)

	// foo finishes: waiting outranks succeeded in the ordinary order.
	foo.State = models.TaskStateSucceeded
	svc.DeltaTaskState(foo)
	svc.Update()
	fam = svc.data.FamilyProxies[famID]
	assert.Equal(t, models.TaskStateWaiting, *fam.State)

	// Both succeeded: the family and workflow roll up to succeeded.
	bar.State = models.TaskStateSucceeded
	svc.DeltaTaskState(bar)
	svc.Update()
	fam = svc.data.FamilyProxies[famID]
	assert.Equal(t, models.TaskStateSucceeded, *fam.State)
	assert.Equal(t, int32(2), fam.StateTotals[models.TaskStateSucceeded])
	root = svc.data.FamilyProxies["~bob/flow//1/root"]
	require.NotNil(t, root.State)
	assert.Equal(t, models.TaskStateSucceeded, *root.State)
	assert.Equal(t, int32(2), svc.data.Workflow.StateTotals[models.TaskStateSucceeded])
}

func TestFamilyRollup_GraphDepthMinimum(t *testing.T) {
	svc := newTestService(t, familyFlow, 1)
	foo := newInstance(svc, "foo", "1", models.TaskStateRunning)
	svc.activate("foo", "1", foo)
	svc.Update()

	fam := svc.data.FamilyProxies["~bob/flow//1/A"]
	require.NotNil(t, fam)
	require.NotNil(t, fam.GraphDepth)
	assert.Equal(t, int32(0), *fam.GraphDepth)
}

func TestWorkflowLatestStateTasks(t *testing.T) {
	svc := newTestService(t, familyFlow, 1)
	foo := newInstance(svc, "foo", "1", models.TaskStateRunning)
	svc.activate("foo", "1", foo)
	svc.Update()

	queue := svc.data.Workflow.LatestStateTasks[models.TaskStateRunning]
	require.NotNil(t, queue)
	assert.Contains(t, queue.Tasks, "1/foo")
	assert.LessOrEqual(t, len(queue.Tasks), LatestStateTasksQueueSize)
}

func TestStateUpdateFollowOn(t *testing.T) {
	svc := newTestService(t, familyFlow, 1)
	foo := newInstance(svc, "foo", "1", models.TaskStateRunning)
	svc.activate("foo", "1", foo)
	svc.Update()

	// A tick that updated family states arms one follow-on workflow
	// roll-up.
	assert.True(t, svc.stateUpdateFollowOn)

	// The next batch with no family changes consumes the flag while
	// still refreshing the workflow summary.
	svc.DeltaTaskFlowNums(foo)
	svc.Update()
	assert.False(t, svc.stateUpdateFollowOn)
}
