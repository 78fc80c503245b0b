package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cursus/internal/models"
	"github.com/ternarybob/cursus/internal/services/config"
)

const poolFlow = `
[workflow]
name = "flow"
cycling_mode = "integer"
initial_cycle_point = "1"
final_cycle_point = "2"

[graph]
P1 = "a => b"
`

func newTestPool(t *testing.T) *Service {
	t.Helper()
	cfg, err := config.ParseWorkflow([]byte(poolFlow))
	require.NoError(t, err)
	return NewService(cfg, 2, arbor.NewLogger())
}

func TestLoadInitialTasks(t *testing.T) {
	pool := newTestPool(t)
	spawned := pool.LoadInitialTasks()
	require.Len(t, spawned, 1)
	assert.Equal(t, "a", spawned[0].Name)
	assert.Equal(t, "1", spawned[0].Point)
	assert.Equal(t, models.TaskStateWaiting, spawned[0].State)
}

func TestSpawn_PrerequisitesFromGraph(t *testing.T) {
	pool := newTestPool(t)
	b := pool.Spawn("b", "1", []int64{1})
	require.Len(t, b.Prerequisites, 1)
	assert.False(t, b.PrereqsSatisfied())
	assert.Equal(t, "a", b.Prerequisites[0].Conditions[0].Task)

	// Idempotent.
	assert.Same(t, b, pool.Spawn("b", "1", []int64{1}))
}

func TestSatisfyDependants(t *testing.T) {
	pool := newTestPool(t)
	a := pool.Spawn("a", "1", []int64{1})
	affected := pool.SatisfyDependants(a, "succeeded")
	require.Len(t, affected, 1)
	b := affected[0]
	assert.Equal(t, "b", b.Name)
	assert.True(t, b.PrereqsSatisfied())
}

func TestQueueAndRelease(t *testing.T) {
	pool := newTestPool(t)
	a := pool.Spawn("a", "1", []int64{1})
	pool.QueueTask(a)
	assert.True(t, a.IsQueued)

	released := pool.ReleaseQueuedTasks()
	require.Len(t, released, 1)
	assert.False(t, released[0].IsQueued)
	assert.Empty(t, pool.ReleaseQueuedTasks())
}

func TestHoldBlocksQueueing(t *testing.T) {
	pool := newTestPool(t)
	pool.HoldTask("1", "a")
	a := pool.Spawn("a", "1", []int64{1})
	assert.True(t, a.IsHeld)
	pool.QueueTask(a)
	assert.False(t, a.IsQueued)

	pool.ReleaseTask("1", "a")
	assert.False(t, a.IsHeld)
	pool.QueueTask(a)
	assert.True(t, a.IsQueued)
}

func TestHoldPoint(t *testing.T) {
	pool := newTestPool(t)
	pool.SetHoldPoint("1")
	assert.False(t, pool.IsHeld("1", "a"))
	assert.True(t, pool.IsHeld("2", "a"))
	pool.ReleaseHoldPoint()
	assert.False(t, pool.IsHeld("2", "a"))
}

func TestReleaseRunaheadTasks(t *testing.T) {
	cfg, err := config.ParseWorkflow([]byte(poolFlow))
	require.NoError(t, err)
	pool := NewService(cfg, 1, arbor.NewLogger())

	pool.Spawn("a", "1", []int64{1})
	far := pool.Spawn("a", "2", []int64{1})
	// Within limit 1 of base point 1, nothing is runahead.
	assert.False(t, pool.ReleaseRunaheadTasks())
	assert.False(t, far.IsRunahead)
}
