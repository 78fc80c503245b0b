package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cursus/internal/models"
	"github.com/ternarybob/cursus/internal/services/config"
)

func newTestService(t *testing.T, flowDoc string, nEdgeDistance int) *Service {
	t.Helper()
	cfg, err := config.ParseWorkflow([]byte(flowDoc))
	require.NoError(t, err)
	svc := NewService(cfg, Options{
		Owner:         "bob",
		WorkflowName:  cfg.Name,
		Host:          "localhost",
		NEdgeDistance: nEdgeDistance,
	}, nil, nil, nil, arbor.NewLogger())
	require.NoError(t, svc.Initiate(false))
	return svc
}

func (s *Service) activate(name, point string, itask *models.TaskInstance) {
	s.AddPoolNode(name, point)
	s.IncrementGraphWindow(
		s.id.Duplicate(point, name, ""), point, []int64{1}, false, itask)
}

func (s *Service) proxyIDs() []string {
	return sortedIDs(s.data.TaskProxies)
}

const linearFlow = `
[workflow]
name = "flow"
cycling_mode = "integer"
initial_cycle_point = "1"
final_cycle_point = "1"

[graph]
P1 = "a => b => c"
`

func TestWindow_LinearChainN1(t *testing.T) {
	svc := newTestService(t, linearFlow, 1)

	svc.activate("a", "1", nil)
	svc.Update()

	assert.ElementsMatch(t, []string{"~bob/flow//1/a", "~bob/flow//1/b"}, svc.proxyIDs())
	require.Len(t, svc.data.Edges, 1)
	for _, edge := range svc.data.Edges {
		assert.Equal(t, "~bob/flow//1/a", edge.Source)
		assert.Equal(t, "~bob/flow//1/b", edge.Target)
	}

	// Active node at depth 0, neighbour at depth 1 (I2).
	require.NotNil(t, svc.data.TaskProxies["~bob/flow//1/a"].GraphDepth)
	assert.Equal(t, int32(0), *svc.data.TaskProxies["~bob/flow//1/a"].GraphDepth)
	require.NotNil(t, svc.data.TaskProxies["~bob/flow//1/b"].GraphDepth)
	assert.Equal(t, int32(1), *svc.data.TaskProxies["~bob/flow//1/b"].GraphDepth)
}

func TestWindow_BoundaryActivationPrunes(t *testing.T) {
	svc := newTestService(t, linearFlow, 1)

	svc.activate("a", "1", nil)
	svc.Update()

	// b becomes active: c enters the window, a stays as b's parent.
	svc.activate("b", "1", nil)
	svc.RemovePoolNode("a", "1")
	svc.Update()
	assert.ElementsMatch(t,
		[]string{"~bob/flow//1/a", "~bob/flow//1/b", "~bob/flow//1/c"},
		svc.proxyIDs())

	// c becomes active and b leaves: a's paths fall out of every active
	// walk and are pruned.
	svc.activate("c", "1", nil)
	svc.RemovePoolNode("b", "1")
	svc.Update()

	assert.ElementsMatch(t,
		[]string{"~bob/flow//1/b", "~bob/flow//1/c"}, svc.proxyIDs())
	for _, edge := range svc.data.Edges {
		assert.NotEqual(t, "~bob/flow//1/a", edge.Source)
		assert.NotEqual(t, "~bob/flow//1/a", edge.Target)
	}
	// Every remaining edge has both endpoints in the store (I3).
	for _, edge := range svc.data.Edges {
		assert.Contains(t, svc.data.TaskProxies, edge.Source)
		assert.Contains(t, svc.data.TaskProxies, edge.Target)
	}
}

func TestWindow_ZeroExtent(t *testing.T) {
	svc := newTestService(t, linearFlow, 0)

	svc.activate("b", "1", nil)
	svc.Update()

	// Only the active proxy, its family ancestry, and no edges (B1).
	assert.Equal(t, []string{"~bob/flow//1/b"}, svc.proxyIDs())
	assert.Empty(t, svc.data.Edges)
	assert.Contains(t, svc.data.FamilyProxies, "~bob/flow//1/root")
}

const selfChainFlow = `
[workflow]
name = "flow"
cycling_mode = "integer"
initial_cycle_point = "1"
final_cycle_point = "1"

[graph]
P1 = "a[-P1] => a"
`

func TestWindow_FinalCyclePointClipsChildren(t *testing.T) {
	svc := newTestService(t, selfChainFlow, 1)

	svc.activate("a", "1", nil)
	svc.Update()

	// The pre-initial parent is materialized; the post-final child is
	// not (B3).
	assert.Contains(t, svc.data.TaskProxies, "~bob/flow//0/a")
	assert.NotContains(t, svc.data.TaskProxies, "~bob/flow//2/a")
}

const branchedFlow = `
[workflow]
name = "flow"
cycling_mode = "integer"
initial_cycle_point = "1"
final_cycle_point = "3"

[graph]
P1 = """
b[-P1] & a & x => b => z
"""
`

func TestWindow_BranchedN2(t *testing.T) {
	svc := newTestService(t, branchedFlow, 2)

	svc.activate("b", "1", nil)
	svc.Update()

	for _, id := range []string{
		"~bob/flow//1/b", // origin
		"~bob/flow//0/b", // pre-initial parent
		"~bob/flow//1/a",
		"~bob/flow//1/x",
		"~bob/flow//1/z", // child
		"~bob/flow//2/b", // child at the next point
	} {
		assert.Contains(t, svc.data.TaskProxies, id)
	}
	assert.Equal(t, int32(0), *svc.data.TaskProxies["~bob/flow//1/b"].GraphDepth)
	assert.Equal(t, int32(1), *svc.data.TaskProxies["~bob/flow//1/z"].GraphDepth)
}

func TestWindow_ResizeIsIdempotent(t *testing.T) {
	svc := newTestService(t, linearFlow, 1)
	svc.activate("a", "1", nil)
	svc.Update()

	// R3: setting the current extent is a no-op.
	svc.SetGraphWindowExtent(1)
	assert.Nil(t, svc.nextNEdgeDistance)

	svc.SetGraphWindowExtent(2)
	svc.Update()
	assert.Contains(t, svc.data.TaskProxies, "~bob/flow//1/c")

	svc.SetGraphWindowExtent(1)
	svc.Update()
	assert.NotContains(t, svc.data.TaskProxies, "~bob/flow//1/c")
}

func TestWindow_OrphanTask(t *testing.T) {
	svc := newTestService(t, linearFlow, 1)

	// An id with no task definition: materialized under the synthetic
	// root at depth 1 with no edges (B2).
	svc.activate("ghost", "1", nil)
	svc.Update()

	tp := svc.data.TaskProxies["~bob/flow//1/ghost"]
	require.NotNil(t, tp)
	assert.Equal(t, []string{"~bob/flow//1/root"}, tp.Ancestors)
	assert.Empty(t, svc.data.Edges)
	def := svc.data.Tasks["~bob/flow//$namespace|ghost"]
	require.NotNil(t, def)
	assert.Equal(t, int32(1), def.Depth)
}
