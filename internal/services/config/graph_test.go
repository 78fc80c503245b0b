package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/cursus/internal/models"
)

const flowDoc = `
[workflow]
name = "flow"
cycling_mode = "integer"
initial_cycle_point = "1"
final_cycle_point = "3"

[graph]
P1 = """
b[-P1] & a & x => b => z
"""

[runtime.FAM]
inherit = "root"
platform = "localhost"

[runtime.a]
inherit = "FAM"
script = "true"

[runtime.b]
inherit = "FAM"
`

func parseFlow(t *testing.T) *WorkflowConfig {
	t.Helper()
	cfg, err := ParseWorkflow([]byte(flowDoc))
	require.NoError(t, err)
	return cfg
}

func TestParseWorkflow_TasksAndFamilies(t *testing.T) {
	cfg := parseFlow(t)
	for _, name := range []string{"a", "b", "x", "z"} {
		assert.Contains(t, cfg.TaskDefs, name)
	}
	assert.Contains(t, cfg.Families, "FAM")
	assert.Contains(t, cfg.Families, RootFamily)
	assert.NotContains(t, cfg.TaskDefs, "FAM")

	fam := cfg.Families["FAM"]
	assert.ElementsMatch(t, []string{"a", "b"}, fam.ChildTasks)
	assert.Equal(t, []string{RootFamily}, cfg.Families["FAM"].Parents)

	// Graph-only tasks land under root.
	assert.ElementsMatch(t, []string{"x", "z"}, cfg.Families[RootFamily].ChildTasks)
}

func TestParseWorkflow_Ancestry(t *testing.T) {
	cfg := parseFlow(t)
	assert.Equal(t, []string{"FAM", RootFamily}, cfg.FirstParentAncestors("a"))
	assert.Equal(t, []string{RootFamily}, cfg.FirstParentAncestors("x"))
	assert.Equal(t, 2, cfg.TaskDefs["a"].Depth)
	assert.Equal(t, 1, cfg.TaskDefs["x"].Depth)
	assert.Equal(t, 2, cfg.TreeDepth())
}

func TestGraphParents_PreInitialDependency(t *testing.T) {
	cfg := parseFlow(t)
	parents := cfg.GraphParents(cfg.TaskDefs["b"], "1")
	assert.ElementsMatch(t, []models.GraphNeighbor{
		{Name: "b", Point: "0"},
		{Name: "a", Point: "1"},
		{Name: "x", Point: "1"},
	}, parents)
}

func TestGraphChildren(t *testing.T) {
	cfg := parseFlow(t)
	children := cfg.GraphChildren(cfg.TaskDefs["b"], "1")
	assert.ElementsMatch(t, []models.GraphNeighbor{
		{Name: "b", Point: "2"},
		{Name: "z", Point: "1"},
	}, children)

	children = cfg.GraphChildren(cfg.TaskDefs["a"], "2")
	assert.Equal(t, []models.GraphNeighbor{{Name: "b", Point: "2"}}, children)
}

func TestParseWorkflow_Runtime(t *testing.T) {
	cfg := parseFlow(t)
	assert.Equal(t, "true", cfg.TaskDefs["a"].Runtime.Script)
	assert.Equal(t, "localhost", cfg.Families["FAM"].Runtime.Platform)
}

func TestParseWorkflow_Invalid(t *testing.T) {
	_, err := ParseWorkflow([]byte("[workflow]\nname = \"x\"\n"))
	assert.Error(t, err, "missing initial cycle point")

	_, err = ParseWorkflow([]byte(`
[workflow]
name = "x"
initial_cycle_point = "1"

[graph]
P1 = "a => b[-P1]"
`))
	assert.Error(t, err, "offset on dependent task")
}

func TestPointsInRange(t *testing.T) {
	cfg := parseFlow(t)
	assert.Equal(t, []string{"1", "2", "3"}, cfg.PointsInRange())
}
