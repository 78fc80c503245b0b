package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeWithProxy(t *testing.T) *Store {
	t.Helper()
	store := NewStore()
	missed := store.Apply(&AllDeltas{
		TaskProxies: &TaskProxyDeltas{Added: []*TaskProxy{sampleTaskProxy()}},
	})
	require.Empty(t, missed)
	return store
}

func TestApply_ScalarUpdateIdempotent(t *testing.T) {
	store := storeWithProxy(t)
	update := &AllDeltas{
		TaskProxies: &TaskProxyDeltas{Updated: []*TaskProxy{{
			ID:    "~bob/flow//1/foo",
			State: String("succeeded"),
		}}},
	}
	store.Apply(update)
	once := *store.TaskProxies["~bob/flow//1/foo"].State
	store.Apply(update)
	twice := *store.TaskProxies["~bob/flow//1/foo"].State
	assert.Equal(t, "succeeded", once)
	assert.Equal(t, once, twice)
}

func TestApply_RepeatedFieldsConcatenate(t *testing.T) {
	store := storeWithProxy(t)
	store.Apply(&AllDeltas{
		TaskProxies: &TaskProxyDeltas{Updated: []*TaskProxy{{
			ID:    "~bob/flow//1/foo",
			Edges: []string{"~bob/flow//$edge|1/foo|1/z"},
		}}},
	})
	tp := store.TaskProxies["~bob/flow//1/foo"]
	assert.Equal(t, []string{
		"~bob/flow//$edge|1/a|1/foo",
		"~bob/flow//$edge|1/foo|1/z",
	}, tp.Edges)
}

func TestApply_PrerequisitesClearBeforeMerge(t *testing.T) {
	store := storeWithProxy(t)
	store.Apply(&AllDeltas{
		TaskProxies: &TaskProxyDeltas{Updated: []*TaskProxy{{
			ID: "~bob/flow//1/foo",
			Prerequisites: []*Prerequisite{{
				Expression: "1/a",
				Satisfied:  false,
			}},
		}}},
	})
	tp := store.TaskProxies["~bob/flow//1/foo"]
	require.Len(t, tp.Prerequisites, 1)
	assert.Equal(t, "1/a", tp.Prerequisites[0].Expression)
}

func TestApply_JobMessagesClearBeforeMerge(t *testing.T) {
	store := NewStore()
	store.Apply(&AllDeltas{
		Jobs: &JobDeltas{Added: []*Job{{
			ID:       "~bob/flow//1/foo/01",
			Messages: []string{"submitted"},
		}}},
	})
	store.Apply(&AllDeltas{
		Jobs: &JobDeltas{Updated: []*Job{{
			ID:       "~bob/flow//1/foo/01",
			Messages: []string{"submitted", "started"},
		}}},
	})
	assert.Equal(t, []string{"submitted", "started"},
		store.Jobs["~bob/flow//1/foo/01"].Messages)
}

func TestApply_FamilyStateTotalsClearBeforeMerge(t *testing.T) {
	store := NewStore()
	store.Apply(&AllDeltas{
		FamilyProxies: &FamilyProxyDeltas{Added: []*FamilyProxy{{
			ID:          "~bob/flow//1/FAM",
			Name:        "FAM",
			StateTotals: map[string]int32{"running": 2},
			States:      []string{"running"},
		}}},
	})
	store.Apply(&AllDeltas{
		FamilyProxies: &FamilyProxyDeltas{Updated: []*FamilyProxy{{
			ID:          "~bob/flow//1/FAM",
			StateTotals: map[string]int32{"succeeded": 2, "running": 0},
			States:      []string{"succeeded"},
		}}},
	})
	fp := store.FamilyProxies["~bob/flow//1/FAM"]
	assert.Equal(t, []string{"succeeded"}, fp.States)
	assert.Equal(t, map[string]int32{"succeeded": 2, "running": 0}, fp.StateTotals)
}

func TestApply_WorkflowStatesUpdatedClears(t *testing.T) {
	store := NewStore()
	store.Apply(&AllDeltas{
		Workflow: &WorkflowDeltas{Added: &Workflow{
			ID:          "~bob/flow",
			StateTotals: map[string]int32{"running": 1},
			States:      []string{"running"},
		}},
	})
	store.Apply(&AllDeltas{
		Workflow: &WorkflowDeltas{Updated: &Workflow{
			ID:            "~bob/flow",
			StatesUpdated: Bool(true),
			StateTotals:   map[string]int32{"succeeded": 1},
			States:        []string{"succeeded"},
		}},
	})
	assert.Equal(t, []string{"succeeded"}, store.Workflow.States)
	assert.Equal(t, map[string]int32{"succeeded": 1}, store.Workflow.StateTotals)
}

func TestApply_UpdateForMissingIDSkipped(t *testing.T) {
	store := NewStore()
	missed := store.Apply(&AllDeltas{
		TaskProxies: &TaskProxyDeltas{Updated: []*TaskProxy{{
			ID:    "~bob/flow//9/ghost",
			State: String("running"),
		}}},
	})
	assert.Equal(t, []string{"~bob/flow//9/ghost"}, missed)
	assert.Empty(t, store.TaskProxies)
}

func TestApply_PruneTeardown(t *testing.T) {
	store := NewStore()
	store.Apply(&AllDeltas{
		Workflow: &WorkflowDeltas{Added: &Workflow{
			ID:          "~bob/flow",
			TaskProxies: []string{"~bob/flow//1/a", "~bob/flow//1/b"},
			Edges:       []string{"~bob/flow//$edge|1/a|1/b"},
			Jobs:        []string{"~bob/flow//1/a/01"},
		}},
		Tasks: &TaskDeltas{Added: []*Task{{
			ID:      "~bob/flow//$namespace|a",
			Name:    "a",
			Proxies: []string{"~bob/flow//1/a"},
		}}},
		TaskProxies: &TaskProxyDeltas{Added: []*TaskProxy{
			{
				ID:          "~bob/flow//1/a",
				Task:        "~bob/flow//$namespace|a",
				FirstParent: "~bob/flow//1/root",
				Edges:       []string{"~bob/flow//$edge|1/a|1/b"},
				Jobs:        []string{"~bob/flow//1/a/01"},
			},
			{
				ID:    "~bob/flow//1/b",
				Edges: []string{"~bob/flow//$edge|1/a|1/b"},
			},
		}},
		FamilyProxies: &FamilyProxyDeltas{Added: []*FamilyProxy{{
			ID:         "~bob/flow//1/root",
			Name:       "root",
			ChildTasks: []string{"~bob/flow//1/a", "~bob/flow//1/b"},
		}}},
		Jobs: &JobDeltas{Added: []*Job{{
			ID:        "~bob/flow//1/a/01",
			TaskProxy: "~bob/flow//1/a",
		}}},
		Edges: &EdgeDeltas{Added: []*Edge{{
			ID:     "~bob/flow//$edge|1/a|1/b",
			Source: "~bob/flow//1/a",
			Target: "~bob/flow//1/b",
		}}},
	})

	store.Apply(&AllDeltas{
		Jobs:        &JobDeltas{Pruned: []string{"~bob/flow//1/a/01"}},
		Edges:       &EdgeDeltas{Pruned: []string{"~bob/flow//$edge|1/a|1/b"}},
		TaskProxies: &TaskProxyDeltas{Pruned: []string{"~bob/flow//1/a"}},
	})

	// Every relationship to 1/a is torn down.
	assert.NotContains(t, store.TaskProxies, "~bob/flow//1/a")
	assert.Empty(t, store.Tasks["~bob/flow//$namespace|a"].Proxies)
	assert.Equal(t, []string{"~bob/flow//1/b"},
		store.FamilyProxies["~bob/flow//1/root"].ChildTasks)
	assert.Empty(t, store.Workflow.Jobs)
	assert.Empty(t, store.Workflow.Edges)
	assert.Equal(t, []string{"~bob/flow//1/b"}, store.Workflow.TaskProxies)
	assert.Empty(t, store.TaskProxies["~bob/flow//1/b"].Edges)
}
