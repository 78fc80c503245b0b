package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTaskProxy() *TaskProxy {
	return &TaskProxy{
		Stamp:      "~bob/flow//1/foo@123.4",
		ID:         "~bob/flow//1/foo",
		Task:       "~bob/flow//$namespace|foo",
		State:      String("running"),
		CyclePoint: "1",
		Depth:      2,
		JobSubmits: Int32(1),
		Outputs: map[string]*Output{
			"succeeded": {Label: "succeeded", Message: "succeeded", Satisfied: false, Time: 5},
		},
		Namespace: []string{"foo", "FAM", "root"},
		Prerequisites: []*Prerequisite{{
			Expression: "0/b & 1/a",
			Conditions: []*PrereqCondition{
				{TaskProxy: "~bob/flow//0/b", ReqState: "succeeded", Satisfied: true},
			},
			CyclePoints: []string{"0"},
			Satisfied:   true,
		}},
		Jobs:        []string{"~bob/flow//1/foo/01"},
		FirstParent: "~bob/flow//1/FAM",
		Name:        "foo",
		IsHeld:      Bool(false),
		Edges:       []string{"~bob/flow//$edge|1/a|1/foo"},
		Ancestors:   []string{"~bob/flow//1/FAM", "~bob/flow//1/root"},
		FlowNums:    "[1]",
		Xtriggers: map[string]*Trigger{
			"wall_clock()": {ID: "wall_clock()", Label: "clock", Satisfied: true},
		},
		IsQueued:   Bool(true),
		IsRunahead: Bool(false),
		Runtime: &Runtime{
			Script:      "echo hi",
			Platform:    "localhost",
			Environment: map[string]string{"FOO": "bar"},
		},
		GraphDepth: Int32(0),
	}
}

func TestTaskProxy_WireRoundTrip(t *testing.T) {
	in := sampleTaskProxy()
	out, err := UnmarshalTaskProxy(in.Marshal())
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestWorkflow_WireRoundTrip(t *testing.T) {
	in := &Workflow{
		Stamp:          "~bob/flow@9.9",
		ID:             "~bob/flow",
		Name:           "flow",
		Status:         "running",
		StatusMsg:      "running",
		Host:           "localhost",
		Port:           8210,
		Owner:          "bob",
		APIVersion:     5,
		RuntimeVersion: "1.0.0",
		LastUpdated:    42.5,
		CyclingMode:    "integer",
		RunMode:        "live",
		StateTotals:    map[string]int32{"running": 1, "waiting": 2},
		States:         []string{"running", "waiting"},
		TaskProxies:    []string{"~bob/flow//1/foo"},
		IsHeldTotal:    Int32(0),
		LatestStateTasks: map[string]*StateTasks{
			"running": {Tasks: []string{"1/foo"}},
		},
		StatesUpdated: Bool(true),
		NEdgeDistance: 1,
		TimeZoneInfo:  &TimeZoneInfo{Hours: 0, StringBasic: "+0000", StringExtended: "+00:00"},
	}
	out, err := UnmarshalWorkflow(in.Marshal())
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestAllDeltas_WireRoundTrip(t *testing.T) {
	in := &AllDeltas{
		TaskProxies: &TaskProxyDeltas{
			Time:     12.5,
			Checksum: 77,
			Added:    []*TaskProxy{sampleTaskProxy()},
			Pruned:   []string{"~bob/flow//0/old"},
		},
		Edges: &EdgeDeltas{
			Time: 12.5,
			Added: []*Edge{{
				ID:     "~bob/flow//$edge|1/a|1/b",
				Source: "~bob/flow//1/a",
				Target: "~bob/flow//1/b",
			}},
		},
		Workflow: &WorkflowDeltas{
			Time:    12.5,
			Updated: &Workflow{ID: "~bob/flow", Status: "running"},
		},
	}
	out, err := UnmarshalAllDeltas(in.Marshal())
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestMarshal_Deterministic(t *testing.T) {
	a := sampleTaskProxy().Marshal()
	b := sampleTaskProxy().Marshal()
	assert.Equal(t, a, b)
}
