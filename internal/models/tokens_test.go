package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokensID_RoundTrip(t *testing.T) {
	cases := []Tokens{
		{User: "bob", Workflow: "flow"},
		{User: "bob", Workflow: "flow", Cycle: "1"},
		{User: "bob", Workflow: "flow", Cycle: "1", Task: "foo"},
		{User: "bob", Workflow: "flow", Cycle: "20200505T00Z", Task: "foo", Job: "01"},
	}
	for _, tokens := range cases {
		parsed, err := ParseTokens(tokens.ID())
		require.NoError(t, err, tokens.ID())
		assert.Equal(t, tokens, parsed)
	}
}

func TestTokensID_Forms(t *testing.T) {
	tokens := Tokens{User: "bob", Workflow: "flow", Cycle: "1", Task: "foo", Job: "01"}
	assert.Equal(t, "~bob/flow//1/foo/01", tokens.ID())
	assert.Equal(t, "~bob/flow", tokens.WorkflowID())
	assert.Equal(t, "1/foo/01", tokens.RelativeID())
}

func TestTokens_DefinitionAndEdgeSpaces(t *testing.T) {
	wf := Tokens{User: "bob", Workflow: "flow"}
	defID := wf.Definition("foo")
	assert.Equal(t, "~bob/flow//$namespace|foo", defID)

	left := wf.Duplicate("1", "a", "")
	right := wf.Duplicate("1", "b", "")
	edgeID := wf.Edge(left, right)
	assert.Equal(t, "~bob/flow//$edge|1/a|1/b", edgeID)

	// Both parse back with the whole relative part in the cycle slot.
	parsed, err := ParseTokens(defID)
	require.NoError(t, err)
	assert.Equal(t, "$namespace|foo", parsed.Cycle)
	assert.Empty(t, parsed.Task)

	parsed, err = ParseTokens(edgeID)
	require.NoError(t, err)
	assert.Equal(t, "$edge|1/a|1/b", parsed.Cycle)
}

func TestParseTokens_Invalid(t *testing.T) {
	for _, id := range []string{"", "bob/flow", "~bob"} {
		_, err := ParseTokens(id)
		assert.Error(t, err, id)
	}
}

func TestParseTaskMessageID(t *testing.T) {
	cases := []struct {
		in   string
		want TaskMessageRef
	}{
		{"1/foo/01", TaskMessageRef{Cycle: "1", Task: "foo", SubmitNum: "01"}},
		{"1/foo", TaskMessageRef{Cycle: "1", Task: "foo"}},
		{"foo.1.01", TaskMessageRef{Cycle: "1", Task: "foo", SubmitNum: "01"}},
		{"foo.1", TaskMessageRef{Cycle: "1", Task: "foo"}},
		{"foo", TaskMessageRef{Task: "foo"}},
		{"1/foo:running", TaskMessageRef{Cycle: "1", Task: "foo", State: "running"}},
	}
	for _, c := range cases {
		got, err := ParseTaskMessageID(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseTaskMessageID_Invalid(t *testing.T) {
	for _, id := range []string{"", "1/foo/01/extra", ":running"} {
		_, err := ParseTaskMessageID(id)
		assert.Error(t, err, id)
	}
}
