package broadcasts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cursus/internal/schemas"
)

func TestPutAndApply(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	require.NoError(t, svc.Put("1", []string{"foo"}, map[string]string{
		"script":          "echo override",
		"environment.FOO": "bar",
	}))

	rt := &schemas.Runtime{Script: "echo original"}
	changed := svc.ApplyBroadcast("1", []string{"foo", "root"}, rt)
	assert.True(t, changed)
	assert.Equal(t, "echo override", rt.Script)
	assert.Equal(t, "bar", rt.Environment["FOO"])

	// Different point: no match.
	rt2 := &schemas.Runtime{Script: "echo original"}
	assert.False(t, svc.ApplyBroadcast("2", []string{"foo"}, rt2))
	assert.Equal(t, "echo original", rt2.Script)
}

func TestApply_AllPointsAndSpecificity(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	require.NoError(t, svc.Put("*", []string{"FAM"}, map[string]string{"platform": "hpc"}))
	require.NoError(t, svc.Put("1", []string{"foo"}, map[string]string{"platform": "gpu"}))

	// Leaf-most override wins over the family-level one.
	rt := &schemas.Runtime{}
	svc.ApplyBroadcast("1", []string{"foo", "FAM", "root"}, rt)
	assert.Equal(t, "gpu", rt.Platform)

	rt = &schemas.Runtime{}
	svc.ApplyBroadcast("2", []string{"foo", "FAM", "root"}, rt)
	assert.Equal(t, "hpc", rt.Platform)
}

func TestApply_ProxyIDNamespaces(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	require.NoError(t, svc.Put("1", []string{"FAM"}, map[string]string{"script": "x"}))

	// Ancestor lists carry live proxy ids; matching is by name.
	rt := &schemas.Runtime{}
	changed := svc.ApplyBroadcast("1", []string{"~bob/flow//1/FAM", "~bob/flow//1/root"}, rt)
	assert.True(t, changed)
	assert.Equal(t, "x", rt.Script)
}

func TestPut_Validation(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	assert.Error(t, svc.Put("1", nil, map[string]string{"script": "x"}))
	assert.Error(t, svc.Put("1", []string{"foo"}, map[string]string{"bogus": "x"}))
}

func TestExpire(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	require.NoError(t, svc.Put("1", []string{"foo"}, map[string]string{"script": "a"}))
	require.NoError(t, svc.Put("2", []string{"foo"}, map[string]string{"script": "b"}))
	require.NoError(t, svc.Put("*", []string{"foo"}, map[string]string{"script": "c"}))

	assert.Equal(t, 1, svc.Expire("2"))

	rt := &schemas.Runtime{}
	svc.ApplyBroadcast("1", []string{"foo"}, rt)
	// Only the all-points broadcast still matches point 1.
	assert.Equal(t, "c", rt.Script)
}

func TestDump(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	require.NoError(t, svc.Put("1", []string{"foo"}, map[string]string{"script": "x"}))
	dump := svc.Dump()
	assert.Contains(t, dump, "foo")
	assert.Contains(t, dump, "script")
}
