package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cursus/internal/common"
)

func newPlanner(cfg *common.AutoRestartConfig) *autoRestartPlanner {
	p := newAutoRestartPlanner(
		"hostA",
		func() (*common.AutoRestartConfig, error) { return cfg, nil },
		arbor.NewLogger(),
	)
	p.randFloat = func() float64 { return 0.5 }
	return p
}

func TestAutoRestart_CondemnedHostSchedulesRestart(t *testing.T) {
	p := newPlanner(&common.AutoRestartConfig{
		Enabled:        true,
		CondemnedHosts: []string{"hostA"},
		AvailableHosts: []string{"hostA", "hostB"},
		RestartDelay:   "30s",
	})
	now := time.Now()
	require.NoError(t, p.check(now))

	assert.Equal(t, restartModeRestartNormal, p.mode)
	assert.Equal(t, "hostB", p.targetHost)
	require.NotNil(t, p.restartTime)
	// Stagger lands inside [0, restart_delay].
	assert.True(t, !p.restartTime.Before(now))
	assert.True(t, !p.restartTime.After(now.Add(30*time.Second)))
	assert.False(t, p.due(now))
	assert.True(t, p.due(now.Add(31*time.Second)))
}

func TestAutoRestart_ForceStopWithoutRestart(t *testing.T) {
	p := newPlanner(&common.AutoRestartConfig{
		Enabled:        true,
		CondemnedHosts: []string{"hostA!"},
		AvailableHosts: []string{"hostB"},
	})
	require.NoError(t, p.check(time.Now()))
	assert.Equal(t, restartModeStopForce, p.mode)
	assert.Empty(t, p.targetHost)
}

func TestAutoRestart_NotCondemned(t *testing.T) {
	p := newPlanner(&common.AutoRestartConfig{
		Enabled:        true,
		CondemnedHosts: []string{"hostZ"},
	})
	require.NoError(t, p.check(time.Now()))
	assert.Equal(t, restartModeNone, p.mode)
	assert.Nil(t, p.restartTime)
}

func TestAutoRestart_NoAlternateHostForbidsRestart(t *testing.T) {
	p := newPlanner(&common.AutoRestartConfig{
		Enabled:        true,
		CondemnedHosts: []string{"hostA"},
		AvailableHosts: []string{"hostA"},
	})
	require.NoError(t, p.check(time.Now()))
	// Host selection failed: no restart is scheduled.
	assert.Equal(t, restartModeNone, p.mode)
	assert.Nil(t, p.restartTime)
}

func TestAutoRestart_ConfigLoadFailureSkipsTick(t *testing.T) {
	p := newAutoRestartPlanner(
		"hostA",
		func() (*common.AutoRestartConfig, error) { return nil, fmt.Errorf("boom") },
		arbor.NewLogger(),
	)
	require.NoError(t, p.check(time.Now()))
	assert.Equal(t, restartModeNone, p.mode)
}
