package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cursus/internal/common"
	"github.com/ternarybob/cursus/internal/models"
	"github.com/ternarybob/cursus/internal/services/broadcasts"
	"github.com/ternarybob/cursus/internal/services/config"
	"github.com/ternarybob/cursus/internal/services/datastore"
	"github.com/ternarybob/cursus/internal/services/events"
	"github.com/ternarybob/cursus/internal/services/pool"
	"github.com/ternarybob/cursus/internal/services/xtrigger"
)

const testFlow = `
[workflow]
name = "flow"
cycling_mode = "integer"
initial_cycle_point = "1"
final_cycle_point = "1"

[graph]
P1 = "a => b"
`

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	logger := arbor.NewLogger()
	appCfg := common.DefaultConfig()
	appCfg.Scheduler.WorkflowOwner = "bob"
	cfg, err := config.ParseWorkflow([]byte(testFlow))
	require.NoError(t, err)

	taskPool := pool.NewService(cfg, 2, logger)
	broadcastMgr := broadcasts.NewService(logger)
	store := datastore.NewService(cfg, datastore.Options{
		Owner:        "bob",
		WorkflowName: cfg.Name,
		Host:         "localhost",
	}, taskPool, nil, broadcastMgr, logger)

	return New(
		appCfg, cfg, taskPool, store, broadcastMgr,
		xtrigger.NewService(logger), nil,
		events.NewService(logger), nil, logger,
	)
}

func TestDispatchCommand_Unknown(t *testing.T) {
	s := newTestScheduler(t)
	_, err := s.dispatchCommand(models.Command{Name: "frobnicate"})
	var failure *CommandFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "frobnicate", failure.Command)
}

func TestDispatchCommand_StopInvalidMode(t *testing.T) {
	s := newTestScheduler(t)
	_, err := s.dispatchCommand(models.Command{
		Name:   "stop",
		Kwargs: map[string]interface{}{"mode": "GENTLY"},
	})
	var failure *CommandFailure
	require.ErrorAs(t, err, &failure)
	assert.Contains(t, failure.Reason, "invalid stop mode")
	assert.Equal(t, models.StopModeNone, s.stopMode)
}

func TestDispatchCommand_StopModePriority(t *testing.T) {
	s := newTestScheduler(t)
	require.NoError(t, s.store.Initiate(false))

	_, err := s.dispatchCommand(models.Command{
		Name:   "stop",
		Kwargs: map[string]interface{}{"mode": "REQUEST_CLEAN"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StopModeRequestClean, s.stopMode)

	// A higher-priority request wins; a lower one does not downgrade.
	_, err = s.dispatchCommand(models.Command{
		Name:   "stop",
		Kwargs: map[string]interface{}{"mode": "REQUEST_NOW"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StopModeRequestNow, s.stopMode)

	_, err = s.dispatchCommand(models.Command{
		Name:   "stop",
		Kwargs: map[string]interface{}{"mode": "REQUEST_CLEAN"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StopModeRequestNow, s.stopMode)
}

func TestDispatchCommand_StopArgumentPreference(t *testing.T) {
	s := newTestScheduler(t)
	require.NoError(t, s.store.Initiate(false))

	// cycle_point outranks mode when both are supplied.
	_, err := s.dispatchCommand(models.Command{
		Name: "stop",
		Kwargs: map[string]interface{}{
			"cycle_point": "5",
			"mode":        "REQUEST_NOW",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "5", s.pool.StopPoint())
	assert.Equal(t, models.StopModeNone, s.stopMode)
}

func TestDispatchCommand_PauseResume(t *testing.T) {
	s := newTestScheduler(t)
	require.NoError(t, s.store.Initiate(false))

	_, err := s.dispatchCommand(models.Command{Name: "pause"})
	require.NoError(t, err)
	assert.True(t, s.isPaused)

	_, err = s.dispatchCommand(models.Command{Name: "resume"})
	require.NoError(t, err)
	assert.False(t, s.isPaused)
}

func TestDispatchCommand_SetGraphWindowExtent(t *testing.T) {
	s := newTestScheduler(t)
	_, err := s.dispatchCommand(models.Command{
		Name:   "set_graph_window_extent",
		Kwargs: map[string]interface{}{"n_edge_distance": "2"},
	})
	require.NoError(t, err)

	_, err = s.dispatchCommand(models.Command{
		Name:   "set_graph_window_extent",
		Kwargs: map[string]interface{}{"n_edge_distance": "-1"},
	})
	var failure *CommandFailure
	require.ErrorAs(t, err, &failure)
}

func TestDispatchCommand_SetVerbosity(t *testing.T) {
	s := newTestScheduler(t)
	_, err := s.dispatchCommand(models.Command{
		Name:   "set_verbosity",
		Kwargs: map[string]interface{}{"level": "debug"},
	})
	require.NoError(t, err)
	assert.Equal(t, "debug", s.verbosity)

	_, err = s.dispatchCommand(models.Command{
		Name:   "set_verbosity",
		Kwargs: map[string]interface{}{"level": "chatty"},
	})
	assert.Error(t, err)
}

func TestCommandQueue_FailureDoesNotStopLoop(t *testing.T) {
	s := newTestScheduler(t)
	require.NoError(t, s.EnqueueCommand(models.Command{Name: "nonsense"}))
	require.NoError(t, s.EnqueueCommand(models.Command{Name: "pause"}))
	// The unknown command is logged, the queue keeps draining.
	require.NoError(t, s.processCommandQueue())
	assert.True(t, s.isPaused)
}

func TestWorkflowShutdown_AutoOnEmptyPool(t *testing.T) {
	s := newTestScheduler(t)
	require.NoError(t, s.store.Initiate(false))
	err := s.workflowShutdown()
	assert.Equal(t, ErrSchedulerStop, err)
	assert.Equal(t, models.StopModeAuto, s.stopMode)
}

func TestWorkflowShutdown_RestartTimeoutTrace(t *testing.T) {
	s := newTestScheduler(t)
	require.NoError(t, s.store.Initiate(false))
	s.restarted = true

	now := time.Now()
	timer := NewTimer(TimerRestartTimeout, time.Minute, arbor.NewLogger(), nil)
	timer.now = func() time.Time { return now }
	s.timers[TimerRestartTimeout] = timer
	timer.Reset()

	// While the restart timer runs, an empty pool does not auto-stop.
	require.NoError(t, s.workflowShutdown())
	assert.Equal(t, models.StopModeNone, s.stopMode)

	// The timer fires: the workflow shuts down cleanly.
	now = now.Add(2 * time.Minute)
	require.NoError(t, s.checkTimers())
	assert.Equal(t, models.StopModeAuto, s.stopMode)
	assert.Equal(t, ErrSchedulerStop, s.workflowShutdown())
}

func TestDispatchCommand_Broadcast(t *testing.T) {
	s := newTestScheduler(t)
	require.NoError(t, s.store.Initiate(false))
	_, err := s.dispatchCommand(models.Command{
		Name: "broadcast",
		Kwargs: map[string]interface{}{
			"point":      "1",
			"namespaces": []interface{}{"a"},
			"settings":   map[string]interface{}{"script": "echo override"},
		},
	})
	require.NoError(t, err)

	_, err = s.dispatchCommand(models.Command{
		Name: "broadcast",
		Kwargs: map[string]interface{}{
			"namespaces": []interface{}{"a"},
			"settings":   map[string]interface{}{"no_such_key": "x"},
		},
	})
	var failure *CommandFailure
	require.ErrorAs(t, err, &failure)
}

func TestProcPool_DrainRunsCallbacks(t *testing.T) {
	p := NewProcPool(2, arbor.NewLogger())
	done := make(chan struct{})
	require.True(t, p.Submit(func() func() {
		return func() { close(done) }
	}))
	// Callbacks only run when the loop drains them.
	ran := false
	for i := 0; i < 400 && !ran; i++ {
		p.Drain()
		select {
		case <-done:
			ran = true
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	assert.True(t, ran)
	p.Close()
	p.WaitDrained()
}
