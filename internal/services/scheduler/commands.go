// -----------------------------------------------------------------------
// Command queue dispatch
//
// Commands are processed FIFO within the tick. A failure is logged and
// returned to the client; only ErrSchedulerStop and a *SchedulerError
// escape the loop.
// -----------------------------------------------------------------------

package scheduler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ternarybob/cursus/internal/models"
)

// processCommandQueue drains and dispatches queued commands.
func (s *Scheduler) processCommandQueue() error {
	for {
		select {
		case cmd := <-s.commandQueue:
			data, err := s.dispatchCommand(cmd)
			if cmd.Reply != nil {
				cmd.Reply <- models.CommandResult{Data: data, Err: err}
			}
			if err != nil {
				if err == ErrSchedulerStop {
					return err
				}
				if se, ok := err.(*SchedulerError); ok {
					return se
				}
				s.logger.Warn().
					Err(err).
					Str("command", cmd.Name).
					Msg("Command failed")
			}
		default:
			return nil
		}
	}
}

func (s *Scheduler) dispatchCommand(cmd models.Command) (interface{}, error) {
	s.logger.Info().Str("command", cmd.Name).Msg("Processing command")
	switch cmd.Name {
	case "pause":
		return nil, s.cmdPause()
	case "resume":
		return nil, s.cmdResume()
	case "stop":
		return nil, s.cmdStop(cmd.Kwargs)
	case "hold":
		return nil, s.cmdHold(cmd.Kwargs)
	case "release":
		return nil, s.cmdRelease(cmd.Kwargs)
	case "set_hold_point":
		return nil, s.cmdSetHoldPoint(cmd.Kwargs)
	case "release_hold_point":
		s.pool.ReleaseHoldPoint()
		s.refreshHeldFlags()
		return nil, nil
	case "kill_tasks":
		return nil, s.cmdKillTasks(cmd.Kwargs)
	case "poll_tasks":
		return nil, s.cmdPollTasks(cmd.Kwargs)
	case "remove_tasks":
		return nil, s.cmdRemoveTasks(cmd.Kwargs)
	case "reload_workflow":
		s.reloadPending = true
		return nil, nil
	case "set_verbosity":
		return nil, s.cmdSetVerbosity(cmd.Kwargs)
	case "set_graph_window_extent":
		return nil, s.cmdSetGraphWindowExtent(cmd.Kwargs)
	case "force_trigger_tasks":
		return nil, s.cmdForceTriggerTasks(cmd.Kwargs)
	case "force_spawn_children":
		return nil, s.cmdForceSpawnChildren(cmd.Kwargs)
	case "put_ext_trigger":
		return nil, s.cmdPutExtTrigger(cmd.Kwargs)
	case "put_messages":
		return nil, s.cmdPutMessages(cmd.Kwargs)
	case "broadcast":
		return nil, s.cmdBroadcast(cmd.Kwargs)
	case cmdAutoRestartCheck:
		return nil, s.runAutoRestartCheck()
	case cmdDBHealthCheck:
		if s.db != nil {
			if err := s.db.HealthCheck(); err != nil {
				s.logger.Error().Err(err).Msg("Run database health check failed")
			}
		}
		return nil, nil
	default:
		return nil, &CommandFailure{Command: cmd.Name, Reason: "unknown command"}
	}
}

func stringArg(kwargs map[string]interface{}, key string) string {
	if kwargs == nil {
		return ""
	}
	switch v := kwargs[key].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

func stringsArg(kwargs map[string]interface{}, key string) []string {
	if kwargs == nil {
		return nil
	}
	switch v := kwargs[key].(type) {
	case []string:
		return v
	case []interface{}:
		var out []string
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

func (s *Scheduler) cmdPause() error {
	if s.isPaused {
		return nil
	}
	s.isPaused = true
	s.logger.Info().Msg("Workflow paused")
	s.publishStatus()
	return nil
}

func (s *Scheduler) cmdResume() error {
	if !s.isPaused {
		return nil
	}
	s.isPaused = false
	s.logger.Info().Msg("Workflow resumed")
	s.publishStatus()
	return nil
}

// cmdStop handles the mutually-preferential stop arguments: flow_num,
// cycle_point, clock_time, task, mode — highest priority first.
func (s *Scheduler) cmdStop(kwargs map[string]interface{}) error {
	if flowNum := stringArg(kwargs, "flow_num"); flowNum != "" {
		// A flow stop is only logged: no tasks are removed and the
		// scheduler keeps running.
		s.logger.Info().Str("flow_num", flowNum).Msg("Stopping flow")
		return nil
	}
	if point := stringArg(kwargs, "cycle_point"); point != "" {
		s.pool.SetStopPoint(point)
		s.logger.Info().Str("stop_point", point).Msg("Stop point set")
		s.publishStatus()
		return nil
	}
	if clock := stringArg(kwargs, "clock_time"); clock != "" {
		when, err := time.Parse(time.RFC3339, clock)
		if err != nil {
			return &CommandFailure{Command: "stop", Reason: fmt.Sprintf("invalid clock time: %v", err)}
		}
		s.stopClockTime = &when
		s.logger.Info().Str("clock_time", clock).Msg("Stop clock time set")
		return nil
	}
	if task := stringArg(kwargs, "task"); task != "" {
		s.pool.SetStopTask(task)
		s.logger.Info().Str("stop_task", task).Msg("Stop task set")
		s.publishStatus()
		return nil
	}
	mode, err := models.ParseStopMode(stringArg(kwargs, "mode"))
	if err != nil {
		return &CommandFailure{Command: "stop", Reason: err.Error()}
	}
	if mode > s.stopMode {
		s.stopMode = mode
	}
	s.publishStatus()
	return nil
}

func (s *Scheduler) cmdHold(kwargs map[string]interface{}) error {
	tasks := stringsArg(kwargs, "tasks")
	if len(tasks) == 0 {
		return &CommandFailure{Command: "hold", Reason: "no tasks given"}
	}
	for _, ref := range tasks {
		point, name, err := splitTaskRef(ref)
		if err != nil {
			return &CommandFailure{Command: "hold", Reason: err.Error()}
		}
		s.pool.HoldTask(point, name)
		s.store.DeltaTaskHeld(name, point, true)
	}
	return nil
}

func (s *Scheduler) cmdRelease(kwargs map[string]interface{}) error {
	tasks := stringsArg(kwargs, "tasks")
	if len(tasks) == 0 {
		return &CommandFailure{Command: "release", Reason: "no tasks given"}
	}
	for _, ref := range tasks {
		point, name, err := splitTaskRef(ref)
		if err != nil {
			return &CommandFailure{Command: "release", Reason: err.Error()}
		}
		s.pool.ReleaseTask(point, name)
		s.store.DeltaTaskHeld(name, point, false)
	}
	return nil
}

func (s *Scheduler) cmdSetHoldPoint(kwargs map[string]interface{}) error {
	point := stringArg(kwargs, "point")
	if point == "" {
		return &CommandFailure{Command: "set_hold_point", Reason: "no point given"}
	}
	s.pool.SetHoldPoint(point)
	s.refreshHeldFlags()
	s.publishStatus()
	return nil
}

func (s *Scheduler) refreshHeldFlags() {
	for _, itask := range s.pool.GetTasks() {
		held := s.pool.IsHeld(itask.Point, itask.Name)
		if itask.IsHeld != held {
			itask.IsHeld = held
			s.store.DeltaTaskHeld(itask.Name, itask.Point, held)
		}
	}
}

func (s *Scheduler) cmdKillTasks(kwargs map[string]interface{}) error {
	for _, ref := range stringsArg(kwargs, "tasks") {
		point, name, err := splitTaskRef(ref)
		if err != nil {
			return &CommandFailure{Command: "kill_tasks", Reason: err.Error()}
		}
		itask := s.pool.GetTask(point, name)
		if itask == nil {
			return &CommandFailure{Command: "kill_tasks", Reason: fmt.Sprintf("unknown task %q", ref)}
		}
		if itask.IsActive() {
			s.applyTaskState(itask, models.TaskStateFailed,
				fmt.Sprintf("%02d", itask.SubmitNum), time.Now())
		}
	}
	return nil
}

func (s *Scheduler) cmdPollTasks(kwargs map[string]interface{}) error {
	for _, ref := range stringsArg(kwargs, "tasks") {
		s.logger.Info().Str("task", ref).Msg("Poll requested")
		delete(s.pollScheduled, ref)
	}
	return nil
}

func (s *Scheduler) cmdRemoveTasks(kwargs map[string]interface{}) error {
	for _, ref := range stringsArg(kwargs, "tasks") {
		point, name, err := splitTaskRef(ref)
		if err != nil {
			return &CommandFailure{Command: "remove_tasks", Reason: err.Error()}
		}
		itask := s.pool.GetTask(point, name)
		if itask == nil {
			return &CommandFailure{Command: "remove_tasks", Reason: fmt.Sprintf("unknown task %q", ref)}
		}
		s.retireTask(itask, "removed by request")
	}
	return nil
}

func (s *Scheduler) cmdSetVerbosity(kwargs map[string]interface{}) error {
	level := stringArg(kwargs, "level")
	switch level {
	case "debug", "info", "warn", "error":
		s.verbosity = level
		s.logger.Info().Str("level", level).Msg("Verbosity changed")
		return nil
	default:
		return &CommandFailure{Command: "set_verbosity", Reason: fmt.Sprintf("invalid level %q", level)}
	}
}

func (s *Scheduler) cmdSetGraphWindowExtent(kwargs map[string]interface{}) error {
	raw := stringArg(kwargs, "n_edge_distance")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return &CommandFailure{
			Command: "set_graph_window_extent",
			Reason:  fmt.Sprintf("invalid n_edge_distance %q", raw),
		}
	}
	s.store.SetGraphWindowExtent(n)
	return nil
}

func (s *Scheduler) cmdForceTriggerTasks(kwargs map[string]interface{}) error {
	for _, ref := range stringsArg(kwargs, "tasks") {
		point, name, err := splitTaskRef(ref)
		if err != nil {
			return &CommandFailure{Command: "force_trigger_tasks", Reason: err.Error()}
		}
		itask := s.pool.GetTask(point, name)
		if itask == nil {
			itask = s.pool.Spawn(name, point, []int64{1})
			itask.IsManualSubmit = true
			s.activateTask(itask, true)
		}
		if itask.IsWaiting() && !itask.IsQueued {
			itask.IsManualSubmit = true
			s.pool.QueueTask(itask)
			s.store.DeltaTaskQueued(itask)
		}
	}
	return nil
}

func (s *Scheduler) cmdForceSpawnChildren(kwargs map[string]interface{}) error {
	output := stringArg(kwargs, "output")
	if output == "" {
		output = "succeeded"
	}
	for _, ref := range stringsArg(kwargs, "tasks") {
		point, name, err := splitTaskRef(ref)
		if err != nil {
			return &CommandFailure{Command: "force_spawn_children", Reason: err.Error()}
		}
		itask := s.pool.GetTask(point, name)
		if itask == nil {
			return &CommandFailure{
				Command: "force_spawn_children",
				Reason:  fmt.Sprintf("unknown task %q", ref),
			}
		}
		s.completeOutput(itask, output)
	}
	return nil
}

func (s *Scheduler) cmdPutExtTrigger(kwargs map[string]interface{}) error {
	message := stringArg(kwargs, "message")
	if message == "" {
		return &CommandFailure{Command: "put_ext_trigger", Reason: "no message given"}
	}
	s.xtriggers.PutExtTrigger(message, stringArg(kwargs, "id"))
	return nil
}

func (s *Scheduler) cmdPutMessages(kwargs map[string]interface{}) error {
	jobID := stringArg(kwargs, "task_job")
	if jobID == "" {
		return &CommandFailure{Command: "put_messages", Reason: "no task_job given"}
	}
	severity := stringArg(kwargs, "severity")
	for _, message := range stringsArg(kwargs, "messages") {
		s.EnqueueMessage(models.TaskMessage{
			JobID:     jobID,
			EventTime: time.Now(),
			Severity:  severity,
			Message:   message,
		})
	}
	return nil
}

func (s *Scheduler) cmdBroadcast(kwargs map[string]interface{}) error {
	point := stringArg(kwargs, "point")
	namespaces := stringsArg(kwargs, "namespaces")
	settings := map[string]string{}
	if raw, ok := kwargs["settings"].(map[string]interface{}); ok {
		for key, value := range raw {
			if str, ok := value.(string); ok {
				settings[key] = str
			}
		}
	}
	if err := s.broadcasts.Put(point, namespaces, settings); err != nil {
		return &CommandFailure{Command: "broadcast", Reason: err.Error()}
	}
	s.store.DeltaBroadcast()
	return nil
}

// runAutoRestartCheck runs the planner and applies a due restart.
func (s *Scheduler) runAutoRestartCheck() error {
	if err := s.autoRestart.check(time.Now()); err != nil {
		return err
	}
	if !s.autoRestart.due(time.Now()) {
		return nil
	}
	switch s.autoRestart.mode {
	case restartModeStopForce:
		if s.stopMode < models.StopModeRequestNow {
			s.stopMode = models.StopModeRequestNow
		}
	case restartModeRestartNormal:
		// Wait for local jobs, then a fast stop; the wrapper restarts
		// the workflow on the selected host.
		if s.pool.HasActiveTasks() {
			return nil
		}
		if s.stopMode < models.StopModeRequestNowNow {
			s.stopMode = models.StopModeRequestNowNow
		}
	}
	return nil
}

// splitTaskRef parses "CYCLE/TASK" references used by task-targeting
// commands.
func splitTaskRef(ref string) (point, name string, err error) {
	msgRef, err := models.ParseTaskMessageID(ref)
	if err != nil {
		return "", "", err
	}
	if msgRef.Cycle == "" {
		return "", "", fmt.Errorf("task reference %q needs a cycle point", ref)
	}
	return msgRef.Cycle, msgRef.Task, nil
}
