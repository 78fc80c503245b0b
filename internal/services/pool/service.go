// -----------------------------------------------------------------------
// Task pool
//
// Holds the live task instances the scheduler drives. The data store
// never reaches into the pool beyond the TaskPool interface; state
// transitions are reported back through the scheduler.
// -----------------------------------------------------------------------

package pool

import (
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cursus/internal/interfaces"
	"github.com/ternarybob/cursus/internal/models"
	"github.com/ternarybob/cursus/internal/services/config"
	"github.com/ternarybob/cursus/internal/services/xtrigger"
)

// Service implements interfaces.TaskPool.
var _ interfaces.TaskPool = (*Service)(nil)

type Service struct {
	logger arbor.ILogger
	cfg    *config.WorkflowConfig

	tasks  map[string]*models.TaskInstance
	queued []*models.TaskInstance

	holdPoint   string
	tasksToHold map[string]bool

	// runaheadLimit bounds how many cycle points beyond the oldest
	// active point may run; tasks beyond it still spawn but are flagged
	// runahead and are not queued.
	runaheadLimit int64

	stopPoint string
	stopTask  string
}

// NewService creates a pool for a compiled workflow.
func NewService(cfg *config.WorkflowConfig, runaheadLimit int64, logger arbor.ILogger) *Service {
	if runaheadLimit <= 0 {
		runaheadLimit = 2
	}
	return &Service{
		logger:        logger,
		cfg:           cfg,
		tasks:         map[string]*models.TaskInstance{},
		tasksToHold:   map[string]bool{},
		runaheadLimit: runaheadLimit,
	}
}

// SetConfig swaps the compiled workflow on reload. Instances whose
// definition disappeared stay in the pool as orphans.
func (s *Service) SetConfig(cfg *config.WorkflowConfig) { s.cfg = cfg }

// Workflow returns the compiled workflow.
func (s *Service) Workflow() *config.WorkflowConfig { return s.cfg }

// LoadInitialTasks spawns the first-cycle tasks: every task with no
// same-or-earlier-point upstream dependency at the initial point.
func (s *Service) LoadInitialTasks() []*models.TaskInstance {
	point := s.cfg.InitialCyclePoint
	var spawned []*models.TaskInstance
	names := make([]string, 0, len(s.cfg.TaskDefs))
	for name := range s.cfg.TaskDefs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		td := s.cfg.TaskDefs[name]
		hasUpstream := false
		for _, parent := range s.cfg.GraphParents(td, point) {
			if models.ComparePoints(parent.Point, point) <= 0 &&
				models.ComparePoints(parent.Point, s.cfg.InitialCyclePoint) >= 0 {
				hasUpstream = true
				break
			}
		}
		if !hasUpstream {
			spawned = append(spawned, s.Spawn(name, point, []int64{1}))
		}
	}
	return spawned
}

// Spawn creates (or returns) the live instance for a task at a point.
func (s *Service) Spawn(name, point string, flowNums []int64) *models.TaskInstance {
	id := s.instanceID(name, point)
	if itask, ok := s.tasks[id]; ok {
		return itask
	}
	td := s.cfg.TaskDefs[name]
	itask := &models.TaskInstance{
		Tokens:      models.Tokens{Cycle: point, Task: name},
		Point:       point,
		Name:        name,
		State:       models.TaskStateWaiting,
		FlowNums:    append([]int64{}, flowNums...),
		Outputs:     map[string]*models.OutputState{},
		Xtriggers:   map[string]*models.XtriggerState{},
		ExtTriggers: map[string]*models.ExtTriggerState{},
		CreatedAt:   time.Now(),
	}
	itask.Outputs["succeeded"] = &models.OutputState{
		Label: "succeeded", Message: "succeeded"}
	itask.Outputs["failed"] = &models.OutputState{
		Label: "failed", Message: "failed"}
	if td != nil {
		for _, decl := range td.Xtriggers {
			sig := xtrigger.Signature(decl)
			itask.Xtriggers[sig] = &models.XtriggerState{Signature: sig, Label: decl}
		}
		for _, msg := range td.ExtTriggers {
			itask.ExtTriggers[msg] = &models.ExtTriggerState{Label: msg, Message: msg}
		}
		if td.LateOffset != "" {
			if dur, err := models.ParseISODuration(td.LateOffset); err == nil {
				itask.LateOffset = dur.Clock
			}
		}
		for _, prereq := range s.cfg.GraphParents(td, point) {
			if models.ComparePoints(prereq.Point, s.cfg.InitialCyclePoint) < 0 {
				// Pre-initial dependencies are satisfied by definition.
				continue
			}
			itask.Prerequisites = append(itask.Prerequisites, models.PrereqState{
				Expression: fmt.Sprintf("%s/%s:succeeded", prereq.Point, prereq.Name),
				Conditions: []models.PrereqConditionState{{
					Point:  prereq.Point,
					Task:   prereq.Name,
					Output: "succeeded",
				}},
			})
		}
		for _, child := range s.cfg.GraphChildren(td, point) {
			itask.GraphChildren = append(itask.GraphChildren, child)
		}
	}
	itask.IsHeld = s.IsHeld(point, name)
	s.tasks[id] = itask
	return itask
}

func (s *Service) instanceID(name, point string) string {
	return point + "/" + name
}

// GetTask returns the live instance for a point/name, or nil.
func (s *Service) GetTask(point, name string) *models.TaskInstance {
	return s.tasks[s.instanceID(name, point)]
}

// GetTasks returns every live instance, point-then-name ordered.
func (s *Service) GetTasks() []*models.TaskInstance {
	ids := make([]string, 0, len(s.tasks))
	for id := range s.tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*models.TaskInstance, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.tasks[id])
	}
	return out
}

// OldestActivePoint returns the minimum cycle point over the pool.
func (s *Service) OldestActivePoint() string {
	oldest := ""
	for _, itask := range s.tasks {
		if oldest == "" || models.ComparePoints(itask.Point, oldest) < 0 {
			oldest = itask.Point
		}
	}
	return oldest
}

// ReleaseRunaheadTasks clears the runahead flag on tasks now inside the
// limit; reports whether anything moved.
func (s *Service) ReleaseRunaheadTasks() bool {
	base := s.OldestActivePoint()
	if base == "" {
		return false
	}
	limit, err := models.OffsetIntegerPoint(base, s.runaheadLimit)
	if err != nil {
		return false
	}
	moved := false
	for _, itask := range s.tasks {
		runahead := models.ComparePoints(itask.Point, limit) > 0
		if itask.IsRunahead != runahead {
			itask.IsRunahead = runahead
			moved = true
		}
	}
	return moved
}

// QueueTask marks a ready task as queued.
func (s *Service) QueueTask(itask *models.TaskInstance) {
	if itask.IsQueued || itask.IsHeld || itask.IsRunahead {
		return
	}
	itask.IsQueued = true
	s.queued = append(s.queued, itask)
}

// ReleaseQueuedTasks dequeues ready tasks for submission.
func (s *Service) ReleaseQueuedTasks() []*models.TaskInstance {
	released := s.queued
	s.queued = nil
	for _, itask := range released {
		itask.IsQueued = false
	}
	return released
}

// RemoveTask drops an instance from the pool.
func (s *Service) RemoveTask(itask *models.TaskInstance, reason string) {
	id := s.instanceID(itask.Name, itask.Point)
	if _, ok := s.tasks[id]; !ok {
		return
	}
	delete(s.tasks, id)
	s.logger.Debug().
		Str("task", id).
		Str("reason", reason).
		Msg("Task removed from pool")
}

// SatisfyDependants marks the given output satisfied on downstream
// prerequisites and returns newly spawned or now-ready instances.
func (s *Service) SatisfyDependants(itask *models.TaskInstance, output string) []*models.TaskInstance {
	var affected []*models.TaskInstance
	for _, child := range itask.GraphChildren {
		if s.cfg.FinalCyclePoint != "" &&
			models.ComparePoints(child.Point, s.cfg.FinalCyclePoint) > 0 {
			continue
		}
		childTask := s.Spawn(child.Name, child.Point, itask.FlowNums)
		for i := range childTask.Prerequisites {
			for j := range childTask.Prerequisites[i].Conditions {
				cond := &childTask.Prerequisites[i].Conditions[j]
				if cond.Point == itask.Point && cond.Task == itask.Name && cond.Output == output {
					cond.Satisfied = true
				}
			}
		}
		affected = append(affected, childTask)
	}
	return affected
}

// HoldPoint returns the current hold point ("" when unset).
func (s *Service) HoldPoint() string { return s.holdPoint }

// SetHoldPoint holds every task beyond the given point.
func (s *Service) SetHoldPoint(point string) {
	s.holdPoint = point
}

// ReleaseHoldPoint clears the hold point and the hold set.
func (s *Service) ReleaseHoldPoint() {
	s.holdPoint = ""
	s.tasksToHold = map[string]bool{}
}

// HoldTask adds a point/name pair to the hold set.
func (s *Service) HoldTask(point, name string) {
	s.tasksToHold[s.instanceID(name, point)] = true
	if itask := s.GetTask(point, name); itask != nil {
		itask.IsHeld = true
	}
}

// ReleaseTask removes a point/name pair from the hold set.
func (s *Service) ReleaseTask(point, name string) {
	delete(s.tasksToHold, s.instanceID(name, point))
	if itask := s.GetTask(point, name); itask != nil {
		itask.IsHeld = false
	}
}

// IsHeld reports whether a point/name pair is in the hold set or beyond
// the hold point.
func (s *Service) IsHeld(point, name string) bool {
	if s.tasksToHold[s.instanceID(name, point)] {
		return true
	}
	if s.holdPoint != "" && models.ComparePoints(point, s.holdPoint) > 0 {
		return true
	}
	return false
}

// SetStopPoint and SetStopTask record stop conditions checked by the
// shutdown sequence.
func (s *Service) SetStopPoint(point string) { s.stopPoint = point }
func (s *Service) SetStopTask(task string)   { s.stopTask = task }
func (s *Service) StopPoint() string         { return s.stopPoint }
func (s *Service) StopTask() string          { return s.stopTask }

// HasActiveTasks reports whether any instance is engaged with the job
// runtime.
func (s *Service) HasActiveTasks() bool {
	for _, itask := range s.tasks {
		if itask.IsActive() {
			return true
		}
	}
	return false
}

// Empty reports whether the pool has drained.
func (s *Service) Empty() bool { return len(s.tasks) == 0 }
