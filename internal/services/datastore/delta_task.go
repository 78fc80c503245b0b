// -----------------------------------------------------------------------
// Task proxy field deltas
//
// Each operation buffers a partial update on the named proxy and, where
// the change affects family aggregates, flags the first parent for
// roll-up on the next update tick.
// -----------------------------------------------------------------------

package datastore

import (
	"github.com/ternarybob/cursus/internal/models"
	"github.com/ternarybob/cursus/internal/schemas"
)

// taskProxyDelta fetches the store node and update record for a live
// instance, or nil when the proxy is not materialized.
func (s *Service) taskProxyDelta(itask *models.TaskInstance) (*schemas.TaskProxy, *schemas.TaskProxy) {
	tpID := itask.Tokens.ID()
	node := s.storeTaskProxy(tpID)
	if node == nil {
		return nil, nil
	}
	delta := s.buffers.updTaskProxy(tpID)
	delta.Stamp = stamp(tpID, updateTime())
	return node, delta
}

// DeltaTaskState buffers a state change and rolls the family up.
func (s *Service) DeltaTaskState(itask *models.TaskInstance) {
	node, delta := s.taskProxyDelta(itask)
	if node == nil {
		return
	}
	delta.State = schemas.String(itask.State)
	s.pushLatestStateTask(itask.State, itask.Tokens.RelativeID())
	s.stateUpdateFamilies[node.FirstParent] = true
	s.updatesPending = true
}

// DeltaTaskHeld buffers a hold flag change.
func (s *Service) DeltaTaskHeld(name, point string, held bool) {
	tpID := s.id.Duplicate(point, name, "").ID()
	node := s.storeTaskProxy(tpID)
	if node == nil {
		return
	}
	delta := s.buffers.updTaskProxy(tpID)
	delta.Stamp = stamp(tpID, updateTime())
	delta.IsHeld = schemas.Bool(held)
	s.stateUpdateFamilies[node.FirstParent] = true
	s.updatesPending = true
}

// DeltaTaskQueued buffers a queued flag change.
func (s *Service) DeltaTaskQueued(itask *models.TaskInstance) {
	node, delta := s.taskProxyDelta(itask)
	if node == nil {
		return
	}
	delta.IsQueued = schemas.Bool(itask.IsQueued)
	s.stateUpdateFamilies[node.FirstParent] = true
	s.updatesPending = true
}

// DeltaTaskRunahead buffers a runahead flag change.
func (s *Service) DeltaTaskRunahead(itask *models.TaskInstance) {
	node, delta := s.taskProxyDelta(itask)
	if node == nil {
		return
	}
	delta.IsRunahead = schemas.Bool(itask.IsRunahead)
	s.stateUpdateFamilies[node.FirstParent] = true
	s.updatesPending = true
}

// DeltaTaskFlowNums buffers a flow-number change.
func (s *Service) DeltaTaskFlowNums(itask *models.TaskInstance) {
	node, delta := s.taskProxyDelta(itask)
	if node == nil {
		return
	}
	delta.FlowNums = models.FormatFlowNums(itask.FlowNums)
	s.updatesPending = true
}

// DeltaTaskOutput buffers one output's satisfaction change.
func (s *Service) DeltaTaskOutput(itask *models.TaskInstance, label string) {
	node, delta := s.taskProxyDelta(itask)
	if node == nil {
		return
	}
	output, ok := itask.Outputs[label]
	if !ok {
		return
	}
	if delta.Outputs == nil {
		delta.Outputs = map[string]*schemas.Output{}
	}
	delta.Outputs[label] = &schemas.Output{
		Label:     label,
		Message:   output.Message,
		Satisfied: output.Satisfied,
		Time:      updateTime(),
	}
	s.updatesPending = true
}

// DeltaTaskOutputs rewrites every output of the task.
func (s *Service) DeltaTaskOutputs(itask *models.TaskInstance) {
	node, delta := s.taskProxyDelta(itask)
	if node == nil {
		return
	}
	t := updateTime()
	delta.Outputs = map[string]*schemas.Output{}
	for label, output := range itask.Outputs {
		delta.Outputs[label] = &schemas.Output{
			Label:     label,
			Message:   output.Message,
			Satisfied: output.Satisfied,
			Time:      t,
		}
	}
	s.updatesPending = true
}

// DeltaTaskPrerequisite rewrites the structured prerequisites. The field
// is cleared before merge, so the full list is emitted.
func (s *Service) DeltaTaskPrerequisite(itask *models.TaskInstance) {
	node, delta := s.taskProxyDelta(itask)
	if node == nil {
		return
	}
	delta.Prerequisites = nil
	for _, prereq := range itask.Prerequisites {
		delta.Prerequisites = append(delta.Prerequisites, prereqToSchema(s.id, prereq))
	}
	if delta.Prerequisites == nil {
		delta.Prerequisites = []*schemas.Prerequisite{}
	}
	s.updatesPending = true
}

// DeltaTaskExtTrigger buffers an external-trigger satisfaction change.
func (s *Service) DeltaTaskExtTrigger(itask *models.TaskInstance, label string) {
	node, delta := s.taskProxyDelta(itask)
	if node == nil {
		return
	}
	trig, ok := itask.ExtTriggers[label]
	if !ok {
		return
	}
	if delta.ExternalTriggers == nil {
		delta.ExternalTriggers = map[string]*schemas.Trigger{}
	}
	delta.ExternalTriggers[label] = &schemas.Trigger{
		ID:        trig.Message,
		Label:     label,
		Message:   trig.Message,
		Satisfied: trig.Satisfied,
		Time:      updateTime(),
	}
	s.updatesPending = true
}

// DeltaTaskXtrigger buffers an xtrigger satisfaction change for every
// proxy registered under the signature.
func (s *Service) DeltaTaskXtrigger(sig string, satisfied bool) {
	t := updateTime()
	for _, ref := range s.xtriggerTasks[sig] {
		delta := s.buffers.updTaskProxy(ref.taskProxyID)
		delta.Stamp = stamp(ref.taskProxyID, t)
		if delta.Xtriggers == nil {
			delta.Xtriggers = map[string]*schemas.Trigger{}
		}
		delta.Xtriggers[sig] = &schemas.Trigger{
			ID:        sig,
			Label:     ref.label,
			Satisfied: satisfied,
			Time:      t,
		}
		s.updatesPending = true
	}
}

// DeltaFromTaskProxy refreshes the whole proxy record from the live
// instance (manual trigger, flow-number change, reload).
func (s *Service) DeltaFromTaskProxy(itask *models.TaskInstance) {
	node, delta := s.taskProxyDelta(itask)
	if node == nil {
		return
	}
	s.processInternalTaskProxy(itask, delta)
	s.stateUpdateFamilies[node.FirstParent] = true
	s.updatesPending = true
}
