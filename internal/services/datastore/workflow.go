// -----------------------------------------------------------------------
// Workflow-level roll-up: status, totals and active-point bounds
// -----------------------------------------------------------------------

package datastore

import (
	"github.com/ternarybob/cursus/internal/models"
	"github.com/ternarybob/cursus/internal/schemas"
	"github.com/ternarybob/cursus/internal/services/config"
)

// updateWorkflow refreshes the workflow record: state totals summed over
// the root family proxies, status and message, window radius and the
// active cycle-point bounds.
func (s *Service) updateWorkflow(reloaded bool) {
	wData := s.data.Workflow
	wDelta := s.buffers.updWorkflow()
	deltaSet := false

	if len(s.updatedStateFamilies) > 0 || s.stateUpdateFollowOn {
		if len(s.updatedStateFamilies) == 0 {
			s.stateUpdateFollowOn = false
		}
		stateCounter := map[string]int32{}
		var isHeldTotal, isQueuedTotal, isRunaheadTotal int32

		rootIDs := map[string]bool{}
		for id, fp := range s.data.FamilyProxies {
			if fp.Name == config.RootFamily {
				rootIDs[id] = true
			}
		}
		for id, fp := range s.buffers.familyProxiesAdded {
			if fp.Name == config.RootFamily {
				rootIDs[id] = true
			}
		}
		for rootID := range rootIDs {
			rootNode := s.data.FamilyProxies[rootID]
			if updated, ok := s.buffers.familyProxiesUpdated[rootID]; ok && updated.State != nil {
				rootNode = updated
			}
			if rootNode == nil {
				continue
			}
			if rootNode.IsHeldTotal != nil {
				isHeldTotal += *rootNode.IsHeldTotal
			}
			if rootNode.IsQueuedTotal != nil {
				isQueuedTotal += *rootNode.IsQueuedTotal
			}
			if rootNode.IsRunaheadTotal != nil {
				isRunaheadTotal += *rootNode.IsRunaheadTotal
			}
			for state, count := range rootNode.StateTotals {
				stateCounter[state] += count
			}
		}
		// Zero counts are dropped: the states-updated cue clears the
		// stored map wholesale before this merges.
		wDelta.States = nil
		wDelta.StateTotals = map[string]int32{}
		for state, count := range stateCounter {
			if count > 0 {
				wDelta.States = append(wDelta.States, state)
				wDelta.StateTotals[state] = count
			}
		}
		wDelta.StatesUpdated = schemas.Bool(true)
		wDelta.IsHeldTotal = schemas.Int32(isHeldTotal)
		wDelta.IsQueuedTotal = schemas.Int32(isQueuedTotal)
		wDelta.IsRunaheadTotal = schemas.Int32(isRunaheadTotal)
		deltaSet = true

		wDelta.LatestStateTasks = map[string]*schemas.StateTasks{}
		for state, queue := range s.latestStateTasks {
			wDelta.LatestStateTasks[state] = &schemas.StateTasks{
				Tasks: append([]string{}, queue...),
			}
		}
	}

	// Status and message, if changed.
	status := s.status.Status()
	statusMsg := s.status.Message()
	if wData.Status != status || wData.StatusMsg != statusMsg {
		wDelta.Status = status
		wDelta.StatusMsg = statusMsg
		deltaSet = true
	}

	if reloaded {
		wDelta.Reloaded = schemas.Bool(true)
	}

	if wData.NEdgeDistance != int32(s.nEdgeDistance) {
		wDelta.NEdgeDistance = int32(s.nEdgeDistance)
		wDelta.GraphWindowChanged = true
		deltaSet = true
	}

	if len(s.allTaskPool) > 0 {
		oldest, newest := "", ""
		for id := range s.allTaskPool {
			tokens, err := models.ParseTokens(id)
			if err != nil {
				continue
			}
			if oldest == "" || models.ComparePoints(tokens.Cycle, oldest) < 0 {
				oldest = tokens.Cycle
			}
			if newest == "" || models.ComparePoints(tokens.Cycle, newest) > 0 {
				newest = tokens.Cycle
			}
		}
		if wData.OldestActiveCyclePoint != oldest {
			wDelta.OldestActiveCyclePoint = oldest
			deltaSet = true
		}
		if wData.NewestActiveCyclePoint != newest {
			wDelta.NewestActiveCyclePoint = newest
			deltaSet = true
		}
	}

	if deltaSet {
		t := updateTime()
		wDelta.ID = s.workflowID
		wDelta.LastUpdated = t
		wDelta.Stamp = stamp(s.workflowID, t)
	} else if s.buffers.workflowUpdated != nil && workflowDeltaEmpty(s.buffers.workflowUpdated) {
		s.buffers.workflowUpdated = nil
	}
}

// workflowDeltaEmpty reports whether a buffered workflow update carries
// nothing worth publishing.
func workflowDeltaEmpty(w *schemas.Workflow) bool {
	return w.Stamp == "" &&
		len(w.TaskProxies) == 0 &&
		len(w.FamilyProxies) == 0 &&
		len(w.Edges) == 0 &&
		len(w.Jobs) == 0 &&
		w.Status == "" &&
		w.StatusMsg == "" &&
		w.StatesUpdated == nil &&
		w.Broadcasts == ""
}

// DeltaWorkflowPorts updates the comms ports on the workflow record.
func (s *Service) DeltaWorkflowPorts(port, pubPort int) {
	t := updateTime()
	wDelta := s.buffers.updWorkflow()
	wDelta.ID = s.workflowID
	wDelta.LastUpdated = t
	wDelta.Stamp = stamp(s.workflowID, t)
	wDelta.Port = int32(port)
	wDelta.PubPort = int32(pubPort)
	s.updatesPending = true
}
