// -----------------------------------------------------------------------
// Family proxy generation and recursive state roll-up
// -----------------------------------------------------------------------

package datastore

import (
	"github.com/ternarybob/cursus/internal/models"
	"github.com/ternarybob/cursus/internal/schemas"
)

// generateGhostFamily ensures the family proxy exists (recursively up to
// root) and appends the calling child task or family to it. Idempotent.
func (s *Service) generateGhostFamily(fpID, childFam, childTask string) {
	t := updateTime()
	var fpParent *schemas.FamilyProxy

	if _, ok := s.data.FamilyProxies[fpID]; ok {
		fpParent = s.buffers.updFamilyProxy(fpID)
	} else if fp, ok := s.buffers.familyProxiesAdded[fpID]; ok {
		fpParent = fp
	} else {
		tokens, err := models.ParseTokens(fpID)
		if err != nil {
			return
		}
		point := tokens.Cycle
		name := tokens.Task
		famID := s.definitionID(name)
		fam, ok := s.data.Families[famID]
		if !ok {
			fam, ok = s.buffers.familiesAdded[famID]
			if !ok {
				return
			}
		}
		fpDelta := &schemas.FamilyProxy{
			Stamp:      stamp(fpID, t),
			ID:         fpID,
			CyclePoint: point,
			Name:       fam.Name,
			Family:     fam.ID,
			Depth:      fam.Depth,
		}
		for _, aName := range s.cfg.FirstParentAncestors(name) {
			fpDelta.Ancestors = append(
				fpDelta.Ancestors, s.id.Duplicate(point, aName, "").ID())
		}
		if len(fpDelta.Ancestors) > 0 {
			fpDelta.FirstParent = fpDelta.Ancestors[0]
		}
		fpDelta.Runtime = s.runtimeWithBroadcasts(point, fpDelta.Ancestors, name)

		s.buffers.familyProxiesAdded[fpID] = fpDelta
		fpParent = fpDelta
		fDelta := s.buffers.familiesUpdated[famID]
		if fDelta == nil {
			fDelta = &schemas.Family{ID: famID}
			s.buffers.familiesUpdated[famID] = fDelta
		}
		fDelta.Stamp = stamp(famID, t)
		fDelta.Proxies = append(fDelta.Proxies, fpID)
		s.buffers.updWorkflow().FamilyProxies = append(
			s.buffers.updWorkflow().FamilyProxies, fpID)
		if fpDelta.FirstParent != "" {
			s.generateGhostFamily(fpDelta.FirstParent, fpID, "")
		}
	}

	if childFam == "" {
		if childTask != "" {
			fpParent.ChildTasks = append(fpParent.ChildTasks, childTask)
		}
		return
	}
	for _, existing := range fpParent.ChildFamilies {
		if existing == childFam {
			return
		}
	}
	fpParent.ChildFamilies = append(fpParent.ChildFamilies, childFam)
}

// updateFamilyProxies rolls up state and summary over the flagged
// families and their ancestors. Every family is checked at most once.
func (s *Service) updateFamilyProxies() {
	s.updatedStateFamilies = map[string]bool{}
	for len(s.stateUpdateFamilies) > 0 {
		for fpID := range s.stateUpdateFamilies {
			s.familyAscentPointUpdate(fpID)
			break
		}
	}
	if len(s.updatedStateFamilies) > 0 {
		s.stateUpdateFollowOn = true
	}
}

// familyAscentPointUpdate updates one family from its children, leaves
// first, then flags its first parent.
func (s *Service) familyAscentPointUpdate(fpID string) {
	famNode := s.storeFamilyProxy(fpID)
	if famNode == nil {
		// Node already removed; event-driven updates will rebuild it.
		if s.stateUpdateFamilies[fpID] {
			s.updatedStateFamilies[fpID] = true
			delete(s.stateUpdateFamilies, fpID)
		}
		return
	}
	for _, childFamID := range famNode.ChildFamilies {
		if !s.updatedStateFamilies[childFamID] {
			s.familyAscentPointUpdate(childFamID)
		}
	}
	if !s.stateUpdateFamilies[fpID] {
		return
	}

	stateCounter := map[string]int32{}
	var isHeldTotal, isQueuedTotal, isRunaheadTotal int32
	graphDepth := int32(s.nEdgeDistance)

	childNode := func(id string) *schemas.FamilyProxy {
		if fp, ok := s.buffers.familyProxiesUpdated[id]; ok {
			return fp
		}
		if fp, ok := s.data.FamilyProxies[id]; ok {
			return fp
		}
		return nil
	}
	for _, childID := range famNode.ChildFamilies {
		child := childNode(childID)
		if child == nil {
			continue
		}
		if child.IsHeldTotal != nil {
			isHeldTotal += *child.IsHeldTotal
		}
		if child.IsQueuedTotal != nil {
			isQueuedTotal += *child.IsQueuedTotal
		}
		if child.IsRunaheadTotal != nil {
			isRunaheadTotal += *child.IsRunaheadTotal
		}
		// Child totals are zero-padded across every known state; only
		// occurring states may enter the counter or the group state is
		// extracted from phantom entries.
		for state, count := range child.StateTotals {
			if count > 0 {
				stateCounter[state] += count
			}
		}
		if child.GraphDepth != nil && *child.GraphDepth < graphDepth {
			graphDepth = *child.GraphDepth
		}
	}

	// Child task states: buffered updates take precedence per field.
	for _, tpID := range famNode.ChildTasks {
		if len(s.allNWindowNodes) > 0 && !s.allNWindowNodes[tpID] {
			continue
		}
		tpDelta := s.buffers.taskProxiesUpdated[tpID]
		tpNode := s.storeTaskProxy(tpID)
		if tpNode == nil && tpDelta == nil {
			continue
		}

		state := fieldString(tpDelta, tpNode, func(tp *schemas.TaskProxy) *string { return tp.State })
		if state != "" {
			stateCounter[state]++
		}
		if fieldBool(tpDelta, tpNode, func(tp *schemas.TaskProxy) *bool { return tp.IsHeld }) {
			isHeldTotal++
		}
		if fieldBool(tpDelta, tpNode, func(tp *schemas.TaskProxy) *bool { return tp.IsQueued }) {
			isQueuedTotal++
		}
		if fieldBool(tpDelta, tpNode, func(tp *schemas.TaskProxy) *bool { return tp.IsRunahead }) {
			isRunaheadTotal++
		}
		if depth := fieldInt32(tpDelta, tpNode, func(tp *schemas.TaskProxy) *int32 { return tp.GraphDepth }); depth != nil && *depth < graphDepth {
			graphDepth = *depth
		}
	}

	t := updateTime()
	states := make([]string, 0, len(stateCounter))
	for state := range stateCounter {
		states = append(states, state)
	}
	fpDelta := &schemas.FamilyProxy{
		ID:              fpID,
		Stamp:           stamp(fpID, t),
		State:           schemas.String(models.ExtractGroupState(states, false)),
		IsHeld:          schemas.Bool(isHeldTotal > 0),
		IsHeldTotal:     schemas.Int32(isHeldTotal),
		IsQueued:        schemas.Bool(isQueuedTotal > 0),
		IsQueuedTotal:   schemas.Int32(isQueuedTotal),
		IsRunahead:      schemas.Bool(isRunaheadTotal > 0),
		IsRunaheadTotal: schemas.Int32(isRunaheadTotal),
		GraphDepth:      schemas.Int32(graphDepth),
		States:          states,
		StateTotals:     map[string]int32{},
	}
	// Every known state is present so pruned counts are cleaned up.
	for _, state := range models.TaskStatesOrdered {
		fpDelta.StateTotals[state] = stateCounter[state]
	}
	schemas.MergeFamilyProxy(s.buffers.updFamilyProxy(fpID), fpDelta)

	s.updatedStateFamilies[fpID] = true
	if famNode.FirstParent != "" {
		s.stateUpdateFamilies[famNode.FirstParent] = true
	}
	delete(s.stateUpdateFamilies, fpID)
}

// Field accessors honouring buffered-over-stored precedence.

func fieldString(delta, node *schemas.TaskProxy, get func(*schemas.TaskProxy) *string) string {
	if delta != nil {
		if v := get(delta); v != nil {
			return *v
		}
	}
	if node != nil {
		if v := get(node); v != nil {
			return *v
		}
	}
	return ""
}

func fieldBool(delta, node *schemas.TaskProxy, get func(*schemas.TaskProxy) *bool) bool {
	if delta != nil {
		if v := get(delta); v != nil {
			return *v
		}
	}
	if node != nil {
		if v := get(node); v != nil {
			return *v
		}
	}
	return false
}

func fieldInt32(delta, node *schemas.TaskProxy, get func(*schemas.TaskProxy) *int32) *int32 {
	if delta != nil {
		if v := get(delta); v != nil {
			return v
		}
	}
	if node != nil {
		if v := get(node); v != nil {
			return v
		}
	}
	return nil
}
