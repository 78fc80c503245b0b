// -----------------------------------------------------------------------
// Window pruning: flagged nodes, their paths, and empty families
// -----------------------------------------------------------------------

package datastore

// pruneDataStore removes flagged nodes and edges not in the set of
// active paths, then ascends the family tree pruning empty families.
func (s *Service) pruneDataStore() {
	s.familyPrunedIDs = map[string]bool{}

	if len(s.pruneFlaggedNodes) == 0 {
		return
	}

	// Keep all nodes in the path of active tasks.
	s.allNWindowNodes = map[string]bool{}
	for activeID := range s.allTaskPool {
		for nid := range s.nWindowNodes[activeID] {
			s.allNWindowNodes[nid] = true
		}
	}
	// Gather all nodes in the paths of tasks flagged for pruning.
	outPathsNodes := map[string]bool{}
	for nid := range s.pruneFlaggedNodes {
		outPathsNodes[nid] = true
		for wid := range s.nWindowNodes[nid] {
			outPathsNodes[wid] = true
		}
	}
	// Prune only nodes not in the paths of active nodes nor active
	// themselves (runahead pool nodes included).
	nodeIDs := map[string]bool{}
	for nid := range outPathsNodes {
		if !s.allNWindowNodes[nid] && !s.allTaskPool[nid] {
			nodeIDs[nid] = true
		}
	}
	// Absolute triggers may be present in the task pool, so recheck.
	for nid := range s.pruneFlaggedNodes {
		if !s.allTaskPool[nid] {
			delete(s.pruneFlaggedNodes, nid)
		}
	}

	parentIDs := map[string]bool{}
	for tpID := range nodeIDs {
		delete(s.nWindowNodes, tpID)
		node := s.storeTaskProxy(tpID)
		if node == nil {
			delete(nodeIDs, tpID)
			continue
		}
		for _, eID := range node.Edges {
			delete(s.nWindowEdges, eID)
		}
		delete(s.nWindowWalks, tpID)
		delete(s.nWindowCompleted, tpID)
		for sig, refs := range s.xtriggerTasks {
			kept := refs[:0]
			for _, ref := range refs {
				if ref.taskProxyID != tpID {
					kept = append(kept, ref)
				}
			}
			if len(kept) == 0 {
				delete(s.xtriggerTasks, sig)
			} else {
				s.xtriggerTasks[sig] = kept
			}
		}

		s.buffers.taskProxiesPruned = append(s.buffers.taskProxiesPruned, tpID)
		s.buffers.jobsPruned = append(s.buffers.jobsPruned, node.Jobs...)
		s.buffers.edgesPruned = append(s.buffers.edgesPruned, node.Edges...)
		parentIDs[node.FirstParent] = true
	}

	checkedIDs := map[string]bool{}
	for len(parentIDs) > 0 {
		for fpID := range parentIDs {
			s.familyAscentPointPrune(fpID, nodeIDs, parentIDs, checkedIDs, s.familyPrunedIDs)
			break
		}
	}
	for fpID := range s.familyPrunedIDs {
		s.buffers.familyProxiesPruned = append(s.buffers.familyProxiesPruned, fpID)
	}
	if len(nodeIDs) > 0 {
		for nid := range nodeIDs {
			s.prunedTaskProxies[nid] = true
		}
		s.updatesPending = true
		s.updatesPendingFollowOn = true
	}
}

// familyAscentPointPrune maps child families to the bottom and works
// back up, pruning families whose children are all out of scope.
func (s *Service) familyAscentPointPrune(
	fpID string,
	nodeIDs, parentIDs, checkedIDs, pruneIDs map[string]bool,
) {
	if famNode, ok := s.data.FamilyProxies[fpID]; ok {
		for _, childID := range famNode.ChildFamilies {
			if !checkedIDs[childID] {
				s.familyAscentPointPrune(childID, nodeIDs, parentIDs, checkedIDs, pruneIDs)
			}
		}
		childTasks := map[string]bool{}
		for _, id := range famNode.ChildTasks {
			childTasks[id] = true
		}
		childFamilies := map[string]bool{}
		for _, id := range famNode.ChildFamilies {
			childFamilies[id] = true
		}
		// Include children buffered this tick.
		if fpUpdated, ok := s.buffers.familyProxiesUpdated[fpID]; ok {
			for _, id := range fpUpdated.ChildTasks {
				childTasks[id] = true
			}
			for _, id := range fpUpdated.ChildFamilies {
				childFamilies[id] = true
			}
		}
		remainingTask := false
		retainedTask := false
		for id := range childTasks {
			if !nodeIDs[id] {
				remainingTask = true
			} else {
				retainedTask = true
			}
		}
		remainingFam := false
		retainedFam := false
		for id := range childFamilies {
			if !pruneIDs[id] {
				remainingFam = true
			} else {
				retainedFam = true
			}
		}
		if remainingTask || remainingFam {
			// Still-active family losing children needs a roll-up.
			if retainedTask || retainedFam {
				s.stateUpdateFamilies[fpID] = true
			}
		} else {
			if famNode.FirstParent != "" {
				parentIDs[famNode.FirstParent] = true
			}
			// Don't process updated deltas of a pruned node.
			delete(s.buffers.familyProxiesUpdated, fpID)
			pruneIDs[fpID] = true
		}
	}
	checkedIDs[fpID] = true
	delete(parentIDs, fpID)
}

// prunePrunedUpdatedNodes drops buffered updates for nodes that will be
// pruned in the same batch, so subscribers never see them.
func (s *Service) prunePrunedUpdatedNodes() {
	for tpID := range s.prunedTaskProxies {
		updateNode, ok := s.buffers.taskProxiesUpdated[tpID]
		if !ok {
			continue
		}
		node := s.storeTaskProxy(tpID)
		if node == nil {
			continue
		}
		delete(s.buffers.taskProxiesUpdated, tpID)
		for _, jID := range append(append([]string{}, node.Jobs...), updateNode.Jobs...) {
			delete(s.buffers.jobsUpdated, jID)
		}
		for _, eID := range updateNode.Edges {
			delete(s.nWindowEdges, eID)
			s.buffers.edgesPruned = append(s.buffers.edgesPruned, eID)
		}
	}
	s.prunedTaskProxies = map[string]bool{}
}
