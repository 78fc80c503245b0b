// -----------------------------------------------------------------------
// N-distance graph window walker
//
// Maintains one walk record per active task. Path tags are strings of
// 'c' (child edge) and 'p' (parent edge); tag length is the edge
// distance from the origin. Walks are filled from pre-existing walks
// where possible and explored outward otherwise.
// -----------------------------------------------------------------------

package datastore

import (
	"github.com/ternarybob/cursus/internal/models"
	"github.com/ternarybob/cursus/internal/schemas"
)

const (
	childTag  = "c"
	parentTag = "p"
)

// AddPoolNode registers a task instance as active.
func (s *Service) AddPoolNode(name, point string) {
	id := s.id.Duplicate(point, name, "").ID()
	s.allTaskPool[id] = true
	s.updateWindowDepths = true
}

// RemovePoolNode drops an id from the active set and flags isolates and
// end-of-branch nodes for pruning.
func (s *Service) RemovePoolNode(name, point string) {
	id := s.id.Duplicate(point, name, "").ID()
	delete(s.allTaskPool, id)
	if trigger, ok := s.pruneTriggerNodes[id]; ok && trigger[id] {
		// Manually-triggered origins prune their own paths on removal.
		for nid := range trigger {
			s.pruneFlaggedNodes[nid] = true
		}
		delete(s.pruneTriggerNodes, id)
	} else if nodes, ok := s.nWindowNodes[id]; ok && disjoint(nodes, s.allTaskPool) {
		s.pruneFlaggedNodes[id] = true
	} else if walk, ok := s.nWindowWalks[id]; ok {
		for nid := range walk.walkIDs {
			s.pruneFlaggedNodes[nid] = true
		}
	}
	s.updatesPending = true
}

func disjoint(a, b map[string]bool) bool {
	for k := range a {
		if b[k] {
			return false
		}
	}
	return true
}

// IncrementGraphWindow generates the graph window about an active task
// proxy out to the n-edge distance.
func (s *Service) IncrementGraphWindow(
	source models.Tokens,
	point string,
	flowNums []int64,
	isManualSubmit bool,
	itask *models.TaskInstance,
) {
	activeID := source.ID()
	taskdefs := s.cfg.TaskDefs
	finalPoint := s.cfg.FinalCyclePoint

	// A completed walk of a formerly non-active node may reference
	// pruned nodes: redo it.
	if _, ok := s.nWindowWalks[activeID]; !ok || s.nWindowCompleted[activeID] {
		s.nWindowWalks[activeID] = newGraphWalk(activeID, s.nEdgeDistance)
		delete(s.nWindowCompleted, activeID)
	}
	activeWalk := s.nWindowWalks[activeID]
	activeLocs := activeWalk.locations
	if _, ok := taskdefs[source.Task]; !ok {
		activeWalk.orphans[activeID] = true
	}

	s.nWindowNodes[activeID] = map[string]bool{}

	s.generateGhostTask(source, point, flowNums, false, itask, 0, true)

	// Reuse phase: fill locations from the walks of nodes already found,
	// extending each known tag by one edge.
	var workingLocs []string
	nDepth := 2
	if s.nEdgeDistance > 1 {
		if _, ok := activeLocs[childTag]; ok {
			workingLocs = append(workingLocs, "cc", "cp")
		}
		if _, ok := activeLocs[parentTag]; ok {
			workingLocs = append(workingLocs, "pp", "pc")
		}
	}
	for len(workingLocs) > 0 {
		for _, wLoc := range workingLocs {
			baseLoc := wLoc[:len(wLoc)-1]
			edgeTag := wLoc[len(wLoc)-1:]
			baseIDs, ok := activeLocs[baseLoc]
			if !ok {
				continue
			}
			locDone := true
			for locID := range baseIDs {
				if _, ok := s.nWindowWalks[locID]; !ok {
					locDone = false
					break
				}
			}
			wSet := map[string]bool{}
			for locID := range baseIDs {
				walk, ok := s.nWindowWalks[locID]
				if !ok {
					continue
				}
				for nid := range walk.locations[edgeTag] {
					wSet[nid] = true
				}
			}
			for nid := range activeWalk.walkIDs {
				delete(wSet, nid)
			}
			if len(wSet) > 0 {
				if activeLocs[wLoc] == nil {
					activeLocs[wLoc] = map[string]bool{}
				}
				allPresent := true
				for nid := range wSet {
					activeLocs[wLoc][nid] = true
					activeWalk.walkIDs[nid] = true
					if activeWalk.depths[nDepth] != nil {
						activeWalk.depths[nDepth][nid] = true
					}
					if !s.allNWindowNodes[nid] {
						allPresent = false
					}
				}
				// Pruned children/parents need regeneration, so only a
				// fully present set marks the base as walked.
				if locDone && allPresent {
					activeWalk.doneLocs[baseLoc] = true
					for nid := range baseIDs {
						activeWalk.doneIDs[nid] = true
					}
				}
			}
		}
		var next []string
		for _, loc := range workingLocs {
			if _, ok := activeLocs[loc]; ok && len(loc) < s.nEdgeDistance {
				next = append(next, loc+childTag, loc+parentTag)
			}
		}
		workingLocs = next
		nDepth++
	}

	// Exploration phase: walk every location not yet done.
	for {
		var locations []string
		for loc := range activeLocs {
			if len(loc) < s.nEdgeDistance && !activeWalk.doneLocs[loc] {
				locations = append(locations, loc)
			}
		}
		// Origin first, or isolates.
		if len(activeWalk.doneIDs) == 0 && len(locations) == 0 &&
			!activeWalk.orphans[activeID] && s.nEdgeDistance != 0 {
			locations = []string{""}
		}
		if len(locations) == 0 {
			break
		}
		for _, location := range locations {
			var locNodes map[string]bool
			if location == "" {
				locNodes = map[string]bool{activeID: true}
			} else {
				locNodes = activeLocs[location]
				activeWalk.doneLocs[location] = true
			}
			cLoc := location + childTag
			pLoc := location + parentTag
			cIDs := map[string]bool{}
			pIDs := map[string]bool{}
			nodeDepth := len(location) + 1

			for nodeID := range locNodes {
				if activeWalk.doneIDs[nodeID] {
					continue
				}
				activeWalk.doneIDs[nodeID] = true
				nodeTokens, err := models.ParseTokens(nodeID)
				if err != nil {
					continue
				}
				td, ok := taskdefs[nodeTokens.Task]
				if !ok {
					activeWalk.orphans[nodeID] = true
					continue
				}

				// Use complete children/parents from other walks; pruned
				// nodes force regeneration.
				cDone := false
				pDone := false
				if walk, ok := s.nWindowWalks[nodeID]; ok && nodeID != activeID {
					if kids, ok := walk.locations[childTag]; ok {
						complete := true
						for nid := range kids {
							if !s.allNWindowNodes[nid] {
								complete = false
								break
							}
						}
						if complete {
							for nid := range kids {
								cIDs[nid] = true
							}
							cDone = true
						}
					}
					if parents, ok := walk.locations[parentTag]; ok {
						complete := true
						for nid := range parents {
							if !s.allNWindowNodes[nid] {
								complete = false
								break
							}
						}
						if complete {
							for nid := range parents {
								pIDs[nid] = true
							}
							pDone = true
						}
					}
					if cDone && pDone {
						continue
					}
				}

				ncIDs := map[string]bool{}
				if !cDone {
					var children []models.GraphNeighbor
					if itask != nil && nodeDepth == 1 && nodeID == activeID {
						children = itask.GraphChildren
					} else {
						children = s.cfg.GraphChildren(td, nodeTokens.Cycle)
					}
					for _, child := range children {
						if finalPoint != "" && models.ComparePoints(child.Point, finalPoint) > 0 {
							continue
						}
						childTokens := s.id.Duplicate(child.Point, child.Name, "")
						s.generateGhostTask(childTokens, child.Point, flowNums, false, nil, nodeDepth, false)
						s.generateEdge(nodeTokens, childTokens, activeID)
						ncIDs[childTokens.ID()] = true
					}
				}

				npIDs := map[string]bool{}
				if !pDone {
					for _, parent := range s.cfg.GraphParents(td, nodeTokens.Cycle) {
						if finalPoint != "" && models.ComparePoints(parent.Point, finalPoint) > 0 {
							continue
						}
						parentTokens := s.id.Duplicate(parent.Point, parent.Name, "")
						s.generateGhostTask(parentTokens, parent.Point, flowNums, true, nil, nodeDepth, false)
						// Reverse direction for parents.
						s.generateEdge(parentTokens, nodeTokens, activeID)
						npIDs[parentTokens.ID()] = true
					}
				}

				// Register the node's own walk for future reuse.
				walk, ok := s.nWindowWalks[nodeID]
				if !ok {
					walk = newGraphWalk(nodeID, s.nEdgeDistance)
					s.nWindowWalks[nodeID] = walk
				}
				if len(ncIDs) > 0 {
					if walk.locations[childTag] == nil {
						walk.locations[childTag] = map[string]bool{}
					}
					for nid := range ncIDs {
						walk.locations[childTag][nid] = true
						walk.walkIDs[nid] = true
						if walk.depths[1] != nil {
							walk.depths[1][nid] = true
						}
						cIDs[nid] = true
					}
				}
				if len(npIDs) > 0 {
					if walk.locations[parentTag] == nil {
						walk.locations[parentTag] = map[string]bool{}
					}
					for nid := range npIDs {
						walk.locations[parentTag][nid] = true
						walk.walkIDs[nid] = true
						if walk.depths[1] != nil {
							walk.depths[1][nid] = true
						}
						pIDs[nid] = true
					}
				}
			}

			// Associate discoveries with the active walk, excluding ids
			// already on it (cycle avoidance).
			for nid := range activeWalk.walkIDs {
				delete(cIDs, nid)
				delete(pIDs, nid)
			}
			if len(cIDs) > 0 {
				if activeLocs[cLoc] == nil {
					activeLocs[cLoc] = map[string]bool{}
				}
				for nid := range cIDs {
					activeLocs[cLoc][nid] = true
					activeWalk.walkIDs[nid] = true
					if activeWalk.depths[nodeDepth] != nil {
						activeWalk.depths[nodeDepth][nid] = true
					}
				}
			}
			if len(pIDs) > 0 {
				if activeLocs[pLoc] == nil {
					activeLocs[pLoc] = map[string]bool{}
				}
				for nid := range pIDs {
					activeLocs[pLoc][nid] = true
					activeWalk.walkIDs[nid] = true
					if activeWalk.depths[nodeDepth] != nil {
						activeWalk.depths[nodeDepth][nid] = true
					}
				}
			}
		}
	}

	s.nWindowCompleted[activeID] = true
	for nid := range activeWalk.walkIDs {
		s.nWindowNodes[activeID][nid] = true
	}

	// Boundary nodes: deepest child-only locations. Their activation
	// releases this walk's nodes for pruning.
	boundaryNodes := map[string]bool{}
	maxLevel := 0
	for loc := range activeLocs {
		if !containsTag(loc, parentTag) && len(loc) > maxLevel {
			maxLevel = len(loc)
		}
	}
	for loc, ids := range activeLocs {
		if !containsTag(loc, parentTag) && len(loc) >= maxLevel && maxLevel > 0 {
			for nid := range ids {
				boundaryNodes[nid] = true
			}
		}
	}
	if len(boundaryNodes) == 0 && maxLevel == 0 {
		// Self-reference or isolate.
		boundaryNodes[activeID] = true
	}
	for tpID := range boundaryNodes {
		trigger, ok := s.pruneTriggerNodes[tpID]
		if !ok {
			trigger = map[string]bool{}
			s.pruneTriggerNodes[tpID] = trigger
		}
		for nid := range activeWalk.walkIDs {
			trigger[nid] = true
		}
		delete(trigger, tpID)
	}
	if isManualSubmit {
		if s.pruneTriggerNodes[activeID] == nil {
			s.pruneTriggerNodes[activeID] = map[string]bool{}
		}
		s.pruneTriggerNodes[activeID][activeID] = true
	}
	// Orphan branches: the union result is intentionally discarded, so
	// orphans alone produce no prune effect.

	// An active node that is another walk's boundary flags that walk's
	// paths for pruning.
	if trigger, ok := s.pruneTriggerNodes[activeID]; ok {
		for nid := range trigger {
			s.pruneFlaggedNodes[nid] = true
		}
		delete(s.pruneTriggerNodes, activeID)
	}
}

func containsTag(loc, tag string) bool {
	for i := 0; i < len(loc); i++ {
		if string(loc[i]) == tag {
			return true
		}
	}
	return false
}

// generateEdge constructs the edge between a parent and child proxy and
// registers it on both endpoints and the workflow record.
func (s *Service) generateEdge(parentTokens, childTokens models.Tokens, activeID string) {
	eID := s.id.Edge(parentTokens, childTokens)
	if s.nWindowEdges[eID] {
		return
	}
	if _, ok := s.data.Edges[eID]; ok {
		s.nWindowEdges[eID] = true
		return
	}
	if _, ok := s.buffers.edgesAdded[eID]; ok {
		return
	}
	t := updateTime()
	s.buffers.edgesAdded[eID] = &schemas.Edge{
		ID:     eID,
		Stamp:  stamp(eID, t),
		Source: parentTokens.ID(),
		Target: childTokens.ID(),
	}
	s.buffers.updTaskProxy(childTokens.ID()).Edges = append(
		s.buffers.updTaskProxy(childTokens.ID()).Edges, eID)
	s.buffers.updTaskProxy(parentTokens.ID()).Edges = append(
		s.buffers.updTaskProxy(parentTokens.ID()).Edges, eID)
	s.buffers.updWorkflow().Edges = append(s.buffers.updWorkflow().Edges, eID)
	s.nWindowEdges[eID] = true
	s.updatesPending = true
}

// windowResizeRewalk recreates the n-window after a radius change:
// capture the old node set, clear the walks, rewalk every active task
// and flag the difference for pruning.
func (s *Service) windowResizeRewalk() {
	if len(s.allNWindowNodes) == 0 {
		for activeID := range s.allTaskPool {
			for nid := range s.nWindowNodes[activeID] {
				s.allNWindowNodes[nid] = true
			}
		}
	}

	s.pruneFlaggedNodes = map[string]bool{}
	s.nWindowWalks = map[string]*graphWalk{}
	s.nWindowCompleted = map[string]bool{}
	for tpID := range s.allTaskPool {
		tokens, err := models.ParseTokens(tpID)
		if err != nil {
			continue
		}
		var flowNums []int64
		if tp := s.storeTaskProxy(tpID); tp != nil {
			flowNums, _ = models.ParseFlowNums(tp.FlowNums)
		}
		s.IncrementGraphWindow(tokens, tokens.Cycle, flowNums, false, nil)
	}

	newNodes := map[string]bool{}
	for activeID := range s.allTaskPool {
		for nid := range s.nWindowNodes[activeID] {
			newNodes[nid] = true
		}
	}
	for nid := range s.allNWindowNodes {
		if !newNodes[nid] {
			s.pruneFlaggedNodes[nid] = true
		}
	}
	s.updateWindowDepths = true
}

// windowDepthFinder recomputes minimum graph depths across all active
// walks, emitting deltas only for nodes whose depth changed.
func (s *Service) windowDepthFinder() {
	newDepths := map[int]map[string]bool{0: {}}
	for id := range s.allTaskPool {
		newDepths[0][id] = true
	}
	found := map[string]bool{}
	for id := range s.allTaskPool {
		found[id] = true
	}
	for depth := 1; depth <= s.nEdgeDistance; depth++ {
		newDepths[depth] = map[string]bool{}
		for activeID := range s.allTaskPool {
			walk, ok := s.nWindowWalks[activeID]
			if !ok {
				continue
			}
			for nid := range walk.depths[depth] {
				if !found[nid] {
					newDepths[depth][nid] = true
				}
			}
		}
		for nid := range newDepths[depth] {
			found[nid] = true
		}
	}

	t := updateTime()
	for depth, nodeSet := range newDepths {
		old := s.nWindowDepths[depth]
		for tpID := range nodeSet {
			if old != nil && old[tpID] {
				continue
			}
			s.updatesPending = true
			tpDelta := s.buffers.updTaskProxy(tpID)
			tpDelta.Stamp = stamp(tpID, t)
			tpDelta.GraphDepth = schemas.Int32(int32(depth))
		}
	}
	s.nWindowDepths = newDepths
	s.updateWindowDepths = false
}
