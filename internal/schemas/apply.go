// -----------------------------------------------------------------------
// Applying a delta batch to a store (scheduler side and replica side)
// -----------------------------------------------------------------------

package schemas

func removeString(s []string, v string) []string {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// Apply merges one batch into the store in the fixed type order:
// workflow, tasks, task proxies, families, family proxies, jobs, edges.
// Within a type additions precede updates precede prunes. Updates
// addressed to missing ids are skipped and returned for debug logging;
// the next checksum mismatch lets a replica recover with a snapshot.
func (s *Store) Apply(batch *AllDeltas) (missed []string) {
	if batch == nil {
		return nil
	}
	if w := batch.Workflow; w != nil {
		if w.Added != nil {
			// A full workflow record replaces the singleton (initial
			// batch, reload, snapshot).
			*s.Workflow = *w.Added.Clone()
		}
		if w.Updated != nil {
			MergeWorkflow(s.Workflow, w.Updated)
		}
		if w.Pruned {
			s.Workflow.Pruned = Bool(true)
		}
	}
	if t := batch.Tasks; t != nil {
		for _, e := range t.Added {
			s.Tasks[e.ID] = e.Clone()
		}
		for _, e := range t.Updated {
			if dst, ok := s.Tasks[e.ID]; ok {
				MergeTask(dst, e)
			} else {
				missed = append(missed, e.ID)
			}
		}
		for _, id := range t.Pruned {
			delete(s.Tasks, id)
		}
	}
	if tp := batch.TaskProxies; tp != nil {
		for _, e := range tp.Added {
			s.TaskProxies[e.ID] = e.Clone()
		}
		for _, e := range tp.Updated {
			if dst, ok := s.TaskProxies[e.ID]; ok {
				MergeTaskProxy(dst, e)
			} else {
				missed = append(missed, e.ID)
			}
		}
		for _, id := range tp.Pruned {
			s.pruneTaskProxy(id)
		}
	}
	if f := batch.Families; f != nil {
		for _, e := range f.Added {
			s.Families[e.ID] = e.Clone()
		}
		for _, e := range f.Updated {
			if dst, ok := s.Families[e.ID]; ok {
				MergeFamily(dst, e)
			} else {
				missed = append(missed, e.ID)
			}
		}
		for _, id := range f.Pruned {
			delete(s.Families, id)
		}
	}
	if fp := batch.FamilyProxies; fp != nil {
		for _, e := range fp.Added {
			s.FamilyProxies[e.ID] = e.Clone()
		}
		for _, e := range fp.Updated {
			if dst, ok := s.FamilyProxies[e.ID]; ok {
				MergeFamilyProxy(dst, e)
			} else {
				missed = append(missed, e.ID)
			}
		}
		for _, id := range fp.Pruned {
			s.pruneFamilyProxy(id)
		}
	}
	if j := batch.Jobs; j != nil {
		for _, e := range j.Added {
			s.Jobs[e.ID] = e.Clone()
		}
		for _, e := range j.Updated {
			if dst, ok := s.Jobs[e.ID]; ok {
				MergeJob(dst, e)
			} else {
				missed = append(missed, e.ID)
			}
		}
		for _, id := range j.Pruned {
			s.pruneJob(id)
		}
	}
	if e := batch.Edges; e != nil {
		for _, ed := range e.Added {
			s.Edges[ed.ID] = ed.Clone()
		}
		for _, ed := range e.Updated {
			if dst, ok := s.Edges[ed.ID]; ok {
				*dst = *ed
			} else {
				missed = append(missed, ed.ID)
			}
		}
		for _, id := range e.Pruned {
			s.pruneEdge(id)
		}
	}
	return missed
}

// pruneTaskProxy removes a task proxy and its relationships: the
// definition's proxy list, the first-parent family's child tasks and the
// workflow task-proxy list.
func (s *Store) pruneTaskProxy(id string) {
	node, ok := s.TaskProxies[id]
	if !ok {
		return
	}
	if def, ok := s.Tasks[node.Task]; ok {
		def.Proxies = removeString(def.Proxies, id)
	}
	if fp, ok := s.FamilyProxies[node.FirstParent]; ok {
		fp.ChildTasks = removeString(fp.ChildTasks, id)
	}
	s.Workflow.TaskProxies = removeString(s.Workflow.TaskProxies, id)
	delete(s.TaskProxies, id)
}

// pruneFamilyProxy removes a family proxy and its relationships.
func (s *Store) pruneFamilyProxy(id string) {
	node, ok := s.FamilyProxies[id]
	if !ok {
		return
	}
	if def, ok := s.Families[node.Family]; ok {
		def.Proxies = removeString(def.Proxies, id)
	}
	if fp, ok := s.FamilyProxies[node.FirstParent]; ok {
		fp.ChildFamilies = removeString(fp.ChildFamilies, id)
	}
	s.Workflow.FamilyProxies = removeString(s.Workflow.FamilyProxies, id)
	delete(s.FamilyProxies, id)
}

// pruneEdge removes an edge from both endpoints and the workflow list.
func (s *Store) pruneEdge(id string) {
	edge, ok := s.Edges[id]
	if !ok {
		return
	}
	if src, ok := s.TaskProxies[edge.Source]; ok {
		src.Edges = removeString(src.Edges, id)
	}
	if tgt, ok := s.TaskProxies[edge.Target]; ok {
		tgt.Edges = removeString(tgt.Edges, id)
	}
	s.Workflow.Edges = removeString(s.Workflow.Edges, id)
	delete(s.Edges, id)
}

// pruneJob removes a job from the workflow list and its owning proxy.
func (s *Store) pruneJob(id string) {
	job, ok := s.Jobs[id]
	if !ok {
		return
	}
	if tp, ok := s.TaskProxies[job.TaskProxy]; ok {
		tp.Jobs = removeString(tp.Jobs, id)
	}
	s.Workflow.Jobs = removeString(s.Workflow.Jobs, id)
	delete(s.Jobs, id)
}
