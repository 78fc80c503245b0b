// -----------------------------------------------------------------------
// Per-tick delta buffers: disjoint added/updated/pruned sets per type
// -----------------------------------------------------------------------

package datastore

import "github.com/ternarybob/cursus/internal/schemas"

// deltaBuffers accumulates one tick's worth of changes. Updated records
// are partial: they carry only the fields that changed.
type deltaBuffers struct {
	workflowAdded   *schemas.Workflow
	workflowUpdated *schemas.Workflow
	workflowPruned  bool

	tasksAdded   map[string]*schemas.Task
	tasksUpdated map[string]*schemas.Task
	tasksPruned  []string

	taskProxiesAdded   map[string]*schemas.TaskProxy
	taskProxiesUpdated map[string]*schemas.TaskProxy
	taskProxiesPruned  []string

	familiesAdded   map[string]*schemas.Family
	familiesUpdated map[string]*schemas.Family
	familiesPruned  []string

	familyProxiesAdded   map[string]*schemas.FamilyProxy
	familyProxiesUpdated map[string]*schemas.FamilyProxy
	familyProxiesPruned  []string

	jobsAdded   map[string]*schemas.Job
	jobsUpdated map[string]*schemas.Job
	jobsPruned  []string

	edgesAdded   map[string]*schemas.Edge
	edgesUpdated map[string]*schemas.Edge
	edgesPruned  []string
}

func newDeltaBuffers() *deltaBuffers {
	return &deltaBuffers{
		tasksAdded:           map[string]*schemas.Task{},
		tasksUpdated:         map[string]*schemas.Task{},
		taskProxiesAdded:     map[string]*schemas.TaskProxy{},
		taskProxiesUpdated:   map[string]*schemas.TaskProxy{},
		familiesAdded:        map[string]*schemas.Family{},
		familiesUpdated:      map[string]*schemas.Family{},
		familyProxiesAdded:   map[string]*schemas.FamilyProxy{},
		familyProxiesUpdated: map[string]*schemas.FamilyProxy{},
		jobsAdded:            map[string]*schemas.Job{},
		jobsUpdated:          map[string]*schemas.Job{},
		edgesAdded:           map[string]*schemas.Edge{},
		edgesUpdated:         map[string]*schemas.Edge{},
	}
}

func (b *deltaBuffers) clear() {
	*b = *newDeltaBuffers()
}

func (b *deltaBuffers) empty() bool {
	return b.workflowAdded == nil &&
		b.workflowUpdated == nil &&
		!b.workflowPruned &&
		len(b.tasksAdded) == 0 && len(b.tasksUpdated) == 0 && len(b.tasksPruned) == 0 &&
		len(b.taskProxiesAdded) == 0 && len(b.taskProxiesUpdated) == 0 && len(b.taskProxiesPruned) == 0 &&
		len(b.familiesAdded) == 0 && len(b.familiesUpdated) == 0 && len(b.familiesPruned) == 0 &&
		len(b.familyProxiesAdded) == 0 && len(b.familyProxiesUpdated) == 0 && len(b.familyProxiesPruned) == 0 &&
		len(b.jobsAdded) == 0 && len(b.jobsUpdated) == 0 && len(b.jobsPruned) == 0 &&
		len(b.edgesAdded) == 0 && len(b.edgesUpdated) == 0 && len(b.edgesPruned) == 0
}

// updWorkflow returns the partial workflow update record, creating
// it on first use.
func (b *deltaBuffers) updWorkflow() *schemas.Workflow {
	if b.workflowUpdated == nil {
		b.workflowUpdated = &schemas.Workflow{}
	}
	return b.workflowUpdated
}

// updTaskProxy returns the partial update record for a task proxy id.
func (b *deltaBuffers) updTaskProxy(id string) *schemas.TaskProxy {
	tp, ok := b.taskProxiesUpdated[id]
	if !ok {
		tp = &schemas.TaskProxy{ID: id}
		b.taskProxiesUpdated[id] = tp
	}
	return tp
}

// updFamilyProxy returns the partial update record for a family proxy id.
func (b *deltaBuffers) updFamilyProxy(id string) *schemas.FamilyProxy {
	fp, ok := b.familyProxiesUpdated[id]
	if !ok {
		fp = &schemas.FamilyProxy{ID: id}
		b.familyProxiesUpdated[id] = fp
	}
	return fp
}

// updJob returns the partial update record for a job id.
func (b *deltaBuffers) updJob(id string) *schemas.Job {
	j, ok := b.jobsUpdated[id]
	if !ok {
		j = &schemas.Job{ID: id}
		b.jobsUpdated[id] = j
	}
	return j
}

// updTask returns the partial update record for a task-definition id.
func (b *deltaBuffers) updTask(id string) *schemas.Task {
	t, ok := b.tasksUpdated[id]
	if !ok {
		t = &schemas.Task{ID: id}
		b.tasksUpdated[id] = t
	}
	return t
}
