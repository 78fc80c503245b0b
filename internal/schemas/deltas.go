// -----------------------------------------------------------------------
// Per-type delta messages and the aggregate batch
// -----------------------------------------------------------------------

package schemas

// TaskDeltas carries one batch of task-definition changes (TDeltas).
type TaskDeltas struct {
	Time     float64  // field 1
	Checksum uint32   // field 2
	Added    []*Task  // field 3
	Updated  []*Task  // field 4
	Pruned   []string // field 5
	Reloaded bool     // field 6
}

// TaskProxyDeltas carries one batch of task-proxy changes (TPDeltas).
type TaskProxyDeltas struct {
	Time     float64      // field 1
	Checksum uint32       // field 2
	Added    []*TaskProxy // field 3
	Updated  []*TaskProxy // field 4
	Pruned   []string     // field 5
	Reloaded bool         // field 6
}

// FamilyDeltas carries one batch of family-definition changes (FDeltas).
type FamilyDeltas struct {
	Time     float64   // field 1
	Checksum uint32    // field 2
	Added    []*Family // field 3
	Updated  []*Family // field 4
	Pruned   []string  // field 5
	Reloaded bool      // field 6
}

// FamilyProxyDeltas carries one batch of family-proxy changes (FPDeltas).
type FamilyProxyDeltas struct {
	Time     float64        // field 1
	Checksum uint32         // field 2
	Added    []*FamilyProxy // field 3
	Updated  []*FamilyProxy // field 4
	Pruned   []string       // field 5
	Reloaded bool           // field 6
}

// JobDeltas carries one batch of job changes (JDeltas).
type JobDeltas struct {
	Time     float64  // field 1
	Checksum uint32   // field 2
	Added    []*Job   // field 3
	Updated  []*Job   // field 4
	Pruned   []string // field 5
	Reloaded bool     // field 6
}

// EdgeDeltas carries one batch of edge changes (EDeltas).
type EdgeDeltas struct {
	Time     float64  // field 1
	Checksum uint32   // field 2
	Added    []*Edge  // field 3
	Updated  []*Edge  // field 4
	Pruned   []string // field 5
	Reloaded bool     // field 6
}

// WorkflowDeltas carries the singleton workflow changes (WDeltas).
// Updated is a partial record; Pruned is a latching flag.
type WorkflowDeltas struct {
	Time     float64   // field 1
	Added    *Workflow // field 2
	Updated  *Workflow // field 3
	Reloaded bool      // field 4
	Pruned   bool      // field 5
}

// AllDeltas is one publish batch containing every per-type delta.
type AllDeltas struct {
	Families      *FamilyDeltas      // field 1
	FamilyProxies *FamilyProxyDeltas // field 2
	Jobs          *JobDeltas         // field 3
	Tasks         *TaskDeltas        // field 4
	TaskProxies   *TaskProxyDeltas   // field 5
	Edges         *EdgeDeltas        // field 6
	Workflow      *WorkflowDeltas    // field 7
}

// Store is a materialized view of the workflow: the scheduler's
// authoritative copy and any subscriber replica share this shape.
type Store struct {
	Workflow      *Workflow
	Tasks         map[string]*Task
	TaskProxies   map[string]*TaskProxy
	Families      map[string]*Family
	FamilyProxies map[string]*FamilyProxy
	Jobs          map[string]*Job
	Edges         map[string]*Edge
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		Workflow:      &Workflow{},
		Tasks:         map[string]*Task{},
		TaskProxies:   map[string]*TaskProxy{},
		Families:      map[string]*Family{},
		FamilyProxies: map[string]*FamilyProxy{},
		Jobs:          map[string]*Job{},
		Edges:         map[string]*Edge{},
	}
}

// Stamps returns the stable stamp strings of one repeated entity type,
// the checksum input for drift detection.
func (s *Store) Stamps(entityType string) []string {
	var out []string
	switch entityType {
	case TasksType:
		for _, e := range s.Tasks {
			out = append(out, e.Stamp)
		}
	case TaskProxiesType:
		for _, e := range s.TaskProxies {
			out = append(out, e.Stamp)
		}
	case FamiliesType:
		for _, e := range s.Families {
			out = append(out, e.Stamp)
		}
	case FamilyProxiesType:
		for _, e := range s.FamilyProxies {
			out = append(out, e.Stamp)
		}
	case JobsType:
		for _, e := range s.Jobs {
			out = append(out, e.Stamp)
		}
	case EdgesType:
		for _, e := range s.Edges {
			out = append(out, e.Stamp)
		}
	}
	return out
}
