// -----------------------------------------------------------------------
// Delta merge rules
//
// Updates follow protobuf MergeFrom semantics: scalars present in the
// partial record overwrite, repeated fields concatenate, map entries
// overwrite per key. Fields listed in the clear table are reset before
// merging, so the sender emits them in full ("clear cue" on presence).
// -----------------------------------------------------------------------

package schemas

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneInt32Map(m map[string]int32) map[string]int32 {
	if m == nil {
		return nil
	}
	out := make(map[string]int32, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneBoolPtr(v *bool) *bool {
	if v == nil {
		return nil
	}
	return Bool(*v)
}

func cloneInt32Ptr(v *int32) *int32 {
	if v == nil {
		return nil
	}
	return Int32(*v)
}

func cloneStringPtr(v *string) *string {
	if v == nil {
		return nil
	}
	return String(*v)
}

func cloneFloat64Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float64(*v)
}

// Clone returns a deep copy of the runtime.
func (m *Runtime) Clone() *Runtime {
	if m == nil {
		return nil
	}
	c := *m
	c.Environment = cloneStringMap(m.Environment)
	c.Directives = cloneStringMap(m.Directives)
	c.Outputs = cloneStringMap(m.Outputs)
	return &c
}

func (m *Output) Clone() *Output {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

func (m *Trigger) Clone() *Trigger {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

func (m *Prerequisite) Clone() *Prerequisite {
	if m == nil {
		return nil
	}
	c := *m
	c.CyclePoints = cloneStrings(m.CyclePoints)
	c.Conditions = make([]*PrereqCondition, len(m.Conditions))
	for i, cond := range m.Conditions {
		cc := *cond
		c.Conditions[i] = &cc
	}
	return &c
}

func cloneOutputs(m map[string]*Output) map[string]*Output {
	if m == nil {
		return nil
	}
	out := make(map[string]*Output, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}

func cloneTriggers(m map[string]*Trigger) map[string]*Trigger {
	if m == nil {
		return nil
	}
	out := make(map[string]*Trigger, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}

func clonePrerequisites(ps []*Prerequisite) []*Prerequisite {
	if ps == nil {
		return nil
	}
	out := make([]*Prerequisite, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}

func (m *Workflow) Clone() *Workflow {
	if m == nil {
		return nil
	}
	c := *m
	c.Tasks = cloneStrings(m.Tasks)
	c.Families = cloneStrings(m.Families)
	c.Edges = cloneStrings(m.Edges)
	c.Meta = cloneStringMap(m.Meta)
	c.Reloaded = cloneBoolPtr(m.Reloaded)
	c.StateTotals = cloneInt32Map(m.StateTotals)
	if m.TimeZoneInfo != nil {
		tz := *m.TimeZoneInfo
		c.TimeZoneInfo = &tz
	}
	c.NsDefOrder = cloneStrings(m.NsDefOrder)
	c.States = cloneStrings(m.States)
	c.TaskProxies = cloneStrings(m.TaskProxies)
	c.FamilyProxies = cloneStrings(m.FamilyProxies)
	c.IsHeldTotal = cloneInt32Ptr(m.IsHeldTotal)
	c.Jobs = cloneStrings(m.Jobs)
	c.IsQueuedTotal = cloneInt32Ptr(m.IsQueuedTotal)
	if m.LatestStateTasks != nil {
		c.LatestStateTasks = make(map[string]*StateTasks, len(m.LatestStateTasks))
		for k, v := range m.LatestStateTasks {
			c.LatestStateTasks[k] = &StateTasks{Tasks: cloneStrings(v.Tasks)}
		}
	}
	c.Pruned = cloneBoolPtr(m.Pruned)
	c.IsRunaheadTotal = cloneInt32Ptr(m.IsRunaheadTotal)
	c.StatesUpdated = cloneBoolPtr(m.StatesUpdated)
	return &c
}

func (m *Task) Clone() *Task {
	if m == nil {
		return nil
	}
	c := *m
	c.Meta = cloneStringMap(m.Meta)
	c.Proxies = cloneStrings(m.Proxies)
	c.Namespace = cloneStrings(m.Namespace)
	c.Parents = cloneStrings(m.Parents)
	c.Runtime = m.Runtime.Clone()
	return &c
}

func (m *Family) Clone() *Family {
	if m == nil {
		return nil
	}
	c := *m
	c.Meta = cloneStringMap(m.Meta)
	c.Proxies = cloneStrings(m.Proxies)
	c.Parents = cloneStrings(m.Parents)
	c.ChildTasks = cloneStrings(m.ChildTasks)
	c.ChildFamilies = cloneStrings(m.ChildFamilies)
	c.Runtime = m.Runtime.Clone()
	return &c
}

func (m *TaskProxy) Clone() *TaskProxy {
	if m == nil {
		return nil
	}
	c := *m
	c.State = cloneStringPtr(m.State)
	c.JobSubmits = cloneInt32Ptr(m.JobSubmits)
	c.Outputs = cloneOutputs(m.Outputs)
	c.Namespace = cloneStrings(m.Namespace)
	c.Prerequisites = clonePrerequisites(m.Prerequisites)
	c.Jobs = cloneStrings(m.Jobs)
	c.IsHeld = cloneBoolPtr(m.IsHeld)
	c.Edges = cloneStrings(m.Edges)
	c.Ancestors = cloneStrings(m.Ancestors)
	c.ExternalTriggers = cloneTriggers(m.ExternalTriggers)
	c.Xtriggers = cloneTriggers(m.Xtriggers)
	c.IsQueued = cloneBoolPtr(m.IsQueued)
	c.IsRunahead = cloneBoolPtr(m.IsRunahead)
	c.Runtime = m.Runtime.Clone()
	c.GraphDepth = cloneInt32Ptr(m.GraphDepth)
	return &c
}

func (m *FamilyProxy) Clone() *FamilyProxy {
	if m == nil {
		return nil
	}
	c := *m
	c.State = cloneStringPtr(m.State)
	c.ChildTasks = cloneStrings(m.ChildTasks)
	c.ChildFamilies = cloneStrings(m.ChildFamilies)
	c.IsHeld = cloneBoolPtr(m.IsHeld)
	c.Ancestors = cloneStrings(m.Ancestors)
	c.States = cloneStrings(m.States)
	c.StateTotals = cloneInt32Map(m.StateTotals)
	c.IsHeldTotal = cloneInt32Ptr(m.IsHeldTotal)
	c.IsQueued = cloneBoolPtr(m.IsQueued)
	c.IsQueuedTotal = cloneInt32Ptr(m.IsQueuedTotal)
	c.IsRunahead = cloneBoolPtr(m.IsRunahead)
	c.IsRunaheadTotal = cloneInt32Ptr(m.IsRunaheadTotal)
	c.Runtime = m.Runtime.Clone()
	c.GraphDepth = cloneInt32Ptr(m.GraphDepth)
	return &c
}

func (m *Job) Clone() *Job {
	if m == nil {
		return nil
	}
	c := *m
	c.State = cloneStringPtr(m.State)
	c.ExecutionTimeLimit = cloneFloat64Ptr(m.ExecutionTimeLimit)
	c.Messages = cloneStrings(m.Messages)
	c.Runtime = m.Runtime.Clone()
	return &c
}

func (m *Edge) Clone() *Edge {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

// MergeWorkflow merges a partial workflow record into dst.
func MergeWorkflow(dst, src *Workflow) {
	if src.Stamp != "" {
		dst.Stamp = src.Stamp
	}
	if src.ID != "" {
		dst.ID = src.ID
	}
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Status != "" {
		dst.Status = src.Status
	}
	if src.Host != "" {
		dst.Host = src.Host
	}
	if src.Port != 0 {
		dst.Port = src.Port
	}
	if src.Owner != "" {
		dst.Owner = src.Owner
	}
	// Clear-before-merge cues: presence of StatesUpdated resets the
	// aggregate state fields so pruned counts do not linger.
	if src.StatesUpdated != nil && *src.StatesUpdated {
		dst.States = nil
		dst.StateTotals = nil
		dst.LatestStateTasks = nil
		dst.StatesUpdated = Bool(true)
	}
	dst.Tasks = append(dst.Tasks, src.Tasks...)
	dst.Families = append(dst.Families, src.Families...)
	dst.Edges = append(dst.Edges, src.Edges...)
	if src.APIVersion != 0 {
		dst.APIVersion = src.APIVersion
	}
	if src.RuntimeVersion != "" {
		dst.RuntimeVersion = src.RuntimeVersion
	}
	if src.LastUpdated != 0 {
		dst.LastUpdated = src.LastUpdated
	}
	for k, v := range src.Meta {
		if dst.Meta == nil {
			dst.Meta = map[string]string{}
		}
		dst.Meta[k] = v
	}
	if src.NewestActiveCyclePoint != "" {
		dst.NewestActiveCyclePoint = src.NewestActiveCyclePoint
	}
	if src.OldestActiveCyclePoint != "" {
		dst.OldestActiveCyclePoint = src.OldestActiveCyclePoint
	}
	if src.Reloaded != nil {
		dst.Reloaded = Bool(*src.Reloaded)
	}
	if src.RunMode != "" {
		dst.RunMode = src.RunMode
	}
	if src.CyclingMode != "" {
		dst.CyclingMode = src.CyclingMode
	}
	for k, v := range src.StateTotals {
		if dst.StateTotals == nil {
			dst.StateTotals = map[string]int32{}
		}
		dst.StateTotals[k] = v
	}
	if src.TimeZoneInfo != nil {
		tz := *src.TimeZoneInfo
		dst.TimeZoneInfo = &tz
	}
	if src.TreeDepth != 0 {
		dst.TreeDepth = src.TreeDepth
	}
	dst.NsDefOrder = append(dst.NsDefOrder, src.NsDefOrder...)
	dst.States = append(dst.States, src.States...)
	dst.TaskProxies = append(dst.TaskProxies, src.TaskProxies...)
	dst.FamilyProxies = append(dst.FamilyProxies, src.FamilyProxies...)
	if src.StatusMsg != "" {
		dst.StatusMsg = src.StatusMsg
	}
	if src.IsHeldTotal != nil {
		dst.IsHeldTotal = Int32(*src.IsHeldTotal)
	}
	dst.Jobs = append(dst.Jobs, src.Jobs...)
	if src.PubPort != 0 {
		dst.PubPort = src.PubPort
	}
	if src.Broadcasts != "" {
		dst.Broadcasts = src.Broadcasts
	}
	if src.IsQueuedTotal != nil {
		dst.IsQueuedTotal = Int32(*src.IsQueuedTotal)
	}
	for k, v := range src.LatestStateTasks {
		if dst.LatestStateTasks == nil {
			dst.LatestStateTasks = map[string]*StateTasks{}
		}
		dst.LatestStateTasks[k] = &StateTasks{Tasks: cloneStrings(v.Tasks)}
	}
	if src.Pruned != nil && *src.Pruned {
		dst.Pruned = Bool(true)
	}
	if src.IsRunaheadTotal != nil {
		dst.IsRunaheadTotal = Int32(*src.IsRunaheadTotal)
	}
	if src.NEdgeDistance != 0 || src.GraphWindowChanged {
		dst.NEdgeDistance = src.NEdgeDistance
	}
}

// MergeTask merges a partial task-definition record into dst.
func MergeTask(dst, src *Task) {
	if src.Stamp != "" {
		dst.Stamp = src.Stamp
	}
	if src.Name != "" {
		dst.Name = src.Name
	}
	for k, v := range src.Meta {
		if dst.Meta == nil {
			dst.Meta = map[string]string{}
		}
		dst.Meta[k] = v
	}
	if src.MeanElapsedTime != 0 {
		dst.MeanElapsedTime = src.MeanElapsedTime
	}
	if src.Depth != 0 {
		dst.Depth = src.Depth
	}
	dst.Proxies = append(dst.Proxies, src.Proxies...)
	dst.Namespace = append(dst.Namespace, src.Namespace...)
	dst.Parents = append(dst.Parents, src.Parents...)
	if src.FirstParent != "" {
		dst.FirstParent = src.FirstParent
	}
	if src.Runtime != nil {
		dst.Runtime = src.Runtime.Clone()
	}
}

// MergeFamily merges a partial family-definition record into dst.
func MergeFamily(dst, src *Family) {
	if src.Stamp != "" {
		dst.Stamp = src.Stamp
	}
	if src.Name != "" {
		dst.Name = src.Name
	}
	for k, v := range src.Meta {
		if dst.Meta == nil {
			dst.Meta = map[string]string{}
		}
		dst.Meta[k] = v
	}
	if src.Depth != 0 {
		dst.Depth = src.Depth
	}
	dst.Proxies = append(dst.Proxies, src.Proxies...)
	dst.Parents = append(dst.Parents, src.Parents...)
	dst.ChildTasks = append(dst.ChildTasks, src.ChildTasks...)
	dst.ChildFamilies = append(dst.ChildFamilies, src.ChildFamilies...)
	if src.FirstParent != "" {
		dst.FirstParent = src.FirstParent
	}
	if src.Runtime != nil {
		dst.Runtime = src.Runtime.Clone()
	}
}

// MergeTaskProxy merges a partial task-proxy record into dst.
// Prerequisites are a clear-before-merge field.
func MergeTaskProxy(dst, src *TaskProxy) {
	if src.Stamp != "" {
		dst.Stamp = src.Stamp
	}
	if src.Task != "" {
		dst.Task = src.Task
	}
	if src.State != nil {
		dst.State = String(*src.State)
	}
	if src.CyclePoint != "" {
		dst.CyclePoint = src.CyclePoint
	}
	if src.Depth != 0 {
		dst.Depth = src.Depth
	}
	if src.JobSubmits != nil {
		dst.JobSubmits = Int32(*src.JobSubmits)
	}
	for k, v := range src.Outputs {
		if dst.Outputs == nil {
			dst.Outputs = map[string]*Output{}
		}
		dst.Outputs[k] = v.Clone()
	}
	dst.Namespace = append(dst.Namespace, src.Namespace...)
	if src.Prerequisites != nil {
		dst.Prerequisites = clonePrerequisites(src.Prerequisites)
	}
	dst.Jobs = append(dst.Jobs, src.Jobs...)
	if src.FirstParent != "" {
		dst.FirstParent = src.FirstParent
	}
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.IsHeld != nil {
		dst.IsHeld = Bool(*src.IsHeld)
	}
	dst.Edges = append(dst.Edges, src.Edges...)
	dst.Ancestors = append(dst.Ancestors, src.Ancestors...)
	if src.FlowNums != "" {
		dst.FlowNums = src.FlowNums
	}
	for k, v := range src.ExternalTriggers {
		if dst.ExternalTriggers == nil {
			dst.ExternalTriggers = map[string]*Trigger{}
		}
		dst.ExternalTriggers[k] = v.Clone()
	}
	for k, v := range src.Xtriggers {
		if dst.Xtriggers == nil {
			dst.Xtriggers = map[string]*Trigger{}
		}
		dst.Xtriggers[k] = v.Clone()
	}
	if src.IsQueued != nil {
		dst.IsQueued = Bool(*src.IsQueued)
	}
	if src.IsRunahead != nil {
		dst.IsRunahead = Bool(*src.IsRunahead)
	}
	if src.Runtime != nil {
		dst.Runtime = src.Runtime.Clone()
	}
	if src.GraphDepth != nil {
		dst.GraphDepth = Int32(*src.GraphDepth)
	}
}

// MergeFamilyProxy merges a partial family-proxy record into dst.
// States and StateTotals are clear-before-merge fields.
func MergeFamilyProxy(dst, src *FamilyProxy) {
	if src.Stamp != "" {
		dst.Stamp = src.Stamp
	}
	if src.CyclePoint != "" {
		dst.CyclePoint = src.CyclePoint
	}
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Family != "" {
		dst.Family = src.Family
	}
	if src.State != nil {
		dst.State = String(*src.State)
	}
	if src.Depth != 0 {
		dst.Depth = src.Depth
	}
	if src.FirstParent != "" {
		dst.FirstParent = src.FirstParent
	}
	dst.ChildTasks = append(dst.ChildTasks, src.ChildTasks...)
	dst.ChildFamilies = append(dst.ChildFamilies, src.ChildFamilies...)
	if src.IsHeld != nil {
		dst.IsHeld = Bool(*src.IsHeld)
	}
	dst.Ancestors = append(dst.Ancestors, src.Ancestors...)
	if src.States != nil {
		dst.States = cloneStrings(src.States)
	}
	if src.StateTotals != nil {
		dst.StateTotals = cloneInt32Map(src.StateTotals)
	}
	if src.IsHeldTotal != nil {
		dst.IsHeldTotal = Int32(*src.IsHeldTotal)
	}
	if src.IsQueued != nil {
		dst.IsQueued = Bool(*src.IsQueued)
	}
	if src.IsQueuedTotal != nil {
		dst.IsQueuedTotal = Int32(*src.IsQueuedTotal)
	}
	if src.IsRunahead != nil {
		dst.IsRunahead = Bool(*src.IsRunahead)
	}
	if src.IsRunaheadTotal != nil {
		dst.IsRunaheadTotal = Int32(*src.IsRunaheadTotal)
	}
	if src.Runtime != nil {
		dst.Runtime = src.Runtime.Clone()
	}
	if src.GraphDepth != nil {
		dst.GraphDepth = Int32(*src.GraphDepth)
	}
}

// MergeJob merges a partial job record into dst. Messages are a
// clear-before-merge field.
func MergeJob(dst, src *Job) {
	if src.Stamp != "" {
		dst.Stamp = src.Stamp
	}
	if src.SubmitNum != 0 {
		dst.SubmitNum = src.SubmitNum
	}
	if src.State != nil {
		dst.State = String(*src.State)
	}
	if src.TaskProxy != "" {
		dst.TaskProxy = src.TaskProxy
	}
	if src.SubmittedTime != 0 {
		dst.SubmittedTime = src.SubmittedTime
	}
	if src.StartedTime != 0 {
		dst.StartedTime = src.StartedTime
	}
	if src.FinishedTime != 0 {
		dst.FinishedTime = src.FinishedTime
	}
	if src.JobID != "" {
		dst.JobID = src.JobID
	}
	if src.JobRunnerName != "" {
		dst.JobRunnerName = src.JobRunnerName
	}
	if src.ExecutionTimeLimit != nil {
		dst.ExecutionTimeLimit = Float64(*src.ExecutionTimeLimit)
	}
	if src.Platform != "" {
		dst.Platform = src.Platform
	}
	if src.JobLogDir != "" {
		dst.JobLogDir = src.JobLogDir
	}
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.CyclePoint != "" {
		dst.CyclePoint = src.CyclePoint
	}
	if src.Messages != nil {
		dst.Messages = cloneStrings(src.Messages)
	}
	if src.Runtime != nil {
		dst.Runtime = src.Runtime.Clone()
	}
}
