package schemas

import "google.golang.org/protobuf/encoding/protowire"

// Marshal/Unmarshal pairs for every entity message. Helper messages first.

func (m *TimeZoneInfo) Marshal() []byte {
	var b []byte
	b = appendInt32(b, 1, m.Hours)
	b = appendInt32(b, 2, m.Minutes)
	b = appendString(b, 3, m.StringBasic)
	b = appendString(b, 4, m.StringExtended)
	return b
}

func UnmarshalTimeZoneInfo(b []byte) (*TimeZoneInfo, error) {
	m := &TimeZoneInfo{}
	d := &decoder{b: b}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Hours = d.int32()
		case 2:
			m.Minutes = d.int32()
		case 3:
			m.StringBasic = d.string()
		case 4:
			m.StringExtended = d.string()
		default:
			d.skip(num, typ)
		}
	}
	return m, d.err
}

func (m *Runtime) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.Platform)
	b = appendString(b, 2, m.Script)
	b = appendString(b, 3, m.InitScript)
	b = appendString(b, 4, m.EnvScript)
	b = appendString(b, 5, m.ErrScript)
	b = appendString(b, 6, m.ExitScript)
	b = appendString(b, 7, m.PreScript)
	b = appendString(b, 8, m.PostScript)
	b = appendString(b, 9, m.WorkSubDir)
	b = appendString(b, 10, m.ExecutionTimeLimit)
	b = appendStringMap(b, 11, m.Environment)
	b = appendStringMap(b, 12, m.Directives)
	b = appendStringMap(b, 13, m.Outputs)
	return b
}

func UnmarshalRuntime(b []byte) (*Runtime, error) {
	m := &Runtime{}
	d := &decoder{b: b}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Platform = d.string()
		case 2:
			m.Script = d.string()
		case 3:
			m.InitScript = d.string()
		case 4:
			m.EnvScript = d.string()
		case 5:
			m.ErrScript = d.string()
		case 6:
			m.ExitScript = d.string()
		case 7:
			m.PreScript = d.string()
		case 8:
			m.PostScript = d.string()
		case 9:
			m.WorkSubDir = d.string()
		case 10:
			m.ExecutionTimeLimit = d.string()
		case 11, 12, 13:
			k, v, err := stringMapEntry(d.bytes())
			if err != nil {
				return m, err
			}
			target := &m.Environment
			if num == 12 {
				target = &m.Directives
			} else if num == 13 {
				target = &m.Outputs
			}
			if *target == nil {
				*target = map[string]string{}
			}
			(*target)[k] = v
		default:
			d.skip(num, typ)
		}
	}
	return m, d.err
}

func (m *Output) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.Label)
	b = appendString(b, 2, m.Message)
	b = appendBool(b, 3, m.Satisfied)
	b = appendFloat64(b, 4, m.Time)
	return b
}

func UnmarshalOutput(b []byte) (*Output, error) {
	m := &Output{}
	d := &decoder{b: b}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Label = d.string()
		case 2:
			m.Message = d.string()
		case 3:
			m.Satisfied = d.bool()
		case 4:
			m.Time = d.float64()
		default:
			d.skip(num, typ)
		}
	}
	return m, d.err
}

func (m *PrereqCondition) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.TaskProxy)
	b = appendString(b, 2, m.ExprAlias)
	b = appendString(b, 3, m.ReqState)
	b = appendString(b, 4, m.Message)
	b = appendBool(b, 5, m.Satisfied)
	return b
}

func UnmarshalPrereqCondition(b []byte) (*PrereqCondition, error) {
	m := &PrereqCondition{}
	d := &decoder{b: b}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.TaskProxy = d.string()
		case 2:
			m.ExprAlias = d.string()
		case 3:
			m.ReqState = d.string()
		case 4:
			m.Message = d.string()
		case 5:
			m.Satisfied = d.bool()
		default:
			d.skip(num, typ)
		}
	}
	return m, d.err
}

func (m *Prerequisite) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.Expression)
	for _, c := range m.Conditions {
		b = appendMessage(b, 2, c.Marshal())
	}
	b = appendStrings(b, 3, m.CyclePoints)
	b = appendBool(b, 4, m.Satisfied)
	return b
}

func UnmarshalPrerequisite(b []byte) (*Prerequisite, error) {
	m := &Prerequisite{}
	d := &decoder{b: b}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Expression = d.string()
		case 2:
			c, err := UnmarshalPrereqCondition(d.bytes())
			if err != nil {
				return m, err
			}
			m.Conditions = append(m.Conditions, c)
		case 3:
			m.CyclePoints = append(m.CyclePoints, d.string())
		case 4:
			m.Satisfied = d.bool()
		default:
			d.skip(num, typ)
		}
	}
	return m, d.err
}

func (m *Trigger) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.ID)
	b = appendString(b, 2, m.Label)
	b = appendString(b, 3, m.Message)
	b = appendBool(b, 4, m.Satisfied)
	b = appendFloat64(b, 5, m.Time)
	return b
}

func UnmarshalTrigger(b []byte) (*Trigger, error) {
	m := &Trigger{}
	d := &decoder{b: b}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.ID = d.string()
		case 2:
			m.Label = d.string()
		case 3:
			m.Message = d.string()
		case 4:
			m.Satisfied = d.bool()
		case 5:
			m.Time = d.float64()
		default:
			d.skip(num, typ)
		}
	}
	return m, d.err
}

func (m *StateTasks) Marshal() []byte {
	var b []byte
	b = appendStrings(b, 1, m.Tasks)
	return b
}

func UnmarshalStateTasks(b []byte) (*StateTasks, error) {
	m := &StateTasks{}
	d := &decoder{b: b}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Tasks = append(m.Tasks, d.string())
		default:
			d.skip(num, typ)
		}
	}
	return m, d.err
}

// appendTriggerMap encodes a map<string, Trigger> field.
func appendTriggerMap(b []byte, num protowire.Number, m map[string]*Trigger) []byte {
	for _, k := range sortedKeys(m) {
		var entry []byte
		entry = appendString(entry, 1, k)
		entry = appendMessage(entry, 2, m[k].Marshal())
		b = appendMessage(b, num, entry)
	}
	return b
}

func (m *Workflow) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.Stamp)
	b = appendString(b, 2, m.ID)
	b = appendString(b, 3, m.Name)
	b = appendString(b, 4, m.Status)
	b = appendString(b, 5, m.Host)
	b = appendInt32(b, 6, m.Port)
	b = appendString(b, 7, m.Owner)
	b = appendStrings(b, 8, m.Tasks)
	b = appendStrings(b, 9, m.Families)
	b = appendStrings(b, 10, m.Edges)
	b = appendInt32(b, 11, m.APIVersion)
	b = appendString(b, 12, m.RuntimeVersion)
	b = appendFloat64(b, 13, m.LastUpdated)
	b = appendStringMap(b, 14, m.Meta)
	b = appendString(b, 15, m.NewestActiveCyclePoint)
	b = appendString(b, 16, m.OldestActiveCyclePoint)
	b = appendOptBool(b, 17, m.Reloaded)
	b = appendString(b, 18, m.RunMode)
	b = appendString(b, 19, m.CyclingMode)
	b = appendInt32Map(b, 20, m.StateTotals)
	if m.TimeZoneInfo != nil {
		b = appendMessage(b, 21, m.TimeZoneInfo.Marshal())
	}
	b = appendInt32(b, 22, m.TreeDepth)
	b = appendStrings(b, 23, m.NsDefOrder)
	b = appendStrings(b, 24, m.States)
	b = appendStrings(b, 25, m.TaskProxies)
	b = appendStrings(b, 26, m.FamilyProxies)
	b = appendString(b, 27, m.StatusMsg)
	b = appendOptInt32(b, 28, m.IsHeldTotal)
	b = appendStrings(b, 29, m.Jobs)
	b = appendInt32(b, 30, m.PubPort)
	b = appendString(b, 31, m.Broadcasts)
	b = appendOptInt32(b, 32, m.IsQueuedTotal)
	for _, k := range sortedKeys(m.LatestStateTasks) {
		var entry []byte
		entry = appendString(entry, 1, k)
		entry = appendMessage(entry, 2, m.LatestStateTasks[k].Marshal())
		b = appendMessage(b, 33, entry)
	}
	b = appendOptBool(b, 34, m.Pruned)
	b = appendOptInt32(b, 35, m.IsRunaheadTotal)
	b = appendOptBool(b, 36, m.StatesUpdated)
	b = appendInt32(b, 37, m.NEdgeDistance)
	b = appendBool(b, 38, m.GraphWindowChanged)
	return b
}

func UnmarshalWorkflow(b []byte) (*Workflow, error) {
	m := &Workflow{}
	d := &decoder{b: b}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Stamp = d.string()
		case 2:
			m.ID = d.string()
		case 3:
			m.Name = d.string()
		case 4:
			m.Status = d.string()
		case 5:
			m.Host = d.string()
		case 6:
			m.Port = d.int32()
		case 7:
			m.Owner = d.string()
		case 8:
			m.Tasks = append(m.Tasks, d.string())
		case 9:
			m.Families = append(m.Families, d.string())
		case 10:
			m.Edges = append(m.Edges, d.string())
		case 11:
			m.APIVersion = d.int32()
		case 12:
			m.RuntimeVersion = d.string()
		case 13:
			m.LastUpdated = d.float64()
		case 14:
			k, v, err := stringMapEntry(d.bytes())
			if err != nil {
				return m, err
			}
			if m.Meta == nil {
				m.Meta = map[string]string{}
			}
			m.Meta[k] = v
		case 15:
			m.NewestActiveCyclePoint = d.string()
		case 16:
			m.OldestActiveCyclePoint = d.string()
		case 17:
			m.Reloaded = Bool(d.bool())
		case 18:
			m.RunMode = d.string()
		case 19:
			m.CyclingMode = d.string()
		case 20:
			k, v, err := int32MapEntry(d.bytes())
			if err != nil {
				return m, err
			}
			if m.StateTotals == nil {
				m.StateTotals = map[string]int32{}
			}
			m.StateTotals[k] = v
		case 21:
			tz, err := UnmarshalTimeZoneInfo(d.bytes())
			if err != nil {
				return m, err
			}
			m.TimeZoneInfo = tz
		case 22:
			m.TreeDepth = d.int32()
		case 23:
			m.NsDefOrder = append(m.NsDefOrder, d.string())
		case 24:
			m.States = append(m.States, d.string())
		case 25:
			m.TaskProxies = append(m.TaskProxies, d.string())
		case 26:
			m.FamilyProxies = append(m.FamilyProxies, d.string())
		case 27:
			m.StatusMsg = d.string()
		case 28:
			m.IsHeldTotal = Int32(d.int32())
		case 29:
			m.Jobs = append(m.Jobs, d.string())
		case 30:
			m.PubPort = d.int32()
		case 31:
			m.Broadcasts = d.string()
		case 32:
			m.IsQueuedTotal = Int32(d.int32())
		case 33:
			entry := d.bytes()
			ed := &decoder{b: entry}
			var key string
			var val *StateTasks
			for {
				enum, etyp, eok := ed.next()
				if !eok {
					break
				}
				switch enum {
				case 1:
					key = ed.string()
				case 2:
					st, err := UnmarshalStateTasks(ed.bytes())
					if err != nil {
						return m, err
					}
					val = st
				default:
					ed.skip(enum, etyp)
				}
			}
			if ed.err != nil {
				return m, ed.err
			}
			if m.LatestStateTasks == nil {
				m.LatestStateTasks = map[string]*StateTasks{}
			}
			if val == nil {
				val = &StateTasks{}
			}
			m.LatestStateTasks[key] = val
		case 34:
			m.Pruned = Bool(d.bool())
		case 35:
			m.IsRunaheadTotal = Int32(d.int32())
		case 36:
			m.StatesUpdated = Bool(d.bool())
		case 37:
			m.NEdgeDistance = d.int32()
		case 38:
			m.GraphWindowChanged = d.bool()
		default:
			d.skip(num, typ)
		}
	}
	return m, d.err
}

func (m *Task) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.Stamp)
	b = appendString(b, 2, m.ID)
	b = appendString(b, 3, m.Name)
	b = appendStringMap(b, 4, m.Meta)
	b = appendFloat64(b, 5, m.MeanElapsedTime)
	b = appendInt32(b, 6, m.Depth)
	b = appendStrings(b, 7, m.Proxies)
	b = appendStrings(b, 8, m.Namespace)
	b = appendStrings(b, 9, m.Parents)
	b = appendString(b, 10, m.FirstParent)
	if m.Runtime != nil {
		b = appendMessage(b, 11, m.Runtime.Marshal())
	}
	return b
}

func UnmarshalTask(b []byte) (*Task, error) {
	m := &Task{}
	d := &decoder{b: b}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Stamp = d.string()
		case 2:
			m.ID = d.string()
		case 3:
			m.Name = d.string()
		case 4:
			k, v, err := stringMapEntry(d.bytes())
			if err != nil {
				return m, err
			}
			if m.Meta == nil {
				m.Meta = map[string]string{}
			}
			m.Meta[k] = v
		case 5:
			m.MeanElapsedTime = d.float64()
		case 6:
			m.Depth = d.int32()
		case 7:
			m.Proxies = append(m.Proxies, d.string())
		case 8:
			m.Namespace = append(m.Namespace, d.string())
		case 9:
			m.Parents = append(m.Parents, d.string())
		case 10:
			m.FirstParent = d.string()
		case 11:
			rt, err := UnmarshalRuntime(d.bytes())
			if err != nil {
				return m, err
			}
			m.Runtime = rt
		default:
			d.skip(num, typ)
		}
	}
	return m, d.err
}

func (m *Family) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.Stamp)
	b = appendString(b, 2, m.ID)
	b = appendString(b, 3, m.Name)
	b = appendStringMap(b, 4, m.Meta)
	b = appendInt32(b, 5, m.Depth)
	b = appendStrings(b, 6, m.Proxies)
	b = appendStrings(b, 7, m.Parents)
	b = appendStrings(b, 8, m.ChildTasks)
	b = appendStrings(b, 9, m.ChildFamilies)
	b = appendString(b, 10, m.FirstParent)
	if m.Runtime != nil {
		b = appendMessage(b, 11, m.Runtime.Marshal())
	}
	return b
}

func UnmarshalFamily(b []byte) (*Family, error) {
	m := &Family{}
	d := &decoder{b: b}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Stamp = d.string()
		case 2:
			m.ID = d.string()
		case 3:
			m.Name = d.string()
		case 4:
			k, v, err := stringMapEntry(d.bytes())
			if err != nil {
				return m, err
			}
			if m.Meta == nil {
				m.Meta = map[string]string{}
			}
			m.Meta[k] = v
		case 5:
			m.Depth = d.int32()
		case 6:
			m.Proxies = append(m.Proxies, d.string())
		case 7:
			m.Parents = append(m.Parents, d.string())
		case 8:
			m.ChildTasks = append(m.ChildTasks, d.string())
		case 9:
			m.ChildFamilies = append(m.ChildFamilies, d.string())
		case 10:
			m.FirstParent = d.string()
		case 11:
			rt, err := UnmarshalRuntime(d.bytes())
			if err != nil {
				return m, err
			}
			m.Runtime = rt
		default:
			d.skip(num, typ)
		}
	}
	return m, d.err
}

func (m *TaskProxy) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.Stamp)
	b = appendString(b, 2, m.ID)
	b = appendString(b, 3, m.Task)
	b = appendOptString(b, 4, m.State)
	b = appendString(b, 5, m.CyclePoint)
	b = appendInt32(b, 6, m.Depth)
	b = appendOptInt32(b, 7, m.JobSubmits)
	for _, k := range sortedKeys(m.Outputs) {
		var entry []byte
		entry = appendString(entry, 1, k)
		entry = appendMessage(entry, 2, m.Outputs[k].Marshal())
		b = appendMessage(b, 8, entry)
	}
	b = appendStrings(b, 9, m.Namespace)
	for _, p := range m.Prerequisites {
		b = appendMessage(b, 10, p.Marshal())
	}
	b = appendStrings(b, 11, m.Jobs)
	b = appendString(b, 12, m.FirstParent)
	b = appendString(b, 13, m.Name)
	b = appendOptBool(b, 14, m.IsHeld)
	b = appendStrings(b, 15, m.Edges)
	b = appendStrings(b, 16, m.Ancestors)
	b = appendString(b, 17, m.FlowNums)
	b = appendTriggerMap(b, 18, m.ExternalTriggers)
	b = appendTriggerMap(b, 19, m.Xtriggers)
	b = appendOptBool(b, 20, m.IsQueued)
	b = appendOptBool(b, 21, m.IsRunahead)
	if m.Runtime != nil {
		b = appendMessage(b, 22, m.Runtime.Marshal())
	}
	b = appendOptInt32(b, 23, m.GraphDepth)
	return b
}

func UnmarshalTaskProxy(b []byte) (*TaskProxy, error) {
	m := &TaskProxy{}
	d := &decoder{b: b}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Stamp = d.string()
		case 2:
			m.ID = d.string()
		case 3:
			m.Task = d.string()
		case 4:
			m.State = String(d.string())
		case 5:
			m.CyclePoint = d.string()
		case 6:
			m.Depth = d.int32()
		case 7:
			m.JobSubmits = Int32(d.int32())
		case 8:
			k, out, err := outputMapEntry(d.bytes())
			if err != nil {
				return m, err
			}
			if m.Outputs == nil {
				m.Outputs = map[string]*Output{}
			}
			m.Outputs[k] = out
		case 9:
			m.Namespace = append(m.Namespace, d.string())
		case 10:
			p, err := UnmarshalPrerequisite(d.bytes())
			if err != nil {
				return m, err
			}
			m.Prerequisites = append(m.Prerequisites, p)
		case 11:
			m.Jobs = append(m.Jobs, d.string())
		case 12:
			m.FirstParent = d.string()
		case 13:
			m.Name = d.string()
		case 14:
			m.IsHeld = Bool(d.bool())
		case 15:
			m.Edges = append(m.Edges, d.string())
		case 16:
			m.Ancestors = append(m.Ancestors, d.string())
		case 17:
			m.FlowNums = d.string()
		case 18, 19:
			k, tr, err := triggerMapEntry(d.bytes())
			if err != nil {
				return m, err
			}
			target := &m.ExternalTriggers
			if num == 19 {
				target = &m.Xtriggers
			}
			if *target == nil {
				*target = map[string]*Trigger{}
			}
			(*target)[k] = tr
		case 20:
			m.IsQueued = Bool(d.bool())
		case 21:
			m.IsRunahead = Bool(d.bool())
		case 22:
			rt, err := UnmarshalRuntime(d.bytes())
			if err != nil {
				return m, err
			}
			m.Runtime = rt
		case 23:
			m.GraphDepth = Int32(d.int32())
		default:
			d.skip(num, typ)
		}
	}
	return m, d.err
}

func (m *FamilyProxy) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.Stamp)
	b = appendString(b, 2, m.ID)
	b = appendString(b, 3, m.CyclePoint)
	b = appendString(b, 4, m.Name)
	b = appendString(b, 5, m.Family)
	b = appendOptString(b, 6, m.State)
	b = appendInt32(b, 7, m.Depth)
	b = appendString(b, 8, m.FirstParent)
	b = appendStrings(b, 9, m.ChildTasks)
	b = appendStrings(b, 10, m.ChildFamilies)
	b = appendOptBool(b, 11, m.IsHeld)
	b = appendStrings(b, 12, m.Ancestors)
	b = appendStrings(b, 13, m.States)
	b = appendInt32Map(b, 14, m.StateTotals)
	b = appendOptInt32(b, 15, m.IsHeldTotal)
	b = appendOptBool(b, 16, m.IsQueued)
	b = appendOptInt32(b, 17, m.IsQueuedTotal)
	b = appendOptBool(b, 18, m.IsRunahead)
	b = appendOptInt32(b, 19, m.IsRunaheadTotal)
	if m.Runtime != nil {
		b = appendMessage(b, 20, m.Runtime.Marshal())
	}
	b = appendOptInt32(b, 21, m.GraphDepth)
	return b
}

func UnmarshalFamilyProxy(b []byte) (*FamilyProxy, error) {
	m := &FamilyProxy{}
	d := &decoder{b: b}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Stamp = d.string()
		case 2:
			m.ID = d.string()
		case 3:
			m.CyclePoint = d.string()
		case 4:
			m.Name = d.string()
		case 5:
			m.Family = d.string()
		case 6:
			m.State = String(d.string())
		case 7:
			m.Depth = d.int32()
		case 8:
			m.FirstParent = d.string()
		case 9:
			m.ChildTasks = append(m.ChildTasks, d.string())
		case 10:
			m.ChildFamilies = append(m.ChildFamilies, d.string())
		case 11:
			m.IsHeld = Bool(d.bool())
		case 12:
			m.Ancestors = append(m.Ancestors, d.string())
		case 13:
			m.States = append(m.States, d.string())
		case 14:
			k, v, err := int32MapEntry(d.bytes())
			if err != nil {
				return m, err
			}
			if m.StateTotals == nil {
				m.StateTotals = map[string]int32{}
			}
			m.StateTotals[k] = v
		case 15:
			m.IsHeldTotal = Int32(d.int32())
		case 16:
			m.IsQueued = Bool(d.bool())
		case 17:
			m.IsQueuedTotal = Int32(d.int32())
		case 18:
			m.IsRunahead = Bool(d.bool())
		case 19:
			m.IsRunaheadTotal = Int32(d.int32())
		case 20:
			rt, err := UnmarshalRuntime(d.bytes())
			if err != nil {
				return m, err
			}
			m.Runtime = rt
		case 21:
			m.GraphDepth = Int32(d.int32())
		default:
			d.skip(num, typ)
		}
	}
	return m, d.err
}

func (m *Job) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.Stamp)
	b = appendString(b, 2, m.ID)
	b = appendInt32(b, 3, m.SubmitNum)
	b = appendOptString(b, 4, m.State)
	b = appendString(b, 5, m.TaskProxy)
	b = appendFloat64(b, 6, m.SubmittedTime)
	b = appendFloat64(b, 7, m.StartedTime)
	b = appendFloat64(b, 8, m.FinishedTime)
	b = appendString(b, 9, m.JobID)
	b = appendString(b, 10, m.JobRunnerName)
	b = appendOptFloat64(b, 11, m.ExecutionTimeLimit)
	b = appendString(b, 12, m.Platform)
	b = appendString(b, 13, m.JobLogDir)
	b = appendString(b, 14, m.Name)
	b = appendString(b, 15, m.CyclePoint)
	b = appendStrings(b, 16, m.Messages)
	if m.Runtime != nil {
		b = appendMessage(b, 17, m.Runtime.Marshal())
	}
	return b
}

func UnmarshalJob(b []byte) (*Job, error) {
	m := &Job{}
	d := &decoder{b: b}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Stamp = d.string()
		case 2:
			m.ID = d.string()
		case 3:
			m.SubmitNum = d.int32()
		case 4:
			m.State = String(d.string())
		case 5:
			m.TaskProxy = d.string()
		case 6:
			m.SubmittedTime = d.float64()
		case 7:
			m.StartedTime = d.float64()
		case 8:
			m.FinishedTime = d.float64()
		case 9:
			m.JobID = d.string()
		case 10:
			m.JobRunnerName = d.string()
		case 11:
			m.ExecutionTimeLimit = Float64(d.float64())
		case 12:
			m.Platform = d.string()
		case 13:
			m.JobLogDir = d.string()
		case 14:
			m.Name = d.string()
		case 15:
			m.CyclePoint = d.string()
		case 16:
			m.Messages = append(m.Messages, d.string())
		case 17:
			rt, err := UnmarshalRuntime(d.bytes())
			if err != nil {
				return m, err
			}
			m.Runtime = rt
		default:
			d.skip(num, typ)
		}
	}
	return m, d.err
}

func (m *Edge) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, m.Stamp)
	b = appendString(b, 2, m.ID)
	b = appendString(b, 3, m.Source)
	b = appendString(b, 4, m.Target)
	b = appendBool(b, 5, m.Suicide)
	b = appendBool(b, 6, m.Cond)
	return b
}

func UnmarshalEdge(b []byte) (*Edge, error) {
	m := &Edge{}
	d := &decoder{b: b}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Stamp = d.string()
		case 2:
			m.ID = d.string()
		case 3:
			m.Source = d.string()
		case 4:
			m.Target = d.string()
		case 5:
			m.Suicide = d.bool()
		case 6:
			m.Cond = d.bool()
		default:
			d.skip(num, typ)
		}
	}
	return m, d.err
}

func outputMapEntry(body []byte) (string, *Output, error) {
	d := &decoder{b: body}
	var k string
	var v *Output
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			k = d.string()
		case 2:
			out, err := UnmarshalOutput(d.bytes())
			if err != nil {
				return k, nil, err
			}
			v = out
		default:
			d.skip(num, typ)
		}
	}
	if v == nil {
		v = &Output{}
	}
	return k, v, d.err
}

func triggerMapEntry(body []byte) (string, *Trigger, error) {
	d := &decoder{b: body}
	var k string
	var v *Trigger
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			k = d.string()
		case 2:
			tr, err := UnmarshalTrigger(d.bytes())
			if err != nil {
				return k, nil, err
			}
			v = tr
		default:
			d.skip(num, typ)
		}
	}
	if v == nil {
		v = &Trigger{}
	}
	return k, v, d.err
}
