package schemas

// Marshal/Unmarshal pairs for the per-type delta messages and the batch.

func (m *TaskDeltas) Marshal() []byte {
	var b []byte
	b = appendFloat64(b, 1, m.Time)
	b = appendUint32(b, 2, m.Checksum)
	for _, e := range m.Added {
		b = appendMessage(b, 3, e.Marshal())
	}
	for _, e := range m.Updated {
		b = appendMessage(b, 4, e.Marshal())
	}
	b = appendStrings(b, 5, m.Pruned)
	b = appendBool(b, 6, m.Reloaded)
	return b
}

func UnmarshalTaskDeltas(b []byte) (*TaskDeltas, error) {
	m := &TaskDeltas{}
	d := &decoder{b: b}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Time = d.float64()
		case 2:
			m.Checksum = d.uint32()
		case 3, 4:
			e, err := UnmarshalTask(d.bytes())
			if err != nil {
				return m, err
			}
			if num == 3 {
				m.Added = append(m.Added, e)
			} else {
				m.Updated = append(m.Updated, e)
			}
		case 5:
			m.Pruned = append(m.Pruned, d.string())
		case 6:
			m.Reloaded = d.bool()
		default:
			d.skip(num, typ)
		}
	}
	return m, d.err
}

func (m *TaskProxyDeltas) Marshal() []byte {
	var b []byte
	b = appendFloat64(b, 1, m.Time)
	b = appendUint32(b, 2, m.Checksum)
	for _, e := range m.Added {
		b = appendMessage(b, 3, e.Marshal())
	}
	for _, e := range m.Updated {
		b = appendMessage(b, 4, e.Marshal())
	}
	b = appendStrings(b, 5, m.Pruned)
	b = appendBool(b, 6, m.Reloaded)
	return b
}

func UnmarshalTaskProxyDeltas(b []byte) (*TaskProxyDeltas, error) {
	m := &TaskProxyDeltas{}
	d := &decoder{b: b}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Time = d.float64()
		case 2:
			m.Checksum = d.uint32()
		case 3, 4:
			e, err := UnmarshalTaskProxy(d.bytes())
			if err != nil {
				return m, err
			}
			if num == 3 {
				m.Added = append(m.Added, e)
			} else {
				m.Updated = append(m.Updated, e)
			}
		case 5:
			m.Pruned = append(m.Pruned, d.string())
		case 6:
			m.Reloaded = d.bool()
		default:
			d.skip(num, typ)
		}
	}
	return m, d.err
}

func (m *FamilyDeltas) Marshal() []byte {
	var b []byte
	b = appendFloat64(b, 1, m.Time)
	b = appendUint32(b, 2, m.Checksum)
	for _, e := range m.Added {
		b = appendMessage(b, 3, e.Marshal())
	}
	for _, e := range m.Updated {
		b = appendMessage(b, 4, e.Marshal())
	}
	b = appendStrings(b, 5, m.Pruned)
	b = appendBool(b, 6, m.Reloaded)
	return b
}

func UnmarshalFamilyDeltas(b []byte) (*FamilyDeltas, error) {
	m := &FamilyDeltas{}
	d := &decoder{b: b}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Time = d.float64()
		case 2:
			m.Checksum = d.uint32()
		case 3, 4:
			e, err := UnmarshalFamily(d.bytes())
			if err != nil {
				return m, err
			}
			if num == 3 {
				m.Added = append(m.Added, e)
			} else {
				m.Updated = append(m.Updated, e)
			}
		case 5:
			m.Pruned = append(m.Pruned, d.string())
		case 6:
			m.Reloaded = d.bool()
		default:
			d.skip(num, typ)
		}
	}
	return m, d.err
}

func (m *FamilyProxyDeltas) Marshal() []byte {
	var b []byte
	b = appendFloat64(b, 1, m.Time)
	b = appendUint32(b, 2, m.Checksum)
	for _, e := range m.Added {
		b = appendMessage(b, 3, e.Marshal())
	}
	for _, e := range m.Updated {
		b = appendMessage(b, 4, e.Marshal())
	}
	b = appendStrings(b, 5, m.Pruned)
	b = appendBool(b, 6, m.Reloaded)
	return b
}

func UnmarshalFamilyProxyDeltas(b []byte) (*FamilyProxyDeltas, error) {
	m := &FamilyProxyDeltas{}
	d := &decoder{b: b}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Time = d.float64()
		case 2:
			m.Checksum = d.uint32()
		case 3, 4:
			e, err := UnmarshalFamilyProxy(d.bytes())
			if err != nil {
				return m, err
			}
			if num == 3 {
				m.Added = append(m.Added, e)
			} else {
				m.Updated = append(m.Updated, e)
			}
		case 5:
			m.Pruned = append(m.Pruned, d.string())
		case 6:
			m.Reloaded = d.bool()
		default:
			d.skip(num, typ)
		}
	}
	return m, d.err
}

func (m *JobDeltas) Marshal() []byte {
	var b []byte
	b = appendFloat64(b, 1, m.Time)
	b = appendUint32(b, 2, m.Checksum)
	for _, e := range m.Added {
		b = appendMessage(b, 3, e.Marshal())
	}
	for _, e := range m.Updated {
		b = appendMessage(b, 4, e.Marshal())
	}
	b = appendStrings(b, 5, m.Pruned)
	b = appendBool(b, 6, m.Reloaded)
	return b
}

func UnmarshalJobDeltas(b []byte) (*JobDeltas, error) {
	m := &JobDeltas{}
	d := &decoder{b: b}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Time = d.float64()
		case 2:
			m.Checksum = d.uint32()
		case 3, 4:
			e, err := UnmarshalJob(d.bytes())
			if err != nil {
				return m, err
			}
			if num == 3 {
				m.Added = append(m.Added, e)
			} else {
				m.Updated = append(m.Updated, e)
			}
		case 5:
			m.Pruned = append(m.Pruned, d.string())
		case 6:
			m.Reloaded = d.bool()
		default:
			d.skip(num, typ)
		}
	}
	return m, d.err
}

func (m *EdgeDeltas) Marshal() []byte {
	var b []byte
	b = appendFloat64(b, 1, m.Time)
	b = appendUint32(b, 2, m.Checksum)
	for _, e := range m.Added {
		b = appendMessage(b, 3, e.Marshal())
	}
	for _, e := range m.Updated {
		b = appendMessage(b, 4, e.Marshal())
	}
	b = appendStrings(b, 5, m.Pruned)
	b = appendBool(b, 6, m.Reloaded)
	return b
}

func UnmarshalEdgeDeltas(b []byte) (*EdgeDeltas, error) {
	m := &EdgeDeltas{}
	d := &decoder{b: b}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Time = d.float64()
		case 2:
			m.Checksum = d.uint32()
		case 3, 4:
			e, err := UnmarshalEdge(d.bytes())
			if err != nil {
				return m, err
			}
			if num == 3 {
				m.Added = append(m.Added, e)
			} else {
				m.Updated = append(m.Updated, e)
			}
		case 5:
			m.Pruned = append(m.Pruned, d.string())
		case 6:
			m.Reloaded = d.bool()
		default:
			d.skip(num, typ)
		}
	}
	return m, d.err
}

func (m *WorkflowDeltas) Marshal() []byte {
	var b []byte
	b = appendFloat64(b, 1, m.Time)
	if m.Added != nil {
		b = appendMessage(b, 2, m.Added.Marshal())
	}
	if m.Updated != nil {
		b = appendMessage(b, 3, m.Updated.Marshal())
	}
	b = appendBool(b, 4, m.Reloaded)
	b = appendBool(b, 5, m.Pruned)
	return b
}

func UnmarshalWorkflowDeltas(b []byte) (*WorkflowDeltas, error) {
	m := &WorkflowDeltas{}
	d := &decoder{b: b}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			m.Time = d.float64()
		case 2, 3:
			w, err := UnmarshalWorkflow(d.bytes())
			if err != nil {
				return m, err
			}
			if num == 2 {
				m.Added = w
			} else {
				m.Updated = w
			}
		case 4:
			m.Reloaded = d.bool()
		case 5:
			m.Pruned = d.bool()
		default:
			d.skip(num, typ)
		}
	}
	return m, d.err
}

func (m *AllDeltas) Marshal() []byte {
	var b []byte
	if m.Families != nil {
		b = appendMessage(b, 1, m.Families.Marshal())
	}
	if m.FamilyProxies != nil {
		b = appendMessage(b, 2, m.FamilyProxies.Marshal())
	}
	if m.Jobs != nil {
		b = appendMessage(b, 3, m.Jobs.Marshal())
	}
	if m.Tasks != nil {
		b = appendMessage(b, 4, m.Tasks.Marshal())
	}
	if m.TaskProxies != nil {
		b = appendMessage(b, 5, m.TaskProxies.Marshal())
	}
	if m.Edges != nil {
		b = appendMessage(b, 6, m.Edges.Marshal())
	}
	if m.Workflow != nil {
		b = appendMessage(b, 7, m.Workflow.Marshal())
	}
	return b
}

func UnmarshalAllDeltas(b []byte) (*AllDeltas, error) {
	m := &AllDeltas{}
	d := &decoder{b: b}
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		var err error
		switch num {
		case 1:
			m.Families, err = UnmarshalFamilyDeltas(d.bytes())
		case 2:
			m.FamilyProxies, err = UnmarshalFamilyProxyDeltas(d.bytes())
		case 3:
			m.Jobs, err = UnmarshalJobDeltas(d.bytes())
		case 4:
			m.Tasks, err = UnmarshalTaskDeltas(d.bytes())
		case 5:
			m.TaskProxies, err = UnmarshalTaskProxyDeltas(d.bytes())
		case 6:
			m.Edges, err = UnmarshalEdgeDeltas(d.bytes())
		case 7:
			m.Workflow, err = UnmarshalWorkflowDeltas(d.bytes())
		default:
			d.skip(num, typ)
		}
		if err != nil {
			return m, err
		}
	}
	return m, d.err
}
