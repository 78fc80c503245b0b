// -----------------------------------------------------------------------
// Publish framing: (topic, payload) pairs per delta batch
// -----------------------------------------------------------------------

package scheduler

import "github.com/ternarybob/cursus/internal/schemas"

// FrameDeltas serializes a batch into per-topic frames plus the "all"
// union frame.
func FrameDeltas(batch *schemas.AllDeltas) [][2][]byte {
	var frames [][2][]byte
	add := func(topic string, payload []byte) {
		frames = append(frames, [2][]byte{[]byte(topic), payload})
	}
	if batch.Workflow != nil {
		add(schemas.WorkflowType, batch.Workflow.Marshal())
	}
	if batch.Tasks != nil {
		add(schemas.TasksType, batch.Tasks.Marshal())
	}
	if batch.TaskProxies != nil {
		add(schemas.TaskProxiesType, batch.TaskProxies.Marshal())
	}
	if batch.Families != nil {
		add(schemas.FamiliesType, batch.Families.Marshal())
	}
	if batch.FamilyProxies != nil {
		add(schemas.FamilyProxiesType, batch.FamilyProxies.Marshal())
	}
	if batch.Jobs != nil {
		add(schemas.JobsType, batch.Jobs.Marshal())
	}
	if batch.Edges != nil {
		add(schemas.EdgesType, batch.Edges.Marshal())
	}
	add(schemas.AllType, batch.Marshal())
	return frames
}
