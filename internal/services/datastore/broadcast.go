// -----------------------------------------------------------------------
// Broadcast re-application
// -----------------------------------------------------------------------

package datastore

import (
	"bytes"

	"github.com/ternarybob/cursus/internal/schemas"
)

// DeltaBroadcast recomputes every proxy's effective runtime with the
// active broadcasts and buffers an update only where the serialized
// bytes actually changed.
func (s *Service) DeltaBroadcast() {
	t := updateTime()
	wDelta := s.buffers.updWorkflow()
	wDelta.ID = s.workflowID
	wDelta.LastUpdated = t
	wDelta.Stamp = stamp(s.workflowID, t)
	if s.broadcasts != nil {
		wDelta.Broadcasts = s.broadcasts.Dump()
	}

	for id, node := range s.data.TaskProxies {
		s.broadcastNodeDelta(id, node.Name, node.CyclePoint, node.Namespace, node.Runtime, true)
	}
	for id, node := range s.buffers.taskProxiesAdded {
		s.broadcastNodeDelta(id, node.Name, node.CyclePoint, node.Namespace, node.Runtime, true)
	}
	for id, node := range s.data.FamilyProxies {
		s.broadcastNodeDelta(id, node.Name, node.CyclePoint, node.Ancestors, node.Runtime, false)
	}
	for id, node := range s.buffers.familyProxiesAdded {
		s.broadcastNodeDelta(id, node.Name, node.CyclePoint, node.Ancestors, node.Runtime, false)
	}
	s.updatesPending = true
}

func (s *Service) broadcastNodeDelta(
	id, name, point string,
	namespaces []string,
	oldRuntime *schemas.Runtime,
	isTask bool,
) {
	newRuntime := s.runtimeWithBroadcasts(point, namespaces, name)
	var oldBytes []byte
	if oldRuntime != nil {
		oldBytes = oldRuntime.Marshal()
	}
	if bytes.Equal(newRuntime.Marshal(), oldBytes) {
		return
	}
	if isTask {
		s.buffers.updTaskProxy(id).Runtime = newRuntime
	} else {
		s.buffers.updFamilyProxy(id).Runtime = newRuntime
	}
}
