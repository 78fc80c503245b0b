package interfaces

import "github.com/ternarybob/cursus/internal/schemas"

// BroadcastManager overlays runtime settings onto matching proxies.
type BroadcastManager interface {
	// Put registers overrides for a (point, namespace) pair; "*" matches
	// every cycle point.
	Put(point string, namespaces []string, settings map[string]string) error

	// ApplyBroadcast overlays matching settings onto a runtime copy;
	// reports whether anything changed.
	ApplyBroadcast(point string, namespaces []string, runtime *schemas.Runtime) bool

	// Expire drops broadcasts for points before the given one; returns
	// how many were dropped.
	Expire(oldestPoint string) int

	// Dump serializes the active broadcasts for the workflow record.
	Dump() string
}
