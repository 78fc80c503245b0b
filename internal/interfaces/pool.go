package interfaces

import "github.com/ternarybob/cursus/internal/models"

// TaskPool supplies the set of active task instances and the release
// operations the main loop drives each tick.
type TaskPool interface {
	// GetTask returns the live instance for a point/name, or nil.
	GetTask(point, name string) *models.TaskInstance

	// GetTasks returns every live instance in the pool.
	GetTasks() []*models.TaskInstance

	// ReleaseRunaheadTasks moves tasks inside the runahead limit into the
	// main pool; reports whether anything moved.
	ReleaseRunaheadTasks() bool

	// ReleaseQueuedTasks dequeues ready tasks for submission; returns the
	// released instances.
	ReleaseQueuedTasks() []*models.TaskInstance

	// QueueTask marks a ready task as queued.
	QueueTask(itask *models.TaskInstance)

	// RemoveTask drops an instance from the pool.
	RemoveTask(itask *models.TaskInstance, reason string)

	// HoldPoint returns the current hold point ("" when unset).
	HoldPoint() string

	// IsHeld reports whether a point/name pair is in the hold set.
	IsHeld(point, name string) bool
}
