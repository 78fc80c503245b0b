package interfaces

import (
	"github.com/ternarybob/cursus/internal/models"
	"github.com/ternarybob/cursus/internal/schemas"
)

// JobConf describes one job submission for insertion into the store.
type JobConf struct {
	SubmitNum          int
	Platform           string
	JobRunnerName      string
	JobID              string
	ExecutionTimeLimit float64
	JobLogDir          string
	Runtime            *schemas.Runtime
}

// DataStore is the authoritative incremental model of the workflow.
type DataStore interface {
	// Initiate builds definitions and the workflow record and pushes the
	// first batch.
	Initiate(reloaded bool) error

	// IncrementGraphWindow extends the n-window walk around a newly
	// active task.
	IncrementGraphWindow(source models.Tokens, point string, flowNums []int64, isManualSubmit bool, itask *models.TaskInstance)

	// AddPoolNode and RemovePoolNode maintain the active set.
	AddPoolNode(name, point string)
	RemovePoolNode(name, point string)

	// SetGraphWindowExtent queues a walk-radius change for the next tick.
	SetGraphWindowExtent(n int)

	// InsertJob adds a job entity from a live submission.
	InsertJob(name, point, status string, conf *JobConf)

	// Per-field delta operations on task proxies.
	DeltaTaskState(itask *models.TaskInstance)
	DeltaTaskHeld(name, point string, held bool)
	DeltaTaskQueued(itask *models.TaskInstance)
	DeltaTaskRunahead(itask *models.TaskInstance)
	DeltaTaskFlowNums(itask *models.TaskInstance)
	DeltaTaskOutput(itask *models.TaskInstance, label string)
	DeltaTaskOutputs(itask *models.TaskInstance)
	DeltaTaskPrerequisite(itask *models.TaskInstance)
	DeltaTaskExtTrigger(itask *models.TaskInstance, label string)
	DeltaTaskXtrigger(sig string, satisfied bool)
	DeltaFromTaskProxy(itask *models.TaskInstance)

	// Per-field delta operations on jobs.
	DeltaJobMsg(tokens models.Tokens, msg string)
	DeltaJobAttr(tokens models.Tokens, attr, value string)
	DeltaJobState(tokens models.Tokens, state string)
	DeltaJobTime(tokens models.Tokens, event string, t float64)

	// DeltaBroadcast re-applies broadcast overlays to every proxy runtime.
	DeltaBroadcast()

	// Update runs the per-tick batch: resize, prune, roll-up, batch,
	// apply, checksum, publish. Returns true if a batch was published.
	Update() bool

	// UpdateWorkflowStates pushes a workflow-status-only batch.
	UpdateWorkflowStates()

	// EntireSnapshot frames the full store for new subscribers.
	EntireSnapshot() *schemas.AllDeltas

	// PublishDeltas returns the most recent published batch, or nil.
	PublishDeltas() *schemas.AllDeltas
}
