// -----------------------------------------------------------------------
// Data store service
//
// Authoritative in-memory model of the workflow. All mutations are
// buffered as deltas, batched per tick, applied to the local store,
// checksummed and handed to the publisher bridge.
// -----------------------------------------------------------------------

package datastore

import (
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cursus/internal/interfaces"
	"github.com/ternarybob/cursus/internal/models"
	"github.com/ternarybob/cursus/internal/schemas"
	"github.com/ternarybob/cursus/internal/services/config"
)

// LatestStateTasksQueueSize bounds the per-state FIFO of recent task
// identities on the workflow record.
const LatestStateTasksQueueSize = 5

// APIVersion is the protocol version stamped on the workflow record.
const APIVersion = 5

type xtriggerRef struct {
	taskProxyID string
	label       string
}

// graphWalk is the bookkeeping record of one active task's n-window walk.
type graphWalk struct {
	// locations maps a path tag (e.g. "cpc") to the node ids found there.
	locations map[string]map[string]bool
	orphans   map[string]bool
	doneLocs  map[string]bool
	doneIDs   map[string]bool
	walkIDs   map[string]bool
	depths    map[int]map[string]bool
}

func newGraphWalk(originID string, nEdgeDistance int) *graphWalk {
	w := &graphWalk{
		locations: map[string]map[string]bool{},
		orphans:   map[string]bool{},
		doneLocs:  map[string]bool{},
		doneIDs:   map[string]bool{},
		walkIDs:   map[string]bool{originID: true},
		depths:    map[int]map[string]bool{},
	}
	for depth := 1; depth <= nEdgeDistance; depth++ {
		w.depths[depth] = map[string]bool{}
	}
	return w
}

// Options configure a data store service.
type Options struct {
	Owner          string
	WorkflowName   string
	Host           string
	Port           int
	PubPort        int
	RuntimeVersion string
	NEdgeDistance  int
}

// Service implements interfaces.DataStore.
var _ interfaces.DataStore = (*Service)(nil)

type Service struct {
	logger arbor.ILogger
	cfg    *config.WorkflowConfig
	opts   Options

	// id is the workflow-level token set all entity ids derive from.
	id         models.Tokens
	workflowID string

	data    *schemas.Store
	buffers *deltaBuffers

	nEdgeDistance     int
	nextNEdgeDistance *int

	updatesPending         bool
	updatesPendingFollowOn bool
	stateUpdateFollowOn    bool
	updateWindowDepths     bool

	// Active pool and window bookkeeping.
	allTaskPool          map[string]bool
	nWindowNodes         map[string]map[string]bool
	nWindowEdges         map[string]bool
	nWindowWalks         map[string]*graphWalk
	nWindowCompleted     map[string]bool
	nWindowDepths        map[int]map[string]bool
	allNWindowNodes      map[string]bool
	pruneTriggerNodes    map[string]map[string]bool
	pruneFlaggedNodes    map[string]bool
	prunedTaskProxies    map[string]bool
	familyPrunedIDs      map[string]bool
	stateUpdateFamilies  map[string]bool
	updatedStateFamilies map[string]bool

	xtriggerTasks map[string][]xtriggerRef

	// pendingHistory holds non-active proxies awaiting deferred DB
	// history, batched on the next update tick.
	pendingHistory map[string]bool

	latestStateTasks map[string][]string

	status       models.WorkflowStatus
	publishBatch *schemas.AllDeltas

	pool       interfaces.TaskPool
	db         interfaces.RunDatabase
	broadcasts interfaces.BroadcastManager
}

// NewService creates the data store for one scheduler instance.
func NewService(
	cfg *config.WorkflowConfig,
	opts Options,
	pool interfaces.TaskPool,
	db interfaces.RunDatabase,
	broadcasts interfaces.BroadcastManager,
	logger arbor.ILogger,
) *Service {
	if opts.NEdgeDistance < 0 {
		opts.NEdgeDistance = 1
	}
	id := models.Tokens{User: opts.Owner, Workflow: opts.WorkflowName}
	s := &Service{
		logger:               logger,
		cfg:                  cfg,
		opts:                 opts,
		id:                   id,
		workflowID:           id.ID(),
		data:                 schemas.NewStore(),
		buffers:              newDeltaBuffers(),
		nEdgeDistance:        opts.NEdgeDistance,
		allTaskPool:          map[string]bool{},
		nWindowNodes:         map[string]map[string]bool{},
		nWindowEdges:         map[string]bool{},
		nWindowWalks:         map[string]*graphWalk{},
		nWindowCompleted:     map[string]bool{},
		nWindowDepths:        map[int]map[string]bool{},
		allNWindowNodes:      map[string]bool{},
		pruneTriggerNodes:    map[string]map[string]bool{},
		pruneFlaggedNodes:    map[string]bool{},
		prunedTaskProxies:    map[string]bool{},
		familyPrunedIDs:      map[string]bool{},
		stateUpdateFamilies:  map[string]bool{},
		updatedStateFamilies: map[string]bool{},
		xtriggerTasks:        map[string][]xtriggerRef{},
		pendingHistory:       map[string]bool{},
		latestStateTasks:     map[string][]string{},
		pool:                 pool,
		db:                   db,
		broadcasts:           broadcasts,
	}
	return s
}

// SetConfig swaps the compiled workflow on reload.
func (s *Service) SetConfig(cfg *config.WorkflowConfig) { s.cfg = cfg }

// SetStatus updates the workflow status summary used by the next
// workflow-record roll-up.
func (s *Service) SetStatus(status models.WorkflowStatus) { s.status = status }

// WorkflowID returns the canonical workflow id.
func (s *Service) WorkflowID() string { return s.workflowID }

// Store exposes the applied store for the resolver layer and tests.
func (s *Service) Store() *schemas.Store { return s.data }

func updateTime() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

func stamp(id string, t float64) string {
	return fmt.Sprintf("%s@%f", id, t)
}

// definitionID returns the definition-space id for a namespace.
func (s *Service) definitionID(name string) string {
	return s.id.Definition(name)
}

// Initiate builds definitions and the workflow record, pushes the first
// batch, then clears the buffers.
func (s *Service) Initiate(reloaded bool) error {
	if reloaded {
		// Reload keeps live proxies; definitions are regenerated.
		s.buffers.clear()
		s.publishBatch = nil
	}
	s.generateDefinitionElements(reloaded)
	s.updatesPending = true
	s.batchApplyPublish(reloaded)
	return nil
}

// generateDefinitionElements creates the workflow record and every task
// and family definition from the compiled config.
func (s *Service) generateDefinitionElements(reloaded bool) {
	t := updateTime()
	w := &schemas.Workflow{
		ID:             s.workflowID,
		Stamp:          stamp(s.workflowID, t),
		Name:           s.opts.WorkflowName,
		Owner:          s.opts.Owner,
		Host:           s.opts.Host,
		Port:           int32(s.opts.Port),
		PubPort:        int32(s.opts.PubPort),
		APIVersion:     APIVersion,
		RuntimeVersion: s.opts.RuntimeVersion,
		Status:         models.SchedulerStatePaused,
		StatusMsg:      models.SchedulerStatePaused,
		CyclingMode:    s.cfg.CyclingMode,
		RunMode:        s.cfg.RunMode,
		Meta:           s.cfg.Meta,
		NsDefOrder:     s.cfg.NsDefOrder,
		TreeDepth:      int32(s.cfg.TreeDepth()),
		NEdgeDistance:  int32(s.nEdgeDistance),
		TimeZoneInfo:   localTimeZoneInfo(),
		LastUpdated:    t,
	}
	if reloaded {
		w.Reloaded = schemas.Bool(true)
	}

	for name, td := range s.cfg.TaskDefs {
		id := s.definitionID(name)
		ancestors := s.cfg.FirstParentAncestors(name)
		task := &schemas.Task{
			ID:              id,
			Stamp:           stamp(id, t),
			Name:            name,
			Meta:            td.Meta,
			MeanElapsedTime: td.MeanElapsedTime,
			Depth:           int32(td.Depth),
			FirstParent:     s.definitionID(ancestors[0]),
			Runtime:         td.Runtime.Clone(),
		}
		task.Namespace = append([]string{name}, ancestors...)
		for _, p := range td.Parents {
			task.Parents = append(task.Parents, s.definitionID(p))
		}
		s.buffers.tasksAdded[id] = task
		w.Tasks = append(w.Tasks, id)
	}

	for name, fd := range s.cfg.Families {
		id := s.definitionID(name)
		family := &schemas.Family{
			ID:      id,
			Stamp:   stamp(id, t),
			Name:    name,
			Meta:    fd.Meta,
			Depth:   int32(fd.Depth),
			Runtime: fd.Runtime.Clone(),
		}
		if name != config.RootFamily {
			ancestors := s.cfg.FirstParentAncestors(name)
			family.FirstParent = s.definitionID(ancestors[0])
			for _, p := range fd.Parents {
				family.Parents = append(family.Parents, s.definitionID(p))
			}
		}
		for _, ct := range fd.ChildTasks {
			family.ChildTasks = append(family.ChildTasks, s.definitionID(ct))
		}
		for _, cf := range fd.ChildFamilies {
			family.ChildFamilies = append(family.ChildFamilies, s.definitionID(cf))
		}
		s.buffers.familiesAdded[id] = family
		w.Families = append(w.Families, id)
	}

	sort.Strings(w.Tasks)
	sort.Strings(w.Families)
	s.buffers.workflowAdded = w
}

// SetGraphWindowExtent queues a walk-radius change, applied at the top
// of the next update cycle via a full rewalk. Setting the current value
// is a no-op.
func (s *Service) SetGraphWindowExtent(n int) {
	if n < 0 || n == s.nEdgeDistance {
		return
	}
	v := n
	s.nextNEdgeDistance = &v
	s.updatesPending = true
}

// Update runs one batch cycle; reports whether a batch was published.
func (s *Service) Update() bool {
	if s.nextNEdgeDistance != nil {
		s.nEdgeDistance = *s.nextNEdgeDistance
		s.windowResizeRewalk()
		s.nextNEdgeDistance = nil
	}

	s.applyTaskProxyDBHistory()

	s.updatesPendingFollowOn = false
	s.pruneDataStore()

	if s.updateWindowDepths {
		s.windowDepthFinder()
	}

	published := false
	if s.updatesPending {
		s.updateFamilyProxies()
		s.updateWorkflow(false)
		s.prunePrunedUpdatedNodes()
		s.batchApplyPublish(false)
		published = true
	}

	s.updatesPending = s.updatesPendingFollowOn
	return published
}

// UpdateWorkflowStates pushes a workflow-status-only batch outside the
// regular tick, e.g. on pause/resume and at shutdown.
func (s *Service) UpdateWorkflowStates() {
	s.updateWorkflow(false)
	s.batchApplyPublish(false)
}

// batchApplyPublish gathers the buffered deltas, applies them to the
// store, computes per-type checksums and retains the publishable batch.
func (s *Service) batchApplyPublish(reloaded bool) {
	batch := s.batchDeltas(reloaded)
	if batch == nil {
		return
	}
	if missed := s.data.Apply(batch); len(missed) > 0 {
		// Drift miss: skipped, the checksum mismatch lets subscribers
		// request a snapshot.
		s.logger.Debug().
			Strs("ids", missed).
			Msg("Dropped updates for unknown store ids")
	}
	s.applyChecksums(batch)
	s.publishBatch = batch
	s.buffers.clear()
}

// batchDeltas assembles the per-type delta messages from the buffers.
func (s *Service) batchDeltas(reloaded bool) *schemas.AllDeltas {
	if s.buffers.empty() {
		return nil
	}
	t := updateTime()
	batch := &schemas.AllDeltas{}
	b := s.buffers

	if len(b.tasksAdded) > 0 || len(b.tasksUpdated) > 0 || len(b.tasksPruned) > 0 || reloaded {
		d := &schemas.TaskDeltas{Time: t, Reloaded: reloaded}
		for _, id := range sortedIDs(b.tasksAdded) {
			d.Added = append(d.Added, b.tasksAdded[id])
		}
		for _, id := range sortedIDs(b.tasksUpdated) {
			d.Updated = append(d.Updated, b.tasksUpdated[id])
		}
		d.Pruned = append(d.Pruned, b.tasksPruned...)
		batch.Tasks = d
	}
	if len(b.taskProxiesAdded) > 0 || len(b.taskProxiesUpdated) > 0 || len(b.taskProxiesPruned) > 0 || reloaded {
		d := &schemas.TaskProxyDeltas{Time: t, Reloaded: reloaded}
		for _, id := range sortedIDs(b.taskProxiesAdded) {
			d.Added = append(d.Added, b.taskProxiesAdded[id])
		}
		for _, id := range sortedIDs(b.taskProxiesUpdated) {
			d.Updated = append(d.Updated, b.taskProxiesUpdated[id])
		}
		d.Pruned = append(d.Pruned, b.taskProxiesPruned...)
		batch.TaskProxies = d
	}
	if len(b.familiesAdded) > 0 || len(b.familiesUpdated) > 0 || len(b.familiesPruned) > 0 || reloaded {
		d := &schemas.FamilyDeltas{Time: t, Reloaded: reloaded}
		for _, id := range sortedIDs(b.familiesAdded) {
			d.Added = append(d.Added, b.familiesAdded[id])
		}
		for _, id := range sortedIDs(b.familiesUpdated) {
			d.Updated = append(d.Updated, b.familiesUpdated[id])
		}
		d.Pruned = append(d.Pruned, b.familiesPruned...)
		batch.Families = d
	}
	if len(b.familyProxiesAdded) > 0 || len(b.familyProxiesUpdated) > 0 || len(b.familyProxiesPruned) > 0 || reloaded {
		d := &schemas.FamilyProxyDeltas{Time: t, Reloaded: reloaded}
		for _, id := range sortedIDs(b.familyProxiesAdded) {
			d.Added = append(d.Added, b.familyProxiesAdded[id])
		}
		for _, id := range sortedIDs(b.familyProxiesUpdated) {
			d.Updated = append(d.Updated, b.familyProxiesUpdated[id])
		}
		d.Pruned = append(d.Pruned, b.familyProxiesPruned...)
		batch.FamilyProxies = d
	}
	if len(b.jobsAdded) > 0 || len(b.jobsUpdated) > 0 || len(b.jobsPruned) > 0 || reloaded {
		d := &schemas.JobDeltas{Time: t, Reloaded: reloaded}
		for _, id := range sortedIDs(b.jobsAdded) {
			d.Added = append(d.Added, b.jobsAdded[id])
		}
		for _, id := range sortedIDs(b.jobsUpdated) {
			d.Updated = append(d.Updated, b.jobsUpdated[id])
		}
		d.Pruned = append(d.Pruned, b.jobsPruned...)
		batch.Jobs = d
	}
	if len(b.edgesAdded) > 0 || len(b.edgesUpdated) > 0 || len(b.edgesPruned) > 0 || reloaded {
		d := &schemas.EdgeDeltas{Time: t, Reloaded: reloaded}
		for _, id := range sortedIDs(b.edgesAdded) {
			d.Added = append(d.Added, b.edgesAdded[id])
		}
		for _, id := range sortedIDs(b.edgesUpdated) {
			d.Updated = append(d.Updated, b.edgesUpdated[id])
		}
		d.Pruned = append(d.Pruned, b.edgesPruned...)
		batch.Edges = d
	}
	if b.workflowAdded != nil || b.workflowUpdated != nil || b.workflowPruned || reloaded {
		d := &schemas.WorkflowDeltas{Time: t, Reloaded: reloaded, Pruned: b.workflowPruned}
		if b.workflowAdded != nil {
			d.Added = b.workflowAdded
		}
		if b.workflowUpdated != nil {
			b.workflowUpdated.Stamp = stamp(s.workflowID, t)
			b.workflowUpdated.LastUpdated = t
			d.Updated = b.workflowUpdated
		}
		batch.Workflow = d
	}
	return batch
}

// applyChecksums stamps each repeated-type delta with the Adler-32 of
// the applied store's stable ids for drift detection.
func (s *Service) applyChecksums(batch *schemas.AllDeltas) {
	if batch.Tasks != nil {
		batch.Tasks.Checksum = schemas.GenerateChecksum(s.data.Stamps(schemas.TasksType))
	}
	if batch.TaskProxies != nil {
		batch.TaskProxies.Checksum = schemas.GenerateChecksum(s.data.Stamps(schemas.TaskProxiesType))
	}
	if batch.Families != nil {
		batch.Families.Checksum = schemas.GenerateChecksum(s.data.Stamps(schemas.FamiliesType))
	}
	if batch.FamilyProxies != nil {
		batch.FamilyProxies.Checksum = schemas.GenerateChecksum(s.data.Stamps(schemas.FamilyProxiesType))
	}
	if batch.Jobs != nil {
		batch.Jobs.Checksum = schemas.GenerateChecksum(s.data.Stamps(schemas.JobsType))
	}
	if batch.Edges != nil {
		batch.Edges.Checksum = schemas.GenerateChecksum(s.data.Stamps(schemas.EdgesType))
	}
}

// PublishDeltas returns the most recent published batch, or nil.
func (s *Service) PublishDeltas() *schemas.AllDeltas {
	batch := s.publishBatch
	s.publishBatch = nil
	return batch
}

// EntireSnapshot frames the full applied store as a single batch, for
// new subscribers and restart.
func (s *Service) EntireSnapshot() *schemas.AllDeltas {
	t := updateTime()
	batch := &schemas.AllDeltas{
		Workflow: &schemas.WorkflowDeltas{Time: t, Added: s.data.Workflow.Clone()},
		Tasks:    &schemas.TaskDeltas{Time: t},
		TaskProxies: &schemas.TaskProxyDeltas{
			Time: t,
		},
		Families:      &schemas.FamilyDeltas{Time: t},
		FamilyProxies: &schemas.FamilyProxyDeltas{Time: t},
		Jobs:          &schemas.JobDeltas{Time: t},
		Edges:         &schemas.EdgeDeltas{Time: t},
	}
	for _, id := range sortedIDs(s.data.Tasks) {
		batch.Tasks.Added = append(batch.Tasks.Added, s.data.Tasks[id].Clone())
	}
	for _, id := range sortedIDs(s.data.TaskProxies) {
		batch.TaskProxies.Added = append(batch.TaskProxies.Added, s.data.TaskProxies[id].Clone())
	}
	for _, id := range sortedIDs(s.data.Families) {
		batch.Families.Added = append(batch.Families.Added, s.data.Families[id].Clone())
	}
	for _, id := range sortedIDs(s.data.FamilyProxies) {
		batch.FamilyProxies.Added = append(batch.FamilyProxies.Added, s.data.FamilyProxies[id].Clone())
	}
	for _, id := range sortedIDs(s.data.Jobs) {
		batch.Jobs.Added = append(batch.Jobs.Added, s.data.Jobs[id].Clone())
	}
	for _, id := range sortedIDs(s.data.Edges) {
		batch.Edges.Added = append(batch.Edges.Added, s.data.Edges[id].Clone())
	}
	s.applyChecksums(batch)
	return batch
}

// storeTaskProxy finds a task proxy in the applied store or the added
// buffer; returns nil when unknown.
func (s *Service) storeTaskProxy(id string) *schemas.TaskProxy {
	if tp, ok := s.data.TaskProxies[id]; ok {
		return tp
	}
	if tp, ok := s.buffers.taskProxiesAdded[id]; ok {
		return tp
	}
	return nil
}

// storeFamilyProxy finds a family proxy in the applied store or buffer.
func (s *Service) storeFamilyProxy(id string) *schemas.FamilyProxy {
	if fp, ok := s.data.FamilyProxies[id]; ok {
		return fp
	}
	if fp, ok := s.buffers.familyProxiesAdded[id]; ok {
		return fp
	}
	return nil
}

func sortedIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func localTimeZoneInfo() *schemas.TimeZoneInfo {
	_, offset := time.Now().Zone()
	return &schemas.TimeZoneInfo{
		Hours:          int32(offset / 3600),
		Minutes:        int32((offset % 3600) / 60),
		StringBasic:    time.Now().Format("-0700"),
		StringExtended: time.Now().Format("-07:00"),
	}
}
