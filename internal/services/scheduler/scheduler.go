// -----------------------------------------------------------------------
// Scheduler main loop
//
// Single-threaded cooperative coordinator. All state changes happen on
// the loop goroutine; transport and cron threads only enqueue onto the
// FIFO queues drained here.
// -----------------------------------------------------------------------

package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cursus/internal/common"
	"github.com/ternarybob/cursus/internal/interfaces"
	"github.com/ternarybob/cursus/internal/models"
	"github.com/ternarybob/cursus/internal/services/broadcasts"
	"github.com/ternarybob/cursus/internal/services/config"
	"github.com/ternarybob/cursus/internal/services/datastore"
	"github.com/ternarybob/cursus/internal/services/pool"
	"github.com/ternarybob/cursus/internal/services/xtrigger"
)

// Main loop cadences.
const (
	IntervalMainLoop      = time.Second
	IntervalMainLoopQuick = 500 * time.Millisecond
	// tickDurationsSize bounds the profiling ring buffer.
	tickDurationsSize = 10
)

// Internal command names injected by cron plugins.
const (
	cmdAutoRestartCheck = "_auto_restart_check"
	cmdDBHealthCheck    = "_db_health_check"
)

// Scheduler drives the workflow.
type Scheduler struct {
	logger  arbor.ILogger
	appCfg  *common.Config
	cfg     *config.WorkflowConfig
	uuidStr string

	pool       *pool.Service
	store      *datastore.Service
	broadcasts *broadcasts.Service
	xtriggers  *xtrigger.Service
	db         interfaces.RunDatabase
	bus        interfaces.EventService
	publisher  interfaces.Publisher

	procPool    *ProcPool
	dispatcher  *eventDispatcher
	autoRestart *autoRestartPlanner
	cron        *cron.Cron

	commandQueue    chan models.Command
	messageQueue    chan models.TaskMessage
	extTriggerQueue chan models.ExtTrigger

	state         string
	isPaused      bool
	isStalled     bool
	stopMode      models.StopMode
	stopClockTime *time.Time
	reloadPending bool
	verbosity     string
	restarted     bool

	timers        map[string]*Timer
	tickDurations []time.Duration

	lateTasksNotified map[string]bool
	pollScheduled     map[string]bool

	mainLoopInterval time.Duration
	quickInterval    time.Duration
}

// New wires a scheduler from its collaborators.
func New(
	appCfg *common.Config,
	cfg *config.WorkflowConfig,
	taskPool *pool.Service,
	store *datastore.Service,
	broadcastMgr *broadcasts.Service,
	xtriggers *xtrigger.Service,
	db interfaces.RunDatabase,
	bus interfaces.EventService,
	publisher interfaces.Publisher,
	logger arbor.ILogger,
) *Scheduler {
	s := &Scheduler{
		logger:            logger,
		appCfg:            appCfg,
		cfg:               cfg,
		uuidStr:           uuid.New().String(),
		pool:              taskPool,
		store:             store,
		broadcasts:        broadcastMgr,
		xtriggers:         xtriggers,
		db:                db,
		bus:               bus,
		publisher:         publisher,
		procPool:          NewProcPool(appCfg.Scheduler.ProcessPoolSize, logger),
		cron:              cron.New(),
		commandQueue:      make(chan models.Command, 128),
		messageQueue:      make(chan models.TaskMessage, 1024),
		extTriggerQueue:   make(chan models.ExtTrigger, 128),
		state:             models.SchedulerStateInitializing,
		isPaused:          true,
		timers:            map[string]*Timer{},
		lateTasksNotified: map[string]bool{},
		pollScheduled:     map[string]bool{},
		mainLoopInterval:  common.Duration(appCfg.Scheduler.MainLoopInterval, IntervalMainLoop),
		quickInterval:     common.Duration(appCfg.Scheduler.QuickInterval, IntervalMainLoopQuick),
	}
	s.dispatcher = newEventDispatcher(bus, appCfg.Events.AbortOn, appCfg.Events.Handlers, logger)
	s.autoRestart = newAutoRestartPlanner(
		appCfg.Server.Host,
		func() (*common.AutoRestartConfig, error) { return &appCfg.AutoRestart, nil },
		logger,
	)
	s.initTimers()
	return s
}

// SetRestarted marks this run as a restart of a completed workflow,
// arming the restart timer.
func (s *Scheduler) SetRestarted(restarted bool) { s.restarted = restarted }

// UUID identifies this scheduler run.
func (s *Scheduler) UUID() string { return s.uuidStr }

// State returns the lifecycle state.
func (s *Scheduler) State() string { return s.state }

// Store exposes the data store for the server layer.
func (s *Scheduler) Store() *datastore.Service { return s.store }

// EnqueueCommand posts a command onto the FIFO command queue.
func (s *Scheduler) EnqueueCommand(cmd models.Command) error {
	select {
	case s.commandQueue <- cmd:
		return nil
	default:
		return fmt.Errorf("command queue full")
	}
}

// EnqueueMessage posts a task message.
func (s *Scheduler) EnqueueMessage(msg models.TaskMessage) {
	select {
	case s.messageQueue <- msg:
	default:
		s.logger.Warn().Msg("Task message queue full, message dropped")
	}
}

func (s *Scheduler) initTimers() {
	cfg := s.appCfg.Scheduler
	infoReset := func(msg string) { s.logger.Info().Msg(msg) }
	if d := common.Duration(cfg.WorkflowTimeout, 0); d > 0 {
		s.timers[TimerWorkflowTimeout] = NewTimer(TimerWorkflowTimeout, d, s.logger, infoReset)
	}
	if d := common.Duration(cfg.InactivityTimeout, 0); d > 0 {
		s.timers[TimerInactivityTimeout] = NewTimer(TimerInactivityTimeout, d, s.logger, nil)
	}
	if d := common.Duration(cfg.StallTimeout, 0); d > 0 {
		s.timers[TimerStallTimeout] = NewTimer(TimerStallTimeout, d, s.logger, nil)
	}
	if d := common.Duration(cfg.RestartTimeout, 0); d > 0 {
		s.timers[TimerRestartTimeout] = NewTimer(TimerRestartTimeout, d, s.logger, infoReset)
	}
}

// Start initializes the run: data store, initial task pool, periodic
// plugins and the startup event.
func (s *Scheduler) Start(ctx context.Context) error {
	s.state = models.SchedulerStateConfiguring
	if err := s.store.Initiate(false); err != nil {
		return fmt.Errorf("failed to initiate data store: %w", err)
	}
	s.state = models.SchedulerStateStarting
	s.store.DeltaWorkflowPorts(s.appCfg.Server.Port, s.appCfg.Server.Port)

	for _, itask := range s.pool.LoadInitialTasks() {
		s.activateTask(itask, false)
	}

	if interval := common.Duration(s.appCfg.AutoRestart.Interval, time.Minute); s.appCfg.AutoRestart.Enabled {
		spec := fmt.Sprintf("@every %s", interval)
		if _, err := s.cron.AddFunc(spec, func() {
			_ = s.EnqueueCommand(models.Command{Name: cmdAutoRestartCheck})
		}); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to schedule auto-restart planner")
		}
	}
	if _, err := s.cron.AddFunc("@every 5m", func() {
		_ = s.EnqueueCommand(models.Command{Name: cmdDBHealthCheck})
	}); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to schedule run database health check")
	}
	s.cron.Start()

	if t, ok := s.timers[TimerWorkflowTimeout]; ok {
		t.Reset()
	}
	if s.restarted && s.pool.Empty() {
		if t, ok := s.timers[TimerRestartTimeout]; ok {
			t.Reset()
		}
	}

	s.isPaused = false
	s.state = models.SchedulerStateRunning
	s.publishStatus()
	if err := s.dispatcher.fire(interfaces.EventStartup, nil); err != nil {
		return err
	}
	s.logger.Info().
		Str("workflow", s.cfg.Name).
		Str("uuid", s.uuidStr).
		Msg("Scheduler running")
	return nil
}

// Run executes the main loop until stop or cancellation.
func (s *Scheduler) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Str("stack", string(debug.Stack())).
				Msg("Uncaught exception in main loop")
			_ = s.dispatcher.fire(interfaces.EventAbort, r)
			err = fmt.Errorf("uncaught exception: %v", r)
		}
	}()

	if err := s.Start(ctx); err != nil {
		return s.handleLoopError(err)
	}

	for {
		select {
		case <-ctx.Done():
			// Cancelled at an await boundary: controlled shutdown.
			s.shutdown(ErrSchedulerStop)
			return nil
		default:
		}

		tickStart := time.Now()
		if err := s.tick(ctx); err != nil {
			return s.handleLoopError(err)
		}
		elapsed := time.Since(tickStart)
		s.recordTickDuration(elapsed)

		// Sleep selection: busy pool keeps the quick cadence.
		var sleep time.Duration
		switch {
		case s.procPool.IsBusy():
			sleep = 0
		case s.hasPendingWork():
			sleep = s.quickInterval - elapsed
		default:
			sleep = s.mainLoopInterval - elapsed
		}
		if sleep > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(sleep):
			}
		}
	}
}

func (s *Scheduler) handleLoopError(err error) error {
	switch e := err.(type) {
	case nil:
		return nil
	case *SchedulerError:
		s.shutdown(e)
		return e
	default:
		if err == ErrSchedulerStop {
			s.shutdown(nil)
			return nil
		}
		s.logger.Error().
			Err(err).
			Str("stack", string(debug.Stack())).
			Msg("Main loop failed")
		_ = s.dispatcher.fire(interfaces.EventAbort, err.Error())
		return err
	}
}

// tick runs one pass of the cooperative loop (§4.8).
func (s *Scheduler) tick(ctx context.Context) error {
	// 1. Pending reload.
	if s.reloadPending {
		if err := s.processReload(); err != nil {
			return err
		}
	}

	// 2. Drain the command queue.
	if err := s.processCommandQueue(); err != nil {
		return err
	}

	// 3. Release runahead tasks.
	if s.pool.ReleaseRunaheadTasks() {
		for _, itask := range s.pool.GetTasks() {
			s.store.DeltaTaskRunahead(itask)
		}
	}

	// 4. Tick the external process pool.
	s.procPool.Drain()

	// 5/6. Evaluate triggers on waiting tasks.
	s.processTriggers()

	// 7. Expire, release queued tasks (submission work).
	s.checkExpiredTasks()
	if !s.isPaused && s.stopMode == models.StopModeNone {
		for _, itask := range s.pool.ReleaseQueuedTasks() {
			s.store.DeltaTaskQueued(itask)
			s.submitTask(itask)
		}
	}

	// 8. Expire broadcasts below the pool's minimum point.
	if oldest := s.pool.OldestActivePoint(); oldest != "" {
		if s.broadcasts.Expire(oldest) > 0 {
			s.store.DeltaBroadcast()
		}
	}

	// 9. Late task check.
	s.checkLateTasks()

	// 10. Drain the task message queue.
	s.processMessageQueue()

	// 11. Drain the command queue again.
	if err := s.processCommandQueue(); err != nil {
		return err
	}

	// 12. Task event processing is folded into message handling above.

	// 13. Data store update.
	hadUpdates := s.store.Update()
	if hadUpdates {
		if t, ok := s.timers[TimerInactivityTimeout]; ok {
			t.Reset()
		}
		if s.isStalled {
			s.isStalled = false
			if t, ok := s.timers[TimerStallTimeout]; ok {
				t.Stop()
			}
		}
	}
	s.publishPending()

	// 14. Timers (the DB health check runs as a cron-queued command).
	if err := s.checkTimers(); err != nil {
		return err
	}

	// 15. Shutdown checks.
	if err := s.workflowShutdown(); err != nil {
		return err
	}

	// 17. Stall re-check.
	if !hadUpdates && s.stopMode == models.StopModeNone {
		if err := s.checkStall(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) hasPendingWork() bool {
	return len(s.commandQueue) > 0 || len(s.messageQueue) > 0 || len(s.extTriggerQueue) > 0
}

func (s *Scheduler) recordTickDuration(d time.Duration) {
	s.tickDurations = append(s.tickDurations, d)
	if len(s.tickDurations) > tickDurationsSize {
		s.tickDurations = s.tickDurations[1:]
	}
}

// TickDurations returns the bounded profile of recent loop passes.
func (s *Scheduler) TickDurations() []time.Duration {
	out := make([]time.Duration, len(s.tickDurations))
	copy(out, s.tickDurations)
	return out
}

// activateTask registers a pool instance with the data store and walks
// its graph window.
func (s *Scheduler) activateTask(itask *models.TaskInstance, isManualSubmit bool) {
	itask.Tokens = models.Tokens{
		User:     s.appCfg.Scheduler.WorkflowOwner,
		Workflow: s.cfg.Name,
		Cycle:    itask.Point,
		Task:     itask.Name,
	}
	if t, ok := s.timers[TimerRestartTimeout]; ok && t.Running() {
		// New activity after a restart of a completed workflow.
		t.Stop()
	}
	s.store.AddPoolNode(itask.Name, itask.Point)
	s.store.IncrementGraphWindow(
		itask.Tokens, itask.Point, itask.FlowNums, isManualSubmit, itask)
	if itask.IsRunahead {
		s.store.DeltaTaskRunahead(itask)
	}
	if itask.PrereqsSatisfied() && itask.XtriggersSatisfied() && itask.ExtTriggersSatisfied() &&
		itask.IsWaiting() && !itask.IsHeld && !itask.IsRunahead {
		s.pool.QueueTask(itask)
		s.store.DeltaTaskQueued(itask)
	}
}

// retireTask removes a finished task from the pool and the active set.
func (s *Scheduler) retireTask(itask *models.TaskInstance, reason string) {
	s.pool.RemoveTask(itask, reason)
	s.store.RemovePoolNode(itask.Name, itask.Point)
}

// processTriggers evaluates xtriggers and external triggers on waiting
// tasks and queues those that become ready.
func (s *Scheduler) processTriggers() {
	activeSigs := map[string]bool{}
	for _, itask := range s.pool.GetTasks() {
		if !itask.IsWaiting() || itask.IsQueued || itask.IsRunahead {
			continue
		}
		for sig := range itask.Xtriggers {
			activeSigs[sig] = true
		}
		for _, sig := range s.xtriggers.CheckXtriggers(itask) {
			s.store.DeltaTaskXtrigger(sig, true)
		}
		for _, label := range s.xtriggers.CheckExtTriggers(itask) {
			s.store.DeltaTaskExtTrigger(itask, label)
		}
		if itask.PrereqsSatisfied() && itask.XtriggersSatisfied() &&
			itask.ExtTriggersSatisfied() && !itask.IsHeld {
			s.pool.QueueTask(itask)
			s.store.DeltaTaskQueued(itask)
		}
	}
	s.xtriggers.Housekeep(activeSigs)
}

// checkExpiredTasks expires waiting tasks whose clock-expire offset has
// passed (datetime cycling only; integer points have no wall clock).
func (s *Scheduler) checkExpiredTasks() {
	now := time.Now()
	for _, itask := range s.pool.GetTasks() {
		if !itask.IsWaiting() || itask.IsQueued {
			continue
		}
		td, ok := s.cfg.TaskDefs[itask.Name]
		if !ok || td.ExpireOffset == "" {
			continue
		}
		offset, err := models.ParseISODuration(td.ExpireOffset)
		if err != nil {
			continue
		}
		pointTime, err := models.PointTime(itask.Point)
		if err != nil {
			continue
		}
		if now.After(offset.AddTo(pointTime)) {
			s.applyTaskState(itask, models.TaskStateExpired, "", now)
			s.retireTask(itask, "expired")
		}
	}
}

// checkLateTasks emits the late event once per never-active task whose
// late offset has passed.
func (s *Scheduler) checkLateTasks() {
	now := time.Now()
	for _, itask := range s.pool.GetTasks() {
		if !itask.IsWaiting() || itask.LateOffset <= 0 || itask.IsLate {
			continue
		}
		id := itask.Tokens.RelativeID()
		if s.lateTasksNotified[id] {
			continue
		}
		if now.After(itask.CreatedAt.Add(itask.LateOffset)) {
			itask.IsLate = true
			s.lateTasksNotified[id] = true
			s.logger.Warn().Str("task", id).Msg("Task is late")
			_ = s.dispatcher.fire(interfaces.EventLate, id)
		}
	}
}

// submitTask hands a released task to the process pool for submission.
func (s *Scheduler) submitTask(itask *models.TaskInstance) {
	itask.State = models.TaskStatePreparing
	s.store.DeltaTaskState(itask)
	itask.SubmitNum++
	submitNum := itask.SubmitNum
	name, point := itask.Name, itask.Point

	s.procPool.Submit(func() func() {
		// Simulated submission runtime; the callback applies state on
		// the main loop.
		return func() {
			now := time.Now()
			itask.State = models.TaskStateSubmitted
			s.store.DeltaTaskState(itask)
			s.store.InsertJob(name, point, models.TaskStateSubmitted, &interfaces.JobConf{
				SubmitNum:     submitNum,
				Platform:      "localhost",
				JobRunnerName: "background",
				JobID:         fmt.Sprintf("%d", now.UnixNano()),
			})
			jobTokens := itask.Tokens.Duplicate(point, name, fmt.Sprintf("%02d", submitNum))
			s.store.DeltaJobTime(jobTokens, "submitted", float64(now.Unix()))
			s.persistTaskState(itask)
			if s.db != nil {
				submitOK := 0
				_ = s.db.PutTaskJob(&interfaces.TaskJobRow{
					Cycle:         point,
					Name:          name,
					SubmitNum:     submitNum,
					TimeSubmit:    now.UTC().Format(time.RFC3339),
					SubmitStatus:  &submitOK,
					JobRunnerName: "background",
					PlatformName:  "localhost",
				})
			}
			// Job lifecycle messages arrive via the message queue like
			// any external job runtime.
			jobID := fmt.Sprintf("%s/%s/%02d", point, name, submitNum)
			s.EnqueueMessage(models.TaskMessage{
				JobID: jobID, EventTime: now, Severity: "INFO", Message: "started"})
			s.EnqueueMessage(models.TaskMessage{
				JobID: jobID, EventTime: now, Severity: "INFO", Message: "succeeded"})
		}
	})
}

// processMessageQueue drains job messages, applying state transitions.
// A reverse transition (stale message) schedules a poll instead.
func (s *Scheduler) processMessageQueue() {
	for {
		select {
		case msg := <-s.messageQueue:
			s.processTaskMessage(msg)
		default:
			return
		}
	}
}

func (s *Scheduler) processTaskMessage(msg models.TaskMessage) {
	ref, err := models.ParseTaskMessageID(msg.JobID)
	if err != nil {
		s.logger.Warn().Err(err).Str("job_id", msg.JobID).Msg("Unparseable task message id")
		return
	}
	itask := s.pool.GetTask(ref.Cycle, ref.Task)
	if itask == nil {
		s.logger.Debug().Str("job_id", msg.JobID).Msg("Message for unknown task")
		return
	}

	newState := ""
	switch msg.Message {
	case "started":
		newState = models.TaskStateRunning
	case "succeeded":
		newState = models.TaskStateSucceeded
	case "failed":
		newState = models.TaskStateFailed
	default:
		// Progress/output message: append to the job record.
		if ref.SubmitNum != "" {
			jobTokens := itask.Tokens.Duplicate(ref.Cycle, ref.Task, ref.SubmitNum)
			s.store.DeltaJobMsg(jobTokens, msg.Message)
		}
		return
	}

	if models.StateIndex(newState) < models.StateIndex(itask.State) {
		// Stale message would reverse the state: schedule a job poll.
		id := itask.Tokens.RelativeID()
		if !s.pollScheduled[id] {
			s.pollScheduled[id] = true
			s.logger.Warn().
				Str("task", id).
				Str("stale_state", newState).
				Str("state", itask.State).
				Msg("Stale job message, scheduling poll")
		}
		return
	}
	s.applyTaskState(itask, newState, ref.SubmitNum, msg.EventTime)
}

// applyTaskState transitions a task and handles completion effects.
func (s *Scheduler) applyTaskState(itask *models.TaskInstance, state, submitNum string, eventTime time.Time) {
	itask.State = state
	s.store.DeltaTaskState(itask)
	if submitNum != "" {
		jobTokens := itask.Tokens.Duplicate(itask.Point, itask.Name, submitNum)
		s.store.DeltaJobState(jobTokens, state)
		switch state {
		case models.TaskStateRunning:
			s.store.DeltaJobTime(jobTokens, "started", float64(eventTime.Unix()))
		case models.TaskStateSucceeded, models.TaskStateFailed:
			s.store.DeltaJobTime(jobTokens, "finished", float64(eventTime.Unix()))
		}
	}
	s.persistTaskState(itask)

	switch state {
	case models.TaskStateSucceeded:
		s.completeOutput(itask, "succeeded")
		s.retireTask(itask, "succeeded")
	case models.TaskStateFailed:
		s.completeOutput(itask, "failed")
		if s.appCfg.Scheduler.AbortOnTaskFailure {
			s.stopMode = models.StopModeAutoOnTaskFailure
		}
	}
}

// completeOutput satisfies an output and spawns/queues dependants.
func (s *Scheduler) completeOutput(itask *models.TaskInstance, output string) {
	if out, ok := itask.Outputs[output]; ok {
		out.Satisfied = true
		out.Time = time.Now()
		s.store.DeltaTaskOutput(itask, output)
	}
	for _, child := range s.pool.SatisfyDependants(itask, output) {
		if _, known := s.lateTasksNotified["seen/"+child.Tokens.RelativeID()]; !known {
			// First sighting: put the child in the window.
			s.lateTasksNotified["seen/"+child.Tokens.RelativeID()] = true
			s.activateTask(child, false)
		}
		s.store.DeltaTaskPrerequisite(child)
		if child.PrereqsSatisfied() && child.XtriggersSatisfied() &&
			child.ExtTriggersSatisfied() && child.IsWaiting() &&
			!child.IsHeld && !child.IsQueued && !child.IsRunahead {
			s.pool.QueueTask(child)
			s.store.DeltaTaskQueued(child)
		}
	}
}

func (s *Scheduler) persistTaskState(itask *models.TaskInstance) {
	if s.db == nil {
		return
	}
	_ = s.db.PutTaskState(&interfaces.TaskStateRow{
		Cycle:     itask.Point,
		Name:      itask.Name,
		FlowNums:  models.FormatFlowNums(itask.FlowNums),
		Status:    itask.State,
		SubmitNum: itask.SubmitNum,
	})
}

// checkTimers evaluates the workflow timers; timeouts may promote to a
// scheduler error via the abort-on configuration.
func (s *Scheduler) checkTimers() error {
	checks := []struct {
		name  string
		event interfaces.EventType
	}{
		{TimerWorkflowTimeout, interfaces.EventWorkflowTimeout},
		{TimerInactivityTimeout, interfaces.EventInactivityTimeout},
		{TimerStallTimeout, interfaces.EventStallTimeout},
		{TimerRestartTimeout, interfaces.EventRestartTimeout},
	}
	for _, check := range checks {
		t, ok := s.timers[check.name]
		if !ok || !t.TimedOut() {
			continue
		}
		if err := s.dispatcher.fire(check.event, nil); err != nil {
			return err
		}
		switch check.name {
		case TimerStallTimeout, TimerRestartTimeout:
			// A stalled or idle-restarted workflow shuts down cleanly.
			if s.stopMode == models.StopModeNone {
				s.stopMode = models.StopModeAuto
			}
		}
	}
	return nil
}

// checkStall detects that no task can make progress.
func (s *Scheduler) checkStall() error {
	if s.pool.Empty() || s.pool.HasActiveTasks() {
		return nil
	}
	for _, itask := range s.pool.GetTasks() {
		if itask.IsQueued {
			return nil
		}
		if itask.IsWaiting() && itask.PrereqsSatisfied() &&
			itask.XtriggersSatisfied() && itask.ExtTriggersSatisfied() {
			return nil
		}
	}
	if !s.isStalled {
		s.isStalled = true
		s.logger.Warn().Msg("Workflow stalled")
		if t, ok := s.timers[TimerStallTimeout]; ok {
			t.Reset()
		}
		s.publishStatus()
		if !s.dispatcher.hasFired(interfaces.EventStall) {
			return s.dispatcher.fire(interfaces.EventStall, nil)
		}
	}
	return nil
}

// publishStatus pushes a workflow-status-only batch.
func (s *Scheduler) publishStatus() {
	s.store.SetStatus(s.currentStatus())
	s.store.UpdateWorkflowStates()
	s.publishPending()
}

func (s *Scheduler) currentStatus() models.WorkflowStatus {
	return models.WorkflowStatus{
		State:      s.state,
		StopMode:   s.stopMode,
		StopPoint:  s.pool.StopPoint(),
		StopTask:   s.pool.StopTask(),
		HoldPoint:  s.pool.HoldPoint(),
		IsPaused:   s.isPaused,
		IsStalled:  s.isStalled,
		IsStopping: s.stopMode != models.StopModeNone || s.state == models.SchedulerStateStopping,
	}
}

// publishPending frames and hands the latest batch to the publisher.
func (s *Scheduler) publishPending() {
	if s.publisher == nil {
		return
	}
	batch := s.store.PublishDeltas()
	if batch == nil {
		return
	}
	frames := FrameDeltas(batch)
	if err := s.publisher.PublishFrames(frames); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to publish delta frames")
	}
}

// processReload re-initializes the data store in reloaded mode and
// replays DB-resident jobs.
func (s *Scheduler) processReload() error {
	s.reloadPending = false
	cfg, err := config.LoadWorkflowFile(s.appCfg.Scheduler.WorkflowFile)
	if err != nil {
		s.logger.Error().Err(err).Msg("Workflow reload failed")
		return &SchedulerError{Reason: fmt.Sprintf("fatal config reload: %v", err)}
	}
	s.cfg = cfg
	s.pool.SetConfig(cfg)
	s.store.SetConfig(cfg)
	if err := s.store.Initiate(true); err != nil {
		return &SchedulerError{Reason: fmt.Sprintf("data store reload: %v", err)}
	}
	for _, itask := range s.pool.GetTasks() {
		s.store.IncrementGraphWindow(
			itask.Tokens, itask.Point, itask.FlowNums, false, itask)
	}
	s.logger.Info().Msg("Workflow reloaded")
	return nil
}
