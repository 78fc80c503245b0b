// -----------------------------------------------------------------------
// Ghost task/family proxy generation and job insertion
// -----------------------------------------------------------------------

package datastore

import (
	"fmt"
	"path/filepath"

	"github.com/ternarybob/cursus/internal/interfaces"
	"github.com/ternarybob/cursus/internal/models"
	"github.com/ternarybob/cursus/internal/schemas"
	"github.com/ternarybob/cursus/internal/services/config"
)

// jobStatusSet lists the states a job entity may carry.
var jobStatusSet = map[string]bool{
	models.TaskStateSubmitted:    true,
	models.TaskStateSubmitFailed: true,
	models.TaskStateRunning:      true,
	models.TaskStateSucceeded:    true,
	models.TaskStateFailed:       true,
}

// generateGhostTask creates a task-point element populated with static
// data. Active proxies are filled from their live instance immediately;
// other window nodes defer DB history to the next update tick.
func (s *Service) generateGhostTask(
	tokens models.Tokens,
	point string,
	flowNums []int64,
	isParent bool,
	itask *models.TaskInstance,
	nDepth int,
	replaceExisting bool,
) {
	tpID := tokens.ID()
	if s.storeTaskProxy(tpID) != nil {
		if replaceExisting && itask != nil {
			s.DeltaFromTaskProxy(itask)
		}
		return
	}

	name := tokens.Task
	tID := s.definitionID(name)

	if itask == nil && s.pool != nil {
		itask = s.pool.GetTask(point, name)
	}

	isOrphan := false
	if _, ok := s.cfg.TaskDefs[name]; !ok {
		isOrphan = true
		s.generateOrphanTask(name)
	}

	taskDef, ok := s.data.Tasks[tID]
	if !ok {
		taskDef, ok = s.buffers.tasksAdded[tID]
		if !ok {
			// Task removed from the workflow definition.
			return
		}
	}

	t := updateTime()
	isHeld := false
	if s.pool != nil {
		isHeld = s.pool.IsHeld(point, name)
	}
	tproxy := &schemas.TaskProxy{
		Stamp:      stamp(tpID, t),
		ID:         tpID,
		Task:       tID,
		CyclePoint: point,
		IsHeld:     schemas.Bool(isHeld),
		Depth:      taskDef.Depth,
		GraphDepth: schemas.Int32(int32(nDepth)),
		Name:       name,
		Namespace:  append([]string{}, taskDef.Namespace...),
	}
	s.allNWindowNodes[tpID] = true
	if s.nWindowDepths[nDepth] == nil {
		s.nWindowDepths[nDepth] = map[string]bool{}
	}
	s.nWindowDepths[nDepth][tpID] = true

	if isOrphan {
		tproxy.Ancestors = []string{s.id.Duplicate(point, config.RootFamily, "").ID()}
	} else {
		for _, aName := range s.cfg.FirstParentAncestors(name) {
			tproxy.Ancestors = append(
				tproxy.Ancestors, s.id.Duplicate(point, aName, "").ID())
		}
	}
	tproxy.FirstParent = tproxy.Ancestors[0]

	s.buffers.taskProxiesAdded[tpID] = tproxy
	s.buffers.updWorkflow().TaskProxies = append(
		s.buffers.updWorkflow().TaskProxies, tpID)
	tDelta := s.buffers.updTask(tID)
	tDelta.Stamp = stamp(tID, t)
	tDelta.Proxies = append(tDelta.Proxies, tpID)
	s.generateGhostFamily(tproxy.FirstParent, "", tpID)
	s.stateUpdateFamilies[tproxy.FirstParent] = true

	if _, active := s.nWindowNodes[tpID]; active && itask != nil {
		// Active and new to the store: populate now, history
		// synchronously.
		s.processInternalTaskProxy(itask, tproxy)
		if itask.SubmitNum > 0 && s.db != nil {
			if rows, err := s.db.TaskJobs(point, name); err == nil {
				for _, row := range rows {
					s.insertDBJob(row)
				}
			}
		}
	} else {
		// Ghost node: waiting until deferred DB history says otherwise.
		tproxy.State = schemas.String(models.TaskStateWaiting)
		tproxy.FlowNums = models.FormatFlowNums(flowNums)
		s.pendingHistory[tpID] = true
	}

	s.updatesPending = true
}

// generateOrphanTask materializes a definition for a task no longer in
// the compiled workflow: depth 1 under the synthetic root.
func (s *Service) generateOrphanTask(name string) {
	t := updateTime()
	tID := s.definitionID(name)
	if _, ok := s.data.Tasks[tID]; ok {
		return
	}
	if _, ok := s.buffers.tasksAdded[tID]; ok {
		return
	}
	task := &schemas.Task{
		Stamp:       stamp(tID, t),
		ID:          tID,
		Name:        name,
		Depth:       1,
		Namespace:   []string{name, config.RootFamily},
		FirstParent: s.definitionID(config.RootFamily),
		Parents:     []string{s.definitionID(config.RootFamily)},
		Runtime:     &schemas.Runtime{},
	}
	s.buffers.tasksAdded[tID] = task
}

// processInternalTaskProxy extracts the live instance's dynamic fields
// into the proxy record.
func (s *Service) processInternalTaskProxy(itask *models.TaskInstance, tproxy *schemas.TaskProxy) {
	t := updateTime()

	tproxy.State = schemas.String(itask.State)
	tproxy.FlowNums = models.FormatFlowNums(itask.FlowNums)

	tproxy.Prerequisites = nil
	for _, prereq := range itask.Prerequisites {
		tproxy.Prerequisites = append(tproxy.Prerequisites, prereqToSchema(s.id, prereq))
	}

	for label, output := range itask.Outputs {
		if tproxy.Outputs == nil {
			tproxy.Outputs = map[string]*schemas.Output{}
		}
		tproxy.Outputs[label] = &schemas.Output{
			Label:     label,
			Message:   output.Message,
			Satisfied: output.Satisfied,
			Time:      t,
		}
	}

	for label, trig := range itask.ExtTriggers {
		if tproxy.ExternalTriggers == nil {
			tproxy.ExternalTriggers = map[string]*schemas.Trigger{}
		}
		tproxy.ExternalTriggers[label] = &schemas.Trigger{
			ID:        trig.Message,
			Label:     label,
			Message:   trig.Message,
			Satisfied: trig.Satisfied,
		}
	}

	for sig, xtrig := range itask.Xtriggers {
		if tproxy.Xtriggers == nil {
			tproxy.Xtriggers = map[string]*schemas.Trigger{}
		}
		tproxy.Xtriggers[sig] = &schemas.Trigger{
			ID:        sig,
			Label:     xtrig.Label,
			Satisfied: xtrig.Satisfied,
		}
		s.xtriggerTasks[sig] = append(
			s.xtriggerTasks[sig], xtriggerRef{taskProxyID: tproxy.ID, label: xtrig.Label})
	}

	if tproxy.State != nil {
		s.pushLatestStateTask(*tproxy.State, itask.Tokens.RelativeID())
	}

	tproxy.Runtime = s.runtimeWithBroadcasts(itask.Point, tproxy.Namespace, itask.Name)
}

// runtimeWithBroadcasts returns the definition runtime overlaid with any
// matching broadcasts.
func (s *Service) runtimeWithBroadcasts(point string, namespaces []string, name string) *schemas.Runtime {
	var rt *schemas.Runtime
	if td, ok := s.cfg.TaskDefs[name]; ok {
		rt = td.Runtime.Clone()
	} else if fd, ok := s.cfg.Families[name]; ok {
		rt = fd.Runtime.Clone()
	} else {
		rt = &schemas.Runtime{}
	}
	if s.broadcasts != nil {
		s.broadcasts.ApplyBroadcast(point, namespaces, rt)
	}
	return rt
}

// pushLatestStateTask records a task identity at the head of the
// bounded per-state FIFO.
func (s *Service) pushLatestStateTask(state, relativeID string) {
	queue := s.latestStateTasks[state]
	for i, ref := range queue {
		if ref == relativeID {
			queue = append(queue[:i], queue[i+1:]...)
			break
		}
	}
	queue = append([]string{relativeID}, queue...)
	if len(queue) > LatestStateTasksQueueSize {
		queue = queue[:LatestStateTasksQueueSize]
	}
	s.latestStateTasks[state] = queue
}

func prereqToSchema(id models.Tokens, prereq models.PrereqState) *schemas.Prerequisite {
	p := &schemas.Prerequisite{
		Expression: prereq.Expression,
		Satisfied:  prereq.Satisfied(),
	}
	pointSeen := map[string]bool{}
	for _, cond := range prereq.Conditions {
		p.Conditions = append(p.Conditions, &schemas.PrereqCondition{
			TaskProxy: id.Duplicate(cond.Point, cond.Task, "").ID(),
			ReqState:  cond.Output,
			Message:   fmt.Sprintf("%s/%s:%s", cond.Point, cond.Task, cond.Output),
			Satisfied: cond.Satisfied,
		})
		if !pointSeen[cond.Point] {
			pointSeen[cond.Point] = true
			p.CyclePoints = append(p.CyclePoints, cond.Point)
		}
	}
	return p
}

// applyTaskProxyDBHistory loads deferred DB history for freshly-added
// non-active proxies, batched once per update tick.
func (s *Service) applyTaskProxyDBHistory() {
	if len(s.pendingHistory) == 0 {
		return
	}
	if s.db == nil {
		s.pendingHistory = map[string]bool{}
		return
	}
	states, err := s.db.TaskStates()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load task state history")
		s.pendingHistory = map[string]bool{}
		return
	}
	byRel := map[string]*interfaces.TaskStateRow{}
	for _, row := range states {
		byRel[row.Cycle+"/"+row.Name] = row
	}
	for tpID := range s.pendingHistory {
		tproxy, ok := s.buffers.taskProxiesAdded[tpID]
		if !ok {
			continue
		}
		tokens, err := models.ParseTokens(tpID)
		if err != nil {
			continue
		}
		row, ok := byRel[tokens.Cycle+"/"+tokens.Task]
		if !ok {
			continue
		}
		tproxy.State = schemas.String(row.Status)
		tproxy.JobSubmits = schemas.Int32(int32(row.SubmitNum))
		if row.FlowNums != "" {
			tproxy.FlowNums = row.FlowNums
		}
		if prereqs, err := s.db.TaskPrereqs(tokens.Cycle, tokens.Task); err == nil {
			for _, pr := range prereqs {
				tproxy.Prerequisites = append(tproxy.Prerequisites, &schemas.Prerequisite{
					Satisfied: pr.Satisfied,
					Conditions: []*schemas.PrereqCondition{{
						TaskProxy: s.id.Duplicate(pr.PrereqCycle, pr.PrereqName, "").ID(),
						ReqState:  pr.PrereqOutput,
						Satisfied: pr.Satisfied,
					}},
				})
			}
		}
		if rows, err := s.db.TaskJobs(tokens.Cycle, tokens.Task); err == nil {
			for _, jr := range rows {
				s.insertDBJob(jr)
			}
		}
	}
	s.pendingHistory = map[string]bool{}
}

// InsertJob adds a job entity from a live submission.
func (s *Service) InsertJob(name, point, status string, conf *interfaces.JobConf) {
	tpTokens := s.id.Duplicate(point, name, "")
	tpID := tpTokens.ID()
	tproxy := s.storeTaskProxy(tpID)
	if tproxy == nil {
		return
	}
	jTokens := tpTokens.Duplicate(point, name, fmt.Sprintf("%02d", conf.SubmitNum))
	jID := jTokens.ID()
	if _, ok := s.data.Jobs[jID]; ok {
		// Post-submission submit failure: job already exists.
		return
	}
	if _, ok := s.buffers.jobsAdded[jID]; ok {
		return
	}
	if !jobStatusSet[status] {
		return
	}

	t := updateTime()
	job := &schemas.Job{
		Stamp:         stamp(jID, t),
		ID:            jID,
		SubmitNum:     int32(conf.SubmitNum),
		State:         schemas.String(status),
		TaskProxy:     tpID,
		Name:          name,
		CyclePoint:    point,
		Platform:      conf.Platform,
		JobRunnerName: conf.JobRunnerName,
		JobID:         conf.JobID,
		JobLogDir:     s.taskJobLogDir(point, name, conf.SubmitNum),
	}
	if conf.ExecutionTimeLimit > 0 {
		job.ExecutionTimeLimit = schemas.Float64(conf.ExecutionTimeLimit)
	}
	// Not every field is populated on submit failure, so the task
	// runtime is the base.
	job.Runtime = s.runtimeWithBroadcasts(point, tproxy.Namespace, name)
	if conf.Runtime != nil {
		job.Runtime = conf.Runtime.Clone()
	}

	s.buffers.jobsAdded[jID] = job
	s.buffers.updWorkflow().Jobs = append(s.buffers.updWorkflow().Jobs, jID)
	tpDelta := s.buffers.updTaskProxy(tpID)
	tpDelta.Stamp = stamp(tpID, t)
	tpDelta.JobSubmits = schemas.Int32(int32(conf.SubmitNum))
	tpDelta.Jobs = append(tpDelta.Jobs, jID)
	s.updatesPending = true
}

// insertDBJob loads a job element from a persisted row on restart.
func (s *Service) insertDBJob(row *interfaces.TaskJobRow) {
	tpTokens := s.id.Duplicate(row.Cycle, row.Name, "")
	tpID := tpTokens.ID()
	if s.storeTaskProxy(tpID) == nil {
		return
	}
	jID := s.id.Duplicate(row.Cycle, row.Name, fmt.Sprintf("%02d", row.SubmitNum)).ID()
	if _, ok := s.buffers.jobsAdded[jID]; ok {
		return
	}

	status := historicalJobStatus(row)
	if status == "" {
		return
	}

	t := updateTime()
	job := &schemas.Job{
		Stamp:         stamp(jID, t),
		ID:            jID,
		SubmitNum:     int32(row.SubmitNum),
		State:         schemas.String(status),
		TaskProxy:     tpID,
		JobRunnerName: row.JobRunnerName,
		JobID:         row.JobID,
		Platform:      row.PlatformName,
		Name:          row.Name,
		CyclePoint:    row.Cycle,
		JobLogDir:     s.taskJobLogDir(row.Cycle, row.Name, row.SubmitNum),
	}
	s.buffers.jobsAdded[jID] = job
	s.buffers.updWorkflow().Jobs = append(s.buffers.updWorkflow().Jobs, jID)
	tpDelta := s.buffers.updTaskProxy(tpID)
	tpDelta.Stamp = stamp(tpID, t)
	if tpDelta.JobSubmits == nil || int32(row.SubmitNum) > *tpDelta.JobSubmits {
		tpDelta.JobSubmits = schemas.Int32(int32(row.SubmitNum))
	}
	tpDelta.Jobs = append(tpDelta.Jobs, jID)
	s.updatesPending = true
}

// historicalJobStatus derives a job state from a persisted row: exit
// status wins, then a recorded start, then the submit outcome.
func historicalJobStatus(row *interfaces.TaskJobRow) string {
	switch {
	case row.RunStatus != nil:
		if *row.RunStatus == 0 {
			return models.TaskStateSucceeded
		}
		return models.TaskStateFailed
	case row.TimeRun != "":
		return models.TaskStateRunning
	case row.SubmitStatus != nil:
		if *row.SubmitStatus == 0 {
			return models.TaskStateSubmitted
		}
		return models.TaskStateSubmitFailed
	default:
		return ""
	}
}

func (s *Service) taskJobLogDir(point, name string, submitNum int) string {
	return filepath.Join(
		"log", "job", point, name, fmt.Sprintf("%02d", submitNum))
}
