// -----------------------------------------------------------------------
// Shutdown sequence
// -----------------------------------------------------------------------

package scheduler

import (
	"time"

	"github.com/ternarybob/cursus/internal/common"
	"github.com/ternarybob/cursus/internal/interfaces"
	"github.com/ternarybob/cursus/internal/models"
)

// workflowShutdown evaluates stop conditions each tick and raises the
// stop sentinel once the pool permits stopping in the current mode.
func (s *Scheduler) workflowShutdown() error {
	// Stop clock time reached.
	if s.stopClockTime != nil && time.Now().After(*s.stopClockTime) {
		s.logger.Info().Msg("Stop clock time reached")
		s.stopClockTime = nil
		if s.stopMode == models.StopModeNone {
			s.stopMode = models.StopModeRequestClean
		}
	}

	// Stop task completed.
	if stopTask := s.pool.StopTask(); stopTask != "" {
		if ref, err := models.ParseTaskMessageID(stopTask); err == nil {
			if itask := s.pool.GetTask(ref.Cycle, ref.Task); itask == nil {
				s.logger.Info().Str("task", stopTask).Msg("Stop task finished")
				s.pool.SetStopTask("")
				if s.stopMode == models.StopModeNone {
					s.stopMode = models.StopModeAuto
				}
			}
		}
	}

	// Auto shutdown: nothing left to run and no stop point pending.
	if s.stopMode == models.StopModeNone &&
		s.pool.Empty() &&
		s.pool.StopPoint() == "" {
		restartIdle := false
		if t, ok := s.timers[TimerRestartTimeout]; ok && t.Running() {
			restartIdle = true
		}
		if !restartIdle && !s.restarted {
			s.logger.Info().Msg("Workflow complete")
			s.stopMode = models.StopModeAuto
		}
	}

	if s.stopMode == models.StopModeNone {
		return nil
	}

	// The pool must permit stopping in the current mode.
	switch s.stopMode {
	case models.StopModeRequestClean, models.StopModeAuto, models.StopModeAutoOnTaskFailure:
		if s.pool.HasActiveTasks() {
			return nil
		}
	case models.StopModeRequestKill:
		// Poll and kill active jobs until the pool drains.
		for _, itask := range s.pool.GetTasks() {
			if itask.IsActive() {
				s.applyTaskState(itask, models.TaskStateFailed, "", time.Now())
			}
		}
	}

	if s.stopMode == models.StopModeAutoOnTaskFailure {
		return &SchedulerError{Reason: "abort on task failure"}
	}
	return ErrSchedulerStop
}

// shutdown runs the controlled stop sequence: a final store update, a
// last publish, process pool drain and the shutdown (or abort) event.
// The cleanup phase honours a hard outer timeout.
func (s *Scheduler) shutdown(cause error) {
	s.state = models.SchedulerStateStopping
	mode := s.stopMode
	if mode == models.StopModeNone {
		mode = models.StopModeRequestClean
	}
	s.logger.Info().
		Str("mode", mode.Describe()).
		Msg("Workflow shutting down")

	s.cron.Stop()
	s.publishStatus()

	// Final store update and publish.
	s.store.Update()
	s.publishPending()

	s.procPool.Close()
	if mode != models.StopModeRequestNowNow {
		drained := make(chan struct{})
		go func() {
			s.procPool.WaitDrained()
			close(drained)
		}()
		timeout := 30 * time.Second
		if s.appCfg != nil {
			timeout = common.Duration(s.appCfg.Scheduler.ShutdownTimeout, timeout)
		}
		select {
		case <-drained:
		case <-time.After(timeout):
			s.logger.Error().Msg("Process pool drain exceeded shutdown timeout, terminating")
			s.procPool.Terminate()
		}
	}

	if mode.RunsEventHandlers() {
		if _, isAbort := cause.(*SchedulerError); isAbort {
			// Controlled but abnormal: still a shutdown, not an abort.
			_ = s.dispatcher.fire(interfaces.EventShutdown, cause.Error())
		} else {
			_ = s.dispatcher.fire(interfaces.EventShutdown, nil)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishShutdown(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to publish shutdown sentinel")
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to close run database")
		}
	}
	s.state = models.SchedulerStateStopped
	s.logger.Info().Msg("Workflow stopped")
}
