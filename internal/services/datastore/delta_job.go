// -----------------------------------------------------------------------
// Job field deltas
// -----------------------------------------------------------------------

package datastore

import (
	"github.com/ternarybob/cursus/internal/models"
	"github.com/ternarybob/cursus/internal/schemas"
)

func (s *Service) jobDelta(tokens models.Tokens) *schemas.Job {
	jID := tokens.ID()
	if _, ok := s.data.Jobs[jID]; !ok {
		if _, ok := s.buffers.jobsAdded[jID]; !ok {
			return nil
		}
	}
	delta := s.buffers.updJob(jID)
	delta.Stamp = stamp(jID, updateTime())
	return delta
}

// DeltaJobMsg appends a message to a job. Messages are cleared before
// merge, so the buffered update carries the full list.
func (s *Service) DeltaJobMsg(tokens models.Tokens, msg string) {
	jID := tokens.ID()
	delta := s.jobDelta(tokens)
	if delta == nil {
		return
	}
	if len(delta.Messages) == 0 {
		if stored, ok := s.data.Jobs[jID]; ok {
			delta.Messages = append(delta.Messages, stored.Messages...)
		} else if added, ok := s.buffers.jobsAdded[jID]; ok {
			delta.Messages = append(delta.Messages, added.Messages...)
		}
	}
	delta.Messages = append(delta.Messages, msg)
	s.updatesPending = true
}

// DeltaJobAttr buffers a job attribute change.
func (s *Service) DeltaJobAttr(tokens models.Tokens, attr, value string) {
	delta := s.jobDelta(tokens)
	if delta == nil {
		return
	}
	switch attr {
	case "job_id":
		delta.JobID = value
	case "job_runner_name":
		delta.JobRunnerName = value
	case "platform":
		delta.Platform = value
	case "job_log_dir":
		delta.JobLogDir = value
	default:
		return
	}
	s.updatesPending = true
}

// DeltaJobState buffers a job state change.
func (s *Service) DeltaJobState(tokens models.Tokens, state string) {
	if !jobStatusSet[state] {
		return
	}
	delta := s.jobDelta(tokens)
	if delta == nil {
		return
	}
	delta.State = schemas.String(state)
	s.updatesPending = true
}

// DeltaJobTime buffers a submit/start/finish timestamp.
func (s *Service) DeltaJobTime(tokens models.Tokens, event string, t float64) {
	delta := s.jobDelta(tokens)
	if delta == nil {
		return
	}
	switch event {
	case "submitted":
		delta.SubmittedTime = t
	case "started":
		delta.StartedTime = t
	case "finished":
		delta.FinishedTime = t
	default:
		return
	}
	s.updatesPending = true
}
