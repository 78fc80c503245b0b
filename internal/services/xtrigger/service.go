// -----------------------------------------------------------------------
// Xtrigger manager: wall_clock triggers and external triggers
// -----------------------------------------------------------------------

package xtrigger

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cursus/internal/models"
)

// WallClockPrefix identifies wall-clock trigger signatures.
const WallClockPrefix = "wall_clock"

// Service evaluates xtriggers for waiting tasks and records external
// trigger arrivals.
type Service struct {
	logger arbor.ILogger
	// satisfiedExt holds broadcast external-trigger messages received
	// from the ext-trigger queue, keyed by message.
	satisfiedExt map[string]string
	// satisfied caches satisfied xtrigger signatures.
	satisfied map[string]bool
	now       func() time.Time
}

// NewService creates the xtrigger manager.
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger:       logger,
		satisfiedExt: map[string]string{},
		satisfied:    map[string]bool{},
		now:          time.Now,
	}
}

// Signature builds a wall-clock signature for a declared trigger, e.g.
// "wall_clock(offset=PT1H)" or "wall_clock()".
func Signature(decl string) string {
	decl = strings.TrimSpace(decl)
	if strings.HasPrefix(decl, WallClockPrefix) {
		return decl
	}
	return fmt.Sprintf("%s(%s)", WallClockPrefix, decl)
}

// parseOffset extracts the offset duration from a wall-clock signature.
func parseOffset(sig string) (models.ISODuration, error) {
	open := strings.Index(sig, "(")
	end := strings.LastIndex(sig, ")")
	if open < 0 || end < open {
		return models.ISODuration{}, fmt.Errorf("invalid xtrigger signature %q", sig)
	}
	args := strings.TrimSpace(sig[open+1 : end])
	if args == "" {
		return models.ISODuration{}, nil
	}
	for _, arg := range strings.Split(args, ",") {
		arg = strings.TrimSpace(arg)
		if value, ok := strings.CutPrefix(arg, "offset="); ok {
			return models.ParseISODuration(value)
		}
	}
	return models.ISODuration{}, nil
}

// WallClockSatisfied evaluates a wall-clock signature against a cycle
// point: satisfied when now >= point + offset.
func (s *Service) WallClockSatisfied(sig, point string) (bool, error) {
	if done, ok := s.satisfied[sig+"@"+point]; ok && done {
		return true, nil
	}
	offset, err := parseOffset(sig)
	if err != nil {
		return false, err
	}
	pointTime, err := models.PointTime(point)
	if err != nil {
		return false, fmt.Errorf("wall_clock on non-datetime point %q", point)
	}
	trigger := offset.AddTo(pointTime)
	ok := !s.now().Before(trigger)
	if ok {
		s.satisfied[sig+"@"+point] = true
	}
	return ok, nil
}

// CheckXtriggers evaluates unsatisfied xtriggers on a waiting task;
// returns the signatures whose satisfaction changed.
func (s *Service) CheckXtriggers(itask *models.TaskInstance) []string {
	var changed []string
	for sig, xtrig := range itask.Xtriggers {
		if xtrig.Satisfied {
			continue
		}
		if !strings.HasPrefix(sig, WallClockPrefix) {
			continue
		}
		ok, err := s.WallClockSatisfied(sig, itask.Point)
		if err != nil {
			s.logger.Warn().Err(err).Str("signature", sig).Msg("Xtrigger check failed")
			continue
		}
		if ok {
			xtrig.Satisfied = true
			xtrig.Time = s.now()
			changed = append(changed, sig)
		}
	}
	return changed
}

// PutExtTrigger records an external trigger arrival.
func (s *Service) PutExtTrigger(message, id string) {
	s.satisfiedExt[message] = id
	s.logger.Info().Str("message", message).Str("id", id).Msg("External trigger received")
}

// CheckExtTriggers marks matching external triggers on a waiting task;
// returns the labels whose satisfaction changed.
func (s *Service) CheckExtTriggers(itask *models.TaskInstance) []string {
	var changed []string
	for label, trig := range itask.ExtTriggers {
		if trig.Satisfied {
			continue
		}
		if _, ok := s.satisfiedExt[trig.Message]; ok {
			trig.Satisfied = true
			trig.Time = s.now()
			changed = append(changed, label)
		}
	}
	return changed
}

// Housekeep drops satisfied signature caches no longer referenced.
func (s *Service) Housekeep(activeSigs map[string]bool) {
	for key := range s.satisfied {
		sig := key
		if idx := strings.LastIndex(key, "@"); idx >= 0 {
			sig = key[:idx]
		}
		if !activeSigs[sig] {
			delete(s.satisfied, key)
		}
	}
}
