// -----------------------------------------------------------------------
// Workflow event dispatcher
// -----------------------------------------------------------------------

package scheduler

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cursus/internal/interfaces"
)

// eventDispatcher fires workflow events on the in-process bus and
// promotes configured events to a scheduler error.
type eventDispatcher struct {
	logger   arbor.ILogger
	bus      interfaces.EventService
	abortOn  map[interfaces.EventType]bool
	handlers []string
	fired    map[interfaces.EventType]bool
}

func newEventDispatcher(bus interfaces.EventService, abortOn, handlers []string, logger arbor.ILogger) *eventDispatcher {
	abortSet := map[interfaces.EventType]bool{}
	for _, name := range abortOn {
		abortSet[interfaces.EventType(name)] = true
	}
	return &eventDispatcher{
		logger:   logger,
		bus:      bus,
		abortOn:  abortSet,
		handlers: handlers,
		fired:    map[interfaces.EventType]bool{},
	}
}

// fire publishes an event. Returns a SchedulerError when the event is
// configured to abort the run.
func (d *eventDispatcher) fire(event interfaces.EventType, payload interface{}) error {
	d.fired[event] = true
	d.logger.Info().Str("event", string(event)).Msg("Workflow event")
	if d.bus != nil {
		if err := d.bus.PublishSync(context.Background(), interfaces.Event{
			Type:    event,
			Payload: payload,
		}); err != nil {
			d.logger.Warn().Err(err).Str("event", string(event)).Msg("Event handler error")
		}
	}
	for _, handler := range d.handlers {
		// Handler templates are recorded, not executed: job execution is
		// outside the scheduler core.
		d.logger.Debug().
			Str("event", string(event)).
			Str("handler", handler).
			Msg("Workflow event handler")
	}
	if d.abortOn[event] {
		return &SchedulerError{Reason: "abort on " + string(event)}
	}
	return nil
}

// hasFired reports whether an event fired during this run, enforcing
// one-shot events like stall and startup.
func (d *eventDispatcher) hasFired(event interfaces.EventType) bool {
	return d.fired[event]
}
