package interfaces

import "context"

// EventType represents different event types in the system
type EventType string

const (
	// EventStartup is published once, after the scheduler initializes.
	EventStartup EventType = "startup"

	// EventShutdown is published on any controlled stop.
	EventShutdown EventType = "shutdown"

	// EventAbort is published on uncontrolled termination. A run emits
	// shutdown or abort, never both.
	EventAbort EventType = "abort"

	// EventStall is published on first entry into the stalled state.
	EventStall EventType = "stall"

	// Timer timeout events; "abort on <event>" config may promote any of
	// these to a scheduler error.
	EventWorkflowTimeout   EventType = "workflow timeout"
	EventInactivityTimeout EventType = "inactivity timeout"
	EventStallTimeout      EventType = "stall timeout"
	EventRestartTimeout    EventType = "restart timeout"

	// EventLate is published once per task whose late offset passed
	// before it became active.
	EventLate EventType = "late"
)

// Event represents a system event
type Event struct {
	Type    EventType
	Payload interface{}
}

// EventHandler is a function that handles events
type EventHandler func(ctx context.Context, event Event) error

// EventService manages the in-process pub/sub event bus
type EventService interface {
	// Subscribe to an event type
	Subscribe(eventType EventType, handler EventHandler) error

	// Publish an event to all subscribers asynchronously
	Publish(ctx context.Context, event Event) error

	// PublishSync publishes an event and waits for all handlers
	PublishSync(ctx context.Context, event Event) error

	// Close shuts down the event service
	Close() error
}
