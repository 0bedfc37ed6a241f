package bus

import (
	"time"
)

// Well-known event types published by the platform core. Subscribers outside
// this module should use these constants instead of string literals.
const (
	// EventPluginRegistered is published after a plugin is registered and initialized.
	EventPluginRegistered = "plugin.registered"
	// EventPluginUnregistered is published after a plugin is removed from the registry.
	EventPluginUnregistered = "plugin.unregistered"
	// EventExecuteStart is published before the orchestrator dispatches a command.
	EventExecuteStart = "orchestrator.execute.start"
	// EventExecuteDone is published after a command completed successfully.
	EventExecuteDone = "orchestrator.execute.done"
	// EventExecuteError is published when a dispatched command failed.
	EventExecuteError = "orchestrator.execute.error"
	// EventPipelineAdvanced is published after a content record changed pipeline stage.
	EventPipelineAdvanced = "content.pipeline.advanced"
)

// Event is an immutable fact broadcast to zero or more subscribers. After
// construction it must not be mutated; Data is read-only by convention.
type Event struct {
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	Source    string         `json:"source"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewEvent builds an event stamped with the current UTC time.
func NewEvent(eventType string, data map[string]any, source string) Event {
	if data == nil {
		data = map[string]any{}
	}
	return Event{
		Type:      eventType,
		Data:      data,
		Source:    source,
		Timestamp: time.Now().UTC(),
	}
}
