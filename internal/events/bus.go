package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers.
// Usage: bus.Publish(IndicatorCorrectedEvent{...})
func (b *Bus) Publish(ev Event) {
	// kelindar/event dispatches by concrete type, so fan out explicitly
	switch e := ev.(type) {
	case IndicatorCorrectedEvent:
		event.Publish(b.dispatcher, e)
	case IndicatorWriteFailedEvent:
		event.Publish(b.dispatcher, e)
	case PulseTickEvent:
		event.Publish(b.dispatcher, e)
	case DeviceAttachedEvent:
		event.Publish(b.dispatcher, e)
	case DeviceDetachedEvent:
		event.Publish(b.dispatcher, e)
	case WatcherStoppedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function.
// The handler's parameter type determines which events it receives.
// Returns an unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e IndicatorCorrectedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(IndicatorCorrectedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(IndicatorWriteFailedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(PulseTickEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(DeviceAttachedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(DeviceDetachedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(WatcherStoppedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		// No-op for unrecognized handler types
		return func() {}
	}
}
