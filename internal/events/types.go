package events

// Event type constants for kelindar/event.
const (
	TypeIndicatorCorrected uint32 = iota + 1
	TypeIndicatorWriteFailed
	TypePulseTick
	TypeDeviceAttached
	TypeDeviceDetached
	TypeWatcherStopped
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// IndicatorCorrectedEvent is published when the watcher turns the indicator
// back on after observing it unlit.
type IndicatorCorrectedEvent struct {
	Device    string `json:"device"`
	Timestamp string `json:"timestamp"`
}

// Type returns the event type identifier for IndicatorCorrectedEvent.
func (e IndicatorCorrectedEvent) Type() uint32 { return TypeIndicatorCorrected }

// IndicatorWriteFailedEvent is published when a corrective or pulse write
// fails. The next event or pulse tick acts as the retry.
type IndicatorWriteFailedEvent struct {
	Origin    string `json:"origin"` // component that issued the write: watcher, pulse, startup
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

// Type returns the event type identifier for IndicatorWriteFailedEvent.
func (e IndicatorWriteFailedEvent) Type() uint32 { return TypeIndicatorWriteFailed }

// PulseTickEvent is published on every completed liveness blink.
type PulseTickEvent struct {
	Timestamp string `json:"timestamp"`
}

// Type returns the event type identifier for PulseTickEvent.
func (e PulseTickEvent) Type() uint32 { return TypePulseTick }

// DeviceAttachedEvent is published when the hot-plug supervisor sees an
// input device arrive.
type DeviceAttachedEvent struct {
	DevNode   string `json:"dev_node"` // e.g. /dev/input/event3
	Timestamp string `json:"timestamp"`
}

// Type returns the event type identifier for DeviceAttachedEvent.
func (e DeviceAttachedEvent) Type() uint32 { return TypeDeviceAttached }

// DeviceDetachedEvent is published when an input device disappears.
type DeviceDetachedEvent struct {
	DevNode   string `json:"dev_node"`
	Timestamp string `json:"timestamp"`
}

// Type returns the event type identifier for DeviceDetachedEvent.
func (e DeviceDetachedEvent) Type() uint32 { return TypeDeviceDetached }

// WatcherStoppedEvent is published when an event watcher generation exits,
// normally because its device vanished.
type WatcherStoppedEvent struct {
	Device    string `json:"device"`
	Reason    string `json:"reason"`
	Timestamp string `json:"timestamp"`
}

// Type returns the event type identifier for WatcherStoppedEvent.
func (e WatcherStoppedEvent) Type() uint32 { return TypeWatcherStopped }
