//go:build linux

package evdev

import "syscall"

// Event types from linux/input-event-codes.h.
const (
	EvSyn uint16 = 0x00
	EvKey uint16 = 0x01
	EvLed uint16 = 0x11
)

// Key and LED codes used for device classification and indicator events.
const (
	KeyA       uint16 = 30
	LedNuml    uint16 = 0x00
	LedCapsl   uint16 = 0x01
	LedScrolll uint16 = 0x02
)

// Event is one input event as read from a /dev/input/eventN node. The
// layout matches the kernel's struct input_event; syscall.Timeval keeps
// the time fields at the native width on every architecture.
type Event struct {
	Time  syscall.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// DeviceInfo describes one enumerated input device.
type DeviceInfo struct {
	DevNode string // e.g. /dev/input/event3
	Name    string // kernel-reported device name
	Leds    bool   // device exposes indicator LEDs
}

// testBit reports whether bit is set in a kernel capability bitmask.
func testBit(bits []byte, bit uint) bool {
	idx := bit / 8
	if idx >= uint(len(bits)) {
		return false
	}
	return bits[idx]>>(bit%8)&1 == 1
}
