//go:build linux

// Package hotplug provides pure Go device hotplug monitoring using netlink.
//
// It listens for kernel uevent broadcasts (netlink protocol
// NETLINK_KOBJECT_UEVENT) without cgo or a udev dependency.
package hotplug

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"syscall"
)

// Action constants for device events.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionChange = "change"
)

// Subsystems this daemon cares about.
const (
	SubsystemInput = "input"
	SubsystemLeds  = "leds"
	SubsystemUSB   = "usb"
)

// Event represents a kernel device event.
type Event struct {
	Action    string            // "add", "remove", "change", etc.
	KObj      string            // Kernel object path: /devices/pci0000:00/...
	Subsystem string            // "input", "leds", "usb", etc.
	DevName   string            // Relative device name (e.g. "input/event3")
	Env       map[string]string // All environment variables from the event
}

// IsEventNode reports whether the event concerns a /dev/input/eventN
// node. Input uevents also fire for the parent inputN object and for
// mouseN/jsN nodes, which carry no LED state.
func (e Event) IsEventNode() bool {
	return strings.HasPrefix(e.DevName, "input/event")
}

// DevNodePath returns the absolute device node path, or "" when the
// event carries no DEVNAME.
func (e Event) DevNodePath() string {
	if e.DevName == "" {
		return ""
	}
	return "/dev/" + e.DevName
}

// netlinkKobjectUEvent is the netlink protocol for kernel object events.
const netlinkKobjectUEvent = 15

// Monitor listens for kernel device events via netlink. Subsystem
// filters are fixed at construction; an empty filter set passes all
// events through.
type Monitor struct {
	fd      int
	filters map[string]struct{}
}

// NewMonitor creates a device event monitor subscribed to the kernel
// broadcast group, filtered to the given subsystems.
func NewMonitor(subsystems ...string) (*Monitor, error) {
	fd, err := syscall.Socket(syscall.AF_NETLINK, syscall.SOCK_DGRAM|syscall.SOCK_CLOEXEC, netlinkKobjectUEvent)
	if err != nil {
		return nil, err
	}

	addr := &syscall.SockaddrNetlink{
		Family: syscall.AF_NETLINK,
		Groups: 1, // Kernel broadcast group
	}

	if err := syscall.Bind(fd, addr); err != nil {
		syscall.Close(fd)
		return nil, err
	}

	filters := make(map[string]struct{}, len(subsystems))
	for _, s := range subsystems {
		filters[s] = struct{}{}
	}

	return &Monitor{fd: fd, filters: filters}, nil
}

// Close releases the monitor resources.
func (m *Monitor) Close() error {
	return syscall.Close(m.fd)
}

// Run starts the monitor and sends matching events to the provided
// channel. It blocks until the context is cancelled or an error occurs.
// The events channel is closed when Run returns.
func (m *Monitor) Run(ctx context.Context, events chan<- Event) error {
	defer close(events)

	// Read timeout lets the loop notice context cancellation
	tv := syscall.Timeval{Sec: 1}
	if err := syscall.SetsockoptTimeval(m.fd, syscall.SOL_SOCKET, syscall.SO_RCVTIMEO, &tv); err != nil {
		return err
	}

	buf := make([]byte, 8192)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, _, err := syscall.Recvfrom(m.fd, buf, 0)
		if err != nil {
			if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EINTR) {
				continue
			}
			return err
		}

		if n == 0 {
			continue
		}

		event := ParseUEvent(buf[:n])
		if event == nil {
			continue
		}

		if len(m.filters) > 0 {
			if _, ok := m.filters[event.Subsystem]; !ok {
				continue
			}
		}

		select {
		case events <- *event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ParseUEvent parses a kernel uevent message of the form
// "ACTION@KOBJ\0KEY=VALUE\0KEY=VALUE\0...". Messages relayed by a
// running udev daemon carry a binary libudev header, which is skipped.
// Exported for testing.
func ParseUEvent(data []byte) *Event {
	if len(data) == 0 {
		return nil
	}

	if bytes.HasPrefix(data, []byte("libudev")) {
		// The header length varies; scan for the ACTION@KOBJ line that
		// follows it.
		for i := 0; i < len(data)-1; i++ {
			if data[i] == 0 {
				rest := data[i+1:]
				if idx := bytes.IndexByte(rest, '@'); idx > 0 && idx < 20 {
					data = rest
					break
				}
			}
		}
	}

	parts := bytes.Split(data, []byte{0})
	if len(parts) < 1 || len(parts[0]) == 0 {
		return nil
	}

	action, kobj, found := strings.Cut(string(parts[0]), "@")
	if !found || action == "" {
		return nil
	}

	event := &Event{
		Action: action,
		KObj:   kobj,
		Env:    make(map[string]string),
	}

	for _, part := range parts[1:] {
		if len(part) == 0 {
			continue
		}

		key, value, found := strings.Cut(string(part), "=")
		if !found || key == "" {
			continue
		}
		event.Env[key] = value

		switch key {
		case "SUBSYSTEM":
			event.Subsystem = value
		case "DEVNAME":
			event.DevName = value
		}
	}

	return event
}
