//go:build linux

package hotplug

import (
	"context"
	"errors"
	"testing"
)

// bytesOf builds a filler slice standing in for binary header bytes.
func bytesOf(b byte, n int) []byte {
	s := make([]byte, n)
	for i := range s {
		s[i] = b
	}
	return s
}

func TestParseUEvent(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected *Event
	}{
		{
			name:     "empty input",
			input:    []byte{},
			expected: nil,
		},
		{
			name:     "no @ separator",
			input:    []byte("invalid"),
			expected: nil,
		},
		{
			name:     "missing action",
			input:    []byte("@/devices/foo"),
			expected: nil,
		},
		{
			name:     "only null bytes",
			input:    []byte{0, 0, 0, 0},
			expected: nil,
		},
		{
			name:  "keyboard attach",
			input: []byte("add@/devices/pci0000:00/usb1/1-2/input/input5/event3\x00ACTION=add\x00SUBSYSTEM=input\x00DEVNAME=input/event3\x00"),
			expected: &Event{
				Action:    "add",
				KObj:      "/devices/pci0000:00/usb1/1-2/input/input5/event3",
				Subsystem: "input",
				DevName:   "input/event3",
			},
		},
		{
			name:  "keyboard detach",
			input: []byte("remove@/devices/pci0000:00/usb1/1-2/input/input5/event3\x00SUBSYSTEM=input\x00DEVNAME=input/event3\x00"),
			expected: &Event{
				Action:    "remove",
				KObj:      "/devices/pci0000:00/usb1/1-2/input/input5/event3",
				Subsystem: "input",
				DevName:   "input/event3",
			},
		},
		{
			name:  "input parent object without devname",
			input: []byte("add@/devices/pci0000:00/usb1/1-2/input/input5\x00SUBSYSTEM=input\x00"),
			expected: &Event{
				Action:    "add",
				KObj:      "/devices/pci0000:00/usb1/1-2/input/input5",
				Subsystem: "input",
			},
		},
		{
			name:  "value containing equals",
			input: []byte("add@/dev/foo\x00KEY=val=ue=with=equals\x00"),
			expected: &Event{
				Action: "add",
				KObj:   "/dev/foo",
				Env:    map[string]string{"KEY": "val=ue=with=equals"},
			},
		},
		{
			name:  "trailing nulls tolerated",
			input: []byte("change@/devices/foo\x00SUBSYSTEM=leds\x00\x00\x00"),
			expected: &Event{
				Action:    "change",
				KObj:      "/devices/foo",
				Subsystem: "leds",
			},
		},
		{
			name: "libudev header skipped",
			input: append(
				append([]byte("libudev\x00"), append(bytesOf(0xfe, 24), 0x00)...),
				[]byte("add@/devices/input/input5/event3\x00SUBSYSTEM=input\x00DEVNAME=input/event3\x00")...),
			expected: &Event{
				Action:    "add",
				KObj:      "/devices/input/input5/event3",
				Subsystem: "input",
				DevName:   "input/event3",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseUEvent(tt.input)

			if tt.expected == nil {
				if result != nil {
					t.Errorf("expected nil, got %+v", result)
				}
				return
			}

			if result == nil {
				t.Fatalf("expected %+v, got nil", tt.expected)
			}

			if result.Action != tt.expected.Action {
				t.Errorf("Action: expected %q, got %q", tt.expected.Action, result.Action)
			}
			if result.KObj != tt.expected.KObj {
				t.Errorf("KObj: expected %q, got %q", tt.expected.KObj, result.KObj)
			}
			if result.Subsystem != tt.expected.Subsystem {
				t.Errorf("Subsystem: expected %q, got %q", tt.expected.Subsystem, result.Subsystem)
			}
			if result.DevName != tt.expected.DevName {
				t.Errorf("DevName: expected %q, got %q", tt.expected.DevName, result.DevName)
			}
			for k, v := range tt.expected.Env {
				if result.Env[k] != v {
					t.Errorf("Env[%q]: expected %q, got %q", k, v, result.Env[k])
				}
			}
		})
	}
}

func TestEventHelpers(t *testing.T) {
	tests := []struct {
		name        string
		event       Event
		isEventNode bool
		devNodePath string
	}{
		{
			name:        "event node",
			event:       Event{DevName: "input/event3"},
			isEventNode: true,
			devNodePath: "/dev/input/event3",
		},
		{
			name:        "mouse node",
			event:       Event{DevName: "input/mouse0"},
			isEventNode: false,
			devNodePath: "/dev/input/mouse0",
		},
		{
			name:        "no devname",
			event:       Event{},
			isEventNode: false,
			devNodePath: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.IsEventNode(); got != tt.isEventNode {
				t.Errorf("IsEventNode() = %v, want %v", got, tt.isEventNode)
			}
			if got := tt.event.DevNodePath(); got != tt.devNodePath {
				t.Errorf("DevNodePath() = %q, want %q", got, tt.devNodePath)
			}
		})
	}
}

func TestNewMonitor(t *testing.T) {
	m, err := NewMonitor(SubsystemInput)
	if err != nil {
		t.Fatalf("NewMonitor() error: %v", err)
	}
	defer func() { _ = m.Close() }()

	if m.fd <= 0 {
		t.Errorf("expected valid fd, got %d", m.fd)
	}
	if _, ok := m.filters[SubsystemInput]; !ok {
		t.Error("expected input filter to be set")
	}
	if _, ok := m.filters[SubsystemUSB]; ok {
		t.Error("unexpected usb filter")
	}
}

func TestMonitorClose(t *testing.T) {
	m, err := NewMonitor()
	if err != nil {
		t.Fatalf("NewMonitor() error: %v", err)
	}

	if closeErr := m.Close(); closeErr != nil {
		t.Errorf("Close() error: %v", closeErr)
	}

	// Second close should fail (bad file descriptor)
	if closeErr := m.Close(); closeErr == nil {
		t.Error("expected error on second Close()")
	}
}

func TestMonitorRunCancellation(t *testing.T) {
	m, err := NewMonitor(SubsystemInput)
	if err != nil {
		t.Fatalf("NewMonitor() error: %v", err)
	}
	defer func() { _ = m.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := make(chan Event, 10)
	runErr := m.Run(ctx, events)

	if !errors.Is(runErr, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", runErr)
	}
}
