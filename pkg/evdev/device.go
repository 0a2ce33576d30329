//go:build linux

package evdev

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unsafe"
)

const (
	sysfsInputPath = "/sys/class/input"
	devInputPath   = "/dev/input"
)

// Device is an open evdev input device.
type Device struct {
	file    *os.File
	devNode string
	name    string
}

// Open opens an input device node for reading events. The descriptor is
// registered with the runtime poller, so a Close from another goroutine
// wakes a goroutine blocked in ReadEvent.
func Open(devNode string) (*Device, error) {
	f, err := os.OpenFile(devNode, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open input device %s: %w", devNode, err)
	}

	d := &Device{file: f, devNode: devNode}
	d.name = d.queryName()
	return d, nil
}

// DevNode returns the device node path this device was opened from.
func (d *Device) DevNode() string {
	return d.devNode
}

// Name returns the kernel-reported device name, or "" when the query failed.
func (d *Device) Name() string {
	return d.name
}

// ReadEvent blocks until the next input event arrives. It returns an
// error when the device is unplugged (typically ENODEV) or the device
// is closed.
func (d *Device) ReadEvent() (Event, error) {
	var ev Event
	buf := (*[unsafe.Sizeof(ev)]byte)(unsafe.Pointer(&ev))[:]

	// The kernel delivers whole input_event records, never partial ones.
	n, err := d.file.Read(buf)
	if err != nil {
		return Event{}, fmt.Errorf("failed to read from %s: %w", d.devNode, err)
	}
	if n != len(buf) {
		return Event{}, fmt.Errorf("short read from %s: %d bytes", d.devNode, n)
	}
	return ev, nil
}

// Close releases the device. Safe to call from another goroutine: a
// pending ReadEvent returns with an error instead of staying parked.
func (d *Device) Close() error {
	return d.file.Close()
}

// ioctl runs an ioctl against the device without taking the fd out of
// the runtime poller.
func (d *Device) ioctl(req uint, arg unsafe.Pointer) error {
	conn, err := d.file.SyscallConn()
	if err != nil {
		return err
	}
	var opErr error
	if ctrlErr := conn.Control(func(fd uintptr) {
		opErr = ioctl(int(fd), req, arg)
	}); ctrlErr != nil {
		return ctrlErr
	}
	return opErr
}

// IsKeyboard reports whether the open device looks like a keyboard: it
// emits key events and carries an alphabetic key. The key check filters
// out power buttons and lid switches, which also register EV_KEY.
func (d *Device) IsKeyboard() bool {
	var typeBits [4]byte // covers event types 0..31
	if err := d.ioctl(eviocgbit(0, uint(len(typeBits))), unsafe.Pointer(&typeBits[0])); err != nil {
		return false
	}
	if !testBit(typeBits[:], uint(EvKey)) {
		return false
	}

	var keyBits [96]byte // covers key codes 0..767
	if err := d.ioctl(eviocgbit(uint(EvKey), uint(len(keyBits))), unsafe.Pointer(&keyBits[0])); err != nil {
		return false
	}
	return testBit(keyBits[:], uint(KeyA))
}

// HasLeds reports whether the device exposes indicator LEDs.
func (d *Device) HasLeds() bool {
	var typeBits [4]byte
	if err := d.ioctl(eviocgbit(0, uint(len(typeBits))), unsafe.Pointer(&typeBits[0])); err != nil {
		return false
	}
	return testBit(typeBits[:], uint(EvLed))
}

// FindKeyboards enumerates input event devices and returns the ones that
// classify as keyboards. Unreadable or non-keyboard nodes are skipped;
// enumeration only fails when the input class itself cannot be listed.
func FindKeyboards() ([]DeviceInfo, error) {
	return findKeyboards(sysfsInputPath, devInputPath)
}

func findKeyboards(sysRoot, devRoot string) ([]DeviceInfo, error) {
	entries, err := os.ReadDir(sysRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return []DeviceInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var keyboards []DeviceInfo

	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "event") {
			continue
		}

		devNode := devRoot + "/" + entry.Name()

		dev, err := Open(devNode)
		if err != nil {
			slog.With("component", "evdev").Debug("failed to open input device", "path", devNode, "error", err)
			continue
		}

		if dev.IsKeyboard() {
			keyboards = append(keyboards, DeviceInfo{
				DevNode: devNode,
				Name:    dev.Name(),
				Leds:    dev.HasLeds(),
			})
		}
		dev.Close()
	}

	return keyboards, nil
}

// FindKeyboard returns the first keyboard found, or an error when none
// is present.
func FindKeyboard() (DeviceInfo, error) {
	return findKeyboard(sysfsInputPath, devInputPath)
}

func findKeyboard(sysRoot, devRoot string) (DeviceInfo, error) {
	keyboards, err := findKeyboards(sysRoot, devRoot)
	if err != nil {
		return DeviceInfo{}, err
	}
	if len(keyboards) == 0 {
		return DeviceInfo{}, fmt.Errorf("no keyboard device found")
	}
	return keyboards[0], nil
}

// queryName fetches the kernel device name via EVIOCGNAME.
func (d *Device) queryName() string {
	var name [256]byte
	if err := d.ioctl(eviocgname(uint(len(name))), unsafe.Pointer(&name[0])); err != nil {
		return ""
	}
	return cstr(name[:])
}

// cstr converts a null-terminated byte slice to a Go string.
func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
