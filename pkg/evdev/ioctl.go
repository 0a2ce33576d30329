//go:build linux

package evdev

import (
	"syscall"
	"unsafe"
)

// ioctl direction and encoding per asm-generic/ioctl.h.
const (
	iocRead      = 2
	iocNrshift   = 0
	iocTypeshift = 8
	iocSizeshift = 16
	iocDirshift  = 30
)

// evioc builds an EVIOCG* read ioctl request for the 'E' magic.
func evioc(nr, size uint) uint {
	return iocRead<<iocDirshift | size<<iocSizeshift | 'E'<<iocTypeshift | nr<<iocNrshift
}

// eviocgbit queries the capability bitmask for one event type
// (type 0 queries which event types exist at all).
func eviocgbit(evType, size uint) uint {
	return evioc(0x20+evType, size)
}

// eviocgname queries the device name.
func eviocgname(size uint) uint {
	return evioc(0x06, size)
}

func ioctl(fd int, req uint, arg unsafe.Pointer) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
