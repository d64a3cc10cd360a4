//go:build darwin

package darwin

/*
#include <IOKit/hid/IOHIDManager.h>
#include <IOKit/hid/IOHIDDevice.h>
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"runtime/cgo"
	"sync"
	"unsafe"

	"github.com/ardnew/asynchid/internal/backend"
	"github.com/ardnew/asynchid/internal/xlog"
)

// maxInputReportSize bounds the scratch buffer IOKit writes input reports
// into before goInputReportCallback copies them out. Devices can advertise
// a larger kIOHIDMaxInputReportSizeKey, but no HID report exceeds 64 KiB in
// practice and this keeps the per-device buffer fixed-size.
const maxInputReportSize = 65536

// hidDevice is an open IOHIDDevice, scheduled on a reference to the
// manager's CFRunLoop.
type hidDevice struct {
	ref     C.IOHIDDeviceRef
	mode    backend.AccessMode
	runLoop C.CFRunLoopRef
	scratch []byte

	mu     sync.Mutex
	reads  chan []byte
	handle cgo.Handle

	closed bool
}

func openDevice(m *manager, id string, mode backend.AccessMode) (*hidDevice, error) {
	ref, ok := m.deviceByID(id)
	if !ok {
		return nil, backend.ErrDeviceDisconnected
	}

	if res := C.IOHIDDeviceOpen(ref, C.kIOHIDOptionsTypeNone); res != C.kIOReturnSuccess {
		return nil, NewIOReturnError("open", int32(res))
	}

	d := &hidDevice{
		ref:     ref,
		mode:    mode,
		runLoop: m.runLoop,
		scratch: make([]byte, maxInputReportSize),
		reads:   make(chan []byte, 1),
	}
	d.handle = cgo.NewHandle(d)

	if mode.Readable() {
		C.registerInputReportCallback(ref, unsafe.Pointer(uintptr(d.handle)),
			(*C.uint8_t)(unsafe.Pointer(&d.scratch[0])), C.CFIndex(len(d.scratch)))
	}
	C.registerRemovalCallback(ref, unsafe.Pointer(uintptr(d.handle)))
	C.IOHIDDeviceScheduleWithRunLoop(ref, m.runLoop, C.kCFRunLoopDefaultMode)

	return d, nil
}

func (d *hidDevice) Read(ctx context.Context, buf []byte) (int, error) {
	if !d.mode.Readable() {
		return 0, backend.ErrNotOpenForReading
	}
	select {
	case report, ok := <-d.reads:
		if !ok {
			return 0, backend.ErrDeviceDisconnected
		}
		return copy(buf, report), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (d *hidDevice) Write(ctx context.Context, buf []byte) (int, error) {
	if !d.mode.Writable() {
		return 0, backend.ErrNotOpenForWriting
	}
	if len(buf) == 0 {
		return 0, nil
	}
	reportID := C.CFIndex(buf[0])
	res := C.IOHIDDeviceSetReport(d.ref, C.kIOHIDReportTypeOutput, reportID,
		(*C.uint8_t)(unsafe.Pointer(&buf[0])), C.CFIndex(len(buf)))
	if res != C.kIOReturnSuccess {
		return 0, NewIOReturnError("write", int32(res))
	}
	return len(buf), nil
}

func (d *hidDevice) GetFeature(ctx context.Context, reportID byte, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	length := C.CFIndex(len(buf))
	res := C.IOHIDDeviceGetReport(d.ref, C.kIOHIDReportTypeFeature, C.CFIndex(reportID),
		(*C.uint8_t)(unsafe.Pointer(&buf[0])), &length)
	if res != C.kIOReturnSuccess {
		return 0, NewIOReturnError("get feature report", int32(res))
	}
	return int(length), nil
}

func (d *hidDevice) SetFeature(ctx context.Context, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	reportID := C.CFIndex(buf[0])
	res := C.IOHIDDeviceSetReport(d.ref, C.kIOHIDReportTypeFeature, reportID,
		(*C.uint8_t)(unsafe.Pointer(&buf[0])), C.CFIndex(len(buf)))
	if res != C.kIOReturnSuccess {
		return NewIOReturnError("set feature report", int32(res))
	}
	return nil
}

func (d *hidDevice) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.reads)
	d.mu.Unlock()

	d.handle.Delete()
	C.IOHIDDeviceUnscheduleFromRunLoop(d.ref, d.runLoop, C.kCFRunLoopDefaultMode)
	res := C.IOHIDDeviceClose(d.ref, C.kIOHIDOptionsTypeNone)
	if res != C.kIOReturnSuccess {
		return NewIOReturnError("close", int32(res))
	}
	return nil
}

//export goInputReportCallback
func goInputReportCallback(context unsafe.Pointer, result C.IOReturn, sender unsafe.Pointer,
	reportType C.IOHIDReportType, reportID C.uint32_t, report *C.uint8_t, length C.CFIndex) {
	d, ok := cgo.Handle(uintptr(context)).Value().(*hidDevice)
	if !ok {
		return
	}
	buf := C.GoBytes(unsafe.Pointer(report), C.int(length))

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	select {
	case d.reads <- buf:
	default:
		select {
		case <-d.reads:
		default:
		}
		select {
		case d.reads <- buf:
		default:
			xlog.Debug(xlog.ComponentDarwin, "dropping input report, reader not keeping up")
		}
	}
}
