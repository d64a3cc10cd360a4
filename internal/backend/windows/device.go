//go:build windows

package windows

import (
	"context"
	"sync"
	"unsafe"

	"github.com/ardnew/asynchid/internal/backend"
	"golang.org/x/sys/windows"
)

const maxReportSize = 1024

// hidDevice is an open HID device interface, opened for overlapped I/O.
type hidDevice struct {
	handle windows.Handle
	mode   backend.AccessMode

	reader *ioBuffer
	writer *ioBuffer

	mu     sync.Mutex
	closed bool
}

func openDevice(path string, mode backend.AccessMode) (*hidDevice, error) {
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}

	access := uint32(0)
	if mode.Readable() {
		access |= windows.GENERIC_READ
	}
	if mode.Writable() {
		access |= windows.GENERIC_WRITE
	}

	h, err := windows.CreateFile(pathPtr, access,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE, nil,
		windows.OPEN_EXISTING, windows.FILE_FLAG_OVERLAPPED, 0)
	if err != nil {
		return nil, err
	}

	d := &hidDevice{handle: h, mode: mode}

	if mode.Readable() {
		d.reader, err = newIOBuffer(h, maxReportSize)
		if err != nil {
			windows.CloseHandle(h)
			return nil, err
		}
	}
	if mode.Writable() {
		d.writer, err = newIOBuffer(h, maxReportSize)
		if err != nil {
			if d.reader != nil {
				d.reader.close()
			}
			windows.CloseHandle(h)
			return nil, err
		}
	}

	return d, nil
}

func (d *hidDevice) Read(ctx context.Context, buf []byte) (int, error) {
	if !d.mode.Readable() {
		return 0, backend.ErrNotOpenForReading
	}
	return d.reader.read(ctx, buf)
}

func (d *hidDevice) Write(ctx context.Context, buf []byte) (int, error) {
	if !d.mode.Writable() {
		return 0, backend.ErrNotOpenForWriting
	}
	return d.writer.write(ctx, buf)
}

func (d *hidDevice) GetFeature(ctx context.Context, reportID byte, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	scratch := make([]byte, len(buf))
	scratch[0] = reportID
	ret, _, errno := procHidDGetFeature.Call(uintptr(d.handle),
		uintptr(unsafe.Pointer(&scratch[0])), uintptr(len(scratch)))
	if ret == 0 {
		return 0, errno
	}
	return copy(buf, scratch), nil
}

func (d *hidDevice) SetFeature(ctx context.Context, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	ret, _, errno := procHidDSetFeature.Call(uintptr(d.handle),
		uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if ret == 0 {
		return errno
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
	d.mu.Unlock()

	if d.reader != nil {
		d.reader.close()
	}
	if d.writer != nil {
		d.writer.close()
	}
	return windows.CloseHandle(d.handle)
}
