//go:build linux

package linux

import (
	"context"
	"sync"
	"unsafe"

	"github.com/ardnew/asynchid/internal/backend"
	"github.com/ardnew/asynchid/internal/xlog"
	"golang.org/x/sys/unix"
)

// handle is an open hidraw device node.
//
// Reads are delivered through a single-slot, drop-oldest channel fed by the
// shared poller's epoll callback: the reader never blocks the poller, and a
// consumer that falls behind simply sees the most recent report rather than
// a backlog.
type handle struct {
	fd   int
	path string
	mode backend.AccessMode
	p    *poller

	mu      sync.Mutex
	closed  bool
	readCh  chan []byte
	readBuf [maxReportDescriptorSize]byte
}

func openHandle(p *poller, path string, mode backend.AccessMode) (*handle, error) {
	// Opened O_RDWR regardless of mode: hidraw offers no share-mode
	// negotiation, and feature reports are bidirectional regardless of the
	// caller's declared intent for input/output reports.
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}

	h := &handle{
		fd:     fd,
		path:   path,
		mode:   mode,
		p:      p,
		readCh: make(chan []byte, 1),
	}

	if mode.Readable() {
		if err := p.addFD(fd, unix.EPOLLIN, h.onReadable); err != nil {
			unix.Close(fd)
			return nil, err
		}
	}

	return h, nil
}

func (h *handle) onReadable(_ uint32) {
	for {
		n, err := unix.Read(h.fd, h.readBuf[:])
		if err != nil {
			if err == unix.EAGAIN {
				return
			}
			if err == unix.EIO {
				// The kernel reports EIO once the underlying device has been
				// physically removed; a blocked Read should see
				// ErrDeviceDisconnected rather than hang forever.
				h.markDisconnected()
			}
			return
		}
		if n <= 0 {
			return
		}
		report := make([]byte, n)
		copy(report, h.readBuf[:n])

		h.mu.Lock()
		if h.closed {
			h.mu.Unlock()
			return
		}
		select {
		case h.readCh <- report:
		default:
			select {
			case <-h.readCh:
			default:
			}
			select {
			case h.readCh <- report:
			default:
			}
		}
		h.mu.Unlock()
	}
}

func (h *handle) Read(ctx context.Context, buf []byte) (int, error) {
	if !h.mode.Readable() {
		return 0, backend.ErrNotOpenForReading
	}
	select {
	case report, ok := <-h.readCh:
		if !ok {
			return 0, backend.ErrDeviceDisconnected
		}
		return copy(buf, report), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (h *handle) Write(ctx context.Context, buf []byte) (int, error) {
	if !h.mode.Writable() {
		return 0, backend.ErrNotOpenForWriting
	}
	n, err := unix.Write(h.fd, buf)
	if err != nil {
		if err == unix.EIO {
			h.markDisconnected()
			return 0, backend.ErrDeviceDisconnected
		}
		return 0, err
	}
	return n, nil
}

// markDisconnected closes readCh so any pending or future Read observes
// ErrDeviceDisconnected instead of blocking on a device that is gone.
// Safe to call more than once and concurrently with Close.
func (h *handle) markDisconnected() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	if h.mode.Readable() {
		h.p.delFD(h.fd)
	}
	close(h.readCh)
}

func (h *handle) GetFeature(ctx context.Context, reportID byte, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	scratch := make([]byte, len(buf))
	scratch[0] = reportID

	if err := ioctl(h.fd, hidiocGFeature(len(scratch)), unsafe.Pointer(&scratch[0])); err != nil {
		return 0, err
	}
	return copy(buf, scratch), nil
}

func (h *handle) SetFeature(ctx context.Context, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	scratch := make([]byte, len(buf))
	copy(scratch, buf)
	return ioctl(h.fd, hidiocSFeature(len(scratch)), unsafe.Pointer(&scratch[0]))
}

func (h *handle) Close() error {
	h.markDisconnected()
	h.mu.Lock()
	fd := h.fd
	h.fd = -1
	h.mu.Unlock()
	if fd < 0 {
		return nil
	}
	xlog.Debug(xlog.ComponentLinux, "closed hidraw handle", "path", h.path)
	return unix.Close(fd)
}

// ioctl issues a hidraw ioctl carrying arg as its argument pointer.
func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
