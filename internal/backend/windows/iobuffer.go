//go:build windows

package windows

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sys/windows"
)

// ioBuffer drives one direction (read or write) of overlapped I/O against
// a HID device handle. One fixed-size buffer and one OVERLAPPED are reused
// across every operation, matching the single in-flight-request-per-
// direction design of the original IoBuffer<Readable>/IoBuffer<Writable>
// split: a hidDevice owns two, not one generic over direction, since Go
// has no zero-cost phantom-typed specialization to lean on here.
//
// Rust's original bridges completion into an async task waker by
// registering the event handle with the Win32 thread pool
// (RegisterWaitForSingleObject). Go has no equivalent of a poll-driven
// future, and a blocked goroutine is cheap, so wait below
// just blocks a goroutine on WaitForSingleObject directly and reports
// the result over a channel; ctx cancellation races CancelIoEx against
// that wait instead of unregistering a thread-pool callback.
type ioBuffer struct {
	handle windows.Handle
	buf    []byte

	mu      sync.Mutex
	overlap windows.Overlapped
	event   windows.Handle
	pending bool
}

func newIOBuffer(handle windows.Handle, size int) (*ioBuffer, error) {
	ev, err := windows.CreateEvent(nil, 1, 0, nil)
	if err != nil {
		return nil, err
	}
	return &ioBuffer{handle: handle, buf: make([]byte, size), event: ev}, nil
}

func (b *ioBuffer) close() error {
	b.mu.Lock()
	pending := b.pending
	b.mu.Unlock()
	if pending {
		windows.CancelIoEx(b.handle, &b.overlap)
	}
	return windows.CloseHandle(b.event)
}

// startRead issues a ReadFile if none is pending. Returns immediately
// whether or not the read completed synchronously.
func (b *ioBuffer) startRead() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending {
		return nil
	}
	b.overlap = windows.Overlapped{HEvent: b.event}
	var done uint32
	err := windows.ReadFile(b.handle, b.buf, &done, &b.overlap)
	if err != nil && err != windows.ERROR_IO_PENDING {
		return err
	}
	b.pending = true
	return nil
}

func (b *ioBuffer) startWrite(n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending {
		panic("ioBuffer: write already pending")
	}
	b.overlap = windows.Overlapped{HEvent: b.event}
	var done uint32
	err := windows.WriteFile(b.handle, b.buf[:n], &done, &b.overlap)
	if err != nil && err != windows.ERROR_IO_PENDING {
		return err
	}
	b.pending = true
	return nil
}

// result polls GetOverlappedResult without blocking; ok is false while the
// operation is still in flight.
func (b *ioBuffer) result() (n int, ok bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var transferred uint32
	gerr := windows.GetOverlappedResult(b.handle, &b.overlap, &transferred, false)
	if gerr == windows.ERROR_IO_INCOMPLETE {
		return 0, false, nil
	}
	b.pending = false
	if gerr != nil {
		return 0, true, gerr
	}
	return int(transferred), true, nil
}

// wait blocks until the overlapped event fires or ctx is cancelled,
// cancelling the in-flight I/O in the latter case.
func (b *ioBuffer) wait(ctx context.Context) error {
	waitDone := make(chan error, 1)
	go func() {
		s, err := windows.WaitForSingleObject(b.event, windows.INFINITE)
		if err != nil {
			waitDone <- err
			return
		}
		if s != windows.WAIT_OBJECT_0 {
			waitDone <- fmt.Errorf("WaitForSingleObject returned %d", s)
			return
		}
		waitDone <- nil
	}()

	select {
	case err := <-waitDone:
		return err
	case <-ctx.Done():
		b.mu.Lock()
		windows.CancelIoEx(b.handle, &b.overlap)
		b.mu.Unlock()
		<-waitDone
		return ctx.Err()
	}
}

// read performs one full overlapped ReadFile, blocking until it completes
// or ctx is cancelled.
func (b *ioBuffer) read(ctx context.Context, out []byte) (int, error) {
	if err := b.startRead(); err != nil {
		return 0, err
	}
	for {
		if n, ok, err := b.result(); ok {
			if err != nil {
				return 0, err
			}
			data := b.buf[:n]
			if len(data) > 0 && data[0] == 0 {
				data = data[1:]
			}
			return copy(out, data), nil
		}
		if err := b.wait(ctx); err != nil {
			return 0, err
		}
	}
}

// write performs one full overlapped WriteFile, blocking until it
// completes or ctx is cancelled.
func (b *ioBuffer) write(ctx context.Context, data []byte) (int, error) {
	n := len(data)
	if n > len(b.buf) {
		n = len(b.buf)
	}
	copy(b.buf, data[:n])
	if err := b.startWrite(n); err != nil {
		return 0, err
	}
	for {
		if transferred, ok, err := b.result(); ok {
			if err != nil {
				return 0, err
			}
			return transferred, nil
		}
		if err := b.wait(ctx); err != nil {
			return 0, err
		}
	}
}
