package asynchid

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardnew/asynchid/internal/backend"
	"github.com/ardnew/asynchid/internal/xlog"
)

// platformBackend is the contract every GOOS-specific implementation
// satisfies; see internal/backend for its definition. Aliasing it here
// lets backend_<os>.go files stay one line each.
type platformBackend = backend.Backend

// HidBackend is the entry point for discovering and opening HID devices.
// Construct one with [NewHidBackend]; it is safe for concurrent use.
type HidBackend struct {
	impl platformBackend
}

// NewHidBackend constructs a backend for the current platform. It never
// returns an error: if the platform backend cannot be constructed (e.g. the
// Linux epoll instance or the macOS IOHIDManager cannot be created), the
// failure is logged and every later Enumerate, Watch, QueryDevices and Open
// call on the returned backend reports it.
func NewHidBackend() *HidBackend {
	impl, err := newPlatformBackend()
	if err != nil {
		xlog.Error(xlog.ComponentFacade, "platform backend construction failed", "error", err)
		impl = failedBackend{err: err}
	}
	return &HidBackend{impl: impl}
}

// Enumerate returns every HID device currently present.
func (b *HidBackend) Enumerate(ctx context.Context) ([]DeviceInfo, error) {
	raw, err := b.impl.Enumerate(ctx)
	if err != nil {
		return nil, NewError("enumerate", "", err)
	}
	infos := make([]DeviceInfo, len(raw))
	for i, r := range raw {
		infos[i] = toDeviceInfo(r)
	}
	return infos, nil
}

// Watch starts hotplug monitoring and returns a channel of connect/
// disconnect events plus a function that stops monitoring. The channel is
// closed once the returned cancel function runs or ctx is cancelled,
// whichever happens first.
//
// Each call opens its own backend-level event source (a fresh netlink
// socket, CM_Register_Notification registration, or equivalent), so
// concurrent Watch callers never share one raw source: events are
// converted and forwarded straight through to this call's own output
// channel, never broadcast to other callers, so each caller observes every
// connect/disconnect exactly once.
func (b *HidBackend) Watch(ctx context.Context) (<-chan DeviceEvent, func(), error) {
	raw, rawCancel, err := b.impl.Watch(ctx)
	if err != nil {
		return nil, func() {}, NewError("watch", "", err)
	}

	out := make(chan DeviceEvent, 16)

	// forwardCtx is independent of the forwarding loop's own exit path: a
	// backend whose rawCancel doesn't close raw (not every platform's
	// hotplug monitor can be told apart from "still starting up") must
	// still stop forwarding as soon as the caller cancels, without relying
	// on raw ever closing.
	forwardCtx, stopForwarding := context.WithCancel(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(out)
		for {
			select {
			case ev, ok := <-raw:
				if !ok {
					return
				}
				select {
				case out <- toDeviceEvent(ev):
				case <-forwardCtx.Done():
					return
				}
			case <-forwardCtx.Done():
				return
			}
		}
	}()

	cancel := func() {
		stopForwarding()
		rawCancel()
		<-done
	}
	return out, cancel, nil
}

// QueryDevices returns the DeviceInfo records currently reported for id —
// one per top-level usage collection the device's interface exposes. It
// returns ErrNotConnected if the device is no longer present.
func (b *HidBackend) QueryDevices(ctx context.Context, id DeviceId) ([]DeviceInfo, error) {
	raw, err := b.impl.QueryInfo(ctx, idRaw(id))
	if err != nil {
		if errors.Is(err, backend.ErrDeviceDisconnected) {
			return nil, NewError("query_devices", fmt.Sprintf("id=%s", id), ErrNotConnected)
		}
		return nil, NewError("query_devices", fmt.Sprintf("id=%s", id), err)
	}
	infos := make([]DeviceInfo, len(raw))
	for i, r := range raw {
		infos[i] = toDeviceInfo(r)
	}
	return infos, nil
}

// Open opens the device identified by id for the given access mode. mode
// must request at least one of read or write access; an empty mode is
// rejected rather than silently opening a handle no operation can use.
func (b *HidBackend) Open(ctx context.Context, id DeviceId, mode AccessMode) (*Device, error) {
	if !mode.Readable() && !mode.Writable() {
		return nil, NewError("open", fmt.Sprintf("id=%s", id), errEmptyAccessMode)
	}
	h, err := b.impl.Open(ctx, idRaw(id), toBackendMode(mode))
	if err != nil {
		return nil, NewError("open", fmt.Sprintf("id=%s", id), err)
	}
	return &Device{handle: h, id: id, mode: mode}, nil
}

// Close releases backend-wide resources. On Linux and macOS these include
// the event loop that delivers input reports to open devices, so after
// Close the devices opened from this backend receive no further input
// reports; each device still has to be closed individually.
func (b *HidBackend) Close() error {
	return b.impl.Close()
}

func toDeviceInfo(r backend.DeviceInfo) DeviceInfo {
	return DeviceInfo{
		ID:           newDeviceID(r.ID),
		Name:         r.Name,
		VendorID:     r.VendorID,
		ProductID:    r.ProductID,
		UsagePage:    r.UsagePage,
		UsageID:      r.UsageID,
		SerialNumber: r.SerialNumber,
	}
}

func toDeviceEvent(ev backend.Event) DeviceEvent {
	kind := DeviceConnected
	if ev.Kind == backend.EventDisconnected {
		kind = DeviceDisconnected
	}
	return DeviceEvent{Kind: kind, Info: toDeviceInfo(ev.Info)}
}

func toBackendMode(mode AccessMode) backend.AccessMode {
	var m backend.AccessMode
	if mode.Readable() {
		m |= backend.AccessRead
	}
	if mode.Writable() {
		m |= backend.AccessWrite
	}
	return m
}

// failedBackend reports the same construction error from every method, so
// a failed NewHidBackend still returns a usable, non-nil *HidBackend.
type failedBackend struct{ err error }

func (f failedBackend) Enumerate(context.Context) ([]backend.DeviceInfo, error) {
	return nil, f.err
}
func (f failedBackend) Watch(context.Context) (<-chan backend.Event, func(), error) {
	return nil, func() {}, f.err
}
func (f failedBackend) Open(context.Context, string, backend.AccessMode) (backend.Handle, error) {
	return nil, f.err
}
func (f failedBackend) QueryInfo(context.Context, string) ([]backend.DeviceInfo, error) {
	return nil, f.err
}
func (f failedBackend) Close() error { return nil }
