//go:build windows

package windows

import (
	"context"

	"github.com/ardnew/asynchid/internal/backend"
)

// Backend is the Windows Win32 HID API implementation of backend.Backend.
type Backend struct{}

// New creates a Backend. Unlike Linux's epoll reactor or macOS's
// IOHIDManager, nothing here needs a long-lived OS resource until a
// caller actually enumerates, watches, or opens a device.
func New() (*Backend, error) {
	return &Backend{}, nil
}

func (b *Backend) Enumerate(ctx context.Context) ([]backend.DeviceInfo, error) {
	return enumerate()
}

// Watch registers a fresh CM_Register_Notification subscription per call,
// matching the Linux backend's fresh-netlink-socket-per-call design: one
// caller's cancel never disturbs another concurrent watcher.
func (b *Backend) Watch(ctx context.Context) (<-chan backend.Event, func(), error) {
	mon, err := newHotplugMonitor()
	if err != nil {
		return nil, func() {}, err
	}
	return mon.events(), mon.close, nil
}

func (b *Backend) Open(ctx context.Context, id string, mode backend.AccessMode) (backend.Handle, error) {
	return openDevice(id, mode)
}

func (b *Backend) QueryInfo(ctx context.Context, id string) ([]backend.DeviceInfo, error) {
	return queryDeviceInfoByID(id)
}

func (b *Backend) Close() error { return nil }
