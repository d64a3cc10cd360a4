//go:build darwin

package darwin

import (
	"context"

	"github.com/ardnew/asynchid/internal/backend"
)

// Backend is the macOS IOHIDManager implementation of backend.Backend.
type Backend struct {
	m *manager
}

// New creates a Backend, starting its IOHIDManager and run loop goroutine
// immediately: unlike the Linux backend there's no separate "lazy start"
// phase worth having, since IOHIDManagerOpen is cheap and idempotent.
func New() (*Backend, error) {
	m, err := newManager()
	if err != nil {
		return nil, err
	}
	return &Backend{m: m}, nil
}

func (b *Backend) Enumerate(ctx context.Context) ([]backend.DeviceInfo, error) {
	return b.m.enumerate()
}

func (b *Backend) Watch(ctx context.Context) (<-chan backend.Event, func(), error) {
	return b.m.events, func() {}, nil
}

func (b *Backend) Open(ctx context.Context, id string, mode backend.AccessMode) (backend.Handle, error) {
	return openDevice(b.m, id, mode)
}

// QueryInfo returns the cached DeviceInfo records for id, one per usage
// pair IOKit reported at the device's last matching callback.
func (b *Backend) QueryInfo(ctx context.Context, id string) ([]backend.DeviceInfo, error) {
	infos, ok := b.m.infosByID(id)
	if !ok {
		return nil, backend.ErrDeviceDisconnected
	}
	return infos, nil
}

func (b *Backend) Close() error {
	b.m.close()
	return nil
}
