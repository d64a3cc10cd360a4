// Package unsupported satisfies backend.Backend on any GOOS without a
// dedicated implementation, so the root package always has something to
// construct instead of special-casing "no backend" at every call site.
package unsupported

import (
	"context"
	"errors"

	"github.com/ardnew/asynchid/internal/backend"
)

// ErrUnsupportedPlatform is returned by every method except Close, which
// has nothing to release and returns nil.
var ErrUnsupportedPlatform = errors.New("asynchid: no HID backend for this platform")

// Backend is a backend.Backend that can never enumerate, watch, or open
// anything.
type Backend struct{}

// New returns the sentinel backend.
func New() *Backend { return &Backend{} }

func (*Backend) Enumerate(ctx context.Context) ([]backend.DeviceInfo, error) {
	return nil, ErrUnsupportedPlatform
}

func (*Backend) Watch(ctx context.Context) (<-chan backend.Event, func(), error) {
	return nil, func() {}, ErrUnsupportedPlatform
}

func (*Backend) Open(ctx context.Context, id string, mode backend.AccessMode) (backend.Handle, error) {
	return nil, ErrUnsupportedPlatform
}

func (*Backend) QueryInfo(ctx context.Context, id string) ([]backend.DeviceInfo, error) {
	return nil, ErrUnsupportedPlatform
}

func (*Backend) Close() error { return nil }
