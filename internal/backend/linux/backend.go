//go:build linux

package linux

import (
	"context"
	"strings"
	"sync"

	"github.com/ardnew/asynchid/internal/backend"
	"github.com/ardnew/asynchid/internal/xlog"
)

// Backend is the Linux hidraw implementation of backend.Backend.
type Backend struct {
	mu      sync.Mutex
	p       *poller
	running bool
}

// New creates a Backend with its epoll reactor ready but not yet started;
// the reactor's run loop starts lazily on first Watch or Open call.
func New() (*Backend, error) {
	p, err := newPoller()
	if err != nil {
		return nil, err
	}
	return &Backend{p: p}, nil
}

func (b *Backend) ensureRunning() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return
	}
	b.running = true
	go func() {
		if err := b.p.run(); err != nil {
			xlog.Error(xlog.ComponentLinux, "epoll reactor exited", "error", err)
		}
	}()
}

// Enumerate lists every hidraw device currently present under
// /sys/class/hidraw.
func (b *Backend) Enumerate(ctx context.Context) ([]backend.DeviceInfo, error) {
	return scanHidraw()
}

// Watch opens a fresh netlink socket for this call, so cancelling one
// Watch never disturbs another concurrent one.
func (b *Backend) Watch(ctx context.Context) (<-chan backend.Event, func(), error) {
	b.ensureRunning()

	hp, err := newHotplugMonitor(b.p)
	if err != nil {
		return nil, func() {}, err
	}
	return hp.events(), hp.close, nil
}

// QueryInfo returns the current DeviceInfo records for id, one per
// top-level usage collection its report descriptor declares.
func (b *Backend) QueryInfo(ctx context.Context, id string) ([]backend.DeviceInfo, error) {
	name := strings.TrimPrefix(id, devHidrawPathPrefix)
	infos := parseHidrawEntry(name)
	if len(infos) == 0 {
		return nil, backend.ErrDeviceDisconnected
	}
	return infos, nil
}

// Open opens the hidraw node at id (a path such as "/dev/hidraw3").
func (b *Backend) Open(ctx context.Context, id string, mode backend.AccessMode) (backend.Handle, error) {
	b.ensureRunning()
	return openHandle(b.p, id, mode)
}

// Close shuts down the epoll reactor. Any Watch call still in flight loses
// its netlink socket's poller registration; callers are expected to cancel
// their own Watch calls before closing the backend.
func (b *Backend) Close() error {
	return b.p.close()
}
