package asynchid

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ardnew/asynchid/internal/backend"
)

func TestToDeviceInfo(t *testing.T) {
	raw := backend.DeviceInfo{
		ID:           "4294968037",
		Name:         "Example Keyboard",
		VendorID:     0x046d,
		ProductID:    0xc52b,
		UsagePage:    0x01,
		UsageID:      0x06,
		SerialNumber: "abc123",
	}

	info := toDeviceInfo(raw)

	assert.Equal(t, raw.Name, info.Name)
	assert.Equal(t, raw.VendorID, info.VendorID)
	assert.Equal(t, raw.ProductID, info.ProductID)
	assert.Equal(t, raw.UsagePage, info.UsagePage)
	assert.Equal(t, raw.UsageID, info.UsageID)
	assert.Equal(t, raw.SerialNumber, info.SerialNumber)
	assert.Equal(t, raw.ID, idRaw(info.ID))
}

func TestToDeviceEvent(t *testing.T) {
	connected := toDeviceEvent(backend.Event{Kind: backend.EventConnected, Info: backend.DeviceInfo{ID: "x"}})
	assert.Equal(t, DeviceConnected, connected.Kind)

	disconnected := toDeviceEvent(backend.Event{Kind: backend.EventDisconnected, Info: backend.DeviceInfo{ID: "y"}})
	assert.Equal(t, DeviceDisconnected, disconnected.Kind)
}

func TestToBackendMode(t *testing.T) {
	assert.Equal(t, backend.AccessRead, toBackendMode(ModeRead))
	assert.Equal(t, backend.AccessWrite, toBackendMode(ModeWrite))
	assert.Equal(t, backend.AccessRead|backend.AccessWrite, toBackendMode(ModeReadWrite))
}

func TestFailedBackend_PropagatesConstructionError(t *testing.T) {
	wantErr := backend.ErrDeviceDisconnected
	fb := failedBackend{err: wantErr}

	_, err := fb.Enumerate(context.Background())
	assert.ErrorIs(t, err, wantErr)

	_, _, err = fb.Watch(context.Background())
	assert.ErrorIs(t, err, wantErr)

	_, err = fb.Open(context.Background(), "id", backend.AccessRead)
	assert.ErrorIs(t, err, wantErr)

	_, err = fb.QueryInfo(context.Background(), "id")
	assert.ErrorIs(t, err, wantErr)

	assert.NoError(t, fb.Close())
}

// fakeWatchBackend is a minimal backend.Backend whose Watch() mimics the
// darwin backend: the raw channel is never closed by the returned cancel
// function.
type fakeWatchBackend struct {
	raw      chan backend.Event
	onCancel func()
}

func (f fakeWatchBackend) Enumerate(context.Context) ([]backend.DeviceInfo, error) { return nil, nil }
func (f fakeWatchBackend) Watch(context.Context) (<-chan backend.Event, func(), error) {
	return f.raw, f.onCancel, nil
}
func (f fakeWatchBackend) Open(context.Context, string, backend.AccessMode) (backend.Handle, error) {
	return nil, nil
}
func (f fakeWatchBackend) QueryInfo(context.Context, string) ([]backend.DeviceInfo, error) {
	return nil, nil
}
func (f fakeWatchBackend) Close() error { return nil }

func TestHidBackend_Watch_CancelUnblocksEvenWithoutRawClose(t *testing.T) {
	// Regression test: a backend whose Watch() cancel function doesn't
	// close the raw channel (as darwin's doesn't) must not deadlock the
	// façade's own cancel function.
	raw := make(chan backend.Event)
	rawCancelCalled := false

	b := &HidBackend{
		impl: fakeWatchBackend{raw: raw, onCancel: func() { rawCancelCalled = true }},
	}

	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	_, cancel, err := b.Watch(ctx)
	assert.NoError(t, err)

	done := make(chan struct{})
	go func() {
		cancel()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cancel() did not return; forwarding goroutine likely deadlocked")
	}
	assert.True(t, rawCancelCalled)
}

func TestHidBackend_Watch_ConcurrentCallersDoNotDoublePublish(t *testing.T) {
	// Regression test: two concurrent Watch() calls must each see a given
	// raw event exactly once, never duplicated through a shared fan-out.
	raw1 := make(chan backend.Event, 1)
	raw2 := make(chan backend.Event, 1)
	calls := 0
	b := &HidBackend{
		impl: &multiCallWatchBackend{sources: []chan backend.Event{raw1, raw2}, onCall: func() int {
			calls++
			return calls - 1
		}},
	}

	ctx := context.Background()
	out1, cancel1, err := b.Watch(ctx)
	assert.NoError(t, err)
	defer cancel1()

	out2, cancel2, err := b.Watch(ctx)
	assert.NoError(t, err)
	defer cancel2()

	raw1 <- backend.Event{Kind: backend.EventConnected, Info: backend.DeviceInfo{ID: "4294968101"}}

	select {
	case ev := <-out1:
		assert.Equal(t, "4294968101", idRaw(ev.Info.ID))
	case <-time.After(2 * time.Second):
		t.Fatal("out1 did not receive the event published on raw1")
	}

	select {
	case ev := <-out2:
		t.Fatalf("out2 unexpectedly received an event meant only for out1's source: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

// multiCallWatchBackend hands out a distinct raw channel per Watch() call,
// the way Linux/Windows open a fresh netlink socket / CM registration per
// caller.
type multiCallWatchBackend struct {
	sources []chan backend.Event
	onCall  func() int
}

func (m *multiCallWatchBackend) Enumerate(context.Context) ([]backend.DeviceInfo, error) {
	return nil, nil
}
func (m *multiCallWatchBackend) Watch(context.Context) (<-chan backend.Event, func(), error) {
	src := m.sources[m.onCall()]
	return src, func() {}, nil
}
func (m *multiCallWatchBackend) Open(context.Context, string, backend.AccessMode) (backend.Handle, error) {
	return nil, nil
}
func (m *multiCallWatchBackend) QueryInfo(context.Context, string) ([]backend.DeviceInfo, error) {
	return nil, nil
}
func (m *multiCallWatchBackend) Close() error { return nil }

func TestHidBackend_Open_RejectsEmptyAccessMode(t *testing.T) {
	b := &HidBackend{impl: failedBackend{err: backend.ErrDeviceDisconnected}}
	_, err := b.Open(context.Background(), DeviceId{}, AccessMode(0))
	assert.ErrorIs(t, err, errEmptyAccessMode)
}

func TestHidBackend_QueryDevices_MapsDisconnectedToNotConnected(t *testing.T) {
	b := &HidBackend{impl: failedBackend{err: backend.ErrDeviceDisconnected}}
	_, err := b.QueryDevices(context.Background(), DeviceId{})
	assert.ErrorIs(t, err, ErrNotConnected)
}
