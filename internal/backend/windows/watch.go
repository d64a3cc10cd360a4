//go:build windows

package windows

import (
	"runtime/cgo"
	"sync"
	"unsafe"

	"github.com/ardnew/asynchid/internal/backend"
	"golang.org/x/sys/windows"
)

// symbolicLinkOffset is the byte offset of the SymbolicLink field within
// CM_NOTIFY_EVENT_DATA for a DEVICEINTERFACE filter: a uint32 FilterType,
// a uint32 Reserved, and a 16-byte GUID precede it.
const symbolicLinkOffset = 4 + 4 + 16

var notifyCallback = windows.NewCallback(notifyCallbackTrampoline)

// hotplugMonitor wraps one CM_Register_Notification registration for the
// HID device interface class.
type hotplugMonitor struct {
	handle uintptr // HCMNOTIFICATION
	ctx    cgo.Handle

	mu     sync.Mutex
	closed bool
	out    chan backend.Event
}

func newHotplugMonitor() (*hotplugMonitor, error) {
	h := &hotplugMonitor{out: make(chan backend.Event, 16)}
	h.ctx = cgo.NewHandle(h)

	var filter cmNotifyFilter
	filter.cbSize = uint32(unsafe.Sizeof(filter))
	filter.filterType = cmNotifyFilterTypeDeviceInterface
	copy(filter.data[:], (*[16]byte)(unsafe.Pointer(&guidDeviceInterfaceHID))[:])

	var notifyHandle uintptr
	ret, _, _ := procCMRegisterNotification.Call(
		uintptr(unsafe.Pointer(&filter)),
		uintptr(h.ctx),
		notifyCallback,
		uintptr(unsafe.Pointer(&notifyHandle)),
	)
	if ret != cmrSuccess {
		h.ctx.Delete()
		return nil, cmError("CM_Register_Notification", ret)
	}
	h.handle = notifyHandle
	return h, nil
}

func (h *hotplugMonitor) events() <-chan backend.Event { return h.out }

func (h *hotplugMonitor) close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.mu.Unlock()

	procCMUnregisterNotification.Call(h.handle)
	h.ctx.Delete()
	close(h.out)
}

// notifyCallbackTrampoline matches the CM_NOTIFY_CALLBACK signature; it is
// registered once via windows.NewCallback and dispatches by context handle,
// the same opaque-pointer pattern the darwin backend uses cgo.Handle for,
// here applied to a pure-syscall callback instead of a cgo one.
func notifyCallbackTrampoline(hNotify, context, action, eventData, eventDataSize uintptr) uintptr {
	mon, ok := cgo.Handle(context).Value().(*hotplugMonitor)
	if !ok {
		return 0
	}

	var kind backend.EventKind
	switch action {
	case cmNotifyActionDeviceInterfaceArrival:
		kind = backend.EventConnected
	case cmNotifyActionDeviceInterfaceRemoval:
		kind = backend.EventDisconnected
	default:
		return 0
	}

	path := symbolicLinkFromEventData(eventData)
	if path == "" {
		return 0
	}

	info := backend.DeviceInfo{ID: path}
	if queried, ok := queryDeviceInfo(path); ok {
		info = queried
	}

	mon.mu.Lock()
	defer mon.mu.Unlock()
	if mon.closed {
		return 0
	}
	select {
	case mon.out <- backend.Event{Kind: kind, Info: info}:
	default:
	}
	return 0
}

func symbolicLinkFromEventData(eventData uintptr) string {
	if eventData == 0 {
		return ""
	}
	base := unsafe.Pointer(eventData + symbolicLinkOffset)
	// SymbolicLink is a NUL-terminated UTF-16 string of unknown length;
	// scan forward for the terminator rather than assume a fixed bound.
	const maxChars = 512
	u16 := unsafe.Slice((*uint16)(base), maxChars)
	n := 0
	for n < maxChars && u16[n] != 0 {
		n++
	}
	return windows.UTF16ToString(u16[:n])
}
