//go:build darwin

package darwin

/*
#include <IOKit/hid/IOHIDManager.h>
#include <IOKit/IOKitLib.h>
#include <CoreFoundation/CoreFoundation.h>
#include <string.h>

static int copyCStringProperty(IOHIDDeviceRef device, CFStringRef key, char *buf, int bufLen) {
    CFTypeRef ref = IOHIDDeviceGetProperty(device, key);
    if (ref == NULL || CFGetTypeID(ref) != CFStringGetTypeID()) {
        buf[0] = 0;
        return 0;
    }
    if (!CFStringGetCString((CFStringRef)ref, buf, bufLen, kCFStringEncodingUTF8)) {
        buf[0] = 0;
        return 0;
    }
    return (int)strlen(buf);
}
*/
import "C"

import (
	"runtime"
	"runtime/cgo"
	"sync"
	"unsafe"

	"github.com/ardnew/asynchid/internal/backend"
	"github.com/ardnew/asynchid/internal/xlog"
)

// manager owns the single IOHIDManager this process uses. Matching and
// removal callbacks fire from a CFRunLoop running on a dedicated,
// OS-thread-locked goroutine rather than a GCD dispatch queue: IOKit's
// block-based dispatch-queue API needs the Clang blocks runtime, which
// plain cgo cannot link against, so this backend uses IOKit's older (and
// still fully supported) run-loop scheduling instead. See DESIGN.md.
type manager struct {
	ref     C.IOHIDManagerRef
	runLoop C.CFRunLoopRef

	mu     sync.Mutex
	known  map[C.IOHIDDeviceRef]*deviceEntry
	events chan backend.Event
	handle cgo.Handle // keeps this *manager reachable from C callbacks
}

type deviceEntry struct {
	ref   C.IOHIDDeviceRef
	infos []backend.DeviceInfo
}

func newManager() (*manager, error) {
	ref := C.IOHIDManagerCreate(C.kCFAllocatorDefault, C.kIOHIDOptionsTypeNone)
	if ref == 0 {
		return nil, backend.ErrDeviceDisconnected
	}
	C.IOHIDManagerSetDeviceMatching(ref, 0) // match everything; filtered in Go

	m := &manager{
		ref:    ref,
		known:  make(map[C.IOHIDDeviceRef]*deviceEntry),
		events: make(chan backend.Event, 16),
	}
	m.handle = cgo.NewHandle(m)

	started := make(chan C.CFRunLoopRef, 1)
	go m.runLoopMain(started)
	m.runLoop = <-started

	C.registerMatchingCallback(ref, unsafe.Pointer(uintptr(m.handle)))
	C.registerManagerRemovalCallback(ref, unsafe.Pointer(uintptr(m.handle)))
	C.IOHIDManagerScheduleWithRunLoop(ref, m.runLoop, C.kCFRunLoopDefaultMode)
	if res := C.IOHIDManagerOpen(ref, C.kIOHIDOptionsTypeNone); res != C.kIOReturnSuccess {
		return nil, NewIOReturnError("open manager", int32(res))
	}

	return m, nil
}

// runLoopMain pins the goroutine to its OS thread (CFRunLoop is thread
// affine) and runs the loop until close stops it.
func (m *manager) runLoopMain(started chan<- C.CFRunLoopRef) {
	runtime.LockOSThread()
	started <- C.CFRunLoopGetCurrent()
	C.CFRunLoopRun()
}

func (m *manager) close() {
	C.IOHIDManagerUnscheduleFromRunLoop(m.ref, m.runLoop, C.kCFRunLoopDefaultMode)
	C.IOHIDManagerClose(m.ref, C.kIOHIDOptionsTypeNone)
	C.CFRunLoopStop(m.runLoop)
	m.handle.Delete()
}

// enumerate snapshots the devices IOKit currently reports via
// IOHIDManagerCopyDevices, rather than relying on the matching callback
// having already fired for everything present at startup.
func (m *manager) enumerate() ([]backend.DeviceInfo, error) {
	set := C.IOHIDManagerCopyDevices(m.ref)
	if set == 0 {
		return nil, nil
	}
	defer C.CFRelease(C.CFTypeRef(set))

	count := int(C.CFSetGetCount(set))
	if count == 0 {
		return nil, nil
	}
	refs := make([]unsafe.Pointer, count)
	C.CFSetGetValues(set, (*unsafe.Pointer)(unsafe.Pointer(&refs[0])))

	infos := make([]backend.DeviceInfo, 0, count)
	for _, p := range refs {
		dev := C.IOHIDDeviceRef(p)
		infos = append(infos, deviceInfosOf(dev)...)
	}
	return infos, nil
}

func (m *manager) deviceByID(id string) (C.IOHIDDeviceRef, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ref, entry := range m.known {
		for _, info := range entry.infos {
			if info.ID == id {
				return ref, true
			}
		}
	}
	return 0, false
}

// infosByID returns the cached DeviceInfo records for id, as last reported
// by the matching callback.
func (m *manager) infosByID(id string) ([]backend.DeviceInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range m.known {
		for _, info := range entry.infos {
			if info.ID == id {
				return entry.infos, true
			}
		}
	}
	return nil, false
}

//export goMatchingCallback
func goMatchingCallback(context unsafe.Pointer, result C.IOReturn, sender unsafe.Pointer, device C.IOHIDDeviceRef) {
	m, ok := cgo.Handle(uintptr(context)).Value().(*manager)
	if !ok {
		return
	}
	infos := deviceInfosOf(device)

	m.mu.Lock()
	m.known[device] = &deviceEntry{ref: device, infos: infos}
	m.mu.Unlock()

	for _, info := range infos {
		select {
		case m.events <- backend.Event{Kind: backend.EventConnected, Info: info}:
		default:
			xlog.Debug(xlog.ComponentDarwin, "dropping connect event, subscriber queue full")
		}
	}
}

//export goRemovalCallback
func goRemovalCallback(context unsafe.Pointer, result C.IOReturn, sender unsafe.Pointer) {
	m, ok := cgo.Handle(uintptr(context)).Value().(*manager)
	if !ok {
		return
	}
	device := C.IOHIDDeviceRef(sender)

	m.mu.Lock()
	entry, known := m.known[device]
	delete(m.known, device)
	m.mu.Unlock()
	if !known {
		return
	}

	for _, info := range entry.infos {
		select {
		case m.events <- backend.Event{Kind: backend.EventDisconnected, Info: info}:
		default:
			xlog.Debug(xlog.ComponentDarwin, "dropping disconnect event, subscriber queue full")
		}
	}
}

// maxUsagePairs bounds how many kIOHIDDeviceUsagePairsKey entries a single
// device may contribute; no real HID device declares anywhere near this
// many top-level usages.
const maxUsagePairs = 32

// deviceInfosOf builds one DeviceInfo per usage pair IOKit reports for
// device: the primary (usage page, usage) plus every secondary pair from
// kIOHIDDeviceUsagePairsKey, all sharing the device's identity, name, and
// vendor/product/serial fields.
func deviceInfosOf(device C.IOHIDDeviceRef) []backend.DeviceInfo {
	entryID := C.uint64_t(0)
	C.IORegistryEntryGetRegistryEntryID(C.IOHIDDeviceGetService(device), &entryID)

	base := backend.DeviceInfo{
		ID:           formatUint64(uint64(entryID)),
		Name:         copyStringProperty(device, C.keyProduct()),
		VendorID:     uint16(C.getIntProperty(device, C.keyVendorID(), 0)),
		ProductID:    uint16(C.getIntProperty(device, C.keyProductID(), 0)),
		SerialNumber: copyStringProperty(device, C.keySerialNumber()),
	}

	var pages, usages [maxUsagePairs]C.uint16_t
	n := int(C.copyUsagePairs(device, &pages[0], &usages[0], C.int(maxUsagePairs)))
	if n == 0 {
		base.UsagePage = uint16(C.getIntProperty(device, C.keyPrimaryUsagePage(), 0))
		base.UsageID = uint16(C.getIntProperty(device, C.keyPrimaryUsage(), 0))
		return []backend.DeviceInfo{base}
	}

	infos := make([]backend.DeviceInfo, n)
	for i := 0; i < n; i++ {
		info := base
		info.UsagePage = uint16(pages[i])
		info.UsageID = uint16(usages[i])
		infos[i] = info
	}
	return infos
}
