// Package asynchid provides asynchronous, cross-platform access to USB and
// Bluetooth Human Interface Devices (keyboards, mice, game controllers,
// and vendor-defined HID gadgets) without requiring a kernel driver beyond
// the one the operating system already ships.
//
// It wraps three platform backends behind one Go interface:
//
//   - Linux: /sys/class/hidraw plus a netlink uevent monitor for hotplug
//   - macOS: IOKit's IOHIDManager/IOHIDDevice, scheduled on a CFRunLoop
//     that a dedicated goroutine runs (not on a GCD dispatch queue)
//   - Windows: the Win32 HID API over overlapped I/O, with Configuration
//     Manager notifications for hotplug
//
// # Architecture
//
// The backend contract lives in internal/backend and is satisfied by
// exactly one build-tagged implementation per platform:
//
//   - internal/backend/linux
//   - internal/backend/darwin
//   - internal/backend/windows
//   - internal/backend/unsupported (any other GOOS)
//
// The root package never imports a platform backend directly; it imports
// whichever one the build tags select and exposes it through [HidBackend].
//
// # Example
//
//	backend := asynchid.NewHidBackend()
//	infos, err := backend.Enumerate(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	dev, err := backend.Open(ctx, infos[0].ID, asynchid.ModeReadWrite)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Close()
//
//	buf := make([]byte, 64)
//	n, err := dev.Read(ctx, buf)
//
// # Logging and errors
//
// Structured logging follows the same [log/slog]-backed, component-tagged
// convention across every backend; see internal/xlog. Errors returned from
// this package are one of [ErrNotConnected], [ErrDisconnected], or an
// [*Error] wrapping a platform-specific cause, checkable with errors.Is/As.
package asynchid
