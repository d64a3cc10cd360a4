//go:build darwin

package darwin

/*
#include <IOKit/hid/IOHIDManager.h>
*/
import "C"

import "strconv"

// formatUint64 renders v in decimal, matching the identity-string encoding
// the root package's DeviceId expects back from this backend.
func formatUint64(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func parseUint64(s string) uint64 {
	v, _ := strconv.ParseUint(s, 10, 64)
	return v
}

// copyStringProperty reads a CFString device property into a Go string.
// 256 bytes comfortably covers every product/serial string macOS HID
// devices report in practice; a longer string is truncated rather than
// causing an allocation loop, since display/identification is the only
// use for these fields.
func copyStringProperty(device C.IOHIDDeviceRef, key C.CFStringRef) string {
	var buf [256]C.char
	n := C.copyCStringProperty(device, key, &buf[0], C.int(len(buf)))
	if n <= 0 {
		return ""
	}
	return C.GoStringN(&buf[0], n)
}
