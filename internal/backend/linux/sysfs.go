//go:build linux

package linux

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ardnew/asynchid/descriptor"
	"github.com/ardnew/asynchid/internal/backend"
	"github.com/ardnew/asynchid/internal/xlog"
	"github.com/ardnew/asynchid/pkg/linux/usbid"
)

// ids is the shared usb.ids database, loaded lazily on first use so a
// process that never hits a hidraw entry missing HID_NAME never pays for
// parsing it.
var ids = usbid.New()

// scanHidraw lists every /sys/class/hidraw/hidraw* entry and parses it into
// a backend.DeviceInfo. Entries that can't be fully parsed (raced against a
// concurrent unplug) are skipped rather than failing the whole scan.
func scanHidraw() ([]backend.DeviceInfo, error) {
	entries, err := os.ReadDir(sysfsHidrawClassPath)
	if err != nil {
		return nil, err
	}

	infos := make([]backend.DeviceInfo, 0, len(entries))
	for _, ent := range entries {
		infos = append(infos, parseHidrawEntry(ent.Name())...)
	}
	return infos, nil
}

// parseHidrawEntry reads everything needed to build the DeviceInfo records
// for the hidraw device named name (e.g. "hidraw3"). A hidraw node backs a
// single physical HID interface, but that interface's report descriptor may
// declare more than one top-level collection (e.g. a keyboard also exposing
// a vendor-defined consumer-control collection); one DeviceInfo is emitted
// per top-level collection, all sharing the hidraw node's ID.
func parseHidrawEntry(name string) []backend.DeviceInfo {
	classPath := filepath.Join(sysfsHidrawClassPath, name)

	uevent, err := readUeventFile(filepath.Join(classPath, "device", "uevent"))
	if err != nil {
		// Some kernels place the device uevent directly under the class
		// entry instead of a nested "device" directory.
		uevent, err = readUeventFile(filepath.Join(classPath, "uevent"))
		if err != nil {
			xlog.Debug(xlog.ComponentLinux, "skip hidraw entry: no uevent", "entry", name, "error", err)
			return nil
		}
	}

	vendorID, productID, ok := parseHidID(uevent["HID_ID"])
	if !ok {
		xlog.Debug(xlog.ComponentLinux, "skip hidraw entry: malformed HID_ID", "entry", name, "hid_id", uevent["HID_ID"])
		return nil
	}

	deviceName := uevent["HID_NAME"]
	if deviceName == "" {
		deviceName = lookupFallbackName(vendorID, productID)
	}

	usages := readReportUsages(classPath)
	infos := make([]backend.DeviceInfo, 0, len(usages))
	for _, u := range usages {
		infos = append(infos, backend.DeviceInfo{
			ID:           devHidrawPathPrefix + name,
			Name:         deviceName,
			VendorID:     vendorID,
			ProductID:    productID,
			UsagePage:    u.UsagePage,
			UsageID:      u.UsageID,
			SerialNumber: uevent["HID_UNIQ"],
		})
	}
	return infos
}

// lookupFallbackName consults the system usb.ids database for a device
// whose kernel driver reported no HID_NAME (seen on some Bluetooth HID
// devices whose uevent carries only the HID_ID).
func lookupFallbackName(vendorID, productID uint16) string {
	if !ids.Load() {
		return ""
	}
	if product := ids.LookupProduct(vendorID, productID); product != "" {
		return product
	}
	return ids.LookupVendor(vendorID)
}

// readReportUsages reads the binary report descriptor (when the kernel
// exposes one at <classPath>/device/report_descriptor) and returns one
// entry per top-level usage collection it declares. When no descriptor is
// available, or it declares none, a single zero-valued (0, 0) collection is
// returned so the caller still emits one DeviceInfo for the interface.
func readReportUsages(classPath string) []descriptor.Collection {
	raw, err := os.ReadFile(filepath.Join(classPath, "device", "report_descriptor"))
	if err != nil {
		return []descriptor.Collection{{}}
	}
	collections := descriptor.Scan(raw)
	if len(collections) == 0 {
		return []descriptor.Collection{{}}
	}
	return collections
}

// readUeventFile parses a sysfs "uevent" file into its KEY=VALUE pairs.
func readUeventFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]string)
	for _, line := range strings.Split(string(raw), "\n") {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		fields[key] = value
	}
	return fields, nil
}

// parseHidID parses a HID_ID field of the form "BUS:VENDOR:PRODUCT", where
// VENDOR and PRODUCT are zero-padded 8-hex-digit fields whose meaningful
// value is their low 16 bits.
func parseHidID(hidID string) (vendorID, productID uint16, ok bool) {
	parts := strings.Split(hidID, ":")
	if len(parts) != 3 {
		return 0, 0, false
	}
	v, err := strconv.ParseUint(parts[1], 16, 32)
	if err != nil {
		return 0, 0, false
	}
	p, err := strconv.ParseUint(parts[2], 16, 32)
	if err != nil {
		return 0, 0, false
	}
	return uint16(v), uint16(p), true
}
