//go:build windows

package windows

import (
	"unsafe"

	"github.com/ardnew/asynchid/internal/backend"
	"github.com/ardnew/asynchid/internal/xlog"
	"golang.org/x/sys/windows"
)

// listDeviceInterfaces returns every device interface path currently
// registered under guidDeviceInterfaceHID, using the
// size-then-fetch growing-buffer pattern CM_Get_Device_Interface_List
// requires (the list can grow between the size call and the fetch call,
// in which case CM_Get_Device_Interface_List returns CR_BUFFER_SMALL and
// the caller is expected to retry).
func listDeviceInterfaces() ([]string, error) {
	for attempt := 0; attempt < 8; attempt++ {
		var size uint32
		ret, _, _ := procCMGetDeviceInterfaceListSize.Call(
			uintptr(unsafe.Pointer(&size)),
			uintptr(unsafe.Pointer(&guidDeviceInterfaceHID)),
			0,
			uintptr(cmGetDeviceInterfaceListPresent),
		)
		if ret != cmrSuccess {
			return nil, cmError("CM_Get_Device_Interface_List_SizeW", ret)
		}
		if size == 0 {
			return nil, nil
		}

		buf := make([]uint16, size)
		ret, _, _ = procCMGetDeviceInterfaceList.Call(
			uintptr(unsafe.Pointer(&guidDeviceInterfaceHID)),
			0,
			uintptr(unsafe.Pointer(&buf[0])),
			uintptr(size),
			uintptr(cmGetDeviceInterfaceListPresent),
		)
		const crBufferSmall = 0x1a
		if ret == crBufferSmall {
			continue // list grew between the two calls; retry
		}
		if ret != cmrSuccess {
			return nil, cmError("CM_Get_Device_Interface_ListW", ret)
		}
		return splitMultiSZ(buf), nil
	}
	return nil, errDeviceListUnstable
}

// splitMultiSZ splits a Win32 MULTI_SZ (NUL-separated strings terminated
// by a double NUL) into Go strings.
func splitMultiSZ(buf []uint16) []string {
	var out []string
	start := 0
	for i, c := range buf {
		if c == 0 {
			if i > start {
				out = append(out, windows.UTF16ToString(buf[start:i]))
			}
			start = i + 1
		}
	}
	return out
}

// enumerate opens every HID device interface path long enough to read its
// attributes, capabilities, and strings, then closes it.
func enumerate() ([]backend.DeviceInfo, error) {
	paths, err := listDeviceInterfaces()
	if err != nil {
		return nil, err
	}

	infos := make([]backend.DeviceInfo, 0, len(paths))
	for _, path := range paths {
		info, ok := queryDeviceInfo(path)
		if !ok {
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// queryDeviceInfoByID re-opens the device interface path id and reports its
// current DeviceInfo. Each Windows HID device interface path already
// corresponds to exactly one top-level usage collection, so this always
// returns at most one record.
func queryDeviceInfoByID(id string) ([]backend.DeviceInfo, error) {
	info, ok := queryDeviceInfo(id)
	if !ok {
		return nil, backend.ErrDeviceDisconnected
	}
	return []backend.DeviceInfo{info}, nil
}

// queryDeviceInfo opens path without requesting read/write access (enough
// to query HID attributes and strings) and fills in a backend.DeviceInfo.
func queryDeviceInfo(path string) (backend.DeviceInfo, bool) {
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return backend.DeviceInfo{}, false
	}

	h, err := windows.CreateFile(pathPtr, 0,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE, nil,
		windows.OPEN_EXISTING, windows.FILE_FLAG_OVERLAPPED, 0)
	if err != nil {
		xlog.Debug(xlog.ComponentWindows, "skipping device interface, open failed", "path", path, "error", err)
		return backend.DeviceInfo{}, false
	}
	defer windows.CloseHandle(h)

	info := backend.DeviceInfo{ID: path}

	var attrs hiddAttributes
	attrs.size = uint32(unsafe.Sizeof(attrs))
	if ret, _, _ := procHidDGetAttributes.Call(uintptr(h), uintptr(unsafe.Pointer(&attrs))); ret != 0 {
		info.VendorID = attrs.vendorID
		info.ProductID = attrs.productID
	}

	if usagePage, usage, ok := queryCaps(h); ok {
		info.UsagePage = usagePage
		info.UsageID = usage
	}

	info.Name = queryHIDString(h, procHidDGetProductString)
	info.SerialNumber = queryHIDString(h, procHidDGetSerialNumberString)

	return info, true
}

func queryCaps(h windows.Handle) (usagePage, usage uint16, ok bool) {
	var preparsed uintptr
	if ret, _, _ := procHidDGetPreparsedData.Call(uintptr(h), uintptr(unsafe.Pointer(&preparsed))); ret == 0 {
		return 0, 0, false
	}
	defer procHidDFreePreparsedData.Call(preparsed)

	// HidP_GetCaps returns an NTSTATUS; HIDP_STATUS_SUCCESS is 0x00110000.
	const hidpStatusSuccess = 0x00110000
	var caps hidpCaps
	if ret, _, _ := procHidPGetCaps.Call(preparsed, uintptr(unsafe.Pointer(&caps))); ret != hidpStatusSuccess {
		return 0, 0, false
	}
	return caps.usagePage, caps.usage, true
}

func queryHIDString(h windows.Handle, proc *windows.LazyProc) string {
	buf := make([]uint16, 126)
	ret, _, _ := proc.Call(uintptr(h), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)*2))
	if ret == 0 {
		return ""
	}
	return windows.UTF16ToString(buf)
}
