//go:build linux

package linux

// Sysfs locations for hidraw devices and their backing HID device.
const (
	sysfsHidrawClassPath = "/sys/class/hidraw"
	devHidrawPathPrefix  = "/dev/"
)

const (
	// maxReportDescriptorSize matches HID_MAX_DESCRIPTOR_SIZE in the
	// kernel's linux/hid.h.
	maxReportDescriptorSize = 4096

	// uEventBufferSize is generous headroom over the largest observed
	// kernel uevent payload for a USB HID add/remove event.
	uEventBufferSize = 2048

	// maxEpollEvents bounds one epoll_wait batch.
	maxEpollEvents = 32

	// netlinkKObjectUEvent is NETLINK_KOBJECT_UEVENT from linux/netlink.h.
	netlinkKObjectUEvent = 15

	// netlinkGroupKernel is the kernel broadcast multicast group; uevents
	// delivered here are the raw kernel format (no udev framing).
	netlinkGroupKernel = 1
)

// ioctl request codes for /dev/hidraw*, computed the same way the kernel's
// _IOR/_IOC macros in linux/hidraw.h do. golang.org/x/sys/unix does not
// define these (they are driver-specific, not general-purpose), so they are
// derived here from the public ioctl encoding:
//
//	_IOC(dir, type, nr, size) = dir<<30 | type<<8 | nr | size<<16
const (
	iocNone  = 0
	iocWrite = 1
	iocRead  = 2

	iocTypeHID = 'H'
)

func iocEncode(dir, typ, nr, size uintptr) uintptr {
	return dir<<30 | typ<<8 | nr | size<<16
}

var (
	hidiocGRDescSize = iocEncode(iocRead, iocTypeHID, 0x01, 4)
	hidiocGRDesc     = iocEncode(iocRead, iocTypeHID, 0x02, 4+maxReportDescriptorSize)
	hidiocGRawInfo   = iocEncode(iocRead, iocTypeHID, 0x03, 8)
)

// hidiocGFeature and hidiocSFeature are parameterized by the report buffer
// length, which varies per call, so they are computed on demand rather than
// cached as package-level vars.
func hidiocGFeature(length int) uintptr {
	return iocEncode(iocWrite|iocRead, iocTypeHID, 0x07, uintptr(length))
}

func hidiocSFeature(length int) uintptr {
	return iocEncode(iocWrite|iocRead, iocTypeHID, 0x06, uintptr(length))
}
