//go:build windows

package windows

import (
	"golang.org/x/sys/windows"
)

// guidDeviceInterfaceHID is GUID_DEVINTERFACE_HID, the device interface
// class every HID collection registers under.
var guidDeviceInterfaceHID = windows.GUID{
	Data1: 0x4d1e55b2,
	Data2: 0xf16f,
	Data3: 0x11cf,
	Data4: [8]byte{0x88, 0xcb, 0x00, 0x11, 0x11, 0x00, 0x00, 0x30},
}

// hid.dll and cfgmgr32.dll expose no typed wrappers in
// golang.org/x/sys/windows, so their procedures are resolved the same way
// the pack's nocgo keystroke backend resolves HidD_*/SetupDi*: lazy DLL
// loading plus NewProc, kept in one place so every call site shares the
// same *windows.LazyProc.
var (
	modHid       = windows.NewLazySystemDLL("hid.dll")
	modCfgMgr32  = windows.NewLazySystemDLL("cfgmgr32.dll")

	procHidDGetAttributes           = modHid.NewProc("HidD_GetAttributes")
	procHidDGetProductString        = modHid.NewProc("HidD_GetProductString")
	procHidDGetSerialNumberString   = modHid.NewProc("HidD_GetSerialNumberString")
	procHidDGetPreparsedData        = modHid.NewProc("HidD_GetPreparsedData")
	procHidDFreePreparsedData       = modHid.NewProc("HidD_FreePreparsedData")
	procHidPGetCaps                 = modHid.NewProc("HidP_GetCaps")
	procHidDGetFeature               = modHid.NewProc("HidD_GetFeature")
	procHidDSetFeature               = modHid.NewProc("HidD_SetFeature")

	procCMGetDeviceInterfaceListSize = modCfgMgr32.NewProc("CM_Get_Device_Interface_List_SizeW")
	procCMGetDeviceInterfaceList     = modCfgMgr32.NewProc("CM_Get_Device_Interface_ListW")
	procCMRegisterNotification       = modCfgMgr32.NewProc("CM_Register_Notification")
	procCMUnregisterNotification     = modCfgMgr32.NewProc("CM_Unregister_Notification")
)

const (
	cmGetDeviceInterfaceListPresent = 0
	cmrSuccess                      = 0

	cmNotifyFilterTypeDeviceInterface = 0

	cmNotifyActionDeviceInterfaceArrival = 0
	cmNotifyActionDeviceInterfaceRemoval = 1
)

// hiddAttributes mirrors HIDD_ATTRIBUTES.
type hiddAttributes struct {
	size          uint32
	vendorID      uint16
	productID     uint16
	versionNumber uint16
}

// hidpCaps mirrors HIDP_CAPS; the nine counts after
// NumberLinkCollectionNodes are kept only as padding, since nothing here
// reads past it.
type hidpCaps struct {
	usage                     uint16
	usagePage                 uint16
	inputReportByteLength     uint16
	outputReportByteLength    uint16
	featureReportByteLength   uint16
	reserved                  [17]uint16
	numberLinkCollectionNodes uint16
	_                         [9]uint16 // trailing counts this code never reads
}

// cmNotifyFilter mirrors CM_NOTIFY_FILTER for a device-interface filter.
type cmNotifyFilter struct {
	cbSize     uint32
	flags      uint32
	filterType uint32
	reserved   uint32
	data       [400]byte // union sized to its largest member (a 200-WCHAR instance ID); holds a GUID for DEVICEINTERFACE filters
}
