//go:build darwin

// Package darwin implements the HID backend on macOS using IOKit's
// IOHIDManager/IOHIDDevice, with matching/removal/input-report callbacks
// delivered from a CFRunLoop running on its own OS-thread-locked goroutine
// so they never compete with the caller's own run loop.
package darwin

/*
#cgo LDFLAGS: -framework IOKit -framework CoreFoundation -framework Foundation
#include <IOKit/hid/IOHIDManager.h>
#include <IOKit/hid/IOHIDDevice.h>
#include <IOKit/hid/IOHIDKeys.h>
#include <CoreFoundation/CoreFoundation.h>
#include <dispatch/dispatch.h>
#include <stdlib.h>

// Forward declarations of the Go-exported callback entry points, called
// back into from the C trampolines registered with IOKit. IOKit's C API
// cannot call a Go function pointer directly, so each callback IOKit
// invokes is a tiny static C trampoline that forwards to Go.
extern void goInputReportCallback(void *context, IOReturn result, void *sender,
                                   IOHIDReportType type, uint32_t reportID,
                                   uint8_t *report, CFIndex length);
extern void goRemovalCallback(void *context, IOReturn result, void *sender);
extern void goMatchingCallback(void *context, IOReturn result, void *sender, IOHIDDeviceRef device);

static void inputReportTrampoline(void *context, IOReturn result, void *sender,
                                   IOHIDReportType type, uint32_t reportID,
                                   uint8_t *report, CFIndex length) {
    goInputReportCallback(context, result, sender, type, reportID, report, length);
}

static void removalTrampoline(void *context, IOReturn result, void *sender) {
    goRemovalCallback(context, result, sender);
}

static void matchingTrampoline(void *context, IOReturn result, void *sender, IOHIDDeviceRef device) {
    goMatchingCallback(context, result, sender, device);
}

static void registerInputReportCallback(IOHIDDeviceRef device, void *context, uint8_t *buf, CFIndex bufLen) {
    IOHIDDeviceRegisterInputReportCallback(device, buf, bufLen, inputReportTrampoline, context);
}

static void registerRemovalCallback(IOHIDDeviceRef device, void *context) {
    IOHIDDeviceRegisterRemovalCallback(device, removalTrampoline, context);
}

static void registerMatchingCallback(IOHIDManagerRef mgr, void *context) {
    IOHIDManagerRegisterDeviceMatchingCallback(mgr, matchingTrampoline, context);
}

static void registerManagerRemovalCallback(IOHIDManagerRef mgr, void *context) {
    IOHIDManagerRegisterDeviceRemovalCallback(mgr, removalTrampoline, context);
}

// IOHIDKeys.h defines each of these as CFSTR(...), a compiler builtin that
// cgo cannot reference directly; these wrappers give Go a plain function
// call that returns the same constant CFStringRef.
static CFStringRef keyProduct(void)          { return CFSTR(kIOHIDProductKey); }
static CFStringRef keySerialNumber(void)      { return CFSTR(kIOHIDSerialNumberKey); }
static CFStringRef keyVendorID(void)          { return CFSTR(kIOHIDVendorIDKey); }
static CFStringRef keyProductID(void)         { return CFSTR(kIOHIDProductIDKey); }
static CFStringRef keyPrimaryUsagePage(void)  { return CFSTR(kIOHIDPrimaryUsagePageKey); }
static CFStringRef keyPrimaryUsage(void)      { return CFSTR(kIOHIDPrimaryUsageKey); }
static CFStringRef keyMaxInputReportSize(void) { return CFSTR(kIOHIDMaxInputReportSizeKey); }
static CFStringRef keyUsagePairs(void)        { return CFSTR(kIOHIDDeviceUsagePairsKey); }
static CFStringRef keyUsagePairUsagePage(void) { return CFSTR(kIOHIDDeviceUsagePageKey); }
static CFStringRef keyUsagePairUsage(void)     { return CFSTR(kIOHIDDeviceUsageKey); }

static long getIntProperty(IOHIDDeviceRef device, CFStringRef key, long fallback) {
    CFTypeRef ref = IOHIDDeviceGetProperty(device, key);
    if (ref == NULL || CFGetTypeID(ref) != CFNumberGetTypeID()) {
        return fallback;
    }
    long value = fallback;
    CFNumberGetValue((CFNumberRef)ref, kCFNumberLongType, &value);
    return value;
}

// copyUsagePairs reads kIOHIDDeviceUsagePairsKey, an array of dictionaries
// each carrying a (usage page, usage) pair, and writes up to maxCount of
// them into outPages/outUsages. It returns the number written, or 0 if the
// device exposes no secondary usage pairs (the common case: most HID
// devices declare only their primary usage).
static int copyUsagePairs(IOHIDDeviceRef device, uint16_t *outPages, uint16_t *outUsages, int maxCount) {
    CFTypeRef ref = IOHIDDeviceGetProperty(device, keyUsagePairs());
    if (ref == NULL || CFGetTypeID(ref) != CFArrayGetTypeID()) {
        return 0;
    }
    CFArrayRef pairs = (CFArrayRef)ref;
    CFIndex count = CFArrayGetCount(pairs);
    int n = 0;
    for (CFIndex i = 0; i < count && n < maxCount; i++) {
        CFTypeRef elem = CFArrayGetValueAtIndex(pairs, i);
        if (elem == NULL || CFGetTypeID(elem) != CFDictionaryGetTypeID()) {
            continue;
        }
        CFDictionaryRef dict = (CFDictionaryRef)elem;
        CFNumberRef pageNum = (CFNumberRef)CFDictionaryGetValue(dict, keyUsagePairUsagePage());
        CFNumberRef usageNum = (CFNumberRef)CFDictionaryGetValue(dict, keyUsagePairUsage());
        if (pageNum == NULL || usageNum == NULL) {
            continue;
        }
        long page = 0, usage = 0;
        CFNumberGetValue(pageNum, kCFNumberLongType, &page);
        CFNumberGetValue(usageNum, kCFNumberLongType, &usage);
        outPages[n] = (uint16_t)page;
        outUsages[n] = (uint16_t)usage;
        n++;
    }
    return n;
}
*/
import "C"
