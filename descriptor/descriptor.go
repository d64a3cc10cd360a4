// Package descriptor scans raw HID report descriptors for their top-level
// usage collections, without building a full item tree. Most callers only
// need to know "what kind of device is this" (mouse, keyboard, gamepad,
// vendor-defined...), which is fully determined by the (usage page, usage)
// pair on each top-level Collection main item.
package descriptor

// Collection is the (usage page, usage) pair of one top-level Collection
// main item in a report descriptor, in descriptor order.
type Collection struct {
	UsagePage uint16
	UsageID   uint16
}

// HID 1.11 §6.2.2.4: a short item's prefix byte packs bTag (bits 4-7),
// bType (bits 2-3), and bSize (bits 0-1). Masking off bSize isolates the
// (tag, type) pair, which is all Scan needs to distinguish.
const (
	keyUsagePage      = 0x04 // Global item, tag 0
	keyUsage          = 0x08 // Local item, tag 0
	keyCollection     = 0xA0 // Main item, tag 0xA
	keyEndCollection  = 0xC0 // Main item, tag 0xC
	longItemPrefix    = 0xFE
	shortItemKeyMask  = 0xFC
	shortItemSizeMask = 0x03
)

// Scan walks a raw HID report descriptor and returns one Collection per
// top-level Collection main item, in descriptor order. It never panics:
// a truncated or malformed descriptor simply stops early and returns
// whatever collections were found before the truncation.
func Scan(raw []byte) []Collection {
	var (
		collections []Collection
		usagePage   uint16
		usage       uint16
		haveUsage   bool
		depth       int
	)

	i := 0
	for i < len(raw) {
		prefix := raw[i]
		i++

		var (
			key  byte
			data []byte
		)
		if prefix == longItemPrefix {
			if i+2 > len(raw) {
				break
			}
			dataSize := int(raw[i])
			tag := raw[i+1]
			i += 2
			if i+dataSize > len(raw) {
				break
			}
			data = raw[i : i+dataSize]
			i += dataSize
			key = tag // long items carry no meaningful bType for our purposes
		} else {
			size := shortItemDataSize(prefix)
			if i+size > len(raw) {
				break
			}
			data = raw[i : i+size]
			i += size
			key = prefix & shortItemKeyMask
		}

		switch key {
		case keyUsagePage:
			usagePage = littleEndianUint16(data)
		case keyUsage:
			usage = littleEndianUint16(data)
			haveUsage = true
		case keyCollection:
			if depth == 0 && haveUsage {
				collections = append(collections, Collection{UsagePage: usagePage, UsageID: usage})
			}
			depth++
			haveUsage = false
		case keyEndCollection:
			if depth > 0 {
				depth--
			}
		}
	}

	return collections
}

// shortItemDataSize maps the 2-bit bSize field to its actual byte count:
// 0, 1, 2, or 4 (the encoding 3 means 4 bytes, not 3).
func shortItemDataSize(prefix byte) int {
	switch prefix & shortItemSizeMask {
	case 0:
		return 0
	case 1:
		return 1
	case 2:
		return 2
	default:
		return 4
	}
}

func littleEndianUint16(data []byte) uint16 {
	var v uint16
	for i, b := range data {
		if i >= 2 {
			break
		}
		v |= uint16(b) << (8 * i)
	}
	return v
}
