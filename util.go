package asynchid

import "strconv"

// formatHex64 renders v as a lowercase 0x-prefixed hex string.
func formatHex64(v uint64) string {
	return "0x" + strconv.FormatUint(v, 16)
}

// formatUint64 renders v in decimal.
func formatUint64(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// parseUint64 parses a decimal string, returning 0 on error. Backend
// identity strings are produced by this module's own backends, so a parse
// failure here indicates a construction bug, not bad input to surface.
func parseUint64(s string) uint64 {
	v, _ := strconv.ParseUint(s, 10, 64)
	return v
}
