//go:build darwin

package darwin

import "fmt"

// IOReturnError wraps a macOS IOReturn status code from an IOKit call.
type IOReturnError struct {
	Op   string
	Code int32
}

// NewIOReturnError builds an IOReturnError for a failed IOKit call named op.
func NewIOReturnError(op string, code int32) *IOReturnError {
	return &IOReturnError{Op: op, Code: code}
}

func (e *IOReturnError) Error() string {
	return fmt.Sprintf("iokit: %s failed: IOReturn 0x%08x", e.Op, uint32(e.Code))
}
