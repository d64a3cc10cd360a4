package asynchid

import (
	"context"

	"github.com/ardnew/asynchid/internal/backend"
)

// Device is an open HID device. Its method set is restricted by the
// [AccessMode] it was opened with: calling Read on a write-only device (or
// Write on a read-only one) returns an error rather than panicking, since
// the mode is a runtime value chosen by the caller of [HidBackend.Open].
type Device struct {
	handle backend.Handle
	id     DeviceId
	mode   AccessMode
}

// ID returns the device's platform-native identity.
func (d *Device) ID() DeviceId { return d.id }

// Mode returns the access mode the device was opened with.
func (d *Device) Mode() AccessMode { return d.mode }

// Read blocks for one input report, copies it into buf, and returns its
// length. It returns [ErrDisconnected] if the device was removed while the
// read was pending, or ctx.Err() if ctx is cancelled first.
func (d *Device) Read(ctx context.Context, buf []byte) (int, error) {
	n, err := d.handle.Read(ctx, buf)
	if err != nil {
		return 0, wrapHandleError("read", err)
	}
	return n, nil
}

// Write sends buf as an output report; buf[0] must be the report ID (0 for
// devices without numbered reports).
func (d *Device) Write(ctx context.Context, buf []byte) (int, error) {
	n, err := d.handle.Write(ctx, buf)
	if err != nil {
		return 0, wrapHandleError("write", err)
	}
	return n, nil
}

// GetFeatureReport requests the feature report identified by reportID and
// copies it into buf, returning the number of bytes written.
func (d *Device) GetFeatureReport(ctx context.Context, reportID byte, buf []byte) (int, error) {
	n, err := d.handle.GetFeature(ctx, reportID, buf)
	if err != nil {
		return 0, wrapHandleError("get feature report", err)
	}
	return n, nil
}

// SetFeatureReport sends buf as a feature report; buf[0] must be the
// report ID.
func (d *Device) SetFeatureReport(ctx context.Context, buf []byte) error {
	if err := d.handle.SetFeature(ctx, buf); err != nil {
		return wrapHandleError("set feature report", err)
	}
	return nil
}

// Close releases the device handle. Safe to call more than once.
func (d *Device) Close() error {
	return d.handle.Close()
}

func wrapHandleError(op string, err error) error {
	switch err {
	case context.Canceled, context.DeadlineExceeded:
		return err
	case backend.ErrDeviceDisconnected:
		return ErrDisconnected
	default:
		return NewError(op, "", err)
	}
}

// DeviceReader is the read-only view of a [Device], for callers that want
// to express intent at the type level (e.g. a function that only ever
// consumes input reports).
type DeviceReader interface {
	Read(ctx context.Context, buf []byte) (int, error)
}

// DeviceWriter is the write-only view of a [Device].
type DeviceWriter interface {
	Write(ctx context.Context, buf []byte) (int, error)
	SetFeatureReport(ctx context.Context, buf []byte) error
}

// DeviceReaderWriter is the full read/write view of a [Device].
type DeviceReaderWriter interface {
	DeviceReader
	DeviceWriter
	GetFeatureReport(ctx context.Context, reportID byte, buf []byte) (int, error)
}

var (
	_ DeviceReader       = (*Device)(nil)
	_ DeviceWriter       = (*Device)(nil)
	_ DeviceReaderWriter = (*Device)(nil)
)
