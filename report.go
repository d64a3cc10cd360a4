package asynchid

// Report is a single HID input, output, or feature report, stored with its
// report-ID byte in place at index 0. Devices that don't use numbered
// reports always carry a 0x00 there; callers working with report content
// should use [Report.ID] and [Report.Data] rather than indexing directly.
type Report []byte

// NewReport allocates a Report of the given payload size (excluding the
// report-ID byte) and sets its ID.
func NewReport(id byte, size int) Report {
	r := make(Report, size+1)
	r[0] = id
	return r
}

// ReportFromBytes wraps raw bytes as already containing the report-ID byte
// at index 0. It does not copy.
func ReportFromBytes(b []byte) Report {
	return Report(b)
}

// ID returns the report-ID byte, or 0 for an empty report.
func (r Report) ID() byte {
	if len(r) == 0 {
		return 0
	}
	return r[0]
}

// SetID overwrites the report-ID byte. It is a no-op on an empty report.
func (r Report) SetID(id byte) {
	if len(r) > 0 {
		r[0] = id
	}
}

// Data returns the payload following the report-ID byte.
func (r Report) Data() []byte {
	if len(r) == 0 {
		return nil
	}
	return r[1:]
}
