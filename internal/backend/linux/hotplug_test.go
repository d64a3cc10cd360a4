//go:build linux

package linux

import "testing"

func TestParseUEvent_KernelFrameAdd(t *testing.T) {
	raw := []byte("add@/devices/pci0000:00/0000:00:14.0/usb1/1-1/1-1:1.0/0003:046D:C52B.0001/hidraw/hidraw3\x00" +
		"ACTION=add\x00" +
		"DEVPATH=/devices/pci0000:00/0000:00:14.0/usb1/1-1/1-1:1.0/0003:046D:C52B.0001/hidraw/hidraw3\x00" +
		"SUBSYSTEM=hidraw\x00")

	evt, ok := parseUEvent(raw)
	if !ok {
		t.Fatal("parseUEvent returned ok=false for a well-formed kernel frame")
	}
	if evt.action != ueventAdd {
		t.Errorf("action = %v, want ueventAdd", evt.action)
	}
	if evt.subsystem != "hidraw" {
		t.Errorf("subsystem = %q, want %q", evt.subsystem, "hidraw")
	}
}

func TestParseUEvent_KernelFrameRemove(t *testing.T) {
	raw := []byte("remove@/devices/.../hidraw/hidraw3\x00" +
		"ACTION=remove\x00" +
		"SUBSYSTEM=hidraw\x00" +
		"DEVPATH=/devices/.../hidraw/hidraw3\x00")

	evt, ok := parseUEvent(raw)
	if !ok {
		t.Fatal("parseUEvent returned ok=false")
	}
	if evt.action != ueventRemove {
		t.Errorf("action = %v, want ueventRemove", evt.action)
	}
}

func TestParseUEvent_RejectsFrameWithoutAtSign(t *testing.T) {
	raw := []byte("not-a-valid-first-line\x00ACTION=add\x00")
	if _, ok := parseUEvent(raw); ok {
		t.Error("parseUEvent should reject a first line with no '@'")
	}
}

func TestParseUEvent_EmptyInput(t *testing.T) {
	if _, ok := parseUEvent(nil); ok {
		t.Error("parseUEvent(nil) should return ok=false")
	}
}

func TestHidrawNameFromDevpath(t *testing.T) {
	cases := map[string]string{
		"/devices/.../hidraw/hidraw3": "hidraw3",
		"/devices/.../input/input7":   "",
	}
	for devpath, want := range cases {
		if got := hidrawNameFromDevpath(devpath); got != want {
			t.Errorf("hidrawNameFromDevpath(%q) = %q, want %q", devpath, got, want)
		}
	}
}
