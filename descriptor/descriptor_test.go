package descriptor

import "testing"

// A minimal generic-desktop mouse descriptor:
//   Usage Page (Generic Desktop) = 0x01
//   Usage (Mouse) = 0x02
//   Collection (Application)
//     ... (report fields omitted, not relevant to Scan)
//   End Collection
func TestScan_SingleTopLevelCollection(t *testing.T) {
	raw := []byte{
		0x05, 0x01, // Usage Page (Generic Desktop)
		0x09, 0x02, // Usage (Mouse)
		0xA1, 0x01, // Collection (Application)
		0xC0, // End Collection
	}

	got := Scan(raw)
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	if got[0].UsagePage != 0x01 || got[0].UsageID != 0x02 {
		t.Errorf("got[0] = %+v, want {UsagePage:1 UsageID:2}", got[0])
	}
}

func TestScan_NestedCollectionsNotReportedAsTopLevel(t *testing.T) {
	raw := []byte{
		0x05, 0x01, // Usage Page (Generic Desktop)
		0x09, 0x06, // Usage (Keyboard)
		0xA1, 0x01, // Collection (Application)
		0x09, 0x00, // Usage (nested, arbitrary)
		0xA1, 0x00, // Collection (Physical) - nested
		0xC0, // End Collection (closes Physical)
		0xC0, // End Collection (closes Application)
	}

	got := Scan(raw)
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1 (nested collection must not surface)", len(got))
	}
	if got[0].UsagePage != 0x01 || got[0].UsageID != 0x06 {
		t.Errorf("got[0] = %+v, want {UsagePage:1 UsageID:6}", got[0])
	}
}

func TestScan_MultipleTopLevelCollections(t *testing.T) {
	raw := []byte{
		0x05, 0x01, 0x09, 0x02, 0xA1, 0x01, 0xC0, // mouse
		0x05, 0x0C, 0x09, 0x01, 0xA1, 0x01, 0xC0, // consumer control
	}

	got := Scan(raw)
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if got[1].UsagePage != 0x0C || got[1].UsageID != 0x01 {
		t.Errorf("got[1] = %+v, want {UsagePage:0xC UsageID:1}", got[1])
	}
}

func TestScan_TruncatedDescriptorDoesNotPanic(t *testing.T) {
	raw := []byte{0x05} // Usage Page item missing its data byte

	got := Scan(raw)
	if len(got) != 0 {
		t.Errorf("len(got) = %d, want 0", len(got))
	}
}

func TestScan_EmptyDescriptor(t *testing.T) {
	if got := Scan(nil); len(got) != 0 {
		t.Errorf("Scan(nil) = %v, want empty", got)
	}
}

func TestScan_LongItemIsSkippedWithoutCorruptingState(t *testing.T) {
	raw := []byte{
		0x05, 0x01, // Usage Page
		0x09, 0x02, // Usage
		0xFE, 0x02, 0x7F, 0xAA, 0xBB, // long item, tag 0x7F, 2 bytes data
		0xA1, 0x01, // Collection (Application)
		0xC0,
	}

	got := Scan(raw)
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	if got[0].UsagePage != 0x01 || got[0].UsageID != 0x02 {
		t.Errorf("got[0] = %+v, want {UsagePage:1 UsageID:2}", got[0])
	}
}
