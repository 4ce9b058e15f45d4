package hosttest

import (
	"testing"

	"github.com/wippyai/clr-host/errors"
	"github.com/wippyai/clr-host/marshal"
)

// The helpers below take addresses produced by a marshal.Arena, the same
// way the fake entry points receive them. Run with -race to have checkptr
// watch the conversions.
func TestMemoryHelpers(t *testing.T) {
	arena := marshal.NewArena(NewCountingAllocator())
	defer arena.Release()

	s, err := arena.CString("Type.Name")
	if err != nil {
		t.Fatalf("CString: %v", err)
	}
	if got := GoString(s); got != "Type.Name" {
		t.Errorf("GoString = %q", got)
	}
	if got := GoString(0); got != "" {
		t.Errorf("GoString(0) = %q", got)
	}

	props := marshal.Properties{{Key: "A", Value: "1"}, {Key: "B", Value: ""}}
	keys, values, err := arena.Properties(props)
	if err != nil {
		t.Fatalf("Properties: %v", err)
	}
	gotKeys := GoStrings(keys, 2)
	gotValues := GoStrings(values, 2)
	if len(gotKeys) != 2 || gotKeys[0] != "A" || gotKeys[1] != "B" {
		t.Errorf("keys = %q", gotKeys)
	}
	if len(gotValues) != 2 || gotValues[0] != "1" || gotValues[1] != "" {
		t.Errorf("values = %q", gotValues)
	}
	if GoStrings(0, 3) != nil {
		t.Error("GoStrings(0) should be nil")
	}

	word, err := arena.Slot()
	if err != nil {
		t.Fatalf("Slot: %v", err)
	}
	WriteUintptr(uintptr(word), HostPointer)
	if got := *(*uintptr)(word); got != HostPointer {
		t.Errorf("WriteUintptr stored %#x", got)
	}
	WriteUint32(uintptr(word), 7)
	if got := *(*uint32)(word); got != 7 {
		t.Errorf("WriteUint32 stored %d", got)
	}
}

func TestLibrary(t *testing.T) {
	lib := NewLibrary("/fake/lib.so")

	addr := lib.Export("add", func(args ...uintptr) uintptr { return args[0] + args[1] })
	got, err := lib.Lookup("add")
	if err != nil || got != addr {
		t.Fatalf("Lookup = %#x, %v", got, err)
	}
	if r := lib.Call(addr, 2, 3); r != 5 {
		t.Errorf("Call = %d", r)
	}
	if lib.Lookups("add") != 1 {
		t.Errorf("Lookups = %d", lib.Lookups("add"))
	}

	lib.Unexport("add")
	if _, err := lib.Lookup("add"); !errors.IsKind(err, errors.KindSymbolMissing) {
		t.Errorf("Lookup after Unexport = %v", err)
	}

	if err := lib.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := lib.Lookup("add"); !errors.IsKind(err, errors.KindClosed) {
		t.Errorf("Lookup after Close = %v", err)
	}
}

func TestStatus(t *testing.T) {
	if got := int32(Status(-1)); got != -1 {
		t.Errorf("Status(-1) round trip = %d", got)
	}
	if got := int32(Status(errors.StatusFail)); got != errors.StatusFail {
		t.Errorf("Status(E_FAIL) round trip = %#x", uint32(got))
	}
}
