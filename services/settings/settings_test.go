package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"carriercode-go/errcode"
	"carriercode-go/types"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

// fakeCore records setter calls in order.
type fakeCore struct {
	status types.HardwareStatus
	calls  []string
	failOn string
}

func (f *fakeCore) check(call string) error {
	if f.failOn != "" && f.failOn == call {
		return errcode.Error
	}
	f.calls = append(f.calls, call)
	return nil
}

func (f *fakeCore) Status() (types.HardwareStatus, error) { return f.status, nil }

func (f *fakeCore) SetFanSpeed(speed uint8) error {
	return f.check(fmt.Sprintf("fan %d", speed))
}

func (f *fakeCore) SetStripColor(id types.StripID, col types.Color) error {
	return f.check(fmt.Sprintf("color %s %d,%d,%d", id, col.R, col.G, col.B))
}

func (f *fakeCore) SetStripBrightness(id types.StripID, b uint8) error {
	return f.check(fmt.Sprintf("bright %s %d", id, b))
}

func newFileService(t *testing.T, hw Core) (*Service, *FileStore) {
	t.Helper()
	fs := NewFileStore(filepath.Join(t.TempDir(), "settings.yaml"))
	return New(fs, hw), fs
}

func TestCaptureThenApplyRoundTrip(t *testing.T) {
	hw := &fakeCore{status: types.HardwareStatus{
		Initialized:        true,
		FanSpeed:           70,
		BoardLEDColor:      types.Color{R: 10, G: 20, B: 30},
		BoardLEDBrightness: 80,
		TouchLEDColor:      types.Color{R: 1, G: 2, B: 3},
		TouchLEDBrightness: 90,
	}}
	svc, _ := newFileService(t, hw)

	if err := svc.Capture(); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if err := svc.Apply(); err != nil {
		t.Fatalf("apply: %v", err)
	}

	want := []string{
		"fan 70",
		"color board 10,20,30",
		"bright board 80",
		"color touch 1,2,3",
		"bright touch 90",
	}
	if len(hw.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", hw.calls, want)
	}
	for i := range want {
		if hw.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, hw.calls[i], want[i])
		}
	}
}

func TestApplyWithoutSavedFileUsesDefaults(t *testing.T) {
	hw := &fakeCore{}
	svc, _ := newFileService(t, hw)

	if err := svc.Apply(); err != nil {
		t.Fatalf("apply: %v", err)
	}
	// Defaults: everything quiet, brightness 50.
	want := []string{
		"fan 0",
		"color board 0,0,0",
		"bright board 50",
		"color touch 0,0,0",
		"bright touch 50",
	}
	for i := range want {
		if hw.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, hw.calls[i], want[i])
		}
	}
}

func TestApplyAbortsOnFirstError(t *testing.T) {
	hw := &fakeCore{failOn: "bright board 50"}
	svc, _ := newFileService(t, hw)

	if err := svc.Apply(); err == nil {
		t.Fatal("expected error")
	}
	// Touch strip setters never ran.
	for _, call := range hw.calls {
		if call == "color touch 0,0,0" {
			t.Error("apply continued past a failed setter")
		}
	}
}

func TestClearRemovesFile(t *testing.T) {
	hw := &fakeCore{status: types.HardwareStatus{FanSpeed: 25}}
	svc, fs := newFileService(t, hw)

	if err := svc.Capture(); err != nil {
		t.Fatal(err)
	}
	if err := svc.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, found, err := fs.Load(); err != nil || found {
		t.Errorf("load after clear: found=%v err=%v, want absent", found, err)
	}
	// Clearing twice is fine.
	if err := svc.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestNilCoreRejected(t *testing.T) {
	svc, _ := newFileService(t, nil)
	if err := svc.Apply(); errcode.Of(err) != errcode.NullTarget {
		t.Errorf("apply: got %v, want null_target", err)
	}
	if err := svc.Capture(); errcode.Of(err) != errcode.NullTarget {
		t.Errorf("capture: got %v, want null_target", err)
	}
}

func TestFileStorePartialKeysKeepDefaults(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "settings.yaml"))
	if err := writeFile(fs.Path, "fan_speed: 33\nboard_led_r: 200\n"); err != nil {
		t.Fatal(err)
	}
	v, found, err := fs.Load()
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if v.FanSpeed != 33 || v.BoardLEDR != 200 {
		t.Errorf("stored keys not loaded: %+v", v)
	}
	if v.BoardBright != 50 || v.TouchBright != 50 {
		t.Errorf("missing keys lost their defaults: %+v", v)
	}
}
