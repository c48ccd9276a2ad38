package hwctrl

import (
	"testing"

	"carriercode-go/errcode"
	"carriercode-go/types"
)

func TestSetMuxTargetEncoding(t *testing.T) {
	r := newInitializedRig()
	p := DefaultConfig().Pins

	cases := []struct {
		target     types.MuxTarget
		sel0, sel1 Level
	}{
		{types.MuxMain, High, Low},
		{types.MuxAux, High, High},
		{types.MuxController, Low, Low},
	}
	for _, tc := range cases {
		if err := r.c.SetMuxTarget(tc.target); err != nil {
			t.Fatalf("%v: %v", tc.target, err)
		}
		if r.pins.levels[p.MuxSel0] != tc.sel0 || r.pins.levels[p.MuxSel1] != tc.sel1 {
			t.Errorf("%v: sel = %v/%v, want %v/%v", tc.target,
				r.pins.levels[p.MuxSel0], r.pins.levels[p.MuxSel1], tc.sel0, tc.sel1)
		}
		if got := r.c.MuxTarget(); got != tc.target {
			t.Errorf("stored target = %v, want %v", got, tc.target)
		}
	}
}

func TestSetMuxTargetRejectsInvalid(t *testing.T) {
	r := newInitializedRig()
	writes := len(r.pins.log)
	err := r.c.SetMuxTarget(types.MuxTarget(7))
	if errcode.Of(err) != errcode.InvalidArg {
		t.Fatalf("got %v, want invalid_argument", err)
	}
	if len(r.pins.log) != writes {
		t.Error("invalid target reached the select lines")
	}
}

func TestSetMuxTargetAbortsOnPinFailure(t *testing.T) {
	r := newInitializedRig()
	p := DefaultConfig().Pins

	r.pins.failOn[p.MuxSel0] = errcode.Error
	err := r.c.SetMuxTarget(types.MuxMain)
	if errcode.Of(err) != errcode.DriverFailure {
		t.Fatalf("got %v, want driver_failure", err)
	}
	// Stored route unchanged on failure.
	if got := r.c.MuxTarget(); got != types.MuxController {
		t.Errorf("stored target = %v after failed switch, want controller", got)
	}
}
