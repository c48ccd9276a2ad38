package errcode

import (
	"errors"
	"testing"
)

func TestCodeIsError(t *testing.T) {
	var err error = InvalidArg
	if err.Error() != "invalid_argument" {
		t.Errorf("Error() = %q", err.Error())
	}
	if Of(err) != InvalidArg {
		t.Errorf("Of = %v", Of(err))
	}
}

func TestOf(t *testing.T) {
	if Of(nil) != OK {
		t.Error("Of(nil) != OK")
	}
	if Of(errors.New("plain")) != Error {
		t.Error("plain error should map to generic Error")
	}
	wrapped := &E{C: DriverFailure, Op: "fan.set_duty", Err: errors.New("i2c timeout")}
	if Of(wrapped) != DriverFailure {
		t.Errorf("Of(E) = %v", Of(wrapped))
	}
}

func TestDriverWrap(t *testing.T) {
	if Driver("op", nil) != nil {
		t.Error("Driver(nil) should be nil")
	}
	cause := errors.New("bus stuck")
	err := Driver("mux.sel0", cause)
	if Of(err) != DriverFailure {
		t.Errorf("code = %v", Of(err))
	}
	if !errors.Is(err, cause) {
		t.Error("cause not unwrappable")
	}
	if err.Error() != "mux.sel0: driver_failure" {
		t.Errorf("message = %q", err.Error())
	}
}
