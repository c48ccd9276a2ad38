package hwctrl

import (
	"time"

	"carriercode-go/types"
)

// Level is a digital pin level.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "HIGH"
	}
	return "LOW"
}

// -----------------------------------------------------------------------------
// Backend interfaces
// -----------------------------------------------------------------------------

// PinDriver is the board's digital I/O surface. Direction-mode changes are
// persistent in the underlying peripheral, so the two read variants are
// deliberately separate:
//
//   - ReadInputMode reconfigures the pin as an input and reads it. Safe for
//     pins meant to be probed, wrong for pins currently driven as outputs.
//   - ReadRawLevel reads without touching the direction. It can still
//     disturb a driven output on some parts; power-sequencing code never
//     calls it.
type PinDriver interface {
	// SetOutput configures pin as an output and drives level.
	SetOutput(pin int, level Level) error
	// ReadInputMode configures pin as an input and returns its level.
	ReadInputMode(pin int) (Level, error)
	// ReadRawLevel returns the pin level without reconfiguring direction.
	ReadRawLevel(pin int) (Level, error)
}

// PWMChannel drives the fan. A speed change is committed with a SetDuty
// followed by Update, the latch pair of the underlying peripheral.
type PWMChannel interface {
	Configure(freqHz uint32, top uint16) error
	SetDuty(duty uint16) error
	Update() error
}

// StripDriver is one addressable LED chain. SetPixel only stages a value;
// nothing reaches the wire until Refresh.
type StripDriver interface {
	Len() int
	SetPixel(i int, c types.Color) error
	Refresh() error
}

// Backend bundles the peripherals the controller owns.
type Backend struct {
	Pins  PinDriver
	Fan   PWMChannel
	Board StripDriver
	Touch StripDriver
}

// -----------------------------------------------------------------------------
// Board profile
// -----------------------------------------------------------------------------

// PinMap assigns board functions to GPIO numbers.
type PinMap struct {
	FanPWM     int
	BoardStrip int
	TouchStrip int

	MuxSel0 int
	MuxSel1 int

	MainPower    int // active-low shutdown control
	MainReset    int
	MainRecovery int // boot strap, asserted across a reset to enter recovery

	AuxPowerBtn int // momentary button emulation
	AuxReset    int
}

// Timings holds the pulse protocol durations. They are part of the
// downstream modules' boot-strap contracts, not tunables.
type Timings struct {
	MainResetPulse  time.Duration
	MainStrapSettle time.Duration // strap asserted this long before reset
	MainPostReset   time.Duration // strap held this long after reset
	AuxPowerPulse   time.Duration
	AuxResetPulse   time.Duration
}

// Config is the compile-time board profile.
type Config struct {
	Pins PinMap

	FanFreqHz uint32
	FanTop    uint16

	DefaultBrightness uint8 // percent
	DefaultFanOnSpeed uint8 // percent

	Timings Timings
}

// DefaultConfig returns the carrier rev A profile.
func DefaultConfig() Config {
	return Config{
		Pins: PinMap{
			FanPWM:       41,
			BoardStrip:   42,
			TouchStrip:   45,
			MuxSel0:      8,
			MuxSel1:      48,
			MainPower:    3,
			MainReset:    1,
			MainRecovery: 40,
			AuxPowerBtn:  46,
			AuxReset:     2,
		},
		FanFreqHz:         25_000,
		FanTop:            255,
		DefaultBrightness: 50,
		DefaultFanOnSpeed: 50,
		Timings: Timings{
			MainResetPulse:  time.Second,
			MainStrapSettle: time.Second,
			MainPostReset:   time.Second,
			AuxPowerPulse:   300 * time.Millisecond,
			AuxResetPulse:   300 * time.Millisecond,
		},
	}
}

// Strip lengths are fixed board topology, not configuration.
const (
	BoardStripLen = 28
	TouchStripLen = 1
)
