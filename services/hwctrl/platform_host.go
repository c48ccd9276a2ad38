//go:build !(rp2040 || rp2350) && !(linux && arm64)

package hwctrl

import "carriercode-go/types"

// Host backend: no hardware, everything is a silent sink. It exists so
// the firmware links and runs on a development machine.

type hostPins struct{}

func (hostPins) SetOutput(pin int, level Level) error { return nil }
func (hostPins) ReadInputMode(pin int) (Level, error) { return Low, nil }
func (hostPins) ReadRawLevel(pin int) (Level, error)  { return Low, nil }

type hostPWM struct{}

func (hostPWM) Configure(freqHz uint32, top uint16) error { return nil }
func (hostPWM) SetDuty(duty uint16) error                 { return nil }
func (hostPWM) Update() error                             { return nil }

type hostStrip struct{ buf []types.Color }

func (s *hostStrip) Len() int { return len(s.buf) }
func (s *hostStrip) SetPixel(i int, c types.Color) error {
	if i >= 0 && i < len(s.buf) {
		s.buf[i] = c
	}
	return nil
}
func (s *hostStrip) Refresh() error { return nil }

// NewDefaultBackend builds the inert host backend.
func NewDefaultBackend(cfg Config) Backend {
	return Backend{
		Pins:  hostPins{},
		Fan:   hostPWM{},
		Board: &hostStrip{buf: make([]types.Color, BoardStripLen)},
		Touch: &hostStrip{buf: make([]types.Color, TouchStripLen)},
	}
}
