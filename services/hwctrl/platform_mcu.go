//go:build rp2040 || rp2350

package hwctrl

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ws2812"

	"carriercode-go/types"
	"carriercode-go/x/mathx"
)

// On-chip backend: machine pins, a PWM slice for the fan, bit-banged
// WS2812 chains for the strips.

type mcuPins struct{}

func (mcuPins) SetOutput(pin int, level Level) error {
	p := machine.Pin(pin)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Set(bool(level))
	return nil
}

func (mcuPins) ReadInputMode(pin int) (Level, error) {
	p := machine.Pin(pin)
	p.Configure(machine.PinConfig{Mode: machine.PinInput})
	return Level(p.Get()), nil
}

func (mcuPins) ReadRawLevel(pin int) (Level, error) {
	return Level(machine.Pin(pin).Get()), nil
}

// pwmCtrl is the slice-level surface of machine.PWM0..PWM7.
type pwmCtrl interface {
	Configure(cfg machine.PWMConfig) error
	Top() uint32
	Set(channel uint8, value uint32)
}

func pwmGroupForPin(pin int) (pwmCtrl, uint8) {
	// Slice and channel layout of the RP2 PWM block.
	slice := (pin >> 1) & 7
	ch := uint8(pin & 1)
	switch slice {
	case 0:
		return machine.PWM0, ch
	case 1:
		return machine.PWM1, ch
	case 2:
		return machine.PWM2, ch
	case 3:
		return machine.PWM3, ch
	case 4:
		return machine.PWM4, ch
	case 5:
		return machine.PWM5, ch
	case 6:
		return machine.PWM6, ch
	default:
		return machine.PWM7, ch
	}
}

// mcuPWM stages a duty on SetDuty and latches it to hardware on Update,
// rescaling from the logical top to the hardware counter top.
type mcuPWM struct {
	pin   int
	ctrl  pwmCtrl
	ch    uint8
	top   uint16
	hwTop uint32
	duty  uint16
}

func (p *mcuPWM) Configure(freqHz uint32, top uint16) error {
	ctrl, ch := pwmGroupForPin(p.pin)
	if err := ctrl.Configure(machine.PWMConfig{Period: uint64(1e9) / uint64(freqHz)}); err != nil {
		return err
	}
	machine.Pin(p.pin).Configure(machine.PinConfig{Mode: machine.PinPWM})
	p.ctrl = ctrl
	p.ch = ch
	p.top = top
	p.hwTop = ctrl.Top()
	return nil
}

func (p *mcuPWM) SetDuty(duty uint16) error {
	p.duty = mathx.Clamp(duty, 0, p.top)
	return nil
}

func (p *mcuPWM) Update() error {
	if p.top == 0 {
		return nil
	}
	p.ctrl.Set(p.ch, uint32(p.duty)*p.hwTop/uint32(p.top))
	return nil
}

// mcuStrip stages pixels in RAM and writes the whole chain on Refresh.
type mcuStrip struct {
	dev ws2812.Device
	buf []color.RGBA
}

func newMCUStrip(pin int, n int) *mcuStrip {
	p := machine.Pin(pin)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &mcuStrip{dev: ws2812.New(p), buf: make([]color.RGBA, n)}
}

func (s *mcuStrip) Len() int { return len(s.buf) }

func (s *mcuStrip) SetPixel(i int, c types.Color) error {
	if i < 0 || i >= len(s.buf) {
		return nil
	}
	s.buf[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
	return nil
}

func (s *mcuStrip) Refresh() error {
	return s.dev.WriteColors(s.buf)
}

// NewDefaultBackend builds the on-chip backend for cfg's pin map.
func NewDefaultBackend(cfg Config) Backend {
	return Backend{
		Pins:  mcuPins{},
		Fan:   &mcuPWM{pin: cfg.Pins.FanPWM},
		Board: newMCUStrip(cfg.Pins.BoardStrip, BoardStripLen),
		Touch: newMCUStrip(cfg.Pins.TouchStrip, TouchStripLen),
	}
}
